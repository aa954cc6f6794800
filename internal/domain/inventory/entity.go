package inventory

import (
	"time"
)

// Inventory 清单实体(聚合根)
// DDD设计说明:
// 1. Inventory是清单聚合的根实体,拥有物品(Item)和访问授权(AccessGrant)
// 2. Format是自定义ID模板(有序的段列表),新物品的CustomID按模板渲染
// 3. NextSequence是单调递增的序号计数器,只在系统生成ID时消费
// 4. Version用于乐观锁:每次成功修改+1,携带过期版本的修改会被拒绝
// 5. IsPublic=true时任何人(包括未登录)可查看,但写权限仍需授权
type Inventory struct {
	ID           uint
	OwnerID      uint   // 清单所有者用户ID
	Title        string // 标题
	Description  string // 描述
	Category     string // 分类(如 equipment/furniture/book)
	ImageURL     string // 封面图URL
	IsPublic     bool   // 是否公开可见
	Format       Format // 自定义ID模板
	NextSequence uint64 // 下一个待发放的序号(从1开始)
	Version      int    // 乐观锁版本号
	Fields       FieldConfig
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewInventory 创建新清单(工厂方法)
// 新清单的序号计数器从1开始,版本号从1开始
func NewInventory(ownerID uint, title, description, category string, isPublic bool) *Inventory {
	now := time.Now()
	return &Inventory{
		OwnerID:      ownerID,
		Title:        title,
		Description:  description,
		Category:     category,
		IsPublic:     isPublic,
		Format:       Format{},
		NextSequence: 1,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UpdateInfo 更新清单基本信息
func (inv *Inventory) UpdateInfo(title, description, category, imageURL string, isPublic *bool) {
	if title != "" {
		inv.Title = title
	}
	if description != "" {
		inv.Description = description
	}
	if category != "" {
		inv.Category = category
	}
	if imageURL != "" {
		inv.ImageURL = imageURL
	}
	if isPublic != nil {
		inv.IsPublic = *isPublic
	}
	inv.UpdatedAt = time.Now()
}

// ApplyNumbering 更新ID模板和/或重置序号计数器
// 业务规则:
// 1. format和resetSequenceTo各自独立生效(可以只改其一)
// 2. resetSequenceTo必须为非负数(0表示下一个序号为0)
func (inv *Inventory) ApplyNumbering(format *Format, resetSequenceTo *uint64) {
	if format != nil {
		inv.Format = *format
	}
	if resetSequenceTo != nil {
		inv.NextSequence = *resetSequenceTo
	}
	inv.UpdatedAt = time.Now()
}

// ConsumeSequence 消费一个序号并推进计数器
// 注意:必须在持有行锁的事务内调用(见repository.LockByID),
// 否则并发创建会发出重复序号
func (inv *Inventory) ConsumeSequence() uint64 {
	seq := inv.NextSequence
	inv.NextSequence++
	return seq
}

// IsOwnedBy 检查清单是否属于指定用户
func (inv *Inventory) IsOwnedBy(userID uint) bool {
	return inv.OwnerID == userID
}

// =========================================
// 自定义字段槽位
// =========================================

// FieldSlot 单个自定义字段槽位
// State=false表示槽位未启用,Name是展示名称
type FieldSlot struct {
	State bool   `json:"state"`
	Name  string `json:"name"`
}

// FieldConfig 清单的自定义字段配置
// 每种类型最多3个槽位(string/int/bool),物品的Values按槽位键存值
type FieldConfig struct {
	Strings [3]FieldSlot `json:"strings"`
	Ints    [3]FieldSlot `json:"ints"`
	Bools   [3]FieldSlot `json:"bools"`
}

// =========================================
// 物品
// =========================================

// Item 物品实体
// 1. Sequence是创建时消费的序号(调用方自带CustomID时为0,不消费序号)
// 2. CustomID在同一清单内唯一(数据库层唯一索引保证)
// 3. Values是开放属性袋,键对应FieldConfig的槽位
type Item struct {
	ID          uint
	InventoryID uint
	Name        string
	Sequence    uint64
	CustomID    string
	Version     int
	Values      map[string]interface{}
	CreatedByID uint // 创建者用户ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewItem 创建新物品(工厂方法)
// sequence=0表示调用方自带CustomID,未消费序号
func NewItem(inventoryID uint, name, customID string, sequence uint64, values map[string]interface{}, createdByID uint) *Item {
	now := time.Now()
	return &Item{
		InventoryID: inventoryID,
		Name:        name,
		Sequence:    sequence,
		CustomID:    customID,
		Version:     1,
		Values:      values,
		CreatedByID: createdByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateInfo 更新物品信息
func (it *Item) UpdateInfo(name string, values map[string]interface{}) {
	if name != "" {
		it.Name = name
	}
	if values != nil {
		it.Values = values
	}
	it.UpdatedAt = time.Now()
}

// =========================================
// 访问授权
// =========================================

// AccessGrant 访问授权:(清单, 用户)二元组
// 存在即授予写权限(区别于所有者/管理员身份)
type AccessGrant struct {
	ID          uint
	InventoryID uint
	UserID      uint
	CreatedAt   time.Time
}

// =========================================
// 标签/评论/点赞
// =========================================

// Tag 标签(全局共享,清单多对多关联)
type Tag struct {
	ID        uint
	Name      string
	CreatedAt time.Time
}

// Comment 清单评论
type Comment struct {
	ID          uint
	InventoryID uint
	UserID      uint
	UserName    string // 冗余存储,避免列表页N+1查询
	Body        string
	CreatedAt   time.Time
}

// Like 物品点赞:(物品, 用户)二元组,重复点赞即取消
type Like struct {
	ID        uint
	ItemID    uint
	UserID    uint
	CreatedAt time.Time
}
