package inventory

import (
	"context"
)

// Repository 清单仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
type Repository interface {
	// Create 创建清单
	Create(ctx context.Context, inv *Inventory) error

	// FindByID 根据ID查找清单
	FindByID(ctx context.Context, id uint) (*Inventory, error)

	// LockByID 悲观锁查询清单(SELECT FOR UPDATE)
	// 用于创建物品时锁定序号计数器,防止并发发出重复序号
	// 必须在事务内调用(见TxManager)
	LockByID(ctx context.Context, id uint) (*Inventory, error)

	// Update 更新清单
	// check为严格模式且版本不匹配时返回ErrVersionConflict,不产生任何修改;
	// 更新成功后inv.Version为新版本号
	Update(ctx context.Context, inv *Inventory, check VersionCheck) error

	// UpdateNumbering 更新ID模板和序号计数器
	// 与Update分离:修改编号规则不触碰其他字段,也不参与版本比对
	UpdateNumbering(ctx context.Context, inv *Inventory) error

	// UpdateNextSequence 推进序号计数器
	// 必须与物品插入在同一事务内执行
	UpdateNextSequence(ctx context.Context, id uint, next uint64) error

	// Delete 删除清单(级联删除物品/授权/评论)
	Delete(ctx context.Context, id uint) error

	// List 分页查询清单列表
	List(ctx context.Context, params ListParams) ([]*Inventory, int64, error)

	// ListAccessible 查询用户可写的清单(所有清单中用户是所有者或在授权名单内)
	ListAccessible(ctx context.Context, userID uint, page, pageSize int) ([]*Inventory, int64, error)

	// ListLatest 最新公开清单(首页展示)
	ListLatest(ctx context.Context, limit int) ([]*Inventory, error)

	// ListPopular 物品数最多的公开清单(首页展示)
	ListPopular(ctx context.Context, limit int) ([]*Inventory, error)

	// ListGrants 查询清单的访问授权名单
	// 权限判定每次请求新鲜加载,不做缓存
	ListGrants(ctx context.Context, inventoryID uint) ([]AccessGrant, error)

	// ReplaceGrants 整体替换清单的访问授权名单
	ReplaceGrants(ctx context.Context, inventoryID uint, userIDs []uint) error
}

// ListParams 清单列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	OwnerID  uint   // 按所有者过滤(0表示不过滤)
	Category string // 按分类过滤
	TagID    uint   // 按标签过滤(0表示不过滤)
	SortBy   string // 排序(created_at_desc, created_at_asc, title_asc)
}

// ItemRepository 物品仓储接口
type ItemRepository interface {
	// Create 创建物品
	// CustomID在清单内重复时返回ErrCustomIDDuplicate
	Create(ctx context.Context, item *Item) error

	// FindByID 根据ID查找物品
	FindByID(ctx context.Context, id uint) (*Item, error)

	// Update 更新物品
	// 版本检查语义同Repository.Update;
	// CustomID改为清单内已存在的值时返回ErrCustomIDDuplicate
	Update(ctx context.Context, item *Item, check VersionCheck) error

	// Delete 删除物品
	Delete(ctx context.Context, id uint) error

	// ListByInventory 分页查询清单下的物品
	ListByInventory(ctx context.Context, inventoryID uint, page, pageSize int) ([]*Item, int64, error)

	// CountByInventory 统计清单下的物品数
	CountByInventory(ctx context.Context, inventoryID uint) (int64, error)
}

// TagRepository 标签仓储接口
type TagRepository interface {
	// GetOrCreate 按名称查找标签,不存在则创建
	GetOrCreate(ctx context.Context, name string) (*Tag, error)

	// ListByInventory 查询清单关联的标签
	ListByInventory(ctx context.Context, inventoryID uint) ([]Tag, error)

	// ReplaceForInventory 整体替换清单的标签关联
	ReplaceForInventory(ctx context.Context, inventoryID uint, tagIDs []uint) error

	// ListAll 查询全部标签(标签云)
	ListAll(ctx context.Context) ([]Tag, error)
}

// CommentRepository 评论仓储接口
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	ListByInventory(ctx context.Context, inventoryID uint, page, pageSize int) ([]*Comment, int64, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*Comment, error)
}

// LikeRepository 点赞仓储接口
type LikeRepository interface {
	// Toggle 切换点赞状态
	// 返回切换后的状态(true=已点赞)和物品当前点赞总数
	Toggle(ctx context.Context, itemID, userID uint) (bool, int64, error)

	// CountByItem 统计物品点赞数
	CountByItem(ctx context.Context, itemID uint) (int64, error)
}
