package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/inventoryhub/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数（建议：CPU核数 * 2 + 磁盘数量）
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	// 最大空闲连接数（建议：MaxOpenConns的1/4到1/2）
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// 连接最大存活时间（防止数据库主动断开连接）
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 注意：这里使用GORM的模型定义（带tag），不是domain层的实体
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&InventoryModel{},
		&ItemModel{},
		&AccessGrantModel{},
		&TagModel{},
		&InventoryTagModel{},
		&CommentModel{},
		&LikeModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Name      string         `gorm:"size:50;not null;comment:昵称"`
	IsAdmin   bool           `gorm:"default:false;comment:全局管理员"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// InventoryModel GORM清单模型
// 设计说明:
// 1. Format和Fields以JSON列存储(结构演进不需要改表)
// 2. NextSequence是序号计数器,只能在FOR UPDATE锁内读改写
// 3. Version是乐观锁版本号,UPDATE时按需比对
type InventoryModel struct {
	ID           uint           `gorm:"primaryKey"`
	OwnerID      uint           `gorm:"index;not null;comment:所有者用户ID"`
	Title        string         `gorm:"size:200;not null;comment:标题"`
	Description  string         `gorm:"type:text;comment:描述"`
	Category     string         `gorm:"index;size:50;comment:分类"`
	ImageURL     string         `gorm:"size:500;comment:封面图URL"`
	IsPublic     bool           `gorm:"index;default:false;comment:是否公开"`
	Format       string         `gorm:"type:json;comment:自定义ID模板(JSON段列表)"`
	NextSequence uint64         `gorm:"not null;default:1;comment:序号计数器"`
	Version      int            `gorm:"not null;default:1;comment:乐观锁版本号"`
	Fields       string         `gorm:"type:json;comment:自定义字段配置(JSON)"`
	CreatedAt    time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt    time.Time      `gorm:"comment:更新时间"`
	DeletedAt    gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (InventoryModel) TableName() string {
	return "inventories"
}

// ItemModel GORM物品模型
// 设计说明:
// 1. (inventory_id, custom_id)复合唯一索引保证清单内ID唯一
// 2. 物品使用硬删除:软删除会让唯一索引继续占用custom_id,
//    删除后无法重新使用同名ID
// 3. Values以JSON列存储开放属性袋
type ItemModel struct {
	ID          uint      `gorm:"primaryKey"`
	InventoryID uint      `gorm:"uniqueIndex:idx_inv_custom_id;index;not null;comment:所属清单ID"`
	Name        string    `gorm:"size:200;not null;comment:名称"`
	Sequence    uint64    `gorm:"not null;default:0;comment:创建时消费的序号(0=自带ID未消费)"`
	CustomID    string    `gorm:"uniqueIndex:idx_inv_custom_id;size:200;not null;comment:自定义ID"`
	Version     int       `gorm:"not null;default:1;comment:乐观锁版本号"`
	Values      string    `gorm:"type:json;comment:属性袋(JSON)"`
	CreatedByID uint      `gorm:"index;not null;comment:创建者用户ID"`
	CreatedAt   time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ItemModel) TableName() string {
	return "items"
}

// AccessGrantModel GORM访问授权模型
// (inventory_id, user_id)唯一,存在即授予写权限
type AccessGrantModel struct {
	ID          uint      `gorm:"primaryKey"`
	InventoryID uint      `gorm:"uniqueIndex:idx_inv_user;not null;comment:清单ID"`
	UserID      uint      `gorm:"uniqueIndex:idx_inv_user;index;not null;comment:被授权用户ID"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (AccessGrantModel) TableName() string {
	return "access_grants"
}

// TagModel GORM标签模型
type TagModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:50;not null;comment:标签名"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (TagModel) TableName() string {
	return "tags"
}

// InventoryTagModel 清单-标签多对多关联
type InventoryTagModel struct {
	ID          uint `gorm:"primaryKey"`
	InventoryID uint `gorm:"uniqueIndex:idx_inv_tag;not null;comment:清单ID"`
	TagID       uint `gorm:"uniqueIndex:idx_inv_tag;index;not null;comment:标签ID"`
}

// TableName 指定表名
func (InventoryTagModel) TableName() string {
	return "inventory_tags"
}

// CommentModel GORM评论模型
type CommentModel struct {
	ID          uint      `gorm:"primaryKey"`
	InventoryID uint      `gorm:"index;not null;comment:清单ID"`
	UserID      uint      `gorm:"index;not null;comment:评论者用户ID"`
	UserName    string    `gorm:"size:50;not null;comment:评论者昵称(冗余)"`
	Body        string    `gorm:"type:text;not null;comment:评论内容"`
	CreatedAt   time.Time `gorm:"index;comment:创建时间"`
}

// TableName 指定表名
func (CommentModel) TableName() string {
	return "comments"
}

// LikeModel GORM点赞模型
// (item_id, user_id)唯一,重复点赞由Toggle转为取消
type LikeModel struct {
	ID        uint      `gorm:"primaryKey"`
	ItemID    uint      `gorm:"uniqueIndex:idx_item_user;not null;comment:物品ID"`
	UserID    uint      `gorm:"uniqueIndex:idx_item_user;index;not null;comment:点赞用户ID"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (LikeModel) TableName() string {
	return "likes"
}
