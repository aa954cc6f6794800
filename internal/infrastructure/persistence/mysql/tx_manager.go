package mysql

import (
	"context"

	"gorm.io/gorm"
)

// TxManager 事务管理器
// 设计说明:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 支持嵌套事务(GORM自动使用Savepoint)
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn返回error时自动ROLLBACK,返回nil时自动COMMIT。
// fn内的所有Repository操作通过context中的事务DB执行。
//
// 使用示例(创建物品时的序号预留):
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    // 1. 锁定清单行(序号计数器)
//	    inv, err := invRepo.LockByID(ctx, inventoryID)
//	    if err != nil {
//	        return err
//	    }
//	    // 2. 渲染ID并插入物品
//	    err = itemRepo.Create(ctx, item)
//	    if err != nil {
//	        return err // 自动回滚
//	    }
//	    // 3. 推进计数器
//	    return invRepo.UpdateNextSequence(ctx, inv.ID, inv.NextSequence)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 将事务DB注入到Context中
		// Repository的getDB方法会从context提取事务DB
		txCtx := context.WithValue(ctx, "tx", tx)
		return fn(txCtx)
	})
}
