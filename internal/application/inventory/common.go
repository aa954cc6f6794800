// Package inventory 清单应用层用例
//
// 设计说明:
// 1. 每个用例一个文件,Request/Response DTO + Execute方法
// 2. 权限判定在用例入口完成:按请求新鲜加载授权名单,
//    交给domain层的纯函数CanView/CanWrite判定
// 3. 索引写入和事件发布都是尽力而为:在goroutine里异步执行,
//    不阻塞HTTP响应,失败不回滚主库
package inventory

import (
	"context"
	"log"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/search"
	"github.com/xiebiao/inventoryhub/pkg/metrics"
)

// SearchIndex 搜索索引写入接口(由infrastructure/search.Indexer实现)
// 应用层依赖接口,测试时可注入记录调用的stub
type SearchIndex interface {
	UpsertInventory(ctx context.Context, doc *search.InventoryDoc)
	UpsertItem(ctx context.Context, doc *search.ItemDoc)
	RemoveInventory(ctx context.Context, inventoryID uint)
	RemoveItem(ctx context.Context, itemID, inventoryID uint)
}

// EventPublisher 事件发布接口(由pkg/mq.Publisher实现)
// nil表示未启用MQ,发布静默跳过
type EventPublisher interface {
	Publish(routingKey string, message interface{}) error
}

// Transactor 事务执行接口(由mysql.TxManager实现)
// 应用层依赖接口,测试时可注入直通实现
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// 事件路由键
const (
	EventItemCreated      = "item.created"
	EventItemUpdated      = "item.updated"
	EventItemDeleted      = "item.deleted"
	EventInventoryDeleted = "inventory.deleted"
)

// ItemEvent 物品事件载荷
type ItemEvent struct {
	ItemID      uint   `json:"item_id"`
	InventoryID uint   `json:"inventory_id"`
	CustomID    string `json:"custom_id"`
	ActorID     uint   `json:"actor_id"`
}

// InventoryEvent 清单事件载荷
type InventoryEvent struct {
	InventoryID uint `json:"inventory_id"`
	ActorID     uint `json:"actor_id"`
}

// publishEvent 尽力而为地发布事件
// publisher为nil(MQ未启用)或发布失败都只记日志
func publishEvent(publisher EventPublisher, routingKey string, payload interface{}) {
	result := "success"
	if publisher == nil {
		return
	}
	if err := publisher.Publish(routingKey, payload); err != nil {
		log.Printf("⚠️ 事件发布失败(已忽略): key=%s, err=%v", routingKey, err)
		result = "failure"
	}
	if metrics.EventsPublishedTotal != nil {
		metrics.IncCounterVec(metrics.EventsPublishedTotal, map[string]string{
			"routing_key": routingKey,
			"result":      result,
		})
	}
}

// loadInventoryForWrite 加载清单并校验写权限
// 权限判定顺序:先not-found后forbidden(与资源错误语义一致)
func loadInventoryForWrite(ctx context.Context, repo inventory.Repository, id uint, actor *inventory.Actor) (*inventory.Inventory, error) {
	inv, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	grants, err := repo.ListGrants(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inventory.CanWrite(actor, inv, grants) {
		return nil, inventory.ErrForbidden
	}

	return inv, nil
}

// loadInventoryForOwner 加载清单并校验所有者/管理员权限
// 授权名单只授予物品写权限,清单级管理操作(删除/授权/编号规则)不看名单
func loadInventoryForOwner(ctx context.Context, repo inventory.Repository, id uint, actor *inventory.Actor) (*inventory.Inventory, error) {
	inv, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor == nil || (!actor.IsAdmin && !inv.IsOwnedBy(actor.ID)) {
		return nil, inventory.ErrForbidden
	}

	return inv, nil
}

// loadInventoryForView 加载清单并校验查看权限
func loadInventoryForView(ctx context.Context, repo inventory.Repository, id uint, actor *inventory.Actor) (*inventory.Inventory, error) {
	inv, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	grants, err := repo.ListGrants(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inventory.CanView(actor, inv, grants) {
		return nil, inventory.ErrForbidden
	}

	return inv, nil
}
