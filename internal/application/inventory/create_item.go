package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/search"
	"github.com/xiebiao/inventoryhub/pkg/metrics"
)

// CreateItemUseCase 创建物品用例
// 这是整个项目最核心的用例:序号预留与物品插入必须是同一原子单元
//
// 核心问题:并发创建下的序号重复/跳号
// 场景:同一清单,100个请求同时创建物品
// 错误实现:
//  1. 读取nextSequence → 都读到5
//  2. 渲染ID → 都得到"INV-0005"
//  3. 插入物品、写回nextSequence=6
//     结果:序号重复(或唯一索引冲突雪崩),计数器丢失推进
//
// 正确实现:悲观锁 + 同事务推进
//  1. SELECT FOR UPDATE锁定清单行(计数器)
//  2. 消费序号、渲染ID
//  3. 插入物品(撞唯一索引则回滚,计数器不动)
//  4. 推进nextSequence
//  5. COMMIT释放锁
//
// 调用方自带customId时跳过1-2和4:显式ID不消费序号槽位
type CreateItemUseCase struct {
	invRepo   inventory.Repository
	itemRepo  inventory.ItemRepository
	txManager Transactor
	index     SearchIndex
	publisher EventPublisher
}

// NewCreateItemUseCase 创建物品用例
func NewCreateItemUseCase(
	invRepo inventory.Repository,
	itemRepo inventory.ItemRepository,
	txManager Transactor,
	index SearchIndex,
	publisher EventPublisher,
) *CreateItemUseCase {
	return &CreateItemUseCase{
		invRepo:   invRepo,
		itemRepo:  itemRepo,
		txManager: txManager,
		index:     index,
		publisher: publisher,
	}
}

// CreateItemRequest 创建物品请求DTO
type CreateItemRequest struct {
	InventoryID uint
	Actor       *inventory.Actor
	Name        string
	CustomID    string // 可选:调用方自带ID(不消费序号)
	Values      map[string]interface{}
}

// CreateItemResponse 创建物品响应DTO
type CreateItemResponse struct {
	ItemID    uint                   `json:"item_id"`
	CustomID  string                 `json:"custom_id"`
	Sequence  uint64                 `json:"sequence"`
	Version   int                    `json:"version"`
	Values    map[string]interface{} `json:"values,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Execute 执行创建物品用例
func (uc *CreateItemUseCase) Execute(ctx context.Context, req CreateItemRequest) (*CreateItemResponse, error) {
	start := time.Now()

	// 1. 参数校验
	if req.Name == "" {
		return nil, inventory.ErrInvalidItemName
	}

	// 2. 权限校验(not-found优先于forbidden)
	if _, err := loadInventoryForWrite(ctx, uc.invRepo, req.InventoryID, req.Actor); err != nil {
		return nil, err
	}

	// 3. 原子单元:锁定计数器 → 渲染ID → 插入 → 推进计数器
	var item *inventory.Item
	idSource := "custom"

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// SELECT FOR UPDATE锁定清单行,串行化同一清单的并发创建
		inv, err := uc.invRepo.LockByID(txCtx, req.InventoryID)
		if err != nil {
			return err
		}

		customID := req.CustomID
		var seq uint64

		if customID == "" {
			// 系统生成:消费序号并按模板渲染
			idSource = "generated"
			seq = inv.ConsumeSequence()
			customID = inv.Format.Render(inventory.RenderContext{
				Now:      time.Now(),
				Sequence: seq,
			})
			if customID == "" {
				// 空模板:退化为纯序号
				customID = fmt.Sprintf("%d", seq)
			}
		}

		item = inventory.NewItem(req.InventoryID, req.Name, customID, seq, req.Values, actorID(req.Actor))

		// 插入物品:清单内ID重复时返回冲突,事务回滚,计数器不动
		if err := uc.itemRepo.Create(txCtx, item); err != nil {
			return err
		}

		// 只有消费了序号才推进计数器(序号可被重置为0,不能拿seq判断)
		if req.CustomID == "" {
			return uc.invRepo.UpdateNextSequence(txCtx, inv.ID, inv.NextSequence)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 4. 异步通知:索引写入和事件发布都不阻塞响应,失败不回滚
	go func() {
		uc.index.UpsertItem(context.Background(), &search.ItemDoc{
			ID:          item.ID,
			InventoryID: item.InventoryID,
			Name:        item.Name,
			CustomID:    item.CustomID,
			CreatedAt:   item.CreatedAt,
		})
		publishEvent(uc.publisher, EventItemCreated, ItemEvent{
			ItemID:      item.ID,
			InventoryID: item.InventoryID,
			CustomID:    item.CustomID,
			ActorID:     actorID(req.Actor),
		})
	}()

	// 5. 监控指标
	if metrics.ItemsCreatedTotal != nil {
		metrics.IncCounterVec(metrics.ItemsCreatedTotal, map[string]string{"id_source": idSource})
		metrics.ObserveHistogram(metrics.ItemCreationDuration, time.Since(start).Seconds())
	}

	return &CreateItemResponse{
		ItemID:    item.ID,
		CustomID:  item.CustomID,
		Sequence:  item.Sequence,
		Version:   item.Version,
		Values:    item.Values,
		CreatedAt: item.CreatedAt,
	}, nil
}

// actorID 提取操作者ID(匿名为0)
func actorID(actor *inventory.Actor) uint {
	if actor == nil {
		return 0
	}
	return actor.ID
}
