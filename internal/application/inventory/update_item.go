package inventory

import (
	"context"
	"time"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/search"
	"github.com/xiebiao/inventoryhub/pkg/metrics"
)

// UpdateItemUseCase 更新物品用例
// 版本检查是双模式的:请求携带version(含0)时严格比对,
// 不携带时last-writer-wins
type UpdateItemUseCase struct {
	invRepo   inventory.Repository
	itemRepo  inventory.ItemRepository
	index     SearchIndex
	publisher EventPublisher
}

// NewUpdateItemUseCase 创建更新物品用例
func NewUpdateItemUseCase(
	invRepo inventory.Repository,
	itemRepo inventory.ItemRepository,
	index SearchIndex,
	publisher EventPublisher,
) *UpdateItemUseCase {
	return &UpdateItemUseCase{
		invRepo:   invRepo,
		itemRepo:  itemRepo,
		index:     index,
		publisher: publisher,
	}
}

// UpdateItemRequest 更新物品请求DTO
// Version用指针区分"未携带"与"携带0"
type UpdateItemRequest struct {
	InventoryID uint
	ItemID      uint
	Actor       *inventory.Actor
	Name        string
	CustomID    string
	Values      map[string]interface{}
	Version     *int
}

// UpdateItemResponse 更新物品响应DTO
type UpdateItemResponse struct {
	ItemID   uint   `json:"item_id"`
	CustomID string `json:"custom_id"`
	Version  int    `json:"version"` // 新版本号
}

// Execute 执行更新物品用例
func (uc *UpdateItemUseCase) Execute(ctx context.Context, req UpdateItemRequest) (*UpdateItemResponse, error) {
	// 1. 权限校验
	if _, err := loadInventoryForWrite(ctx, uc.invRepo, req.InventoryID, req.Actor); err != nil {
		return nil, err
	}

	// 2. 加载物品并校验归属
	item, err := uc.itemRepo.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.InventoryID != req.InventoryID {
		return nil, inventory.ErrItemNotFound
	}

	// 3. 应用修改
	item.UpdateInfo(req.Name, req.Values)
	if req.CustomID != "" {
		item.CustomID = req.CustomID
	}

	// 4. 带版本检查写入
	check := inventory.FromRequest(req.Version)
	if err := uc.itemRepo.Update(ctx, item, check); err != nil {
		if err == inventory.ErrVersionConflict && metrics.VersionConflictsTotal != nil {
			metrics.IncCounterVec(metrics.VersionConflictsTotal, map[string]string{"record": "item"})
		}
		return nil, err
	}

	// 5. 异步刷新索引
	go func() {
		uc.index.UpsertItem(context.Background(), &search.ItemDoc{
			ID:          item.ID,
			InventoryID: item.InventoryID,
			Name:        item.Name,
			CustomID:    item.CustomID,
			CreatedAt:   item.CreatedAt,
		})
		publishEvent(uc.publisher, EventItemUpdated, ItemEvent{
			ItemID:      item.ID,
			InventoryID: item.InventoryID,
			CustomID:    item.CustomID,
			ActorID:     actorID(req.Actor),
		})
	}()

	return &UpdateItemResponse{
		ItemID:   item.ID,
		CustomID: item.CustomID,
		Version:  item.Version,
	}, nil
}

// DeleteItemUseCase 删除物品用例
type DeleteItemUseCase struct {
	invRepo   inventory.Repository
	itemRepo  inventory.ItemRepository
	index     SearchIndex
	publisher EventPublisher
}

// NewDeleteItemUseCase 创建删除物品用例
func NewDeleteItemUseCase(
	invRepo inventory.Repository,
	itemRepo inventory.ItemRepository,
	index SearchIndex,
	publisher EventPublisher,
) *DeleteItemUseCase {
	return &DeleteItemUseCase{
		invRepo:   invRepo,
		itemRepo:  itemRepo,
		index:     index,
		publisher: publisher,
	}
}

// Execute 执行删除物品用例
func (uc *DeleteItemUseCase) Execute(ctx context.Context, inventoryID, itemID uint, actor *inventory.Actor) error {
	if _, err := loadInventoryForWrite(ctx, uc.invRepo, inventoryID, actor); err != nil {
		return err
	}

	item, err := uc.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.InventoryID != inventoryID {
		return inventory.ErrItemNotFound
	}

	if err := uc.itemRepo.Delete(ctx, itemID); err != nil {
		return err
	}

	// 尽力而为的索引摘除:失败只影响搜索结果新鲜度,主库已删除
	go func() {
		uc.index.RemoveItem(context.Background(), itemID, inventoryID)
		publishEvent(uc.publisher, EventItemDeleted, ItemEvent{
			ItemID:      itemID,
			InventoryID: inventoryID,
			ActorID:     actorID(actor),
		})
	}()

	return nil
}

// ListItemsUseCase 物品列表用例
type ListItemsUseCase struct {
	invRepo  inventory.Repository
	itemRepo inventory.ItemRepository
	likeRepo inventory.LikeRepository
}

// NewListItemsUseCase 创建物品列表用例
func NewListItemsUseCase(
	invRepo inventory.Repository,
	itemRepo inventory.ItemRepository,
	likeRepo inventory.LikeRepository,
) *ListItemsUseCase {
	return &ListItemsUseCase{invRepo: invRepo, itemRepo: itemRepo, likeRepo: likeRepo}
}

// ItemView 物品视图DTO
type ItemView struct {
	ItemID    uint                   `json:"item_id"`
	Name      string                 `json:"name"`
	CustomID  string                 `json:"custom_id"`
	Sequence  uint64                 `json:"sequence"`
	Version   int                    `json:"version"`
	Values    map[string]interface{} `json:"values,omitempty"`
	Likes     int64                  `json:"likes"`
	CreatedAt time.Time              `json:"created_at"`
}

// Execute 分页查询清单下的物品
func (uc *ListItemsUseCase) Execute(ctx context.Context, inventoryID uint, actor *inventory.Actor, page, pageSize int) ([]*ItemView, int64, error) {
	if _, err := loadInventoryForView(ctx, uc.invRepo, inventoryID, actor); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := uc.itemRepo.ListByInventory(ctx, inventoryID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*ItemView, len(items))
	for i, item := range items {
		likes, _ := uc.likeRepo.CountByItem(ctx, item.ID)
		views[i] = &ItemView{
			ItemID:    item.ID,
			Name:      item.Name,
			CustomID:  item.CustomID,
			Sequence:  item.Sequence,
			Version:   item.Version,
			Values:    item.Values,
			Likes:     likes,
			CreatedAt: item.CreatedAt,
		}
	}

	return views, total, nil
}

// GetItemUseCase 物品详情用例
type GetItemUseCase struct {
	invRepo  inventory.Repository
	itemRepo inventory.ItemRepository
	likeRepo inventory.LikeRepository
}

// NewGetItemUseCase 创建物品详情用例
func NewGetItemUseCase(
	invRepo inventory.Repository,
	itemRepo inventory.ItemRepository,
	likeRepo inventory.LikeRepository,
) *GetItemUseCase {
	return &GetItemUseCase{invRepo: invRepo, itemRepo: itemRepo, likeRepo: likeRepo}
}

// Execute 查询物品详情
func (uc *GetItemUseCase) Execute(ctx context.Context, inventoryID, itemID uint, actor *inventory.Actor) (*ItemView, error) {
	if _, err := loadInventoryForView(ctx, uc.invRepo, inventoryID, actor); err != nil {
		return nil, err
	}

	item, err := uc.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.InventoryID != inventoryID {
		return nil, inventory.ErrItemNotFound
	}

	likes, _ := uc.likeRepo.CountByItem(ctx, item.ID)

	return &ItemView{
		ItemID:    item.ID,
		Name:      item.Name,
		CustomID:  item.CustomID,
		Sequence:  item.Sequence,
		Version:   item.Version,
		Values:    item.Values,
		Likes:     likes,
		CreatedAt: item.CreatedAt,
	}, nil
}
