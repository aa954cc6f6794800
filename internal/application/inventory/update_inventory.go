package inventory

import (
	"context"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	"github.com/xiebiao/inventoryhub/internal/domain/user"
	"github.com/xiebiao/inventoryhub/pkg/metrics"
)

// UpdateInventoryUseCase 更新清单用例
// 覆盖基本信息、可见性、自定义字段配置和标签,
// 编号规则(模板/计数器)走独立的UpdateNumberingUseCase
type UpdateInventoryUseCase struct {
	invRepo  inventory.Repository
	itemRepo inventory.ItemRepository
	tagRepo  inventory.TagRepository
	userRepo user.Repository
	index    SearchIndex
}

// NewUpdateInventoryUseCase 创建更新清单用例
func NewUpdateInventoryUseCase(
	invRepo inventory.Repository,
	itemRepo inventory.ItemRepository,
	tagRepo inventory.TagRepository,
	userRepo user.Repository,
	index SearchIndex,
) *UpdateInventoryUseCase {
	return &UpdateInventoryUseCase{
		invRepo:  invRepo,
		itemRepo: itemRepo,
		tagRepo:  tagRepo,
		userRepo: userRepo,
		index:    index,
	}
}

// UpdateInventoryRequest 更新清单请求DTO
// 零值字段不修改;IsPublic/Fields/Version用指针区分"未携带"
type UpdateInventoryRequest struct {
	InventoryID uint
	Actor       *inventory.Actor
	Title       string
	Description string
	Category    string
	ImageURL    string
	IsPublic    *bool
	Fields      *inventory.FieldConfig
	Tags        []string
	Version     *int
}

// UpdateInventoryResponse 更新清单响应DTO
type UpdateInventoryResponse struct {
	InventoryID uint `json:"inventory_id"`
	Version     int  `json:"version"` // 新版本号
}

// Execute 执行更新清单用例
func (uc *UpdateInventoryUseCase) Execute(ctx context.Context, req UpdateInventoryRequest) (*UpdateInventoryResponse, error) {
	// 1. 权限校验
	inv, err := loadInventoryForWrite(ctx, uc.invRepo, req.InventoryID, req.Actor)
	if err != nil {
		return nil, err
	}

	// 2. 应用修改
	inv.UpdateInfo(req.Title, req.Description, req.Category, req.ImageURL, req.IsPublic)
	if req.Fields != nil {
		if err := inventory.ValidateFieldConfig(*req.Fields); err != nil {
			return nil, err
		}
		inv.Fields = *req.Fields
	}

	// 3. 带版本检查写入
	check := inventory.FromRequest(req.Version)
	if err := uc.invRepo.Update(ctx, inv, check); err != nil {
		if err == inventory.ErrVersionConflict && metrics.VersionConflictsTotal != nil {
			metrics.IncCounterVec(metrics.VersionConflictsTotal, map[string]string{"record": "inventory"})
		}
		return nil, err
	}

	// 4. 标签关联
	if err := replaceTagsByName(ctx, uc.tagRepo, inv.ID, req.Tags); err != nil {
		return nil, err
	}

	// 5. 异步刷新索引(携带最新的物品数快照)
	go uc.index.UpsertInventory(context.Background(), buildInventoryDoc(uc.itemRepo, uc.userRepo, inv))

	return &UpdateInventoryResponse{
		InventoryID: inv.ID,
		Version:     inv.Version,
	}, nil
}

// DeleteInventoryUseCase 删除清单用例
// 只有所有者和管理员可删除(授权用户只有物品写权限)
type DeleteInventoryUseCase struct {
	invRepo   inventory.Repository
	index     SearchIndex
	publisher EventPublisher
}

// NewDeleteInventoryUseCase 创建删除清单用例
func NewDeleteInventoryUseCase(
	invRepo inventory.Repository,
	index SearchIndex,
	publisher EventPublisher,
) *DeleteInventoryUseCase {
	return &DeleteInventoryUseCase{invRepo: invRepo, index: index, publisher: publisher}
}

// Execute 执行删除清单用例
func (uc *DeleteInventoryUseCase) Execute(ctx context.Context, inventoryID uint, actor *inventory.Actor) error {
	if _, err := loadInventoryForOwner(ctx, uc.invRepo, inventoryID, actor); err != nil {
		return err
	}

	// 级联删除物品/授权/标签关联/评论(仓储层事务保证)
	if err := uc.invRepo.Delete(ctx, inventoryID); err != nil {
		return err
	}

	go func() {
		uc.index.RemoveInventory(context.Background(), inventoryID)
		publishEvent(uc.publisher, EventInventoryDeleted, InventoryEvent{
			InventoryID: inventoryID,
			ActorID:     actorID(actor),
		})
	}()

	return nil
}
