package inventory

import (
	"context"
	"log"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	"github.com/xiebiao/inventoryhub/internal/domain/user"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/search"
)

// CreateInventoryUseCase 创建清单用例
type CreateInventoryUseCase struct {
	invRepo  inventory.Repository
	itemRepo inventory.ItemRepository
	tagRepo  inventory.TagRepository
	userRepo user.Repository
	index    SearchIndex
}

// NewCreateInventoryUseCase 创建清单用例
func NewCreateInventoryUseCase(
	invRepo inventory.Repository,
	itemRepo inventory.ItemRepository,
	tagRepo inventory.TagRepository,
	userRepo user.Repository,
	index SearchIndex,
) *CreateInventoryUseCase {
	return &CreateInventoryUseCase{
		invRepo:  invRepo,
		itemRepo: itemRepo,
		tagRepo:  tagRepo,
		userRepo: userRepo,
		index:    index,
	}
}

// CreateInventoryRequest 创建清单请求DTO
type CreateInventoryRequest struct {
	Actor       *inventory.Actor
	Title       string
	Description string
	Category    string
	IsPublic    bool
	Format      inventory.Format // 可选:初始ID模板
	Tags        []string         // 可选:标签名列表
}

// CreateInventoryResponse 创建清单响应DTO
type CreateInventoryResponse struct {
	InventoryID uint `json:"inventory_id"`
	Version     int  `json:"version"`
}

// Execute 执行创建清单用例
func (uc *CreateInventoryUseCase) Execute(ctx context.Context, req CreateInventoryRequest) (*CreateInventoryResponse, error) {
	// 1. 参数校验
	if req.Actor == nil {
		return nil, inventory.ErrForbidden
	}
	if req.Title == "" {
		return nil, inventory.ErrInvalidTitle
	}
	if err := inventory.ValidateFormat(req.Format); err != nil {
		return nil, err
	}

	// 2. 构造并落库
	inv := inventory.NewInventory(req.Actor.ID, req.Title, req.Description, req.Category, req.IsPublic)
	inv.Format = req.Format

	if err := uc.invRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	// 3. 标签关联(按名称取或建)
	if err := replaceTagsByName(ctx, uc.tagRepo, inv.ID, req.Tags); err != nil {
		return nil, err
	}

	// 4. 异步写索引
	go uc.index.UpsertInventory(context.Background(), buildInventoryDoc(uc.itemRepo, uc.userRepo, inv))

	return &CreateInventoryResponse{
		InventoryID: inv.ID,
		Version:     inv.Version,
	}, nil
}

// replaceTagsByName 按标签名整体替换清单的标签关联
func replaceTagsByName(ctx context.Context, tagRepo inventory.TagRepository, inventoryID uint, names []string) error {
	if names == nil {
		return nil
	}

	tagIDs := make([]uint, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		tag, err := tagRepo.GetOrCreate(ctx, name)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	return tagRepo.ReplaceForInventory(ctx, inventoryID, tagIDs)
}

// buildInventoryDoc 构造清单的索引文档
// 物品数和所有者名称在构造时快照,索引中允许短暂陈旧
func buildInventoryDoc(itemRepo inventory.ItemRepository, userRepo user.Repository, inv *inventory.Inventory) *search.InventoryDoc {
	ctx := context.Background()

	count, err := itemRepo.CountByInventory(ctx, inv.ID)
	if err != nil {
		log.Printf("⚠️ 统计物品数失败(索引文档按0处理): inventory_id=%d, err=%v", inv.ID, err)
	}

	ownerName := ""
	if owner, err := userRepo.FindByID(ctx, inv.OwnerID); err == nil {
		ownerName = owner.Name
	}

	return &search.InventoryDoc{
		ID:          inv.ID,
		Title:       inv.Title,
		Description: inv.Description,
		Category:    inv.Category,
		OwnerName:   ownerName,
		IsPublic:    inv.IsPublic,
		ItemCount:   count,
		CreatedAt:   inv.CreatedAt,
	}
}
