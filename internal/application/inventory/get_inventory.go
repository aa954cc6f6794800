package inventory

import (
	"context"
	"time"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	"github.com/xiebiao/inventoryhub/internal/domain/user"
)

// GetInventoryUseCase 清单详情用例
type GetInventoryUseCase struct {
	invRepo  inventory.Repository
	itemRepo inventory.ItemRepository
	tagRepo  inventory.TagRepository
	userRepo user.Repository
}

// NewGetInventoryUseCase 创建清单详情用例
func NewGetInventoryUseCase(
	invRepo inventory.Repository,
	itemRepo inventory.ItemRepository,
	tagRepo inventory.TagRepository,
	userRepo user.Repository,
) *GetInventoryUseCase {
	return &GetInventoryUseCase{
		invRepo:  invRepo,
		itemRepo: itemRepo,
		tagRepo:  tagRepo,
		userRepo: userRepo,
	}
}

// InventoryDetail 清单详情DTO
type InventoryDetail struct {
	InventoryID  uint                  `json:"inventory_id"`
	OwnerID      uint                  `json:"owner_id"`
	OwnerName    string                `json:"owner_name"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Category     string                `json:"category"`
	ImageURL     string                `json:"image_url,omitempty"`
	IsPublic     bool                  `json:"is_public"`
	Format       inventory.Format      `json:"format"`
	NextSequence uint64                `json:"next_sequence"`
	Version      int                   `json:"version"`
	Fields       inventory.FieldConfig `json:"fields"`
	Tags         []string              `json:"tags"`
	ItemCount    int64                 `json:"item_count"`
	CanWrite     bool                  `json:"can_write"` // 当前访问者是否可写
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Execute 查询清单详情
func (uc *GetInventoryUseCase) Execute(ctx context.Context, inventoryID uint, actor *inventory.Actor) (*InventoryDetail, error) {
	inv, err := uc.invRepo.FindByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	grants, err := uc.invRepo.ListGrants(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	if !inventory.CanView(actor, inv, grants) {
		return nil, inventory.ErrForbidden
	}

	tags, err := uc.tagRepo.ListByInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	tagNames := make([]string, len(tags))
	for i, t := range tags {
		tagNames[i] = t.Name
	}

	count, err := uc.itemRepo.CountByInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	ownerName := ""
	if owner, err := uc.userRepo.FindByID(ctx, inv.OwnerID); err == nil {
		ownerName = owner.Name
	}

	return &InventoryDetail{
		InventoryID:  inv.ID,
		OwnerID:      inv.OwnerID,
		OwnerName:    ownerName,
		Title:        inv.Title,
		Description:  inv.Description,
		Category:     inv.Category,
		ImageURL:     inv.ImageURL,
		IsPublic:     inv.IsPublic,
		Format:       inv.Format,
		NextSequence: inv.NextSequence,
		Version:      inv.Version,
		Fields:       inv.Fields,
		Tags:         tagNames,
		ItemCount:    count,
		CanWrite:     inventory.CanWrite(actor, inv, grants),
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}, nil
}
