package inventory

import (
	"context"
	"time"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
)

// ListInventoriesUseCase 清单列表用例
// 覆盖公开浏览、我的清单、可写清单和首页聚合
type ListInventoriesUseCase struct {
	invRepo  inventory.Repository
	itemRepo inventory.ItemRepository
	tagRepo  inventory.TagRepository
}

// NewListInventoriesUseCase 创建清单列表用例
func NewListInventoriesUseCase(
	invRepo inventory.Repository,
	itemRepo inventory.ItemRepository,
	tagRepo inventory.TagRepository,
) *ListInventoriesUseCase {
	return &ListInventoriesUseCase{invRepo: invRepo, itemRepo: itemRepo, tagRepo: tagRepo}
}

// InventorySummary 清单摘要DTO(列表页)
type InventorySummary struct {
	InventoryID uint      `json:"inventory_id"`
	OwnerID     uint      `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsPublic    bool      `json:"is_public"`
	ItemCount   int64     `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListRequest 清单列表请求DTO
type ListRequest struct {
	Page     int
	PageSize int
	Category string
	TagID    uint
	SortBy   string
}

// Execute 分页浏览清单
func (uc *ListInventoriesUseCase) Execute(ctx context.Context, req ListRequest) ([]*InventorySummary, int64, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	invs, total, err := uc.invRepo.List(ctx, inventory.ListParams{
		Page:     page,
		PageSize: pageSize,
		Category: req.Category,
		TagID:    req.TagID,
		SortBy:   req.SortBy,
	})
	if err != nil {
		return nil, 0, err
	}

	return uc.toSummaries(ctx, invs), total, nil
}

// ListMine 我的清单(所有者视角)
func (uc *ListInventoriesUseCase) ListMine(ctx context.Context, actor *inventory.Actor, page, pageSize int) ([]*InventorySummary, int64, error) {
	if actor == nil {
		return nil, 0, inventory.ErrForbidden
	}
	page, pageSize = normalizePage(page, pageSize)

	invs, total, err := uc.invRepo.List(ctx, inventory.ListParams{
		Page:     page,
		PageSize: pageSize,
		OwnerID:  actor.ID,
	})
	if err != nil {
		return nil, 0, err
	}
	return uc.toSummaries(ctx, invs), total, nil
}

// ListAccessible 可写清单(所有者+被授权)
func (uc *ListInventoriesUseCase) ListAccessible(ctx context.Context, actor *inventory.Actor, page, pageSize int) ([]*InventorySummary, int64, error) {
	if actor == nil {
		return nil, 0, inventory.ErrForbidden
	}
	page, pageSize = normalizePage(page, pageSize)

	invs, total, err := uc.invRepo.ListAccessible(ctx, actor.ID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return uc.toSummaries(ctx, invs), total, nil
}

// HomeData 首页聚合DTO
type HomeData struct {
	Latest  []*InventorySummary `json:"latest"`  // 最新公开清单
	Popular []*InventorySummary `json:"popular"` // 物品数最多的公开清单
	Tags    []string            `json:"tags"`    // 标签云
}

// Home 首页聚合:最新+热门+标签云
func (uc *ListInventoriesUseCase) Home(ctx context.Context, limit int) (*HomeData, error) {
	if limit < 1 || limit > 20 {
		limit = 5
	}

	latest, err := uc.invRepo.ListLatest(ctx, limit)
	if err != nil {
		return nil, err
	}

	popular, err := uc.invRepo.ListPopular(ctx, limit)
	if err != nil {
		return nil, err
	}

	tags, err := uc.tagRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	tagNames := make([]string, len(tags))
	for i, t := range tags {
		tagNames[i] = t.Name
	}

	return &HomeData{
		Latest:  uc.toSummaries(ctx, latest),
		Popular: uc.toSummaries(ctx, popular),
		Tags:    tagNames,
	}, nil
}

func (uc *ListInventoriesUseCase) toSummaries(ctx context.Context, invs []*inventory.Inventory) []*InventorySummary {
	summaries := make([]*InventorySummary, len(invs))
	for i, inv := range invs {
		count, _ := uc.itemRepo.CountByInventory(ctx, inv.ID)
		summaries[i] = &InventorySummary{
			InventoryID: inv.ID,
			OwnerID:     inv.OwnerID,
			Title:       inv.Title,
			Description: inv.Description,
			Category:    inv.Category,
			ImageURL:    inv.ImageURL,
			IsPublic:    inv.IsPublic,
			ItemCount:   count,
			CreatedAt:   inv.CreatedAt,
		}
	}
	return summaries
}

// normalizePage 页码/页大小兜底
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
