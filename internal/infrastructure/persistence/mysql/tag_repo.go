package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	apperrors "github.com/xiebiao/inventoryhub/pkg/errors"
)

// tagRepository 标签仓储实现(MySQL)
type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository 创建标签仓储
func NewTagRepository(db *gorm.DB) inventory.TagRepository {
	return &tagRepository{db: db}
}

// GetOrCreate 按名称查找标签,不存在则创建
// 并发创建同名标签时,后到者会撞唯一索引,此时回查一次即可
func (r *tagRepository) GetOrCreate(ctx context.Context, name string) (*inventory.Tag, error) {
	var model TagModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if err == nil {
		return toTagEntity(&model), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(err, "查询标签失败")
	}

	model = TagModel{Name: name}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isDuplicateError(err) {
			// 并发创建,回查
			if err2 := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err2 != nil {
				return nil, apperrors.Wrap(err2, "查询标签失败")
			}
			return toTagEntity(&model), nil
		}
		return nil, apperrors.Wrap(err, "创建标签失败")
	}

	return toTagEntity(&model), nil
}

// ListByInventory 查询清单关联的标签
func (r *tagRepository) ListByInventory(ctx context.Context, inventoryID uint) ([]inventory.Tag, error) {
	var models []TagModel
	err := r.db.WithContext(ctx).
		Joins("JOIN inventory_tags ON inventory_tags.tag_id = tags.id").
		Where("inventory_tags.inventory_id = ?", inventoryID).
		Order("tags.name ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询清单标签失败")
	}

	tags := make([]inventory.Tag, len(models))
	for i := range models {
		tags[i] = *toTagEntity(&models[i])
	}
	return tags, nil
}

// ReplaceForInventory 整体替换清单的标签关联
func (r *tagRepository) ReplaceForInventory(ctx context.Context, inventoryID uint, tagIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("inventory_id = ?", inventoryID).Delete(&InventoryTagModel{}).Error; err != nil {
			return apperrors.Wrap(err, "清除标签关联失败")
		}

		if len(tagIDs) == 0 {
			return nil
		}

		models := make([]InventoryTagModel, 0, len(tagIDs))
		seen := make(map[uint]bool, len(tagIDs))
		for _, id := range tagIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			models = append(models, InventoryTagModel{InventoryID: inventoryID, TagID: id})
		}

		if err := tx.Create(&models).Error; err != nil {
			return apperrors.Wrap(err, "写入标签关联失败")
		}
		return nil
	})
}

// ListAll 查询全部标签(标签云)
func (r *tagRepository) ListAll(ctx context.Context) ([]inventory.Tag, error) {
	var models []TagModel
	err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询标签失败")
	}

	tags := make([]inventory.Tag, len(models))
	for i := range models {
		tags[i] = *toTagEntity(&models[i])
	}
	return tags, nil
}

// toTagEntity GORM模型 → 领域实体
func toTagEntity(model *TagModel) *inventory.Tag {
	return &inventory.Tag{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
	}
}
