package mysql

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	apperrors "github.com/xiebiao/inventoryhub/pkg/errors"
)

// itemRepository 物品仓储实现(MySQL)
// CustomID的清单内唯一性由(inventory_id, custom_id)复合唯一索引保证:
// 应用层预检查存在并发窗口,索引冲突才是权威信号
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository 创建物品仓储
func NewItemRepository(db *gorm.DB) inventory.ItemRepository {
	return &itemRepository{db: db}
}

// Create 创建物品
// 必须在创建物品的事务内调用(getDB从context取事务DB),
// 与清单行锁、序号推进构成同一原子单元
func (r *itemRepository) Create(ctx context.Context, item *inventory.Item) error {
	model, err := toItemModel(item)
	if err != nil {
		return err
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return inventory.ErrCustomIDDuplicate
		}
		return apperrors.Wrap(err, "创建物品失败")
	}

	// 回填自增ID
	item.ID = model.ID
	item.CreatedAt = model.CreatedAt
	item.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找物品
func (r *itemRepository) FindByID(ctx context.Context, id uint) (*inventory.Item, error) {
	var model ItemModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "查询物品失败")
	}

	return toItemEntity(&model)
}

// Update 更新物品(乐观锁,语义同清单Update)
func (r *itemRepository) Update(ctx context.Context, item *inventory.Item, check inventory.VersionCheck) error {
	valuesJSON, err := json.Marshal(item.Values)
	if err != nil {
		return apperrors.Wrap(err, "序列化属性失败")
	}

	db := r.getDB(ctx)
	query := db.Model(&ItemModel{}).Where("id = ?", item.ID)
	if check.IsStrict() {
		query = query.Where("version = ?", check.Expected())
	}

	result := query.Updates(map[string]interface{}{
		"name":      item.Name,
		"custom_id": item.CustomID,
		"values":    string(valuesJSON),
		"version":   gorm.Expr("version + 1"),
	})

	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return inventory.ErrCustomIDDuplicate
		}
		return apperrors.Wrap(result.Error, "更新物品失败")
	}

	if result.RowsAffected == 0 {
		var model ItemModel
		if err := db.First(&model, item.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return inventory.ErrItemNotFound
			}
			return apperrors.Wrap(err, "查询物品失败")
		}
		return inventory.ErrVersionConflict
	}

	// 回填新版本号
	if check.IsStrict() {
		item.Version = check.Expected() + 1
	} else {
		var model ItemModel
		if err := db.Select("version").First(&model, item.ID).Error; err == nil {
			item.Version = model.Version
		}
	}

	return nil
}

// Delete 删除物品(硬删除,释放custom_id)
func (r *itemRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&ItemModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除物品失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrItemNotFound
	}

	return nil
}

// ListByInventory 分页查询清单下的物品
func (r *itemRepository) ListByInventory(ctx context.Context, inventoryID uint, page, pageSize int) ([]*inventory.Item, int64, error) {
	var models []ItemModel
	var total int64

	query := r.db.WithContext(ctx).Model(&ItemModel{}).Where("inventory_id = ?", inventoryID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询物品总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("sequence ASC, id ASC").Limit(pageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询物品列表失败")
	}

	items := make([]*inventory.Item, len(models))
	for i := range models {
		item, err := toItemEntity(&models[i])
		if err != nil {
			return nil, 0, err
		}
		items[i] = item
	}

	return items, total, nil
}

// CountByInventory 统计清单下的物品数
func (r *itemRepository) CountByInventory(ctx context.Context, inventoryID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ItemModel{}).
		Where("inventory_id = ?", inventoryID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计物品数失败")
	}
	return count, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toItemModel 领域实体 → GORM模型
func toItemModel(item *inventory.Item) (*ItemModel, error) {
	valuesJSON, err := json.Marshal(item.Values)
	if err != nil {
		return nil, apperrors.Wrap(err, "序列化属性失败")
	}

	return &ItemModel{
		ID:          item.ID,
		InventoryID: item.InventoryID,
		Name:        item.Name,
		Sequence:    item.Sequence,
		CustomID:    item.CustomID,
		Version:     item.Version,
		Values:      string(valuesJSON),
		CreatedByID: item.CreatedByID,
	}, nil
}

// toItemEntity GORM模型 → 领域实体
func toItemEntity(model *ItemModel) (*inventory.Item, error) {
	var values map[string]interface{}
	if model.Values != "" {
		if err := json.Unmarshal([]byte(model.Values), &values); err != nil {
			return nil, apperrors.Wrap(err, "解析属性失败")
		}
	}

	return &inventory.Item{
		ID:          model.ID,
		InventoryID: model.InventoryID,
		Name:        model.Name,
		Sequence:    model.Sequence,
		CustomID:    model.CustomID,
		Version:     model.Version,
		Values:      values,
		CreatedByID: model.CreatedByID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}, nil
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *itemRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
