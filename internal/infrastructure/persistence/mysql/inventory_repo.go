package mysql

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	apperrors "github.com/xiebiao/inventoryhub/pkg/errors"
)

// inventoryRepository 清单仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/inventory/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换(含Format/Fields的JSON序列化)
// 3. 乐观锁通过带版本条件的UPDATE实现:比对与写入在同一条语句内,
//    不存在读后写的竞态窗口
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建清单仓储
func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &inventoryRepository{db: db}
}

// Create 创建清单
func (r *inventoryRepository) Create(ctx context.Context, inv *inventory.Inventory) error {
	model, err := toInventoryModel(inv)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建清单失败")
	}

	// 回填自增ID
	inv.ID = model.ID
	inv.CreatedAt = model.CreatedAt
	inv.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找清单
func (r *inventoryRepository) FindByID(ctx context.Context, id uint) (*inventory.Inventory, error) {
	var model InventoryModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.Wrap(err, "查询清单失败")
	}

	return toInventoryEntity(&model)
}

// LockByID 悲观锁查询清单(SELECT FOR UPDATE)
// 必须使用getDB(ctx)从context获取事务DB,否则锁不在事务内没有意义
func (r *inventoryRepository) LockByID(ctx context.Context, id uint) (*inventory.Inventory, error) {
	var model InventoryModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.Wrap(err, "锁定清单失败")
	}

	return toInventoryEntity(&model)
}

// Update 更新清单(乐观锁)
// 严格模式: UPDATE ... WHERE id=? AND version=? → 影响0行则为版本冲突
// 无条件模式: UPDATE ... WHERE id=? (last-writer-wins)
// 两种模式都把version+1放在同一条UPDATE里,保证比对与递增原子
func (r *inventoryRepository) Update(ctx context.Context, inv *inventory.Inventory, check inventory.VersionCheck) error {
	formatJSON, err := json.Marshal(inv.Format)
	if err != nil {
		return apperrors.Wrap(err, "序列化模板失败")
	}
	fieldsJSON, err := json.Marshal(inv.Fields)
	if err != nil {
		return apperrors.Wrap(err, "序列化字段配置失败")
	}

	db := r.getDB(ctx)
	query := db.Model(&InventoryModel{}).Where("id = ?", inv.ID)
	if check.IsStrict() {
		query = query.Where("version = ?", check.Expected())
	}

	result := query.Updates(map[string]interface{}{
		"title":       inv.Title,
		"description": inv.Description,
		"category":    inv.Category,
		"image_url":   inv.ImageURL,
		"is_public":   inv.IsPublic,
		"format":      string(formatJSON),
		"fields":      string(fieldsJSON),
		"version":     gorm.Expr("version + 1"),
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新清单失败")
	}

	if result.RowsAffected == 0 {
		// 影响0行:清单不存在,或版本不匹配。再查一次确定原因
		var model InventoryModel
		if err := db.First(&model, inv.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return inventory.ErrInventoryNotFound
			}
			return apperrors.Wrap(err, "查询清单失败")
		}
		return inventory.ErrVersionConflict
	}

	// 回填新版本号
	if check.IsStrict() {
		inv.Version = check.Expected() + 1
	} else {
		var model InventoryModel
		if err := db.Select("version").First(&model, inv.ID).Error; err == nil {
			inv.Version = model.Version
		}
	}

	return nil
}

// UpdateNumbering 更新ID模板和序号计数器
// 不参与版本比对:编号规则的修改独立于内容编辑
func (r *inventoryRepository) UpdateNumbering(ctx context.Context, inv *inventory.Inventory) error {
	formatJSON, err := json.Marshal(inv.Format)
	if err != nil {
		return apperrors.Wrap(err, "序列化模板失败")
	}

	result := r.getDB(ctx).Model(&InventoryModel{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"format":        string(formatJSON),
			"next_sequence": inv.NextSequence,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新编号规则失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrInventoryNotFound
	}

	return nil
}

// UpdateNextSequence 推进序号计数器
// 必须在持有FOR UPDATE锁的事务内调用(与物品插入同一事务)
func (r *inventoryRepository) UpdateNextSequence(ctx context.Context, id uint, next uint64) error {
	result := r.getDB(ctx).Model(&InventoryModel{}).
		Where("id = ?", id).
		Update("next_sequence", next)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "推进序号计数器失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrInventoryNotFound
	}

	return nil
}

// Delete 删除清单(级联删除物品/授权/标签关联/评论)
// 级联在同一事务内完成;物品是硬删除,清单本身软删除
func (r *inventoryRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&InventoryModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除清单失败")
		}
		if result.RowsAffected == 0 {
			return inventory.ErrInventoryNotFound
		}

		if err := tx.Where("inventory_id = ?", id).Delete(&ItemModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除清单物品失败")
		}
		if err := tx.Where("inventory_id = ?", id).Delete(&AccessGrantModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除访问授权失败")
		}
		if err := tx.Where("inventory_id = ?", id).Delete(&InventoryTagModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除标签关联失败")
		}
		if err := tx.Where("inventory_id = ?", id).Delete(&CommentModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除评论失败")
		}

		return nil
	})
}

// List 分页查询清单列表
func (r *inventoryRepository) List(ctx context.Context, params inventory.ListParams) ([]*inventory.Inventory, int64, error) {
	var models []InventoryModel
	var total int64

	query := r.db.WithContext(ctx).Model(&InventoryModel{})

	if params.OwnerID != 0 {
		query = query.Where("owner_id = ?", params.OwnerID)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.TagID != 0 {
		query = query.Where("id IN (?)",
			r.db.Model(&InventoryTagModel{}).Select("inventory_id").Where("tag_id = ?", params.TagID))
	}

	// 查询总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询清单总数失败")
	}

	// 排序
	switch params.SortBy {
	case "created_at_asc":
		query = query.Order("created_at ASC")
	case "title_asc":
		query = query.Order("title ASC")
	default:
		query = query.Order("created_at DESC")
	}

	// 分页
	offset := (params.Page - 1) * params.PageSize
	query = query.Limit(params.PageSize).Offset(offset)

	if err := query.Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询清单列表失败")
	}

	return toInventoryEntities(models, total)
}

// ListAccessible 查询用户可写的清单(所有者或授权名单内)
func (r *inventoryRepository) ListAccessible(ctx context.Context, userID uint, page, pageSize int) ([]*inventory.Inventory, int64, error) {
	var models []InventoryModel
	var total int64

	grantSub := r.db.Model(&AccessGrantModel{}).Select("inventory_id").Where("user_id = ?", userID)
	query := r.db.WithContext(ctx).Model(&InventoryModel{}).
		Where("owner_id = ? OR id IN (?)", userID, grantSub)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询可写清单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Limit(pageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询可写清单失败")
	}

	return toInventoryEntities(models, total)
}

// ListLatest 最新公开清单
func (r *inventoryRepository) ListLatest(ctx context.Context, limit int) ([]*inventory.Inventory, error) {
	var models []InventoryModel
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询最新清单失败")
	}

	invs, _, err := toInventoryEntities(models, 0)
	return invs, err
}

// ListPopular 物品数最多的公开清单
func (r *inventoryRepository) ListPopular(ctx context.Context, limit int) ([]*inventory.Inventory, error) {
	var models []InventoryModel
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Where("deleted_at IS NULL").
		Order("(SELECT COUNT(*) FROM items WHERE items.inventory_id = inventories.id) DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询热门清单失败")
	}

	invs, _, err := toInventoryEntities(models, 0)
	return invs, err
}

// ListGrants 查询清单的访问授权名单
func (r *inventoryRepository) ListGrants(ctx context.Context, inventoryID uint) ([]inventory.AccessGrant, error) {
	var models []AccessGrantModel
	err := r.getDB(ctx).Where("inventory_id = ?", inventoryID).Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询访问授权失败")
	}

	grants := make([]inventory.AccessGrant, len(models))
	for i, m := range models {
		grants[i] = inventory.AccessGrant{
			ID:          m.ID,
			InventoryID: m.InventoryID,
			UserID:      m.UserID,
			CreatedAt:   m.CreatedAt,
		}
	}
	return grants, nil
}

// ReplaceGrants 整体替换访问授权名单(删旧插新,同一事务)
func (r *inventoryRepository) ReplaceGrants(ctx context.Context, inventoryID uint, userIDs []uint) error {
	db := r.getDB(ctx)
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("inventory_id = ?", inventoryID).Delete(&AccessGrantModel{}).Error; err != nil {
			return apperrors.Wrap(err, "清除访问授权失败")
		}

		if len(userIDs) == 0 {
			return nil
		}

		models := make([]AccessGrantModel, 0, len(userIDs))
		seen := make(map[uint]bool, len(userIDs))
		for _, uid := range userIDs {
			if seen[uid] {
				continue // 去重,避免唯一索引冲突
			}
			seen[uid] = true
			models = append(models, AccessGrantModel{InventoryID: inventoryID, UserID: uid})
		}

		if err := tx.Create(&models).Error; err != nil {
			return apperrors.Wrap(err, "写入访问授权失败")
		}
		return nil
	})
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toInventoryModel 领域实体 → GORM模型
func toInventoryModel(inv *inventory.Inventory) (*InventoryModel, error) {
	formatJSON, err := json.Marshal(inv.Format)
	if err != nil {
		return nil, apperrors.Wrap(err, "序列化模板失败")
	}
	fieldsJSON, err := json.Marshal(inv.Fields)
	if err != nil {
		return nil, apperrors.Wrap(err, "序列化字段配置失败")
	}

	return &InventoryModel{
		ID:           inv.ID,
		OwnerID:      inv.OwnerID,
		Title:        inv.Title,
		Description:  inv.Description,
		Category:     inv.Category,
		ImageURL:     inv.ImageURL,
		IsPublic:     inv.IsPublic,
		Format:       string(formatJSON),
		NextSequence: inv.NextSequence,
		Version:      inv.Version,
		Fields:       string(fieldsJSON),
	}, nil
}

// toInventoryEntity GORM模型 → 领域实体
func toInventoryEntity(model *InventoryModel) (*inventory.Inventory, error) {
	var format inventory.Format
	if model.Format != "" {
		if err := json.Unmarshal([]byte(model.Format), &format); err != nil {
			return nil, apperrors.Wrap(err, "解析模板失败")
		}
	}

	var fields inventory.FieldConfig
	if model.Fields != "" {
		if err := json.Unmarshal([]byte(model.Fields), &fields); err != nil {
			return nil, apperrors.Wrap(err, "解析字段配置失败")
		}
	}

	return &inventory.Inventory{
		ID:           model.ID,
		OwnerID:      model.OwnerID,
		Title:        model.Title,
		Description:  model.Description,
		Category:     model.Category,
		ImageURL:     model.ImageURL,
		IsPublic:     model.IsPublic,
		Format:       format,
		NextSequence: model.NextSequence,
		Version:      model.Version,
		Fields:       fields,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}, nil
}

// toInventoryEntities 批量转换
func toInventoryEntities(models []InventoryModel, total int64) ([]*inventory.Inventory, int64, error) {
	invs := make([]*inventory.Inventory, len(models))
	for i := range models {
		inv, err := toInventoryEntity(&models[i])
		if err != nil {
			return nil, 0, err
		}
		invs[i] = inv
	}
	return invs, total, nil
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *inventoryRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
