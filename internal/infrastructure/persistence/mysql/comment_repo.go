package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	apperrors "github.com/xiebiao/inventoryhub/pkg/errors"
)

// commentRepository 评论仓储实现(MySQL)
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository 创建评论仓储
func NewCommentRepository(db *gorm.DB) inventory.CommentRepository {
	return &commentRepository{db: db}
}

// Create 创建评论
func (r *commentRepository) Create(ctx context.Context, c *inventory.Comment) error {
	model := &CommentModel{
		InventoryID: c.InventoryID,
		UserID:      c.UserID,
		UserName:    c.UserName,
		Body:        c.Body,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建评论失败")
	}

	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	return nil
}

// FindByID 根据ID查找评论
func (r *commentRepository) FindByID(ctx context.Context, id uint) (*inventory.Comment, error) {
	var model CommentModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "评论不存在")
		}
		return nil, apperrors.Wrap(err, "查询评论失败")
	}
	return toCommentEntity(&model), nil
}

// ListByInventory 分页查询清单评论(新的在前)
func (r *commentRepository) ListByInventory(ctx context.Context, inventoryID uint, page, pageSize int) ([]*inventory.Comment, int64, error) {
	var models []CommentModel
	var total int64

	query := r.db.WithContext(ctx).Model(&CommentModel{}).Where("inventory_id = ?", inventoryID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询评论总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Limit(pageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询评论列表失败")
	}

	comments := make([]*inventory.Comment, len(models))
	for i := range models {
		comments[i] = toCommentEntity(&models[i])
	}
	return comments, total, nil
}

// Delete 删除评论
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&CommentModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除评论失败")
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.ErrCodeNotFound, "评论不存在")
	}
	return nil
}

// toCommentEntity GORM模型 → 领域实体
func toCommentEntity(model *CommentModel) *inventory.Comment {
	return &inventory.Comment{
		ID:          model.ID,
		InventoryID: model.InventoryID,
		UserID:      model.UserID,
		UserName:    model.UserName,
		Body:        model.Body,
		CreatedAt:   model.CreatedAt,
	}
}
