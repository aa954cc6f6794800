package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	apperrors "github.com/xiebiao/inventoryhub/pkg/errors"
)

// likeRepository 点赞仓储实现(MySQL)
type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository 创建点赞仓储
func NewLikeRepository(db *gorm.DB) inventory.LikeRepository {
	return &likeRepository{db: db}
}

// Toggle 切换点赞状态
// 实现说明:
// 1. 先尝试插入,撞(item_id, user_id)唯一索引说明已点赞 → 删除(取消)
// 2. 并发下唯一索引保证同一用户对同一物品最多一条点赞记录
func (r *likeRepository) Toggle(ctx context.Context, itemID, userID uint) (bool, int64, error) {
	liked := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := LikeModel{ItemID: itemID, UserID: userID}
		err := tx.Create(&model).Error
		if err == nil {
			liked = true
			return nil
		}
		if !isDuplicateError(err) {
			return apperrors.Wrap(err, "点赞失败")
		}

		// 已点赞 → 取消
		result := tx.Where("item_id = ? AND user_id = ?", itemID, userID).Delete(&LikeModel{})
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "取消点赞失败")
		}
		liked = false
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	count, err := r.CountByItem(ctx, itemID)
	if err != nil {
		return liked, 0, err
	}
	return liked, count, nil
}

// CountByItem 统计物品点赞数
func (r *likeRepository) CountByItem(ctx context.Context, itemID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&LikeModel{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计点赞数失败")
	}
	return count, nil
}
