package inventory

import (
	"context"
	"time"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	"github.com/xiebiao/inventoryhub/internal/domain/user"
	apperrors "github.com/xiebiao/inventoryhub/pkg/errors"
)

// CommentUseCase 清单评论用例
type CommentUseCase struct {
	invRepo     inventory.Repository
	commentRepo inventory.CommentRepository
	userRepo    user.Repository
}

// NewCommentUseCase 创建评论用例
func NewCommentUseCase(
	invRepo inventory.Repository,
	commentRepo inventory.CommentRepository,
	userRepo user.Repository,
) *CommentUseCase {
	return &CommentUseCase{invRepo: invRepo, commentRepo: commentRepo, userRepo: userRepo}
}

// CommentView 评论视图DTO
type CommentView struct {
	CommentID uint      `json:"comment_id"`
	UserID    uint      `json:"user_id"`
	UserName  string    `json:"user_name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Create 发表评论
// 需要登录且对清单有查看权限
func (uc *CommentUseCase) Create(ctx context.Context, inventoryID uint, actor *inventory.Actor, body string) (*CommentView, error) {
	if actor == nil {
		return nil, inventory.ErrForbidden
	}
	if body == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "评论内容不能为空")
	}

	if _, err := loadInventoryForView(ctx, uc.invRepo, inventoryID, actor); err != nil {
		return nil, err
	}

	// 冗余存储用户名,列表页免去N+1查询
	userName := ""
	if u, err := uc.userRepo.FindByID(ctx, actor.ID); err == nil {
		userName = u.Name
	}

	comment := &inventory.Comment{
		InventoryID: inventoryID,
		UserID:      actor.ID,
		UserName:    userName,
		Body:        body,
		CreatedAt:   time.Now(),
	}
	if err := uc.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return &CommentView{
		CommentID: comment.ID,
		UserID:    comment.UserID,
		UserName:  comment.UserName,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}, nil
}

// List 分页查询清单评论
func (uc *CommentUseCase) List(ctx context.Context, inventoryID uint, actor *inventory.Actor, page, pageSize int) ([]*CommentView, int64, error) {
	if _, err := loadInventoryForView(ctx, uc.invRepo, inventoryID, actor); err != nil {
		return nil, 0, err
	}

	page, pageSize = normalizePage(page, pageSize)
	comments, total, err := uc.commentRepo.ListByInventory(ctx, inventoryID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*CommentView, len(comments))
	for i, c := range comments {
		views[i] = &CommentView{
			CommentID: c.ID,
			UserID:    c.UserID,
			UserName:  c.UserName,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		}
	}
	return views, total, nil
}

// Delete 删除评论
// 评论作者、清单所有者、管理员三者可删
func (uc *CommentUseCase) Delete(ctx context.Context, inventoryID, commentID uint, actor *inventory.Actor) error {
	if actor == nil {
		return inventory.ErrForbidden
	}

	comment, err := uc.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.InventoryID != inventoryID {
		return apperrors.New(apperrors.ErrCodeNotFound, "评论不存在")
	}

	if !actor.IsAdmin && comment.UserID != actor.ID {
		inv, err := uc.invRepo.FindByID(ctx, inventoryID)
		if err != nil {
			return err
		}
		if !inv.IsOwnedBy(actor.ID) {
			return inventory.ErrForbidden
		}
	}

	return uc.commentRepo.Delete(ctx, commentID)
}

// ToggleLikeUseCase 物品点赞用例
// 重复点赞即取消(toggle语义)
type ToggleLikeUseCase struct {
	invRepo  inventory.Repository
	itemRepo inventory.ItemRepository
	likeRepo inventory.LikeRepository
}

// NewToggleLikeUseCase 创建点赞用例
func NewToggleLikeUseCase(
	invRepo inventory.Repository,
	itemRepo inventory.ItemRepository,
	likeRepo inventory.LikeRepository,
) *ToggleLikeUseCase {
	return &ToggleLikeUseCase{invRepo: invRepo, itemRepo: itemRepo, likeRepo: likeRepo}
}

// ToggleLikeResponse 点赞响应DTO
type ToggleLikeResponse struct {
	Liked bool  `json:"liked"` // 切换后的状态
	Likes int64 `json:"likes"` // 物品当前点赞总数
}

// Execute 切换点赞状态
func (uc *ToggleLikeUseCase) Execute(ctx context.Context, inventoryID, itemID uint, actor *inventory.Actor) (*ToggleLikeResponse, error) {
	if actor == nil {
		return nil, inventory.ErrForbidden
	}

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

	liked, likes, err := uc.likeRepo.Toggle(ctx, itemID, actor.ID)
	if err != nil {
		return nil, err
	}

	return &ToggleLikeResponse{Liked: liked, Likes: likes}, nil
}
