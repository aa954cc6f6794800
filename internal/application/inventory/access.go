package inventory

import (
	"context"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
	"github.com/xiebiao/inventoryhub/internal/domain/user"
)

// ManageAccessUseCase 访问授权管理用例
// 只有所有者和管理员可以查看/编辑授权名单
type ManageAccessUseCase struct {
	invRepo  inventory.Repository
	userRepo user.Repository
}

// NewManageAccessUseCase 创建访问授权管理用例
func NewManageAccessUseCase(invRepo inventory.Repository, userRepo user.Repository) *ManageAccessUseCase {
	return &ManageAccessUseCase{invRepo: invRepo, userRepo: userRepo}
}

// GrantView 授权条目DTO
type GrantView struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// canManage 授权名单管理权限:所有者或管理员
func (uc *ManageAccessUseCase) canManage(ctx context.Context, inventoryID uint, actor *inventory.Actor) (*inventory.Inventory, error) {
	return loadInventoryForOwner(ctx, uc.invRepo, inventoryID, actor)
}

// ListGrants 查询授权名单(附带用户展示信息)
func (uc *ManageAccessUseCase) ListGrants(ctx context.Context, inventoryID uint, actor *inventory.Actor) ([]*GrantView, error) {
	if _, err := uc.canManage(ctx, inventoryID, actor); err != nil {
		return nil, err
	}

	grants, err := uc.invRepo.ListGrants(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	views := make([]*GrantView, 0, len(grants))
	for _, g := range grants {
		view := &GrantView{UserID: g.UserID}
		if u, err := uc.userRepo.FindByID(ctx, g.UserID); err == nil {
			view.Name = u.Name
			view.Email = u.Email
		}
		views = append(views, view)
	}
	return views, nil
}

// ReplaceGrants 整体替换授权名单
// 所有者无需出现在名单里(所有者身份天然可写);
// 名单中的用户必须真实存在
func (uc *ManageAccessUseCase) ReplaceGrants(ctx context.Context, inventoryID uint, actor *inventory.Actor, userIDs []uint) error {
	inv, err := uc.canManage(ctx, inventoryID, actor)
	if err != nil {
		return err
	}

	filtered := make([]uint, 0, len(userIDs))
	for _, id := range userIDs {
		if id == inv.OwnerID {
			continue // 所有者不进授权名单
		}
		if _, err := uc.userRepo.FindByID(ctx, id); err != nil {
			return err
		}
		filtered = append(filtered, id)
	}

	return uc.invRepo.ReplaceGrants(ctx, inventoryID, filtered)
}
