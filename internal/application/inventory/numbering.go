package inventory

import (
	"context"

	"github.com/xiebiao/inventoryhub/internal/domain/inventory"
)

// UpdateNumberingUseCase 更新编号规则用例
//
// 教学要点:编号规则与清单其他字段解耦
// 1. format和resetSequenceTo各自独立:可以只改模板、只重置计数器,或两者都改
// 2. 不参与乐观锁版本比对:改编号规则不会因为别人改了标题而失败
// 3. 模板校验是宽松的:未知段类型允许入库(渲染时产出空串),
//    只拒绝结构性非法(空类型/text段无值/负宽度)
// 4. 只有所有者和管理员可改:授权用户能写物品,
//    但不能改别人清单的编号规则
type UpdateNumberingUseCase struct {
	invRepo inventory.Repository
}

// NewUpdateNumberingUseCase 创建更新编号规则用例
func NewUpdateNumberingUseCase(invRepo inventory.Repository) *UpdateNumberingUseCase {
	return &UpdateNumberingUseCase{invRepo: invRepo}
}

// UpdateNumberingRequest 更新编号规则请求DTO
type UpdateNumberingRequest struct {
	InventoryID     uint
	Actor           *inventory.Actor
	Format          *inventory.Format // nil表示不修改模板
	ResetSequenceTo *uint64           // nil表示不重置计数器
}

// UpdateNumberingResponse 更新编号规则响应DTO
type UpdateNumberingResponse struct {
	InventoryID  uint             `json:"inventory_id"`
	Format       inventory.Format `json:"format"`
	NextSequence uint64           `json:"next_sequence"`
}

// Execute 执行更新编号规则用例
func (uc *UpdateNumberingUseCase) Execute(ctx context.Context, req UpdateNumberingRequest) (*UpdateNumberingResponse, error) {
	if req.Format != nil {
		if err := inventory.ValidateFormat(*req.Format); err != nil {
			return nil, err
		}
	}

	// not-found优先于forbidden;所有者/管理员专属
	inv, err := loadInventoryForOwner(ctx, uc.invRepo, req.InventoryID, req.Actor)
	if err != nil {
		return nil, err
	}

	inv.ApplyNumbering(req.Format, req.ResetSequenceTo)

	if err := uc.invRepo.UpdateNumbering(ctx, inv); err != nil {
		return nil, err
	}

	return &UpdateNumberingResponse{
		InventoryID:  inv.ID,
		Format:       inv.Format,
		NextSequence: inv.NextSequence,
	}, nil
}

// GetNumberingUseCase 查询编号规则用例
type GetNumberingUseCase struct {
	invRepo inventory.Repository
}

// NewGetNumberingUseCase 创建查询编号规则用例
func NewGetNumberingUseCase(invRepo inventory.Repository) *GetNumberingUseCase {
	return &GetNumberingUseCase{invRepo: invRepo}
}

// Execute 查询清单当前的ID模板和序号计数器
func (uc *GetNumberingUseCase) Execute(ctx context.Context, inventoryID uint, actor *inventory.Actor) (*UpdateNumberingResponse, error) {
	inv, err := loadInventoryForView(ctx, uc.invRepo, inventoryID, actor)
	if err != nil {
		return nil, err
	}

	return &UpdateNumberingResponse{
		InventoryID:  inv.ID,
		Format:       inv.Format,
		NextSequence: inv.NextSequence,
	}, nil
}
