package inventory

import (
	"context"
	"testing"

	domain "github.com/xiebiao/inventoryhub/internal/domain/inventory"
	userdomain "github.com/xiebiao/inventoryhub/internal/domain/user"
	apperrors "github.com/xiebiao/inventoryhub/pkg/errors"
)

func intPtr(v int) *int { return &v }

// fakeTagRepo 无操作的标签仓储stub
type fakeTagRepo struct{}

func (fakeTagRepo) GetOrCreate(ctx context.Context, name string) (*domain.Tag, error) {
	return &domain.Tag{ID: 1, Name: name}, nil
}
func (fakeTagRepo) ListByInventory(ctx context.Context, inventoryID uint) ([]domain.Tag, error) {
	return nil, nil
}
func (fakeTagRepo) ReplaceForInventory(ctx context.Context, inventoryID uint, tagIDs []uint) error {
	return nil
}
func (fakeTagRepo) ListAll(ctx context.Context) ([]domain.Tag, error) { return nil, nil }

// fakeUserRepo 无操作的用户仓储stub
type fakeUserRepo struct{}

func (fakeUserRepo) Create(ctx context.Context, u *userdomain.User) error { return nil }
func (fakeUserRepo) FindByID(ctx context.Context, id uint) (*userdomain.User, error) {
	return &userdomain.User{ID: id, Name: "测试用户"}, nil
}
func (fakeUserRepo) FindByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return nil, apperrors.ErrUserNotFound
}
func (fakeUserRepo) Update(ctx context.Context, u *userdomain.User) error { return nil }
func (fakeUserRepo) Delete(ctx context.Context, id uint) error            { return nil }
func (fakeUserRepo) SearchByKeyword(ctx context.Context, keyword string, limit int) ([]*userdomain.User, error) {
	return nil, nil
}

func seedItem(t *testing.T, itemRepo *fakeItemRepo, inventoryID uint, name, customID string) *domain.Item {
	t.Helper()
	item := domain.NewItem(inventoryID, name, customID, 0, nil, 100)
	if err := itemRepo.Create(context.Background(), item); err != nil {
		t.Fatalf("预置物品失败: %v", err)
	}
	return item
}

// TestUpdateItem_Unconditional 不携带版本号:last-writer-wins
func TestUpdateItem_Unconditional(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	itemRepo := newFakeItemRepo()
	item := seedItem(t, itemRepo, 1, "旧名称", "A-1")
	uc := NewUpdateItemUseCase(invRepo, itemRepo, stubIndex{}, nil)

	resp, err := uc.Execute(context.Background(), UpdateItemRequest{
		InventoryID: 1, ItemID: item.ID, Actor: ownerActor(100), Name: "新名称",
	})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if resp.Version != 2 {
		t.Errorf("期望版本推进到2，实际%d", resp.Version)
	}

	saved, _ := itemRepo.FindByID(context.Background(), item.ID)
	if saved.Name != "新名称" {
		t.Errorf("名称未更新: %s", saved.Name)
	}
}

// TestUpdateItem_VersionMatch 携带匹配版本号:接受并推进版本
func TestUpdateItem_VersionMatch(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	itemRepo := newFakeItemRepo()
	item := seedItem(t, itemRepo, 1, "名称", "A-1")
	uc := NewUpdateItemUseCase(invRepo, itemRepo, stubIndex{}, nil)

	resp, err := uc.Execute(context.Background(), UpdateItemRequest{
		InventoryID: 1, ItemID: item.ID, Actor: ownerActor(100),
		Name: "新名称", Version: intPtr(1),
	})
	if err != nil {
		t.Fatalf("版本匹配时更新失败: %v", err)
	}
	if resp.Version != 2 {
		t.Errorf("期望版本2，实际%d", resp.Version)
	}
}

// TestUpdateItem_StaleVersionRejected 过期版本被拒绝,不产生任何修改
func TestUpdateItem_StaleVersionRejected(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	itemRepo := newFakeItemRepo()
	item := seedItem(t, itemRepo, 1, "名称", "A-1")
	uc := NewUpdateItemUseCase(invRepo, itemRepo, stubIndex{}, nil)

	// 第一次更新把版本推到2
	if _, err := uc.Execute(context.Background(), UpdateItemRequest{
		InventoryID: 1, ItemID: item.ID, Actor: ownerActor(100), Name: "第一次",
	}); err != nil {
		t.Fatalf("第一次更新失败: %v", err)
	}

	// 携带旧版本1的更新必须被拒绝
	_, err := uc.Execute(context.Background(), UpdateItemRequest{
		InventoryID: 1, ItemID: item.ID, Actor: ownerActor(100),
		Name: "第二次", Version: intPtr(1),
	})
	if err != domain.ErrVersionConflict {
		t.Fatalf("期望ErrVersionConflict，实际%v", err)
	}

	saved, _ := itemRepo.FindByID(context.Background(), item.ID)
	if saved.Name != "第一次" {
		t.Errorf("冲突更新不应产生修改，实际名称=%s", saved.Name)
	}
	if saved.Version != 2 {
		t.Errorf("冲突更新不应推进版本，实际%d", saved.Version)
	}
}

// TestUpdateItem_DuplicateCustomID 改成已存在的CustomID返回冲突
func TestUpdateItem_DuplicateCustomID(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	itemRepo := newFakeItemRepo()
	seedItem(t, itemRepo, 1, "甲", "A-1")
	second := seedItem(t, itemRepo, 1, "乙", "A-2")
	uc := NewUpdateItemUseCase(invRepo, itemRepo, stubIndex{}, nil)

	_, err := uc.Execute(context.Background(), UpdateItemRequest{
		InventoryID: 1, ItemID: second.ID, Actor: ownerActor(100), CustomID: "A-1",
	})
	if err != domain.ErrCustomIDDuplicate {
		t.Errorf("期望ErrCustomIDDuplicate，实际%v", err)
	}
}

// TestUpdateItem_WrongInventory 物品不属于该清单按不存在处理
func TestUpdateItem_WrongInventory(t *testing.T) {
	invRepo := newFakeInvRepo(
		newTestInventory(1, 100, domain.Format{}),
		newTestInventory(2, 100, domain.Format{}),
	)
	itemRepo := newFakeItemRepo()
	item := seedItem(t, itemRepo, 2, "名称", "A-1")
	uc := NewUpdateItemUseCase(invRepo, itemRepo, stubIndex{}, nil)

	_, err := uc.Execute(context.Background(), UpdateItemRequest{
		InventoryID: 1, ItemID: item.ID, Actor: ownerActor(100), Name: "新名称",
	})
	if err != domain.ErrItemNotFound {
		t.Errorf("期望ErrItemNotFound，实际%v", err)
	}
}

// TestDeleteItem 删除后物品不可见
func TestDeleteItem(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	itemRepo := newFakeItemRepo()
	item := seedItem(t, itemRepo, 1, "名称", "A-1")
	uc := NewDeleteItemUseCase(invRepo, itemRepo, stubIndex{}, nil)

	if err := uc.Execute(context.Background(), 1, item.ID, ownerActor(100)); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := itemRepo.FindByID(context.Background(), item.ID); err != domain.ErrItemNotFound {
		t.Errorf("删除后期望不存在，实际%v", err)
	}
}

// TestUpdateNumbering_IndependentFields 模板与计数器各自独立生效
func TestUpdateNumbering_IndependentFields(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	uc := NewUpdateNumberingUseCase(invRepo)

	// 只改模板
	format := domain.Format{{Type: domain.SegmentText, Value: "EQ-"}, {Type: domain.SegmentSequence, MinWidth: 3}}
	resp, err := uc.Execute(context.Background(), UpdateNumberingRequest{
		InventoryID: 1, Actor: ownerActor(100), Format: &format,
	})
	if err != nil {
		t.Fatalf("更新模板失败: %v", err)
	}
	if resp.NextSequence != 1 {
		t.Errorf("只改模板不应动计数器，实际%d", resp.NextSequence)
	}

	// 只重置计数器(重置到0也是合法输入)
	var zero uint64
	resp, err = uc.Execute(context.Background(), UpdateNumberingRequest{
		InventoryID: 1, Actor: ownerActor(100), ResetSequenceTo: &zero,
	})
	if err != nil {
		t.Fatalf("重置计数器失败: %v", err)
	}
	if resp.NextSequence != 0 {
		t.Errorf("期望计数器重置为0，实际%d", resp.NextSequence)
	}
	if len(resp.Format) != 2 {
		t.Errorf("重置计数器不应动模板，实际段数%d", len(resp.Format))
	}
}

// TestUpdateNumbering_OwnerOnly 编号规则是清单级管理操作:
// 授权用户有物品写权限,但不能改模板或重置计数器
func TestUpdateNumbering_OwnerOnly(t *testing.T) {
	inv := newTestInventory(1, 100, domain.Format{})
	inv.NextSequence = 42
	invRepo := newFakeInvRepo(inv)
	invRepo.ReplaceGrants(context.Background(), 1, []uint{200})
	uc := NewUpdateNumberingUseCase(invRepo)

	var zero uint64
	_, err := uc.Execute(context.Background(), UpdateNumberingRequest{
		InventoryID: 1, Actor: ownerActor(200), ResetSequenceTo: &zero,
	})
	if err != domain.ErrForbidden {
		t.Fatalf("授权用户重置计数器期望ErrForbidden，实际%v", err)
	}

	saved, _ := invRepo.FindByID(context.Background(), 1)
	if saved.NextSequence != 42 {
		t.Errorf("被拒绝的重置不应生效，实际计数器%d", saved.NextSequence)
	}

	// 管理员不受所有权限制
	admin := &domain.Actor{ID: 300, IsAdmin: true}
	resp, err := uc.Execute(context.Background(), UpdateNumberingRequest{
		InventoryID: 1, Actor: admin, ResetSequenceTo: &zero,
	})
	if err != nil {
		t.Fatalf("管理员重置计数器失败: %v", err)
	}
	if resp.NextSequence != 0 {
		t.Errorf("期望计数器重置为0，实际%d", resp.NextSequence)
	}
}

// TestUpdateNumbering_InvalidFormat 结构性非法模板被拒绝
func TestUpdateNumbering_InvalidFormat(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	uc := NewUpdateNumberingUseCase(invRepo)

	bad := domain.Format{{Type: domain.SegmentText}} // text段缺少值
	_, err := uc.Execute(context.Background(), UpdateNumberingRequest{
		InventoryID: 1, Actor: ownerActor(100), Format: &bad,
	})
	if err != domain.ErrInvalidSegment {
		t.Errorf("期望ErrInvalidSegment，实际%v", err)
	}
}

// TestUpdateInventory_ApplyFieldConfig 自定义字段配置经校验后随清单更新生效
func TestUpdateInventory_ApplyFieldConfig(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	uc := NewUpdateInventoryUseCase(invRepo, newFakeItemRepo(), fakeTagRepo{}, fakeUserRepo{}, stubIndex{})

	fields := domain.FieldConfig{}
	fields.Strings[0] = domain.FieldSlot{State: true, Name: "序列号"}
	fields.Ints[0] = domain.FieldSlot{State: true, Name: "数量"}

	resp, err := uc.Execute(context.Background(), UpdateInventoryRequest{
		InventoryID: 1, Actor: ownerActor(100), Fields: &fields, Version: intPtr(1),
	})
	if err != nil {
		t.Fatalf("应用字段配置失败: %v", err)
	}
	if resp.Version != 2 {
		t.Errorf("期望版本推进到2，实际%d", resp.Version)
	}

	saved, _ := invRepo.FindByID(context.Background(), 1)
	if !saved.Fields.Strings[0].State || saved.Fields.Strings[0].Name != "序列号" {
		t.Errorf("字段配置未落库: %+v", saved.Fields.Strings[0])
	}

	// 启用但未命名的槽位被拒绝,且不产生任何修改
	bad := domain.FieldConfig{}
	bad.Bools[1] = domain.FieldSlot{State: true}
	_, err = uc.Execute(context.Background(), UpdateInventoryRequest{
		InventoryID: 1, Actor: ownerActor(100), Fields: &bad,
	})
	if err != domain.ErrInvalidFieldSlot {
		t.Fatalf("期望ErrInvalidFieldSlot，实际%v", err)
	}
	saved, _ = invRepo.FindByID(context.Background(), 1)
	if saved.Version != 2 {
		t.Errorf("被拒绝的配置不应推进版本，实际%d", saved.Version)
	}
}

// TestUpdateInventory_VersionConflict 清单乐观锁:错误版本冲突,不带版本直通
func TestUpdateInventory_VersionConflict(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	uc := NewUpdateInventoryUseCase(invRepo, newFakeItemRepo(), fakeTagRepo{}, fakeUserRepo{}, stubIndex{})

	// 清单初始版本为1,携带版本2必须冲突
	_, err := uc.Execute(context.Background(), UpdateInventoryRequest{
		InventoryID: 1, Actor: ownerActor(100), Title: "新标题", Version: intPtr(2),
	})
	if err != domain.ErrVersionConflict {
		t.Errorf("期望ErrVersionConflict，实际%v", err)
	}

	// 不携带版本:成功
	resp, err := uc.Execute(context.Background(), UpdateInventoryRequest{
		InventoryID: 1, Actor: ownerActor(100), Title: "新标题",
	})
	if err != nil {
		t.Fatalf("无条件更新失败: %v", err)
	}
	if resp.Version != 2 {
		t.Errorf("期望版本2，实际%d", resp.Version)
	}
}
