package inventory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	domain "github.com/xiebiao/inventoryhub/internal/domain/inventory"
	"github.com/xiebiao/inventoryhub/internal/infrastructure/search"
)

// =========================================
// 内存Fake(串行化事务模拟行锁)
// =========================================

// fakeTx 用互斥锁模拟数据库行锁:同一时刻只有一个事务在执行
type fakeTx struct {
	mu sync.Mutex
}

func (t *fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

// fakeInvRepo 内存清单仓储
type fakeInvRepo struct {
	mu     sync.Mutex
	invs   map[uint]*domain.Inventory
	grants map[uint][]domain.AccessGrant
}

func newFakeInvRepo(invs ...*domain.Inventory) *fakeInvRepo {
	r := &fakeInvRepo{
		invs:   make(map[uint]*domain.Inventory),
		grants: make(map[uint][]domain.AccessGrant),
	}
	for _, inv := range invs {
		r.invs[inv.ID] = inv
	}
	return r
}

func (r *fakeInvRepo) Create(ctx context.Context, inv *domain.Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv.ID = uint(len(r.invs) + 1)
	r.invs[inv.ID] = inv
	return nil
}

func (r *fakeInvRepo) FindByID(ctx context.Context, id uint) (*domain.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invs[id]
	if !ok {
		return nil, domain.ErrInventoryNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvRepo) LockByID(ctx context.Context, id uint) (*domain.Inventory, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeInvRepo) Update(ctx context.Context, inv *domain.Inventory, check domain.VersionCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.invs[inv.ID]
	if !ok {
		return domain.ErrInventoryNotFound
	}
	if !check.Matches(cur.Version) {
		return domain.ErrVersionConflict
	}
	inv.Version = cur.Version + 1
	cp := *inv
	r.invs[inv.ID] = &cp
	return nil
}

func (r *fakeInvRepo) UpdateNumbering(ctx context.Context, inv *domain.Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.invs[inv.ID]
	if !ok {
		return domain.ErrInventoryNotFound
	}
	cur.Format = inv.Format
	cur.NextSequence = inv.NextSequence
	return nil
}

func (r *fakeInvRepo) UpdateNextSequence(ctx context.Context, id uint, next uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.invs[id]
	if !ok {
		return domain.ErrInventoryNotFound
	}
	cur.NextSequence = next
	return nil
}

func (r *fakeInvRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invs, id)
	return nil
}

func (r *fakeInvRepo) List(ctx context.Context, params domain.ListParams) ([]*domain.Inventory, int64, error) {
	return nil, 0, nil
}

func (r *fakeInvRepo) ListAccessible(ctx context.Context, userID uint, page, pageSize int) ([]*domain.Inventory, int64, error) {
	return nil, 0, nil
}

func (r *fakeInvRepo) ListLatest(ctx context.Context, limit int) ([]*domain.Inventory, error) {
	return nil, nil
}

func (r *fakeInvRepo) ListPopular(ctx context.Context, limit int) ([]*domain.Inventory, error) {
	return nil, nil
}

func (r *fakeInvRepo) ListGrants(ctx context.Context, inventoryID uint) ([]domain.AccessGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.grants[inventoryID], nil
}

func (r *fakeInvRepo) ReplaceGrants(ctx context.Context, inventoryID uint, userIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	grants := make([]domain.AccessGrant, len(userIDs))
	for i, uid := range userIDs {
		grants[i] = domain.AccessGrant{InventoryID: inventoryID, UserID: uid}
	}
	r.grants[inventoryID] = grants
	return nil
}

// fakeItemRepo 内存物品仓储,维护(清单, CustomID)唯一约束
type fakeItemRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]*domain.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uint]*domain.Item)}
}

func (r *fakeItemRepo) Create(ctx context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.InventoryID == item.InventoryID && existing.CustomID == item.CustomID {
			return domain.ErrCustomIDDuplicate
		}
	}
	r.nextID++
	item.ID = r.nextID
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) FindByID(ctx context.Context, id uint) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeItemRepo) Update(ctx context.Context, item *domain.Item, check domain.VersionCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[item.ID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if !check.Matches(cur.Version) {
		return domain.ErrVersionConflict
	}
	for _, existing := range r.items {
		if existing.ID != item.ID && existing.InventoryID == item.InventoryID && existing.CustomID == item.CustomID {
			return domain.ErrCustomIDDuplicate
		}
	}
	item.Version = cur.Version + 1
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeItemRepo) ListByInventory(ctx context.Context, inventoryID uint, page, pageSize int) ([]*domain.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Item
	for _, item := range r.items {
		if item.InventoryID == inventoryID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeItemRepo) CountByInventory(ctx context.Context, inventoryID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, item := range r.items {
		if item.InventoryID == inventoryID {
			n++
		}
	}
	return n, nil
}

// stubIndex 无操作的索引stub
type stubIndex struct{}

func (stubIndex) UpsertInventory(ctx context.Context, doc *search.InventoryDoc) {}
func (stubIndex) UpsertItem(ctx context.Context, doc *search.ItemDoc)           {}
func (stubIndex) RemoveInventory(ctx context.Context, inventoryID uint)         {}
func (stubIndex) RemoveItem(ctx context.Context, itemID, inventoryID uint)      {}

// =========================================
// 测试
// =========================================

func newTestInventory(id, ownerID uint, format domain.Format) *domain.Inventory {
	inv := domain.NewInventory(ownerID, "办公设备", "", "equipment", false)
	inv.ID = id
	inv.Format = format
	return inv
}

func ownerActor(id uint) *domain.Actor {
	return &domain.Actor{ID: id}
}

// TestCreateItem_TemplateRendering 模板渲染:前缀+4位补零序号
func TestCreateItem_TemplateRendering(t *testing.T) {
	format := domain.Format{
		{Type: domain.SegmentText, Value: "INV-"},
		{Type: domain.SegmentSequence, MinWidth: 4},
	}
	invRepo := newFakeInvRepo(newTestInventory(1, 100, format))
	itemRepo := newFakeItemRepo()
	uc := NewCreateItemUseCase(invRepo, itemRepo, &fakeTx{}, stubIndex{}, nil)

	first, err := uc.Execute(context.Background(), CreateItemRequest{
		InventoryID: 1, Actor: ownerActor(100), Name: "显示器",
	})
	if err != nil {
		t.Fatalf("第一次创建失败: %v", err)
	}
	second, err := uc.Execute(context.Background(), CreateItemRequest{
		InventoryID: 1, Actor: ownerActor(100), Name: "键盘",
	})
	if err != nil {
		t.Fatalf("第二次创建失败: %v", err)
	}

	if first.CustomID != "INV-0001" {
		t.Errorf("期望INV-0001，实际%s", first.CustomID)
	}
	if second.CustomID != "INV-0002" {
		t.Errorf("期望INV-0002，实际%s", second.CustomID)
	}

	inv, _ := invRepo.FindByID(context.Background(), 1)
	if inv.NextSequence != 3 {
		t.Errorf("期望计数器推进到3，实际%d", inv.NextSequence)
	}
}

// TestCreateItem_ConcurrentNoDuplicates 并发创建不重号不跳号
func TestCreateItem_ConcurrentNoDuplicates(t *testing.T) {
	const n = 50

	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{
		{Type: domain.SegmentSequence, MinWidth: 3},
	}))
	itemRepo := newFakeItemRepo()
	uc := NewCreateItemUseCase(invRepo, itemRepo, &fakeTx{}, stubIndex{}, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[uint64]bool)
	customIDs := make(map[string]bool)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := uc.Execute(context.Background(), CreateItemRequest{
				InventoryID: 1, Actor: ownerActor(100), Name: fmt.Sprintf("物品-%d", i),
			})
			if err != nil {
				t.Errorf("并发创建失败: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[resp.Sequence] {
				t.Errorf("序号%d被重复发放", resp.Sequence)
			}
			seen[resp.Sequence] = true
			if customIDs[resp.CustomID] {
				t.Errorf("CustomID %s重复", resp.CustomID)
			}
			customIDs[resp.CustomID] = true
		}(i)
	}
	wg.Wait()

	// 序号集合恰好是{1..n}:无跳号
	for seq := uint64(1); seq <= n; seq++ {
		if !seen[seq] {
			t.Errorf("序号%d缺失(跳号)", seq)
		}
	}

	inv, _ := invRepo.FindByID(context.Background(), 1)
	if inv.NextSequence != n+1 {
		t.Errorf("期望计数器为%d，实际%d", n+1, inv.NextSequence)
	}
}

// TestCreateItem_ExplicitCustomID 自带ID不消费序号
func TestCreateItem_ExplicitCustomID(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{
		{Type: domain.SegmentSequence, MinWidth: 4},
	}))
	itemRepo := newFakeItemRepo()
	uc := NewCreateItemUseCase(invRepo, itemRepo, &fakeTx{}, stubIndex{}, nil)

	resp, err := uc.Execute(context.Background(), CreateItemRequest{
		InventoryID: 1, Actor: ownerActor(100), Name: "特殊物品", CustomID: "X",
	})
	if err != nil {
		t.Fatalf("自带ID创建失败: %v", err)
	}
	if resp.CustomID != "X" {
		t.Errorf("期望CustomID=X，实际%s", resp.CustomID)
	}
	if resp.Sequence != 0 {
		t.Errorf("自带ID不应消费序号，实际Sequence=%d", resp.Sequence)
	}

	inv, _ := invRepo.FindByID(context.Background(), 1)
	if inv.NextSequence != 1 {
		t.Errorf("自带ID不应推进计数器，实际%d", inv.NextSequence)
	}
}

// TestCreateItem_DuplicateCustomID 重复自带ID返回冲突,计数器不动
func TestCreateItem_DuplicateCustomID(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	itemRepo := newFakeItemRepo()
	uc := NewCreateItemUseCase(invRepo, itemRepo, &fakeTx{}, stubIndex{}, nil)

	if _, err := uc.Execute(context.Background(), CreateItemRequest{
		InventoryID: 1, Actor: ownerActor(100), Name: "第一个", CustomID: "X",
	}); err != nil {
		t.Fatalf("第一次创建失败: %v", err)
	}

	_, err := uc.Execute(context.Background(), CreateItemRequest{
		InventoryID: 1, Actor: ownerActor(100), Name: "第二个", CustomID: "X",
	})
	if err != domain.ErrCustomIDDuplicate {
		t.Errorf("期望ErrCustomIDDuplicate，实际%v", err)
	}

	inv, _ := invRepo.FindByID(context.Background(), 1)
	if inv.NextSequence != 1 {
		t.Errorf("冲突不应推进计数器，实际%d", inv.NextSequence)
	}
}

// TestCreateItem_EmptyFormatFallsBackToSequence 空模板退化为纯序号
func TestCreateItem_EmptyFormatFallsBackToSequence(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	itemRepo := newFakeItemRepo()
	uc := NewCreateItemUseCase(invRepo, itemRepo, &fakeTx{}, stubIndex{}, nil)

	resp, err := uc.Execute(context.Background(), CreateItemRequest{
		InventoryID: 1, Actor: ownerActor(100), Name: "物品",
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if resp.CustomID != "1" {
		t.Errorf("空模板期望CustomID=1，实际%s", resp.CustomID)
	}
}

// TestCreateItem_NotFoundBeforeForbidden 清单不存在优先于无权限
func TestCreateItem_NotFoundBeforeForbidden(t *testing.T) {
	invRepo := newFakeInvRepo() // 空仓储
	uc := NewCreateItemUseCase(invRepo, newFakeItemRepo(), &fakeTx{}, stubIndex{}, nil)

	_, err := uc.Execute(context.Background(), CreateItemRequest{
		InventoryID: 999, Actor: nil, Name: "物品",
	})
	if err != domain.ErrInventoryNotFound {
		t.Errorf("期望ErrInventoryNotFound，实际%v", err)
	}
}

// TestCreateItem_ForbiddenForStranger 无关用户不能创建物品
func TestCreateItem_ForbiddenForStranger(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	uc := NewCreateItemUseCase(invRepo, newFakeItemRepo(), &fakeTx{}, stubIndex{}, nil)

	_, err := uc.Execute(context.Background(), CreateItemRequest{
		InventoryID: 1, Actor: ownerActor(999), Name: "物品",
	})
	if err != domain.ErrForbidden {
		t.Errorf("期望ErrForbidden，实际%v", err)
	}
}

// TestCreateItem_GranteeCanCreate 授权用户可创建物品
func TestCreateItem_GranteeCanCreate(t *testing.T) {
	invRepo := newFakeInvRepo(newTestInventory(1, 100, domain.Format{}))
	invRepo.ReplaceGrants(context.Background(), 1, []uint{200})
	uc := NewCreateItemUseCase(invRepo, newFakeItemRepo(), &fakeTx{}, stubIndex{}, nil)

	if _, err := uc.Execute(context.Background(), CreateItemRequest{
		InventoryID: 1, Actor: ownerActor(200), Name: "物品",
	}); err != nil {
		t.Errorf("授权用户创建失败: %v", err)
	}
}
