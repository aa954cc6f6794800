package search

import (
	"context"
	"errors"
	"testing"
	"time"

	infra "github.com/xiebiao/inventoryhub/internal/infrastructure/search"
	apperrors "github.com/xiebiao/inventoryhub/pkg/errors"
)

// stubBackend 可编程的搜索后端stub
type stubBackend struct {
	ready   bool
	invDocs []infra.InventoryDoc
	items   []infra.ItemDoc
	err     error
}

func (s *stubBackend) Ready() bool { return s.ready }

func (s *stubBackend) QueryInventories(ctx context.Context, q, sortBy string) ([]infra.InventoryDoc, error) {
	return s.invDocs, s.err
}

func (s *stubBackend) QueryItems(ctx context.Context, q, sortBy string) ([]infra.ItemDoc, error) {
	return s.items, s.err
}

func makeInvDocs(n int) []infra.InventoryDoc {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := make([]infra.InventoryDoc, n)
	for i := range docs {
		docs[i] = infra.InventoryDoc{ID: uint(i + 1), Title: "清单", CreatedAt: base}
	}
	return docs
}

func makeItemDocs(n int) []infra.ItemDoc {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := make([]infra.ItemDoc, n)
	for i := range docs {
		docs[i] = infra.ItemDoc{ID: uint(i + 1), Name: "物品", CreatedAt: base}
	}
	return docs
}

// TestSearch_QueryTooShort 关键词过短直接拒绝
func TestSearch_QueryTooShort(t *testing.T) {
	uc := NewUseCase(&stubBackend{ready: true})

	for _, q := range []string{"", "a", "  a  ", " 中 "} {
		_, err := uc.Execute(context.Background(), Request{Query: q})
		if err != apperrors.ErrQueryTooShort {
			t.Errorf("q=%q期望ErrQueryTooShort，实际%v", q, err)
		}
	}

	// 两个rune的中文关键词是合法的
	if _, err := uc.Execute(context.Background(), Request{Query: "设备"}); err != nil {
		t.Errorf("两字中文关键词应合法: %v", err)
	}
}

// TestSearch_NotReadyReturnsUnavailable 索引未就绪返回服务不可用而非空结果
func TestSearch_NotReadyReturnsUnavailable(t *testing.T) {
	uc := NewUseCase(&stubBackend{ready: false})

	resp, err := uc.Execute(context.Background(), Request{Query: "laptop"})
	if err != apperrors.ErrSearchUnavailable {
		t.Fatalf("期望ErrSearchUnavailable，实际err=%v resp=%v", err, resp)
	}
}

// TestSearch_BackendErrorPropagates 后端错误透传,不吞成空结果
func TestSearch_BackendErrorPropagates(t *testing.T) {
	backendErr := errors.New("redis: connection refused")
	uc := NewUseCase(&stubBackend{ready: true, err: backendErr})

	_, err := uc.Execute(context.Background(), Request{Query: "laptop"})
	if err == nil {
		t.Fatal("期望错误透传，实际为nil")
	}
}

// TestSearch_HalfQuotaPerClass 每类占每页配额的一半(向上取整)
func TestSearch_HalfQuotaPerClass(t *testing.T) {
	uc := NewUseCase(&stubBackend{
		ready:   true,
		invDocs: makeInvDocs(10),
		items:   makeItemDocs(10),
	})

	resp, err := uc.Execute(context.Background(), Request{Query: "laptop", Size: 9})
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}

	// size=9 → 每类ceil(9/2)=5
	if len(resp.Inventories) != 5 {
		t.Errorf("期望5条清单，实际%d", len(resp.Inventories))
	}
	if len(resp.Items) != 5 {
		t.Errorf("期望5条物品，实际%d", len(resp.Items))
	}
}

// TestSearch_PerClassMeta 分页元数据按类独立计算
func TestSearch_PerClassMeta(t *testing.T) {
	uc := NewUseCase(&stubBackend{
		ready:   true,
		invDocs: makeInvDocs(23),
		items:   makeItemDocs(3),
	})

	resp, err := uc.Execute(context.Background(), Request{Query: "laptop", Page: 2, Size: 20})
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}

	// 每类10条/页:清单23条 → 3页,第2页满额10条
	if resp.InventoryMeta.Total != 23 || resp.InventoryMeta.TotalPages != 3 {
		t.Errorf("清单元数据错误: %+v", resp.InventoryMeta)
	}
	if len(resp.Inventories) != 10 {
		t.Errorf("第2页期望10条清单，实际%d", len(resp.Inventories))
	}

	// 物品3条 → 1页,第2页为空但total不变
	if resp.ItemMeta.Total != 3 || resp.ItemMeta.TotalPages != 1 {
		t.Errorf("物品元数据错误: %+v", resp.ItemMeta)
	}
	if len(resp.Items) != 0 {
		t.Errorf("越界页期望空结果，实际%d条", len(resp.Items))
	}
}

// TestSearch_EmptyHitIsValid 就绪状态下零命中返回空200语义(非错误)
func TestSearch_EmptyHitIsValid(t *testing.T) {
	uc := NewUseCase(&stubBackend{ready: true})

	resp, err := uc.Execute(context.Background(), Request{Query: "不存在的词"})
	if err != nil {
		t.Fatalf("零命中不应报错: %v", err)
	}
	if resp.InventoryMeta.Total != 0 || resp.ItemMeta.Total != 0 {
		t.Errorf("期望零命中,实际%+v %+v", resp.InventoryMeta, resp.ItemMeta)
	}
}
