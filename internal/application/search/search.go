// Package search 搜索应用层用例
//
// 聚合器职责:
// 1. 入口校验:关键词trim后至少2个字符,否则参数错误
// 2. 可用性闸门:索引未就绪(未初始化/降级)时返回"服务不可用",
//    绝不返回空结果冒充"无命中"——空200会误导调用方
// 3. 双路并发:清单和物品两类文档并行查询,各占每页配额的一半(向上取整)
// 4. 分页元数据按类独立计算
package search

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/inventoryhub/internal/infrastructure/search"
	apperrors "github.com/xiebiao/inventoryhub/pkg/errors"
	"github.com/xiebiao/inventoryhub/pkg/metrics"
)

// Backend 搜索后端接口(由infrastructure/search.Indexer实现)
type Backend interface {
	Ready() bool
	QueryInventories(ctx context.Context, q, sortBy string) ([]search.InventoryDoc, error)
	QueryItems(ctx context.Context, q, sortBy string) ([]search.ItemDoc, error)
}

// UseCase 搜索用例
type UseCase struct {
	backend Backend
}

// NewUseCase 创建搜索用例
func NewUseCase(backend Backend) *UseCase {
	return &UseCase{backend: backend}
}

// Request 搜索请求DTO
type Request struct {
	Query  string
	Page   int    // 页码(从1开始)
	Size   int    // 每页总配额(两类文档平分)
	SortBy string // newest/oldest/title/items,空为相关度
}

// ClassMeta 单类结果的分页元数据
type ClassMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

// Response 搜索响应DTO
type Response struct {
	Query         string                `json:"query"`
	Inventories   []search.InventoryDoc `json:"inventories"`
	Items         []search.ItemDoc      `json:"items"`
	InventoryMeta ClassMeta             `json:"inventory_meta"`
	ItemMeta      ClassMeta             `json:"item_meta"`
}

// Execute 执行搜索
func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	// 1. 关键词校验(按rune计数,中文关键词友好)
	q := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(q) < 2 {
		uc.count("too_short")
		return nil, apperrors.ErrQueryTooShort
	}

	// 2. 可用性闸门:未就绪直接失败,不返回假的空结果
	if !uc.backend.Ready() {
		uc.count("unavailable")
		return nil, apperrors.ErrSearchUnavailable
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.Size
	if size < 1 || size > 100 {
		size = 20
	}
	// 每类占每页配额的一半,向上取整
	half := (size + 1) / 2

	// 3. 双路并发查询
	var invDocs []search.InventoryDoc
	var itemDocs []search.ItemDoc

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invDocs, err = uc.backend.QueryInventories(gctx, q, req.SortBy)
		return err
	})
	g.Go(func() error {
		var err error
		itemDocs, err = uc.backend.QueryItems(gctx, q, req.SortBy)
		return err
	})
	if err := g.Wait(); err != nil {
		uc.count("error")
		return nil, err
	}

	// 4. 按类分页
	invPage, invMeta := paginateInventories(invDocs, page, half)
	itemPage, itemMeta := paginateItems(itemDocs, page, half)

	uc.count("ok")
	if metrics.SearchDuration != nil {
		metrics.ObserveHistogram(metrics.SearchDuration, time.Since(start).Seconds())
	}

	return &Response{
		Query:         q,
		Inventories:   invPage,
		Items:         itemPage,
		InventoryMeta: invMeta,
		ItemMeta:      itemMeta,
	}, nil
}

func (uc *UseCase) count(result string) {
	if metrics.SearchRequestsTotal != nil {
		metrics.IncCounterVec(metrics.SearchRequestsTotal, map[string]string{"result": result})
	}
}

func paginateInventories(docs []search.InventoryDoc, page, perPage int) ([]search.InventoryDoc, ClassMeta) {
	total := len(docs)
	lo, hi := pageBounds(total, page, perPage)
	return docs[lo:hi], ClassMeta{
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, perPage),
	}
}

func paginateItems(docs []search.ItemDoc, page, perPage int) ([]search.ItemDoc, ClassMeta) {
	total := len(docs)
	lo, hi := pageBounds(total, page, perPage)
	return docs[lo:hi], ClassMeta{
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, perPage),
	}
}

// pageBounds 计算切片边界,越界页返回空片
func pageBounds(total, page, perPage int) (int, int) {
	lo := (page - 1) * perPage
	if lo > total {
		lo = total
	}
	hi := lo + perPage
	if hi > total {
		hi = total
	}
	return lo, hi
}

func totalPages(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
