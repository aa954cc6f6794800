package search

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/inventoryhub/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/inventoryhub/pkg/errors"
)

// 查询路径
//
// 匹配语义：查询文本分词后，所有词条取倒排集合的交集(AND)。
// 排序：默认按文本相关度；显式sortBy覆盖相关度，
// 相等键值用创建时间+ID做二级排序，保证确定性分页。

// 排序键
const (
	SortRelevance = ""       // 默认:相关度
	SortNewest    = "newest" // 创建时间降序
	SortOldest    = "oldest" // 创建时间升序
	SortTitle     = "title"  // 标题/名称字母序
	SortItems     = "items"  // 物品数降序(仅清单)
)

// QueryInventories 查询清单文档
// 返回按排序键排好序的全部命中(调用方负责分页切片);
// 索引不可用(熔断器打开或Redis故障)时返回ErrSearchUnavailable
func (ix *Indexer) QueryInventories(ctx context.Context, q, sortBy string) ([]InventoryDoc, error) {
	var docs []InventoryDoc

	err := ix.breaker.Execute(func() error {
		bodies, err := ix.queryBodies(ctx, classInventory, q)
		if err != nil {
			return err
		}

		docs = make([]InventoryDoc, 0, len(bodies))
		for _, body := range bodies {
			var doc InventoryDoc
			if err := json.Unmarshal([]byte(body), &doc); err != nil {
				continue // 损坏文档跳过
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		if err == circuitbreaker.ErrOpenState {
			return nil, apperrors.ErrSearchUnavailable
		}
		return nil, apperrors.Wrap(err, "搜索清单失败")
	}

	sortInventoryDocs(docs, q, sortBy)
	return docs, nil
}

// QueryItems 查询物品文档
func (ix *Indexer) QueryItems(ctx context.Context, q, sortBy string) ([]ItemDoc, error) {
	var docs []ItemDoc

	err := ix.breaker.Execute(func() error {
		bodies, err := ix.queryBodies(ctx, classItem, q)
		if err != nil {
			return err
		}

		docs = make([]ItemDoc, 0, len(bodies))
		for _, body := range bodies {
			var doc ItemDoc
			if err := json.Unmarshal([]byte(body), &doc); err != nil {
				continue
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		if err == circuitbreaker.ErrOpenState {
			return nil, apperrors.ErrSearchUnavailable
		}
		return nil, apperrors.Wrap(err, "搜索物品失败")
	}

	sortItemDocs(docs, q, sortBy)
	return docs, nil
}

// queryBodies 分词 → 倒排交集 → 批量取文档
func (ix *Indexer) queryBodies(ctx context.Context, class, q string) ([]string, error) {
	terms := tokenize(q)
	if len(terms) == 0 {
		return nil, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, ix.opTimeout)
	defer cancel()

	// AND语义:所有词条集合的交集
	keys := make([]string, len(terms))
	for i, t := range terms {
		keys[i] = termKey(class, t)
	}
	ids, err := ix.client.SInter(opCtx, keys...).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	// 批量取文档
	docKeys := make([]string, len(ids))
	for i, id := range ids {
		docKeys[i] = "search:doc:" + class + ":" + id
	}
	values, err := ix.client.MGet(opCtx, docKeys...).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	bodies := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			bodies = append(bodies, s)
		}
	}
	return bodies, nil
}

// =========================================
// 排序
// =========================================

// relevanceScore 文本相关度:查询词条在文本中的出现次数
// 简单词频打分,标题命中权重x2
func relevanceScore(q, primary, secondary string) int {
	score := 0
	lp := strings.ToLower(primary)
	ls := strings.ToLower(secondary)
	for _, t := range tokenize(q) {
		score += 2 * strings.Count(lp, t)
		score += strings.Count(ls, t)
	}
	return score
}

func sortInventoryDocs(docs []InventoryDoc, q, sortBy string) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]

		switch sortBy {
		case SortNewest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case SortTitle:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		case SortItems:
			if a.ItemCount != b.ItemCount {
				return a.ItemCount > b.ItemCount
			}
		default:
			sa := relevanceScore(q, a.Title, a.Description)
			sb := relevanceScore(q, b.Title, b.Description)
			if sa != sb {
				return sa > sb
			}
		}

		// 二级排序:创建时间降序,再按ID,保证确定性
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func sortItemDocs(docs []ItemDoc, q, sortBy string) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]

		switch sortBy {
		case SortNewest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case SortTitle:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		// SortItems对物品无意义,落回相关度
		default:
			sa := relevanceScore(q, a.Name, a.CustomID)
			sb := relevanceScore(q, b.Name, b.CustomID)
			if sa != sb {
				return sa > sb
			}
		}

		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
