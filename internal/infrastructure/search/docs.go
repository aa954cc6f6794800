// Package search 实现基于Redis的搜索索引适配器
//
// 架构说明：
// 1. 索引是主库(MySQL)的非权威投影：可能滞后、可能缺失，
//    仅用于加速搜索，权限判定和记录生命周期从不依赖它
// 2. 状态机：UNINITIALIZED → READY(探活成功) / DEGRADED(探活失败)
//    DEGRADED是粘性的：进程生命周期内不自动重试，除非显式Reinitialize
// 3. 所有写操作尽力而为：失败记日志吞掉，绝不向触发主库写入的调用方传播
// 4. 查询路径由熔断器保护：索引故障时快速失败，不拖慢搜索接口
//
// 存储布局（Redis）：
//   search:doc:inv:{id}      清单文档(JSON)
//   search:doc:item:{id}     物品文档(JSON)
//   search:term:inv:{term}   倒排：含该词条的清单ID集合
//   search:term:item:{term}  倒排：含该词条的物品ID集合
//   search:all:inv           全部已索引清单ID
//   search:all:item          全部已索引物品ID
//   search:invitems:{invId}  清单下已索引的物品ID(级联删除用)
package search

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// InventoryDoc 清单索引文档
type InventoryDoc struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	OwnerName   string    `json:"owner_name"`
	IsPublic    bool      `json:"is_public"`
	ItemCount   int64     `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Terms 文档的可搜索词条
func (d *InventoryDoc) Terms() []string {
	return tokenize(d.Title + " " + d.Description + " " + d.Category + " " + d.OwnerName)
}

// ItemDoc 物品索引文档
type ItemDoc struct {
	ID          uint      `json:"id"`
	InventoryID uint      `json:"inventory_id"`
	Name        string    `json:"name"`
	CustomID    string    `json:"custom_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Terms 文档的可搜索词条
func (d *ItemDoc) Terms() []string {
	return tokenize(d.Name + " " + d.CustomID)
}

// =========================================
// Key构造
// =========================================

const (
	classInventory = "inv"
	classItem      = "item"
)

func docKey(class string, id uint) string {
	return fmt.Sprintf("search:doc:%s:%d", class, id)
}

func termKey(class, term string) string {
	return fmt.Sprintf("search:term:%s:%s", class, term)
}

func allKey(class string) string {
	return "search:all:" + class
}

func invItemsKey(inventoryID uint) string {
	return fmt.Sprintf("search:invitems:%d", inventoryID)
}

// =========================================
// 分词
// =========================================

// tokenize 文本 → 去重词条列表
// 规则：小写化，按非字母数字字符切分，丢弃长度<2的词条
// (与搜索接口"关键词至少2字符"的约束一致)
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}
