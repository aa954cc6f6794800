package search

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/inventoryhub/pkg/circuitbreaker"
	"github.com/xiebiao/inventoryhub/pkg/metrics"
)

// State 索引适配器状态
type State int32

const (
	// StateUninitialized 未初始化：尚未探活
	StateUninitialized State = iota

	// StateReady 就绪：探活成功，可以读写索引
	StateReady

	// StateDegraded 降级：探活失败，粘性状态
	// 写操作跳过，查询返回"服务不可用"；除非显式Reinitialize不会恢复
	StateDegraded
)

// String 状态转字符串（便于日志）
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateReady:
		return "READY"
	case StateDegraded:
		return "DEGRADED"
	default:
		return "UNKNOWN"
	}
}

// Indexer 搜索索引适配器
// 设计说明：
// 1. 初始化探活用sync.Once保证至多一次：并发的首批请求只触发一次探活，
//    其余请求观察状态标志，不重复探测
// 2. 状态用atomic存取：读路径(每个搜索请求)无锁
// 3. 查询路径由熔断器保护：READY状态下索引突然故障时快速失败
type Indexer struct {
	client    *redis.Client
	opTimeout time.Duration

	state    atomic.Int32
	initOnce sync.Once
	reinitMu sync.Mutex

	breaker *circuitbreaker.CircuitBreaker
}

// NewIndexer 创建索引适配器
// opTimeout是单次索引读写操作的超时：超时视为适配器故障（降级处理，不崩溃）
func NewIndexer(client *redis.Client, opTimeout time.Duration) *Indexer {
	ix := &Indexer{
		client:    client,
		opTimeout: opTimeout,
	}

	ix.breaker = circuitbreaker.NewCircuitBreaker("search-index", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	ix.breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("⚡ [%s] 熔断器状态变化: %s -> %s", name, from, to)
	})

	return ix
}

// Initialize 初始化探活（至多一次）
// 进程启动时调用；并发调用只有第一次执行探活，其余等待结果
func (ix *Indexer) Initialize(ctx context.Context) {
	ix.initOnce.Do(func() {
		ix.probe(ctx)
	})
}

// Reinitialize 显式重新探活（手动恢复DEGRADED状态的唯一途径）
// 运维接口调用，绕过initOnce
func (ix *Indexer) Reinitialize(ctx context.Context) State {
	ix.reinitMu.Lock()
	defer ix.reinitMu.Unlock()

	ix.probe(ctx)
	return ix.State()
}

// probe 连通性探测 + 索引模式确认
func (ix *Indexer) probe(ctx context.Context) {
	opCtx, cancel := context.WithTimeout(ctx, ix.opTimeout)
	defer cancel()

	if err := ix.client.Ping(opCtx).Err(); err != nil {
		ix.setState(StateDegraded)
		log.Printf("❌ 搜索索引探活失败，进入降级状态: %v", err)
		return
	}

	// 模式确认：写入版本标记（幂等）
	if err := ix.client.Set(opCtx, "search:schema", "v1", 0).Err(); err != nil {
		ix.setState(StateDegraded)
		log.Printf("❌ 搜索索引模式确认失败，进入降级状态: %v", err)
		return
	}

	ix.setState(StateReady)
	log.Println("✓ 搜索索引就绪")
}

// State 当前状态
func (ix *Indexer) State() State {
	return State(ix.state.Load())
}

// Ready 是否就绪
func (ix *Indexer) Ready() bool {
	return ix.State() == StateReady
}

// setState 更新状态并同步监控指标
func (ix *Indexer) setState(s State) {
	ix.state.Store(int32(s))
	if metrics.IndexState != nil {
		metrics.SetGauge(metrics.IndexState, float64(s))
	}
}

// =========================================
// 写操作（全部尽力而为）
// =========================================

// UpsertInventory 写入/更新清单文档
// 失败记日志吞掉，不向调用方传播
func (ix *Indexer) UpsertInventory(ctx context.Context, doc *InventoryDoc) {
	ix.do(ctx, "upsert_inventory", func(opCtx context.Context) error {
		return ix.upsertDoc(opCtx, classInventory, doc.ID, doc, doc.Terms())
	})
}

// UpsertItem 写入/更新物品文档
func (ix *Indexer) UpsertItem(ctx context.Context, doc *ItemDoc) {
	ix.do(ctx, "upsert_item", func(opCtx context.Context) error {
		if err := ix.upsertDoc(opCtx, classItem, doc.ID, doc, doc.Terms()); err != nil {
			return err
		}
		// 维护清单→物品映射(清单删除时级联清理索引)
		return ix.client.SAdd(opCtx, invItemsKey(doc.InventoryID), doc.ID).Err()
	})
}

// RemoveInventory 删除清单文档及其全部物品文档
func (ix *Indexer) RemoveInventory(ctx context.Context, inventoryID uint) {
	ix.do(ctx, "remove_inventory", func(opCtx context.Context) error {
		// 级联删除物品文档
		itemIDs, err := ix.client.SMembers(opCtx, invItemsKey(inventoryID)).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		for _, idStr := range itemIDs {
			id, err := strconv.ParseUint(idStr, 10, 64)
			if err != nil {
				continue
			}
			if err := ix.removeDoc(opCtx, classItem, uint(id)); err != nil {
				return err
			}
		}
		if err := ix.client.Del(opCtx, invItemsKey(inventoryID)).Err(); err != nil {
			return err
		}

		return ix.removeDoc(opCtx, classInventory, inventoryID)
	})
}

// RemoveItem 删除物品文档
func (ix *Indexer) RemoveItem(ctx context.Context, itemID, inventoryID uint) {
	ix.do(ctx, "remove_item", func(opCtx context.Context) error {
		if err := ix.client.SRem(opCtx, invItemsKey(inventoryID), itemID).Err(); err != nil {
			return err
		}
		return ix.removeDoc(opCtx, classItem, itemID)
	})
}

// do 写操作的统一外壳：状态检查、超时、日志、指标
func (ix *Indexer) do(ctx context.Context, op string, fn func(ctx context.Context) error) {
	if !ix.Ready() {
		// 降级/未初始化：跳过，主库仍是权威数据源
		ix.countOp(op, "skipped")
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, ix.opTimeout)
	defer cancel()

	if err := fn(opCtx); err != nil {
		// 尽力而为：只记日志，绝不传播
		log.Printf("⚠️ 索引写操作失败(已忽略): op=%s, err=%v", op, err)
		ix.countOp(op, "failure")
		return
	}
	ix.countOp(op, "success")
}

func (ix *Indexer) countOp(op, result string) {
	if metrics.IndexOperationsTotal != nil {
		metrics.IncCounterVec(metrics.IndexOperationsTotal, map[string]string{
			"op":     op,
			"result": result,
		})
	}
}

// =========================================
// 文档读写原语
// =========================================

// upsertDoc 写文档：序列化JSON + 更新倒排词条集合
// 更新时先读旧文档，把不再出现的词条从倒排集合里摘除
func (ix *Indexer) upsertDoc(ctx context.Context, class string, id uint, doc interface{}, newTerms []string) error {
	// 1. 读旧文档的词条(首次写入时不存在)
	oldTerms, err := ix.loadTerms(ctx, class, id)
	if err != nil {
		return err
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	// 2. pipeline批量写入
	newSet := make(map[string]bool, len(newTerms))
	for _, t := range newTerms {
		newSet[t] = true
	}

	pipe := ix.client.Pipeline()
	pipe.Set(ctx, docKey(class, id), body, 0)
	pipe.SAdd(ctx, allKey(class), id)
	for _, t := range newTerms {
		pipe.SAdd(ctx, termKey(class, t), id)
	}
	// 摘除失效词条
	for _, t := range oldTerms {
		if !newSet[t] {
			pipe.SRem(ctx, termKey(class, t), id)
		}
	}

	_, err = pipe.Exec(ctx)
	return err
}

// removeDoc 删文档：摘除倒排词条 + 删除文档本体
func (ix *Indexer) removeDoc(ctx context.Context, class string, id uint) error {
	oldTerms, err := ix.loadTerms(ctx, class, id)
	if err != nil {
		return err
	}

	pipe := ix.client.Pipeline()
	for _, t := range oldTerms {
		pipe.SRem(ctx, termKey(class, t), id)
	}
	pipe.SRem(ctx, allKey(class), id)
	pipe.Del(ctx, docKey(class, id))

	_, err = pipe.Exec(ctx)
	return err
}

// loadTerms 读取已索引文档的词条
func (ix *Indexer) loadTerms(ctx context.Context, class string, id uint) ([]string, error) {
	body, err := ix.client.Get(ctx, docKey(class, id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch class {
	case classInventory:
		var doc InventoryDoc
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, nil // 旧文档损坏,当作不存在
		}
		return doc.Terms(), nil
	case classItem:
		var doc ItemDoc
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, nil
		}
		return doc.Terms(), nil
	}
	return nil, nil
}
