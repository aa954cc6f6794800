// Package metrics 提供基于Prometheus的指标收集
//
// 核心概念：
// - Counter（计数器）：只增不减的累计值，如请求总数、物品创建总数
// - Gauge（仪表盘）：可增可减的瞬时值，如搜索索引状态
// - Histogram（直方图）：观测值分布，自动计算分位数（P50/P90/P99）
//
// 使用方式：
//
//	metrics.InitMetrics()
//	http.Handle("/metrics", promhttp.Handler())
//	...
//	metrics.ItemsCreatedTotal.Inc()
//	metrics.ObserveHistogram(metrics.SearchDuration, time.Since(start).Seconds())
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// 业务指标

	// ItemsCreatedTotal 物品创建总数（Counter）
	// 标签：id_source（generated/custom）
	ItemsCreatedTotal *prometheus.CounterVec

	// ItemCreationDuration 物品创建耗时（Histogram）
	// 包含序号预留事务的完整耗时
	ItemCreationDuration prometheus.Histogram

	// VersionConflictsTotal 乐观锁版本冲突总数（Counter）
	// 标签：record（inventory/item）
	VersionConflictsTotal *prometheus.CounterVec

	// 搜索指标

	// SearchRequestsTotal 搜索请求总数（Counter）
	// 标签：result（ok/unavailable/too_short/error）
	SearchRequestsTotal *prometheus.CounterVec

	// SearchDuration 搜索耗时（Histogram）
	SearchDuration prometheus.Histogram

	// 索引指标

	// IndexState 搜索索引适配器状态（Gauge）
	// 0=UNINITIALIZED, 1=READY, 2=DEGRADED
	IndexState prometheus.Gauge

	// IndexOperationsTotal 索引写操作总数（Counter）
	// 标签：op（upsert_inventory/upsert_item/remove_inventory/remove_item）、
	//       result（success/failure/skipped）
	IndexOperationsTotal *prometheus.CounterVec

	// 事件指标

	// EventsPublishedTotal 消息发布总数（Counter）
	// 标签：routing_key、result（success/failure）
	EventsPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次，注册所有指标到全局Registry
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	ItemsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_created_total",
			Help: "物品创建总数",
		},
		[]string{"id_source"},
	)

	ItemCreationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "item_creation_duration_seconds",
			Help:    "物品创建耗时（秒），含序号预留事务",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	VersionConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "version_conflicts_total",
			Help: "乐观锁版本冲突总数",
		},
		[]string{"record"},
	)

	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "搜索请求总数",
		},
		[]string{"result"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "聚合搜索耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	IndexState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "search_index_state",
			Help: "搜索索引适配器状态（0=UNINITIALIZED, 1=READY, 2=DEGRADED）",
		},
	)

	IndexOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_index_operations_total",
			Help: "搜索索引写操作总数",
		},
		[]string{"op", "result"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "消息发布总数",
		},
		[]string{"routing_key", "result"},
	)
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}
