// Package metrics 提供 Prometheus 指标：HTTP 请求、价格预测结果、推荐链路耗时与模型获取状态。
// 指标通过 promauto 注册到默认 Registry，由 service 暴露在 /metrics。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal 按方法、路由与状态码统计 HTTP 请求。
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homerec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homerec_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// PredictionsTotal 按结果（success / degraded / heuristic）统计单次价格预测。
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homerec_price_predictions_total",
			Help: "Total number of price predictions by outcome",
		},
		[]string{"outcome"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homerec_recommend_duration_seconds",
			Help:    "Duration of one ranking pass in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	CandidatesEvaluated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homerec_candidates_evaluated",
			Help:    "Number of properties left after filtering in one ranking pass",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)

	// ModelAcquired 为 1 表示进程持有可用模型，0 表示启发式模式。
	ModelAcquired = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "homerec_price_model_acquired",
			Help: "Whether a price model was acquired at startup (1) or heuristic pricing is used (0)",
		},
		[]string{"strategy"},
	)
)

// RecordAPIRequest 记录一次 HTTP 请求。
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordPrediction(outcome string) {
	PredictionsTotal.WithLabelValues(outcome).Inc()
}

// RecordRecommend 记录一次排序的耗时与候选数量。
func RecordRecommend(duration time.Duration, candidates int) {
	RecommendDuration.Observe(duration.Seconds())
	CandidatesEvaluated.Observe(float64(candidates))
}

// SetModelState 记录启动时的模型获取结果；strategy 为空表示 FALLBACK。
func SetModelState(strategy string) {
	ModelAcquired.Reset()
	if strategy == "" {
		ModelAcquired.WithLabelValues("none").Set(0)
		return
	}
	ModelAcquired.WithLabelValues(strategy).Set(1)
}
