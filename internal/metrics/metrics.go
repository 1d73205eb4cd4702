// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/mindblown/internal/model"
)

// Collector はPrometheusメトリクスを収集する実装。
// middleware.StatusObserver、llm.Observer、journal.Recorderを満たす。
type Collector struct {
	httpStatus          *prometheus.CounterVec
	generationLatency   prometheus.Histogram
	generationFail      prometheus.Counter
	emotionDetected     *prometheus.CounterVec
	observationConflict prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindblown_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		generationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mindblown_generation_latency_seconds",
			Help:    "文章生成呼び出しのレイテンシ（秒）",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}),
		generationFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindblown_generation_fail_total",
			Help: "文章生成呼び出し失敗の合計数",
		}),
		emotionDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mindblown_emotion_detected_total",
			Help: "記録された感情ラベル別の件数",
		}, []string{"label"}),
		observationConflict: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mindblown_observation_conflict_total",
			Help: "同日2回目の記録として拒否された件数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.generationLatency,
		c.generationFail,
		c.emotionDetected,
		c.observationConflict,
	)

	return c
}

// ObserveHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) ObserveHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// ObserveGeneration は文章生成呼び出しのレイテンシと失敗を記録する。
func (c *Collector) ObserveGeneration(elapsed time.Duration, err error) {
	c.generationLatency.Observe(elapsed.Seconds())
	if err != nil {
		c.generationFail.Inc()
	}
}

// ObserveEmotion は保存された記録の感情ラベルを記録する。
func (c *Collector) ObserveEmotion(label model.EmotionLabel) {
	c.emotionDetected.WithLabelValues(string(label)).Inc()
}

// ObserveConflict は同日2回目の記録の拒否を記録する。
func (c *Collector) ObserveConflict() {
	c.observationConflict.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
