// Package metrics 提供服务端请求和客户端调用的 Prometheus 指标
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "walltint"

var (
	// httpRequestsTotal 服务端 HTTP 请求数
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// clientCallsTotal 对着色服务的调用数，status: success, error
	clientCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_calls_total",
			Help:      "Total number of calls to the colorizer service",
		},
		[]string{"call", "status"},
	)

	clientCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "client_call_duration_seconds",
			Help:      "Duration of calls to the colorizer service in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"call"},
	)

	// masksStored 当前图片已生成的掩码数
	masksStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "masks_stored",
			Help:      "Number of masks stored for the current image",
		},
	)

	allMetrics = []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDuration,
		clientCallsTotal,
		clientCallDuration,
		masksStored,
	}

	registerOnce sync.Once
)

// Register 注册全部指标，重复调用只生效一次
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		for _, c := range allMetrics {
			reg.MustRegister(c)
		}
	})
}

func RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

func RecordClientCall(call, status string, durationSeconds float64) {
	clientCallsTotal.WithLabelValues(call, status).Inc()
	clientCallDuration.WithLabelValues(call).Observe(durationSeconds)
}

func SetMasksStored(n int) {
	masksStored.Set(float64(n))
}
