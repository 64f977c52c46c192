// metrics — Prometheus-метрики HTTP-слоя и auth-событий.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты auth-операций.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics — набор коллекторов сервиса. Нулевой *Metrics безопасен: методы ничего не делают.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	authEvents   *prometheus.CounterVec
}

// New создаёт коллекторы и регистрирует их в reg.
// Паникует при повторной регистрации (конвенция prometheus).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamehub_auth_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gamehub_auth_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamehub_auth_events_total",
			Help: "Auth workflow outcomes by operation, result and error kind.",
		}, []string{"operation", "result", "kind"}),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.authEvents)

	return m
}

// ObserveHTTP учитывает завершённый HTTP-запрос.
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}

	m.httpRequests.WithLabelValues(route, method, statusClass(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// AuthEvent учитывает исход auth-операции. kind пустой для успеха.
func (m *Metrics) AuthEvent(operation, result, kind string) {
	if m == nil {
		return
	}

	m.authEvents.WithLabelValues(operation, result, kind).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
