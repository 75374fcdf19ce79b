package http

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	// Bridge metrics
	ssoExchangesTotal   *prometheus.CounterVec
	ssoExchangeDuration *prometheus.HistogramVec
)

// MetricsConfig agrupa dependencias necesarias para exponer /metrics.
type MetricsConfig struct {
	Registry prometheus.Registerer
	// ControlPlanePool expone el pool de postgres del control plane para
	// el collector de conexiones. nil con el store en memoria.
	ControlPlanePool func() *pgxpool.Pool
}

// RegisterMetrics inicializa las métricas HTTP y del bridge y, si hay pool,
// registra un collector de conexiones. Devuelve el handler para /metrics.
func RegisterMetrics(cfg MetricsConfig) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		ssoExchangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sso_exchanges_total",
			Help: "Intercambios de aserción por tenant y resultado",
		}, []string{"tenant", "outcome"}) // outcome: success|invalid_assertion|invalid_payload|tenant_not_found|tenant_misconfigured|provisioning_failed|auth_failed

		ssoExchangeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sso_exchange_duration_seconds",
			Help:    "Duración del pipeline completo de intercambio",
			Buckets: prometheus.DefBuckets,
		}, []string{"tenant"})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight,
			ssoExchangesTotal, ssoExchangeDuration,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	if cfg.ControlPlanePool != nil {
		if err := registerCollector(registry, newDBPoolCollector(cfg.ControlPlanePool)); err != nil {
			return nil, err
		}
	}

	// Usamos el gatherer global por compatibilidad, ya que las métricas se registran allí.
	return promhttp.Handler(), nil
}

// ObserveExchange registra el resultado de un intercambio de aserción.
// No-op si las métricas no fueron inicializadas (tests de controllers).
func ObserveExchange(tenant, outcome string, dur time.Duration) {
	if ssoExchangesTotal == nil {
		return
	}
	ssoExchangesTotal.WithLabelValues(tenant, outcome).Inc()
	ssoExchangeDuration.WithLabelValues(tenant).Observe(dur.Seconds())
}

// WithMetrics instrumenta requests HTTP con métricas Prometheus.
func WithMetrics(next http.Handler) http.Handler {
	if next == nil {
		return nil
	}
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		pathLabel := normalizePath(r.URL.Path)

		httpInflight.WithLabelValues(method, pathLabel).Inc()
		start := time.Now()

		rec := &metricsRecorder{ResponseWriter: w}
		defer func() {
			httpInflight.WithLabelValues(method, pathLabel).Dec()
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

type metricsRecorder struct {
	http.ResponseWriter
	status int
}

func (m *metricsRecorder) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

var slugSegment = regexp.MustCompile(`^/v1/[^/]+/sso$`)

// normalizePath colapsa segmentos dinámicos para acotar la cardinalidad
// de las etiquetas.
func normalizePath(p string) string {
	if slugSegment.MatchString(p) {
		return "/v1/:slug/sso"
	}
	if strings.HasPrefix(p, "/v1/admin/tenants/") {
		rest := strings.TrimPrefix(p, "/v1/admin/tenants/")
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/v1/admin/tenants/:slug" + rest[i:]
		}
		return "/v1/admin/tenants/:slug"
	}
	return p
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// dbPoolCollector expone gauges del pool de postgres del control plane.
type dbPoolCollector struct {
	pool func() *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newDBPoolCollector(pool func() *pgxpool.Pool) *dbPoolCollector {
	return &dbPoolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("controlplane_pgxpool_acquired", "Conexiones adquiridas del pool del control plane", nil, nil),
		idleDesc:     prometheus.NewDesc("controlplane_pgxpool_idle", "Conexiones inactivas del pool del control plane", nil, nil),
		totalDesc:    prometheus.NewDesc("controlplane_pgxpool_total", "Conexiones totales del pool del control plane", nil, nil),
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	p := c.pool()
	if p == nil {
		return
	}
	stat := p.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
}
