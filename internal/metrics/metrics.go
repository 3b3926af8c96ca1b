package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "classifieds"

// Metrics - счетчики подсистемы лимитов. Регистрируются в собственном реестре,
// чтобы тесты могли создавать независимые экземпляры.
type Metrics struct {
	Registry *prometheus.Registry

	RateLimitDecisions  *prometheus.CounterVec
	QuotaConsumptions   *prometheus.CounterVec
	QuotaResets         prometheus.Counter
	PromotionsExpired   *prometheus.CounterVec
	SweepFailures       *prometheus.CounterVec
	AuditEntries        *prometheus.CounterVec
	AuditWriteFailures  prometheus.Counter
	HTTPRequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_decisions_total",
			Help:      "Rate limiter decisions by route and outcome.",
		}, []string{"route", "outcome"}),
		QuotaConsumptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_consumptions_total",
			Help:      "Free listing quota consumption attempts by outcome.",
		}, []string{"outcome"}),
		QuotaResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_users_reset_total",
			Help:      "Users whose monthly quota was reset by the batch job.",
		}),
		PromotionsExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotions_expired_total",
			Help:      "Promotional states cleared by the expiry sweeper.",
		}, []string{"category"}),
		SweepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotion_sweep_failures_total",
			Help:      "Failed sweeper passes by category.",
		}, []string{"category"}),
		AuditEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_entries_total",
			Help:      "Audit entries recorded by severity.",
		}, []string{"severity"}),
		AuditWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Audit entries that could not be persisted.",
		}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RateLimitDecisions,
		m.QuotaConsumptions,
		m.QuotaResets,
		m.PromotionsExpired,
		m.SweepFailures,
		m.AuditEntries,
		m.AuditWriteFailures,
		m.HTTPRequestDuration,
	)

	return m
}
