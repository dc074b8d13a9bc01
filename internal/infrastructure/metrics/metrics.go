package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

const namespace = "escrow"

// Collector gathers the registry lifecycle transitions and the API traffic.
// It owns its prometheus registry so that multiple instances can coexist.
type Collector struct {
	registry *prometheus.Registry

	events          *prometheus.CounterVec
	amounts         *prometheus.CounterVec
	lastHeight      prometheus.Gauge
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "events_total",
				Help:      "Total registry events by type",
			},
			[]string{"type"},
		),
		amounts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "value_moved_total",
				Help:      "Total value moved out of the registry by event type",
			},
			[]string{"type"},
		),
		lastHeight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "last_event_height",
				Help:      "Height of the latest registry event",
			},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	c.registry.MustRegister(
		c.events, c.amounts, c.lastHeight, c.requests, c.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveEvent records a registry event. Its signature matches
// pubsub.Listener.
func (c *Collector) ObserveEvent(event domain.Event) {
	label := string(event.Type)
	c.events.WithLabelValues(label).Inc()
	if amount, _ := event.Amount.Float64(); amount > 0 &&
		event.Type != domain.EventTradeProposed {
		c.amounts.WithLabelValues(label).Add(amount)
	}
	c.lastHeight.Set(float64(event.Height))
}

// ObserveRequest records a served HTTP request.
func (c *Collector) ObserveRequest(
	method, path string, status int, elapsed time.Duration,
) {
	c.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler exposes the collected metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
