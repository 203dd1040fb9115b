// monitor/monitor.go
package monitor

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wfunc/gamestation/logger"
	"github.com/wfunc/gamestation/protocol"
)

type Metrics struct {
	OnlinePlayers     prometheus.Gauge
	ActiveRooms       prometheus.Gauge
	ActiveShards      prometheus.Gauge
	ActiveTournaments prometheus.Gauge
	TotalPlayers      prometheus.Gauge
	TotalGames        prometheus.Gauge
	Actions           *prometheus.CounterVec
	MessagesReceived  *prometheus.CounterVec
	MessageLatency    prometheus.Histogram
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	m := &Metrics{
		OnlinePlayers:     gauge("online_players", "Number of connected players"),
		ActiveRooms:       gauge("active_rooms", "Number of rooms in the active index"),
		ActiveShards:      gauge("active_shards", "Number of live room shards"),
		ActiveTournaments: gauge("active_tournaments", "Number of tournaments in the active index"),
		TotalPlayers:      gauge("players_total", "Number of known player profiles"),
		TotalGames:        gauge("games_total", "Number of completed games"),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Client actions by kind and outcome",
		}, []string{"kind", "outcome"}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Shard messages handled by the hub",
		}, []string{"kind"}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Hub item processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	reg.MustRegister(
		m.OnlinePlayers,
		m.ActiveRooms,
		m.ActiveShards,
		m.ActiveTournaments,
		m.TotalPlayers,
		m.TotalGames,
		m.Actions,
		m.MessagesReceived,
		m.MessageLatency,
	)

	return m
}

// Gauges is a point-in-time read of the hub state.
type Gauges struct {
	ActiveRooms       int
	ActiveTournaments int
	TotalPlayers      uint64
	TotalGames        uint64
}

var publishOnce sync.Once

type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time
	server    *http.Server

	requestCount int64
	mutex        sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	reg := prometheus.NewRegistry()
	return &Monitor{
		metrics:   NewMetrics(namespace, reg),
		registry:  reg,
		startTime: time.Now(),
	}
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves /metrics and the expvar page.
func (m *Monitor) Handler() http.Handler {
	publishOnce.Do(func() {
		// 添加expvar指标
		expvar.Publish("uptime", expvar.Func(func() interface{} {
			return time.Since(m.startTime).Seconds()
		}))
		expvar.Publish("requests", expvar.Func(func() interface{} {
			m.mutex.Lock()
			defer m.mutex.Unlock()
			return m.requestCount
		}))
	})
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	return mux
}

func (m *Monitor) StartServer(addr string) {
	m.server = &http.Server{Addr: addr, Handler: m.Handler()}
	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorw("metrics server stopped", "addr", addr, "error", err)
		}
	}()
}

func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

// Refresh copies hub gauges into the collectors.
func (m *Monitor) Refresh(g Gauges) {
	m.metrics.ActiveRooms.Set(float64(g.ActiveRooms))
	m.metrics.ActiveTournaments.Set(float64(g.ActiveTournaments))
	m.metrics.TotalPlayers.Set(float64(g.TotalPlayers))
	m.metrics.TotalGames.Set(float64(g.TotalGames))
}

func (m *Monitor) action(kind protocol.ActionKind, outcome string) {
	m.metrics.Actions.WithLabelValues(string(kind), outcome).Inc()
	m.mutex.Lock()
	m.requestCount++
	m.mutex.Unlock()
}

func (m *Monitor) ActionApplied(kind protocol.ActionKind)   { m.action(kind, "applied") }
func (m *Monitor) ActionDuplicate(kind protocol.ActionKind) { m.action(kind, "duplicate") }
func (m *Monitor) ActionRejected(kind protocol.ActionKind)  { m.action(kind, "rejected") }
func (m *Monitor) ActionDropped(kind protocol.ActionKind)   { m.action(kind, "dropped") }

func (m *Monitor) MessageHandled(kind protocol.MessageKind) {
	m.metrics.MessagesReceived.WithLabelValues(string(kind)).Inc()
}

func (m *Monitor) ObserveLatency(duration time.Duration) {
	m.metrics.MessageLatency.Observe(duration.Seconds())
}

func (m *Monitor) ShardsChanged(n int) {
	m.metrics.ActiveShards.Set(float64(n))
}
