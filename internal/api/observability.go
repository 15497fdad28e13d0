package api

import (
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-entity labels).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clockwork_tick_duration_seconds",
		Help:    "Time spent in Engine.Update",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})

	entityCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clockwork_entity_count",
		Help: "Current total number of registered entities",
	})

	replayProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clockwork_replay_progress_ratio",
		Help: "Fraction of the active replay consumed so far, 0 when idle",
	})

	recordingEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clockwork_input_dropped_total",
		Help: "Input payloads dropped by the rate-limited input adapter",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clockwork_connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // bounded: rate_limit, origin, ws_total_limit, ws_ip_limit

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clockwork_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clockwork_websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})
)

// ObservabilityConfig configures the debug/metrics server.
type ObservabilityConfig struct {
	Enabled    bool
	ListenAddr string // should stay on localhost outside trusted networks
}

// DefaultObservabilityConfig returns safe defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer starts the pprof/metrics server in the background.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("api: debug server disabled")
		return nil
	}

	if host, port, err := net.SplitHostPort(cfg.ListenAddr); err != nil || (host != "127.0.0.1" && host != "localhost") {
		if os.Getenv("CLOCKWORK_ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("api: debug server forced to localhost")
			if err != nil || port == "" {
				port = "6060"
			}
			cfg.ListenAddr = "127.0.0.1:" + port
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	go func() {
		log.Printf("api: debug server on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
			log.Printf("api: debug server error: %v", err)
		}
	}()
	return nil
}

// RecordTick records Update() timing.
func RecordTick(d time.Duration) { tickDuration.Observe(d.Seconds()) }

// UpdateEntityCount updates the entity gauge.
func UpdateEntityCount(n int) { entityCount.Set(float64(n)) }

// UpdateReplayProgress updates the replay progress gauge.
func UpdateReplayProgress(ratio float64) { replayProgress.Set(ratio) }

// IncrementInputDropped increments the dropped-input counter.
func IncrementInputDropped() { recordingEventsDropped.Inc() }

// RecordConnectionRejected increments the rejection counter; reason must
// be a bounded label value.
func RecordConnectionRejected(reason string) { connectionRejected.WithLabelValues(reason).Inc() }

// RecordRequest records HTTP request latency.
func RecordRequest(method, endpoint string, d time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

// UpdateWSConnections updates the active WebSocket connection gauge.
func UpdateWSConnections(n int) { wsConnectionsActive.Set(float64(n)) }
