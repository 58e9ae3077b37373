package api

import (
	"errors"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zombie-arena/internal/config"
	"zombie-arena/internal/game"
)

// Metrics with bounded cardinality: no per-player labels, and room labels
// are capped by MaxRooms and deleted when a room closes.
var (
	tickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent in one room tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.025},
	}, []string{"mode"})

	roomEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "game_room_entities",
		Help: "Live entities per room",
	}, []string{"room", "kind"}) // kind: players, creatures, projectiles, particles, items

	roomWave = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "game_room_wave",
		Help: "Current survival wave per room",
	}, []string{"room"})

	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_rooms_active",
		Help: "Rooms currently running",
	})

	eventLogTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	})

	eventLogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_dropped_total",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit", "room_full"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "WebSocket frames by direction",
	}, []string{"direction"}) // "in", "out"

	wsInputsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_inputs_rejected_total",
		Help: "Client frames dropped before reaching a room",
	}, []string{"reason"}) // "rate_limit", "decode"
)

// StartDebugServer starts the internal pprof and metrics server and returns
// it so the caller can shut it down. The listen address is forced onto
// localhost unless cfg.AllowExternal is set.
func StartDebugServer(cfg config.DebugConfig) (*http.Server, error) {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil, nil
	}

	addr, err := debugListenAddr(cfg)
	if err != nil {
		return nil, err
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

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("📊 Debug server starting on %s", addr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", addr)
		log.Printf("   - metrics: http://%s/metrics", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return srv, nil
}

func debugListenAddr(cfg config.DebugConfig) (string, error) {
	host, port, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		return "", err
	}
	switch host {
	case "127.0.0.1", "localhost", "::1":
		return cfg.Addr, nil
	}
	if cfg.AllowExternal {
		return cfg.Addr, nil
	}
	log.Println("⚠️ Debug server forced to localhost for security")
	return net.JoinHostPort("127.0.0.1", port), nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ObserveTick records one room tick. Its signature matches room.TickObserver.
func ObserveTick(roomID string, took time.Duration, s *game.WorldState) {
	tickDuration.WithLabelValues(s.Settings.Mode.String()).Observe(took.Seconds())

	roomEntities.WithLabelValues(roomID, "players").Set(float64(len(s.Players)))
	roomEntities.WithLabelValues(roomID, "creatures").Set(float64(len(s.Creatures)))
	roomEntities.WithLabelValues(roomID, "projectiles").Set(float64(len(s.Projectiles)))
	roomEntities.WithLabelValues(roomID, "particles").Set(float64(len(s.Particles)))
	roomEntities.WithLabelValues(roomID, "items").Set(float64(len(s.Items)))
	if !s.Settings.Mode.IsPvP() {
		roomWave.WithLabelValues(roomID).Set(float64(s.Wave))
	}
}

// ForgetRoom drops every per-room series of a closed room.
func ForgetRoom(roomID string) {
	roomEntities.DeletePartialMatch(prometheus.Labels{"room": roomID})
	roomWave.DeleteLabelValues(roomID)
}

// UpdateRoomCount updates the active rooms gauge
func UpdateRoomCount(n int) {
	roomsActive.Set(float64(n))
}

var (
	eventLogMu          sync.Mutex
	lastEventLogTotal   uint64
	lastEventLogDropped uint64
)

// UpdateEventLogStats folds the event log's running totals into the
// counters. Counters only move forward, so the delta since the last call is
// added.
func UpdateEventLogStats(total, dropped uint64) {
	eventLogMu.Lock()
	defer eventLogMu.Unlock()

	if total > lastEventLogTotal {
		eventLogTotal.Add(float64(total - lastEventLogTotal))
		lastEventLogTotal = total
	}
	if dropped > lastEventLogDropped {
		eventLogDropped.Add(float64(dropped - lastEventLogDropped))
		lastEventLogDropped = dropped
	}
}

// RecordConnectionRejected increments the rejection counter
// reason must be one of the bounded values listed on connectionRejected.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

func recordWSMessage(direction string) {
	wsMessagesTotal.WithLabelValues(direction).Inc()
}

func recordInputRejected(reason string) {
	wsInputsRejected.WithLabelValues(reason).Inc()
}

// metricsMiddleware records latency per chi route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}
