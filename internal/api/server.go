package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"zombie-arena/internal/config"
	"zombie-arena/internal/room"
)

// statsInterval is how often room and event log gauges are refreshed.
const statsInterval = 5 * time.Second

// EventStats is the part of room.EventLog the stats loop reads.
type EventStats interface {
	Logged() uint64
	Dropped() uint64
}

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with the WebSocket hub.
type Server struct {
	rooms       RoomService
	events      EventStats
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *RequestLimiter
	httpServer  *http.Server

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewServer creates the API server for rooms.
//
// IMPORTANT: Background workers do NOT start until Start() is called apart
// from the rate limiter's cleanup goroutine. Tests can construct the server
// and use Router() directly.
func NewServer(cfg config.AppConfig, rooms RoomService, presets config.Presets, events EventStats) *Server {
	s := &Server{
		rooms:       rooms,
		events:      events,
		rateLimiter: NewRequestLimiter(RateLimitFromServer(cfg.Server)),
		stopChan:    make(chan struct{}),
	}

	s.wsHub = NewWebSocketHub(rooms, HubConfig{
		MaxConnections: cfg.Server.MaxWSConnections,
		MaxPerIP:       cfg.Server.MaxWSPerIP,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TickRate:       cfg.Simulation.TickRate,
	})

	s.router = NewRouter(RouterConfig{
		Rooms:           rooms,
		Presets:         presets,
		DefaultSettings: cfg.Match.Settings,
		RateLimiter:     s.rateLimiter,
		CORSOrigins:     cfg.Server.AllowedOrigins,
	})

	s.setupWebSocketRoutes()

	return s
}

// setupWebSocketRoutes adds WebSocket-specific routes to the router.
// These routes need the hub instance, so they are not part of NewRouter.
func (s *Server) setupWebSocketRoutes() {
	s.router.Get("/ws", s.wsHub.HandleWebSocket)
}

// Start serves HTTP on addr and runs the stats loop. It blocks until the
// server stops and returns nil after a clean Shutdown.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go s.statsLoop()

	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("🎮 WebSocket: ws://localhost%s/ws?room=<id>&name=<name>", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
//
// Example:
//
//	server := api.NewServer(cfg, manager, nil, nil)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/rooms")
func (s *Server) Router() http.Handler {
	return s.router
}

// Shutdown disconnects websocket clients, drains HTTP requests and stops
// background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.CloseAll()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	s.rateLimiter.Stop()
	return err
}

func (s *Server) statsLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.refreshStats()
		}
	}
}

func (s *Server) refreshStats() {
	UpdateRoomCount(s.rooms.Len())
	if s.events != nil {
		UpdateEventLogStats(s.events.Logged(), s.events.Dropped())
	}
}

var _ RoomService = (*room.Manager)(nil)
var _ EventStats = (*room.EventLog)(nil)
