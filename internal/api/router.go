package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"zombie-arena/internal/config"
	"zombie-arena/internal/game"
	"zombie-arena/internal/room"
)

// RoomService is the part of room.Manager the API calls.
type RoomService interface {
	Create(id string, settings game.MatchSettings) (*room.Room, error)
	Get(id string) (*room.Room, error)
	List() []room.Info
	Len() int
	Close(id string) error
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Rooms: room.NewManager(4, room.DefaultConfig(), nil),
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Rooms owns the running matches (required)
	Rooms RoomService

	// Presets are the named settings accepted by POST /api/rooms.
	// If nil, config.DefaultPresets() is used.
	Presets config.Presets

	// DefaultSettings apply when a create request names neither a preset
	// nor explicit settings. The zero value means survival defaults.
	DefaultSettings game.MatchSettings

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *RequestLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, every origin is allowed.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

type routerHandlers struct {
	rooms           RoomService
	presets         config.Presets
	defaultSettings game.MatchSettings
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// NewRouter is pure apart from the rate limiter's cleanup goroutine, which
// only starts when cfg.RateLimiter is nil: no listeners are opened, so the
// router is safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewRequestLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	presets := cfg.Presets
	if presets == nil {
		presets = config.DefaultPresets()
	}
	h := &routerHandlers{
		rooms:           cfg.Rooms,
		presets:         presets,
		defaultSettings: cfg.DefaultSettings.Normalized(),
	}

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", h.handleListRooms)
			r.Post("/", h.handleCreateRoom)

			r.Route("/{roomID}", func(r chi.Router) {
				r.Get("/", h.handleGetRoom)
				r.Delete("/", h.handleDeleteRoom)
				r.Get("/state", h.handleRoomState)
				r.Get("/scoreboard", h.handleScoreboard)
				r.Get("/map.png", h.handleRoomMap)
			})
		})

		// Catalogs
		r.Get("/weapons", h.handleGetWeapons)
		r.Get("/creatures", h.handleGetCreatures)
		r.Get("/presets", h.handleGetPresets)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "not found", http.StatusNotFound)
	})

	return r
}
