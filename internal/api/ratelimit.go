package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"zombie-arena/internal/config"
)

// RateLimitConfig configures the per-client request budget. Reads cost one
// token; requests that create or close rooms cost WriteCost tokens.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	WriteCost         int
	IdleAfter         time.Duration // clients quiet this long are forgotten
}

// DefaultRateLimitConfig lets a client poll a room state at 20 Hz and
// create a handful of rooms per second.
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 20,
	Burst:             40,
	WriteCost:         4,
	IdleAfter:         10 * time.Minute,
}

// RateLimitFromServer derives the HTTP limiter settings from the server config.
func RateLimitFromServer(cfg config.ServerConfig) RateLimitConfig {
	out := DefaultRateLimitConfig
	if cfg.RequestsPerSecond > 0 {
		out.RequestsPerSecond = cfg.RequestsPerSecond
	}
	if cfg.RequestBurst > 0 {
		out.Burst = cfg.RequestBurst
	}
	return out
}

// LimiterStats counts decisions made by a RequestLimiter.
type LimiterStats struct {
	Allowed  uint64 `json:"allowed"`
	Rejected uint64 `json:"rejected"`
	Clients  int    `json:"clients"`
}

type clientBudget struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RequestLimiter gives every client IP its own token bucket.
type RequestLimiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	clients map[string]*clientBudget

	allowed  atomic.Uint64
	rejected atomic.Uint64

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRequestLimiter starts a limiter and its idle sweep. Call Stop to
// release it.
func NewRequestLimiter(cfg RateLimitConfig) *RequestLimiter {
	def := DefaultRateLimitConfig
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = def.IdleAfter
	}
	if cfg.WriteCost <= 0 {
		cfg.WriteCost = def.WriteCost
	}
	if cfg.Burst < cfg.WriteCost {
		cfg.Burst = cfg.WriteCost
	}
	rl := &RequestLimiter{
		cfg:      cfg,
		clients:  make(map[string]*clientBudget),
		stopChan: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the idle sweep.
func (rl *RequestLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

func (rl *RequestLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.cfg.IdleAfter / 2)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopChan:
			return
		case now := <-ticker.C:
			rl.forgetIdle(now.Add(-rl.cfg.IdleAfter))
		}
	}
}

// forgetIdle drops clients not seen since cutoff and returns how many.
func (rl *RequestLimiter) forgetIdle(cutoff time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := 0
	for ip, b := range rl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
			n++
		}
	}
	return n
}

// costOf is the token price of a request.
func (rl *RequestLimiter) costOf(method string) int {
	switch method {
	case http.MethodPost, http.MethodDelete:
		return rl.cfg.WriteCost
	}
	return 1
}

// Allow charges cost tokens to ip and reports whether it could pay.
func (rl *RequestLimiter) Allow(ip string, cost int) bool {
	now := time.Now()

	rl.mu.Lock()
	b := rl.clients[ip]
	if b == nil {
		b = &clientBudget{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
		rl.clients[ip] = b
	}
	b.lastSeen = now
	ok := b.limiter.AllowN(now, cost)
	rl.mu.Unlock()

	if ok {
		rl.allowed.Add(1)
	} else {
		rl.rejected.Add(1)
	}
	return ok
}

// Middleware answers 429 once a client has spent its budget.
func (rl *RequestLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(GetClientIP(r), rl.costOf(r.Method)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			writeError(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stats returns the decision counters and the number of tracked clients.
func (rl *RequestLimiter) Stats() LimiterStats {
	rl.mu.Lock()
	n := len(rl.clients)
	rl.mu.Unlock()
	return LimiterStats{Allowed: rl.allowed.Load(), Rejected: rl.rejected.Load(), Clients: n}
}

// GetClientIP extracts the client IP from an HTTP request.
// X-Forwarded-For can be spoofed unless a trusted proxy sets it.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// SeatLimiter caps how many room seats one client IP may hold over
// websockets. A seat is a joined player; it is freed on disconnect.
type SeatLimiter struct {
	maxPerIP int

	mu     sync.Mutex
	byIP   map[string]int
	byRoom map[string]int

	rejected atomic.Uint64
}

// NewSeatLimiter creates a limiter allowing maxPerIP seats per IP.
func NewSeatLimiter(maxPerIP int) *SeatLimiter {
	return &SeatLimiter{
		maxPerIP: maxPerIP,
		byIP:     make(map[string]int),
		byRoom:   make(map[string]int),
	}
}

// Claim takes a seat in roomID for ip. Every true result must be paired
// with a Release of the same ip and room.
func (sl *SeatLimiter) Claim(ip, roomID string) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.byIP[ip] >= sl.maxPerIP {
		sl.rejected.Add(1)
		return false
	}
	sl.byIP[ip]++
	sl.byRoom[roomID]++
	return true
}

// Release frees a seat taken by Claim.
func (sl *SeatLimiter) Release(ip, roomID string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	decrement(sl.byIP, ip)
	decrement(sl.byRoom, roomID)
}

func decrement(m map[string]int, key string) {
	switch n := m[key]; {
	case n > 1:
		m[key] = n - 1
	case n == 1:
		delete(m, key)
	}
}

// Seats returns the seats held by ip.
func (sl *SeatLimiter) Seats(ip string) int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.byIP[ip]
}

// RoomSeats returns the websocket seats held in roomID.
func (sl *SeatLimiter) RoomSeats(roomID string) int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.byRoom[roomID]
}

// Rejected returns how many claims were refused.
func (sl *SeatLimiter) Rejected() uint64 { return sl.rejected.Load() }

// OriginChecker matches request origins against an allow list. Entries may
// be "*", an exact origin, or a wildcard such as "https://*.example.com".
type OriginChecker struct {
	allowAll bool
	exact    map[string]bool
	suffixes []string // from "scheme://*.domain"
	prefixes []string // from "scheme://host:*"
}

// NewOriginChecker builds a checker for the configured origins.
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{exact: make(map[string]bool)}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		switch {
		case o == "":
		case o == "*":
			oc.allowAll = true
		case strings.HasSuffix(o, ":*"):
			oc.prefixes = append(oc.prefixes, strings.TrimSuffix(o, "*"))
		case strings.Contains(o, "://*."):
			scheme, domain, _ := strings.Cut(o, "://*")
			oc.suffixes = append(oc.suffixes, scheme+"://|"+domain)
		default:
			oc.exact[o] = true
		}
	}
	return oc
}

// Allowed reports whether origin may open a websocket. Requests without an
// Origin header come from non-browser clients and are allowed.
func (oc *OriginChecker) Allowed(origin string) bool {
	if origin == "" || oc.allowAll || oc.exact[origin] {
		return true
	}
	for _, p := range oc.prefixes {
		if strings.HasPrefix(origin, p) {
			return true
		}
	}
	for _, s := range oc.suffixes {
		scheme, domain, _ := strings.Cut(s, "|")
		if strings.HasPrefix(origin, scheme) && strings.HasSuffix(origin, domain) {
			return true
		}
	}
	return false
}
