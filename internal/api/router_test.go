package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zombie-arena/internal/game"
	"zombie-arena/internal/room"
)

// testRateLimit keeps the limiter out of the way of functional tests.
var testRateLimit = &RateLimitConfig{
	RequestsPerSecond: 1000,
	Burst:             1000,
	IdleAfter:         time.Hour,
}

func newTestAPI(t *testing.T, maxRooms int) (*httptest.Server, *room.Manager) {
	t.Helper()
	m := room.NewManager(maxRooms, room.DefaultConfig(), nil)
	ts := httptest.NewServer(NewRouter(RouterConfig{
		Rooms:           m,
		DefaultSettings: game.DefaultSettings(game.ModeZombieSurvival),
		RateLimitConfig: testRateLimit,
		DisableLogging:  true,
	}))
	t.Cleanup(func() {
		ts.Close()
		m.CloseAll()
	})
	return ts, m
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestAPIHealth(t *testing.T) {
	ts, m := newTestAPI(t, 0)
	if _, err := m.Create("one", game.DefaultSettings(game.ModeGunGame)); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Status string `json:"status"`
		Rooms  int    `json:"rooms"`
	}
	decodeBody(t, resp, &result)
	if result.Status != "ok" || result.Rooms != 1 {
		t.Errorf("unexpected health: %+v", result)
	}
}

// TestAPICreateRoom covers the ways settings can be chosen and the error
// mapping of the room manager.
func TestAPICreateRoom(t *testing.T) {
	ts, _ := newTestAPI(t, 0)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMode   string
	}{
		{"empty body", ``, http.StatusCreated, "ZOMBIE_SURVIVAL"},
		{"preset", `{"id":"gems","preset":"gem-grab"}`, http.StatusCreated, "GEM_GRAB"},
		{"settings", `{"id":"ball","settings":{"mode":"BRAWL_BALL","bots":2}}`, http.StatusCreated, "BRAWL_BALL"},
		{"duplicate id", `{"id":"gems"}`, http.StatusConflict, ""},
		{"unknown preset", `{"preset":"chess"}`, http.StatusBadRequest, ""},
		{"preset and settings", `{"preset":"tdm","settings":{"mode":"GUN_GAME"}}`, http.StatusBadRequest, ""},
		{"bad mode", `{"settings":{"mode":"CAPTURE_THE_FLAG"}}`, http.StatusBadRequest, ""},
		{"bad id", `{"id":"no spaces"}`, http.StatusBadRequest, ""},
		{"invalid json", `{invalid}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/rooms", tt.body)
			if resp.StatusCode != tt.wantStatus {
				resp.Body.Close()
				t.Fatalf("Expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if tt.wantMode == "" {
				var e map[string]string
				decodeBody(t, resp, &e)
				if e["error"] == "" {
					t.Error("Expected an error message")
				}
				return
			}
			var info struct {
				ID      string `json:"id"`
				Mode    string `json:"mode"`
				Running bool   `json:"running"`
			}
			decodeBody(t, resp, &info)
			if info.Mode != tt.wantMode || !info.Running || info.ID == "" {
				t.Errorf("unexpected room: %+v", info)
			}
			if loc := resp.Header.Get("Location"); loc != "/api/rooms/"+info.ID {
				t.Errorf("Expected Location for %s, got %q", info.ID, loc)
			}
		})
	}
}

func TestAPICreateRoomSettingsOverlay(t *testing.T) {
	ts, m := newTestAPI(t, 0)
	resp := postJSON(t, ts.URL+"/api/rooms", `{"id":"gg","settings":{"mode":"GEM_GRAB","scoreToWin":4}}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	rm, err := m.Get("gg")
	if err != nil {
		t.Fatal(err)
	}
	got := rm.Snapshot().Settings
	want := game.DefaultSettings(game.ModeGemGrab)
	if got.ScoreToWin != 4 || got.TimeLimit != want.TimeLimit || got.Difficulty != want.Difficulty {
		t.Errorf("Expected gem grab defaults with scoreToWin 4, got %+v", got)
	}
}

func TestAPITooManyRooms(t *testing.T) {
	ts, _ := newTestAPI(t, 1)
	resp := postJSON(t, ts.URL+"/api/rooms", `{"id":"a"}`)
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/rooms", `{"id":"b"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", resp.StatusCode)
	}
}

// TestAPIRoomLifecycle walks a room through every per-room route.
func TestAPIRoomLifecycle(t *testing.T) {
	ts, m := newTestAPI(t, 0)
	rm, err := m.Create("life", game.DefaultSettings(game.ModeTeamDeathmatch))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rm.Join("alice"); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatal(err)
	}
	var list []room.Info
	decodeBody(t, resp, &list)
	if len(list) != 1 || list[0].ID != "life" || list[0].Humans != 1 {
		t.Errorf("unexpected list: %+v", list)
	}

	resp, err = http.Get(ts.URL + "/api/rooms/life")
	if err != nil {
		t.Fatal(err)
	}
	var info room.Info
	decodeBody(t, resp, &info)
	if info.Mode != game.ModeTeamDeathmatch {
		t.Errorf("Expected TDM, got %v", info.Mode)
	}

	resp, err = http.Get(ts.URL + "/api/rooms/life/state")
	if err != nil {
		t.Fatal(err)
	}
	var state struct {
		RoomID  string `json:"roomId"`
		Players []struct {
			Name string `json:"name"`
		} `json:"players"`
	}
	decodeBody(t, resp, &state)
	found := false
	for _, p := range state.Players {
		found = found || p.Name == "alice"
	}
	if state.RoomID != "life" || !found {
		t.Errorf("state is missing alice: %+v", state)
	}

	resp, err = http.Get(ts.URL + "/api/rooms/life/state?codec=msgpack")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/msgpack" {
		t.Errorf("Expected msgpack content type, got %q", ct)
	}

	resp, err = http.Get(ts.URL + "/api/rooms/life/scoreboard?limit=3")
	if err != nil {
		t.Fatal(err)
	}
	var board struct {
		RoomID  string                 `json:"roomId"`
		Total   int                    `json:"total"`
		Entries []room.ScoreboardEntry `json:"entries"`
	}
	decodeBody(t, resp, &board)
	if board.RoomID != "life" || len(board.Entries) == 0 || len(board.Entries) > 3 {
		t.Errorf("unexpected scoreboard: %+v", board)
	}
	if board.Entries[0].Rank != 1 {
		t.Errorf("Expected rank 1 first, got %d", board.Entries[0].Rank)
	}

	resp, err = http.Get(ts.URL + "/api/rooms/life/scoreboard?player=ghost")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown player, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/rooms/life/map.png?size=128")
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("map.png did not decode: %v", err)
	}
	if img.Bounds().Dx() != 128 {
		t.Errorf("Expected 128px map, got %d", img.Bounds().Dx())
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/rooms/life", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 on delete, got %d", resp.StatusCode)
	}

	for _, path := range []string{"/api/rooms/life", "/api/rooms/life/state", "/api/rooms/life/map.png"} {
		resp, err = http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: Expected 404 after delete, got %d", path, resp.StatusCode)
		}
	}
}

func TestAPICatalogs(t *testing.T) {
	ts, _ := newTestAPI(t, 0)

	resp, err := http.Get(ts.URL + "/api/weapons")
	if err != nil {
		t.Fatal(err)
	}
	var weapons []struct {
		ID      string  `json:"id"`
		Damage  float64 `json:"damage"`
		Melee   bool    `json:"melee"`
		Pellets int     `json:"pellets"`
	}
	decodeBody(t, resp, &weapons)
	if len(weapons) != len(game.AllWeapons()) {
		t.Fatalf("Expected %d weapons, got %d", len(game.AllWeapons()), len(weapons))
	}
	for _, w := range weapons {
		if w.ID == "SHOTGUN" && w.Pellets != 6 {
			t.Errorf("Expected 6 shotgun pellets, got %d", w.Pellets)
		}
		if w.ID == "BAT" && !w.Melee {
			t.Error("Expected BAT to be melee")
		}
	}

	resp, err = http.Get(ts.URL + "/api/creatures")
	if err != nil {
		t.Fatal(err)
	}
	var creatures []struct {
		ID     string  `json:"id"`
		HP     float64 `json:"hp"`
		Radius float64 `json:"radius"`
	}
	decodeBody(t, resp, &creatures)
	if len(creatures) != len(game.AllCreatures()) || creatures[0].ID != "NORMAL" || creatures[0].HP != 60 {
		t.Errorf("unexpected creatures: %+v", creatures)
	}

	resp, err = http.Get(ts.URL + "/api/presets")
	if err != nil {
		t.Fatal(err)
	}
	var presets map[string]game.MatchSettings
	decodeBody(t, resp, &presets)
	if p, ok := presets["brawl-ball"]; !ok || p.Mode != game.ModeBrawlBall {
		t.Errorf("Expected a brawl-ball preset, got %+v", presets)
	}
}

// TestAPIRateLimit checks the per-IP limiter answers 429 once the burst is
// spent.
func TestAPIRateLimit(t *testing.T) {
	m := room.NewManager(0, room.DefaultConfig(), nil)
	defer m.CloseAll()
	limiter := NewRequestLimiter(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2, WriteCost: 2, IdleAfter: time.Hour})
	defer limiter.Stop()

	ts := httptest.NewServer(NewRouter(RouterConfig{Rooms: m, RateLimiter: limiter, DisableLogging: true}))
	defer ts.Close()

	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/health")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected 200 200 429, got %v", codes)
	}
	if st := limiter.Stats(); st.Rejected != 1 || st.Allowed != 2 || st.Clients != 1 {
		t.Errorf("Expected 2 allowed and 1 rejected from 1 client, got %+v", st)
	}
}

func TestAPINotFound(t *testing.T) {
	ts, _ := newTestAPI(t, 0)
	resp, err := http.Get(ts.URL + "/api/nothing")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if resp.StatusCode != http.StatusNotFound || body["error"] == "" {
		t.Errorf("Expected a JSON 404, got %d %v", resp.StatusCode, body)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "10.0.0.1:5555", "10.0.0.1"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "10.0.0.1:5555", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "10.0.0.1:5555", "5.6.7.8"},
		{"no port", nil, "weird", "weird"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", bytes.NewReader(nil))
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOriginChecker(t *testing.T) {
	oc := NewOriginChecker([]string{"https://play.example.com", "https://*.arena.io", "http://localhost:*"})
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://play.example.com", true},
		{"https://eu.arena.io", true},
		{"http://eu.arena.io", false},
		{"http://localhost:5173", true},
		{"https://evil.com", false},
		{"https://arena.io.evil.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			if got := oc.Allowed(tt.origin); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	if !NewOriginChecker([]string{"*"}).Allowed("https://anything.dev") {
		t.Error("Expected * to allow every origin")
	}
}

// TestRequestLimiterCharges checks that room writes cost more than reads.
func TestRequestLimiterCharges(t *testing.T) {
	tests := []struct {
		name    string
		methods []string
		want    []bool
	}{
		{"reads", []string{"GET", "GET", "GET", "GET", "GET"}, []bool{true, true, true, true, false}},
		{"create then read", []string{"POST", "GET", "GET"}, []bool{true, false, false}},
		{"read then create", []string{"GET", "POST", "GET", "GET", "GET"}, []bool{true, false, true, true, true}},
		{"close", []string{"DELETE", "DELETE"}, []bool{true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRequestLimiter(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 4, WriteCost: 4, IdleAfter: time.Hour})
			defer rl.Stop()
			for i, m := range tt.methods {
				if got := rl.Allow("1.2.3.4", rl.costOf(m)); got != tt.want[i] {
					t.Errorf("request %d (%s): Expected %v, got %v", i, m, tt.want[i], got)
				}
			}
		})
	}
}

func TestRequestLimiterForgetsIdleClients(t *testing.T) {
	rl := NewRequestLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleAfter: time.Hour})
	defer rl.Stop()
	rl.Allow("a", 1)
	rl.Allow("b", 1)

	if n := rl.forgetIdle(time.Now().Add(-time.Minute)); n != 0 {
		t.Errorf("Expected no client forgotten, got %d", n)
	}
	if n := rl.forgetIdle(time.Now().Add(time.Second)); n != 2 {
		t.Errorf("Expected 2 clients forgotten, got %d", n)
	}
	if rl.Stats().Clients != 0 {
		t.Errorf("Expected 0 clients, got %d", rl.Stats().Clients)
	}
}

func TestSeatLimiter(t *testing.T) {
	sl := NewSeatLimiter(2)
	if !sl.Claim("a", "r1") || !sl.Claim("a", "r2") {
		t.Fatal("Expected two seats")
	}
	if sl.Claim("a", "r1") {
		t.Error("Expected the third seat to be refused")
	}
	if !sl.Claim("b", "r1") {
		t.Error("Expected a separate budget per IP")
	}
	if sl.RoomSeats("r1") != 2 {
		t.Errorf("Expected 2 seats in r1, got %d", sl.RoomSeats("r1"))
	}
	sl.Release("a", "r1")
	if sl.Seats("a") != 1 || !sl.Claim("a", "r3") {
		t.Errorf("Expected a freed seat, holding %d", sl.Seats("a"))
	}
	sl.Release("b", "r1")
	sl.Release("b", "r1")
	if sl.Seats("b") != 0 || sl.RoomSeats("r1") != 0 {
		t.Errorf("Expected b and r1 empty, got %d and %d", sl.Seats("b"), sl.RoomSeats("r1"))
	}
	if _, ok := sl.byIP["b"]; ok {
		t.Error("Expected an empty IP entry to be removed")
	}
	if sl.Rejected() != 1 {
		t.Errorf("Expected 1 rejection, got %d", sl.Rejected())
	}
}
