package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"zombie-arena/internal/config"
	"zombie-arena/internal/game"
	"zombie-arena/internal/preview"
	"zombie-arena/internal/protocol"
	"zombie-arena/internal/room"
)

const (
	defaultScoreboardLimit = 10
	maxScoreboardLimit     = 100
	maxCreateBodyBytes     = 16 << 10
	minPreviewSize         = 64
	maxPreviewSize         = int(game.MapSize)
)

// createRoomRequest is the body of POST /api/rooms. Preset and Settings are
// mutually exclusive; with neither the router's default settings apply.
type createRoomRequest struct {
	ID       string          `json:"id,omitempty"`
	Preset   string          `json:"preset,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

type weaponEntry struct {
	ID string `json:"id"`
	game.WeaponStats
	Melee   bool `json:"melee"`
	Pellets int  `json:"pellets"`
}

type creatureEntry struct {
	ID string `json:"id"`
	game.CreatureStats
	Radius float64 `json:"radius"`
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"rooms":  h.rooms.Len(),
	})
}

func (h *routerHandlers) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.rooms.List())
}

func (h *routerHandlers) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxCreateBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	settings, err := h.resolveSettings(req)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}

	rm, err := h.rooms.Create(req.ID, settings)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Location", "/api/rooms/"+rm.ID())
	writeJSONStatus(w, http.StatusCreated, rm.Info())
}

var (
	errPresetAndSettings = errors.New("preset and settings are mutually exclusive")
	errInvalidSettings   = errors.New("invalid settings")
)

func (h *routerHandlers) resolveSettings(req createRoomRequest) (game.MatchSettings, error) {
	hasSettings := len(req.Settings) > 0 && string(req.Settings) != "null"
	switch {
	case req.Preset != "" && hasSettings:
		return game.MatchSettings{}, errPresetAndSettings
	case req.Preset != "":
		return h.presets.Get(req.Preset)
	case hasSettings:
		return decodeSettings(req.Settings)
	}
	return h.defaultSettings, nil
}

// decodeSettings overlays explicit fields on the defaults of the named mode,
// so {"mode":"GEM_GRAB"} alone yields a complete gem grab rule set.
func decodeSettings(raw json.RawMessage) (game.MatchSettings, error) {
	var head struct {
		Mode game.GameMode `json:"mode"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return game.MatchSettings{}, fmt.Errorf("%w: %v", errInvalidSettings, err)
	}
	s := game.DefaultSettings(head.Mode)
	if err := json.Unmarshal(raw, &s); err != nil {
		return game.MatchSettings{}, fmt.Errorf("%w: %v", errInvalidSettings, err)
	}
	return s.Normalized(), nil
}

func (h *routerHandlers) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}
	writeJSON(w, rm.Info())
}

func (h *routerHandlers) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "roomID")
	if err := h.rooms.Close(id); err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	ForgetRoom(id)
	writeJSON(w, map[string]bool{"success": true})
}

// handleRoomState returns the latest snapshot. ?codec=msgpack returns the
// same envelope the websocket uses, as binary.
func (h *routerHandlers) handleRoomState(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}
	codec, err := protocol.ParseCodec(r.URL.Query().Get("codec"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s := rm.Snapshot()
	if codec == protocol.CodecJSON {
		writeJSON(w, s)
		return
	}
	frame, _, err := protocol.EncodeState(codec, s)
	if err != nil {
		log.Printf("❌ Encode state for %s: %v", rm.ID(), err)
		writeError(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/msgpack")
	w.Write(frame)
}

// handleScoreboard returns the top ?limit rows, or with ?player=ID the rows
// around that player (?around=N on each side).
func (h *routerHandlers) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	sb := rm.Scoreboard()

	var rows []room.ScoreboardEntry
	if player := q.Get("player"); player != "" {
		around := clampInt(queryInt(q.Get("around"), 2), 0, maxScoreboardLimit)
		rows = sb.Around(player, around, around)
		if rows == nil {
			writeError(w, room.ErrPlayerNotFound.Error(), http.StatusNotFound)
			return
		}
	} else {
		limit := clampInt(queryInt(q.Get("limit"), defaultScoreboardLimit), 1, maxScoreboardLimit)
		rows = sb.Top(limit)
	}

	s := rm.Snapshot()
	writeJSON(w, map[string]interface{}{
		"roomId":     rm.ID(),
		"mode":       s.Settings.Mode,
		"teamScores": s.TeamScores,
		"total":      sb.Len(),
		"entries":    rows,
	})
}

func (h *routerHandlers) handleRoomMap(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.lookupRoom(w, r)
	if !ok {
		return
	}
	size := clampInt(queryInt(r.URL.Query().Get("size"), preview.DefaultSize), minPreviewSize, maxPreviewSize)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := preview.WritePNG(w, rm.Snapshot(), size); err != nil {
		log.Printf("❌ Render map for %s: %v", rm.ID(), err)
	}
}

func (h *routerHandlers) handleGetWeapons(w http.ResponseWriter, r *http.Request) {
	all := game.AllWeapons()
	out := make([]weaponEntry, 0, len(all))
	for _, wt := range all {
		out = append(out, weaponEntry{
			ID:          wt.String(),
			WeaponStats: wt.Stats(),
			Melee:       wt.IsMelee(),
			Pellets:     wt.Pellets(),
		})
	}
	writeJSON(w, out)
}

func (h *routerHandlers) handleGetCreatures(w http.ResponseWriter, r *http.Request) {
	all := game.AllCreatures()
	out := make([]creatureEntry, 0, len(all))
	for _, k := range all {
		out = append(out, creatureEntry{
			ID:            k.String(),
			CreatureStats: k.Stats(),
			Radius:        k.Radius(),
		})
	}
	writeJSON(w, out)
}

func (h *routerHandlers) handleGetPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.presets)
}

func (h *routerHandlers) lookupRoom(w http.ResponseWriter, r *http.Request) (*room.Room, bool) {
	rm, err := h.rooms.Get(chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return nil, false
	}
	return rm, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrRoomExists):
		return http.StatusConflict
	case errors.Is(err, room.ErrTooManyRooms), errors.Is(err, room.ErrRoomFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, room.ErrInvalidRoomID), errors.Is(err, config.ErrUnknownPreset),
		errors.Is(err, errPresetAndSettings), errors.Is(err, errInvalidSettings),
		errors.Is(err, protocol.ErrUnknownCodec):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
