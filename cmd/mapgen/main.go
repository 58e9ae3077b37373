// Command mapgen generates the arena for a room id and mode and writes a PNG
// preview plus the wall layout as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"zombie-arena/internal/game"
	"zombie-arena/internal/preview"
)

type layout struct {
	RoomID string        `json:"roomId"`
	Mode   game.GameMode `json:"mode"`
	Walls  []*game.Wall  `json:"walls"`
	Goals  []game.Goal   `json:"goals,omitempty"`
}

func main() {
	var (
		roomID  string
		modeStr string
		out     string
		size    int
	)
	flag.StringVar(&roomID, "room", "lobby", "room id (seeds the layout)")
	flag.StringVar(&modeStr, "mode", "ZOMBIE_SURVIVAL", "game mode")
	flag.StringVar(&out, "o", "map", "output path prefix; writes <o>.png and <o>.json")
	flag.IntVar(&size, "size", preview.DefaultSize, "preview edge in pixels")
	flag.Parse()

	mode, err := game.ParseMode(modeStr)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	s := game.NewMatch(roomID, game.DefaultSettings(mode))

	if err := writePNG(out+".png", s, size); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := writeLayout(out+".json", layout{RoomID: roomID, Mode: mode, Walls: s.Walls, Goals: s.Goals}); err != nil {
		log.Fatalf("❌ %v", err)
	}

	log.Printf("🗺️ %s/%s: %d walls, %d goals -> %s.png, %s.json", roomID, mode, len(s.Walls), len(s.Goals), out, out)
}

func writePNG(path string, s *game.WorldState, size int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := preview.WritePNG(f, s, size); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func writeLayout(path string, l layout) error {
	b, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
