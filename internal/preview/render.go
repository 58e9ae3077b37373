// Package preview draws a top-down PNG of a room: terrain, goals, items,
// creatures, the ball and players.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/fogleman/gg"

	"zombie-arena/internal/game"
)

// DefaultSize is the edge length of a preview in pixels.
const DefaultSize = 560

var (
	background = color.RGBA{34, 40, 30, 255}
	gridColor  = color.RGBA{44, 52, 40, 255}
	redTeam    = color.RGBA{230, 70, 70, 255}
	blueTeam   = color.RGBA{70, 130, 230, 255}
)

var wallColors = map[game.WallType]color.RGBA{
	game.WallSolid:        {90, 90, 100, 255},
	game.WallBush:         {40, 120, 50, 200},
	game.WallWater:        {50, 110, 190, 200},
	game.WallDestructible: {150, 110, 70, 255},
	game.WallBarrel:       {200, 60, 40, 255},
	game.WallCrate:        {190, 150, 80, 255},
	game.WallPond:         {40, 80, 160, 255},
	game.WallSwamp:        {80, 100, 50, 220},
	game.WallPlayerBuilt:  {170, 170, 180, 255},
}

var itemColors = map[game.ItemType]color.RGBA{
	game.ItemHealth:      {80, 220, 90, 255},
	game.ItemAmmo:        {230, 200, 60, 255},
	game.ItemGem:         {190, 90, 240, 255},
	game.ItemMine:        {240, 50, 50, 255},
	game.ItemVenomPuddle: {120, 200, 40, 140},
	game.ItemSmokeCloud:  {160, 160, 160, 120},
	game.ItemWeapon:      {240, 240, 240, 255},
}

// Render draws s scaled to a size×size image. A nil state is an error.
func Render(s *game.WorldState, size int) (image.Image, error) {
	if s == nil {
		return nil, fmt.Errorf("render: nil state")
	}
	if size <= 0 {
		size = DefaultSize
	}
	dc := gg.NewContext(size, size)
	dc.Scale(float64(size)/game.MapSize, float64(size)/game.MapSize)

	drawBackground(dc)
	drawGoals(dc, s.Goals)
	drawWalls(dc, s.Walls)
	drawItems(dc, s.Items)
	drawCreatures(dc, s.Creatures)
	if s.Ball != nil {
		dc.SetColor(color.White)
		dc.DrawCircle(s.Ball.X, s.Ball.Y, game.BallRadius)
		dc.Fill()
	}
	drawPlayers(dc, s.Players)

	return dc.Image(), nil
}

// WritePNG renders s and encodes it to w.
func WritePNG(w io.Writer, s *game.WorldState, size int) error {
	img, err := Render(s, size)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func drawBackground(dc *gg.Context) {
	dc.SetColor(background)
	dc.DrawRectangle(0, 0, game.MapSize, game.MapSize)
	dc.Fill()

	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for v := 80.0; v < game.MapSize; v += 80 {
		dc.DrawLine(v, 0, v, game.MapSize)
		dc.DrawLine(0, v, game.MapSize, v)
	}
	dc.Stroke()
}

func drawGoals(dc *gg.Context, goals []game.Goal) {
	for _, g := range goals {
		c := teamColor(g.Team)
		c.A = 90
		dc.SetColor(c)
		dc.DrawRectangle(g.X, g.Y, g.W, g.H)
		dc.Fill()
	}
}

func drawWalls(dc *gg.Context, walls []*game.Wall) {
	for _, w := range walls {
		c, ok := wallColors[w.Type]
		if !ok {
			c = wallColors[game.WallSolid]
		}
		dc.SetColor(c)
		if w.Type == game.WallBarrel {
			cx, cy := w.Center()
			dc.DrawCircle(cx, cy, w.W/2)
		} else {
			dc.DrawRectangle(w.X, w.Y, w.W, w.H)
		}
		dc.Fill()
	}
}

func drawItems(dc *gg.Context, items []*game.Item) {
	for _, it := range items {
		c, ok := itemColors[it.Type]
		if !ok {
			c = color.RGBA{100, 200, 240, 255}
		}
		dc.SetColor(c)
		r := game.ItemRadius
		if it.Type == game.ItemVenomPuddle || it.Type == game.ItemSmokeCloud {
			r *= 3
		}
		dc.DrawCircle(it.X, it.Y, r)
		dc.Fill()
	}
}

func drawCreatures(dc *gg.Context, creatures []*game.Creature) {
	for _, c := range creatures {
		if c.IsBoss {
			dc.SetColor(color.RGBA{150, 30, 160, 255})
		} else {
			dc.SetColor(color.RGBA{110, 160, 70, 255})
		}
		dc.DrawCircle(c.X, c.Y, c.Kind.Radius())
		dc.Fill()
	}
}

func drawPlayers(dc *gg.Context, players []*game.Player) {
	for _, p := range players {
		if p.Dead {
			continue
		}
		dc.SetColor(parseHexColor(p.Color))
		dc.DrawCircle(p.X, p.Y, game.PlayerRadius)
		dc.Fill()

		if p.Team != game.TeamNone {
			dc.SetColor(teamColor(p.Team))
		} else {
			dc.SetColor(color.White)
		}
		dc.SetLineWidth(3)
		dc.DrawCircle(p.X, p.Y, game.PlayerRadius)
		dc.Stroke()
	}
}

func teamColor(t game.Team) color.RGBA {
	switch t {
	case game.TeamRed:
		return redTeam
	case game.TeamBlue:
		return blueTeam
	}
	return color.RGBA{200, 200, 200, 255}
}

func parseHexColor(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{255, 255, 255, 255}
	}

	var r, g, b uint8
	fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	return color.RGBA{r, g, b, 255}
}
