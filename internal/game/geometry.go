package game

import "math"

func dist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// rectsOverlap is a strict AABB overlap test.
func rectsOverlap(ax, ay, aw, ah, bx, by, bw, bh float64) bool {
	return ax < bx+bw && ax+aw > bx && ay < by+bh && ay+ah > by
}

// pointInRect reports whether (x, y) lies inside w grown by margin.
func pointInRect(w *Wall, x, y, margin float64) bool {
	return x > w.X-margin && x < w.X+w.W+margin && y > w.Y-margin && y < w.Y+w.H+margin
}

// onTerrain reports whether (x, y) is within margin of a wall of type t.
func onTerrain(walls []*Wall, t WallType, x, y, margin float64) bool {
	for _, w := range walls {
		if w.Type == t && !w.destroyed && pointInRect(w, x, y, margin) {
			return true
		}
	}
	return false
}

// ResolveWallCollision pushes a circle out of every blocking wall and clamps it
// to the arena, letting it slide along wall faces.
func ResolveWallCollision(x, y, radius float64, walls []*Wall) (float64, float64) {
	for _, w := range walls {
		if w.Type.Passable() || w.destroyed {
			continue
		}
		cx := clamp(x, w.X, w.X+w.W)
		cy := clamp(y, w.Y, w.Y+w.H)
		dx, dy := x-cx, y-cy
		d := math.Hypot(dx, dy)
		if d < radius && d > 0 {
			overlap := radius - d + 0.5
			x += dx / d * overlap
			y += dy / d * overlap
		}
	}
	return clamp(x, radius, MapSize-radius), clamp(y, radius, MapSize-radius)
}

// SafePosition finds a spawn point clear of blocking terrain, biased to the
// left half for RED and the right half for BLUE. After 50 failed attempts it
// returns the map center.
func SafePosition(walls []*Wall, team Team, rng *Rand) (float64, float64) {
	for attempt := 0; attempt < 50; attempt++ {
		var x, y float64
		switch team {
		case TeamRed:
			x = rng.Float64()*200 + 100
		case TeamBlue:
			x = MapSize - rng.Float64()*200 - 100
		default:
			x = rng.Float64()*(MapSize-200) + 100
		}
		y = rng.Float64()*(MapSize-200) + 100
		if spawnClear(walls, x, y) {
			return x, y
		}
	}
	return MapSize / 2, MapSize / 2
}

func spawnClear(walls []*Wall, x, y float64) bool {
	const r = PlayerRadius * 2
	for _, w := range walls {
		if w.Type == WallBush || w.Type == WallWater || w.destroyed {
			continue
		}
		if rectsOverlap(x-r, y-r, r*2, r*2, w.X, w.Y, w.W, w.H) {
			return false
		}
	}
	return true
}

// LineOfSight samples steps points between the two positions and fails on the
// first one inside a wall that stops projectiles.
func LineOfSight(x1, y1, x2, y2 float64, steps int, walls []*Wall) bool {
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px, py := x1+(x2-x1)*t, y1+(y2-y1)*t
		for _, w := range walls {
			if !w.Type.BlocksProjectiles() || w.destroyed {
				continue
			}
			if pointInRect(w, px, py, 0) {
				return false
			}
		}
	}
	return true
}

// lerpAngle turns from toward to by fraction t along the short way round.
func lerpAngle(from, to, t float64) float64 {
	return from + normalizeAngle(to-from)*t
}
