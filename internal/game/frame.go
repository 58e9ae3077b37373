package game

import "zombie-arena/internal/game/spatial"

// frame is the working context of one tick: the fresh state being built plus
// the clock and helpers every stage shares.
type frame struct {
	s   *WorldState
	sim *Simulator
	rng *Rand
	now float64
	dt  float64

	grid *spatial.Grid // built lazily by entityGrid
}

func (f *frame) mode() GameMode { return f.s.Settings.Mode }

func (f *frame) survival() bool { return f.s.Settings.Mode == ModeZombieSurvival }

func (f *frame) limits() ResourceLimits { return f.sim.cfg.Limits }

// respawnDelay is longer in brawl ball so a goal push has a window.
func (f *frame) respawnDelay() float64 {
	if f.mode() == ModeBrawlBall {
		return 4000
	}
	return 2500
}

func (f *frame) emit(t EventType, playerID string, payload interface{}) {
	f.s.Events = append(f.s.Events, NewEvent(t, f.s.TickNum, playerID, payload))
}

// announce queues a banner, keeping only the newest MaxAnnouncements.
func (f *frame) announce(text, color string, duration float64) {
	keep := f.limits().MaxAnnouncements - 1
	if keep < 0 {
		keep = 0
	}
	if n := len(f.s.Announcements); n > keep {
		f.s.Announcements = append([]Announcement(nil), f.s.Announcements[n-keep:]...)
	}
	f.s.Announcements = append(f.s.Announcements, Announcement{
		ID:        f.rng.NewID("ann"),
		Text:      text,
		Color:     color,
		StartedAt: f.now,
		Duration:  duration,
	})
}

func (f *frame) particle(p Particle) {
	f.s.Particles = append(f.s.Particles, p)
}

// text spawns a floating label.
func (f *frame) text(x, y float64, text, color string, size, life float64) {
	f.particle(Particle{X: x, Y: y, VY: -1, Life: life, Color: color, Size: size, Type: ParticleText, Text: text})
}

// burst spawns n particles flying out of (x, y) with random velocity in
// [-speed/2, speed/2) on each axis.
func (f *frame) burst(x, y float64, n int, speed, life float64, color string, size float64, t ParticleType) {
	for i := 0; i < n; i++ {
		f.particle(Particle{
			X: x, Y: y,
			VX: f.rng.Centered(speed), VY: f.rng.Centered(speed),
			Life: life, Color: color, Size: size, Type: t,
		})
	}
}

func (f *frame) addItem(it *Item) {
	if it.ID == "" {
		it.ID = f.rng.NewID("item")
	}
	f.s.Items = append(f.s.Items, it)
}
