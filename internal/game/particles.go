package game

import "math"

// updateParticles integrates and fades visual particles.
func (f *frame) updateParticles() {
	damp := math.Pow(0.95, f.dt)
	kept := f.s.Particles[:0]
	for _, p := range f.s.Particles {
		p.X += p.VX * f.dt
		p.Y += p.VY * f.dt
		p.VX *= damp
		p.VY *= damp
		p.Life -= 0.02 * f.dt
		if p.Life > 0 {
			kept = append(kept, p)
		}
	}
	f.s.Particles = kept
}

// dropOldest trims s to its newest limit entries. A limit of zero or less
// disables the cap.
func dropOldest[T any](s []T, limit int) []T {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return append([]T(nil), s[len(s)-limit:]...)
}
