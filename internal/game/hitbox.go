package game

import "math"

// MeleeArc is the strike area of a melee weapon: a circular sector centered on
// the attacker's aim.
type MeleeArc struct {
	Range   float64 // reach beyond the target's own radius
	HalfArc float64 // radians either side of the aim direction
}

// CheckHit tests whether a target of radius targetRadius centered at
// (targetX, targetY) is inside the arc swung from (attackerX, attackerY)
// toward direction.
func (h MeleeArc) CheckHit(attackerX, attackerY, targetX, targetY, targetRadius, direction float64) bool {
	dx := targetX - attackerX
	dy := targetY - attackerY
	distance := math.Sqrt(dx*dx + dy*dy)

	if distance >= h.Range+targetRadius {
		return false
	}

	angleDiff := math.Abs(normalizeAngle(math.Atan2(dy, dx) - direction))
	return angleDiff < h.HalfArc
}

// normalizeAngle wraps a into [-π, π] so arc tests compare the short way
// round.
func normalizeAngle(a float64) float64 {
	a = math.Remainder(a, 2*math.Pi)
	if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

var meleeArcs = map[WeaponType]MeleeArc{
	WeaponChainsaw: {Range: 45, HalfArc: 0.8},
	WeaponBat:      {Range: 55, HalfArc: 0.5},
}

// MeleeArcFor returns the strike area of a melee weapon. ok is false for
// ranged weapons.
func MeleeArcFor(t WeaponType) (arc MeleeArc, ok bool) {
	arc, ok = meleeArcs[t]
	return arc, ok
}
