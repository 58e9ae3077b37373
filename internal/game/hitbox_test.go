package game

import (
	"math"
	"testing"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{4*math.Pi + 0.5, 0.5},
		{-7 * math.Pi / 4, math.Pi / 4},
	}
	for _, tt := range tests {
		got := normalizeAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Expected normalizeAngle(%v) = %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestMeleeArcWrapsAroundPi(t *testing.T) {
	arc := MeleeArc{Range: 55, HalfArc: 0.5}
	tests := []struct {
		name      string
		tx, ty    float64
		direction float64
		want      bool
	}{
		{"straight ahead", 140, 100, 0, true},
		{"behind", 60, 100, 0, false},
		{"aim just below π, target just above", 60, 99, math.Pi - 0.05, true},
		{"aim just above -π", 60, 101, -math.Pi + 0.05, true},
		{"out of reach", 200, 100, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := arc.CheckHit(100, 100, tt.tx, tt.ty, PlayerRadius, tt.direction); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
