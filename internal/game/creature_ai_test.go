package game

import (
	"math"
	"testing"
)

// newAIArena returns a survival frame with one human at the map center and
// nothing else on the field.
func newAIArena(t *testing.T, now float64) (*frame, *Player) {
	t.Helper()
	s, ids := newTestMatch(t, "ai-room", ModeZombieSurvival, "prey")
	s.Walls = nil
	s.Items = nil
	s.Creatures = nil
	s.Projectiles = nil
	p := s.Player(ids[0])
	p.X, p.Y = 560, 560
	p.Shield = 0
	return newTestFrame(s, now), p
}

func addCreature(f *frame, k CreatureKind, boss bool, x, y float64) *Creature {
	c := NewCreature(f.rng.NewID("zombie"), k, boss, WaveContext{Wave: 1, X: x, Y: y})
	f.s.Creatures = append(f.s.Creatures, c)
	return c
}

func countVenom(s *WorldState) int {
	n := 0
	for _, b := range s.Projectiles {
		if b.Hostile && b.Venom {
			n++
		}
	}
	return n
}

func TestSpitterRange(t *testing.T) {
	tests := []struct {
		name string
		d    float64
		want bool
	}{
		{"too close", 50, false},
		{"at the inner edge", 60, false},
		{"just inside", 61, true},
		{"mid range", 150, true},
		{"just short of the outer edge", 199, true},
		{"at the outer edge", 200, false},
		{"out of range", 250, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, p := newAIArena(t, 1000)
			c := addCreature(f, CreatureSpitter, false, p.X-tt.d, p.Y)
			f.spit(c, p, dist(c.X, c.Y, p.X, p.Y))
			if got := countVenom(f.s) == 1; got != tt.want {
				t.Errorf("Expected spit=%v at %v, got %v", tt.want, tt.d, got)
			}
		})
	}
}

func TestSpitterNeedsLineOfSightAndCooldown(t *testing.T) {
	f, p := newAIArena(t, 1000)
	c := addCreature(f, CreatureSpitter, false, p.X-150, p.Y)
	wall := &Wall{X: 480, Y: 540, W: 20, H: 40, Type: WallSolid}
	f.s.Walls = []*Wall{wall}

	f.spit(c, p, 150)
	if n := countVenom(f.s); n != 0 {
		t.Fatalf("Expected no spit through a wall, got %d", n)
	}

	f.s.Walls = nil
	f.spit(c, p, 150)
	if n := countVenom(f.s); n != 1 {
		t.Fatalf("Expected one spit with a clear lane, got %d", n)
	}
	f.now += spitterCooldown - 1
	f.spit(c, p, 150)
	if n := countVenom(f.s); n != 1 {
		t.Errorf("Expected the cooldown to hold, got %d spits", n)
	}
	f.now++
	f.spit(c, p, 150)
	if n := countVenom(f.s); n != 2 {
		t.Errorf("Expected a second spit after %vms, got %d", spitterCooldown, n)
	}
}

func TestChargerTrigger(t *testing.T) {
	tests := []struct {
		name string
		d    float64
		want bool
	}{
		{"out of range", 360, false},
		{"in range", 340, true},
		{"hugging", 40, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, p := newAIArena(t, 1000)
			c := addCreature(f, CreatureCharger, false, p.X-tt.d, p.Y)
			f.charge(c, p, tt.d)
			if got := c.AI.Charger.Charging; got != tt.want {
				t.Errorf("Expected charging=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestChargerHitStuns(t *testing.T) {
	f, p := newAIArena(t, 1000)
	c := addCreature(f, CreatureCharger, false, p.X-40, p.Y)
	st := c.AI.Charger
	st.Charging = true
	st.DirX, st.DirY = 1, 0
	st.StartedAt = f.now - chargerWindup - 100
	hp := p.HP

	f.charge(c, p, 40)

	if p.StunnedUntil != f.now+chargerStun {
		t.Errorf("Expected stun until %v, got %v", f.now+chargerStun, p.StunnedUntil)
	}
	if p.HP >= hp {
		t.Errorf("Expected the charge to hurt, hp %v -> %v", hp, p.HP)
	}
	if p.X <= 560 {
		t.Errorf("Expected the player knocked back, got x=%v", p.X)
	}
	if st.Charging {
		t.Error("Expected the charge to end on impact")
	}
}

func TestChargerAbortsOnWall(t *testing.T) {
	f, p := newAIArena(t, 1000)
	c := addCreature(f, CreatureCharger, false, 300, p.Y)
	f.s.Walls = []*Wall{{X: 310, Y: 540, W: 40, H: 40, Type: WallSolid}}
	st := c.AI.Charger
	st.Charging = true
	st.DirX, st.DirY = 1, 0
	st.StartedAt = f.now - chargerWindup - 100

	f.charge(c, p, dist(c.X, c.Y, p.X, p.Y))
	if st.Charging {
		t.Error("Expected the charge to stop at the wall")
	}
	if p.StunnedUntil != 0 {
		t.Errorf("Expected no stun, got %v", p.StunnedUntil)
	}
}

func TestChargerTimesOut(t *testing.T) {
	f, p := newAIArena(t, 5000)
	c := addCreature(f, CreatureCharger, false, 100, 100)
	st := c.AI.Charger
	st.Charging = true
	st.DirX, st.DirY = 1, 0
	st.StartedAt = f.now - chargerDuration

	x := c.X
	f.charge(c, p, dist(c.X, c.Y, p.X, p.Y))
	if st.Charging {
		t.Error("Expected the charge to expire")
	}
	if c.X != x {
		t.Errorf("Expected no rush after the charge expired, x %v -> %v", x, c.X)
	}
}

func TestHealerCadence(t *testing.T) {
	f, p := newAIArena(t, 0)
	h := addCreature(f, CreatureHealer, false, 200, 200)
	near := addCreature(f, CreatureNormal, false, 300, 200)
	far := addCreature(f, CreatureNormal, false, 400, 200)
	near.HP = near.MaxHP - 50
	far.HP = far.MaxHP - 50

	steps := []struct {
		now  float64
		want float64
	}{
		{0, near.MaxHP - 35},
		{500, near.MaxHP - 35},
		{999, near.MaxHP - 35},
		{1000, near.MaxHP - 20},
		{2000, near.MaxHP - 5},
		{3000, near.MaxHP},
	}
	for _, st := range steps {
		f.now = st.now
		f.heal(h, p)
		if math.Abs(near.HP-st.want) > 1e-9 {
			t.Errorf("Expected hp %v at %vms, got %v", st.want, st.now, near.HP)
		}
	}
	if far.HP != far.MaxHP-50 {
		t.Errorf("Expected the far creature untouched, got %v", far.HP)
	}
}

func TestHealerRetreatsBehindEscort(t *testing.T) {
	f, p := newAIArena(t, 0)
	h := addCreature(f, CreatureHealer, false, 400, 560)
	addCreature(f, CreatureNormal, false, 450, 560)
	addCreature(f, CreatureNormal, false, 450, 600)

	if f.heal(h, p) {
		t.Error("Expected no retreat with three creatures alive")
	}
	addCreature(f, CreatureNormal, false, 100, 100)
	h.Rotation = math.Pi / 2
	x := h.X
	if !f.heal(h, p) {
		t.Fatal("Expected a retreat with an escort and four creatures alive")
	}
	if h.X >= x {
		t.Errorf("Expected the healer to back away from the player, x %v -> %v", x, h.X)
	}
}

func TestJumpSlam(t *testing.T) {
	tests := []struct {
		kind     CreatureKind
		boss     bool
		cooldown float64
		burns    bool
	}{
		{CreatureTank, false, tankJumpCD, false},
		{CreatureBoss, true, bossJumpCD, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			f, p := newAIArena(t, 1000)
			c := addCreature(f, tt.kind, tt.boss, p.X-200, p.Y)
			js := c.AI.Jump
			hp := p.HP

			if !f.jumpSlam(c, p, 200) || js.Phase != JumpWindup {
				t.Fatalf("Expected a windup, got phase %v", js.Phase)
			}
			if js.TargetX != p.X || js.TargetY != p.Y {
				t.Errorf("Expected the landing point locked on the player, got (%v, %v)", js.TargetX, js.TargetY)
			}

			f.now = 1000 + jumpWindup
			f.jumpSlam(c, p, 200)
			if js.Phase != JumpAirborne {
				t.Fatalf("Expected airborne after the windup, got %v", js.Phase)
			}

			f.now += jumpAirtime
			f.jumpSlam(c, p, 200)
			if js.Phase != JumpIdle {
				t.Fatalf("Expected idle after landing, got %v", js.Phase)
			}
			if c.X != p.X || c.Y != p.Y {
				t.Errorf("Expected to land on (%v, %v), got (%v, %v)", p.X, p.Y, c.X, c.Y)
			}
			if want := hp - c.AttackDamage; p.HP != want {
				t.Errorf("Expected hp %v after a direct slam, got %v", want, p.HP)
			}
			if js.NextJumpAt != f.now+tt.cooldown {
				t.Errorf("Expected next jump at %v, got %v", f.now+tt.cooldown, js.NextJumpAt)
			}
			if burning := p.BurningUntil > f.now; burning != tt.burns {
				t.Errorf("Expected burning=%v, got %v", tt.burns, burning)
			}
		})
	}
}

func TestJumpSlamRange(t *testing.T) {
	for _, d := range []float64{90, 100, 320, 400} {
		f, p := newAIArena(t, 1000)
		c := addCreature(f, CreatureTank, false, p.X-d, p.Y)
		if f.jumpSlam(c, p, d) {
			t.Errorf("Expected no jump at %v", d)
		}
	}
}

func TestBossFireTrail(t *testing.T) {
	f, _ := newAIArena(t, 0)
	c := addCreature(f, CreatureBoss, true, 300, 300)
	firePuddles := func() int {
		n := 0
		for _, it := range f.s.Items {
			if it.Type == ItemVenomPuddle && it.Fire {
				n++
			}
		}
		return n
	}

	f.fireTrail(c)
	f.now = trailInterval - 1
	f.fireTrail(c)
	if n := firePuddles(); n != 1 {
		t.Fatalf("Expected one puddle inside the interval, got %d", n)
	}
	f.now = trailInterval
	f.fireTrail(c)
	if n := firePuddles(); n != 2 {
		t.Fatalf("Expected a second puddle, got %d", n)
	}

	for i := 0; i < 10; i++ {
		f.now += trailInterval
		f.fireTrail(c)
	}
	if n := firePuddles(); n != maxFirePuddles {
		t.Errorf("Expected the trail capped at %d puddles, got %d", maxFirePuddles, n)
	}
}

func TestWitchTongueCycle(t *testing.T) {
	f, p := newAIArena(t, 1000)
	c := addCreature(f, CreatureWitch, true, p.X-200, p.Y)
	ws := c.AI.Witch
	hp := p.HP

	var phases []TonguePhase
	record := func() {
		if len(phases) == 0 || phases[len(phases)-1] != ws.Phase {
			phases = append(phases, ws.Phase)
		}
	}
	f.witch(c, p, dist(c.X, c.Y, p.X, p.Y))
	record()
	if ws.Phase != TongueWindup || ws.TargetID != p.ID {
		t.Fatalf("Expected a windup locked on %s, got %v on %q", p.ID, ws.Phase, ws.TargetID)
	}

	for i := 0; i < 200 && !(ws.Phase == TongueAiming && len(phases) > 1); i++ {
		f.now += FrameMillis
		f.witch(c, p, dist(c.X, c.Y, p.X, p.Y))
		record()
	}

	want := []TonguePhase{TongueWindup, TongueExtending, TongueRetracting, TongueAttacking, TongueAiming}
	if len(phases) != len(want) {
		t.Fatalf("Expected phases %v, got %v", want, phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("Expected phases %v, got %v", want, phases)
		}
	}
	if p.HP >= hp {
		t.Errorf("Expected the slash to hurt, hp %v -> %v", hp, p.HP)
	}
	if p.TongueGrabbedBy != "" {
		t.Errorf("Expected the player released, got %q", p.TongueGrabbedBy)
	}
	if ws.NextTongueAt != f.now+tongueCooldown {
		t.Errorf("Expected next tongue at %v, got %v", f.now+tongueCooldown, ws.NextTongueAt)
	}

	p.X, p.Y = c.X+200, c.Y
	ready := ws.NextTongueAt
	f.now = ready - 1
	f.witch(c, p, 200)
	if ws.Phase != TongueAiming {
		t.Errorf("Expected the cooldown to hold, got %v", ws.Phase)
	}
	f.now = ready
	f.witch(c, p, 200)
	if ws.Phase != TongueWindup {
		t.Errorf("Expected a new windup after %vms, got %v", tongueCooldown, ws.Phase)
	}
}

func TestSmokeOnlyActsOnOverlap(t *testing.T) {
	f, p := newAIArena(t, 1000)
	far := addCreature(f, CreatureSmoke, false, p.X-250, p.Y)
	f.smoke(far, 250)
	if len(f.s.Items) != 0 {
		t.Fatalf("Expected no cloud out of range, got %d items", len(f.s.Items))
	}

	c := addCreature(f, CreatureSmoke, false, p.X-190, p.Y)
	f.smoke(c, 190)
	if len(f.s.Items) != 1 || f.s.Items[0].Type != ItemSmokeCloud {
		t.Fatalf("Expected one smoke cloud, got %v", f.s.Items)
	}
	cloud := f.s.Items[0]
	if cloud.Duration != 25000 {
		t.Errorf("Expected a 25s cloud, got %v", cloud.Duration)
	}

	f.hazardEffects()
	if p.BlurredUntil != 0 {
		t.Errorf("Expected no blur away from the cloud, got %v", p.BlurredUntil)
	}

	p.X, p.Y = cloud.X, cloud.Y
	f.hazardEffects()
	if p.BlurredUntil != f.now+2000 {
		t.Errorf("Expected blur until %v inside the cloud, got %v", f.now+2000, p.BlurredUntil)
	}

	f.smoke(c, 190)
	if len(f.s.Items) != 1 {
		t.Errorf("Expected the cooldown to hold, got %d clouds", len(f.s.Items))
	}
}
