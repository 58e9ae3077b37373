package game

import (
	"fmt"
	"math"
)

const (
	creatureSpawnInterval = 700.0 // ms, divided by MatchSettings.SpawnRate
	spawnEdgeInset        = 60.0
	gunGameKillsPerRank   = 2
)

var (
	waveCrateDrops  = []ItemType{ItemHealth, ItemHealth, ItemAmmo, ItemAmmo, ItemShield, ItemSpeedBoost, ItemDamageBoost}
	waveWeaponDrops = []WeaponType{WeaponShotgun, WeaponRifle, WeaponBat, WeaponMachineGun}
)

// WaveQuota is the number of creatures wave n sends at difficulty d.
func WaveQuota(wave int, d Difficulty) int {
	return int(math.Floor(float64(6+3*wave) * d.Multipliers().CreatureCount))
}

// InitialWaveQuota is the size of the first wave.
func InitialWaveQuota(d Difficulty) int {
	return int(math.Round(8 * d.Multipliers().CreatureCount))
}

// =============================================================================
// END CONDITIONS
// =============================================================================

// checkEnd evaluates the win conditions against the state carried over from
// the previous tick.
func (f *frame) checkEnd() {
	s := f.s
	timeUp := s.Settings.Mode.IsTimed() && s.MatchTimeRemaining <= 0
	switch f.mode() {
	case ModeZombieSurvival:
		humans, alive := 0, 0
		for _, p := range s.Players {
			if p.IsBot {
				continue
			}
			humans++
			if !p.Dead {
				alive++
			}
		}
		if humans > 0 && alive == 0 {
			f.endMatch(TeamNone, "", "")
		}
	case ModeTeamDeathmatch:
		switch {
		case s.TeamScores.Red >= s.Settings.ScoreToWin:
			f.endMatch(TeamRed, "", "")
		case s.TeamScores.Blue >= s.Settings.ScoreToWin:
			f.endMatch(TeamBlue, "", "")
		case timeUp:
			f.endMatch(leader(s.TeamScores.Red, s.TeamScores.Blue), "", "")
		}
	case ModeBrawlBall:
		switch {
		case s.TeamScores.Red >= s.Settings.ScoreToWin:
			f.endMatch(TeamRed, "", "")
		case s.TeamScores.Blue >= s.Settings.ScoreToWin:
			f.endMatch(TeamBlue, "", "")
		case timeUp:
			f.endMatch(leader(s.TeamScores.Red, s.TeamScores.Blue), "", "")
		}
	case ModeGemGrab:
		if timeUp {
			red, blue := TeamGems(s)
			f.endMatch(leader(red, blue), "", "")
		}
	}
}

// TeamGems totals the gems carried by each team.
func TeamGems(s *WorldState) (red, blue int) {
	for _, p := range s.Players {
		switch p.Team {
		case TeamRed:
			red += p.Gems
		case TeamBlue:
			blue += p.Gems
		}
	}
	return red, blue
}

// leader returns the team ahead, or TeamNone on a draw.
func leader(red, blue int) Team {
	switch {
	case red > blue:
		return TeamRed
	case blue > red:
		return TeamBlue
	}
	return TeamNone
}

// endMatch flags the match over. It is a no-op once the match has ended.
func (f *frame) endMatch(winner Team, winnerID, winnerName string) {
	s := f.s
	if s.GameOver {
		return
	}
	s.GameOver = true
	s.Winner = winner
	s.WinnerID = winnerID
	s.WinnerName = winnerName

	var text string
	switch {
	case winnerName != "":
		text = fmt.Sprintf("🏆 %s WINS!", winnerName)
	case f.survival():
		text = fmt.Sprintf("💀 GAME OVER - survived to wave %d", s.Wave)
	case winner == TeamNone:
		text = "🤝 DRAW!"
	default:
		text = fmt.Sprintf("🏆 %s WINS!", winner)
	}
	f.announce(text, "#ffdd00", 5000)

	red, blue := s.TeamScores.Red, s.TeamScores.Blue
	if f.mode() == ModeGemGrab {
		red, blue = TeamGems(s)
	}
	payload := MatchOverPayload{
		Mode:       f.mode(),
		Winner:     winner,
		WinnerID:   winnerID,
		WinnerName: winnerName,
		Red:        red,
		Blue:       blue,
	}
	if f.survival() {
		payload.Wave = s.Wave
		payload.SurvivalTime = s.SurvivalTime
	}
	f.emit(EventTypeMatchOver, winnerID, payload)
}

// =============================================================================
// SURVIVAL WAVES
// =============================================================================

// updateWaves advances the FIGHTING/REST cycle and feeds the current wave.
func (f *frame) updateWaves() {
	if !f.survival() {
		return
	}
	s := f.s
	switch s.WaveState {
	case WaveFighting:
		live := 0
		for _, c := range s.Creatures {
			if !c.dead {
				live++
			}
		}
		if s.CreaturesKilledThisWave >= s.CreaturesToSpawn && live == 0 {
			f.completeWave()
			return
		}
		interval := creatureSpawnInterval / s.Settings.SpawnRate
		if s.CreaturesSpawned < s.CreaturesToSpawn && live < s.Settings.MaxCreatures && f.now-s.LastCreatureSpawnAt > interval {
			f.spawnCreature()
		}
	case WaveRest:
		if f.now-s.WaveRestStartedAt >= WaveRestTime {
			f.startWave(s.Wave + 1)
		}
	}
}

func (f *frame) completeWave() {
	s := f.s
	s.WaveState = WaveRest
	s.WaveRestStartedAt = f.now
	f.announce(fmt.Sprintf("🎉 Wave %d Complete!", s.Wave), "#44ff44", 3000)
	for _, t := range AllWeapons() {
		if st := t.Stats(); st.UnlockWave == s.Wave+1 {
			f.announce(fmt.Sprintf("🔓 %s Unlocked!", st.Name), "#ffdd00", 4000)
		}
	}
	f.emit(EventTypeWaveComplete, "", WavePayload{Wave: s.Wave})
}

// startWave resets the per-wave counters, drops supply crates and levels up
// every living player.
func (f *frame) startWave(n int) {
	s := f.s
	s.Wave = n
	s.WaveState = WaveFighting
	s.CreaturesKilledThisWave = 0
	s.CreaturesSpawned = 0
	s.CreaturesToSpawn = WaveQuota(n, s.Settings.Difficulty)

	crates := 3 + n/2
	for i := 0; i < crates; i++ {
		drop := Loot{Type: waveCrateDrops[f.rng.Intn(len(waveCrateDrops))]}
		if f.rng.Chance(0.3) {
			drop = Loot{Type: ItemWeapon, Weapon: waveWeaponDrops[f.rng.Intn(len(waveWeaponDrops))]}
		}
		f.dropCrate(drop)
	}
	if n >= 10 {
		for i := 0; i < 1+(n-10)/3; i++ {
			f.dropCrate(Loot{Type: ItemWallKit})
		}
		f.announce("🧱 Wall Kit Crates Available!", "#8866aa", 2500)
	}
	f.announce(fmt.Sprintf("🎁 %d Supply Crates Dropped!", crates), "#88aaff", 2500)

	for _, p := range s.Players {
		if p.Dead {
			continue
		}
		p.levelUp(n, s.Settings.Difficulty)
		f.text(p.X, p.Y-30, fmt.Sprintf("⬆️ LVL %d!", n), "#ffff00", 14, 1.5)
	}
	f.announce("📈 Level Up! HP+10%, Ammo+10%, Fire Rate+5%", "#ffff00", 3000)
	f.emit(EventTypeWaveStart, "", WavePayload{Wave: n, ToSpawn: s.CreaturesToSpawn, Crates: crates})
}

func (f *frame) dropCrate(drop Loot) {
	x, y := SafePosition(f.s.Walls, TeamNone, f.rng)
	f.s.Walls = append(f.s.Walls, crate(x-14, y-14, 28, 35, drop))
}

// spawnCreature brings the next creature of the wave in from a random map edge.
func (f *frame) spawnCreature() {
	s := f.s
	kind, boss := rollCreature(f.rng, s.Wave, s.CreaturesSpawned)
	var x, y float64
	switch f.rng.Intn(4) {
	case 0:
		x, y = spawnEdgeInset, f.rng.Float64()*MapSize
	case 1:
		x, y = MapSize-spawnEdgeInset, f.rng.Float64()*MapSize
	case 2:
		x, y = f.rng.Float64()*MapSize, spawnEdgeInset
	default:
		x, y = f.rng.Float64()*MapSize, MapSize-spawnEdgeInset
	}
	c := NewCreature(f.rng.NewID("creature"), kind, boss, WaveContext{
		Wave:          s.Wave,
		SpawnedInWave: s.CreaturesSpawned,
		X:             x,
		Y:             y,
	})
	s.Creatures = append(s.Creatures, c)
	s.CreaturesSpawned++
	s.LastCreatureSpawnAt = f.now
	if boss {
		f.announce(fmt.Sprintf("👹 %s INCOMING!", kind.Stats().Name), "#ff2222", 3000)
	}
}

// =============================================================================
// GUN GAME
// =============================================================================

// gunGameLoadout is the single-weapon inventory of a gun game rank.
func gunGameLoadout(order []WeaponType, rank int) []Weapon {
	if len(order) == 0 {
		return []Weapon{NewWeapon(WeaponPistol)}
	}
	if rank >= len(order) {
		rank = len(order) - 1
	}
	return []Weapon{NewWeapon(order[rank])}
}

// gunGameCredit counts a kill toward the killer's next rank. Finishing the
// last rank wins the match.
func (f *frame) gunGameCredit(killer *Player) {
	s := f.s
	killer.GunGameKillsAtRank++
	if killer.GunGameKillsAtRank < gunGameKillsPerRank {
		return
	}
	killer.GunGameKillsAtRank = 0
	killer.GunGameRank++
	if killer.GunGameRank >= len(s.GunGameOrder) {
		f.endMatch(killer.Team, killer.ID, killer.Name)
		return
	}
	next := s.GunGameOrder[killer.GunGameRank]
	killer.Weapons = gunGameLoadout(s.GunGameOrder, killer.GunGameRank)
	killer.CurrentWeapon = 0
	killer.Reloading = false
	f.text(killer.X, killer.Y-30, "⬆️ "+next.Stats().Name, "#ffdd00", 14, 1.2)
	f.announce(fmt.Sprintf("%s ➜ %s (%d/%d)", killer.Name, next.Stats().Name, killer.GunGameRank+1, len(s.GunGameOrder)), "#ffdd00", 2000)
	f.emit(EventTypePromotion, killer.ID, PromotionPayload{
		PlayerID: killer.ID,
		Rank:     killer.GunGameRank,
		Weapon:   next,
	})
}
