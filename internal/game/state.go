package game

// MatchSettings is the per-room rule configuration, fixed when the match starts.
type MatchSettings struct {
	Mode         GameMode   `json:"mode" yaml:"mode"`
	Difficulty   Difficulty `json:"difficulty" yaml:"difficulty"`
	SpawnRate    float64    `json:"spawnRate" yaml:"spawnRate"`       // creature spawn interval divisor
	MaxCreatures int        `json:"maxCreatures" yaml:"maxCreatures"` // concurrent cap
	WaveDuration float64    `json:"waveDuration" yaml:"waveDuration"` // seconds, advisory
	ScoreToWin   int        `json:"scoreToWin" yaml:"scoreToWin"`
	TimeLimit    float64    `json:"timeLimit" yaml:"timeLimit"` // seconds
	Bots         *int       `json:"bots,omitempty" yaml:"bots,omitempty"`
}

// DefaultSettings returns the stock rules of mode.
func DefaultSettings(mode GameMode) MatchSettings {
	s := MatchSettings{
		Mode:         mode,
		Difficulty:   DifficultyNormal,
		SpawnRate:    1,
		MaxCreatures: 40,
		WaveDuration: 60,
	}
	switch mode {
	case ModeTeamDeathmatch:
		s.ScoreToWin = 20
		s.TimeLimit = 300
	case ModeGemGrab:
		s.ScoreToWin = 10
		s.TimeLimit = 120
	case ModeBrawlBall:
		s.ScoreToWin = 2
		s.TimeLimit = 180
	}
	return s
}

// Normalized fills unset numeric fields with the mode defaults.
func (s MatchSettings) Normalized() MatchSettings {
	d := DefaultSettings(s.Mode)
	if s.SpawnRate <= 0 {
		s.SpawnRate = d.SpawnRate
	}
	if s.MaxCreatures <= 0 {
		s.MaxCreatures = d.MaxCreatures
	}
	if s.WaveDuration <= 0 {
		s.WaveDuration = d.WaveDuration
	}
	if s.ScoreToWin <= 0 {
		s.ScoreToWin = d.ScoreToWin
	}
	if s.TimeLimit <= 0 {
		s.TimeLimit = d.TimeLimit
	}
	return s
}

// Input is one player's intention for a tick. A missing input is the zero value.
type Input struct {
	Up           bool     `json:"up,omitempty"`
	Down         bool     `json:"down,omitempty"`
	Left         bool     `json:"left,omitempty"`
	Right        bool     `json:"right,omitempty"`
	Fire         bool     `json:"fire,omitempty"`
	MouseX       *float64 `json:"mouseX,omitempty"` // absolute aim point
	MouseY       *float64 `json:"mouseY,omitempty"`
	AimX         *float64 `json:"aimX,omitempty"` // relative aim vector (joystick)
	AimY         *float64 `json:"aimY,omitempty"`
	SwitchWeapon *int     `json:"weapon,omitempty"`
	BuildWall    bool     `json:"buildWall,omitempty"`
}

// AimAt sets an absolute aim point.
func (in *Input) AimAt(x, y float64) {
	in.MouseX, in.MouseY = &x, &y
}

// Projectile is a bullet, pellet, rocket, grenade or creature spit.
type Projectile struct {
	ID              string     `json:"id"`
	OwnerID         string     `json:"ownerId"`
	OwnerTeam       Team       `json:"ownerTeam"`
	X               float64    `json:"x"`
	Y               float64    `json:"y"`
	VX              float64    `json:"vx"`
	VY              float64    `json:"vy"`
	Damage          float64    `json:"damage"`
	Weapon          WeaponType `json:"weapon"`
	Life            float64    `json:"life"`
	ExplosionRadius float64    `json:"explosionRadius,omitempty"`
	Hostile         bool       `json:"hostile,omitempty"` // fired by a creature
	Venom           bool       `json:"venom,omitempty"`
}

// Particle is a purely visual effect.
type Particle struct {
	X     float64      `json:"x"`
	Y     float64      `json:"y"`
	VX    float64      `json:"vx"`
	VY    float64      `json:"vy"`
	Life  float64      `json:"life"`
	Color string       `json:"color"`
	Size  float64      `json:"size"`
	Type  ParticleType `json:"type"`
	Text  string       `json:"text,omitempty"`
}

// Wall is an axis-aligned terrain rectangle.
type Wall struct {
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	W       float64  `json:"w"`
	H       float64  `json:"h"`
	Type    WallType `json:"type"`
	HP      float64  `json:"hp,omitempty"`
	MaxHP   float64  `json:"maxHp,omitempty"`
	Drop    *Loot    `json:"drop,omitempty"` // crate contents
	OwnerID string   `json:"ownerId,omitempty"`

	destroyed bool
}

// Center returns the midpoint of w.
func (w *Wall) Center() (float64, float64) { return w.X + w.W/2, w.Y + w.H/2 }

// Destroyed reports whether w was broken during the current tick.
func (w *Wall) Destroyed() bool { return w.destroyed }

// Ball is the brawl ball.
type Ball struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	HeldBy   string  `json:"heldBy,omitempty"`
	Rotation float64 `json:"rotation"`
}

// Goal is a scoring rectangle defended by Team.
type Goal struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
	Team Team    `json:"team"`
}

// Announcement is a transient banner for the UI.
type Announcement struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Color     string  `json:"color"`
	StartedAt float64 `json:"startedAt"`
	Duration  float64 `json:"duration"`
}

// TeamScores is the RED/BLUE tally of team modes.
type TeamScores struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// Get returns the score of t.
func (s TeamScores) Get(t Team) int {
	switch t {
	case TeamRed:
		return s.Red
	case TeamBlue:
		return s.Blue
	}
	return 0
}

func (s *TeamScores) add(t Team, n int) {
	switch t {
	case TeamRed:
		s.Red += n
	case TeamBlue:
		s.Blue += n
	}
}

// WorldState is the complete authoritative snapshot of one room. Tick never
// mutates its input; every tick returns a fresh value.
type WorldState struct {
	RoomID   string        `json:"roomId"`
	Settings MatchSettings `json:"settings"`
	TickNum  uint64        `json:"tick"`
	Now      float64       `json:"now"` // ms since match start
	RNG      Rand          `json:"rng"`

	Players     []*Player     `json:"players"`
	Creatures   []*Creature   `json:"creatures"`
	Projectiles []*Projectile `json:"projectiles"`
	Particles   []Particle    `json:"particles"`
	Items       []*Item       `json:"items"`
	Walls       []*Wall       `json:"walls"`
	Ball        *Ball         `json:"ball,omitempty"`
	Goals       []Goal        `json:"goals,omitempty"`

	Wave                    int       `json:"wave"`
	WaveState               WaveState `json:"waveState"`
	WaveRestStartedAt       float64   `json:"waveRestStartedAt"`
	CreaturesKilledThisWave int       `json:"creaturesKilledThisWave"`
	CreaturesToSpawn        int       `json:"creaturesToSpawn"`
	CreaturesSpawned        int       `json:"creaturesSpawned"`
	LastCreatureSpawnAt     float64   `json:"lastCreatureSpawnAt"`
	LastItemSpawnAt         float64   `json:"lastItemSpawnAt"`

	TeamScores           TeamScores   `json:"teamScores"`
	MatchTimeRemaining   float64      `json:"matchTimeRemaining"` // seconds
	GoalCelebrationUntil float64      `json:"goalCelebrationUntil"`
	LastGoalScorer       string       `json:"lastGoalScorer,omitempty"`
	GunGameOrder         []WeaponType `json:"gunGameOrder,omitempty"`

	Announcements []Announcement `json:"announcements"`

	GameOver     bool    `json:"gameOver"`
	Winner       Team    `json:"winner"`
	WinnerID     string  `json:"winnerId,omitempty"`
	WinnerName   string  `json:"winnerName,omitempty"`
	SurvivalTime float64 `json:"survivalTime"` // seconds

	Events []Event `json:"events,omitempty"`
}

// Player returns the player with id, or nil.
func (s *WorldState) Player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Creature returns the creature with id, or nil.
func (s *WorldState) Creature(id string) *Creature {
	for _, c := range s.Creatures {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// HumanCount is the number of non-bot players.
func (s *WorldState) HumanCount() int {
	n := 0
	for _, p := range s.Players {
		if !p.IsBot {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of s.
func (s *WorldState) Clone() *WorldState {
	out := *s
	out.Settings.Bots = clonePtr(s.Settings.Bots)

	out.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.clone()
	}
	out.Creatures = make([]*Creature, len(s.Creatures))
	for i, c := range s.Creatures {
		cc := *c
		cc.AI = c.AI.clone()
		out.Creatures[i] = &cc
	}
	out.Projectiles = make([]*Projectile, len(s.Projectiles))
	for i, b := range s.Projectiles {
		bb := *b
		out.Projectiles[i] = &bb
	}
	out.Particles = append([]Particle(nil), s.Particles...)
	out.Items = make([]*Item, len(s.Items))
	for i, it := range s.Items {
		ii := *it
		out.Items[i] = &ii
	}
	out.Walls = make([]*Wall, len(s.Walls))
	for i, w := range s.Walls {
		ww := *w
		ww.Drop = clonePtr(w.Drop)
		out.Walls[i] = &ww
	}
	if s.Ball != nil {
		b := *s.Ball
		out.Ball = &b
	}
	out.Goals = append([]Goal(nil), s.Goals...)
	out.GunGameOrder = append([]WeaponType(nil), s.GunGameOrder...)
	out.Announcements = append([]Announcement(nil), s.Announcements...)
	out.Events = append([]Event(nil), s.Events...)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
