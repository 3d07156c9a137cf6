package engine

// Team identifies which side a unit fights for
type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Opponent returns the enemy team
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// Valid reports whether t is one of the two known teams
func (t Team) Valid() bool {
	return t == TeamRed || t == TeamBlue
}

// Phase is the battle state machine position
type Phase string

const (
	PhasePlacing  Phase = "placing"
	PhaseBattle   Phase = "battle"
	PhaseGameOver Phase = "game_over"
)

// Outcome is the result of a finished battle
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeRed  Outcome = "red"
	OutcomeBlue Outcome = "blue"
	OutcomeDraw Outcome = "draw"
)

const (
	// NotFound is returned by searches that find no path or no target
	NotFound = -1

	// Validation constants
	MinGridSize         = 2
	MaxGridSize         = 64
	MaxObstaclePercent  = 90
	MaxRouteLevels      = 12
	DefaultMaxAttempts  = 1000
	DefaultTurnInterval = 1.0
	DefaultMaxUnits     = 64
	MaxBulkTurns        = 500
	WebSocketBufferSize = 256
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Unit is a single combatant on the board
type Unit struct {
	ID     int      `json:"id"`
	Kind   string   `json:"kind"`
	Team   Team     `json:"team"`
	Pos    Position `json:"pos"`
	HP     int      `json:"hp"`
	MaxHP  int      `json:"max_hp"`
	Attack int      `json:"attack"`
	Alive  bool     `json:"alive"`
}

// Reserve is a stack of identical units waiting to be placed on the board
type Reserve struct {
	Kind   string `json:"kind"`
	HP     int    `json:"hp"`
	Attack int    `json:"attack"`
	Count  int    `json:"count"`
}

// TeamStats summarizes one side of the battle
type TeamStats struct {
	Team    Team `json:"team"`
	Alive   int  `json:"alive"`
	TotalHP int  `json:"total_hp"`
	Fallen  int  `json:"fallen"`
}

// UnitAction records what a single unit did during a turn
type UnitAction struct {
	UnitID   int      `json:"unit_id"`
	Team     Team     `json:"team"`
	Action   string   `json:"action"` // attack, move, hold
	From     Position `json:"from"`
	To       Position `json:"to"`
	TargetID int      `json:"target_id"`
	Damage   int      `json:"damage,omitempty"`
	TargetHP int      `json:"target_hp,omitempty"`
	Killed   bool     `json:"killed,omitempty"`
}

const (
	ActionAttack = "attack"
	ActionMove   = "move"
	ActionHold   = "hold"
)

// TurnRecord represents a single resolved turn in the battle history
type TurnRecord struct {
	Number    int          `json:"number"`
	Actions   []UnitAction `json:"actions"`
	RedAlive  int          `json:"red_alive"`
	BlueAlive int          `json:"blue_alive"`
	Outcome   Outcome      `json:"outcome,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

// Kills returns how many units died during the turn
func (r TurnRecord) Kills() int {
	n := 0
	for _, a := range r.Actions {
		if a.Killed {
			n++
		}
	}
	return n
}

// BattleState represents the complete battle state
type BattleState struct {
	Grid         *Grid            `json:"grid"`
	Units        Roster           `json:"units"`
	Reserves     []Reserve        `json:"reserves,omitempty"`
	Phase        Phase            `json:"phase"`
	Outcome      Outcome          `json:"outcome,omitempty"`
	Finished     bool             `json:"finished"`
	TurnTimer    float64          `json:"turn_timer"`
	TurnInterval float64          `json:"turn_interval"`
	Turn         int              `json:"turn"`
	MaxUnits     int              `json:"max_units"`
	NextUnitID   int              `json:"next_unit_id"`
	Message      string           `json:"message"`
	ConfigName   string           `json:"config_name"`
	Seed         int64            `json:"seed"`
	Generation   GenerationReport `json:"generation"`

	// History is cumulative across resets while Turn restarts from zero.
	History    []TurnRecord `json:"history"`
	TotalTurns int          `json:"total_turns"`

	// Computed helper views (not required for core battle logic)
	Red     *TeamStats `json:"red,omitempty"`
	Blue    *TeamStats `json:"blue,omitempty"`
	Balance string     `json:"balance,omitempty"`
}
