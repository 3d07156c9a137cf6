package engine

import "fmt"

// Engine provides the main interface for battle operations
type Engine interface {
	// Battle state management
	GetState() *BattleState
	SetState(state *BattleState) error
	Reset() *BattleState
	Reseed(seed int64) *BattleState
	IsGameOver() bool
	GetOutcome() Outcome
	GetPhase() Phase

	// Simulation
	Update(dt float64) *TurnRecord
	RunTurn() *TurnRecord
	RunTurns(n int) []TurnRecord

	// Placement
	PlaceUnit(reserve int, pos Position) (*Unit, error)
	StartBattle() error
	AutoDeploy() error
	Acknowledge() bool

	// Configuration
	GetConfig() *BattleConfig
	SetConfig(config *BattleConfig) error

	// History
	GetTurnHistory() []TurnRecord
	GetLastTurn() *TurnRecord

	// Statistics
	GetTeamStats(team Team) TeamStats
}

// BattleEngine implements the Engine interface
type BattleEngine struct {
	state  *BattleState
	config *BattleConfig
}

// NewEngine creates a new battle engine with the provided configuration.
// A zero seed uses the config seed, then the clock.
func NewEngine(config *BattleConfig, seed int64) (*BattleEngine, error) {
	if err := ValidateBattleConfig(config); err != nil {
		return nil, err
	}

	return &BattleEngine{
		config: config,
		state:  InitBattleStateFromConfig(config, seed),
	}, nil
}

// NewEngineWithDefaults creates a new battle engine with the classic configuration
func NewEngineWithDefaults(seed int64) *BattleEngine {
	config := DefaultBattleConfig()
	return &BattleEngine{
		config: config,
		state:  InitBattleStateFromConfig(config, seed),
	}
}

// GetState returns the current battle state
func (e *BattleEngine) GetState() *BattleState {
	return e.state
}

// SetState sets the battle state (used for persistence loading)
func (e *BattleEngine) SetState(state *BattleState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Grid == nil {
		return fmt.Errorf("state has no grid")
	}
	e.state = state
	e.state.refreshViews()
	return nil
}

// Reset replays the battle from the same seed
func (e *BattleEngine) Reset() *BattleState {
	return e.restart(e.state.Seed)
}

// Reseed restarts the battle with a new seed. Zero picks one from the clock.
func (e *BattleEngine) Reseed(seed int64) *BattleState {
	return e.restart(ResolveSeed(seed))
}

func (e *BattleEngine) restart(seed int64) *BattleState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.History
	prevTotal := e.state.TotalTurns

	e.state = InitBattleStateFromConfig(e.config, seed)

	e.state.History = prevHistory
	e.state.TotalTurns = prevTotal
	return e.state
}

// IsGameOver returns whether one side has been wiped out
func (e *BattleEngine) IsGameOver() bool {
	return e.state.Phase == PhaseGameOver
}

// GetOutcome returns the battle result, empty while the battle continues
func (e *BattleEngine) GetOutcome() Outcome {
	return e.state.Outcome
}

// GetPhase returns the current phase
func (e *BattleEngine) GetPhase() Phase {
	return e.state.Phase
}

// Update feeds one frame of elapsed time into the battle
func (e *BattleEngine) Update(dt float64) *TurnRecord {
	return e.state.Advance(dt, e.config)
}

// RunTurn resolves a turn immediately, ignoring the turn timer
func (e *BattleEngine) RunTurn() *TurnRecord {
	if e.state.Phase != PhaseBattle {
		return nil
	}
	e.state.TurnTimer = 0
	record := e.state.ResolveTurn(e.config)
	return &record
}

// RunTurns resolves up to n turns, stopping early when the battle ends
func (e *BattleEngine) RunTurns(n int) []TurnRecord {
	if n < 0 {
		n = 0
	}
	records := make([]TurnRecord, 0, n)
	for i := 0; i < n; i++ {
		record := e.RunTurn()
		if record == nil {
			break
		}
		records = append(records, *record)
	}
	return records
}

// PlaceUnit puts a reserve unit on the board
func (e *BattleEngine) PlaceUnit(reserve int, pos Position) (*Unit, error) {
	return e.state.PlaceUnit(reserve, pos, e.config)
}

// StartBattle ends the placing phase
func (e *BattleEngine) StartBattle() error {
	return e.state.StartBattle(e.config)
}

// AutoDeploy places every remaining reserve on the first free cells counting
// from the bottom row upward, then starts the battle. Headless runs use it in
// place of a player.
func (e *BattleEngine) AutoDeploy() error {
	if e.state.Phase != PhasePlacing {
		return fmt.Errorf("auto deploy: %w (phase %s)", ErrWrongPhase, e.state.Phase)
	}
	for r := range e.state.Reserves {
		for e.state.Reserves[r].Count > 0 {
			pos, ok := e.freeCellFromBottom()
			if !ok {
				return fmt.Errorf("auto deploy: %w: board is full", ErrInvalidPlacement)
			}
			if _, err := e.PlaceUnit(r, pos); err != nil {
				return err
			}
		}
	}
	return e.StartBattle()
}

func (e *BattleEngine) freeCellFromBottom() (Position, bool) {
	g := e.state.Grid
	for y := g.Height - 1; y >= 0; y-- {
		for x := 0; x < g.Width; x++ {
			p := Position{X: x, Y: y}
			if !g.Blocked(p) && e.state.Units.IndexAt(p) == NotFound {
				return p, true
			}
		}
	}
	return Position{}, false
}

// Acknowledge confirms a finished battle
func (e *BattleEngine) Acknowledge() bool {
	return e.state.Acknowledge()
}

// GetConfig returns the current battle configuration
func (e *BattleEngine) GetConfig() *BattleConfig {
	return e.config
}

// SetConfig sets a new battle configuration and restarts the battle
func (e *BattleEngine) SetConfig(config *BattleConfig) error {
	if err := ValidateBattleConfig(config); err != nil {
		return err
	}

	e.config = config
	e.state = InitBattleStateFromConfig(config, 0)
	return nil
}

// GetTurnHistory returns every resolved turn, including those before resets
func (e *BattleEngine) GetTurnHistory() []TurnRecord {
	return e.state.History
}

// GetLastTurn returns the last resolved turn, or nil if none
func (e *BattleEngine) GetLastTurn() *TurnRecord {
	if len(e.state.History) == 0 {
		return nil
	}
	return &e.state.History[len(e.state.History)-1]
}

// GetTeamStats summarizes one side
func (e *BattleEngine) GetTeamStats(team Team) TeamStats {
	return e.state.Units.Stats(team)
}
