package screen

import (
	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
)

// BattleScreen runs one battle. With a placement config it opens in the
// placing phase: pick a reserve with a number key or its panel, click board
// cells to deploy, then SPACE starts the fight. ENTER leaves after game over.
type BattleScreen struct {
	config *engine.BattleConfig
	seed   int64
	board  Board
	panel  []Rect

	battle   *engine.BattleEngine
	selected int
	lastErr  error
	finish   int

	// OnTurn, when set, receives every resolved turn
	OnTurn func(engine.TurnRecord)
}

// NewBattleScreen prepares a battle screen. Nothing is generated until Init.
// panel holds the clickable reserve slots, in reserve order.
func NewBattleScreen(config *engine.BattleConfig, seed int64, board Board, panel []Rect) *BattleScreen {
	return &BattleScreen{
		config:   config,
		seed:     seed,
		board:    board,
		panel:    panel,
		selected: -1,
	}
}

// ID reports whether this is the placement variant
func (s *BattleScreen) ID() ID {
	if s.config != nil && s.config.Placement {
		return Setup
	}
	return Gameplay
}

// Init builds a fresh battle from the config
func (s *BattleScreen) Init() {
	s.finish = Continue
	s.selected = -1
	s.lastErr = nil

	battle, err := engine.NewEngine(s.config, s.seed)
	if err != nil {
		s.lastErr = err
		battle = engine.NewEngineWithDefaults(s.seed)
	}
	s.battle = battle
}

// Update advances the battle by one frame
func (s *BattleScreen) Update(dt float64, in Input) {
	if s.battle == nil {
		return
	}

	switch s.battle.GetPhase() {
	case engine.PhasePlacing:
		s.updatePlacing(in)
	case engine.PhaseBattle:
		if record := s.battle.Update(dt); record != nil && s.OnTurn != nil {
			s.OnTurn(*record)
		}
	case engine.PhaseGameOver:
		if in.KeyPressed(KeyEnter) {
			s.battle.Acknowledge()
			s.finish = Done
		}
	}
}

func (s *BattleScreen) updatePlacing(in Input) {
	reserves := s.battle.GetState().Reserves
	for i, k := range NumberKeys {
		if i < len(reserves) && in.KeyPressed(k) {
			s.selected = i
		}
	}

	if x, y, ok := in.Click(); ok {
		if slot := s.slotAt(x, y, len(reserves)); slot >= 0 {
			s.selected = slot
		} else if pos, ok := s.board.CellAt(x, y, s.battle.GetState().Grid); ok && s.selected >= 0 {
			_, s.lastErr = s.battle.PlaceUnit(s.selected, pos)
		}
	}

	if in.KeyPressed(KeySpace) {
		s.lastErr = s.battle.StartBattle()
	}
}

func (s *BattleScreen) slotAt(x, y float64, reserves int) int {
	for i, r := range s.panel {
		if i < reserves && r.Contains(x, y) {
			return i
		}
	}
	return -1
}

// Unload drops the battle
func (s *BattleScreen) Unload() {
	s.battle = nil
}

// Finish is Done once the result has been acknowledged
func (s *BattleScreen) Finish() int {
	return s.finish
}

// Battle exposes the running battle for drawing
func (s *BattleScreen) Battle() *engine.BattleEngine {
	return s.battle
}

// Selected returns the reserve index chosen for placement, or -1
func (s *BattleScreen) Selected() int {
	return s.selected
}

// LastError returns the most recent rejected placement or start request
func (s *BattleScreen) LastError() error {
	return s.lastErr
}

// Board returns the board geometry used for hit-testing
func (s *BattleScreen) Board() Board {
	return s.board
}

// Panel returns the reserve slot rectangles
func (s *BattleScreen) Panel() []Rect {
	return s.panel
}
