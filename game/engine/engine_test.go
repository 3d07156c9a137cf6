package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	engine, err := NewEngine(config, 7)
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	if engine.GetPhase() != PhaseBattle {
		t.Errorf("Expected battle phase, got %s", engine.GetPhase())
	}
	if engine.IsGameOver() {
		t.Error("Expected game not to be over initially")
	}
	if engine.GetOutcome() != OutcomeNone {
		t.Errorf("Expected no outcome, got %q", engine.GetOutcome())
	}
	if engine.GetState().Seed != 7 {
		t.Errorf("Expected seed 7, got %d", engine.GetState().Seed)
	}
	if engine.GetConfig() != config {
		t.Error("Expected engine to keep the config")
	}
	if engine.GetLastTurn() != nil {
		t.Error("Expected no turns yet")
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Name = ""
	if _, err := NewEngine(config, 1); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestEngineRunTurnsStopsAtGameOver(t *testing.T) {
	engine := NewEngineWithDefaults(11)
	records := engine.RunTurns(MaxBulkTurns)

	if !engine.IsGameOver() {
		t.Fatalf("Expected classic battle to finish within %d turns", MaxBulkTurns)
	}
	last := records[len(records)-1]
	if last.Outcome == OutcomeNone {
		t.Error("Expected last record to carry the outcome")
	}
	if len(records) != engine.GetState().Turn {
		t.Errorf("Expected %d records, got %d", engine.GetState().Turn, len(records))
	}
	if more := engine.RunTurns(5); len(more) != 0 {
		t.Errorf("Expected no turns after game over, got %d", len(more))
	}
	if engine.RunTurn() != nil {
		t.Error("RunTurn should return nil after game over")
	}
	if engine.GetLastTurn().Number != last.Number {
		t.Error("Last turn mismatch")
	}
}

func TestEngineResetReplaysSameBattle(t *testing.T) {
	engine := NewEngineWithDefaults(21)
	first := engine.RunTurns(MaxBulkTurns)
	firstOutcome := engine.GetOutcome()

	engine.Reset()
	if engine.GetState().Turn != 0 {
		t.Errorf("Expected turn counter reset, got %d", engine.GetState().Turn)
	}
	if got := len(engine.GetTurnHistory()); got != len(first) {
		t.Errorf("Expected history preserved across reset, got %d entries", got)
	}

	second := engine.RunTurns(MaxBulkTurns)
	if len(second) != len(first) || engine.GetOutcome() != firstOutcome {
		t.Errorf("Expected replay to match: %d turns %q vs %d turns %q",
			len(first), firstOutcome, len(second), engine.GetOutcome())
	}
	if engine.GetState().TotalTurns != len(first)+len(second) {
		t.Errorf("Expected cumulative total, got %d", engine.GetState().TotalTurns)
	}
}

func TestEngineReseed(t *testing.T) {
	engine := NewEngineWithDefaults(1)
	engine.RunTurns(3)
	state := engine.Reseed(2)
	if state.Seed != 2 {
		t.Errorf("Expected seed 2, got %d", state.Seed)
	}
	if state.Turn != 0 {
		t.Errorf("Expected fresh battle, got turn %d", state.Turn)
	}
	if engine.Reseed(0).Seed == 0 {
		t.Error("Expected a clock seed when reseeding with zero")
	}
}

func TestEngineUpdateUsesTurnInterval(t *testing.T) {
	config := createTestConfig()
	engine, err := NewEngine(config, 5)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	turns := 0
	for frame := 0; frame < 8; frame++ {
		if engine.Update(0.25) != nil {
			turns++
		}
		if engine.IsGameOver() {
			break
		}
	}
	if !engine.IsGameOver() && turns != 4 {
		t.Errorf("Expected 4 turns from 2 seconds at 0.5s per turn, got %d", turns)
	}
}

func TestEngineSetState(t *testing.T) {
	engine := NewEngineWithDefaults(3)
	if err := engine.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}
	if err := engine.SetState(&BattleState{}); err == nil {
		t.Error("Expected error for state without grid")
	}

	other := InitBattleStateFromConfig(DefaultBattleConfig(), 99)
	other.Red = nil
	if err := engine.SetState(other); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if engine.GetState().Seed != 99 {
		t.Errorf("Expected loaded state, got seed %d", engine.GetState().Seed)
	}
	if engine.GetState().Red == nil {
		t.Error("Expected stats views refreshed after load")
	}
}

func TestEngineSetConfig(t *testing.T) {
	engine := NewEngineWithDefaults(3)
	bad := createTestConfig()
	bad.Grid.Width = 0
	if err := engine.SetConfig(bad); err == nil {
		t.Error("Expected error for invalid config")
	}

	good := createTestConfig()
	if err := engine.SetConfig(good); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if engine.GetState().Grid.Width != 6 {
		t.Errorf("Expected new grid width 6, got %d", engine.GetState().Grid.Width)
	}
	if engine.GetTeamStats(TeamRed).Alive != 6 {
		t.Errorf("Expected 6 red units, got %d", engine.GetTeamStats(TeamRed).Alive)
	}
}

func TestEnginePlacementThroughInterface(t *testing.T) {
	config := createTestConfig()
	config.Placement = true
	config.Teams.Blue = nil
	config.Reserves = []Squad{{Kind: "footman", Count: 1}}

	var e Engine
	be, err := NewEngine(config, 8)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	e = be

	if e.Update(10) != nil {
		t.Error("No turns while placing")
	}
	if err := e.StartBattle(); err == nil {
		t.Error("Expected error while reserves remain")
	}

	var spot Position
	found := false
	for y := e.GetState().Grid.Height - 1; y >= 0 && !found; y-- {
		for x := 0; x < e.GetState().Grid.Width; x++ {
			p := Position{X: x, Y: y}
			if !e.GetState().Grid.Blocked(p) && e.GetState().Units.IndexAt(p) == NotFound {
				spot, found = p, true
				break
			}
		}
	}
	if _, err := e.PlaceUnit(0, spot); err != nil {
		t.Fatalf("Failed to place unit: %v", err)
	}
	if err := e.StartBattle(); err != nil {
		t.Fatalf("Failed to start battle: %v", err)
	}
	if e.Update(1) == nil {
		t.Error("Expected a turn after starting")
	}
}

func TestEngineAutoDeploy(t *testing.T) {
	e, err := NewEngine(DefaultSetupConfig(), 4)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if err := e.AutoDeploy(); err != nil {
		t.Fatalf("AutoDeploy failed: %v", err)
	}
	state := e.GetState()
	if state.Phase != PhaseBattle {
		t.Errorf("Expected battle phase, got %s", state.Phase)
	}
	if state.ReservesRemaining() != 0 {
		t.Errorf("Expected no reserves left, got %d", state.ReservesRemaining())
	}
	if got := state.Units.AliveCount(TeamBlue); got != 7 {
		t.Errorf("Expected 7 blue units, got %d", got)
	}

	seen := make(map[Position]bool)
	for _, u := range state.Units {
		if state.Grid.Blocked(u.Pos) {
			t.Errorf("Unit %d placed on an obstacle at %v", u.ID, u.Pos)
		}
		if seen[u.Pos] {
			t.Errorf("Two units share %v", u.Pos)
		}
		seen[u.Pos] = true
	}

	if err := e.AutoDeploy(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Expected ErrWrongPhase on second call, got %v", err)
	}
}

func TestAnalyzeBalance(t *testing.T) {
	bs := newTestBattle(NewGrid(4, 4),
		Unit{Team: TeamRed, Pos: Position{0, 0}, HP: 10, Attack: 1},
		Unit{Team: TeamBlue, Pos: Position{3, 3}, HP: 10, Attack: 1},
	)
	if got := AnalyzeBalance(bs); !strings.HasPrefix(got, "EVEN") {
		t.Errorf("Expected EVEN, got %q", got)
	}

	bs.Units[1].HP = 4
	if got := AnalyzeBalance(bs); !strings.HasPrefix(got, "CRUSHING: red") {
		t.Errorf("Expected CRUSHING for red, got %q", got)
	}

	bs.Units[1].HP = 7
	if got := AnalyzeBalance(bs); !strings.HasPrefix(got, "ADVANTAGE: red") {
		t.Errorf("Expected ADVANTAGE for red, got %q", got)
	}

	bs.ResolveTurn(nil)
	bs.Outcome = OutcomeBlue
	if got := AnalyzeBalance(bs); !strings.HasPrefix(got, "DECIDED") {
		t.Errorf("Expected DECIDED, got %q", got)
	}
}

func TestCountObstacles(t *testing.T) {
	if n := CountObstacles([]string{"#.#", "..#"}); n != 3 {
		t.Errorf("Expected 3, got %d", n)
	}
}

func TestBattleReport(t *testing.T) {
	bs := newTestBattle(NewGrid(4, 4), Unit{Team: TeamRed, Pos: Position{0, 0}, HP: 3, Attack: 1})
	bs.ConfigName = "Report"
	bs.ResolveTurn(nil)

	lines := BattleReport(bs)
	if len(lines) != 5 {
		t.Fatalf("Expected 5 lines, got %d", len(lines))
	}
	if lines[1] != "Turns: 1, outcome: red" {
		t.Errorf("Unexpected turn line %q", lines[1])
	}
	if !strings.HasPrefix(lines[0], "Battle: Report") {
		t.Errorf("Unexpected heading %q", lines[0])
	}
	if BattleReport(nil) != nil {
		t.Error("Expected nil report for nil state")
	}
}

func TestRenderBoard(t *testing.T) {
	grid, _ := GridFromRows([]string{"..#", "...", "#.."})
	state := &BattleState{
		Grid: grid,
		Units: Roster{
			{ID: 1, Team: TeamRed, Pos: Position{X: 0, Y: 0}, Alive: true},
			{ID: 2, Team: TeamBlue, Pos: Position{X: 2, Y: 2}, Alive: true},
			{ID: 3, Team: TeamBlue, Pos: Position{X: 1, Y: 1}, Alive: false},
		},
	}

	got := RenderBoard(state)
	want := []string{"R.#", "...", "#.B"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %q, want %q", i, got[i], want[i])
		}
	}

	if RenderBoard(nil) != nil {
		t.Error("expected nil board for nil state")
	}
}
