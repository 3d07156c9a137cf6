package screen

import (
	"errors"
	"testing"

	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
)

func runUntilGameOver(t *testing.T, s *BattleScreen) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if s.Battle().IsGameOver() {
			return
		}
		s.Update(1, NoInput)
	}
	t.Fatal("Expected battle to end within 100 frames")
}

func TestBattleScreenPlacementFlow(t *testing.T) {
	s := NewBattleScreen(placementConfig(), 0, testBoard, []Rect{{X: 0, Y: 0, W: 50, H: 20}})
	if s.ID() != Setup {
		t.Fatalf("Expected setup variant, got %s", s.ID())
	}
	s.Init()
	if s.LastError() != nil {
		t.Fatalf("Unexpected init error: %v", s.LastError())
	}
	if s.Battle().GetPhase() != engine.PhasePlacing {
		t.Fatalf("Expected placing phase, got %s", s.Battle().GetPhase())
	}

	// Clicking the board before choosing a reserve does nothing
	x, y := cellCenter(testBoard, engine.Position{X: 3, Y: 3})
	s.Update(0.016, click(x, y))
	if len(s.Battle().GetState().Units) != 1 {
		t.Fatal("Expected no placement without a selected reserve")
	}

	// Starting early is rejected
	s.Update(0.016, keys(KeySpace))
	if !errors.Is(s.LastError(), engine.ErrReservesRemaining) {
		t.Errorf("Expected ErrReservesRemaining, got %v", s.LastError())
	}

	// Select through the panel
	s.Update(0.016, click(10, 10))
	if s.Selected() != 0 {
		t.Fatalf("Expected reserve 0 selected, got %d", s.Selected())
	}

	// Occupied cell is refused
	ox, oy := cellCenter(testBoard, engine.Position{X: 0, Y: 0})
	s.Update(0.016, click(ox, oy))
	if !errors.Is(s.LastError(), engine.ErrInvalidPlacement) {
		t.Errorf("Expected ErrInvalidPlacement, got %v", s.LastError())
	}

	s.Update(0.016, click(x, y))
	if s.LastError() != nil {
		t.Fatalf("Unexpected placement error: %v", s.LastError())
	}
	if s.Battle().GetState().Units.IndexAt(engine.Position{X: 3, Y: 3}) == engine.NotFound {
		t.Fatal("Expected knight on (3,3)")
	}

	s.Update(0.016, keys(KeySpace))
	if s.Battle().GetPhase() != engine.PhaseBattle {
		t.Fatalf("Expected battle phase after SPACE, got %s", s.Battle().GetPhase())
	}

	runUntilGameOver(t, s)
	if s.Battle().GetOutcome() != engine.OutcomeBlue {
		t.Errorf("Expected the knight to win, got %q", s.Battle().GetOutcome())
	}
	if s.Finish() != Continue {
		t.Fatal("Expected screen to wait for ENTER after game over")
	}
	s.Update(0.016, keys(KeyEnter))
	if s.Finish() != Done {
		t.Error("Expected ENTER to finish the screen")
	}
	if !s.Battle().GetState().Finished {
		t.Error("Expected the result to be acknowledged")
	}

	s.Unload()
	if s.Battle() != nil {
		t.Error("Expected Unload to drop the battle")
	}
}

func TestBattleScreenNumberKeySelects(t *testing.T) {
	s := NewBattleScreen(placementConfig(), 0, testBoard, nil)
	s.Init()

	s.Update(0.016, keys(KeyTwo))
	if s.Selected() != -1 {
		t.Errorf("Expected key for a missing reserve to be ignored, got %d", s.Selected())
	}
	s.Update(0.016, keys(KeyOne))
	if s.Selected() != 0 {
		t.Errorf("Expected reserve 0 selected, got %d", s.Selected())
	}
}

func TestBattleScreenReportsTurns(t *testing.T) {
	s := NewBattleScreen(battleConfig(), 0, testBoard, nil)
	if s.ID() != Gameplay {
		t.Fatalf("Expected gameplay variant, got %s", s.ID())
	}
	var turns []int
	s.OnTurn = func(r engine.TurnRecord) { turns = append(turns, r.Number) }
	s.Init()

	s.Update(0.25, NoInput)
	if len(turns) != 0 {
		t.Fatal("Expected no turn before the interval elapses")
	}
	s.Update(0.25, NoInput)
	if len(turns) != 1 || turns[0] != 1 {
		t.Fatalf("Expected turn 1 reported, got %v", turns)
	}

	runUntilGameOver(t, s)
	if len(turns) != s.Battle().GetState().Turn {
		t.Errorf("Expected every turn reported, got %d of %d", len(turns), s.Battle().GetState().Turn)
	}
}

func TestBattleScreenFallsBackOnBadConfig(t *testing.T) {
	config := battleConfig()
	config.Name = ""
	s := NewBattleScreen(config, 5, testBoard, nil)
	s.Init()

	if !errors.Is(s.LastError(), engine.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", s.LastError())
	}
	if s.Battle() == nil || s.Battle().GetPhase() != engine.PhaseBattle {
		t.Error("Expected the classic battle as fallback")
	}
}
