package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
	"github.com/wricardo/mcp-training/gridskirmish/game/screen"
)

func TestBoardFor(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		want   float64
	}{
		{"classic fits by height", 8, 16, 38},
		{"small grid keeps max cell", 6, 10, maxCellSize},
		{"wide grid fits by width", 64, 4, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := engine.DefaultBattleConfig()
			cfg.Grid.Width = tt.width
			cfg.Grid.Height = tt.height

			board := boardFor(cfg)
			if board.CellSize != tt.want {
				t.Errorf("Expected cell size %v, got %v", tt.want, board.CellSize)
			}
			right := board.OffsetX + board.CellSize*float64(tt.width)
			if right > panelX() {
				t.Errorf("Board overlaps the side panel: %v > %v", right, panelX())
			}
		})
	}
}

func TestReserveSlots(t *testing.T) {
	slots := reserveSlots()
	if len(slots) != len(screen.NumberKeys) {
		t.Fatalf("Expected %d slots, got %d", len(screen.NumberKeys), len(slots))
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].Y < slots[i-1].Y+slots[i-1].H {
			t.Errorf("Slot %d overlaps slot %d", i, i-1)
		}
	}
	last := slots[len(slots)-1]
	if last.Y+last.H > screenHeight {
		t.Errorf("Last slot runs off screen at %v", last.Y+last.H)
	}
}

func TestTranslateKeys(t *testing.T) {
	got := translateKeys([]ebiten.Key{ebiten.KeyDigit2, ebiten.KeyA, ebiten.KeyNumpad2, ebiten.KeyEnter})
	want := []screen.Key{screen.KeyTwo, screen.KeyEnter}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Key %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	if keys := translateKeys(nil); len(keys) != 0 {
		t.Errorf("Expected no keys, got %v", keys)
	}
}

func TestGameFlow(t *testing.T) {
	cfg, err := loadConfig("../../configs", "skirmish")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	g := NewGame(cfg, 11)

	var copied string
	g.copyText = func(s string) error {
		copied = s
		return nil
	}

	g.copyReport()
	if g.status != errNoReport.Error() {
		t.Errorf("Expected no-report status on the logo, got %q", g.status)
	}

	g.step(2.5, screen.NoInput)
	if g.director.ID() != screen.Title {
		t.Fatalf("Expected title after the logo, got %s", g.director.ID())
	}
	if g.statusTimer != 0 || g.status != "" {
		t.Errorf("Expected status to expire, got %q (%v)", g.status, g.statusTimer)
	}

	g.step(frameDelta, screen.Frame{Keys: []screen.Key{screen.KeyEnter}})
	if g.director.ID() != screen.GameMap {
		t.Fatalf("Expected game map, got %s", g.director.ID())
	}

	g.step(frameDelta, screen.Frame{Keys: []screen.Key{screen.KeySpace}})
	if g.director.ID() != screen.Gameplay {
		t.Fatalf("Expected gameplay after skipping the map, got %s", g.director.ID())
	}

	g.copyReport()
	if !strings.Contains(copied, "Battle: Quick Skirmish (seed 12)") {
		t.Errorf("Expected running battle report, got %q", copied)
	}
	if g.status != "Report copied to clipboard" {
		t.Errorf("Unexpected status %q", g.status)
	}
}

func TestCopyReportFailure(t *testing.T) {
	g := NewGame(engine.DefaultBattleConfig(), 3)
	g.copyText = func(string) error { return errors.New("no clipboard") }
	g.director.Start(screen.Gameplay)

	g.copyReport()
	if g.status != "Clipboard unavailable" {
		t.Errorf("Expected clipboard failure status, got %q", g.status)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("/non/existent/path", "")
	if err != nil {
		t.Fatalf("Expected built-in fallback, got %v", err)
	}
	if cfg.Name != engine.DefaultBattleConfig().Name {
		t.Errorf("Expected built-in config, got %s", cfg.Name)
	}

	if _, err := loadConfig("/non/existent/path", "skirmish"); err == nil {
		t.Error("Expected error for a named config in a missing directory")
	}
	if _, err := loadConfig("../../configs", "missing"); err == nil {
		t.Error("Expected error for an unknown config")
	}
}
