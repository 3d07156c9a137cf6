package main

import (
	"errors"
	"log"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
	"github.com/wricardo/mcp-training/gridskirmish/game/screen"
)

const statusDuration = 2.5

// errNoReport is returned when there is nothing to copy yet
var errNoReport = errors.New("no battle report yet")

// Game adapts the screen director to ebiten
type Game struct {
	director *screen.Director
	config   *engine.BattleConfig

	status      string
	statusTimer float64

	// copyText writes to the system clipboard; swapped out in tests
	copyText func(string) error
}

// NewGame builds the board geometry for the config and starts on the logo
func NewGame(battleConfig *engine.BattleConfig, seed int64) *Game {
	board := boardFor(battleConfig)
	d := screen.NewDirector(battleConfig, seed, board, reserveSlots(), screenWidth, screenHeight)
	d.OnSwitch = func(from, to screen.ID) {
		log.Printf("Screen %s -> %s", from, to)
	}
	d.Start(screen.Logo)

	return &Game{
		director: d,
		config:   battleConfig,
		copyText: clipboard.WriteAll,
	}
}

// boardFor fits the grid into the area left of the side panel
func boardFor(battleConfig *engine.BattleConfig) screen.Board {
	availW := float64(screenWidth - panelWidth - 3*margin)
	availH := float64(screenHeight - headerHeight - 2*margin)

	cell := float64(maxCellSize)
	if w := battleConfig.Grid.Width; w > 0 && availW/float64(w) < cell {
		cell = availW / float64(w)
	}
	if h := battleConfig.Grid.Height; h > 0 && availH/float64(h) < cell {
		cell = availH / float64(h)
	}
	cell = float64(int(cell))

	return screen.Board{
		OffsetX:  margin,
		OffsetY:  headerHeight + margin,
		CellSize: cell,
	}
}

// panelX is the left edge of the side panel
func panelX() float64 {
	return float64(screenWidth - panelWidth - margin)
}

// reserveSlots lays out one clickable slot per number key in the side panel
func reserveSlots() []screen.Rect {
	slots := make([]screen.Rect, len(screen.NumberKeys))
	top := float64(headerHeight + 200)
	for i := range slots {
		slots[i] = screen.Rect{
			X: panelX(),
			Y: top + float64(i*(slotHeight+slotGap)),
			W: panelWidth,
			H: slotHeight,
		}
	}
	return slots
}

// Update reads this frame's input and advances the director
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyReport()
	}
	g.step(frameDelta, readInput())
	return nil
}

// step advances one frame with the given input
func (g *Game) step(dt float64, in screen.Input) {
	if g.statusTimer > 0 {
		g.statusTimer -= dt
		if g.statusTimer <= 0 {
			g.status = ""
		}
	}
	g.director.Update(dt, in)
}

// reportText is the last finished battle's report, or the running battle's
func (g *Game) reportText() string {
	lines := g.director.Report()
	if bs, ok := g.director.Current().(*screen.BattleScreen); ok && bs.Battle() != nil {
		lines = engine.BattleReport(bs.Battle().GetState())
	}
	return strings.Join(lines, "\n")
}

func (g *Game) copyReport() {
	text := g.reportText()
	if text == "" {
		g.setStatus(errNoReport.Error())
		return
	}
	if err := g.copyText(text); err != nil {
		log.Printf("Clipboard write failed: %v", err)
		g.setStatus("Clipboard unavailable")
		return
	}
	g.setStatus("Report copied to clipboard")
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusTimer = statusDuration
}

// Layout keeps a fixed logical resolution
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}
