package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
	"github.com/wricardo/mcp-training/gridskirmish/game/mapgraph"
	"github.com/wricardo/mcp-training/gridskirmish/game/screen"
)

// glyphWidth and lineHeight match the debug font
const (
	glyphWidth = 6
	lineHeight = 16
	nodeRadius = 22
)

var (
	backgroundColor = color.RGBA{R: 24, G: 26, B: 30, A: 255}
	headerColor     = color.RGBA{R: 40, G: 44, B: 52, A: 255}
	floorColor      = color.RGBA{R: 52, G: 60, B: 48, A: 255}
	floorLine       = color.RGBA{R: 70, G: 80, B: 64, A: 255}
	obstacleColor   = color.RGBA{R: 96, G: 88, B: 76, A: 255}
	freeColor       = color.RGBA{R: 60, G: 80, B: 120, A: 255}
	redColor        = color.RGBA{R: 220, G: 80, B: 70, A: 255}
	blueColor       = color.RGBA{R: 80, G: 120, B: 230, A: 255}
	hpBackColor     = color.RGBA{R: 20, G: 20, B: 20, A: 200}
	hpColor         = color.RGBA{R: 90, G: 210, B: 100, A: 255}
	attackColor     = color.RGBA{R: 255, G: 230, B: 120, A: 200}
	slotColor       = color.RGBA{R: 48, G: 54, B: 66, A: 255}
	slotSelected    = color.RGBA{R: 90, G: 110, B: 150, A: 255}
	edgeColor       = color.RGBA{R: 90, G: 96, B: 110, A: 255}
	pathColor       = color.RGBA{R: 230, G: 200, B: 90, A: 255}
	nodeColor       = color.RGBA{R: 60, G: 66, B: 80, A: 255}
	optionColor     = color.RGBA{R: 80, G: 170, B: 100, A: 255}
	currentColor    = color.RGBA{R: 230, G: 200, B: 90, A: 255}
	overlayColor    = color.RGBA{R: 0, G: 0, B: 0, A: 170}
)

// Draw renders whichever screen the director has active
func (g *Game) Draw(dst *ebiten.Image) {
	dst.Fill(backgroundColor)

	switch s := g.director.Current().(type) {
	case *screen.CardScreen:
		drawCard(dst, s)
	case *screen.GameMapScreen:
		drawGameMap(dst, s)
	case *screen.BattleScreen:
		g.drawBattle(dst, s)
	}

	if g.status != "" {
		ebitenutil.DebugPrintAt(dst, g.status, margin, screenHeight-lineHeight-4)
	}
}

func drawCard(dst *ebiten.Image, s *screen.CardScreen) {
	lines := append([]string{s.Heading, ""}, s.Lines...)
	top := (screenHeight - len(lines)*lineHeight) / 2
	for i, line := range lines {
		x := (screenWidth - len(line)*glyphWidth) / 2
		ebitenutil.DebugPrintAt(dst, line, x, top+i*lineHeight)
	}
}

func drawGameMap(dst *ebiten.Image, s *screen.GameMapScreen) {
	t := s.Traversal()
	layout := s.Layout()
	if t == nil || layout == nil {
		return
	}

	vector.FillRect(dst, 0, 0, screenWidth, headerHeight, headerColor, false)
	ebitenutil.DebugPrintAt(dst, "Choose your road", margin, 12)
	ebitenutil.DebugPrintAt(dst, "1-3 or click a green node, SPACE to skip", margin, 12+lineHeight)

	walked := make(map[[2]int]bool)
	for i := 1; i < len(t.Path); i++ {
		walked[[2]int{t.Path[i-1], t.Path[i]}] = true
	}

	for _, n := range t.Graph.Nodes {
		from := layout[n.ID]
		for _, p := range n.Parents {
			to := layout[p]
			col, width := edgeColor, float32(1.5)
			if walked[[2]int{n.ID, p}] {
				col, width = pathColor, 3
			}
			vector.StrokeLine(dst, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), width, col, true)
		}
	}

	options := make(map[int]int)
	for i, o := range t.Options() {
		options[o.ID] = i + 1
	}

	for _, n := range t.Graph.Nodes {
		pt := layout[n.ID]
		col := nodeColor
		if key, ok := options[n.ID]; ok {
			col = optionColor
			ebitenutil.DebugPrintAt(dst, fmt.Sprintf("[%d]", key), int(pt.X)-9, int(pt.Y)-nodeRadius-lineHeight-2)
		}
		if n.ID == t.Current {
			col = currentColor
		}
		vector.FillCircle(dst, float32(pt.X), float32(pt.Y), nodeRadius, col, true)
		drawLabel(dst, n, pt)
	}
}

func drawLabel(dst *ebiten.Image, n mapgraph.DecisionNode, pt mapgraph.Point) {
	x := int(pt.X) - len(n.Label)*glyphWidth/2
	ebitenutil.DebugPrintAt(dst, n.Label, x, int(pt.Y)+nodeRadius+2)
}

func (g *Game) drawBattle(dst *ebiten.Image, s *screen.BattleScreen) {
	battle := s.Battle()
	if battle == nil {
		return
	}
	state := battle.GetState()
	board := s.Board()

	vector.FillRect(dst, 0, 0, screenWidth, headerHeight, headerColor, false)
	ebitenutil.DebugPrintAt(dst, g.config.Name, margin, 12)
	ebitenutil.DebugPrintAt(dst, fmt.Sprintf("Turn %d   Seed %d   Phase %s", state.Turn, state.Seed, state.Phase), margin, 12+lineHeight)
	ebitenutil.DebugPrintAt(dst, state.Message, margin, 12+2*lineHeight)

	drawGrid(dst, state, board)
	if last := battle.GetLastTurn(); last != nil && state.Phase == engine.PhaseBattle {
		drawAttacks(dst, state, board, last)
	}
	drawUnits(dst, state, board)
	drawTeamPanel(dst, battle)

	switch state.Phase {
	case engine.PhasePlacing:
		drawReserves(dst, state, s)
	case engine.PhaseGameOver:
		drawGameOver(dst, state)
	}
}

func drawGrid(dst *ebiten.Image, state *engine.BattleState, board screen.Board) {
	cs := float32(board.CellSize)
	placing := state.Phase == engine.PhasePlacing

	for y := 0; y < state.Grid.Height; y++ {
		for x := 0; x < state.Grid.Width; x++ {
			p := engine.Position{X: x, Y: y}
			ox, oy := board.CellOrigin(p)
			col := floorColor
			switch {
			case state.Grid.Blocked(p):
				col = obstacleColor
			case placing && state.Units.IndexAt(p) == engine.NotFound:
				col = freeColor
			}
			vector.FillRect(dst, float32(ox), float32(oy), cs, cs, col, false)
			vector.StrokeRect(dst, float32(ox), float32(oy), cs, cs, 1, floorLine, false)
		}
	}
}

func drawAttacks(dst *ebiten.Image, state *engine.BattleState, board screen.Board, last *engine.TurnRecord) {
	half := board.CellSize / 2
	for _, a := range last.Actions {
		if a.Action != engine.ActionAttack {
			continue
		}
		target := state.Units.IndexOf(a.TargetID)
		if target == engine.NotFound {
			continue
		}
		fx, fy := board.CellOrigin(a.From)
		tx, ty := board.CellOrigin(state.Units[target].Pos)
		vector.StrokeLine(dst, float32(fx+half), float32(fy+half), float32(tx+half), float32(ty+half), 2, attackColor, true)
	}
}

func drawUnits(dst *ebiten.Image, state *engine.BattleState, board screen.Board) {
	cs := float32(board.CellSize)
	for _, u := range state.Units {
		if !u.Alive {
			continue
		}
		ox, oy := board.CellOrigin(u.Pos)
		x, y := float32(ox), float32(oy)

		col := redColor
		if u.Team == engine.TeamBlue {
			col = blueColor
		}
		vector.FillCircle(dst, x+cs/2, y+cs/2, cs*0.36, col, true)
		if cs >= 24 && u.Kind != "" {
			ebitenutil.DebugPrintAt(dst, u.Kind[:1], int(x+cs/2)-glyphWidth/2, int(y+cs/2)-lineHeight/2)
		}

		if u.MaxHP > 0 {
			frac := float32(u.HP) / float32(u.MaxHP)
			vector.FillRect(dst, x+3, y+cs-5, cs-6, 3, hpBackColor, false)
			vector.FillRect(dst, x+3, y+cs-5, (cs-6)*frac, 3, hpColor, false)
		}
	}
}

func drawTeamPanel(dst *ebiten.Image, battle *engine.BattleEngine) {
	x := int(panelX())
	y := headerHeight + margin
	for _, team := range []engine.Team{engine.TeamRed, engine.TeamBlue} {
		stats := battle.GetTeamStats(team)
		col := redColor
		if team == engine.TeamBlue {
			col = blueColor
		}
		vector.FillRect(dst, float32(x), float32(y), 8, 3*lineHeight, col, false)
		ebitenutil.DebugPrintAt(dst, fmt.Sprintf("%s team", team), x+14, y)
		ebitenutil.DebugPrintAt(dst, fmt.Sprintf("Alive: %d  Fallen: %d", stats.Alive, stats.Fallen), x+14, y+lineHeight)
		ebitenutil.DebugPrintAt(dst, fmt.Sprintf("HP: %d", stats.TotalHP), x+14, y+2*lineHeight)
		y += 4 * lineHeight
	}
	ebitenutil.DebugPrintAt(dst, "C: copy report", x, y)
}

func drawReserves(dst *ebiten.Image, state *engine.BattleState, s *screen.BattleScreen) {
	slots := s.Panel()
	if len(slots) == 0 {
		return
	}
	ebitenutil.DebugPrintAt(dst, "Reserves (1-9, click a cell)", int(slots[0].X), int(slots[0].Y)-lineHeight-4)
	for i, r := range state.Reserves {
		if i >= len(slots) {
			break
		}
		slot := slots[i]
		col := slotColor
		if i == s.Selected() {
			col = slotSelected
		}
		vector.FillRect(dst, float32(slot.X), float32(slot.Y), float32(slot.W), float32(slot.H), col, false)
		label := fmt.Sprintf("%d  %s x%d  (hp %d, atk %d)", i+1, r.Kind, r.Count, r.HP, r.Attack)
		ebitenutil.DebugPrintAt(dst, label, int(slot.X)+6, int(slot.Y)+7)
	}

	last := slots[len(slots)-1]
	y := int(last.Y+last.H) + 8
	ebitenutil.DebugPrintAt(dst, "SPACE: start battle", int(last.X), y)
	if err := s.LastError(); err != nil {
		ebitenutil.DebugPrintAt(dst, err.Error(), int(last.X), y+lineHeight)
	}
}

func drawGameOver(dst *ebiten.Image, state *engine.BattleState) {
	h := float32(4 * lineHeight)
	y := float32(screenHeight)/2 - h/2
	vector.FillRect(dst, 0, y, screenWidth, h, overlayColor, false)

	lines := []string{state.Message, "Press ENTER to continue"}
	for i, line := range lines {
		x := (screenWidth - len(line)*glyphWidth) / 2
		ebitenutil.DebugPrintAt(dst, line, x, int(y)+lineHeight/2+i*lineHeight*3/2)
	}
}
