package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// NewRNG returns a deterministic random source for the given seed
func NewRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// ResolveSeed picks the first non-zero seed, falling back to the clock
func ResolveSeed(seeds ...int64) int64 {
	for _, s := range seeds {
		if s != 0 {
			return s
		}
	}
	return time.Now().UnixNano()
}

// CountObstacles counts blocked cells in a set of layout rows
func CountObstacles(rows []string) int {
	count := 0
	for _, row := range rows {
		for i := 0; i < len(row); i++ {
			if row[i] == ObstacleCell {
				count++
			}
		}
	}
	return count
}

// AnalyzeBalance describes which side currently has the edge, comparing
// headcount and remaining hit points
func AnalyzeBalance(state *BattleState) string {
	if state == nil {
		return ""
	}
	switch state.Outcome {
	case OutcomeRed:
		return "DECIDED: Red holds the field"
	case OutcomeBlue:
		return "DECIDED: Blue holds the field"
	case OutcomeDraw:
		return "DECIDED: Nobody is left standing"
	}

	red := state.Units.Stats(TeamRed)
	blue := state.Units.Stats(TeamBlue)
	if red.Alive == 0 && blue.Alive == 0 {
		return "EMPTY: No units on the field"
	}

	lead := func(a, b TeamStats) string {
		ratio := float64(a.TotalHP) / float64(max(b.TotalHP, 1))
		switch {
		case b.Alive == 0:
			return fmt.Sprintf("UNOPPOSED: %s has no enemies left", a.Team)
		case ratio >= 2:
			return fmt.Sprintf("CRUSHING: %s leads %d hp to %d", a.Team, a.TotalHP, b.TotalHP)
		case ratio >= 1.25:
			return fmt.Sprintf("ADVANTAGE: %s leads %d hp to %d", a.Team, a.TotalHP, b.TotalHP)
		}
		return ""
	}
	if s := lead(red, blue); s != "" {
		return s
	}
	if s := lead(blue, red); s != "" {
		return s
	}
	return fmt.Sprintf("EVEN: red %d units/%d hp, blue %d units/%d hp", red.Alive, red.TotalHP, blue.Alive, blue.TotalHP)
}

// BattleReport summarizes a battle in a few lines of text
func BattleReport(state *BattleState) []string {
	if state == nil {
		return nil
	}
	outcome := string(state.Outcome)
	if outcome == "" {
		outcome = "undecided"
	}
	red := state.Units.Stats(TeamRed)
	blue := state.Units.Stats(TeamBlue)
	return []string{
		fmt.Sprintf("Battle: %s (seed %d)", state.ConfigName, state.Seed),
		fmt.Sprintf("Turns: %d, outcome: %s", state.Turn, outcome),
		fmt.Sprintf("Red: %d alive, %d hp, %d fallen", red.Alive, red.TotalHP, red.Fallen),
		fmt.Sprintf("Blue: %d alive, %d hp, %d fallen", blue.Alive, blue.TotalHP, blue.Fallen),
		fmt.Sprintf("Grid: %dx%d, %d obstacles, %d generation attempts",
			state.Grid.Width, state.Grid.Height, state.Grid.ObstacleCount(), state.Generation.Attempts),
	}
}

// RenderBoard draws the terrain with living units on top: 'R' for red, 'B'
// for blue. Rows run top to bottom.
func RenderBoard(state *BattleState) []string {
	if state == nil || state.Grid == nil {
		return nil
	}
	rows := state.Grid.Rows()
	cells := make([][]byte, len(rows))
	for y, row := range rows {
		cells[y] = []byte(row)
	}
	for _, u := range state.Units {
		if !u.Alive || !state.Grid.InBounds(u.Pos) {
			continue
		}
		mark := byte('B')
		if u.Team == TeamRed {
			mark = 'R'
		}
		cells[u.Pos.Y][u.Pos.X] = mark
	}
	for y := range cells {
		rows[y] = string(cells[y])
	}
	return rows
}
