package screen

import "github.com/wricardo/mcp-training/gridskirmish/game/engine"

// placementConfig is an open 4x4 field with one red footman in the corner
// and a single knight waiting in reserve
func placementConfig() *engine.BattleConfig {
	return &engine.BattleConfig{
		Name:         "Screen Test",
		Description:  "Tiny placement battle",
		Seed:         3,
		TurnInterval: 0.5,
		Placement:    true,
		Grid: engine.GridConfig{
			Width:      4,
			Height:     4,
			DeployRows: 1,
			Layout:     []string{"....", "....", "....", "...."},
		},
		Catalogue: map[string]engine.UnitKind{
			"footman": {HP: 2, Attack: 1},
			"knight":  {HP: 10, Attack: 5},
		},
		Units:    []engine.FixedUnit{{Team: engine.TeamRed, Kind: "footman", X: 0, Y: 0}},
		Reserves: []engine.Squad{{Kind: "knight", Count: 1}},
		Route:    engine.RouteConfig{Levels: 2, MaxBranch: 2, MaxParents: 2},
	}
}

func battleConfig() *engine.BattleConfig {
	config := placementConfig()
	config.Placement = false
	config.Reserves = nil
	config.Units = append(config.Units, engine.FixedUnit{Team: engine.TeamBlue, Kind: "knight", X: 3, Y: 3})
	return config
}

var testBoard = Board{OffsetX: 100, OffsetY: 50, CellSize: 20}

func keys(k ...Key) Frame {
	return Frame{Keys: k}
}

func click(x, y float64) Frame {
	return Frame{Clicked: true, X: x, Y: y}
}

// cellCenter returns the screen point in the middle of a board cell
func cellCenter(b Board, p engine.Position) (float64, float64) {
	x, y := b.CellOrigin(p)
	return x + b.CellSize/2, y + b.CellSize/2
}
