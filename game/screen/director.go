package screen

import (
	"math/rand"

	"github.com/wricardo/mcp-training/gridskirmish/game/engine"
	"github.com/wricardo/mcp-training/gridskirmish/game/mapgraph"
)

// Director owns the active screen and switches between variants when the
// active one finishes: logo, title, map, battle, ending, then back to title.
type Director struct {
	config    *engine.BattleConfig
	seed      int64
	board     Board
	panel     []Rect
	mapWidth  float64
	mapHeight float64
	rng       *rand.Rand

	id      ID
	current Screen
	battles int
	report  []string

	// OnTurn, when set, receives every turn of every battle
	OnTurn func(engine.TurnRecord)
	// OnSwitch, when set, is called after each transition
	OnSwitch func(from, to ID)
}

// NewDirector creates a director. A zero seed means every battle and map is
// seeded from the clock.
func NewDirector(config *engine.BattleConfig, seed int64, board Board, panel []Rect, mapWidth, mapHeight float64) *Director {
	if config == nil {
		config = engine.DefaultBattleConfig()
	}
	return &Director{
		config:    config,
		seed:      seed,
		board:     board,
		panel:     panel,
		mapWidth:  mapWidth,
		mapHeight: mapHeight,
		rng:       engine.NewRNG(engine.ResolveSeed(seed)),
	}
}

// Start unloads the active screen and initializes the requested one
func (d *Director) Start(id ID) {
	if d.current != nil {
		d.current.Unload()
	}
	d.id = id
	d.current = d.build(id)
	d.current.Init()
}

// Update runs one frame of the active screen and switches when it finishes
func (d *Director) Update(dt float64, in Input) {
	if d.current == nil {
		d.Start(Logo)
	}
	d.current.Update(dt, in)

	if d.current.Finish() == Continue {
		return
	}
	if bs, ok := d.current.(*BattleScreen); ok && bs.Battle() != nil {
		d.report = engine.BattleReport(bs.Battle().GetState())
	}

	from := d.id
	d.Start(d.next(from))
	if d.OnSwitch != nil {
		d.OnSwitch(from, d.id)
	}
}

// next is the fixed screen order; a skipped screen moves on like a finished one
func (d *Director) next(from ID) ID {
	switch from {
	case Logo:
		return Title
	case Title:
		return GameMap
	case GameMap:
		return d.battleID()
	case Gameplay, Setup:
		return Ending
	}
	return Title
}

func (d *Director) battleID() ID {
	if d.config.Placement {
		return Setup
	}
	return Gameplay
}

func (d *Director) build(id ID) Screen {
	switch id {
	case Logo:
		return &CardScreen{Heading: "GRID SKIRMISH", Duration: 2}
	case Title:
		return &CardScreen{
			Heading: d.config.Name,
			Lines:   []string{d.config.Description, "Press ENTER to begin"},
		}
	case GameMap:
		return NewGameMapScreen(mapgraph.Options{
			Levels:     d.config.Route.Levels,
			MaxBranch:  d.config.Route.MaxBranch,
			MaxParents: d.config.Route.MaxParents,
		}, d.rng, d.mapWidth, d.mapHeight)
	case Gameplay, Setup:
		d.battles++
		var seed int64
		if d.seed != 0 {
			seed = d.seed + int64(d.battles)
		}
		bs := NewBattleScreen(d.config, seed, d.board, d.panel)
		bs.OnTurn = d.OnTurn
		return bs
	case Ending:
		return &CardScreen{
			Heading: "Battle Report",
			Lines:   append(append([]string{}, d.report...), "Press ENTER to continue"),
		}
	}
	return &CardScreen{Heading: id.String()}
}

// Current returns the active screen
func (d *Director) Current() Screen {
	return d.current
}

// ID returns the active screen's id
func (d *Director) ID() ID {
	return d.id
}

// Battles returns how many battles have been started
func (d *Director) Battles() int {
	return d.battles
}

// Report returns the summary of the last finished battle
func (d *Director) Report() []string {
	return d.report
}
