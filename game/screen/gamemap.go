package screen

import (
	"math/rand"

	"github.com/wricardo/mcp-training/gridskirmish/game/mapgraph"
)

// GameMapScreen lets the player walk a freshly generated decision map.
// Keys 1-3 pick an option, a click picks the option under the pointer and
// SPACE skips the map. The screen finishes on a node without options.
type GameMapScreen struct {
	opts   mapgraph.Options
	rng    *rand.Rand
	width  float64
	height float64
	margin float64

	traversal *mapgraph.Traversal
	layout    mapgraph.Layout
	finish    int
}

// NewGameMapScreen prepares a map screen of the given pixel size
func NewGameMapScreen(opts mapgraph.Options, rng *rand.Rand, width, height float64) *GameMapScreen {
	return &GameMapScreen{
		opts:   opts,
		rng:    rng,
		width:  width,
		height: height,
		margin: 120,
	}
}

// Init generates a new map and places the player on its root
func (s *GameMapScreen) Init() {
	g := mapgraph.Generate(s.opts, s.rng)
	s.traversal = mapgraph.NewTraversal(g)
	s.layout = mapgraph.NewLayout(g, s.width, s.height, s.margin)
	s.finish = Continue
	if s.traversal.Finished() {
		s.finish = Done
	}
}

// Update applies this frame's choice
func (s *GameMapScreen) Update(dt float64, in Input) {
	if s.traversal == nil || s.finish != Continue {
		return
	}
	if in.KeyPressed(KeySpace) {
		s.finish = Skipped
		return
	}

	// at most one step per frame: a key choice wins over a click
	moved := false
	for i, k := range NumberKeys[:3] {
		if in.KeyPressed(k) && s.traversal.Choose(i) {
			moved = true
			break
		}
	}
	if x, y, ok := in.Click(); ok && !moved {
		s.traversal.ChooseAt(s.layout, x, y)
	}

	if s.traversal.Finished() {
		s.finish = Done
	}
}

// Unload drops the map
func (s *GameMapScreen) Unload() {
	s.traversal = nil
	s.layout = nil
}

// Finish is Done at an ending and Skipped when the player skipped
func (s *GameMapScreen) Finish() int {
	return s.finish
}

// Traversal exposes the walk for drawing
func (s *GameMapScreen) Traversal() *mapgraph.Traversal {
	return s.traversal
}

// Layout exposes the cached node positions for drawing
func (s *GameMapScreen) Layout() mapgraph.Layout {
	return s.layout
}
