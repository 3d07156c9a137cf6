package screen

import "github.com/wricardo/mcp-training/gridskirmish/game/engine"

// ID identifies a screen variant
type ID int

const (
	Logo ID = iota
	Title
	GameMap
	Gameplay
	Setup
	Ending
)

func (id ID) String() string {
	switch id {
	case Logo:
		return "logo"
	case Title:
		return "title"
	case GameMap:
		return "game_map"
	case Gameplay:
		return "gameplay"
	case Setup:
		return "setup"
	case Ending:
		return "ending"
	}
	return "unknown"
}

// Finish codes returned by Screen.Finish
const (
	Continue = 0
	Done     = 1
	Skipped  = 2
)

// Key is a host-independent key identifier
type Key int

const (
	KeyOne Key = iota + 1
	KeyTwo
	KeyThree
	KeyFour
	KeyFive
	KeySix
	KeySeven
	KeyEight
	KeyNine
	KeySpace
	KeyEnter
)

// NumberKeys maps key order to choice index: NumberKeys[0] selects option 0
var NumberKeys = []Key{KeyOne, KeyTwo, KeyThree, KeyFour, KeyFive, KeySix, KeySeven, KeyEight, KeyNine}

// Input is what a screen can observe from the host during one frame
type Input interface {
	KeyPressed(k Key) bool
	Click() (x, y float64, ok bool)
}

// Frame is a recorded frame of input
type Frame struct {
	Keys    []Key
	Clicked bool
	X, Y    float64
}

// KeyPressed reports whether k was pressed this frame
func (f Frame) KeyPressed(k Key) bool {
	for _, pressed := range f.Keys {
		if pressed == k {
			return true
		}
	}
	return false
}

// Click returns the position of a click made this frame
func (f Frame) Click() (float64, float64, bool) {
	return f.X, f.Y, f.Clicked
}

// NoInput is an idle frame
var NoInput Input = Frame{}

// Screen is the lifecycle every screen variant implements. Drawing is the
// host's job and only reads state exposed by each variant.
type Screen interface {
	Init()
	Update(dt float64, in Input)
	Unload()
	Finish() int
}

// Board maps screen coordinates to grid cells
type Board struct {
	OffsetX  float64
	OffsetY  float64
	CellSize float64
}

// CellAt returns the cell under a screen point
func (b Board) CellAt(x, y float64, grid *engine.Grid) (engine.Position, bool) {
	if b.CellSize <= 0 || x < b.OffsetX || y < b.OffsetY {
		return engine.Position{}, false
	}
	p := engine.Position{
		X: int((x - b.OffsetX) / b.CellSize),
		Y: int((y - b.OffsetY) / b.CellSize),
	}
	if grid == nil || !grid.InBounds(p) {
		return engine.Position{}, false
	}
	return p, true
}

// CellOrigin returns the top-left screen corner of a cell
func (b Board) CellOrigin(p engine.Position) (float64, float64) {
	return b.OffsetX + float64(p.X)*b.CellSize, b.OffsetY + float64(p.Y)*b.CellSize
}

// Rect is an axis-aligned screen rectangle
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether a point falls inside the rectangle
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}
