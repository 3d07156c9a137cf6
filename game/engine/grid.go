package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
)

const (
	OpenCell     = '.'
	ObstacleCell = '#'
)

// Grid is the static terrain of the battlefield. Obstacles never change
// during a battle.
type Grid struct {
	Width   int
	Height  int
	blocked []bool
}

// NewGrid creates an obstacle-free grid
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid{
		Width:   width,
		Height:  height,
		blocked: make([]bool, width*height),
	}
}

// GridFromRows builds a grid from layout rows of '.' and '#'
func GridFromRows(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("layout has no rows")
	}
	width := len(rows[0])
	g := NewGrid(width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("layout row %d has %d cells, expected %d", y, len(row), width)
		}
		for x := 0; x < width; x++ {
			switch row[x] {
			case OpenCell:
			case ObstacleCell:
				g.blocked[y*width+x] = true
			default:
				return nil, fmt.Errorf("invalid character '%c' at row %d, col %d", row[x], y, x)
			}
		}
	}
	return g, nil
}

// InBounds reports whether p lies on the grid
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Blocked reports whether p is an obstacle. Out of bounds counts as blocked.
func (g *Grid) Blocked(p Position) bool {
	if !g.InBounds(p) {
		return true
	}
	return g.blocked[p.Y*g.Width+p.X]
}

// SetBlocked marks p as obstacle or open. Out of bounds positions are ignored.
func (g *Grid) SetBlocked(p Position, blocked bool) {
	if !g.InBounds(p) {
		return
	}
	g.blocked[p.Y*g.Width+p.X] = blocked
}

// ObstacleCount returns the number of blocked cells
func (g *Grid) ObstacleCount() int {
	n := 0
	for _, b := range g.blocked {
		if b {
			n++
		}
	}
	return n
}

// Rows renders the grid as layout rows
func (g *Grid) Rows() []string {
	rows := make([]string, g.Height)
	var sb strings.Builder
	for y := 0; y < g.Height; y++ {
		sb.Reset()
		for x := 0; x < g.Width; x++ {
			if g.blocked[y*g.Width+x] {
				sb.WriteByte(ObstacleCell)
			} else {
				sb.WriteByte(OpenCell)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// Clone returns an independent copy of the grid
func (g *Grid) Clone() *Grid {
	c := &Grid{Width: g.Width, Height: g.Height, blocked: make([]bool, len(g.blocked))}
	copy(c.blocked, g.blocked)
	return c
}

type gridJSON struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
}

// MarshalJSON encodes the grid as layout rows
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(gridJSON{Width: g.Width, Height: g.Height, Rows: g.Rows()})
}

// UnmarshalJSON decodes a grid from layout rows
func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw gridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Rows) == 0 {
		*g = *NewGrid(raw.Width, raw.Height)
		return nil
	}
	parsed, err := GridFromRows(raw.Rows)
	if err != nil {
		return err
	}
	*g = *parsed
	return nil
}

// GridOptions controls random obstacle generation
type GridOptions struct {
	Width           int
	Height          int
	ObstaclePercent int
	SpawnRows       int
	MaxAttempts     int
}

// GenerationReport describes how a grid was produced
type GenerationReport struct {
	Attempts int  `json:"attempts"`
	Carved   bool `json:"carved,omitempty"`
	Fixed    bool `json:"fixed,omitempty"`

	// Undeployed counts squad units left out for lack of a deploy cell
	Undeployed int `json:"undeployed,omitempty"`
}

// CornerStart and CornerEnd are the cells that must stay connected
func (g *Grid) CornerStart() Position { return Position{X: 0, Y: 0} }

func (g *Grid) CornerEnd() Position { return Position{X: g.Width - 1, Y: g.Height - 1} }

// CornersConnected reports whether the top-left and bottom-right corners are
// joined by an obstacle-free path
func CornersConnected(g *Grid) bool {
	return ShortestDistance(TerrainOccupancy(g), g.CornerStart(), g.CornerEnd()) != NotFound
}

// GenerateGrid fills the middle rows with random obstacles and retries until
// the corners are connected. The top and bottom SpawnRows rows are
// always clear. When MaxAttempts is exhausted the right-hand column of the
// last attempt is cleared, which joins the corners through the top spawn band.
func GenerateGrid(opts GridOptions, rng *rand.Rand) (*Grid, GenerationReport) {
	if opts.SpawnRows < 1 {
		opts.SpawnRows = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	var report GenerationReport
	var g *Grid
	for report.Attempts < opts.MaxAttempts {
		report.Attempts++
		g = randomGrid(opts, rng)
		if CornersConnected(g) {
			return g, report
		}
	}

	for y := 0; y < g.Height; y++ {
		g.SetBlocked(Position{X: g.Width - 1, Y: y}, false)
	}
	for x := 0; x < g.Width; x++ {
		g.SetBlocked(Position{X: x, Y: 0}, false)
	}
	report.Carved = true
	return g, report
}

func randomGrid(opts GridOptions, rng *rand.Rand) *Grid {
	g := NewGrid(opts.Width, opts.Height)
	for y := 0; y < g.Height; y++ {
		if y < opts.SpawnRows || y >= g.Height-opts.SpawnRows {
			continue
		}
		for x := 0; x < g.Width; x++ {
			if rng.Intn(100) < opts.ObstaclePercent {
				g.blocked[y*g.Width+x] = true
			}
		}
	}
	return g
}
