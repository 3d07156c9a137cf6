package engine

import (
	"math/rand"
	"testing"
)

// bruteForceDistance relaxes every cell until nothing changes
func bruteForceDistance(occ Occupancy, w, h int, from, to Position) int {
	if from == to {
		return 0
	}
	if occ.Blocked(to) {
		return NotFound
	}
	const inf = 1 << 30
	dist := make([]int, w*h)
	for i := range dist {
		dist[i] = inf
	}
	dist[from.Y*w+from.X] = 0

	for changed := true; changed; {
		changed = false
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				d := dist[y*w+x]
				if d == inf {
					continue
				}
				for _, dir := range directions {
					n := Position{X: x + dir.X, Y: y + dir.Y}
					if occ.Blocked(n) {
						continue
					}
					if d+1 < dist[n.Y*w+n.X] {
						dist[n.Y*w+n.X] = d + 1
						changed = true
					}
				}
			}
		}
	}
	if dist[to.Y*w+to.X] == inf {
		return NotFound
	}
	return dist[to.Y*w+to.X]
}

func randomOpenGrid(rng *rand.Rand, w, h, percent int) *Grid {
	g := NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if rng.Intn(100) < percent {
				g.SetBlocked(Position{X: x, Y: y}, true)
			}
		}
	}
	return g
}

func TestShortestDistanceMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 200; trial++ {
		w, h := 2+rng.Intn(6), 2+rng.Intn(6)
		g := randomOpenGrid(rng, w, h, 30)
		occ := TerrainOccupancy(g)

		from := Position{X: rng.Intn(w), Y: rng.Intn(h)}
		to := Position{X: rng.Intn(w), Y: rng.Intn(h)}
		g.SetBlocked(from, false)
		occ = TerrainOccupancy(g)

		got := ShortestDistance(occ, from, to)
		want := bruteForceDistance(occ, w, h, from, to)
		if got != want {
			t.Fatalf("trial %d: distance %v->%v on %v: expected %d, got %d", trial, from, to, g.Rows(), want, got)
		}
	}
}

func TestShortestDistanceBasics(t *testing.T) {
	g, _ := GridFromRows([]string{
		".....",
		"####.",
		".....",
	})
	occ := TerrainOccupancy(g)

	tests := []struct {
		name     string
		from, to Position
		expected int
	}{
		{"same cell", Position{0, 0}, Position{0, 0}, 0},
		{"around wall", Position{0, 0}, Position{0, 2}, 10},
		{"adjacent", Position{0, 0}, Position{1, 0}, 1},
		{"into obstacle", Position{0, 0}, Position{1, 1}, NotFound},
		{"out of bounds", Position{0, 0}, Position{9, 9}, NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortestDistance(occ, tt.from, tt.to); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestShortestDistanceWalledOff(t *testing.T) {
	g, _ := GridFromRows([]string{
		"...",
		"###",
		"...",
	})
	if d := ShortestDistance(TerrainOccupancy(g), Position{0, 0}, Position{2, 2}); d != NotFound {
		t.Errorf("Expected NotFound, got %d", d)
	}
}

func TestNextStepTowardFollowsShortestPath(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for trial := 0; trial < 200; trial++ {
		w, h := 3+rng.Intn(5), 3+rng.Intn(5)
		g := randomOpenGrid(rng, w, h, 25)
		from := Position{X: rng.Intn(w), Y: rng.Intn(h)}
		to := Position{X: rng.Intn(w), Y: rng.Intn(h)}
		g.SetBlocked(from, false)
		g.SetBlocked(to, false)
		occ := TerrainOccupancy(g)

		d := ShortestDistance(occ, from, to)
		if d == NotFound || d == 0 {
			continue
		}
		next := NextStepToward(occ, from, to, nil)
		if ManhattanDistance(from, next) != 1 {
			t.Fatalf("trial %d: step %v->%v is not a single move", trial, from, next)
		}
		if occ.Blocked(next) {
			t.Fatalf("trial %d: stepped onto blocked cell %v", trial, next)
		}
		if got := ShortestDistance(occ, next, to); got != d-1 {
			t.Fatalf("trial %d: step does not shorten path: %d -> %d", trial, d, got)
		}
	}
}

func TestNextStepTowardStraightColumn(t *testing.T) {
	g := NewGrid(8, 16)
	next := NextStepToward(TerrainOccupancy(g), Position{0, 15}, Position{0, 0}, nil)
	if next != (Position{0, 14}) {
		t.Errorf("Expected (0,14), got %v", next)
	}
}

func TestNextStepTowardRoutesAroundUnits(t *testing.T) {
	g, _ := GridFromRows([]string{
		".....",
		".....",
		"#..##",
		".....",
		".....",
	})
	ally := Unit{ID: 1, Team: TeamBlue, Pos: Position{2, 2}, Alive: true}
	mover := Unit{ID: 2, Team: TeamBlue, Pos: Position{2, 3}, Alive: true}
	enemy := Unit{ID: 3, Team: TeamRed, Pos: Position{2, 0}, Alive: true}
	roster := Roster{ally, mover, enemy}

	occ := NewOccupancy(g, roster, mover.Pos, enemy.Pos)
	next := NextStepToward(occ, mover.Pos, enemy.Pos, TerrainDistance(g))
	if next != (Position{1, 3}) {
		t.Errorf("Expected detour through (1,3), got %v", next)
	}
}

func TestNextStepTowardFallback(t *testing.T) {
	g, _ := GridFromRows([]string{
		".....",
		".....",
		"##.##",
		".....",
		".....",
	})
	enemy := Position{2, 0}

	t.Run("moves closer when gap is plugged", func(t *testing.T) {
		roster := Roster{
			{ID: 1, Team: TeamBlue, Pos: Position{2, 2}, Alive: true},
			{ID: 2, Team: TeamBlue, Pos: Position{2, 4}, Alive: true},
		}
		occ := NewOccupancy(g, roster, Position{2, 4}, enemy)
		next := NextStepToward(occ, Position{2, 4}, enemy, TerrainDistance(g))
		if next != (Position{2, 3}) {
			t.Errorf("Expected fallback step to (2,3), got %v", next)
		}
	})

	t.Run("holds when nothing improves", func(t *testing.T) {
		roster := Roster{
			{ID: 1, Team: TeamBlue, Pos: Position{2, 2}, Alive: true},
			{ID: 2, Team: TeamBlue, Pos: Position{2, 3}, Alive: true},
		}
		occ := NewOccupancy(g, roster, Position{2, 3}, enemy)
		next := NextStepToward(occ, Position{2, 3}, enemy, TerrainDistance(g))
		if next != (Position{2, 3}) {
			t.Errorf("Expected to hold at (2,3), got %v", next)
		}
	})

	t.Run("holds when fallback distance is unknown", func(t *testing.T) {
		walled, _ := GridFromRows([]string{
			"...",
			"###",
			"...",
		})
		from, to := Position{1, 2}, Position{1, 0}
		next := NextStepToward(TerrainOccupancy(walled), from, to, TerrainDistance(walled))
		if next != from {
			t.Errorf("Expected to hold at %v, got %v", from, next)
		}
	})

	t.Run("manhattan when no fallback given", func(t *testing.T) {
		walled, _ := GridFromRows([]string{
			"...",
			"###",
			"...",
		})
		next := NextStepToward(TerrainOccupancy(walled), Position{0, 2}, Position{2, 0}, nil)
		if next != (Position{1, 2}) {
			t.Errorf("Expected Manhattan step to (1,2), got %v", next)
		}
	})
}

func TestDeadUnitsDoNotBlock(t *testing.T) {
	g := NewGrid(3, 1)
	roster := Roster{{ID: 1, Pos: Position{1, 0}, Alive: false}}
	occ := NewOccupancy(g, roster)
	if occ.Blocked(Position{1, 0}) {
		t.Error("Expected dead unit cell to be open")
	}
}

func TestManhattanDistance(t *testing.T) {
	if d := ManhattanDistance(Position{1, 2}, Position{4, 0}); d != 5 {
		t.Errorf("Expected 5, got %d", d)
	}
}
