package engine

// directions is the neighbor expansion order used by every search. Changing
// it changes which of several equal-length paths a unit follows.
var directions = [4]Position{
	{X: 0, Y: 1},
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: -1, Y: 0},
}

// Occupancy is an immutable snapshot of which cells cannot be entered.
// It combines terrain with the positions of living units.
type Occupancy struct {
	width  int
	height int
	cells  []bool
}

// TerrainOccupancy returns a snapshot that only considers obstacles
func TerrainOccupancy(g *Grid) Occupancy {
	cells := make([]bool, len(g.blocked))
	copy(cells, g.blocked)
	return Occupancy{width: g.Width, height: g.Height, cells: cells}
}

// NewOccupancy snapshots terrain plus every living unit except those standing
// on one of the except positions
func NewOccupancy(g *Grid, units Roster, except ...Position) Occupancy {
	occ := TerrainOccupancy(g)
	for _, u := range units {
		if !u.Alive || !occ.inBounds(u.Pos) {
			continue
		}
		skip := false
		for _, p := range except {
			if p == u.Pos {
				skip = true
				break
			}
		}
		if !skip {
			occ.cells[u.Pos.Y*occ.width+u.Pos.X] = true
		}
	}
	return occ
}

func (o Occupancy) inBounds(p Position) bool {
	return p.X >= 0 && p.X < o.width && p.Y >= 0 && p.Y < o.height
}

// Blocked reports whether p cannot be entered. Out of bounds counts as blocked.
func (o Occupancy) Blocked(p Position) bool {
	if !o.inBounds(p) {
		return true
	}
	return o.cells[p.Y*o.width+p.X]
}

// DistanceFunc measures the distance between two cells, returning NotFound
// when no distance exists
type DistanceFunc func(from, to Position) int

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// ShortestDistance returns the number of 4-directional steps on the shortest
// path from one cell to another, or NotFound. The start cell is never
// checked for blocking, so a unit can measure from where it stands.
func ShortestDistance(occ Occupancy, from, to Position) int {
	if !occ.inBounds(from) || !occ.inBounds(to) {
		return NotFound
	}
	if from == to {
		return 0
	}
	if occ.Blocked(to) {
		return NotFound
	}

	dist := make([]int, len(occ.cells))
	for i := range dist {
		dist[i] = NotFound
	}
	dist[from.Y*occ.width+from.X] = 0
	queue := []Position{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := dist[cur.Y*occ.width+cur.X]

		for _, dir := range directions {
			next := Position{X: cur.X + dir.X, Y: cur.Y + dir.Y}
			if occ.Blocked(next) {
				continue
			}
			idx := next.Y*occ.width + next.X
			if dist[idx] != NotFound {
				continue
			}
			if next == to {
				return d + 1
			}
			dist[idx] = d + 1
			queue = append(queue, next)
		}
	}
	return NotFound
}

// TerrainDistance returns a DistanceFunc that searches around obstacles only
func TerrainDistance(g *Grid) DistanceFunc {
	terrain := TerrainOccupancy(g)
	return func(from, to Position) int {
		return ShortestDistance(terrain, from, to)
	}
}

// IsReachable reports whether to can be reached from from
func IsReachable(occ Occupancy, from, to Position) bool {
	return ShortestDistance(occ, from, to) != NotFound
}

// NextStepToward returns the first cell of a shortest path from one cell to
// another. When no path exists it moves to the neighbor that strictly
// improves the fallback distance, and stays put if none does. A nil fallback
// means Manhattan distance.
func NextStepToward(occ Occupancy, from, to Position, fallback DistanceFunc) Position {
	if from == to || !occ.inBounds(from) {
		return from
	}

	if occ.inBounds(to) && !occ.Blocked(to) {
		if step, ok := firstStep(occ, from, to); ok {
			return step
		}
	}

	if fallback == nil {
		fallback = ManhattanDistance
	}
	best := from
	bestDist := fallback(from, to)
	if bestDist == NotFound {
		return from
	}
	for _, dir := range directions {
		next := Position{X: from.X + dir.X, Y: from.Y + dir.Y}
		if occ.Blocked(next) {
			continue
		}
		d := fallback(next, to)
		if d != NotFound && d < bestDist {
			best = next
			bestDist = d
		}
	}
	return best
}

// firstStep runs a breadth-first search with parent links and backtracks from
// the target to the cell adjacent to the start
func firstStep(occ Occupancy, from, to Position) (Position, bool) {
	parent := make([]int, len(occ.cells))
	for i := range parent {
		parent[i] = NotFound
	}
	start := from.Y*occ.width + from.X
	parent[start] = start
	queue := []Position{from}
	found := false

	for len(queue) > 0 && !found {
		cur := queue[0]
		queue = queue[1:]
		curIdx := cur.Y*occ.width + cur.X

		for _, dir := range directions {
			next := Position{X: cur.X + dir.X, Y: cur.Y + dir.Y}
			if occ.Blocked(next) {
				continue
			}
			idx := next.Y*occ.width + next.X
			if parent[idx] != NotFound {
				continue
			}
			parent[idx] = curIdx
			if next == to {
				found = true
				break
			}
			queue = append(queue, next)
		}
	}
	if !found {
		return from, false
	}

	idx := to.Y*occ.width + to.X
	for parent[idx] != start {
		idx = parent[idx]
	}
	return Position{X: idx % occ.width, Y: idx / occ.width}, true
}
