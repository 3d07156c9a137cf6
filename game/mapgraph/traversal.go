package mapgraph

import "math"

// ClickRadius is how close a click must land to a node's center to select it
const ClickRadius = 32.0

// Traversal tracks a player's walk from the root down to an ending
type Traversal struct {
	Graph   *Graph `json:"graph"`
	Current int    `json:"current"`
	Path    []int  `json:"path"`
}

// NewTraversal starts at the graph root
func NewTraversal(g *Graph) *Traversal {
	return &Traversal{
		Graph:   g,
		Current: g.Root,
		Path:    []int{g.Root},
	}
}

// Node returns the node the player stands on
func (t *Traversal) Node() DecisionNode {
	n, _ := t.Graph.Node(t.Current)
	return n
}

// Options returns the nodes the player can move to next, in key order
func (t *Traversal) Options() []DecisionNode {
	n := t.Node()
	out := make([]DecisionNode, 0, len(n.Parents))
	for _, p := range n.Parents {
		if node, ok := t.Graph.Node(p); ok {
			out = append(out, node)
		}
	}
	return out
}

// Finished reports whether the current node offers no further choices
func (t *Traversal) Finished() bool {
	return len(t.Node().Parents) == 0
}

// Choose follows the option at index. An index without an option is ignored.
func (t *Traversal) Choose(index int) bool {
	n := t.Node()
	if index < 0 || index >= len(n.Parents) {
		return false
	}
	t.Current = n.Parents[index]
	t.Path = append(t.Path, t.Current)
	return true
}

// ChooseNode follows the option leading to id, if it is offered
func (t *Traversal) ChooseNode(id int) bool {
	for i, p := range t.Node().Parents {
		if p == id {
			return t.Choose(i)
		}
	}
	return false
}

// ChooseAt hit-tests a click against the laid out node positions and follows
// the option under it
func (t *Traversal) ChooseAt(layout Layout, x, y float64) bool {
	for _, p := range t.Node().Parents {
		pt, ok := layout[p]
		if !ok {
			continue
		}
		if math.Hypot(pt.X-x, pt.Y-y) < ClickRadius {
			return t.ChooseNode(p)
		}
	}
	return false
}

// Point is a screen position
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout maps node ids to screen positions
type Layout map[int]Point

// NewLayout spreads each level evenly across the width. The root sits at the
// bottom and endings at the top, so the walk reads upward.
func NewLayout(g *Graph, width, height, margin float64) Layout {
	layout := make(Layout, len(g.Nodes))
	rows := make(map[int][]int)
	for _, n := range g.Nodes {
		rows[n.Level] = append(rows[n.Level], n.ID)
	}

	usable := height - 2*margin
	for level, ids := range rows {
		y := height / 2
		if g.Levels > 0 {
			y = margin + usable*float64(level)/float64(g.Levels)
		}
		for i, id := range ids {
			layout[id] = Point{
				X: width * float64(i+1) / float64(len(ids)+1),
				Y: y,
			}
		}
	}
	return layout
}

// HitTest returns the id of the node under the point, or -1
func (l Layout) HitTest(x, y, radius float64) int {
	best, bestDist := -1, radius
	for id, pt := range l {
		d := math.Hypot(pt.X-x, pt.Y-y)
		if d < bestDist {
			best, bestDist = id, d
		}
	}
	return best
}
