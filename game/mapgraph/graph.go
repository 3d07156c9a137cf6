package mapgraph

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// ErrInvalidGraph is wrapped by every structural validation failure
var ErrInvalidGraph = errors.New("invalid decision graph")

// DecisionNode is one stop on the map. Parents are the choices offered from
// this node and always sit exactly one level lower.
type DecisionNode struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Level   int    `json:"level"`
	Parents []int  `json:"parents"`
}

// Graph is a layered DAG whose root sits at the highest level
type Graph struct {
	Nodes  []DecisionNode `json:"nodes"`
	Root   int            `json:"root"`
	Levels int            `json:"levels"`
}

// Options controls graph generation
type Options struct {
	Levels     int `json:"levels"`
	MaxBranch  int `json:"max_branch"`
	MaxParents int `json:"max_parents"`
}

// Generate expands the graph breadth-first from the root. Each node gets
// 1..MaxBranch choices (exactly one on level 1). A choice reuses an existing
// node on the next level with probability 1/3, always on level 1, as long as
// one exists that is not already offered here and is shared by fewer than
// MaxParents nodes. Otherwise a new node is created and queued.
func Generate(opts Options, rng *rand.Rand) *Graph {
	if opts.Levels < 0 {
		opts.Levels = 0
	}
	if opts.MaxBranch < 1 {
		opts.MaxBranch = 1
	}
	if opts.MaxParents < 1 {
		opts.MaxParents = 1
	}

	g := &Graph{Levels: opts.Levels}
	byLevel := make(map[int][]int)
	inDegree := []int{0}
	counters := make(map[int]int)

	newNode := func(level int) int {
		id := len(g.Nodes)
		counters[level]++
		g.Nodes = append(g.Nodes, DecisionNode{
			ID:      id,
			Label:   label(level, opts.Levels, counters[level]),
			Level:   level,
			Parents: []int{},
		})
		byLevel[level] = append(byLevel[level], id)
		if id >= len(inDegree) {
			inDegree = append(inDegree, 0)
		}
		return id
	}

	g.Root = newNode(opts.Levels)
	queue := []int{g.Root}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		level := g.Nodes[id].Level
		if level == 0 {
			continue
		}

		branches := 1 + rng.Intn(opts.MaxBranch)
		if level == 1 {
			branches = 1
		}
		childLevel := level - 1

		for b := 0; b < branches; b++ {
			share := level == 1 || rng.Intn(3) == 0
			if share {
				var candidates []int
				for _, c := range byLevel[childLevel] {
					if inDegree[c] < opts.MaxParents && !contains(g.Nodes[id].Parents, c) {
						candidates = append(candidates, c)
					}
				}
				if len(candidates) > 0 {
					c := candidates[rng.Intn(len(candidates))]
					g.Nodes[id].Parents = append(g.Nodes[id].Parents, c)
					inDegree[c]++
					continue
				}
			}

			child := newNode(childLevel)
			g.Nodes[id].Parents = append(g.Nodes[id].Parents, child)
			inDegree[child]++
			queue = append(queue, child)
		}
	}

	return g
}

func label(level, top, n int) string {
	switch {
	case level == top:
		return "Start"
	case level == 0:
		return "Ending " + endingName(n)
	default:
		return fmt.Sprintf("Path %d-%d", level, n)
	}
}

// endingName turns 1, 2, ... 27 into A, B, ... AA
func endingName(n int) string {
	var sb []byte
	for n > 0 {
		n--
		sb = append([]byte{byte('A' + n%26)}, sb...)
		n /= 26
	}
	return string(sb)
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Node returns the node with the given id
func (g *Graph) Node(id int) (DecisionNode, bool) {
	if id < 0 || id >= len(g.Nodes) {
		return DecisionNode{}, false
	}
	return g.Nodes[id], true
}

// InDegree counts how many nodes offer id as a choice
func (g *Graph) InDegree(id int) int {
	n := 0
	for _, node := range g.Nodes {
		if contains(node.Parents, id) {
			n++
		}
	}
	return n
}

// Endings returns the ids of all level 0 nodes
func (g *Graph) Endings() []int {
	var out []int
	for _, n := range g.Nodes {
		if n.Level == 0 {
			out = append(out, n.ID)
		}
	}
	return out
}

// Validate checks the layering and reference invariants
func Validate(g *Graph) error {
	if g == nil || len(g.Nodes) == 0 {
		return fmt.Errorf("%w: no nodes", ErrInvalidGraph)
	}
	root, ok := g.Node(g.Root)
	if !ok {
		return fmt.Errorf("%w: root %d out of range", ErrInvalidGraph, g.Root)
	}
	if root.Level != g.Levels {
		return fmt.Errorf("%w: root level %d, expected %d", ErrInvalidGraph, root.Level, g.Levels)
	}

	for i, n := range g.Nodes {
		if n.ID != i {
			return fmt.Errorf("%w: node at index %d has id %d", ErrInvalidGraph, i, n.ID)
		}
		seen := make(map[int]bool)
		for _, p := range n.Parents {
			parent, ok := g.Node(p)
			if !ok {
				return fmt.Errorf("%w: node %d links to missing node %d", ErrInvalidGraph, n.ID, p)
			}
			if parent.Level != n.Level-1 {
				return fmt.Errorf("%w: node %d (level %d) links to node %d (level %d)", ErrInvalidGraph, n.ID, n.Level, p, parent.Level)
			}
			if seen[p] {
				return fmt.Errorf("%w: node %d links to node %d twice", ErrInvalidGraph, n.ID, p)
			}
			seen[p] = true
		}
		if n.ID != g.Root && g.InDegree(n.ID) == 0 {
			return fmt.Errorf("%w: node %d is unreachable", ErrInvalidGraph, n.ID)
		}
	}
	return nil
}

// Describe renders the graph one node per line, top level first
func Describe(g *Graph) []string {
	lines := make([]string, 0, len(g.Nodes))
	for level := g.Levels; level >= 0; level-- {
		for _, n := range g.Nodes {
			if n.Level != level {
				continue
			}
			if len(n.Parents) == 0 {
				lines = append(lines, fmt.Sprintf("[%d] %s", n.ID, n.Label))
				continue
			}
			names := make([]string, len(n.Parents))
			for i, p := range n.Parents {
				names[i] = fmt.Sprintf("%d:%s", i+1, g.Nodes[p].Label)
			}
			lines = append(lines, fmt.Sprintf("[%d] %s -> %s", n.ID, n.Label, strings.Join(names, ", ")))
		}
	}
	return lines
}
