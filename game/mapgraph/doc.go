// Package mapgraph generates the branching decision map walked between battles.
//
// A Graph is a layered DAG: the root sits at the highest level and every
// choice leads exactly one level down until an ending at level 0. Paths can
// converge because generation sometimes reuses nodes that already exist on
// the next level. A Traversal follows one walk through the graph, selecting
// options by index or by a click against a Layout.
package mapgraph
