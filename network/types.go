// SPDX-License-Identifier: MIT
//
// Package network defines the directed road-network graph the router and
// landmark precomputer operate on: Node, Edge, and the Graph that holds
// them.
//
// Nodes and edges are immutable after Load: the graph is built once from a
// topology file and read by any number of concurrent searches afterwards.
// Graph itself still guards its maps with RWMutex so that tests and tools
// which build a Graph programmatically via NewGraph can call
// AddNode/AddEdge concurrently, matching the locking discipline of
// lvlath's core.Graph.
//
// Errors:
//
//	ErrEmptyNodeID    - node ID is the empty string.
//	ErrNodeNotFound   - requested node does not exist.
//	ErrEdgeNotFound   - requested edge does not exist.
//	ErrDuplicateNode  - AddNode called twice for the same ID with different coordinates.
//	ErrDanglingEdge   - edge endpoints are not both present in the node set.
package network

import (
	"errors"
	"sync"
)

// Sentinel errors for network graph operations.
var (
	// ErrEmptyNodeID indicates an empty node identifier was supplied.
	ErrEmptyNodeID = errors.New("network: node ID is empty")

	// ErrNodeNotFound indicates an operation referenced a non-existent node.
	ErrNodeNotFound = errors.New("network: node not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("network: edge not found")

	// ErrDuplicateNode indicates AddNode was called twice for the same ID.
	ErrDuplicateNode = errors.New("network: duplicate node ID")

	// ErrDanglingEdge indicates an edge referenced a node outside the node set.
	ErrDanglingEdge = errors.New("network: edge endpoint not in node set")
)

// Node is a junction in the road network: a stable string ID and planar
// coordinates in metres. Immutable after Load.
type Node struct {
	ID   string
	X, Y float64
}

// Edge is a directed lane bundle between two junctions. BaseTime is the
// free-flow travel time in seconds, derived as AvgLength / AvgSpeed.
// Immutable after Load.
type Edge struct {
	ID        string
	From, To  string
	AvgLength float64 // metres
	AvgSpeed  float64 // metres/second, always >= MinAvgSpeed
	BaseTime  float64 // seconds
}

// MinAvgSpeed is the floor applied to an edge's averaged lane speed, per
// the convention avg_speed = max(0.1, mean(lane.speed)). A speed of zero
// would make BaseTime infinite; this keeps every edge traversable.
const MinAvgSpeed = 0.1

// Graph is the immutable-after-load directed road network. Forward and
// reverse adjacency are both materialised so router expansion (forward)
// and reachability analysis (backward, from a goal) are both O(1) per hop.
//
// Parallel edges between the same (u, v) are permitted and kept distinct by
// Edge.ID; the (u,v)->edge reverse-lookup map keeps whichever parallel edge
// was added last, since lane-level detail is already aggregated into each
// Edge's AvgSpeed/AvgLength by the time it reaches the Graph.
type Graph struct {
	mu sync.RWMutex

	nodes map[string]*Node
	edges map[string]*Edge

	// out[u] = outgoing edges from u, keyed by edge ID.
	out map[string]map[string]*Edge
	// in_[v] = set of node IDs with at least one edge into v.
	in_ map[string]map[string]struct{}
	// endpoints[(u,v)] = last-seen edge ID between u and v.
	endpoints map[[2]string]string

	skippedRecords int // malformed topology records skipped during Load
}

// NewGraph returns an empty, ready-to-populate Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		edges:     make(map[string]*Edge),
		out:       make(map[string]map[string]*Edge),
		in_:       make(map[string]map[string]struct{}),
		endpoints: make(map[[2]string]string),
	}
}

// SkippedRecords reports how many malformed topology records were dropped
// during the most recent Load call.
func (g *Graph) SkippedRecords() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.skippedRecords
}
