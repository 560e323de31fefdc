// File: loader.go
// Role: Component A — parses a SUMO-style .net.xml topology into a Graph.
// Grounded on original_source/src/offline/landmarks.py's _parse_network and
// original_source/src/online/router.py's _parse_network (both parse the
// same junction/edge/lane shape); lvlath has no XML loader of its own, so
// the parsing strategy (skip internal junctions/edges, average per-lane
// length/speed) is carried over from the Python original rather than
// invented here.

package network

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// xmlNetwork mirrors the subset of SUMO's .net.xml schema the engine reads:
// junctions (nodes) and edges with nested lane elements.
type xmlNetwork struct {
	XMLName   xml.Name     `xml:"net"`
	Junctions []xmlJunction `xml:"junction"`
	Edges     []xmlEdge     `xml:"edge"`
}

type xmlJunction struct {
	ID   string `xml:"id,attr"`
	X    string `xml:"x,attr"`
	Y    string `xml:"y,attr"`
	Type string `xml:"type,attr"`
}

type xmlEdge struct {
	ID       string    `xml:"id,attr"`
	From     string    `xml:"from,attr"`
	To       string    `xml:"to,attr"`
	Function string    `xml:"function,attr"`
	Lanes    []xmlLane `xml:"lane"`
}

type xmlLane struct {
	Length string `xml:"length,attr"`
	Speed  string `xml:"speed,attr"`
}

// defaultLaneSpeed is SUMO's conventional ~50km/h default when a lane omits
// a speed attribute, carried over from the Python original's magic 13.9.
const defaultLaneSpeed = 13.9

// LoadResult reports the outcome of LoadTopology: the constructed graph plus
// a count of malformed records that were skipped.
type LoadResult struct {
	Graph   *Graph
	Skipped int
}

// LoadTopology reads a SUMO .net.xml file at path and returns the directed
// road-network graph it describes.
//
// Failure policy:
//   - Missing file: fatal, returned as an error.
//   - Malformed junction/edge record: that record is skipped; the count is
//     returned in LoadResult.Skipped, loading continues.
//   - Junctions of type "internal" and edges of function "internal" or
//     "connector" are filtered out, not counted as skipped (they are not
//     malformed, out of scope for loading).
//   - Edges whose endpoints are not in the node set are silently dropped
//     (also not counted as skipped).
func LoadTopology(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("network: open topology %q: %w", path, err)
	}
	defer f.Close()

	return parseTopology(f)
}

func parseTopology(r io.Reader) (*LoadResult, error) {
	var doc xmlNetwork
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("network: decode topology: %w", err)
	}

	g := NewGraph()
	skipped := 0

	for _, j := range doc.Junctions {
		if j.Type == "internal" {
			continue
		}
		if j.ID == "" {
			skipped++
			continue
		}
		x, errX := parseFloatAttr(j.X, 0)
		y, errY := parseFloatAttr(j.Y, 0)
		if errX != nil || errY != nil {
			skipped++
			continue
		}
		if err := g.AddNode(j.ID, x, y); err != nil {
			skipped++
			continue
		}
	}

	for _, e := range doc.Edges {
		if e.Function == "internal" || e.Function == "connector" {
			continue
		}
		if !g.HasNode(e.From) || !g.HasNode(e.To) {
			// Dangling edges are silently dropped, not counted as a "skip".
			continue
		}
		if len(e.Lanes) == 0 {
			skipped++
			continue
		}

		var lengthSum, speedSum float64
		laneCount := 0
		malformed := false
		for _, lane := range e.Lanes {
			length, errL := parseFloatAttr(lane.Length, 0)
			speed, errS := parseFloatAttr(lane.Speed, defaultLaneSpeed)
			if errL != nil {
				malformed = true
				break
			}
			if errS != nil {
				speed = defaultLaneSpeed // speed falls back to defaultLaneSpeed on parse failure, not malformed
			}
			lengthSum += length
			speedSum += speed
			laneCount++
		}
		if malformed || laneCount == 0 {
			skipped++
			continue
		}

		avgLength := lengthSum / float64(laneCount)
		avgSpeed := speedSum / float64(laneCount)
		if avgSpeed < MinAvgSpeed {
			avgSpeed = MinAvgSpeed
		}

		edgeID := e.ID
		if edgeID == "" {
			edgeID = e.From + ">" + e.To
		}
		if err := g.AddEdge(edgeID, e.From, e.To, avgLength, avgSpeed); err != nil {
			skipped++
			continue
		}
	}

	g.mu.Lock()
	g.skippedRecords = skipped
	g.mu.Unlock()

	return &LoadResult{Graph: g, Skipped: skipped}, nil
}

// parseFloatAttr parses an XML attribute value as a float64, returning def
// (and no error) when s is empty, matching the Python original's
// `float(node.get('x', '0'))`-style defaulting. A non-empty but unparsable
// value is reported as an error so the caller can count it as a skip.
func parseFloatAttr(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	var v float64
	_, err := fmt.Sscanf(s, "%g", &v)
	if err != nil {
		return 0, err
	}

	return v, nil
}
