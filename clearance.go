/*
Copyright © 2017 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package clearance computes the Minimum Clearance of geometries.
//
// The Minimum Clearance of a geometry is the largest distance r such that
// no two distinct vertices are closer than r and no vertex is closer than
// r to an edge it is not an endpoint of. It measures how far the vertices
// of a geometry can be moved before the geometry may become invalid:
// a small clearance relative to the size of a geometry means that it is
// close to being degenerate.
//
// Vertices with exactly equal coordinates do not constrain the clearance.
// A geometry with fewer than two distinct vertices has no clearance, which
// is reported as NoDistance.
package clearance

import (
	"context"
	"math"
	"sync"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/clearance/facet"
	"github.com/spatialmodel/clearance/index/strtree"
)

// Version gives the version number.
const Version = "1.0.0"

// NoDistance is the clearance of geometries that do not have one, such as
// empty geometries and single points. It is positive infinity.
var NoDistance = math.Inf(1)

// Exists reports whether d is a clearance value rather than NoDistance.
func Exists(d float64) bool { return !math.IsInf(d, 1) }

// MinimumClearance holds the Minimum Clearance of a geometry. The result
// is computed the first time it is requested and then kept, so the
// geometry must not be modified afterwards.
type MinimumClearance struct {
	g            geom.Geom
	nodeCapacity int

	mu       sync.Mutex
	computed bool
	distance float64
	line     geom.LineString
}

// Option configures a MinimumClearance.
type Option func(*MinimumClearance)

// NodeCapacity sets the maximum number of children of the nodes of the
// spatial index used for the computation.
func NodeCapacity(n int) Option {
	return func(mc *MinimumClearance) {
		mc.nodeCapacity = n
	}
}

// New returns the Minimum Clearance of g.
func New(g geom.Geom, opts ...Option) *MinimumClearance {
	mc := &MinimumClearance{g: g, nodeCapacity: strtree.DefaultNodeCapacity}
	for _, o := range opts {
		o(mc)
	}
	return mc
}

// Distance returns the Minimum Clearance of g, or NoDistance if it does not
// exist.
func Distance(g geom.Geom) float64 {
	return New(g).Distance()
}

// Line returns a line between the two points that determine the Minimum
// Clearance of g. ok is false if the clearance does not exist.
func Line(g geom.Geom) (l geom.LineString, ok bool) {
	return New(g).Line()
}

// Distance returns the clearance, or NoDistance if it does not exist.
func (mc *MinimumClearance) Distance() float64 {
	mc.mustCompute()
	return mc.distance
}

// Line returns a two-point line from a vertex of the geometry to the
// closest other vertex or non-incident edge. Its length is the clearance.
// ok is false if the clearance does not exist.
func (mc *MinimumClearance) Line() (l geom.LineString, ok bool) {
	mc.mustCompute()
	if mc.line == nil {
		return nil, false
	}
	return geom.LineString{mc.line[0], mc.line[1]}, true
}

// Points returns the end points of Line.
func (mc *MinimumClearance) Points() (a, b geom.Point, ok bool) {
	mc.mustCompute()
	if mc.line == nil {
		return a, b, false
	}
	return mc.line[0], mc.line[1], true
}

func (mc *MinimumClearance) mustCompute() {
	if err := mc.Compute(context.Background()); err != nil {
		panic(err)
	}
}

// Compute computes the clearance if that has not been done yet. It
// returns ctx.Err() if ctx is cancelled before the computation finishes,
// in which case the next call starts over.
func (mc *MinimumClearance) Compute(ctx context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.computed {
		return nil
	}
	d, line, err := compute(ctx, mc.g, mc.nodeCapacity)
	if err != nil {
		return err
	}
	mc.distance, mc.line, mc.computed = d, line, true
	return nil
}

func compute(ctx context.Context, g geom.Geom, nodeCapacity int) (float64, geom.LineString, error) {
	seqs := facet.Sequences(g)
	if len(seqs) == 0 {
		return NoDistance, nil, nil
	}

	var m clearanceDistance
	// The tree search never pairs a sequence with itself, so the
	// clearance within each sequence is found first and used as the
	// bound for the search.
	best := NoDistance
	var a, b *facet.Sequence
	for _, s := range seqs {
		if d := m.distance(s, s); d < best {
			best, a, b = d, s, s
			if d == 0 {
				break
			}
		}
	}

	if best > 0 && len(seqs) > 1 {
		t, err := facet.NewTree(seqs, nodeCapacity)
		if err != nil {
			panic(err)
		}
		p, ok, err := t.NearestPairContext(ctx, strtree.ItemDistanceFunc[*facet.Sequence](m.distance),
			strtree.WithMaxDistance(best))
		if err != nil {
			return 0, nil, err
		}
		if ok {
			best, a, b = p.Distance, p.A, p.B
		}
	}
	if !Exists(best) {
		return NoDistance, nil, nil
	}
	// Recompute the winning pair to recover its witness points.
	m.distance(a, b)
	return best, geom.LineString{m.pts[0], m.pts[1]}, nil
}

// clearanceDistance computes the distance between facet sequences used for
// the Minimum Clearance, and keeps the points that determine it.
// Coincident vertices, and vertices that are endpoints of a segment, do not
// constrain each other, so the distance is not a metric.
type clearanceDistance struct {
	min float64
	pts [2]geom.Point
}

func (c *clearanceDistance) distance(fs1, fs2 *facet.Sequence) float64 {
	c.min = math.Inf(1)
	c.vertexDistance(fs1, fs2)
	if c.min == 0 || (fs1.IsPoint() && fs2.IsPoint()) {
		return c.min
	}
	c.segmentDistance(fs1, fs2)
	if c.min == 0 {
		return 0
	}
	c.segmentDistance(fs2, fs1)
	return c.min
}

func (c *clearanceDistance) vertexDistance(fs1, fs2 *facet.Sequence) {
	for _, p1 := range fs1.Points() {
		for _, p2 := range fs2.Points() {
			if p1.Equals(p2) {
				continue
			}
			if d := facet.PointDistance(p1, p2); d < c.min {
				c.min = d
				c.pts = [2]geom.Point{p1, p2}
				if d == 0 {
					return
				}
			}
		}
	}
}

// segmentDistance compares the vertices of fs1 with the segments of fs2.
func (c *clearanceDistance) segmentDistance(fs1, fs2 *facet.Sequence) {
	seg := fs2.Points()
	for _, p := range fs1.Points() {
		for i := 0; i < len(seg)-1; i++ {
			if p.Equals(seg[i]) || p.Equals(seg[i+1]) {
				continue
			}
			if q, d := facet.SegmentClosestPoint(p, seg[i], seg[i+1]); d < c.min {
				c.min = d
				c.pts = [2]geom.Point{p, q}
				if d == 0 {
					return
				}
			}
		}
	}
}
