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

// Package facet splits geometries into facet sequences, which are short
// runs of consecutive vertices, and indexes them in an STR tree so that
// distances between geometries can be computed without comparing every
// pair of segments.
package facet

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/clearance/index/strtree"
)

// Sequence is a contiguous run of coordinates from one component of a
// geometry. A sequence of length one is an isolated point; otherwise the
// facets of the sequence are the segments between consecutive coordinates.
//
// A Sequence shares its coordinates with the geometry it was created from,
// which must not be modified while the Sequence is in use.
type Sequence struct {
	pts    []geom.Point
	bounds *geom.Bounds
}

// NewSequence returns a sequence holding pts. It panics if pts is empty.
func NewSequence(pts []geom.Point) *Sequence {
	if len(pts) == 0 {
		panic("facet: empty sequence")
	}
	return &Sequence{pts: pts, bounds: geom.LineString(pts).Bounds()}
}

// Len returns the number of coordinates in s.
func (s *Sequence) Len() int { return len(s.pts) }

// At returns the i'th coordinate of s.
func (s *Sequence) At(i int) geom.Point { return s.pts[i] }

// Points returns the coordinates of s. The returned slice must not be
// modified.
func (s *Sequence) Points() []geom.Point { return s.pts }

// IsPoint reports whether s holds a single coordinate.
func (s *Sequence) IsPoint() bool { return len(s.pts) == 1 }

// Bounds returns the bounding box of s.
func (s *Sequence) Bounds() *geom.Bounds { return s.bounds }

// Distance returns the Euclidean distance between s and o.
func (s *Sequence) Distance(o *Sequence) float64 {
	_, _, d := s.nearest(o)
	return d
}

// NearestPoints returns a point on s and a point on o that are separated
// by the distance between the sequences.
func (s *Sequence) NearestPoints(o *Sequence) (a, b geom.Point) {
	a, b, _ = s.nearest(o)
	return a, b
}

func (s *Sequence) nearest(o *Sequence) (a, b geom.Point, d float64) {
	switch {
	case s.IsPoint() && o.IsPoint():
		return s.pts[0], o.pts[0], PointDistance(s.pts[0], o.pts[0])
	case s.IsPoint():
		c, dd := nearestOnSegments(s.pts[0], o.pts)
		return s.pts[0], c, dd
	case o.IsPoint():
		c, dd := nearestOnSegments(o.pts[0], s.pts)
		return c, o.pts[0], dd
	}
	d = math.Inf(1)
	for i := 0; i < len(s.pts)-1; i++ {
		for j := 0; j < len(o.pts)-1; j++ {
			pa, pb, dd := segmentClosestPoints(s.pts[i], s.pts[i+1], o.pts[j], o.pts[j+1])
			if dd < d {
				a, b, d = pa, pb, dd
				if d == 0 {
					return a, b, d
				}
			}
		}
	}
	return a, b, d
}

// nearestOnSegments returns the point of the polyline pts that is closest
// to p.
func nearestOnSegments(p geom.Point, pts []geom.Point) (geom.Point, float64) {
	best, bestD := pts[0], math.Inf(1)
	for i := 0; i < len(pts)-1; i++ {
		c, d := SegmentClosestPoint(p, pts[i], pts[i+1])
		if d < bestD {
			best, bestD = c, d
			if d == 0 {
				break
			}
		}
	}
	return best, bestD
}

// Euclidean is the Euclidean distance between facet sequences. It is
// admissible for trees built by BuildTree.
var Euclidean = strtree.ItemDistanceFunc[*Sequence](func(a, b *Sequence) float64 {
	return a.Distance(b)
})
