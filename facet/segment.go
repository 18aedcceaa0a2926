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

package facet

import (
	"math"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

func vec(p geom.Point) r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func point(v r2.Vec) geom.Point { return geom.Point{X: v.X, Y: v.Y} }

// PointDistance returns the Euclidean distance between a and b.
func PointDistance(a, b geom.Point) float64 {
	return r2.Norm(r2.Sub(vec(b), vec(a)))
}

// PointSegmentDistance returns the distance from p to the closest point
// of the segment from a to b.
func PointSegmentDistance(p, a, b geom.Point) float64 {
	_, d := SegmentClosestPoint(p, a, b)
	return d
}

// SegmentClosestPoint returns the point of the segment from a to b that is
// closest to p, along with the distance between them. A zero-length segment
// is treated as the point a.
func SegmentClosestPoint(p, a, b geom.Point) (geom.Point, float64) {
	ab := r2.Sub(vec(b), vec(a))
	ap := r2.Sub(vec(p), vec(a))
	len2 := r2.Dot(ab, ab)
	if len2 == 0 {
		return a, r2.Norm(ap)
	}
	r := r2.Dot(ap, ab) / len2
	switch {
	case r <= 0:
		return a, r2.Norm(ap)
	case r >= 1:
		return b, PointDistance(p, b)
	}
	// The perpendicular distance is computed from the cross product rather
	// than from the projected point so that it does not accumulate the
	// rounding error of the projection.
	d := math.Abs(r2.Cross(ab, ap)) / math.Sqrt(len2)
	return point(r2.Add(vec(a), r2.Scale(r, ab))), d
}

// SegmentSegmentDistance returns the distance between the segments a0-a1
// and b0-b1, which is zero if they intersect.
func SegmentSegmentDistance(a0, a1, b0, b1 geom.Point) float64 {
	_, _, d := segmentClosestPoints(a0, a1, b0, b1)
	return d
}

// segmentClosestPoints returns a closest point on each of the two segments
// and the distance between them.
func segmentClosestPoints(a0, a1, b0, b1 geom.Point) (pa, pb geom.Point, d float64) {
	if p, ok := properIntersection(a0, a1, b0, b1); ok {
		return p, p, 0
	}
	d = math.Inf(1)
	try := func(qa, qb geom.Point, dist float64) {
		if dist < d {
			pa, pb, d = qa, qb, dist
		}
	}
	c, dist := SegmentClosestPoint(a0, b0, b1)
	try(a0, c, dist)
	c, dist = SegmentClosestPoint(a1, b0, b1)
	try(a1, c, dist)
	c, dist = SegmentClosestPoint(b0, a0, a1)
	try(c, b0, dist)
	c, dist = SegmentClosestPoint(b1, a0, a1)
	try(c, b1, dist)
	return pa, pb, d
}

// properIntersection returns the point where the segments a0-a1 and b0-b1
// cross, if they cross at a single point that is interior to both.
// Touching and collinear segments are handled by the endpoint distances.
func properIntersection(a0, a1, b0, b1 geom.Point) (geom.Point, bool) {
	da := r2.Sub(vec(a1), vec(a0))
	db := r2.Sub(vec(b1), vec(b0))
	o1 := r2.Cross(da, r2.Sub(vec(b0), vec(a0)))
	o2 := r2.Cross(da, r2.Sub(vec(b1), vec(a0)))
	o3 := r2.Cross(db, r2.Sub(vec(a0), vec(b0)))
	o4 := r2.Cross(db, r2.Sub(vec(a1), vec(b0)))
	if o1 == 0 || o2 == 0 || o3 == 0 || o4 == 0 {
		return geom.Point{}, false
	}
	if (o1 > 0) == (o2 > 0) || (o3 > 0) == (o4 > 0) {
		return geom.Point{}, false
	}
	t := r2.Cross(r2.Sub(vec(b0), vec(a0)), db) / r2.Cross(da, db)
	return point(r2.Add(vec(a0), r2.Scale(t, da))), true
}
