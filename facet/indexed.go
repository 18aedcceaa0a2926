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
	"context"
	"math"

	"github.com/ctessum/geom"
	"github.com/spatialmodel/clearance/index/strtree"
)

// Indexed computes distances from one fixed geometry to other geometries.
// The facet tree of the fixed geometry is built once, so repeated queries
// only pay for indexing the other geometry. An Indexed value is safe for
// concurrent use as long as the indexed geometry is not modified.
type Indexed struct {
	tree         *strtree.Tree[*Sequence]
	nodeCapacity int
}

// NewIndexed indexes g using tree nodes with at most nodeCapacity
// children.
func NewIndexed(g geom.Geom, nodeCapacity int) (*Indexed, error) {
	t, err := NewTree(Sequences(g), nodeCapacity)
	if err != nil {
		return nil, err
	}
	return &Indexed{tree: t, nodeCapacity: t.NodeCapacity()}, nil
}

// Nearest returns the closest pair of facet sequences between the indexed
// geometry and g. The first sequence of the pair belongs to the indexed
// geometry. Only pairs closer than the WithMaxDistance option, if given,
// are considered. ok is false if either geometry is empty or no pair
// qualifies.
func (ix *Indexed) Nearest(ctx context.Context, g geom.Geom, opts ...strtree.Option) (p strtree.Pair[*Sequence], ok bool, err error) {
	t, err := NewTree(Sequences(g), ix.nodeCapacity)
	if err != nil {
		return p, false, err
	}
	return ix.tree.NearestPairWithContext(ctx, t, Euclidean, opts...)
}

// NearestIndexed is like Nearest, but the other geometry has already been
// indexed.
func (ix *Indexed) NearestIndexed(ctx context.Context, o *Indexed, opts ...strtree.Option) (p strtree.Pair[*Sequence], ok bool, err error) {
	return ix.tree.NearestPairWithContext(ctx, o.tree, Euclidean, opts...)
}

// Distance returns the distance between the indexed geometry and g, or
// +Inf if either of them is empty.
func (ix *Indexed) Distance(g geom.Geom) float64 {
	p, ok, err := ix.Nearest(context.Background(), g)
	if err != nil {
		panic(err)
	}
	if !ok {
		return math.Inf(1)
	}
	return p.Distance
}

// NearestPoints returns a point on the indexed geometry and a point on g
// that are separated by the distance between them. ok is false if either
// geometry is empty.
func (ix *Indexed) NearestPoints(g geom.Geom) (a, b geom.Point, ok bool) {
	p, ok, err := ix.Nearest(context.Background(), g)
	if err != nil {
		panic(err)
	}
	if !ok {
		return a, b, false
	}
	a, b = p.A.NearestPoints(p.B)
	return a, b, true
}

// IsWithinDistance reports whether the distance between the indexed
// geometry and g is at most d. Parts of the geometries that are farther
// apart than d are never compared.
func (ix *Indexed) IsWithinDistance(g geom.Geom, d float64) bool {
	if d < 0 || math.IsNaN(d) {
		return false
	}
	_, ok, err := ix.Nearest(context.Background(), g, strtree.WithMaxDistance(math.Nextafter(d, math.Inf(1))))
	if err != nil {
		panic(err)
	}
	return ok
}
