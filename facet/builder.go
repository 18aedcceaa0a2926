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
	"github.com/ctessum/geom"
	"github.com/spatialmodel/clearance/index/strtree"
)

// SequenceSize is the maximum number of coordinates in a sequence cut
// from a line or polygon ring.
const SequenceSize = 6

// Sequences returns the facet sequences of g. Points become sequences of
// length one. Lines and polygon rings are cut into sequences of at most
// SequenceSize coordinates, where each sequence starts at the last
// coordinate of the one before it so that every segment belongs to
// exactly one sequence. Geometry types other than points, lines, polygons,
// their multi-part versions and collections of them contribute nothing.
func Sequences(g geom.Geom) []*Sequence {
	return appendSequences(nil, g)
}

func appendSequences(out []*Sequence, g geom.Geom) []*Sequence {
	switch t := g.(type) {
	case geom.Point:
		out = append(out, NewSequence([]geom.Point{t}))
	case *geom.Point:
		if t != nil {
			out = append(out, NewSequence([]geom.Point{*t}))
		}
	case geom.MultiPoint:
		for i := range t {
			out = append(out, NewSequence(t[i:i+1:i+1]))
		}
	case geom.LineString:
		out = appendLinear(out, t)
	case geom.MultiLineString:
		for _, l := range t {
			out = appendLinear(out, l)
		}
	case geom.Polygon:
		for _, r := range t {
			out = appendLinear(out, []geom.Point(r))
		}
	case geom.MultiPolygon:
		for _, p := range t {
			out = appendSequences(out, p)
		}
	case geom.GeometryCollection:
		for _, gg := range t {
			out = appendSequences(out, gg)
		}
	}
	return out
}

func appendLinear(out []*Sequence, pts []geom.Point) []*Sequence {
	switch len(pts) {
	case 0:
		return out
	case 1:
		return append(out, NewSequence(pts[:1:1]))
	}
	for i := 0; i < len(pts)-1; i += SequenceSize - 1 {
		end := min(i+SequenceSize, len(pts))
		out = append(out, NewSequence(pts[i:end:end]))
	}
	return out
}

// NewTree returns a built tree holding seqs, whose nodes have at most
// nodeCapacity children.
func NewTree(seqs []*Sequence, nodeCapacity int) (*strtree.Tree[*Sequence], error) {
	t := strtree.New[*Sequence](nodeCapacity)
	for _, s := range seqs {
		if err := t.Insert(s.Bounds(), s); err != nil {
			return nil, err
		}
	}
	if err := t.Build(); err != nil {
		return nil, err
	}
	return t, nil
}

// BuildTree returns a tree holding the facet sequences of g.
func BuildTree(g geom.Geom) (*strtree.Tree[*Sequence], error) {
	return NewTree(Sequences(g), strtree.DefaultNodeCapacity)
}
