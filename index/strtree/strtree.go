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

// Package strtree implements a static R-tree that is bulk loaded using the
// sort-tile-recursive (STR) algorithm, together with a branch-and-bound
// search for the closest pair of items under a user-supplied distance.
//
// Items are inserted along with their bounding boxes and the tree is then
// built exactly once. After Build the tree is immutable, so any number of
// goroutines may query it concurrently.
package strtree

import (
	"errors"
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// DefaultNodeCapacity is the maximum number of children of a tree node
// used when no other capacity is specified.
const DefaultNodeCapacity = 10

var (
	// ErrAlreadyBuilt is returned when items are inserted into a tree or the
	// tree is built after it has already been built.
	ErrAlreadyBuilt = errors.New("strtree: the tree has already been built")

	// ErrNotBuilt is returned when a tree is queried before it is built.
	ErrNotBuilt = errors.New("strtree: the tree has not been built yet")
)

// kind distinguishes the variants of a tree node.
type kind uint8

const (
	itemNode   kind = iota // a single indexed item
	leafNode               // children are item nodes
	branchNode             // children are leaf or branch nodes
)

// node is a tagged variant holding either an item or a list of children.
// bounds is always the exact union of the bounds of the children.
type node[T any] struct {
	kind     kind
	bounds   *geom.Bounds
	children []*node[T]
	item     T
}

func (n *node[T]) isItem() bool { return n.kind == itemNode }

// area returns the area of the node bounds.
func (n *node[T]) area() float64 {
	return (n.bounds.Max.X - n.bounds.Min.X) * (n.bounds.Max.Y - n.bounds.Min.Y)
}

func (n *node[T]) centreX() float64 { return (n.bounds.Min.X + n.bounds.Max.X) / 2 }
func (n *node[T]) centreY() float64 { return (n.bounds.Min.Y + n.bounds.Max.Y) / 2 }

// newParent creates a node of kind k holding children and computes its
// bounds.
func newParent[T any](k kind, children []*node[T]) *node[T] {
	b := geom.NewBounds()
	for _, c := range children {
		b.Extend(c.bounds)
	}
	return &node[T]{kind: k, bounds: b, children: children}
}

// Tree is a sort-tile-recursive packed R-tree holding items of type T.
// The zero value is not usable; create trees with New.
type Tree[T any] struct {
	nodeCapacity int
	items        []*node[T]
	root         *node[T]
	built        bool
}

// New returns an empty tree whose nodes hold at most nodeCapacity
// children. Capacities smaller than 2 are replaced by DefaultNodeCapacity.
func New[T any](nodeCapacity int) *Tree[T] {
	if nodeCapacity < 2 {
		nodeCapacity = DefaultNodeCapacity
	}
	return &Tree[T]{nodeCapacity: nodeCapacity}
}

// NodeCapacity returns the maximum number of children per node.
func (t *Tree[T]) NodeCapacity() int { return t.nodeCapacity }

// Insert adds item with bounding box b to the tree. Items whose bounds are
// empty are ignored because no query can ever match them. The bounds are
// copied.
func (t *Tree[T]) Insert(b *geom.Bounds, item T) error {
	if t.built {
		return ErrAlreadyBuilt
	}
	if b == nil || b.Empty() {
		return nil
	}
	t.items = append(t.items, &node[T]{kind: itemNode, bounds: b.Copy(), item: item})
	return nil
}

// Build packs the inserted items into the tree. It may only be called once.
func (t *Tree[T]) Build() error {
	if t.built {
		return ErrAlreadyBuilt
	}
	t.built = true
	if len(t.items) == 0 {
		t.root = newParent[T](leafNode, nil)
		return nil
	}
	level := t.items
	k := leafNode
	for {
		level = t.createParents(level, k)
		if len(level) == 1 {
			t.root = level[0]
			return nil
		}
		k = branchNode
	}
}

// createParents groups children into parent nodes of kind k. The children
// are sorted into ceil(sqrt(P)) vertical slices by the x coordinate of their
// centres, where P is the minimum number of parents needed, and each slice
// is sorted by y and cut into runs of the node capacity.
func (t *Tree[T]) createParents(children []*node[T], k kind) []*node[T] {
	minParentCount := ceilDiv(len(children), t.nodeCapacity)
	sorted := make([]*node[T], len(children))
	copy(sorted, children)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].centreX() < sorted[j].centreX()
	})
	sliceCount := int(math.Ceil(math.Sqrt(float64(minParentCount))))
	sliceCapacity := ceilDiv(len(sorted), sliceCount)

	parents := make([]*node[T], 0, minParentCount)
	for start := 0; start < len(sorted); start += sliceCapacity {
		end := start + sliceCapacity
		if end > len(sorted) {
			end = len(sorted)
		}
		slice := sorted[start:end]
		sort.SliceStable(slice, func(i, j int) bool {
			return slice[i].centreY() < slice[j].centreY()
		})
		for i := 0; i < len(slice); i += t.nodeCapacity {
			j := i + t.nodeCapacity
			if j > len(slice) {
				j = len(slice)
			}
			group := make([]*node[T], j-i)
			copy(group, slice[i:j])
			parents = append(parents, newParent(k, group))
		}
	}
	return parents
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Len returns the number of items in the tree.
func (t *Tree[T]) Len() (int, error) {
	if !t.built {
		return 0, ErrNotBuilt
	}
	return len(t.items), nil
}

// Bounds returns the bounds of all of the items in the tree. The bounds
// of an empty tree are empty.
func (t *Tree[T]) Bounds() (*geom.Bounds, error) {
	if !t.built {
		return nil, ErrNotBuilt
	}
	return t.root.bounds.Copy(), nil
}

// Depth returns the number of node levels above the items.
func (t *Tree[T]) Depth() (int, error) {
	if !t.built {
		return 0, ErrNotBuilt
	}
	d := 0
	for n := t.root; !n.isItem(); {
		d++
		if len(n.children) == 0 {
			break
		}
		n = n.children[0]
	}
	return d, nil
}

// Search returns the items whose bounds intersect b, including items
// that only touch b.
func (t *Tree[T]) Search(b *geom.Bounds) ([]T, error) {
	if !t.built {
		return nil, ErrNotBuilt
	}
	var out []T
	if b == nil || b.Empty() {
		return out, nil
	}
	stack := []*node[T]{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !n.bounds.Overlaps(b) {
			continue
		}
		if n.isItem() {
			out = append(out, n.item)
			continue
		}
		stack = append(stack, n.children...)
	}
	return out, nil
}

// Items returns all of the items in the order of the tree leaves.
func (t *Tree[T]) Items() ([]T, error) {
	if !t.built {
		return nil, ErrNotBuilt
	}
	out := make([]T, 0, len(t.items))
	var walk func(*node[T])
	walk = func(n *node[T]) {
		if n.isItem() {
			out = append(out, n.item)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return out, nil
}

// EnvelopeDistance returns the distance between the closest points of two
// bounding boxes, or zero if they intersect. It is a lower bound on the
// distance between any geometry inside a and any geometry inside b.
// The distance from or to empty bounds is +Inf.
func EnvelopeDistance(a, b *geom.Bounds) float64 {
	if a == nil || b == nil || a.Empty() || b.Empty() {
		return math.Inf(1)
	}
	dx := axisGap(a.Min.X, a.Max.X, b.Min.X, b.Max.X)
	dy := axisGap(a.Min.Y, a.Max.Y, b.Min.Y, b.Max.Y)
	switch {
	case dx == 0:
		return dy
	case dy == 0:
		return dx
	}
	return math.Hypot(dx, dy)
}

// axisGap returns the gap between the intervals [aMin, aMax] and
// [bMin, bMax], or zero if they overlap.
func axisGap(aMin, aMax, bMin, bMax float64) float64 {
	if aMax < bMin {
		return bMin - aMax
	}
	if bMax < aMin {
		return aMin - bMax
	}
	return 0
}
