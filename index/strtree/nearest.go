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

package strtree

import (
	"context"
	"math"

	"github.com/tidwall/tinyqueue"
)

// ItemDistance computes the distance between two items.
//
// Distances must be non-negative; +Inf means that the two items impose no
// constraint on each other. The distance does not need to satisfy the
// triangle inequality, but it must never be smaller than the EnvelopeDistance
// between the bounds the items were inserted with. The search prunes on
// that lower bound, so a distance that violates it causes closer pairs to be
// missed.
type ItemDistance[T any] interface {
	Distance(a, b T) float64
}

// ItemDistanceFunc is an adapter to allow the use of ordinary functions
// as an ItemDistance.
type ItemDistanceFunc[T any] func(a, b T) float64

// Distance returns f(a, b).
func (f ItemDistanceFunc[T]) Distance(a, b T) float64 { return f(a, b) }

// Pair is a pair of items and the distance between them.
type Pair[T any] struct {
	A, B     T
	Distance float64
}

// Option configures a nearest pair search.
type Option func(*searchOptions)

type searchOptions struct {
	maxDistance float64
}

// WithMaxDistance restricts a search to pairs whose distance is strictly
// less than d. Subtrees that cannot contain such a pair are never visited.
func WithMaxDistance(d float64) Option {
	return func(o *searchOptions) {
		o.maxDistance = d
	}
}

// NearestPair returns the pair of distinct items in t for which m
// returns the smallest distance. ok is false if no such pair exists, for
// example because t has fewer than two items or because every candidate
// distance is +Inf. Ties are resolved in favor of the first pair found.
func (t *Tree[T]) NearestPair(m ItemDistance[T], opts ...Option) (p Pair[T], ok bool, err error) {
	return t.NearestPairContext(context.Background(), m, opts...)
}

// NearestPairContext is like NearestPair, but it stops and returns
// ctx.Err() if ctx is cancelled during the search.
func (t *Tree[T]) NearestPairContext(ctx context.Context, m ItemDistance[T], opts ...Option) (p Pair[T], ok bool, err error) {
	if !t.built {
		return p, false, ErrNotBuilt
	}
	return nearest(ctx, t.root, t.root, m, opts)
}

// NearestPairWith returns the pair made of an item of t and an item of o
// for which m returns the smallest distance. The first item of the pair
// always comes from t. If o is t, NearestPairWith is equivalent to
// NearestPair.
func (t *Tree[T]) NearestPairWith(o *Tree[T], m ItemDistance[T], opts ...Option) (p Pair[T], ok bool, err error) {
	return t.NearestPairWithContext(context.Background(), o, m, opts...)
}

// NearestPairWithContext is like NearestPairWith, but it stops and returns
// ctx.Err() if ctx is cancelled during the search.
func (t *Tree[T]) NearestPairWithContext(ctx context.Context, o *Tree[T], m ItemDistance[T], opts ...Option) (p Pair[T], ok bool, err error) {
	if !t.built || !o.built {
		return p, false, ErrNotBuilt
	}
	return nearest(ctx, t.root, o.root, m, opts)
}

// pair is a search state holding two nodes and the lower bound on the
// distance between any of their items.
type pair[T any] struct {
	a, b  *node[T]
	bound float64
}

func (p *pair[T]) Less(o tinyqueue.Item) bool {
	return p.bound < o.(*pair[T]).bound
}

func newPair[T any](a, b *node[T]) *pair[T] {
	return &pair[T]{a: a, b: b, bound: EnvelopeDistance(a.bounds, b.bounds)}
}

// nearest runs a best-first branch-and-bound search starting from the
// pair (a, b). When a and b are the same node, the pair of an item with
// itself is never evaluated.
func nearest[T any](ctx context.Context, a, b *node[T], m ItemDistance[T], opts []Option) (Pair[T], bool, error) {
	o := searchOptions{maxDistance: math.Inf(1)}
	for _, opt := range opts {
		opt(&o)
	}
	best := o.maxDistance
	var result Pair[T]
	found := false

	q := tinyqueue.New(nil)
	q.Push(newPair(a, b))
	for q.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Pair[T]{}, false, err
		}
		p := q.Pop().(*pair[T])
		// Every queued pair has a bound at least this large.
		if p.bound >= best {
			break
		}
		if p.a.isItem() && p.b.isItem() {
			if p.a == p.b {
				continue
			}
			d := m.Distance(p.a.item, p.b.item)
			if d < best {
				best = d
				result = Pair[T]{A: p.a.item, B: p.b.item, Distance: d}
				found = true
				if d == 0 {
					break
				}
			}
			continue
		}
		expand(q, p, best)
	}
	return result, found, nil
}

// expand pushes the child pairs of p whose bound is below best.
func expand[T any](q *tinyqueue.Queue, p *pair[T], best float64) {
	push := func(a, b *node[T]) {
		c := newPair(a, b)
		if c.bound < best {
			q.Push(c)
		}
	}
	switch {
	case p.a == p.b:
		// Self pairs only need each unordered pair of children once.
		for i, ci := range p.a.children {
			for _, cj := range p.a.children[i:] {
				if ci == cj && ci.isItem() {
					continue
				}
				push(ci, cj)
			}
		}
	case expandFirst(p.a, p.b):
		for _, c := range p.a.children {
			push(c, p.b)
		}
	default:
		for _, c := range p.b.children {
			push(p.a, c)
		}
	}
}

// expandFirst reports whether the first node of a pair should be expanded.
// When both nodes have children the larger one is expanded.
func expandFirst[T any](a, b *node[T]) bool {
	if b.isItem() {
		return true
	}
	if a.isItem() {
		return false
	}
	return a.area() >= b.area()
}
