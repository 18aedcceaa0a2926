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
	"fmt"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/requestcache"
	"github.com/spatialmodel/clearance/internal/hash"
)

// Cache holds indexed geometries so that a geometry used as the target of
// many distance queries is only indexed once. A Cache is safe for
// concurrent use. Cached geometries must not be modified.
type Cache struct {
	nodeCapacity int

	// mu serializes requests. The in-memory layer of requestcache updates
	// its LRU list from the requesting goroutine.
	mu    sync.Mutex
	cache *requestcache.Cache
}

// NewCache returns a cache that indexes geometries with tree nodes of at
// most nodeCapacity children and keeps the size most recently used indexes
// in memory.
func NewCache(nodeCapacity, size int) *Cache {
	if size < 1 {
		size = 1
	}
	c := &Cache{nodeCapacity: nodeCapacity}
	c.cache = requestcache.NewCache(c.index, 1, requestcache.Memory(size))
	return c
}

func (c *Cache) index(ctx context.Context, request interface{}) (interface{}, error) {
	g, ok := request.(geom.Geom)
	if !ok {
		return nil, fmt.Errorf("facet: cannot index %T", request)
	}
	return NewIndexed(g, c.nodeCapacity)
}

// Key returns a cache key for g. Geometries of the same type with the same
// coordinates have the same key.
func Key(g geom.Geom) string {
	return hash.Key(g)
}

// Indexed returns the index of g, creating it if there is none in the cache
// under key. key must identify g, for instance by being the result of Key(g).
func (c *Cache) Indexed(ctx context.Context, key string, g geom.Geom) (*Indexed, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.cache.NewRequest(ctx, g, key)
	ix, err := r.Result()
	if err != nil {
		return nil, err
	}
	return ix.(*Indexed), nil
}

// Requests returns the number of requests received by the in-memory cache
// and by the indexer, in that order.
func (c *Cache) Requests() []int {
	return c.cache.Requests()
}
