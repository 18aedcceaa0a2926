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

// Package hash creates cache keys for geometries.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"

	"github.com/ctessum/geom"
	"github.com/davecgh/go-spew/spew"
)

// Key returns a key identifying g by its type and coordinates. Geometries
// of different types that hold the same coordinates get different keys.
func Key(g geom.Geom) string {
	return fmt.Sprintf("%T:%s", g, sum(g))
}

// sum returns an fnv128a digest of object.
func sum(object interface{}) string {
	h := fnv.New128a()
	if err := gob.NewEncoder(h).Encode(object); err == nil {
		return fmt.Sprintf("%x", h.Sum(nil))
	}
	// gob cannot encode geometry collections unless every element type is
	// registered, so fall back to a deterministic dump.
	h.Reset()
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
	return fmt.Sprintf("%x", h.Sum(nil))
}
