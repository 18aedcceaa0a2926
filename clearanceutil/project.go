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

package clearanceutil

import (
	"fmt"

	"github.com/ctessum/geom/proj"
)

// projector transforms features into a common spatial reference so that
// distances between features from different files can be compared.
type projector struct {
	sr    *proj.SR
	trans map[*proj.SR]proj.Transformer
}

// newProjector returns a projector into spatialReference, which is a
// PROJ.4 string or WKT. If spatialReference is empty, the spatial
// reference of the first projected feature that has one is used.
func newProjector(spatialReference string) (*projector, error) {
	p := &projector{trans: make(map[*proj.SR]proj.Transformer)}
	if spatialReference == "" {
		return p, nil
	}
	sr, err := proj.Parse(spatialReference)
	if err != nil {
		return nil, fmt.Errorf("clearance: parsing SpatialReference: %v", err)
	}
	p.sr = sr
	return p, nil
}

// project transforms the features in place. Features whose spatial
// reference is not known are assumed to already be in the output spatial
// reference.
func (p *projector) project(features []Feature) error {
	for i, f := range features {
		if f.SR == nil || f.SR == p.sr {
			continue
		}
		if p.sr == nil {
			p.sr = f.SR
			continue
		}
		t, err := p.transform(f.SR)
		if err != nil {
			return fmt.Errorf("clearance: projecting feature %s: %v", f.Name, err)
		}
		if t != nil && f.Geom != nil {
			g, err := f.Geom.Transform(t)
			if err != nil {
				return fmt.Errorf("clearance: projecting feature %s: %v", f.Name, err)
			}
			features[i].Geom = g
		}
		features[i].SR = p.sr
	}
	return nil
}

// transform returns the transform from sr to the output spatial reference,
// which is nil if they are the same.
func (p *projector) transform(sr *proj.SR) (proj.Transformer, error) {
	if t, ok := p.trans[sr]; ok {
		return t, nil
	}
	t, err := sr.NewTransform(p.sr)
	if err != nil {
		return nil, err
	}
	p.trans[sr] = t
	return t, nil
}
