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
	"encoding/json"
	"fmt"
	"os"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/clearance"
)

// Result is the outcome of a computation for one feature.
type Result struct {
	// Feature is the name of the input feature.
	Feature string

	// Target is the name of the closest target feature. It is only set
	// for distance results.
	Target string

	// Value is the clearance or distance, or clearance.NoDistance if
	// there is none.
	Value float64

	// Line joins the two points that determine Value. It is nil if Value
	// is clearance.NoDistance.
	Line geom.LineString
}

// Shapefile attribute sizes.
const (
	nameLength     = 50
	valueLength    = 24
	valuePrecision = 10
)

// writeResults writes results to the shapefile or GeoJSON file f. The
// value of each result is stored in the attribute valueName.
func writeResults(f, valueName string, results []Result, log logrus.FieldLogger) error {
	ff, err := fileFormat(f)
	if err != nil {
		return fmt.Errorf("clearance: %v", err)
	}
	switch ff {
	case shapefile:
		err = writeShapefile(f, valueName, results, log)
	default:
		err = writeGeoJSON(f, valueName, results)
	}
	if err != nil {
		return fmt.Errorf("clearance: writing output file: %v", err)
	}
	return nil
}

func hasTargets(results []Result) bool {
	for _, r := range results {
		if r.Target != "" {
			return true
		}
	}
	return false
}

// writeShapefile writes the lines of the results as polylines. Shapefiles
// cannot hold a null line with a value, so results without a line are
// left out.
func writeShapefile(f, valueName string, results []Result, log logrus.FieldLogger) error {
	fields := []goshp.Field{goshp.StringField("Feature", nameLength)}
	targets := hasTargets(results)
	if targets {
		fields = append(fields, goshp.StringField("Target", nameLength))
	}
	fields = append(fields, goshp.FloatField(valueName, valueLength, valuePrecision))

	e, err := shp.NewEncoderFromFields(f, goshp.POLYLINE, fields...)
	if err != nil {
		return err
	}
	defer e.Close()
	for _, r := range results {
		if r.Line == nil {
			log.WithField("feature", r.Feature).Debugf("no %s; not written to shapefile", valueName)
			continue
		}
		vals := []interface{}{r.Feature}
		if targets {
			vals = append(vals, r.Target)
		}
		vals = append(vals, r.Value)
		if err := e.EncodeFields(geom.MultiLineString{r.Line}, vals...); err != nil {
			return err
		}
	}
	return nil
}

type outputFeature struct {
	Type       string                 `json:"type"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type outputCollection struct {
	Type     string          `json:"type"`
	Features []outputFeature `json:"features"`
}

// writeGeoJSON writes the results as a FeatureCollection. Results without
// a line have a null geometry and a null value because JSON cannot
// represent infinity.
func writeGeoJSON(f, valueName string, results []Result) error {
	fc := outputCollection{Type: "FeatureCollection", Features: make([]outputFeature, len(results))}
	for i, r := range results {
		props := map[string]interface{}{"Feature": r.Feature, valueName: nil}
		if r.Target != "" {
			props["Target"] = r.Target
		}
		of := outputFeature{Type: "Feature", Properties: props}
		if clearance.Exists(r.Value) {
			props[valueName] = r.Value
		}
		if r.Line != nil {
			g, err := geojson.ToGeoJSON(r.Line)
			if err != nil {
				return err
			}
			of.Geometry = g
		}
		fc.Features[i] = of
	}
	w, err := os.Create(f)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(fc); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
