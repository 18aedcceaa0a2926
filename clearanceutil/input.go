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
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	"github.com/spf13/cast"
)

// Feature is a named geometry read from an input file.
type Feature struct {
	Name string
	Geom geom.Geom

	// SR is the spatial reference of Geom, or nil if it is not known.
	SR *proj.SR
}

// ReadFeatures reads the features in the GeoJSON files or shapefiles
// named by files. Features are named by the value of their nameField
// attribute. If nameField is empty, or a GeoJSON feature does not have it,
// the feature is named by its id or by the file name and the position of
// the feature in the file.
func ReadFeatures(files []string, nameField string) ([]Feature, error) {
	var out []Feature
	for _, f := range files {
		ff, err := fileFormat(f)
		if err != nil {
			return nil, fmt.Errorf("clearance: %v", err)
		}
		var features []Feature
		switch ff {
		case shapefile:
			features, err = readShapefile(f, nameField)
		case geoJSON:
			features, err = readGeoJSON(f, nameField)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, features...)
	}
	return out, nil
}

func defaultName(file string, i int) string {
	return fmt.Sprintf("%s:%d", filepath.Base(file), i)
}

func readShapefile(file, nameField string) ([]Feature, error) {
	d, err := shp.NewDecoder(file)
	if err != nil {
		return nil, fmt.Errorf("clearance: opening shapefile: %v", err)
	}
	defer d.Close()
	sr, err := d.SR()
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("clearance: reading projection of %s: %v", file, err)
	}
	var fields []string
	if nameField != "" {
		fields = []string{nameField}
	}
	var out []Feature
	for {
		g, vals, more := d.DecodeRowFields(fields...)
		if err := d.Error(); err != nil {
			return nil, fmt.Errorf("clearance: reading shapefile %s: %v", file, err)
		}
		if !more {
			break
		}
		name := strings.TrimSpace(strings.Trim(vals[nameField], "\x00"))
		if name == "" {
			name = defaultName(file, len(out))
		}
		out = append(out, Feature{Name: name, Geom: g, SR: sr})
	}
	return out, nil
}

// geoJSONObject holds the members of the GeoJSON object types that are
// not handled by the geojson package.
type geoJSONObject struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id"`
	Features   []json.RawMessage      `json:"features"`
	Geometry   json.RawMessage        `json:"geometry"`
	Geometries []json.RawMessage      `json:"geometries"`
	Properties map[string]interface{} `json:"properties"`
}

func readGeoJSON(file, nameField string) ([]Feature, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("clearance: reading GeoJSON file: %v", err)
	}
	out, err := decodeGeoJSON(b, nameField, func(i int) string { return defaultName(file, i) })
	if err != nil {
		return nil, fmt.Errorf("clearance: decoding %s: %v", file, err)
	}
	return out, nil
}

// decodeGeoJSON decodes a FeatureCollection, a single Feature, or a bare
// geometry.
func decodeGeoJSON(b []byte, nameField string, name func(int) string) ([]Feature, error) {
	var o geoJSONObject
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, err
	}
	switch o.Type {
	case "FeatureCollection":
		out := make([]Feature, len(o.Features))
		for i, raw := range o.Features {
			var f geoJSONObject
			if err := json.Unmarshal(raw, &f); err != nil {
				return nil, err
			}
			ff, err := decodeFeature(&f, nameField, name(i))
			if err != nil {
				return nil, fmt.Errorf("feature %d: %v", i, err)
			}
			out[i] = ff
		}
		return out, nil
	case "Feature":
		f, err := decodeFeature(&o, nameField, name(0))
		if err != nil {
			return nil, err
		}
		return []Feature{f}, nil
	}
	g, err := decodeGeometry(b)
	if err != nil {
		return nil, err
	}
	return []Feature{{Name: name(0), Geom: g}}, nil
}

func decodeFeature(f *geoJSONObject, nameField, fallback string) (Feature, error) {
	if f.Type != "Feature" {
		return Feature{}, fmt.Errorf("invalid GeoJSON type %q; want \"Feature\"", f.Type)
	}
	out := Feature{Name: fallback}
	if v, ok := f.Properties[nameField]; ok && nameField != "" {
		out.Name = cast.ToString(v)
	} else if f.ID != nil {
		out.Name = cast.ToString(f.ID)
	}
	g, err := decodeGeometry(f.Geometry)
	if err != nil {
		return Feature{}, err
	}
	out.Geom = g
	return out, nil
}

// decodeGeometry decodes a GeoJSON geometry, which may be a
// GeometryCollection. A null geometry is returned as nil.
func decodeGeometry(b json.RawMessage) (geom.Geom, error) {
	if len(bytes.TrimSpace(b)) == 0 || bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil, nil
	}
	var o geoJSONObject
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, err
	}
	if o.Type != "GeometryCollection" {
		return geojson.Decode(b)
	}
	gc := make(geom.GeometryCollection, len(o.Geometries))
	for i, raw := range o.Geometries {
		g, err := decodeGeometry(raw)
		if err != nil {
			return nil, err
		}
		gc[i] = g
	}
	return gc, nil
}
