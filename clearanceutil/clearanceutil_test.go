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
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/clearance"
)

const inputJSON = `{"type": "FeatureCollection", "features": [
	{"type": "Feature", "properties": {"name": "line"}, "geometry": {"type": "LineString", "coordinates": [[0, 0], [10, 0], [10, 5]]}},
	{"type": "Feature", "properties": {"name": "pts"}, "geometry": {"type": "MultiPoint", "coordinates": [[0, 0], [3, 4]]}},
	{"type": "Feature", "properties": {"name": "single"}, "geometry": {"type": "Point", "coordinates": [1, 1]}}
]}`

const sourcesJSON = `{"type": "FeatureCollection", "features": [
	{"type": "Feature", "properties": {"name": "a"}, "geometry": {"type": "Point", "coordinates": [0, 0]}},
	{"type": "Feature", "properties": {"name": "b"}, "geometry": {"type": "Point", "coordinates": [100, 0]}}
]}`

const targetsJSON = `{"type": "FeatureCollection", "features": [
	{"type": "Feature", "properties": {"name": "near"}, "geometry": {"type": "Point", "coordinates": [3, 4]}},
	{"type": "Feature", "properties": {"name": "far"}, "geometry": {"type": "LineString", "coordinates": [[100, 10], [200, 10]]}}
]}`

const (
	longLat         = "+proj=longlat +units=degrees"
	webMercator     = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"
	metersPerDegree = 6378137 * math.Pi / 180
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	f := filepath.Join(dir, name)
	if err := os.WriteFile(f, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return f
}

// writePoints writes a point shapefile with a name attribute and, if sr is
// not empty, a .prj file holding sr.
func writePoints(t *testing.T, dir, name, sr string, names []string, pts []geom.Point) string {
	t.Helper()
	f := filepath.Join(dir, name+".shp")
	e, err := shp.NewEncoderFromFields(f, goshp.POINT, goshp.StringField("name", 10))
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range pts {
		if err := e.EncodeFields(p, names[i]); err != nil {
			t.Fatal(err)
		}
	}
	e.Close()
	if sr != "" {
		writeFile(t, dir, name+".prj", sr)
	}
	return f
}

type outputFile struct {
	Features []struct {
		Geometry   json.RawMessage        `json:"geometry"`
		Properties map[string]interface{} `json:"properties"`
	} `json:"features"`
}

func readOutput(t *testing.T, f string) outputFile {
	t.Helper()
	b, err := os.ReadFile(f)
	if err != nil {
		t.Fatal(err)
	}
	var o outputFile
	if err := json.Unmarshal(b, &o); err != nil {
		t.Fatal(err)
	}
	return o
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(new(bytes.Buffer))
	log.SetLevel(logrus.DebugLevel)
	return log
}

func similar(a, b float64) bool {
	return math.Abs(a-b) < 1e-6*math.Max(1, math.Abs(b))
}

func TestDecodeGeoJSON(t *testing.T) {
	name := func(i int) string { return "f:" + strconv.Itoa(i) }

	t.Run("collection", func(t *testing.T) {
		b := []byte(`{"type": "FeatureCollection", "features": [
			{"type": "Feature", "properties": {"name": "x"}, "geometry": {"type": "Point", "coordinates": [1, 2]}},
			{"type": "Feature", "id": 7, "properties": {}, "geometry": {"type": "Point", "coordinates": [3, 4]}},
			{"type": "Feature", "properties": null, "geometry": null}
		]}`)
		f, err := decodeGeoJSON(b, "name", name)
		if err != nil {
			t.Fatal(err)
		}
		want := []Feature{
			{Name: "x", Geom: geom.Point{X: 1, Y: 2}},
			{Name: "7", Geom: geom.Point{X: 3, Y: 4}},
			{Name: "f:2"},
		}
		if !reflect.DeepEqual(f, want) {
			t.Errorf("%+v != %+v", f, want)
		}
	})
	t.Run("feature", func(t *testing.T) {
		b := []byte(`{"type": "Feature", "properties": {"name": 12}, "geometry": {"type": "Point", "coordinates": [1, 2]}}`)
		f, err := decodeGeoJSON(b, "name", name)
		if err != nil {
			t.Fatal(err)
		}
		want := []Feature{{Name: "12", Geom: geom.Point{X: 1, Y: 2}}}
		if !reflect.DeepEqual(f, want) {
			t.Errorf("%+v != %+v", f, want)
		}
	})
	t.Run("no name field", func(t *testing.T) {
		b := []byte(`{"type": "Feature", "properties": {"name": "x"}, "geometry": {"type": "Point", "coordinates": [1, 2]}}`)
		f, err := decodeGeoJSON(b, "", name)
		if err != nil {
			t.Fatal(err)
		}
		if f[0].Name != "f:0" {
			t.Errorf("name: %s != f:0", f[0].Name)
		}
	})
	t.Run("geometry", func(t *testing.T) {
		b := []byte(`{"type": "LineString", "coordinates": [[0, 0], [1, 1]]}`)
		f, err := decodeGeoJSON(b, "name", name)
		if err != nil {
			t.Fatal(err)
		}
		want := []Feature{{Name: "f:0", Geom: geom.LineString{{X: 0, Y: 0}, {X: 1, Y: 1}}}}
		if !reflect.DeepEqual(f, want) {
			t.Errorf("%+v != %+v", f, want)
		}
	})
	t.Run("geometry collection", func(t *testing.T) {
		b := []byte(`{"type": "GeometryCollection", "geometries": [
			{"type": "Point", "coordinates": [1, 2]},
			{"type": "GeometryCollection", "geometries": [{"type": "Point", "coordinates": [3, 4]}]}
		]}`)
		f, err := decodeGeoJSON(b, "name", name)
		if err != nil {
			t.Fatal(err)
		}
		want := geom.GeometryCollection{
			geom.Point{X: 1, Y: 2},
			geom.GeometryCollection{geom.Point{X: 3, Y: 4}},
		}
		if !reflect.DeepEqual(f[0].Geom, want) {
			t.Errorf("%#v != %#v", f[0].Geom, want)
		}
	})
	t.Run("not a feature", func(t *testing.T) {
		b := []byte(`{"type": "FeatureCollection", "features": [{"type": "Point", "coordinates": [1, 2]}]}`)
		if _, err := decodeGeoJSON(b, "name", name); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("invalid json", func(t *testing.T) {
		if _, err := decodeGeoJSON([]byte(`{"type": `), "name", name); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestReadFeaturesUnsupported(t *testing.T) {
	if _, err := ReadFeatures([]string{"features.csv"}, ""); err == nil {
		t.Error("expected an error")
	}
}

func TestWriteReadGeoJSON(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.geojson")
	results := []Result{
		{Feature: "a", Target: "t", Value: 5, Line: geom.LineString{{X: 0, Y: 0}, {X: 3, Y: 4}}},
		{Feature: "b", Value: clearance.NoDistance},
	}
	if err := writeResults(out, "Distance", results, testLogger()); err != nil {
		t.Fatal(err)
	}

	o := readOutput(t, out)
	if len(o.Features) != 2 {
		t.Fatalf("have %d features, want 2", len(o.Features))
	}
	wantProps := []map[string]interface{}{
		{"Feature": "a", "Target": "t", "Distance": 5.0},
		{"Feature": "b", "Distance": nil},
	}
	for i, want := range wantProps {
		if !reflect.DeepEqual(o.Features[i].Properties, want) {
			t.Errorf("feature %d: %v != %v", i, o.Features[i].Properties, want)
		}
	}
	if g := string(o.Features[1].Geometry); g != "null" {
		t.Errorf("geometry: %s != null", g)
	}

	f, err := ReadFeatures([]string{out}, "Feature")
	if err != nil {
		t.Fatal(err)
	}
	want := []Feature{
		{Name: "a", Geom: geom.LineString{{X: 0, Y: 0}, {X: 3, Y: 4}}},
		{Name: "b"},
	}
	if !reflect.DeepEqual(f, want) {
		t.Errorf("%+v != %+v", f, want)
	}
}

func TestWriteReadShapefile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.shp")
	results := []Result{
		{Feature: "a", Value: 5, Line: geom.LineString{{X: 0, Y: 0}, {X: 3, Y: 4}}},
		{Feature: "none", Value: clearance.NoDistance},
		{Feature: "b", Value: 1, Line: geom.LineString{{X: 1, Y: 1}, {X: 1, Y: 2}}},
	}
	if err := writeResults(out, "Clearance", results, testLogger()); err != nil {
		t.Fatal(err)
	}

	f, err := ReadFeatures([]string{out}, "Feature")
	if err != nil {
		t.Fatal(err)
	}
	if len(f) != 2 {
		t.Fatalf("have %d features, want 2", len(f))
	}
	if f[0].Name != "a" || f[1].Name != "b" {
		t.Errorf("names: %s, %s != a, b", f[0].Name, f[1].Name)
	}
	if f[0].Geom == nil {
		t.Error("missing geometry")
	}
	if f[0].SR != nil {
		t.Error("shapefile without a .prj file has a spatial reference")
	}
}

func TestReadShapefileProjection(t *testing.T) {
	dir := t.TempDir()
	f := writePoints(t, dir, "merc", webMercator, []string{"m"}, []geom.Point{{X: metersPerDegree, Y: 0}})
	features, err := ReadFeatures([]string{f}, "name")
	if err != nil {
		t.Fatal(err)
	}
	if len(features) != 1 || features[0].Name != "m" {
		t.Fatalf("features: %+v", features)
	}
	if features[0].SR == nil {
		t.Fatal("spatial reference was not read from the .prj file")
	}

	writeFile(t, dir, "bad.prj", "not a projection")
	bad := writePoints(t, dir, "bad", "", []string{"x"}, []geom.Point{{X: 0, Y: 0}})
	if _, err := ReadFeatures([]string{bad}, "name"); err == nil {
		t.Error("expected an error for an invalid .prj file")
	}
}

func TestProjector(t *testing.T) {
	dir := t.TempDir()
	merc := writePoints(t, dir, "merc", webMercator, []string{"m"}, []geom.Point{{X: metersPerDegree, Y: 0}})
	ll := writePoints(t, dir, "ll", longLat, []string{"l"}, []geom.Point{{X: 1, Y: 0}})
	plain := writePoints(t, dir, "plain", "", []string{"p"}, []geom.Point{{X: 5, Y: 5}})

	t.Run("first input", func(t *testing.T) {
		r := &Runner{Log: testLogger()}
		groups, err := r.readProjected("name", []string{plain, merc}, []string{ll})
		if err != nil {
			t.Fatal(err)
		}
		if p := groups[0][0].Geom.(geom.Point); p.X != 5 || p.Y != 5 {
			t.Errorf("feature without a spatial reference was moved to %v", p)
		}
		if p := groups[0][1].Geom.(geom.Point); p.X != metersPerDegree || p.Y != 0 {
			t.Errorf("feature in the output spatial reference was moved to %v", p)
		}
		p := groups[1][0].Geom.(geom.Point)
		if !similar(p.X, metersPerDegree) || math.Abs(p.Y) > 1e-6 {
			t.Errorf("target: %v != {%g 0}", p, metersPerDegree)
		}
	})
	t.Run("configured", func(t *testing.T) {
		r := &Runner{Log: testLogger(), SpatialReference: longLat}
		groups, err := r.readProjected("name", []string{merc})
		if err != nil {
			t.Fatal(err)
		}
		p := groups[0][0].Geom.(geom.Point)
		if !similar(p.X, 1) || math.Abs(p.Y) > 1e-9 {
			t.Errorf("feature: %v != {1 0}", p)
		}
	})
	t.Run("invalid", func(t *testing.T) {
		if _, err := newProjector("not a projection"); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestRunDistanceProjected(t *testing.T) {
	dir := t.TempDir()
	merc := writePoints(t, dir, "merc", webMercator, []string{"m"}, []geom.Point{{X: metersPerDegree, Y: 0}})
	ll := writePoints(t, dir, "ll", longLat, []string{"l", "far"}, []geom.Point{{X: 1, Y: 0}, {X: 2, Y: 0}})
	out := filepath.Join(dir, "out.json")

	r := &Runner{Log: testLogger(), NodeCapacity: 2, Workers: 2, CacheSize: 10}
	if err := r.RunDistance(context.Background(), []string{merc}, []string{ll}, "name", out); err != nil {
		t.Fatal(err)
	}
	o := readOutput(t, out)
	if len(o.Features) != 1 {
		t.Fatalf("have %d features, want 1", len(o.Features))
	}
	props := o.Features[0].Properties
	if props["Target"] != "l" {
		t.Errorf("target: %v != l", props["Target"])
	}
	if d, ok := props["Distance"].(float64); !ok || d > 1e-3 {
		t.Errorf("distance: %v, want about 0", props["Distance"])
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{
		{Value: 4},
		{Value: clearance.NoDistance},
		{Value: 1},
		{Value: 10},
	})
	if want := (Summary{Count: 4, Exist: 3, Min: 1, Mean: 5, Median: 4, Max: 10}); s != want {
		t.Errorf("%+v != %+v", s, want)
	}
	if s, want := Summarize([]Result{{Value: clearance.NoDistance}}), (Summary{Count: 1}); s != want {
		t.Errorf("%+v != %+v", s, want)
	}
	if c := Summarize(nil).Fields()["count"]; c != 0 {
		t.Errorf("count: %v != 0", c)
	}
}

func TestRunner(t *testing.T) {
	dir := t.TempDir()
	features, err := ReadFeatures([]string{writeFile(t, dir, "in.json", inputJSON)}, "name")
	if err != nil {
		t.Fatal(err)
	}
	sources, err := ReadFeatures([]string{writeFile(t, dir, "sources.json", sourcesJSON)}, "name")
	if err != nil {
		t.Fatal(err)
	}
	targets, err := ReadFeatures([]string{writeFile(t, dir, "targets.json", targetsJSON)}, "name")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("minimum clearance", func(t *testing.T) {
		r := &Runner{Log: testLogger(), NodeCapacity: 2, Workers: 2, CacheSize: 1}
		res, err := r.MinimumClearance(context.Background(), features)
		if err != nil {
			t.Fatal(err)
		}
		if len(res) != 3 {
			t.Fatalf("have %d results, want 3", len(res))
		}
		if res[0].Feature != "line" || res[0].Value != 5 {
			t.Errorf("line: %+v", res[0])
		}
		if res[1].Value != 5 || len(res[1].Line) != 2 {
			t.Errorf("pts: %+v", res[1])
		}
		if clearance.Exists(res[2].Value) || res[2].Line != nil {
			t.Errorf("single: %+v", res[2])
		}
	})

	t.Run("distance", func(t *testing.T) {
		r := &Runner{Log: testLogger(), NodeCapacity: 2, Workers: 2, CacheSize: 1}
		res, err := r.Distance(context.Background(), sources, targets)
		if err != nil {
			t.Fatal(err)
		}
		want := []Result{
			{Feature: "a", Target: "near", Value: 5, Line: geom.LineString{{X: 0, Y: 0}, {X: 3, Y: 4}}},
			{Feature: "b", Target: "far", Value: 10, Line: geom.LineString{{X: 100, Y: 0}, {X: 100, Y: 10}}},
		}
		if !reflect.DeepEqual(res, want) {
			t.Errorf("%+v != %+v", res, want)
		}
	})

	t.Run("targets indexed once", func(t *testing.T) {
		many := make([]Feature, 20)
		for i := range many {
			many[i] = Feature{Name: strconv.Itoa(i), Geom: geom.Point{X: float64(i), Y: 0}}
		}
		r := &Runner{Log: testLogger(), NodeCapacity: 2, Workers: 4, CacheSize: 10}
		for i := 0; i < 2; i++ {
			res, err := r.Distance(context.Background(), many, targets)
			if err != nil {
				t.Fatal(err)
			}
			if res[3].Target != "near" || res[3].Value != 4 {
				t.Errorf("call %d: %+v", i, res[3])
			}
		}
		if have, want := r.targetCache().Requests(), []int{4, 2}; !reflect.DeepEqual(have, want) {
			t.Errorf("cache requests: %v != %v", have, want)
		}
	})

	t.Run("no targets", func(t *testing.T) {
		r := &Runner{Log: testLogger(), NodeCapacity: 2, Workers: 2, CacheSize: 1}
		res, err := r.Distance(context.Background(), features[:1], nil)
		if err != nil {
			t.Fatal(err)
		}
		want := []Result{{Feature: "line", Value: clearance.NoDistance}}
		if !reflect.DeepEqual(res, want) {
			t.Errorf("%+v != %+v", res, want)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		r := &Runner{Log: testLogger(), NodeCapacity: 2, Workers: 2, CacheSize: 1}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := r.Distance(ctx, features, features); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.json", inputJSON)
	set := func(inputs, targets []string, output string, cacheSize int) {
		Cfg.Set("InputFiles", inputs)
		Cfg.Set("TargetFiles", targets)
		Cfg.Set("OutputFile", output)
		Cfg.Set("CacheSize", cacheSize)
		Cfg.Set("Workers", 0)
	}
	defer set(nil, nil, "", 100)

	set([]string{in}, nil, filepath.Join(dir, "out.shp"), 10)
	Cfg.Set("SpatialReference", longLat)
	defer Cfg.Set("SpatialReference", "")
	c, err := loadConfig(Cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.InputFiles, []string{in}) {
		t.Errorf("inputs: %v != %v", c.InputFiles, []string{in})
	}
	if c.Workers <= 0 {
		t.Errorf("workers: %d", c.Workers)
	}
	if c.SpatialReference != longLat {
		t.Errorf("spatial reference: %q != %q", c.SpatialReference, longLat)
	}

	if _, err = loadConfig(Cfg, true); err == nil {
		t.Error("missing targets: expected an error")
	}

	tests := []struct {
		name      string
		inputs    []string
		output    string
		cacheSize int
	}{
		{name: "missing inputs", output: filepath.Join(dir, "out.shp"), cacheSize: 10},
		{name: "missing output", inputs: []string{in}, cacheSize: 10},
		{name: "unsupported output", inputs: []string{in}, output: filepath.Join(dir, "out.csv"), cacheSize: 10},
		{name: "missing output directory", inputs: []string{in}, output: filepath.Join(dir, "missing", "out.shp"), cacheSize: 10},
		{name: "cache size", inputs: []string{in}, output: filepath.Join(dir, "out.shp")},
	}
	for _, test := range tests {
		set(test.inputs, nil, test.output, test.cacheSize)
		if _, err = loadConfig(Cfg, false); err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}

	os.Setenv("CLEARANCE_TEST_DIR", dir)
	defer os.Unsetenv("CLEARANCE_TEST_DIR")
	set([]string{"${CLEARANCE_TEST_DIR}/in.json"}, nil, "${CLEARANCE_TEST_DIR}/out.json", 10)
	c, err = loadConfig(Cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.InputFiles, []string{in}) {
		t.Errorf("inputs: %v != %v", c.InputFiles, []string{in})
	}
	if want := filepath.Join(dir, "out.json"); c.OutputFile != want {
		t.Errorf("output: %s != %s", c.OutputFile, want)
	}
}

func TestMinClearCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.json")
	Cfg.Set("InputFiles", []string{writeFile(t, dir, "in.json", inputJSON)})
	Cfg.Set("OutputFile", out)
	Cfg.Set("NameField", "name")
	Cfg.Set("NodeCapacity", 4)
	Cfg.Set("CacheSize", 10)
	Cfg.Set("LogFile", filepath.Join(dir, "log.txt"))
	defer Cfg.Set("LogFile", "")

	var log bytes.Buffer
	Root.SetErr(&log)
	defer Root.SetErr(nil)
	Root.SetArgs([]string{"minclear"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}

	o := readOutput(t, out)
	if len(o.Features) != 3 {
		t.Fatalf("have %d features, want 3", len(o.Features))
	}
	wantProps := []map[string]interface{}{
		{"Feature": "line", "Clearance": 5.0},
		{"Feature": "pts", "Clearance": 5.0},
		{"Feature": "single", "Clearance": nil},
	}
	for i, want := range wantProps {
		if !reflect.DeepEqual(o.Features[i].Properties, want) {
			t.Errorf("feature %d: %v != %v", i, o.Features[i].Properties, want)
		}
	}

	if !strings.Contains(log.String(), "finished") {
		t.Errorf("log does not report completion: %s", log.String())
	}
	logFile, err := os.ReadFile(filepath.Join(dir, "log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(logFile), "computing minimum clearance") {
		t.Errorf("log file: %s", logFile)
	}
}

func TestDistanceCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.geojson")
	Cfg.Set("InputFiles", []string{writeFile(t, dir, "sources.json", sourcesJSON)})
	Cfg.Set("TargetFiles", []string{writeFile(t, dir, "targets.json", targetsJSON)})
	Cfg.Set("OutputFile", out)
	Cfg.Set("NameField", "name")
	Cfg.Set("NodeCapacity", 10)
	Cfg.Set("CacheSize", 1)

	Root.SetErr(new(bytes.Buffer))
	defer Root.SetErr(nil)
	Root.SetArgs([]string{"distance"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}

	o := readOutput(t, out)
	if len(o.Features) != 2 {
		t.Fatalf("have %d features, want 2", len(o.Features))
	}
	wantProps := []map[string]interface{}{
		{"Feature": "a", "Target": "near", "Distance": 5.0},
		{"Feature": "b", "Target": "far", "Distance": 10.0},
	}
	for i, want := range wantProps {
		if !reflect.DeepEqual(o.Features[i].Properties, want) {
			t.Errorf("feature %d: %v != %v", i, o.Features[i].Properties, want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var b bytes.Buffer
	Root.SetOut(&b)
	defer Root.SetOut(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "clearance v" + clearance.Version + "\n"; b.String() != want {
		t.Errorf("%q != %q", b.String(), want)
	}
}

func TestConfigCommand(t *testing.T) {
	Cfg.Set("NodeCapacity", 7)
	Cfg.Set("NameField", "id")
	defer Cfg.Set("NodeCapacity", 10)

	var b bytes.Buffer
	Root.SetOut(&b)
	defer Root.SetOut(nil)
	Root.SetArgs([]string{"config"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"NodeCapacity = 7", `NameField = "id"`} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("config output does not contain %s:\n%s", want, b.String())
		}
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.toml", "")
	Root.SetArgs([]string{"--config", filepath.Join(dir, "missing.toml"), "version"})
	Root.SetOut(new(bytes.Buffer))
	defer Root.SetOut(nil)
	if err := Root.Execute(); err == nil {
		t.Error("expected an error for a missing configuration file")
	}

	Root.SetArgs([]string{"--config", cfg, "version"})
	if err := Root.Execute(); err != nil {
		t.Error(err)
	}
	Cfg.Set("config", "")
}
