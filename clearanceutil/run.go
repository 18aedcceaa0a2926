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
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ctessum/geom"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/clearance"
	"github.com/spatialmodel/clearance/facet"
	"github.com/spatialmodel/clearance/index/strtree"
	"golang.org/x/sync/errgroup"
)

// Runner computes clearances and distances for batches of features,
// processing features in parallel. A Runner must not be copied after first
// use.
type Runner struct {
	Log logrus.FieldLogger

	// NodeCapacity is the maximum number of children of spatial index
	// nodes.
	NodeCapacity int

	// Workers is the number of features processed at the same time.
	Workers int

	// CacheSize is the number of indexed target features kept in memory
	// between calls to Distance.
	CacheSize int

	// SpatialReference is the PROJ.4 or WKT spatial reference that the
	// features read by RunMinimumClearance and RunDistance are projected
	// into. If empty, the spatial reference of the first input shapefile
	// with a .prj file is used.
	SpatialReference string

	cacheOnce sync.Once
	cache     *facet.Cache
}

// NewRunner creates a Runner from a configuration.
func NewRunner(c *Config, log logrus.FieldLogger) *Runner {
	return &Runner{
		Log:              log,
		NodeCapacity:     c.NodeCapacity,
		Workers:          c.Workers,
		CacheSize:        c.CacheSize,
		SpatialReference: c.SpatialReference,
	}
}

func (r *Runner) workers() int {
	if r.Workers < 1 {
		return 1
	}
	return r.Workers
}

// targetCache returns the cache of indexed target features, which is
// shared by all calls to Distance.
func (r *Runner) targetCache() *facet.Cache {
	r.cacheOnce.Do(func() {
		r.cache = facet.NewCache(r.NodeCapacity, r.CacheSize)
	})
	return r.cache
}

// forEach calls f for the index of every feature, using up to r.Workers
// goroutines, and stops at the first error.
func (r *Runner) forEach(ctx context.Context, features []Feature, f func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i := range features {
		i := i
		g.Go(func() error {
			return f(ctx, i)
		})
	}
	return g.Wait()
}

// MinimumClearance computes the Minimum Clearance of every feature.
func (r *Runner) MinimumClearance(ctx context.Context, features []Feature) ([]Result, error) {
	return r.minimumClearance(ctx, r.Log, features)
}

func (r *Runner) minimumClearance(ctx context.Context, log logrus.FieldLogger, features []Feature) ([]Result, error) {
	results := make([]Result, len(features))
	err := r.forEach(ctx, features, func(ctx context.Context, i int) error {
		f := features[i]
		mc := clearance.New(f.Geom, clearance.NodeCapacity(r.NodeCapacity))
		if err := mc.Compute(ctx); err != nil {
			return err
		}
		l, _ := mc.Line()
		results[i] = Result{Feature: f.Name, Value: mc.Distance(), Line: l}
		log.WithFields(logrus.Fields{
			"feature":   f.Name,
			"clearance": results[i].Value,
		}).Debug("computed minimum clearance")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Distance finds, for every feature, the closest of the target features
// and the distance to it. Each target is indexed once per call, or not at
// all if its index is still cached from an earlier call.
func (r *Runner) Distance(ctx context.Context, features, targets []Feature) ([]Result, error) {
	return r.distance(ctx, r.Log, features, targets)
}

func (r *Runner) distance(ctx context.Context, log logrus.FieldLogger, features, targets []Feature) ([]Result, error) {
	cache := r.targetCache()
	indexes := make([]*facet.Indexed, len(targets))
	for i, t := range targets {
		g := targetGeom(t)
		ix, err := cache.Indexed(ctx, facet.Key(g), g)
		if err != nil {
			return nil, err
		}
		indexes[i] = ix
	}
	log.WithField("cache_requests", cache.Requests()).Debug("indexed targets")

	results := make([]Result, len(features))
	err := r.forEach(ctx, features, func(ctx context.Context, i int) error {
		f := features[i]
		in, err := facet.NewIndexed(f.Geom, r.NodeCapacity)
		if err != nil {
			return err
		}
		res := Result{Feature: f.Name, Value: clearance.NoDistance}
		var best strtree.Pair[*facet.Sequence]
		for j, ix := range indexes {
			p, ok, err := in.NearestIndexed(ctx, ix, strtree.WithMaxDistance(res.Value))
			if err != nil {
				return err
			}
			if ok {
				res.Target, res.Value, best = targets[j].Name, p.Distance, p
			}
		}
		if clearance.Exists(res.Value) {
			a, b := best.A.NearestPoints(best.B)
			res.Line = geom.LineString{a, b}
		}
		results[i] = res
		log.WithFields(logrus.Fields{
			"feature":  f.Name,
			"target":   res.Target,
			"distance": res.Value,
		}).Debug("computed distance")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// targetGeom returns the geometry of t, replacing a missing geometry with an
// empty one so that it can be cached.
func targetGeom(t Feature) geom.Geom {
	if t.Geom == nil {
		return geom.GeometryCollection{}
	}
	return t.Geom
}

// readProjected reads the features in each group of files and projects them
// into r.SpatialReference, or into the spatial reference of the first
// feature that has one.
func (r *Runner) readProjected(nameField string, fileGroups ...[]string) ([][]Feature, error) {
	p, err := newProjector(r.SpatialReference)
	if err != nil {
		return nil, err
	}
	out := make([][]Feature, len(fileGroups))
	for i, files := range fileGroups {
		if out[i], err = ReadFeatures(files, nameField); err != nil {
			return nil, err
		}
		if err := p.project(out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RunMinimumClearance reads the features in inputFiles, computes their
// Minimum Clearance, and writes the results to outputFile.
func (r *Runner) RunMinimumClearance(ctx context.Context, inputFiles []string, nameField, outputFile string) error {
	log := r.Log.WithField("run", xid.New().String())
	start := time.Now()
	groups, err := r.readProjected(nameField, inputFiles)
	if err != nil {
		return err
	}
	features := groups[0]
	log.WithFields(logrus.Fields{"input": inputFiles, "features": len(features)}).Info("computing minimum clearance")
	results, err := r.minimumClearance(ctx, log, features)
	if err != nil {
		return fmt.Errorf("clearance: computing minimum clearance: %w", err)
	}
	if err := writeResults(outputFile, "Clearance", results, log); err != nil {
		return err
	}
	log.WithFields(Summarize(results).Fields()).WithField("elapsed", time.Since(start)).Info("finished")
	return nil
}

// RunDistance reads the features in inputFiles and targetFiles, finds the
// closest target feature for every input feature, and writes the results
// to outputFile. Target features are projected into the spatial reference
// of the input features.
func (r *Runner) RunDistance(ctx context.Context, inputFiles, targetFiles []string, nameField, outputFile string) error {
	log := r.Log.WithField("run", xid.New().String())
	start := time.Now()
	groups, err := r.readProjected(nameField, inputFiles, targetFiles)
	if err != nil {
		return err
	}
	features, targets := groups[0], groups[1]
	log.WithFields(logrus.Fields{
		"input":    inputFiles,
		"features": len(features),
		"targets":  len(targets),
	}).Info("computing distances")
	results, err := r.distance(ctx, log, features, targets)
	if err != nil {
		return fmt.Errorf("clearance: computing distances: %w", err)
	}
	if err := writeResults(outputFile, "Distance", results, log); err != nil {
		return err
	}
	log.WithFields(Summarize(results).Fields()).WithField("elapsed", time.Since(start)).Info("finished")
	return nil
}
