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
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/clearance"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds statistics of the values of a set of results.
// The statistics only include values that exist, and they are zero if
// there are none.
type Summary struct {
	Count, Exist           int
	Min, Mean, Median, Max float64
}

// Summarize computes statistics of the values of results.
func Summarize(results []Result) Summary {
	s := Summary{Count: len(results)}
	var v []float64
	for _, r := range results {
		if clearance.Exists(r.Value) {
			v = append(v, r.Value)
		}
	}
	s.Exist = len(v)
	if len(v) == 0 {
		return s
	}
	sort.Float64s(v)
	s.Min = floats.Min(v)
	s.Max = floats.Max(v)
	s.Mean = stat.Mean(v, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, v, nil)
	return s
}

// Fields returns the statistics as log fields.
func (s Summary) Fields() logrus.Fields {
	return logrus.Fields{
		"count":  s.Count,
		"exist":  s.Exist,
		"min":    s.Min,
		"mean":   s.Mean,
		"median": s.Median,
		"max":    s.Max,
	}
}
