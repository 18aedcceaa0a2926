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
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// Config holds the settings of a command run.
type Config struct {
	InputFiles   []string
	TargetFiles  []string
	OutputFile   string
	LogFile      string
	NameField    string

	// SpatialReference is the PROJ.4 or WKT spatial reference that
	// features are projected into. If empty, the spatial reference of the
	// first input shapefile with a .prj file is used.
	SpatialReference string

	NodeCapacity int
	Workers      int
	CacheSize    int
	Verbose      bool
}

// loadConfig reads the settings from cfg and checks them. Target files are
// only required if needTargets is true.
func loadConfig(cfg *viper.Viper, needTargets bool) (*Config, error) {
	inputs, err := stringSlice(cfg, "InputFiles")
	if err != nil {
		return nil, err
	}
	targets, err := stringSlice(cfg, "TargetFiles")
	if err != nil {
		return nil, err
	}
	c := &Config{
		InputFiles:       expandStringSlice(inputs),
		TargetFiles:      expandStringSlice(targets),
		LogFile:          os.ExpandEnv(cfg.GetString("LogFile")),
		NameField:        cfg.GetString("NameField"),
		SpatialReference: cfg.GetString("SpatialReference"),
		NodeCapacity:     cfg.GetInt("NodeCapacity"),
		Workers:          cfg.GetInt("Workers"),
		CacheSize:        cfg.GetInt("CacheSize"),
		Verbose:          cfg.GetBool("verbose"),
	}
	if err := checkInputFiles(c.InputFiles, "InputFiles"); err != nil {
		return nil, err
	}
	if needTargets {
		if err := checkInputFiles(c.TargetFiles, "TargetFiles"); err != nil {
			return nil, err
		}
	}
	if c.OutputFile, err = checkOutputFile(cfg.GetString("OutputFile")); err != nil {
		return nil, err
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(-1)
	}
	if c.CacheSize <= 0 {
		return nil, fmt.Errorf("clearance: CacheSize must be positive but is %d", c.CacheSize)
	}
	return c, nil
}

// stringSlice reads a list of strings, which may be given as a single
// space-separated string in an environment variable.
func stringSlice(cfg *viper.Viper, key string) ([]string, error) {
	v := cfg.Get(key)
	if v == nil {
		return nil, nil
	}
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("clearance: reading %s: %v", key, err)
	}
	return s, nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkInputFiles makes sure that at least one file is specified and that
// every file has a supported type.
func checkInputFiles(files []string, variable string) error {
	if len(files) == 0 {
		return fmt.Errorf("clearance: you need to specify at least one file in the %s configuration variable", variable)
	}
	for _, f := range files {
		if _, err := fileFormat(f); err != nil {
			return fmt.Errorf("clearance: %s: %v", variable, err)
		}
	}
	return nil
}

// checkOutputFile makes sure that the output file is specified, that it
// has a supported type and that its directory exists, and expands any
// environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`clearance: you need to specify an output file configuration variable (for example: OutputFile="clearance.shp")`)
	}
	f = os.ExpandEnv(f)
	if _, err := fileFormat(f); err != nil {
		return f, fmt.Errorf("clearance: OutputFile: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("clearance: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

type format int

const (
	shapefile format = iota
	geoJSON
)

// fileFormat determines the format of a file from its extension.
func fileFormat(f string) (format, error) {
	switch strings.ToLower(filepath.Ext(f)) {
	case ".shp":
		return shapefile, nil
	case ".json", ".geojson":
		return geoJSON, nil
	}
	return 0, fmt.Errorf("unsupported file type for %q; the file name must end in .shp, .json, or .geojson", f)
}

// newLogger creates a logger for a run. If c.LogFile is set, messages are
// also written to that file. The returned function closes the log file.
func newLogger(c *Config, out io.Writer) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	log.SetLevel(logrus.InfoLevel)
	if c.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	log.SetOutput(out)
	if c.LogFile == "" {
		return log, func() error { return nil }, nil
	}
	f, err := os.Create(c.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("clearance: creating log file: %v", err)
	}
	log.SetOutput(io.MultiWriter(out, f))
	return log, f.Close, nil
}
