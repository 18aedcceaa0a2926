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

// Package clearanceutil provides the command-line interface for computing
// the Minimum Clearance of geometries and distances between them.
package clearanceutil

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/clearance"
	"github.com/spatialmodel/clearance/index/strtree"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the commands.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFiles",
			usage: `
              InputFiles specifies the shapefiles or GeoJSON files holding
              the features to process. File names may contain environment
              variables.`,
			shorthand:  "i",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{minclearCmd.Flags(), distanceCmd.Flags()},
		},
		{
			name: "TargetFiles",
			usage: `
              TargetFiles specifies the shapefiles or GeoJSON files holding
              the features to measure distances to.`,
			shorthand:  "t",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{distanceCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to the output shapefile or
              GeoJSON file. The file type is determined by its extension.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{minclearCmd.Flags(), distanceCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to a file where log messages
              are written in addition to standard error.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{minclearCmd.Flags(), distanceCmd.Flags()},
		},
		{
			name: "NameField",
			usage: `
              NameField specifies the attribute used to name input
              features in the output. Features without it are named by
              their file and position.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{minclearCmd.Flags(), distanceCmd.Flags()},
		},
		{
			name: "SpatialReference",
			usage: `
              SpatialReference specifies the PROJ.4 string or WKT of the
              spatial reference that features are projected into before
              distances are computed. If it is empty, the spatial reference
              of the first input shapefile with a .prj file is used.
              Features without a known spatial reference, such as those
              read from GeoJSON files, are not projected.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{minclearCmd.Flags(), distanceCmd.Flags()},
		},
		{
			name: "NodeCapacity",
			usage: `
              NodeCapacity specifies the maximum number of children of
              each spatial index node.`,
			defaultVal: strtree.DefaultNodeCapacity,
			flagsets:   []*pflag.FlagSet{minclearCmd.Flags(), distanceCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers specifies the number of features processed at the
              same time. Values less than one use one worker per processor.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{minclearCmd.Flags(), distanceCmd.Flags()},
		},
		{
			name: "CacheSize",
			usage: `
              CacheSize specifies the number of indexed target features
              kept in memory.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{minclearCmd.Flags(), distanceCmd.Flags()},
		},
		{
			name: "verbose",
			usage: `
              verbose specifies whether to log the result for every feature.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CLEARANCE")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(minclearCmd)
	Root.AddCommand(distanceCmd)
	Root.AddCommand(configCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("clearance: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "clearance",
	Short: "Measure the robustness of geometries.",
	Long: `clearance computes the Minimum Clearance of geometries, the smallest
distance by which a vertex could be moved to make a geometry invalid or
collapsed, as well as the distances between geometries.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CLEARANCE_var' where 'var' is the
name of the variable to be set. File names are additionally allowed to contain
environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	SilenceUsage:      true,
	SilenceErrors:     true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of clearance.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clearance v%s\n", clearance.Version)
	},
	DisableAutoGenTag: true,
}

var minclearCmd = &cobra.Command{
	Use:   "minclear",
	Short: "Compute the Minimum Clearance of features",
	Long: `minclear computes the Minimum Clearance of every feature in InputFiles
and writes it to OutputFile together with the line joining the two points
that determine it. Features without a Minimum Clearance, such as single
points, have a null value in GeoJSON output and are left out of shapefile
output.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, false, func(r *Runner, c *Config) error {
			return r.RunMinimumClearance(cmd.Context(), c.InputFiles, c.NameField, c.OutputFile)
		})
	},
}

var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Compute the distance from features to their closest target",
	Long: `distance finds the closest feature in TargetFiles for every feature in
InputFiles and writes the name of that target, the distance to it, and the
line joining the closest points to OutputFile.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, true, func(r *Runner, c *Config) error {
			return r.RunDistance(cmd.Context(), c.InputFiles, c.TargetFiles, c.NameField, c.OutputFile)
		})
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration",
	Long: `config prints the current configuration in TOML format, which can be
saved and used with the --config flag.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := make(map[string]interface{})
		for _, option := range options {
			if option.name == "config" {
				continue
			}
			if v := Cfg.Get(option.name); v != nil {
				m[option.name] = v
			}
		}
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(m)
	},
}

// run loads the configuration, sets up logging, and calls f.
func run(cmd *cobra.Command, needTargets bool, f func(*Runner, *Config) error) error {
	c, err := loadConfig(Cfg, needTargets)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(c, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	err = f(NewRunner(c, log), c)
	if cerr := closeLog(); err == nil && cerr != nil {
		err = fmt.Errorf("clearance: closing log file: %v", cerr)
	}
	return err
}
