/*
Copyright © 2024 the RGMGrid authors.
This file is part of RGMGrid.

RGMGrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RGMGrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RGMGrid.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package rgmgridutil holds the configuration and command-line wiring for
// the rgmgrid command.
package rgmgridutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/glaciohydro/rgmgrid"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
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
	Cfg = viper.New()
	Cfg.SetEnvPrefix("RGMGRID")
	Cfg.AutomaticEnv()

	// Options are the configuration options available to RGMGrid.
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
			name: "Basin",
			usage: `
              Basin names the basin to process. Computational cells are
              selected from the cell map where the NAME column equals this
              value exactly.`,
			shorthand:  "b",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "CellMapFile",
			usage: `
              CellMapFile is the path to the cell-to-basin lookup table, a
              whitespace-delimited text table with columns CELL_ID and NAME.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GridShapefile",
			usage: `
              GridShapefile is the path to the shapefile holding the
              computational grid polygons. Each feature must carry a
              CELL_ID attribute.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SurfaceDEMFile",
			usage: `
              SurfaceDEMFile is the path to the surface elevation raster in
              Surfer ASCII grid format. It must share resolution and
              projection with BedDEMFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "BedDEMFile",
			usage: `
              BedDEMFile is the path to the bed elevation raster in Surfer
              ASCII grid format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "DEMPairFile",
			usage: `
              DEMPairFile is the path to a NetCDF file holding both the
              surface and bed elevation rasters. It is mutually exclusive
              with SurfaceDEMFile/BedDEMFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GridProj",
			usage: `
              GridProj is the projection of the DEM rasters in Proj4
              format. The grid polygons are reprojected into it. Leave
              empty when the polygons already share the DEM projection.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "RefElevation",
			usage: `
              RefElevation is the reference elevation [m] at the bottom of
              elevation band 0.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "BandSize",
			usage: `
              BandSize is the elevation band thickness [m].`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MinDepth",
			usage: `
              MinDepth is the minimum credible ice thickness [m]. Cells
              whose surface minus bed difference does not exceed it are
              corrected to zero thickness and excluded from the glacier
              mask.`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Buffer",
			usage: `
              Buffer is the margin [m] added around the basin polygon
              extent before cropping the DEMs.`,
			defaultVal: 2000.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "AggregationFactor",
			usage: `
              AggregationFactor coarsens the DEM resolution by
              block-averaging each factor×factor tile into one cell. 1
              keeps the native resolution.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "RowsFromBottom",
			usage: `
              RowsFromBottom counts pixel map row indices from the
              geographic bottom (south) of the grid instead of from the
              top.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "RefYear",
			usage: `
              RefYear, when nonzero, is inserted into every output file
              name (for example basin_pixel_map_2005.txt).`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory that receives the output
              artifacts. It must already exist.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputSurface",
			usage: `
              OutputSurface toggles writing the corrected surface DEM as an
              ASCII grid.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputBed",
			usage: `
              OutputBed toggles writing the corrected bed DEM as an ASCII
              grid.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputMask",
			usage: `
              OutputMask toggles writing the glacier presence mask as an
              ASCII grid.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputPixelMap",
			usage: `
              OutputPixelMap toggles writing the pixel-to-cell table.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputPolygons",
			usage: `
              OutputPolygons toggles writing the subsetted, reprojected
              grid polygons as a shapefile with per-cell pixel counts.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables maps additional output grid names to
              arithmetic expressions over the per-pixel variables surface,
              bed, thickness, and mask; each is written as one more ASCII
              grid. For example: {"icethick":"thickness * mask"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

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
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	Root.AddCommand(versionCmd, runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("rgmgrid: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "rgmgrid",
	Short: "A generator of glaciation model input grids.",
	Long: `RGMGrid generates the static input files of a regional glaciation model
coupled to the VIC hydrology model: corrected surface and bed DEMs, a
glacier presence mask, and a pixel-to-cell map overlaying the DEM pixels
onto the hydrology model's computational grid.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'RGMGRID_var'
where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of RGMGrid.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("RGMGrid v%s\n", rgmgrid.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one basin.",
	Long: `run processes one basin: it selects the basin's computational cells,
subsets and reprojects the grid polygons, crops and optionally aggregates
the DEMs, corrects the elevation pair, builds the glacier mask, overlays
pixels onto cells, and writes the requested artifacts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := RunConfig(Cfg)
		if err != nil {
			return err
		}
		log := logrus.New()
		result := rgmgrid.Run(cfg, stageLogger{log})
		if !result.OK {
			if result.Warning {
				log.WithField("basin", result.Basin).Warn(result.Message)
			} else {
				log.WithField("basin", result.Basin).Error(result.Message)
			}
			return errors.New(result.Message)
		}
		for _, f := range result.Files {
			log.WithField("file", f).Info("wrote output artifact")
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// stageLogger reports pipeline progress through logrus.
type stageLogger struct {
	log *logrus.Logger
}

func (l stageLogger) Stage(name string) {
	l.log.WithField("stage", name).Info("starting pipeline stage")
}
