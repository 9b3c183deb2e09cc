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

package rgmgridutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/glaciohydro/rgmgrid"
	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// RunConfig unmarshals a viper configuration into the pipeline
// configuration for one basin run. Path variables may contain environment
// variables, which are expanded.
func RunConfig(cfg *viper.Viper) (*rgmgrid.Config, error) {
	outputVars, err := getOutputVariables(cfg)
	if err != nil {
		return nil, err
	}
	c := &rgmgrid.Config{
		Basin:             cfg.GetString("Basin"),
		CellMapFile:       os.ExpandEnv(cfg.GetString("CellMapFile")),
		GridShapefile:     os.ExpandEnv(cfg.GetString("GridShapefile")),
		SurfaceDEMFile:    os.ExpandEnv(cfg.GetString("SurfaceDEMFile")),
		BedDEMFile:        os.ExpandEnv(cfg.GetString("BedDEMFile")),
		DEMPairFile:       os.ExpandEnv(cfg.GetString("DEMPairFile")),
		GridProj:          cfg.GetString("GridProj"),
		RefElevation:      cfg.GetFloat64("RefElevation"),
		BandSize:          cfg.GetFloat64("BandSize"),
		MinDepth:          cfg.GetFloat64("MinDepth"),
		Buffer:            cfg.GetFloat64("Buffer"),
		AggregationFactor: cfg.GetInt("AggregationFactor"),
		RowsFromBottom:    cfg.GetBool("RowsFromBottom"),
		RefYear:           cfg.GetInt("RefYear"),
		OutputDir:         os.ExpandEnv(cfg.GetString("OutputDir")),
		WriteSurface:      cfg.GetBool("OutputSurface"),
		WriteBed:          cfg.GetBool("OutputBed"),
		WriteMask:         cfg.GetBool("OutputMask"),
		WritePixelMap:     cfg.GetBool("OutputPixelMap"),
		WritePolygons:     cfg.GetBool("OutputPolygons"),
		OutputVariables:   outputVars,
	}
	return c, nil
}

// getOutputVariables returns the OutputVariables map from a viper
// configuration, accounting for the fact that it might be a json object
// if it was set from a command line argument.
func getOutputVariables(cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get("OutputVariables")
	switch v := i.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapString(v), nil
	case string:
		d := json.NewDecoder(bytes.NewBufferString(v))
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("rgmgrid: parsing OutputVariables: %v", err)
		}
		if len(o) == 0 {
			return nil, nil
		}
		return o, nil
	default:
		return nil, fmt.Errorf("rgmgrid: invalid type for OutputVariables: %#v", i)
	}
}
