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

package rgmgrid

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestInputs lays down a complete input set for a two-cell PEACE
// basin: a cell map, a grid polygon shapefile, and a 4×4 surface/bed DEM
// pair, all in the same unprojected coordinate system.
func writeTestInputs(t *testing.T, dir string, surfaceVal, bedVal float64) *Config {
	t.Helper()
	cellMap := filepath.Join(dir, "cellmap.txt")
	content := "CELL_ID NAME\n101 PEACE\n102 PEACE\n999 COLUMBIA\n"
	if err := ioutil.WriteFile(cellMap, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	shpPath := filepath.Join(dir, "grid.shp")
	cells := NewGridPolygons([]*GridCell{
		squareCell("101", 0, 0, 200, 400),
		squareCell("102", 200, 0, 200, 400),
		squareCell("999", 400, 0, 200, 400),
	}, nil)
	if err := WriteCellShapefile(shpPath, cells, nil, ""); err != nil {
		t.Fatal(err)
	}

	surfacePath := filepath.Join(dir, "surface.grd")
	bedPath := filepath.Join(dir, "bed.grd")
	if err := WriteSurferGridFile(surfacePath, uniformRaster(4, 4, surfaceVal)); err != nil {
		t.Fatal(err)
	}
	if err := WriteSurferGridFile(bedPath, uniformRaster(4, 4, bedVal)); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0755); err != nil {
		t.Fatal(err)
	}

	return &Config{
		Basin:          "PEACE",
		CellMapFile:    cellMap,
		GridShapefile:  shpPath,
		SurfaceDEMFile: surfacePath,
		BedDEMFile:     bedPath,
		BandSize:       100,
		MinDepth:       2,
		OutputDir:      outDir,
		WriteSurface:   true,
		WriteBed:       true,
		WriteMask:      true,
		WritePixelMap:  true,
	}
}

func TestRunGlaciated(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestInputs(t, dir, 1000, 800)

	var stages []string
	result := Run(cfg, ProgressFunc(func(name string) { stages = append(stages, name) }))
	if !result.OK {
		t.Fatalf("run failed: %s", result.Message)
	}
	if len(result.Files) != 4 {
		t.Fatalf("wrote %d files; want 4: %v", len(result.Files), result.Files)
	}
	if len(stages) == 0 || stages[0] != "select-cells" || stages[len(stages)-1] != "write" {
		t.Errorf("stages = %v; want select-cells first and write last", stages)
	}

	mask, err := ReadSurferGridFile(filepath.Join(cfg.OutputDir, "PEACE_glacier_mask.grd"))
	if err != nil {
		t.Fatal(err)
	}
	if mask.Min() != 1 || mask.Max() != 1 {
		t.Errorf("mask values range %g..%g; want all 1", mask.Min(), mask.Max())
	}

	b, err := ioutil.ReadFile(filepath.Join(cfg.OutputDir, "PEACE_pixel_map.txt"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if lines[0] != "NCOLS 4" || lines[1] != "NROWS 4" {
		t.Errorf("pixel map header = %q, %q", lines[0], lines[1])
	}
	if len(lines) != 3+16 {
		t.Errorf("pixel map has %d lines; want 19", len(lines))
	}
	// The basin polygons cover the whole raster, so no pixel is
	// unassigned.
	for _, line := range lines[3:] {
		fields := strings.Fields(line)
		if fields[5] == unassignedCellID {
			t.Errorf("pixel record %q is unassigned", line)
		}
	}
}

func TestRunUnglaciated(t *testing.T) {
	dir := t.TempDir()
	// A 1 m difference is below the 2 m threshold: QA/QC averages the
	// pair and the mask comes out empty.
	cfg := writeTestInputs(t, dir, 1000, 999)

	result := Run(cfg, nil)
	if !result.OK {
		t.Fatalf("run failed: %s", result.Message)
	}
	mask, err := ReadSurferGridFile(filepath.Join(cfg.OutputDir, "PEACE_glacier_mask.grd"))
	if err != nil {
		t.Fatal(err)
	}
	if mask.Min() != 0 || mask.Max() != 0 {
		t.Errorf("mask values range %g..%g; want all 0", mask.Min(), mask.Max())
	}
	surface, err := ReadSurferGridFile(filepath.Join(cfg.OutputDir, "PEACE_surface_dem.grd"))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range surface.Data.Elements {
		if v != 999.5 {
			t.Errorf("corrected surface cell %d = %g; want 999.5", i, v)
		}
	}
}

func TestRunUnknownBasinWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestInputs(t, dir, 1000, 800)
	cfg.Basin = "FRASER"

	result := Run(cfg, nil)
	if result.OK {
		t.Fatal("run succeeded for a basin with no cells")
	}
	if result.Warning {
		t.Error("an empty basin selection is an error, not a warning")
	}
	files, err := ioutil.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("output directory contains %d files after a failed run; want 0", len(files))
	}
}

func TestRunMissingPolygonIsWarning(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestInputs(t, dir, 1000, 800)

	// Remap one PEACE cell to an identifier the shapefile doesn't have.
	content := "CELL_ID NAME\n101 PEACE\n777 PEACE\n"
	if err := ioutil.WriteFile(cfg.CellMapFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	result := Run(cfg, nil)
	if result.OK {
		t.Fatal("run succeeded with a cell missing from the polygon source")
	}
	if !result.Warning {
		t.Errorf("inconsistent inputs should be a warning-class failure: %s", result.Message)
	}
}

func TestRunRefYearSuffix(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestInputs(t, dir, 1000, 800)
	cfg.RefYear = 2005
	cfg.WriteBed = false
	cfg.WriteSurface = false
	cfg.WriteMask = false

	result := Run(cfg, nil)
	if !result.OK {
		t.Fatalf("run failed: %s", result.Message)
	}
	want := filepath.Join(cfg.OutputDir, "PEACE_pixel_map_2005.txt")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("missing %s: %v", want, err)
	}
}

func TestRunWithAggregationAndOutputVariables(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestInputs(t, dir, 1000, 800)
	cfg.AggregationFactor = 2
	cfg.WritePolygons = true
	cfg.OutputVariables = map[string]string{"icethick": "thickness * mask"}

	result := Run(cfg, nil)
	if !result.OK {
		t.Fatalf("run failed: %s", result.Message)
	}
	thick, err := ReadSurferGridFile(filepath.Join(cfg.OutputDir, "PEACE_icethick.grd"))
	if err != nil {
		t.Fatal(err)
	}
	if thick.Nx() != 2 || thick.Ny() != 2 {
		t.Fatalf("aggregated output is %d×%d; want 2×2", thick.Nx(), thick.Ny())
	}
	for i, v := range thick.Data.Elements {
		if v != 200 {
			t.Errorf("icethick cell %d = %g; want 200", i, v)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "PEACE_grid_cells.shp")); err != nil {
		t.Errorf("missing polygon shapefile: %v", err)
	}
}

func TestCheckConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			Basin:          "PEACE",
			CellMapFile:    "cells.txt",
			GridShapefile:  "grid.shp",
			SurfaceDEMFile: "srf.grd",
			BedDEMFile:     "bed.grd",
			BandSize:       100,
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no basin", func(c *Config) { c.Basin = "" }},
		{"no cell map", func(c *Config) { c.CellMapFile = "" }},
		{"no shapefile", func(c *Config) { c.GridShapefile = "" }},
		{"no DEMs", func(c *Config) { c.SurfaceDEMFile = ""; c.BedDEMFile = "" }},
		{"bed without surface", func(c *Config) { c.SurfaceDEMFile = "" }},
		{"both DEM styles", func(c *Config) { c.DEMPairFile = "pair.nc" }},
		{"zero band size", func(c *Config) { c.BandSize = 0 }},
		{"negative aggregation", func(c *Config) { c.AggregationFactor = -1 }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := base()
			test.mutate(cfg)
			err := checkConfig(cfg)
			if _, ok := err.(ConfigurationError); !ok {
				t.Errorf("got %#v; want a ConfigurationError", err)
			}
		})
	}
	if err := checkConfig(base()); err != nil {
		t.Errorf("valid configuration rejected: %v", err)
	}
}
