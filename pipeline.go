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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctessum/geom/proj"
)

// Progress receives a notification at the start of each named pipeline
// stage. Implementations must not assume they are called from more than
// one goroutine; the pipeline is strictly sequential.
type Progress interface {
	Stage(name string)
}

// ProgressFunc adapts a function to the Progress interface.
type ProgressFunc func(name string)

// Stage calls f(name).
func (f ProgressFunc) Stage(name string) { f(name) }

// Config holds the settings for processing one basin.
type Config struct {
	// Basin names the basin to process. Its cells are selected from the
	// lookup table at CellMapFile (columns CELL_ID and NAME).
	Basin       string
	CellMapFile string

	// GridShapefile holds the computational grid polygons; each feature
	// carries a CELL_ID attribute.
	GridShapefile string

	// SurfaceDEMFile and BedDEMFile name Surfer ASCII grids holding the
	// surface and bed elevations. They must share resolution and
	// projection. Alternatively, DEMPairFile names a NetCDF file holding
	// both (see ReadDEMPair); the two input styles are mutually
	// exclusive.
	SurfaceDEMFile string
	BedDEMFile     string
	DEMPairFile    string

	// GridProj is the Proj4 definition of the DEM coordinate reference
	// system. The grid polygons are reprojected into it. It may be left
	// empty when the polygons are already in the DEM reference system.
	GridProj string

	RefElevation      float64 // elevation of the bottom of band 0 [m]
	BandSize          float64 // elevation band thickness [m]
	MinDepth          float64 // minimum credible ice thickness [m]
	Buffer            float64 // margin added around the basin extent [m]
	AggregationFactor int     // block-averaging factor; 0 or 1 keeps native resolution

	// RowsFromBottom makes pixel row indices count from the geographic
	// bottom (south) of the grid instead of from the top.
	RowsFromBottom bool

	// RefYear, when non-zero, is inserted into every output file name
	// (for example basin_pixel_map_2005.txt). Zero leaves the names
	// unsuffixed.
	RefYear int

	// OutputDir receives the output artifacts, which are toggled
	// individually.
	OutputDir     string
	WriteSurface  bool
	WriteBed      bool
	WriteMask     bool
	WritePixelMap bool

	// WritePolygons additionally writes the subsetted, reprojected grid
	// polygons as a shapefile with per-cell pixel counts.
	WritePolygons bool

	// OutputVariables maps additional output grid names to arithmetic
	// expressions over the per-pixel variables surface, bed, thickness,
	// and mask. Each is written as one more ASCII grid.
	OutputVariables map[string]string
}

// Result summarizes one basin run for a batch driver. A driver processing
// many basins treats Warning-class failures (inconsistent input data) and
// error-class failures (configuration or I/O problems) differently but
// continues with the remaining basins in either case.
type Result struct {
	Basin   string
	OK      bool
	Warning bool
	Message string

	// Files lists the artifacts written, in write order. It is empty
	// when the run failed: no output file is written once any stage has
	// failed.
	Files []string
}

// Run processes one basin: select its cells, subset and reproject the
// grid polygons, crop and optionally aggregate the DEMs, correct the
// elevation pair, build the glacier mask, overlay pixels onto cells, and
// write the requested artifacts. All computation completes before the
// first file is written, and a failed write removes any artifacts already
// written, so failures never leave partial outputs behind.
//
// Errors are captured and returned as a structured Result rather than
// crashing, so an external driver can loop over basins independently.
func Run(cfg *Config, progress Progress) Result {
	result := Result{Basin: cfg.Basin}
	files, err := run(cfg, progress)
	if err != nil {
		result.Message = err.Error()
		if _, ok := err.(DataError); ok {
			result.Warning = true
		}
		return result
	}
	result.OK = true
	result.Files = files
	return result
}

func run(cfg *Config, progress Progress) ([]string, error) {
	stage := func(name string) {
		if progress != nil {
			progress.Stage(name)
		}
	}
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	stage("select-cells")
	entries, err := ReadCellMapFile(cfg.CellMapFile)
	if err != nil {
		return nil, err
	}
	ids, err := SelectBasinCells(entries, cfg.Basin)
	if err != nil {
		return nil, err
	}

	stage("subset-polygons")
	polys, err := LoadGridPolygons(cfg.GridShapefile)
	if err != nil {
		return nil, err
	}
	subset, err := polys.Subset(ids)
	if err != nil {
		return nil, err
	}
	var gridSR *proj.SR
	if cfg.GridProj != "" {
		if gridSR, err = proj.Parse(cfg.GridProj); err != nil {
			return nil, configErrorf("parsing GridProj: %v", err)
		}
	}
	subset, err = subset.Reproject(gridSR)
	if err != nil {
		return nil, err
	}

	stage("load-dems")
	surface, bed, err := loadDEMs(cfg, gridSR)
	if err != nil {
		return nil, err
	}
	if !surface.SameGeometryAs(bed) {
		return nil, dataErrorf("surface and bed DEMs do not share grid geometry")
	}

	stage("crop")
	extent := subset.Bounds()
	if surface, err = surface.Crop(extent, cfg.Buffer); err != nil {
		return nil, err
	}
	if bed, err = bed.Crop(extent, cfg.Buffer); err != nil {
		return nil, err
	}
	if factor := cfg.AggregationFactor; factor > 1 {
		if surface, err = surface.Aggregate(factor); err != nil {
			return nil, err
		}
		if bed, err = bed.Aggregate(factor); err != nil {
			return nil, err
		}
	}

	stage("qaqc")
	if err := CorrectElevations(surface, bed, cfg.MinDepth); err != nil {
		return nil, err
	}

	stage("mask")
	mask, err := GlacierMask(surface, bed, cfg.MinDepth)
	if err != nil {
		return nil, err
	}

	stage("overlay")
	pixels, err := Overlay(surface, subset, cfg.RefElevation, cfg.BandSize, cfg.RowsFromBottom)
	if err != nil {
		return nil, err
	}

	var derived map[string]*Raster
	if len(cfg.OutputVariables) > 0 {
		stage("derive")
		if derived, err = DerivedRasters(surface, bed, mask, cfg.OutputVariables); err != nil {
			return nil, err
		}
	}

	stage("write")
	w := artifactWriter{dir: cfg.OutputDir, basin: cfg.Basin, refYear: cfg.RefYear}
	if cfg.WriteSurface {
		err = w.grid("surface_dem", surface)
	}
	if err == nil && cfg.WriteBed {
		err = w.grid("bed_dem", bed)
	}
	if err == nil && cfg.WriteMask {
		err = w.grid("glacier_mask", mask)
	}
	if err == nil && cfg.WritePixelMap {
		err = w.pixelMap(surface.Nx(), surface.Ny(), pixels)
	}
	if err == nil && cfg.WritePolygons {
		err = w.polygons(subset, countPixels(pixels), cfg.GridProj)
	}
	if err == nil && derived != nil {
		for _, name := range sortedKeys(derived) {
			if err = w.grid(name, derived[name]); err != nil {
				break
			}
		}
	}
	if err != nil {
		w.removeAll()
		return nil, err
	}
	return w.files, nil
}

func checkConfig(cfg *Config) error {
	if cfg.Basin == "" {
		return configErrorf("no basin name given")
	}
	if cfg.CellMapFile == "" {
		return configErrorf("no cell map file given")
	}
	if cfg.GridShapefile == "" {
		return configErrorf("no grid polygon shapefile given")
	}
	ascii := cfg.SurfaceDEMFile != "" || cfg.BedDEMFile != ""
	if ascii && cfg.DEMPairFile != "" {
		return configErrorf("give either SurfaceDEMFile and BedDEMFile or DEMPairFile, not both")
	}
	if ascii && (cfg.SurfaceDEMFile == "" || cfg.BedDEMFile == "") {
		return configErrorf("SurfaceDEMFile and BedDEMFile must be given together")
	}
	if !ascii && cfg.DEMPairFile == "" {
		return configErrorf("no DEM input given")
	}
	if cfg.BandSize <= 0 {
		return configErrorf("elevation band size must be positive but is %g", cfg.BandSize)
	}
	if cfg.AggregationFactor < 0 {
		return configErrorf("aggregation factor must be ≥ 1 but is %d", cfg.AggregationFactor)
	}
	if cfg.OutputDir != "" {
		if _, err := os.Stat(cfg.OutputDir); err != nil {
			return configErrorf("output directory %s does not exist: %v", cfg.OutputDir, err)
		}
	}
	return nil
}

func loadDEMs(cfg *Config, gridSR *proj.SR) (surface, bed *Raster, err error) {
	if cfg.DEMPairFile != "" {
		return ReadDEMPairFile(cfg.DEMPairFile)
	}
	if surface, err = ReadSurferGridFile(cfg.SurfaceDEMFile); err != nil {
		return nil, nil, err
	}
	if bed, err = ReadSurferGridFile(cfg.BedDEMFile); err != nil {
		return nil, nil, err
	}
	// The ASCII format carries no projection information; the DEMs are
	// declared to be in the configured grid reference system.
	surface.SR = gridSR
	bed.SR = gridSR
	return surface, bed, nil
}

// artifactWriter writes output files and remembers what it wrote so a
// failed run can be cleaned up completely.
type artifactWriter struct {
	dir     string
	basin   string
	refYear int
	files   []string
}

func (w *artifactWriter) path(kind, ext string) string {
	suffix := ""
	if w.refYear != 0 {
		suffix = fmt.Sprintf("_%d", w.refYear)
	}
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s%s%s", w.basin, kind, suffix, ext))
}

func (w *artifactWriter) grid(kind string, r *Raster) error {
	p := w.path(kind, ".grd")
	w.files = append(w.files, p) // recorded first so a partial file is cleaned up too
	return WriteSurferGridFile(p, r)
}

func (w *artifactWriter) pixelMap(nx, ny int, pixels []Pixel) error {
	p := w.path("pixel_map", ".txt")
	w.files = append(w.files, p)
	return WritePixelMapFile(p, nx, ny, pixels)
}

func (w *artifactWriter) polygons(cells *GridPolygons, counts map[string]int, proj4 string) error {
	p := w.path("grid_cells", ".shp")
	base := strings.TrimSuffix(p, ".shp")
	exts := []string{".shp", ".shx", ".dbf"}
	if proj4 != "" {
		exts = append(exts, ".prj")
	}
	for _, ext := range exts {
		w.files = append(w.files, base+ext)
	}
	return WriteCellShapefile(p, cells, counts, proj4)
}

// removeAll deletes everything written so far, plus whatever partial file
// the failed write may have left behind.
func (w *artifactWriter) removeAll() {
	for _, f := range w.files {
		os.Remove(f)
	}
}

func sortedKeys(m map[string]*Raster) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
