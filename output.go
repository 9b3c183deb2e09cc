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
	"regexp"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// WriteCellShapefile writes the (subsetted, reprojected) computational
// grid polygons as a shapefile with CELL_ID and NPIXELS attribute fields,
// where NPIXELS is the number of raster pixels assigned to each cell.
// When proj4 is non-empty it is written to a companion .prj file.
func WriteCellShapefile(path string, cells *GridPolygons, pixelCounts map[string]int, proj4 string) error {
	fileBase := strings.TrimSuffix(path, filepath.Ext(path))
	shape, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POLYGON,
		goshp.StringField("CELL_ID", 16),
		goshp.NumberField("NPIXELS", 9),
	)
	if err != nil {
		return ioErrorf("creating cell shapefile %s: %v", fileBase+".shp", err)
	}
	for _, c := range cells.Cells() {
		if err := shape.EncodeFields(c.Polygonal, c.CellID, pixelCounts[c.CellID]); err != nil {
			return ioErrorf("writing cell %s to shapefile: %v", c.CellID, err)
		}
	}
	shape.Close()

	if proj4 != "" {
		f, err := os.Create(fileBase + ".prj")
		if err != nil {
			return ioErrorf("creating prj file: %v", err)
		}
		fmt.Fprint(f, proj4)
		if err := f.Close(); err != nil {
			return ioErrorf("closing prj file: %v", err)
		}
	}
	return nil
}

// countPixels tallies how many pixels the overlay assigned to each cell.
func countPixels(pixels []Pixel) map[string]int {
	counts := make(map[string]int)
	for _, p := range pixels {
		if p.CellID != "" {
			counts[p.CellID]++
		}
	}
	return counts
}

var outputNameRe = regexp.MustCompile(`^[A-Za-z]\w*$`)

// DerivedRasters evaluates arithmetic expressions over the per-pixel
// variables surface, bed, thickness (surface − bed), and mask, returning
// one raster per named expression. Names must be valid identifiers since
// they become output file basenames.
func DerivedRasters(surface, bed, mask *Raster, exprs map[string]string) (map[string]*Raster, error) {
	names := make([]string, 0, len(exprs))
	for name := range exprs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]*Raster, len(exprs))
	for _, name := range names {
		if !outputNameRe.MatchString(name) {
			return nil, configErrorf("output variable name %q is not a valid identifier", name)
		}
		expr, err := govaluate.NewEvaluableExpression(exprs[name])
		if err != nil {
			return nil, configErrorf("output variable %s: %v", name, err)
		}
		o := NewRaster(surface.Nx(), surface.Ny(), surface.Dx, surface.Dy,
			surface.W, surface.S, surface.SR)
		params := make(map[string]interface{}, 4)
		for i, s := range surface.Data.Elements {
			b := bed.Data.Elements[i]
			params["surface"] = s
			params["bed"] = b
			params["thickness"] = s - b
			params["mask"] = mask.Data.Elements[i]
			result, err := expr.Evaluate(params)
			if err != nil {
				return nil, configErrorf("evaluating output variable %s: %v", name, err)
			}
			switch v := result.(type) {
			case float64:
				o.Data.Elements[i] = v
			case bool:
				if v {
					o.Data.Elements[i] = 1
				}
			default:
				return nil, configErrorf("output variable %s evaluates to %T; need a number", name, result)
			}
		}
		out[name] = o
	}
	return out, nil
}
