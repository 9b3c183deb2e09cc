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
	"os"
	"path/filepath"
	"testing"
)

func TestDerivedRasters(t *testing.T) {
	surface := testRaster(2, 2, 1000, 1001, 1050, 900)
	bed := testRaster(2, 2, 800, 1000.5, 1000, 900)
	mask, err := GlacierMask(surface, bed, 2)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DerivedRasters(surface, bed, mask, map[string]string{
		"icethick": "thickness * mask",
		"halfsrf":  "surface / 2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d derived rasters; want 2", len(out))
	}
	wantThick := []float64{200, 0, 50, 0}
	for i, w := range wantThick {
		if got := out["icethick"].Data.Elements[i]; got != w {
			t.Errorf("icethick %d = %g; want %g", i, got, w)
		}
	}
	wantHalf := []float64{500, 500.5, 525, 450}
	for i, w := range wantHalf {
		if got := out["halfsrf"].Data.Elements[i]; got != w {
			t.Errorf("halfsrf %d = %g; want %g", i, got, w)
		}
	}
}

func TestDerivedRastersBadExpression(t *testing.T) {
	surface := uniformRaster(1, 1, 1000)
	bed := uniformRaster(1, 1, 800)
	mask, _ := GlacierMask(surface, bed, 2)
	for name, exprs := range map[string]map[string]string{
		"syntax error": {"x": "surface +* bed"},
		"bad name":     {"bad name": "surface"},
		"unknown var":  {"x": "slope * 2"},
		"non-numeric":  {"x": "'a' + 'b'"},
	} {
		if _, err := DerivedRasters(surface, bed, mask, exprs); err == nil {
			t.Errorf("%s: got nil error", name)
		}
	}
}

func TestWriteCellShapefileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cells.shp")
	counts := map[string]int{"101": 8, "102": 8}
	if err := WriteCellShapefile(path, testPolygons(), counts, ""); err != nil {
		t.Fatal(err)
	}
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		if _, err := os.Stat(filepath.Join(dir, "cells"+ext)); err != nil {
			t.Errorf("missing shapefile part %s: %v", ext, err)
		}
	}

	polys, err := LoadGridPolygons(path)
	if err != nil {
		t.Fatal(err)
	}
	if polys.Len() != 2 {
		t.Fatalf("read back %d cells; want 2", polys.Len())
	}
	ids := map[string]bool{}
	for _, c := range polys.Cells() {
		ids[c.CellID] = true
	}
	if !ids["101"] || !ids["102"] {
		t.Errorf("read back cell ids %v; want 101 and 102", ids)
	}
}
