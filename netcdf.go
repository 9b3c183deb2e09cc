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

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/sparse"
)

// Variable names in a DEM pair NetCDF file.
const (
	surfaceVar = "surface"
	bedVar     = "bed"
)

// ReadDEMPair reads a surface/bed DEM pair from a NetCDF file holding the
// variables "surface" and "bed" with dimensions [y, x] (rows stored north
// to south) and the global attributes x0, y0 (southwestern grid corner),
// dx, dy (cell size), and optionally proj4 (grid projection).
func ReadDEMPair(rw cdf.ReaderWriterAt) (surface, bed *Raster, err error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, nil, ioErrorf("opening DEM pair file: %v", err)
	}

	attr := func(name string) (float64, error) {
		v, ok := f.Header.GetAttribute("", name).([]float64)
		if !ok || len(v) == 0 {
			return 0, dataErrorf("DEM pair file lacks the global attribute %q", name)
		}
		return v[0], nil
	}
	x0, err := attr("x0")
	if err != nil {
		return nil, nil, err
	}
	y0, err := attr("y0")
	if err != nil {
		return nil, nil, err
	}
	dx, err := attr("dx")
	if err != nil {
		return nil, nil, err
	}
	dy, err := attr("dy")
	if err != nil {
		return nil, nil, err
	}
	var sr *proj.SR
	if p4, ok := f.Header.GetAttribute("", "proj4").(string); ok && p4 != "" {
		if sr, err = proj.Parse(p4); err != nil {
			return nil, nil, dataErrorf("DEM pair file has unparsable proj4 attribute %q: %v", p4, err)
		}
	}

	readVar := func(name string) (*Raster, error) {
		dims := f.Header.Lengths(name)
		if len(dims) != 2 {
			return nil, dataErrorf("DEM variable %q has %d dimensions; need 2", name, len(dims))
		}
		ny, nx := dims[0], dims[1]
		buf := make([]float32, nx*ny)
		if _, err := f.Reader(name, nil, nil).Read(buf); err != nil {
			return nil, ioErrorf("reading DEM variable %q: %v", name, err)
		}
		o := NewRaster(nx, ny, dx, dy, x0, y0, sr)
		for i, v := range buf {
			o.Data.Elements[i] = float64(v)
		}
		return o, nil
	}

	if surface, err = readVar(surfaceVar); err != nil {
		return nil, nil, err
	}
	if bed, err = readVar(bedVar); err != nil {
		return nil, nil, err
	}
	if !surface.SameGeometryAs(bed) {
		return nil, nil, dataErrorf("surface and bed variables have different shapes")
	}
	return surface, bed, nil
}

// ReadDEMPairFile reads a surface/bed DEM pair from the NetCDF file at
// path.
func ReadDEMPairFile(path string) (surface, bed *Raster, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, ioErrorf("opening DEM pair file %s: %v", path, err)
	}
	defer f.Close()
	return ReadDEMPair(f)
}

// WriteDEMPair writes a surface/bed DEM pair to a NetCDF file in the
// layout ReadDEMPair expects. proj4, when non-empty, is stored as the
// grid projection.
func WriteDEMPair(w *os.File, surface, bed *Raster, proj4 string) error {
	if !surface.SameGeometryAs(bed) {
		return dataErrorf("surface raster (%d×%d) and bed raster (%d×%d) have different geometry",
			surface.Nx(), surface.Ny(), bed.Nx(), bed.Ny())
	}
	h := cdf.NewHeader([]string{"y", "x"}, []int{surface.Ny(), surface.Nx()})
	h.AddAttribute("", "comment", "RGMGrid surface and bed elevation pair")
	h.AddAttribute("", "x0", []float64{surface.W})
	h.AddAttribute("", "y0", []float64{surface.S})
	h.AddAttribute("", "dx", []float64{surface.Dx})
	h.AddAttribute("", "dy", []float64{surface.Dy})
	if proj4 != "" {
		h.AddAttribute("", "proj4", proj4)
	}
	for _, v := range []string{surfaceVar, bedVar} {
		h.AddVariable(v, []string{"y", "x"}, []float32{0})
		h.AddAttribute(v, "units", "m")
	}
	h.AddAttribute(surfaceVar, "description", "surface elevation")
	h.AddAttribute(bedVar, "description", "bed elevation")
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return ioErrorf("creating DEM pair file: %v", err)
	}
	if err := writeNCF(f, surfaceVar, surface.Data); err != nil {
		return err
	}
	if err := writeNCF(f, bedVar, bed.Data); err != nil {
		return err
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		return ioErrorf("finalizing DEM pair file: %v", err)
	}
	return nil
}

func writeNCF(f *cdf.File, name string, data *sparse.DenseArray) error {
	buf := make([]float32, len(data.Elements))
	for i, v := range data.Elements {
		buf[i] = float32(v)
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	if _, err := f.Writer(name, start, end).Write(buf); err != nil {
		return ioErrorf("writing DEM variable %q: %v", name, err)
	}
	return nil
}
