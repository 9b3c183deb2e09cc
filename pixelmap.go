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
	"bufio"
	"fmt"
	"io"
	"os"
)

// unassignedCellID is written in the CELL_ID column for pixels whose
// center falls outside every computational grid polygon.
const unassignedCellID = "NA"

// WritePixelMap serializes the pixel-to-cell table. The first two lines
// give the raster dimensions (NCOLS, NROWS); a column header row follows,
// then one whitespace-delimited row per pixel in the order given (the
// overlay emits them sorted by ROW then COL, which the glaciation model
// requires).
func WritePixelMap(w io.Writer, nx, ny int, pixels []Pixel) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "NCOLS %d\n", nx)
	fmt.Fprintf(bw, "NROWS %d\n", ny)
	fmt.Fprintln(bw, "PIXEL_ID ROW COL BAND ELEV CELL_ID")
	for _, p := range pixels {
		cellID := p.CellID
		if cellID == "" {
			cellID = unassignedCellID
		}
		fmt.Fprintf(bw, "%d %d %d %d %d %s\n", p.ID, p.Row, p.Col, p.Band, p.Elev, cellID)
	}
	if err := bw.Flush(); err != nil {
		return ioErrorf("writing pixel map: %v", err)
	}
	return nil
}

// WritePixelMapFile writes the pixel-to-cell table to the file at path.
func WritePixelMapFile(path string, nx, ny int, pixels []Pixel) error {
	f, err := os.Create(path)
	if err != nil {
		return ioErrorf("creating pixel map %s: %v", path, err)
	}
	if err := WritePixelMap(f, nx, ny, pixels); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return ioErrorf("closing pixel map %s: %v", path, err)
	}
	return nil
}
