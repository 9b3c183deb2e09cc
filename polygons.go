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
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
)

// cellIDField is the attribute holding the computational cell identifier
// in the grid polygon shapefile.
const cellIDField = "CELL_ID"

// GridCell is one irregular polygon of the hydrology model's
// computational grid.
type GridCell struct {
	geom.Polygonal
	CellID string
}

// CellLocator assigns a point to the computational grid cell containing
// it, if any.
type CellLocator interface {
	Locate(p geom.Point) (cellID string, ok bool)
}

// GridPolygons is a set of computational grid cell polygons with a
// spatial index for point location queries.
type GridPolygons struct {
	cells []*GridCell
	sr    *proj.SR
	tree  *rtree.Rtree
}

// NewGridPolygons creates a polygon set from cells, which are assumed to
// be in the spatial reference sr (sr may be nil when unknown).
func NewGridPolygons(cells []*GridCell, sr *proj.SR) *GridPolygons {
	g := &GridPolygons{
		cells: cells,
		sr:    sr,
		tree:  rtree.NewTree(25, 50),
	}
	for _, c := range g.cells {
		g.tree.Insert(c)
	}
	return g
}

// LoadGridPolygons reads the computational grid polygons from a
// shapefile. Every feature must be polygonal and carry a CELL_ID
// attribute.
func LoadGridPolygons(filename string) (*GridPolygons, error) {
	d, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, ioErrorf("opening grid polygon shapefile %s: %v", filename, err)
	}
	defer d.Close()
	sr, err := d.SR()
	if err != nil {
		// A shapefile without a .prj sidecar has an unknown spatial
		// reference; it can still be used when no reprojection is needed.
		if !os.IsNotExist(err) {
			return nil, ioErrorf("reading projection of grid polygon shapefile %s: %v", filename, err)
		}
		sr = nil
	}

	var cells []*GridCell
	for {
		g, fields, more := d.DecodeRowFields(cellIDField)
		if !more {
			break
		}
		poly, ok := g.(geom.Polygonal)
		if !ok {
			return nil, dataErrorf("grid polygon feature %d is %T, not a polygon", len(cells), g)
		}
		cells = append(cells, &GridCell{
			Polygonal: poly,
			CellID:    strings.TrimSpace(fields[cellIDField]),
		})
	}
	if err := d.Error(); err != nil {
		return nil, ioErrorf("reading grid polygon shapefile %s: %v", filename, err)
	}
	return NewGridPolygons(cells, sr), nil
}

// Cells returns the polygons in the set.
func (g *GridPolygons) Cells() []*GridCell { return g.cells }

// Len returns the number of polygons in the set.
func (g *GridPolygons) Len() int { return len(g.cells) }

// Bounds returns the combined extent of all polygons in the set.
func (g *GridPolygons) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, c := range g.cells {
		b.Extend(c.Bounds())
	}
	return b
}

// Subset returns the polygons whose identifiers appear in ids. Every
// requested identifier must be present in the set; an absent identifier
// means the cell map and the polygon source are inconsistent, which is a
// DataError.
func (g *GridPolygons) Subset(ids []string) (*GridPolygons, error) {
	byID := make(map[string]*GridCell, len(g.cells))
	for _, c := range g.cells {
		byID[c.CellID] = c
	}
	cells := make([]*GridCell, 0, len(ids))
	var missing []string
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			cells = append(cells, c)
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, dataErrorf("%d requested cell identifiers are missing from the grid polygons (first missing: %s)",
			len(missing), missing[0])
	}
	return NewGridPolygons(cells, g.sr), nil
}

// Reproject returns a copy of the polygon set transformed into the
// spatial reference to. When to is nil, or when the set is already in
// that reference, the set is returned unchanged.
func (g *GridPolygons) Reproject(to *proj.SR) (*GridPolygons, error) {
	if to == nil {
		return g, nil
	}
	if g.sr == nil {
		return nil, dataErrorf("grid polygons have no projection information; cannot reproject")
	}
	if g.sr.Equal(to, 10) {
		return g, nil
	}
	trans, err := g.sr.NewTransform(to)
	if err != nil {
		return nil, dataErrorf("creating reprojection for grid polygons: %v", err)
	}
	cells := make([]*GridCell, len(g.cells))
	for i, c := range g.cells {
		gg, err := c.Polygonal.Transform(trans)
		if err != nil {
			return nil, dataErrorf("reprojecting grid cell %s: %v", c.CellID, err)
		}
		cells[i] = &GridCell{Polygonal: gg.(geom.Polygonal), CellID: c.CellID}
	}
	return NewGridPolygons(cells, to), nil
}

// Locate returns the identifier of the cell containing p. A point lying
// exactly on a polygon boundary counts as inside; when more than one
// polygon claims the point, the one with the smallest cell identifier
// wins, so assignment is deterministic.
func (g *GridPolygons) Locate(p geom.Point) (string, bool) {
	var best string
	found := false
	for _, ci := range g.tree.SearchIntersect(p.Bounds()) {
		c := ci.(*GridCell)
		if p.Within(c.Polygonal) == geom.Outside {
			continue
		}
		if !found || cellIDLess(c.CellID, best) {
			best = c.CellID
			found = true
		}
	}
	return best, found
}
