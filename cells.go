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
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// CellMapEntry relates one computational grid cell to the basin it
// belongs to.
type CellMapEntry struct {
	CellID string
	Basin  string
}

// ReadCellMapFile reads the cell-to-basin lookup table from the file at
// path. See ReadCellMap for the expected format.
func ReadCellMapFile(path string) ([]CellMapEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioErrorf("opening cell map: %v", err)
	}
	defer f.Close()
	return ReadCellMap(f)
}

// ReadCellMap parses a cell-to-basin lookup table: a whitespace-delimited
// text table whose header line must contain the columns CELL_ID and NAME,
// followed by one row per computational cell.
func ReadCellMap(r io.Reader) ([]CellMapEntry, error) {
	scanner := bufio.NewScanner(r)

	var header []string
	for scanner.Scan() {
		if fields := strings.Fields(scanner.Text()); len(fields) > 0 {
			header = fields
			break
		}
	}
	if header == nil {
		return nil, configErrorf("cell map is empty")
	}
	idCol, nameCol := -1, -1
	for i, name := range header {
		switch name {
		case "CELL_ID":
			idCol = i
		case "NAME":
			nameCol = i
		}
	}
	if idCol < 0 || nameCol < 0 {
		return nil, configErrorf("cell map header must contain columns CELL_ID and NAME but is %v", header)
	}

	var entries []CellMapEntry
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) <= idCol || len(fields) <= nameCol {
			return nil, dataErrorf("cell map row %d has %d fields; need at least %d",
				len(entries)+1, len(fields), maxInt(idCol, nameCol)+1)
		}
		entries = append(entries, CellMapEntry{
			CellID: fields[idCol],
			Basin:  fields[nameCol],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, ioErrorf("reading cell map: %v", err)
	}
	return entries, nil
}

// SelectBasinCells returns the identifiers of the cells belonging to the
// named basin, sorted. Basin names are matched exactly and
// case-sensitively. An empty selection is a ConfigurationError: a basin
// with no cells cannot produce meaningful outputs.
func SelectBasinCells(entries []CellMapEntry, basin string) ([]string, error) {
	var ids []string
	for _, e := range entries {
		if e.Basin == basin {
			ids = append(ids, e.CellID)
		}
	}
	if len(ids) == 0 {
		return nil, configErrorf("no computational cells are mapped to basin %q", basin)
	}
	sort.Slice(ids, func(i, j int) bool { return cellIDLess(ids[i], ids[j]) })
	return ids, nil
}

// cellIDLess orders cell identifiers numerically when both parse as
// integers, and lexicographically otherwise. It defines the deterministic
// ordering used for overlay tie-breaking.
func cellIDLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
