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

// Command rgmgrid is a command-line interface for generating regional
// glaciation model input grids.
package main

import (
	"fmt"
	"os"

	"github.com/glaciohydro/rgmgrid/rgmgridutil"
)

func main() {
	if err := rgmgridutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
