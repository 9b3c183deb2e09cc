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

// Package rgmgrid generates static input files for a regional glaciation
// model (RGM) coupled to the VIC hydrology model. It overlays pixel-based
// surface and bed elevation rasters onto the polygon-based computational
// grid of the hydrology model, producing a pixel-to-cell map, corrected
// DEMs, and a glacier presence mask for one basin per invocation.
package rgmgrid

// Version gives the version number of this version of RGMGrid.
const Version = "1.2.1"
