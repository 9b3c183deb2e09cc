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

import "fmt"

// ConfigurationError indicates that a required input is missing or that the
// requested configuration cannot select a usable domain (for example, no
// computational cells match the requested basin). It is fatal for the
// current basin and is raised before any output file is written.
type ConfigurationError string

func (e ConfigurationError) Error() string { return string(e) }

func configErrorf(format string, a ...interface{}) ConfigurationError {
	return ConfigurationError(fmt.Sprintf("rgmgrid: "+format, a...))
}

// DataError indicates an inconsistency between the supplied datasets, such
// as a requested cell identifier that is absent from the polygon source or
// a geometry mismatch between the surface and bed rasters. It aborts the
// current basin but is reported as a warning-class condition so a batch
// driver can continue with other basins.
type DataError string

func (e DataError) Error() string { return string(e) }

func dataErrorf(format string, a ...interface{}) DataError {
	return DataError(fmt.Sprintf("rgmgrid: "+format, a...))
}

// IOError indicates a failure reading an input file or writing an output
// artifact.
type IOError string

func (e IOError) Error() string { return string(e) }

func ioErrorf(format string, a ...interface{}) IOError {
	return IOError(fmt.Sprintf("rgmgrid: "+format, a...))
}
