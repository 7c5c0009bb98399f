/*
 * handy.go, part of gocg.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package cg

import "strings"

// SymbolFromName guesses the element symbol for an atom from its PDB name.
// It returns an empty string if it can't tell. Two-letter names are only taken
// as elements for common ions, so "CA" is a carbon.
func SymbolFromName(name string) string {
	name = strings.ToUpper(strings.TrimLeft(strings.TrimSpace(name), "0123456789"))
	if name == "" {
		return ""
	}
	if isInString([]string{"CL", "NA", "MG", "ZN", "FE", "CU", "MN", "BR", "SE"}, name) {
		return name[:1] + strings.ToLower(name[1:])
	}
	s := name[:1]
	if _, ok := symbolCovrad[s]; ok {
		return s
	}
	return ""
}

func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
