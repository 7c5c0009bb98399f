/*
 * doc.go, part of gocg.
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

// Package prior builds the neighbor lists of the prior interactions
// (bonds, angles, dihedrals and non-bonded pairs) of a CG topology.
//
// Each prior is described by a Spec, naming one of the builders in Registry.
// Build runs all the specs for a molecule over its bond graph and returns the
// edges of each prior, sorted and free of duplicates.
package prior
