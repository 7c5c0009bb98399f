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

// Package project projects atomistic coordinates and forces onto CG
// particles.
//
// Coordinates are always mapped with the selection matrix produced by
// package mapping. Forces are mapped either with the same matrix
// (SliceAggregate) or with a force map that also collects the forces of the
// atoms dropped by the mapping, chosen to reduce the noise of the mapped
// forces (SliceOptimize). Both maps are applied frame by frame, in batches,
// so the all-atom trajectory never needs to be in memory at once and the
// result does not depend on the batch size.
package project
