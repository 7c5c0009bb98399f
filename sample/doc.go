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

// Package sample holds the per-molecule orchestration of gocg.
//
// A Collection takes one molecule through the stages
//
//	Unmapped -> Mapped -> Projected -> NeighborListed -> Persisted
//
// Every stage keeps its own artifacts. Going back to an earlier stage (for
// instance, mapping again with other options) drops the artifacts of all
// the later ones, so stale projections are never saved next to a newer
// CG topology. Operations that need an artifact which is not there fail
// with an error wrapping one of the precondition sentinels of the cg
// package (cg.ErrNotMapped, cg.ErrNotProjected, cg.ErrNotListed,
// cg.ErrNoInput).
//
// A Dataset is a list of Collections processed concurrently by Run, each
// Collection owned by a single goroutine. Batches gives strided,
// windowed access to saved outputs for downstream training.
package sample
