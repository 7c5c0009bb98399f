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

// Package store names, writes and reads the artifacts produced for each
// molecule.
//
// Artifacts are kept in a Store, a flat key-value space with two
// implementations: Bucket, on top of gocloud.dev/blob (local directories,
// memory, or any cloud bucket gocloud supports), and Badger, an embedded
// key-value database. Keys are built with the templates in this package, so
// every artifact of a molecule shares the prefix "{tag}_{name}_".
package store
