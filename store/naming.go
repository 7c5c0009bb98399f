/*
 * naming.go, part of gocg.
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

package store

import (
	"strings"

	cg "github.com/rmera/gocg"
)

// Placement tells OutputTag where to put the separator.
type Placement int

const (
	// Before gives "a_b_", to be followed by a file name.
	Before Placement = iota
	// After gives "_a_b", to follow a file name.
	After
)

// OutputTag joins the non-empty parts with underscores, adding one more
// underscore before or after the result. It returns "" if there is no non-empty part.
func OutputTag(parts []string, p Placement) string {
	kept := make([]string, 0, len(parts))
	for _, v := range parts {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	s := strings.Join(kept, "_")
	if p == Before {
		return s + "_"
	}
	return "_" + s
}

// Artifact file names, appended to the molecule prefix.
const (
	StructureFile = "cg_structure.pdb"
	EmbedsFile    = "cg_embeds.npy"
	CoordsFile    = "cg_coords.npy"
	ForcesFile    = "cg_forces.npy"
	CoordMapFile  = "cg_coord_map.npy"
	ForceMapFile  = "cg_force_map.npy"
	DeltaForces   = "delta_forces.npy"
	ManifestFile  = "manifest.yaml"
	TrajFile      = "cg_coords.stf"
)

// CheckTag returns an error wrapping cg.ErrConfig if tag can't be used as a
// dataset or prior tag. Tags are joined to molecule names with underscores,
// so they must not contain one: otherwise tag "a_b" with molecule "c" and
// tag "a" with molecule "b_c" would share every key. Molecule names may
// contain underscores.
func CheckTag(tag string) error {
	if strings.ContainsAny(tag, "_/") {
		return cg.NewError(cg.ErrConfig, "CheckTag", "tag %q contains '_' or '/'", tag)
	}
	return nil
}

// Prefix returns the prefix of all the artifacts of molecule name in a
// dataset with the given tag, which must pass CheckTag.
func Prefix(tag, name string) string {
	return OutputTag([]string{tag, name}, Before)
}

// Key returns the key of an artifact file of a molecule.
func Key(tag, name, file string) string {
	return Prefix(tag, name) + file
}

// NeighborListKey returns the key of the neighbor lists built with the
// priors identified by priorTag.
func NeighborListKey(tag, name, priorTag string) string {
	return Prefix(tag, name) + "prior_nls" + OutputTag([]string{priorTag}, After) + ".msgpack.zst"
}

// DeltaForcesKey returns the key of the delta forces identified by forceTag.
func DeltaForcesKey(tag, name, forceTag string) string {
	return OutputTag([]string{tag, name, forceTag}, Before) + DeltaForces
}

// Input keys, read by InputLoader.
func inputPDBKey(name string) string    { return name + ".pdb" }
func inputCoordsKey(name string) string { return name + "_coords.npy" }
func inputForcesKey(name string) string { return name + "_forces.npy" }
