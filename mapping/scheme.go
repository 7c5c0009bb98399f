/*
 * scheme.go, part of gocg.
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

package mapping

import (
	cg "github.com/rmera/gocg"
)

// Scheme assigns an embedding code to a retained atom, given a dictionary.
type Scheme func(at *cg.Atom, d Dictionary) (int, error)

// Registry maps scheme names to schemes. It is read when the mapping
// options are built, never evaluated from arbitrary strings.
var Registry = map[string]Scheme{
	"residue":  ResidueScheme,
	"atom":     AtomScheme,
	"fivebead": FivebeadScheme,
}

// LookupScheme returns the scheme registered as name.
func LookupScheme(name string) (Scheme, error) {
	s, ok := Registry[name]
	if !ok {
		return nil, cg.NewError(cg.ErrConfig, "LookupScheme", "unknown embedding scheme %q", name)
	}
	return s, nil
}

func lookup(d Dictionary, key string, at *cg.Atom) (int, error) {
	c, ok := d[key]
	if !ok {
		return 0, cg.NewError(cg.ErrConfig, "Scheme", "no embedding for %q (atom %s %s%d)", key, at.Name, at.MolName, at.MolID)
	}
	return c, nil
}

// ResidueScheme gives each atom the code of its residue name. It is the
// natural choice for one bead per residue (e.g. CA) models.
func ResidueScheme(at *cg.Atom, d Dictionary) (int, error) {
	return lookup(d, at.MolName, at)
}

// AtomScheme gives each atom the code of its own name.
func AtomScheme(at *cg.Atom, d Dictionary) (int, error) {
	return lookup(d, at.Name, at)
}

// FivebeadScheme is meant for N, CA, CB, C, O models. Backbone N, C and O
// beads get their atom name code. CA gets the CA code, except in glycine,
// which has no CB, so its CA carries the residue code. CB gets the residue code.
func FivebeadScheme(at *cg.Atom, d Dictionary) (int, error) {
	switch at.Name {
	case "CA":
		if at.MolName == "GLY" {
			return lookup(d, "GLY", at)
		}
		return lookup(d, "CA", at)
	case "CB":
		return lookup(d, at.MolName, at)
	}
	return lookup(d, at.Name, at)
}
