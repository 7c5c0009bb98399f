/*
 * dictionary.go, part of gocg.
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
	"context"

	cg "github.com/rmera/gocg"
)

// Terminal tags used as keys in a Dictionary.
const (
	NTermTag = "N_term"
	CTermTag = "C_term"
)

// Dictionary maps a particle name (a residue name, an atom name or a terminal
// tag, depending on the scheme) to a positive embedding code.
type Dictionary map[string]int

// Copy returns a copy of D.
func (D Dictionary) Copy() Dictionary {
	ret := make(Dictionary, len(D))
	for k, v := range D {
		ret[k] = v
	}
	return ret
}

// Max returns the largest code in D, or 0 if D is empty.
func (D Dictionary) Max() int {
	m := 0
	for _, v := range D {
		if v > m {
			m = v
		}
	}
	return m
}

// Code returns the code for tag, allocating max+1 for it if it is not in D.
// D is modified in that case.
func (D Dictionary) Code(tag string) int {
	if c, ok := D[tag]; ok {
		return c
	}
	c := D.Max() + 1
	D[tag] = c
	return c
}

// Resolver gives the embedding dictionary with a given name.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Dictionary, error)
}

// StaticResolver resolves names from a fixed set of dictionaries.
type StaticResolver map[string]Dictionary

// Resolve returns a copy of the dictionary called name.
func (S StaticResolver) Resolve(ctx context.Context, name string) (Dictionary, error) {
	d, ok := S[name]
	if !ok {
		return nil, cg.NewError(cg.ErrConfig, "StaticResolver.Resolve", "unknown embedding dictionary %q", name)
	}
	return d.Copy(), nil
}

var aminoAcids = []string{"ALA", "ARG", "ASN", "ASP", "CYS", "GLN", "GLU", "GLY", "HIS", "ILE",
	"LEU", "LYS", "MET", "PHE", "PRO", "SER", "THR", "TRP", "TYR", "VAL"}

// residue names which are just protonation or bonding variants of a standard one.
var residueAliases = map[string]string{
	"HSD": "HIS", "HSE": "HIS", "HSP": "HIS", "HID": "HIS", "HIE": "HIS", "HIP": "HIS",
	"CYX": "CYS", "CYM": "CYS", "ASH": "ASP", "GLH": "GLU", "LYN": "LYS",
}

func residueDictionary() Dictionary {
	d := make(Dictionary, len(aminoAcids)+len(residueAliases))
	for i, v := range aminoAcids {
		d[v] = i + 1
	}
	for k, v := range residueAliases {
		d[k] = d[v]
	}
	return d
}

func fivebeadDictionary() Dictionary {
	d := residueDictionary()
	n := len(aminoAcids)
	for i, v := range []string{"N", "CA", "C", "O"} {
		d[v] = n + i + 1
	}
	return d
}

// Builtins contains the dictionaries distributed with gocg:
// CA_MAP, one code per amino acid (1-20), and FIVEBEAD_MAP, which adds codes
// for the backbone N, CA, C and O beads (21-24).
var Builtins = StaticResolver{
	"CA_MAP":       residueDictionary(),
	"FIVEBEAD_MAP": fivebeadDictionary(),
}
