/*
 * fixture.go, part of gocg.
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

// Package fixture builds small synthetic molecules and trajectories for
// the gocg tests.
package fixture

import (
	"math"

	cg "github.com/rmera/gocg"
	v3 "github.com/rmera/gocg/v3"
)

var residues = []string{"ALA", "GLY", "SER", "LYS", "VAL", "GLU", "LEU", "PHE"}

// PeptideAtoms are the atom names of each residue built by Peptide, in order.
// Glycines have no CB.
var PeptideAtoms = []string{"N", "CA", "CB", "C", "O"}

// Peptide returns a topology with one chain per element of chains, each with
// nres residues numbered from 1. Residue names cycle over a fixed list. Backbone
// bonds, CA-CB bonds and peptide bonds are included.
func Peptide(chains []string, nres int) *cg.Topology {
	ats := make([]*cg.Atom, 0, len(chains)*nres*len(PeptideAtoms))
	for _, ch := range chains {
		for r := 1; r <= nres; r++ {
			resname := residues[(r-1)%len(residues)]
			for _, name := range PeptideAtoms {
				if name == "CB" && resname == "GLY" {
					continue
				}
				ats = append(ats, &cg.Atom{
					Name:    name,
					ID:      len(ats) + 1,
					MolName: resname,
					MolID:   r,
					Chain:   ch,
					Symbol:  name[:1],
				})
			}
		}
	}
	top, err := cg.NewTopology(ats, nil)
	if err != nil {
		panic(err.Error())
	}
	top, err = cg.AssignBackboneBonds(top)
	if err != nil {
		panic(err.Error())
	}
	return top
}

// CAChain returns a CA-only topology, one chain per element of chains with nres
// residues each, and no bonds.
func CAChain(chains []string, nres int) *cg.Topology {
	ats := make([]*cg.Atom, 0, len(chains)*nres)
	for _, ch := range chains {
		for r := 1; r <= nres; r++ {
			ats = append(ats, &cg.Atom{Name: "CA", ID: len(ats) + 1, MolName: residues[(r-1)%len(residues)], MolID: r, Chain: ch, Symbol: "C"})
		}
	}
	top, err := cg.NewTopology(ats, nil)
	if err != nil {
		panic(err.Error())
	}
	return top
}

// Frames returns nframes deterministic frames of natoms vectors. Atoms are
// spread along an helix and displaced by seed and the frame number, so
// different seeds give different, reproducible trajectories.
func Frames(nframes, natoms int, seed float64) cg.MemFrames {
	ret := make(cg.MemFrames, nframes)
	for f := range ret {
		m := v3.Zeros(natoms)
		for i := 0; i < natoms; i++ {
			t := float64(i)*0.6 + seed
			d := 0.05 * math.Sin(float64(f+1)*(float64(i)+seed))
			m.Set(i, 0, 2.3*math.Cos(t)+d)
			m.Set(i, 1, 2.3*math.Sin(t)-d)
			m.Set(i, 2, 1.5*float64(i)+0.5*d)
		}
		ret[f] = m
	}
	return ret
}
