/*
 * bonds.go, part of gocg.
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

import (
	"sort"

	v3 "github.com/rmera/gocg/v3"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

// AssignBonds returns a new topology with the atoms of mol and bonds
// assigned based on a simple distance criterium, similar to that described
// in DOI:10.1186/1758-2946-3-33. coord are the coordinates, in A, for mol.
// Existing bonds in mol are kept.
// It is quadratic in the number of atoms, so it is meant as a fallback for
// small molecules and ligands.
func AssignBonds(coord *v3.Matrix, mol *Topology) (*Topology, error) {
	tot := mol.Len()
	if coord.NVecs() != tot {
		return nil, NewError(ErrShapeMismatch, "AssignBonds", "%d coordinates for %d atoms", coord.NVecs(), tot)
	}
	type cand struct {
		i, j int
		d    float64
	}
	cands := make([]cand, 0, tot)
	t3 := v3.Zeros(1)
	for i := 0; i < tot; i++ {
		at1 := mol.Atom(i)
		cov1 := symbolCovrad[at1.Symbol]
		if cov1 == 0 {
			return nil, NewError(ErrConfig, "AssignBonds", "Couldn't find the covalent radii for %s %d", at1.Symbol, i)
		}
		for j := i + 1; j < tot; j++ {
			at2 := mol.Atom(j)
			cov2 := symbolCovrad[at2.Symbol]
			if cov2 == 0 {
				return nil, NewError(ErrConfig, "AssignBonds", "Couldn't find the covalent radii for %s %d", at2.Symbol, j)
			}
			t3.Sub(coord.VecView(j), coord.VecView(i))
			d := t3.Norm(2)
			if d < cov1+cov2+bondtol && d > tooclose {
				cands = append(cands, cand{i, j, d})
			}
		}
	}
	//Now we check that no atom has too many bonds, removing the longest ones.
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].d < cands[b].d })
	nbonds := make([]int, tot)
	bonds := mol.Bonds()
	for _, b := range bonds {
		nbonds[b[0]]++
		nbonds[b[1]]++
	}
	for _, c := range cands {
		max1 := symbolMaxBonds[mol.Atom(c.i).Symbol]
		max2 := symbolMaxBonds[mol.Atom(c.j).Symbol]
		if (max1 > 0 && nbonds[c.i] >= max1) || (max2 > 0 && nbonds[c.j] >= max2) {
			continue
		}
		nbonds[c.i]++
		nbonds[c.j]++
		bonds = append(bonds, [2]int{c.i, c.j})
	}
	ret, err := NewTopology(mol.atoms, bonds)
	if err != nil {
		return nil, ErrDecorate(err, "AssignBonds")
	}
	return ret, nil
}

// AssignBackboneBonds returns a new topology with the atoms of mol and the
// bonds of standard amino acid backbones: the intra-residue bonds among
// N, CA, C, O, CB (and terminal oxygens), plus the peptide bond between the C
// of a residue and the N of the next residue in the same chain. Existing
// bonds in mol are kept. Side chains beyond CB are not bonded.
func AssignBackboneBonds(mol *Topology) (*Topology, error) {
	type reskey struct {
		chain string
		id    int
	}
	//residue -> atom name -> index. Residues in order of appearance per chain.
	residues := make(map[reskey]map[string]int)
	order := make(map[string][]reskey)
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		k := reskey{at.Chain, at.MolID}
		if _, ok := residues[k]; !ok {
			residues[k] = make(map[string]int)
			order[at.Chain] = append(order[at.Chain], k)
		}
		if _, ok := residues[k][at.Name]; !ok {
			residues[k][at.Name] = i
		}
	}
	bonds := mol.Bonds()
	for _, chain := range mol.Chains() {
		res := order[chain]
		for n, k := range res {
			names := residues[k]
			for _, t := range backboneTemplate {
				i, iok := names[t[0]]
				j, jok := names[t[1]]
				if iok && jok {
					bonds = append(bonds, [2]int{i, j})
				}
			}
			if n+1 >= len(res) {
				continue
			}
			c, cok := names["C"]
			nn, nok := residues[res[n+1]]["N"]
			if cok && nok {
				bonds = append(bonds, [2]int{c, nn})
			}
		}
	}
	ret, err := NewTopology(mol.atoms, bonds)
	if err != nil {
		return nil, ErrDecorate(err, "AssignBackboneBonds")
	}
	return ret, nil
}
