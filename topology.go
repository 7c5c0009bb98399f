/*
 * topology.go, part of gocg.
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
	"fmt"
	"sort"
)

// Atom contains the information about one particle (an atom in an atomistic
// topology, a bead in a CG one) except for the coordinates, which are kept in a v3.Matrix.
type Atom struct {
	Name    string
	ID      int // serial number, counted from 1 as in PDB files.
	Index   int // position in the topology, counted from 0.
	MolName string
	MolID   int // residue sequence number
	Chain   string
	Symbol  string
	Type    int // embedding code. 0 means unassigned.
	Het     bool
}

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	at := *A
	return &at
}

// Edit describes a change to one atom of a topology. It is applied by
// Topology.Rebuild on a copy of the atom, never on the original.
type Edit struct {
	Index int
	Apply func(*Atom)
}

// Topology contains the information about a system which is not expected to
// change in time: the atoms and the bonds among them.
// A Topology is not modified after creation. Atoms returned by the
// Atom method should be considered read-only; use Rebuild to derive a
// new topology with changes.
type Topology struct {
	atoms []*Atom
	bonds [][2]int
}

// NewTopology returns a new topology with copies of the given atoms and the given bonds.
// The Index field of each atom is set to its position. Bonds are
// normalized (lower index first), deduplicated and sorted. It returns error if a bond
// refers to an atom out of range or bonds an atom to itself.
func NewTopology(atoms []*Atom, bonds [][2]int) (*Topology, error) {
	T := &Topology{atoms: make([]*Atom, len(atoms))}
	for i, at := range atoms {
		if at == nil {
			return nil, NewError(ErrConfig, "NewTopology", "atom %d is nil", i)
		}
		T.atoms[i] = at.Copy()
		T.atoms[i].Index = i
	}
	b, err := normalizeBonds(bonds, len(atoms))
	if err != nil {
		return nil, ErrDecorate(err, "NewTopology")
	}
	T.bonds = b
	return T, nil
}

func normalizeBonds(bonds [][2]int, natoms int) ([][2]int, error) {
	seen := make(map[[2]int]bool, len(bonds))
	ret := make([][2]int, 0, len(bonds))
	for _, b := range bonds {
		i, j := b[0], b[1]
		if i > j {
			i, j = j, i
		}
		if i < 0 || j >= natoms {
			return nil, NewError(ErrConfig, "normalizeBonds", "bond %v out of range for %d atoms", b, natoms)
		}
		if i == j {
			return nil, NewError(ErrConfig, "normalizeBonds", "atom %d bonded to itself", i)
		}
		k := [2]int{i, j}
		if seen[k] {
			continue
		}
		seen[k] = true
		ret = append(ret, k)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i][0] != ret[j][0] {
			return ret[i][0] < ret[j][0]
		}
		return ret[i][1] < ret[j][1]
	})
	return ret, nil
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	if T == nil {
		return 0
	}
	return len(T.atoms)
}

// Bonds returns a copy of the bond list. Each bond has the lower index first.
func (T *Topology) Bonds() [][2]int {
	ret := make([][2]int, len(T.bonds))
	copy(ret, T.bonds)
	return ret
}

// NBonds returns the number of bonds in the topology.
func (T *Topology) NBonds() int {
	return len(T.bonds)
}

// HasBond returns true if atoms i and j are bonded.
func (T *Topology) HasBond(i, j int) bool {
	if i > j {
		i, j = j, i
	}
	k := sort.Search(len(T.bonds), func(n int) bool {
		b := T.bonds[n]
		return b[0] > i || (b[0] == i && b[1] >= j)
	})
	return k < len(T.bonds) && T.bonds[k] == [2]int{i, j}
}

// Chains returns the chain identifiers in order of first appearance.
func (T *Topology) Chains() []string {
	ret := make([]string, 0, 2)
	for _, at := range T.atoms {
		if !isInString(ret, at.Chain) {
			ret = append(ret, at.Chain)
		}
	}
	return ret
}

// ChainAtoms returns the indexes of the atoms in chain, in topology order.
func (T *Topology) ChainAtoms(chain string) []int {
	ret := make([]int, 0, len(T.atoms))
	for i, at := range T.atoms {
		if at.Chain == chain {
			ret = append(ret, i)
		}
	}
	return ret
}

// ResidueRange returns the minimum and maximum residue sequence numbers in the given chain.
// ok is false if the chain has no atoms.
func (T *Topology) ResidueRange(chain string) (lo, hi int, ok bool) {
	for _, at := range T.atoms {
		if at.Chain != chain {
			continue
		}
		if !ok {
			lo, hi, ok = at.MolID, at.MolID, true
			continue
		}
		if at.MolID < lo {
			lo = at.MolID
		}
		if at.MolID > hi {
			hi = at.MolID
		}
	}
	return
}

// Names returns the set of distinct atom names, sorted.
func (T *Topology) Names() []string {
	set := make(map[string]bool)
	for _, at := range T.atoms {
		set[at.Name] = true
	}
	ret := make([]string, 0, len(set))
	for k := range set {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Types returns the embedding code of each atom, in order.
func (T *Topology) Types() []int {
	ret := make([]int, len(T.atoms))
	for i, at := range T.atoms {
		ret[i] = at.Type
	}
	return ret
}

// SomeAtoms returns a new topology containing the atoms with the given indexes, in the
// given order, and the bonds among them, reindexed. Serial numbers (ID) are
// reset to 1..n.
func (T *Topology) SomeAtoms(atomlist []int) (*Topology, error) {
	newindex := make(map[int]int, len(atomlist))
	ats := make([]*Atom, 0, len(atomlist))
	for k, j := range atomlist {
		if j >= T.Len() || j < 0 {
			return nil, NewError(ErrConfig, "SomeAtoms", "Atom requested (Number: %d, value: %d) out of range", k, j)
		}
		if _, ok := newindex[j]; ok {
			return nil, NewError(ErrConfig, "SomeAtoms", "Atom %d requested twice", j)
		}
		newindex[j] = k
		at := T.atoms[j].Copy()
		at.ID = k + 1
		ats = append(ats, at)
	}
	bonds := make([][2]int, 0, len(T.bonds))
	for _, b := range T.bonds {
		i, iok := newindex[b[0]]
		j, jok := newindex[b[1]]
		if iok && jok {
			bonds = append(bonds, [2]int{i, j})
		}
	}
	return NewTopology(ats, bonds)
}

// WithBonds returns a new topology with the same atoms and the bonds of T plus extra.
func (T *Topology) WithBonds(extra [][2]int) (*Topology, error) {
	b := make([][2]int, 0, len(T.bonds)+len(extra))
	b = append(b, T.bonds...)
	b = append(b, extra...)
	return NewTopology(T.atoms, b)
}

// Rebuild returns a new topology with the edits applied on copies of the
// corresponding atoms. T is not changed. Edits are applied in order. Edits
// can't change the Index field.
func (T *Topology) Rebuild(edits []Edit) (*Topology, error) {
	ats := make([]*Atom, len(T.atoms))
	copy(ats, T.atoms) //NewTopology copies them anyway.
	for _, e := range edits {
		if e.Index < 0 || e.Index >= len(ats) {
			return nil, NewError(ErrConfig, "Rebuild", "edit for atom %d out of range", e.Index)
		}
		at := ats[e.Index].Copy()
		if e.Apply != nil {
			e.Apply(at)
		}
		ats[e.Index] = at
	}
	return NewTopology(ats, T.bonds)
}

// String returns a short description of the topology.
func (T *Topology) String() string {
	return fmt.Sprintf("Topology: %d atoms, %d bonds, chains %v", T.Len(), T.NBonds(), T.Chains())
}
