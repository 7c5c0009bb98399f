/*
 * mapper.go, part of gocg.
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
	"fmt"

	cg "github.com/rmera/gocg"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Options controls the mapping from an atomistic to a CG topology.
type Options struct {
	Atoms        []string   //names of the atoms retained in the CG representation.
	Scheme       string     //key in Registry.
	Dictionary   Dictionary //embedding codes. Copied, never modified.
	SkipResidues []string   //residue names never retained, e.g. caps.
	//Strict turns the validation warnings for non-unique or non-linear
	//selection matrices into errors.
	Strict bool
	Logger *zap.Logger
}

// Result holds the products of a mapping.
type Result struct {
	Topology   *cg.Topology //the CG topology
	Selection  *mat.Dense   //[n_cg, n_all] slicing matrix
	Indexes    []int        //atomistic index of each CG particle
	Dictionary Dictionary   //the dictionary used, plus any terminal codes
	Warnings   []string
	NTerm      string //atom name given the N-terminal embedding, or "" if none.
	CTerm      string //same for C-terminal embeddings.
}

// NCG returns the number of CG particles.
func (R *Result) NCG() int {
	return R.Topology.Len()
}

// Map applies the mapping described by opts to the atomistic topology top.
// The retained atoms keep their relative order. Bonds among retained atoms
// are kept.
func Map(top *cg.Topology, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	scheme, err := LookupScheme(opts.Scheme)
	if err != nil {
		return nil, cg.ErrDecorate(err, "Map")
	}
	if len(opts.Atoms) == 0 {
		return nil, cg.NewError(cg.ErrConfig, "Map", "no CG atom names given")
	}
	dict := opts.Dictionary.Copy()
	indexes := make([]int, 0, top.Len()/5+1)
	for i := 0; i < top.Len(); i++ {
		at := top.Atom(i)
		if retained(at, opts.Atoms, opts.SkipResidues) {
			indexes = append(indexes, i)
		}
	}
	if len(indexes) == 0 {
		return nil, cg.NewError(cg.ErrConfig, "Map", "no atom in the topology matches the CG atoms %v", opts.Atoms)
	}
	cgtop, err := top.SomeAtoms(indexes)
	if err != nil {
		return nil, cg.ErrDecorate(err, "Map")
	}
	edits := make([]cg.Edit, 0, cgtop.Len())
	for i := 0; i < cgtop.Len(); i++ {
		code, err := scheme(cgtop.Atom(i), dict)
		if err != nil {
			return nil, cg.ErrDecorate(err, "Map")
		}
		edits = append(edits, cg.Edit{Index: i, Apply: func(a *cg.Atom) { a.Type = code }})
	}
	edits = append(edits, renumberResidues(cgtop)...)
	cgtop, err = cgtop.Rebuild(edits)
	if err != nil {
		return nil, cg.ErrDecorate(err, "Map")
	}
	sel := mat.NewDense(len(indexes), top.Len(), nil)
	for i, idx := range indexes {
		sel.Set(i, idx, 1)
	}
	res := &Result{Topology: cgtop, Selection: sel, Indexes: indexes, Dictionary: dict}
	res.Warnings = ValidateSelection(sel)
	for _, w := range res.Warnings {
		log.Warn("selection matrix check failed", zap.String("warning", w))
	}
	if opts.Strict && len(res.Warnings) > 0 {
		return res, cg.NewError(cg.ErrDegenerateMapping, "Map", "%v", res.Warnings)
	}
	log.Debug("mapped topology", zap.Int("atoms", top.Len()), zap.Int("beads", cgtop.Len()), zap.Int("bonds", cgtop.NBonds()))
	return res, nil
}

func retained(at *cg.Atom, names, skip []string) bool {
	if isInString(skip, at.MolName) {
		return false
	}
	return isInString(names, at.Name)
}

// ValidateSelection runs the two checks on a slicing matrix: every row sums to 1
// (unique) and every row has exactly one entry equal to 1 (linear). It returns
// one warning per failed check, or nil.
func ValidateSelection(sel *mat.Dense) []string {
	var warnings []string
	r, c := sel.Dims()
	unique, linear := true, true
	for i := 0; i < r; i++ {
		sum := mat.Sum(sel.RowView(i))
		ones := 0
		for j := 0; j < c; j++ {
			if sel.At(i, j) == 1 {
				ones++
			}
		}
		if sum != 1 {
			unique = false
		}
		if ones != 1 {
			linear = false
		}
	}
	if !unique {
		warnings = append(warnings, "Slice mapping matrix is not unique.")
	}
	if !linear {
		warnings = append(warnings, "Slice mapping matrix is not linear.")
	}
	return warnings
}

// renumberResidues returns the edits that shift the residue numbers of each
// chain by the number of particles in the previous chains, so that two
// identical chains don't share residue numbers. If that is not enough (residue
// numbers not contiguous) the shift is increased until the chain clears the
// highest number already used.
func renumberResidues(top *cg.Topology) []cg.Edit {
	edits := make([]cg.Edit, 0, top.Len())
	used := make(map[int]bool)
	offset := 0
	highest := 0
	first := true
	for _, chain := range top.Chains() {
		atoms := top.ChainAtoms(chain)
		shift := offset
		collide := false
		for _, i := range atoms {
			if used[top.Atom(i).MolID+shift] {
				collide = true
				break
			}
		}
		if collide {
			lo, _, _ := top.ResidueRange(chain)
			shift = highest - lo + 1
		}
		for _, i := range atoms {
			newid := top.Atom(i).MolID + shift
			used[newid] = true
			if first || newid > highest {
				highest = newid
				first = false
			}
			if shift != 0 {
				edits = append(edits, cg.Edit{Index: i, Apply: func(a *cg.Atom) { a.MolID = newid }})
			}
		}
		offset += len(atoms)
	}
	return edits
}

// AddTerminalEmbeddings returns a new Result where, for each chain, the
// particles named nTerm in the residue with the lowest residue number get
// the N_term code, and the particles named cTerm in the residue with the
// highest number get the C_term code. The codes are allocated as max+1 if
// they are not already in the dictionary. An empty nTerm or cTerm disables
// the corresponding terminus. res is not modified.
func AddTerminalEmbeddings(res *Result, nTerm, cTerm string) (*Result, error) {
	if res == nil || res.Topology == nil {
		return nil, cg.NewError(cg.ErrNotMapped, "AddTerminalEmbeddings", "no CG topology")
	}
	top := res.Topology
	dict := res.Dictionary.Copy()
	edits := make([]cg.Edit, 0, 4)
	termini := []struct {
		name, tag string
		high      bool
	}{{nTerm, NTermTag, false}, {cTerm, CTermTag, true}}
	for _, t := range termini {
		if t.name == "" {
			continue
		}
		code := dict.Code(t.tag)
		for _, chain := range top.Chains() {
			lo, hi, ok := top.ResidueRange(chain)
			if !ok {
				continue
			}
			target := lo
			if t.high {
				target = hi
			}
			for _, i := range top.ChainAtoms(chain) {
				at := top.Atom(i)
				if at.MolID == target && at.Name == t.name {
					edits = append(edits, cg.Edit{Index: i, Apply: func(a *cg.Atom) { a.Type = code }})
				}
			}
		}
	}
	newtop, err := top.Rebuild(edits)
	if err != nil {
		return nil, cg.ErrDecorate(err, "AddTerminalEmbeddings")
	}
	ret := *res
	ret.Topology = newtop
	ret.Dictionary = dict
	ret.NTerm = nTerm
	ret.CTerm = cTerm
	return &ret, nil
}

// TerminalCodes returns the codes of the terminal embeddings assigned in R.
// A code is 0 if the corresponding terminus was not assigned.
func (R *Result) TerminalCodes() (n, c int) {
	if R.NTerm != "" {
		n = R.Dictionary[NTermTag]
	}
	if R.CTerm != "" {
		c = R.Dictionary[CTermTag]
	}
	return
}

func (R *Result) String() string {
	return fmt.Sprintf("CG mapping: %d beads from %d atoms", R.NCG(), len(R.Indexes))
}

func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
