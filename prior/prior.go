/*
 * prior.go, part of gocg.
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

package prior

import (
	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/chemgraph"
	"go.uber.org/zap"
)

// Spec describes one prior interaction.
type Spec struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Builder string `mapstructure:"builder" yaml:"builder"`
	//SeparateTermini puts the edges touching terminal particles in their
	//own neighbor lists, tagged n_term_<Name> and c_term_<Name>.
	SeparateTermini bool `mapstructure:"separate_termini" yaml:"separate_termini"`
	//Non-bonded only.
	MinPair      int `mapstructure:"min_pair" yaml:"min_pair"`
	ResExclusion int `mapstructure:"res_exclusion" yaml:"res_exclusion"`
}

// Resolve checks specs against the Registry and returns a copy of them. Names must
// be unique and non-empty.
func Resolve(specs []Spec) ([]Spec, error) {
	ret := make([]Spec, len(specs))
	names := make(map[string]bool, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			return nil, cg.NewError(cg.ErrConfig, "prior.Resolve", "prior %d has no name", i)
		}
		if names[s.Name] {
			return nil, cg.NewError(cg.ErrConfig, "prior.Resolve", "prior %q given twice", s.Name)
		}
		names[s.Name] = true
		if _, ok := Registry[s.Builder]; !ok {
			return nil, cg.NewError(cg.ErrConfig, "prior.Resolve", "unknown builder %q for prior %q", s.Builder, s.Name)
		}
		if s.MinPair < 0 || s.ResExclusion < 0 {
			return nil, cg.NewError(cg.ErrConfig, "prior.Resolve", "negative separation for prior %q", s.Name)
		}
		ret[i] = s
	}
	return ret, nil
}

// DefaultSpecs returns the priors used for CA models: bonds, angles and
// non-bonded pairs at least 3 particles and 1 residue apart, bonds and
// angles with separate termini.
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: "bonds", Builder: "bonds", SeparateTermini: true},
		{Name: "angles", Builder: "angles", SeparateTermini: true},
		{Name: "non_bonded", Builder: "non_bonded", MinPair: 3, ResExclusion: 1},
	}
}

// Termini gives the embedding codes of the terminal particles. A zero code
// means that terminus has no embedding of its own.
type Termini struct {
	NCode int
	CCode int
}

// TerminalMembers holds the indexes of the particles in the N- and C-terminal
// residues of every chain.
type TerminalMembers struct {
	N map[int]bool
	C map[int]bool
}

// ResolveTermini returns the terminal particles of top. If particles carry
// the terminal codes in t, those are the terminal members. Otherwise, all
// the particles of the first (last) residue of each chain are N- (C-) terminal.
func ResolveTermini(top *cg.Topology, t Termini) TerminalMembers {
	ret := TerminalMembers{N: byCode(top, t.NCode), C: byCode(top, t.CCode)}
	nres, cres := len(ret.N) == 0, len(ret.C) == 0
	if !nres && !cres {
		return ret
	}
	for _, chain := range top.Chains() {
		lo, hi, ok := top.ResidueRange(chain)
		if !ok {
			continue
		}
		for _, i := range top.ChainAtoms(chain) {
			id := top.Atom(i).MolID
			if nres && id == lo {
				ret.N[i] = true
			}
			if cres && id == hi {
				ret.C[i] = true
			}
		}
	}
	return ret
}

func byCode(top *cg.Topology, code int) map[int]bool {
	ret := make(map[int]bool)
	if code <= 0 {
		return ret
	}
	for i := 0; i < top.Len(); i++ {
		if top.Atom(i).Type == code {
			ret[i] = true
		}
	}
	return ret
}

// Repair adds bonds between consecutive particles of a chain when the
// topology is degenerate: all particles have the same name. Each chain is
// considered on its own, and a chain where any bond already joins
// consecutive particles is left as it is. This is the case for CA models
// built from structures with bond information for only some chains. It
// returns top itself and false if no repair was needed.
func Repair(top *cg.Topology) (*cg.Topology, bool, error) {
	if top.Len() < 2 || len(top.Names()) != 1 {
		return top, false, nil
	}
	extra := make([][2]int, 0, top.Len())
	for _, chain := range top.Chains() {
		ats := top.ChainAtoms(chain)
		if chainBonded(top, ats) {
			continue
		}
		for k := 0; k+1 < len(ats); k++ {
			extra = append(extra, [2]int{ats[k], ats[k+1]})
		}
	}
	if len(extra) == 0 {
		return top, false, nil
	}
	ret, err := top.WithBonds(extra)
	if err != nil {
		return nil, false, cg.ErrDecorate(err, "Repair")
	}
	return ret, true, nil
}

// chainBonded reports whether any bond joins consecutive particles in ats.
func chainBonded(top *cg.Topology, ats []int) bool {
	for k := 0; k+1 < len(ats); k++ {
		if top.HasBond(ats[k], ats[k+1]) {
			return true
		}
	}
	return false
}

// Options for Build.
type Options struct {
	Termini Termini
	Logger  *zap.Logger
}

// Build returns the neighbor lists of specs for the CG topology top. Degenerate
// topologies are repaired first (see Repair). Non-bonded specs are evaluated
// after all the others, and never include a pair of particles that
// appears together in any edge built by the others.
func Build(top *cg.Topology, specs []Spec, opts Options) (NeighborLists, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	specs, err := Resolve(specs)
	if err != nil {
		return nil, cg.ErrDecorate(err, "Build")
	}
	top, repaired, err := Repair(top)
	if err != nil {
		return nil, cg.ErrDecorate(err, "Build")
	}
	if repaired {
		log.Info("added sequential bonds to degenerate topology", zap.Int("bonds", top.NBonds()))
	}
	g := chemgraph.FromTopology(top)
	if nc, nch := len(g.Components()), len(top.Chains()); nc > nch {
		log.Warn("bond graph has more components than chains", zap.Int("components", nc), zap.Int("chains", nch))
	}
	var members TerminalMembers
	for _, s := range specs {
		if s.SeparateTermini {
			members = ResolveTermini(top, opts.Termini)
			break
		}
	}
	ret := make(NeighborLists, 2*len(specs))
	excluded := make(map[[2]int]bool)
	for _, pass := range []bool{false, true} {
		for _, s := range specs {
			b := Registry[s.Builder]
			if b.NonBonded != pass {
				continue
			}
			edges, order, err := Canonicalize(b.Fn(g, s, excluded))
			if err != nil {
				return nil, cg.ErrDecorate(err, "Build "+s.Name)
			}
			if len(edges) > 0 && order != b.Order {
				return nil, cg.NewError(cg.ErrConfig, "Build", "%s: builder %q gave edges of order %d, expected %d", s.Name, s.Builder, order, b.Order)
			}
			for _, e := range edges {
				for _, p := range e {
					if p >= top.Len() {
						return nil, cg.NewError(cg.ErrConfig, "Build", "%s: edge %v out of range (%d particles)", s.Name, e, top.Len())
					}
				}
			}
			sortEdges(edges)
			if !b.NonBonded {
				addPairs(excluded, edges)
			}
			if err := ret.add(s, b.Order, edges, members); err != nil {
				return nil, cg.ErrDecorate(err, "Build")
			}
		}
	}
	for _, tag := range ret.Tags() {
		log.Debug("neighbor list", zap.String("tag", tag), zap.Int("order", ret[tag].Order), zap.Int("edges", ret[tag].Len()))
	}
	return ret, nil
}

func addPairs(set map[[2]int]bool, edges []Edge) {
	for _, e := range edges {
		for a := 0; a < len(e); a++ {
			for b := a + 1; b < len(e); b++ {
				i, j := e[a], e[b]
				if i > j {
					i, j = j, i
				}
				set[[2]int{i, j}] = true
			}
		}
	}
}

// add puts the edges of s in NL, split by termini if s asks for it.
func (NL NeighborLists) add(s Spec, order int, edges []Edge, m TerminalMembers) error {
	lists := map[string][]Edge{s.Name: {}}
	if s.SeparateTermini {
		n, c := "n_term_"+s.Name, "c_term_"+s.Name
		lists[n] = []Edge{}
		lists[c] = []Edge{}
		for _, e := range edges {
			switch {
			case touches(e, m.N):
				lists[n] = append(lists[n], e)
			case touches(e, m.C):
				lists[c] = append(lists[c], e)
			default:
				lists[s.Name] = append(lists[s.Name], e)
			}
		}
	} else {
		lists[s.Name] = edges
	}
	for tag, e := range lists {
		if _, ok := NL[tag]; ok {
			return cg.NewError(cg.ErrConfig, "add", "neighbor list tag %q produced twice", tag)
		}
		if err := CheckDuplicates(tag, order, e); err != nil {
			return cg.ErrDecorate(err, "add")
		}
		NL[tag] = NeighborList{Tag: tag, Order: order, Edges: e}
	}
	return nil
}

func touches(e Edge, set map[int]bool) bool {
	for _, v := range e {
		if set[v] {
			return true
		}
	}
	return false
}
