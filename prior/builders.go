/*
 * builders.go, part of gocg.
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
	"github.com/rmera/gocg/chemgraph"
)

// Builder enumerates the edges of one kind of interaction.
type Builder struct {
	//Order is the number of particles in each edge.
	Order int
	//NonBonded builders are run after all the others, and receive the
	//particle pairs already present in their edges.
	NonBonded bool
	Fn        func(g *chemgraph.Graph, s Spec, excluded map[[2]int]bool) []Edge
}

// Registry maps builder keys, as used in Spec.Builder, to builders.
var Registry = map[string]Builder{
	"bonds":      {Order: 2, Fn: StandardBonds},
	"angles":     {Order: 3, Fn: StandardAngles},
	"dihedrals":  {Order: 4, Fn: StandardDihedrals},
	"phi":        {Order: 4, Fn: namedDihedral(phi)},
	"psi":        {Order: 4, Fn: namedDihedral(psi)},
	"omega":      {Order: 4, Fn: namedDihedral(omega)},
	"non_bonded": {Order: 2, NonBonded: true, Fn: NonBonded},
}

// StandardBonds returns every bonded pair once, lower index first.
func StandardBonds(g *chemgraph.Graph, _ Spec, _ map[[2]int]bool) []Edge {
	ret := make([]Edge, 0, g.Len())
	for i := 0; i < g.Len(); i++ {
		for _, j := range g.Neighbors(i) {
			if j > i {
				ret = append(ret, Edge{i, j})
			}
		}
	}
	return ret
}

// StandardAngles returns every path i-j-k in the bond graph, with j the vertex
// and i<k, so each angle appears once.
func StandardAngles(g *chemgraph.Graph, _ Spec, _ map[[2]int]bool) []Edge {
	ret := make([]Edge, 0, g.Len())
	for j := 0; j < g.Len(); j++ {
		n := g.Neighbors(j)
		for a, i := range n {
			for _, k := range n[a+1:] {
				ret = append(ret, Edge{i, j, k})
			}
		}
	}
	return ret
}

// StandardDihedrals returns every path i-j-k-l of distinct particles in the bond
// graph, oriented so that i<l.
func StandardDihedrals(g *chemgraph.Graph, _ Spec, _ map[[2]int]bool) []Edge {
	ret := make([]Edge, 0, g.Len())
	for j := 0; j < g.Len(); j++ {
		for _, k := range g.Neighbors(j) {
			for _, i := range g.Neighbors(j) {
				if i == k {
					continue
				}
				for _, l := range g.Neighbors(k) {
					if l == j || l == i || i > l {
						continue
					}
					ret = append(ret, Edge{i, j, k, l})
				}
			}
		}
	}
	return ret
}

// backbone dihedral patterns: particle names and residue offsets, in chain order.
type dihedralPattern struct {
	names   [4]string
	offsets [4]int
}

var (
	phi   = dihedralPattern{[4]string{"C", "N", "CA", "C"}, [4]int{-1, 0, 0, 0}}
	psi   = dihedralPattern{[4]string{"N", "CA", "C", "N"}, [4]int{0, 0, 0, 1}}
	omega = dihedralPattern{[4]string{"CA", "C", "N", "CA"}, [4]int{0, 0, 1, 1}}
)

// namedDihedral returns a builder for the dihedrals matching p in each
// residue of each chain. The four particles must be consecutively bonded.
// Edges keep the chain direction.
func namedDihedral(p dihedralPattern) func(*chemgraph.Graph, Spec, map[[2]int]bool) []Edge {
	return func(g *chemgraph.Graph, _ Spec, _ map[[2]int]bool) []Edge {
		top := g.Topology()
		type key struct {
			chain string
			res   int
			name  string
		}
		index := make(map[key]int, top.Len())
		for i := top.Len() - 1; i >= 0; i-- {
			at := top.Atom(i)
			index[key{at.Chain, at.MolID, at.Name}] = i //the first one wins
		}
		ret := make([]Edge, 0, top.Len()/3)
		//all patterns have their second particle in the current residue.
		for i := 0; i < top.Len(); i++ {
			at := top.Atom(i)
			if at.Name != p.names[1] {
				continue
			}
			e := make(Edge, 4)
			ok := true
			for k := range e {
				idx, found := index[key{at.Chain, at.MolID + p.offsets[k], p.names[k]}]
				if !found {
					ok = false
					break
				}
				e[k] = idx
			}
			if !ok || e[1] != i {
				continue
			}
			if g.Bonded(e[0], e[1]) && g.Bonded(e[1], e[2]) && g.Bonded(e[2], e[3]) {
				ret = append(ret, e)
			}
		}
		return ret
	}
}

// NonBonded returns the pairs i<j with j-i >= s.MinPair and residue numbers
// differing by more than s.ResExclusion, except those in excluded.
func NonBonded(g *chemgraph.Graph, s Spec, excluded map[[2]int]bool) []Edge {
	top := g.Topology()
	ret := make([]Edge, 0, g.Len())
	for i := 0; i < top.Len(); i++ {
		ri := top.Atom(i).MolID
		for j := i + s.MinPair; j < top.Len(); j++ {
			if j <= i {
				continue
			}
			d := top.Atom(j).MolID - ri
			if d < 0 {
				d = -d
			}
			if d <= s.ResExclusion || excluded[[2]int{i, j}] {
				continue
			}
			ret = append(ret, Edge{i, j})
		}
	}
	return ret
}
