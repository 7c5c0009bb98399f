/*
 * graph.go, part of gocg.
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

// Package chemgraph builds gonum graphs from gocg topologies, with particles
// as nodes and bonds as edges.
package chemgraph

import (
	"sort"

	cg "github.com/rmera/gocg"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Particle is a graph node wrapping an atom of a topology. Its ID is the
// index of the atom.
type Particle struct {
	*cg.Atom
}

// ID returns the index of the particle in its topology.
func (P Particle) ID() int64 {
	return int64(P.Index)
}

// Graph is the bond graph of a topology.
type Graph struct {
	top *cg.Topology
	g   *simple.UndirectedGraph
	//sorted neighbor indexes, computed once.
	neigh [][]int
}

// FromTopology returns the graph of top. Every particle is a node, including
// those with no bonds.
func FromTopology(top *cg.Topology) *Graph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < top.Len(); i++ {
		g.AddNode(Particle{top.Atom(i)})
	}
	for _, b := range top.Bonds() {
		g.SetEdge(g.NewEdge(g.Node(int64(b[0])), g.Node(int64(b[1]))))
	}
	G := &Graph{top: top, g: g, neigh: make([][]int, top.Len())}
	for i := range G.neigh {
		G.neigh[i] = nodeIndexes(g.From(int64(i)))
	}
	return G
}

func nodeIndexes(it graph.Nodes) []int {
	ret := make([]int, 0, it.Len())
	for it.Next() {
		ret = append(ret, int(it.Node().ID()))
	}
	sort.Ints(ret)
	return ret
}

// Topology returns the topology the graph was built from.
func (G *Graph) Topology() *cg.Topology { return G.top }

// Len returns the number of nodes.
func (G *Graph) Len() int { return len(G.neigh) }

// Neighbors returns the indexes of the particles bonded to i, in increasing order.
// The slice must not be modified.
func (G *Graph) Neighbors(i int) []int { return G.neigh[i] }

// Bonded returns true if i and j are bonded.
func (G *Graph) Bonded(i, j int) bool {
	return G.g.HasEdgeBetween(int64(i), int64(j))
}

// Components returns the connected components of the graph, each as a sorted
// list of particle indexes. Components are sorted by their lowest index.
func (G *Graph) Components() [][]int {
	cc := topo.ConnectedComponents(G.g)
	ret := make([][]int, 0, len(cc))
	for _, c := range cc {
		ids := make([]int, 0, len(c))
		for _, n := range c {
			ids = append(ids, int(n.ID()))
		}
		sort.Ints(ids)
		ret = append(ret, ids)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}
