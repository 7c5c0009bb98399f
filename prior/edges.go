/*
 * edges.go, part of gocg.
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
	"encoding/binary"
	"sort"

	cg "github.com/rmera/gocg"
	"gonum.org/v1/gonum/mat"
)

// Edge is a tuple of CG particle indexes taking part in one interaction.
// Its length is the order of the interaction.
type Edge []int

// Less orders edges lexicographically.
func (E Edge) Less(o Edge) bool {
	for i := 0; i < len(E) && i < len(o); i++ {
		if E[i] != o[i] {
			return E[i] < o[i]
		}
	}
	return len(E) < len(o)
}

func sortEdges(e []Edge) {
	sort.Slice(e, func(i, j int) bool { return e[i].Less(e[j]) })
}

// NeighborList is the set of edges of one prior.
type NeighborList struct {
	Tag   string `msgpack:"tag" yaml:"tag"`
	Order int    `msgpack:"order" yaml:"order"`
	Edges []Edge `msgpack:"edges" yaml:"edges"`
}

// Len returns the number of edges.
func (N NeighborList) Len() int {
	return len(N.Edges)
}

// NeighborLists maps prior tags to their neighbor lists.
type NeighborLists map[string]NeighborList

// Tags returns the tags in NL, sorted.
func (NL NeighborLists) Tags() []string {
	ret := make([]string, 0, len(NL))
	for k := range NL {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// CheckDuplicates returns an error wrapping cg.ErrDuplicateEdge if two edges
// in edges are equal, or an error wrapping cg.ErrConfig if an edge doesn't have order
// particles.
func CheckDuplicates(tag string, order int, edges []Edge) error {
	seen := make(map[string]bool, len(edges))
	buf := make([]byte, 0, 8*order)
	for _, e := range edges {
		if len(e) != order {
			return cg.NewError(cg.ErrConfig, "CheckDuplicates", "%s: edge %v has order %d, expected %d", tag, e, len(e), order)
		}
		buf = buf[:0]
		for _, v := range e {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(v))
		}
		k := string(buf)
		if seen[k] {
			return cg.NewError(cg.ErrDuplicateEdge, "CheckDuplicates", "%s: edge %v found twice", tag, e)
		}
		seen[k] = true
	}
	return nil
}

// Canonicalize converts the edge containers produced by different
// builders into a slice of Edge. Accepted inputs are []Edge, [][]int,
// [][2]int, [][3]int, [][4]int and [order, n_edges] matrices (one edge per
// column). All edges must have the same order, which is returned.
// The input is never retained.
func Canonicalize(in interface{}) ([]Edge, int, error) {
	var ret []Edge
	switch v := in.(type) {
	case []Edge:
		ret = make([]Edge, len(v))
		for i, e := range v {
			ret[i] = append(Edge(nil), e...)
		}
	case [][]int:
		ret = make([]Edge, len(v))
		for i, e := range v {
			ret[i] = append(Edge(nil), e...)
		}
	case [][2]int:
		ret = make([]Edge, len(v))
		for i, e := range v {
			ret[i] = Edge{e[0], e[1]}
		}
	case [][3]int:
		ret = make([]Edge, len(v))
		for i, e := range v {
			ret[i] = Edge{e[0], e[1], e[2]}
		}
	case [][4]int:
		ret = make([]Edge, len(v))
		for i, e := range v {
			ret[i] = Edge{e[0], e[1], e[2], e[3]}
		}
	case mat.Matrix:
		r, c := v.Dims()
		ret = make([]Edge, c)
		for j := 0; j < c; j++ {
			e := make(Edge, r)
			for i := 0; i < r; i++ {
				f := v.At(i, j)
				if f != float64(int(f)) || f < 0 {
					return nil, 0, cg.NewError(cg.ErrConfig, "Canonicalize", "element (%d,%d)=%g is not an index", i, j, f)
				}
				e[i] = int(f)
			}
			ret[j] = e
		}
	default:
		return nil, 0, cg.NewError(cg.ErrConfig, "Canonicalize", "unsupported edge container %T", in)
	}
	order := 0
	for i, e := range ret {
		if i == 0 {
			order = len(e)
		}
		if len(e) != order || order == 0 {
			return nil, 0, cg.NewError(cg.ErrConfig, "Canonicalize", "edge %d has order %d, expected %d", i, len(e), order)
		}
		for _, p := range e {
			if p < 0 {
				return nil, 0, cg.NewError(cg.ErrConfig, "Canonicalize", "negative index in edge %d", i)
			}
		}
	}
	return ret, order, nil
}
