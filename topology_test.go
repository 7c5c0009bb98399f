/*
 * topology_test.go, part of gocg.
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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atoms(names ...string) []*Atom {
	ret := make([]*Atom, len(names))
	for i, n := range names {
		ret[i] = &Atom{Name: n, ID: i + 1, MolName: "ALA", MolID: i/2 + 1, Chain: "A", Symbol: n[:1]}
	}
	return ret
}

func TestNewTopology(Te *testing.T) {
	ats := atoms("N", "CA", "C", "O")
	ats[3].Chain = "B"
	T, err := NewTopology(ats, [][2]int{{1, 0}, {2, 1}, {0, 1}, {2, 3}})
	require.NoError(Te, err)
	assert.Equal(Te, 4, T.Len())
	assert.Equal(Te, [][2]int{{0, 1}, {1, 2}, {2, 3}}, T.Bonds())
	assert.True(Te, T.HasBond(2, 1))
	assert.False(Te, T.HasBond(0, 2))
	assert.Equal(Te, []string{"A", "B"}, T.Chains())
	assert.Equal(Te, []int{0, 1, 2}, T.ChainAtoms("A"))
	assert.Equal(Te, []string{"C", "CA", "N", "O"}, T.Names())
	lo, hi, ok := T.ResidueRange("A")
	assert.True(Te, ok)
	assert.Equal(Te, [2]int{1, 2}, [2]int{lo, hi})
	_, _, ok = T.ResidueRange("Z")
	assert.False(Te, ok)
	//the topology keeps copies
	ats[0].Name = "X"
	assert.Equal(Te, "N", T.Atom(0).Name)

	for _, b := range [][2]int{{0, 4}, {-1, 2}, {2, 2}} {
		_, err := NewTopology(ats, [][2]int{b})
		assert.True(Te, errors.Is(err, ErrConfig), "bond %v", b)
	}
	_, err = NewTopology([]*Atom{nil}, nil)
	assert.Equal(Te, KindConfig, KindOf(err))
	assert.Panics(Te, func() { T.Atom(4) })
}

func TestSomeAtoms(Te *testing.T) {
	T, err := NewTopology(atoms("N", "CA", "C", "O"), [][2]int{{0, 1}, {1, 2}, {2, 3}})
	require.NoError(Te, err)
	S, err := T.SomeAtoms([]int{3, 2, 0})
	require.NoError(Te, err)
	assert.Equal(Te, 3, S.Len())
	assert.Equal(Te, "O", S.Atom(0).Name)
	assert.Equal(Te, 1, S.Atom(0).ID)
	assert.Equal(Te, 2, S.Atom(2).Index)
	assert.Equal(Te, [][2]int{{0, 1}}, S.Bonds())
	_, err = T.SomeAtoms([]int{1, 1})
	assert.Error(Te, err)
	_, err = T.SomeAtoms([]int{7})
	assert.Error(Te, err)
}

func TestRebuild(Te *testing.T) {
	T, err := NewTopology(atoms("N", "CA"), [][2]int{{0, 1}})
	require.NoError(Te, err)
	R, err := T.Rebuild([]Edit{{Index: 1, Apply: func(a *Atom) { a.Type = 7 }}})
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 7}, R.Types())
	assert.Equal(Te, []int{0, 0}, T.Types())
	assert.Equal(Te, T.Bonds(), R.Bonds())
	_, err = T.Rebuild([]Edit{{Index: 2}})
	assert.Error(Te, err)

	W, err := T.WithBonds([][2]int{{1, 0}})
	require.NoError(Te, err)
	assert.Equal(Te, 1, W.NBonds())
}

func TestErrors(Te *testing.T) {
	err := NewError(ErrNotMapped, "inner", "molecule %s", "1L2Y")
	assert.True(Te, errors.Is(err, ErrNotMapped))
	assert.False(Te, errors.Is(err, ErrNotProjected))
	assert.Equal(Te, KindPrecondition, KindOf(err))
	out := ErrDecorate(err, "outer")
	assert.Equal(Te, []string{"inner", "outer"}, err.Decorate(""))
	assert.Contains(Te, out.Error(), "molecule 1L2Y")

	cause := errors.New("disk on fire")
	w := WrapError(ErrIO, "Put", cause)
	assert.True(Te, errors.Is(w, ErrIO))
	assert.True(Te, errors.Is(w, cause))
	assert.Equal(Te, KindUnknown, KindOf(cause))
	assert.Equal(Te, cause, ErrDecorate(cause, "x"))
	assert.Equal(Te, "io", KindIO.String())
}
