/*
 * mapper_test.go, part of gocg.
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
	"errors"
	"testing"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func caOptions() Options {
	return Options{Atoms: []string{"CA"}, Scheme: "residue", Dictionary: Builtins["CA_MAP"]}
}

func TestMapCA(Te *testing.T) {
	top := fixture.Peptide([]string{"A"}, 10)
	res, err := Map(top, caOptions())
	require.NoError(Te, err)
	require.Equal(Te, 10, res.NCG())
	assert.Empty(Te, res.Warnings)
	r, c := res.Selection.Dims()
	assert.Equal(Te, res.NCG(), r)
	assert.Equal(Te, top.Len(), c)
	for i := 0; i < r; i++ {
		assert.Equal(Te, 1.0, mat.Sum(res.Selection.RowView(i)), "row %d", i)
		assert.Equal(Te, 1.0, res.Selection.At(i, res.Indexes[i]))
	}
	assert.Equal(Te, float64(res.NCG()), mat.Sum(res.Selection))
	for i := 0; i < res.NCG(); i++ {
		at := res.Topology.Atom(i)
		assert.Equal(Te, "CA", at.Name)
		assert.Equal(Te, i, at.Index)
		assert.Equal(Te, Builtins["CA_MAP"][at.MolName], at.Type)
	}
	//CA atoms are not bonded to each other in the atomistic topology.
	assert.Zero(Te, res.Topology.NBonds())
}

func TestMapSkipResidues(Te *testing.T) {
	top := fixture.Peptide([]string{"A"}, 8)
	opts := caOptions()
	opts.SkipResidues = []string{"GLY"}
	res, err := Map(top, opts)
	require.NoError(Te, err)
	assert.Equal(Te, 7, res.NCG())
	for i := 0; i < res.NCG(); i++ {
		assert.NotEqual(Te, "GLY", res.Topology.Atom(i).MolName)
	}
}

func TestMapKeepsBonds(Te *testing.T) {
	top := fixture.Peptide([]string{"A"}, 3)
	res, err := Map(top, Options{Atoms: []string{"N", "CA", "C", "O", "CB"}, Scheme: "fivebead", Dictionary: Builtins["FIVEBEAD_MAP"]})
	require.NoError(Te, err)
	assert.Equal(Te, top.Len(), res.NCG())
	assert.Equal(Te, top.NBonds(), res.Topology.NBonds())
	for i := 0; i < res.NCG(); i++ {
		at := res.Topology.Atom(i)
		switch {
		case at.Name == "CA" && at.MolName == "GLY":
			assert.Equal(Te, Builtins["FIVEBEAD_MAP"]["GLY"], at.Type)
		case at.Name == "CB":
			assert.Equal(Te, Builtins["FIVEBEAD_MAP"][at.MolName], at.Type)
		default:
			assert.Equal(Te, Builtins["FIVEBEAD_MAP"][at.Name], at.Type)
		}
	}
}

func TestMapErrors(Te *testing.T) {
	top := fixture.Peptide([]string{"A"}, 3)
	opts := caOptions()
	opts.Scheme = "nope"
	_, err := Map(top, opts)
	assert.True(Te, errors.Is(err, cg.ErrConfig))

	opts = caOptions()
	opts.Atoms = []string{"XX"}
	_, err = Map(top, opts)
	assert.Equal(Te, cg.KindConfig, cg.KindOf(err))

	opts = caOptions()
	opts.Dictionary = Dictionary{"ALA": 1}
	_, err = Map(top, opts)
	assert.Equal(Te, cg.KindConfig, cg.KindOf(err))
}

func TestMapDoesNotChangeDictionary(Te *testing.T) {
	top := fixture.Peptide([]string{"A"}, 3)
	dict := Builtins["FIVEBEAD_MAP"].Copy()
	n := len(dict)
	res, err := Map(top, Options{Atoms: []string{"N", "CA"}, Scheme: "fivebead", Dictionary: dict})
	require.NoError(Te, err)
	res2, err := AddTerminalEmbeddings(res, "N", "")
	require.NoError(Te, err)
	assert.Len(Te, dict, n)
	assert.Len(Te, res.Dictionary, n)
	assert.Len(Te, res2.Dictionary, n+1)
}

func TestRenumberHomodimer(Te *testing.T) {
	top := fixture.Peptide([]string{"A", "B"}, 10)
	for _, opts := range []Options{caOptions(), {Atoms: []string{"N", "CA", "C", "O"}, Scheme: "fivebead", Dictionary: Builtins["FIVEBEAD_MAP"]}} {
		res, err := Map(top, opts)
		require.NoError(Te, err)
		chainOf := make(map[int]string)
		for i := 0; i < res.NCG(); i++ {
			at := res.Topology.Atom(i)
			if c, ok := chainOf[at.MolID]; ok {
				assert.Equal(Te, c, at.Chain, "residue %d in two chains", at.MolID)
			}
			chainOf[at.MolID] = at.Chain
		}
		//the first chain keeps its numbers.
		lo, hi, ok := res.Topology.ResidueRange("A")
		require.True(Te, ok)
		assert.Equal(Te, 1, lo)
		assert.Equal(Te, 10, hi)
	}
}

func TestRenumberCollision(Te *testing.T) {
	//Chain A has fewer particles than residue numbers (a gap), so the
	//plain offset isn't enough.
	ats := []*cg.Atom{
		{Name: "CA", MolName: "ALA", MolID: 1, Chain: "A"},
		{Name: "CA", MolName: "ALA", MolID: 3, Chain: "A"},
		{Name: "CA", MolName: "ALA", MolID: 1, Chain: "B"},
		{Name: "CA", MolName: "ALA", MolID: 3, Chain: "B"},
	}
	top, err := cg.NewTopology(ats, nil)
	require.NoError(Te, err)
	res, err := Map(top, caOptions())
	require.NoError(Te, err)
	first := res.Topology.Atom(2).MolID
	assert.Equal(Te, 4, first)
	assert.Equal(Te, 2, res.Topology.Atom(3).MolID-first)
}

func TestTerminalEmbeddingsHomodimer(Te *testing.T) {
	top := fixture.Peptide([]string{"A", "B"}, 10)
	opts := Options{Atoms: []string{"N", "CA", "CB", "C", "O"}, Scheme: "fivebead", Dictionary: Builtins["FIVEBEAD_MAP"]}
	res, err := Map(top, opts)
	require.NoError(Te, err)
	term, err := AddTerminalEmbeddings(res, "N", "C")
	require.NoError(Te, err)
	ncode, ccode := term.TerminalCodes()
	top5 := Builtins["FIVEBEAD_MAP"].Max()
	assert.Equal(Te, top5+1, ncode)
	assert.Equal(Te, top5+2, ccode)
	var nterm, cterm []int
	for i := 0; i < term.NCG(); i++ {
		switch term.Topology.Atom(i).Type {
		case ncode:
			nterm = append(nterm, i)
		case ccode:
			cterm = append(cterm, i)
		}
	}
	require.Len(Te, nterm, 2)
	require.Len(Te, cterm, 2)
	for k, ch := range []string{"A", "B"} {
		lo, hi, _ := term.Topology.ResidueRange(ch)
		n := term.Topology.Atom(nterm[k])
		c := term.Topology.Atom(cterm[k])
		assert.Equal(Te, ch, n.Chain)
		assert.Equal(Te, "N", n.Name)
		assert.Equal(Te, lo, n.MolID)
		assert.Equal(Te, ch, c.Chain)
		assert.Equal(Te, "C", c.Name)
		assert.Equal(Te, hi, c.MolID)
	}
	//the original result is untouched.
	for i := 0; i < res.NCG(); i++ {
		assert.NotEqual(Te, ncode, res.Topology.Atom(i).Type)
	}
}

func TestTerminalEmbeddingsDisabled(Te *testing.T) {
	top := fixture.Peptide([]string{"A"}, 4)
	res, err := Map(top, caOptions())
	require.NoError(Te, err)
	term, err := AddTerminalEmbeddings(res, "", "")
	require.NoError(Te, err)
	assert.Equal(Te, res.Topology.Types(), term.Topology.Types())
	n, c := term.TerminalCodes()
	assert.Zero(Te, n)
	assert.Zero(Te, c)
	_, err = AddTerminalEmbeddings(&Result{}, "N", "")
	assert.True(Te, errors.Is(err, cg.ErrNotMapped))
}

func TestValidateSelection(Te *testing.T) {
	good := mat.NewDense(2, 3, []float64{1, 0, 0, 0, 0, 1})
	assert.Empty(Te, ValidateSelection(good))
	notlinear := mat.NewDense(2, 3, []float64{0.5, 0.5, 0, 0, 0, 1})
	w := ValidateSelection(notlinear)
	assert.Equal(Te, []string{"Slice mapping matrix is not linear."}, w)
	both := mat.NewDense(2, 3, []float64{1, 1, 0, 0, 0, 1})
	assert.Len(Te, ValidateSelection(both), 2)
}

func TestResolver(Te *testing.T) {
	d, err := Builtins.Resolve(context.Background(), "CA_MAP")
	require.NoError(Te, err)
	assert.Equal(Te, 20, d.Max())
	assert.Equal(Te, d["HIS"], d["HSD"])
	d["ALA"] = 99
	assert.Equal(Te, 1, Builtins["CA_MAP"]["ALA"])
	_, err = Builtins.Resolve(context.Background(), "NOPE")
	assert.Equal(Te, cg.KindConfig, cg.KindOf(err))
}
