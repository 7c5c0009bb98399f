/*
 * project_test.go, part of gocg.
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

package project

import (
	"errors"
	"testing"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/internal/fixture"
	"github.com/rmera/gocg/mapping"
	v3 "github.com/rmera/gocg/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func setup(Te *testing.T, atoms []string, scheme string, nframes int) (*mapping.Result, cg.MemFrames, cg.MemFrames) {
	top := fixture.Peptide([]string{"A", "B"}, 5)
	dict := mapping.Builtins["FIVEBEAD_MAP"]
	res, err := mapping.Map(top, mapping.Options{Atoms: atoms, Scheme: scheme, Dictionary: dict})
	require.NoError(Te, err)
	coords := fixture.Frames(nframes, top.Len(), 0.1)
	forces := fixture.Frames(nframes, top.Len(), 1.7)
	return res, coords, forces
}

func flat(ms []*v3.Matrix) []float64 {
	ret := make([]float64, 0, len(ms)*3)
	for _, m := range ms {
		ret = append(ret, m.Flat()...)
	}
	return ret
}

func TestSliceAggregate(Te *testing.T) {
	res, coords, forces := setup(Te, []string{"CA"}, "residue", 6)
	out, err := Project(coords, forces, res.Selection, DefaultOptions())
	require.NoError(Te, err)
	require.Len(Te, out.Coords, 6)
	require.Len(Te, out.Forces, 6)
	assert.True(Te, mat.Equal(res.Selection, out.ForceMap))
	for f := range out.Coords {
		assert.Equal(Te, res.NCG(), out.Coords[f].NVecs())
		for i, idx := range res.Indexes {
			for j := 0; j < 3; j++ {
				assert.Equal(Te, coords[f].At(idx, j), out.Coords[f].At(i, j))
				assert.Equal(Te, forces[f].At(idx, j), out.Forces[f].At(i, j))
			}
		}
	}
}

func TestBatchInvariance(Te *testing.T) {
	for _, strategy := range []Strategy{SliceAggregate, SliceOptimize} {
		res, coords, forces := setup(Te, []string{"N", "CA", "C"}, "fivebead", 9)
		var ref *Result
		for _, bs := range []int{0, 1, 2, 4, 9, 20} {
			opts := DefaultOptions()
			opts.Strategy = strategy
			opts.ForceStride = 2
			opts.BatchSize = bs
			opts.Topology = fixture.Peptide([]string{"A", "B"}, 5)
			out, err := Project(coords, forces, res.Selection, opts)
			require.NoError(Te, err, "batch size %d", bs)
			if ref == nil {
				ref = out
				continue
			}
			assert.Equal(Te, flat(ref.Coords), flat(out.Coords), "%v batch size %d", strategy, bs)
			assert.Equal(Te, flat(ref.Forces), flat(out.Forces), "%v batch size %d", strategy, bs)
			assert.True(Te, mat.Equal(ref.ForceMap, out.ForceMap))
		}
	}
}

func TestIdempotence(Te *testing.T) {
	run := func() *Result {
		res, coords, forces := setup(Te, []string{"CA", "CB"}, "fivebead", 5)
		out, err := Project(coords, forces, res.Selection, Options{BatchSize: 2})
		require.NoError(Te, err)
		return out
	}
	a, b := run(), run()
	assert.Equal(Te, flat(a.Coords), flat(b.Coords))
	assert.Equal(Te, flat(a.Forces), flat(b.Forces))
}

func TestShapeMismatch(Te *testing.T) {
	res, coords, forces := setup(Te, []string{"CA"}, "residue", 4)
	_, err := Project(coords, forces[:3], res.Selection, DefaultOptions())
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, cg.ErrShapeMismatch))
	assert.Equal(Te, cg.KindShape, cg.KindOf(err))

	short := fixture.Frames(4, coords.NAtoms()-1, 1)
	_, err = Project(coords, short, res.Selection, DefaultOptions())
	assert.True(Te, errors.Is(err, cg.ErrShapeMismatch))

	_, err = Project(short, short, res.Selection, DefaultOptions())
	assert.True(Te, errors.Is(err, cg.ErrShapeMismatch))
}

func sumSquares(ms []*v3.Matrix) float64 {
	var s float64
	for _, v := range flat(ms) {
		s += v * v
	}
	return s
}

func TestSliceOptimize(Te *testing.T) {
	res, coords, forces := setup(Te, []string{"CA"}, "residue", 8)
	opts := DefaultOptions()
	opts.Strategy = SliceOptimize
	opts.ForceStride = 1
	opts.Topology = fixture.Peptide([]string{"A", "B"}, 5)
	out, err := Project(coords, forces, res.Selection, opts)
	require.NoError(Te, err)
	ncg, nall := out.ForceMap.Dims()
	require.Equal(Te, res.NCG(), ncg)
	require.Equal(Te, coords.NAtoms(), nall)

	//consistency with the coordinate map.
	var prod mat.Dense
	prod.Mul(res.Selection, out.ForceMap.T())
	eye := mat.NewDiagDense(ncg, nil)
	for i := 0; i < ncg; i++ {
		eye.SetDiag(i, 1)
	}
	assert.True(Te, mat.EqualApprox(&prod, eye, 1e-12))

	//weights only on atoms of the same residue.
	top := opts.Topology
	for I, s := range res.Indexes {
		for j := 0; j < nall; j++ {
			if out.ForceMap.At(I, j) == 0 {
				continue
			}
			assert.Equal(Te, top.Atom(s).MolID, top.Atom(j).MolID)
			assert.Equal(Te, top.Atom(s).Chain, top.Atom(j).Chain)
		}
	}

	//no weights is a feasible solution, so the fit can't be worse.
	agg, err := Project(coords, forces, res.Selection, DefaultOptions())
	require.NoError(Te, err)
	assert.LessOrEqual(Te, sumSquares(out.Forces), sumSquares(agg.Forces)+1e-9)
	//coordinates don't depend on the force map.
	assert.Equal(Te, flat(agg.Coords), flat(out.Coords))
}

func TestSliceOptimizeNeedsTopology(Te *testing.T) {
	res, coords, forces := setup(Te, []string{"CA"}, "residue", 2)
	_, err := Project(coords, forces, res.Selection, Options{Strategy: SliceOptimize})
	assert.Equal(Te, cg.KindConfig, cg.KindOf(err))
}

func TestParseStrategy(Te *testing.T) {
	s, err := ParseStrategy("slice_optimize")
	require.NoError(Te, err)
	assert.Equal(Te, SliceOptimize, s)
	assert.Equal(Te, "slice_optimize", s.String())
	_, err = ParseStrategy("optimize")
	assert.Error(Te, err)
}

func TestWindows(Te *testing.T) {
	assert.Equal(Te, [][2]int{{0, 2}, {2, 4}, {4, 5}}, Windows(5, 2))
	assert.Equal(Te, [][2]int{{0, 5}}, Windows(5, 0))
	assert.Equal(Te, [][2]int{{0, 5}}, Windows(5, 10))
	assert.Nil(Te, Windows(0, 3))
}
