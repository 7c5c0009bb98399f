/*
 * optimize.go, part of gocg.
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
	cg "github.com/rmera/gocg"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// OptimizeForceMap returns a force map for the selection matrix cmap.
//
// The force on CG site I is the force on its mapped atom plus a weighted
// sum of the forces on the unmapped atoms of the same residue (same chain
// and residue number). The weights minimize the mean squared mapped force
// over the frames sampled every opts.ForceStride frames, plus opts.Ridge
// times their squared norm. The weights on mapped atoms are fixed to the
// identity, so cmap times the transpose of the returned map is the identity
// and the map stays consistent with the coordinate mapping.
func OptimizeForceMap(forces cg.FrameSource, cmap *mat.Dense, opts Options) (*mat.Dense, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	top := opts.Topology
	ncg, nall := cmap.Dims()
	if top == nil {
		return nil, cg.NewError(cg.ErrConfig, "OptimizeForceMap", "the atomistic topology is needed to optimize the force map")
	}
	if top.Len() != nall || forces.NAtoms() != nall {
		return nil, cg.NewError(cg.ErrShapeMismatch, "OptimizeForceMap", "map for %d atoms, topology with %d, forces with %d", nall, top.Len(), forces.NAtoms())
	}
	sites, err := selectedColumns(cmap)
	if err != nil {
		return nil, cg.ErrDecorate(err, "OptimizeForceMap")
	}
	mapped := make(map[int]bool, ncg)
	for _, s := range sites {
		mapped[s] = true
	}
	type reskey struct {
		chain string
		id    int
	}
	free := make(map[reskey][]int)
	for i := 0; i < nall; i++ {
		if mapped[i] {
			continue
		}
		at := top.Atom(i)
		k := reskey{at.Chain, at.MolID}
		free[k] = append(free[k], i)
	}
	samples, err := sampleForces(forces, opts.ForceStride, opts.BatchSize)
	if err != nil {
		return nil, cg.ErrDecorate(err, "OptimizeForceMap")
	}
	fmap := mat.NewDense(ncg, nall, nil)
	fallbacks := 0
	for I, s := range sites {
		fmap.Set(I, s, 1)
		at := top.Atom(s)
		cands := free[reskey{at.Chain, at.MolID}]
		if len(cands) == 0 {
			continue
		}
		w, chol := fitWeights(samples, s, cands, opts.Ridge)
		if !chol {
			fallbacks++
		}
		if w == nil {
			continue
		}
		for k, c := range cands {
			fmap.Set(I, c, w[k])
		}
	}
	if fallbacks > 0 {
		log.Warn("ill-conditioned force map fits", zap.Int("sites", fallbacks), zap.Float64("ridge", opts.Ridge))
	}
	log.Debug("optimized force map", zap.Int("sites", ncg), zap.Int("sampled_frames", samples.frames))
	return fmap, nil
}

// selectedColumns returns the column selected by each row of a selection
// matrix. Rows which are not a plain selection are errors, as the
// optimization needs to know which atom each CG site stands for.
func selectedColumns(cmap *mat.Dense) ([]int, error) {
	r, c := cmap.Dims()
	ret := make([]int, r)
	for i := 0; i < r; i++ {
		ret[i] = -1
		for j := 0; j < c; j++ {
			v := cmap.At(i, j)
			if v == 0 {
				continue
			}
			if v != 1 || ret[i] != -1 {
				return nil, cg.NewError(cg.ErrDegenerateMapping, "selectedColumns", "row %d is not a selection", i)
			}
			ret[i] = j
		}
		if ret[i] == -1 {
			return nil, cg.NewError(cg.ErrDegenerateMapping, "selectedColumns", "row %d is empty", i)
		}
	}
	return ret, nil
}

// forceSamples keeps, for each atom, the components of its force in
// every sampled frame, concatenated.
type forceSamples struct {
	frames int
	atoms  [][]float64
}

func sampleForces(forces cg.FrameSource, stride, batch int) (*forceSamples, error) {
	if stride < 1 {
		stride = 1
	}
	n := forces.NFrames()
	nsamp := (n + stride - 1) / stride
	ret := &forceSamples{atoms: make([][]float64, forces.NAtoms())}
	for i := range ret.atoms {
		ret.atoms[i] = make([]float64, 0, 3*nsamp)
	}
	for _, w := range Windows(n, batch) {
		frames, err := forces.Frames(w[0], w[1])
		if err != nil {
			return nil, cg.ErrDecorate(err, "sampleForces")
		}
		for k, f := range frames {
			if (w[0]+k)%stride != 0 {
				continue
			}
			ret.frames++
			for i := range ret.atoms {
				ret.atoms[i] = append(ret.atoms[i], f.At(i, 0), f.At(i, 1), f.At(i, 2))
			}
		}
	}
	return ret, nil
}

// fitWeights solves the regularized normal equations
//
//	(G + ridge*I) w = -b
//
// where G is the Gram matrix of the sampled forces of the candidates and b their
// products with the forces of the site atom. It returns false if the Cholesky
// factorization failed and a general solver was used. w is nil if neither
// could solve the system.
func fitWeights(samples *forceSamples, site int, cands []int, ridge float64) ([]float64, bool) {
	m := len(cands)
	G := mat.NewSymDense(m, nil)
	b := mat.NewVecDense(m, nil)
	fs := samples.atoms[site]
	for k, ck := range cands {
		fk := samples.atoms[ck]
		b.SetVec(k, -floats.Dot(fk, fs))
		for l := k; l < m; l++ {
			G.SetSym(k, l, floats.Dot(fk, samples.atoms[cands[l]]))
		}
		G.SetSym(k, k, G.At(k, k)+ridge)
	}
	w := mat.NewVecDense(m, nil)
	var chol mat.Cholesky
	if chol.Factorize(G) {
		if err := chol.SolveVecTo(w, b); err == nil {
			return w.RawVector().Data, true
		}
	}
	var gd mat.Dense
	gd.CloneFrom(G)
	if err := w.SolveVec(&gd, b); err != nil {
		//A Condition error still comes with a solution.
		if _, ok := err.(mat.Condition); !ok {
			return nil, false
		}
	}
	return w.RawVector().Data, false
}
