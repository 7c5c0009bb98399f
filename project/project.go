/*
 * project.go, part of gocg.
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
	"fmt"

	cg "github.com/rmera/gocg"
	v3 "github.com/rmera/gocg/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Strategy selects how the force map is obtained.
type Strategy int

const (
	// SliceAggregate uses the selection matrix as force map.
	SliceAggregate Strategy = iota
	// SliceOptimize adds to each CG force the forces of unmapped atoms of
	// the same residue, with weights fitted by least squares.
	SliceOptimize
)

func (S Strategy) String() string {
	switch S {
	case SliceAggregate:
		return "slice_aggregate"
	case SliceOptimize:
		return "slice_optimize"
	}
	return fmt.Sprintf("Strategy(%d)", int(S))
}

// ParseStrategy returns the strategy named s.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "slice_aggregate", "":
		return SliceAggregate, nil
	case "slice_optimize":
		return SliceOptimize, nil
	}
	return SliceAggregate, cg.NewError(cg.ErrConfig, "ParseStrategy", "unknown projection strategy %q", s)
}

// DefaultForceStride is the frame stride used to fit optimized force maps.
const DefaultForceStride = 100

// Options controls a projection.
type Options struct {
	Strategy Strategy
	//ForceStride: only every ForceStride-th frame is used to fit the force map.
	//Values < 1 are taken as 1. Ignored by SliceAggregate.
	ForceStride int
	//BatchSize is the number of frames read and projected at a time.
	//Values < 1 mean all the frames at once.
	BatchSize int
	//Ridge is added to the diagonal of the least squares problems.
	Ridge float64
	//Topology is the atomistic topology. Needed by SliceOptimize to group atoms in residues.
	Topology *cg.Topology
	Logger   *zap.Logger
}

// DefaultOptions returns options for a SliceAggregate projection of all frames at once.
func DefaultOptions() Options {
	return Options{Strategy: SliceAggregate, ForceStride: DefaultForceStride, Ridge: 1e-8}
}

// Result contains the projected trajectories and the force map actually used.
type Result struct {
	Coords   []*v3.Matrix
	Forces   []*v3.Matrix
	ForceMap *mat.Dense
}

// Project maps the coordinates and forces given to CG ones. cmap is the
// [n_cg, n_all] coordinate map. Mismatched shapes are reported with an error
// wrapping cg.ErrShapeMismatch before anything is computed.
func Project(coords, forces cg.FrameSource, cmap *mat.Dense, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := checkShapes(coords, forces, cmap); err != nil {
		return nil, cg.ErrDecorate(err, "Project")
	}
	var fmap *mat.Dense
	switch opts.Strategy {
	case SliceAggregate:
		fmap = mat.DenseCopyOf(cmap)
	case SliceOptimize:
		var err error
		fmap, err = OptimizeForceMap(forces, cmap, opts)
		if err != nil {
			return nil, cg.ErrDecorate(err, "Project")
		}
	default:
		return nil, cg.NewError(cg.ErrConfig, "Project", "unknown strategy %v", opts.Strategy)
	}
	ret := &Result{ForceMap: fmap}
	var err error
	ret.Coords, err = Apply(coords, cmap, opts.BatchSize)
	if err != nil {
		return nil, cg.ErrDecorate(err, "Project")
	}
	ret.Forces, err = Apply(forces, fmap, opts.BatchSize)
	if err != nil {
		return nil, cg.ErrDecorate(err, "Project")
	}
	log.Debug("projected trajectory", zap.Stringer("strategy", opts.Strategy), zap.Int("frames", len(ret.Coords)), zap.Int("batch_size", opts.BatchSize))
	return ret, nil
}

func checkShapes(coords, forces cg.FrameSource, cmap *mat.Dense) error {
	if coords.NFrames() != forces.NFrames() || coords.NAtoms() != forces.NAtoms() {
		return cg.NewError(cg.ErrShapeMismatch, "checkShapes", "coordinates [%d,%d,3], forces [%d,%d,3]", coords.NFrames(), coords.NAtoms(), forces.NFrames(), forces.NAtoms())
	}
	if cmap == nil {
		return cg.NewError(cg.ErrShapeMismatch, "checkShapes", "nil mapping matrix")
	}
	if _, c := cmap.Dims(); c != coords.NAtoms() {
		return cg.NewError(cg.ErrShapeMismatch, "checkShapes", "mapping matrix has %d columns for %d atoms", c, coords.NAtoms())
	}
	return nil
}

// term is a nonzero entry in a row of a mapping matrix.
type term struct {
	col int
	w   float64
}

// sparseRows keeps, for each row of a mapping matrix, its nonzero entries in
// column order. Mapping matrices are mostly zeros, so this is what gets
// applied to the frames.
type sparseRows [][]term

func newSparseRows(m mat.Matrix) sparseRows {
	r, c := m.Dims()
	ret := make(sparseRows, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if w := m.At(i, j); w != 0 {
				ret[i] = append(ret[i], term{col: j, w: w})
			}
		}
	}
	return ret
}

// apply puts in a new matrix the mapped vectors of frame.
func (S sparseRows) apply(frame *v3.Matrix) *v3.Matrix {
	out := v3.Zeros(len(S))
	for i, row := range S {
		var x, y, z float64
		for _, t := range row {
			x += t.w * frame.At(t.col, 0)
			y += t.w * frame.At(t.col, 1)
			z += t.w * frame.At(t.col, 2)
		}
		out.Set(i, 0, x)
		out.Set(i, 1, y)
		out.Set(i, 2, z)
	}
	return out
}

// Apply maps every frame in src with m, reading batchSize frames at a time
// (all of them if batchSize < 1). Each frame is mapped on its own, in the same
// order, so the result doesn't depend on batchSize.
func Apply(src cg.FrameSource, m *mat.Dense, batchSize int) ([]*v3.Matrix, error) {
	if _, c := m.Dims(); c != src.NAtoms() && src.NFrames() > 0 {
		return nil, cg.NewError(cg.ErrShapeMismatch, "Apply", "map with %d columns for frames of %d atoms", c, src.NAtoms())
	}
	rows := newSparseRows(m)
	n := src.NFrames()
	ret := make([]*v3.Matrix, 0, n)
	for _, w := range Windows(n, batchSize) {
		frames, err := src.Frames(w[0], w[1])
		if err != nil {
			return nil, cg.ErrDecorate(err, "Apply")
		}
		for _, f := range frames {
			ret = append(ret, rows.apply(f))
		}
	}
	return ret, nil
}

// Windows splits [0,n) in contiguous [start,end) windows of size batch. The
// last window may be shorter. A batch < 1 or larger than n gives a single window.
func Windows(n, batch int) [][2]int {
	if n <= 0 {
		return nil
	}
	if batch < 1 || batch > n {
		batch = n
	}
	ret := make([][2]int, 0, n/batch+1)
	for start := 0; start < n; start += batch {
		end := start + batch
		if end > n {
			end = n
		}
		ret = append(ret, [2]int{start, end})
	}
	return ret
}
