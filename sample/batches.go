/*
 * batches.go, part of gocg.
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

package sample

import (
	"context"
	"io"
	"strings"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/npy"
	"github.com/rmera/gocg/prior"
	"github.com/rmera/gocg/project"
	"github.com/rmera/gocg/store"
	v3 "github.com/rmera/gocg/v3"
	"gonum.org/v1/gonum/floats"
)

// Batch is a window of contiguous (strided) frames of one molecule.
type Batch struct {
	Start, End    int //the window, in strided frames
	Positions     []*v3.Matrix
	AtomTypes     []int
	NeighborLists prior.NeighborLists
	Forces        []*v3.Matrix //nil unless requested
	Weights       []float64    //nil if the molecule has no frame weights
}

// Batches gives access to the saved outputs of a molecule in windows of at
// most a given number of frames. Each Batch can be built independently of
// the others.
type Batches struct {
	coords  []*v3.Matrix
	forces  []*v3.Matrix
	embeds  []int
	nls     prior.NeighborLists
	weights []float64
	windows [][2]int
}

// NewBatches splits out into windows of batchSize frames, after keeping only
// every stride-th frame. weights, if not nil, are the per-frame weights of
// the unstrided trajectory. When stride is not 1, the retained weights are
// renormalized to sum 1. A batchSize larger than the number of frames, or
// smaller than 1, gives a single batch. Forces are included in each Batch
// only if withForces is true.
func NewBatches(out *Output, weights []float64, batchSize, stride int, withForces bool) (*Batches, error) {
	if stride < 1 {
		return nil, cg.NewError(cg.ErrConfig, "NewBatches", "stride must be positive, got %d", stride)
	}
	if weights != nil && len(weights) != len(out.Coords) {
		return nil, cg.NewError(cg.ErrShapeMismatch, "NewBatches", "%d weights for %d frames", len(weights), len(out.Coords))
	}
	B := &Batches{
		coords: strided(out.Coords, stride),
		embeds: out.Embeds,
		nls:    out.NeighborLists,
	}
	if withForces {
		B.forces = strided(out.Forces, stride)
	}
	if weights != nil {
		B.weights = StrideWeights(weights, stride)
	}
	B.windows = project.Windows(len(B.coords), batchSize)
	return B, nil
}

// StrideWeights returns every stride-th weight. When stride is not 1 the
// result is renormalized to sum 1. w is not modified.
func StrideWeights(w []float64, stride int) []float64 {
	ret := append([]float64(nil), strided(w, stride)...)
	if stride != 1 {
		if s := floats.Sum(ret); s != 0 {
			floats.Scale(1/s, ret)
		}
	}
	return ret
}

// Len returns the number of batches.
func (B *Batches) Len() int {
	return len(B.windows)
}

// NFrames returns the number of frames after striding.
func (B *Batches) NFrames() int {
	return len(B.coords)
}

// Get returns the ith batch. The matrices are shared with the Batches and
// should not be modified.
func (B *Batches) Get(i int) (*Batch, error) {
	if i < 0 || i >= len(B.windows) {
		return nil, cg.NewError(cg.ErrShapeMismatch, "Batches.Get", "batch %d requested, there are %d", i, len(B.windows))
	}
	st, nd := B.windows[i][0], B.windows[i][1]
	ret := &Batch{
		Start:         st,
		End:           nd,
		Positions:     B.coords[st:nd],
		AtomTypes:     B.embeds,
		NeighborLists: B.nls,
	}
	if B.forces != nil {
		ret.Forces = B.forces[st:nd]
	}
	if B.weights != nil {
		ret.Weights = B.weights[st:nd]
	}
	return ret, nil
}

// BatchOptions controls LoadBatches.
type BatchOptions struct {
	PriorTag  string
	BatchSize int
	Stride    int
	//WeightsKey, if not empty, is the key of a 1D array of per-frame weights.
	//Every "{}" in it is replaced by the molecule name.
	WeightsKey string
	Forces     bool
}

// LoadBatches loads the saved outputs of the molecule and splits them in batches.
func (C *Collection) LoadBatches(ctx context.Context, st store.Store, opts BatchOptions) (*Batches, error) {
	out, err := C.LoadOutput(ctx, st, opts.PriorTag)
	if err != nil {
		return nil, cg.ErrDecorate(err, "LoadBatches")
	}
	var weights []float64
	if opts.WeightsKey != "" {
		key := strings.ReplaceAll(opts.WeightsKey, "{}", C.Name)
		err := store.Read(ctx, st, key, func(r io.Reader) error {
			shape, w, err := npy.ReadFloat64(r)
			if err != nil {
				return err
			}
			if len(shape) != 1 {
				return cg.NewError(cg.ErrCorrupt, "LoadBatches", "weights with shape %v", shape)
			}
			weights = w
			return nil
		})
		if err != nil {
			return nil, cg.ErrDecorate(err, "LoadBatches")
		}
	}
	B, err := NewBatches(out, weights, opts.BatchSize, opts.Stride, opts.Forces)
	return B, cg.ErrDecorate(err, "LoadBatches")
}
