/*
 * sample_test.go, part of gocg.
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
	"bytes"
	"context"
	"errors"
	"testing"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/internal/fixture"
	"github.com/rmera/gocg/mapping"
	"github.com/rmera/gocg/npy"
	"github.com/rmera/gocg/prior"
	"github.com/rmera/gocg/project"
	"github.com/rmera/gocg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"gonum.org/v1/gonum/mat"
)

func caOptions() mapping.Options {
	return mapping.Options{Atoms: []string{"CA"}, Scheme: "residue", Dictionary: mapping.Builtins["CA_MAP"]}
}

func memStore() store.Store {
	return store.NewBucket(memblob.OpenBucket(nil))
}

// mapped returns a mapped collection for a two-chain peptide, plus its
// coordinates and forces.
func mapped(Te *testing.T, nframes int) (*Collection, cg.MemFrames, cg.MemFrames) {
	top := fixture.Peptide([]string{"A", "B"}, 6)
	coords := fixture.Frames(nframes, top.Len(), 0)
	forces := fixture.Frames(nframes, top.Len(), 1.7)
	c := New("1L2Y", "test", nil)
	require.NoError(Te, c.SetInput(top, coords[0]))
	_, err := c.ApplyMapping(caOptions())
	require.NoError(Te, err)
	return c, coords, forces
}

func TestPreconditions(Te *testing.T) {
	ctx := context.Background()
	st := memStore()
	c := New("1L2Y", "test", nil)
	assert.Equal(Te, Unmapped, c.Stage())
	_, err := c.ApplyMapping(caOptions())
	assert.True(Te, errors.Is(err, cg.ErrNoInput))
	_, err = c.SaveOutput(ctx, st, DefaultSaveOptions())
	assert.True(Te, errors.Is(err, cg.ErrNotMapped))
	assert.Equal(Te, cg.KindPrecondition, cg.KindOf(err))
	_, err = c.ProcessCoordsForces(cg.MemFrames{}, cg.MemFrames{}, project.DefaultOptions())
	assert.True(Te, errors.Is(err, cg.ErrNotMapped))
	_, err = c.PriorNeighborLists(prior.DefaultSpecs())
	assert.True(Te, errors.Is(err, cg.ErrNotMapped))
	assert.True(Te, errors.Is(c.AddTerminalEmbeddings("CA", "CA"), cg.ErrNotMapped))
	_, err = c.SaveNeighborLists(ctx, st, "ca")
	assert.True(Te, errors.Is(err, cg.ErrNotListed))
	keys, err := st.List(ctx, "")
	require.NoError(Te, err)
	assert.Empty(Te, keys)

	c, coords, _ := mapped(Te, 3)
	_, err = c.ProcessCoordsForces(coords, fixture.Frames(3, 10, 0), project.DefaultOptions())
	assert.True(Te, errors.Is(err, cg.ErrShapeMismatch))
	assert.Nil(Te, c.Projection())
}

func TestRoundTrip(Te *testing.T) {
	ctx := context.Background()
	st := memStore()
	c, coords, forces := mapped(Te, 4)
	require.NoError(Te, c.AddTerminalEmbeddings("CA", "CA"))
	proj, err := c.ProcessCoordsForces(coords, forces, project.DefaultOptions())
	require.NoError(Te, err)
	assert.Equal(Te, Projected, c.Stage())
	nls, err := c.PriorNeighborLists(prior.DefaultSpecs())
	require.NoError(Te, err)
	assert.Equal(Te, NeighborListed, c.Stage())
	opts := DefaultSaveOptions()
	opts.STF = true
	rep, err := c.SaveOutput(ctx, st, opts)
	require.NoError(Te, err)
	assert.Empty(Te, rep.Skipped)
	assert.Len(Te, rep.Saved, 7)
	//the neighbor lists are not saved yet.
	assert.Equal(Te, NeighborListed, c.Stage())
	_, err = c.SaveNeighborLists(ctx, st, "ca")
	require.NoError(Te, err)
	assert.Equal(Te, Persisted, c.Stage())

	out, err := c.LoadOutput(ctx, st, "ca")
	require.NoError(Te, err)
	require.Len(Te, out.Coords, 4)
	for i := range proj.Coords {
		assert.True(Te, proj.Coords[i].Equal(out.Coords[i]), "coordinates of frame %d", i)
		assert.True(Te, proj.Forces[i].Equal(out.Forces[i]), "forces of frame %d", i)
	}
	assert.Equal(Te, c.Topology().Types(), out.Embeds)
	assert.Equal(Te, out.Embeds, out.Topology.Types())
	assert.Equal(Te, c.Topology().Names(), out.Topology.Names())
	assert.InDelta(Te, proj.Coords[0].At(3, 2), out.Structure.At(3, 2), 1e-3)
	require.Equal(Te, nls.Tags(), out.NeighborLists.Tags())
	for _, tag := range nls.Tags() {
		a, b := nls[tag], out.NeighborLists[tag]
		assert.Equal(Te, a.Order, b.Order, tag)
		require.Equal(Te, a.Len(), b.Len(), tag)
		for i := range a.Edges {
			assert.Equal(Te, a.Edges[i], b.Edges[i], tag)
		}
	}
	cmap, err := ReadMatrix(ctx, st, store.Key("test", "1L2Y", store.CoordMapFile))
	require.NoError(Te, err)
	assert.True(Te, mat.Equal(c.CoordMap(), cmap))
}

func TestSkippedArtifacts(Te *testing.T) {
	ctx := context.Background()
	st := memStore()
	c, _, _ := mapped(Te, 2)
	rep, err := c.SaveOutput(ctx, st, DefaultSaveOptions())
	require.NoError(Te, err)
	assert.Equal(Te, []string{
		store.Key("test", "1L2Y", store.CoordsFile),
		store.Key("test", "1L2Y", store.ForcesFile),
		store.Key("test", "1L2Y", store.ForceMapFile),
	}, rep.Skipped)
	assert.Equal(Te, []string{
		store.Key("test", "1L2Y", store.StructureFile),
		store.Key("test", "1L2Y", store.EmbedsFile),
		store.Key("test", "1L2Y", store.CoordMapFile),
	}, rep.Saved)
	assert.Equal(Te, Persisted, c.Stage())
	ok, err := st.Exists(ctx, store.Key("test", "1L2Y", store.CoordsFile))
	require.NoError(Te, err)
	assert.False(Te, ok)
	//the outputs are incomplete, so loading them fails.
	_, err = c.LoadOutput(ctx, st, "")
	assert.Error(Te, err)
}

func TestRemapInvalidates(Te *testing.T) {
	c, coords, forces := mapped(Te, 3)
	_, err := c.ProcessCoordsForces(coords, forces, project.DefaultOptions())
	require.NoError(Te, err)
	_, err = c.PriorNeighborLists(prior.DefaultSpecs())
	require.NoError(Te, err)
	ca := c.Topology()

	res, err := c.ApplyMapping(mapping.Options{Atoms: []string{"N", "CA", "C"}, Scheme: "atom", Dictionary: mapping.Dictionary{"N": 1, "CA": 2, "C": 3}})
	require.NoError(Te, err)
	assert.Equal(Te, Mapped, c.Stage())
	assert.Nil(Te, c.Projection())
	assert.Nil(Te, c.NeighborLists())
	assert.Equal(Te, 3*ca.Len(), res.NCG())
	assert.Equal(Te, res.NCG(), c.Structure().NVecs())

	//A failed mapping leaves the collection unmapped.
	_, err = c.ApplyMapping(mapping.Options{Atoms: []string{"CA"}, Scheme: "nope"})
	assert.Error(Te, err)
	assert.Equal(Te, Unmapped, c.Stage())
	assert.Nil(Te, c.Topology())
}

func TestTerminalEmbeddingsKeepProjection(Te *testing.T) {
	c, coords, forces := mapped(Te, 2)
	_, err := c.ProcessCoordsForces(coords, forces, project.DefaultOptions())
	require.NoError(Te, err)
	_, err = c.PriorNeighborLists(prior.DefaultSpecs())
	require.NoError(Te, err)
	require.NoError(Te, c.AddTerminalEmbeddings("CA", ""))
	assert.Equal(Te, Projected, c.Stage())
	assert.NotNil(Te, c.Projection())
	assert.Nil(Te, c.NeighborLists())
}

func TestStrideWeights(Te *testing.T) {
	w := []float64{1, 1, 1, 1}
	assert.Equal(Te, []float64{0.5, 0.5}, StrideWeights(w, 2))
	assert.Equal(Te, []float64{1, 1, 1, 1}, StrideWeights(w, 1))
	assert.Equal(Te, []float64{1, 1, 1, 1}, w)
	assert.InDeltaSlice(Te, []float64{0.25, 0.75}, StrideWeights([]float64{1, 5, 3}, 2), 1e-12)
}

func TestBatches(Te *testing.T) {
	frames := fixture.Frames(5, 4, 0)
	out := &Output{Coords: frames, Forces: fixture.Frames(5, 4, 1), Embeds: []int{1, 2, 3, 4}, NeighborLists: prior.NeighborLists{}}
	B, err := NewBatches(out, nil, 2, 1, false)
	require.NoError(Te, err)
	require.Equal(Te, 3, B.Len())
	last, err := B.Get(2)
	require.NoError(Te, err)
	assert.Equal(Te, 4, last.Start)
	assert.Equal(Te, 5, last.End)
	assert.Len(Te, last.Positions, 1)
	assert.Nil(Te, last.Forces)
	assert.Nil(Te, last.Weights)
	assert.Equal(Te, out.Embeds, last.AtomTypes)
	_, err = B.Get(3)
	assert.Error(Te, err)

	B, err = NewBatches(out, nil, 10, 1, true)
	require.NoError(Te, err)
	assert.Equal(Te, 1, B.Len())
	all, err := B.Get(0)
	require.NoError(Te, err)
	assert.Len(Te, all.Forces, 5)

	B, err = NewBatches(out, []float64{1, 1, 1, 1, 1}, 2, 2, true)
	require.NoError(Te, err)
	assert.Equal(Te, 3, B.NFrames())
	assert.Equal(Te, 2, B.Len())
	first, err := B.Get(0)
	require.NoError(Te, err)
	assert.True(Te, frames[2].Equal(first.Positions[1]))
	assert.InDeltaSlice(Te, []float64{1.0 / 3, 1.0 / 3}, first.Weights, 1e-12)

	_, err = NewBatches(out, []float64{1, 1}, 2, 1, false)
	assert.True(Te, errors.Is(err, cg.ErrShapeMismatch))
	_, err = NewBatches(out, nil, 2, 0, false)
	assert.True(Te, errors.Is(err, cg.ErrConfig))
}

func TestLoadBatchesAndTrainingInputs(Te *testing.T) {
	ctx := context.Background()
	st := memStore()
	c, coords, forces := mapped(Te, 4)
	_, err := c.ProcessCoordsForces(coords, forces, project.DefaultOptions())
	require.NoError(Te, err)
	_, err = c.PriorNeighborLists(prior.DefaultSpecs())
	require.NoError(Te, err)
	_, err = c.SaveOutput(ctx, st, DefaultSaveOptions())
	require.NoError(Te, err)
	_, err = c.SaveNeighborLists(ctx, st, "")
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, npy.WriteFloats(&buf, []float64{1, 1, 1, 1}))
	require.NoError(Te, st.Put(ctx, "1L2Y_weights.npy", buf.Bytes()))

	B, err := c.LoadBatches(ctx, st, BatchOptions{BatchSize: 1, Stride: 2, WeightsKey: "{}_weights.npy", Forces: true})
	require.NoError(Te, err)
	require.Equal(Te, 2, B.Len())
	b, err := B.Get(1)
	require.NoError(Te, err)
	assert.Equal(Te, []float64{0.5}, b.Weights)
	assert.Len(Te, b.Forces, 1)
	assert.NotEmpty(Te, b.NeighborLists)

	_, err = c.LoadTrainingInputs(ctx, st, "delta", 1)
	assert.True(Te, errors.Is(err, store.ErrNotFound))
	buf.Reset()
	require.NoError(Te, npy.WriteFrames(&buf, c.Projection().Forces))
	require.NoError(Te, st.Put(ctx, store.DeltaForcesKey("test", "1L2Y", "delta"), buf.Bytes()))
	ti, err := c.LoadTrainingInputs(ctx, st, "delta", 3)
	require.NoError(Te, err)
	assert.Len(Te, ti.Coords, 2)
	assert.Len(Te, ti.DeltaForces, 2)
	assert.True(Te, c.Projection().Forces[3].Equal(ti.DeltaForces[1]))
	assert.Equal(Te, c.Topology().Types(), ti.Embeds)
}

func TestCorruptOutput(Te *testing.T) {
	ctx := context.Background()
	st := memStore()
	c, coords, forces := mapped(Te, 2)
	_, err := c.ProcessCoordsForces(coords, forces, project.DefaultOptions())
	require.NoError(Te, err)
	_, err = c.PriorNeighborLists(prior.DefaultSpecs())
	require.NoError(Te, err)
	_, err = c.SaveOutput(ctx, st, DefaultSaveOptions())
	require.NoError(Te, err)
	key, err := c.SaveNeighborLists(ctx, st, "ca")
	require.NoError(Te, err)
	require.NoError(Te, st.Put(ctx, key, []byte("garbage")))
	out, err := c.LoadOutput(ctx, st, "ca")
	assert.Nil(Te, out)
	assert.Equal(Te, cg.KindCorrupt, cg.KindOf(err))
}
