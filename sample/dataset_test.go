/*
 * dataset_test.go, part of gocg.
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
	"github.com/rmera/gocg/npy"
	"github.com/rmera/gocg/prior"
	"github.com/rmera/gocg/project"
	"github.com/rmera/gocg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSimInput(Te *testing.T) {
	D := NewSimInput("sim", "t", []string{"inputs/1L2Y.pdb", "2JOF.pdb"}, nil)
	assert.Equal(Te, 2, D.Len())
	assert.Equal(Te, []string{"inputs/1L2Y", "2JOF"}, D.Names())
	assert.Equal(Te, "t", D.At(1).Tag)
	assert.Equal(Te, Unmapped, D.At(0).Stage())
}

// inputs puts a PDB file for each name in st, plus coordinates and forces
// for the names in withForces.
func inputs(Te *testing.T, st store.Store, names []string, withForces map[string]bool) {
	ctx := context.Background()
	top := fixture.Peptide([]string{"A", "B"}, 5)
	coords := fixture.Frames(3, top.Len(), 0)
	for _, name := range names {
		var buf bytes.Buffer
		require.NoError(Te, cg.PDBWrite(&buf, coords[0], top))
		require.NoError(Te, st.Put(ctx, name+".pdb", buf.Bytes()))
		if !withForces[name] {
			continue
		}
		buf.Reset()
		require.NoError(Te, npy.WriteFrames(&buf, coords))
		require.NoError(Te, st.Put(ctx, name+"_coords.npy", buf.Bytes()))
		buf.Reset()
		require.NoError(Te, npy.WriteFrames(&buf, fixture.Frames(3, top.Len(), 2)))
		require.NoError(Te, st.Put(ctx, name+"_forces.npy", buf.Bytes()))
	}
}

func testPipeline(in, out store.Store) *Pipeline {
	return &Pipeline{
		Loader:     &store.InputLoader{Store: in},
		Mapping:    caOptions(),
		NTerm:      "CA",
		CTerm:      "CA",
		Projection: project.DefaultOptions(),
		Priors:     prior.DefaultSpecs(),
		PriorTag:   "ca",
		Output:     out,
		Save:       DefaultSaveOptions(),
	}
}

func TestDatasetRun(Te *testing.T) {
	ctx := context.Background()
	in, out := memStore(), memStore()
	inputs(Te, in, []string{"mol1", "mol2"}, map[string]bool{"mol1": true})
	D := NewRawDataset("test set", []string{"mol1", "missing", "mol2"}, "test", nil)
	P := testPipeline(in, out)
	rep, err := D.Run(ctx, P.Process, RunOptions{Workers: 2, ContinueOnError: true})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"missing"}, rep.Failed())
	require.Len(Te, rep.Records, 3)
	assert.Equal(Te, store.StatusDone, rep.Records[0].Status)
	assert.Equal(Te, store.StatusDone, rep.Records[2].Status)
	assert.NotEmpty(Te, rep.Records[1].Error)
	assert.Contains(Te, rep.Records[0].Artifacts, store.NeighborListKey("test", "mol1", "ca"))
	assert.Empty(Te, rep.Records[0].Skipped)
	//no forces for mol2: mapped and saved, but not projected.
	assert.Contains(Te, rep.Records[2].Skipped, store.Key("test", "mol2", store.CoordsFile))
	assert.Equal(Te, Persisted, D.At(0).Stage())
	assert.Equal(Te, Unmapped, D.At(1).Stage())

	o, err := D.At(0).LoadOutput(ctx, out, "ca")
	require.NoError(Te, err)
	assert.Len(Te, o.Coords, 3)
	assert.Equal(Te, 10, o.Topology.Len())

	require.NoError(Te, store.WriteManifest(ctx, out, rep.Manifest(D, "ca")))
	m, err := store.ReadManifest(ctx, out, "test")
	require.NoError(Te, err)
	assert.Equal(Te, "test set", m.Dataset)
	assert.Equal(Te, rep.Records, m.Molecules)
}

func TestDatasetRunStops(Te *testing.T) {
	ctx := context.Background()
	in, out := memStore(), memStore()
	inputs(Te, in, []string{"mol1", "mol2"}, nil)
	D := NewRawDataset("test set", []string{"missing", "mol1", "mol2"}, "test", nil)
	rep, err := D.Run(ctx, testPipeline(in, out).Process, RunOptions{Workers: 1})
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, store.ErrNotFound))
	assert.Equal(Te, store.StatusFailed, rep.Records[0].Status)
	assert.Equal(Te, store.StatusSkipped, rep.Records[1].Status)
	assert.Equal(Te, store.StatusSkipped, rep.Records[2].Status)
	keys, err := out.List(ctx, "")
	require.NoError(Te, err)
	assert.Empty(Te, keys)
}
