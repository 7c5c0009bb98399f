/*
 * save.go, part of gocg.
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

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/npy"
	"github.com/rmera/gocg/prior"
	"github.com/rmera/gocg/store"
	"github.com/rmera/gocg/traj/stf"
	v3 "github.com/rmera/gocg/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// SaveOptions selects the optional artifacts written by SaveOutput.
// The CG structure and the embeddings are always written.
type SaveOptions struct {
	CoordsForces bool //projected coordinates and forces
	Maps         bool //coordinate and force maps
	STF          bool //projected coordinates as an STF trajectory, for visualization
}

// DefaultSaveOptions writes all the NPY artifacts, but not the STF trajectory.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{CoordsForces: true, Maps: true}
}

// SaveReport lists the keys of the artifacts written, and of those
// requested but skipped because they were never computed.
type SaveReport struct {
	Saved   []string
	Skipped []string
}

func (R *SaveReport) skip(log *zap.Logger, key, why string) {
	R.Skipped = append(R.Skipped, key)
	log.Info("artifact skipped", zap.String("key", key), zap.String("reason", why))
}

func (C *Collection) key(file string) string {
	return store.Key(C.Tag, C.Name, file)
}

// put writes one artifact and records it.
func (C *Collection) put(ctx context.Context, st store.Store, rep *SaveReport, key string, fn func(io.Writer) error) error {
	n, err := store.Write(ctx, st, key, fn)
	if err != nil {
		return err
	}
	store.LogSize(C.log, key, n)
	rep.Saved = append(rep.Saved, key)
	return nil
}

// SaveOutput writes the CG outputs of the collection to st. The collection
// must be mapped. Artifacts which were requested in opts but never computed
// are skipped and listed in the report. A failure to write any artifact
// aborts the save.
func (C *Collection) SaveOutput(ctx context.Context, st store.Store, opts SaveOptions) (*SaveReport, error) {
	if C.mapped == nil {
		return nil, cg.NewError(cg.ErrNotMapped, "SaveOutput", "CG mapping must be applied before outputs can be saved (molecule %s)", C.Name)
	}
	rep := new(SaveReport)
	top := C.mapped.Topology
	err := C.put(ctx, st, rep, C.key(store.StructureFile), func(w io.Writer) error {
		return cg.PDBWrite(w, C.Structure(), top)
	})
	if err != nil {
		return nil, cg.ErrDecorate(err, "SaveOutput")
	}
	err = C.put(ctx, st, rep, C.key(store.EmbedsFile), func(w io.Writer) error {
		return npy.WriteInts(w, top.Types())
	})
	if err != nil {
		return nil, cg.ErrDecorate(err, "SaveOutput")
	}
	type artifact struct {
		want  bool
		file  string
		write func(io.Writer) error //nil if not available
	}
	var coords, forces, fmap, traj func(io.Writer) error
	if C.proj != nil {
		coords = func(w io.Writer) error { return npy.WriteFrames(w, C.proj.Coords) }
		forces = func(w io.Writer) error { return npy.WriteFrames(w, C.proj.Forces) }
		fmap = func(w io.Writer) error { return npy.WriteMatrix(w, C.proj.ForceMap) }
		traj = func(w io.Writer) error {
			return stf.WriteAll(w, C.proj.Coords, map[string]string{"tag": C.Tag, "molecule": C.Name})
		}
	}
	artifacts := []artifact{
		{opts.CoordsForces, store.CoordsFile, coords},
		{opts.CoordsForces, store.ForcesFile, forces},
		{opts.Maps, store.CoordMapFile, func(w io.Writer) error { return npy.WriteMatrix(w, C.mapped.Selection) }},
		{opts.Maps, store.ForceMapFile, fmap},
		{opts.STF, store.TrajFile, traj},
	}
	for _, a := range artifacts {
		if !a.want {
			continue
		}
		key := C.key(a.file)
		if a.write == nil {
			rep.skip(C.log, key, "not projected")
			continue
		}
		if err := C.put(ctx, st, rep, key, a.write); err != nil {
			return nil, cg.ErrDecorate(err, "SaveOutput")
		}
	}
	C.saved = rep
	return rep, nil
}

// LastSave returns the report of the last SaveOutput call, or nil if the
// current artifacts have not been saved.
func (C *Collection) LastSave() *SaveReport {
	return C.saved
}

// SaveNeighborLists writes the neighbor lists to st, under the key given by priorTag.
func (C *Collection) SaveNeighborLists(ctx context.Context, st store.Store, priorTag string) (string, error) {
	if C.nls == nil {
		return "", cg.NewError(cg.ErrNotListed, "SaveNeighborLists", "molecule %s", C.Name)
	}
	key := store.NeighborListKey(C.Tag, C.Name, priorTag)
	n, err := store.Write(ctx, st, key, func(w io.Writer) error {
		return store.EncodeNeighborLists(w, C.nls)
	})
	if err != nil {
		return "", cg.ErrDecorate(err, "SaveNeighborLists")
	}
	store.LogSize(C.log, key, n)
	C.nlsSaved = true
	if C.saved != nil {
		C.saved.Saved = append(C.saved.Saved, key)
	}
	return key, nil
}

// Output contains the saved CG data of a molecule.
type Output struct {
	Topology      *cg.Topology //with the embeddings as atom types
	Structure     *v3.Matrix
	Embeds        []int
	Coords        []*v3.Matrix
	Forces        []*v3.Matrix
	NeighborLists prior.NeighborLists
}

func readFrames(ctx context.Context, st store.Store, key string) ([]*v3.Matrix, error) {
	var ret []*v3.Matrix
	err := store.Read(ctx, st, key, func(r io.Reader) error {
		var err error
		ret, err = npy.ReadFrames(r)
		return err
	})
	return ret, err
}

func readInts(ctx context.Context, st store.Store, key string) ([]int, error) {
	var ret []int
	err := store.Read(ctx, st, key, func(r io.Reader) error {
		var err error
		ret, err = npy.ReadInts(r)
		return err
	})
	return ret, err
}

// ReadMatrix reads a saved 2D array, such as a coordinate or force map.
func ReadMatrix(ctx context.Context, st store.Store, key string) (*mat.Dense, error) {
	var ret *mat.Dense
	err := store.Read(ctx, st, key, func(r io.Reader) error {
		var err error
		ret, err = npy.ReadMatrix(r)
		return err
	})
	return ret, cg.ErrDecorate(err, "ReadMatrix")
}

// LoadOutput reads the outputs saved by SaveOutput and SaveNeighborLists.
// Every part is required: a missing or malformed artifact is an error, and
// nothing is returned.
func (C *Collection) LoadOutput(ctx context.Context, st store.Store, priorTag string) (*Output, error) {
	var err error
	ret := new(Output)
	if ret.Coords, err = readFrames(ctx, st, C.key(store.CoordsFile)); err != nil {
		return nil, cg.ErrDecorate(err, "LoadOutput")
	}
	if ret.Forces, err = readFrames(ctx, st, C.key(store.ForcesFile)); err != nil {
		return nil, cg.ErrDecorate(err, "LoadOutput")
	}
	if ret.Embeds, err = readInts(ctx, st, C.key(store.EmbedsFile)); err != nil {
		return nil, cg.ErrDecorate(err, "LoadOutput")
	}
	err = store.Read(ctx, st, C.key(store.StructureFile), func(r io.Reader) error {
		top, frames, err := cg.PDBRead(r)
		if err != nil {
			return err
		}
		if len(frames) == 0 {
			return cg.NewError(cg.ErrCorrupt, "LoadOutput", "structure with no coordinates")
		}
		ret.Topology, ret.Structure = top, frames[0]
		return nil
	})
	if err != nil {
		return nil, cg.ErrDecorate(err, "LoadOutput")
	}
	err = store.Read(ctx, st, store.NeighborListKey(C.Tag, C.Name, priorTag), func(r io.Reader) error {
		var err error
		ret.NeighborLists, err = store.DecodeNeighborLists(r)
		return err
	})
	if err != nil {
		return nil, cg.ErrDecorate(err, "LoadOutput")
	}
	if err := ret.check(); err != nil {
		return nil, cg.ErrDecorate(err, "LoadOutput")
	}
	edits := make([]cg.Edit, len(ret.Embeds))
	for i, e := range ret.Embeds {
		e := e
		edits[i] = cg.Edit{Index: i, Apply: func(a *cg.Atom) { a.Type = e }}
	}
	if ret.Topology, err = ret.Topology.Rebuild(edits); err != nil {
		return nil, cg.ErrDecorate(err, "LoadOutput")
	}
	return ret, nil
}

// check verifies that the parts of O describe the same particles.
func (O *Output) check() error {
	n := O.Topology.Len()
	if len(O.Embeds) != n {
		return cg.NewError(cg.ErrCorrupt, "Output.check", "%d embeddings for %d particles", len(O.Embeds), n)
	}
	if len(O.Coords) != len(O.Forces) {
		return cg.NewError(cg.ErrCorrupt, "Output.check", "%d coordinate frames but %d force frames", len(O.Coords), len(O.Forces))
	}
	for i := range O.Coords {
		if O.Coords[i].NVecs() != n || O.Forces[i].NVecs() != n {
			return cg.NewError(cg.ErrCorrupt, "Output.check", "frame %d doesn't have %d particles", i, n)
		}
	}
	for tag, nl := range O.NeighborLists {
		for _, e := range nl.Edges {
			for _, v := range e {
				if v < 0 || v >= n {
					return cg.NewError(cg.ErrCorrupt, "Output.check", "neighbor list %s refers to particle %d, out of %d", tag, v, n)
				}
			}
		}
	}
	return nil
}

// TrainingInputs are the CG coordinates and the delta forces (the forces
// left after subtracting the prior forces) of a molecule.
type TrainingInputs struct {
	Coords      []*v3.Matrix
	DeltaForces []*v3.Matrix
	Embeds      []int
}

// LoadTrainingInputs reads the CG coordinates and embeddings of the molecule,
// and the delta forces identified by forceTag. Only every stride-th frame is kept.
func (C *Collection) LoadTrainingInputs(ctx context.Context, st store.Store, forceTag string, stride int) (*TrainingInputs, error) {
	if stride < 1 {
		return nil, cg.NewError(cg.ErrConfig, "LoadTrainingInputs", "stride must be positive, got %d", stride)
	}
	var err error
	ret := new(TrainingInputs)
	if ret.Coords, err = readFrames(ctx, st, C.key(store.CoordsFile)); err != nil {
		return nil, cg.ErrDecorate(err, "LoadTrainingInputs")
	}
	if ret.Embeds, err = readInts(ctx, st, C.key(store.EmbedsFile)); err != nil {
		return nil, cg.ErrDecorate(err, "LoadTrainingInputs")
	}
	if ret.DeltaForces, err = readFrames(ctx, st, store.DeltaForcesKey(C.Tag, C.Name, forceTag)); err != nil {
		return nil, cg.ErrDecorate(err, "LoadTrainingInputs")
	}
	if len(ret.Coords) != len(ret.DeltaForces) {
		return nil, cg.NewError(cg.ErrShapeMismatch, "LoadTrainingInputs", "%d coordinate frames but %d delta force frames", len(ret.Coords), len(ret.DeltaForces))
	}
	ret.Coords = strided(ret.Coords, stride)
	ret.DeltaForces = strided(ret.DeltaForces, stride)
	return ret, nil
}

// strided returns every stride-th element of s, starting from the first.
func strided[T any](s []T, stride int) []T {
	if stride == 1 {
		return s
	}
	ret := make([]T, 0, len(s)/stride+1)
	for i := 0; i < len(s); i += stride {
		ret = append(ret, s[i])
	}
	return ret
}
