/*
 * loader.go, part of gocg.
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

package store

import (
	"bytes"
	"context"
	"errors"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/npy"
	"go.uber.org/zap"
)

// InputLoader reads atomistic inputs from a Store. For a molecule name it
// reads the structure from name.pdb, the coordinates from name_coords.npy and
// the forces from name_forces.npy, both [n_frames, n_atoms, 3].
// It implements cg.Loader.
type InputLoader struct {
	Store  Store
	Logger *zap.Logger
}

// Load returns the topology, coordinates and forces of name.
// If there is no coordinates file, the models in the PDB file are used as
// coordinates. If there is no forces file, forces is nil. If the PDB has no
// CONECT records, bonds are assigned from the standard amino acid backbone
// and, if that gives none, from interatomic distances in the first model.
func (L *InputLoader) Load(ctx context.Context, name string) (*cg.Topology, cg.FrameSource, cg.FrameSource, error) {
	log := L.Logger
	if log == nil {
		log = zap.NewNop()
	}
	data, err := L.Store.Get(ctx, inputPDBKey(name))
	if err != nil {
		return nil, nil, nil, cg.ErrDecorate(err, "InputLoader.Load")
	}
	top, models, err := cg.PDBRead(bytes.NewReader(data))
	if err != nil {
		return nil, nil, nil, cg.ErrDecorate(err, "InputLoader.Load")
	}
	if top.NBonds() == 0 {
		top, err = cg.AssignBackboneBonds(top)
		if err != nil {
			return nil, nil, nil, cg.ErrDecorate(err, "InputLoader.Load")
		}
	}
	if top.NBonds() == 0 && len(models) > 0 {
		top, err = cg.AssignBonds(models[0], top)
		if err != nil {
			return nil, nil, nil, cg.ErrDecorate(err, "InputLoader.Load")
		}
		log.Debug("bonds assigned by distance", zap.String("molecule", name), zap.Int("bonds", top.NBonds()))
	}
	coords, err := L.frames(ctx, inputCoordsKey(name), top.Len())
	if err != nil {
		return nil, nil, nil, cg.ErrDecorate(err, "InputLoader.Load")
	}
	if coords == nil {
		coords = cg.MemFrames(models)
	}
	forces, err := L.frames(ctx, inputForcesKey(name), top.Len())
	if err != nil {
		return nil, nil, nil, cg.ErrDecorate(err, "InputLoader.Load")
	}
	if forces == nil {
		log.Info("no forces for molecule", zap.String("molecule", name))
	}
	return top, coords, forces, nil
}

// frames opens the NPY trajectory under key. It returns nil, nil if the key
// is not in the store.
func (L *InputLoader) frames(ctx context.Context, key string, natoms int) (cg.FrameSource, error) {
	obj, err := L.Store.Open(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, cg.ErrDecorate(err, "frames")
	}
	fr, err := npy.NewFrameReader(obj)
	if err != nil {
		return nil, cg.ErrDecorate(err, "frames")
	}
	if fr.NAtoms() != natoms {
		return nil, cg.NewError(cg.ErrShapeMismatch, "frames", "%s has %d atoms, the structure %d", key, fr.NAtoms(), natoms)
	}
	return fr, nil
}
