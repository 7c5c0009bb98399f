/*
 * interfaces.go, part of gocg.
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
	"context"

	v3 "github.com/rmera/gocg/v3"
)

// FrameSource gives access to the frames of a trajectory (coordinates or forces)
// in contiguous ranges, so the whole trajectory doesn't need to be in memory.
type FrameSource interface {
	//NFrames returns the number of frames
	NFrames() int

	//NAtoms returns the number of atoms per frame
	NAtoms() int

	//Frames returns the frames in [start,end). Implementations may read the frames from disk on
	//each call. The returned matrices may be reused by the caller.
	Frames(start, end int) ([]*v3.Matrix, error)
}

// Loader provides the atomistic topology, coordinates and forces for a molecule.
type Loader interface {
	Load(ctx context.Context, name string) (top *Topology, coords, forces FrameSource, err error)
}

// MemFrames is an in-memory FrameSource.
type MemFrames []*v3.Matrix

// NFrames returns the number of frames.
func (M MemFrames) NFrames() int { return len(M) }

// NAtoms returns the number of atoms per frame, or 0 if there are no frames.
func (M MemFrames) NAtoms() int {
	if len(M) == 0 {
		return 0
	}
	return M[0].NVecs()
}

// Frames returns a slice of M. The matrices are not copied.
func (M MemFrames) Frames(start, end int) ([]*v3.Matrix, error) {
	if start < 0 || end > len(M) || start > end {
		return nil, NewError(ErrShapeMismatch, "MemFrames.Frames", "frames [%d,%d) out of range (%d frames)", start, end, len(M))
	}
	return M[start:end], nil
}

// AllFrames reads every frame of src. It returns MemFrames as is.
func AllFrames(src FrameSource) ([]*v3.Matrix, error) {
	if m, ok := src.(MemFrames); ok {
		return m, nil
	}
	f, err := src.Frames(0, src.NFrames())
	if err != nil {
		return nil, ErrDecorate(err, "AllFrames")
	}
	return f, nil
}
