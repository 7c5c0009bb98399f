/*
 * frames.go, part of gocg.
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

package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	cg "github.com/rmera/gocg"
	v3 "github.com/rmera/gocg/v3"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

const (
	magic       = "\x93NUMPY"
	headerAlign = 64
)

// writeHeader writes a version 1.0 header for a C-ordered array.
// npyio derives the shape from the Go value it is given, (n,) for slices
// and (r, c) for matrices, so arrays of higher rank need their header
// written here.
func writeHeader(w io.Writer, descr string, shape []int) error {
	dims := make([]string, len(shape))
	for i, v := range shape {
		dims[i] = fmt.Sprint(v)
	}
	s := strings.Join(dims, ", ")
	if len(shape) == 1 {
		s += ","
	}
	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, s)
	pre := len(magic) + 4
	pad := headerAlign - (pre+len(dict)+1)%headerAlign
	if pad == headerAlign {
		pad = 0
	}
	dict += strings.Repeat(" ", pad) + "\n"
	var b bytes.Buffer
	b.WriteString(magic)
	b.Write([]byte{1, 0})
	binary.Write(&b, binary.LittleEndian, uint16(len(dict)))
	b.WriteString(dict)
	_, err := w.Write(b.Bytes())
	return err
}

// WriteFrames writes frames as an [n_frames, n_atoms, 3] '<f8' array.
// All frames must have the same number of atoms.
func WriteFrames(w io.Writer, frames []*v3.Matrix) error {
	natoms := 0
	if len(frames) > 0 {
		natoms = frames[0].NVecs()
	}
	data := make([]float64, 0, len(frames)*natoms*3)
	for i, f := range frames {
		if f.NVecs() != natoms {
			return cg.NewError(cg.ErrShapeMismatch, "WriteFrames", "frame %d has %d atoms, expected %d", i, f.NVecs(), natoms)
		}
		data = append(data, f.Flat()...)
	}
	if err := writeHeader(w, Float64, []int{len(frames), natoms, 3}); err != nil {
		return cg.WrapError(cg.ErrIO, "WriteFrames", err)
	}
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		return cg.WrapError(cg.ErrIO, "WriteFrames", err)
	}
	return nil
}

// ReadFrames reads an [n_frames, n_atoms, 3] array.
func ReadFrames(r io.Reader) ([]*v3.Matrix, error) {
	shape, data, err := ReadFloat64(r)
	if err != nil {
		return nil, cg.ErrDecorate(err, "ReadFrames")
	}
	if len(shape) != 3 || shape[2] != 3 {
		return nil, cg.NewError(cg.ErrCorrupt, "ReadFrames", "shape %v is not [n_frames, n_atoms, 3]", shape)
	}
	return splitFrames(data, shape[0], shape[1])
}

func splitFrames(data []float64, nframes, natoms int) ([]*v3.Matrix, error) {
	ret := make([]*v3.Matrix, nframes)
	size := natoms * 3
	if natoms == 0 && nframes > 0 {
		return nil, cg.NewError(cg.ErrCorrupt, "splitFrames", "frames with no atoms")
	}
	for i := range ret {
		m, err := v3.NewMatrix(data[i*size : (i+1)*size])
		if err != nil {
			return nil, cg.NewError(cg.ErrCorrupt, "splitFrames", "frame %d: %s", i, err.Error())
		}
		ret[i] = m
	}
	return ret, nil
}

// WriteMatrix writes a 2D matrix as a '<f8' array.
func WriteMatrix(w io.Writer, m mat.Matrix) error {
	if err := npyio.Write(w, mat.DenseCopyOf(m)); err != nil {
		return cg.WrapError(cg.ErrIO, "WriteMatrix", err)
	}
	return nil
}

// ReadMatrix reads a 2D array.
func ReadMatrix(r io.Reader) (*mat.Dense, error) {
	shape, data, err := ReadFloat64(r)
	if err != nil {
		return nil, cg.ErrDecorate(err, "ReadMatrix")
	}
	if len(shape) != 2 || shape[0] == 0 || shape[1] == 0 {
		return nil, cg.NewError(cg.ErrCorrupt, "ReadMatrix", "shape %v is not a non-empty matrix", shape)
	}
	return mat.NewDense(shape[0], shape[1], data), nil
}

// ReadInts reads a 1D integer array.
func ReadInts(r io.Reader) ([]int, error) {
	shape, data, err := ReadInt64(r)
	if err != nil {
		return nil, cg.ErrDecorate(err, "ReadInts")
	}
	if len(shape) != 1 {
		return nil, cg.NewError(cg.ErrCorrupt, "ReadInts", "shape %v is not 1D", shape)
	}
	ret := make([]int, len(data))
	for i, x := range data {
		ret[i] = int(x)
	}
	return ret, nil
}

// FrameReader reads frames from an [n_frames, n_atoms, 3] NPY array on demand.
// The header is parsed once by npyio; each call to Frames reads only the
// bytes of the frames requested. It implements cg.FrameSource.
type FrameReader struct {
	ra     io.ReaderAt
	h      *Header
	dt     dtype
	natoms int
}

// NewFrameReader reads the header of the array in ra.
func NewFrameReader(ra io.ReaderAt) (*FrameReader, error) {
	h, err := ReadHeader(io.NewSectionReader(ra, 0, 1<<20))
	if err != nil {
		return nil, cg.ErrDecorate(err, "NewFrameReader")
	}
	if len(h.Shape) != 3 || h.Shape[2] != 3 {
		return nil, cg.NewError(cg.ErrCorrupt, "NewFrameReader", "shape %v is not [n_frames, n_atoms, 3]", h.Shape)
	}
	dt, err := h.dtype()
	if err != nil {
		return nil, cg.ErrDecorate(err, "NewFrameReader")
	}
	return &FrameReader{ra: ra, h: h, dt: dt, natoms: h.Shape[1]}, nil
}

// NFrames returns the number of frames in the array.
func (F *FrameReader) NFrames() int { return F.h.Shape[0] }

// NAtoms returns the number of atoms per frame.
func (F *FrameReader) NAtoms() int { return F.natoms }

// Frames reads the frames in [start, end).
func (F *FrameReader) Frames(start, end int) ([]*v3.Matrix, error) {
	if start < 0 || end > F.NFrames() || start > end {
		return nil, cg.NewError(cg.ErrShapeMismatch, "FrameReader.Frames", "frames [%d,%d) out of range (%d frames)", start, end, F.NFrames())
	}
	n := (end - start) * F.natoms * 3
	fsize := int64(F.natoms * 3 * F.dt.size)
	sr := io.NewSectionReader(F.ra, F.h.Offset+int64(start)*fsize, int64(end-start)*fsize)
	data, err := F.decode(sr, n)
	if err != nil {
		return nil, cg.WrapError(cg.ErrCorrupt, "FrameReader.Frames", err)
	}
	return splitFrames(data, end-start, F.natoms)
}

// decode reads n elements of the reader's dtype as float64.
func (F *FrameReader) decode(r io.Reader, n int) ([]float64, error) {
	ret := make([]float64, n)
	var err error
	switch F.h.Descr[1:] {
	case "f8":
		err = binary.Read(r, F.dt.order, ret)
	case "f4":
		v := make([]float32, n)
		err = binary.Read(r, F.dt.order, v)
		for i, x := range v {
			ret[i] = float64(x)
		}
	case "i8":
		v := make([]int64, n)
		err = binary.Read(r, F.dt.order, v)
		for i, x := range v {
			ret[i] = float64(x)
		}
	case "i4":
		v := make([]int32, n)
		err = binary.Read(r, F.dt.order, v)
		for i, x := range v {
			ret[i] = float64(x)
		}
	}
	return ret, err
}
