/*
 * npy.go, part of gocg.
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

// Package npy reads and writes gocg arrays in the NPY format, so outputs can
// be loaded directly with numpy.load. Parsing and most writing is done by
// github.com/sbinet/npyio.
//
// Only C-ordered arrays are supported. Float arrays are written as '<f8'
// and integer arrays as '<i8'. For reading, '<f4', '<f8', '<i4' and '<i8'
// (and their big-endian versions) are accepted.
package npy

import (
	"encoding/binary"
	"io"

	cg "github.com/rmera/gocg"
	"github.com/sbinet/npyio"
)

const (
	// Float64 is the descriptor for little-endian float64 arrays.
	Float64 = "<f8"
	// Int64 is the descriptor for little-endian int64 arrays.
	Int64 = "<i8"
)

// Header describes an NPY array.
type Header struct {
	Descr string
	Shape []int
	//size in bytes of the magic string, version and header dictionary.
	Offset int64
}

// Len returns the number of elements in the array.
func (H *Header) Len() int {
	n := 1
	for _, v := range H.Shape {
		n *= v
	}
	return n
}

// dtype is the element type of an array.
type dtype struct {
	order binary.ByteOrder
	float bool
	size  int
}

func (H *Header) dtype() (dtype, error) {
	var d dtype
	if len(H.Descr) != 3 {
		return d, cg.NewError(cg.ErrCorrupt, "npy.dtype", "unsupported dtype %q", H.Descr)
	}
	switch H.Descr[0] {
	case '<', '|':
		d.order = binary.LittleEndian
	case '>':
		d.order = binary.BigEndian
	default:
		return d, cg.NewError(cg.ErrCorrupt, "npy.dtype", "unsupported byte order in %q", H.Descr)
	}
	switch H.Descr[1:] {
	case "f8", "i8":
		d.size = 8
	case "f4", "i4":
		d.size = 4
	default:
		return d, cg.NewError(cg.ErrCorrupt, "npy.dtype", "unsupported dtype %q", H.Descr)
	}
	d.float = H.Descr[1] == 'f'
	return d, nil
}

// countingReader counts the bytes read through it, which gives the offset of
// the data once npyio has parsed the header.
type countingReader struct {
	r io.Reader
	n int64
}

func (C *countingReader) Read(p []byte) (int, error) {
	n, err := C.r.Read(p)
	C.n += int64(n)
	return n, err
}

// open parses the header in r with npyio. The returned reader is positioned
// at the start of the data.
func open(r io.Reader) (*Header, *npyio.Reader, error) {
	cr := &countingReader{r: r}
	nr, err := npyio.NewReader(cr)
	if err != nil {
		return nil, nil, cg.WrapError(cg.ErrCorrupt, "npy.open", err)
	}
	if nr.Header.Descr.Fortran {
		return nil, nil, cg.NewError(cg.ErrCorrupt, "npy.open", "only C-ordered arrays are supported")
	}
	h := &Header{Descr: nr.Header.Descr.Type, Shape: nr.Header.Descr.Shape, Offset: cr.n}
	if _, err := h.dtype(); err != nil {
		return nil, nil, cg.ErrDecorate(err, "npy.open")
	}
	return h, nr, nil
}

// ReadHeader reads the NPY header from r, leaving r at the start of the data.
func ReadHeader(r io.Reader) (*Header, error) {
	h, _, err := open(r)
	if err != nil {
		return nil, cg.ErrDecorate(err, "ReadHeader")
	}
	return h, nil
}

// readValues reads the data of an array, as float64 for float arrays and as
// int64 for integer ones. Only one of the returned slices is non-nil.
func readValues(r io.Reader) (*Header, []float64, []int64, error) {
	h, nr, err := open(r)
	if err != nil {
		return nil, nil, nil, err
	}
	n := h.Len()
	var f []float64
	var i []int64
	switch h.Descr[1:] {
	case "f8":
		f = make([]float64, n)
		err = nr.Read(&f)
	case "f4":
		v := make([]float32, n)
		if err = nr.Read(&v); err == nil {
			f = make([]float64, len(v))
			for k, x := range v {
				f[k] = float64(x)
			}
		}
	case "i8":
		i = make([]int64, n)
		err = nr.Read(&i)
	case "i4":
		v := make([]int32, n)
		if err = nr.Read(&v); err == nil {
			i = make([]int64, len(v))
			for k, x := range v {
				i[k] = int64(x)
			}
		}
	}
	if err != nil {
		return nil, nil, nil, cg.WrapError(cg.ErrCorrupt, "npy.readValues", err)
	}
	if len(f)+len(i) != n {
		return nil, nil, nil, cg.NewError(cg.ErrCorrupt, "npy.readValues", "read %d values for shape %v", len(f)+len(i), h.Shape)
	}
	return h, f, i, nil
}

// ReadFloat64 reads a whole array, converting it to float64.
func ReadFloat64(r io.Reader) ([]int, []float64, error) {
	h, f, i, err := readValues(r)
	if err != nil {
		return nil, nil, cg.ErrDecorate(err, "ReadFloat64")
	}
	if f == nil {
		f = make([]float64, len(i))
		for k, x := range i {
			f[k] = float64(x)
		}
	}
	return h.Shape, f, nil
}

// ReadInt64 reads a whole integer array. Float arrays are an error.
func ReadInt64(r io.Reader) ([]int, []int64, error) {
	h, f, i, err := readValues(r)
	if err != nil {
		return nil, nil, cg.ErrDecorate(err, "ReadInt64")
	}
	if f != nil {
		return nil, nil, cg.NewError(cg.ErrCorrupt, "ReadInt64", "expected an integer array, got %q", h.Descr)
	}
	if i == nil {
		i = []int64{}
	}
	return h.Shape, i, nil
}

// WriteFloats writes a 1D '<f8' array.
func WriteFloats(w io.Writer, v []float64) error {
	if err := npyio.Write(w, v); err != nil {
		return cg.WrapError(cg.ErrIO, "WriteFloats", err)
	}
	return nil
}

// WriteInts writes a 1D '<i8' array.
func WriteInts(w io.Writer, v []int) error {
	data := make([]int64, len(v))
	for i, x := range v {
		data[i] = int64(x)
	}
	if err := npyio.Write(w, data); err != nil {
		return cg.WrapError(cg.ErrIO, "WriteInts", err)
	}
	return nil
}
