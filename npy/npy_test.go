/*
 * npy_test.go, part of gocg.
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
	"errors"
	"testing"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestHeader(Te *testing.T) {
	var buf bytes.Buffer
	require.NoError(Te, WriteMatrix(&buf, mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})))
	b := buf.Bytes()
	assert.Equal(Te, magic, string(b[:6]))
	h, err := ReadHeader(bytes.NewReader(b))
	require.NoError(Te, err)
	assert.Equal(Te, Float64, h.Descr)
	assert.Equal(Te, []int{2, 3}, h.Shape)
	assert.Equal(Te, int(h.Offset)+6*8, len(b))
	assert.Equal(Te, byte('\n'), b[h.Offset-1])

	buf.Reset()
	require.NoError(Te, WriteFrames(&buf, fixture.Frames(2, 5, 0.1)))
	b = buf.Bytes()
	h, err = ReadHeader(bytes.NewReader(b))
	require.NoError(Te, err)
	assert.Equal(Te, []int{2, 5, 3}, h.Shape)
	assert.Zero(Te, h.Offset%headerAlign)
	assert.Equal(Te, int(h.Offset)+2*5*3*8, len(b))
}

func TestOneDimensional(Te *testing.T) {
	var buf bytes.Buffer
	require.NoError(Te, WriteInts(&buf, []int{3, 1, 4, 1, 5}))
	h, err := ReadHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(Te, err)
	assert.Equal(Te, []int{5}, h.Shape)
	assert.Equal(Te, Int64, h.Descr)
	v, err := ReadInts(&buf)
	require.NoError(Te, err)
	assert.Equal(Te, []int{3, 1, 4, 1, 5}, v)
}

func TestFramesRoundTrip(Te *testing.T) {
	frames := fixture.Frames(4, 7, 0.3)
	var buf bytes.Buffer
	require.NoError(Te, WriteFrames(&buf, frames))
	back, err := ReadFrames(bytes.NewReader(buf.Bytes()))
	require.NoError(Te, err)
	require.Len(Te, back, 4)
	for i := range frames {
		assert.True(Te, frames[i].Equal(back[i]), "frame %d", i)
	}

	fr, err := NewFrameReader(bytes.NewReader(buf.Bytes()))
	require.NoError(Te, err)
	assert.Equal(Te, 4, fr.NFrames())
	assert.Equal(Te, 7, fr.NAtoms())
	some, err := fr.Frames(1, 3)
	require.NoError(Te, err)
	require.Len(Te, some, 2)
	assert.True(Te, frames[1].Equal(some[0]))
	assert.True(Te, frames[2].Equal(some[1]))
	all, err := cg.AllFrames(fr)
	require.NoError(Te, err)
	assert.Len(Te, all, 4)
	_, err = fr.Frames(2, 5)
	assert.True(Te, errors.Is(err, cg.ErrShapeMismatch))
}

func TestMatrixRoundTrip(Te *testing.T) {
	m := mat.NewDense(2, 4, []float64{1, 0, 0, 0, 0, 0, 0.25, 0.75})
	var buf bytes.Buffer
	require.NoError(Te, WriteMatrix(&buf, m))
	back, err := ReadMatrix(&buf)
	require.NoError(Te, err)
	assert.True(Te, mat.Equal(m, back))
}

func TestReadFloat32(Te *testing.T) {
	//numpy.save of np.array([[1.5, -2]], dtype='>f4'), hand built.
	var buf bytes.Buffer
	require.NoError(Te, writeHeader(&buf, ">f4", []int{1, 2}))
	buf.Write([]byte{0x3f, 0xc0, 0, 0, 0xc0, 0, 0, 0})
	shape, data, err := ReadFloat64(bytes.NewReader(buf.Bytes()))
	require.NoError(Te, err)
	assert.Equal(Te, []int{1, 2}, shape)
	assert.Equal(Te, []float64{1.5, -2}, data)
}

func TestFrameReaderInts(Te *testing.T) {
	//np.arange(12, dtype='<i4').reshape(2, 2, 3)
	var buf bytes.Buffer
	require.NoError(Te, writeHeader(&buf, "<i4", []int{2, 2, 3}))
	for i := int32(0); i < 12; i++ {
		require.NoError(Te, binary.Write(&buf, binary.LittleEndian, i))
	}
	fr, err := NewFrameReader(bytes.NewReader(buf.Bytes()))
	require.NoError(Te, err)
	f, err := fr.Frames(1, 2)
	require.NoError(Te, err)
	require.Len(Te, f, 1)
	assert.Equal(Te, []float64{6, 7, 8, 9, 10, 11}, f[0].Flat())

	trunc := buf.Bytes()[:buf.Len()-4]
	fr, err = NewFrameReader(bytes.NewReader(trunc))
	require.NoError(Te, err)
	_, err = fr.Frames(0, 2)
	assert.Equal(Te, cg.KindCorrupt, cg.KindOf(err))
}

func TestCorrupt(Te *testing.T) {
	_, _, err := ReadFloat64(bytes.NewReader([]byte("not a numpy file at all")))
	assert.True(Te, errors.Is(err, cg.ErrCorrupt))

	var buf bytes.Buffer
	require.NoError(Te, WriteFloats(&buf, make([]float64, 10)))
	trunc := buf.Bytes()[:buf.Len()-5]
	_, _, err = ReadFloat64(bytes.NewReader(trunc))
	assert.Equal(Te, cg.KindCorrupt, cg.KindOf(err))

	buf.Reset()
	require.NoError(Te, writeHeader(&buf, "<c16", []int{1}))
	_, _, err = ReadFloat64(&buf)
	assert.Equal(Te, cg.KindCorrupt, cg.KindOf(err))

	_, err = ReadInts(bytes.NewReader(mustFloat(Te)))
	assert.Equal(Te, cg.KindCorrupt, cg.KindOf(err))

	buf.Reset()
	require.NoError(Te, writeHeader(&buf, "<f8", []int{2, 1, 3}))
	_, _, err = ReadFloat64(&buf)
	assert.Equal(Te, cg.KindCorrupt, cg.KindOf(err))

	mixed := append(fixture.Frames(1, 3, 0.1), fixture.Frames(1, 4, 0.1)...)
	err = WriteFrames(&buf, mixed)
	assert.True(Te, errors.Is(err, cg.ErrShapeMismatch))
}

func mustFloat(Te *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(Te, WriteFloats(&buf, []float64{1, 2}))
	return buf.Bytes()
}
