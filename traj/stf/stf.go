/*
 * stf.go, part of gocg.
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

package stf

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	cg "github.com/rmera/gocg"
	v3 "github.com/rmera/gocg/v3"
)

// DefaultPrecision is the number of decimal places kept when no "prec" key
// is given in the header.
const DefaultPrecision = 2

// Writer writes an STF trajectory.
type Writer struct {
	z         *zstd.Encoder
	h         *bufio.Writer
	natoms    int
	prec      int
	writeable bool
}

// NewWriter returns a writer for trajectories of natoms atoms to w. The header
// pairs are written in key order. The "prec" key, if present, sets the
// precision; it is added with the default value otherwise.
func NewWriter(w io.Writer, natoms int, header map[string]string) (*Writer, error) {
	z, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, cg.WrapError(cg.ErrIO, "stf.NewWriter", err)
	}
	S := &Writer{z: z, h: bufio.NewWriter(z), natoms: natoms, prec: DefaultPrecision, writeable: true}
	hd := make(map[string]string, len(header)+1)
	for k, v := range header {
		if strings.ContainsAny(k+v, "=\n") || strings.HasPrefix(k, "*") {
			return nil, cg.NewError(cg.ErrConfig, "stf.NewWriter", "invalid header pair %q=%q", k, v)
		}
		hd[k] = v
	}
	if p, ok := hd["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec < 1 {
			return nil, cg.NewError(cg.ErrConfig, "stf.NewWriter", "invalid precision %q", p)
		}
		S.prec = prec
	} else {
		hd["prec"] = strconv.Itoa(S.prec)
	}
	keys := make([]string, 0, len(hd))
	for k := range hd {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(S.h, "%s=%s\n", k, hd[k])
	}
	fmt.Fprintf(S.h, "** %d\n", S.natoms)
	return S, nil
}

// Len returns the number of atoms per frame.
func (S *Writer) Len() int {
	return S.natoms
}

// WNext writes a frame. If box is given and has at least 9 elements,
// they are written as the box vectors of the frame.
func (S *Writer) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return cg.NewError(cg.ErrIO, "WNext", "writer closed")
	}
	if coord == nil {
		return cg.NewError(cg.ErrShapeMismatch, "WNext", "nil coordinates")
	}
	if v := coord.NVecs(); v != S.natoms {
		return cg.NewError(cg.ErrShapeMismatch, "WNext", "%d coordinates given, but %d expected", v, S.natoms)
	}
	var floats [3]float64
	for i := 0; i < S.natoms; i++ {
		floats[0] = coord.At(i, 0)
		floats[1] = coord.At(i, 1)
		floats[2] = coord.At(i, 2)
		S.h.WriteString(coordsEncode(floats, S.prec))
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		fmt.Fprintf(S.h, "* %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f\n", b[0],
			b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		S.h.WriteString("*\n")
	}
	return nil
}

// Close flushes the trajectory and closes the compressor. It does not close
// the underlying writer.
func (S *Writer) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	if err := S.h.Flush(); err != nil {
		S.z.Close()
		return cg.WrapError(cg.ErrIO, "stf.Close", err)
	}
	if err := S.z.Close(); err != nil {
		return cg.WrapError(cg.ErrIO, "stf.Close", err)
	}
	return nil
}

func coordsEncode(f [3]float64, prec int) string {
	p := 100.0
	if prec != 2 {
		p = math.Pow(10.0, float64(prec))
	}
	var temp [3]int
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := 100.0
	if prec != 2 {
		p = math.Pow(10.0, float64(prec))
	}
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("ill formated coordinates line in stf: %d fields in %q", len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("can't parse coordinate %d (%s): %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

// Reader reads an STF trajectory.
type Reader struct {
	z        *zstd.Decoder
	h        *bufio.Reader
	natoms   int
	prec     int
	readable bool
}

// NewReader reads the header of the trajectory in r and returns a reader for its
// frames plus the header pairs.
func NewReader(r io.Reader) (*Reader, map[string]string, error) {
	z, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, cg.WrapError(cg.ErrCorrupt, "stf.NewReader", err)
	}
	S := &Reader{z: z, h: bufio.NewReader(z), natoms: -1, prec: DefaultPrecision}
	m := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			z.Close()
			return nil, nil, cg.NewError(cg.ErrCorrupt, "stf.NewReader", "can't read header: %s", err.Error())
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				z.Close()
				return nil, nil, cg.NewError(cg.ErrCorrupt, "stf.NewReader", "no atom number in %q", str)
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms < 1 {
				z.Close()
				return nil, nil, cg.NewError(cg.ErrCorrupt, "stf.NewReader", "can't read atom number from %q", nat[1])
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			z.Close()
			return nil, nil, cg.NewError(cg.ErrCorrupt, "stf.NewReader", "malformed header line %q", str)
		}
		m[kv[0]] = kv[1]
	}
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err != nil || prec < 1 {
			z.Close()
			return nil, nil, cg.NewError(cg.ErrCorrupt, "stf.NewReader", "invalid precision %q", p)
		}
		S.prec = prec
	}
	S.readable = true
	return S, m, nil
}

// Len returns the number of atoms in each frame.
func (S *Reader) Len() int {
	return S.natoms
}

// Next puts in c the coordinates of the next frame and, if box is given and
// the frame has box information, the box vectors in box[0]. If c is nil the
// frame is read and checked, but discarded. At the end of the trajectory it
// returns io.EOF and closes the reader.
func (S *Reader) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return io.EOF
	}
	if c != nil && c.NVecs() != S.natoms {
		return cg.NewError(cg.ErrShapeMismatch, "stf.Next", "matrix for %d atoms, frames have %d", c.NVecs(), S.natoms)
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err == io.EOF && i == 0 && b == "" {
			//the trajectory just ended.
			S.Close()
			return io.EOF
		}
		if err != nil {
			return cg.WrapError(cg.ErrCorrupt, "stf.Next", err)
		}
		if err := coordsDecode(strings.TrimSuffix(b, "\n"), &temp, S.prec); err != nil {
			return cg.WrapError(cg.ErrCorrupt, "stf.Next", err)
		}
		if c == nil {
			continue
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil {
		return cg.NewError(cg.ErrCorrupt, "stf.Next", "can't read the frame termination mark: %s", err.Error())
	}
	if s == "" || s[0] != '*' {
		return cg.NewError(cg.ErrCorrupt, "stf.Next", "wrong number of atoms in frame")
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		fields := strings.Fields(s)
		if len(fields) < 10 {
			for i := range box[0] {
				box[0][i] = 0
			}
			return nil
		}
		for j, v := range fields[1:10] {
			box[0][j], err = strconv.ParseFloat(v, 64)
			if err != nil {
				return cg.NewError(cg.ErrCorrupt, "stf.Next", "bad box vector %q", v)
			}
		}
	}
	return nil
}

// Close closes the reader.
func (S *Reader) Close() {
	if !S.readable {
		return
	}
	S.z.Close()
	S.readable = false
}

// WriteAll writes frames as an STF trajectory to w.
func WriteAll(w io.Writer, frames []*v3.Matrix, header map[string]string) error {
	if len(frames) == 0 {
		return cg.NewError(cg.ErrShapeMismatch, "stf.WriteAll", "no frames")
	}
	S, err := NewWriter(w, frames[0].NVecs(), header)
	if err != nil {
		return cg.ErrDecorate(err, "stf.WriteAll")
	}
	for _, f := range frames {
		if err := S.WNext(f); err != nil {
			S.Close()
			return cg.ErrDecorate(err, "stf.WriteAll")
		}
	}
	return cg.ErrDecorate(S.Close(), "stf.WriteAll")
}

// ReadAll reads all the frames of an STF trajectory.
func ReadAll(r io.Reader) ([]*v3.Matrix, map[string]string, error) {
	S, m, err := NewReader(r)
	if err != nil {
		return nil, nil, cg.ErrDecorate(err, "stf.ReadAll")
	}
	defer S.Close()
	ret := make([]*v3.Matrix, 0, 16)
	for {
		c := v3.Zeros(S.Len())
		err := S.Next(c)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, cg.ErrDecorate(err, "stf.ReadAll")
		}
		ret = append(ret, c)
	}
	return ret, m, nil
}
