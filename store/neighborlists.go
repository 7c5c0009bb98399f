/*
 * neighborlists.go, part of gocg.
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
	"io"

	"github.com/klauspost/compress/zstd"
	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/prior"
	"github.com/vmihailenco/msgpack/v5"
)

// nlBlob is the serialized form of a set of neighbor lists. Lists are sorted
// by tag so equal inputs give equal bytes.
type nlBlob struct {
	Version string               `msgpack:"version"`
	Lists   []prior.NeighborList `msgpack:"lists"`
}

// EncodeNeighborLists writes nl to w, msgpack-encoded and zstd-compressed.
func EncodeNeighborLists(w io.Writer, nl prior.NeighborLists) error {
	b := nlBlob{Version: FormatVersion.String(), Lists: make([]prior.NeighborList, 0, len(nl))}
	for _, tag := range nl.Tags() {
		l := nl[tag]
		if l.Tag == "" {
			l.Tag = tag
		}
		if l.Tag != tag {
			return cg.NewError(cg.ErrConfig, "EncodeNeighborLists", "neighbor list %q stored under tag %q", l.Tag, tag)
		}
		b.Lists = append(b.Lists, l)
	}
	data, err := msgpack.Marshal(&b)
	if err != nil {
		return cg.WrapError(cg.ErrIO, "EncodeNeighborLists", err)
	}
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return cg.WrapError(cg.ErrIO, "EncodeNeighborLists", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return cg.WrapError(cg.ErrIO, "EncodeNeighborLists", err)
	}
	if err := zw.Close(); err != nil {
		return cg.WrapError(cg.ErrIO, "EncodeNeighborLists", err)
	}
	return nil
}

// DecodeNeighborLists reads neighbor lists written by EncodeNeighborLists. Any
// problem is reported as a corrupt artifact; nothing is returned partially.
func DecodeNeighborLists(r io.Reader) (prior.NeighborLists, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, cg.WrapError(cg.ErrCorrupt, "DecodeNeighborLists", err)
	}
	defer zr.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(zr); err != nil {
		return nil, cg.WrapError(cg.ErrCorrupt, "DecodeNeighborLists", err)
	}
	var b nlBlob
	if err := msgpack.Unmarshal(buf.Bytes(), &b); err != nil {
		return nil, cg.WrapError(cg.ErrCorrupt, "DecodeNeighborLists", err)
	}
	if err := checkVersion(b.Version); err != nil {
		return nil, cg.ErrDecorate(err, "DecodeNeighborLists")
	}
	ret := make(prior.NeighborLists, len(b.Lists))
	for _, l := range b.Lists {
		if _, ok := ret[l.Tag]; ok {
			return nil, cg.NewError(cg.ErrCorrupt, "DecodeNeighborLists", "tag %q found twice", l.Tag)
		}
		if err := prior.CheckDuplicates(l.Tag, l.Order, l.Edges); err != nil {
			return nil, cg.WrapError(cg.ErrCorrupt, "DecodeNeighborLists", err)
		}
		if l.Edges == nil {
			l.Edges = []prior.Edge{}
		}
		ret[l.Tag] = l
	}
	return ret, nil
}
