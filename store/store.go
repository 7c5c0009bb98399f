/*
 * store.go, part of gocg.
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
	"io"

	"github.com/dustin/go-humanize"
	cg "github.com/rmera/gocg"
	"go.uber.org/zap"
)

// ErrNotFound is wrapped by the errors returned when a key is not in a Store.
var ErrNotFound = cg.NewError(cg.ErrIO, "", "artifact not found")

// Object is an artifact opened for random access.
type Object interface {
	io.ReaderAt
	io.Closer
	Size() int64
}

// Store is a flat key-value space for artifacts.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	//Open returns the artifact for random access, without reading it
	//completely if the backend allows.
	Open(ctx context.Context, key string) (Object, error)
	Exists(ctx context.Context, key string) (bool, error)
	//List returns the keys with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Write builds an artifact with fn and puts it in st under key. It returns the
// size of the artifact.
func Write(ctx context.Context, st Store, key string, fn func(io.Writer) error) (int, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return 0, cg.ErrDecorate(err, "store.Write")
	}
	if err := st.Put(ctx, key, buf.Bytes()); err != nil {
		return 0, cg.ErrDecorate(err, "store.Write")
	}
	return buf.Len(), nil
}

// Read gets the artifact under key and decodes it with fn. Decoding errors
// are reported as corrupt artifacts.
func Read(ctx context.Context, st Store, key string, fn func(io.Reader) error) error {
	data, err := st.Get(ctx, key)
	if err != nil {
		return cg.ErrDecorate(err, "store.Read")
	}
	if err := fn(bytes.NewReader(data)); err != nil {
		if cg.KindOf(err) == cg.KindUnknown {
			return cg.WrapError(cg.ErrCorrupt, "store.Read", err)
		}
		return cg.ErrDecorate(err, "store.Read")
	}
	return nil
}

// LogSize logs, at debug level, the size of an artifact just written.
func LogSize(log *zap.Logger, key string, size int) {
	log.Debug("wrote artifact", zap.String("key", key), zap.String("size", humanize.Bytes(uint64(size))))
}

type bytesObject struct {
	*bytes.Reader
}

func (b bytesObject) Close() error { return nil }

// Store backends, for Open.
const (
	BackendBlob   = "blob"   //gocloud.dev URL, such as file:///data/out or mem://
	BackendBadger = "badger" //badger database directory
)

// Open opens the store at location with the given backend.
func Open(ctx context.Context, backend, location string, log *zap.Logger) (Store, error) {
	switch backend {
	case BackendBlob, "":
		return OpenBucket(ctx, location)
	case BackendBadger:
		return OpenBadger(location, log)
	}
	return nil, cg.NewError(cg.ErrConfig, "store.Open", "unknown store backend %q", backend)
}
