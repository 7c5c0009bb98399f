/*
 * bucket.go, part of gocg.
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
	"context"
	"io"
	"os"
	"sort"
	"strings"

	cg "github.com/rmera/gocg"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" //file:// URLs
	_ "gocloud.dev/blob/memblob"  //mem:// URLs
	"gocloud.dev/gcerrors"
)

// Bucket is a Store on a gocloud.dev blob bucket.
type Bucket struct {
	b *blob.Bucket
}

// OpenBucket opens the bucket at url. file:///path and mem:// are always
// available; other schemes need their gocloud driver linked in the binary.
// The directory of a file bucket is created if needed.
func OpenBucket(ctx context.Context, url string) (*Bucket, error) {
	if strings.HasPrefix(url, "file://") {
		dir := strings.TrimPrefix(url, "file://")
		if i := strings.IndexByte(dir, '?'); i >= 0 {
			dir = dir[:i]
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, cg.WrapError(cg.ErrIO, "OpenBucket", err)
		}
	}
	b, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, cg.WrapError(cg.ErrIO, "OpenBucket", err)
	}
	return &Bucket{b: b}, nil
}

// NewBucket wraps an already open blob bucket. Closing the Bucket closes b.
func NewBucket(b *blob.Bucket) *Bucket {
	return &Bucket{b: b}
}

func bucketError(caller string, err error) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return cg.WrapError(ErrNotFound, caller, err)
	}
	return cg.WrapError(cg.ErrIO, caller, err)
}

// Put writes data under key, replacing what was there.
func (B *Bucket) Put(ctx context.Context, key string, data []byte) error {
	if err := B.b.WriteAll(ctx, key, data, nil); err != nil {
		return bucketError("Bucket.Put", err)
	}
	return nil
}

// Get reads the whole artifact under key.
func (B *Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := B.b.ReadAll(ctx, key)
	if err != nil {
		return nil, bucketError("Bucket.Get", err)
	}
	return data, nil
}

// Open returns an Object that reads ranges of the artifact on demand.
func (B *Bucket) Open(ctx context.Context, key string) (Object, error) {
	attr, err := B.b.Attributes(ctx, key)
	if err != nil {
		return nil, bucketError("Bucket.Open", err)
	}
	return &rangeObject{ctx: ctx, b: B.b, key: key, size: attr.Size}, nil
}

// Exists returns true if key is in the bucket.
func (B *Bucket) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := B.b.Exists(ctx, key)
	if err != nil {
		return false, bucketError("Bucket.Exists", err)
	}
	return ok, nil
}

// List returns the keys starting with prefix, sorted.
func (B *Bucket) List(ctx context.Context, prefix string) ([]string, error) {
	it := B.b.List(&blob.ListOptions{Prefix: prefix})
	ret := make([]string, 0, 8)
	for {
		obj, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, bucketError("Bucket.List", err)
		}
		if !obj.IsDir {
			ret = append(ret, obj.Key)
		}
	}
	sort.Strings(ret)
	return ret, nil
}

// Close closes the underlying bucket.
func (B *Bucket) Close() error {
	return B.b.Close()
}

// rangeObject reads an artifact with range requests, so frame readers
// only fetch the frames they need.
type rangeObject struct {
	ctx  context.Context
	b    *blob.Bucket
	key  string
	size int64
}

func (R *rangeObject) ReadAt(p []byte, off int64) (int, error) {
	if off >= R.size {
		return 0, io.EOF
	}
	r, err := R.b.NewRangeReader(R.ctx, R.key, off, int64(len(p)), nil)
	if err != nil {
		return 0, bucketError("rangeObject.ReadAt", err)
	}
	defer r.Close()
	n, err := io.ReadFull(r, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

func (R *rangeObject) Size() int64  { return R.size }
func (R *rangeObject) Close() error { return nil }
