/*
 * badger.go, part of gocg.
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
	"os"

	"github.com/dgraph-io/badger/v3"
	cg "github.com/rmera/gocg"
	"go.uber.org/zap"
)

// Badger is a Store on an embedded badger database. It is handy to keep many
// small molecules in a single directory.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (creating it if needed) the badger database in the
// directory path. An empty path gives an in-memory database.
func OpenBadger(path string, log *zap.Logger) (*Badger, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(path, 0755); err != nil {
		return nil, cg.WrapError(cg.ErrIO, "OpenBadger", err)
	}
	opts = opts.WithLogger(badgerLogger{log.Sugar()}).WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, cg.WrapError(cg.ErrIO, "OpenBadger", err)
	}
	return &Badger{db: db}, nil
}

// Put stores data under key.
func (B *Badger) Put(ctx context.Context, key string, data []byte) error {
	err := B.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return cg.WrapError(cg.ErrIO, "Badger.Put", err)
	}
	return nil
}

// Get returns a copy of the value under key.
func (B *Badger) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := B.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, cg.WrapError(ErrNotFound, "Badger.Get", err)
	}
	if err != nil {
		return nil, cg.WrapError(cg.ErrIO, "Badger.Get", err)
	}
	return value, nil
}

// Open reads the value under key, as badger values are read whole anyway.
func (B *Badger) Open(ctx context.Context, key string) (Object, error) {
	v, err := B.Get(ctx, key)
	if err != nil {
		return nil, cg.ErrDecorate(err, "Badger.Open")
	}
	return bytesObject{bytes.NewReader(v)}, nil
}

// Exists returns true if key is in the database.
func (B *Badger) Exists(ctx context.Context, key string) (bool, error) {
	err := B.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, cg.WrapError(cg.ErrIO, "Badger.Exists", err)
	}
	return true, nil
}

// List returns the keys starting with prefix, in order.
func (B *Badger) List(ctx context.Context, prefix string) ([]string, error) {
	ret := make([]string, 0, 8)
	p := []byte(prefix)
	err := B.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // key only
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			ret = append(ret, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, cg.WrapError(cg.ErrIO, "Badger.List", err)
	}
	return ret, nil
}

// Close closes the database.
func (B *Badger) Close() error {
	return B.db.Close()
}

// badgerLogger sends badger's messages to zap. Badger is chatty at info
// level, so those go to debug.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, a ...interface{})   { l.s.Errorf(f, a...) }
func (l badgerLogger) Warningf(f string, a ...interface{}) { l.s.Warnf(f, a...) }
func (l badgerLogger) Infof(f string, a ...interface{})    { l.s.Debugf(f, a...) }
func (l badgerLogger) Debugf(f string, a ...interface{})   { l.s.Debugf(f, a...) }
