/*
 * errors.go, part of gocg.
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
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can react programmatically.
type Kind int

const (
	KindUnknown Kind = iota
	KindShape
	KindPrecondition
	KindDegenerateMapping
	KindConfig
	KindDuplicateEdge
	KindCorrupt
	KindIO
)

func (K Kind) String() string {
	switch K {
	case KindShape:
		return "shape"
	case KindPrecondition:
		return "precondition"
	case KindDegenerateMapping:
		return "degenerate mapping"
	case KindConfig:
		return "config"
	case KindDuplicateEdge:
		return "duplicate edge"
	case KindCorrupt:
		return "corrupt artifact"
	case KindIO:
		return "io"
	}
	return "unknown"
}

// Error is the error type used across gocg. It keeps a decoration
// scheme: Decorate adds the name of each function the error passes through,
// so the error carries its own call trail. It also wraps a sentinel (or
// a lower-level error), so errors.Is and errors.As work as usual.
type Error struct {
	message  string
	kind     Kind
	deco     []string
	critical bool
	err      error
}

// Sentinels. Errors returned by gocg wrap one of these, so
//
//	errors.Is(err, cg.ErrNotMapped)
//
// identifies a precondition violation without parsing messages.
var (
	ErrShapeMismatch     = &Error{message: "coordinate and force arrays have different shapes", kind: KindShape, critical: true}
	ErrNotMapped         = &Error{message: "CG mapping has not been applied", kind: KindPrecondition, critical: true}
	ErrNotProjected      = &Error{message: "coordinates and forces have not been projected", kind: KindPrecondition, critical: true}
	ErrNotListed         = &Error{message: "prior neighbor lists have not been built", kind: KindPrecondition, critical: true}
	ErrNoInput           = &Error{message: "atomistic input has not been loaded", kind: KindPrecondition, critical: true}
	ErrDegenerateMapping = &Error{message: "selection mapping is not unique or not linear", kind: KindDegenerateMapping, critical: true}
	ErrConfig            = &Error{message: "invalid configuration", kind: KindConfig, critical: true}
	ErrDuplicateEdge     = &Error{message: "duplicate edge in neighbor list", kind: KindDuplicateEdge, critical: true}
	ErrCorrupt           = &Error{message: "malformed or unreadable artifact", kind: KindCorrupt, critical: true}
	ErrIO                = &Error{message: "input/output failure", kind: KindIO, critical: true}
)

// NewError returns an Error of the kind of base that wraps base, with the message
// built from format and a and the given caller as first decoration.
func NewError(base *Error, caller string, format string, a ...interface{}) *Error {
	e := &Error{message: fmt.Sprintf(format, a...), kind: base.kind, critical: base.critical, err: base}
	if caller != "" {
		e.deco = []string{caller}
	}
	return e
}

// WrapError returns an Error of the kind of base that wraps cause. The cause
// message is kept. errors.Is matches both base and cause.
func WrapError(base *Error, caller string, cause error) *Error {
	e := &Error{message: cause.Error(), kind: base.kind, critical: base.critical, err: &wrapped{base: base, cause: cause}}
	if caller != "" {
		e.deco = []string{caller}
	}
	return e
}

func (E *Error) Error() string {
	if E.err == nil {
		return "gocg: " + E.message
	}
	if len(E.deco) == 0 {
		return fmt.Sprintf("gocg: %s: %s", E.kind, E.message)
	}
	return fmt.Sprintf("gocg: %s: %s (%s)", E.kind, E.message, E.deco[0])
}

// Decorate adds information to the error, normally the name of the
// function calling. It returns the current decoration slice. Passing an
// empty string only returns the slice.
func (E *Error) Decorate(dec string) []string {
	if dec != "" {
		E.deco = append(E.deco, dec)
	}
	return E.deco
}

// Critical returns true if the error should stop the processing of the molecule.
func (E *Error) Critical() bool { return E.critical }

// Kind returns the classification of the error.
func (E *Error) Kind() Kind { return E.kind }

// Unwrap returns the sentinel or cause wrapped by E.
func (E *Error) Unwrap() error { return E.err }

// wrapped lets an Error match both its sentinel and its cause.
type wrapped struct {
	base  *Error
	cause error
}

func (w *wrapped) Error() string   { return w.cause.Error() }
func (w *wrapped) Unwrap() []error { return []error{w.base, w.cause} }

// ErrDecorate decorates err with caller if err is (or wraps) a *Error, and returns err.
// Other errors are returned untouched.
func ErrDecorate(err error, caller string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}

// KindOf returns the Kind of err, or KindUnknown if err is not a gocg error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}
