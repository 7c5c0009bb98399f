/*
 * collection.go, part of gocg.
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

package sample

import (
	"fmt"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/mapping"
	"github.com/rmera/gocg/prior"
	"github.com/rmera/gocg/project"
	v3 "github.com/rmera/gocg/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Stage is the processing stage of a Collection.
type Stage int

const (
	Unmapped Stage = iota
	Mapped
	Projected
	NeighborListed
	Persisted
)

func (S Stage) String() string {
	switch S {
	case Unmapped:
		return "unmapped"
	case Mapped:
		return "mapped"
	case Projected:
		return "projected"
	case NeighborListed:
		return "neighbor-listed"
	case Persisted:
		return "persisted"
	}
	return fmt.Sprintf("Stage(%d)", int(S))
}

// Collection holds one molecule and the CG artifacts derived from it.
// A Collection must not be used from more than one goroutine at a time.
type Collection struct {
	Name string
	Tag  string

	log *zap.Logger

	//Each artifact is nil until its stage is reached, and is set back to
	//nil when an earlier stage is redone.
	atomistic *cg.Topology
	ref       *v3.Matrix //atomistic reference frame
	mapped    *mapping.Result
	cgref     *v3.Matrix //reference frame, CG
	proj      *project.Result
	nls       prior.NeighborLists
	saved     *SaveReport
	nlsSaved  bool
}

// New returns an unmapped collection for the molecule name in the dataset
// with the given tag. A nil logger discards the logs.
func New(name, tag string, log *zap.Logger) *Collection {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collection{Name: name, Tag: tag, log: log.With(zap.String("molecule", name))}
}

// Stage returns the latest stage reached. A collection is Persisted once its
// outputs are saved and, if it has neighbor lists, those are saved too.
func (C *Collection) Stage() Stage {
	switch {
	case C.mapped == nil:
		return Unmapped
	case C.saved != nil && (C.nls == nil || C.nlsSaved):
		return Persisted
	case C.nls != nil:
		return NeighborListed
	case C.proj != nil:
		return Projected
	}
	return Mapped
}

// SetInput gives the collection its atomistic topology and a reference
// frame of coordinates. Every artifact derived from a previous input is dropped.
func (C *Collection) SetInput(top *cg.Topology, ref *v3.Matrix) error {
	if top == nil || ref == nil {
		return cg.NewError(cg.ErrNoInput, "SetInput", "nil topology or reference frame")
	}
	if ref.NVecs() != top.Len() {
		return cg.NewError(cg.ErrShapeMismatch, "SetInput", "%d coordinates for %d atoms", ref.NVecs(), top.Len())
	}
	C.atomistic = top
	C.ref = ref
	C.reset(Unmapped)
	return nil
}

// reset drops the artifacts of every stage after s.
func (C *Collection) reset(s Stage) {
	if s < Mapped {
		C.mapped = nil
		C.cgref = nil
	}
	if s < Projected {
		C.proj = nil
	}
	if s < NeighborListed {
		C.nls = nil
	}
	C.saved = nil
	C.nlsSaved = false
}

// ApplyMapping maps the atomistic input to its CG representation. Any
// previous mapping, projection and neighbor lists are dropped, even if the
// mapping fails.
func (C *Collection) ApplyMapping(opts mapping.Options) (*mapping.Result, error) {
	C.reset(Unmapped)
	if C.atomistic == nil {
		return nil, cg.NewError(cg.ErrNoInput, "ApplyMapping", "molecule %s has no input", C.Name)
	}
	if opts.Logger == nil {
		opts.Logger = C.log
	}
	res, err := mapping.Map(C.atomistic, opts)
	if err != nil {
		return nil, cg.ErrDecorate(err, "ApplyMapping")
	}
	ref := v3.Zeros(len(res.Indexes))
	ref.SomeVecs(C.ref, res.Indexes)
	C.mapped = res
	C.cgref = ref
	C.log.Info("mapped", zap.Int("atoms", C.atomistic.Len()), zap.Int("particles", res.NCG()), zap.Int("warnings", len(res.Warnings)))
	return res, nil
}

// AddTerminalEmbeddings gives the N- and C-terminal particles of every chain
// their own embedding codes. See mapping.AddTerminalEmbeddings. Neighbor
// lists built before are dropped, as the terminal particles may change.
func (C *Collection) AddTerminalEmbeddings(nTerm, cTerm string) error {
	if C.mapped == nil {
		return cg.NewError(cg.ErrNotMapped, "AddTerminalEmbeddings", "molecule %s", C.Name)
	}
	res, err := mapping.AddTerminalEmbeddings(C.mapped, nTerm, cTerm)
	if err != nil {
		return cg.ErrDecorate(err, "AddTerminalEmbeddings")
	}
	C.mapped = res
	C.reset(Projected)
	return nil
}

// Mapping returns the current mapping, or nil if the collection is not mapped.
func (C *Collection) Mapping() *mapping.Result {
	return C.mapped
}

// Topology returns the CG topology, or nil if the collection is not mapped.
func (C *Collection) Topology() *cg.Topology {
	if C.mapped == nil {
		return nil
	}
	return C.mapped.Topology
}

// CoordMap returns the [n_cg, n_all] coordinate map, or nil if the collection is not mapped.
func (C *Collection) CoordMap() *mat.Dense {
	if C.mapped == nil {
		return nil
	}
	return C.mapped.Selection
}

// ProcessCoordsForces projects the atomistic coordinates and forces
// onto the CG particles. If opts.Topology is nil, the atomistic input
// topology is used.
func (C *Collection) ProcessCoordsForces(coords, forces cg.FrameSource, opts project.Options) (*project.Result, error) {
	if C.mapped == nil {
		return nil, cg.NewError(cg.ErrNotMapped, "ProcessCoordsForces", "molecule %s", C.Name)
	}
	if coords == nil || forces == nil {
		return nil, cg.NewError(cg.ErrNoInput, "ProcessCoordsForces", "molecule %s needs both coordinates and forces", C.Name)
	}
	if opts.Topology == nil {
		opts.Topology = C.atomistic
	}
	if opts.Logger == nil {
		opts.Logger = C.log
	}
	C.reset(Mapped)
	res, err := project.Project(coords, forces, C.mapped.Selection, opts)
	if err != nil {
		return nil, cg.ErrDecorate(err, "ProcessCoordsForces")
	}
	C.proj = res
	C.log.Info("projected", zap.Int("frames", len(res.Coords)), zap.Stringer("strategy", opts.Strategy))
	return res, nil
}

// Projection returns the projected coordinates and forces, or nil if they
// have not been computed.
func (C *Collection) Projection() *project.Result {
	return C.proj
}

// PriorNeighborLists builds the neighbor lists of the given priors for the CG
// topology. Terminal embeddings, if assigned, identify the terminal particles.
func (C *Collection) PriorNeighborLists(specs []prior.Spec) (prior.NeighborLists, error) {
	if C.mapped == nil {
		return nil, cg.NewError(cg.ErrNotMapped, "PriorNeighborLists", "molecule %s", C.Name)
	}
	C.reset(Projected)
	n, c := C.mapped.TerminalCodes()
	nls, err := prior.Build(C.mapped.Topology, specs, prior.Options{Termini: prior.Termini{NCode: n, CCode: c}, Logger: C.log})
	if err != nil {
		return nil, cg.ErrDecorate(err, "PriorNeighborLists")
	}
	C.nls = nls
	return nls, nil
}

// NeighborLists returns the prior neighbor lists, or nil if they have not been built.
func (C *Collection) NeighborLists() prior.NeighborLists {
	return C.nls
}

// Structure returns the coordinates written with the CG structure: the first
// projected frame, or the reference frame if there is no projection.
func (C *Collection) Structure() *v3.Matrix {
	if C.proj != nil && len(C.proj.Coords) > 0 {
		return C.proj.Coords[0]
	}
	return C.cgref
}
