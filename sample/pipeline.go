/*
 * pipeline.go, part of gocg.
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
	"context"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/mapping"
	"github.com/rmera/gocg/prior"
	"github.com/rmera/gocg/project"
	"github.com/rmera/gocg/store"
	"go.uber.org/zap"
)

// Pipeline takes a molecule from its atomistic input to saved CG outputs.
// Its Process method can be given to Dataset.Run.
type Pipeline struct {
	Loader  cg.Loader
	Mapping mapping.Options
	//Atom names given terminal embeddings. Empty disables the terminus.
	NTerm, CTerm string
	Projection   project.Options
	Priors       []prior.Spec //no neighbor lists are built if empty.
	PriorTag     string
	Output       store.Store
	Save         SaveOptions
}

// Process loads, maps, projects and builds the neighbor lists of the molecule
// in c, and saves the results. Molecules with no forces are mapped and saved,
// but not projected.
func (P *Pipeline) Process(ctx context.Context, c *Collection) error {
	top, coords, forces, err := P.Loader.Load(ctx, c.Name)
	if err != nil {
		return cg.ErrDecorate(err, "Pipeline.Process")
	}
	if coords == nil || coords.NFrames() == 0 {
		return cg.NewError(cg.ErrNoInput, "Pipeline.Process", "molecule %s has no coordinates", c.Name)
	}
	ref, err := coords.Frames(0, 1)
	if err != nil {
		return cg.ErrDecorate(err, "Pipeline.Process")
	}
	if err := c.SetInput(top, ref[0].Clone()); err != nil {
		return cg.ErrDecorate(err, "Pipeline.Process")
	}
	if _, err := c.ApplyMapping(P.Mapping); err != nil {
		return cg.ErrDecorate(err, "Pipeline.Process")
	}
	if P.NTerm != "" || P.CTerm != "" {
		if err := c.AddTerminalEmbeddings(P.NTerm, P.CTerm); err != nil {
			return cg.ErrDecorate(err, "Pipeline.Process")
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if forces != nil {
		if _, err := c.ProcessCoordsForces(coords, forces, P.Projection); err != nil {
			return cg.ErrDecorate(err, "Pipeline.Process")
		}
	} else {
		c.log.Info("no forces, coordinates not projected")
	}
	if len(P.Priors) > 0 {
		if _, err := c.PriorNeighborLists(P.Priors); err != nil {
			return cg.ErrDecorate(err, "Pipeline.Process")
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.SaveOutput(ctx, P.Output, P.Save); err != nil {
		return cg.ErrDecorate(err, "Pipeline.Process")
	}
	if len(P.Priors) > 0 {
		if _, err := c.SaveNeighborLists(ctx, P.Output, P.PriorTag); err != nil {
			return cg.ErrDecorate(err, "Pipeline.Process")
		}
	}
	c.log.Debug("molecule done", zap.Stringer("stage", c.Stage()))
	return nil
}
