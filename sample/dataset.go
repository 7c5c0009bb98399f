/*
 * dataset.go, part of gocg.
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
	"path/filepath"
	"strings"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dataset is a list of molecules, each with its own Collection, sharing a
// dataset name and an output tag.
type Dataset struct {
	Name    string
	Tag     string
	samples []*Collection
	log     *zap.Logger
}

// NewRawDataset returns a dataset with one collection per name.
func NewRawDataset(datasetName string, names []string, tag string, log *zap.Logger) *Dataset {
	if log == nil {
		log = zap.NewNop()
	}
	D := &Dataset{Name: datasetName, Tag: tag, samples: make([]*Collection, len(names)), log: log.With(zap.String("dataset", datasetName))}
	for i, name := range names {
		D.samples[i] = New(name, tag, D.log)
	}
	return D
}

// NewSimInput returns a dataset for simulation inputs given as PDB files. The
// molecule names are the file names without extension.
func NewSimInput(datasetName, tag string, pdbFiles []string, log *zap.Logger) *Dataset {
	names := make([]string, len(pdbFiles))
	for i, fn := range pdbFiles {
		names[i] = strings.TrimSuffix(fn, filepath.Ext(fn))
	}
	return NewRawDataset(datasetName, names, tag, log)
}

// Len returns the number of molecules.
func (D *Dataset) Len() int {
	return len(D.samples)
}

// At returns the collection of the ith molecule.
func (D *Dataset) At(i int) *Collection {
	return D.samples[i]
}

// Names returns the names of the molecules, in order.
func (D *Dataset) Names() []string {
	ret := make([]string, len(D.samples))
	for i, s := range D.samples {
		ret[i] = s.Name
	}
	return ret
}

// RunOptions controls Dataset.Run.
type RunOptions struct {
	//Workers is the maximum number of molecules processed at the same time.
	//Values < 1 mean 1.
	Workers int
	//ContinueOnError records failed molecules and goes on with the rest.
	//Otherwise, the first failure cancels the run.
	ContinueOnError bool
}

// RunReport has one record per molecule, in dataset order.
type RunReport struct {
	Records []store.MoleculeRecord
}

// Failed returns the names of the molecules that failed.
func (R *RunReport) Failed() []string {
	var ret []string
	for _, r := range R.Records {
		if r.Status == store.StatusFailed {
			ret = append(ret, r.Name)
		}
	}
	return ret
}

// Manifest returns a manifest for the run, for the dataset D.
func (R *RunReport) Manifest(D *Dataset, priorTag string) *store.Manifest {
	m := store.NewManifest(D.Name, D.Tag, priorTag)
	m.Molecules = append(m.Molecules, R.Records...)
	return m
}

// Run calls fn on every collection of the dataset, with up to opts.Workers
// molecules at a time. Each collection is only seen by one call. Unless
// opts.ContinueOnError is set, the first error cancels the context given to
// the other calls, the molecules not yet started are skipped, and the
// error is returned along with the report.
func (D *Dataset) Run(ctx context.Context, fn func(context.Context, *Collection) error, opts RunOptions) (*RunReport, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	rep := &RunReport{Records: make([]store.MoleculeRecord, len(D.samples))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range D.samples {
		s := s
		rec := &rep.Records[i]
		rec.Name = s.Name
		if err := gctx.Err(); err != nil {
			rec.Status = store.StatusSkipped
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				rec.Status = store.StatusSkipped
				return nil
			}
			err := fn(gctx, s)
			if err != nil {
				rec.Status = store.StatusFailed
				rec.Error = err.Error()
				D.log.Error("molecule failed", zap.String("molecule", s.Name), zap.Error(err))
				if opts.ContinueOnError {
					return nil
				}
				return cg.ErrDecorate(err, "Dataset.Run")
			}
			rec.Status = store.StatusDone
			if r := s.LastSave(); r != nil {
				rec.Artifacts = r.Saved
				rec.Skipped = r.Skipped
			}
			return nil
		})
	}
	err := g.Wait()
	D.log.Info("dataset run finished", zap.Int("molecules", len(D.samples)), zap.Int("failed", len(rep.Failed())))
	return rep, err
}
