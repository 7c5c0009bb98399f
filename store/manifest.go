/*
 * manifest.go, part of gocg.
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
	"time"

	"github.com/blang/semver"
	"github.com/google/uuid"
	cg "github.com/rmera/gocg"
	"gopkg.in/yaml.v3"
)

// FormatVersion is the version of the artifact layout written by this package.
// Artifacts with the same major version can be read.
var FormatVersion = semver.MustParse("1.0.0")

func checkVersion(v string) error {
	ver, err := semver.Parse(v)
	if err != nil {
		return cg.WrapError(cg.ErrCorrupt, "checkVersion", err)
	}
	if ver.Major != FormatVersion.Major {
		return cg.NewError(cg.ErrCorrupt, "checkVersion", "artifact format %s, can read %d.x.x", ver, FormatVersion.Major)
	}
	return nil
}

// Molecule status values in a Manifest.
const (
	StatusDone    = "done"
	StatusFailed  = "failed"
	StatusSkipped = "skipped" //not attempted, after a failure stopped the run.
)

// MoleculeRecord is the outcome of processing one molecule.
type MoleculeRecord struct {
	Name      string   `yaml:"name"`
	Status    string   `yaml:"status"`
	Error     string   `yaml:"error,omitempty"`
	Artifacts []string `yaml:"artifacts,omitempty"`
	Skipped   []string `yaml:"skipped,omitempty"`
}

// Manifest describes one run over a dataset.
type Manifest struct {
	RunID     string           `yaml:"run_id"`
	Format    string           `yaml:"format"`
	Dataset   string           `yaml:"dataset"`
	Tag       string           `yaml:"tag"`
	PriorTag  string           `yaml:"prior_tag,omitempty"`
	Created   time.Time        `yaml:"created"`
	Molecules []MoleculeRecord `yaml:"molecules"`
}

// NewManifest returns an empty manifest with a fresh run id.
func NewManifest(dataset, tag, priorTag string) *Manifest {
	return &Manifest{
		RunID:    uuid.NewString(),
		Format:   FormatVersion.String(),
		Dataset:  dataset,
		Tag:      tag,
		PriorTag: priorTag,
		Created:  time.Now().UTC().Truncate(time.Second),
	}
}

// ManifestKey returns the key of the manifest of a dataset.
func ManifestKey(tag string) string {
	return OutputTag([]string{tag}, Before) + ManifestFile
}

// Failed returns the records of the molecules which failed.
func (M *Manifest) Failed() []MoleculeRecord {
	var ret []MoleculeRecord
	for _, m := range M.Molecules {
		if m.Status == StatusFailed {
			ret = append(ret, m)
		}
	}
	return ret
}

// WriteManifest puts m in st, under ManifestKey(m.Tag).
func WriteManifest(ctx context.Context, st Store, m *Manifest) error {
	_, err := Write(ctx, st, ManifestKey(m.Tag), func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return cg.WrapError(cg.ErrIO, "WriteManifest", err)
		}
		return enc.Close()
	})
	return cg.ErrDecorate(err, "WriteManifest")
}

// ReadManifest reads the manifest of the dataset with the given tag.
func ReadManifest(ctx context.Context, st Store, tag string) (*Manifest, error) {
	m := new(Manifest)
	err := Read(ctx, st, ManifestKey(tag), func(r io.Reader) error {
		if err := yaml.NewDecoder(r).Decode(m); err != nil {
			return cg.WrapError(cg.ErrCorrupt, "ReadManifest", err)
		}
		return checkVersion(m.Format)
	})
	if err != nil {
		return nil, cg.ErrDecorate(err, "ReadManifest")
	}
	return m, nil
}
