/*
 * config.go, part of gocg.
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

// Package config loads the configuration of a gocg run from a YAML file
// and GOCG_ environment variables.
package config

import (
	"context"
	"strings"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/logging"
	"github.com/rmera/gocg/mapping"
	"github.com/rmera/gocg/prior"
	"github.com/rmera/gocg/project"
	"github.com/rmera/gocg/sample"
	"github.com/rmera/gocg/store"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of the environment variables read. Nested keys use
// "_" as separator, so dataset.tag is GOCG_DATASET_TAG.
const envPrefix = "GOCG"

// Dataset describes the molecules to process and where their data is.
type Dataset struct {
	Name string `mapstructure:"name"`
	Tag  string `mapstructure:"tag"`
	//Names of the molecules, or PDB file names for simulation inputs.
	//Exactly one of them must be given.
	Names    []string `mapstructure:"names"`
	PDBFiles []string `mapstructure:"pdb_files"`
	Input    string   `mapstructure:"input"`  //blob URL of the input store
	Output   string   `mapstructure:"output"` //URL or path of the output store
	Backend  string   `mapstructure:"backend"` //store.BackendBlob or store.BackendBadger
}

// Mapping describes the CG mapping.
type Mapping struct {
	Atoms        []string `mapstructure:"atoms"`
	Scheme       string   `mapstructure:"scheme"`
	Dictionary   string   `mapstructure:"dictionary"`
	SkipResidues []string `mapstructure:"skip_residues"`
	Strict       bool     `mapstructure:"strict"`
	NTerm        string   `mapstructure:"n_term"`
	CTerm        string   `mapstructure:"c_term"`
}

// Projection describes the projection of coordinates and forces.
type Projection struct {
	Strategy    string  `mapstructure:"strategy"`
	ForceStride int     `mapstructure:"force_stride"`
	BatchSize   int     `mapstructure:"batch_size"`
	Ridge       float64 `mapstructure:"ridge"`
}

// Save selects the optional outputs.
type Save struct {
	CoordsForces bool `mapstructure:"coords_forces"`
	Maps         bool `mapstructure:"maps"`
	STF          bool `mapstructure:"stf"`
}

// Config is the configuration of a gocg run.
type Config struct {
	Dataset         Dataset        `mapstructure:"dataset"`
	Mapping         Mapping        `mapstructure:"mapping"`
	Projection      Projection     `mapstructure:"projection"`
	Priors          []prior.Spec   `mapstructure:"priors"`
	PriorTag        string         `mapstructure:"prior_tag"`
	Save            Save           `mapstructure:"save"`
	Workers         int            `mapstructure:"workers"`
	ContinueOnError bool           `mapstructure:"continue_on_error"`
	Log             logging.Config `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.name", "")
	v.SetDefault("dataset.tag", "")
	v.SetDefault("dataset.input", "")
	v.SetDefault("dataset.output", "")
	v.SetDefault("dataset.backend", store.BackendBlob)
	v.SetDefault("mapping.atoms", []string{"CA"})
	v.SetDefault("mapping.scheme", "residue")
	v.SetDefault("mapping.dictionary", "CA_MAP")
	v.SetDefault("mapping.strict", false)
	v.SetDefault("mapping.n_term", "")
	v.SetDefault("mapping.c_term", "")
	v.SetDefault("projection.strategy", project.SliceAggregate.String())
	v.SetDefault("projection.force_stride", project.DefaultForceStride)
	v.SetDefault("projection.batch_size", 0)
	v.SetDefault("projection.ridge", 1e-8)
	v.SetDefault("prior_tag", "")
	v.SetDefault("save.coords_forces", true)
	v.SetDefault("save.maps", true)
	v.SetDefault("save.stf", false)
	v.SetDefault("workers", 1)
	v.SetDefault("continue_on_error", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.max_backups", 3)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

// Load reads the YAML file at path, applies GOCG_ environment overrides and
// the defaults, and validates the result. An empty path reads only the
// environment.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, cg.WrapError(cg.ErrConfig, "config.Load", err)
		}
	}
	return finalize(v)
}

// Parse is Load for a configuration given as a string.
func Parse(yaml string) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
		return nil, cg.WrapError(cg.ErrConfig, "config.Parse", err)
	}
	return finalize(v)
}

func finalize(v *viper.Viper) (*Config, error) {
	C := new(Config)
	if err := v.Unmarshal(C); err != nil {
		return nil, cg.WrapError(cg.ErrConfig, "config.finalize", err)
	}
	if len(C.Priors) == 0 {
		C.Priors = prior.DefaultSpecs()
	}
	if err := C.Validate(); err != nil {
		return nil, cg.ErrDecorate(err, "config.finalize")
	}
	return C, nil
}

// Validate checks that every name in C refers to something that exists, so
// a run does not fail halfway because of a typo.
func (C *Config) Validate() error {
	d := C.Dataset
	if (len(d.Names) == 0) == (len(d.PDBFiles) == 0) {
		return cg.NewError(cg.ErrConfig, "Validate", "exactly one of dataset.names and dataset.pdb_files must be given")
	}
	if d.Input == "" || d.Output == "" {
		return cg.NewError(cg.ErrConfig, "Validate", "dataset.input and dataset.output are required")
	}
	if d.Backend != store.BackendBlob && d.Backend != store.BackendBadger {
		return cg.NewError(cg.ErrConfig, "Validate", "unknown store backend %q", d.Backend)
	}
	if err := store.CheckTag(d.Tag); err != nil {
		return cg.ErrDecorate(err, "Validate dataset.tag")
	}
	if err := store.CheckTag(C.PriorTag); err != nil {
		return cg.ErrDecorate(err, "Validate prior_tag")
	}
	if len(C.Mapping.Atoms) == 0 {
		return cg.NewError(cg.ErrConfig, "Validate", "mapping.atoms is empty")
	}
	if _, err := mapping.LookupScheme(C.Mapping.Scheme); err != nil {
		return cg.ErrDecorate(err, "Validate")
	}
	if C.Mapping.Dictionary == "" {
		return cg.NewError(cg.ErrConfig, "Validate", "mapping.dictionary is empty")
	}
	if _, err := project.ParseStrategy(C.Projection.Strategy); err != nil {
		return cg.ErrDecorate(err, "Validate")
	}
	if C.Projection.Ridge < 0 {
		return cg.NewError(cg.ErrConfig, "Validate", "negative ridge %g", C.Projection.Ridge)
	}
	if _, err := prior.Resolve(C.Priors); err != nil {
		return cg.ErrDecorate(err, "Validate")
	}
	if C.Workers < 1 {
		return cg.NewError(cg.ErrConfig, "Validate", "workers must be positive, got %d", C.Workers)
	}
	return cg.ErrDecorate(C.Log.Validate(), "Validate")
}

// MappingOptions returns the mapping options, with the dictionary given by res.
func (C *Config) MappingOptions(ctx context.Context, res mapping.Resolver) (mapping.Options, error) {
	d, err := res.Resolve(ctx, C.Mapping.Dictionary)
	if err != nil {
		return mapping.Options{}, cg.ErrDecorate(err, "MappingOptions")
	}
	return mapping.Options{
		Atoms:        C.Mapping.Atoms,
		Scheme:       C.Mapping.Scheme,
		Dictionary:   d,
		SkipResidues: C.Mapping.SkipResidues,
		Strict:       C.Mapping.Strict,
	}, nil
}

// ProjectionOptions returns the projection options.
func (C *Config) ProjectionOptions() (project.Options, error) {
	s, err := project.ParseStrategy(C.Projection.Strategy)
	if err != nil {
		return project.Options{}, cg.ErrDecorate(err, "ProjectionOptions")
	}
	return project.Options{
		Strategy:    s,
		ForceStride: C.Projection.ForceStride,
		BatchSize:   C.Projection.BatchSize,
		Ridge:       C.Projection.Ridge,
	}, nil
}

// SaveOptions returns the options for sample.Collection.SaveOutput.
func (C *Config) SaveOptions() sample.SaveOptions {
	return sample.SaveOptions{CoordsForces: C.Save.CoordsForces, Maps: C.Save.Maps, STF: C.Save.STF}
}

// RunOptions returns the options for sample.Dataset.Run.
func (C *Config) RunOptions() sample.RunOptions {
	return sample.RunOptions{Workers: C.Workers, ContinueOnError: C.ContinueOnError}
}
