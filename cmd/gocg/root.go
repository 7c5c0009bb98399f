/*
 * root.go, part of gocg.
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

package main

import (
	"context"
	"fmt"

	"github.com/rmera/gocg/config"
	"github.com/rmera/gocg/logging"
	"github.com/rmera/gocg/sample"
	"github.com/rmera/gocg/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what the subcommands share, set up before they run.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "gocg",
		Short: "Prepare coarse-grained training inputs from atomistic data",
		Long: `gocg maps atomistic structures to coarse-grained (CG) particles, projects
coordinates and forces onto them, builds the neighbor lists of the prior
interactions, and saves everything for training a CG force field.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "gocg.yaml", "configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level, overrides the configuration (debug, info, warn, error)")
	cmd.AddCommand(newProcessCmd(a), newInspectCmd(a), newPlotCmd(a))
	return cmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

// dataset returns the dataset described by the configuration.
func (a *app) dataset() *sample.Dataset {
	d := a.cfg.Dataset
	if len(d.PDBFiles) > 0 {
		return sample.NewSimInput(d.Name, d.Tag, d.PDBFiles, a.log)
	}
	return sample.NewRawDataset(d.Name, d.Names, d.Tag, a.log)
}

func (a *app) output(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, a.cfg.Dataset.Backend, a.cfg.Dataset.Output, a.log)
	if err != nil {
		return nil, fmt.Errorf("opening output store %s: %w", a.cfg.Dataset.Output, err)
	}
	return st, nil
}
