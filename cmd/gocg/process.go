/*
 * process.go, part of gocg.
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
	"fmt"

	"github.com/rmera/gocg/mapping"
	"github.com/rmera/gocg/sample"
	"github.com/rmera/gocg/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newProcessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Map, project and build neighbor lists for every molecule of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			in, err := store.OpenBucket(ctx, cfg.Dataset.Input)
			if err != nil {
				return fmt.Errorf("opening input store %s: %w", cfg.Dataset.Input, err)
			}
			defer in.Close()
			out, err := a.output(ctx)
			if err != nil {
				return err
			}
			defer out.Close()
			mopts, err := cfg.MappingOptions(ctx, mapping.Builtins)
			if err != nil {
				return err
			}
			popts, err := cfg.ProjectionOptions()
			if err != nil {
				return err
			}
			p := &sample.Pipeline{
				Loader:     &store.InputLoader{Store: in, Logger: a.log},
				Mapping:    mopts,
				NTerm:      cfg.Mapping.NTerm,
				CTerm:      cfg.Mapping.CTerm,
				Projection: popts,
				Priors:     cfg.Priors,
				PriorTag:   cfg.PriorTag,
				Output:     out,
				Save:       cfg.SaveOptions(),
			}
			D := a.dataset()
			rep, runErr := D.Run(ctx, p.Process, cfg.RunOptions())
			m := rep.Manifest(D, cfg.PriorTag)
			if err := store.WriteManifest(ctx, out, m); err != nil {
				return err
			}
			a.log.Info("manifest written", zap.String("key", store.ManifestKey(D.Tag)), zap.String("run_id", m.RunID))
			failed := rep.Failed()
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d molecules, %d failed\n", m.RunID, D.Len(), len(failed))
			for _, r := range m.Failed() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", r.Name, r.Error)
			}
			return runErr
		},
	}
}
