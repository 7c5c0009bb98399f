/*
 * inspect.go, part of gocg.
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
	"io"

	"github.com/dustin/go-humanize"
	"github.com/rmera/gocg/sample"
	"github.com/rmera/gocg/store"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [molecule...]",
		Short: "Show the manifest of the last run and the saved outputs of some molecules",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out, err := a.output(ctx)
			if err != nil {
				return err
			}
			defer out.Close()
			w := cmd.OutOrStdout()
			m, err := store.ReadManifest(ctx, out, a.cfg.Dataset.Tag)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "run %s, dataset %q, format %s, %s\n", m.RunID, m.Dataset, m.Format, humanize.Time(m.Created))
			for _, r := range m.Molecules {
				fmt.Fprintf(w, "  %-12s %-8s %d artifacts", r.Name, r.Status, len(r.Artifacts))
				if len(r.Skipped) > 0 {
					fmt.Fprintf(w, ", %d skipped", len(r.Skipped))
				}
				fmt.Fprintln(w)
			}
			for _, name := range args {
				c := sample.New(name, a.cfg.Dataset.Tag, a.log)
				o, err := c.LoadOutput(ctx, out, m.PriorTag)
				if err != nil {
					return fmt.Errorf("molecule %s: %w", name, err)
				}
				describe(w, name, o)
			}
			return nil
		},
	}
}

func describe(w io.Writer, name string, o *sample.Output) {
	fmt.Fprintf(w, "%s: %d particles, %d chains, %d frames\n", name, o.Topology.Len(), len(o.Topology.Chains()), len(o.Coords))
	for _, tag := range o.NeighborLists.Tags() {
		nl := o.NeighborLists[tag]
		fmt.Fprintf(w, "  %-20s order %d, %s edges\n", tag, nl.Order, humanize.Comma(int64(nl.Len())))
	}
}
