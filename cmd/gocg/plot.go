/*
 * plot.go, part of gocg.
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
	"os"
	"strings"

	"github.com/rmera/gocg/cgplot"
	"github.com/rmera/gocg/prior"
	"github.com/rmera/gocg/sample"
	"github.com/spf13/cobra"
)

func newPlotCmd(a *app) *cobra.Command {
	var (
		molecule string
		lists    []string
		outfile  string
		bins     int
	)
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot histograms of the bond lengths, angles or dihedrals of a saved molecule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(lists) == 0 {
				return fmt.Errorf("no neighbor lists to plot")
			}
			ctx := cmd.Context()
			out, err := a.output(ctx)
			if err != nil {
				return err
			}
			defer out.Close()
			c := sample.New(molecule, a.cfg.Dataset.Tag, a.log)
			o, err := c.LoadOutput(ctx, out, a.cfg.PriorTag)
			if err != nil {
				return err
			}
			nls := make([]prior.NeighborList, 0, len(lists))
			for _, tag := range lists {
				nl, ok := o.NeighborLists[tag]
				if !ok {
					return fmt.Errorf("molecule %s has no neighbor list %q (has %s)", molecule, tag, strings.Join(o.NeighborLists.Tags(), ", "))
				}
				nls = append(nls, nl)
			}
			p, err := cgplot.Histogram(fmt.Sprintf("%s %s", molecule, strings.Join(lists, ", ")), o.Coords, nls, bins)
			if err != nil {
				return err
			}
			if outfile == "" {
				outfile = fmt.Sprintf("%s_%s.png", molecule, lists[0])
			}
			f, err := os.Create(outfile)
			if err != nil {
				return err
			}
			if err := cgplot.WritePNG(f, p, 5, 4); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outfile)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&molecule, "molecule", "m", "", "molecule to plot")
	fl.StringSliceVarP(&lists, "lists", "l", []string{"bonds"}, "neighbor lists to plot, all of the same order")
	fl.StringVarP(&outfile, "out", "o", "", "output PNG file (default <molecule>_<list>.png)")
	fl.IntVar(&bins, "bins", cgplot.DefaultBins, "number of histogram bins")
	_ = cmd.MarkFlagRequired("molecule")
	return cmd
}
