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

// Package cgplot makes histograms of the internal coordinates of CG
// trajectories, to check visually that mappings and neighbor lists are sane.
package cgplot

import (
	"image/color"
	"io"
	"math"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/prior"
	v3 "github.com/rmera/gocg/v3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultBins is the number of bins used when none is given.
const DefaultBins = 40

// Values returns, for every frame and every edge of nl, the internal
// coordinate the edge describes: a distance for order 2, an angle in
// degrees for order 3 and a dihedral in degrees for order 4.
func Values(frames []*v3.Matrix, nl prior.NeighborList) (plotter.Values, error) {
	if nl.Order < 2 || nl.Order > 4 {
		return nil, cg.NewError(cg.ErrConfig, "cgplot.Values", "can't plot neighbor list %s of order %d", nl.Tag, nl.Order)
	}
	ret := make(plotter.Values, 0, len(frames)*nl.Len())
	for f, c := range frames {
		n := c.NVecs()
		for _, e := range nl.Edges {
			for _, v := range e {
				if v >= n {
					return nil, cg.NewError(cg.ErrShapeMismatch, "cgplot.Values", "frame %d has %d particles, %s refers to %d", f, n, nl.Tag, v)
				}
			}
			switch nl.Order {
			case 2:
				ret = append(ret, cg.Distance(c, e[0], e[1]))
			case 3:
				ret = append(ret, cg.Angle(c, e[0], e[1], e[2])*180/math.Pi)
			case 4:
				ret = append(ret, cg.Dihedral(c, e[0], e[1], e[2], e[3])*180/math.Pi)
			}
		}
	}
	return ret, nil
}

func unit(order int) string {
	switch order {
	case 2:
		return "Distance (Å)"
	case 3:
		return "Angle (deg)"
	}
	return "Dihedral (deg)"
}

// Histogram returns a histogram plot of the values of the given neighbor lists
// along the frames. Each list gets its own color. All lists must have the
// same order. bins < 1 means DefaultBins.
func Histogram(title string, frames []*v3.Matrix, nls []prior.NeighborList, bins int) (*plot.Plot, error) {
	if len(nls) == 0 {
		return nil, cg.NewError(cg.ErrConfig, "cgplot.Histogram", "no neighbor lists to plot")
	}
	if bins < 1 {
		bins = DefaultBins
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = unit(nls[0].Order)
	p.Y.Label.Text = "Count"
	p.Add(plotter.NewGrid())
	for key, nl := range nls {
		if nl.Order != nls[0].Order {
			return nil, cg.NewError(cg.ErrConfig, "cgplot.Histogram", "neighbor lists of orders %d and %d in the same plot", nls[0].Order, nl.Order)
		}
		if nl.Len() == 0 {
			continue
		}
		vals, err := Values(frames, nl)
		if err != nil {
			return nil, cg.ErrDecorate(err, "cgplot.Histogram")
		}
		h, err := plotter.NewHist(vals, bins)
		if err != nil {
			return nil, cg.WrapError(cg.ErrConfig, "cgplot.Histogram", err)
		}
		r, g, b := colors(key, len(nls))
		h.FillColor = color.RGBA{R: r, G: g, B: b, A: 160}
		p.Add(h)
		p.Legend.Add(nl.Tag, h)
	}
	return p, nil
}

// WritePNG renders p as a PNG image of the given size, in inches, to w.
func WritePNG(w io.Writer, p *plot.Plot, width, height float64) error {
	wt, err := p.WriterTo(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, "png")
	if err != nil {
		return cg.WrapError(cg.ErrIO, "cgplot.WritePNG", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return cg.WrapError(cg.ErrIO, "cgplot.WritePNG", err)
	}
	return nil
}

// takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func iHVS2RGB(h, v, s float64) (uint8, uint8, uint8) {
	var r, g, b float64
	conversion := 255.0 * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default: //case 5
		r, g, b = v, p, q
	}
	return uint8(r * conversion), uint8(g * conversion), uint8(b * conversion)
}

// colors spreads steps hues over the spectrum, skipping the yellows.
func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	h := hp + 20.0
	if hp < 55 {
		h = hp - 20.0
	}
	return iHVS2RGB(h, 1, 1)
}
