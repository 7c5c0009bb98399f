/*
 * geometric.go, part of gocg.
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

package cg

import (
	"math"

	v3 "github.com/rmera/gocg/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// appzero is used to correct floating point errors. Everything equal or
// less than this is considered zero.
const appzero float64 = 0.0000001

func vec(coord *v3.Matrix, i int) r3.Vec {
	return r3.Vec{X: coord.At(i, 0), Y: coord.At(i, 1), Z: coord.At(i, 2)}
}

// Distance returns the distance between the particles i and j in coord.
func Distance(coord *v3.Matrix, i, j int) float64 {
	return r3.Norm(r3.Sub(vec(coord, i), vec(coord, j)))
}

// Angle returns the angle, in radians, between the particles i, j and k in
// coord, with j as the vertex.
// It does not check for correctness or return errors!
func Angle(coord *v3.Matrix, i, j, k int) float64 {
	v1 := r3.Sub(vec(coord, i), vec(coord, j))
	v2 := r3.Sub(vec(coord, k), vec(coord, j))
	argument := r3.Dot(v1, v2) / (r3.Norm(v1) * r3.Norm(v2))
	//Take care of floating point math errors
	if math.Abs(argument-1) <= appzero {
		argument = 1
	} else if math.Abs(argument+1) <= appzero {
		argument = -1
	}
	angle := math.Acos(argument)
	if math.Abs(angle) <= appzero {
		return 0.00
	}
	return angle
}

// Dihedral calculates the dihedral, in radians, between the particles i, j, k, l
// of coord, where the first plane is defined by ijk and the second by jkl.
func Dihedral(coord *v3.Matrix, i, j, k, l int) float64 {
	a, b, c, d := vec(coord, i), vec(coord, j), vec(coord, k), vec(coord, l)
	//bma=b minus a
	bma := r3.Sub(b, a)
	cmb := r3.Sub(c, b)
	dmc := r3.Sub(d, c)
	bmascaled := r3.Scale(r3.Norm(cmb), bma)
	first := r3.Dot(bmascaled, r3.Cross(cmb, dmc))
	second := r3.Dot(r3.Cross(bma, cmb), r3.Cross(cmb, dmc))
	return math.Atan2(first, second)
}
