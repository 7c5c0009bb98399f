/*
 * geometric_test.go, part of gocg.
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
	"testing"

	v3 "github.com/rmera/gocg/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometric(Te *testing.T) {
	coord, err := v3.NewMatrix([]float64{
		1, 0, 0,
		0, 0, 0,
		0, 1, 0,
		0, 1, 1,
		-1, 0, 0,
	})
	require.NoError(Te, err)
	assert.InDelta(Te, 1.0, Distance(coord, 0, 1), 1e-12)
	assert.InDelta(Te, math.Sqrt2, Distance(coord, 0, 2), 1e-12)
	assert.InDelta(Te, math.Pi/2, Angle(coord, 0, 1, 2), 1e-12)
	assert.InDelta(Te, math.Pi, Angle(coord, 0, 1, 4), 1e-12)
	assert.Equal(Te, 0.0, Angle(coord, 0, 1, 0))
	assert.InDelta(Te, math.Pi/2, math.Abs(Dihedral(coord, 0, 1, 2, 3)), 1e-12)
	//the sign follows the handedness
	mirror := coord.Clone()
	mirror.Set(3, 2, -1)
	assert.InDelta(Te, -Dihedral(coord, 0, 1, 2, 3), Dihedral(mirror, 0, 1, 2, 3), 1e-12)
}
