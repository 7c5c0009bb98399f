/*
 * files_test.go, part of gocg.
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

package cg_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	cg "github.com/rmera/gocg"
	"github.com/rmera/gocg/internal/fixture"
	v3 "github.com/rmera/gocg/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDBIO(Te *testing.T) {
	top := fixture.Peptide([]string{"A", "B"}, 3)
	coords := fixture.Frames(1, top.Len(), 0.5)
	var buf bytes.Buffer
	require.NoError(Te, cg.PDBWrite(&buf, coords[0], top))
	assert.Equal(Te, 2, strings.Count(buf.String(), "TER"))

	rtop, frames, err := cg.PDBRead(&buf)
	require.NoError(Te, err)
	require.Len(Te, frames, 1)
	require.Equal(Te, top.Len(), rtop.Len())
	assert.Equal(Te, top.Bonds(), rtop.Bonds())
	for i := 0; i < top.Len(); i++ {
		a, b := top.Atom(i), rtop.Atom(i)
		assert.Equal(Te, [5]interface{}{a.Name, a.MolName, a.MolID, a.Chain, a.Symbol}, [5]interface{}{b.Name, b.MolName, b.MolID, b.Chain, b.Symbol})
		for j := 0; j < 3; j++ {
			assert.InDelta(Te, coords[0].At(i, j), frames[0].At(i, j), 0.5e-3)
		}
	}

	err = cg.PDBWrite(&buf, v3.Zeros(2), top)
	assert.True(Te, errors.Is(err, cg.ErrShapeMismatch))
}

func TestPDBLargeResidues(Te *testing.T) {
	ats := []*cg.Atom{
		{Name: "CA", ID: 1, MolName: "ALA", MolID: 9999, Chain: "A", Symbol: "C"},
		{Name: "CA", ID: 2, MolName: "GLY", MolID: 10000, Chain: "A", Symbol: "C"},
		{Name: "CA", ID: 3, MolName: "SER", MolID: 12345, Chain: "A", Symbol: "C"},
		{Name: "CA", ID: 4, MolName: "LYS", MolID: -1001, Chain: "A", Symbol: "C"},
	}
	top, err := cg.NewTopology(ats, nil)
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, cg.PDBWrite(&buf, fixture.Frames(1, 4, 0)[0], top))
	rtop, _, err := cg.PDBRead(&buf)
	require.NoError(Te, err)
	require.Equal(Te, 4, rtop.Len())
	for i, want := range []int{9999, 0, 2345, 8999} {
		assert.Equal(Te, want, rtop.Atom(i).MolID, "atom %d", i)
	}

	ats[0].ID = 100000
	top, err = cg.NewTopology(ats, nil)
	require.NoError(Te, err)
	err = cg.PDBWrite(&buf, fixture.Frames(1, 4, 0)[0], top)
	assert.Equal(Te, cg.KindIO, cg.KindOf(err))
}

const twoModels = `MODEL        1
ATOM      1  N   ALA A   1       0.000   0.000   0.000  1.00  0.00
ATOM      2  CA  ALA A   1       1.450   0.000   0.000  1.00  0.00
ENDMDL
MODEL        2
ATOM      1  N   ALA A   1       0.100   0.000   0.000  1.00  0.00
ATOM      2  CA  ALA A   1       1.550   0.000   0.000  1.00  0.00
ENDMDL
END
`

func TestPDBModels(Te *testing.T) {
	top, frames, err := cg.PDBRead(strings.NewReader(twoModels))
	require.NoError(Te, err)
	assert.Equal(Te, 2, top.Len())
	assert.Equal(Te, 0, top.NBonds())
	require.Len(Te, frames, 2)
	assert.InDelta(Te, 1.55, frames[1].At(1, 0), 1e-9)
	//no element columns: guessed from the names.
	assert.Equal(Te, "C", top.Atom(1).Symbol)

	bad := strings.Replace(twoModels, "ATOM      2  CA  ALA A   1       1.550", "", 1)
	_, _, err = cg.PDBRead(strings.NewReader(bad))
	assert.Equal(Te, cg.KindCorrupt, cg.KindOf(err))
	_, _, err = cg.PDBRead(strings.NewReader("END\n"))
	assert.Equal(Te, cg.KindCorrupt, cg.KindOf(err))
}

func TestSymbolFromName(Te *testing.T) {
	for name, sym := range map[string]string{"CA": "C", "1HB": "H", "OXT": "O", "ZN": "Zn", "CL": "Cl", "": "", "XX": ""} {
		assert.Equal(Te, sym, cg.SymbolFromName(name), name)
	}
}

func TestAssignBonds(Te *testing.T) {
	ats := []*cg.Atom{{Name: "OW", Symbol: "O"}, {Name: "HW1", Symbol: "H"}, {Name: "HW2", Symbol: "H"}}
	top, err := cg.NewTopology(ats, nil)
	require.NoError(Te, err)
	coord, err := v3.NewMatrix([]float64{0, 0, 0, 0.96, 0, 0, -0.24, 0.93, 0})
	require.NoError(Te, err)
	bonded, err := cg.AssignBonds(coord, top)
	require.NoError(Te, err)
	assert.Equal(Te, [][2]int{{0, 1}, {0, 2}}, bonded.Bonds())
	assert.Equal(Te, 0, top.NBonds())

	_, err = cg.AssignBonds(v3.Zeros(2), top)
	assert.Error(Te, err)
	ats[0].Symbol = "Xx"
	top, _ = cg.NewTopology(ats, nil)
	_, err = cg.AssignBonds(coord, top)
	assert.Equal(Te, cg.KindConfig, cg.KindOf(err))
}

func TestAssignBackboneBonds(Te *testing.T) {
	//ALA (N CA CB C O) then GLY (N CA C O)
	top := fixture.Peptide([]string{"A"}, 2)
	require.Equal(Te, 9, top.Len())
	assert.Equal(Te, [][2]int{{0, 1}, {1, 2}, {1, 3}, {3, 4}, {3, 5}, {5, 6}, {6, 7}, {7, 8}}, top.Bonds())
	//no peptide bond across chains
	two := fixture.Peptide([]string{"A", "B"}, 2)
	assert.Equal(Te, 16, two.NBonds())
	assert.False(Te, two.HasBond(7, 9))
}

func TestMemFrames(Te *testing.T) {
	f := fixture.Frames(3, 4, 0)
	assert.Equal(Te, 3, f.NFrames())
	assert.Equal(Te, 4, f.NAtoms())
	s, err := f.Frames(1, 3)
	require.NoError(Te, err)
	assert.Len(Te, s, 2)
	_, err = f.Frames(2, 4)
	assert.True(Te, errors.Is(err, cg.ErrShapeMismatch))
	all, err := cg.AllFrames(f)
	require.NoError(Te, err)
	assert.Len(Te, all, 3)
	assert.Equal(Te, 0, cg.MemFrames(nil).NAtoms())
}
