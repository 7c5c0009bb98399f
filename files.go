/*
 * files.go, part of gocg.
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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	v3 "github.com/rmera/gocg/v3"
)

// PDBWrite writes a PDB file for the topology mol, with the coordinates coord, to out.
// If the topology has bonds, CONECT records are written so they can be
// recovered by PDBRead.
func PDBWrite(out io.Writer, coord *v3.Matrix, mol *Topology) error {
	if coord.NVecs() != mol.Len() {
		return NewError(ErrShapeMismatch, "PDBWrite", "%d coordinates for %d atoms", coord.NVecs(), mol.Len())
	}
	w := bufio.NewWriter(out)
	fmt.Fprint(w, "REMARK     WRITTEN WITH GOCG\n")
	chainprev := ""
	if mol.Len() > 0 {
		chainprev = mol.Atom(0).Chain
	}
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if at.Chain != chainprev {
			fmt.Fprintln(w, "TER")
			chainprev = at.Chain
		}
		line, err := pdbAtomLine(at, coord.At(i, 0), coord.At(i, 1), coord.At(i, 2))
		if err != nil {
			return ErrDecorate(err, "PDBWrite")
		}
		if _, err := w.WriteString(line); err != nil {
			return WrapError(ErrIO, "PDBWrite", err)
		}
	}
	fmt.Fprintln(w, "TER")
	//CONECT records, one line per bond pair and direction, as many PDB readers expect.
	partners := make(map[int][]int)
	for _, b := range mol.bonds {
		partners[b[0]] = append(partners[b[0]], b[1])
		partners[b[1]] = append(partners[b[1]], b[0])
	}
	for i := 0; i < mol.Len(); i++ {
		p := partners[i]
		for len(p) > 0 {
			n := len(p)
			if n > 4 {
				n = 4
			}
			fmt.Fprintf(w, "CONECT%5d", mol.Atom(i).ID)
			for _, j := range p[:n] {
				fmt.Fprintf(w, "%5d", mol.Atom(j).ID)
			}
			fmt.Fprint(w, "\n")
			p = p[n:]
		}
	}
	fmt.Fprint(w, "END\n")
	if err := w.Flush(); err != nil {
		return WrapError(ErrIO, "PDBWrite", err)
	}
	return nil
}

func pdbAtomLine(at *Atom, x, y, z float64) (string, error) {
	first := "ATOM"
	if at.Het {
		first = "HETATM"
	}
	if at.ID > 99999 {
		return "", NewError(ErrIO, "pdbAtomLine", "atom serial %d doesn't fit in PDB format", at.ID)
	}
	if len(at.Chain) > 1 || len(at.Name) > 4 || len(at.MolName) > 3 {
		return "", NewError(ErrIO, "pdbAtomLine", "atom %d has names too long for PDB format: %q %q %q", at.ID, at.Name, at.MolName, at.Chain)
	}
	name := at.Name
	if len(name) < 4 {
		name = " " + name //4 chars for the atom name are used when hydrogens are included.
	}
	chain := at.Chain
	if chain == "" {
		chain = " "
	}
	return fmt.Sprintf("%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
		first, at.ID, name, at.MolName, chain, pdbResID(at.MolID), x, y, z, 1.0, 0.0, at.Symbol), nil
}

// pdbResID wraps residue numbers that don't fit in the 4 columns of the
// PDB format around 10000, as VMD and GROMACS do for large systems.
func pdbResID(id int) int {
	if id > 9999 || id < -999 {
		return (id%10000 + 10000) % 10000
	}
	return id
}

// PDBRead reads a PDB file from in, and returns the topology (taken from the
// first model) and the coordinates of each model. Bonds are read from
// CONECT records, if present.
func PDBRead(in io.Reader) (*Topology, []*v3.Matrix, error) {
	scanner := bufio.NewScanner(in)
	ats := make([]*Atom, 0, 100)
	serial2index := make(map[int]int)
	frames := make([]*v3.Matrix, 0, 1)
	current := make([]float64, 0, 300)
	bonds := make([][2]int, 0, 100)
	model := 0
	contlines := 0
	var conects [][]int
	for scanner.Scan() {
		contlines++
		line := scanner.Text()
		rec := ""
		if len(line) >= 6 {
			rec = strings.TrimSpace(line[:6])
		} else {
			rec = strings.TrimSpace(line)
		}
		switch rec {
		case "ATOM", "HETATM":
			at, c, err := readPDBAtomLine(line, contlines)
			if err != nil {
				return nil, nil, ErrDecorate(err, "PDBRead")
			}
			if model == 0 {
				if _, ok := serial2index[at.ID]; ok {
					return nil, nil, NewError(ErrCorrupt, "PDBRead", "repeated atom serial %d in line %d", at.ID, contlines)
				}
				serial2index[at.ID] = len(ats)
				ats = append(ats, at)
			}
			current = append(current, c[:]...)
		case "ENDMDL":
			if len(current) > 0 {
				if err := appendPDBFrame(&frames, current, len(ats)); err != nil {
					return nil, nil, ErrDecorate(err, "PDBRead")
				}
				current = make([]float64, 0, len(ats)*3)
			}
			model++
		case "CONECT":
			c, err := readConect(line, contlines)
			if err != nil {
				return nil, nil, ErrDecorate(err, "PDBRead")
			}
			conects = append(conects, c)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, WrapError(ErrIO, "PDBRead", err)
	}
	if len(current) > 0 {
		if err := appendPDBFrame(&frames, current, len(ats)); err != nil {
			return nil, nil, ErrDecorate(err, "PDBRead")
		}
	}
	if len(ats) == 0 {
		return nil, nil, NewError(ErrCorrupt, "PDBRead", "no atoms found")
	}
	for _, c := range conects {
		i, ok := serial2index[c[0]]
		if !ok {
			return nil, nil, NewError(ErrCorrupt, "PDBRead", "CONECT refers to missing atom %d", c[0])
		}
		for _, s := range c[1:] {
			j, ok := serial2index[s]
			if !ok {
				return nil, nil, NewError(ErrCorrupt, "PDBRead", "CONECT refers to missing atom %d", s)
			}
			bonds = append(bonds, [2]int{i, j})
		}
	}
	top, err := NewTopology(ats, bonds)
	if err != nil {
		return nil, nil, ErrDecorate(err, "PDBRead")
	}
	return top, frames, nil
}

func appendPDBFrame(frames *[]*v3.Matrix, data []float64, natoms int) error {
	if len(data) != natoms*3 {
		return NewError(ErrCorrupt, "appendPDBFrame", "model %d has %d atoms, expected %d", len(*frames)+1, len(data)/3, natoms)
	}
	m, err := v3.NewMatrix(data)
	if err != nil {
		return WrapError(ErrCorrupt, "appendPDBFrame", err)
	}
	*frames = append(*frames, m)
	return nil
}

func pdbField(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

func readPDBAtomLine(line string, contlines int) (*Atom, [3]float64, error) {
	var c [3]float64
	if len(line) < 54 {
		return nil, c, NewError(ErrCorrupt, "readPDBAtomLine", "line %d too short", contlines)
	}
	at := new(Atom)
	var err error
	at.Het = strings.HasPrefix(line, "HETATM")
	at.ID, err = strconv.Atoi(pdbField(line, 6, 11))
	if err != nil {
		return nil, c, NewError(ErrCorrupt, "readPDBAtomLine", "bad serial in line %d: %s", contlines, err)
	}
	at.Name = pdbField(line, 12, 16)
	at.MolName = pdbField(line, 17, 20)
	at.Chain = pdbField(line, 21, 22)
	at.MolID, err = strconv.Atoi(pdbField(line, 22, 26))
	if err != nil {
		return nil, c, NewError(ErrCorrupt, "readPDBAtomLine", "bad residue number in line %d: %s", contlines, err)
	}
	for i := range c {
		c[i], err = strconv.ParseFloat(pdbField(line, 30+8*i, 38+8*i), 64)
		if err != nil {
			return nil, c, NewError(ErrCorrupt, "readPDBAtomLine", "bad coordinate in line %d: %s", contlines, err)
		}
	}
	at.Symbol = pdbField(line, 76, 78)
	if at.Symbol == "" {
		at.Symbol = SymbolFromName(at.Name)
	} else if len(at.Symbol) == 2 {
		at.Symbol = at.Symbol[:1] + strings.ToLower(at.Symbol[1:])
	}
	return at, c, nil
}

func readConect(line string, contlines int) ([]int, error) {
	ret := make([]int, 0, 5)
	for from := 6; from < len(line); from += 5 {
		f := pdbField(line, from, from+5)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, NewError(ErrCorrupt, "readConect", "bad CONECT record in line %d: %s", contlines, err)
		}
		ret = append(ret, n)
	}
	if len(ret) < 2 {
		return nil, NewError(ErrCorrupt, "readConect", "CONECT record with no partners in line %d", contlines)
	}
	return ret, nil
}
