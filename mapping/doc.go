/*
 * doc.go, part of gocg.
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

/*Package mapping reduces an atomistic topology to a coarse-grained (CG) one.

Map selects the retained atoms by name, assigns each one an embedding code using a
scheme from the Registry and a Dictionary, builds the selection (slicing) matrix
and renumbers residues so that identical chains don't share residue numbers.
AddTerminalEmbeddings gives the N- and C-terminal beads of each chain their own codes.

Nothing in this package modifies its inputs: new topologies are derived with
cg.Topology.Rebuild.
*/
package mapping
