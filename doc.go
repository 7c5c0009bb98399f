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

/*Package cg is the core package of gocg, which prepares the inputs for training
coarse-grained (CG) force fields from atomistic structures and trajectories.

It provides the Atom and Topology types shared by atomistic and CG systems,
PDB reading and writing, bond assignment, some geometric functions, the
FrameSource interface for trajectories that don't fit in memory, and the
Error type used across gocg.

The rest of the work is done in subpackages:

	mapping    atomistic to CG mapping and embeddings
	project    projection of coordinates and forces onto the CG particles
	chemgraph  bond graphs of topologies
	prior      neighbor lists of the prior interactions
	sample     per-molecule processing, datasets and batches
	store      artifact storage (gocloud blob buckets or badger)
	npy        .npy arrays, read and written by the Python trainers
	traj/stf   compressed text trajectories
	cgplot     histograms of bonds, angles and dihedrals
	config     configuration files
	logging    zap loggers

Coordinates (and forces) of a frame are kept in a v3.Matrix, with one
row per particle.
*/
package cg
