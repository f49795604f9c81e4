// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package indel decides which observed indels are candidate variants in a
// joint analysis of several samples.
//
// Each sample owns a Buffer of per-indel evidence and a pair of DepthBuffers.
// The samples analyzed together are registered in a SyncGroup, and each sample
// gets its own Synchronizer.  Inserting an indel through a Synchronizer makes
// the indel visible in every sample's Buffer; asking a Synchronizer whether an
// indel is a candidate runs the joint test once over all samples' evidence and
// caches the decision in every sample's Data, so all samples agree.
//
// Nothing in this package blocks or is safe for concurrent use.  Distinct
// analysis regions should use distinct groups.
package indel
