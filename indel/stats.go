// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package indel

import (
	"fmt"
	"io"
)

// Stats counts the outcome of every joint candidacy evaluation in a SyncGroup.
// Each evaluation increments Evaluated once and exactly one of the terminal
// counters (External, HpolFail, MinCountFail, MinFracFail, OpenLengthFail,
// MaxDepthFail, Candidates); HpolTested and HpolPass record the homopolymer
// stage along the way.
type Stats struct {
	Evaluated      int64
	External       int64
	HpolTested     int64
	HpolPass       int64
	HpolFail       int64
	GenericTested  int64
	MinCountFail   int64
	MinFracFail    int64
	OpenLengthFail int64
	MaxDepthFail   int64
	Candidates     int64
}

// Add adds the counters in o to s.
func (s *Stats) Add(o Stats) {
	s.Evaluated += o.Evaluated
	s.External += o.External
	s.HpolTested += o.HpolTested
	s.HpolPass += o.HpolPass
	s.HpolFail += o.HpolFail
	s.GenericTested += o.GenericTested
	s.MinCountFail += o.MinCountFail
	s.MinFracFail += o.MinFracFail
	s.OpenLengthFail += o.OpenLengthFail
	s.MaxDepthFail += o.MaxDepthFail
	s.Candidates += o.Candidates
}

// WriteTo writes the counters as "name\tvalue" lines.
func (s Stats) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, f := range []struct {
		name string
		val  int64
	}{
		{"evaluated", s.Evaluated},
		{"external", s.External},
		{"hpol_tested", s.HpolTested},
		{"hpol_pass", s.HpolPass},
		{"hpol_fail", s.HpolFail},
		{"generic_tested", s.GenericTested},
		{"min_count_fail", s.MinCountFail},
		{"min_frac_fail", s.MinFracFail},
		{"open_length_fail", s.OpenLengthFail},
		{"max_depth_fail", s.MaxDepthFail},
		{"candidates", s.Candidates},
	} {
		n, err := fmt.Fprintf(w, "%s\t%d\n", f.name, f.val)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
