// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package indel

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// BinomialGteNSuccessPValue returns P(X >= nSuccess) for X ~ Binomial(nTrial,
// p).
func BinomialGteNSuccessPValue(p float64, nSuccess, nTrial int) float64 {
	switch {
	case nSuccess <= 0:
		return 1
	case nSuccess > nTrial:
		return 0
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	}
	b := distuv.Binomial{N: float64(nTrial), P: p}
	return b.Survival(float64(nSuccess - 1))
}

// IsRejectBinomialGteNSuccess runs a one-sided exact binomial test of the null
// hypothesis that nSuccess successes in nTrial trials arise from per-trial
// success probability p, rejecting when P(X >= nSuccess) < alpha.  Zero
// successes never reject.
func IsRejectBinomialGteNSuccess(alpha, p float64, nSuccess, nTrial int) bool {
	if nSuccess <= 0 {
		return false
	}
	return BinomialGteNSuccessPValue(p, nSuccess, nTrial) < alpha
}
