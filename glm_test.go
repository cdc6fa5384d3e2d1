// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"math"

	"gopkg.in/check.v1"
)

type glmSuite struct{}

var _ = check.Suite(&glmSuite{})

func (s *glmSuite) TestFactorPvalues(c *check.C) {
	// 12 samples, 2 factors. Factor 1 tracks case status (with overlap,
	// so the fit stays well conditioned); factor 2 alternates
	// independently of it.
	isCase := []bool{false, false, false, false, false, false, true, true, true, true, true, true}
	f1 := []float64{0.1, 0.3, -0.2, 0.5, 0.0, 0.9, 1.8, 2.2, 1.1, 0.4, 2.5, 1.9}
	f2 := []float64{1, -1, 1, -1, 1, -1, 1, -1, 1, -1, 1, -1}
	scores := make([]float64, 0, 24)
	for i := range isCase {
		scores = append(scores, f1[i], f2[i])
	}

	pvalues := factorPvalues(scores, len(isCase), 2, isCase)
	c.Assert(pvalues, check.HasLen, 2)
	for k, p := range pvalues {
		c.Check(math.IsNaN(p), check.Equals, false, check.Commentf("factor %d", k+1))
		c.Check(p > 0 && p <= 1, check.Equals, true, check.Commentf("factor %d: p = %v", k+1, p))
	}
	c.Check(pvalues[0] < pvalues[1], check.Equals, true, check.Commentf("p = %v", pvalues))
	c.Check(pvalues[0] < 0.05, check.Equals, true, check.Commentf("p = %v", pvalues))
}

func (s *glmSuite) TestFactorPvaluesConstantScores(c *check.C) {
	isCase := []bool{false, true, false, true}
	scores := []float64{3, 3, 3, 3} // one factor, constant for every sample
	pvalues := factorPvalues(scores, 4, 1, isCase)
	c.Assert(pvalues, check.HasLen, 1)
	// A constant factor carries no information; the fit either degrades
	// to the null model (p near 1) or fails outright (NaN).
	if !math.IsNaN(pvalues[0]) {
		c.Check(pvalues[0] > 0.5, check.Equals, true, check.Commentf("p = %v", pvalues[0]))
	}
}
