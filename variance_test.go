// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"math"

	"gopkg.in/check.v1"
)

type varianceSuite struct{}

var _ = check.Suite(&varianceSuite{})

func (s *varianceSuite) TestVarianceExplained(c *check.C) {
	// testModel's data matrices are exact rank-1 reconstructions from
	// factor 1, and factor 2's scores only touch samples whose data is
	// the negation/zero rows, so factor 1 explains everything.
	m := testModel()
	rows, err := varianceExplained(m)
	c.Assert(err, check.IsNil)
	c.Assert(rows, check.HasLen, 4) // 1 group x 2 views x 2 factors

	byKey := map[string]float64{}
	for _, row := range rows {
		c.Check(row.Group, check.Equals, "e7")
		byKey[row.View+"/"+string(rune('0'+row.Factor))] = row.R2
	}
	c.Check(math.Abs(byKey["met/1"]-1) < 1e-12, check.Equals, true, check.Commentf("r2 = %v", byKey["met/1"]))
	c.Check(math.Abs(byKey["acc/1"]-1) < 1e-12, check.Equals, true, check.Commentf("r2 = %v", byKey["acc/1"]))
	// Factor 2's reconstruction only makes the fit worse here.
	c.Check(byKey["met/2"] < 1, check.Equals, true)
	c.Check(byKey["acc/2"] < 1, check.Equals, true)
}

func (s *varianceSuite) TestVarianceExplainedNoData(c *check.C) {
	m := testModel()
	m.Groups[0].Data = nil
	rows, err := varianceExplained(m)
	c.Check(err, check.IsNil)
	c.Check(rows, check.HasLen, 0)
}

func (s *varianceSuite) TestVarianceExplainedZeroData(c *check.C) {
	m := testModel()
	for view := range m.Groups[0].Data {
		for i := range m.Groups[0].Data[view] {
			m.Groups[0].Data[view][i] = 0
		}
	}
	// All-zero data has no variance to explain; no rows, no error.
	rows, err := varianceExplained(m)
	c.Check(err, check.IsNil)
	c.Check(rows, check.HasLen, 0)
}
