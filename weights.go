// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"math"
	"sort"
	"strings"
)

// WeightRecord is one feature's loading on one factor. Factor indexes
// are 1-based throughout.
type WeightRecord struct {
	Feature string
	Factor  int
	Value   float64
}

// WeightTable holds the loadings extracted from one view. (Feature,
// Factor) pairs are unique within a table extracted from a Model.
type WeightTable []WeightRecord

// PairedWeight is the result of joining two weight tables on (Feature,
// Factor): the same feature's loading on the same factor in two views.
type PairedWeight struct {
	Feature string
	Factor  int
	ValueA  float64
	ValueB  float64
}

// Normalize rescales the table in place so its maximum absolute value
// is 1. Signs and relative ordering are unchanged. An all-zero (or
// empty) table is left as is.
func (t WeightTable) Normalize() {
	var max float64
	for _, rec := range t {
		if abs := math.Abs(rec.Value); abs > max {
			max = abs
		}
	}
	if max == 0 {
		return
	}
	for i := range t {
		t[i].Value /= max
	}
}

// StripPrefix removes a modality-specific prefix from every feature
// identifier, e.g. "met_chr1:1000" -> "chr1:1000". Features without the
// prefix are unchanged.
func (t WeightTable) StripPrefix(prefix string) {
	if prefix == "" {
		return
	}
	for i := range t {
		t[i].Feature = strings.TrimPrefix(t[i].Feature, prefix)
	}
}

// Sort orders the table by (factor, feature).
func (t WeightTable) Sort() {
	sort.Slice(t, func(i, j int) bool {
		if t[i].Factor != t[j].Factor {
			return t[i].Factor < t[j].Factor
		}
		return t[i].Feature < t[j].Feature
	})
}

// Top returns the n records for the given factor with the largest
// absolute values, strongest first. Ties break by feature name so the
// ranking is stable across runs.
func (t WeightTable) Top(factor, n int) []WeightRecord {
	var recs []WeightRecord
	for _, rec := range t {
		if rec.Factor == factor {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		ai, aj := math.Abs(recs[i].Value), math.Abs(recs[j].Value)
		if ai != aj {
			return ai > aj
		}
		return recs[i].Feature < recs[j].Feature
	})
	if n < len(recs) {
		recs = recs[:n]
	}
	return recs
}

type weightKey struct {
	feature string
	factor  int
}

// MergeWeights inner-joins two weight tables on (feature, factor). Only
// keys present in both tables appear in the result. Either input may be
// empty, yielding an empty result. Output order is unspecified; callers
// needing determinism sort by (Factor, Feature).
func MergeWeights(a, b WeightTable) []PairedWeight {
	bvals := make(map[weightKey]float64, len(b))
	for _, rec := range b {
		bvals[weightKey{rec.Feature, rec.Factor}] = rec.Value
	}
	var pairs []PairedWeight
	for _, rec := range a {
		if vb, ok := bvals[weightKey{rec.Feature, rec.Factor}]; ok {
			pairs = append(pairs, PairedWeight{
				Feature: rec.Feature,
				Factor:  rec.Factor,
				ValueA:  rec.Value,
				ValueB:  vb,
			})
		}
	}
	return pairs
}

func sortPairs(pairs []PairedWeight) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Factor != pairs[j].Factor {
			return pairs[i].Factor < pairs[j].Factor
		}
		return pairs[i].Feature < pairs[j].Feature
	})
}
