// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is wrapped by errors returned for an unknown view
// name or a factor index outside [1, FactorCount].
var ErrInvalidArgument = errors.New("invalid argument")

// FactorModel is the read-only surface of a trained factor model needed
// by the analysis commands. Model implements it; tests use a lightweight
// fake instead of building a full archive.
type FactorModel interface {
	ListViews() []string
	FactorCount() int
	Weights(view string, factors []int) (WeightTable, error)
}

// Model is a trained multi-omics factor model: K latent factors, a
// feature weight matrix per view (data modality), and a factor score
// matrix per group (sample partition). Matrices are stored row-major so
// the whole model can be gob-encoded as is.
type Model struct {
	NumFactors int
	Views      []*View
	Groups     []*Group
}

type View struct {
	Name     string
	Features []string
	// Weights is len(Features) x NumFactors, row-major.
	Weights []float64
}

type Group struct {
	Name    string
	Samples []string
	// Scores is len(Samples) x NumFactors, row-major.
	Scores []float64
	// Data maps view name to a len(Samples) x len(view.Features)
	// row-major matrix of (centered) training data. Optional: absent
	// views have no entry.
	Data map[string][]float64
}

var _ FactorModel = (*Model)(nil)

func (m *Model) ListViews() []string {
	names := make([]string, len(m.Views))
	for i, v := range m.Views {
		names[i] = v.Name
	}
	return names
}

func (m *Model) FactorCount() int { return m.NumFactors }

// View returns the named view, or nil.
func (m *Model) View(name string) *View {
	for _, v := range m.Views {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Group returns the named group, or nil.
func (m *Model) Group(name string) *Group {
	for _, g := range m.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Weights returns one record per (feature, factor) pair for the given
// view. Factor indexes are 1-based; an empty factors list means all
// factors. Records are ordered by (factor, feature position).
func (m *Model) Weights(view string, factors []int) (WeightTable, error) {
	v := m.View(view)
	if v == nil {
		return nil, fmt.Errorf("unknown view %q: %w", view, ErrInvalidArgument)
	}
	if len(factors) == 0 {
		factors = make([]int, m.NumFactors)
		for i := range factors {
			factors[i] = i + 1
		}
	}
	for _, k := range factors {
		if k < 1 || k > m.NumFactors {
			return nil, fmt.Errorf("factor %d out of range [1, %d]: %w", k, m.NumFactors, ErrInvalidArgument)
		}
	}
	table := make(WeightTable, 0, len(factors)*len(v.Features))
	for _, k := range factors {
		for i, feature := range v.Features {
			table = append(table, WeightRecord{
				Feature: feature,
				Factor:  k,
				Value:   v.Weights[i*m.NumFactors+k-1],
			})
		}
	}
	return table, nil
}

// FactorScores returns the given 1-based factor's score for each sample
// in the named group.
func (m *Model) FactorScores(group string, factor int) ([]float64, error) {
	g := m.Group(group)
	if g == nil {
		return nil, fmt.Errorf("unknown group %q: %w", group, ErrInvalidArgument)
	}
	if factor < 1 || factor > m.NumFactors {
		return nil, fmt.Errorf("factor %d out of range [1, %d]: %w", factor, m.NumFactors, ErrInvalidArgument)
	}
	scores := make([]float64, len(g.Samples))
	for i := range g.Samples {
		scores[i] = g.Scores[i*m.NumFactors+factor-1]
	}
	return scores, nil
}

// FactorWeights returns the given 1-based factor's weight for each
// feature in the view, in feature order.
func (v *View) FactorWeights(numFactors, factor int) []float64 {
	weights := make([]float64, len(v.Features))
	for i := range v.Features {
		weights[i] = v.Weights[i*numFactors+factor-1]
	}
	return weights
}

// Check verifies that all matrix sizes are consistent with the declared
// feature, sample, and factor counts, and that view/group/feature names
// are unique.
func (m *Model) Check() error {
	if m.NumFactors < 1 {
		return fmt.Errorf("model has %d factors", m.NumFactors)
	}
	viewFeatures := map[string]int{}
	for _, v := range m.Views {
		if _, dup := viewFeatures[v.Name]; dup {
			return fmt.Errorf("duplicate view %q", v.Name)
		}
		viewFeatures[v.Name] = len(v.Features)
		if len(v.Weights) != len(v.Features)*m.NumFactors {
			return fmt.Errorf("view %q: weight matrix is %d values, expected %d features x %d factors", v.Name, len(v.Weights), len(v.Features), m.NumFactors)
		}
		seen := map[string]bool{}
		for _, f := range v.Features {
			if seen[f] {
				return fmt.Errorf("view %q: duplicate feature %q", v.Name, f)
			}
			seen[f] = true
		}
	}
	groups := map[string]bool{}
	for _, g := range m.Groups {
		if groups[g.Name] {
			return fmt.Errorf("duplicate group %q", g.Name)
		}
		groups[g.Name] = true
		if len(g.Scores) != len(g.Samples)*m.NumFactors {
			return fmt.Errorf("group %q: score matrix is %d values, expected %d samples x %d factors", g.Name, len(g.Scores), len(g.Samples), m.NumFactors)
		}
		for view, data := range g.Data {
			nfeat, ok := viewFeatures[view]
			if !ok {
				return fmt.Errorf("group %q: data for unknown view %q", g.Name, view)
			}
			if len(data) != len(g.Samples)*nfeat {
				return fmt.Errorf("group %q view %q: data matrix is %d values, expected %d samples x %d features", g.Name, view, len(data), len(g.Samples), nfeat)
			}
		}
	}
	return nil
}
