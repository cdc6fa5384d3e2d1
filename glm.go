// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"io"
	"log"
	"math"

	"github.com/kshedden/statmodel/glm"
	"github.com/kshedden/statmodel/statmodel"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var glmConfig = &glm.Config{
	Family:         glm.NewFamily(glm.BinomialFamily),
	FitMethod:      "IRLS",
	ConcurrentIRLS: 1000,
	Log:            log.New(io.Discard, "", 0),
}

func standardize(a []float64) {
	mean, std := stat.MeanStdDev(a, nil)
	if std == 0 {
		return
	}
	for i, x := range a {
		a[i] = (x - mean) / std
	}
}

// factorPvalues fits, for each factor, a logistic regression of case
// status on that factor's standardized scores and returns the
// likelihood-ratio p-value against the intercept-only model. A fit that
// fails (e.g. a singular design) yields NaN for that factor.
func factorPvalues(scores []float64, nsamples, nfactors int, isCase []bool) []float64 {
	outcome := make([]statmodel.Dtype, nsamples)
	constants := make([]statmodel.Dtype, nsamples)
	for i := 0; i < nsamples; i++ {
		if isCase[i] {
			outcome[i] = 1
		}
		constants[i] = 1
	}
	null := statmodel.NewDataset([][]statmodel.Dtype{outcome, constants}, []string{"outcome", "constants"})
	nullModel, err := glm.NewGLM(null, "outcome", []string{"constants"}, glmConfig)
	if err != nil {
		pvalues := make([]float64, nfactors)
		for k := range pvalues {
			pvalues[k] = math.NaN()
		}
		return pvalues
	}
	logNull := nullModel.Fit().LogLike()

	pvalues := make([]float64, nfactors)
	for k := 0; k < nfactors; k++ {
		pvalues[k] = func() (p float64) {
			defer func() {
				if recover() != nil {
					// typically "matrix singular or near-singular with condition number +Inf"
					p = math.NaN()
				}
			}()
			series := make([]statmodel.Dtype, nsamples)
			for i := 0; i < nsamples; i++ {
				series[i] = scores[i*nfactors+k]
			}
			standardize(series)
			dataset := statmodel.NewDataset(
				[][]statmodel.Dtype{outcome, constants, series},
				[]string{"outcome", "constants", "factor"})
			model, err := glm.NewGLM(dataset, "outcome", []string{"constants", "factor"}, glmConfig)
			if err != nil {
				return math.NaN()
			}
			logComp := model.Fit().LogLike()
			dist := distuv.ChiSquared{K: 1}
			return dist.Survival(-2 * (logNull - logComp))
		}()
	}
	return pvalues
}
