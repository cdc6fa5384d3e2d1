// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

type comparecmd struct{}

func (cmd *comparecmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input `file` (model)")
	outputFilename := flags.String("o", "-", "output `file` (tsv)")
	viewA := flags.String("view-a", "", "first view `name` (required)")
	viewB := flags.String("view-b", "", "second view `name` (required)")
	factorList := flags.String("factors", "", "comma-separated 1-based factor `indexes` (default all)")
	stripPrefixA := flags.String("strip-prefix-a", "", "strip `prefix` from first view's feature identifiers")
	stripPrefixB := flags.String("strip-prefix-b", "", "strip `prefix` from second view's feature identifiers")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	if *viewA == "" || *viewB == "" {
		err = fmt.Errorf("-view-a and -view-b are required")
		return 2
	}
	factors, err := parseFactorList(*factorList)
	if err != nil {
		return 2
	}

	m, err := loadModel(*inputFilename, stdin)
	if err != nil {
		return 1
	}
	pairs, err := compareViews(m, *viewA, *viewB, factors, *stripPrefixA, *stripPrefixB)
	if err != nil {
		return 1
	}
	sortPairs(pairs)
	for _, fc := range factorCorrelations(pairs) {
		log.Printf("factor %d: %d shared features, r = %.4f", fc.Factor, fc.N, fc.R)
	}

	var output io.WriteCloser
	if *outputFilename == "-" {
		output = nopCloser{stdout}
	} else {
		output, err = os.OpenFile(*outputFilename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0777)
		if err != nil {
			return 1
		}
		defer output.Close()
	}
	bufw := bufio.NewWriter(output)
	fmt.Fprintln(bufw, "feature\tfactor\tweight_a\tweight_b")
	for _, pw := range pairs {
		fmt.Fprintf(bufw, "%s\t%d\t%v\t%v\n", pw.Feature, pw.Factor, pw.ValueA, pw.ValueB)
	}
	err = bufw.Flush()
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}

// compareViews extracts the two views' weights for the given factors,
// strips modality prefixes, normalizes each table independently, and
// joins on (feature, factor). Only features present in both views
// survive the join.
func compareViews(m FactorModel, viewA, viewB string, factors []int, prefixA, prefixB string) ([]PairedWeight, error) {
	a, err := m.Weights(viewA, factors)
	if err != nil {
		return nil, err
	}
	b, err := m.Weights(viewB, factors)
	if err != nil {
		return nil, err
	}
	a.StripPrefix(prefixA)
	b.StripPrefix(prefixB)
	a.Normalize()
	b.Normalize()
	return MergeWeights(a, b), nil
}

type factorCorrelation struct {
	Factor int
	N      int
	R      float64
}

// factorCorrelations reports the Pearson correlation of paired weights
// per factor, in factor order.
func factorCorrelations(pairs []PairedWeight) []factorCorrelation {
	byFactor := map[int][]PairedWeight{}
	for _, pw := range pairs {
		byFactor[pw.Factor] = append(byFactor[pw.Factor], pw)
	}
	factors := make([]int, 0, len(byFactor))
	for k := range byFactor {
		factors = append(factors, k)
	}
	sort.Ints(factors)
	var ret []factorCorrelation
	for _, k := range factors {
		xs := make([]float64, len(byFactor[k]))
		ys := make([]float64, len(byFactor[k]))
		for i, pw := range byFactor[k] {
			xs[i] = pw.ValueA
			ys[i] = pw.ValueB
		}
		ret = append(ret, factorCorrelation{
			Factor: k,
			N:      len(xs),
			R:      stat.Correlation(xs, ys, nil),
		})
	}
	return ret
}
