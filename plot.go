// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotFactors renders a scatter of two factors' scores for one group.
type plotFactors struct{}

func (cmd *plotFactors) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input `file` (model)")
	outputFilename := flags.String("o", "factors.png", "output `filename` (e.g., './plot.png')")
	group := flags.String("group", "", "group `name` (required)")
	xFactor := flags.Int("x", 1, "1-based factor to plot on x axis")
	yFactor := flags.Int("y", 2, "1-based factor to plot on y axis")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	if *group == "" {
		err = fmt.Errorf("-group is required")
		return 2
	}

	m, err := loadModel(*inputFilename, stdin)
	if err != nil {
		return 1
	}
	xs, err := m.FactorScores(*group, *xFactor)
	if err != nil {
		return 1
	}
	ys, err := m.FactorScores(*group, *yFactor)
	if err != nil {
		return 1
	}
	xys := make(plotter.XYs, len(xs))
	for i := range xs {
		xys[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Factor scores\ngroup %s", *group)
	p.X.Label.Text = fmt.Sprintf("Factor %d", *xFactor)
	p.Y.Label.Text = fmt.Sprintf("Factor %d", *yFactor)
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return 1
	}
	p.Add(plotter.NewGrid(), scatter)
	err = p.Save(18*vg.Centimeter, 15*vg.Centimeter, *outputFilename)
	if err != nil {
		return 1
	}
	return 0
}

// plotWeights renders, per factor, a scatter of the normalized weights
// shared between two views.
type plotWeights struct{}

func (cmd *plotWeights) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input `file` (model)")
	outputDir := flags.String("output-dir", ".", "output `directory` for per-factor png files")
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
	byFactor := map[int][]PairedWeight{}
	for _, pw := range pairs {
		byFactor[pw.Factor] = append(byFactor[pw.Factor], pw)
	}

	// Factors are independent once extracted, so render concurrently.
	var (
		wg       sync.WaitGroup
		mtx      sync.Mutex
		firstErr error
	)
	for k, factorPairs := range byFactor {
		k, factorPairs := k, factorPairs
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := filepath.Join(*outputDir, fmt.Sprintf("weights_%s_%s_f%02d.png", *viewA, *viewB, k))
			err := plotPairedWeights(path, *viewA, *viewB, k, factorPairs)
			if err != nil {
				log.Println(err)
				mtx.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mtx.Unlock()
			}
		}()
	}
	wg.Wait()
	err = firstErr
	if err != nil {
		return 1
	}
	return 0
}

func plotPairedWeights(path, viewA, viewB string, factor int, pairs []PairedWeight) error {
	xys := make(plotter.XYs, len(pairs))
	for i, pw := range pairs {
		xys[i] = plotter.XY{X: pw.ValueA, Y: pw.ValueB}
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Factor %d weights\n%s vs %s", factor, viewA, viewB)
	p.X.Label.Text = viewA
	p.Y.Label.Text = viewB
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	p.Add(plotter.NewGrid(), scatter)
	return p.Save(18*vg.Centimeter, 15*vg.Centimeter, path)
}
