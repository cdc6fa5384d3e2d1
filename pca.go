// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"flag"
	"fmt"
	"io"

	"github.com/james-bowman/nlp"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// pcacmd runs a plain PCA of one view's stored data matrix, for
// comparing the model's learned factors against unsupervised principal
// components of the same data.
type pcacmd struct{}

func (cmd *pcacmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input `file` (model)")
	outputFilename := flags.String("o", "pca.npy", "output `file` (npy, samples x components)")
	view := flags.String("view", "", "view `name` (required)")
	group := flags.String("group", "", "group `name` (required)")
	components := flags.Int("components", 4, "number of components")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	if *view == "" || *group == "" {
		err = fmt.Errorf("-view and -group are required")
		return 2
	}

	log.Print("reading")
	m, err := loadModel(*inputFilename, stdin)
	if err != nil {
		return 1
	}
	v := m.View(*view)
	if v == nil {
		err = fmt.Errorf("unknown view %q: %w", *view, ErrInvalidArgument)
		return 1
	}
	g := m.Group(*group)
	if g == nil {
		err = fmt.Errorf("unknown group %q: %w", *group, ErrInvalidArgument)
		return 1
	}
	data, ok := g.Data[*view]
	if !ok {
		err = fmt.Errorf("group %q has no data matrix for view %q", *group, *view)
		return 1
	}

	mtx := mat.NewDense(len(g.Samples), len(v.Features), append([]float64(nil), data...)).T()

	log.Print("fitting")
	transformer := nlp.NewPCA(*components)
	transformer.Fit(mtx)
	log.Print("transforming")
	transformed, err := transformer.Transform(mtx)
	if err != nil {
		return 1
	}
	transformed = transformed.T()

	rows, cols := transformed.Dims()
	log.Printf("writing %s: %d rows, %d cols", *outputFilename, rows, cols)
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = transformed.At(i, j)
		}
	}
	err = writeNumpy(*outputFilename, out, rows, cols)
	if err != nil {
		return 1
	}
	log.Print("done")
	return 0
}
