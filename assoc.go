// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// assoccmd tests each factor's scores for association with a binary
// sample covariate (e.g. condition or developmental stage) using a
// logistic regression likelihood-ratio test.
type assoccmd struct{}

func (cmd *assoccmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
	group := flags.String("group", "", "group `name` (required)")
	phenotypeFilename := flags.String("phenotype", "", "`phenotype.csv` with sample,status rows, status 0 or 1 (required)")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	if *group == "" || *phenotypeFilename == "" {
		err = fmt.Errorf("-group and -phenotype are required")
		return 2
	}

	m, err := loadModel(*inputFilename, stdin)
	if err != nil {
		return 1
	}
	g := m.Group(*group)
	if g == nil {
		err = fmt.Errorf("unknown group %q: %w", *group, ErrInvalidArgument)
		return 1
	}
	phenotype, err := readPhenotype(*phenotypeFilename)
	if err != nil {
		return 1
	}

	// Samples without a phenotype entry are excluded from the fit.
	var scores []float64
	var isCase []bool
	for i, sample := range g.Samples {
		status, ok := phenotype[sample]
		if !ok {
			continue
		}
		scores = append(scores, g.Scores[i*m.NumFactors:(i+1)*m.NumFactors]...)
		isCase = append(isCase, status)
	}
	if len(isCase) == 0 {
		err = fmt.Errorf("no samples in group %q have phenotype entries", *group)
		return 1
	}
	log.Printf("fitting %d factors on %d of %d samples", m.NumFactors, len(isCase), len(g.Samples))
	pvalues := factorPvalues(scores, len(isCase), m.NumFactors, isCase)

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
	fmt.Fprintln(bufw, "factor\tp_value")
	for k, p := range pvalues {
		fmt.Fprintf(bufw, "%d\t%v\n", k+1, p)
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

func readPhenotype(filename string) (map[string]bool, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	phenotype := map[string]bool{}
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("%s: row %d has %d fields, expected 2", filename, i+1, len(row))
		}
		switch row[1] {
		case "0":
			phenotype[row[0]] = false
		case "1":
			phenotype[row[0]] = true
		default:
			return nil, fmt.Errorf("%s: row %d: status %q is not 0 or 1", filename, i+1, row[1])
		}
	}
	return phenotype, nil
}
