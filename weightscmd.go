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
	"strconv"
	"strings"
)

type weightscmd struct{}

func (cmd *weightscmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
	view := flags.String("view", "", "view `name` (required)")
	factorList := flags.String("factors", "", "comma-separated 1-based factor `indexes` (default all)")
	normalize := flags.Bool("normalize", false, "rescale so the maximum absolute weight is 1")
	stripPrefix := flags.String("strip-prefix", "", "strip `prefix` from feature identifiers")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	if *view == "" {
		err = fmt.Errorf("-view is required")
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
	table, err := m.Weights(*view, factors)
	if err != nil {
		return 1
	}
	table.StripPrefix(*stripPrefix)
	if *normalize {
		table.Normalize()
	}
	table.Sort()

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
	fmt.Fprintln(bufw, "feature\tfactor\tweight")
	for _, rec := range table {
		fmt.Fprintf(bufw, "%s\t%d\t%v\n", rec.Feature, rec.Factor, rec.Value)
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

func parseFactorList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var factors []int
	for _, field := range strings.Split(s, ",") {
		k, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("factor list %q: %w", s, err)
		}
		factors = append(factors, k)
	}
	return factors, nil
}
