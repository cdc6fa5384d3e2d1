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
)

type dumpcmd struct{}

func (cmd *dumpcmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input `file` (model)")
	outputFilename := flags.String("o", "-", "output `file`")
	features := flags.Bool("features", false, "also list every feature with its weights")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}

	m, err := loadModel(*inputFilename, stdin)
	if err != nil {
		return 1
	}

	var output io.WriteCloser
	if *outputFilename == "-" {
		output = nopCloser{stdout}
	} else {
		output, err = os.OpenFile(*outputFilename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return 1
		}
		defer output.Close()
	}
	bufw := bufio.NewWriter(output)

	fmt.Fprintf(bufw, "model: %d factors, %d views, %d groups\n", m.NumFactors, len(m.Views), len(m.Groups))
	for _, v := range m.Views {
		fmt.Fprintf(bufw, "view %q: %d features, weights %d x %d\n", v.Name, len(v.Features), len(v.Features), m.NumFactors)
		if *features {
			for i, feature := range v.Features {
				fmt.Fprintf(bufw, "view %q: feature %q", v.Name, feature)
				for k := 0; k < m.NumFactors; k++ {
					fmt.Fprintf(bufw, " %v", v.Weights[i*m.NumFactors+k])
				}
				fmt.Fprintln(bufw)
			}
		}
	}
	for _, g := range m.Groups {
		fmt.Fprintf(bufw, "group %q: %d samples, scores %d x %d\n", g.Name, len(g.Samples), len(g.Samples), m.NumFactors)
		views := make([]string, 0, len(g.Data))
		for view := range g.Data {
			views = append(views, view)
		}
		sort.Strings(views)
		for _, view := range views {
			fmt.Fprintf(bufw, "group %q: data for view %q, %d values\n", g.Name, view, len(g.Data[view]))
		}
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
