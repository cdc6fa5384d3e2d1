// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

type statscmd struct{}

func (cmd *statscmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
		output, err = os.OpenFile(*outputFilename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0777)
		if err != nil {
			return 1
		}
		defer output.Close()
	}
	err = cmd.doStats(m, output)
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}

type viewStats struct {
	Name         string
	Features     int
	MaxAbsWeight []float64 // per factor
}

type groupStats struct {
	Name      string
	Samples   int
	DataViews []string `json:",omitempty"`
}

func (cmd *statscmd) doStats(m *Model, output io.Writer) error {
	var ret struct {
		Factors int
		Views   []viewStats
		Groups  []groupStats
	}
	ret.Factors = m.NumFactors
	for _, v := range m.Views {
		vs := viewStats{
			Name:         v.Name,
			Features:     len(v.Features),
			MaxAbsWeight: make([]float64, m.NumFactors),
		}
		for i := range v.Features {
			for k := 0; k < m.NumFactors; k++ {
				if abs := math.Abs(v.Weights[i*m.NumFactors+k]); abs > vs.MaxAbsWeight[k] {
					vs.MaxAbsWeight[k] = abs
				}
			}
		}
		ret.Views = append(ret.Views, vs)
	}
	for _, g := range m.Groups {
		gs := groupStats{Name: g.Name, Samples: len(g.Samples)}
		for view := range g.Data {
			gs.DataViews = append(gs.DataViews, view)
		}
		sort.Strings(gs.DataViews)
		ret.Groups = append(ret.Groups, gs)
	}
	return json.NewEncoder(output).Encode(ret)
}
