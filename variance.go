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

	"gonum.org/v1/gonum/mat"
)

type variancecmd struct{}

func (cmd *variancecmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
	rows, err := varianceExplained(m)
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
	bufw := bufio.NewWriter(output)
	fmt.Fprintln(bufw, "group\tview\tfactor\tr2")
	for _, row := range rows {
		fmt.Fprintf(bufw, "%s\t%s\t%d\t%v\n", row.Group, row.View, row.Factor, row.R2)
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

type varianceRow struct {
	Group  string
	View   string
	Factor int
	R2     float64
}

// varianceExplained decomposes each stored data matrix by factor: the
// fraction of total sum of squares removed by subtracting the factor's
// rank-1 reconstruction, 1 - ||Y - z_k w_k'||^2 / ||Y||^2. Groups
// without data matrices contribute no rows.
func varianceExplained(m *Model) ([]varianceRow, error) {
	var rows []varianceRow
	for _, g := range m.Groups {
		for _, v := range m.Views {
			data, ok := g.Data[v.Name]
			if !ok {
				continue
			}
			y := mat.NewDense(len(g.Samples), len(v.Features), data)
			total := mat.Norm(y, 2)
			total *= total
			if total == 0 {
				continue
			}
			for k := 1; k <= m.NumFactors; k++ {
				scores, err := m.FactorScores(g.Name, k)
				if err != nil {
					return nil, err
				}
				zk := mat.NewVecDense(len(g.Samples), scores)
				wk := mat.NewVecDense(len(v.Features), v.FactorWeights(m.NumFactors, k))
				var resid mat.Dense
				resid.Outer(-1, zk, wk)
				resid.Add(&resid, y)
				ss := mat.Norm(&resid, 2)
				ss *= ss
				rows = append(rows, varianceRow{
					Group:  g.Name,
					View:   v.Name,
					Factor: k,
					R2:     1 - ss/total,
				})
			}
		}
	}
	return rows, nil
}
