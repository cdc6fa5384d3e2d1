// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffTop compares the ranked top-N features of one factor in one view
// between two model archives, e.g. two training runs of the same data.
type diffTop struct{}

func (cmd *diffTop) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	view := flags.String("view", "", "view `name` (required)")
	factor := flags.Int("factor", 1, "1-based factor index")
	n := flags.Int("n", 20, "number of top features to compare")
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
	if flags.NArg() != 2 {
		err = fmt.Errorf("usage: %s [options] model-a.gob model-b.gob", prog)
		return 2
	}

	lists := make([]string, 2)
	for i, filename := range flags.Args() {
		var m *Model
		m, err = loadModel(filename, stdin)
		if err != nil {
			return 1
		}
		var table WeightTable
		table, err = m.Weights(*view, []int{*factor})
		if err != nil {
			return 1
		}
		table.Normalize()
		var lines []string
		for _, rec := range table.Top(*factor, *n) {
			lines = append(lines, rec.Feature)
		}
		lists[i] = strings.Join(lines, "\n") + "\n"
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(lists[0], lists[1])
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)
	bufw := bufio.NewWriter(stdout)
	same := true
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix, same = "-", false
		case diffmatchpatch.DiffInsert:
			prefix, same = "+", false
		default:
			prefix = " "
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			fmt.Fprintf(bufw, "%s %s\n", prefix, line)
		}
	}
	err = bufw.Flush()
	if err != nil {
		return 1
	}
	if !same {
		return 1
	}
	return 0
}
