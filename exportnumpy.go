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
	"path/filepath"

	"github.com/kshedden/gonpy"
	log "github.com/sirupsen/logrus"
)

type exportNumpy struct{}

func (cmd *exportNumpy) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "input `file` (model)")
	outputDir := flags.String("output-dir", ".", "output `directory`")
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

	for _, v := range m.Views {
		npy := filepath.Join(*outputDir, "weights_"+v.Name+".npy")
		log.Printf("writing %s: %d rows, %d cols", npy, len(v.Features), m.NumFactors)
		err = writeNumpy(npy, v.Weights, len(v.Features), m.NumFactors)
		if err != nil {
			return 1
		}
		err = writeNames(filepath.Join(*outputDir, "weights_"+v.Name+".csv"), v.Features)
		if err != nil {
			return 1
		}
	}
	for _, g := range m.Groups {
		npy := filepath.Join(*outputDir, "scores_"+g.Name+".npy")
		log.Printf("writing %s: %d rows, %d cols", npy, len(g.Samples), m.NumFactors)
		err = writeNumpy(npy, g.Scores, len(g.Samples), m.NumFactors)
		if err != nil {
			return 1
		}
		err = writeNames(filepath.Join(*outputDir, "scores_"+g.Name+".csv"), g.Samples)
		if err != nil {
			return 1
		}
	}
	return 0
}

func writeNumpy(filename string, data []float64, rows, cols int) error {
	output, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0777)
	if err != nil {
		return err
	}
	defer output.Close()
	bufw := bufio.NewWriter(output)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return err
	}
	npw.Shape = []int{rows, cols}
	err = npw.WriteFloat64(data)
	if err != nil {
		return err
	}
	err = bufw.Flush()
	if err != nil {
		return err
	}
	return output.Close()
}

func writeNames(filename string, names []string) error {
	output, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0777)
	if err != nil {
		return err
	}
	defer output.Close()
	bufw := bufio.NewWriter(output)
	for i, name := range names {
		_, err = fmt.Fprintf(bufw, "%d,%s\n", i, name)
		if err != nil {
			return err
		}
	}
	err = bufw.Flush()
	if err != nil {
		return err
	}
	return output.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
