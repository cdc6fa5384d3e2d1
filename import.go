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

	log "github.com/sirupsen/logrus"
)

// nameFile is a "name=filename" command line argument.
type nameFile struct {
	name string
	file string
}

type nameFileList []nameFile

func (l *nameFileList) String() string {
	var parts []string
	for _, nf := range *l {
		parts = append(parts, nf.name+"="+nf.file)
	}
	return strings.Join(parts, ",")
}

func (l *nameFileList) Set(s string) error {
	name, file, ok := strings.Cut(s, "=")
	if !ok || name == "" || file == "" {
		return fmt.Errorf("%q is not in name=filename form", s)
	}
	*l = append(*l, nameFile{name: name, file: file})
	return nil
}

type importer struct {
	weightFiles nameFileList
	scoreFiles  nameFileList
	dataFiles   nameFileList
}

func (cmd *importer) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	outputFilename := flags.String("o", "-", "output `file` (model.gob or model.gob.gz)")
	flags.Var(&cmd.weightFiles, "weights", "`view=file.tsv` weight matrix, rows features x cols factors (repeatable)")
	flags.Var(&cmd.scoreFiles, "scores", "`group=file.tsv` factor score matrix, rows samples x cols factors (repeatable)")
	flags.Var(&cmd.dataFiles, "data", "`view/group=file.tsv` data matrix, rows samples x cols features (repeatable)")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	if len(cmd.weightFiles) == 0 {
		err = fmt.Errorf("at least one -weights view=file.tsv argument is required")
		return 2
	}

	m := &Model{}
	for _, nf := range cmd.weightFiles {
		var features, factorNames []string
		var weights []float64
		features, factorNames, weights, err = readMatrixTSV(nf.file)
		if err != nil {
			return 1
		}
		if m.NumFactors == 0 {
			m.NumFactors = len(factorNames)
		} else if len(factorNames) != m.NumFactors {
			err = fmt.Errorf("%s: %d factor columns, expected %d", nf.file, len(factorNames), m.NumFactors)
			return 1
		}
		log.Printf("view %q: %d features, %d factors", nf.name, len(features), m.NumFactors)
		m.Views = append(m.Views, &View{Name: nf.name, Features: features, Weights: weights})
	}
	for _, nf := range cmd.scoreFiles {
		var samples, factorNames []string
		var scores []float64
		samples, factorNames, scores, err = readMatrixTSV(nf.file)
		if err != nil {
			return 1
		}
		if len(factorNames) != m.NumFactors {
			err = fmt.Errorf("%s: %d factor columns, expected %d", nf.file, len(factorNames), m.NumFactors)
			return 1
		}
		log.Printf("group %q: %d samples", nf.name, len(samples))
		m.Groups = append(m.Groups, &Group{Name: nf.name, Samples: samples, Scores: scores})
	}
	for _, nf := range cmd.dataFiles {
		view, groupName, ok := strings.Cut(nf.name, "/")
		if !ok {
			err = fmt.Errorf("-data key %q is not in view/group form", nf.name)
			return 2
		}
		v := m.View(view)
		g := m.Group(groupName)
		if v == nil || g == nil {
			err = fmt.Errorf("-data %s: view or group not declared via -weights/-scores", nf.name)
			return 1
		}
		var samples, features []string
		var data []float64
		samples, features, data, err = readMatrixTSV(nf.file)
		if err != nil {
			return 1
		}
		err = checkNames(nf.file, "sample", samples, g.Samples)
		if err != nil {
			return 1
		}
		err = checkNames(nf.file, "feature", features, v.Features)
		if err != nil {
			return 1
		}
		if g.Data == nil {
			g.Data = map[string][]float64{}
		}
		g.Data[view] = data
		log.Printf("data %q: %d samples x %d features", nf.name, len(samples), len(features))
	}

	err = m.Check()
	if err != nil {
		return 1
	}
	err = saveModel(m, *outputFilename, stdout)
	if err != nil {
		return 1
	}
	return 0
}

func checkNames(file, kind string, got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%s: %d %ss, expected %d", file, len(got), kind, len(want))
	}
	for i, name := range got {
		if name != want[i] {
			return fmt.Errorf("%s: %s %d is %q, expected %q", file, kind, i+1, name, want[i])
		}
	}
	return nil
}

// readMatrixTSV reads a labelled matrix: a header row whose first cell
// is ignored and remaining cells are column names, then one row per
// entity with its name in the first column.
func readMatrixTSV(filename string) (rows, cols []string, data []float64, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1<<20), 1<<26)
	if !scanner.Scan() {
		return nil, nil, nil, fmt.Errorf("%s: empty file", filename)
	}
	cols = strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t")[1:]
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(cols)+1 {
			return nil, nil, nil, fmt.Errorf("%s: row %d has %d fields, expected %d", filename, len(rows)+2, len(fields), len(cols)+1)
		}
		rows = append(rows, fields[0])
		for _, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("%s: row %d: %w", filename, len(rows)+1, err)
			}
			data = append(data, v)
		}
	}
	return rows, cols, data, scanner.Err()
}
