// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var version = "development"

type commandHandler interface {
	RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int
}

var handlers = map[string]commandHandler{
	"version":   versionCommand{},
	"-version":  versionCommand{},
	"--version": versionCommand{},

	"import":       &importer{},
	"stats":        &statscmd{},
	"dump":         &dumpcmd{},
	"weights":      &weightscmd{},
	"compare":      &comparecmd{},
	"variance":     &variancecmd{},
	"export-numpy": &exportNumpy{},
	"pca":          &pcacmd{},
	"assoc":        &assoccmd{},
	"plot-factors": &plotFactors{},
	"plot-weights": &plotWeights{},
	"diff-top":     &diffTop{},
}

func Main() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		logrus.StandardLogger().Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	}
	os.Exit(runCommand(os.Args[0], os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func runCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(prog, stderr)
		return 2
	}
	cmd, ok := handlers[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "%s: unrecognized command %q\n", prog, args[0])
		usage(prog, stderr)
		return 2
	}
	return cmd.RunCommand(prog+" "+args[0], args[1:], stdin, stdout, stderr)
}

func usage(prog string, stderr io.Writer) {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		if name[0] == '-' {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(stderr, "usage: %s command [options]\n\navailable commands:\n", prog)
	for _, name := range names {
		fmt.Fprintf(stderr, "  %s\n", name)
	}
}

type versionCommand struct{}

func (versionCommand) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fmt.Fprintf(stdout, "mofatools %s\n", version)
	return 0
}
