// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"bufio"
	"encoding/gob"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// WriteModel gob-encodes a model to w, gzip-compressed if gz is true.
func WriteModel(m *Model, w io.Writer, gz bool) error {
	bufw := bufio.NewWriterSize(w, 1<<20)
	var out io.Writer = bufw
	var gzw *pgzip.Writer
	if gz {
		gzw = pgzip.NewWriter(bufw)
		out = gzw
	}
	err := gob.NewEncoder(out).Encode(m)
	if err != nil {
		return err
	}
	if gzw != nil {
		err = gzw.Close()
		if err != nil {
			return err
		}
	}
	return bufw.Flush()
}

// ReadModel decodes a model written by WriteModel and validates it.
func ReadModel(rdr io.Reader, gz bool) (*Model, error) {
	in := io.Reader(bufio.NewReaderSize(rdr, 1<<20))
	if gz {
		gzr, err := pgzip.NewReader(in)
		if err != nil {
			return nil, err
		}
		defer gzr.Close()
		in = gzr
	}
	var m Model
	err := gob.NewDecoder(in).Decode(&m)
	if err != nil {
		return nil, err
	}
	err = m.Check()
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// loadModel reads a model archive from the named file, or from stdin if
// filename is "-". Gzip compression is inferred from the ".gz" suffix.
func loadModel(filename string, stdin io.Reader) (*Model, error) {
	if filename == "-" {
		return ReadModel(stdin, false)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadModel(f, strings.HasSuffix(filename, ".gz"))
}

// saveModel writes a model archive to the named file, or to stdout if
// filename is "-".
func saveModel(m *Model, filename string, stdout io.Writer) error {
	if filename == "-" {
		return WriteModel(m, stdout, false)
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0777)
	if err != nil {
		return err
	}
	err = WriteModel(m, f, strings.HasSuffix(filename, ".gz"))
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
