// Copyright (C) The mofatools Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package mofatools

import (
	"bytes"
	"os"
	"strings"

	"github.com/kshedden/gonpy"
	"gopkg.in/check.v1"
)

type pipelineSuite struct{}

var _ = check.Suite(&pipelineSuite{})

func writeTestMatrices(c *check.C, tmpdir string) {
	for filename, content := range map[string]string{
		"met_weights.tsv": "feature\tfactor_1\tfactor_2\n" +
			"met_g1\t4\t0.5\n" +
			"met_g2\t-2\t1\n" +
			"met_g3\t1\t-3\n",
		"acc_weights.tsv": "feature\tfactor_1\tfactor_2\n" +
			"acc_g1\t1\t2\n" +
			"acc_g3\t5\t-1\n",
		"e7_scores.tsv": "sample\tfactor_1\tfactor_2\n" +
			"s1\t1\t0\n" +
			"s2\t2\t0\n" +
			"s3\t-1\t1\n" +
			"s4\t0\t-1\n",
		"met_e7_data.tsv": "sample\tmet_g1\tmet_g2\tmet_g3\n" +
			"s1\t4\t-2\t1\n" +
			"s2\t8\t-4\t2\n" +
			"s3\t-4\t2\t-1\n" +
			"s4\t0\t0\t0\n",
		"acc_e7_data.tsv": "sample\tacc_g1\tacc_g3\n" +
			"s1\t1\t5\n" +
			"s2\t2\t10\n" +
			"s3\t-1\t-5\n" +
			"s4\t0\t0\n",
		"phenotype.csv": "s1,0\ns2,0\ns3,1\ns4,1\n",
	} {
		err := os.WriteFile(tmpdir+"/"+filename, []byte(content), 0644)
		c.Assert(err, check.IsNil)
	}
}

func importTestModel(c *check.C, tmpdir string) string {
	writeTestMatrices(c, tmpdir)
	modelFile := tmpdir + "/model.gob.gz"
	code := (&importer{}).RunCommand("mofatools import", []string{
		"-o", modelFile,
		"-weights", "met=" + tmpdir + "/met_weights.tsv",
		"-weights", "acc=" + tmpdir + "/acc_weights.tsv",
		"-scores", "e7=" + tmpdir + "/e7_scores.tsv",
		"-data", "met/e7=" + tmpdir + "/met_e7_data.tsv",
		"-data", "acc/e7=" + tmpdir + "/acc_e7_data.tsv",
	}, bytes.NewReader(nil), &bytes.Buffer{}, os.Stderr)
	c.Assert(code, check.Equals, 0)
	return modelFile
}

func (s *pipelineSuite) TestImportStats(c *check.C) {
	modelFile := importTestModel(c, c.MkDir())

	statsout := &bytes.Buffer{}
	code := (&statscmd{}).RunCommand("mofatools stats", []string{"-i", modelFile}, bytes.NewReader(nil), statsout, os.Stderr)
	c.Check(code, check.Equals, 0)
	c.Logf("%s", statsout.String())
	c.Check(statsout.String(), check.Matches, `(?ms).*"Factors":2.*`)
	c.Check(statsout.String(), check.Matches, `(?ms).*"Name":"met".*`)
	c.Check(statsout.String(), check.Matches, `(?ms).*"Samples":4.*`)
}

func (s *pipelineSuite) TestImportedModelMatches(c *check.C) {
	modelFile := importTestModel(c, c.MkDir())
	f, err := os.Open(modelFile)
	c.Assert(err, check.IsNil)
	defer f.Close()
	m, err := ReadModel(f, true)
	c.Assert(err, check.IsNil)
	c.Check(m, check.DeepEquals, testModel())
}

func (s *pipelineSuite) TestWeightsCommand(c *check.C) {
	modelFile := importTestModel(c, c.MkDir())

	out := &bytes.Buffer{}
	code := (&weightscmd{}).RunCommand("mofatools weights", []string{
		"-i", modelFile, "-view", "met", "-factors", "1", "-normalize", "-strip-prefix", "met_",
	}, bytes.NewReader(nil), out, os.Stderr)
	c.Check(code, check.Equals, 0)
	c.Check(out.String(), check.Equals, "feature\tfactor\tweight\n"+
		"g1\t1\t1\n"+
		"g2\t1\t-0.5\n"+
		"g3\t1\t0.25\n")
}

func (s *pipelineSuite) TestCompareCommand(c *check.C) {
	modelFile := importTestModel(c, c.MkDir())

	out := &bytes.Buffer{}
	code := (&comparecmd{}).RunCommand("mofatools compare", []string{
		"-i", modelFile,
		"-view-a", "met", "-view-b", "acc",
		"-strip-prefix-a", "met_", "-strip-prefix-b", "acc_",
		"-factors", "1",
	}, bytes.NewReader(nil), out, os.Stderr)
	c.Check(code, check.Equals, 0)
	c.Check(out.String(), check.Equals, "feature\tfactor\tweight_a\tweight_b\n"+
		"g1\t1\t1\t0.2\n"+
		"g3\t1\t0.25\t1\n")
}

func (s *pipelineSuite) TestVarianceCommand(c *check.C) {
	modelFile := importTestModel(c, c.MkDir())

	out := &bytes.Buffer{}
	code := (&variancecmd{}).RunCommand("mofatools variance", []string{"-i", modelFile}, bytes.NewReader(nil), out, os.Stderr)
	c.Check(code, check.Equals, 0)
	c.Logf("%s", out.String())
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	c.Check(lines, check.HasLen, 5) // header + 2 views x 2 factors
	c.Check(out.String(), check.Matches, `(?ms).*^e7\tmet\t1\t1$.*`)
	c.Check(out.String(), check.Matches, `(?ms).*^e7\tacc\t1\t1$.*`)
}

func (s *pipelineSuite) TestExportNumpy(c *check.C) {
	tmpdir := c.MkDir()
	modelFile := importTestModel(c, tmpdir)

	code := (&exportNumpy{}).RunCommand("mofatools export-numpy", []string{
		"-i", modelFile, "-output-dir", tmpdir,
	}, bytes.NewReader(nil), &bytes.Buffer{}, os.Stderr)
	c.Assert(code, check.Equals, 0)

	f, err := os.Open(tmpdir + "/weights_met.npy")
	c.Assert(err, check.IsNil)
	defer f.Close()
	npy, err := gonpy.NewReader(f)
	c.Assert(err, check.IsNil)
	c.Check(npy.Shape, check.DeepEquals, []int{3, 2})
	weights, err := npy.GetFloat64()
	c.Assert(err, check.IsNil)
	c.Check(weights, check.DeepEquals, []float64{4, 0.5, -2, 1, 1, -3})

	annotations, err := os.ReadFile(tmpdir + "/weights_met.csv")
	c.Check(err, check.IsNil)
	c.Check(string(annotations), check.Equals, "0,met_g1\n1,met_g2\n2,met_g3\n")
}

func (s *pipelineSuite) TestPCACommand(c *check.C) {
	tmpdir := c.MkDir()
	modelFile := importTestModel(c, tmpdir)

	code := (&pcacmd{}).RunCommand("mofatools pca", []string{
		"-i", modelFile, "-view", "met", "-group", "e7", "-components", "1", "-o", tmpdir + "/pca.npy",
	}, bytes.NewReader(nil), &bytes.Buffer{}, os.Stderr)
	c.Assert(code, check.Equals, 0)

	f, err := os.Open(tmpdir + "/pca.npy")
	c.Assert(err, check.IsNil)
	defer f.Close()
	npy, err := gonpy.NewReader(f)
	c.Assert(err, check.IsNil)
	components, err := npy.GetFloat64()
	c.Assert(err, check.IsNil)
	c.Check(components, check.HasLen, 4) // one component per sample
}

func (s *pipelineSuite) TestAssocCommand(c *check.C) {
	tmpdir := c.MkDir()
	modelFile := importTestModel(c, tmpdir)

	out := &bytes.Buffer{}
	code := (&assoccmd{}).RunCommand("mofatools assoc", []string{
		"-i", modelFile, "-group", "e7", "-phenotype", tmpdir + "/phenotype.csv",
	}, bytes.NewReader(nil), out, os.Stderr)
	c.Check(code, check.Equals, 0)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	c.Check(lines, check.HasLen, 3) // header + 2 factors
	c.Check(lines[0], check.Equals, "factor\tp_value")
}

func (s *pipelineSuite) TestDumpCommand(c *check.C) {
	modelFile := importTestModel(c, c.MkDir())

	out := &bytes.Buffer{}
	code := (&dumpcmd{}).RunCommand("mofatools dump", []string{"-i", modelFile}, bytes.NewReader(nil), out, os.Stderr)
	c.Check(code, check.Equals, 0)
	c.Check(out.String(), check.Matches, `(?ms)model: 2 factors, 2 views, 1 groups\n.*`)
	c.Check(out.String(), check.Matches, `(?ms).*view "met": 3 features.*`)
}

func (s *pipelineSuite) TestDiffTopIdentical(c *check.C) {
	modelFile := importTestModel(c, c.MkDir())

	out := &bytes.Buffer{}
	code := (&diffTop{}).RunCommand("mofatools diff-top", []string{
		"-view", "met", "-factor", "1", modelFile, modelFile,
	}, bytes.NewReader(nil), out, os.Stderr)
	c.Check(code, check.Equals, 0)
	c.Check(out.String(), check.Equals, "  met_g1\n  met_g2\n  met_g3\n")
}

func (s *pipelineSuite) TestPlotFactors(c *check.C) {
	tmpdir := c.MkDir()
	modelFile := importTestModel(c, tmpdir)

	code := (&plotFactors{}).RunCommand("mofatools plot-factors", []string{
		"-i", modelFile, "-group", "e7", "-x", "1", "-y", "2", "-o", tmpdir + "/factors.png",
	}, bytes.NewReader(nil), &bytes.Buffer{}, os.Stderr)
	c.Check(code, check.Equals, 0)
	fi, err := os.Stat(tmpdir + "/factors.png")
	c.Assert(err, check.IsNil)
	c.Check(fi.Size() > 0, check.Equals, true)
}
