// Package cfrconfig loads a Trainer's configuration from an HCL file,
// the same way a human operator hand-edits a table or bot configuration
// rather than assembling it in Go.
package cfrconfig

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/musolver/musolver/internal/cfr"
)

// File is the top-level shape of a training config file.
type File struct {
	Training TrainingBlock `hcl:"training,block"`
}

// TrainingBlock mirrors cfr.TrainerConfig in HCL attribute form.
type TrainingBlock struct {
	Method                string `hcl:"method"`
	Iterations            int    `hcl:"iterations"`
	ParallelTables        int    `hcl:"parallel_tables,optional"`
	Seed                  uint64 `hcl:"seed,optional"`
	ClampNegativeRegrets  bool   `hcl:"clamp_negative_regrets,optional"`
	LinearAveraging       bool   `hcl:"linear_averaging,optional"`
	LinearAveragingWarmup int    `hcl:"linear_averaging_warmup,optional"`
	CheckpointEvery       int    `hcl:"checkpoint_every,optional"`
	ProgressEvery         int    `hcl:"progress_every,optional"`
}

// Load parses filename and decodes it into a cfr.TrainerConfig.
func Load(filename string) (cfr.TrainerConfig, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return cfr.TrainerConfig{}, diagErr(diags)
	}

	var file File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return cfr.TrainerConfig{}, diagErr(diags)
	}

	method, err := parseMethod(file.Training.Method)
	if err != nil {
		return cfr.TrainerConfig{}, err
	}

	return cfr.TrainerConfig{
		Method:               method,
		Iterations:           file.Training.Iterations,
		ParallelTables:       file.Training.ParallelTables,
		Seed:                 file.Training.Seed,
		ClampNegativeRegrets: file.Training.ClampNegativeRegrets,
		LinearAveraging: cfr.LinearAveragingConfig{
			Enabled: file.Training.LinearAveraging,
			Warmup:  file.Training.LinearAveragingWarmup,
		},
		CheckpointEvery: file.Training.CheckpointEvery,
		ProgressEvery:   file.Training.ProgressEvery,
	}, nil
}

func parseMethod(s string) (cfr.Method, error) {
	switch s {
	case "", "vanilla":
		return cfr.Vanilla, nil
	case "chance-sampling":
		return cfr.ChanceSampling, nil
	case "external-sampling":
		return cfr.ExternalSampling, nil
	case "fsi":
		return cfr.FSI, nil
	default:
		return 0, fmt.Errorf("cfrconfig: unknown method %q", s)
	}
}

func diagErr(diags hcl.Diagnostics) error {
	return fmt.Errorf("cfrconfig: %s", diags.Error())
}
