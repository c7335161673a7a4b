// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclConfig struct {
		Source       string `hcl:"source"`
		Target       string `hcl:"target"`
		Concurrency  *int   `hcl:"concurrency,optional"`
		DryRun       bool   `hcl:"dry_run,optional"`
		Move         bool   `hcl:"move,optional"`
		Fast         bool   `hcl:"fast,optional"`
		CreateTarget bool   `hcl:"create_target,optional"`
		Strict       bool   `hcl:"strict,optional"`
		WorkDir      string `hcl:"work_dir,optional"`
		QueueFile    string `hcl:"queue_file,optional"`
		LogFile      string `hcl:"log_file,optional"`
		LogLevel     string `hcl:"log_level,optional"`

		RsyncBinary    string   `hcl:"rsync_binary,optional"`
		ExcludeNames   []string `hcl:"exclude_names,optional"`
		IgnorePatterns []string `hcl:"ignore_patterns,optional"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Source:         hclCfg.Source,
		Target:         hclCfg.Target,
		DryRun:         hclCfg.DryRun,
		Move:           hclCfg.Move,
		Fast:           hclCfg.Fast,
		CreateTarget:   hclCfg.CreateTarget,
		Strict:         hclCfg.Strict,
		WorkDir:        hclCfg.WorkDir,
		QueueFile:      hclCfg.QueueFile,
		LogFile:        hclCfg.LogFile,
		LogLevel:       hclCfg.LogLevel,
		RsyncBinary:    hclCfg.RsyncBinary,
		ExcludeNames:   hclCfg.ExcludeNames,
		IgnorePatterns: hclCfg.IgnorePatterns,
	}
	if hclCfg.Concurrency != nil {
		cfg.Concurrency = *hclCfg.Concurrency
	}
	applyDefaults(cfg)
	return cfg, nil
}
