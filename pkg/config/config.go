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

// Package config holds the run configuration and its file loaders.
package config

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/mpcopy/pkg/filter"
	"gitlab.com/tozd/go/errors"
)

// 🗺️ parsers is a list of available parsers
var parsers []Parser

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config represents the complete run configuration
type Config struct {
	Source      string `json:"source" yaml:"source"`                               // Source tree root
	Target      string `json:"target" yaml:"target"`                               // Destination tree root, same final segment as Source
	Concurrency int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty"` // Worker slot count, >= 1

	DryRun       bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`             // Report without writing
	Move         bool `json:"move,omitempty" yaml:"move,omitempty"`                   // Remove source files after transfer
	Fast         bool `json:"fast,omitempty" yaml:"fast,omitempty"`                   // Skip checksum comparison
	CreateTarget bool `json:"create_target,omitempty" yaml:"create_target,omitempty"` // Create the target directory if missing
	Strict       bool `json:"strict,omitempty" yaml:"strict,omitempty"`               // Per-item failures fail the whole run

	WorkDir   string `json:"work_dir,omitempty" yaml:"work_dir,omitempty"`     // Directory for queue file and run log
	QueueFile string `json:"queue_file,omitempty" yaml:"queue_file,omitempty"` // Queue file name within WorkDir
	LogFile   string `json:"log_file,omitempty" yaml:"log_file,omitempty"`     // Run log name within WorkDir, empty disables
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`   // zerolog level name

	RsyncBinary    string   `json:"rsync_binary,omitempty" yaml:"rsync_binary,omitempty"`       // Copy utility, default rsync
	ExcludeNames   []string `json:"exclude_names,omitempty" yaml:"exclude_names,omitempty"`     // Metadata names excluded from traversal
	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty"` // Glob patterns for leaves to skip
}

// 🏭 Default returns a Config with every optional field at its default.
func Default() *Config {
	return &Config{
		Concurrency:  1,
		WorkDir:      ".",
		QueueFile:    "mpcopy.queue",
		LogFile:      "mpcopy.log",
		LogLevel:     "info",
		RsyncBinary:  "rsync",
		ExcludeNames: filter.DefaultExcludeNames,
	}
}

// 🎯 Load loads the configuration from a file, on top of defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ✅ Validate checks the configuration is usable for a run.
func (c *Config) Validate() error {
	if c.Source == "" {
		return errors.New("source path is required")
	}
	if c.Target == "" {
		return errors.New("target path is required")
	}
	if c.Concurrency < 1 {
		return errors.Errorf("concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.QueueFile == "" {
		return errors.New("queue file name is required")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Errorf("parsing log level: %w", err)
	}
	return nil
}

// 🔍 Filter builds the path filter described by this configuration.
func (c *Config) Filter() *filter.Filter {
	names := c.ExcludeNames
	if len(names) == 0 {
		names = filter.DefaultExcludeNames
	}
	return filter.New(names, c.IgnorePatterns)
}

// applyDefaults fills zero-valued optional fields on a parsed config.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Concurrency == 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = def.WorkDir
	}
	if cfg.QueueFile == "" {
		cfg.QueueFile = def.QueueFile
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.RsyncBinary == "" {
		cfg.RsyncBinary = def.RsyncBinary
	}
	if len(cfg.ExcludeNames) == 0 {
		cfg.ExcludeNames = def.ExcludeNames
	}
}
