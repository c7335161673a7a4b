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

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/mpcopy/pkg/config"
	"github.com/walteh/mpcopy/pkg/orchestrate"
	"gitlab.com/tozd/go/errors"
)

// newRootCmd builds the mpcopy command. All flags override values from the
// optional config file.
func newRootCmd() *cobra.Command {
	var configFile string
	flagCfg := config.Default()

	cmd := &cobra.Command{
		Use:   "mpcopy",
		Short: "Copy a directory tree file-by-file with concurrent rsync workers",
		Long: `mpcopy finds every leaf file under the source tree, mirrors the tree's
relative structure under the target, and copies each file with its own rsync
invocation, at most --concurrency at a time. Pending work is persisted to a
queue file so an interrupted run resumes where it left off.

Source and target must share the same final path segment.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mergeConfig(cmd, configFile, flagCfg)
			if err != nil {
				return err
			}

			ctx, closeLog, err := setupLogging(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			orch, err := orchestrate.New(orchestrate.Options{Config: cfg})
			if err != nil {
				return err
			}
			return orch.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path (.yaml or .hcl)")
	cmd.Flags().StringVarP(&flagCfg.Source, "source", "s", "", "source path")
	cmd.Flags().StringVarP(&flagCfg.Target, "target", "t", "", "target path")
	cmd.Flags().IntVarP(&flagCfg.Concurrency, "concurrency", "n", flagCfg.Concurrency, "number of concurrent copy workers")
	cmd.Flags().BoolVar(&flagCfg.DryRun, "dry-run", false, "report what would be copied without writing")
	cmd.Flags().BoolVar(&flagCfg.Move, "move", false, "remove source files after transfer")
	cmd.Flags().BoolVar(&flagCfg.Fast, "fast", false, "compare by size and mtime instead of checksum")
	cmd.Flags().BoolVar(&flagCfg.CreateTarget, "create-target", false, "create the target directory if it does not exist")
	cmd.Flags().BoolVar(&flagCfg.Strict, "strict", false, "exit non-zero if any file failed to copy")
	cmd.Flags().StringVar(&flagCfg.WorkDir, "work-dir", flagCfg.WorkDir, "directory for the queue file and run log")
	cmd.Flags().StringVar(&flagCfg.QueueFile, "queue-file", flagCfg.QueueFile, "queue file name within the work dir")
	cmd.Flags().StringVar(&flagCfg.LogFile, "log-file", flagCfg.LogFile, "run log name within the work dir, empty disables")
	cmd.Flags().StringVarP(&flagCfg.LogLevel, "log-level", "l", flagCfg.LogLevel, "log level (trace, debug, info, warn, error)")
	cmd.Flags().StringVar(&flagCfg.RsyncBinary, "rsync-binary", flagCfg.RsyncBinary, "copy utility to invoke")
	cmd.Flags().StringSliceVar(&flagCfg.IgnorePatterns, "ignore", nil, "glob patterns for leaves to skip")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

// mergeConfig layers flag values on top of the config file (when given) on
// top of defaults. A flag only wins when it was set on the command line.
func mergeConfig(cmd *cobra.Command, configFile string, flagCfg *config.Config) (*config.Config, error) {
	cfg := flagCfg
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}

		flags := cmd.Flags()
		if !flags.Changed("source") {
			flagCfg.Source = fileCfg.Source
		}
		if !flags.Changed("target") {
			flagCfg.Target = fileCfg.Target
		}
		if !flags.Changed("concurrency") {
			flagCfg.Concurrency = fileCfg.Concurrency
		}
		if !flags.Changed("dry-run") {
			flagCfg.DryRun = fileCfg.DryRun
		}
		if !flags.Changed("move") {
			flagCfg.Move = fileCfg.Move
		}
		if !flags.Changed("fast") {
			flagCfg.Fast = fileCfg.Fast
		}
		if !flags.Changed("create-target") {
			flagCfg.CreateTarget = fileCfg.CreateTarget
		}
		if !flags.Changed("strict") {
			flagCfg.Strict = fileCfg.Strict
		}
		if !flags.Changed("work-dir") {
			flagCfg.WorkDir = fileCfg.WorkDir
		}
		if !flags.Changed("queue-file") {
			flagCfg.QueueFile = fileCfg.QueueFile
		}
		if !flags.Changed("log-file") && fileCfg.LogFile != "" {
			flagCfg.LogFile = fileCfg.LogFile
		}
		if !flags.Changed("log-level") {
			flagCfg.LogLevel = fileCfg.LogLevel
		}
		if !flags.Changed("rsync-binary") {
			flagCfg.RsyncBinary = fileCfg.RsyncBinary
		}
		if !flags.Changed("ignore") {
			flagCfg.IgnorePatterns = fileCfg.IgnorePatterns
		}
		flagCfg.ExcludeNames = fileCfg.ExcludeNames
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging configures zerolog with a console writer on stderr, plus the
// per-run log file under the work dir when enabled, and attaches the logger
// to the command context.
func setupLogging(cmd *cobra.Command, cfg *config.Config) (ctx context.Context, closeLog func(), err error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, errors.Errorf("parsing log level: %w", err)
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	closeLog = func() {}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(cfg.WorkDir, 0775); err != nil {
			return nil, nil, errors.Errorf("creating work dir for log: %w", err)
		}
		logPath := filepath.Join(cfg.WorkDir, cfg.LogFile)
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, errors.Errorf("opening log file: %w", err)
		}
		writers = append(writers, f)
		closeLog = func() { f.Close() }
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger().Level(level)
	return logger.WithContext(cmd.Context()), closeLog, nil
}
