// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ribasim runs a simulation from a TOML config file, via a cobra
// command surface.
package main

import (
	"fmt"
	"os"

	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hydrocore/ribasim/config"
	"github.com/hydrocore/ribasim/engine"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ribasim [config.toml]",
		Short: "Run a hydraulic network simulation from a TOML config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath = args[0]
			return run(configPath)
		},
	}
	cmd.Flags().SortFlags = false
	pflag.CommandLine.AddFlagSet(cmd.Flags())
	return cmd
}

func run(configPath string) error {
	io.Pf("ribasim: loading %s\n", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	m, err := engine.New(cfg)
	if err != nil {
		return err
	}

	end := m.GetEndTime()
	if err := m.UpdateUntil(end); err != nil {
		finalizeAndExit(m, err)
		return err
	}

	io.Pf("ribasim: simulation finished at t=%g\n", m.GetCurrentTime())
	return m.Finalize()
}

// finalizeAndExit flushes whatever results exist even on a fatal runtime
// failure, so a failed run still leaves the partial results it already
// wrote to disk.
func finalizeAndExit(m *engine.Model, cause error) {
	io.Pfyel("ribasim: simulation failed at t=%g: %v\n", m.GetCurrentTime(), cause)
	if err := m.Finalize(); err != nil {
		io.Pfred("ribasim: also failed to flush partial results: %v\n", err)
	}
}
