// Package main is the entry point for the deaddrop CLI.
package main

import (
	"os"

	"github.com/mrz1836/deaddrop/internal/cli"
)

// Set by ldflags at build time.
//
//nolint:gochecknoglobals // injected by the linker
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	cli.SetBuildInfo(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
