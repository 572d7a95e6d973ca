// Package cmd provides CLI commands for the poliver binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags.
var (
	// ConfigFlag points at the poliver.yaml config file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to poliver.yaml config file",
	}

	// BaseURLFlag overrides the configured service origin.
	BaseURLFlag = &cli.StringFlag{
		Name:    "base-url",
		Usage:   "Analysis service origin (overrides config)",
		EnvVars: []string{"POLIVER_BASE_URL"},
	}

	// TokenFlag overrides the configured API token.
	TokenFlag = &cli.StringFlag{
		Name:    "token",
		Usage:   "Bearer token for the analysis service (overrides config)",
		EnvVars: []string{"POLIVER_TOKEN"},
	}

	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// QuietFlag suppresses progress output on stderr.
	QuietFlag = &cli.BoolFlag{
		Name:  "quiet",
		Usage: "Suppress progress and log output",
	}
)

// GlobalFlags returns the flags shared by every command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		BaseURLFlag,
		TokenFlag,
		QuietFlag,
	}
}
