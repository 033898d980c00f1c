// Package main implements the aaac compiler CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aaalang/aaac/pkg/config"
	"github.com/aaalang/aaac/pkg/parser"
	"github.com/aaalang/aaac/pkg/pipeline"
	"github.com/aaalang/aaac/pkg/ui"
)

var version = "0.1.0-alpha"

// errDiagnosed signals that diagnostics were already printed and the
// command should simply exit non-zero, without cobra repeating them.
var errDiagnosed = errors.New("compilation produced errors")

func main() {
	rootCmd := &cobra.Command{
		Use:           "aaac",
		Short:         "aaac - the aaa compiler front end",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintHelp(version)
		},
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		ui.PrintHelp(version)
	})

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDiagnosed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func checkCmd() *cobra.Command {
	var stdlib string

	cmd := &cobra.Command{
		Use:   "check [file.aaa]",
		Short: "Type-check a source file without generating output",
		Long: `Check runs the full front end — tokenize, parse, cross-reference,
type-check — over the given entry point and reports every diagnostic.
No code generator is invoked; this is the "does it compile" question.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(args, stdlib)
		},
	}
	cmd.Flags().StringVar(&stdlib, "stdlib", "", "Path to the builtins file (overrides AAA_STDLIB and aaac.toml)")
	return cmd
}

func buildCmd() *cobra.Command {
	var stdlib string

	cmd := &cobra.Command{
		Use:   "build [file.aaa]",
		Short: "Run the full front end and report any diagnostics",
		Long: `Build runs the same stages as "check", then (once wired to a
CodeGenerator implementation) hands the validated program to it. Today,
with no generator wired in, build and check behave identically.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(args, stdlib)
		},
	}
	cmd.Flags().StringVar(&stdlib, "stdlib", "", "Path to the builtins file (overrides AAA_STDLIB and aaac.toml)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of aaac",
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintVersionInfo(version)
		},
	}
}

// resolveTargets resolves the entry point and stdlib path exactly once,
// per SPEC_FULL.md §9.2's "global mutable state" note: the AAA_STDLIB
// environment variable and aaac.toml are read here and nowhere else.
func resolveTargets(args []string, stdlibFlag string) (entrypoint, stdlibPath string, err error) {
	overrides := &config.Config{}
	if stdlibFlag != "" {
		overrides.Build.Stdlib = stdlibFlag
	}
	if len(args) > 0 {
		overrides.Build.Entrypoint = args[0]
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return "", "", err
	}

	entrypoint = cfg.Build.Entrypoint
	stdlibPath = cfg.ResolveStdlibPath(filepath.Dir(entrypoint))
	return entrypoint, stdlibPath, nil
}

func runPipeline(args []string, stdlibFlag string) error {
	entrypoint, stdlibPath, err := resolveTargets(args, stdlibFlag)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	buildUI := ui.NewBuildOutput()
	buildUI.PrintHeader(version)
	buildUI.PrintBuildStart(1)
	buildUI.PrintFileStart(entrypoint, stdlibPath)

	res := pipeline.Run(entrypoint, stdlibPath, parser.Mode(0))

	for _, d := range res.Diags {
		fmt.Fprintln(os.Stderr, d.RenderColor())
	}

	buildUI.PrintSummary(res.OK(), len(res.Diags.Errors()))

	if !res.OK() {
		return errDiagnosed
	}
	return nil
}
