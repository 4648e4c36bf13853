package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spigell/talent-scout/internal/ai/gemini"
	"github.com/spigell/talent-scout/internal/progress"

	"github.com/spf13/cobra"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, build and default model information",
	Run: func(cmd *cobra.Command, _ []string) {
		printVersion(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", app, version)
	fmt.Fprintf(w, "  go:            %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				fmt.Fprintf(w, "  revision:      %s\n", s.Value)
			}
		}
	}
	fmt.Fprintf(w, "  ai provider:   %s (default model %s)\n", gemini.Provider, gemini.DefaultModel)
	fmt.Fprintf(w, "  progress:      %s or %s backend\n", progress.BackendFile, progress.BackendSQLite)
}
