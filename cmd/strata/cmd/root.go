// Package cmd implements the strata command-line tool, mirroring the
// teacher's cmd/dwscript/cmd split: one file per subcommand, a shared
// rootCmd carrying global flags, and an Execute() error entry point main.go
// calls.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strata-lang/strata/internal/config"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Run stratified Datalog-with-lattices programs",
	Long: `strata loads a small S-expression program describing enums,
recursive definitions, relation/lattice tables and stratified constraints,
and either evaluates one definition directly or saturates the whole
program to its fixed point.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".strata.yaml", "path to the optional config sidecar")
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}
