package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "wikimport",
	Short: "Mirror a Markdown corpus into a BookStack-compatible wiki",
	Long: `wikimport walks a directory of Markdown documents, resolves their book
memberships from a legacy catalog database, and publishes them as wiki books
and pages. A local sqlite database remembers what was published so re-runs
only touch content that actually changed.

Pages shared between books are published once; every other owning book
receives an include stub pointing at the canonical page.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./wikimport.yaml)",
	)

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listBooksCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(versionCmd)
}
