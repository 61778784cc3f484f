package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "sketchdb",
	Short: "sketchdb computes and searches MinHash sketches of DNA/protein sequences",
	Long: `sketchdb is a genomic sketching and similarity-search engine.

It computes compact MinHash sketches of sequencing data, organizes them
into searchable indexes (a Sequence Bloom Tree or a linear scan), and
answers similarity/containment queries with Average Nucleotide Identity
estimates.`,
	Run: func(cmd *cobra.Command, args []string) {
		if version {
			fmt.Printf("sketchdb version %s\n", Version)
			os.Exit(0)
		}
		cmd.Help()
	},
}

var version bool

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&version, "version", false, "print the version and exit")

	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(scaffoldCmd)
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(countUniqueCmd)
	rootCmd.AddCommand(configCmd)
}
