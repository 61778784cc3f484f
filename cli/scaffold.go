package cli

import (
	"fmt"
	"os"

	"github.com/javanhut/sketchdb/internal/colors"
	"github.com/javanhut/sketchdb/internal/config"
	"github.com/javanhut/sketchdb/internal/encodings"
	"github.com/javanhut/sketchdb/internal/sbt"
	"github.com/javanhut/sketchdb/internal/storage"
	"github.com/spf13/cobra"
)

var (
	scaffoldDir     string
	scaffoldD       int
	scaffoldNStart  uint64
	scaffoldNTables int
)

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold <signature-file> [signature-file...]",
	Short: "Rebuild a balanced Sequence Bloom Tree from a full set of leaves",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScaffold,
}

func init() {
	cfg, _ := config.LoadConfig()
	defaults := config.DefaultConfig().Index
	if cfg != nil {
		defaults = cfg.Index
	}

	scaffoldCmd.Flags().StringVar(&scaffoldDir, "index", "", "directory to write the scaffolded index to (required)")
	scaffoldCmd.Flags().IntVar(&scaffoldD, "d", defaults.D, "SBT branching factor")
	scaffoldCmd.Flags().Uint64Var(&scaffoldNStart, "n-start", defaults.NStart, "Nodegraph starting table size")
	scaffoldCmd.Flags().IntVar(&scaffoldNTables, "n-tables", defaults.NTables, "Nodegraph table count")
	scaffoldCmd.MarkFlagRequired("index")
}

func runScaffold(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sigs, err := loadSignatureFiles(args)
	if err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}
	if len(sigs) == 0 {
		return fmt.Errorf("scaffold: no signatures to scaffold")
	}

	first := sigs[0].Signatures[0]
	hf, err := encodings.ParseHashFunction(first.Molecule)
	if err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}

	if err := os.MkdirAll(scaffoldDir, 0755); err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}
	fsBacking, err := storage.NewFSStorage(scaffoldDir)
	if err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}
	backing := storage.NewDedupStorage(fsBacking)

	tree, err := sbt.Scaffold(ctx, sigs, scaffoldD, first.Ksize, 0, hf, first.Seed, scaffoldNStart, scaffoldNTables, backing)
	if err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}
	if err := tree.Save(ctx, manifestKeySBT); err != nil {
		return fmt.Errorf("scaffold: save: %w", err)
	}

	fmt.Printf("%s scaffolded %d leaves into %s\n", colors.SuccessText("done:"), len(sigs), scaffoldDir)
	return nil
}
