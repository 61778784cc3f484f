package cli

import (
	"fmt"
	"os"

	"github.com/javanhut/sketchdb/internal/colors"
	"github.com/javanhut/sketchdb/internal/config"
	"github.com/javanhut/sketchdb/internal/encodings"
	"github.com/javanhut/sketchdb/internal/index"
	"github.com/javanhut/sketchdb/internal/sbt"
	"github.com/javanhut/sketchdb/internal/signature"
	"github.com/javanhut/sketchdb/internal/storage"
	"github.com/spf13/cobra"
)

var (
	indexDir     string
	indexBackend string
	indexD       int
	indexNStart  uint64
	indexNTables int
)

var indexCmd = &cobra.Command{
	Use:   "index <signature-file> [signature-file...]",
	Short: "Insert signatures into an index, creating it if needed",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndex,
}

func init() {
	cfg, _ := config.LoadConfig()
	defaults := config.DefaultConfig().Index
	if cfg != nil {
		defaults = cfg.Index
	}

	indexCmd.Flags().StringVar(&indexDir, "index", "", "directory to hold the index (required)")
	indexCmd.Flags().StringVar(&indexBackend, "backend", defaults.Backend, "index backend: sbt or linear")
	indexCmd.Flags().IntVar(&indexD, "d", defaults.D, "SBT branching factor")
	indexCmd.Flags().Uint64Var(&indexNStart, "n-start", defaults.NStart, "Nodegraph starting table size")
	indexCmd.Flags().IntVar(&indexNTables, "n-tables", defaults.NTables, "Nodegraph table count")
	indexCmd.MarkFlagRequired("index")
}

func loadSignatureFiles(paths []string) ([]*signature.Signature, error) {
	var all []*signature.Signature
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		sigs, err := signature.FromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		all = append(all, sigs...)
	}
	return all, nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sigs, err := loadSignatureFiles(args)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if len(sigs) == 0 {
		return fmt.Errorf("index: no signatures to insert")
	}

	if err := os.MkdirAll(indexDir, 0755); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	fsBacking, err := storage.NewFSStorage(indexDir)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	backing := storage.NewDedupStorage(fsBacking)

	var idx index.Index
	var manifestKey string
	switch indexBackend {
	case "sbt":
		first := sigs[0].Signatures[0]
		hf, err := encodings.ParseHashFunction(first.Molecule)
		if err != nil {
			return fmt.Errorf("index: %w", err)
		}
		tree, loadErr := sbt.Load(ctx, backing, manifestKeySBT)
		if loadErr != nil {
			tree = sbt.New(indexD, first.Ksize, 0, hf, first.Seed, indexNStart, indexNTables, backing)
		}
		idx = tree
		manifestKey = manifestKeySBT
	case "linear":
		li, loadErr := index.LoadLinearIndex(ctx, backing, manifestKeyLinear)
		if loadErr != nil {
			li = index.NewLinearIndex(backing)
		}
		idx = li
		manifestKey = manifestKeyLinear
	default:
		return fmt.Errorf("index: unknown backend %q", indexBackend)
	}

	for _, sig := range sigs {
		if err := idx.Insert(ctx, sig); err != nil {
			return fmt.Errorf("index: insert %s: %w", sig.Name, err)
		}
	}
	if err := idx.Save(ctx, manifestKey); err != nil {
		return fmt.Errorf("index: save: %w", err)
	}

	fmt.Printf("%s inserted %d signature(s) into %s (%s)\n", colors.SuccessText("done:"), len(sigs), indexDir, indexBackend)
	return nil
}
