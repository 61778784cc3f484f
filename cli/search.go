package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/javanhut/sketchdb/internal/colors"
	"github.com/javanhut/sketchdb/internal/index"
	"github.com/javanhut/sketchdb/internal/sbt"
	"github.com/javanhut/sketchdb/internal/signature"
	"github.com/javanhut/sketchdb/internal/storage"
	"github.com/spf13/cobra"
)

const (
	manifestKeySBT    = "index.sbt.json"
	manifestKeyLinear = "index.linear.json"
)

var (
	searchIndexDir    string
	searchBackend     string
	searchThreshold   float64
	searchContainment bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query-signature>",
	Short: "Search an index for signatures similar to a query",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchIndexDir, "index", "", "directory holding the index (required)")
	searchCmd.Flags().StringVar(&searchBackend, "backend", "sbt", "index backend: sbt or linear")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0.08, "minimum score to report")
	searchCmd.Flags().BoolVar(&searchContainment, "containment", false, "score by containment instead of similarity")
	searchCmd.MarkFlagRequired("index")
}

func openIndex(ctx context.Context, dir, backend string) (index.Index, error) {
	backing, err := storage.NewFSStorage(dir)
	if err != nil {
		return nil, fmt.Errorf("open storage %s: %w", dir, err)
	}
	switch backend {
	case "sbt":
		return sbt.Load(ctx, backing, manifestKeySBT)
	case "linear":
		return index.LoadLinearIndex(ctx, backing, manifestKeyLinear)
	default:
		return nil, fmt.Errorf("unknown index backend %q", backend)
	}
}

func loadQuerySignature(path string) (*signature.Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query %s: %w", path, err)
	}
	sigs, err := signature.FromJSON(data)
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("query file %s contains no signatures", path)
	}
	return sigs[0], nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := openIndex(ctx, searchIndexDir, searchBackend)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	query, err := loadQuerySignature(args[0])
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	var results []*signature.Signature
	if searchBackend == "sbt" && searchContainment {
		tree, ok := idx.(*sbt.Tree)
		if !ok {
			return fmt.Errorf("search: containment scoring requires the sbt backend")
		}
		results, err = tree.Find(ctx, query, searchThreshold, true)
	} else {
		results, err = idx.Search(ctx, query, searchThreshold)
	}
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	type scored struct {
		sig   *signature.Signature
		score float64
	}
	queryMH, err := query.PrimarySketch()
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	rows := make([]scored, 0, len(results))
	for _, r := range results {
		mh, err := r.PrimarySketch()
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		var score float64
		if searchContainment {
			score, err = queryMH.Containment(mh, false)
		} else {
			score, err = queryMH.Similarity(mh, true, false)
		}
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		rows = append(rows, scored{r, score})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].score > rows[j].score })

	fmt.Println(colors.SectionHeader(fmt.Sprintf("%d match(es)", len(rows))))
	for _, row := range rows {
		fmt.Println(colors.ColorizeMatchLine(row.score, row.sig.Name))
	}
	return nil
}
