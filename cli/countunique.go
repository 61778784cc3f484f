package cli

import (
	"fmt"

	"github.com/javanhut/sketchdb/internal/colors"
	"github.com/spf13/cobra"
)

var countUniqueCmd = &cobra.Command{
	Use:   "count-unique <signature-file>",
	Short: "Estimate the total number of unique k-mers from a scaled sketch",
	Args:  cobra.ExactArgs(1),
	RunE:  runCountUnique,
}

func runCountUnique(cmd *cobra.Command, args []string) error {
	sigs, err := loadSignatureFiles(args)
	if err != nil {
		return fmt.Errorf("count-unique: %w", err)
	}
	for _, sig := range sigs {
		mh, err := sig.PrimarySketch()
		if err != nil {
			return fmt.Errorf("count-unique: %w", err)
		}
		n, err := mh.CountUnique()
		if err != nil {
			return fmt.Errorf("count-unique: %s: %w", sig.Name, err)
		}
		fmt.Printf("%s %s: ~%d unique k-mers\n", colors.InfoText(sig.Name), colors.Dim("(estimate)"), n)
	}
	return nil
}
