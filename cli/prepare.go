package cli

import (
	"fmt"
	"os"

	"github.com/javanhut/sketchdb/internal/colors"
	"github.com/javanhut/sketchdb/internal/encodings"
	"github.com/javanhut/sketchdb/internal/selection"
	"github.com/spf13/cobra"
)

var (
	prepareKsize   uint32
	prepareMoltype string
	prepareAbund   bool
	prepareOutput  string
)

var prepareCmd = &cobra.Command{
	Use:   "prepare <signature-file> [signature-file...]",
	Short: "Filter signatures by sketch parameters and write a manifest",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrepare,
}

func init() {
	prepareCmd.Flags().Uint32Var(&prepareKsize, "ksize", 0, "keep only this ksize (0: no filter)")
	prepareCmd.Flags().StringVar(&prepareMoltype, "moltype", "", "keep only this molecule type (empty: no filter)")
	prepareCmd.Flags().BoolVar(&prepareAbund, "require-abundance", false, "keep only sketches with abundance tracking")
	prepareCmd.Flags().StringVarP(&prepareOutput, "output", "o", "manifest.csv", "output manifest CSV path")
}

func runPrepare(cmd *cobra.Command, args []string) error {
	sigs, err := loadSignatureFiles(args)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	sel := selection.Selection{}
	if prepareKsize != 0 {
		k := prepareKsize
		sel.Ksize = &k
	}
	if prepareMoltype != "" {
		hf, err := encodings.ParseHashFunction(prepareMoltype)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		sel.Moltype = &hf
	}
	if prepareAbund {
		a := true
		sel.Abund = &a
	}

	filtered, err := selection.FilterSignatures(sigs, sel)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	manifest := &selection.CSVManifest{Records: make([]selection.Record, 0, len(filtered))}
	for _, sig := range filtered {
		sk := sig.Signatures[0]
		manifest.Records = append(manifest.Records, selection.Record{
			InternalLocation: sig.Filename,
			Ksize:            fmt.Sprintf("%d", sk.Ksize),
			Moltype:          sk.Molecule,
			Num:              fmt.Sprintf("%d", sk.Num),
			NHashes:          fmt.Sprintf("%d", len(sk.Mins)),
			WithAbundance:    fmt.Sprintf("%t", len(sk.Abundances) > 0),
			Name:             sig.Name,
			Filename:         sig.Filename,
		})
	}

	f, err := os.Create(prepareOutput)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer f.Close()
	if err := manifest.Write(f); err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	fmt.Printf("%s kept %d/%d signature(s), wrote %s\n", colors.SuccessText("done:"), len(filtered), len(sigs), prepareOutput)
	return nil
}
