package cli

import (
	"fmt"
	"os"

	"github.com/javanhut/sketchdb/internal/colors"
	"github.com/javanhut/sketchdb/internal/config"
	"github.com/javanhut/sketchdb/internal/encodings"
	"github.com/javanhut/sketchdb/internal/fastaio"
	"github.com/javanhut/sketchdb/internal/minhash"
	"github.com/javanhut/sketchdb/internal/signature"
	"github.com/spf13/cobra"
)

var (
	computeKsize    uint32
	computeScaled   uint64
	computeNum      uint32
	computeMoltype  string
	computeAbund    bool
	computeOutput   string
	computeName     string
	computeForce    bool
	computeMergeAll bool
)

var computeCmd = &cobra.Command{
	Use:   "compute <fasta-file> [fasta-file...]",
	Short: "Compute a MinHash signature from one or more sequence files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompute,
}

func init() {
	cfg, _ := config.LoadConfig()
	defaults := config.DefaultConfig().Sketch
	if cfg != nil {
		defaults = cfg.Sketch
	}

	computeCmd.Flags().Uint32Var(&computeKsize, "ksize", defaults.Ksize, "k-mer size")
	computeCmd.Flags().Uint64Var(&computeScaled, "scaled", defaults.Scaled, "scaled factor (0 disables scaled mode)")
	computeCmd.Flags().Uint32Var(&computeNum, "num", defaults.Num, "number of hashes for bottom-s mode (0 disables)")
	computeCmd.Flags().StringVar(&computeMoltype, "moltype", defaults.Moltype, "molecule type: DNA, protein, dayhoff, or hp")
	computeCmd.Flags().BoolVar(&computeAbund, "track-abundance", defaults.TrackAbund, "track k-mer abundance")
	computeCmd.Flags().StringVarP(&computeOutput, "output", "o", "", "output signature file (default: stdout)")
	computeCmd.Flags().StringVar(&computeName, "name", "", "signature name (default: first input filename)")
	computeCmd.Flags().BoolVar(&computeForce, "force", false, "skip invalid k-mers instead of failing")
	computeCmd.Flags().BoolVar(&computeMergeAll, "merge", false, "merge all input files into a single signature")
}

func runCompute(cmd *cobra.Command, args []string) error {
	hf, err := encodings.ParseHashFunction(computeMoltype)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}

	name := computeName
	if name == "" {
		name = args[0]
	}

	buildSketch := func() (*minhash.MinHash, error) {
		return minhash.New(computeScaled, computeKsize, hf, encodings.DefaultSeed, computeAbund, computeNum)
	}

	var sigs []*signature.Signature
	var merged *minhash.MinHash
	if computeMergeAll {
		merged, err = buildSketch()
		if err != nil {
			return err
		}
	}

	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("compute: open %s: %w", path, err)
		}
		records, err := fastaio.Read(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("compute: %w", err)
		}

		mh := merged
		if mh == nil {
			mh, err = buildSketch()
			if err != nil {
				return err
			}
		}

		for _, rec := range records {
			var addErr error
			if hf == encodings.DNA {
				addErr = mh.AddSequence(rec.Sequence, computeForce)
			} else {
				addErr = mh.AddProtein(rec.Sequence)
			}
			if addErr != nil {
				return fmt.Errorf("compute: %s: %w", path, addErr)
			}
		}

		if merged == nil {
			sig, err := signature.New(name, "", path, "", mh)
			if err != nil {
				return err
			}
			sigs = append(sigs, sig)
		}
	}

	if merged != nil {
		sig, err := signature.New(name, "", args[0], "", merged)
		if err != nil {
			return err
		}
		sigs = []*signature.Signature{sig}
	}

	data, err := signature.ToJSON(sigs)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}

	if computeOutput == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(computeOutput, data, 0644); err != nil {
		return fmt.Errorf("compute: write %s: %w", computeOutput, err)
	}
	fmt.Printf("%s wrote %d signature(s) to %s\n", colors.SuccessText("done:"), len(sigs), computeOutput)
	return nil
}
