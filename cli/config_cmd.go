package cli

import (
	"fmt"

	"github.com/javanhut/sketchdb/internal/colors"
	"github.com/javanhut/sketchdb/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get and set sketchdb configuration options",
	Long: `Get and set sketchdb configuration options.

Configuration can be set at two levels:
- Global (~/.sketchdbconfig) - applies to every invocation
- Local (.sketchdb/config) - applies in the current directory only

Examples:
  sketchdb config --list
  sketchdb config sketch.ksize
  sketchdb config sketch.ksize 31
  sketchdb config --global index.backend sbt`,
	RunE: runConfig,
}

var (
	configGlobal bool
	configList   bool
)

func init() {
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "use the global config file")
	configCmd.Flags().BoolVar(&configList, "list", false, "list all configuration")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configList {
		return listConfig()
	}
	if len(args) == 1 {
		return getConfigValue(args[0])
	}
	if len(args) == 2 {
		return setConfigValue(args[0], args[1], configGlobal)
	}
	return fmt.Errorf("invalid usage. See: sketchdb config --help")
}

func listConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(colors.SectionHeader("Sketch defaults:"))
	fmt.Printf("  sketch.ksize = %s\n", colors.InfoText(fmt.Sprintf("%d", cfg.Sketch.Ksize)))
	fmt.Printf("  sketch.scaled = %s\n", colors.InfoText(fmt.Sprintf("%d", cfg.Sketch.Scaled)))
	fmt.Printf("  sketch.moltype = %s\n", colors.InfoText(cfg.Sketch.Moltype))
	fmt.Printf("  sketch.track_abundance = %s\n", colors.InfoText(fmt.Sprintf("%t", cfg.Sketch.TrackAbund)))

	fmt.Println()
	fmt.Println(colors.SectionHeader("Index defaults:"))
	fmt.Printf("  index.backend = %s\n", colors.InfoText(cfg.Index.Backend))
	fmt.Printf("  index.d = %s\n", colors.InfoText(fmt.Sprintf("%d", cfg.Index.D)))
	fmt.Printf("  index.n_start = %s\n", colors.InfoText(fmt.Sprintf("%d", cfg.Index.NStart)))
	fmt.Printf("  index.n_tables = %s\n", colors.InfoText(fmt.Sprintf("%d", cfg.Index.NTables)))

	fmt.Println()
	fmt.Println(colors.SectionHeader("Author:"))
	if cfg.Author.Name != "" {
		fmt.Printf("  author.name = %s\n", colors.InfoText(cfg.Author.Name))
	} else {
		fmt.Printf("  author.name = %s\n", colors.Gray("(not set)"))
	}
	if cfg.Author.Email != "" {
		fmt.Printf("  author.email = %s\n", colors.InfoText(cfg.Author.Email))
	} else {
		fmt.Printf("  author.email = %s\n", colors.Gray("(not set)"))
	}

	return nil
}

func getConfigValue(key string) error {
	value, err := config.GetValue(key)
	if err != nil {
		return err
	}
	if value == "" {
		fmt.Printf("%s is %s\n", key, colors.Gray("(not set)"))
	} else {
		fmt.Println(value)
	}
	return nil
}

func setConfigValue(key, value string, global bool) error {
	if err := config.SetValue(key, value, global); err != nil {
		return err
	}
	scope := "local"
	if global {
		scope = "global"
	}
	fmt.Printf("%s %s config: %s = %s\n", colors.SuccessText("set"), scope, colors.Bold(key), colors.InfoText(value))
	return nil
}
