package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raaihank/grammar-sentinel/internal/grammar"
	"github.com/raaihank/grammar-sentinel/internal/logger"
	"github.com/raaihank/grammar-sentinel/internal/syntax"
)

var rootCmd = &cobra.Command{
	Use:           "grammar",
	Short:         "Rule-based English grammar checker",
	Long:          "grammar checks English text against a tiered rule catalog, corrects it and scores it.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringSlice("rule-pack", nil, "YAML rule pack to append to the built-in catalog (repeatable)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log rule failures to stderr")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadCatalog builds the catalog from the built-in rules and --rule-pack files
func loadCatalog(cmd *cobra.Command) (*grammar.Catalog, error) {
	packs, _ := cmd.Flags().GetStringSlice("rule-pack")
	return grammar.LoadCatalog(nil, packs...)
}

func newChecker(cmd *cobra.Command, structural bool) (*grammar.Checker, error) {
	catalog, err := loadCatalog(cmd)
	if err != nil {
		return nil, err
	}

	log := zap.NewNop()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		l, err := logger.New(logger.Config{Level: "debug", Format: "console"})
		if err != nil {
			return nil, err
		}
		log = l.Logger
	}

	var analyzer grammar.SentenceAnalyzer
	if structural {
		analyzer = syntax.NewHeuristic()
	}
	return grammar.New(catalog, analyzer, log), nil
}
