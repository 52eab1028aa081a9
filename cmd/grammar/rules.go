package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/raaihank/grammar-sentinel/internal/grammar"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules active for a band or tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(cmd)
		if err != nil {
			return err
		}

		rules := catalog.Rules()
		if b, _ := cmd.Flags().GetString("band"); b != "" {
			band, err := grammar.ParseBand(b)
			if err != nil {
				return err
			}
			rules = catalog.SelectBand(band)
		} else if cmd.Flags().Changed("tier") {
			tier, _ := cmd.Flags().GetInt("tier")
			rules = catalog.Select(tier)
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"ID", "Band", "Category", "Severity", "Trigger"})
		table.SetAutoWrapText(false)
		for _, r := range rules {
			table.Append([]string{
				r.ID,
				string(r.EffectiveBand()),
				string(r.EffectiveCategory()),
				string(r.EffectiveSeverity()),
				r.Trigger,
			})
		}
		table.Render()

		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rules, catalog %s\n", len(rules), catalog.Len(), catalog.Fingerprint())
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate pack.yaml...",
	Short: "Validate rule packs against the built-in catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := grammar.LoadCatalog(nil, args...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d rules (%d from packs)\n",
			catalog.Len(), catalog.Len()-grammar.DefaultCatalog().Len())
		return nil
	},
}

func init() {
	rulesCmd.Flags().String("band", "", "Band to list: basic, intermediate or advanced")
	rulesCmd.Flags().Int("tier", 0, "Tier to list the rules of")
}
