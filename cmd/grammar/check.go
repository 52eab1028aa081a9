package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/raaihank/grammar-sentinel/internal/grammar"
)

var checkCmd = &cobra.Command{
	Use:   "check [text...]",
	Short: "Check text given as arguments or on stdin",
	Example: `  grammar check --tier 9 "i are going too school"
  echo "She don't have no money" | grammar check --json`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Int("tier", 12, "Proficiency tier (10 and below basic, 11-14 intermediate, above advanced)")
	checkCmd.Flags().Bool("json", false, "Print the result as JSON")
	checkCmd.Flags().Bool("no-structure", false, "Disable subject and sentence length checks")
}

func runCheck(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\r\n")
	}

	tier, _ := cmd.Flags().GetInt("tier")
	noStructure, _ := cmd.Flags().GetBool("no-structure")
	asJSON, _ := cmd.Flags().GetBool("json")

	checker, err := newChecker(cmd, !noStructure)
	if err != nil {
		return err
	}

	result := checker.Correct(cmd.Context(), text, tier)

	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	printResult(out, result)
	return nil
}

func printResult(out io.Writer, result *grammar.Result) {
	fmt.Fprintf(out, "Level:     %s\n", result.Band.Label())
	fmt.Fprintf(out, "Score:     %d/100 %s\n", result.Score, strings.Repeat("*", result.Stars()))
	fmt.Fprintf(out, "Corrected: %s\n\n", result.CorrectedText)

	if len(result.Findings) > 0 {
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Category", "Original", "Suggestion", "At", "Severity"})
		table.SetAutoWrapText(false)
		for _, group := range result.FindingsByCategory() {
			for _, f := range group.Findings {
				table.Append([]string{
					string(f.Category),
					f.Original,
					f.Suggestion,
					strconv.Itoa(f.Start) + "-" + strconv.Itoa(f.End),
					string(f.Severity),
				})
			}
		}
		table.Render()
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, result.Feedback)
	for _, s := range result.Suggestions {
		fmt.Fprintf(out, "  - %s\n", s)
	}
}
