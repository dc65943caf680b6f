package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/btraven00/tubelinks/internal/extractor"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Debug link matching and classification",
	Long: `Run the matcher on a literal string and show every match with its
lookback window and the label it was given.`,
	RunE: runDebug,
}

var (
	debugTestPattern string
	debugProfile     string
	debugLookback    int
	debugLegacy      bool
)

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.Flags().StringVarP(&debugTestPattern, "test-pattern", "t", "", "Text to run the matcher on")
	debugCmd.Flags().StringVarP(&debugProfile, "profile", "p", extractor.DefaultProfile, "Extraction profile")
	debugCmd.Flags().IntVar(&debugLookback, "lookback", extractor.DefaultLookback, "Lookback window in characters")
	debugCmd.Flags().BoolVar(&debugLegacy, "legacy-lookback", false, "Anchor the lookback window at the first occurrence of a link")
}

func runDebug(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	profile, err := extractor.Lookup(debugProfile)
	if err != nil {
		return err
	}

	if debugTestPattern == "" {
		showProfileDebug(out, profile)
		return nil
	}

	options := extractor.Options{Lookback: debugLookback}
	if debugLegacy {
		options.LookbackMode = extractor.LookbackFirstOccurrence
	}

	matcher, err := extractor.NewMatcher(profile, options)
	if err != nil {
		return err
	}

	testPattern(out, matcher, debugTestPattern)

	return nil
}

func showProfileDebug(out io.Writer, profile *extractor.Profile) {
	fmt.Fprintf(out, "=== Profile: %s ===\n", profile.Name)
	fmt.Fprintf(out, "Pattern:       %s\n", profile.Pattern)
	fmt.Fprintf(out, "Strategy:      %s\n", profile.Strategy)
	fmt.Fprintf(out, "Default label: %s\n\n", profile.DefaultLabel)

	fmt.Fprintln(out, "=== Example Matches ===")

	matcher, err := extractor.NewMatcher(profile, extractor.DefaultOptions())
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return
	}

	for _, example := range profile.Examples {
		matches := matcher.FindMatches(example)
		if len(matches) == 0 {
			fmt.Fprintf(out, "%s: ❌ no match\n", example)
			continue
		}

		fmt.Fprintf(out, "%s: ✅ %s\n", example, matches[0].Label)
	}

	fmt.Fprintln(out, "\nUse --test-pattern TEXT to see how a piece of text is classified.")
}

func testPattern(out io.Writer, matcher *extractor.Matcher, input string) {
	fmt.Fprintf(out, "=== Testing Pattern Matching for: %q ===\n\n", input)

	matches := matcher.FindMatches(input)

	fmt.Fprintf(out, "Found %d match(es) with profile %s:\n", len(matches), matcher.Profile().Name)

	if len(matches) == 0 {
		fmt.Fprintln(out, "❌ No links found in this input")
		return
	}

	for i, match := range matches {
		fmt.Fprintf(out, "\n%d. %s\n", i+1, match.URL)
		fmt.Fprintf(out, "   Position: character %d\n", match.Pos)
		fmt.Fprintf(out, "   Label:    %s\n", match.Label)

		if matcher.Profile().Strategy == extractor.StrategyKeywordLookback {
			fmt.Fprintf(out, "   Window:   %q\n", match.Window)
		}
	}
}
