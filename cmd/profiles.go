package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/btraven00/tubelinks/internal/extractor"
)

var (
	profilesJSON bool
	showPatterns bool
)

// profilesCmd represents the profiles command
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available extraction profiles",
	Long: `List the extraction profiles that can be selected with --profile.

A profile decides which links are matched and how they are labeled.

Examples:
  tubelinks profiles                # Table of profiles
  tubelinks profiles --patterns     # Include the URL patterns
  tubelinks profiles --json         # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)

	profilesCmd.Flags().BoolVar(&profilesJSON, "json", false, "output as JSON")
	profilesCmd.Flags().BoolVar(&showPatterns, "patterns", false, "show the URL pattern of each profile")
}

func runProfiles(cmd *cobra.Command, args []string) error {
	if profilesJSON {
		return outputProfilesJSON(cmd.OutOrStdout())
	}

	return outputProfilesTable(cmd.OutOrStdout())
}

type profileInfo struct {
	*extractor.Profile
	Strategy string `json:"strategy"`
	Pattern  string `json:"pattern"`
	Default  bool   `json:"default"`
}

func outputProfilesJSON(w io.Writer) error {
	profiles := extractor.Profiles()

	info := make([]profileInfo, 0, len(profiles))
	for _, p := range profiles {
		info = append(info, profileInfo{
			Profile:  p,
			Strategy: p.Strategy.String(),
			Pattern:  p.Pattern.String(),
			Default:  p.Name == extractor.DefaultProfile,
		})
	}

	output := struct {
		Profiles []profileInfo `json:"profiles"`
		Count    int           `json:"count"`
	}{
		Profiles: info,
		Count:    len(info),
	}

	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(output)
}

func outputProfilesTable(w io.Writer) error {
	profiles := extractor.Profiles()

	fmt.Fprintf(w, "Available Profiles (%d):\n\n", len(profiles))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tSTRATEGY\tOUTPUT\tDESCRIPTION")
	fmt.Fprintln(tw, "-------\t--------\t------\t-----------")

	for _, p := range profiles {
		name := p.Name
		if name == extractor.DefaultProfile {
			name += " (default)"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, p.Strategy, p.DefaultOutput, p.Description)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if showPatterns {
		fmt.Fprintln(w)

		for _, p := range profiles {
			fmt.Fprintf(w, "🔍 %s\n", p.Name)
			fmt.Fprintf(w, "   Pattern:  %s\n", p.Pattern)
			fmt.Fprintf(w, "   Examples: %s\n\n", strings.Join(p.Examples, ", "))
		}
	}

	return nil
}
