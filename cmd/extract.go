package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/btraven00/tubelinks/internal/extractor"
	"github.com/btraven00/tubelinks/internal/pipeline"
	"github.com/btraven00/tubelinks/internal/reader"
)

const (
	inputPrompt  = "Enter the full path to your HTML history file: "
	outputPrompt = "Enter the path where you want to save the CSV file: "
)

var (
	outputPath     string
	profileName    string
	chunkSize      string
	overlap        int
	lookback       int
	legacyLookback bool
	encoding       string
	outputFormat   string
	showProgress   bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [file...]",
	Short: "Extract YouTube links from history exports",
	Long: `Extract YouTube and YouTube Music links from one or more history exports
and save the deduplicated list.

Each link is labeled "YouTube Music" when it points at music.youtube.com or
when the text just before it mentions YouTube Music, and "YouTube" otherwise.
With the music profile only music.youtube.com links are extracted.

Gzip and zstd compressed inputs are detected automatically; PDF, DOC(X),
ODT, RTF and Pages documents are converted to text first. When no file is
given, the input and output paths are asked for interactively.

Examples:
  tubelinks extract watch-history.html
  tubelinks extract -o links.csv takeout/*.html
  tubelinks extract --profile music -o music.json history.html.gz
  tubelinks extract --chunk-size 64MiB --overlap 4096 huge-history.html
  tubelinks extract --format sqlite -o links.db history.html`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default depends on the profile)")
	extractCmd.Flags().StringVarP(&profileName, "profile", "p", extractor.DefaultProfile, "extraction profile ("+strings.Join(extractor.ProfileNames(), ", ")+")")
	extractCmd.Flags().StringVar(&chunkSize, "chunk-size", "10MiB", "characters read per chunk (e.g. 512KiB, 10MiB)")
	extractCmd.Flags().IntVar(&overlap, "overlap", 0, "characters carried between chunks so links on a boundary are not missed")
	extractCmd.Flags().IntVar(&lookback, "lookback", extractor.DefaultLookback, "characters before a link searched for a service keyword")
	extractCmd.Flags().BoolVar(&legacyLookback, "legacy-lookback", false, "anchor the lookback window at the first occurrence of a repeated link")
	extractCmd.Flags().StringVar(&encoding, "encoding", reader.DefaultEncoding, "text encoding of the input (e.g. utf-8, windows-1252)")
	extractCmd.Flags().StringVar(&outputFormat, "format", "", "output format (csv, json, sqlite; default from the output extension)")
	extractCmd.Flags().BoolVar(&showProgress, "progress", true, "show read progress")

	for key, flag := range map[string]string{
		"profile":         "profile",
		"chunk_size":      "chunk-size",
		"overlap":         "overlap",
		"lookback":        "lookback",
		"legacy_lookback": "legacy-lookback",
		"encoding":        "encoding",
		"format":          "format",
		"progress":        "progress",
	} {
		cobra.CheckErr(viper.BindPFlag(key, extractCmd.Flags().Lookup(flag)))
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	size, err := parseChunkSize(viper.GetString("chunk_size"))
	if err != nil {
		return err
	}

	profile, err := extractor.Lookup(viper.GetString("profile"))
	if err != nil {
		return err
	}

	inputs, output, err := resolvePaths(cmd.InOrStdin(), cmd.ErrOrStderr(), args, outputPath, profile.DefaultOutput)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()

	cfg := pipeline.Config{
		Inputs:         inputs,
		Output:         output,
		Format:         viper.GetString("format"),
		Profile:        profile.Name,
		Encoding:       viper.GetString("encoding"),
		ChunkSize:      size,
		Overlap:        viper.GetInt("overlap"),
		Lookback:       viper.GetInt("lookback"),
		LegacyLookback: viper.GetBool("legacy_lookback"),
		Verbose:        verbose && !quiet,
	}

	if !quiet {
		cfg.Log = stderr

		if viper.GetBool("progress") {
			cfg.Progress = stderr
		}
	}

	summary, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), stderr, summary)

	return nil
}

func printSummary(out, stderr io.Writer, summary pipeline.Summary) {
	if !summary.Written {
		fmt.Fprintln(out, "No YouTube URLs found in the file.")
		return
	}

	fmt.Fprintf(out, "Successfully extracted %d YouTube URLs and saved to %s\n", summary.Total, summary.Output)
	fmt.Fprintf(out, "After removing duplicates: %d unique URLs\n", summary.Unique)

	if verbose && !quiet {
		fmt.Fprintf(stderr, "⏱️  Scanned %s in %d chunk(s), wrote %s output in %v\n",
			humanize.Bytes(uint64(summary.Bytes)), summary.Chunks, summary.Format, summary.Duration.Round(time.Millisecond))
	}
}

// resolvePaths returns the input files and the output path. When no input is
// given both paths are read from in, one line each; an empty answer for the
// output selects defaultOutput.
func resolvePaths(in io.Reader, prompt io.Writer, args []string, output, defaultOutput string) ([]string, string, error) {
	if len(args) > 0 {
		if output == "" {
			output = defaultOutput
		}

		return args, output, nil
	}

	scanner := bufio.NewScanner(in)

	fmt.Fprint(prompt, inputPrompt)

	input, err := readAnswer(scanner)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input path: %w", err)
	}

	if input == "" {
		return nil, "", errors.New("no input file given")
	}

	if output == "" {
		fmt.Fprint(prompt, outputPrompt)

		output, err = readAnswer(scanner)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read output path: %w", err)
		}

		if output == "" {
			output = defaultOutput
		}
	}

	return []string{input}, output, nil
}

// readAnswer reads one trimmed line. A missing line reads as empty.
func readAnswer(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		return "", scanner.Err()
	}

	return strings.Trim(strings.TrimSpace(scanner.Text()), `"'`), nil
}

// parseChunkSize parses a humanized character count such as "10MiB" or "65536".
func parseChunkSize(value string) (int, error) {
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid chunk size %q: %w", value, err)
	}

	if n == 0 || n > math.MaxInt32 {
		return 0, fmt.Errorf("chunk size must be between 1 and %s, got %q", humanize.IBytes(math.MaxInt32), value)
	}

	return int(n), nil
}
