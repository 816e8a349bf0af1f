// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/discover"
	"github.com/pdiddy/paper-digest/internal/history"
	"github.com/pdiddy/paper-digest/internal/summarize"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var digestCmd = &cobra.Command{
	Use:   "digest [topic]",
	Short: "Discover papers and summarize them in one run",
	Long: `Digest runs the full pipeline: discover recent papers on a topic, then
summarize each one for the requested audience. Papers that already have a
successful summary for the same language and level (recorded in the run
history) are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().String("from", "", "publication window start (YYYY-MM-DD)")
	digestCmd.Flags().String("to", "", "publication window end (YYYY-MM-DD)")
	digestCmd.Flags().Int("max-results", 15, "maximum number of papers to accept")
	digestCmd.Flags().String("domains", "", "comma-separated domain filter (replaces the default list)")
	digestCmd.Flags().Duration("delay", defaultCandidateDelay, "pacing delay between validated candidates")
	digestCmd.Flags().String("level", "general", "audience level (e.g. general, undergraduate, expert)")
	digestCmd.Flags().String("language", "en", "output language")
	digestCmd.Flags().Bool("parallel", true, "summarize papers concurrently")
	digestCmd.Flags().Int("max-workers", 3, "worker pool size in parallel mode")
	digestCmd.Flags().String("output-dir", "", "directory for HTML summaries (default: summaries)")
	digestCmd.Flags().String("search-api-key", "", "Perplexity API key (default: .secrets/perplexity-api-key)")
	digestCmd.Flags().String("backend", "perplexity", "search backend: perplexity or arxiv")
	digestCmd.Flags().String("api-key", "", "Gemini API key (default: .secrets/gemini-api-key)")

	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	req, cfg, err := discoveryParams(cmd, args)
	if err != nil {
		return err
	}

	backend, err := searchBackend(cmd, cfg, "search-api-key")
	if err != nil {
		return err
	}

	result, err := discover.Discover(context.Background(), backend, req, cfg, os.Stderr)
	if err != nil {
		return err
	}
	discover.FormatTable(result, os.Stdout)

	store, err := history.NewStore(types.HistoryConfig{Dir: viper.GetString("history.dir")})
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.RecordRun(req.Topic, req.DateFrom, req.DateTo,
		string(result.Outcome), result.Attempts, result.Papers); err != nil {
		return err
	}

	level, _ := cmd.Flags().GetString("level")
	language, _ := cmd.Flags().GetString("language")
	parallel, _ := cmd.Flags().GetBool("parallel")

	pending := filterSummarized(store, result.Papers, language, level)
	if skipped := len(result.Papers) - len(pending); skipped > 0 {
		fmt.Fprintf(os.Stderr, "skipping %d papers already summarized for %s/%s\n", skipped, language, level)
	}
	if len(pending) == 0 {
		fmt.Fprintln(os.Stdout, "Nothing to summarize.")
		return nil
	}

	pipeline := newSummarizePipeline(cmd)
	report := pipeline.SummarizeAll(context.Background(), pending, level, language, parallel)

	if err := store.RecordSummaries(report.Results, language, level); err != nil {
		return err
	}

	summarize.FormatTable(report, os.Stdout)
	return nil
}

// filterSummarized drops papers that already have a successful summary for
// the language/level pair. History lookup failures only produce a warning;
// re-summarizing a paper is cheaper than losing one.
func filterSummarized(store *history.Store, papers []types.SearchedPaper, language, level string) []types.SearchedPaper {
	var pending []types.SearchedPaper
	for _, p := range papers {
		done, err := store.HasSummary(p.URL, language, level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history lookup for %s: %v\n", p.URL, err)
			done = false
		}
		if !done {
			pending = append(pending, p)
		}
	}
	return pending
}
