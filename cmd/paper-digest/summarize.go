// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/discover"
	"github.com/pdiddy/paper-digest/internal/summarize"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const defaultItemDelay = 500 * time.Millisecond

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Generate HTML summaries for discovered papers",
	Long: `Summarize reads a discovery manifest, fetches each paper's PDF, and
generates an audience-tailored HTML summary through the generation backend.
Failures are isolated per paper: the command always reports an outcome for
every paper in the manifest.`,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("papers", "papers.yaml", "discovery manifest to summarize")
	summarizeCmd.Flags().String("level", "general", "audience level (e.g. general, undergraduate, expert)")
	summarizeCmd.Flags().String("language", "en", "output language")
	summarizeCmd.Flags().Bool("parallel", true, "summarize papers concurrently")
	summarizeCmd.Flags().Int("max-workers", 3, "worker pool size in parallel mode")
	summarizeCmd.Flags().String("output-dir", "", "directory for HTML summaries (default: summaries)")
	summarizeCmd.Flags().String("api-key", "", "Gemini API key (default: .secrets/gemini-api-key)")
	summarizeCmd.Flags().Bool("json", false, "output the report as JSON")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	manifestPath, _ := cmd.Flags().GetString("papers")
	manifest, err := discover.ReadManifest(manifestPath)
	if err != nil {
		return err
	}

	level, _ := cmd.Flags().GetString("level")
	language, _ := cmd.Flags().GetString("language")
	parallel, _ := cmd.Flags().GetBool("parallel")

	pipeline := newSummarizePipeline(cmd)
	report := pipeline.SummarizeAll(context.Background(), manifest.Papers, level, language, parallel)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return summarize.FormatJSON(report, os.Stdout)
	}
	summarize.FormatTable(report, os.Stdout)
	return nil
}

// newSummarizePipeline wires the document-fetch client and the generation
// backend from flags and config. The caller owns both for the process
// lifetime; nothing here is a process-wide singleton.
func newSummarizePipeline(cmd *cobra.Command) *summarize.Pipeline {
	maxWorkers, _ := cmd.Flags().GetInt("max-workers")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	if outputDir == "" {
		outputDir = viper.GetString("summarize.output_dir")
	}
	apiKey, _ := cmd.Flags().GetString("api-key")

	cfg := types.SummarizeConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:        defaultTimeout,
			ConnectTimeout: defaultConnectTimeout,
			UserAgent:      defaultUserAgent,
		},
		OutputDir:  outputDir,
		MaxWorkers: maxWorkers,
		ItemDelay:  defaultItemDelay,
	}

	fetcher := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		},
	}

	generator := &summarize.GeminiBackend{
		Client: &http.Client{Timeout: cfg.Timeout},
		APIKey: secretDefault("gemini-api-key", apiKey),
		Model:  viper.GetString("generate.model"),
	}

	return summarize.NewPipeline(fetcher, generator, cfg, os.Stderr)
}
