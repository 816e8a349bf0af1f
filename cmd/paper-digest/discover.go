// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/discover"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultConnectTimeout = 10 * time.Second
	defaultCandidateDelay = 500 * time.Millisecond
	defaultUserAgent      = "paper-digest/0.1"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [topic]",
	Short: "Find and rank recent papers on a topic",
	Long: `Discover queries the search backend for recent arXiv papers on a topic,
validates and canonicalizes candidate URLs, ranks survivors by a composite
relevance score, and deduplicates across search iterations. The accepted
papers are saved to a manifest file for the summarize stage.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().String("from", "", "publication window start (YYYY-MM-DD)")
	discoverCmd.Flags().String("to", "", "publication window end (YYYY-MM-DD)")
	discoverCmd.Flags().Int("max-results", 15, "maximum number of papers to accept")
	discoverCmd.Flags().String("domains", "", "comma-separated domain filter (replaces the default list)")
	discoverCmd.Flags().Duration("delay", defaultCandidateDelay, "pacing delay between validated candidates")
	discoverCmd.Flags().String("out", "papers.yaml", "manifest file for discovered papers")
	discoverCmd.Flags().String("api-key", "", "Perplexity API key (default: .secrets/perplexity-api-key)")
	discoverCmd.Flags().String("backend", "perplexity", "search backend: perplexity or arxiv")
	discoverCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	req, cfg, err := discoveryParams(cmd, args)
	if err != nil {
		return err
	}

	backend, err := searchBackend(cmd, cfg, "api-key")
	if err != nil {
		return err
	}

	result, err := discover.Discover(context.Background(), backend, req, cfg, os.Stderr)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	if err := discover.WriteManifest(outPath, req, result); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return discover.FormatJSON(result, os.Stdout)
	}
	discover.FormatTable(result, os.Stdout)
	return nil
}

// searchBackend builds the configured search backend from flags. The
// Perplexity key flag name differs between commands, so it is a parameter.
func searchBackend(cmd *cobra.Command, cfg types.DiscoveryConfig, apiKeyFlag string) (discover.SearchBackend, error) {
	name, _ := cmd.Flags().GetString("backend")
	client := &http.Client{Timeout: cfg.Timeout}

	switch name {
	case "", "perplexity":
		apiKey, _ := cmd.Flags().GetString(apiKeyFlag)
		return &discover.PerplexityBackend{
			Client: client,
			APIKey: secretDefault("perplexity-api-key", apiKey),
			Model:  viper.GetString("search.model"),
		}, nil
	case "arxiv":
		return &discover.ArxivBackend{Client: client, UserAgent: cfg.UserAgent}, nil
	default:
		return nil, fmt.Errorf("unknown search backend %q (want perplexity or arxiv)", name)
	}
}

// discoveryParams builds the discovery request and config from flags.
func discoveryParams(cmd *cobra.Command, args []string) (discover.Request, types.DiscoveryConfig, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	if from == "" || to == "" {
		return discover.Request{}, types.DiscoveryConfig{}, fmt.Errorf("provide the publication window with --from and --to (YYYY-MM-DD)")
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	delay, _ := cmd.Flags().GetDuration("delay")

	var domains []string
	if raw, _ := cmd.Flags().GetString("domains"); raw != "" {
		for _, d := range strings.Split(raw, ",") {
			if d = strings.TrimSpace(d); d != "" {
				domains = append(domains, d)
			}
		}
	}

	req := discover.Request{
		Topic:    strings.Join(args, " "),
		DateFrom: from,
		DateTo:   to,
	}
	cfg := types.DiscoveryConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:        defaultTimeout,
			ConnectTimeout: defaultConnectTimeout,
			UserAgent:      defaultUserAgent,
		},
		MaxResults:     maxResults,
		Domains:        domains,
		CandidateDelay: delay,
	}
	return req, cfg, nil
}
