package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/drdon1234/weibo-parser/internal/config"
	"github.com/drdon1234/weibo-parser/internal/download"
	"github.com/drdon1234/weibo-parser/internal/history"
	"github.com/drdon1234/weibo-parser/internal/media"
	"github.com/drdon1234/weibo-parser/internal/ui"
	"github.com/drdon1234/weibo-parser/internal/weibo"
)

var parseCmd = &cobra.Command{
	Use:   "parse <url>...",
	Short: "Parse one or more Weibo post URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  parseRun,
}

// parseOutcome pairs one input URL with its result.
type parseOutcome struct {
	URL    string
	Result *media.ParsedMedia
	Err    error
}

func parseRun(cmd *cobra.Command, args []string) error {
	parser := weibo.New(cfg.UserAgent)

	// Each Parse call is independent; the fan-out lives here, not in the core.
	outcomes := parseAll(parser, args, cfg.Concurrency)

	var store *history.Store
	if cfg.History {
		if path, err := config.HistoryPath(); err == nil {
			if s, err := history.Open(path); err == nil {
				store = s
				defer store.Close()
			} else {
				debugf("opening history: %v", err)
			}
		}
	}

	failures := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", o.URL, o.Err)
			continue
		}

		if store != nil {
			if err := store.Record(o.Result); err != nil {
				debugf("recording history: %v", err)
			}
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(o.Result); err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
		} else {
			fmt.Print(ui.RenderResult(o.Result, ui.Styled()))
			fmt.Println()
		}

		if flagDownload != "" {
			if err := downloadMedia(o.Result); err != nil {
				fmt.Fprintf(os.Stderr, "error: %s: %v\n", o.URL, err)
				failures++
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d urls failed", failures, len(outcomes))
	}
	return nil
}

// parseAll runs every URL through the parser with bounded concurrency,
// preserving input order in the returned slice.
func parseAll(parser *weibo.Parser, urls []string, concurrency int) []parseOutcome {
	outcomes := make([]parseOutcome, len(urls))

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	for i, rawURL := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rawURL string) {
			defer wg.Done()
			defer func() { <-sem }()

			debugf("parsing %s", rawURL)
			result, err := parser.Parse(rawURL)
			outcomes[i] = parseOutcome{URL: rawURL, Result: result, Err: err}
		}(i, rawURL)
	}
	wg.Wait()

	return outcomes
}

// downloadMedia fetches a result's media files under the download directory.
func downloadMedia(m *media.ParsedMedia) error {
	dir := flagDownload
	if dir == "" {
		var err error
		dir, err = cfg.ExpandDownloadDir()
		if err != nil {
			return fmt.Errorf("resolving download dir: %w", err)
		}
	}

	results := download.Fetch(m.MediaURLs, dir, cfg.UserAgent, cfg.Concurrency)
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
			}
			fmt.Fprintf(os.Stderr, "download failed: %s: %v\n", r.URL, r.Err)
			continue
		}
		fmt.Fprintf(os.Stderr, "Downloaded: %s\n", r.Path)
	}
	return firstErr
}
