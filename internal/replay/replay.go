// Package replay feeds recorded webhook payloads from disk through a
// processor, for regression checks of configured responses.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/webhook-fulfillment/internal/progress"
	"github.com/ziadkadry99/webhook-fulfillment/internal/transcript"
	"github.com/ziadkadry99/webhook-fulfillment/internal/webhook"
)

// ResponseSuffix is appended to fixture names when responses are written.
const ResponseSuffix = ".response.json"

// Result is the outcome of replaying one fixture.
type Result struct {
	Path     string
	Exchange webhook.Exchange
	// OutPath is where the response was written, if anywhere.
	OutPath string
}

// Summary aggregates a replay run.
type Summary struct {
	Results []Result
	Counts  map[transcript.Outcome]int
}

// Failed reports how many fixtures did not end in an answered exchange.
func (s *Summary) Failed() int {
	return len(s.Results) - s.Counts[transcript.OutcomeAnswered]
}

// Expand resolves glob patterns (with ** support) into a sorted, de-duplicated
// list of fixture files. Files matching exclude, and previously written
// responses, are skipped.
func Expand(patterns, exclude []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || strings.HasSuffix(m, ResponseSuffix) || matchesAny(m, exclude) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func matchesAny(path string, patterns []string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if ok, err := doublestar.PathMatch(pattern, normalized); err == nil && ok {
			return true
		}
		if ok, err := doublestar.PathMatch(pattern, filepath.Base(normalized)); err == nil && ok {
			return true
		}
	}
	return false
}

// Run processes every file through proc. When outDir is set each response
// is written next to the fixture name inside it. A nil reporter reports
// nothing.
func Run(ctx context.Context, proc *webhook.Processor, files []string, outDir string, reporter progress.Reporter) (*Summary, error) {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	var outPaths []string
	if outDir != "" {
		paths, err := responsePaths(files, outDir)
		if err != nil {
			return nil, err
		}
		outPaths = paths
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	summary := &Summary{Counts: make(map[transcript.Outcome]int)}
	reporter.Start(len(files))
	defer reporter.Finish()

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return summary, fmt.Errorf("reading fixture %s: %w", path, err)
		}

		res := Result{Path: path, Exchange: proc.Process(ctx, body)}
		if outDir != "" {
			res.OutPath = outPaths[i]
			if err := writeResponse(res.OutPath, res.Exchange); err != nil {
				return summary, err
			}
		}

		summary.Results = append(summary.Results, res)
		summary.Counts[res.Exchange.Outcome]++
		reporter.Update(i+1, filepath.Base(path))
	}
	return summary, nil
}

// responsePaths names the response file for each fixture. Two fixtures
// that would write the same file are an error.
func responsePaths(files []string, outDir string) ([]string, error) {
	paths := make([]string, len(files))
	owner := make(map[string]string, len(files))
	for i, f := range files {
		p := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))+ResponseSuffix)
		if prev, ok := owner[p]; ok {
			return nil, fmt.Errorf("fixtures %s and %s would both write %s", prev, f, p)
		}
		owner[p] = f
		paths[i] = p
	}
	return paths, nil
}

func writeResponse(path string, ex webhook.Exchange) error {
	data := ex.Response
	if data == nil {
		errText := ""
		if ex.Err != nil {
			errText = ex.Err.Error()
		}
		var err error
		data, err = json.MarshalIndent(map[string]any{
			"status":  ex.Status,
			"outcome": ex.Outcome,
			"error":   errText,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding error response: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing response %s: %w", path, err)
	}
	return nil
}
