// Package batch analyzes many documents against the analysis API with
// bounded parallelism.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/simcheck/internal/api"
	"github.com/ziadkadry99/simcheck/internal/page"
	"github.com/ziadkadry99/simcheck/internal/progress"
	"github.com/ziadkadry99/simcheck/internal/view"
)

// Analyzer submits one text for analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req api.AnalysisRequest) (*api.AnalysisResult, error)
}

// Options controls a batch run.
type Options struct {
	Concurrency       int // parallel requests, at least 1
	CheckParaphrasing bool
	Reporter          progress.Reporter // optional
	Logger            *slog.Logger
}

// Outcome is the result of one file.
type Outcome struct {
	File    File
	Result  *api.AnalysisResult
	Err     error
	Skipped string // reason the file was not submitted
}

// Score returns the similarity percentage, or -1 when there is no result.
func (o Outcome) Score() float64 {
	if o.Result == nil || o.Result.Error != "" {
		return -1
	}
	return view.ToPercent(o.Result.SimilarityScore)
}

// Failed reports whether the file was submitted and the analysis failed.
func (o Outcome) Failed() bool {
	return o.Err != nil || (o.Result != nil && o.Result.Error != "")
}

// Run analyzes files and returns one outcome per file, in input order.
// Files whose text is too short or duplicates an earlier file are skipped.
// Per-file failures are recorded in the outcome; only cancellation of ctx
// is returned as an error.
func Run(ctx context.Context, analyzer Analyzer, files []File, opts Options) ([]Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	outcomes := make([]Outcome, len(files))
	firstByHash := make(map[string]string, len(files))
	for i, f := range files {
		outcomes[i].File = f
		if prev, ok := firstByHash[f.Hash]; ok {
			outcomes[i].Skipped = "duplicate of " + prev
			continue
		}
		firstByHash[f.Hash] = f.RelPath
	}

	if opts.Reporter != nil {
		opts.Reporter.Start(len(files))
		defer opts.Reporter.Finish()
	}

	var (
		mu   sync.Mutex
		done int
	)
	advance := func(name string) {
		if opts.Reporter == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		opts.Reporter.Update(done, name)
	}

	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i := range outcomes {
		if outcomes[i].Skipped != "" {
			advance(outcomes[i].File.RelPath)
			continue
		}
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			defer advance(outcomes[i].File.RelPath)
			analyzeFile(ctx, analyzer, &outcomes[i], opts.CheckParaphrasing, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	if err := ctx.Err(); err != nil {
		return outcomes, fmt.Errorf("batch interrupted: %w", err)
	}
	return outcomes, nil
}

func analyzeFile(ctx context.Context, analyzer Analyzer, o *Outcome, paraphrase bool, logger *slog.Logger) {
	data, err := os.ReadFile(o.File.Path)
	if err != nil {
		o.Err = fmt.Errorf("reading %s: %w", o.File.RelPath, err)
		return
	}
	text := strings.TrimSpace(string(data))
	if err := page.Validate(text); err != nil {
		o.Skipped = fmt.Sprintf("fewer than %d characters", page.MinTextLength)
		return
	}

	res, err := analyzer.Analyze(ctx, api.AnalysisRequest{Text: text, CheckParaphrasing: paraphrase})
	if err != nil {
		logger.Warn("batch analysis failed", "file", o.File.RelPath, "error", err)
		o.Err = err
		return
	}
	o.Result = res
	logger.Debug("batch file analyzed", "file", o.File.RelPath, "similarity", res.SimilarityScore)
}

// Summary aggregates a batch run.
type Summary struct {
	Total          int
	Analyzed       int
	Failed         int
	Skipped        int
	HighSimilarity int // red badge
	AIDetected     int
	MaxScore       float64
}

// Summarize counts outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.Skipped != "":
			s.Skipped++
		case o.Failed():
			s.Failed++
		default:
			s.Analyzed++
			score := o.Score()
			if view.ScoreBadge(score) == view.BadgeRed {
				s.HighSimilarity++
			}
			if o.Result.AIDetected {
				s.AIDetected++
			}
			if score > s.MaxScore {
				s.MaxScore = score
			}
		}
	}
	return s
}
