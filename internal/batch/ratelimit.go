package batch

import (
	"context"
	"sync"
	"time"

	"github.com/ziadkadry99/simcheck/internal/api"
)

// RateLimitedAnalyzer wraps an Analyzer with a token bucket that allows at
// most rpm requests per minute.
type RateLimitedAnalyzer struct {
	analyzer Analyzer
	rpm      int
	mu       sync.Mutex
	tokens   int
	lastFill time.Time
}

// Limit wraps analyzer with a rate limiter. rpm <= 0 returns analyzer
// unchanged.
func Limit(analyzer Analyzer, rpm int) Analyzer {
	if rpm <= 0 {
		return analyzer
	}
	return &RateLimitedAnalyzer{
		analyzer: analyzer,
		rpm:      rpm,
		tokens:   rpm,
		lastFill: time.Now(),
	}
}

func (r *RateLimitedAnalyzer) Analyze(ctx context.Context, req api.AnalysisRequest) (*api.AnalysisResult, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.analyzer.Analyze(ctx, req)
}

func (r *RateLimitedAnalyzer) wait(ctx context.Context) error {
	interval := time.Minute / time.Duration(r.rpm)
	for {
		r.mu.Lock()
		if elapsed := time.Since(r.lastFill); elapsed >= interval {
			refill := int(elapsed / interval)
			r.tokens = min(r.tokens+refill, r.rpm)
			// Keep the remainder so partial intervals are not lost.
			r.lastFill = r.lastFill.Add(time.Duration(refill) * interval)
		}

		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
