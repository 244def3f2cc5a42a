package jobs

import (
	"context"
	"time"

	"github.com/AlexDev08/OpenCRE-migration/defs"
	"github.com/sirupsen/logrus"
)

// GapAnalyzer is the part of the CRE service the warmer drives.
type GapAnalyzer interface {
	GetStandardsNames(ctx context.Context) ([]string, error)
	GapAnalysis(ctx context.Context, names []string) ([]defs.Document, error)
}

// GapAnalysisWarmer runs the gap analysis of every pair of standard names
// so that later requests are served from the cache.
type GapAnalysisWarmer struct {
	analyzer GapAnalyzer
	cron     string
	timeout  time.Duration
}

func NewGapAnalysisWarmer(schedule string, analyzer GapAnalyzer, timeout time.Duration) *GapAnalysisWarmer {
	return &GapAnalysisWarmer{
		analyzer: analyzer,
		cron:     schedule,
		timeout:  timeout,
	}
}

func (w *GapAnalysisWarmer) Name() string {
	return "gap_analysis_warmer"
}

func (w *GapAnalysisWarmer) Schedule() string {
	return w.cron
}

func (w *GapAnalysisWarmer) Run() {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	if _, err := w.Warm(ctx); err != nil {
		logrus.Errorf("gap analysis warmer failed: %v", err)
	}
}

// Warm analyses every pair of standard names and returns how many it ran.
func (w *GapAnalysisWarmer) Warm(ctx context.Context) (int, error) {
	start := time.Now()

	names, err := w.analyzer.GetStandardsNames(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range names {
		for _, other := range names[i+1:] {
			if err := ctx.Err(); err != nil {
				return count, err
			}
			if _, err := w.analyzer.GapAnalysis(ctx, []string{names[i], other}); err != nil {
				return count, err
			}
			count++
		}
	}

	logrus.Infof("warmed %d gap analyses in %s", count, time.Since(start))
	return count, nil
}
