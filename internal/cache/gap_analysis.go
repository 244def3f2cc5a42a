package cache

import (
	"context"

	"github.com/AlexDev08/OpenCRE-migration/defs"
)

// GapAnalysisCache stores gap analysis results keyed by the sorted standard names.
type GapAnalysisCache interface {
	// Get returns the cached result and whether there was one.
	Get(ctx context.Context, names []string) ([]defs.Document, bool, error)
	// Set caches a result.
	Set(ctx context.Context, names []string, docs []defs.Document) error
	// Invalidate drops every cached result, called after the graph changes.
	Invalidate(ctx context.Context) error
}
