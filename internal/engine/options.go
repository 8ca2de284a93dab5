package engine

import (
	"log/slog"
	"time"

	"github.com/filesift/filesift/internal/search"
	"github.com/filesift/filesift/internal/source"
	"github.com/filesift/filesift/internal/telemetry"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger sets the engine logger. Without it, log output is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock injects the time source used for ranking decay and relative
// date filters. Tests pin it for deterministic scores.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithSource attaches the metadata source consumed by ReindexAll.
func WithSource(src source.MetadataSource) Option {
	return func(e *Engine) {
		e.src = src
	}
}

// WithSynonyms replaces the default synonym table.
func WithSynonyms(syn *search.Synonyms) Option {
	return func(e *Engine) {
		if syn != nil {
			e.synonyms = syn
		}
	}
}

// WithMetrics attaches a query telemetry collector. Searches are recorded
// with their latency and result count.
func WithMetrics(m *telemetry.QueryMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}
