package alignment

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/stand/internal/tracing"
)

// EngineConfig configures an Engine.
type EngineConfig struct {
	// Logger for pass summaries.
	Logger *slog.Logger
	// Metrics for pass tracking. Optional.
	Metrics *Metrics
}

// Engine runs scoring passes and reports them to logs, metrics and traces.
// An Engine holds no per-pass state and is safe for concurrent use.
type Engine struct {
	logger  *slog.Logger
	metrics *Metrics
}

// NewEngine creates an Engine.
func NewEngine(config EngineConfig) *Engine {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Engine{
		logger:  config.Logger,
		metrics: config.Metrics,
	}
}

// Score scores every entity against the user's causes and ranks the result.
// The pass runs to completion; ctx only carries the trace.
func (e *Engine) Score(ctx context.Context, entities []Scorable, causes []Cause, lists RankLists) Result {
	ctx, endSpan := tracing.StartSpan(ctx, "alignment.score")
	defer endSpan(nil)

	start := time.Now()
	res := Rank(ScoreAll(entities, causes, lists))
	elapsed := time.Since(start)

	neutral := len(res.Scored) - len(res.Aligned) - len(res.Unaligned)
	tracing.SetAttributes(ctx,
		attribute.Int("alignment.entities", len(entities)),
		attribute.Int("alignment.causes", len(causes)),
		attribute.Int("alignment.aligned", len(res.Aligned)),
		attribute.Int("alignment.unaligned", len(res.Unaligned)),
	)

	if e.metrics != nil {
		e.metrics.ObservePass(elapsed.Seconds(), len(entities), len(causes))
		e.metrics.AddClassified(Aligned, len(res.Aligned))
		e.metrics.AddClassified(Unaligned, len(res.Unaligned))
		e.metrics.AddClassified(Neutral, neutral)
	}

	e.logger.DebugContext(ctx, "alignment pass complete",
		"entities", len(entities),
		"causes", len(causes),
		"aligned", len(res.Aligned),
		"unaligned", len(res.Unaligned),
		"neutral", neutral,
		"duration_ms", elapsed.Milliseconds())

	return res
}
