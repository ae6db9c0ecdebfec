// Package runner executes batches of scenario runs and evaluates them.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/agro-ecosim/internal/ecosystem"
	"github.com/talgya/agro-ecosim/internal/evaluation"
)

// DefaultYears is the length of a standard run.
const DefaultYears = 30

// Options configure a batch.
type Options struct {
	Years       int                 // Years per run (default DefaultYears)
	Concurrency int                 // Parallel runs (default GOMAXPROCS)
	Params      *ecosystem.Params   // Parameter table (default ecosystem.DefaultParams)
	Scoring     *evaluation.Scoring // Scoring configuration (default evaluation.DefaultScoring)
}

// Result is one finished and evaluated run.
type Result struct {
	Scenario   ecosystem.Scenario `json:"scenario"`
	Years      int                `json:"years"`
	History    ecosystem.History  `json:"history"`
	Events     []ecosystem.Event  `json:"events"`
	Evaluation evaluation.Result  `json:"evaluation"`
	Duration   time.Duration      `json:"duration"`
}

// Final returns the last recorded snapshot of the run.
func (r Result) Final() ecosystem.Snapshot {
	snap, _ := r.History.Last()
	return snap
}

func (o Options) withDefaults() Options {
	if o.Years <= 0 {
		o.Years = DefaultYears
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.Params == nil {
		o.Params = &ecosystem.DefaultParams
	}
	if o.Scoring == nil {
		o.Scoring = &evaluation.DefaultScoring
	}
	return o
}

// Run simulates every scenario independently and returns results in input
// order. The context is checked between simulated years.
func Run(ctx context.Context, scenarios []ecosystem.Scenario, opts Options) ([]Result, error) {
	opts = opts.withDefaults()
	results := make([]Result, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, sc := range scenarios {
		g.Go(func() error {
			res, err := RunOne(ctx, sc, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunOne simulates and evaluates a single scenario.
func RunOne(ctx context.Context, sc ecosystem.Scenario, opts Options) (Result, error) {
	opts = opts.withDefaults()
	start := time.Now()

	sim, err := ecosystem.NewWithParams(sc, *opts.Params)
	if err != nil {
		return Result{}, err
	}

	slog.Debug("simulating", "scenario", sc.ID, "years", opts.Years)
	for range opts.Years {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("scenario %q: %w", sc.ID, err)
		}
		sim.StepYear()
	}

	history := sim.History()
	eval, err := opts.Scoring.Evaluate(history, sc)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate %q: %w", sc.ID, err)
	}

	res := Result{
		Scenario:   sc,
		Years:      opts.Years,
		History:    history,
		Events:     sim.Events(),
		Evaluation: eval,
		Duration:   time.Since(start),
	}

	final := res.Final()
	slog.Info("scenario completed",
		"scenario", sc.ID,
		"years", opts.Years,
		"crop", fmt.Sprintf("%.1f", final.Crop),
		"bird", fmt.Sprintf("%.1f", final.Bird),
		"bat", fmt.Sprintf("%.1f", final.Bat),
		"score", fmt.Sprintf("%.1f", eval.Overall),
	)
	return res, nil
}
