package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/logging"
	"github.com/nvandessel/contagion/internal/models"
)

// Runner plays scenarios from day 0 until their stop policy fires.
type Runner struct {
	logger      *slog.Logger
	transitions *logging.TransitionLogger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the operational logger for runs and their steppers.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTransitionLogger records every status change of every run.
func WithTransitionLogger(tl *logging.TransitionLogger) RunnerOption {
	return func(r *Runner) {
		r.transitions = tl
	}
}

// NewRunner creates a runner. Without options it logs nothing.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{logger: logging.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the scenario and returns the collected results.
//
// Configuration errors are returned before any day is simulated. If ctx
// is cancelled mid-run, the partial Result is returned together with the
// context error.
func (r *Runner) Run(ctx context.Context, sc Scenario) (*Result, error) {
	sess, err := NewSession(SessionConfig{
		Params:      sc.Params,
		Seed:        sc.Seed,
		Network:     sc.Network,
		Workers:     sc.Workers,
		Logger:      r.logger,
		Transitions: r.transitions,
	})
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", sc.Name, err)
	}

	maxDays := sc.MaxDays
	if maxDays <= 0 {
		maxDays = constants.DefaultMaxDays
	}
	stop, reason := sc.StopWhen, StoppedCondition
	if stop == nil {
		stop, reason = Burnout, StoppedBurnout
	}

	res := &Result{
		RunID:   sess.ID(),
		Name:    sc.Name,
		Seed:    sess.Seed(),
		Params:  sc.Params,
		Initial: sess.Initial(),
	}
	r.logger.Info("run started",
		"run_id", res.RunID,
		"name", sc.Name,
		"seed", res.Seed,
		"population", sc.Params.PopulationSize,
		"edges", len(res.Initial.Edges))

	day0 := sess.Latest()
	r.observe(sc, res, res.Initial, day0)

	res.Stopped = StoppedMaxDays
	if stop(day0) {
		res.Stopped = reason
	} else {
		var ticker *time.Ticker
		if sc.Interval > 0 {
			ticker = time.NewTicker(sc.Interval)
			defer ticker.Stop()
		}

	loop:
		for day := 1; day <= maxDays; day++ {
			if ticker != nil {
				select {
				case <-ctx.Done():
					res.Stopped = StoppedCancelled
					break loop
				case <-ticker.C:
				}
			} else if ctx.Err() != nil {
				res.Stopped = StoppedCancelled
				break
			}

			net, stats := sess.Step()
			r.observe(sc, res, net, stats)
			if stop(stats) {
				res.Stopped = reason
				break
			}
		}
	}

	res.Final = sess.Network()
	res.History = sess.History()
	res.Summary = Summarize(res.History, sc.Params.PopulationSize)
	if fb := sess.Fallbacks(); fb > 0 {
		r.logger.Warn("run used fallback edge strengths", "run_id", res.RunID, "count", fb)
	}
	r.logger.Info("run finished",
		"run_id", res.RunID,
		"stopped", res.Stopped,
		"days", res.Summary.Days,
		"total_cases", res.Summary.TotalCases,
		"peak_infectious", res.Summary.PeakInfectious,
		"peak_day", res.Summary.PeakDay)

	if res.Stopped == StoppedCancelled {
		return res, fmt.Errorf("run %q: %w", sc.Name, ctx.Err())
	}
	return res, nil
}

func (r *Runner) observe(sc Scenario, res *Result, net *models.Network, stats models.Stats) {
	if sc.KeepSnapshots {
		res.Snapshots = append(res.Snapshots, net)
	}
	if sc.OnDay != nil {
		sc.OnDay(net, stats)
	}
}
