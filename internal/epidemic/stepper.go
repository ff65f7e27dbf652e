// Package epidemic advances an SEIR epidemic over a contact network one
// day at a time.
//
// Every decision for day N reads only the day N-1 snapshot: Step never
// mutates the network it is given and writes the next day into a fresh
// copy of the individual state. The contact topology is shared between
// snapshots and never changes.
package epidemic

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"

	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/logging"
	"github.com/nvandessel/contagion/internal/models"
	"golang.org/x/sync/errgroup"
)

// Option configures a Stepper.
type Option func(*Stepper)

// WithWorkers evaluates each day with up to n goroutines. Values below 2
// keep the update on the calling goroutine. Results do not depend on n.
func WithWorkers(n int) Option {
	return func(s *Stepper) {
		s.workers = max(n, 1)
	}
}

// WithLogger sets the operational logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stepper) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTransitionLogger records every status change as a JSONL event.
func WithTransitionLogger(tl *logging.TransitionLogger) Option {
	return func(s *Stepper) {
		s.transitions = tl
	}
}

// WithRunID tags transition events with a run identifier.
func WithRunID(id string) Option {
	return func(s *Stepper) {
		s.runID = id
	}
}

// Stepper applies the SEIR day update.
//
// Randomness: the injected source seeds a set of rngstream streams, one
// per individual. Individual i's Bernoulli trials on a given day come from
// the next substream of stream i only, so two steppers built from
// identically seeded sources produce identical runs regardless of worker
// count.
//
// A Stepper is not safe for concurrent calls to Step; a day must finish
// before the next begins.
type Stepper struct {
	params      models.Params
	streams     *streamSet
	workers     int
	logger      *slog.Logger
	transitions *logging.TransitionLogger
	runID       string
	fallbacks   atomic.Int64
}

// NewStepper creates a stepper for params p. A nil src yields a randomly
// seeded source.
func NewStepper(p models.Params, src rand.Source, opts ...Option) *Stepper {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	s := &Stepper{
		params:  p,
		streams: newStreamSet(rand.New(src)),
		workers: 1,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Params returns the parameters the stepper was built with.
func (s *Stepper) Params() models.Params {
	return s.params
}

// Fallbacks returns how many times a missing edge record forced the
// fallback strength since the stepper was created.
func (s *Stepper) Fallbacks() int64 {
	return s.fallbacks.Load()
}

// transition is one status change made during a day.
type transition struct {
	id       int
	from, to models.Status
}

// Step computes day `day` from the previous snapshot prev. It returns the
// new snapshot and that day's statistics. prev is left untouched.
func (s *Stepper) Step(prev *models.Network, day int) (*models.Network, models.Stats) {
	prev = prev.Indexed()
	next := prev.Clone()
	n := prev.Size()
	s.streams.grow(n)
	record := s.transitions.Enabled() || s.logger.Enabled(context.Background(), logging.LevelTrace)

	chunks := s.chunks(n)
	newCases := make([]int, len(chunks))
	changes := make([][]transition, len(chunks))

	run := func(c int) {
		lo, hi := chunks[c][0], chunks[c][1]
		for i := lo; i < hi; i++ {
			from := prev.Individuals[i].Status
			if s.advance(prev, &next.Individuals[i]) {
				newCases[c]++
			}
			if record && next.Individuals[i].Status != from {
				changes[c] = append(changes[c], transition{id: i, from: from, to: next.Individuals[i].Status})
			}
		}
	}

	if len(chunks) == 1 {
		run(0)
	} else {
		var g errgroup.Group
		g.SetLimit(s.workers)
		for c := range chunks {
			g.Go(func() error {
				run(c)
				return nil
			})
		}
		_ = g.Wait()
	}

	total := 0
	for _, c := range newCases {
		total += c
	}
	if record {
		s.recordTransitions(day, changes)
	}

	stats := models.CountStats(next, day, total)
	s.logger.Debug("simulated day",
		"day", stats.Day,
		"susceptible", stats.Susceptible,
		"exposed", stats.Exposed,
		"infectious", stats.Infectious,
		"recovered", stats.Recovered,
		"new_cases", stats.NewCases)
	return next, stats
}

// chunks splits 0..n into at most s.workers contiguous ranges.
func (s *Stepper) chunks(n int) [][2]int {
	workers := min(s.workers, n)
	if workers <= 1 {
		return [][2]int{{0, n}}
	}
	size := (n + workers - 1) / workers
	out := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}

// advance applies one day's rule to ind, a copy of individual ind.ID in
// prev. It reports whether ind went from susceptible to exposed.
func (s *Stepper) advance(prev *models.Network, ind *models.Individual) bool {
	switch ind.Status {
	case models.StatusSusceptible:
		if s.infected(prev, ind) {
			ind.Status = models.StatusExposed
			ind.DaysExposed = 0
			return true
		}

	case models.StatusExposed:
		ind.DaysExposed++
		if ind.DaysExposed >= s.params.ExposedDays {
			ind.Status = models.StatusInfectious
			ind.DaysInfected = 0
		}

	case models.StatusInfectious:
		ind.DaysInfected++
		if ind.DaysInfected >= s.params.RecoveryDays {
			ind.Status = models.StatusRecovered
		}

	case models.StatusRecovered:
		// Absorbing. ImmunityDays is carried in Params but not applied.
	}
	return false
}

// infected runs one Bernoulli trial per infectious neighbor, in ascending
// neighbor order, and stops at the first success.
func (s *Stepper) infected(prev *models.Network, ind *models.Individual) bool {
	stream := s.streams.day(ind.ID)
	for _, nb := range ind.Connections {
		if prev.Individuals[nb].Status != models.StatusInfectious {
			continue
		}
		strength, ok := prev.Strength(ind.ID, nb)
		if !ok {
			strength = constants.FallbackEdgeStrength
			s.fallbacks.Add(1)
			s.logger.Warn("using fallback edge strength",
				"err", &ConsistencyError{Individual: ind.ID, Neighbor: nb},
				"strength", strength)
		}
		if stream.RandU01() < s.params.TransmissionRate*strength {
			return true
		}
	}
	return false
}

func (s *Stepper) recordTransitions(day int, changes [][]transition) {
	var events []logging.Transition
	if s.transitions.Enabled() {
		events = make([]logging.Transition, 0, len(changes))
	}
	for _, chunk := range changes {
		for _, tr := range chunk {
			s.logger.Log(context.Background(), logging.LevelTrace, "status change",
				"day", day, "individual", tr.id, "from", tr.from, "to", tr.to)
			if events != nil {
				events = append(events, logging.Transition{
					RunID:      s.runID,
					Day:        day,
					Individual: tr.id,
					From:       string(tr.from),
					To:         string(tr.to),
				})
			}
		}
	}
	s.transitions.Log(events...)
}

// InitialStats returns the day 0 record for a freshly generated network.
// NewCases counts the individuals seeded as infectious.
func InitialStats(net *models.Network) models.Stats {
	s := models.CountStats(net, 0, 0)
	s.NewCases = s.Infectious
	return s
}

// Simulate advances net by one day with a single-use stepper. It is the
// functional form of Stepper.Step for callers that do not keep a stepper.
func Simulate(net *models.Network, p models.Params, day int, src rand.Source) (*models.Network, models.Stats) {
	return NewStepper(p, src).Step(net, day)
}
