package simulation

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/nvandessel/contagion/internal/epidemic"
	"github.com/nvandessel/contagion/internal/logging"
	"github.com/nvandessel/contagion/internal/models"
	"github.com/nvandessel/contagion/internal/network"
)

// SessionConfig configures a new Session.
type SessionConfig struct {
	Params models.Params

	// Seed makes the session reproducible; nil draws one at random.
	Seed *uint64

	// Network, when non-nil, replaces generation.
	Network *models.Network

	Workers     int
	Logger      *slog.Logger
	Transitions *logging.TransitionLogger
}

// Session is the live state of one run: the current snapshot, the
// stepper that advances it, and the stats history so far. All methods
// are safe for concurrent use; each Advance completes whole days
// atomically.
type Session struct {
	mu      sync.Mutex
	id      string
	seed    uint64
	params  models.Params
	stepper *epidemic.Stepper
	initial *models.Network
	current *models.Network
	history []models.Stats
}

// NewSession validates the parameters, builds (or adopts) the network
// and records day 0.
func NewSession(cfg SessionConfig) (*Session, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	seed := rand.Uint64()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	net := cfg.Network
	if net == nil {
		var err error
		net, err = network.Generate(cfg.Params, rand.NewPCG(seed, 0))
		if err != nil {
			return nil, fmt.Errorf("new session: %w", err)
		}
	} else if net.Size() != cfg.Params.PopulationSize {
		return nil, fmt.Errorf("new session: %w", &models.ConfigError{
			Field:  "population_size",
			Value:  cfg.Params.PopulationSize,
			Reason: fmt.Sprintf("network has %d individuals", net.Size()),
		})
	}

	id := uuid.New().String()
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	stepper := epidemic.NewStepper(cfg.Params, rand.NewPCG(seed, 1),
		epidemic.WithWorkers(cfg.Workers),
		epidemic.WithLogger(logger.With("run_id", id)),
		epidemic.WithTransitionLogger(cfg.Transitions),
		epidemic.WithRunID(id),
	)

	return &Session{
		id:      id,
		seed:    seed,
		params:  cfg.Params,
		stepper: stepper,
		initial: net,
		current: net,
		history: []models.Stats{epidemic.InitialStats(net)},
	}, nil
}

// ID returns the session's run identifier.
func (s *Session) ID() string {
	return s.id
}

// Seed returns the seed the session was built from.
func (s *Session) Seed() uint64 {
	return s.seed
}

// Params returns the session's parameters.
func (s *Session) Params() models.Params {
	return s.params
}

// Day returns the most recently simulated day.
func (s *Session) Day() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history[len(s.history)-1].Day
}

// Latest returns the most recent stats record.
func (s *Session) Latest() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history[len(s.history)-1]
}

// History returns a copy of every stats record so far, ordered by day.
func (s *Session) History() []models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Stats, len(s.history))
	copy(out, s.history)
	return out
}

// Network returns the current snapshot. Callers must treat it as read-only.
func (s *Session) Network() *models.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Initial returns the day 0 snapshot.
func (s *Session) Initial() *models.Network {
	return s.initial
}

// Fallbacks reports how many missing-edge fallbacks the stepper has used.
func (s *Session) Fallbacks() int64 {
	return s.stepper.Fallbacks()
}

// Step advances one day and returns the new snapshot and stats.
func (s *Session) Step() (*models.Network, models.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked()
}

func (s *Session) stepLocked() (*models.Network, models.Stats) {
	day := s.history[len(s.history)-1].Day + 1
	next, stats := s.stepper.Step(s.current, day)
	s.current = next
	s.history = append(s.history, stats)
	return next, stats
}

// Advance simulates up to days days, stopping early when stop reports
// true (nil never stops early). It returns the stats of the days it
// simulated.
func (s *Session) Advance(days int, stop StopFunc) []models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Stats, 0, max(days, 0))
	for i := 0; i < days; i++ {
		_, stats := s.stepLocked()
		out = append(out, stats)
		if stop != nil && stop(stats) {
			break
		}
	}
	return out
}
