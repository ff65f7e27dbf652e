package simulation

import (
	"time"

	"github.com/nvandessel/contagion/internal/models"
)

// StopFunc decides, after each simulated day, whether a run is over.
type StopFunc func(stats models.Stats) bool

// Burnout stops once nobody is exposed or infectious.
func Burnout(stats models.Stats) bool {
	return !stats.Active()
}

// Never keeps the run going until MaxDays.
func Never(models.Stats) bool {
	return false
}

// Scenario defines a complete simulation run.
type Scenario struct {
	Name   string
	Params models.Params

	// Seed makes the run reproducible. When nil a seed is drawn at
	// random and reported in the Result.
	Seed *uint64

	// Network, when non-nil, is used instead of generating one. It must
	// be consistent with Params.PopulationSize.
	Network *models.Network

	// MaxDays caps the run. 0 means constants.DefaultMaxDays.
	MaxDays int

	// StopWhen ends the run early. nil means Burnout.
	StopWhen StopFunc

	// Interval paces the run: the runner waits this long between days.
	// 0 runs as fast as possible.
	Interval time.Duration

	// Workers is the intra-day parallelism passed to the stepper.
	Workers int

	// KeepSnapshots retains every day's network in the Result.
	KeepSnapshots bool

	// OnDay, when non-nil, is called after day 0 and after every
	// simulated day with that day's snapshot and stats.
	OnDay func(net *models.Network, stats models.Stats)
}

// Result captures a finished run.
type Result struct {
	RunID   string         `json:"run_id"`
	Name    string         `json:"name,omitempty"`
	Seed    uint64         `json:"seed"`
	Params  models.Params  `json:"params"`
	History []models.Stats `json:"history"`
	Summary Summary        `json:"summary"`

	// Stopped is why the run ended: "burnout", "stop-condition",
	// "max-days" or "cancelled".
	Stopped string `json:"stopped"`

	Initial   *models.Network   `json:"-"`
	Final     *models.Network   `json:"-"`
	Snapshots []*models.Network `json:"-"`
}

// Stop reasons reported in Result.Stopped.
const (
	StoppedBurnout   = "burnout"
	StoppedCondition = "stop-condition"
	StoppedMaxDays   = "max-days"
	StoppedCancelled = "cancelled"
)
