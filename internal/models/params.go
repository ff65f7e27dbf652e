package models

import (
	"errors"
	"fmt"

	"github.com/nvandessel/contagion/internal/constants"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid simulation configuration")

// ConfigError reports a simulation parameter outside its valid range.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidConfig).
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Params are the caller-supplied simulation parameters.
type Params struct {
	// PopulationSize is the number of individuals (>= 1).
	PopulationSize int `json:"population_size" yaml:"population_size"`

	// InitialInfections is how many individuals start infectious (0..PopulationSize).
	InitialInfections int `json:"initial_infections" yaml:"initial_infections"`

	// TransmissionRate is the per-contact, per-day infection probability
	// before edge strength scaling. Range: 0.0 to 1.0
	TransmissionRate float64 `json:"transmission_rate" yaml:"transmission_rate"`

	// ExposedDays is the latent period before becoming infectious.
	ExposedDays int `json:"exposed_days" yaml:"exposed_days"`

	// RecoveryDays is the infectious period before recovering.
	RecoveryDays int `json:"recovery_days" yaml:"recovery_days"`

	// ImmunityDays is accepted and carried but not read by the day update;
	// recovered individuals stay recovered. nil means permanent immunity.
	ImmunityDays *int `json:"immunity_days,omitempty" yaml:"immunity_days,omitempty"`

	// ConnectionsPerPerson is the target number of contacts each newly
	// attached individual draws (>= 1).
	ConnectionsPerPerson int `json:"connections_per_person" yaml:"connections_per_person"`

	// CommunityCount is the number of community labels (>= 1).
	CommunityCount int `json:"community_count" yaml:"community_count"`
}

// Validate checks every parameter range. It returns a *ConfigError for
// the first violation found.
func (p Params) Validate() error {
	if p.PopulationSize < 1 {
		return &ConfigError{Field: "population_size", Value: p.PopulationSize, Reason: "must be at least 1"}
	}
	if p.InitialInfections < 0 {
		return &ConfigError{Field: "initial_infections", Value: p.InitialInfections, Reason: "must be non-negative"}
	}
	if p.InitialInfections > p.PopulationSize {
		return &ConfigError{
			Field:  "initial_infections",
			Value:  p.InitialInfections,
			Reason: fmt.Sprintf("exceeds population_size %d", p.PopulationSize),
		}
	}
	if p.TransmissionRate < 0 || p.TransmissionRate > 1 {
		return &ConfigError{Field: "transmission_rate", Value: p.TransmissionRate, Reason: "must be between 0 and 1"}
	}
	if p.ExposedDays < 1 {
		return &ConfigError{Field: "exposed_days", Value: p.ExposedDays, Reason: "must be a positive number of days"}
	}
	if p.RecoveryDays < 1 {
		return &ConfigError{Field: "recovery_days", Value: p.RecoveryDays, Reason: "must be a positive number of days"}
	}
	if p.ImmunityDays != nil && *p.ImmunityDays < 0 {
		return &ConfigError{Field: "immunity_days", Value: *p.ImmunityDays, Reason: "must be non-negative when set"}
	}
	if p.ConnectionsPerPerson < 1 {
		return &ConfigError{Field: "connections_per_person", Value: p.ConnectionsPerPerson, Reason: "must be at least 1"}
	}
	if p.CommunityCount < 1 {
		return &ConfigError{Field: "community_count", Value: p.CommunityCount, Reason: "must be at least 1"}
	}
	return nil
}

// DefaultParams returns the parameters used when nothing else is configured.
func DefaultParams() Params {
	return Params{
		PopulationSize:       constants.DefaultPopulationSize,
		InitialInfections:    constants.DefaultInitialInfections,
		TransmissionRate:     constants.DefaultTransmissionRate,
		ExposedDays:          constants.DefaultExposedDays,
		RecoveryDays:         constants.DefaultRecoveryDays,
		ConnectionsPerPerson: constants.DefaultConnectionsPerPerson,
		CommunityCount:       constants.DefaultCommunityCount,
	}
}
