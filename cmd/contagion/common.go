package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"

	"github.com/nvandessel/contagion/internal/config"
	"github.com/nvandessel/contagion/internal/logging"
	"github.com/nvandessel/contagion/internal/models"
	"github.com/spf13/cobra"
)

// addParamFlags registers one override flag per simulation parameter.
// Defaults shown in help come from the built-in parameters; a flag only
// takes effect when it is set explicitly.
func addParamFlags(cmd *cobra.Command) {
	d := models.DefaultParams()
	cmd.Flags().Int("population", d.PopulationSize, "Number of individuals")
	cmd.Flags().Int("initial-infections", d.InitialInfections, "Individuals infectious on day 0")
	cmd.Flags().Float64("transmission-rate", d.TransmissionRate, "Per-contact daily infection probability (0.0-1.0)")
	cmd.Flags().Int("exposed-days", d.ExposedDays, "Latent period in days")
	cmd.Flags().Int("recovery-days", d.RecoveryDays, "Infectious period in days")
	cmd.Flags().Int("connections", d.ConnectionsPerPerson, "Contacts drawn by each new individual")
	cmd.Flags().Int("communities", d.CommunityCount, "Number of communities")
}

func applyParamFlags(cmd *cobra.Command, p *models.Params) {
	ints := []struct {
		flag string
		dst  *int
	}{
		{"population", &p.PopulationSize},
		{"initial-infections", &p.InitialInfections},
		{"exposed-days", &p.ExposedDays},
		{"recovery-days", &p.RecoveryDays},
		{"connections", &p.ConnectionsPerPerson},
		{"communities", &p.CommunityCount},
	}
	for _, f := range ints {
		if cmd.Flags().Changed(f.flag) {
			*f.dst, _ = cmd.Flags().GetInt(f.flag)
		}
	}
	if cmd.Flags().Changed("transmission-rate") {
		p.TransmissionRate, _ = cmd.Flags().GetFloat64("transmission-rate")
	}
}

// loadConfig resolves the effective configuration for a command:
// defaults, config file, environment, then flags. The result is validated.
func loadConfig(cmd *cobra.Command) (*config.ContagionConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		cfg.Run.Seed = &seed
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Lookup("population") != nil {
		applyParamFlags(cmd, &cfg.Simulation)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLoggers builds the operational logger (stderr) and the transition
// logger for cfg. The transition logger is nil below debug level.
func newLoggers(cmd *cobra.Command, cfg *config.ContagionConfig) (*slog.Logger, *logging.TransitionLogger) {
	dir := cfg.Logging.Dir
	if dir == "" {
		dir = "."
	}
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
		logging.NewTransitionLogger(dir, cfg.Logging.Level)
}

// signalContext is cancelled on interrupt so a run can report what it
// has so far.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
