package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/models"
	"github.com/nvandessel/contagion/internal/simulation"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate an outbreak until it burns out",
		Long: `Generate a contact network and simulate the outbreak day by day until
nobody is exposed or infectious, or until --max-days is reached.

Examples:
  contagion run                                  # Default parameters
  contagion run --seed 42 --population 1000      # Reproducible, larger run
  contagion run --transmission-rate 0.2 --csv    # Daily counts as CSV
  contagion run --play                           # Print days at playback speed`,
		RunE: runSimulation,
	}

	addParamFlags(cmd)
	cmd.Flags().Int("max-days", 0, "Stop after this many days (default from config)")
	cmd.Flags().Int("workers", 0, "Parallel workers per simulated day (default from config)")
	cmd.Flags().Duration("interval", 0, "Pause between days, e.g. 250ms")
	cmd.Flags().Bool("play", false, fmt.Sprintf("Pace the run at %d days per second", constants.DefaultDaysPerSecond))
	cmd.Flags().Bool("csv", false, "Output daily counts as CSV")

	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	csvOut, _ := cmd.Flags().GetBool("csv")
	if jsonOut && csvOut {
		return errors.New("--json and --csv are mutually exclusive")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-days") {
		cfg.Run.MaxDays, _ = cmd.Flags().GetInt("max-days")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Run.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("interval") {
		cfg.Run.Interval, _ = cmd.Flags().GetDuration("interval")
	}
	if play, _ := cmd.Flags().GetBool("play"); play && cfg.Run.Interval == 0 {
		cfg.Run.Interval = time.Second / constants.DefaultDaysPerSecond
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, transitions := newLoggers(cmd, cfg)
	defer transitions.Close()

	out := cmd.OutOrStdout()
	streaming := !jsonOut && !csvOut
	if streaming {
		printDayHeader(out)
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	runner := simulation.NewRunner(
		simulation.WithLogger(logger),
		simulation.WithTransitionLogger(transitions),
	)
	result, err := runner.Run(ctx, simulation.Scenario{
		Name:     "cli",
		Params:   cfg.Simulation,
		Seed:     cfg.Run.Seed,
		MaxDays:  cfg.Run.MaxDays,
		Interval: cfg.Run.Interval,
		Workers:  cfg.Run.Workers,
		OnDay: func(_ *models.Network, stats models.Stats) {
			if streaming {
				printDay(out, stats)
			}
		},
	})
	if result == nil {
		return err
	}
	// A cancelled run still reports its partial history.
	if err != nil {
		logger.Warn("run interrupted", "error", err)
	}

	switch {
	case jsonOut:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return fmt.Errorf("encode JSON: %w", encErr)
		}
	case csvOut:
		if csvErr := writeHistoryCSV(out, result.History); csvErr != nil {
			return fmt.Errorf("write CSV: %w", csvErr)
		}
	default:
		printSummary(out, result)
	}
	return nil
}

func printDayHeader(w io.Writer) {
	fmt.Fprintf(w, "%5s %11s %8s %10s %9s %6s %6s\n",
		"DAY", "SUSCEPTIBLE", "EXPOSED", "INFECTIOUS", "RECOVERED", "NEW", "TOTAL")
}

func printDay(w io.Writer, s models.Stats) {
	fmt.Fprintf(w, "%5d %11d %8d %10d %9d %6d %6d\n",
		s.Day, s.Susceptible, s.Exposed, s.Infectious, s.Recovered, s.NewCases, s.TotalCases)
}

func printSummary(w io.Writer, r *simulation.Result) {
	s := r.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run %s (seed %d) stopped: %s\n", r.RunID, r.Seed, r.Stopped)
	fmt.Fprintf(w, "  Days simulated:   %d\n", s.Days)
	fmt.Fprintf(w, "  Peak infectious:  %d (day %d)\n", s.PeakInfectious, s.PeakDay)
	fmt.Fprintf(w, "  Peak new cases:   %d (day %d)\n", s.PeakNewCases, s.PeakNewCasesDay)
	fmt.Fprintf(w, "  Total cases:      %d\n", s.TotalCases)
	fmt.Fprintf(w, "  Attack rate:      %.1f%%\n", s.AttackRate*100)
	fmt.Fprintf(w, "  Never infected:   %d\n", s.NeverInfected)
}

var csvHeader = []string{"day", "susceptible", "exposed", "infectious", "recovered", "new_cases", "total_cases"}

func writeHistoryCSV(w io.Writer, history []models.Stats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range history {
		row := []int{s.Day, s.Susceptible, s.Exposed, s.Infectious, s.Recovered, s.NewCases, s.TotalCases}
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = strconv.Itoa(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
