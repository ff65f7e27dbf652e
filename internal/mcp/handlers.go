package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/models"
	"github.com/nvandessel/contagion/internal/ranking"
	"github.com/nvandessel/contagion/internal/ratelimit"
	"github.com/nvandessel/contagion/internal/simulation"
	"github.com/nvandessel/contagion/internal/visualization"
)

// MaxStepDays bounds a single contagion_step call.
const MaxStepDays = 1000

// StatsResourceURI is the resource holding a markdown summary of the run.
const StatsResourceURI = "contagion://run/stats"

// registerTools registers all contagion MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolGenerate,
		Description: "Generate a new contact network and start a fresh epidemic run. Unset parameters use the server defaults. Replaces any run in progress.",
	}, s.handleGenerate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolStep,
		Description: "Advance the current run by a number of days and return each day's SEIR counts.",
	}, s.handleStep)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolRun,
		Description: "Advance the current run until nobody is exposed or infectious, or until max_days have been simulated.",
	}, s.handleRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolStats,
		Description: "Report the current run: latest counts, summary, PageRank hubs, individuals most at risk and community mixing.",
	}, s.handleStats)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        ratelimit.ToolGraph,
		Description: "Render the current network snapshot as JSON or Graphviz DOT, colored by epidemic status.",
	}, s.handleGraph)
}

// registerResources registers MCP resources for auto-loading into context.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         StatsResourceURI,
		Name:        "contagion-run-stats",
		Description: "Summary of the epidemic run in progress.",
		MIMEType:    "text/markdown",
	}, s.handleStatsResource)
}

// handleStatsResource renders the current run as markdown.
func (s *Server) handleStatsResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      StatsResourceURI,
				MIMEType: "text/markdown",
				Text:     s.statsMarkdown(),
			},
		},
	}, nil
}

func (s *Server) statsMarkdown() string {
	sess, err := s.current()
	if err != nil {
		return "# Epidemic Run\n\nNo simulation in progress. Start one with `contagion_generate`.\n"
	}

	latest := sess.Latest()
	summary := simulation.Summarize(sess.History(), sess.Params().PopulationSize)

	var sb strings.Builder
	sb.WriteString("# Epidemic Run\n\n")
	fmt.Fprintf(&sb, "Run `%s` (seed %d), day %d.\n\n", sess.ID(), sess.Seed(), latest.Day)
	sb.WriteString("| Status | Count |\n|---|---|\n")
	for _, st := range models.AllStatuses {
		fmt.Fprintf(&sb, "| %s | %d |\n", st, latest.Count(st))
	}
	fmt.Fprintf(&sb, "\nTotal cases %d (attack rate %.1f%%). Peak %d infectious on day %d.\n",
		summary.TotalCases, summary.AttackRate*100, summary.PeakInfectious, summary.PeakDay)
	if summary.BurnedOut {
		sb.WriteString("The outbreak has burned out.\n")
	}
	return sb.String()
}

// handleGenerate implements the contagion_generate tool.
func (s *Server) handleGenerate(ctx context.Context, req *sdk.CallToolRequest, args GenerateInput) (_ *sdk.CallToolResult, out GenerateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolGenerate, out.RunID, start, retErr, auditParams(map[string]interface{}{
			"population_size":        args.PopulationSize,
			"initial_infections":     args.InitialInfections,
			"transmission_rate":      args.TransmissionRate,
			"exposed_days":           args.ExposedDays,
			"recovery_days":          args.RecoveryDays,
			"connections_per_person": args.ConnectionsPerPerson,
			"community_count":        args.CommunityCount,
			"seed":                   args.Seed,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolGenerate); err != nil {
		return nil, GenerateOutput{}, err
	}

	p := s.cfg.Defaults
	setInt(&p.PopulationSize, args.PopulationSize)
	setInt(&p.InitialInfections, args.InitialInfections)
	setInt(&p.ExposedDays, args.ExposedDays)
	setInt(&p.RecoveryDays, args.RecoveryDays)
	setInt(&p.ConnectionsPerPerson, args.ConnectionsPerPerson)
	setInt(&p.CommunityCount, args.CommunityCount)
	if args.TransmissionRate != nil {
		p.TransmissionRate = *args.TransmissionRate
	}
	if p.PopulationSize > constants.MaxPopulationSize {
		return nil, GenerateOutput{}, &models.ConfigError{
			Field:  "population_size",
			Value:  p.PopulationSize,
			Reason: fmt.Sprintf("exceeds the server limit of %d", constants.MaxPopulationSize),
		}
	}

	seed := s.cfg.Seed
	if args.Seed != nil {
		seed = args.Seed
	}

	sess, err := simulation.NewSession(simulation.SessionConfig{
		Params:      p,
		Seed:        seed,
		Workers:     s.cfg.Workers,
		Logger:      s.logger,
		Transitions: s.cfg.Transitions,
	})
	if err != nil {
		return nil, GenerateOutput{}, err
	}
	s.replace(sess)

	net := sess.Initial()
	s.logger.Info("run generated", "run_id", sess.ID(), "seed", sess.Seed(),
		"population", p.PopulationSize, "edges", len(net.Edges))

	return nil, GenerateOutput{
		RunID:     sess.ID(),
		Seed:      sess.Seed(),
		Params:    p,
		Day0:      sess.Latest(),
		EdgeCount: len(net.Edges),
		Degrees:   summarizeDegrees(ranking.DegreeStats(net)),
		Message: fmt.Sprintf("Generated %d individuals with %d contacts; %d infectious on day 0.",
			p.PopulationSize, len(net.Edges), sess.Latest().Infectious),
	}, nil
}

// handleStep implements the contagion_step tool.
func (s *Server) handleStep(ctx context.Context, req *sdk.CallToolRequest, args StepInput) (_ *sdk.CallToolResult, out StepOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolStep, out.RunID, start, retErr, auditParams(map[string]interface{}{
			"days": args.Days,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolStep); err != nil {
		return nil, StepOutput{}, err
	}

	days := args.Days
	if days == 0 {
		days = 1
	}
	if days < 0 || days > MaxStepDays {
		return nil, StepOutput{}, fmt.Errorf("days must be between 1 and %d, got %d", MaxStepDays, days)
	}

	sess, err := s.current()
	if err != nil {
		return nil, StepOutput{}, err
	}
	if err := ratelimit.CheckCost(s.toolLimiters, ratelimit.DaysBudget, float64(days)); err != nil {
		return nil, StepOutput{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, StepOutput{}, err
	}

	stats := sess.Advance(days, nil)
	last := stats[len(stats)-1]
	return nil, StepOutput{
		RunID:     sess.ID(),
		Day:       last.Day,
		Days:      stats,
		BurnedOut: !last.Active(),
	}, nil
}

// handleRun implements the contagion_run tool.
func (s *Server) handleRun(ctx context.Context, req *sdk.CallToolRequest, args RunInput) (_ *sdk.CallToolResult, out RunOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolRun, out.RunID, start, retErr, auditParams(map[string]interface{}{
			"max_days": args.MaxDays,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolRun); err != nil {
		return nil, RunOutput{}, err
	}

	maxDays := args.MaxDays
	if maxDays == 0 {
		maxDays = s.cfg.MaxDays
	}
	if maxDays < 0 {
		return nil, RunOutput{}, fmt.Errorf("max_days must be positive, got %d", maxDays)
	}

	sess, err := s.current()
	if err != nil {
		return nil, RunOutput{}, err
	}

	out = RunOutput{RunID: sess.ID(), Stopped: simulation.StoppedBurnout}
	if sess.Latest().Active() {
		if err := ratelimit.CheckCost(s.toolLimiters, ratelimit.DaysBudget, float64(maxDays)); err != nil {
			return nil, RunOutput{}, err
		}
		stats := sess.Advance(maxDays, simulation.Burnout)
		out.Simulated = len(stats)
		if stats[len(stats)-1].Active() {
			out.Stopped = simulation.StoppedMaxDays
		}
	}

	history := sess.History()
	out.Latest = history[len(history)-1]
	out.Summary = simulation.Summarize(history, sess.Params().PopulationSize)
	return nil, out, nil
}

// handleStats implements the contagion_stats tool.
func (s *Server) handleStats(ctx context.Context, req *sdk.CallToolRequest, args StatsInput) (_ *sdk.CallToolResult, out StatsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(ratelimit.ToolStats, out.RunID, start, retErr, auditParams(map[string]interface{}{
			"top_n":   args.TopN,
			"history": args.History,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolStats); err != nil {
		return nil, StatsOutput{}, err
	}

	topN := args.TopN
	if topN == 0 {
		topN = constants.DefaultTopHubs
	}
	if topN < 0 {
		return nil, StatsOutput{}, fmt.Errorf("top_n must be positive, got %d", topN)
	}

	sess, err := s.current()
	if err != nil {
		return nil, StatsOutput{}, err
	}

	net := sess.Network()
	history := sess.History()
	p := sess.Params()
	pageRank := ranking.ComputePageRank(net, ranking.DefaultPageRankConfig())
	scorer := ranking.NewRiskScorer(ranking.DefaultRiskConfig(), p.TransmissionRate, pageRank)

	out = StatsOutput{
		RunID:       sess.ID(),
		Seed:        sess.Seed(),
		Params:      p,
		Latest:      history[len(history)-1],
		Summary:     simulation.Summarize(history, p.PopulationSize),
		Degrees:     summarizeDegrees(ranking.DegreeStats(net)),
		Hubs:        ranking.TopHubs(net, pageRank, topN),
		AtRisk:      scorer.AtRisk(net, topN),
		Communities: ranking.CommunityMix(net),
		Fallbacks:   sess.Fallbacks(),
	}
	if args.History {
		out.History = history
	}
	return nil, out, nil
}

// handleGraph implements the contagion_graph tool.
func (s *Server) handleGraph(ctx context.Context, req *sdk.CallToolRequest, args GraphInput) (_ *sdk.CallToolResult, out GraphOutput, retErr error) {
	start := time.Now()
	var runID string
	defer func() {
		s.auditTool(ratelimit.ToolGraph, runID, start, retErr, auditParams(map[string]interface{}{
			"format": args.Format,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, ratelimit.ToolGraph); err != nil {
		return nil, GraphOutput{}, err
	}

	format := visualization.FormatJSON
	if args.Format != "" {
		f, err := visualization.ParseFormat(args.Format)
		if err != nil {
			return nil, GraphOutput{}, err
		}
		format = f
	}

	sess, err := s.current()
	if err != nil {
		return nil, GraphOutput{}, err
	}
	runID = sess.ID()

	net := sess.Network()
	day := sess.Day()
	enrichment := &visualization.EnrichmentData{
		PageRank: ranking.ComputePageRank(net, ranking.DefaultPageRankConfig()),
		Day:      &day,
	}

	out = GraphOutput{
		Format:    string(format),
		Day:       day,
		NodeCount: net.Size(),
		EdgeCount: len(net.Edges),
	}
	switch format {
	case visualization.FormatDOT:
		out.Graph = visualization.RenderDOT(net, enrichment)
	default:
		out.Graph = visualization.RenderJSON(net, enrichment)
	}
	return nil, out, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func summarizeDegrees(d ranking.Degrees) DegreeSummary {
	return DegreeSummary{Min: d.Min, Max: d.Max, Mean: d.Mean, Median: d.Median}
}
