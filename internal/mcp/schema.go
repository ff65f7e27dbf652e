package mcp

import (
	"github.com/nvandessel/contagion/internal/models"
	"github.com/nvandessel/contagion/internal/ranking"
	"github.com/nvandessel/contagion/internal/simulation"
)

// GenerateInput defines the input for contagion_generate tool. Unset
// fields fall back to the server defaults.
type GenerateInput struct {
	PopulationSize       *int     `json:"population_size,omitempty" jsonschema:"Number of individuals (at least 1)"`
	InitialInfections    *int     `json:"initial_infections,omitempty" jsonschema:"Individuals infectious on day 0"`
	TransmissionRate     *float64 `json:"transmission_rate,omitempty" jsonschema:"Per-contact daily transmission probability from 0.0 to 1.0"`
	ExposedDays          *int     `json:"exposed_days,omitempty" jsonschema:"Days spent exposed before becoming infectious"`
	RecoveryDays         *int     `json:"recovery_days,omitempty" jsonschema:"Days spent infectious before recovering"`
	ConnectionsPerPerson *int     `json:"connections_per_person,omitempty" jsonschema:"Contacts each newcomer makes during network growth"`
	CommunityCount       *int     `json:"community_count,omitempty" jsonschema:"Number of communities"`
	Seed                 *uint64  `json:"seed,omitempty" jsonschema:"Random seed for a reproducible run"`
}

// GenerateOutput defines the output for contagion_generate tool.
type GenerateOutput struct {
	RunID     string        `json:"run_id" jsonschema:"Identifier of the new run"`
	Seed      uint64        `json:"seed" jsonschema:"Seed the run was built from"`
	Params    models.Params `json:"params" jsonschema:"Parameters in effect"`
	Day0      models.Stats  `json:"day0" jsonschema:"Status counts on day 0"`
	EdgeCount int           `json:"edge_count" jsonschema:"Number of contacts in the network"`
	Degrees   DegreeSummary `json:"degrees" jsonschema:"Degree distribution summary"`
	Message   string        `json:"message" jsonschema:"Human-readable result message"`
}

// DegreeSummary is the degree distribution without its histogram.
type DegreeSummary struct {
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// StepInput defines the input for contagion_step tool.
type StepInput struct {
	Days int `json:"days,omitempty" jsonschema:"Days to simulate (default 1)"`
}

// StepOutput defines the output for contagion_step tool.
type StepOutput struct {
	RunID     string         `json:"run_id" jsonschema:"Identifier of the run"`
	Day       int            `json:"day" jsonschema:"Most recent simulated day"`
	Days      []models.Stats `json:"days" jsonschema:"Stats for each day simulated by this call"`
	BurnedOut bool           `json:"burned_out" jsonschema:"True when nobody is exposed or infectious"`
}

// RunInput defines the input for contagion_run tool.
type RunInput struct {
	MaxDays int `json:"max_days,omitempty" jsonschema:"Upper bound on days to simulate (default from server config)"`
}

// RunOutput defines the output for contagion_run tool.
type RunOutput struct {
	RunID     string             `json:"run_id" jsonschema:"Identifier of the run"`
	Simulated int                `json:"simulated" jsonschema:"Days simulated by this call"`
	Stopped   string             `json:"stopped" jsonschema:"Why the call stopped: burnout or max-days"`
	Latest    models.Stats       `json:"latest" jsonschema:"Stats of the last simulated day"`
	Summary   simulation.Summary `json:"summary" jsonschema:"Summary of the whole run so far"`
}

// StatsInput defines the input for contagion_stats tool.
type StatsInput struct {
	TopN    int  `json:"top_n,omitempty" jsonschema:"Number of hubs and at-risk individuals to list (default 5)"`
	History bool `json:"history,omitempty" jsonschema:"Include the per-day stats history"`
}

// StatsOutput defines the output for contagion_stats tool.
type StatsOutput struct {
	RunID       string              `json:"run_id" jsonschema:"Identifier of the run"`
	Seed        uint64              `json:"seed" jsonschema:"Seed the run was built from"`
	Params      models.Params       `json:"params" jsonschema:"Parameters in effect"`
	Latest      models.Stats        `json:"latest" jsonschema:"Stats of the most recent day"`
	Summary     simulation.Summary  `json:"summary" jsonschema:"Summary of the run so far"`
	History     []models.Stats      `json:"history,omitempty" jsonschema:"Per-day stats when requested"`
	Degrees     DegreeSummary       `json:"degrees" jsonschema:"Degree distribution summary"`
	Hubs        []ranking.Hub       `json:"hubs" jsonschema:"Most central individuals by PageRank"`
	AtRisk      []ranking.RiskScore `json:"at_risk" jsonschema:"Susceptible individuals most at risk tomorrow"`
	Communities ranking.Mix         `json:"communities" jsonschema:"Community sizes and mixing"`
	Fallbacks   int64               `json:"fallbacks" jsonschema:"Contacts that used the fallback edge strength"`
}

// GraphInput defines the input for contagion_graph tool.
type GraphInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: json (default) or dot"`
}

// GraphOutput defines the output for contagion_graph tool.
type GraphOutput struct {
	Format    string      `json:"format" jsonschema:"Format of the graph field"`
	Day       int         `json:"day" jsonschema:"Day of the rendered snapshot"`
	Graph     interface{} `json:"graph" jsonschema:"DOT source or JSON graph object"`
	NodeCount int         `json:"node_count" jsonschema:"Number of individuals"`
	EdgeCount int         `json:"edge_count" jsonschema:"Number of contacts"`
}
