package constants

// Default simulation parameters. These match the values the interactive
// driver starts with: a small population that renders quickly.
const (
	DefaultPopulationSize       = 200
	DefaultInitialInfections    = 5
	DefaultTransmissionRate     = 0.05
	DefaultExposedDays          = 3
	DefaultRecoveryDays         = 14
	DefaultConnectionsPerPerson = 5
	DefaultCommunityCount       = 5
)

// Network generation constants
const (
	// SameCommunityBoost multiplies the attachment weight of candidates
	// that share the new individual's community.
	SameCommunityBoost = 3.0

	// BaseEdgeStrength is the strength every contact starts from.
	BaseEdgeStrength = 0.5

	// SameCommunityStrengthBonus is added to contacts within a community.
	SameCommunityStrengthBonus = 0.3

	// EdgeStrengthJitter is the width of the uniform noise added to strength.
	EdgeStrengthJitter = 0.2

	// MaxEdgeStrength clamps strength from above.
	MaxEdgeStrength = 1.0

	// MinAge and MaxAge bound the informational age, [MinAge, MaxAge).
	MinAge = 20
	MaxAge = 80
)

// Epidemic update constants
const (
	// FallbackEdgeStrength is used when a connection has no edge record.
	FallbackEdgeStrength = 0.5
)

// Run control constants
const (
	// DefaultMaxDays caps a run that never burns out.
	DefaultMaxDays = 365

	// DefaultDaysPerSecond is the playback speed of paced runs.
	DefaultDaysPerSecond = 2

	// DefaultTopHubs is how many hubs network summaries list.
	DefaultTopHubs = 5

	// MaxPopulationSize bounds networks generated on behalf of MCP clients.
	MaxPopulationSize = 100_000
)
