// Package simulation drives epidemic runs: it generates a network, steps
// it day by day, and decides when to stop.
//
// The core packages (network, epidemic) have no notion of a run. This
// package supplies one: a Session holds the live state of a single run
// and advances it on demand, and a Runner plays a Scenario from day 0 to
// burnout (or a day cap), optionally paced for playback.
//
// Usage:
//
//	func TestBurnout(t *testing.T) {
//	    seed := uint64(7)
//	    res, err := simulation.NewRunner().Run(ctx, simulation.Scenario{
//	        Name:          "burnout",
//	        Params:        models.DefaultParams(),
//	        Seed:          &seed,
//	        KeepSnapshots: true,
//	    })
//	    simulation.AssertConservation(t, res)
//	    simulation.AssertNoReinfection(t, res)
//	}
package simulation
