// Package simulation provides a scripted-session harness for validating
// emergent dynamics of the pattern store and autonomy controller.
//
// Scenarios exercise the real engine end to end, with no mocks: decide,
// report, and learn run against an in-memory backend with a fixed draw
// seed, capturing per-turn strategies, level changes, and audit history
// for property-based assertions.
//
// Usage:
//
//	func TestSeededPromotion(t *testing.T) {
//	    result, err := simulation.Run(simulation.Scenario{
//	        Name:   "seeded-promotion",
//	        Seed:   true,
//	        Turns:  []simulation.Turn{...},
//	        Repeat: 25,
//	    })
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    simulation.AssertFinalLevel(t, result, models.LevelGeneratorPrimary)
//	}
//
// The same harness backs the simulate CLI command.
package simulation
