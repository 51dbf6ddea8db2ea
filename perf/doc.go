// Package perf is the public API of perfkit, a micro-benchmark harness.
//
// Benchmarks are registered explicitly: a Class groups the callables of one
// subject, each Callable carrying the role it plays. Operations run a
// configured number of times; hooks run around them, either once or around
// every run.
//
// # Quick Start
//
//	var sink string
//	items := perf.NewCounter("items", "items", "")
//
//	class := &perf.Class{
//	    Name: "Strings",
//	    Callables: []*perf.Callable{
//	        perf.Op("Join", func() {
//	            sink = strings.Join(words, ",")
//	            items.Add(uint64(len(words)))
//	        }, perf.WithRuns(50)),
//	        perf.Hook("Prepare", prepare, perf.RoleBeforeFirstRun),
//	    },
//	}
//
//	result, _ := perf.NewRunner(nil, class).WithMeters(items).Run()
//	fmt.Printf("Passed: %v\n", result.Passed)
//
// # Configuration
//
// Runs, meters, arrangement and thresholds come from a Config, built in code
// or loaded from yaml or json:
//
//	cfg, _ := perf.LoadConfig("bench.yaml")
//	result, _ := perf.NewRunner(cfg, classes...).Run()
//
// # Command Line
//
// Main turns a program into the perfkit command line over its classes:
//
//	func main() {
//	    os.Exit(perf.Main("mybench", classes))
//	}
package perf
