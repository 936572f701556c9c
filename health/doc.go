// Package health runs named health checks and reports their outcomes.
//
// The package is the execution-and-formatting pipeline of a health endpoint. It
// runs every check of a Registry, isolates failures per check, measures how long
// each check took, and normalizes every outcome into one wire shape.
//
// # Core Concepts
//
// A Checker is a named probe that returns a Signal. A Signal is one of three
// variants: OK, Failure (with a reason) or Unspecified (no usable reason, for
// example a panic). The Executor turns a Registry into RawOutcomes, the Formatter
// turns each RawOutcome into a FormattedOutcome, and the Reporter encodes the
// whole document.
//
// # Basic Usage
//
//	registry, err := health.NewRegistry(
//	    health.NewErrorCheck("db", func(ctx context.Context) error {
//	        return db.PingContext(ctx)
//	    }),
//	    health.NewCheck("disk", func(ctx context.Context) health.Signal {
//	        return health.Fail("disk full")
//	    }),
//	)
//	if err != nil {
//	    return err
//	}
//
//	reporter := health.NewReporter(registry)
//	doc, err := reporter.Report(ctx)
//
// Each entry of the encoded document has the shape
//
//	{"db": {"status": "ok"}, "time": 0.412}
//	{"disk": {"status": "error", "message": [{"type": "error", "message": "disk full"}]}, "time": 0.003}
//
// where time is the elapsed duration in milliseconds.
//
// # HTTP Endpoints
//
//	mux.Handle("/health/", http.StripPrefix("/health", health.NewHandler(reporter)))
//
// serves /health/ping (liveness), /health/environment (runtime metadata) and
// /health/ (all checks). Any other path is a 404.
package health
