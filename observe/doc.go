// Package observe provides observability primitives for health check
// execution.
//
// It is a pure instrumentation library: no check execution, no transport,
// no I/O beyond exporter setup. Consumers wire the Middleware into the
// health executor and the Observer into the serve command.
package observe
