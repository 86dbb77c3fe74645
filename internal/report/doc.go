// Package report records what each update run did.
//
// Updaters emit one event per persisted mutation through the Reporter
// interface, bracketed by StartReporting and EndReporting around a batch.
// Reporting is fire-and-forget: implementations log their own failures and
// never hand an error back to the caller, so audit plumbing cannot change the
// outcome of an update.
//
// NewFromConfig assembles the reporters enabled in config.toml (log, store,
// Prometheus textfile, ntfy) behind a single Multi fan-out.
package report
