// Command equiv imports catalogue records, resolves content equivalences and
// maintains channel same-as links from the command line.
//
// Every command loads the TOML configuration (see `equiv config init`), opens
// the SQLite store in the configured data directory and logs to stderr plus
// the log directory. Batch commands (`run`, `channels update`) take the run
// lock so two batches never write the same store concurrently, dispatch their
// items through the worker pool and print a summary once the batch drains.
package main
