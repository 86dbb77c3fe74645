// Package workflow dispatches equivalence updates to a bounded worker pool.
//
// A Dispatcher accepts batches of targets (content or channels) and runs the
// configured Updater for each one on a shared pool. Submission returns as
// soon as the batch is scheduled; every batch is bracketed by
// StartReporting and EndReporting on the reporter so the run can be audited
// as a unit. A failing or panicking update is logged and reported against
// its own item and never affects siblings or the batch.
package workflow
