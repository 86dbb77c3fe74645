// Package resolver runs content equivalence updates.
//
// A ContentUpdater asks each Generator for candidates, lets each Scorer score
// the union of those candidates, feeds every source's scores through a
// result.Builder and hands the EquivalenceResult to a ResultHandler. The
// reference generators and scorers here work against the local SQLite
// catalogue; deployments with a real search index plug in their own.
//
// ContentRouter picks the updater configured for a target's publisher and
// turns errors into failed report events so batch dispatch never aborts.
package resolver
