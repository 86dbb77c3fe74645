// Package score holds the value types passed between equivalence pipeline
// stages: Score (with a distinguished null), ScoredCandidate and the
// per-source ScoredCandidates group.
//
// All values are created fresh on each resolution run and are never mutated
// after construction.
package score
