// Package model defines the records the equivalence engine reasons about.
//
// Content and Channel are the two record families ingested from publishers.
// Both satisfy Candidate, the constraint the generic scoring, filtering and
// extraction packages are written against: a stable key (the canonical URI),
// the publisher the record came from, and a printable form used as the
// deterministic tie-break when scores are equal.
//
// Channel.SameAs is the only long-lived equivalence state in this package and
// is mutated exclusively by internal/channels.
package model
