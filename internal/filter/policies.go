package filter

import (
	"fmt"
	"strings"

	"equiv/internal/model"
	"equiv/internal/score"
)

// Identified is implemented by records with a database identifier.
type Identified interface {
	Identifier() int64
}

// AlwaysTrue accepts every candidate.
func AlwaysTrue[T model.Candidate]() Predicate[T] {
	return NewPredicate("always-true", func(score.ScoredCandidate[T], T) (bool, string) {
		return true, ""
	})
}

// MinimumScore rejects candidates whose score is null or below min.
func MinimumScore[T model.Candidate](min float64) Predicate[T] {
	name := fmt.Sprintf("minimum-score(%g)", min)
	return NewPredicate(name, func(c score.ScoredCandidate[T], _ T) (bool, string) {
		if !c.Score.AtLeast(min) {
			return false, fmt.Sprintf("score %s below %g", c.Score, min)
		}
		return true, ""
	})
}

// ExcludeKeys rejects candidates whose key (URI) is listed.
func ExcludeKeys[T model.Candidate](keys ...string) Predicate[T] {
	excluded := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			excluded[trimmed] = struct{}{}
		}
	}
	return NewPredicate("exclusion-list(uri)", func(c score.ScoredCandidate[T], _ T) (bool, string) {
		if _, ok := excluded[c.Candidate.Key()]; ok {
			return false, "uri excluded"
		}
		return true, ""
	})
}

// ExcludeIDs rejects candidates whose identifier is listed. Candidates that
// do not expose an identifier are kept.
func ExcludeIDs[T model.Candidate](ids ...int64) Predicate[T] {
	excluded := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		excluded[id] = struct{}{}
	}
	return NewPredicate("exclusion-list(id)", func(c score.ScoredCandidate[T], _ T) (bool, string) {
		identified, ok := any(c.Candidate).(Identified)
		if !ok {
			return true, ""
		}
		if _, hit := excluded[identified.Identifier()]; hit {
			return false, "id excluded"
		}
		return true, ""
	})
}

// PublisherPolicy rejects candidates from the target's own publisher and
// from any denied publisher.
func PublisherPolicy[T model.Candidate](denied ...model.Publisher) Predicate[T] {
	deny := make(map[model.Publisher]struct{}, len(denied))
	for _, p := range denied {
		deny[p] = struct{}{}
	}
	return NewPredicate("publisher-policy", func(c score.ScoredCandidate[T], target T) (bool, string) {
		publisher := c.Candidate.Source()
		if publisher == target.Source() {
			return false, "same publisher as target"
		}
		if _, ok := deny[publisher]; ok {
			return false, fmt.Sprintf("publisher %s denied", publisher)
		}
		return true, ""
	})
}

// MediaTypeCompatible rejects content of a different media type. Unknown
// media types on either side are compatible with everything.
func MediaTypeCompatible() Predicate[model.Content] {
	return NewPredicate("media-type", func(c score.ScoredCandidate[model.Content], target model.Content) (bool, string) {
		a, b := c.Candidate.MediaType, target.MediaType
		if a == model.MediaUnknown || b == model.MediaUnknown || a == b {
			return true, ""
		}
		return false, fmt.Sprintf("media type %s vs %s", a, b)
	})
}

// SpecializationCompatible rejects content of a different specialization.
// Unknown specializations are compatible with everything.
func SpecializationCompatible() Predicate[model.Content] {
	return NewPredicate("specialization", func(c score.ScoredCandidate[model.Content], target model.Content) (bool, string) {
		a, b := c.Candidate.Specialization, target.Specialization
		if a == model.SpecializationUnknown || b == model.SpecializationUnknown || a == b {
			return true, ""
		}
		return false, fmt.Sprintf("specialization %s vs %s", a, b)
	})
}

// Unpublished rejects content its publisher has withdrawn.
func Unpublished() Predicate[model.Content] {
	return NewPredicate("unpublished", func(c score.ScoredCandidate[model.Content], _ model.Content) (bool, string) {
		if !c.Candidate.Published {
			return false, "candidate unpublished"
		}
		return true, ""
	})
}

// KindCompatible keeps containers matching containers and playable items
// matching playable items.
func KindCompatible() Predicate[model.Content] {
	return NewPredicate("kind", func(c score.ScoredCandidate[model.Content], target model.Content) (bool, string) {
		if c.Candidate.Kind.IsContainer() != target.Kind.IsContainer() {
			return false, fmt.Sprintf("kind %s vs %s", c.Candidate.Kind, target.Kind)
		}
		return true, ""
	})
}

// ContainerHierarchy keeps episodes matching episodes: an episode that sits
// in a container must not match a top-level item, and a top-level item must
// not match an episode that sits in a container.
func ContainerHierarchy() Predicate[model.Content] {
	return NewPredicate("container-hierarchy", func(c score.ScoredCandidate[model.Content], target model.Content) (bool, string) {
		targetInContainer := target.Kind == model.KindEpisode && target.ContainerURI != ""
		candidateInContainer := c.Candidate.Kind == model.KindEpisode && c.Candidate.ContainerURI != ""
		if targetInContainer != candidateInContainer {
			return false, "container relationship differs"
		}
		return true, ""
	})
}
