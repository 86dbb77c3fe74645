package channels

import (
	"equiv/internal/model"
	"equiv/internal/textutil"
)

// Matcher decides whether candidate describes the same channel as subject.
type Matcher interface {
	IsMatch(subject, candidate model.Channel) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(subject, candidate model.Channel) bool

func (f MatcherFunc) IsMatch(subject, candidate model.Channel) bool { return f(subject, candidate) }

// TitleMatcher matches channels whose titles are equal after folding case,
// accents and whitespace.
func TitleMatcher() Matcher {
	return MatcherFunc(func(subject, candidate model.Channel) bool {
		a := textutil.Fold(subject.Title)
		return a != "" && a == textutil.Fold(candidate.Title)
	})
}

// AliasMatcher matches channels that carry the same alias value in namespace.
func AliasMatcher(namespace string) Matcher {
	return MatcherFunc(func(subject, candidate model.Channel) bool {
		a, ok := subject.AliasValue(namespace)
		if !ok {
			return false
		}
		b, ok := candidate.AliasValue(namespace)
		return ok && a == b
	})
}

// AnyMatcher matches when any of matchers does.
func AnyMatcher(matchers ...Matcher) Matcher {
	return MatcherFunc(func(subject, candidate model.Channel) bool {
		for _, m := range matchers {
			if m != nil && m.IsMatch(subject, candidate) {
				return true
			}
		}
		return false
	})
}
