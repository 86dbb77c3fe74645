package channels

import "errors"

var (
	// ErrPublisherMismatch is returned when an updater is handed a channel
	// from a publisher it is not configured for.
	ErrPublisherMismatch = errors.New("channel publisher does not match updater")
	// ErrMissingAlias marks a channel that lacks the alias a forced mapping is
	// keyed on.
	ErrMissingAlias = errors.New("channel has no alias in mapping namespace")
	// ErrUnresolvable marks a channel reference that no longer resolves.
	ErrUnresolvable = errors.New("channel could not be resolved")
	// ErrMappingsMissing is returned when the forced mapping file is absent.
	ErrMappingsMissing = errors.New("forced mapping file not found")
)
