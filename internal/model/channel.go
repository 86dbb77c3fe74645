package model

import (
	"fmt"
	"strings"
)

// ChannelRef points at another channel from inside a SameAs set. It never
// owns the referenced channel; resolve it through a store to read it.
type ChannelRef struct {
	ID  int64  `json:"id"`
	URI string `json:"uri"`
}

// RefTo builds a reference to the given channel.
func RefTo(ch Channel) ChannelRef {
	return ChannelRef{ID: ch.ID, URI: ch.URI}
}

// Channel is a broadcast channel as described by one publisher.
type Channel struct {
	ID        int64        `json:"id,omitempty"`
	URI       string       `json:"uri"`
	Publisher Publisher    `json:"publisher"`
	Title     string       `json:"title"`
	MediaType MediaType    `json:"media_type,omitempty"`
	Aliases   []Alias      `json:"aliases,omitempty"`
	SameAs    []ChannelRef `json:"same_as,omitempty"`
}

func (c Channel) Key() string { return c.URI }

func (c Channel) Source() Publisher { return c.Publisher }

// Identifier returns the database identifier.
func (c Channel) Identifier() int64 { return c.ID }

func (c Channel) String() string {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return c.URI
	}
	return fmt.Sprintf("%s (%s)", c.URI, title)
}

// AliasValue returns the first alias value in the namespace.
func (c Channel) AliasValue(namespace string) (string, bool) {
	for _, alias := range c.Aliases {
		if alias.Namespace == namespace && strings.TrimSpace(alias.Value) != "" {
			return strings.TrimSpace(alias.Value), true
		}
	}
	return "", false
}

// LinkedRef returns the single SameAs entry, if any.
func (c Channel) LinkedRef() (ChannelRef, bool) {
	if len(c.SameAs) == 0 {
		return ChannelRef{}, false
	}
	return c.SameAs[0], true
}

// LinksTo reports whether SameAs references the channel with the given URI.
func (c Channel) LinksTo(uri string) bool {
	for _, ref := range c.SameAs {
		if ref.URI == uri {
			return true
		}
	}
	return false
}

// WithSameAs returns a copy of the channel linked to ref. A channel holds at
// most one equivalence, so any previous entry is replaced.
func (c Channel) WithSameAs(ref ChannelRef) Channel {
	c.SameAs = []ChannelRef{ref}
	c.Aliases = cloneAliases(c.Aliases)
	return c
}

// WithoutSameAs returns a copy of the channel with no equivalence.
func (c Channel) WithoutSameAs() Channel {
	c.SameAs = nil
	c.Aliases = cloneAliases(c.Aliases)
	return c
}

func cloneAliases(aliases []Alias) []Alias {
	if len(aliases) == 0 {
		return nil
	}
	out := make([]Alias, len(aliases))
	copy(out, aliases)
	return out
}
