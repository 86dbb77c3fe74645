package model

import (
	"sort"
	"strings"
)

// Publisher identifies the catalogue a record was ingested from.
type Publisher string

const (
	PublisherBBC           Publisher = "bbc.co.uk"
	PublisherPA            Publisher = "pressassociation.com"
	PublisherRadioTimes    Publisher = "radiotimes.com"
	PublisherITV           Publisher = "itv.com"
	PublisherC4            Publisher = "channel4.com"
	PublisherFive          Publisher = "five.tv"
	PublisherYouView       Publisher = "youview.com"
	PublisherBTVision      Publisher = "btvision.bt.com"
	PublisherMetabroadcast Publisher = "metabroadcast.com"
)

var publisherNames = map[Publisher]string{
	PublisherBBC:           "BBC",
	PublisherPA:            "Press Association",
	PublisherRadioTimes:    "Radio Times",
	PublisherITV:           "ITV",
	PublisherC4:            "Channel 4",
	PublisherFive:          "Channel 5",
	PublisherYouView:       "YouView",
	PublisherBTVision:      "BT Vision",
	PublisherMetabroadcast: "MetaBroadcast",
}

// ParsePublisher normalizes a publisher key. Unknown keys are accepted as-is so
// new catalogues can be configured without code changes.
func ParsePublisher(value string) Publisher {
	return Publisher(strings.ToLower(strings.TrimSpace(value)))
}

// Name returns the display name for the publisher, falling back to the key.
func (p Publisher) Name() string {
	if name, ok := publisherNames[p]; ok {
		return name
	}
	return string(p)
}

func (p Publisher) String() string { return string(p) }

// SortPublishers orders publishers by key, in place.
func SortPublishers(publishers []Publisher) {
	sort.Slice(publishers, func(i, j int) bool { return publishers[i] < publishers[j] })
}

// ParsePublishers converts configured keys, dropping blanks and duplicates.
func ParsePublishers(values []string) []Publisher {
	seen := make(map[Publisher]struct{}, len(values))
	out := make([]Publisher, 0, len(values))
	for _, value := range values {
		p := ParsePublisher(value)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
