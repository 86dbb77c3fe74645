package model

import (
	"fmt"
	"strings"
)

// Candidate is the constraint shared by every record the engine can resolve.
type Candidate interface {
	// Key returns the stable identity of the record (its canonical URI).
	Key() string
	// Source returns the publisher the record was ingested from.
	Source() Publisher
	String() string
}

// MediaType describes the medium of a piece of content or a channel.
type MediaType string

const (
	MediaVideo   MediaType = "video"
	MediaAudio   MediaType = "audio"
	MediaUnknown MediaType = ""
)

// Specialization narrows a media type (tv vs film, radio vs music).
type Specialization string

const (
	SpecializationTV      Specialization = "tv"
	SpecializationFilm    Specialization = "film"
	SpecializationRadio   Specialization = "radio"
	SpecializationMusic   Specialization = "music"
	SpecializationUnknown Specialization = ""
)

// Kind is the position of a piece of content in the container hierarchy.
type Kind string

const (
	KindItem    Kind = "item"
	KindEpisode Kind = "episode"
	KindFilm    Kind = "film"
	KindBrand   Kind = "brand"
	KindSeries  Kind = "series"
)

// IsContainer reports whether the kind holds other content.
func (k Kind) IsContainer() bool {
	return k == KindBrand || k == KindSeries
}

// Alias is an identifier assigned to a record by some external namespace,
// for example a station code.
type Alias struct {
	Namespace string `json:"namespace"`
	Value     string `json:"value"`
}

// Content is a programme, film, episode or container as described by one
// publisher.
type Content struct {
	ID             int64          `json:"id,omitempty"`
	URI            string         `json:"uri"`
	Publisher      Publisher      `json:"publisher"`
	Kind           Kind           `json:"kind"`
	Title          string         `json:"title"`
	Year           int            `json:"year,omitempty"`
	MediaType      MediaType      `json:"media_type,omitempty"`
	Specialization Specialization `json:"specialization,omitempty"`
	SeriesNumber   int            `json:"series_number,omitempty"`
	EpisodeNumber  int            `json:"episode_number,omitempty"`
	ContainerURI   string         `json:"container_uri,omitempty"`
	Aliases        []Alias        `json:"aliases,omitempty"`
	Published      bool           `json:"published"`
}

func (c Content) Key() string { return c.URI }

func (c Content) Source() Publisher { return c.Publisher }

// Identifier returns the database identifier.
func (c Content) Identifier() int64 { return c.ID }

func (c Content) String() string {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return c.URI
	}
	return fmt.Sprintf("%s (%s)", c.URI, title)
}
