// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "unicode/utf16"

// RecognizedSpan is one named-entity mention returned by the recognizer.
// Offsets index the normalized text that was submitted and count UTF-16
// code units.
type RecognizedSpan struct {
	// SurfaceForm is the exact text that was matched.
	SurfaceForm string `json:"surface_form" yaml:"surface_form"`

	// Offset is the start of the match in the normalized text.
	Offset int `json:"offset" yaml:"offset"`

	// URI is the canonical DBpedia resource URI.
	URI string `json:"uri" yaml:"uri"`

	// TypeHints are the coarse type labels attached by the recognizer
	// (e.g. "DBpedia:Person", "Schema:Place").
	TypeHints []string `json:"types,omitempty" yaml:"types,omitempty"`

	// Support is the number of inlinks of the resource.
	Support int `json:"support,omitempty" yaml:"support,omitempty"`

	// SimilarityScore is the disambiguation score.
	SimilarityScore float64 `json:"similarity_score,omitempty" yaml:"similarity_score,omitempty"`
}

// EndOffset returns the offset just past the surface form.
func (s RecognizedSpan) EndOffset() int {
	n := 0
	for _, r := range s.SurfaceForm {
		n += utf16.RuneLen(r)
	}
	return s.Offset + n
}

// Classification is the coarse entity category that decides which markup
// an entity receives.
type Classification int

const (
	Unknown Classification = iota
	Person
	Organization
	Place
)

func (c Classification) String() string {
	switch c {
	case Person:
		return "person"
	case Organization:
		return "organization"
	case Place:
		return "place"
	default:
		return "unknown"
	}
}
