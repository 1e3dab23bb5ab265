// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package policy decides which element and attributes a recognized entity
// receives in each supported markup vocabulary.
package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/namedropper/internal/xref"
	"github.com/pdiddy/namedropper/pkg/types"
)

// Entity is the view of a linked-data resource the policies need.
// *dbpedia.Resource satisfies it.
type Entity interface {
	URI() string
	Classification(ctx context.Context) types.Classification
	VIAF(ctx context.Context) (xref.Ref, bool)
	GeoNames(ctx context.Context) (xref.Ref, bool)
}

// Attr is one attribute to set on an inserted or existing element.
type Attr struct {
	Name  string
	Value string
}

// Element is the markup chosen for an entity. Attrs are in the order they
// are written.
type Element struct {
	Tag   string
	Attrs []Attr
}

// Vocabulary maps entities to markup.
type Vocabulary interface {
	// Name identifies the vocabulary, e.g. "tei".
	Name() string

	// TagFor returns the element local name for c, or "" when entities
	// of that classification are not tagged.
	TagFor(c types.Classification) string

	// Element returns the markup for e. The second result is false when
	// e must not be tagged.
	Element(ctx context.Context, e Entity) (Element, bool)
}

// For returns the vocabulary named v, with cross references enabled as
// requested.
func For(v types.Vocabulary, viaf, geonames bool) (Vocabulary, error) {
	switch types.Vocabulary(strings.ToLower(string(v))) {
	case types.VocabularyTEI:
		return TEI{VIAF: viaf, GeoNames: geonames}, nil
	case types.VocabularyEAD:
		return EAD{VIAF: viaf, GeoNames: geonames}, nil
	}
	return nil, fmt.Errorf("unknown vocabulary %q", v)
}

// authority returns the enabled cross reference for e, if one is found.
// People are looked up in VIAF and places in GeoNames.
func authority(ctx context.Context, e Entity, c types.Classification, viaf, geonames bool) (xref.Authority, xref.Ref, bool) {
	switch {
	case c == types.Person && viaf:
		if ref, ok := e.VIAF(ctx); ok {
			return xref.VIAF, ref, true
		}
	case c == types.Place && geonames:
		if ref, ok := e.GeoNames(ctx); ok {
			return xref.GeoNames, ref, true
		}
	}
	return "", xref.Ref{}, false
}

// localName is the last path segment of a URI.
func localName(uri string) string {
	u := strings.TrimSuffix(uri, "/")
	return u[strings.LastIndex(u, "/")+1:]
}
