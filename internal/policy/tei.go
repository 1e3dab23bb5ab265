// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package policy

import (
	"context"

	"github.com/pdiddy/namedropper/pkg/types"
)

// TEI tags every classified entity as <name ref=".." type="..">. The ref
// is the DBpedia URI unless an enabled cross reference is found.
type TEI struct {
	VIAF     bool
	GeoNames bool
}

func (TEI) Name() string { return string(types.VocabularyTEI) }

func (TEI) TagFor(c types.Classification) string {
	if teiType(c) == "" {
		return ""
	}
	return "name"
}

func teiType(c types.Classification) string {
	switch c {
	case types.Person:
		return "person"
	case types.Organization:
		return "org"
	case types.Place:
		return "place"
	}
	return ""
}

func (t TEI) Element(ctx context.Context, e Entity) (Element, bool) {
	c := e.Classification(ctx)
	typ := teiType(c)
	if typ == "" {
		return Element{}, false
	}
	ref := e.URI()
	if _, r, ok := authority(ctx, e, c, t.VIAF, t.GeoNames); ok {
		ref = r.URI
	}
	return Element{
		Tag:   "name",
		Attrs: []Attr{{Name: "ref", Value: ref}, {Name: "type", Value: typ}},
	}, true
}
