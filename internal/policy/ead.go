// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package policy

import (
	"context"

	"github.com/pdiddy/namedropper/pkg/types"
)

// EAD tags people, organizations and places with the controlled access
// elements persname, corpname and geogname. Other entities are left
// untagged.
type EAD struct {
	VIAF     bool
	GeoNames bool
}

func (EAD) Name() string { return string(types.VocabularyEAD) }

func (EAD) TagFor(c types.Classification) string {
	switch c {
	case types.Person:
		return "persname"
	case types.Organization:
		return "corpname"
	case types.Place:
		return "geogname"
	}
	return ""
}

func (p EAD) Element(ctx context.Context, e Entity) (Element, bool) {
	c := e.Classification(ctx)
	tag := p.TagFor(c)
	if tag == "" {
		return Element{}, false
	}
	source, id := "dbpedia", localName(e.URI())
	if auth, r, ok := authority(ctx, e, c, p.VIAF, p.GeoNames); ok {
		source, id = string(auth), r.ID
	}
	return Element{
		Tag:   tag,
		Attrs: []Attr{{Name: "source", Value: source}, {Name: "authfilenumber", Value: id}},
	}, true
}
