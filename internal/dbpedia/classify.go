// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dbpedia

import (
	"slices"

	"github.com/pdiddy/namedropper/pkg/types"
)

// Recognizer type hints per classification. Organizations are limited to
// the DBpedia and schema.org labels: Spotlight attaches Freebase
// organization labels to many places.
var (
	personHints = []string{"DBpedia:Person", "Schema:Person", "Freebase:/people/person", "Http://xmlns.com/foaf/0.1/Person", "Wikidata:Q5"}
	orgHints    = []string{"DBpedia:Organisation", "Schema:Organization"}
	placeHints  = []string{"DBpedia:Place", "Schema:Place"}
)

// rdf:type URIs per classification.
var (
	personTypes = []string{nsFOAF + "Person", nsDBO + "Person", nsSchema + "Person"}
	orgTypes    = []string{nsDBO + "Organisation", nsSchema + "Organization", nsFOAF + "Organization"}
	placeTypes  = []string{nsDBO + "Place", nsSchema + "Place"}
)

func anyIn(have, want []string) bool {
	for _, h := range have {
		if slices.Contains(want, h) {
			return true
		}
	}
	return false
}

func classifyBy(have, person, org, place []string) types.Classification {
	switch {
	case anyIn(have, person):
		return types.Person
	case anyIn(have, org):
		return types.Organization
	case anyIn(have, place):
		return types.Place
	}
	return types.Unknown
}

// Classify decides the classification of the resource uri. Type hints win
// when present; the graph is consulted only when there are none. Person
// takes precedence over organization, organization over place.
func Classify(hints []string, g Graph, uri string) types.Classification {
	if len(hints) > 0 {
		return classifyBy(hints, personHints, orgHints, placeHints)
	}
	if g == nil {
		return types.Unknown
	}
	return classifyBy(g.Types(uri), personTypes, orgTypes, placeTypes)
}
