// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dbpedia

import (
	"strings"
)

// Vocabulary namespaces used when reading DBpedia graphs.
const (
	nsRDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsRDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	nsOWL     = "http://www.w3.org/2002/07/owl#"
	nsFOAF    = "http://xmlns.com/foaf/0.1/"
	nsSchema  = "http://schema.org/"
	nsDBO     = "http://dbpedia.org/ontology/"
	nsDBP     = "http://dbpedia.org/property/"
	nsGeo     = "http://www.w3.org/2003/01/geo/wgs84_pos#"
	nsGeoName = "http://sws.geonames.org/"
	nsVIAF    = "http://viaf.org/viaf/"

	rdfType      = nsRDF + "type"
	rdfsLabel    = nsRDFS + "label"
	rdfsComment  = nsRDFS + "comment"
	owlSameAs    = nsOWL + "sameAs"
	dbpVIAF      = nsDBP + "viaf"
	dboVIAFID    = nsDBO + "viafId"
	geoLatitude  = nsGeo + "lat"
	geoLongitude = nsGeo + "long"
)

// Object is the object of one statement in RDF/JSON form.
type Object struct {
	// Type is "uri", "literal" or "bnode".
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// Graph is an RDF graph in the RDF/JSON layout served by the DBpedia data
// endpoint: subject -> predicate -> objects.
type Graph map[string]map[string][]Object

// Objects returns every object of (subject, predicate).
func (g Graph) Objects(subject, predicate string) []Object {
	return g[subject][predicate]
}

// Value returns the first object value of (subject, predicate), or "".
func (g Graph) Value(subject, predicate string) string {
	objs := g.Objects(subject, predicate)
	if len(objs) == 0 {
		return ""
	}
	return objs[0].Value
}

// Literal returns the literal of (subject, predicate) in lang. A literal
// without a language tag is used when no tagged one matches.
func (g Graph) Literal(subject, predicate, lang string) string {
	var plain string
	for _, o := range g.Objects(subject, predicate) {
		if o.Type != "literal" {
			continue
		}
		if o.Lang == lang {
			return o.Value
		}
		if o.Lang == "" && plain == "" {
			plain = o.Value
		}
	}
	return plain
}

// Types returns the rdf:type URIs of subject.
func (g Graph) Types(subject string) []string {
	objs := g.Objects(subject, rdfType)
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.Value)
	}
	return out
}

// SameAs returns the owl:sameAs URIs of subject that start with prefix.
func (g Graph) SameAs(subject, prefix string) []string {
	var out []string
	for _, o := range g.Objects(subject, owlSameAs) {
		if o.Type == "uri" && strings.HasPrefix(o.Value, prefix) {
			out = append(out, o.Value)
		}
	}
	return out
}
