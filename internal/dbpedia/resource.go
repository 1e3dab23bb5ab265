// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dbpedia

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/pdiddy/namedropper/internal/xref"
	"github.com/pdiddy/namedropper/pkg/types"
)

// Resource is one DBpedia resource as seen by the annotator. The graph is
// loaded lazily, at most once, and only when a property needs it.
type Resource struct {
	uri    string
	hints  []string
	client *Client

	graphOnce sync.Once
	graph     Graph
	graphErr  error

	classOnce sync.Once
	class     types.Classification
}

// NewResource returns a resource that never touches the network: it is
// classified from its hints alone and has no graph properties.
func NewResource(uri string, hints []string) *Resource {
	return &Resource{uri: uri, hints: hints}
}

// URI returns the DBpedia resource URI.
func (r *Resource) URI() string { return r.uri }

// LocalName returns the last path segment of the URI, e.g.
// "University_of_Cambridge".
func (r *Resource) LocalName() string {
	u := strings.TrimSuffix(r.uri, "/")
	return u[strings.LastIndex(u, "/")+1:]
}

// subject is the URI as it appears as a subject in DBpedia graphs.
func (r *Resource) subject() string {
	if local, ok := strings.CutPrefix(r.uri, "https://dbpedia.org/resource/"); ok {
		return resourcePrefix + local
	}
	return r.uri
}

// fetchGraph loads the graph once. A failed fetch is logged and remembered;
// the resource then behaves as if the graph were empty.
func (r *Resource) fetchGraph(ctx context.Context) (Graph, error) {
	if r.client == nil {
		return nil, nil
	}
	r.graphOnce.Do(func() {
		r.graph, r.graphErr = r.client.Graph(ctx, r.uri)
		if r.graphErr != nil {
			r.client.log.Info("DBpedia graph unavailable", "uri", r.uri, "err", r.graphErr)
		}
	})
	return r.graph, r.graphErr
}

func (r *Resource) loadGraph(ctx context.Context) Graph {
	g, _ := r.fetchGraph(ctx)
	return g
}

// Classification returns the entity category, computed once. The graph is
// fetched only when the recognizer supplied no type hints.
func (r *Resource) Classification(ctx context.Context) types.Classification {
	r.classOnce.Do(func() {
		var g Graph
		if len(r.hints) == 0 {
			g = r.loadGraph(ctx)
		}
		r.class = Classify(r.hints, g, r.subject())
	})
	return r.class
}

func (r *Resource) lang() string {
	if r.client == nil || r.client.lang == "" {
		return "en"
	}
	return r.client.lang
}

// Label returns the preferred label in the client language, or "".
func (r *Resource) Label(ctx context.Context) string {
	return r.loadGraph(ctx).Literal(r.subject(), rdfsLabel, r.lang())
}

// Description returns the short description in the client language, or "".
func (r *Resource) Description(ctx context.Context) string {
	return r.loadGraph(ctx).Literal(r.subject(), rdfsComment, r.lang())
}

// Name is the label, or the URI local name with underscores as spaces
// when no label is available.
func (r *Resource) Name(ctx context.Context) string {
	if l := r.Label(ctx); l != "" {
		return l
	}
	return strings.ReplaceAll(r.LocalName(), "_", " ")
}

func (r *Resource) coordinate(ctx context.Context, predicate string) (float64, bool) {
	v := r.loadGraph(ctx).Value(r.subject(), predicate)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

// Latitude returns the WGS84 latitude of a place.
func (r *Resource) Latitude(ctx context.Context) (float64, bool) {
	return r.coordinate(ctx, geoLatitude)
}

// Longitude returns the WGS84 longitude of a place.
func (r *Resource) Longitude(ctx context.Context) (float64, bool) {
	return r.coordinate(ctx, geoLongitude)
}

// graphVIAF reads a VIAF id recorded in the graph itself.
func graphVIAF(g Graph, subject string) string {
	for _, p := range []string{dbpVIAF, dboVIAFID} {
		if id := strings.TrimSpace(g.Value(subject, p)); id != "" {
			return id
		}
	}
	if same := g.SameAs(subject, nsVIAF); len(same) > 0 {
		return strings.Trim(strings.TrimPrefix(same[0], nsVIAF), "/")
	}
	return ""
}

// VIAF returns the VIAF record of a person. The graph is checked first,
// then the person matcher, if one is configured. Lookup failures are
// logged and reported as not found. Other classifications never have a
// VIAF reference.
func (r *Resource) VIAF(ctx context.Context) (xref.Ref, bool) {
	if r.client == nil || r.Classification(ctx) != types.Person {
		return xref.Ref{}, false
	}
	e, err := r.client.xrefs.Resolve(ctx, xref.VIAF, r.uri, func(ctx context.Context) (xref.Ref, bool, error) {
		g, err := r.fetchGraph(ctx)
		if err != nil {
			return xref.Ref{}, false, err
		}
		if id := graphVIAF(g, r.subject()); id != "" {
			return xref.Ref{ID: id, URI: nsVIAF + id}, true, nil
		}
		if r.client.persons == nil {
			return xref.Ref{}, false, nil
		}
		return r.client.persons.MatchPerson(ctx, r.Name(ctx), r.subject())
	})
	if err != nil {
		r.client.log.Info("VIAF lookup failed", "uri", r.uri, "err", err)
		return xref.Ref{}, false
	}
	return e.Ref, e.Found
}

// GeoNames returns the GeoNames record of a place, taken from the first
// owl:sameAs link into sws.geonames.org. Other classifications never have
// a GeoNames reference.
func (r *Resource) GeoNames(ctx context.Context) (xref.Ref, bool) {
	if r.client == nil || r.Classification(ctx) != types.Place {
		return xref.Ref{}, false
	}
	e, err := r.client.xrefs.Resolve(ctx, xref.GeoNames, r.uri, func(ctx context.Context) (xref.Ref, bool, error) {
		g, err := r.fetchGraph(ctx)
		if err != nil {
			return xref.Ref{}, false, err
		}
		same := g.SameAs(r.subject(), nsGeoName)
		if len(same) == 0 {
			return xref.Ref{}, false, nil
		}
		uri := same[0]
		id := strings.Trim(strings.TrimPrefix(uri, nsGeoName), "/")
		if i := strings.IndexByte(id, '/'); i >= 0 {
			id = id[:i]
		}
		return xref.Ref{ID: id, URI: uri}, true, nil
	})
	if err != nil {
		return xref.Ref{}, false
	}
	return e.Ref, e.Found
}
