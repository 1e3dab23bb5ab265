// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate inserts named-entity markup into an XML subtree.
//
// The recognizer reports entities as offsets into the normalized text of
// the subtree (see xmldoc.NormalizedText). The annotator walks the
// subtree's text nodes in document order, keeping a running offset into
// that normalized text, and for each span either wraps the matching text
// in a new element, merges attributes into an element that already wraps
// exactly that text, or logs why the span was skipped. Text outside the
// tagged spans is left byte for byte as it was.
package annotate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/charmbracelet/log"

	"github.com/pdiddy/namedropper/internal/dbpedia"
	"github.com/pdiddy/namedropper/internal/policy"
	"github.com/pdiddy/namedropper/internal/trackchanges"
	"github.com/pdiddy/namedropper/pkg/types"
)

// ErrMalformedSpan is returned when a span cannot be interpreted at all.
// Nothing is modified when it is returned.
var ErrMalformedSpan = errors.New("malformed span")

// Entity is a recognized resource: what the policy needs to choose markup
// and what change tracking needs to describe it.
type Entity interface {
	policy.Entity
	trackchanges.Described
}

// Resolver turns a recognized span into an entity.
type Resolver func(s types.RecognizedSpan) Entity

// Offline resolves spans to resources classified from their type hints
// alone, without network access.
func Offline(s types.RecognizedSpan) Entity {
	return dbpedia.NewResource(s.URI, s.TypeHints)
}

// DBpedia resolves spans through c, so resources can fetch their graph and
// cross references.
func DBpedia(c *dbpedia.Client) Resolver {
	return func(s types.RecognizedSpan) Entity {
		return c.Resource(s.URI, s.TypeHints)
	}
}

// Checker validates an inserted element in place. schema.Model satisfies
// it.
type Checker interface {
	Check(elem *xmlquery.Node) error
}

// Annotator applies a vocabulary to recognized spans. An Annotator holds
// no per-document state and may be shared between goroutines annotating
// different documents.
type Annotator struct {
	vocab   policy.Vocabulary
	resolve Resolver
	schema  Checker
	log     *log.Logger

	track  bool
	author string
	now    func() time.Time
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithResolver sets how spans become entities (default Offline).
func WithResolver(r Resolver) Option { return func(a *Annotator) { a.resolve = r } }

// WithSchema checks every insertion against c and undoes those it rejects.
func WithSchema(c Checker) Option { return func(a *Annotator) { a.schema = c } }

// WithLogger sets the logger for skipped spans and merges.
func WithLogger(l *log.Logger) Option { return func(a *Annotator) { a.log = l } }

// WithTrackChanges records every edit as an Oxygen tracked change by
// author.
func WithTrackChanges(author string) Option {
	return func(a *Annotator) { a.track, a.author = true, author }
}

// WithClock sets the time source for change-tracking timestamps.
func WithClock(now func() time.Time) Option { return func(a *Annotator) { a.now = now } }

// New returns an annotator for vocab.
func New(vocab policy.Vocabulary, opts ...Option) *Annotator {
	a := &Annotator{vocab: vocab, resolve: Offline, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	if a.log == nil {
		a.log = log.New(io.Discard)
	}
	return a
}

// Annotate tags spans inside root and returns the number of elements
// inserted. Attribute merges into existing elements are not counted.
// Spans must be in ascending offset order; spans that cannot be placed
// are logged and skipped.
func (a *Annotator) Annotate(ctx context.Context, root *xmlquery.Node, spans []types.RecognizedSpan) (int, error) {
	for i, s := range spans {
		switch {
		case s.SurfaceForm == "":
			return 0, fmt.Errorf("%w: span %d has an empty surface form", ErrMalformedSpan, i)
		case s.Offset < 0:
			return 0, fmt.Errorf("%w: span %d has negative offset %d", ErrMalformedSpan, i, s.Offset)
		}
	}
	if root == nil || len(spans) == 0 {
		return 0, nil
	}

	r := newRun(ctx, a, root)
	if a.track {
		r.marker = trackchanges.NewMarker(a.author, a.now())
	}
	return r.walk(spans), nil
}
