// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dbpedia adapts DBpedia resources into the facts the annotator
// needs: a classification, authority cross-references and a human
// readable label and description.
package dbpedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/namedropper/internal/httputil"
	"github.com/pdiddy/namedropper/internal/xref"
)

// dataBase is the DBpedia RDF/JSON data endpoint. Declared as a var so
// tests can substitute an httptest server.
var dataBase = "https://dbpedia.org/data/"

const resourcePrefix = "http://dbpedia.org/resource/"

// ErrNotDBpedia is returned for URIs outside the DBpedia resource space.
var ErrNotDBpedia = errors.New("not a DBpedia resource URI")

// PersonMatcher finds the authority record for a person by name. The
// record must declare itself the same as the DBpedia resource sameAs.
type PersonMatcher interface {
	MatchPerson(ctx context.Context, name, sameAs string) (ref xref.Ref, found bool, err error)
}

// Client fetches DBpedia graphs and builds resources. Graphs are fetched
// at most once per URI for the life of the client.
type Client struct {
	http    *http.Client
	log     *log.Logger
	lang    string
	xrefs   *xref.Cache
	persons PersonMatcher

	graphs  map[string]Graph
	graphMu sync.RWMutex
	group   singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for graph requests.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the logger that receives enrichment failures.
func WithLogger(l *log.Logger) Option { return func(c *Client) { c.log = l } }

// WithLanguage selects the language of labels and descriptions.
func WithLanguage(lang string) Option { return func(c *Client) { c.lang = lang } }

// WithXrefCache shares a cross-reference cache between resources.
func WithXrefCache(x *xref.Cache) Option { return func(c *Client) { c.xrefs = x } }

// WithPersonMatcher enables the name search fallback for people whose
// graph carries no VIAF id.
func WithPersonMatcher(m PersonMatcher) Option { return func(c *Client) { c.persons = m } }

// NewClient returns a client with English labels, a private cross-reference
// cache and a discarding logger unless options say otherwise.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:   http.DefaultClient,
		lang:   "en",
		graphs: make(map[string]Graph),
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = log.New(io.Discard)
	}
	if c.xrefs == nil {
		c.xrefs = xref.NewCache(nil)
	}
	return c
}

// Resource returns the resource for uri with the recognizer's type hints.
func (c *Client) Resource(uri string, hints []string) *Resource {
	return &Resource{uri: uri, hints: hints, client: c}
}

// dataURL maps a resource URI to its RDF/JSON document.
func dataURL(uri string) (string, error) {
	local, ok := strings.CutPrefix(uri, resourcePrefix)
	if !ok {
		local, ok = strings.CutPrefix(uri, "https://dbpedia.org/resource/")
	}
	if !ok || local == "" {
		return "", fmt.Errorf("%w: %s", ErrNotDBpedia, uri)
	}
	return dataBase + local + ".json", nil
}

// Graph returns the RDF graph describing uri.
func (c *Client) Graph(ctx context.Context, uri string) (Graph, error) {
	c.graphMu.RLock()
	if g, ok := c.graphs[uri]; ok {
		c.graphMu.RUnlock()
		return g, nil
	}
	c.graphMu.RUnlock()

	v, err, _ := c.group.Do(uri, func() (any, error) {
		c.graphMu.RLock()
		if g, ok := c.graphs[uri]; ok {
			c.graphMu.RUnlock()
			return g, nil
		}
		c.graphMu.RUnlock()

		g, err := c.fetchGraph(ctx, uri)
		if err != nil {
			return nil, err
		}
		c.graphMu.Lock()
		c.graphs[uri] = g
		c.graphMu.Unlock()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Graph), nil
}

func (c *Client) fetchGraph(ctx context.Context, uri string) (Graph, error) {
	reqURL, err := dataURL(uri)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, fmt.Errorf("DBpedia data request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DBpedia data endpoint returned HTTP %d for %s", resp.StatusCode, uri)
	}

	var g Graph
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return nil, fmt.Errorf("parsing DBpedia graph for %s: %w", uri, err)
	}
	if g == nil {
		g = Graph{}
	}
	return g, nil
}
