// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package spotlight is a client for the DBpedia Spotlight annotate service,
// which recognizes named entities in plain text and links them to DBpedia
// resources.
package spotlight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/namedropper/internal/httputil"
	"github.com/pdiddy/namedropper/pkg/types"
)

// DefaultBaseURL is the public DBpedia Spotlight endpoint for English.
const DefaultBaseURL = "https://api.dbpedia-spotlight.org/en"

const (
	defaultConfidence    = 0.4
	defaultSupport       = 20
	defaultTypes         = "Person,Place,Organisation"
	defaultPostThreshold = 5000
)

// ErrBadResponse marks a Spotlight response that cannot be turned into
// spans.
var ErrBadResponse = errors.New("malformed Spotlight response")

// Options overrides the configured recognition parameters for one call.
// Zero values keep the configured defaults.
type Options struct {
	Confidence float64
	Support    int
	Types      string
}

// Stats reports the number and total duration of annotate calls.
type Stats struct {
	Calls    int
	Duration time.Duration
}

// Client calls the Spotlight annotate service.
type Client struct {
	cfg  types.SpotlightConfig
	http *http.Client

	mu    sync.Mutex
	stats Stats
}

// NewClient returns a client for cfg. Zero config values fall back to the
// public endpoint, confidence 0.4, support 20, people, places and
// organisations, and a 5000 character GET limit.
func NewClient(cfg types.SpotlightConfig, h *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Confidence == 0 {
		cfg.Confidence = defaultConfidence
	}
	if cfg.Support == 0 {
		cfg.Support = defaultSupport
	}
	if cfg.Types == "" {
		cfg.Types = defaultTypes
	}
	if cfg.PostThreshold <= 0 {
		cfg.PostThreshold = defaultPostThreshold
	}
	if h == nil {
		h = httputil.NewClient(cfg.HTTPConfig)
	}
	return &Client{cfg: cfg, http: h}
}

// Stats returns the calls made so far.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Client) record(d time.Duration) {
	c.mu.Lock()
	c.stats.Calls++
	c.stats.Duration += d
	c.mu.Unlock()
}

// Annotate recognizes entities in text with the configured parameters.
func (c *Client) Annotate(ctx context.Context, text string) ([]types.RecognizedSpan, error) {
	return c.AnnotateWith(ctx, text, Options{})
}

// AnnotateWith recognizes entities in text. Short texts are sent as query
// parameters, longer ones as a form POST.
func (c *Client) AnnotateWith(ctx context.Context, text string, o Options) ([]types.RecognizedSpan, error) {
	params := url.Values{"text": {text}}
	confidence, support, typ := c.cfg.Confidence, c.cfg.Support, c.cfg.Types
	if o.Confidence != 0 {
		confidence = o.Confidence
	}
	if o.Support != 0 {
		support = o.Support
	}
	if o.Types != "" {
		typ = o.Types
	}
	params.Set("confidence", strconv.FormatFloat(confidence, 'f', -1, 64))
	params.Set("support", strconv.Itoa(support))
	params.Set("types", typ)

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/annotate"

	var (
		req *http.Request
		err error
	)
	if utf8.RuneCountInString(text) < c.cfg.PostThreshold {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	c.record(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("Spotlight request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Spotlight returned HTTP %d", resp.StatusCode)
	}

	var body annotation
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing Spotlight response: %w", err)
	}
	return body.spans()
}

// annotation is the Spotlight JSON payload. Every value is a string and
// every attribute key carries an "@" prefix.
type annotation struct {
	Text      string          `json:"@text"`
	Resources json.RawMessage `json:"Resources"`
}

type resource struct {
	URI             string `json:"@URI"`
	Support         string `json:"@support"`
	Types           string `json:"@types"`
	SurfaceForm     string `json:"@surfaceForm"`
	Offset          string `json:"@offset"`
	SimilarityScore string `json:"@similarityScore"`
}

func (a annotation) resources() ([]resource, error) {
	raw := bytes.TrimSpace(a.Resources)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	// a single match may arrive as an object rather than a list
	if raw[0] == '{' {
		var r resource
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
		return []resource{r}, nil
	}
	var rs []resource
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return rs, nil
}

func (a annotation) spans() ([]types.RecognizedSpan, error) {
	rs, err := a.resources()
	if err != nil {
		return nil, err
	}
	spans := make([]types.RecognizedSpan, 0, len(rs))
	for i, r := range rs {
		offset, err := strconv.Atoi(strings.TrimSpace(r.Offset))
		if err != nil {
			return nil, fmt.Errorf("%w: resource %d has offset %q", ErrBadResponse, i, r.Offset)
		}
		s := types.RecognizedSpan{
			SurfaceForm: r.SurfaceForm,
			Offset:      offset,
			URI:         r.URI,
			TypeHints:   splitTypes(r.Types),
		}
		s.Support, _ = strconv.Atoi(r.Support)
		s.SimilarityScore, _ = strconv.ParseFloat(r.SimilarityScore, 64)
		spans = append(spans, s)
	}
	return spans, nil
}

func splitTypes(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
