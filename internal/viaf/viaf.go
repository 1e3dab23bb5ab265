// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package viaf is a client for the Virtual International Authority File.
package viaf

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/pdiddy/namedropper/internal/httputil"
	"github.com/pdiddy/namedropper/internal/xref"
)

// viafBase is the VIAF service root. Declared as a var so tests can
// substitute an httptest server.
var viafBase = "https://viaf.org/viaf"

// uriPrefix is the form of VIAF URIs recorded in documents.
const uriPrefix = "http://viaf.org/viaf/"

const (
	defaultMaxRecords    = 100
	defaultMaxCandidates = 5
)

// Client queries VIAF.
type Client struct {
	HTTP *http.Client

	// MaxCandidates caps how many search results MatchPerson checks for
	// an equivalence link (default 5).
	MaxCandidates int
}

// Suggestion is one AutoSuggest result.
type Suggestion struct {
	Term        string `json:"term"`
	DisplayForm string `json:"displayForm"`
	NameType    string `json:"nametype"`
	VIAFID      string `json:"viafid"`
}

// Record is one search result.
type Record struct {
	Title string `json:"title" yaml:"title"`
	URI   string `json:"uri" yaml:"uri"`
	ID    string `json:"id" yaml:"id"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func (c *Client) get(ctx context.Context, reqURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient(), req, 0)
	if err != nil {
		return nil, fmt.Errorf("VIAF request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("VIAF returned HTTP %d", resp.StatusCode)
	}
	return resp, nil
}

// AutoSuggest queries the VIAF autosuggest service.
func (c *Client) AutoSuggest(ctx context.Context, term string) ([]Suggestion, error) {
	resp, err := c.get(ctx, viafBase+"/AutoSuggest?"+url.Values{"query": {term}}.Encode(), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Result []Suggestion `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing VIAF autosuggest response: %w", err)
	}
	return body.Result, nil
}

type rssFeed struct {
	Items []rssItem `xml:"channel>item"`
}

type rssItem struct {
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

// Search runs a CQL query (e.g. `local.personalNames all "Heaney"`) and
// returns up to 100 records ordered by holdings count.
func (c *Client) Search(ctx context.Context, cql string) ([]Record, error) {
	params := url.Values{
		"query":          {cql},
		"httpAccept":     {"application/rss+xml"},
		"maximumRecords": {fmt.Sprintf("%d", defaultMaxRecords)},
		"sortKeys":       {"holdingscount"},
	}
	resp, err := c.get(ctx, viafBase+"/search?"+params.Encode(), "application/rss+xml")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing VIAF search response: %w", err)
	}

	records := make([]Record, 0, len(feed.Items))
	for _, it := range feed.Items {
		link := strings.TrimSpace(it.Link)
		id := recordID(link)
		if id == "" {
			continue
		}
		records = append(records, Record{
			Title: strings.TrimSpace(it.Title),
			URI:   uriPrefix + id,
			ID:    id,
		})
	}
	return records, nil
}

// recordID extracts the numeric id from a VIAF record link.
func recordID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "viaf" {
		return ""
	}
	return parts[1]
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func (c *Client) find(ctx context.Context, index, name string) ([]Record, error) {
	return c.Search(ctx, index+" all "+quote(name))
}

// FindPerson searches personal names.
func (c *Client) FindPerson(ctx context.Context, name string) ([]Record, error) {
	return c.find(ctx, "local.personalNames", name)
}

// FindCorporate searches corporate names.
func (c *Client) FindCorporate(ctx context.Context, name string) ([]Record, error) {
	return c.find(ctx, "local.corporateNames", name)
}

// FindPlace searches geographic names.
func (c *Client) FindPlace(ctx context.Context, name string) ([]Record, error) {
	return c.find(ctx, "local.geographicNames", name)
}

// SameAs reports whether the RDF description of the VIAF record id links
// to target through owl:sameAs or schema:sameAs.
func (c *Client) SameAs(ctx context.Context, id, target string) (bool, error) {
	resp, err := c.get(ctx, viafBase+"/"+url.PathEscape(id)+"/rdf.xml", "application/rdf+xml")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	doc, err := xmlquery.Parse(resp.Body)
	if err != nil {
		return false, fmt.Errorf("parsing VIAF record %s: %w", id, err)
	}
	links, err := xmlquery.QueryAll(doc, `//*[local-name()='sameAs']`)
	if err != nil {
		return false, err
	}
	want := strings.TrimPrefix(strings.TrimPrefix(target, "http://"), "https://")
	for _, l := range links {
		for _, a := range l.Attr {
			if a.Name.Local != "resource" {
				continue
			}
			got := strings.TrimPrefix(strings.TrimPrefix(a.Value, "http://"), "https://")
			if got == want {
				return true, nil
			}
		}
	}
	return false, nil
}

// MatchPerson searches personal names for name and returns the first
// candidate whose record declares itself the same as sameAs.
func (c *Client) MatchPerson(ctx context.Context, name, sameAs string) (xref.Ref, bool, error) {
	records, err := c.FindPerson(ctx, name)
	if err != nil {
		return xref.Ref{}, false, err
	}
	limit := c.MaxCandidates
	if limit <= 0 {
		limit = defaultMaxCandidates
	}
	for i, rec := range records {
		if i >= limit {
			break
		}
		ok, err := c.SameAs(ctx, rec.ID, sameAs)
		if err != nil {
			return xref.Ref{}, false, err
		}
		if ok {
			return xref.Ref{ID: rec.ID, URI: rec.URI}, true, nil
		}
	}
	return xref.Ref{}, false, nil
}
