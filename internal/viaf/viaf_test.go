// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viaf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heaneyRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>VIAF search</title>
    <item>
      <title>Heaney, Seamus, 1939-2013</title>
      <link>http://viaf.org/viaf/109557338</link>
    </item>
    <item>
      <title>Heaney, Seamus</title>
      <link>http://viaf.org/viaf/88888888/</link>
    </item>
    <item>
      <title>broken</title>
      <link>http://example.org/other</link>
    </item>
  </channel>
</rss>`

const heaneyRDF = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:schema="http://schema.org/"
         xmlns:owl="http://www.w3.org/2002/07/owl#">
  <rdf:Description rdf:about="http://viaf.org/viaf/109557338">
    <schema:sameAs rdf:resource="http://id.loc.gov/authorities/names/n79061267"/>
    <schema:sameAs rdf:resource="http://dbpedia.org/resource/Seamus_Heaney"/>
  </rdf:Description>
</rdf:RDF>`

const otherRDF = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:owl="http://www.w3.org/2002/07/owl#">
  <rdf:Description rdf:about="http://viaf.org/viaf/88888888">
    <owl:sameAs rdf:resource="http://dbpedia.org/resource/Someone_Else"/>
  </rdf:Description>
</rdf:RDF>`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	old := viafBase
	viafBase = ts.URL + "/viaf"
	t.Cleanup(func() { viafBase = old })
	return &Client{HTTP: ts.Client()}
}

func TestSearch(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/viaf/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, `local.personalNames all "Seamus Heaney"`, q.Get("query"))
		assert.Equal(t, "application/rss+xml", q.Get("httpAccept"))
		assert.Equal(t, "100", q.Get("maximumRecords"))
		assert.Equal(t, "holdingscount", q.Get("sortKeys"))
		w.Write([]byte(heaneyRSS))
	})

	records, err := c.FindPerson(context.Background(), "Seamus Heaney")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Record{Title: "Heaney, Seamus, 1939-2013", URI: "http://viaf.org/viaf/109557338", ID: "109557338"}, records[0])
	assert.Equal(t, "88888888", records[1].ID)
}

func TestFindIndexes(t *testing.T) {
	var got []string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Query().Get("query"))
		w.Write([]byte(`<rss><channel></channel></rss>`))
	})
	ctx := context.Background()

	_, err := c.FindCorporate(ctx, "Emory University")
	require.NoError(t, err)
	_, err = c.FindPlace(ctx, `The "Old" Town`)
	require.NoError(t, err)

	assert.Equal(t, []string{
		`local.corporateNames all "Emory University"`,
		`local.geographicNames all "The \"Old\" Town"`,
	}, got)
}

func TestAutoSuggest(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/viaf/AutoSuggest", r.URL.Path)
		assert.Equal(t, "austen", r.URL.Query().Get("query"))
		w.Write([]byte(`{"query":"austen","result":[
			{"term":"austen, jane, 1775-1817","displayForm":"Austen, Jane, 1775-1817","nametype":"personal","viafid":"102333412"}
		]}`))
	})

	got, err := c.AutoSuggest(context.Background(), "austen")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "102333412", got[0].VIAFID)
	assert.Equal(t, "personal", got[0].NameType)
}

func TestAutoSuggest_NoResults(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":"zzzz","result":null}`))
	})
	got, err := c.AutoSuggest(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatchPerson(t *testing.T) {
	var rdfCalls int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/viaf/search":
			w.Write([]byte(heaneyRSS))
		case "/viaf/109557338/rdf.xml":
			atomic.AddInt32(&rdfCalls, 1)
			w.Write([]byte(heaneyRDF))
		case "/viaf/88888888/rdf.xml":
			atomic.AddInt32(&rdfCalls, 1)
			w.Write([]byte(otherRDF))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ref, ok, err := c.MatchPerson(context.Background(), "Seamus Heaney", "http://dbpedia.org/resource/Seamus_Heaney")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "109557338", ref.ID)
	assert.Equal(t, "http://viaf.org/viaf/109557338", ref.URI)
	assert.Equal(t, int32(1), atomic.LoadInt32(&rdfCalls))
}

func TestMatchPerson_NoEquivalentRecord(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/viaf/search":
			w.Write([]byte(heaneyRSS))
		default:
			w.Write([]byte(otherRDF))
		}
	})

	_, ok, err := c.MatchPerson(context.Background(), "Seamus Heaney", "https://dbpedia.org/resource/Nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchPerson_CandidateLimit(t *testing.T) {
	var rdfCalls int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/viaf/search" {
			w.Write([]byte(heaneyRSS))
			return
		}
		atomic.AddInt32(&rdfCalls, 1)
		w.Write([]byte(otherRDF))
	})
	c.MaxCandidates = 1

	_, ok, err := c.MatchPerson(context.Background(), "Seamus Heaney", "http://dbpedia.org/resource/Seamus_Heaney")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&rdfCalls))
}

func TestSearch_HTTPError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.FindPerson(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}
