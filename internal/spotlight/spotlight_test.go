// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spotlight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/namedropper/pkg/types"
)

const cambridgeResponse = `{
  "@text": "Some text about Cambridge and London.",
  "@confidence": "0.4",
  "@support": "20",
  "@types": "Person,Place,Organisation",
  "@sparql": "",
  "@policy": "whitelist",
  "Resources": [
    {
      "@URI": "http://dbpedia.org/resource/University_of_Cambridge",
      "@support": "14548",
      "@types": "DBpedia:Agent,Schema:Organization,DBpedia:Organisation,Schema:EducationalOrganization,DBpedia:EducationalInstitution,DBpedia:University",
      "@surfaceForm": "Cambridge",
      "@offset": "16",
      "@similarityScore": "0.7431",
      "@percentageOfSecondRank": "0.32"
    },
    {
      "@URI": "http://dbpedia.org/resource/London",
      "@support": "202218",
      "@types": "Schema:Place,DBpedia:Place,DBpedia:PopulatedPlace,Schema:City,DBpedia:Settlement,DBpedia:City",
      "@surfaceForm": "London",
      "@offset": "30",
      "@similarityScore": "0.9999",
      "@percentageOfSecondRank": "0.0001"
    }
  ]
}`

func TestAnnotate_GET(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/annotate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		q := r.URL.Query()
		assert.Equal(t, "Some text about Cambridge and London.", q.Get("text"))
		assert.Equal(t, "0.4", q.Get("confidence"))
		assert.Equal(t, "20", q.Get("support"))
		assert.Equal(t, "Person,Place,Organisation", q.Get("types"))
		w.Write([]byte(cambridgeResponse))
	}))
	defer ts.Close()

	c := NewClient(types.SpotlightConfig{BaseURL: ts.URL + "/rest/"}, ts.Client())
	spans, err := c.Annotate(context.Background(), "Some text about Cambridge and London.")
	require.NoError(t, err)
	require.Len(t, spans, 2)

	assert.Equal(t, "Cambridge", spans[0].SurfaceForm)
	assert.Equal(t, 16, spans[0].Offset)
	assert.Equal(t, 25, spans[0].EndOffset())
	assert.Equal(t, "http://dbpedia.org/resource/University_of_Cambridge", spans[0].URI)
	assert.Contains(t, spans[0].TypeHints, "DBpedia:Organisation")
	assert.Len(t, spans[0].TypeHints, 6)
	assert.Equal(t, 14548, spans[0].Support)
	assert.InDelta(t, 0.7431, spans[0].SimilarityScore, 1e-9)

	assert.Equal(t, "London", spans[1].SurfaceForm)
	assert.Equal(t, 30, spans[1].Offset)

	assert.Equal(t, 1, c.Stats().Calls)
}

func TestAnnotate_POSTForLongText(t *testing.T) {
	long := strings.Repeat("word ", 1200)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, long, r.PostForm.Get("text"))
		assert.Equal(t, "0.7", r.PostForm.Get("confidence"))
		assert.Equal(t, "Person", r.PostForm.Get("types"))
		w.Write([]byte(`{"@text": "...", "Resources": null}`))
	}))
	defer ts.Close()

	c := NewClient(types.SpotlightConfig{BaseURL: ts.URL}, ts.Client())
	spans, err := c.AnnotateWith(context.Background(), long, Options{Confidence: 0.7, Types: "Person"})
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestAnnotate_NoResources(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"@text": "nothing here", "@confidence": "0.4"}`))
	}))
	defer ts.Close()

	c := NewClient(types.SpotlightConfig{BaseURL: ts.URL}, ts.Client())
	spans, err := c.Annotate(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestAnnotate_SingleResourceObject(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Resources": {"@URI": "http://dbpedia.org/resource/London", "@surfaceForm": "London", "@offset": "0", "@types": ""}}`))
	}))
	defer ts.Close()

	c := NewClient(types.SpotlightConfig{BaseURL: ts.URL}, ts.Client())
	spans, err := c.Annotate(context.Background(), "London")
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Nil(t, spans[0].TypeHints)
}

func TestAnnotate_BadOffset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Resources": [{"@URI": "http://dbpedia.org/resource/London", "@surfaceForm": "London", "@offset": "near the end"}]}`))
	}))
	defer ts.Close()

	c := NewClient(types.SpotlightConfig{BaseURL: ts.URL}, ts.Client())
	_, err := c.Annotate(context.Background(), "London")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadResponse))
}

func TestAnnotate_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	c := NewClient(types.SpotlightConfig{BaseURL: ts.URL}, ts.Client())
	_, err := c.Annotate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.Equal(t, 1, c.Stats().Calls)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(types.SpotlightConfig{}, nil)
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, 0.4, c.cfg.Confidence)
	assert.Equal(t, 20, c.cfg.Support)
	assert.Equal(t, 5000, c.cfg.PostThreshold)
	assert.NotNil(t, c.http)
}
