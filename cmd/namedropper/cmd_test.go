// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/namedropper/internal/dbpedia"
	"github.com/pdiddy/namedropper/internal/spotlight"
	"github.com/pdiddy/namedropper/internal/xmldoc"
	"github.com/pdiddy/namedropper/internal/xref"
	"github.com/pdiddy/namedropper/pkg/types"
)

const findingAid = `<?xml version="1.0" encoding="UTF-8"?>
<ead>
  <archdesc level="collection">
    <bioghist>
      <p>Some text about Cambridge and London.</p>
    </bioghist>
  </archdesc>
</ead>
`

// spotlightServer answers every annotate call with the Cambridge and
// London entities found in the request text.
func spotlightServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		text := r.URL.Query().Get("text")
		type res struct {
			URI     string `json:"@URI"`
			Surface string `json:"@surfaceForm"`
			Offset  string `json:"@offset"`
			Types   string `json:"@types"`
		}
		var found []res
		if i := strings.Index(text, "Cambridge"); i >= 0 {
			found = append(found, res{"http://dbpedia.org/resource/University_of_Cambridge", "Cambridge", strconv.Itoa(i), "DBpedia:Organisation"})
		}
		if i := strings.Index(text, "London"); i >= 0 {
			found = append(found, res{"http://dbpedia.org/resource/London", "London", strconv.Itoa(i), "DBpedia:Place"})
		}
		json.NewEncoder(w).Encode(map[string]any{"@text": text, "Resources": found})
	}))
	t.Cleanup(ts.Close)
	return ts
}

// offline fails every request, so enrichment degrades without touching
// the network.
type offline struct{}

func (offline) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("offline")
}

func testServices(t *testing.T, ts *httptest.Server) *services {
	t.Helper()
	return &services{
		http:      ts.Client(),
		spotlight: spotlight.NewClient(types.SpotlightConfig{BaseURL: ts.URL}, ts.Client()),
		dbpedia:   dbpedia.NewClient(dbpedia.WithHTTPClient(&http.Client{Transport: offline{}}), dbpedia.WithXrefCache(xref.NewCache(nil))),
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnnotateFile_EAD(t *testing.T) {
	svc := testServices(t, spotlightServer(t))
	path := writeFile(t, "heaney.xml", findingAid)

	res, err := annotateFile(context.Background(), svc, types.AnnotationConfig{}, nil, xmldoc.Unknown, "", path)
	require.NoError(t, err)
	assert.Equal(t, xmldoc.EAD, res.typ)
	assert.Equal(t, 1, res.roots)
	assert.Equal(t, 2, res.inserted)

	out := string(res.out)
	assert.Contains(t, out, `<corpname source="dbpedia" authfilenumber="University_of_Cambridge">Cambridge</corpname>`)
	assert.Contains(t, out, `<geogname source="dbpedia" authfilenumber="London">London</geogname>`)
	assert.Contains(t, out, "<bioghist>\n      <p>")
	assert.Equal(t, 1, svc.spotlight.Stats().Calls)
}

func TestAnnotateFile_TEIVocabularyOverride(t *testing.T) {
	svc := testServices(t, spotlightServer(t))
	path := writeFile(t, "heaney.xml", findingAid)

	cfg := types.AnnotationConfig{Vocabulary: types.VocabularyTEI, TrackChanges: true}
	res, err := annotateFile(context.Background(), svc, cfg, nil, xmldoc.Unknown, "//bioghist/p", path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.inserted)
	out := string(res.out)
	assert.Contains(t, out, `type="org"`)
	assert.Contains(t, out, "oxy_options")
	assert.Contains(t, out, "oxy_insert_start")
}

func TestAnnotateFile_RejectsPlainText(t *testing.T) {
	svc := testServices(t, spotlightServer(t))
	path := writeFile(t, "notes.txt", "Some text about Cambridge and London.")

	_, err := annotateFile(context.Background(), svc, types.AnnotationConfig{}, nil, xmldoc.Unknown, "", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, xmldoc.ErrUnknownType))
}

func TestWriteResult_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := fileResult{path: "/data/heaney.xml", out: []byte("<ead/>")}
	require.NoError(t, writeResult(dir, r))

	got, err := os.ReadFile(filepath.Join(dir, "heaney.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<ead/>", string(got))
}

type stubRecognizer struct {
	calls []string
}

func (s *stubRecognizer) Annotate(_ context.Context, text string) ([]types.RecognizedSpan, error) {
	s.calls = append(s.calls, text)
	var spans []types.RecognizedSpan
	if i := strings.Index(text, "London"); i >= 0 {
		spans = append(spans, types.RecognizedSpan{SurfaceForm: "London", Offset: i, URI: "http://dbpedia.org/resource/London", TypeHints: []string{"DBpedia:Place"}})
	}
	return spans, nil
}

func TestLookupSections_SkipsRepeatedTexts(t *testing.T) {
	r := &stubRecognizer{}
	sections := []xmldoc.Section{
		{Label: "Biographical note", Texts: []string{"Born in London.", "Lived in London, London."}},
		{Label: "Series 1", Texts: []string{"Born in London.", "Nothing here."}},
	}
	got, err := lookupSections(context.Background(), r, sections)
	require.NoError(t, err)
	assert.Equal(t, []string{"Born in London.", "Lived in London, London.", "Nothing here."}, r.calls)

	require.Len(t, got, 2)
	assert.Equal(t, []lookupName{{Surface: "London", URI: "http://dbpedia.org/resource/London", Type: "place"}}, got[0].Names)
	assert.Empty(t, got[1].Names)
}

func TestFormatLookup(t *testing.T) {
	sections := []lookupSection{
		{Label: "Biographical note", Names: []lookupName{{Surface: "London", URI: "http://dbpedia.org/resource/London", Type: "place"}}},
		{Label: "Series 1"},
	}

	var text bytes.Buffer
	require.NoError(t, formatLookup(&text, sections, "text"))
	assert.Contains(t, text.String(), "Biographical note\n  London")
	assert.Contains(t, text.String(), "(no names recognized)")
	assert.Contains(t, text.String(), "1 names in 2 sections")

	var y bytes.Buffer
	require.NoError(t, formatLookup(&y, sections, "yaml"))
	assert.Contains(t, y.String(), "- label: Biographical note\n")
	assert.Contains(t, y.String(), "surface: London\n")
	assert.Contains(t, y.String(), "type: place\n")
}

func TestSectionsFor(t *testing.T) {
	got, err := sectionsFor([]byte("  Some text\n about London. "), xmldoc.Text, "")
	require.NoError(t, err)
	assert.Equal(t, []xmldoc.Section{{Label: "Text", Texts: []string{"Some text about London."}}}, got)

	got, err = sectionsFor([]byte(findingAid), xmldoc.EAD, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Biographical note", got[0].Label)

	_, err = sectionsFor([]byte(`<html/>`), xmldoc.Unknown, "")
	assert.True(t, errors.Is(err, xmldoc.ErrUnknownType))
}

func TestFormatCacheStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatCacheStats(&buf, nil, false))
	assert.Equal(t, "Cache is empty.\n", buf.String())

	buf.Reset()
	stats := []xref.Stats{{Authority: xref.VIAF, Found: 3, Missing: 1}}
	require.NoError(t, formatCacheStats(&buf, stats, false))
	assert.Contains(t, buf.String(), "viaf               3         1")
}
