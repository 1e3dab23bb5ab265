// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const model = `
p: [persname, corpname, geogname, emph]
unittitle: [unitdate]
persname: []
`

func TestModel_Allows(t *testing.T) {
	m, err := Parse([]byte(model))
	require.NoError(t, err)

	tests := []struct {
		parent, child string
		want          bool
	}{
		{"p", "persname", true},
		{"p", "name", false},
		{"unittitle", "geogname", false},
		{"persname", "emph", false},
		{"bioghist", "anything", true},
	}
	for _, tt := range tests {
		if got := m.Allows(tt.parent, tt.child); got != tt.want {
			t.Errorf("Allows(%q, %q) = %v, want %v", tt.parent, tt.child, got, tt.want)
		}
	}
}

func TestModel_Check(t *testing.T) {
	m, err := Parse([]byte(model))
	require.NoError(t, err)

	doc, err := xmlquery.Parse(strings.NewReader(`<ead><p><corpname>Cambridge</corpname></p><unittitle><geogname>London</geogname></unittitle></ead>`))
	require.NoError(t, err)

	assert.NoError(t, m.Check(xmlquery.FindOne(doc, "//corpname")))

	err = m.Check(xmlquery.FindOne(doc, "//geogname"))
	var v *Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "geogname", v.Element)
	assert.Equal(t, "unittitle", v.Parent)
}

func TestModel_CheckChildren(t *testing.T) {
	m, err := Parse([]byte(model))
	require.NoError(t, err)

	doc, err := xmlquery.Parse(strings.NewReader(`<p><persname><emph>Jane</emph></persname></p>`))
	require.NoError(t, err)
	assert.Error(t, m.Check(xmlquery.FindOne(doc, "//persname")))
}

func TestModel_NilAcceptsAll(t *testing.T) {
	var m Model
	doc, err := xmlquery.Parse(strings.NewReader(`<p><x/></p>`))
	require.NoError(t, err)
	assert.NoError(t, m.Check(xmlquery.FindOne(doc, "//x")))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(model), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("p: {persname: ["))
	assert.Error(t, err)
}
