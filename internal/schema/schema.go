// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema checks inserted elements against a content model: a YAML
// file that lists, per element local name, the child elements it may
// contain.
//
//	p: [persname, corpname, geogname, name, emph, title]
//	unittitle: [persname, corpname, geogname, unitdate]
//
// Elements missing from the model allow any children. Processing
// instructions, comments and text are always allowed.
package schema

import (
	"fmt"
	"os"
	"slices"

	"github.com/antchfx/xmlquery"
	"go.yaml.in/yaml/v3"
)

// Model maps a parent element local name to its allowed child local names.
type Model map[string][]string

// Violation reports a child element the model does not allow.
type Violation struct {
	Element string
	Parent  string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("element %q not allowed in %q", v.Element, v.Parent)
}

// Parse reads a model from YAML.
func Parse(data []byte) (Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing content model: %w", err)
	}
	return m, nil
}

// Load reads a model from a YAML file.
func Load(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content model: %w", err)
	}
	return Parse(data)
}

// Allows reports whether child may appear inside parent.
func (m Model) Allows(parent, child string) bool {
	allowed, ok := m[parent]
	if !ok {
		return true
	}
	return slices.Contains(allowed, child)
}

// Check validates elem in place: elem must be allowed in its parent and
// every element child of elem must be allowed in elem. A nil model accepts
// everything.
func (m Model) Check(elem *xmlquery.Node) error {
	if m == nil || elem == nil {
		return nil
	}
	if p := elem.Parent; p != nil && p.Type == xmlquery.ElementNode && !m.Allows(p.Data, elem.Data) {
		return &Violation{Element: elem.Data, Parent: p.Data}
	}
	for c := elem.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && !m.Allows(elem.Data, c.Data) {
			return &Violation{Element: c.Data, Parent: elem.Data}
		}
	}
	return nil
}
