// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xmldoc

import (
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/pdiddy/namedropper/internal/normalize"
)

// Default annotation roots. Element names are matched by local name so
// namespaced and un-namespaced documents behave alike.
const (
	teiRoots = `//*[local-name()='text']//*[local-name()='p']`
	eadRoots = `//*[local-name()='bioghist' or local-name()='scopecontent']/*[local-name()='p']` +
		` | //*[local-name()='dsc']//*[local-name()='did']/*[local-name()='unittitle']`
)

// DefaultRoots returns the default annotation root expression for t.
func DefaultRoots(t Type) string {
	switch t {
	case TEI:
		return teiRoots
	case EAD:
		return eadRoots
	}
	return ""
}

// Select evaluates expr against doc and returns the matching elements in
// document order. The expression is compiled up front so syntax errors are
// reported instead of silently matching nothing.
func Select(doc *xmlquery.Node, expr string) ([]*xmlquery.Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling xpath %q: %w", expr, err)
	}
	var out []*xmlquery.Node
	for _, n := range xmlquery.QuerySelectorAll(doc, compiled) {
		if n.Type == xmlquery.ElementNode {
			out = append(out, n)
		}
	}
	return out, nil
}

// Section is a labelled group of texts, used when listing names.
type Section struct {
	Label string   `json:"label" yaml:"label"`
	Texts []string `json:"texts" yaml:"texts"`
}

func first(n *xmlquery.Node, expr string) *xmlquery.Node {
	return xmlquery.FindOne(n, expr)
}

func textOf(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return normalize.Space(n.InnerText())
}

func textsOf(nodes []*xmlquery.Node) []string {
	var out []string
	for _, n := range nodes {
		if t := textOf(n); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func label(n *xmlquery.Node, fallback string) string {
	if l := textOf(first(n, `*[local-name()='head']`)); l != "" {
		return l
	}
	return fallback
}

// EADSections splits a finding aid into the biographical note, then one
// section per series or subseries scope note, and the item titles of each
// leaf series. A finding aid without series yields a single container list.
func EADSections(doc *xmlquery.Node) []Section {
	var out []Section
	if bio := first(doc, `//*[local-name()='archdesc']/*[local-name()='bioghist']`); bio != nil {
		out = append(out, Section{
			Label: label(bio, "Biographical note"),
			Texts: textsOf(xmlquery.Find(bio, `*[local-name()='p']`)),
		})
	}

	dsc := first(doc, `//*[local-name()='dsc']`)
	if dsc == nil {
		return out
	}
	top := xmlquery.Find(dsc, `*[local-name()='c' or local-name()='c01']`)
	hasSeries := false
	for _, c := range top {
		if len(components(c)) > 0 {
			hasSeries = true
			break
		}
	}
	if !hasSeries {
		var titles []*xmlquery.Node
		for _, c := range top {
			titles = append(titles, first(c, `*[local-name()='did']/*[local-name()='unittitle']`))
		}
		return append(out, Section{Label: "Container List", Texts: textsOf(titles)})
	}
	for _, c := range top {
		out = append(out, componentSections(c)...)
	}
	return out
}

// components returns the child components of c (c, c01..c12).
func components(c *xmlquery.Node) []*xmlquery.Node {
	return xmlquery.Find(c, `*[local-name()='c' or starts-with(local-name(), 'c0') or starts-with(local-name(), 'c1')]`)
}

func componentSections(c *xmlquery.Node) []Section {
	title := textOf(first(c, `*[local-name()='did']/*[local-name()='unittitle']`))
	var out []Section
	if scope := first(c, `*[local-name()='scopecontent']`); scope != nil {
		out = append(out, Section{
			Label: title + " : " + label(scope, "Scope and Content"),
			Texts: textsOf(xmlquery.Find(scope, `*[local-name()='p']`)),
		})
	}
	children := components(c)
	hasSub := false
	for _, sub := range children {
		if len(components(sub)) > 0 {
			hasSub = true
			break
		}
	}
	if hasSub {
		for _, sub := range children {
			out = append(out, componentSections(sub)...)
		}
		return out
	}
	var titles []*xmlquery.Node
	for _, item := range children {
		titles = append(titles, first(item, `*[local-name()='did']/*[local-name()='unittitle']`))
	}
	if len(titles) > 0 {
		out = append(out, Section{Label: title + ": item descriptions", Texts: textsOf(titles)})
	}
	return out
}

// TEISections returns one section per top level division of the text
// body, or a single section of all body paragraphs when there are none.
func TEISections(doc *xmlquery.Node) []Section {
	divs := xmlquery.Find(doc, `//*[local-name()='body']/*[local-name()='div']`)
	if len(divs) == 0 {
		return []Section{{Label: "Text", Texts: textsOf(xmlquery.Find(doc, teiRoots))}}
	}
	out := make([]Section, 0, len(divs))
	for i, d := range divs {
		out = append(out, Section{
			Label: label(d, fmt.Sprintf("Division %d", i+1)),
			Texts: textsOf(xmlquery.Find(d, `.//*[local-name()='p']`)),
		})
	}
	return out
}

// XPathSections returns one section per element matched by expr, labelled
// by position.
func XPathSections(doc *xmlquery.Node, expr string) ([]Section, error) {
	nodes, err := Select(doc, expr)
	if err != nil {
		return nil, err
	}
	out := make([]Section, 0, len(nodes))
	for i, n := range nodes {
		out = append(out, Section{Label: fmt.Sprintf("%s %d", n.Data, i+1), Texts: textsOf([]*xmlquery.Node{n})})
	}
	return out, nil
}
