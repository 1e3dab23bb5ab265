// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xmldoc loads, inspects and edits the XML documents namedropper
// annotates. Documents are antchfx/xmlquery node trees; mixed content is a
// run of text and element siblings.
package xmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/pdiddy/namedropper/internal/normalize"
)

// Type is the kind of input document.
type Type string

const (
	TEI     Type = "tei"
	EAD     Type = "ead"
	Text    Type = "text"
	Unknown Type = ""
)

// ErrUnknownType is returned for XML whose root is neither TEI nor EAD.
var ErrUnknownType = errors.New("unrecognized document type")

// ParseType converts a user supplied type name.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "tei":
		return TEI, nil
	case "ead":
		return EAD, nil
	case "text", "txt":
		return Text, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Parse reads an XML document.
func Parse(r io.Reader) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return doc, nil
}

// Detect guesses the type of data from its root element, ignoring
// namespaces. Data that does not parse as XML is text; XML with another
// root is Unknown.
func Detect(data []byte) Type {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return Text
	}
	root := RootElement(doc)
	if root == nil {
		return Text
	}
	switch {
	case strings.HasSuffix(root.Data, "TEI"):
		return TEI
	case strings.HasSuffix(root.Data, "ead"):
		return EAD
	}
	return Unknown
}

// RootElement returns the document element of doc.
func RootElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// DocumentNode walks up from n to the document node, or the topmost
// ancestor when n is detached.
func DocumentNode(n *xmlquery.Node) *xmlquery.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// TextNodes returns the text and CDATA descendants of root in document order.
func TextNodes(root *xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.TextNode, xmlquery.CharDataNode:
				out = append(out, c)
			case xmlquery.ElementNode:
				walk(c)
			}
		}
	}
	walk(root)
	return out
}

// NormalizedText flattens root to the normalized text the recognizer is
// sent. Offsets into this string are what the annotator reconciles.
func NormalizedText(root *xmlquery.Node) string {
	nodes := TextNodes(root)
	var b strings.Builder
	for i, n := range nodes {
		var next string
		if i+1 < len(nodes) {
			next = nodes[i+1].Data
		}
		b.WriteString(normalize.Whitespace(n.Data, next, b.String()))
	}
	return b.String()
}

// Write serializes doc without altering whitespace.
func Write(w io.Writer, doc *xmlquery.Node) error {
	return doc.WriteWithOptions(w, xmlquery.WithPreserveSpace())
}
