// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xmldoc

import (
	"encoding/xml"

	"github.com/antchfx/xmlquery"
)

// InsertBefore links n into the tree as the sibling immediately before ref.
func InsertBefore(ref, n *xmlquery.Node) {
	n.Parent = ref.Parent
	n.PrevSibling = ref.PrevSibling
	n.NextSibling = ref
	if ref.PrevSibling != nil {
		ref.PrevSibling.NextSibling = n
	} else if ref.Parent != nil {
		ref.Parent.FirstChild = n
	}
	ref.PrevSibling = n
}

// InsertAfter links n into the tree as the sibling immediately after ref.
func InsertAfter(ref, n *xmlquery.Node) {
	xmlquery.AddImmediateSibling(ref, n)
}

// NewProcInst returns a processing instruction node.
func NewProcInst(target, inst string) *xmlquery.Node {
	return &xmlquery.Node{
		Type:     xmlquery.ProcessingInstruction,
		Data:     target,
		ProcInst: &xmlquery.ProcInstData{Target: target, Inst: inst},
	}
}

// Namespace returns the namespace new elements under n belong to: that of
// the nearest element at or above n that has one. owner is that element,
// or nil when no ancestor is namespaced.
func Namespace(n *xmlquery.Node) (uri, prefix string, owner *xmlquery.Node) {
	for p := n; p != nil; p = p.Parent {
		if p.Type == xmlquery.ElementNode && p.NamespaceURI != "" {
			return p.NamespaceURI, p.Prefix, p
		}
	}
	return "", "", nil
}

// NewElement returns an element named local for insertion under parent,
// in the namespace reported by Namespace and with the owner's prefix. A
// default namespace declared above an un-namespaced parent is redeclared
// on the new element.
func NewElement(parent *xmlquery.Node, local string) *xmlquery.Node {
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: local}
	uri, prefix, owner := Namespace(parent)
	if owner == nil {
		return n
	}
	n.NamespaceURI, n.Prefix = uri, prefix
	if owner != parent && prefix == "" {
		n.Attr = append(n.Attr, xmlquery.Attr{Name: xml.Name{Local: "xmlns"}, Value: uri})
	}
	return n
}

// NewTextLike returns a text node of the same kind (text or CDATA) as like.
func NewTextLike(like *xmlquery.Node, data string) *xmlquery.Node {
	return &xmlquery.Node{Type: like.Type, Data: data}
}

// Attr returns the value of the unprefixed attribute name on n.
func Attr(n *xmlquery.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr adds or replaces the unprefixed attribute name on n.
func SetAttr(n *xmlquery.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, xmlquery.Attr{Name: xml.Name{Local: name}, Value: value})
}
