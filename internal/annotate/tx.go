// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import "github.com/antchfx/xmlquery"

// tx snapshots the one level of the tree an insertion touches: the child
// list of the split text node's parent and the text itself.
type tx struct {
	parent   *xmlquery.Node
	children []*xmlquery.Node
	node     *xmlquery.Node
	data     string
}

func begin(node *xmlquery.Node) *tx {
	t := &tx{parent: node.Parent, node: node, data: node.Data}
	for c := t.parent.FirstChild; c != nil; c = c.NextSibling {
		t.children = append(t.children, c)
	}
	return t
}

// rollback restores the snapshot. Nodes added since begin are dropped.
func (t *tx) rollback() {
	t.node.Data = t.data
	t.parent.FirstChild, t.parent.LastChild = nil, nil
	var prev *xmlquery.Node
	for _, c := range t.children {
		c.Parent = t.parent
		c.PrevSibling = prev
		c.NextSibling = nil
		if prev == nil {
			t.parent.FirstChild = c
		} else {
			prev.NextSibling = c
		}
		prev = c
	}
	t.parent.LastChild = prev
}
