// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"context"

	"github.com/antchfx/xmlquery"

	"github.com/pdiddy/namedropper/internal/normalize"
	"github.com/pdiddy/namedropper/internal/policy"
	"github.com/pdiddy/namedropper/internal/trackchanges"
	"github.com/pdiddy/namedropper/internal/xmldoc"
	"github.com/pdiddy/namedropper/pkg/types"
)

// run is the state of one Annotate call.
type run struct {
	*Annotator
	ctx    context.Context
	root   *xmlquery.Node
	marker *trackchanges.Marker

	// queue holds the text nodes still to be visited, in document order.
	queue []*xmlquery.Node

	// offset is where the head of queue starts in the normalized text, and
	// prev is the normalized text before it.
	offset int
	prev   string

	inserted int
	enabled  bool
}

func newRun(ctx context.Context, a *Annotator, root *xmlquery.Node) *run {
	return &run{Annotator: a, ctx: ctx, root: root, queue: xmldoc.TextNodes(root)}
}

// fragment is a text node together with its place in the normalized text.
type fragment struct {
	node       *xmlquery.Node
	m          normalize.Mapped
	start, end int
}

func (r *run) pop() fragment {
	n := r.queue[0]
	r.queue = r.queue[1:]
	var next string
	if len(r.queue) > 0 {
		next = r.queue[0].Data
	}
	m := normalize.Map(n.Data, next, r.prev)
	return fragment{node: n, m: m, start: r.offset, end: r.offset + m.Len()}
}

func (r *run) push(n *xmlquery.Node) {
	r.queue = append([]*xmlquery.Node{n}, r.queue...)
}

// advance moves past the whole fragment.
func (r *run) advance(f fragment) {
	r.prev += f.m.Text
	r.offset = f.end
}

func (r *run) walk(spans []types.RecognizedSpan) int {
	var (
		cur     types.RecognizedSpan
		current bool
	)
	for {
		if !current {
			if len(spans) == 0 {
				break
			}
			cur, spans, current = spans[0], spans[1:], true
		}
		if len(r.queue) == 0 {
			break
		}
		f := r.pop()
		start, end := cur.Offset, cur.EndOffset()
		switch {
		case start < f.start:
			r.log.Warn("span overlaps text already passed, skipping",
				"surface", cur.SurfaceForm, "offset", start, "position", f.start)
			current = false
			r.push(f.node)
		case start >= f.end:
			r.advance(f)
		case end > f.end:
			r.log.Warn("span crosses an element boundary, skipping",
				"surface", cur.SurfaceForm, "offset", start, "text", f.m.Text)
			current = false
			r.advance(f)
		default:
			if !r.apply(f, cur) {
				r.push(f.node)
			}
			current = false
		}
	}
	left := len(spans)
	if current {
		left++
	}
	if left > 0 {
		r.log.Warn("spans left unmatched at end of text", "count", left)
	}
	return r.inserted
}

// apply places a span that lies inside f. It reports whether the fragment
// was consumed; otherwise the caller puts it back unchanged.
func (r *run) apply(f fragment, s types.RecognizedSpan) bool {
	rel := s.Offset - f.start
	n := normalize.Len(s.SurfaceForm)
	if got := normalize.Slice(f.m.Text, rel, rel+n); got != s.SurfaceForm {
		r.log.Warn("span text does not match document, skipping",
			"surface", s.SurfaceForm, "offset", s.Offset, "text", got)
		return false
	}

	ent := r.resolve(s)
	el, ok := r.vocab.Element(r.ctx, ent)
	if !ok {
		r.log.Warn("no markup for entity, skipping",
			"surface", s.SurfaceForm, "uri", s.URI, "classification", ent.Classification(r.ctx))
		return false
	}

	if rel == 0 && n == f.m.Len() {
		if owner := f.node.Parent; r.tagged(owner, f.node, el.Tag) {
			r.merge(owner, el)
			return false
		}
	}
	return r.insert(f, s, rel, n, el, ent)
}

// tagged reports whether owner is already an el.Tag element wrapping just
// the text node n, in the namespace a new element would get.
func (r *run) tagged(owner, n *xmlquery.Node, tag string) bool {
	if owner == nil || owner.Type != xmlquery.ElementNode || owner.Data != tag {
		return false
	}
	texts := xmldoc.TextNodes(owner)
	if len(texts) != 1 || texts[0] != n {
		return false
	}
	// a prefix that did not resolve is ambiguous
	if owner.Prefix != "" && owner.NamespaceURI == "" {
		return false
	}
	uri, _, _ := xmldoc.Namespace(owner.Parent)
	return owner.NamespaceURI == uri
}

// merge sets the proposed attributes owner lacks. Existing values are
// never replaced.
func (r *run) merge(owner *xmlquery.Node, el policy.Element) {
	var added, kept []policy.Attr
	proposed := map[string]string{}
	for _, a := range el.Attrs {
		v, ok := xmldoc.Attr(owner, a.Name)
		if !ok {
			xmldoc.SetAttr(owner, a.Name, a.Value)
			added = append(added, a)
			continue
		}
		if v != a.Value {
			r.log.Warn("keeping existing attribute value",
				"tag", owner.Data, "attribute", a.Name, "existing", v, "proposed", a.Value)
			kept = append(kept, policy.Attr{Name: a.Name, Value: v})
			proposed[a.Name] = a.Value
		}
	}
	if len(added) > 0 {
		r.log.Debug("added attributes to existing element", "tag", owner.Data, "count", len(added))
	}
	if r.marker != nil && len(added)+len(kept) > 0 {
		r.marker.MarkAttributeMerge(owner, added, kept, proposed)
		r.enableTracking()
	}
}

// insert splits f around the span and wraps the span in a new element.
func (r *run) insert(f fragment, s types.RecognizedSpan, rel, n int, el policy.Element, ent Entity) bool {
	node := f.node
	raw := node.Data
	lo, hi := f.m.RawOffset(rel), f.m.RawOffset(rel+n)
	before, after := raw[:lo], raw[hi:]

	t := begin(node)

	elem := xmldoc.NewElement(node.Parent, el.Tag)
	for _, a := range el.Attrs {
		xmldoc.SetAttr(elem, a.Name, a.Value)
	}
	xmlquery.AddChild(elem, &xmlquery.Node{Type: xmlquery.TextNode, Data: s.SurfaceForm})
	xmldoc.InsertAfter(node, elem)

	var tail *xmlquery.Node
	if after != "" {
		tail = xmldoc.NewTextLike(node, after)
		xmldoc.InsertAfter(elem, tail)
	}
	if before == "" {
		xmlquery.RemoveFromTree(node)
	} else {
		node.Data = before
	}

	if r.marker != nil {
		r.marker.MarkInsertion(r.ctx, elem, raw[lo:hi], ent)
	}

	if r.schema != nil {
		if err := r.schema.Check(elem); err != nil {
			t.rollback()
			parent := ""
			if node.Parent != nil {
				parent = node.Parent.Data
			}
			r.log.Warn("insertion violates content model, skipping",
				"surface", s.SurfaceForm, "element", el.Tag, "parent", parent, "err", err)
			return false
		}
	}
	if r.marker != nil {
		r.enableTracking()
	}

	r.inserted++
	r.log.Debug("inserted element", "tag", el.Tag, "surface", s.SurfaceForm, "uri", s.URI, "offset", s.Offset)

	r.prev += normalize.Slice(f.m.Text, 0, rel) + s.SurfaceForm
	r.offset = s.Offset + n
	if tail != nil {
		r.push(tail)
	}
	return true
}

func (r *run) enableTracking() {
	if !r.enabled {
		trackchanges.EnableOxygen(r.root)
		r.enabled = true
	}
}
