// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trackchanges records annotation edits as Oxygen XML Editor
// change-tracking processing instructions, so a reviewer can accept or
// reject each insertion.
package trackchanges

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/pdiddy/namedropper/internal/policy"
	"github.com/pdiddy/namedropper/internal/xmldoc"
)

// DefaultAuthor is recorded when no author is configured.
const DefaultAuthor = "namedropper"

// TimestampFormat is the Oxygen timestamp layout.
const TimestampFormat = "20060102T150405-0700"

const unavailable = "(label/description unavailable)"

// Described is an entity with a human readable label and description.
// *dbpedia.Resource satisfies it.
type Described interface {
	Label(ctx context.Context) string
	Description(ctx context.Context) string
}

// Marker writes change-tracking instructions. One marker is created per
// annotation run so every edit carries the same timestamp.
type Marker struct {
	author    string
	timestamp string
}

// NewMarker returns a marker for author at time now.
func NewMarker(author string, now time.Time) *Marker {
	if author == "" {
		author = DefaultAuthor
	}
	return &Marker{author: author, timestamp: now.Format(TimestampFormat)}
}

// Timestamp returns the formatted time recorded on every marker.
func (m *Marker) Timestamp() string { return m.timestamp }

// escape makes v safe inside a quoted pseudo-attribute of a processing
// instruction.
func escape(v string) string {
	v = strings.ReplaceAll(v, `"`, "'")
	return strings.ReplaceAll(v, "?>", "? >")
}

func (m *Marker) pi(target string, extra ...string) *xmlquery.Node {
	inst := fmt.Sprintf(`author="%s" timestamp="%s"`, escape(m.author), m.timestamp)
	for i := 0; i+1 < len(extra); i += 2 {
		inst += fmt.Sprintf(` %s="%s"`, extra[i], escape(extra[i+1]))
	}
	return xmldoc.NewProcInst(target, inst)
}

// Comment is the description of d, else its label, else a placeholder.
func Comment(ctx context.Context, d Described) string {
	if d == nil {
		return unavailable
	}
	if s := d.Description(ctx); s != "" {
		return s
	}
	if s := d.Label(ctx); s != "" {
		return s
	}
	return unavailable
}

// MarkInsertion records that replaced was turned into elem. A deletion
// marker and an insert start marker go before elem and an insert end
// marker after it. The end marker is returned.
func (m *Marker) MarkInsertion(ctx context.Context, elem *xmlquery.Node, replaced string, d Described) *xmlquery.Node {
	xmldoc.InsertBefore(elem, m.pi("oxy_delete", "content", replaced))
	xmldoc.InsertBefore(elem, m.pi("oxy_insert_start", "comment", Comment(ctx, d)))
	end := xmldoc.NewProcInst("oxy_insert_end", "")
	xmldoc.InsertAfter(elem, end)
	return end
}

// MarkAttributeMerge wraps elem in a comment listing the attributes that
// were added and the existing values that were kept in place of proposed
// ones. Nothing is written when there is nothing to report. The end
// marker, or elem, is returned.
func (m *Marker) MarkAttributeMerge(elem *xmlquery.Node, added, kept []policy.Attr, proposed map[string]string) *xmlquery.Node {
	var parts []string
	if len(added) > 0 {
		parts = append(parts, fmt.Sprintf("Added %s to existing %s tag: %s",
			plural(len(added)), elem.Data, joinAttrs(added, nil)))
	}
	if len(kept) > 0 {
		parts = append(parts, fmt.Sprintf("Did not replace %s: %s",
			plural(len(kept)), joinAttrs(kept, proposed)))
	}
	if len(parts) == 0 {
		return elem
	}
	xmldoc.InsertBefore(elem, m.pi("oxy_comment_start", "comment", strings.Join(parts, "\n")))
	end := xmldoc.NewProcInst("oxy_comment_end", "")
	xmldoc.InsertAfter(elem, end)
	return end
}

func plural(n int) string {
	if n == 1 {
		return "attribute"
	}
	return "attributes"
}

func joinAttrs(attrs []policy.Attr, proposed map[string]string) string {
	s := make([]string, len(attrs))
	for i, a := range attrs {
		if proposed != nil {
			s[i] = fmt.Sprintf("%s=%s with %s", a.Name, a.Value, proposed[a.Name])
		} else {
			s[i] = a.Name + "=" + a.Value
		}
	}
	return strings.Join(s, ", ")
}

// EnableOxygen turns on change tracking for the document containing n by
// adding an oxy_options instruction ahead of the root element. It does
// nothing if the instruction is already present.
func EnableOxygen(n *xmlquery.Node) {
	doc := xmldoc.DocumentNode(n)
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ProcessingInstruction && c.Data == "oxy_options" {
			return
		}
	}
	pi := xmldoc.NewProcInst("oxy_options", `track_changes="on"`)
	if root := xmldoc.RootElement(doc); root != nil {
		xmldoc.InsertBefore(root, pi)
		return
	}
	xmlquery.AddChild(doc, pi)
}
