// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize reproduces XPath normalize-space one text fragment at a
// time and measures text in the units the recognizer reports offsets in.
//
// Recognizer offsets count UTF-16 code units. For text inside the Basic
// Multilingual Plane this is the same as counting runes.
package normalize

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Whitespace normalizes one fragment of a larger text. Runs of whitespace
// collapse to a single space. Trailing whitespace is dropped when next is
// empty or starts with whitespace; leading whitespace is dropped when prev
// is empty or ends with whitespace. next is the raw text of the following
// fragment and prev is the normalized text accumulated so far.
func Whitespace(text, next, prev string) string {
	return Map(text, next, prev).Text
}

// Space is normalize-space applied to a whole string.
func Space(s string) string {
	return Whitespace(s, "", "")
}

// Mapped is a normalized fragment together with the position in the raw
// fragment where each normalized code unit came from.
type Mapped struct {
	Text string

	// raw[i] is the byte index in the raw fragment of normalized UTF-16
	// unit i. The extra final entry marks the end of the normalized text.
	raw []int
}

// Map normalizes text exactly like Whitespace and records the offset
// mapping back to the raw text.
func Map(text, next, prev string) Mapped {
	stripLeft := prev == "" || isSpace(prev[len(prev)-1])
	stripRight := next == "" || isSpace(next[0])

	var b strings.Builder
	b.Grow(len(text))
	raw := make([]int, 0, len(text)+1)

	i := 0
	if stripLeft {
		for i < len(text) && isSpace(text[i]) {
			i++
		}
	}
	for i < len(text) {
		if isSpace(text[i]) {
			start := i
			for i < len(text) && isSpace(text[i]) {
				i++
			}
			if i == len(text) && stripRight {
				// trailing run; the end of the text maps to its start
				raw = append(raw, start)
				return Mapped{Text: b.String(), raw: raw}
			}
			b.WriteByte(' ')
			raw = append(raw, start)
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		for range utf16.RuneLen(r) {
			raw = append(raw, i)
		}
		i += size
	}
	raw = append(raw, len(text))
	return Mapped{Text: b.String(), raw: raw}
}

// Len returns the length of the normalized text in UTF-16 code units.
func (m Mapped) Len() int {
	return len(m.raw) - 1
}

// RawOffset returns the byte index in the raw fragment that corresponds to
// normalized offset n. Offsets outside the text are clamped.
func (m Mapped) RawOffset(n int) int {
	if n < 0 {
		n = 0
	}
	if n >= len(m.raw) {
		n = len(m.raw) - 1
	}
	return m.raw[n]
}

// Len returns the length of s in UTF-16 code units.
func Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Slice returns s[start:end] where both bounds count UTF-16 code units.
// Bounds are clamped to the string; a bound that falls inside a surrogate
// pair moves to the start of that character.
func Slice(s string, start, end int) string {
	if end < start {
		end = start
	}
	return s[byteOffset(s, start):byteOffset(s, end)]
}

func byteOffset(s string, units int) int {
	if units <= 0 {
		return 0
	}
	n := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		w := utf16.RuneLen(r)
		if n+w > units {
			return i
		}
		n += w
		i += size
		if n == units {
			return i
		}
	}
	return len(s)
}
