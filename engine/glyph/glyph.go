/*
Package glyph holds the finest-grained types the join engine operates on:
Char, Span, and the font-name parsing rules the upstream intermediate XML
encodes.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package glyph

import (
	"math"
	"strings"

	"github.com/npillmayer/extract/core/geom"
)

// WMode is a span's writing mode.
type WMode uint8

const (
	// Horizontal advances along +x in font space.
	Horizontal WMode = 0
	// Vertical advances along +y in font space.
	Vertical WMode = 1
)

// SpaceRune is the Unicode scalar used both for spurious-space detection
// and for synthetic spaces inserted by the line and paragraph assemblers.
const SpaceRune = ' '

// removedSentinel marks a Char that table glyph-routing has moved into a
// cell's own span; it is purged from the donor span in a second pass
// (spec §4.6 step 7).
const removedSentinel rune = -1

// Char is one positioned glyph.
type Char struct {
	// Pre is the glyph's pre-transform position, as reported by the
	// upstream interpreter.
	Pre geom.Point
	// Post is Pre transformed by the owning span's ctm; Post =
	// ctm·Pre. Populated when the char is appended (AppendChar,
	// AppendCharPost).
	Post geom.Point
	// Adv is the advance, in font units.
	Adv float64
	// UCS is the Unicode scalar value. A value of removedSentinel marks a
	// glyph already routed into a table cell, pending purge.
	UCS rune
}

// IsSpace reports whether c is an ordinary space character.
func (c Char) IsSpace() bool { return c.UCS == SpaceRune }

// removed reports whether c has been routed elsewhere and is pending purge.
func (c Char) removed() bool { return c.UCS == removedSentinel }

// Span is a contiguous glyph run sharing one rendering state. A span must
// never be empty; emptying one (e.g. during table routing) means removing
// it from its owner.
type Span struct {
	CTM, TRM geom.Matrix
	// FontName is the font's PostScript name with any subset tag
	// ("ABCDEF+") already stripped.
	FontName string
	Bold     bool
	Italic   bool
	WMode    WMode
	Chars    []Char
}

// NewSpan builds a Span from a raw font name (as read off the wire,
// subset-tag and style suffixes intact) and an already-decoded ctm/trm/wmode.
// The raw name is parsed per spec §6: a '+' marks a subset prefix, and the
// presence of "-Bold"/"-Oblique" substrings sets the Bold/Italic flags.
func NewSpan(ctm, trm geom.Matrix, rawFontName string, wmode WMode) *Span {
	name, bold, italic := parseFontName(rawFontName)
	return &Span{
		CTM:      ctm,
		TRM:      trm,
		FontName: name,
		Bold:     bold,
		Italic:   italic,
		WMode:    wmode,
	}
}

func parseFontName(raw string) (name string, bold, italic bool) {
	name = raw
	if i := strings.IndexByte(name, '+'); i >= 0 {
		name = name[i+1:]
	}
	bold = strings.Contains(raw, "-Bold")
	italic = strings.Contains(raw, "-Oblique")
	return
}

// AppendChar appends a Char to the span, computing its post-transform
// position from the span's ctm.
func (s *Span) AppendChar(pre geom.Point, adv float64, ucs rune) {
	s.Chars = append(s.Chars, Char{
		Pre:  pre,
		Post: geom.MultiplyPoint(s.CTM, pre),
		Adv:  adv,
		UCS:  ucs,
	})
}

// AppendCharPost appends a Char positioned directly in device space,
// for synthetic glyphs whose position is computed by advancing a
// post-transform coordinate. The pre-transform position is back-computed
// through the inverse ctm so both coordinates stay consistent; with a
// non-invertible ctm, Pre is left equal to post.
func (s *Span) AppendCharPost(post geom.Point, adv float64, ucs rune) {
	pre := post
	if inv, ok := geom.Invert(s.CTM); ok {
		pre = geom.MultiplyPoint(inv, post)
	}
	s.Chars = append(s.Chars, Char{
		Pre:  pre,
		Post: post,
		Adv:  adv,
		UCS:  ucs,
	})
}

// Empty reports whether s has no glyphs left.
func (s *Span) Empty() bool { return len(s.Chars) == 0 }

// First returns the span's first glyph. Panics if the span is empty; the
// engine's invariant (glyphs.len >= 1) must hold for every live span.
func (s *Span) First() Char { return s.Chars[0] }

// Last returns the span's last glyph.
func (s *Span) Last() Char { return s.Chars[len(s.Chars)-1] }

// FontSize is |matrix_expansion(trm) * matrix_expansion(ctm)| (spec §3).
func (s *Span) FontSize() float64 {
	return geom.Expansion(s.TRM) * geom.Expansion(s.CTM)
}

// Angle is the span's baseline rotation, atan2(-ctm.c, ctm.a) (spec §4.1).
func (s *Span) Angle() float64 {
	return geom.Angle(s.CTM)
}

// Direction returns the unit advance direction in pre-transform space:
// (1,0) for horizontal writing mode, (0,1) for vertical.
func (s *Span) Direction() geom.Point {
	if s.WMode == Vertical {
		return geom.Point{X: 0, Y: 1}
	}
	return geom.Point{X: 1, Y: 0}
}

// AdvTotal is adv_total(s) = |last.pos - first.pos| + last.adv *
// matrix_expansion(s.trm), the total geometric extent of the span
// including its final advance (spec §4.3 step 1).
func (s *Span) AdvTotal() float64 {
	if len(s.Chars) == 0 {
		return 0
	}
	first, last := s.First(), s.Last()
	dx := last.Post.X - first.Post.X
	dy := last.Post.Y - first.Post.Y
	dist := math.Hypot(dx, dy)
	return dist + last.Adv*geom.Expansion(s.TRM)
}

// purgeRemoved removes glyphs marked with removedSentinel in place,
// preserving relative order of the survivors (spec §4.6 step 7).
func (s *Span) purgeRemoved() {
	out := s.Chars[:0]
	for _, c := range s.Chars {
		if c.removed() {
			continue
		}
		out = append(out, c)
	}
	s.Chars = out
}

// MarkRemoved flags the glyph at index i as routed elsewhere, pending a
// Purge call.
func (s *Span) MarkRemoved(i int) {
	s.Chars[i].UCS = removedSentinel
}

// Purge drops every glyph previously flagged by MarkRemoved, preserving
// the relative order of the survivors (spec §4.6 step 7). Exported for the
// table reconstructor, which marks glyphs as they're routed into cells
// across the whole page before purging the donor spans in one pass.
func (s *Span) Purge() {
	s.purgeRemoved()
}
