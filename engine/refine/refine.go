/*
Package refine implements the per-page span refinement pass: after a span's
glyphs have been read off the wire, walk consecutive glyph pairs and either
delete a spurious intra-word space or split the span when the predicted
glyph position diverges from the reported one (spec §4.2).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package refine

import (
	"math"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/extract/core/geom"
	"github.com/npillmayer/extract/core/option"
	"github.com/npillmayer/extract/engine/glyph"
	"github.com/npillmayer/extract/trace"
)

func tracer() tracing.Trace {
	return trace.P("refine")
}

// Page refines every span of a page in place, returning the resulting span
// list (spans may be split into more spans than were given).
func Page(spans []*glyph.Span, opts option.Options) []*glyph.Span {
	out := make([]*glyph.Span, 0, len(spans))
	for _, s := range spans {
		out = append(out, span(s, opts)...)
	}
	return out
}

// span refines one span, simulating the original append-time trigger: after
// every glyph is added to the span under construction, the last two glyphs
// are inspected.
func span(s *glyph.Span, opts option.Options) []*glyph.Span {
	if len(s.Chars) <= 1 {
		return []*glyph.Span{s}
	}
	var result []*glyph.Span
	cur := cloneEmpty(s)
	cur.Chars = append(cur.Chars, s.Chars[0])
	for i := 1; i < len(s.Chars); i++ {
		cur.Chars = append(cur.Chars, s.Chars[i])
		switch decide(cur, opts) {
		case removeSpace:
			n := len(cur.Chars)
			cur.Chars[n-2] = cur.Chars[n-1]
			cur.Chars = cur.Chars[:n-1]
		case split:
			n := len(cur.Chars)
			last := cur.Chars[n-1]
			cur.Chars = cur.Chars[:n-1]
			result = append(result, cur)
			next := cloneEmpty(s)
			next.Chars = append(next.Chars, last)
			cur = next
		}
	}
	result = append(result, cur)
	return result
}

func cloneEmpty(s *glyph.Span) *glyph.Span {
	return &glyph.Span{
		CTM:      s.CTM,
		TRM:      s.TRM,
		FontName: s.FontName,
		Bold:     s.Bold,
		Italic:   s.Italic,
		WMode:    s.WMode,
	}
}

type action int

const (
	none action = iota
	removeSpace
	split
)

// decide inspects the last two glyphs of s (s must have at least two) and
// returns the refinement action to apply.
func decide(s *glyph.Span, opts option.Options) action {
	n := len(s.Chars)
	penultimate, last := s.Chars[n-2], s.Chars[n-1]

	if opts.Autosplit && last.Pre.Y != penultimate.Pre.Y {
		tracer().Debugf("autosplit: pre_y changed %f -> %f", penultimate.Pre.Y, last.Pre.Y)
		return split
	}

	fontSize := s.FontSize()
	if fontSize == 0 {
		fontSize = 1
	}
	dir := directionFor(s.WMode)
	d := geom.MultiplyVector(s.CTM, dir)

	px := penultimate.Pre.X + penultimate.Adv*d.X
	py := penultimate.Pre.Y + penultimate.Adv*d.Y
	errX := (last.Pre.X - px) / fontSize
	errY := (last.Pre.Y - py) / fontSize

	if penultimate.IsSpace() {
		removeBecauseOverlap := errX < -penultimate.Adv/2 && errX > -penultimate.Adv
		removeBecauseNarrow := (last.Pre.X-penultimate.Pre.X)/fontSize < last.Adv/10
		if removeBecauseOverlap || removeBecauseNarrow {
			tracer().Debugf("removing spurious space before %q", string(last.UCS))
			return removeSpace
		}
		return none
	}
	if math.Abs(errX) > 0.01 || math.Abs(errY) > 0.01 {
		tracer().Debugf("splitting span: err=(%f, %f)", errX, errY)
		return split
	}
	return none
}

func directionFor(wmode glyph.WMode) geom.Point {
	if wmode == glyph.Vertical {
		return geom.Point{X: 0, Y: 1}
	}
	return geom.Point{X: 1, Y: 0}
}
