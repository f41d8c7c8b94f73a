/*
Package lines implements the line assembler: it joins a page's (or a table
cell's) spans into lines by nearest-aligned-neighbor matching along the
baseline direction, inserting a synthetic space where the gap between two
joining spans warrants one (spec §4.3).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package lines

import (
	"math"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/extract/core/geom"
	"github.com/npillmayer/extract/engine/glyph"
	"github.com/npillmayer/extract/trace"
)

func tracer() tracing.Trace {
	return trace.P("lines")
}

// angleToleranceDeg is the maximum angular deviation, in degrees, between a
// line's own angle and the direction from its last glyph to a candidate's
// first glyph, for the candidate to be eligible to join (spec §4.3).
const angleToleranceDeg = 1.0

// Line is a horizontally ordered, non-empty sequence of spans sharing one
// baseline.
type Line struct {
	Spans []*glyph.Span
}

func newLine(s *glyph.Span) *Line {
	return &Line{Spans: []*glyph.Span{s}}
}

func (l *Line) first() *glyph.Span { return l.Spans[0] }
func (l *Line) last() *glyph.Span  { return l.Spans[len(l.Spans)-1] }

// WMode returns the writing mode shared by every span in the line.
func (l *Line) WMode() glyph.WMode { return l.first().WMode }

// CTM returns the ctm shared by every span in the line.
func (l *Line) CTM() geom.Matrix { return l.first().CTM }

// Angle returns the baseline rotation shared by every span in the line.
func (l *Line) Angle() float64 { return l.first().Angle() }

// Assemble joins spans into lines, per spec §4.3. Each span starts as its
// own singleton line; compatible, nearest-aligned lines are repeatedly
// merged until no more merges are possible. Synthetic space insertion (step
// 2) is unconditional; the "spacing" configuration option governs the
// page-walk/emitter contract instead (output/docx), not this join step.
func Assemble(spans []*glyph.Span) []*Line {
	lines := make([]*Line, len(spans))
	for i, s := range spans {
		lines[i] = newLine(s)
	}

	for a := 0; a < len(lines); a++ {
		lineA := lines[a]
		if lineA == nil {
			continue
		}
		spanA := lineA.last()
		angleA := spanA.Angle()

		nearestB := -1
		var nearestAdv float64
		for b := 0; b < len(lines); b++ {
			if b == a || lines[b] == nil {
				continue
			}
			lineB := lines[b]
			if !compatible(lineA, lineB, angleA) {
				continue
			}
			spanB := lineB.first()
			last, first := spanA.Last(), spanB.First()
			dx := first.Post.X - last.Post.X
			dy := first.Post.Y - last.Post.Y
			angleAB := math.Atan2(-dy, dx)
			if math.Abs(angleAB-angleA)*180/math.Pi > angleToleranceDeg {
				continue
			}
			adv := residualAdvance(spanA, last, first)
			if nearestB == -1 || adv < nearestAdv {
				nearestB = b
				nearestAdv = adv
			}
		}

		if nearestB == -1 {
			continue
		}
		b := nearestB
		lineB := lines[b]
		spanB := lineB.first()

		if !spanA.Last().IsSpace() && !spanB.First().IsSpace() {
			avgAdv := (spanA.AdvTotal() + spanB.AdvTotal()) / float64(len(spanA.Chars)+len(spanB.Chars))
			if nearestAdv > 0.25*avgAdv {
				tracer().Debugf("inserting synthetic space: gap=%f avg=%f", nearestAdv, avgAdv)
				insertSyntheticSpace(spanA, nearestAdv)
			}
		}

		lineA.Spans = append(lineA.Spans, lineB.Spans...)
		lines[b] = nil
		if b > a {
			a--
		}
	}

	return compact(lines)
}

// compatible reports whether two lines share wmode, ctm4 and angle, per
// spec §4.3's eligibility test (and §8 property 4, compatibility closure).
func compatible(a, b *Line, angleA float64) bool {
	if a == b {
		return false
	}
	if a.WMode() != b.WMode() {
		return false
	}
	if !geom.Equal4(a.CTM(), b.CTM()) {
		return false
	}
	if b.Angle() != angleA {
		return false
	}
	return true
}

// residualAdvance is adv(A,B) = |delta| - lastGlyph(A).adv *
// matrix_expansion(A.trm).
func residualAdvance(spanA *glyph.Span, last, first glyph.Char) float64 {
	dx := first.Post.X - last.Post.X
	dy := first.Post.Y - last.Post.Y
	dist := math.Hypot(dx, dy)
	return dist - last.Adv*geom.Expansion(spanA.TRM)
}

// insertSyntheticSpace appends a space glyph to spanA with the given
// advance. Its pre-position is set to the predicted position following the
// previous glyph (the same predicted-position idea span refinement uses),
// rather than left at the origin: this keeps geom.Rect/position-based
// downstream code (ordering, table routing) meaningful for a line that is
// joined again later. The original C source leaves this glyph's position
// at (0,0); spec.md does not give a line-level synthetic-space position
// formula the way it does for the paragraph assembler, so this is a
// documented choice (see DESIGN.md).
func insertSyntheticSpace(spanA *glyph.Span, adv float64) {
	last := spanA.Last()
	dir := spanA.Direction()
	pre := geom.Point{
		X: last.Pre.X + last.Adv*dir.X,
		Y: last.Pre.Y + last.Adv*dir.Y,
	}
	spanA.AppendChar(pre, adv, glyph.SpaceRune)
}

func compact(lines []*Line) []*Line {
	out := make([]*Line, 0, len(lines))
	for _, l := range lines {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}
