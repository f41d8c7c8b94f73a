/*
Package paragraphs implements the paragraph assembler and paragraph
ordering: lines belonging to the same ctm are joined into paragraphs by
perpendicular-baseline distance, dehyphenating line breaks and inserting
inter-line spaces (spec §4.4); the resulting paragraphs are then sorted
into reading order (spec §4.5).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package paragraphs

import (
	"math"
	"sort"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/extract/core/geom"
	"github.com/npillmayer/extract/engine/glyph"
	"github.com/npillmayer/extract/engine/lines"
	"github.com/npillmayer/extract/trace"
)

func tracer() tracing.Trace {
	return trace.P("paragraphs")
}

// joinFactor is the "1.4" constant of spec §4.4's join policy: two
// candidate lines join when their perpendicular baseline distance is less
// than joinFactor times the candidate's font size.
const joinFactor = 1.4

// Paragraph is a vertically ordered, non-empty sequence of lines sharing
// one ctm.
type Paragraph struct {
	Lines []*lines.Line
}

func newParagraph(l *lines.Line) *Paragraph {
	return &Paragraph{Lines: []*lines.Line{l}}
}

func (p *Paragraph) first() *lines.Line { return p.Lines[0] }
func (p *Paragraph) last() *lines.Line  { return p.Lines[len(p.Lines)-1] }

// CTM returns the ctm shared by every line in the paragraph.
func (p *Paragraph) CTM() geom.Matrix { return p.first().CTM() }

// WMode returns the writing mode shared by every line in the paragraph.
func (p *Paragraph) WMode() glyph.WMode { return p.first().WMode() }

// Angle returns the baseline rotation of the paragraph's first line.
func (p *Paragraph) Angle() float64 { return p.first().Angle() }

// Assemble joins lines into paragraphs, per spec §4.4, then sorts the
// result into reading order (spec §4.5). Each line starts as its own
// singleton paragraph; compatible candidates are repeatedly joined until
// convergence.
func Assemble(ls []*lines.Line) []*Paragraph {
	paragraphs := make([]*Paragraph, len(ls))
	for i, l := range ls {
		paragraphs[i] = newParagraph(l)
	}

	for a := 0; a < len(paragraphs); a++ {
		paraA := paragraphs[a]
		if paraA == nil {
			continue
		}
		lineA := paraA.last()
		angleA := lineA.Angle()

		nearestB := -1
		var nearestDist float64
		for b := 0; b < len(paragraphs); b++ {
			if b == a || paragraphs[b] == nil {
				continue
			}
			paraB := paragraphs[b]
			lineB := paraB.first()
			if !compatible(lineA, lineB) {
				continue
			}
			dist := lineDistance(lineA, lineB, angleA)
			if dist <= 0 {
				continue
			}
			if nearestB == -1 || dist < nearestDist {
				nearestB = b
				nearestDist = dist
			}
		}

		if nearestB == -1 {
			continue
		}
		b := nearestB
		paraB := paragraphs[b]
		lineB := paraB.first()

		h := fontSizeMax(lineB)
		if nearestDist >= joinFactor*h {
			tracer().Debugf("not joining paragraphs: distance=%f threshold=%f", nearestDist, joinFactor*h)
			continue
		}

		joinLines(lineA, lineB)
		paraA.Lines = append(paraA.Lines, paraB.Lines...)
		paragraphs[b] = nil
		if b > a {
			a--
		}
	}

	result := compact(paragraphs)
	Order(result)
	return result
}

// compatible reports whether two paragraphs' boundary lines share wmode,
// ctm4 and angle, the eligibility test for a paragraph join (spec §4.4).
func compatible(a, b *lines.Line) bool {
	if a.WMode() != b.WMode() {
		return false
	}
	if !geom.Equal4(a.CTM(), b.CTM()) {
		return false
	}
	return a.Angle() == b.Angle()
}

// lineDistance is d_perp, the signed perpendicular baseline distance from
// lineA's last glyph to lineB's first glyph at angle alpha (spec §4.4).
func lineDistance(lineA, lineB *lines.Line, alpha float64) float64 {
	aSpan := lineA.Spans[len(lineA.Spans)-1]
	bSpan := lineB.Spans[0]
	a := aSpan.Last().Post
	b := bSpan.First().Post
	return perpDistance(a, b, alpha)
}

// perpDistance is the signed perpendicular distance from point a to point
// b along the baseline direction at angle alpha, spec §4.4's d_perp.
//
// The raw join.c formula is dx*sin(alpha) + dy*cos(alpha); that source's
// own page space has y increasing downward, so "the next line is below"
// falls out as dy > 0 directly. This engine's documented convention (see
// DESIGN.md) is y increasing upward, matching the upstream PDF
// interpreter's native space — under that convention "below" is smaller
// y, so the raw formula's sign is inverted here to keep d_perp positive
// for a candidate that is genuinely further along the reading direction.
func perpDistance(a, b geom.Point, alpha float64) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return -(dx*math.Sin(alpha) + dy*math.Cos(alpha))
}

// fontSizeMax is h = max(matrix_expansion(s.trm)) over the spans of a
// line, per spec §4.4's join threshold.
func fontSizeMax(l *lines.Line) float64 {
	max := 0.0
	for _, s := range l.Spans {
		e := geom.Expansion(s.TRM)
		if e > max {
			max = e
		}
	}
	return max
}

// joinLines applies the dehyphenation / synthetic-space policy to the
// boundary between lineA (end of paragraph A) and lineB (start of
// paragraph B) before B's lines are appended to A. The synthetic space is
// placed in device space: the ctm-weighted advance is added to the last
// glyph's post-transform position and written as the space's device
// position directly (the line assembler, by contrast, advances the
// pre-transform position).
func joinLines(lineA, lineB *lines.Line) {
	aSpan := lineA.Spans[len(lineA.Spans)-1]
	last := aSpan.Last()
	switch {
	case last.UCS == '-':
		aSpan.Chars = aSpan.Chars[:len(aSpan.Chars)-1]
		tracer().Debugf("dehyphenating at line join")
	case last.IsSpace():
		// already separated; nothing to do.
	default:
		pos := geom.Point{
			X: last.Post.X + last.Adv*aSpan.CTM.A,
			Y: last.Post.Y + last.Adv*aSpan.CTM.C,
		}
		aSpan.AppendCharPost(pos, 0, glyph.SpaceRune)
	}
}

// Text returns the paragraph's plain text, NFC-normalized. The spans'
// fragments are accumulated as a rope and flattened once at the end, so
// the cost stays linear no matter how many joins built the paragraph.
func (p *Paragraph) Text() string {
	var spans []*glyph.Span
	for _, l := range p.Lines {
		spans = append(spans, l.Spans...)
	}
	return glyph.NormalizeNFC(glyph.CordText(glyph.BuildCord(spans)))
}

// Bounds returns the paragraph's bounding rectangle in the text's own
// frame: every glyph's device-space position is mapped back through the
// inverse ctm, so rotated text still yields an axis-aligned rect. A
// non-invertible ctm is recovered rather than failed: the identity inverse
// is substituted, leaving the glyphs' device positions as the bounds.
func (p *Paragraph) Bounds() geom.Rect {
	inv, ok := geom.Invert(p.CTM())
	if !ok {
		tracer().Errorf("non-invertible ctm, computing paragraph bounds with identity")
	}
	r := geom.Empty()
	for _, l := range p.Lines {
		for _, s := range l.Spans {
			for _, c := range s.Chars {
				q := geom.MultiplyPoint(inv, c.Post)
				r = r.Union(geom.Rect{Min: q, Max: q})
			}
		}
	}
	return r
}

func compact(ps []*Paragraph) []*Paragraph {
	out := make([]*Paragraph, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Order sorts paragraphs into reading order in place, per spec §4.5, using
// a stable sort (spec §8 property 6).
func Order(ps []*Paragraph) {
	sort.SliceStable(ps, func(i, j int) bool {
		return less(ps[i], ps[j])
	})
}

// less implements the spec §4.5 comparator as a strict less-than: it
// returns true only when p1 must sort strictly before p2, leaving ties
// (including cross-rotation "incomparable" pairs) to the stable sort's
// insertion-order guarantee.
func less(p1, p2 *Paragraph) bool {
	c1, c2 := p1.CTM(), p2.CTM()
	if !geom.Equal4(c1, c2) {
		return ctm4Less(c1, c2)
	}
	a1, a2 := p1.Angle(), p2.Angle()
	if math.Abs(a1-a2) > math.Pi/2 {
		return false
	}
	alpha := (a1 + a2) / 2
	f1 := p1.first().Spans[0].First().Post
	f2 := p2.first().Spans[0].First().Post
	return perpDistance(f1, f2, alpha) > 0
}

// ctm4Less orders two distinct ctm4's lexicographically on (a, b, c, d),
// per spec §4.5 step 1 and the Open Question decision recorded in
// DESIGN.md.
func ctm4Less(m, n geom.Matrix) bool {
	if m.A != n.A {
		return m.A < n.A
	}
	if m.B != n.B {
		return m.B < n.B
	}
	if m.C != n.C {
		return m.C < n.C
	}
	return m.D < n.D
}
