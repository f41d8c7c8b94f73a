/*
Package page orchestrates one page's join pipeline: span refinement, table
reconstruction, line assembly, paragraph assembly and ordering, wired in
the sequence spec §5 requires (table reconstruction removes cell-owned
glyphs before the page-level line assembler runs).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package page

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/extract/core/geom"
	"github.com/npillmayer/extract/core/option"
	"github.com/npillmayer/extract/engine/glyph"
	"github.com/npillmayer/extract/engine/lines"
	"github.com/npillmayer/extract/engine/paragraphs"
	"github.com/npillmayer/extract/engine/refine"
	"github.com/npillmayer/extract/engine/table"
	"github.com/npillmayer/extract/trace"
)

func tracer() tracing.Trace {
	return trace.P("page")
}

// Subpage holds the content within one media rect: top-level paragraphs
// (glyphs not owned by any table) plus the tables reconstructed from the
// supplied ruling lines.
type Subpage struct {
	MediaBox       geom.Rect
	HRules, VRules []geom.Rect
	Paragraphs     []*paragraphs.Paragraph
	Tables         []*table.Table
}

// Page is one page's top level: its media rect and the subpages produced
// by layout analysis. Today the join engine always produces exactly one
// subpage per page (spec §6's "layout_analysis" option governs only
// whether that subpage carries tables, not whether a page splits into
// multiple subpages; multi-subpage layout analysis is external).
type Page struct {
	MediaBox geom.Rect
	Subpages []*Subpage
}

// Document is an ordered sequence of pages.
type Document struct {
	Pages []*Page
}

// Input bundles the per-page data the join pipeline consumes: the spans
// read off the intermediate XML stream, the page's media rect, and the
// ruling-line segments the external table detector reported.
type Input struct {
	MediaBox geom.Rect
	Spans    []*glyph.Span
	HRules   []geom.Rect
	VRules   []geom.Rect
}

// Join runs the full pipeline on one page's input and returns its Page,
// per spec §5's ordering guarantees:
//
//	(a) span refinement precedes line assembly
//	(b) line assembly precedes paragraph assembly
//	(c) paragraph ordering follows assembly
//	(d) table reconstruction precedes page-level assembly
func Join(in Input, opts option.Options) *Page {
	refined := refine.Page(in.Spans, opts)

	tables, remaining := table.Reconstruct(refined, in.HRules, in.VRules, opts)

	ls := lines.Assemble(remaining)
	paras := paragraphs.Assemble(ls)

	tracer().Debugf("page joined: spans=%d refined=%d lines=%d paragraphs=%d tables=%d",
		len(in.Spans), len(refined), len(ls), len(paras), len(tables))

	sub := &Subpage{
		MediaBox:   in.MediaBox,
		HRules:     in.HRules,
		VRules:     in.VRules,
		Paragraphs: paras,
		Tables:     tables,
	}
	return &Page{
		MediaBox: in.MediaBox,
		Subpages: []*Subpage{sub},
	}
}

// JoinDocument runs Join over every page in order, assembling a Document.
func JoinDocument(pages []Input, opts option.Options) *Document {
	doc := &Document{Pages: make([]*Page, len(pages))}
	for i, in := range pages {
		doc.Pages[i] = Join(in, opts)
	}
	return doc
}

// Dump renders a page tree as an indented debug listing, modeled after
// the teacher-and-original-source content-walk idiom (document.c's
// content_dump_aux): one line per paragraph/line/table/cell, useful
// for inspecting join output without a full emitter backend.
func (d *Document) Dump() string {
	var b strings.Builder
	for pi, p := range d.Pages {
		fmt.Fprintf(&b, "page %d mediabox=%v\n", pi, p.MediaBox)
		for si, s := range p.Subpages {
			fmt.Fprintf(&b, "  subpage %d\n", si)
			dumpParagraphs(&b, "    ", s.Paragraphs)
			for ti, t := range s.Tables {
				fmt.Fprintf(&b, "    table %d: %dx%d\n", ti, t.CellsNumY, t.CellsNumX)
				for _, c := range t.Cells {
					if c.IsContinuation() {
						continue
					}
					fmt.Fprintf(&b, "      cell row=%d col=%d extend_right=%d extend_down=%d\n",
						c.Row, c.Col, c.ExtendRight, c.ExtendDown)
					dumpParagraphs(&b, "        ", c.Paragraphs)
				}
			}
		}
	}
	return b.String()
}

func dumpParagraphs(b *strings.Builder, indent string, paras []*paragraphs.Paragraph) {
	for pi, para := range paras {
		fmt.Fprintf(b, "%sparagraph %d bounds=%v\n", indent, pi, para.Bounds())
		for li, l := range para.Lines {
			text := glyph.CordText(glyph.BuildCord(l.Spans))
			fmt.Fprintf(b, "%s  line %d: %q\n", indent, li, text)
		}
	}
}
