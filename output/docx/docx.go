/*
Package docx emits a docx content fragment — the `<w:p>`/`<w:r>`/`<w:tbl>`
XML that goes inside a WordprocessingML document body — from a finalized
page tree. Container assembly (the docx ZIP, template substitution) is out
of scope (spec §1); this package only produces the content fragment string.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package docx

import (
	"fmt"
	"strings"

	"github.com/npillmayer/extract/core/geom"
	"github.com/npillmayer/extract/core/option"
	"github.com/npillmayer/extract/engine/glyph"
	"github.com/npillmayer/extract/engine/lines"
	"github.com/npillmayer/extract/engine/page"
	"github.com/npillmayer/extract/engine/paragraphs"
	"github.com/npillmayer/extract/engine/table"
)

// Emitter accumulates a docx content fragment, mirroring the teacher-era
// docx.c's call-and-append style (docx_paragraph_start/finish,
// docx_run_start/finish) rather than building an intermediate tree: the
// fragment is write-only XML text, never re-parsed by this package.
type Emitter struct {
	b    strings.Builder
	opts option.Options
}

// New returns an empty Emitter. An optional option.Options configures the
// "spacing" behavior (spec §6); omitting it leaves spacing off, matching
// the zero value of option.Options.
func New(opts ...option.Options) *Emitter {
	e := &Emitter{}
	if len(opts) > 0 {
		e.opts = opts[0]
	}
	return e
}

// String returns the accumulated fragment.
func (e *Emitter) String() string { return e.b.String() }

// Document appends every page of doc to the fragment.
func (e *Emitter) Document(doc *page.Document) {
	for _, p := range doc.Pages {
		e.Page(p)
	}
}

// Page appends one page's subpages.
func (e *Emitter) Page(p *page.Page) {
	for _, s := range p.Subpages {
		e.Subpage(s)
	}
}

// Subpage appends a subpage's top-level paragraphs followed by its tables.
// When the Spacing option is set, an empty paragraph is inserted ahead of
// every paragraph, with a second one ahead of any paragraph whose ctm
// differs (by ctm4) from the previous paragraph's — the docx_paragraph_empty
// calls in extract_document_to_docx_content (spec §6 "spacing").
func (e *Emitter) Subpage(s *page.Subpage) {
	var ctmPrev *geom.Matrix
	for _, para := range s.Paragraphs {
		if e.opts.Spacing {
			if ctmPrev != nil && len(para.Lines) > 0 && !geom.Equal4(*ctmPrev, para.CTM()) {
				e.paragraphEmpty()
			}
			e.paragraphEmpty()
		}
		e.paragraph(para)
		if len(para.Lines) > 0 {
			ctm := para.CTM()
			ctmPrev = &ctm
		}
	}
	for _, t := range s.Tables {
		e.table(t)
	}
}

func (e *Emitter) paragraphStart() { e.b.WriteString("\n\n<w:p>") }
func (e *Emitter) paragraphFinish() { e.b.WriteString("\n</w:p>") }

// paragraphEmpty writes a paragraph with no text runs, following
// docx_paragraph_empty: docx templates apparently need a zero-width run
// present for the paragraph to take up vertical space at all.
func (e *Emitter) paragraphEmpty() {
	e.paragraphStart()
	e.runStart("OpenSans", 10, false, false)
	e.runFinish()
	e.paragraphFinish()
}

func (e *Emitter) runStart(fontName string, fontSize float64, bold, italic bool) {
	e.b.WriteString("\n<w:r><w:rPr><w:rFonts w:ascii=\"")
	e.b.WriteString(escape(fontName))
	e.b.WriteString("\" w:hAnsi=\"")
	e.b.WriteString(escape(fontName))
	e.b.WriteString("\"/>")
	if bold {
		e.b.WriteString("<w:b/>")
	}
	if italic {
		e.b.WriteString("<w:i/>")
	}
	fmt.Fprintf(&e.b, "<w:sz w:val=\"%f\"/>", fontSize*2)
	fmt.Fprintf(&e.b, "<w:szCs w:val=\"%f\"/>", fontSize*1.5)
	e.b.WriteString("</w:rPr><w:t xml:space=\"preserve\">")
}

func (e *Emitter) runFinish() { e.b.WriteString("</w:t></w:r>") }

func (e *Emitter) paragraph(p *paragraphs.Paragraph) {
	if len(p.Lines) == 0 {
		e.paragraphEmpty()
		return
	}
	e.paragraphStart()
	for _, l := range p.Lines {
		e.line(l)
	}
	e.paragraphFinish()
}

func (e *Emitter) line(l *lines.Line) {
	for _, s := range l.Spans {
		e.span(s)
	}
}

func (e *Emitter) span(s *glyph.Span) {
	text := glyph.NormalizeNFC(s.Text())
	if text == "" {
		return
	}
	e.runStart(s.FontName, s.FontSize(), s.Bold, s.Italic)
	e.b.WriteString(escape(ligatures(text)))
	e.runFinish()
}

// table writes a WordprocessingML table: a w:tbl with a w:tblGrid sized to
// the reconstructed column count, then one w:tr per grid row holding its
// non-continuation cells, with w:gridSpan/w:vMerge reflecting each cell's ExtendRight/ExtendDown
// (spec §4.6). The original docx.c never grew a table writer (tables were
// an html.c-only feature); this follows the same start/finish-call style
// as the paragraph/run helpers above, extended to the OOXML table schema.
func (e *Emitter) table(t *table.Table) {
	e.b.WriteString("\n\n<w:tbl><w:tblPr><w:tblBorders>")
	e.b.WriteString("<w:top w:val=\"single\"/><w:left w:val=\"single\"/>")
	e.b.WriteString("<w:bottom w:val=\"single\"/><w:right w:val=\"single\"/>")
	e.b.WriteString("<w:insideH w:val=\"single\"/><w:insideV w:val=\"single\"/>")
	e.b.WriteString("</w:tblBorders></w:tblPr><w:tblGrid>")
	for j := 0; j < t.CellsNumX; j++ {
		e.b.WriteString("<w:gridCol/>")
	}
	e.b.WriteString("</w:tblGrid>")

	for i := 0; i < t.CellsNumY; i++ {
		e.b.WriteString("\n<w:tr>")
		for j := 0; j < t.CellsNumX; j++ {
			c := t.Cells[i*t.CellsNumX+j]
			if c.IsContinuation() {
				continue
			}
			e.b.WriteString("<w:tc><w:tcPr>")
			if c.ExtendRight > 1 {
				fmt.Fprintf(&e.b, "<w:gridSpan w:val=\"%d\"/>", c.ExtendRight)
			}
			if c.ExtendDown > 1 {
				e.b.WriteString("<w:vMerge w:val=\"restart\"/>")
			}
			e.b.WriteString("</w:tcPr>")
			if len(c.Paragraphs) == 0 {
				e.paragraphEmpty()
			}
			for _, p := range c.Paragraphs {
				e.paragraph(p)
			}
			e.b.WriteString("</w:tc>")
		}
		e.b.WriteString("\n</w:tr>")
	}
	e.b.WriteString("\n</w:tbl>\n\n")
}

func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ligatureFixups maps common ligature code points to their expanded ASCII
// sequence; ligature expansion is the emitter's responsibility, not the
// core's (spec §4.7).
var ligatureFixups = map[rune]string{
	0xFB00: "ff",
	0xFB01: "fi",
	0xFB02: "fl",
	0xFB03: "ffi",
	0xFB04: "ffl",
}

func ligatures(s string) string {
	var b strings.Builder
	for _, r := range s {
		if rep, ok := ligatureFixups[r]; ok {
			b.WriteString(rep)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
