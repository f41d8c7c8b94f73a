/*
Package html emits a complete HTML document from a finalized page tree,
mirroring src/html.c's extract_document_to_html_content: one <p> per
paragraph, runs wrapped in <b>/<i> per the span's Bold/Italic flags, and
one <table> per reconstructed table with colspan/rowspan computed from
each cell's ExtendRight/ExtendDown (spec §4.7).

The original C source tracks bold/italic as toggled state shared across
an entire page's string output, opening/closing <b>/<i> only when a run's
flags change and leaving them open across paragraph boundaries; built as
flat string concatenation, that's a meaningless distinction for HTML
validity. Since this package builds an actual node tree (so it can use
golang.org/x/net/html's renderer/escaper rather than hand-rolled string
concatenation), the toggle is scoped per run instead, keeping every <p>
properly nested — the same formatting, without the clipped tags.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package html

import (
	"bytes"
	"strconv"

	"github.com/aymerick/douceur/css"
	"golang.org/x/net/html"

	"github.com/npillmayer/extract/engine/glyph"
	"github.com/npillmayer/extract/engine/page"
	"github.com/npillmayer/extract/engine/paragraphs"
	"github.com/npillmayer/extract/engine/table"
)

// Emitter accumulates an HTML document as a node tree.
type Emitter struct {
	root *html.Node
	body *html.Node
}

// New returns an Emitter with an empty <html><body> shell.
func New() *Emitter {
	root := elem("html")
	body := elem("body")
	root.AppendChild(body)
	return &Emitter{root: root, body: body}
}

// Document appends every page of doc.
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
func (e *Emitter) Subpage(s *page.Subpage) {
	for _, p := range s.Paragraphs {
		e.body.AppendChild(paragraphNode(p))
	}
	for _, t := range s.Tables {
		e.body.AppendChild(tableNode(t))
	}
}

// String renders the accumulated document.
func (e *Emitter) String() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func elem(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func paragraphNode(p *paragraphs.Paragraph) *html.Node {
	n := elem("p")
	for _, l := range p.Lines {
		for _, s := range l.Spans {
			txt := glyph.NormalizeNFC(s.Text())
			if txt == "" {
				continue
			}
			n.AppendChild(runNode(s))
		}
	}
	return n
}

// runNode wraps a span's text in <b>/<i> per its Bold/Italic flags
// (spec §4.7), matching html.c's font_bold/font_italic toggles.
func runNode(s *glyph.Span) *html.Node {
	txt := glyph.NormalizeNFC(s.Text())
	n := textNode(txt)
	if s.Italic {
		i := elem("i")
		i.AppendChild(n)
		n = i
	}
	if s.Bold {
		b := elem("b")
		b.AppendChild(n)
		n = b
	}
	return n
}

// tableNode builds a <table> the way html.c's table walk does: row-major,
// skipping continuation cells (!cell.above || !cell.left in the original,
// IsContinuation here), colspan/rowspan from ExtendRight/ExtendDown.
func tableNode(t *table.Table) *html.Node {
	tbl := elem("table")
	tbl.Attr = []html.Attribute{
		{Key: "border", Val: "1"},
		{Key: "style", Val: tableStyle()},
	}
	for i := 0; i < t.CellsNumY; i++ {
		tr := elem("tr")
		any := false
		for j := 0; j < t.CellsNumX; j++ {
			c := t.Cells[i*t.CellsNumX+j]
			if c.IsContinuation() {
				continue
			}
			any = true
			tr.AppendChild(cellNode(c))
		}
		if any {
			tbl.AppendChild(tr)
		}
	}
	return tbl
}

func cellNode(c *table.Cell) *html.Node {
	td := elem("td")
	if c.ExtendRight > 1 {
		td.Attr = append(td.Attr, html.Attribute{Key: "colspan", Val: strconv.Itoa(c.ExtendRight)})
	}
	if c.ExtendDown > 1 {
		td.Attr = append(td.Attr, html.Attribute{Key: "rowspan", Val: strconv.Itoa(c.ExtendDown)})
	}
	for _, p := range c.Paragraphs {
		td.AppendChild(paragraphNode(p))
	}
	return td
}

// tableStyle builds the inline "border-collapse:collapse" declaration
// html.c hard-codes, via douceur's CSS declaration type rather than a bare
// string literal, so a change to the style rules only ever touches one
// place regardless of how many declarations it grows to.
func tableStyle() string {
	decls := []*css.Declaration{
		{Property: "border-collapse", Value: "collapse"},
	}
	var buf bytes.Buffer
	for _, d := range decls {
		buf.WriteString(d.Property)
		buf.WriteString(": ")
		buf.WriteString(d.Value)
		buf.WriteString(";")
	}
	return buf.String()
}
