/*
Package jsonout emits a finalized page tree as JSON: one of the three
output backends spec §1 calls for ("primarily docx/odt, secondarily HTML
or JSON"). Unlike docx/html, the original C sources never grew a JSON
writer, so this package has no line-for-line teacher function to port; it
is a direct struct marshal of the same page/paragraph/table shape the
other two backends walk.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package jsonout

import (
	"encoding/json"

	"github.com/npillmayer/extract/core/geom"
	"github.com/npillmayer/extract/engine/page"
	"github.com/npillmayer/extract/engine/paragraphs"
	"github.com/npillmayer/extract/engine/table"
)

// Document is the JSON-serializable mirror of a page.Document.
type Document struct {
	Pages []Page `json:"pages"`
}

// Page mirrors page.Page.
type Page struct {
	MediaBox geom.Rect `json:"media_box"`
	Subpages []Subpage `json:"subpages"`
}

// Subpage mirrors page.Subpage.
type Subpage struct {
	MediaBox   geom.Rect   `json:"media_box"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Tables     []Table     `json:"tables"`
}

// Paragraph mirrors paragraphs.Paragraph, flattened to its plain text plus
// the shared ctm that defines its reading direction.
type Paragraph struct {
	CTM  geom.Matrix `json:"ctm"`
	Text string      `json:"text"`
}

// Table mirrors table.Table.
type Table struct {
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Cells []Cell `json:"cells"`
}

// Cell mirrors table.Cell, omitting continuation cells (their content
// belongs to the owning cell's Paragraphs).
type Cell struct {
	Row         int         `json:"row"`
	Col         int         `json:"col"`
	ExtendRight int         `json:"extend_right"`
	ExtendDown  int         `json:"extend_down"`
	Paragraphs  []Paragraph `json:"paragraphs"`
}

// FromDocument converts a join-engine document into its JSON mirror.
func FromDocument(doc *page.Document) Document {
	out := Document{Pages: make([]Page, len(doc.Pages))}
	for i, p := range doc.Pages {
		out.Pages[i] = fromPage(p)
	}
	return out
}

func fromPage(p *page.Page) Page {
	out := Page{MediaBox: p.MediaBox, Subpages: make([]Subpage, len(p.Subpages))}
	for i, s := range p.Subpages {
		out.Subpages[i] = fromSubpage(s)
	}
	return out
}

func fromSubpage(s *page.Subpage) Subpage {
	out := Subpage{MediaBox: s.MediaBox}
	for _, p := range s.Paragraphs {
		out.Paragraphs = append(out.Paragraphs, fromParagraph(p))
	}
	for _, t := range s.Tables {
		out.Tables = append(out.Tables, fromTable(t))
	}
	return out
}

func fromParagraph(p *paragraphs.Paragraph) Paragraph {
	return Paragraph{CTM: p.CTM(), Text: p.Text()}
}

func fromTable(t *table.Table) Table {
	out := Table{Rows: t.CellsNumY, Cols: t.CellsNumX}
	for _, c := range t.Cells {
		if c.IsContinuation() {
			continue
		}
		cell := Cell{
			Row:         c.Row,
			Col:         c.Col,
			ExtendRight: c.ExtendRight,
			ExtendDown:  c.ExtendDown,
		}
		for _, p := range c.Paragraphs {
			cell.Paragraphs = append(cell.Paragraphs, fromParagraph(p))
		}
		out.Cells = append(out.Cells, cell)
	}
	return out
}

// Marshal renders doc as indented JSON.
func Marshal(doc *page.Document) ([]byte, error) {
	return json.MarshalIndent(FromDocument(doc), "", "  ")
}
