package docx

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/extract/core/geom"
	"github.com/npillmayer/extract/core/option"
	"github.com/npillmayer/extract/engine/glyph"
	"github.com/npillmayer/extract/engine/lines"
	"github.com/npillmayer/extract/engine/page"
	"github.com/npillmayer/extract/engine/paragraphs"
	"github.com/npillmayer/extract/engine/table"
)

// run/paragraph/tbl/fragment decode a fragment into a generic tree; struct
// tags without a namespace prefix match any element sharing the local name,
// so these don't need to know the w: namespace URI used by the emitter.
type run struct {
	Text string `xml:"t"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type tcPr struct {
	GridSpan *struct {
		Val int `xml:"val,attr"`
	} `xml:"gridSpan"`
	VMerge *struct {
		Val string `xml:"val,attr"`
	} `xml:"vMerge"`
}

type cell struct {
	Pr         tcPr        `xml:"tcPr"`
	Paragraphs []paragraph `xml:"p"`
}

type row struct {
	Cells []cell `xml:"tc"`
}

type tbl struct {
	Rows []row `xml:"tr"`
}

type fragment struct {
	XMLName    xml.Name    `xml:"root"`
	Paragraphs []paragraph `xml:"p"`
	Tables     []tbl       `xml:"tbl"`
}

func decode(t *testing.T, frag string) fragment {
	t.Helper()
	doc := "<root xmlns:w=\"http://schemas.openxmlformats.org/wordprocessingml/2006/main\">" + frag + "</root>"
	var f fragment
	require.NoError(t, xml.Unmarshal([]byte(doc), &f))
	return f
}

func spanOf(text string, font string) *glyph.Span {
	s := glyph.NewSpan(geom.Identity, geom.Identity, font, glyph.Horizontal)
	x := 0.0
	for _, r := range text {
		s.AppendChar(geom.Point{X: x}, 5, r)
		x += 5
	}
	return s
}

func rect(x0, y0, x1, y1 float64) geom.Rect {
	return geom.Rect{Min: geom.Point{X: x0, Y: y0}, Max: geom.Point{X: x1, Y: y1}}
}

func TestParagraphAndRunEmitted(t *testing.T) {
	l := lines.Assemble([]*glyph.Span{spanOf("hello", "Arial")})
	p := paragraphs.Assemble(l)
	require.Len(t, p, 1)

	e := New()
	e.Subpage(&page.Subpage{Paragraphs: p})

	f := decode(t, e.String())
	require.Len(t, f.Paragraphs, 1)
	require.Len(t, f.Paragraphs[0].Runs, 1)
	assert.Equal(t, "hello", f.Paragraphs[0].Runs[0].Text)
}

func TestEscapingRoundTrips(t *testing.T) {
	l := lines.Assemble([]*glyph.Span{spanOf("a<b>c&d", "Arial")})
	p := paragraphs.Assemble(l)

	e := New()
	e.Subpage(&page.Subpage{Paragraphs: p})

	frag := e.String()
	assert.True(t, strings.Contains(frag, "&lt;"))
	assert.True(t, strings.Contains(frag, "&amp;"))

	f := decode(t, frag)
	require.Len(t, f.Paragraphs, 1)
	require.Len(t, f.Paragraphs[0].Runs, 1)
	assert.Equal(t, "a<b>c&d", f.Paragraphs[0].Runs[0].Text)
}

func TestEmptyParagraphStillEmitsARun(t *testing.T) {
	e := New()
	e.Subpage(&page.Subpage{Paragraphs: []*paragraphs.Paragraph{{}}})

	f := decode(t, e.String())
	require.Len(t, f.Paragraphs, 1)
	require.Len(t, f.Paragraphs[0].Runs, 1)
	assert.Equal(t, "", f.Paragraphs[0].Runs[0].Text)
}

// TestSpacingInsertsEmptyParagraphs mirrors extract.c's
// extract_document_to_docx_content: with Spacing on, an empty paragraph
// precedes every paragraph, and a second one precedes any paragraph whose
// ctm differs from its predecessor's.
func TestSpacingInsertsEmptyParagraphs(t *testing.T) {
	p1 := paragraphs.Assemble(lines.Assemble([]*glyph.Span{spanOf("one", "Arial")}))
	rotated := glyph.NewSpan(geom.Matrix{A: 0, B: 1, C: -1, D: 0, E: 0, F: 0}, geom.Identity, "Arial", glyph.Horizontal)
	rotated.AppendChar(geom.Point{X: 0, Y: 0}, 5, 't')
	rotated.AppendChar(geom.Point{X: 0, Y: 5}, 5, 'w')
	p2 := paragraphs.Assemble(lines.Assemble([]*glyph.Span{rotated}))

	e := New(option.New(option.WithSpacing(true)))
	e.Subpage(&page.Subpage{Paragraphs: append(append([]*paragraphs.Paragraph{}, p1...), p2...)})

	f := decode(t, e.String())
	// one real paragraph each from p1/p2, plus: 1 leading empty (p1) + 1
	// leading empty (p2) + 1 extra empty for the ctm4 change before p2.
	require.Len(t, f.Paragraphs, 5)
	assert.Equal(t, "", f.Paragraphs[0].Runs[0].Text)
	assert.Equal(t, "one", f.Paragraphs[1].Runs[0].Text)
	assert.Equal(t, "", f.Paragraphs[2].Runs[0].Text)
	assert.Equal(t, "", f.Paragraphs[3].Runs[0].Text)
	assert.Equal(t, "tw", f.Paragraphs[4].Runs[0].Text)
}

// TestTableMergesEmitGridSpanAndVMerge reuses the same S4 fixture
// (engine/table's "2x2 with a horizontal merge") and checks the docx
// writer reflects the reconstructed merge via gridSpan/vMerge and skips
// continuation cells entirely.
func TestTableMergesEmitGridSpanAndVMerge(t *testing.T) {
	vSegs := []geom.Rect{rect(50, 0, 50, 100), rect(0, 0, 0, 100), rect(100, 0, 100, 100)}
	hSegs := []geom.Rect{rect(0, 50, 50, 50), rect(0, 100, 100, 100), rect(0, 0, 100, 0)}

	tables, _ := table.Reconstruct(nil, hSegs, vSegs, option.Default())
	require.Len(t, tables, 1)

	e := New()
	e.Subpage(&page.Subpage{Tables: tables})

	f := decode(t, e.String())
	require.Len(t, f.Tables, 1)
	require.Len(t, f.Tables[0].Rows, 2)
	require.Len(t, f.Tables[0].Rows[0].Cells, 2, "top row has no continuation cells")

	topRight := f.Tables[0].Rows[0].Cells[1]
	require.NotNil(t, topRight.Pr.VMerge)
	assert.Equal(t, "restart", topRight.Pr.VMerge.Val)

	require.Len(t, f.Tables[0].Rows[1].Cells, 1, "bottom row's right cell is a continuation and must not be written")
}
