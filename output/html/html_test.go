package html

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	nethtml "golang.org/x/net/html"

	"github.com/npillmayer/extract/core/geom"
	"github.com/npillmayer/extract/core/option"
	"github.com/npillmayer/extract/engine/glyph"
	"github.com/npillmayer/extract/engine/lines"
	"github.com/npillmayer/extract/engine/page"
	"github.com/npillmayer/extract/engine/paragraphs"
	"github.com/npillmayer/extract/engine/table"
)

func parse(t *testing.T, doc string) *nethtml.Node {
	t.Helper()
	root, err := nethtml.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return root
}

func query(t *testing.T, root *nethtml.Node, sel string) []*nethtml.Node {
	t.Helper()
	s, err := cascadia.Compile(sel)
	require.NoError(t, err)
	return cascadia.QueryAll(root, s)
}

func rect(x0, y0, x1, y1 float64) geom.Rect {
	return geom.Rect{Min: geom.Point{X: x0, Y: y0}, Max: geom.Point{X: x1, Y: y1}}
}

func TestParagraphWithBoldItalicRun(t *testing.T) {
	s := glyph.NewSpan(geom.Identity, geom.Identity, "F-Bold-Oblique", glyph.Horizontal)
	s.AppendChar(geom.Point{X: 0}, 5, 'h')
	s.AppendChar(geom.Point{X: 5}, 5, 'i')
	l := lines.Assemble([]*glyph.Span{s})
	p := paragraphs.Assemble(l)
	require.Len(t, p, 1)

	e := New()
	e.Subpage(&page.Subpage{Paragraphs: p})
	out, err := e.String()
	require.NoError(t, err)

	root := parse(t, out)
	require.Len(t, query(t, root, "p"), 1)
	bNodes := query(t, root, "p b")
	require.Len(t, bNodes, 1)
	iNodes := query(t, root, "p b i")
	require.Len(t, iNodes, 1)
	assert.Equal(t, "hi", iNodes[0].FirstChild.Data)
}

func TestTableColspanRowspanAndContinuationSkip(t *testing.T) {
	vSegs := []geom.Rect{rect(50, 0, 50, 100), rect(0, 0, 0, 100), rect(100, 0, 100, 100)}
	hSegs := []geom.Rect{rect(0, 50, 50, 50), rect(0, 100, 100, 100), rect(0, 0, 100, 0)}

	tables, _ := table.Reconstruct(nil, hSegs, vSegs, option.Default())
	require.Len(t, tables, 1)

	e := New()
	e.Subpage(&page.Subpage{Tables: tables})
	out, err := e.String()
	require.NoError(t, err)

	root := parse(t, out)
	tds := query(t, root, "td")
	assert.Len(t, tds, 3, "continuation cell must be skipped")

	rowspanned := query(t, root, "td[rowspan]")
	require.Len(t, rowspanned, 1)
	for _, attr := range rowspanned[0].Attr {
		if attr.Key == "rowspan" {
			assert.Equal(t, "2", attr.Val)
		}
	}
}

func TestEmptyDocumentRendersShell(t *testing.T) {
	e := New()
	out, err := e.String()
	require.NoError(t, err)
	assert.Contains(t, out, "<html>")
	assert.Contains(t, out, "<body>")
}
