package table

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/npillmayer/extract/core/geom"
	"github.com/npillmayer/extract/core/option"
	"github.com/npillmayer/extract/engine/glyph"
)

func rect(x0, y0, x1, y1 float64) geom.Rect {
	return geom.Rect{Min: geom.Point{X: x0, Y: y0}, Max: geom.Point{X: x1, Y: y1}}
}

// S4 — Table 2x2 with a horizontal merge. Rect (0,0)-(100,100); a vertical
// rule at x=50 spans the full height; a horizontal rule at y=50 covers only
// the left half (x in [0,50]). Expect a 2x2 grid where cell(row0,col1) has
// extend_down=2 and cell(row1,col1) is a continuation (missing top).
func TestS4TwoByTwoWithHorizontalMerge(t *testing.T) {
	vSegs := []geom.Rect{rect(50, 0, 50, 100)}
	hSegs := []geom.Rect{rect(0, 50, 50, 50)}
	// Outer border segments, so the bounding-rect union & joint-point count
	// reach the rect's full extent and the >=5 joint point threshold.
	hSegs = append(hSegs,
		rect(0, 100, 100, 100), // top border
		rect(0, 0, 100, 0),     // bottom border
	)
	vSegs = append(vSegs,
		rect(0, 0, 0, 100),     // left border
		rect(100, 0, 100, 100), // right border
	)

	tables, remaining := Reconstruct(nil, hSegs, vSegs, option.Default())
	assert.Len(t, tables, 1)
	assert.Empty(t, remaining)

	tb := tables[0]
	assert.Equal(t, 2, tb.CellsNumX)
	assert.Equal(t, 2, tb.CellsNumY)

	topRight := tb.cell(0, 1)
	bottomRight := tb.cell(1, 1)
	assert.Equal(t, 2, topRight.ExtendDown)
	assert.True(t, bottomRight.IsContinuation(), "bottom-right cell should be missing its top edge")
	assert.Same(t, topRight, bottomRight.owner)
}

// The mirror image of S4: the vertical rule at x=50 covers only the top
// half (y in [50,100]), the horizontal rule at y=50 spans the full width.
// The bottom row has no interior vertical, so cell(row1,col0) extends
// right and cell(row1,col1) is a continuation missing its left edge.
func TestTwoByTwoWithVerticalRuleOnlyInTopHalf(t *testing.T) {
	vSegs := []geom.Rect{rect(50, 50, 50, 100)}
	hSegs := []geom.Rect{rect(0, 50, 100, 50)}
	hSegs = append(hSegs,
		rect(0, 100, 100, 100),
		rect(0, 0, 100, 0),
	)
	vSegs = append(vSegs,
		rect(0, 0, 0, 100),
		rect(100, 0, 100, 100),
	)

	tables, _ := Reconstruct(nil, hSegs, vSegs, option.Default())
	assert.Len(t, tables, 1)

	tb := tables[0]
	bottomLeft := tb.cell(1, 0)
	bottomRight := tb.cell(1, 1)
	assert.Equal(t, 2, bottomLeft.ExtendRight)
	assert.True(t, bottomRight.IsContinuation(), "bottom-right cell should be missing its left edge")
	assert.Same(t, bottomLeft, bottomRight.owner)
	assert.False(t, bottomRight.Left)
}

func TestNoTableWhenNoSegments(t *testing.T) {
	tables, remaining := Reconstruct(nil, nil, nil, option.Default())
	assert.Empty(t, tables)
	assert.Empty(t, remaining)
}

func TestLayoutAnalysisDisabledSkipsTables(t *testing.T) {
	s := glyph.NewSpan(geom.Identity, geom.Identity, "F", glyph.Horizontal)
	s.AppendChar(geom.Point{X: 25, Y: 25}, 10, 'x')
	spans := []*glyph.Span{s}

	vSegs := []geom.Rect{rect(50, 0, 50, 100)}
	hSegs := []geom.Rect{rect(0, 50, 100, 50)}

	tables, remaining := Reconstruct(spans, hSegs, vSegs, option.New(option.WithLayoutAnalysis(false)))
	assert.Empty(t, tables)
	assert.Equal(t, spans, remaining)
}

func TestGlyphRoutedIntoCell(t *testing.T) {
	vSegs := []geom.Rect{rect(50, 0, 50, 100), rect(0, 0, 0, 100), rect(100, 0, 100, 100)}
	hSegs := []geom.Rect{rect(0, 50, 100, 50), rect(0, 100, 100, 100), rect(0, 0, 100, 0)}

	s := glyph.NewSpan(geom.Identity, geom.Identity, "F", glyph.Horizontal)
	s.AppendChar(geom.Point{X: 10, Y: 75}, 10, 'a') // inside row0/col0
	spans := []*glyph.Span{s}

	tables, remaining := Reconstruct(spans, hSegs, vSegs, option.Default())
	assert.Len(t, tables, 1)
	assert.Empty(t, remaining, "the glyph's donor span should be fully routed and purged")

	cell := tables[0].cell(0, 0)
	assert.NotEmpty(t, cell.Paragraphs)
}
