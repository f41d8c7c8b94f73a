package refine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/npillmayer/extract/core/geom"
	"github.com/npillmayer/extract/core/option"
	"github.com/npillmayer/extract/engine/glyph"
)

func mkSpan(pts []geom.Point, advs []float64, ucs []rune) *glyph.Span {
	s := glyph.NewSpan(geom.Identity, geom.Identity, "F", glyph.Horizontal)
	for i := range pts {
		s.AppendChar(pts[i], advs[i], ucs[i])
	}
	return s
}

// S3 — Spurious space removal: 'a' 'space' 'b' where the predicted position
// of 'b' overlaps the space's advance.
func TestSpuriousSpaceRemoval(t *testing.T) {
	s := mkSpan(
		[]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1.05, Y: 0}},
		[]float64{1, 1, 1},
		[]rune{'a', ' ', 'b'},
	)
	out := Page([]*glyph.Span{s}, option.Default())
	assert.Len(t, out, 1)
	assert.Equal(t, "ab", out[0].Text())
}

func TestSplitOnPositionError(t *testing.T) {
	s := mkSpan(
		[]geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}},
		[]float64{1, 1},
		[]rune{'a', 'b'},
	)
	out := Page([]*glyph.Span{s}, option.Default())
	assert.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Text())
	assert.Equal(t, "b", out[1].Text())
}

func TestNoActionWhenPredictionMatches(t *testing.T) {
	s := mkSpan(
		[]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}},
		[]float64{1, 1},
		[]rune{'a', 'b'},
	)
	out := Page([]*glyph.Span{s}, option.Default())
	assert.Len(t, out, 1)
	assert.Equal(t, "ab", out[0].Text())
}

func TestAutosplitForcesSplitOnPreYChange(t *testing.T) {
	s := mkSpan(
		[]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 5}},
		[]float64{1, 1, 1},
		[]rune{'a', 'b', 'c'},
	)
	out := Page([]*glyph.Span{s}, option.New(option.WithAutosplit(true)))
	assert.Len(t, out, 2)
	assert.Equal(t, "ab", out[0].Text())
	assert.Equal(t, "c", out[1].Text())
}

func TestSingleGlyphSpanUnaffected(t *testing.T) {
	s := mkSpan([]geom.Point{{X: 0, Y: 0}}, []float64{1}, []rune{'a'})
	out := Page([]*glyph.Span{s}, option.Default())
	assert.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Text())
}
