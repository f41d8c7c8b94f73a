package xmlstream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/extract/core"
)

func TestReadSimplePageWithOneSpan(t *testing.T) {
	doc := `<?xml version="1.0"?>
<page>
  <span ctm="1 0 0 1 0 0" trm="10 0 0 10 0 0" font_name="ABCDEF+Arial-Bold" wmode="0">
    <char x="0" y="0" adv="5" ucs="104"/>
    <char x="5" y="0" adv="5" ucs="105"/>
  </span>
</page>
`
	pages, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Spans, 1)

	s := pages[0].Spans[0]
	assert.Equal(t, "Arial-Bold", s.FontName)
	assert.True(t, s.Bold)
	assert.Equal(t, "hi", s.Text())
}

func TestReadMultiplePages(t *testing.T) {
	doc := `<page>
  <span ctm="1 0 0 1 0 0" trm="1 0 0 1 0 0" font_name="F" wmode="0">
    <char x="0" y="0" adv="1" ucs="97"/>
  </span>
</page>
<page>
  <span ctm="1 0 0 1 0 0" trm="1 0 0 1 0 0" font_name="F" wmode="0">
    <char x="0" y="0" adv="1" ucs="98"/>
  </span>
</page>
`
	pages, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "a", pages[0].Spans[0].Text())
	assert.Equal(t, "b", pages[1].Spans[0].Text())
}

func TestReadRulingLines(t *testing.T) {
	doc := `<page>
  <hrule y="50" x1="0" x2="100"/>
  <vrule x="50" y1="0" y2="100"/>
</page>
`
	pages, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].HRules, 1)
	require.Len(t, pages[0].VRules, 1)
	assert.Equal(t, 50.0, pages[0].HRules[0].Min.Y)
	assert.Equal(t, 50.0, pages[0].VRules[0].Min.X)
}

func TestReadUnexpectedTopLevelTagIsHardError(t *testing.T) {
	doc := `<document></document>`
	_, err := Read(strings.NewReader(doc))
	require.Error(t, err)
	assert.Equal(t, core.EMALFORMED, core.Code(err))
}

func TestReadMissingAttributeIsHardError(t *testing.T) {
	doc := `<page><span ctm="1 0 0 1 0 0" trm="1 0 0 1 0 0" wmode="0"></span></page>`
	_, err := Read(strings.NewReader(doc))
	require.Error(t, err)
	assert.Equal(t, core.EMALFORMED, core.Code(err))
}

func TestReadNonNumericAttributeIsHardError(t *testing.T) {
	doc := `<page>
  <span ctm="1 0 0 1 0 0" trm="1 0 0 1 0 0" font_name="F" wmode="0">
    <char x="abc" y="0" adv="1" ucs="97"/>
  </span>
</page>`
	_, err := Read(strings.NewReader(doc))
	require.Error(t, err)
	assert.Equal(t, core.EMALFORMED, core.Code(err))
}

func TestSpanWithNoCharsIsDropped(t *testing.T) {
	doc := `<page><span ctm="1 0 0 1 0 0" trm="1 0 0 1 0 0" font_name="F" wmode="0"></span></page>`
	pages, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Spans)
}
