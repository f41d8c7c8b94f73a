package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	o := Default()
	assert.False(t, o.Autosplit)
	assert.True(t, o.Spacing)
	assert.True(t, o.LayoutAnalysis)
}

func TestNewAppliesOverrides(t *testing.T) {
	o := New(WithAutosplit(true), WithSpacing(false))
	assert.True(t, o.Autosplit)
	assert.False(t, o.Spacing)
	assert.True(t, o.LayoutAnalysis)
}

func TestWithLayoutAnalysis(t *testing.T) {
	o := New(WithLayoutAnalysis(false))
	assert.False(t, o.LayoutAnalysis)
}
