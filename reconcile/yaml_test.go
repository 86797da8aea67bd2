package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldChanges(t *testing.T) {
	removed, added, err := fieldChanges("a:\n  b: 1\n  c: [1, 2]\n", "a:\n  c: [1]\n  d: {}\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.b", "a.c[1]"}, removed)
	assert.Equal(t, []string{"a.d"}, added)
}

func TestFieldPaths_Empty(t *testing.T) {
	paths, err := fieldPaths("  ")
	require.NoError(t, err)
	assert.Empty(t, paths)

	_, err = fieldPaths("a: [")
	assert.Error(t, err)
}

func TestStripReferences(t *testing.T) {
	out, err := stripReferences(overlayYAML, []string{"testRemInp1", "missing"})
	require.NoError(t, err)
	assert.Contains(t, out, "- testInp1")
	assert.NotContains(t, out, "testRemInp1")
}

func TestStripReferences_NotAnOverlay(t *testing.T) {
	_, err := stripReferences(oldInputSetYAML, []string{"x"})
	assert.Error(t, err)
}

func TestUnifiedDiff_Identical(t *testing.T) {
	out, err := unifiedDiff("a: 1\n", "a: 1\n")
	require.NoError(t, err)
	assert.Empty(t, out)
}
