package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build creates:
//
//	a        x
//	├── b
//	│   └── d
//	└── c
func build(t *testing.T) *Tree[string] {
	t.Helper()
	tr := New[string]()
	require.NoError(t, tr.AddRoot("a"))
	require.NoError(t, tr.AddRoot("x"))
	require.NoError(t, tr.Add("a", "b"))
	require.NoError(t, tr.Add("a", "c"))
	require.NoError(t, tr.Add("b", "d"))
	return tr
}

func TestStructure(t *testing.T) {
	tr := build(t)
	assert.Equal(t, 5, tr.Len())
	assert.Equal(t, []string{"a", "x"}, tr.Roots())
	assert.Equal(t, []string{"b", "c"}, tr.Children("a"))
	assert.Nil(t, tr.Children("missing"))

	p, ok := tr.Parent("d")
	require.True(t, ok)
	assert.Equal(t, "b", p)
	_, ok = tr.Parent("a")
	assert.False(t, ok)

	tests := []struct {
		value string
		level int
	}{
		{"a", 0}, {"x", 0}, {"b", 1}, {"c", 1}, {"d", 2}, {"missing", -1},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.level, tr.Level(tt.value))
		})
	}
}

func TestAddErrors(t *testing.T) {
	tr := build(t)
	assert.ErrorIs(t, tr.AddRoot("a"), ErrExists)
	assert.ErrorIs(t, tr.Add("a", "d"), ErrExists)
	assert.ErrorIs(t, tr.Add("nope", "e"), ErrUnknown)
	assert.False(t, tr.Contains("e"))
}

func TestCollectBreadthFirst(t *testing.T) {
	tr := build(t)
	var got []string
	var levels []int
	tr.Collect(func(level int, v string) {
		got = append(got, v)
		levels = append(levels, level)
	})
	assert.Equal(t, []string{"a", "x", "b", "c", "d"}, got)
	assert.Equal(t, []int{0, 0, 1, 1, 2}, levels)
}

func TestRemoveReparents(t *testing.T) {
	tr := build(t)
	require.True(t, tr.Remove("b"))
	assert.False(t, tr.Contains("b"))
	assert.Equal(t, []string{"d", "c"}, tr.Children("a"))
	assert.Equal(t, 1, tr.Level("d"))

	require.True(t, tr.Remove("a"))
	assert.Equal(t, []string{"d", "c", "x"}, tr.Roots())
	assert.Equal(t, 0, tr.Level("c"))
	assert.False(t, tr.Remove("a"))

	require.NoError(t, tr.AddRoot("a"), "a removed value can be added again")
	assert.Equal(t, 4, tr.Len())
}
