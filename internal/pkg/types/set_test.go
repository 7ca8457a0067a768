package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	t.Run("new set from values drops duplicates", func(t *testing.T) {
		s := NewSet("a", "b", "a")

		assert.Len(t, s, 2)
		assert.True(t, s.Contains("a"))
		assert.True(t, s.Contains("b"))
	})

	t.Run("add and delete", func(t *testing.T) {
		s := NewSet[int]()

		s.Add(1)
		s.Add(1)
		s.Add(2)
		assert.Len(t, s, 2)

		s.Delete(1)
		assert.False(t, s.Contains(1))
		assert.True(t, s.Contains(2))

		s.Delete(99) // absent, no-op
		assert.Len(t, s, 1)
	})

	t.Run("values round-trips the members", func(t *testing.T) {
		s := NewSet("x", "y", "z")
		assert.ElementsMatch(t, []string{"x", "y", "z"}, s.Values())
	})

	t.Run("empty set", func(t *testing.T) {
		s := NewSet[string]()
		assert.Empty(t, s.Values())
		assert.False(t, s.Contains("anything"))
	})
}
