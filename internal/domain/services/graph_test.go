package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
)

func TestReferenceGraph_AddOrUpdate(t *testing.T) {
	t.Run("adds an edge and tracks the dependent", func(t *testing.T) {
		g := newReferenceGraph()

		require.NoError(t, g.AddOrUpdate("a", "b", 10))

		edge, ok := g.ReferenceOf("a")
		require.True(t, ok)
		assert.Equal(t, "b", edge.RefEventID)
		assert.Equal(t, int64(10), edge.OffsetYears)
		assert.Equal(t, []string{"a"}, g.DependentsOf("b"))
	})

	t.Run("replaces a prior edge from the same event", func(t *testing.T) {
		g := newReferenceGraph()
		require.NoError(t, g.AddOrUpdate("a", "b", 10))

		require.NoError(t, g.AddOrUpdate("a", "c", -5))

		edge, ok := g.ReferenceOf("a")
		require.True(t, ok)
		assert.Equal(t, "c", edge.RefEventID)
		assert.Empty(t, g.DependentsOf("b"))
		assert.Equal(t, []string{"a"}, g.DependentsOf("c"))
	})

	t.Run("rejects a self reference", func(t *testing.T) {
		g := newReferenceGraph()

		err := g.AddOrUpdate("a", "a", 1)

		var cycErr *entities.CyclicReferenceError
		require.ErrorAs(t, err, &cycErr)
		assert.Equal(t, "a", cycErr.EventID)
		_, ok := g.ReferenceOf("a")
		assert.False(t, ok)
	})

	t.Run("rejects closing a three node cycle and leaves the graph unchanged", func(t *testing.T) {
		g := newReferenceGraph()
		require.NoError(t, g.AddOrUpdate("a", "b", 1))
		require.NoError(t, g.AddOrUpdate("b", "c", 1))

		err := g.AddOrUpdate("c", "a", 1)

		var cycErr *entities.CyclicReferenceError
		require.ErrorAs(t, err, &cycErr)
		assert.Equal(t, "c", cycErr.EventID)
		assert.Equal(t, "a", cycErr.ReferenceID)

		// No partial edge: c still has no reference and a/b are intact.
		_, ok := g.ReferenceOf("c")
		assert.False(t, ok)
		edge, ok := g.ReferenceOf("a")
		require.True(t, ok)
		assert.Equal(t, "b", edge.RefEventID)
		assert.ElementsMatch(t, []string{"a", "b"}, g.DependentsOf("c"))
	})

	t.Run("rejects a two node cycle", func(t *testing.T) {
		g := newReferenceGraph()
		require.NoError(t, g.AddOrUpdate("a", "b", 1))

		var cycErr *entities.CyclicReferenceError
		require.ErrorAs(t, g.AddOrUpdate("b", "a", 1), &cycErr)
	})
}

func TestReferenceGraph_DependentsOf(t *testing.T) {
	t.Run("returns transitive dependents in sorted order", func(t *testing.T) {
		g := newReferenceGraph()
		// d -> c -> a, b -> a
		require.NoError(t, g.AddOrUpdate("c", "a", 1))
		require.NoError(t, g.AddOrUpdate("b", "a", 2))
		require.NoError(t, g.AddOrUpdate("d", "c", 3))

		assert.Equal(t, []string{"b", "c", "d"}, g.DependentsOf("a"))
		assert.Equal(t, []string{"d"}, g.DependentsOf("c"))
		assert.Empty(t, g.DependentsOf("d"))
	})

	t.Run("unknown event has no dependents", func(t *testing.T) {
		g := newReferenceGraph()
		assert.Empty(t, g.DependentsOf("missing"))
	})
}

func TestReferenceGraph_Remove(t *testing.T) {
	t.Run("drops the outgoing edge but keeps incoming edges", func(t *testing.T) {
		g := newReferenceGraph()
		require.NoError(t, g.AddOrUpdate("b", "a", 1))
		require.NoError(t, g.AddOrUpdate("c", "b", 1))

		g.Remove("b")

		_, ok := g.ReferenceOf("b")
		assert.False(t, ok)
		// c still depends on b even though b no longer depends on anything.
		edge, ok := g.ReferenceOf("c")
		require.True(t, ok)
		assert.Equal(t, "b", edge.RefEventID)
		assert.Equal(t, []string{"c"}, g.DependentsOf("b"))
		assert.Empty(t, g.DependentsOf("a"))
	})

	t.Run("removing an event without an edge is a no-op", func(t *testing.T) {
		g := newReferenceGraph()
		g.Remove("nope")
	})
}
