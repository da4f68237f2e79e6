// Package docstoretest holds the behaviour every docstore backend must
// share, runnable against any Store.
package docstoretest

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note is the document type used by the contract tests.
type Note struct {
	ID    string `bson:"_id,omitempty"`
	Owner string `bson:"owner"`
	Title string `bson:"title"`
	Meta  Meta   `bson:"meta"`
	Days  []int  `bson:"days"`
}

// Meta is a nested sub-document.
type Meta struct {
	Count int    `bson:"count"`
	Label string `bson:"label"`
}

// Run exercises a fresh, empty store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()

	ctx := func(t *testing.T) context.Context {
		c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		t.Cleanup(cancel)
		return c
	}

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		var n Note
		err := s.Get(ctx(t), "notes", "nope", &n)
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("InsertKeepsExisting", func(t *testing.T) {
		s := newStore(t)
		c := ctx(t)
		require.NoError(t, s.Insert(c, "notes", "n1", Note{Owner: "a", Title: "first"}))
		err := s.Insert(c, "notes", "n1", Note{Owner: "a", Title: "second"})
		require.ErrorIs(t, err, docstore.ErrExists)

		var got Note
		require.NoError(t, s.Get(c, "notes", "n1", &got))
		assert.Equal(t, "n1", got.ID)
		assert.Equal(t, "first", got.Title)
	})

	t.Run("SetOverwrites", func(t *testing.T) {
		s := newStore(t)
		c := ctx(t)
		require.NoError(t, s.Set(c, "notes", "n1", Note{Owner: "a", Title: "first", Days: []int{1}}))
		require.NoError(t, s.Set(c, "notes", "n1", Note{Owner: "a", Title: "second"}))

		var got Note
		require.NoError(t, s.Get(c, "notes", "n1", &got))
		assert.Equal(t, "second", got.Title)
		assert.Empty(t, got.Days)
	})

	t.Run("UpdateMerges", func(t *testing.T) {
		s := newStore(t)
		c := ctx(t)
		require.NoError(t, s.Set(c, "notes", "n1", Note{Owner: "a", Title: "t", Meta: Meta{Count: 1, Label: "x"}}))
		require.NoError(t, s.Update(c, "notes", "n1", docstore.Fields{
			"meta.count": 5,
			"days":       []int{3, 4},
		}))

		var got Note
		require.NoError(t, s.Get(c, "notes", "n1", &got))
		assert.Equal(t, "t", got.Title)
		assert.Equal(t, Meta{Count: 5, Label: "x"}, got.Meta)
		assert.Equal(t, []int{3, 4}, got.Days)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(ctx(t), "notes", "nope", docstore.Fields{"title": "x"})
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("AddAndQuery", func(t *testing.T) {
		s := newStore(t)
		c := ctx(t)
		id1, err := s.Add(c, "notes", Note{Owner: "a", Title: "one"})
		require.NoError(t, err)
		id2, err := s.Add(c, "notes", Note{Owner: "a", Title: "two"})
		require.NoError(t, err)
		_, err = s.Add(c, "notes", Note{Owner: "b", Title: "three"})
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2)

		var got []Note
		require.NoError(t, s.Query(c, "notes", docstore.Filter{"owner": "a"}, &got))
		titles := make([]string, 0, len(got))
		ids := make([]string, 0, len(got))
		for _, n := range got {
			titles = append(titles, n.Title)
			ids = append(ids, n.ID)
		}
		assert.ElementsMatch(t, []string{"one", "two"}, titles)
		assert.ElementsMatch(t, []string{id1, id2}, ids)

		var none []Note
		require.NoError(t, s.Query(c, "notes", docstore.Filter{"owner": "zzz"}, &none))
		assert.Empty(t, none)

		var all []Note
		require.NoError(t, s.Query(c, "notes", nil, &all))
		assert.Len(t, all, 3)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		c := ctx(t)
		require.NoError(t, s.Set(c, "notes", "n1", Note{Owner: "a"}))
		require.NoError(t, s.Delete(c, "notes", "n1"))

		var n Note
		require.ErrorIs(t, s.Get(c, "notes", "n1", &n), docstore.ErrNotFound)
		require.ErrorIs(t, s.Delete(c, "notes", "n1"), docstore.ErrNotFound)
	})

	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(ctx(t)))
	})
}
