package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtide/classtide/internal/models"
)

func n(id, typ string, read bool) models.Notification {
	return models.Notification{
		ID:        id,
		Type:      typ,
		Title:     "title " + id,
		Message:   "message " + id,
		Read:      read,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestStore(t *testing.T) {
	t.Run("add keeps newest first", func(t *testing.T) {
		s := NewStore()
		s.Add(n("1", "grade", false))
		s.Add(n("2", "message", false))

		all := s.All()
		require.Len(t, all, 2)
		assert.Equal(t, "2", all[0].ID)
		assert.Equal(t, "1", all[1].ID)
	})

	t.Run("unread and counts", func(t *testing.T) {
		s := NewStore()
		s.Add(n("1", "grade", true))
		s.Add(n("2", "message", false))
		s.Add(n("3", "message", false))

		assert.Len(t, s.Unread(), 2)
		assert.Equal(t, 2, s.UnreadCount())
	})

	t.Run("mark as read", func(t *testing.T) {
		s := NewStore()
		s.Add(n("1", "grade", false))
		s.Add(n("2", "message", false))

		s.MarkAsRead("1")
		assert.True(t, s.IsRead("1"))
		assert.False(t, s.IsRead("2"))
		assert.False(t, s.IsRead("missing"))

		s.MarkAllAsRead()
		assert.Equal(t, 0, s.UnreadCount())
	})

	t.Run("filter by type", func(t *testing.T) {
		s := NewStore()
		s.Add(n("1", "grade", false))
		s.Add(n("2", "message", false))
		s.Add(n("3", "grade", false))

		grades := s.ByType("grade")
		require.Len(t, grades, 2)
		for _, g := range grades {
			assert.Equal(t, "grade", g.Type)
		}
	})

	t.Run("remove and clear", func(t *testing.T) {
		s := NewStore()
		s.Add(n("1", "grade", false))
		s.Add(n("2", "message", false))

		s.Remove("1")
		assert.Len(t, s.All(), 1)
		s.Remove("missing")
		assert.Len(t, s.All(), 1)

		s.Clear()
		assert.Empty(t, s.All())
	})

	t.Run("all returns a copy", func(t *testing.T) {
		s := NewStore()
		s.Add(n("1", "grade", false))

		all := s.All()
		all[0].ID = "mutated"
		assert.Equal(t, "1", s.All()[0].ID)
	})
}
