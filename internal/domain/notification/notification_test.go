package notification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotification_Defaults(t *testing.T) {
	n, err := NewNotification(uuid.New(), "Invoice paid", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, TypeInfo, n.Type)
	assert.Equal(t, CategorySystem, n.Category)
	assert.False(t, n.IsRead)

	_, err = NewNotification(uuid.New(), "x", "", "loud", CategoryTask)
	assert.Error(t, err)
	_, err = NewNotification(uuid.New(), " ", "", TypeInfo, CategoryTask)
	assert.Error(t, err)
}

func TestNotification_MarkReadOnce(t *testing.T) {
	n, err := NewNotification(uuid.New(), "t", "", TypeInfo, CategoryTask)
	require.NoError(t, err)
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n.MarkRead(first)
	n.MarkRead(first.Add(time.Hour))
	require.NotNil(t, n.ReadAt)
	assert.Equal(t, first, *n.ReadAt)
}

func TestPreferences(t *testing.T) {
	p := DefaultPreferences(uuid.New())
	assert.True(t, p.AllowsInApp(CategoryInvoice))

	require.NoError(t, p.Apply(PreferencesUpdate{Categories: map[Category]bool{CategoryInvoice: false}}))
	assert.False(t, p.AllowsInApp(CategoryInvoice))
	assert.True(t, p.AllowsInApp(CategoryTask))

	off := false
	require.NoError(t, p.Apply(PreferencesUpdate{InAppEnabled: &off}))
	assert.False(t, p.AllowsInApp(CategoryTask))

	assert.Error(t, p.Apply(PreferencesUpdate{Categories: map[Category]bool{"weather": true}}))
	bad := "25:00"
	assert.Error(t, p.Apply(PreferencesUpdate{QuietHoursStart: &bad}))
}

func TestPreferences_InQuietHours(t *testing.T) {
	p := DefaultPreferences(uuid.New())
	at := func(h, m int) time.Time { return time.Date(2025, 1, 1, h, m, 0, 0, time.UTC) }
	assert.False(t, p.InQuietHours(at(23, 0)))

	p.QuietHoursStart, p.QuietHoursEnd = "22:00", "07:00"
	assert.True(t, p.InQuietHours(at(23, 0)))
	assert.True(t, p.InQuietHours(at(6, 59)))
	assert.False(t, p.InQuietHours(at(7, 0)))
	assert.False(t, p.InQuietHours(at(12, 0)))

	p.QuietHoursStart, p.QuietHoursEnd = "12:00", "13:00"
	assert.True(t, p.InQuietHours(at(12, 30)))
	assert.False(t, p.InQuietHours(at(13, 30)))
}
