package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/period-engine/navigation"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPreference_SaveAndGet(t *testing.T) {
	// GIVEN: a fresh store
	// WHEN: saving a preference and reading it back
	// THEN: every field round-trips and timestamps are set

	store := newTestStore(t)
	ctx := context.Background()

	err := store.SavePreference(ctx, Preference{
		UserID:          "user-1",
		ViewRange:       "3M",
		FiscalYearStart: "04-06",
		Locale:          "en_GB",
	})
	require.NoError(t, err)

	got, err := store.GetPreference(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "3M", got.ViewRange)
	assert.Equal(t, "04-06", got.FiscalYearStart)
	assert.Equal(t, "en_GB", got.Locale)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, navigation.FiscalCalendar{Custom: true, StartMonth: time.April, StartDay: 6}, got.Fiscal())
}

func TestPreference_GetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetPreference(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPreference_SaveUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePreference(ctx, Preference{UserID: "user-1", ViewRange: "1M"}))
	require.NoError(t, store.SavePreference(ctx, Preference{UserID: "user-1", ViewRange: "YTD", Locale: "nl_NL"}))

	prefs, err := store.ListPreferences(ctx)
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	assert.Equal(t, "YTD", prefs[0].ViewRange)
	assert.Equal(t, "nl_NL", prefs[0].Locale)
}

func TestPreference_SaveRejectsUnusableValues(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.SavePreference(ctx, Preference{UserID: "user-1", ViewRange: "fortnight"})
	assert.ErrorIs(t, err, navigation.ErrUnsupportedFrequency)

	err = store.SavePreference(ctx, Preference{UserID: "user-1", FiscalYearStart: "13-01"})
	assert.ErrorIs(t, err, navigation.ErrInvalidFiscalYearStart)

	err = store.SavePreference(ctx, Preference{UserID: " "})
	assert.Error(t, err)

	prefs, err := store.ListPreferences(ctx)
	require.NoError(t, err)
	assert.Empty(t, prefs)
}

func TestPreference_EmptyFiscalStartIsCalendarYear(t *testing.T) {
	assert.Equal(t, navigation.FiscalCalendar{}, Preference{}.Fiscal())
}

func TestPreference_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SavePreference(ctx, Preference{UserID: "user-1"}))

	require.NoError(t, store.DeletePreference(ctx, "user-1"))
	assert.ErrorIs(t, store.DeletePreference(ctx, "user-1"), ErrPreferenceNotFound)
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SavePreference(ctx, Preference{UserID: "a"}))
	require.NoError(t, store.SavePreference(ctx, Preference{UserID: "b"}))

	require.NoError(t, store.Reset(ctx))

	prefs, err := store.ListPreferences(ctx)
	require.NoError(t, err)
	assert.Empty(t, prefs)
}
