package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"gorm.io/gorm"
)

func backdateMerge(t *testing.T, db *gorm.DB, mergeID uint, age time.Duration) {
	t.Helper()
	require.NoError(t, db.Model(&model.Merge{}).
		Where("id = ?", mergeID).
		Update("merged_at", time.Now().Add(-age)).Error)
}

func TestUnmergeRoundTrip(t *testing.T) {
	db := newTestDB(t)
	im := newManager(7)
	uc := NewUnmergeCoordinator(stubSettings{})

	inviter := seedAccount(t, db, "john", "John")
	invited := seedAccount(t, db, "maria", "Maria")
	m := mergePair(t, db, im, inviter, invited)

	backdateMerge(t, db, m.ID, 72*time.Hour)

	duration, err := uc.Execute(db, inviter.ID, "test")
	require.NoError(t, err)
	assert.Equal(t, 3, duration)

	// Both accounts are restored to their pre-merge identity
	for _, before := range []*model.Account{inviter, invited} {
		account := reloadAccount(t, db, before.ID)
		assert.False(t, account.IsMerged)
		assert.Nil(t, account.MergeID)
		assert.Nil(t, account.OriginalPublicUsername)
		assert.Equal(t, before.PublicUsername, account.PublicUsername)
	}

	// The merge row is gone
	var count int64
	require.NoError(t, db.Model(&model.Merge{}).Where("id = ?", m.ID).Count(&count).Error)
	assert.Zero(t, count)

	// The redirect rows survive the unmerge
	var redirects []model.MergeURLRedirect
	require.NoError(t, db.Where("merge_slug = ?", m.Slug).Find(&redirects).Error)
	assert.Len(t, redirects, 2)

	// The ledger gained an unmerged entry with duration and reason
	var entries []model.MergeHistoryEntry
	require.NoError(t, db.Order("id ASC").Find(&entries).Error)
	require.Len(t, entries, 2)
	last := entries[1]
	assert.Equal(t, model.HistoryEventUnmerged, last.Event)
	assert.Less(t, last.User1ID, last.User2ID)
	require.NotNil(t, last.DurationDays)
	assert.Equal(t, 3, *last.DurationDays)
	assert.Equal(t, inviter.ID, last.InitiatorID)
	require.NotNil(t, last.Reason)
	assert.Equal(t, "test", *last.Reason)
}

func TestUnmergeNotMerged(t *testing.T) {
	db := newTestDB(t)
	uc := NewUnmergeCoordinator(stubSettings{})

	account := seedAccount(t, db, "john", "John")

	_, err := uc.Execute(db, account.ID, "")
	assert.ErrorIs(t, err, ErrNotMerged)
}

func TestUnmergeCoolingPeriod(t *testing.T) {
	db := newTestDB(t)
	im := newManager(7)
	uc := NewUnmergeCoordinator(stubSettings{coolingDays: 7})

	inviter := seedAccount(t, db, "john", "John")
	invited := seedAccount(t, db, "maria", "Maria")
	m := mergePair(t, db, im, inviter, invited)

	// Fresh merge: the full cooling period remains
	_, err := uc.Execute(db, inviter.ID, "")
	var cooling *CoolingPeriodError
	require.ErrorAs(t, err, &cooling)
	assert.Equal(t, 7, cooling.RemainingDays)

	// Nothing was dissolved
	account := reloadAccount(t, db, inviter.ID)
	assert.True(t, account.IsMerged)

	// Partway through, the remainder shrinks
	backdateMerge(t, db, m.ID, 5*24*time.Hour)
	_, err = uc.Execute(db, invited.ID, "")
	require.ErrorAs(t, err, &cooling)
	assert.Equal(t, 2, cooling.RemainingDays)

	// At the boundary the unmerge succeeds
	backdateMerge(t, db, m.ID, 7*24*time.Hour)
	duration, err := uc.Execute(db, inviter.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 7, duration)
}

func TestUnmergeDurationIsFloored(t *testing.T) {
	db := newTestDB(t)
	im := newManager(7)
	uc := NewUnmergeCoordinator(stubSettings{})

	inviter := seedAccount(t, db, "john", "John")
	invited := seedAccount(t, db, "maria", "Maria")
	m := mergePair(t, db, im, inviter, invited)

	backdateMerge(t, db, m.ID, 3*24*time.Hour+time.Hour)

	duration, err := uc.Execute(db, invited.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 3, duration)
}

func TestRemergeAfterUnmerge(t *testing.T) {
	db := newTestDB(t)
	im := newManager(7)
	uc := NewUnmergeCoordinator(stubSettings{})

	inviter := seedAccount(t, db, "john", "John")
	invited := seedAccount(t, db, "maria", "Maria")

	first := mergePair(t, db, im, inviter, invited)
	_, err := uc.Execute(db, inviter.ID, "")
	require.NoError(t, err)

	// The pair can merge again; the old slug stays reserved by its
	// redirect rows, so the new merge gets a suffixed slug.
	second := mergePair(t, db, im, inviter, invited)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Equal(t, first.Slug+"-2", second.Slug)
}
