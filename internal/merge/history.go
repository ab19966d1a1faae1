package merge

import (
	"time"

	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"gorm.io/gorm"
)

// canonicalPair orders two account ids smaller-first, the convention for
// history rows.
func canonicalPair(a, b uint) (uint, uint) {
	if b < a {
		return b, a
	}
	return a, b
}

// recordMerged appends a "merged" entry to the history ledger inside the
// caller's transaction.
func recordMerged(tx *gorm.DB, m *model.Merge, initiatorID uint) error {
	user1, user2 := canonicalPair(m.User1ID, m.User2ID)
	entry := model.MergeHistoryEntry{
		User1ID:     user1,
		User2ID:     user2,
		Slug:        m.Slug,
		Event:       model.HistoryEventMerged,
		InitiatorID: initiatorID,
	}
	return tx.Create(&entry).Error
}

// recordUnmerged appends an "unmerged" entry with the merge duration and the
// optional reason inside the caller's transaction.
func recordUnmerged(tx *gorm.DB, m *model.Merge, durationDays int, initiatorID uint, reason string) error {
	user1, user2 := canonicalPair(m.User1ID, m.User2ID)
	entry := model.MergeHistoryEntry{
		User1ID:      user1,
		User2ID:      user2,
		Slug:         m.Slug,
		Event:        model.HistoryEventUnmerged,
		DurationDays: &durationDays,
		InitiatorID:  initiatorID,
	}
	if reason != "" {
		entry.Reason = &reason
	}
	return tx.Create(&entry).Error
}

// HistoryForAccount returns the chronological merge/unmerge ledger for one
// account. The ledger is read-only; nothing in this service updates or
// deletes entries.
func HistoryForAccount(db *gorm.DB, accountID uint) ([]model.MergeHistoryEntry, error) {
	var entries []model.MergeHistoryEntry
	err := db.
		Where("user1_id = ? OR user2_id = ?", accountID, accountID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// DaysSince returns the number of whole and fractional days elapsed since t
func DaysSince(t, now time.Time) float64 {
	return now.Sub(t).Hours() / 24
}
