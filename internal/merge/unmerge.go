package merge

import (
	"errors"
	"time"

	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnmergeCoordinator dissolves active merges after the cooling-off period.
type UnmergeCoordinator struct {
	settings SettingsProvider
}

// NewUnmergeCoordinator creates an unmerge coordinator
func NewUnmergeCoordinator(settings SettingsProvider) *UnmergeCoordinator {
	return &UnmergeCoordinator{settings: settings}
}

// Execute dissolves the requesting user's merge: both accounts get their
// original public usernames back and their merge-state columns cleared, the
// merge row is deleted, and an "unmerged" history entry is appended — all in
// one transaction. The redirect rows are deliberately left in place; they
// route the old slug to the choice page from now on.
//
// Returns the merge duration in whole days.
func (uc *UnmergeCoordinator) Execute(db *gorm.DB, requestingUserID uint, reason string) (int, error) {
	var durationDays int

	err := db.Transaction(func(tx *gorm.DB) error {
		// Resolve the requester's merge id without a lock; the merge row
		// lock below is what serializes concurrent unmerges, and locking
		// the requester row first would invert the account lock order.
		var requester model.Account
		err := tx.First(&requester, requestingUserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !requester.IsMerged || requester.MergeID == nil {
			return ErrNotMerged
		}

		var m model.Merge
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, *requester.MergeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotMerged
		}
		if err != nil {
			return err
		}
		if !m.Includes(requester.ID) {
			return ErrNotMerged
		}

		now := time.Now()
		days := DaysSince(m.MergedAt, now)
		cooling := uc.settings.UnmergeCoolingPeriodDays()
		if days < float64(cooling) {
			return &CoolingPeriodError{RemainingDays: cooling - int(days)}
		}

		user1, user2, err := lockAccountPair(tx, m.User1ID, m.User2ID)
		if err != nil {
			return err
		}

		for _, account := range []*model.Account{user1, user2} {
			updates := map[string]interface{}{
				"merge_id":                 nil,
				"is_merged":                false,
				"original_public_username": nil,
			}
			if account.OriginalPublicUsername != nil {
				updates["public_username"] = *account.OriginalPublicUsername
			}
			if err := tx.Model(&model.Account{}).Where("id = ?", account.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&model.Merge{}, m.ID).Error; err != nil {
			return err
		}

		durationDays = int(days)
		return recordUnmerged(tx, &m, durationDays, requestingUserID, reason)
	})

	return durationDays, err
}
