package merge

import (
	"errors"
	"time"

	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"gorm.io/gorm"
)

// executeMerge performs the atomic transition from two independent accounts
// to one joint public identity. It runs inside the caller's transaction,
// with both account rows already locked, and writes:
//
//  1. the account_merges row with a fresh slug and default settings,
//  2. both accounts' merge-state columns,
//  3. one merge_url_redirects row per original identity (permanent),
//  4. the "merged" history entry.
//
// Any failure rolls back the whole set; the invitation stays pending so the
// caller may retry.
func executeMerge(tx *gorm.DB, inv *model.MergeInvitation, inviter, invited *model.Account, now time.Time) (*model.Merge, error) {
	slug, err := GenerateSlug(tx, inviter, invited)
	if err != nil {
		return nil, err
	}

	m := &model.Merge{
		User1ID:  inviter.ID,
		User2ID:  invited.ID,
		Slug:     slug,
		Settings: model.DefaultMergeSettings(),
		MergedAt: now,
	}
	if err := tx.Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	for _, account := range []*model.Account{inviter, invited} {
		updates := map[string]interface{}{
			"merge_id":        m.ID,
			"is_merged":       true,
			"public_username": slug,
		}
		// Preserve the pre-merge public username for restoration on
		// unmerge. Never clobber a value left by an earlier merge.
		if account.OriginalPublicUsername == nil {
			updates["original_public_username"] = account.PublicUsername
		}
		if err := tx.Model(&model.Account{}).Where("id = ?", account.ID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	for _, account := range []*model.Account{inviter, invited} {
		redirect := model.MergeURLRedirect{
			OriginalUsername:       account.Username,
			OriginalPublicUsername: account.PublicUsername,
			UserID:                 account.ID,
			MergeID:                m.ID,
			MergeSlug:              slug,
			User1ID:                inviter.ID,
			User2ID:                invited.ID,
		}
		if err := tx.Create(&redirect).Error; err != nil {
			return nil, err
		}
	}

	// The merge materializes on acceptance, so the invited user is the
	// initiator of the merged event.
	if err := recordMerged(tx, m, invited.ID); err != nil {
		return nil, err
	}

	return m, nil
}

// CurrentMerge returns the active merge for an account, or ErrNotMerged.
func CurrentMerge(db *gorm.DB, accountID uint) (*model.Merge, error) {
	var account model.Account
	if err := db.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !account.IsMerged || account.MergeID == nil {
		return nil, ErrNotMerged
	}

	var m model.Merge
	err := db.Preload("User1").Preload("User2").First(&m, *account.MergeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotMerged
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
