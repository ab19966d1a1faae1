package merge

import (
	"errors"
	"strings"
	"time"

	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsProvider supplies the tunable durations of the merge workflow.
// Implementations must fall back to defaults rather than fail.
type SettingsProvider interface {
	InvitationExpiryDays() int
	UnmergeCoolingPeriodDays() int
}

// InvitationManager owns the lifecycle of merge proposals. Every mutating
// operation receives a request-scoped database handle and performs its
// eligibility checks inside the same transaction as the mutation, holding
// row locks on both participating accounts.
type InvitationManager struct {
	settings SettingsProvider
}

// NewInvitationManager creates an invitation manager
func NewInvitationManager(settings SettingsProvider) *InvitationManager {
	return &InvitationManager{settings: settings}
}

// Send creates a pending invitation from inviterID to the account named by
// identifier (username, public username, or email). Both parties must be
// unmerged and free of pending invitations.
func (im *InvitationManager) Send(db *gorm.DB, inviterID uint, identifier, message string) (*model.MergeInvitation, error) {
	var invitation *model.MergeInvitation

	err := db.Transaction(func(tx *gorm.DB) error {
		invited, err := findAccountByIdentifier(tx, identifier)
		if err != nil {
			return err
		}
		if invited.ID == inviterID {
			return ErrSelfInvitation
		}

		inviter, invited, err := lockAccountPair(tx, inviterID, invited.ID)
		if err != nil {
			return err
		}

		if err := checkEligibility(tx, inviter, invited, 0); err != nil {
			return err
		}

		now := time.Now()
		row := &model.MergeInvitation{
			InviterID: inviter.ID,
			InvitedID: invited.ID,
			Message:   message,
			Status:    model.InvitationStatusPending,
			ExpiresAt: now.AddDate(0, 0, im.settings.InvitationExpiryDays()),
		}
		if err := tx.Create(row).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return err
		}

		invitation = row
		return nil
	})

	return invitation, err
}

// Accept validates and accepts a pending invitation on behalf of the
// invited user, then executes the merge within the same transaction. An
// invitation found expired is cancelled and the call fails with ErrExpired.
func (im *InvitationManager) Accept(db *gorm.DB, invitationID, respondingUserID uint) (*model.Merge, error) {
	var merged *model.Merge

	err := db.Transaction(func(tx *gorm.DB) error {
		var inv model.MergeInvitation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND invited_id = ? AND status = ?",
				invitationID, respondingUserID, model.InvitationStatusPending).
			First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFoundOrProcessed
		}
		if err != nil {
			return err
		}

		now := time.Now()
		if inv.IsExpired(now) {
			// The cancellation is written after this transaction rolls
			// back; see below.
			return ErrExpired
		}

		inviter, invited, err := lockAccountPair(tx, inv.InviterID, inv.InvitedID)
		if err != nil {
			return err
		}

		// Re-validate both parties. Having been invited does not
		// guarantee acceptance: either side may have merged or invited
		// someone else since.
		if err := checkEligibility(tx, inviter, invited, inv.ID); err != nil {
			return err
		}

		m, err := executeMerge(tx, &inv, inviter, invited, now)
		if err != nil {
			return err
		}

		if err := tx.Model(&inv).Updates(map[string]interface{}{
			"status":       model.InvitationStatusAccepted,
			"responded_at": now,
		}).Error; err != nil {
			return err
		}

		merged = m
		return nil
	})

	// An expired invitation transitions to cancelled even though the accept
	// fails. This write happens outside the rolled-back transaction and is
	// guarded by the pending status.
	if errors.Is(err, ErrExpired) {
		now := time.Now()
		db.Model(&model.MergeInvitation{}).
			Where("id = ? AND status = ?", invitationID, model.InvitationStatusPending).
			Updates(map[string]interface{}{
				"status":       model.InvitationStatusCancelled,
				"responded_at": now,
			})
	}

	return merged, err
}

// Decline marks a pending invitation declined. Only the invited party may
// decline.
func (im *InvitationManager) Decline(db *gorm.DB, invitationID, respondingUserID uint) error {
	return closeInvitation(db, invitationID, "invited_id", respondingUserID, model.InvitationStatusDeclined)
}

// Cancel withdraws a pending invitation. Only the inviter may cancel.
func (im *InvitationManager) Cancel(db *gorm.DB, invitationID, inviterID uint) error {
	return closeInvitation(db, invitationID, "inviter_id", inviterID, model.InvitationStatusCancelled)
}

func closeInvitation(db *gorm.DB, invitationID uint, ownerColumn string, ownerID uint, status string) error {
	result := db.Model(&model.MergeInvitation{}).
		Where("id = ? AND "+ownerColumn+" = ? AND status = ?",
			invitationID, ownerID, model.InvitationStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFoundOrProcessed
	}
	return nil
}

// PendingInvitationsFor returns the caller's open invitations, sent and
// received, with the counterpart accounts preloaded.
func PendingInvitationsFor(db *gorm.DB, accountID uint) (sent, received []model.MergeInvitation, err error) {
	err = db.Preload("Invited").
		Where("inviter_id = ? AND status = ?", accountID, model.InvitationStatusPending).
		Order("created_at ASC").
		Find(&sent).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Preload("Inviter").
		Where("invited_id = ? AND status = ?", accountID, model.InvitationStatusPending).
		Order("created_at ASC").
		Find(&received).Error
	if err != nil {
		return nil, nil, err
	}

	return sent, received, nil
}

// findAccountByIdentifier resolves an invitation target by username, public
// username, or email, in that order.
func findAccountByIdentifier(tx *gorm.DB, identifier string) (*model.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrNotFound
	}

	for _, column := range []string{"username", "public_username", "email"} {
		var account model.Account
		err := tx.Where(column+" = ?", identifier).First(&account).Error
		if err == nil {
			return &account, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

// lockAccountPair loads both accounts under FOR UPDATE row locks. Rows are
// locked in id order so two overlapping operations always serialize instead
// of deadlocking.
func lockAccountPair(tx *gorm.DB, firstID, secondID uint) (first, second *model.Account, err error) {
	var accounts []model.Account
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", []uint{firstID, secondID}).
		Order("id ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, nil, err
	}
	if len(accounts) != 2 {
		return nil, nil, ErrNotFound
	}

	for i := range accounts {
		switch accounts[i].ID {
		case firstID:
			first = &accounts[i]
		case secondID:
			second = &accounts[i]
		}
	}
	return first, second, nil
}

// checkEligibility enforces the shared preconditions for sending and
// accepting: neither party merged, neither party holding another pending
// invitation. excludeInvitationID skips the invitation currently being
// processed. Must run inside the mutating transaction with both account
// rows locked.
func checkEligibility(tx *gorm.DB, a, b *model.Account, excludeInvitationID uint) error {
	if a.IsMerged || b.IsMerged {
		return ErrAlreadyMerged
	}

	for _, account := range []*model.Account{a, b} {
		pending, err := hasPendingInvitation(tx, account.ID, excludeInvitationID)
		if err != nil {
			return err
		}
		if pending {
			return ErrHasActiveInvitation
		}
	}

	return nil
}

func hasPendingInvitation(tx *gorm.DB, accountID, excludeInvitationID uint) (bool, error) {
	query := tx.Model(&model.MergeInvitation{}).
		Where("status = ?", model.InvitationStatusPending).
		Where("inviter_id = ? OR invited_id = ?", accountID, accountID)
	if excludeInvitationID != 0 {
		query = query.Where("id <> ?", excludeInvitationID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// isUniqueViolation detects unique-constraint failures across the postgres
// and sqlite drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
