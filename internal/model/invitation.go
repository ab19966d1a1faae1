package model

import (
	"time"
)

// Invitation statuses. Rows are never deleted; the status column is the
// audit trail.
const (
	InvitationStatusPending   = "pending"
	InvitationStatusAccepted  = "accepted"
	InvitationStatusDeclined  = "declined"
	InvitationStatusCancelled = "cancelled"
)

// MergeInvitation represents a merge proposal from one account to another.
// Once the status leaves "pending" the row is terminal.
type MergeInvitation struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	InviterID   uint       `json:"inviter_id" gorm:"index;not null"`
	InvitedID   uint       `json:"invited_id" gorm:"index;not null"`
	Message     string     `json:"message,omitempty" gorm:"type:varchar(500)"`
	Status      string     `json:"status" gorm:"type:varchar(20);index;not null;default:'pending'"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	// Relations
	Inviter Account `json:"inviter,omitempty" gorm:"foreignKey:InviterID"`
	Invited Account `json:"invited,omitempty" gorm:"foreignKey:InvitedID"`
}

// TableName overrides the default table name
func (MergeInvitation) TableName() string {
	return "account_merge_invitations"
}

// IsExpired reports whether the invitation has passed its expiry time
func (i *MergeInvitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
