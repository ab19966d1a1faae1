package model

import (
	"time"
)

// History event kinds
const (
	HistoryEventMerged   = "merged"
	HistoryEventUnmerged = "unmerged"
)

// MergeHistoryEntry is one row in the append-only ledger of merge and
// unmerge transitions. Participant ids are stored canonically (smaller id
// first) so the ledger can be queried consistently regardless of who
// initiated an action. Rows are never updated or deleted.
type MergeHistoryEntry struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	User1ID      uint      `json:"user1_id" gorm:"index;not null"`
	User2ID      uint      `json:"user2_id" gorm:"index;not null"`
	Slug         string    `json:"slug" gorm:"type:varchar(100);index;not null"`
	Event        string    `json:"event" gorm:"type:varchar(20);not null"`
	DurationDays *int      `json:"duration_days,omitempty"`
	InitiatorID  uint      `json:"initiator_id" gorm:"not null"`
	Reason       *string   `json:"reason,omitempty" gorm:"type:varchar(500)"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (MergeHistoryEntry) TableName() string {
	return "account_merge_history"
}
