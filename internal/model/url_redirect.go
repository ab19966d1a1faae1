package model

import (
	"time"
)

// MergeURLRedirect is the permanent memory that a slug once named a pair of
// accounts. One row is written per original identity when a merge is
// created, and the rows are never deleted on unmerge — they are the routing
// key for the post-unmerge choice page.
type MergeURLRedirect struct {
	ID                     uint      `json:"id" gorm:"primaryKey"`
	OriginalUsername       string    `json:"original_username" gorm:"type:varchar(50);index;not null"`
	OriginalPublicUsername string    `json:"original_public_username" gorm:"type:varchar(100)"`
	UserID                 uint      `json:"user_id" gorm:"index;not null"`
	MergeID                uint      `json:"merge_id" gorm:"index;not null"`
	MergeSlug              string    `json:"merge_slug" gorm:"type:varchar(100);index;not null"`
	User1ID                uint      `json:"user1_id" gorm:"not null"`
	User2ID                uint      `json:"user2_id" gorm:"not null"`
	CreatedAt              time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (MergeURLRedirect) TableName() string {
	return "merge_url_redirects"
}
