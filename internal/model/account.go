package model

import (
	"time"

	"gorm.io/gorm"
)

// Account represents a user account as seen by the merge subsystem. The rest
// of the application owns most of these columns; this service owns the three
// merge-state columns (merge_id, is_merged, original_public_username) and
// must keep them consistent with the account_merges table in the same
// transaction.
type Account struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	Username       string `json:"username" gorm:"type:varchar(50);uniqueIndex"`
	Email          string `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	FirstName      string `json:"first_name,omitempty" gorm:"type:varchar(50)"`
	PublicUsername string `json:"public_username" gorm:"type:varchar(100);index"`
	Bio            string `json:"bio,omitempty" gorm:"type:text"`
	AvatarURL      string `json:"avatar_url,omitempty" gorm:"type:varchar(500)"`
	HeroImageURL   string `json:"hero_image_url,omitempty" gorm:"type:varchar(500)"`
	ProfilePublic  bool   `json:"profile_public" gorm:"default:true"`

	// Merge state. IsMerged is true exactly when MergeID references a live
	// account_merges row containing this account.
	MergeID                *uint   `json:"merge_id,omitempty" gorm:"index"`
	IsMerged               bool    `json:"is_merged" gorm:"default:false"`
	OriginalPublicUsername *string `json:"-" gorm:"type:varchar(100)"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName overrides the default table name
func (Account) TableName() string {
	return "accounts"
}

// DisplayName returns the name used when building merge slugs and public
// profile cards: the first name when present, the username otherwise.
func (a *Account) DisplayName() string {
	if a.FirstName != "" {
		return a.FirstName
	}
	return a.Username
}
