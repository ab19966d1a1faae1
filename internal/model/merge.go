package model

import (
	"time"
)

// Display-settings enumerations. Values outside these sets are rejected
// before persisting.
const (
	DisplayUser1   = "user1"
	DisplayUser2   = "user2"
	DisplayCombine = "combine"

	EntryOrderChronological = "chronological"
)

// MergeSettingsVersion is the current version of the settings document.
const MergeSettingsVersion = 1

// ProfileDisplaySettings controls which account's assets appear on the
// joint public profile.
type ProfileDisplaySettings struct {
	AvatarDisplay    string `json:"avatar_display" validate:"oneof=user1 user2"`
	HeroImageDisplay string `json:"hero_image_display" validate:"oneof=user1 user2"`
	BioDisplay       string `json:"bio_display" validate:"oneof=user1 user2 combine"`
}

// MergeSettings is the versioned display-preference document stored on a
// merge row.
type MergeSettings struct {
	Version         int                    `json:"version"`
	EntryOrder      string                 `json:"entry_order"`
	CrossVisibility bool                   `json:"cross_visibility"`
	ProfileDisplay  ProfileDisplaySettings `json:"profile_display"`
}

// DefaultMergeSettings returns the settings document assigned to a new merge
func DefaultMergeSettings() MergeSettings {
	return MergeSettings{
		Version:         MergeSettingsVersion,
		EntryOrder:      EntryOrderChronological,
		CrossVisibility: true,
		ProfileDisplay: ProfileDisplaySettings{
			AvatarDisplay:    DisplayUser1,
			HeroImageDisplay: DisplayUser1,
			BioDisplay:       DisplayCombine,
		},
	}
}

// Merge represents an active joint identity between two accounts. The row
// exists exactly for the duration of the merge; unmerging deletes it.
// User1 is always the inviter.
type Merge struct {
	ID       uint          `json:"id" gorm:"primaryKey"`
	User1ID  uint          `json:"user1_id" gorm:"index;not null"`
	User2ID  uint          `json:"user2_id" gorm:"index;not null"`
	Slug     string        `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Settings MergeSettings `json:"settings" gorm:"serializer:json"`
	MergedAt time.Time     `json:"merged_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User1 Account `json:"user1,omitempty" gorm:"foreignKey:User1ID"`
	User2 Account `json:"user2,omitempty" gorm:"foreignKey:User2ID"`
}

// TableName overrides the default table name
func (Merge) TableName() string {
	return "account_merges"
}

// Includes reports whether the given account is one of the two members
func (m *Merge) Includes(accountID uint) bool {
	return m.User1ID == accountID || m.User2ID == accountID
}

// PartnerID returns the other member of the merge
func (m *Merge) PartnerID(accountID uint) uint {
	if m.User1ID == accountID {
		return m.User2ID
	}
	return m.User1ID
}
