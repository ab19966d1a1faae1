package model

import (
	"time"

	"gorm.io/gorm"
)

// TravelEntry is the slice of the surrounding travel-journal schema this
// service reads. The journal service owns these rows; the profile resolver
// only aggregates public-entry and media counts from them.
type TravelEntry struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	AccountID  uint           `json:"account_id" gorm:"index;not null"`
	Title      string         `json:"title" gorm:"type:varchar(200)"`
	IsPublic   bool           `json:"is_public" gorm:"index;default:false"`
	PhotoCount int            `json:"photo_count" gorm:"default:0"`
	VideoCount int            `json:"video_count" gorm:"default:0"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName overrides the default table name
func (TravelEntry) TableName() string {
	return "travel_entries"
}
