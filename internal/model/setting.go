package model

import (
	"time"
)

// Setting keys consumed by this service
const (
	SettingInvitationExpiryDays     = "merge_invitation_expiry_days"
	SettingUnmergeCoolingPeriodDays = "merge_unmerge_cooling_period_days"
)

// AppSetting is a key/value row in the application-wide settings table. The
// admin surface of the main application writes these; this service only
// reads them.
type AppSetting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"column:setting_key;type:varchar(100);uniqueIndex;not null"`
	Value     string    `json:"value" gorm:"column:setting_value;type:varchar(500)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name
func (AppSetting) TableName() string {
	return "app_settings"
}
