package profile

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/victorydiv/fojournapp-sub002/internal/merge"
	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"gorm.io/gorm"
)

var validate = validator.New()

// GetDisplaySettings returns the profile_display document of the caller's
// active merge.
func GetDisplaySettings(db *gorm.DB, accountID uint) (*model.ProfileDisplaySettings, error) {
	m, err := merge.CurrentMerge(db, accountID)
	if err != nil {
		return nil, err
	}
	display := m.Settings.ProfileDisplay
	return &display, nil
}

// UpdateDisplaySettings validates the new profile_display values against
// their closed enumerations and persists them on the caller's merge row.
func UpdateDisplaySettings(db *gorm.DB, accountID uint, display model.ProfileDisplaySettings) (*model.ProfileDisplaySettings, error) {
	if err := validate.Struct(display); err != nil {
		return nil, fmt.Errorf("%w: %v", merge.ErrInvalidSetting, err)
	}

	var updated *model.ProfileDisplaySettings
	err := db.Transaction(func(tx *gorm.DB) error {
		m, err := merge.CurrentMerge(tx, accountID)
		if err != nil {
			return err
		}

		settings := m.Settings
		settings.ProfileDisplay = display
		if err := tx.Model(&model.Merge{}).Where("id = ?", m.ID).
			Update("settings", settings).Error; err != nil {
			return err
		}

		updated = &display
		return nil
	})

	return updated, err
}
