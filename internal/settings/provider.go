package settings

import (
	"strconv"

	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"github.com/victorydiv/fojournapp-sub002/pkg/config"
	"github.com/victorydiv/fojournapp-sub002/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Provider reads merge-related settings from the shared app_settings table.
// The admin surface of the main application owns that table; any missing or
// unreadable row falls back to the configured default so a settings outage
// never fails a merge request.
type Provider struct {
	db       *gorm.DB
	defaults config.MergeConfig
}

// NewProvider creates a settings provider backed by the given database
func NewProvider(db *gorm.DB, cfg *config.Config) *Provider {
	return &Provider{
		db:       db,
		defaults: cfg.Merge,
	}
}

// InvitationExpiryDays returns how many days a merge invitation stays open
func (p *Provider) InvitationExpiryDays() int {
	return p.intSetting(model.SettingInvitationExpiryDays, p.defaults.InvitationExpiryDays)
}

// UnmergeCoolingPeriodDays returns the minimum number of days a merge must
// exist before it can be dissolved
func (p *Provider) UnmergeCoolingPeriodDays() int {
	return p.intSetting(model.SettingUnmergeCoolingPeriodDays, p.defaults.UnmergeCoolingPeriodDays)
}

func (p *Provider) intSetting(key string, fallback int) int {
	if p.db == nil {
		return fallback
	}

	var setting model.AppSetting
	if err := p.db.Where("setting_key = ?", key).First(&setting).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.GetLogger().Warn("Failed to read setting, using default",
				zap.String("key", key),
				zap.Error(err))
		}
		return fallback
	}

	value, err := strconv.Atoi(setting.Value)
	if err != nil || value < 0 {
		logger.GetLogger().Warn("Invalid setting value, using default",
			zap.String("key", key),
			zap.String("value", setting.Value))
		return fallback
	}

	return value
}
