package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/agrilearn/farmbudget-api/internal/models"
)

// SettingsRepository stores the singleton site settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (models.SiteSettings, error)
	Save(ctx context.Context, settings *models.SiteSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository instantiates the repository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the stored settings, falling back to defaults when the row has
// never been written.
func (r *settingsRepository) Get(ctx context.Context) (models.SiteSettings, error) {
	var settings models.SiteSettings
	err := r.db.WithContext(ctx).First(&settings, models.SiteSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSiteSettings(), nil
	}
	if err != nil {
		return models.SiteSettings{}, err
	}

	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.SiteSettings) error {
	settings.ID = models.SiteSettingsID
	return r.db.WithContext(ctx).Save(settings).Error
}
