package services

import (
	"errors"

	"github.com/qoweh/knut4/models"

	"gorm.io/gorm"
)

// PreferenceStore is the read-only preference lookup the pipeline consumes.
type PreferenceStore struct {
	db *gorm.DB
}

func NewPreferenceStore(db *gorm.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// ForUser returns the user's preference row, or nil when none exists.
func (s *PreferenceStore) ForUser(userID uint) (*models.Preference, error) {
	var pref models.Preference
	err := s.db.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}
