package models

import (
	"strings"

	"gorm.io/gorm"
)

// One Preference row per user; all token fields are free-text, comma separated.
type Preference struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null"`
	User   User

	Likes     string `gorm:"size:500"`
	Dislikes  string `gorm:"size:500"`
	Allergies string `gorm:"size:500"`
	DietTypes string `gorm:"size:500"` // e.g. vegan, keto
	Notes     string `gorm:"size:1000"`
}

func (p *Preference) LikeTokens() []string    { return splitTokens(p.Likes) }
func (p *Preference) DislikeTokens() []string { return splitTokens(p.Dislikes) }
func (p *Preference) AllergyTokens() []string { return splitTokens(p.Allergies) }

func splitTokens(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
