package models

import (
	"gorm.io/gorm"
)

// RecommendationHistory stores the request parameters of one recommendation
// call. Rows are write-once; retry and share read them back. UserID is nil for
// anonymous requests.
type RecommendationHistory struct {
	gorm.Model
	UserID    *uint `gorm:"index"`
	Weather   string
	Moods     *string // comma separated, NULL when the request carried none
	Budget    int
	Latitude  float64
	Longitude float64
}

// SharedRecommendation grants unauthenticated read access to one history row
// through an opaque token. At most one row per history; the token is reused on
// repeated share calls.
type SharedRecommendation struct {
	gorm.Model
	UserID    uint `gorm:"index"`
	HistoryID uint `gorm:"index"`
	History   RecommendationHistory
	Token     string `gorm:"uniqueIndex;size:64;not null"`
}
