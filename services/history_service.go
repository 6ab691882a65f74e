package services

import (
	"errors"
	"strings"
	"time"

	"github.com/qoweh/knut4/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrHistoryNotFound = errors.New("recommendation history not found")
	ErrSharedNotFound  = errors.New("shared recommendation not found")
)

// dedupWindow is the interval within which an identical request from the same
// user is not re-recorded.
const dedupWindow = 2 * time.Second

// HistoryStore persists recommendation requests and share tokens. Recording
// is fire-and-forget: lookup or insert failures are logged and swallowed so a
// recommendation response never fails on history persistence.
type HistoryStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db, now: time.Now}
}

// Record inserts one history row unless the user's most recent row carries
// the identical tuple and was created inside the dedup window. Anonymous
// requests are always recorded and never deduplicated against other rows.
func (h *HistoryStore) Record(userID *uint, weather string, moods []string, budget int, lat, lon float64) {
	normalized := normalizeMoods(moods)

	if userID != nil {
		var last models.RecommendationHistory
		err := h.db.Where("user_id = ?", *userID).Order("created_at DESC").First(&last).Error
		switch {
		case err == nil:
			if sameRequestTuple(&last, weather, normalized, budget, lat, lon) &&
				h.now().Sub(last.CreatedAt) < dedupWindow {
				zap.L().Debug("duplicate recommendation request inside dedup window, skipping history insert",
					zap.Uint("userID", *userID))
				return
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first request for this user
		default:
			zap.L().Warn("history dedup lookup failed, inserting anyway", zap.Error(err))
		}
	}

	row := models.RecommendationHistory{
		UserID:    userID,
		Weather:   weather,
		Moods:     normalized,
		Budget:    budget,
		Latitude:  lat,
		Longitude: lon,
	}
	if err := h.db.Create(&row).Error; err != nil {
		zap.L().Warn("failed to record recommendation history", zap.Error(err))
	}
}

// FindForUser resolves a history row by id, scoped to its owner.
func (h *HistoryStore) FindForUser(historyID, userID uint) (*models.RecommendationHistory, error) {
	var row models.RecommendationHistory
	err := h.db.Where("id = ? AND user_id = ?", historyID, userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// LatestForUser resolves the user's most recent history row.
func (h *HistoryStore) LatestForUser(userID uint) (*models.RecommendationHistory, error) {
	var row models.RecommendationHistory
	err := h.db.Where("user_id = ?", userID).Order("created_at DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListForUser returns one page of the user's history, newest first.
func (h *HistoryStore) ListForUser(userID uint, page, size int) ([]models.RecommendationHistory, int64, error) {
	var total int64
	if err := h.db.Model(&models.RecommendationHistory{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.RecommendationHistory
	err := h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(page * size).
		Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ShareToken returns the existing share row for a history, creating one with
// a fresh unique token on first use.
func (h *HistoryStore) ShareToken(history *models.RecommendationHistory, userID uint) (*models.SharedRecommendation, error) {
	var existing models.SharedRecommendation
	err := h.db.Where("history_id = ?", history.ID).First(&existing).Error
	if err == nil {
		existing.History = *history
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	shared := models.SharedRecommendation{
		UserID:    userID,
		HistoryID: history.ID,
		Token:     uuid.NewString(),
	}
	if err := h.db.Create(&shared).Error; err != nil {
		return nil, err
	}
	shared.History = *history
	return &shared, nil
}

// FindShared resolves a share token together with its history row.
func (h *HistoryStore) FindShared(token string) (*models.SharedRecommendation, error) {
	var shared models.SharedRecommendation
	err := h.db.Preload("History").Where("token = ?", token).First(&shared).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSharedNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shared, nil
}

// normalizeMoods joins mood tags into the canonical comma-separated form used
// for storage and dedup comparison: trimmed, empties dropped, NULL when none
// remain.
func normalizeMoods(moods []string) *string {
	var kept []string
	for _, m := range moods {
		m = strings.TrimSpace(m)
		if m != "" {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	joined := strings.Join(kept, ",")
	return &joined
}

func sameRequestTuple(last *models.RecommendationHistory, weather string, moods *string, budget int, lat, lon float64) bool {
	if last.Weather != weather || last.Budget != budget || last.Latitude != lat || last.Longitude != lon {
		return false
	}
	if (last.Moods == nil) != (moods == nil) {
		return false
	}
	return last.Moods == nil || *last.Moods == *moods
}
