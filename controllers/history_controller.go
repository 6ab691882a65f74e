package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/qoweh/knut4/models"

	"github.com/gin-gonic/gin"
)

type HistoryItem struct {
	ID        uint    `json:"id"`
	Weather   string  `json:"weather"`
	Moods     string  `json:"moods"`
	Budget    int     `json:"budget"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CreatedAt string  `json:"createdAt"`
}

type HistoryPage struct {
	Content       []HistoryItem `json:"content"`
	Page          int           `json:"page"`
	Size          int           `json:"size"`
	TotalElements int64         `json:"totalElements"`
}

// ListHistory returns one page of the caller's recommendation history,
// newest first.
func ListHistory(c *gin.Context) {
	userID := c.GetUint("userID")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 10
	}

	rows, total, err := historyStore.ListForUser(userID, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	items := make([]HistoryItem, 0, len(rows))
	for i := range rows {
		items = append(items, historyItem(&rows[i]))
	}
	c.JSON(http.StatusOK, HistoryPage{
		Content:       items,
		Page:          page,
		Size:          size,
		TotalElements: total,
	})
}

func historyItem(h *models.RecommendationHistory) HistoryItem {
	moods := ""
	if h.Moods != nil {
		moods = *h.Moods
	}
	return HistoryItem{
		ID:        h.ID,
		Weather:   h.Weather,
		Moods:     moods,
		Budget:    h.Budget,
		Latitude:  h.Latitude,
		Longitude: h.Longitude,
		CreatedAt: h.CreatedAt.UTC().Format(time.RFC3339),
	}
}
