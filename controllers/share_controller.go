package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/qoweh/knut4/models"
	"github.com/qoweh/knut4/services"

	"github.com/gin-gonic/gin"
)

type SharedOutput struct {
	Token     string  `json:"token"`
	HistoryID uint    `json:"historyId"`
	Weather   string  `json:"weather"`
	Moods     string  `json:"moods"`
	Budget    int     `json:"budget"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	CreatedAt string  `json:"createdAt"`
}

// Share creates (or reuses) a share token for one of the caller's history
// rows.
func Share(c *gin.Context) {
	userID := c.GetUint("userID")

	historyID, ok := optionalHistoryID(c)
	if !ok {
		return
	}

	shared, err := recService.Share(historyID, userID)
	if err != nil {
		if errors.Is(err, services.ErrHistoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recommendation history not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sharedOutput(shared))
}

// GetShared returns the request parameters behind a share token; no
// authentication required.
func GetShared(c *gin.Context) {
	shared, err := recService.GetShared(c.Param("token"))
	if err != nil {
		if errors.Is(err, services.ErrSharedNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "shared recommendation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sharedOutput(shared))
}

func sharedOutput(s *models.SharedRecommendation) SharedOutput {
	moods := ""
	if s.History.Moods != nil {
		moods = *s.History.Moods
	}
	return SharedOutput{
		Token:     s.Token,
		HistoryID: s.HistoryID,
		Weather:   s.History.Weather,
		Moods:     moods,
		Budget:    s.History.Budget,
		Latitude:  s.History.Latitude,
		Longitude: s.History.Longitude,
		CreatedAt: s.History.CreatedAt.UTC().Format(time.RFC3339),
	}
}
