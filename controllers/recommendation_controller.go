package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/qoweh/knut4/services"

	"github.com/gin-gonic/gin"
)

type RecommendInput struct {
	Weather   string   `json:"weather"`
	Moods     []string `json:"moods" binding:"max=5"`
	Budget    *int     `json:"budget" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// Recommend runs the pipeline. Works for anonymous callers too; their history
// rows carry no user.
func Recommend(c *gin.Context) {
	var input RecommendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := services.RecommendationRequest{
		Weather:   input.Weather,
		Moods:     input.Moods,
		Budget:    *input.Budget,
		Latitude:  *input.Latitude,
		Longitude: *input.Longitude,
	}

	resp := recService.Recommend(c.Request.Context(), req, currentUserID(c))
	c.JSON(http.StatusOK, resp)
}

// Retry re-runs the pipeline with the inputs of a stored history row: the
// given historyId (must belong to the caller) or the caller's most recent.
func Retry(c *gin.Context) {
	userID := c.GetUint("userID")

	historyID, ok := optionalHistoryID(c)
	if !ok {
		return
	}

	resp, err := recService.Retry(c.Request.Context(), historyID, userID)
	if err != nil {
		if errors.Is(err, services.ErrHistoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recommendation history not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// optionalHistoryID parses the historyId query param; writes a 400 and
// returns ok=false when it is present but malformed.
func optionalHistoryID(c *gin.Context) (*uint, bool) {
	raw := c.Query("historyId")
	if raw == "" {
		return nil, true
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "historyId must be a positive integer"})
		return nil, false
	}
	id := uint(parsed)
	return &id, true
}
