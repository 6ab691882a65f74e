package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetWeather returns a pseudo-weather token inferred from the time of day.
// Placeholder until a real weather provider is wired in.
func GetWeather(c *gin.Context) {
	hour := time.Now().Hour()
	var w string
	switch {
	case hour >= 6 && hour < 11:
		w = "맑음"
	case hour < 16:
		w = "따뜻"
	case hour < 20:
		w = "선선"
	default:
		w = "밤"
	}
	c.JSON(http.StatusOK, gin.H{"weather": w})
}
