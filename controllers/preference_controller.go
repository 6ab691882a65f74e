package controllers

import (
	"net/http"

	"github.com/qoweh/knut4/config"
	"github.com/qoweh/knut4/models"

	"github.com/gin-gonic/gin"
)

type PreferenceInput struct {
	Likes     string `json:"likes"`
	Dislikes  string `json:"dislikes"`
	Allergies string `json:"allergies"`
	DietTypes string `json:"dietTypes"`
	Notes     string `json:"notes"`
}

type PreferenceOutput struct {
	ID        uint   `json:"id"`
	Likes     string `json:"likes"`
	Dislikes  string `json:"dislikes"`
	Allergies string `json:"allergies"`
	DietTypes string `json:"dietTypes"`
	Notes     string `json:"notes"`
}

func GetPreference(c *gin.Context) {
	userID := c.GetUint("userID")

	var pref models.Preference
	if err := config.DB.Where("user_id = ?", userID).First(&pref).Error; err != nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, preferenceOutput(&pref))
}

// UpsertPreference creates or replaces the caller's single preference row.
func UpsertPreference(c *gin.Context) {
	userID := c.GetUint("userID")

	var input PreferenceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var pref models.Preference
	if err := config.DB.Where("user_id = ?", userID).First(&pref).Error; err != nil {
		pref = models.Preference{UserID: userID}
	}
	pref.Likes = input.Likes
	pref.Dislikes = input.Dislikes
	pref.Allergies = input.Allergies
	pref.DietTypes = input.DietTypes
	pref.Notes = input.Notes

	if err := config.DB.Save(&pref).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save preference"})
		return
	}
	c.JSON(http.StatusOK, preferenceOutput(&pref))
}

func preferenceOutput(p *models.Preference) PreferenceOutput {
	return PreferenceOutput{
		ID:        p.ID,
		Likes:     p.Likes,
		Dislikes:  p.Dislikes,
		Allergies: p.Allergies,
		DietTypes: p.DietTypes,
		Notes:     p.Notes,
	}
}
