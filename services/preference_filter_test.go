package services

import (
	"testing"

	"github.com/qoweh/knut4/models"

	"github.com/stretchr/testify/assert"
)

func TestFilterMenusRemovesDislikesAndAllergies(t *testing.T) {
	candidates := []MenuSuggestion{
		{Menu: "매운 김치찌개"},
		{Menu: "비빔밥"},
		{Menu: "땅콩 파스타"},
	}
	pref := &models.Preference{Dislikes: "김치", Allergies: "땅콩"}

	kept, conflict := FilterMenusByPreference(candidates, pref)

	assert.False(t, conflict)
	assert.Equal(t, []MenuSuggestion{{Menu: "비빔밥"}}, kept)
}

func TestFilterMenusFallsBackWhenEverythingConflicts(t *testing.T) {
	candidates := []MenuSuggestion{
		{Menu: "김치찌개"},
		{Menu: "김치볶음밥"},
	}
	pref := &models.Preference{Dislikes: "김치"}

	kept, conflict := FilterMenusByPreference(candidates, pref)

	assert.True(t, conflict)
	assert.Equal(t, candidates, kept)
}

func TestFilterMenusPassThroughWithoutPreference(t *testing.T) {
	candidates := []MenuSuggestion{{Menu: "라멘"}}

	kept, conflict := FilterMenusByPreference(candidates, nil)
	assert.False(t, conflict)
	assert.Equal(t, candidates, kept)

	// a preference row without dislike/allergy tokens is also a pass-through
	kept, conflict = FilterMenusByPreference(candidates, &models.Preference{Likes: "초밥", Dislikes: " , "})
	assert.False(t, conflict)
	assert.Equal(t, candidates, kept)
}
