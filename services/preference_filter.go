package services

import (
	"strings"

	"github.com/qoweh/knut4/models"
)

// FilterMenusByPreference removes candidates whose menu name contains any
// dislike or allergy token (plain substring containment). When filtering
// would remove everything, the original list is returned with the conflict
// flag set so the user still gets suggestions; callers append a conflict
// notice to reason text. A nil preference is a pass-through.
func FilterMenusByPreference(candidates []MenuSuggestion, pref *models.Preference) ([]MenuSuggestion, bool) {
	if pref == nil {
		return candidates, false
	}

	blocked := append(pref.DislikeTokens(), pref.AllergyTokens()...)
	if len(blocked) == 0 {
		return candidates, false
	}

	kept := make([]MenuSuggestion, 0, len(candidates))
	for _, c := range candidates {
		if !containsAnyToken(c.Menu, blocked) {
			kept = append(kept, c)
		}
	}

	if len(kept) == 0 {
		return candidates, true
	}
	return kept, false
}

func containsAnyToken(menu string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(menu, t) {
			return true
		}
	}
	return false
}
