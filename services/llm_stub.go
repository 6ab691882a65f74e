package services

import (
	"context"
	"fmt"
	"strings"
)

// StubLlmClient is the default generator when no LLM backend is configured.
// It picks from a fixed Korean menu pool, loosely keyed by the first mood tag.
type StubLlmClient struct{}

var stubMenuPool = []string{"김치찌개", "된장찌개", "비빔밥", "불고기", "파스타", "초밥", "라멘"}

func (s *StubLlmClient) SuggestMenus(_ context.Context, moods []string, weather string, budget int, _, _ float64, _ []string, max int) []MenuSuggestion {
	moodSeed := ""
	if len(moods) > 0 {
		moodSeed = strings.TrimSpace(moods[0])
	}

	var out []MenuSuggestion
	for _, menu := range stubMenuPool {
		if len(out) >= max {
			break
		}
		if moodSeed != "" && !strings.Contains(menu, string([]rune(moodSeed)[0])) {
			continue
		}
		mood := moodSeed
		if mood == "" {
			mood = "일반"
		}
		reason := fmt.Sprintf("%s 은/는 %s 날씨와 %s 분위기에 잘 맞고 예산 %d원 범위에서 선택 쉬움", menu, weather, mood, budget)
		out = append(out, MenuSuggestion{Menu: menu, Reason: reason})
	}

	if len(out) == 0 {
		for _, menu := range stubMenuPool {
			if len(out) >= max {
				break
			}
			out = append(out, MenuSuggestion{Menu: menu, Reason: fmt.Sprintf("%s 기본 추천", menu)})
		}
	}
	return out
}

// The stub has no notion of place association; callers continue without it.
func (s *StubLlmClient) SuggestMenusWithPlaces(_ context.Context, _ []string, _ string, _ int, _, _ float64, _ string, _ int) ([]StructuredMenuPlace, error) {
	return nil, nil
}
