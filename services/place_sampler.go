package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// PlaceSample is one sampled nearby place handed to the generator as
// grounding context.
type PlaceSample struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// PlaceSampler builds a diversified, de-duplicated sample of nearby places:
// two generic queries plus one exploratory query per mood. Individual query
// failures are swallowed; the sample is best effort.
type PlaceSampler struct {
	provider MapProvider
	maxNames int
}

func NewPlaceSampler(provider MapProvider) *PlaceSampler {
	return &PlaceSampler{provider: provider, maxNames: 20}
}

var genericSampleQueries = []string{"맛집", "음식"}

// moodQueries maps mood tags to exploratory search keywords. Moods without a
// mapping are skipped.
var moodQueries = map[string]string{
	"매콤":    "매운 음식",
	"spicy":  "매운 음식",
	"든든":    "한식",
	"hearty": "한식",
	"가벼운":  "샐러드",
	"light":  "샐러드",
	"달콤":    "디저트",
	"sweet":  "디저트",
}

// categoryKeywords infers a coarse category from a place name; first match
// wins, default "기타".
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"커피", "카페"},
	{"카페", "카페"},
	{"coffee", "카페"},
	{"치킨", "치킨"},
	{"chicken", "치킨"},
	{"피자", "피자"},
	{"pizza", "피자"},
	{"고기", "고기"},
	{"삼겹", "고기"},
	{"갈비", "고기"},
	{"빵", "디저트"},
	{"베이커리", "디저트"},
	{"케이크", "디저트"},
	{"라멘", "라멘"},
	{"라면", "라멘"},
	{"초밥", "초밥"},
	{"스시", "초밥"},
	{"sushi", "초밥"},
	{"중식", "중식"},
	{"중국", "중식"},
	{"일식", "일식"},
	{"양식", "양식"},
}

// SampleNames returns an insertion-ordered, exact-match-deduplicated list of
// nearby place names, capped at the sampler's limit.
func (s *PlaceSampler) SampleNames(ctx context.Context, lat, lon float64, moods []string) []string {
	queries := make([]string, 0, len(genericSampleQueries)+len(moods))
	queries = append(queries, genericSampleQueries...)
	for _, mood := range moods {
		if q, ok := moodQueries[strings.TrimSpace(mood)]; ok {
			queries = append(queries, q)
		}
	}

	seen := make(map[string]struct{})
	var names []string
	for _, query := range queries {
		for _, place := range s.provider.Search(ctx, query, lat, lon, 1000) {
			if _, dup := seen[place.Name]; dup {
				continue
			}
			seen[place.Name] = struct{}{}
			names = append(names, place.Name)
			if len(names) >= s.maxNames {
				return names
			}
		}
	}
	return names
}

// SampleDetails re-resolves each sampled name to one detailed result
// (distance, inferred category). Lookups that fail or come back empty keep
// the name-only sample rather than dropping it.
func (s *PlaceSampler) SampleDetails(ctx context.Context, lat, lon float64, moods []string) []PlaceSample {
	names := s.SampleNames(ctx, lat, lon, moods)
	out := make([]PlaceSample, 0, len(names))
	for _, name := range names {
		sample := PlaceSample{Name: name, Category: inferCategory(name)}
		if results := s.provider.Search(ctx, name, lat, lon, 1000); len(results) > 0 {
			sample.DistanceMeters = results[0].DistanceMeters
		}
		out = append(out, sample)
	}
	return out
}

// SamplesJSON renders samples for embedding in a structured-mode prompt.
func SamplesJSON(samples []PlaceSample) string {
	if len(samples) == 0 {
		return "[]"
	}
	b, err := json.Marshal(samples)
	if err != nil {
		zap.L().Warn("place sample marshal failed", zap.Error(err))
		return "[]"
	}
	return string(b)
}

func inferCategory(name string) string {
	lower := strings.ToLower(name)
	for _, ck := range categoryKeywords {
		if strings.Contains(lower, ck.keyword) {
			return ck.category
		}
	}
	return "기타"
}
