package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordMapProvider serves canned results per keyword; unknown keywords come
// back empty the way a failed soft search would.
type keywordMapProvider struct {
	results map[string][]PlaceResult
	queries []string
}

func (f *keywordMapProvider) Search(_ context.Context, keyword string, _, _ float64, _ int) []PlaceResult {
	f.queries = append(f.queries, keyword)
	return f.results[keyword]
}

func TestSampleNamesDeduplicatesPreservingOrder(t *testing.T) {
	provider := &keywordMapProvider{results: map[string][]PlaceResult{
		"맛집":    {{Name: "한식당A"}, {Name: "카페B"}},
		"음식":    {{Name: "카페B"}, {Name: "분식C"}},
		"매운 음식": {{Name: "매운집D"}, {Name: "한식당A"}},
	}}
	sampler := NewPlaceSampler(provider)

	names := sampler.SampleNames(context.Background(), 37.5, 127.0, []string{"매콤", "낯선무드"})

	assert.Equal(t, []string{"한식당A", "카페B", "분식C", "매운집D"}, names)
	// two generic queries plus one mapped mood; the unmapped mood is skipped
	assert.Equal(t, []string{"맛집", "음식", "매운 음식"}, provider.queries)
}

func TestSampleNamesRespectsCap(t *testing.T) {
	many := make([]PlaceResult, 0, 30)
	for i := 0; i < 30; i++ {
		many = append(many, PlaceResult{Name: string(rune('A' + i))})
	}
	provider := &keywordMapProvider{results: map[string][]PlaceResult{"맛집": many}}
	sampler := NewPlaceSampler(provider)
	sampler.maxNames = 5

	names := sampler.SampleNames(context.Background(), 37.5, 127.0, nil)
	assert.Len(t, names, 5)
}

func TestSampleDetailsResolvesDistanceAndCategory(t *testing.T) {
	provider := &keywordMapProvider{results: map[string][]PlaceResult{
		"맛집":   {{Name: "강남 치킨집"}, {Name: "어딘가"}},
		"강남 치킨집": {{Name: "강남 치킨집", DistanceMeters: 240}},
		// "어딘가" detail lookup fails and stays name-only
	}}
	sampler := NewPlaceSampler(provider)

	samples := sampler.SampleDetails(context.Background(), 37.5, 127.0, nil)

	require.Len(t, samples, 2)
	assert.Equal(t, "강남 치킨집", samples[0].Name)
	assert.Equal(t, "치킨", samples[0].Category)
	assert.InDelta(t, 240, samples[0].DistanceMeters, 0.001)
	assert.Equal(t, "기타", samples[1].Category)
	assert.Zero(t, samples[1].DistanceMeters)
}

func TestInferCategory(t *testing.T) {
	cases := map[string]string{
		"스타 커피":     "카페",
		"BHC치킨 강남점": "치킨",
		"동네 피자":     "피자",
		"왕갈비집":      "고기",
		"프랑스 베이커리":  "디저트",
		"이치란 라멘":    "라멘",
		"사랑 초밥":     "초밥",
		"평범한 가게":    "기타",
	}
	for name, want := range cases {
		assert.Equal(t, want, inferCategory(name), name)
	}
}

func TestSamplesJSON(t *testing.T) {
	assert.Equal(t, "[]", SamplesJSON(nil))

	s := SamplesJSON([]PlaceSample{{Name: "집", Category: "기타", DistanceMeters: 10}})
	assert.Contains(t, s, `"name":"집"`)
	assert.Contains(t, s, `"category":"기타"`)
}
