package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qoweh/knut4/models"

	"go.uber.org/zap"
)

// RecommendationRequest carries the contextual signals of one recommendation
// call. Immutable once constructed.
type RecommendationRequest struct {
	Weather   string
	Moods     []string
	Budget    int
	Latitude  float64
	Longitude float64
}

type Place struct {
	Name            string  `json:"name"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Address         string  `json:"address"`
	DistanceMeters  float64 `json:"distanceMeters"`
	DurationMinutes float64 `json:"durationMinutes"`
}

type MenuRecommendation struct {
	MenuName string  `json:"menuName"`
	Reason   string  `json:"reason"`
	Places   []Place `json:"places"`
}

type RecommendationResponse struct {
	MenuRecommendations []MenuRecommendation `json:"menuRecommendations"`
}

const (
	defaultWeather = "기본"
	conflictNotice = " (선호 충돌: 기본 후보 유지)"

	candidateTarget = 10
	maxFinalMenus   = 4
	placeRadius     = 1000
)

// HistoryAccess is the slice of HistoryStore the orchestrator needs.
type HistoryAccess interface {
	Record(userID *uint, weather string, moods []string, budget int, lat, lon float64)
	FindForUser(historyID, userID uint) (*models.RecommendationHistory, error)
	LatestForUser(userID uint) (*models.RecommendationHistory, error)
	ShareToken(history *models.RecommendationHistory, userID uint) (*models.SharedRecommendation, error)
	FindShared(token string) (*models.SharedRecommendation, error)
}

// PreferenceAccess is the read-only preference lookup the orchestrator needs.
type PreferenceAccess interface {
	ForUser(userID uint) (*models.Preference, error)
}

// RecService composes generator, place search, sampling, filtering and
// history recording into the recommend/retry/share operations. External
// dependency failures degrade the result; they never fail the call.
type RecService struct {
	llm      LlmClient
	places   MapProvider
	sampler  *PlaceSampler
	history  HistoryAccess
	prefs    PreferenceAccess
	observer PipelineObserver
}

func NewRecService(llm LlmClient, places MapProvider, history HistoryAccess, prefs PreferenceAccess, observer PipelineObserver) *RecService {
	if observer == nil {
		observer = NopObserver{}
	}
	return &RecService{
		llm:      llm,
		places:   places,
		sampler:  NewPlaceSampler(places),
		history:  history,
		prefs:    prefs,
		observer: observer,
	}
}

// Recommend runs the full pipeline. userID is nil for anonymous callers.
func (s *RecService) Recommend(ctx context.Context, req RecommendationRequest, userID *uint) *RecommendationResponse {
	s.observer.RecommendStarted()
	started := time.Now()

	weather := strings.TrimSpace(req.Weather)
	if weather == "" {
		weather = defaultWeather
	}

	pref := s.lookupPreference(userID)
	genMoods := broadenMoods(req.Moods, pref)

	samples := s.sampler.SampleDetails(ctx, req.Latitude, req.Longitude, genMoods)
	sampleNames := make([]string, 0, len(samples))
	for _, sm := range samples {
		sampleNames = append(sampleNames, sm.Name)
	}

	candidates := s.llm.SuggestMenus(ctx, genMoods, weather, req.Budget, req.Latitude, req.Longitude, sampleNames, candidateTarget)

	associations := map[string][]string{}
	structured, err := s.llm.SuggestMenusWithPlaces(ctx, genMoods, weather, req.Budget, req.Latitude, req.Longitude, SamplesJSON(samples), candidateTarget)
	if err != nil {
		// best effort: continue without place associations
		zap.L().Debug("structured suggestion unavailable", zap.Error(err))
	} else {
		for _, sm := range structured {
			associations[sm.Menu] = sm.Places
		}
	}

	filtered, conflict := FilterMenusByPreference(candidates, pref)
	final := filtered
	if len(final) > maxFinalMenus {
		final = final[:maxFinalMenus]
	}

	menus := make([]MenuRecommendation, 0, len(final))
	for _, c := range final {
		raw := s.places.Search(ctx, c.Menu+" 음식", req.Latitude, req.Longitude, placeRadius)
		ordered := prioritizePlaces(raw, associations[c.Menu])

		places := make([]Place, 0, len(ordered))
		for _, p := range ordered {
			places = append(places, Place{
				Name:            p.Name,
				Latitude:        p.Latitude,
				Longitude:       p.Longitude,
				Address:         p.Address,
				DistanceMeters:  p.DistanceMeters,
				DurationMinutes: estimateDurationMinutes(p.DistanceMeters),
			})
		}

		menus = append(menus, MenuRecommendation{
			MenuName: c.Menu,
			Reason:   buildReason(c, weather, req.Budget, conflict),
			Places:   places,
		})
	}

	// dedup reflects the dominant (pre-filter) recommendation
	s.history.Record(userID, weather, req.Moods, req.Budget, req.Latitude, req.Longitude)

	s.observer.RecommendFinished(len(menus), time.Since(started))
	return &RecommendationResponse{MenuRecommendations: menus}
}

// Retry re-derives the request from a stored history row and re-runs the
// pipeline, producing a fresh candidate set.
func (s *RecService) Retry(ctx context.Context, historyID *uint, userID uint) (*RecommendationResponse, error) {
	history, err := s.resolveHistory(historyID, userID)
	if err != nil {
		return nil, err
	}

	req := requestFromHistory(history)
	uid := userID
	return s.Recommend(ctx, req, &uid), nil
}

// Share issues (or reuses) an opaque token bound to a history row.
func (s *RecService) Share(historyID *uint, userID uint) (*models.SharedRecommendation, error) {
	history, err := s.resolveHistory(historyID, userID)
	if err != nil {
		return nil, err
	}
	return s.history.ShareToken(history, userID)
}

// GetShared resolves a share token to the referenced history's request
// parameters for unauthenticated display.
func (s *RecService) GetShared(token string) (*models.SharedRecommendation, error) {
	return s.history.FindShared(token)
}

func (s *RecService) resolveHistory(historyID *uint, userID uint) (*models.RecommendationHistory, error) {
	if historyID != nil {
		return s.history.FindForUser(*historyID, userID)
	}
	return s.history.LatestForUser(userID)
}

func (s *RecService) lookupPreference(userID *uint) *models.Preference {
	if userID == nil {
		return nil
	}
	pref, err := s.prefs.ForUser(*userID)
	if err != nil {
		zap.L().Warn("preference lookup failed, continuing without", zap.Error(err))
		return nil
	}
	return pref
}

// broadenMoods appends the user's first like token to the generation context
// (not the request's own mood list) when it isn't already present.
func broadenMoods(moods []string, pref *models.Preference) []string {
	if pref == nil {
		return moods
	}
	likes := pref.LikeTokens()
	if len(likes) == 0 {
		return moods
	}
	like := likes[0]
	for _, m := range moods {
		if m == like {
			return moods
		}
	}
	out := make([]string, 0, len(moods)+1)
	out = append(out, moods...)
	return append(out, like)
}

// prioritizePlaces moves model-preferred places to the front in the given
// order; everything else keeps its original relative order. Matching is by
// exact name.
func prioritizePlaces(raw []PlaceResult, preferred []string) []PlaceResult {
	if len(preferred) == 0 {
		return raw
	}

	used := make([]bool, len(raw))
	out := make([]PlaceResult, 0, len(raw))
	for _, name := range preferred {
		for i, p := range raw {
			if !used[i] && p.Name == name {
				out = append(out, p)
				used[i] = true
				break
			}
		}
	}
	for i, p := range raw {
		if !used[i] {
			out = append(out, p)
		}
	}
	return out
}

func buildReason(c MenuSuggestion, weather string, budget int, conflict bool) string {
	reason := strings.TrimSpace(c.Reason)
	if reason == "" {
		reason = c.Menu + " 기본 추천"
	}
	reason += fmt.Sprintf(" | weather:%s budget:%d", weather, budget)
	if conflict {
		reason += conflictNotice
	}
	return reason
}

func requestFromHistory(h *models.RecommendationHistory) RecommendationRequest {
	var moods []string
	if h.Moods != nil && *h.Moods != "" {
		moods = strings.Split(*h.Moods, ",")
	}
	return RecommendationRequest{
		Weather:   h.Weather,
		Moods:     moods,
		Budget:    h.Budget,
		Latitude:  h.Latitude,
		Longitude: h.Longitude,
	}
}
