package services

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/qoweh/knut4/config"
	"github.com/qoweh/knut4/utils"

	"go.uber.org/zap"
)

// PlaceResult is one place returned by a map provider, with its distance from
// the search origin.
type PlaceResult struct {
	Name           string
	Latitude       float64
	Longitude      float64
	Address        string
	DistanceMeters float64
}

// MapProvider is the strategy interface for keyword+geo place search. Place
// search is a soft dependency: implementations collapse every failure
// (missing credentials, network, parse) into an empty result list.
type MapProvider interface {
	Search(ctx context.Context, keyword string, lat, lon float64, radiusMeters int) []PlaceResult
}

// NewMapProvider selects the provider implementation configured at startup.
func NewMapProvider(cfg *config.AppConfig) MapProvider {
	if cfg.MapProvider == "kakao" {
		return NewKakaoMapProvider(cfg.KakaoBaseURL, cfg.KakaoRESTAPIKey)
	}
	return &StubMapProvider{}
}

const (
	kakaoMaxRadiusMeters = 20000
	placeSearchTimeout   = 3 * time.Second
)

// KakaoMapProvider calls the Kakao Local keyword search API.
type KakaoMapProvider struct {
	client  *http.Client
	baseURL string
	restKey string
}

func NewKakaoMapProvider(baseURL, restKey string) *KakaoMapProvider {
	return &KakaoMapProvider{
		client:  &http.Client{Timeout: placeSearchTimeout},
		baseURL: baseURL,
		restKey: restKey,
	}
}

type kakaoSearchResponse struct {
	Documents []struct {
		PlaceName       string `json:"place_name"`
		AddressName     string `json:"address_name"`
		RoadAddressName string `json:"road_address_name"`
		X               string `json:"x"` // longitude
		Y               string `json:"y"` // latitude
	} `json:"documents"`
}

func (k *KakaoMapProvider) Search(ctx context.Context, keyword string, lat, lon float64, radiusMeters int) []PlaceResult {
	if k.restKey == "" {
		zap.L().Warn("kakao REST key not configured; returning empty result")
		return nil
	}

	radius := radiusMeters
	if radius > kakaoMaxRadiusMeters {
		radius = kakaoMaxRadiusMeters
	}
	if radius < 0 {
		radius = 0
	}

	q := url.Values{}
	q.Set("query", keyword)
	q.Set("y", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("x", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(radius))
	q.Set("size", "15")
	q.Set("page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.baseURL+"/v2/local/search/keyword.json?"+q.Encode(), nil)
	if err != nil {
		zap.L().Warn("kakao request build failed", zap.Error(err))
		return nil
	}
	req.Header.Set("Authorization", "KakaoAK "+k.restKey)

	resp, err := k.client.Do(req)
	if err != nil {
		zap.L().Warn("kakao search failed", zap.String("keyword", keyword), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		zap.L().Warn("kakao search returned non-200", zap.Int("status", resp.StatusCode))
		return nil
	}

	var parsed kakaoSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		zap.L().Warn("kakao response decode failed", zap.Error(err))
		return nil
	}

	out := make([]PlaceResult, 0, len(parsed.Documents))
	for _, doc := range parsed.Documents {
		placeLat, errLat := strconv.ParseFloat(doc.Y, 64)
		placeLon, errLon := strconv.ParseFloat(doc.X, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		address := doc.RoadAddressName
		if address == "" {
			address = doc.AddressName
		}
		out = append(out, PlaceResult{
			Name:           utils.StripHTML(doc.PlaceName),
			Latitude:       placeLat,
			Longitude:      placeLon,
			Address:        utils.StripHTML(address),
			DistanceMeters: haversineMeters(lat, lon, placeLat, placeLon),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceMeters < out[j].DistanceMeters
	})
	return out
}

// StubMapProvider is used when no map credentials exist (tests, local dev).
type StubMapProvider struct{}

func (s *StubMapProvider) Search(_ context.Context, keyword string, _, _ float64, _ int) []PlaceResult {
	zap.L().Debug("stub map provider returning empty result", zap.String("keyword", keyword))
	return nil
}

const earthRadiusMeters = 6371000.0

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// estimateDurationMinutes converts walking distance to minutes at roughly
// 4 km/h (1000/15 ≈ 66.7 m/min), rounded to one decimal.
func estimateDurationMinutes(distanceMeters float64) float64 {
	return math.Round(distanceMeters/67.0*10) / 10
}
