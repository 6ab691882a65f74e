package config

import (
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds everything selected at startup: which generator and map
// provider implementations run, their endpoints and credentials.
type AppConfig struct {
	Port string

	LLMMode    string // "http" or "stub"
	LLMBaseURL string // OpenAI-compatible base URL, e.g. http://localhost:4891/v1
	LLMModel   string

	MapProvider     string // "kakao" or "stub"
	KakaoBaseURL    string
	KakaoRESTAPIKey string

	MetricsEnabled bool
}

func LoadAppConfig() *AppConfig {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("llm.mode", "stub")
	v.SetDefault("llm.base.url", "http://localhost:4891/v1")
	v.SetDefault("llm.model", "")
	v.SetDefault("map.provider", "kakao")
	v.SetDefault("kakao.base.url", "https://dapi.kakao.com")
	v.SetDefault("kakao.rest.api.key", "")
	v.SetDefault("metrics.enabled", true)

	return &AppConfig{
		Port:            v.GetString("port"),
		LLMMode:         v.GetString("llm.mode"),
		LLMBaseURL:      v.GetString("llm.base.url"),
		LLMModel:        v.GetString("llm.model"),
		MapProvider:     v.GetString("map.provider"),
		KakaoBaseURL:    v.GetString("kakao.base.url"),
		KakaoRESTAPIKey: v.GetString("kakao.rest.api.key"),
		MetricsEnabled:  v.GetBool("metrics.enabled"),
	}
}
