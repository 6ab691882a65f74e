package controllers

import (
	"github.com/qoweh/knut4/config"
	"github.com/qoweh/knut4/services"

	"github.com/gin-gonic/gin"
)

var (
	recService   *services.RecService
	historyStore *services.HistoryStore
)

// InitServices wires the pipeline once at startup: the generator and map
// provider implementations are selected here from configuration.
func InitServices(cfg *config.AppConfig) {
	llm := services.NewLlmClient(cfg)
	provider := services.NewMapProvider(cfg)
	historyStore = services.NewHistoryStore(config.DB)
	prefs := services.NewPreferenceStore(config.DB)

	var observer services.PipelineObserver = services.NopObserver{}
	if cfg.MetricsEnabled {
		observer = services.PrometheusObserver{}
	}

	recService = services.NewRecService(llm, provider, historyStore, prefs, observer)
}

// currentUserID returns the authenticated caller, or nil when the request is
// anonymous (optional-auth routes).
func currentUserID(c *gin.Context) *uint {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}
