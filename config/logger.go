package config

import (
	"os"

	"go.uber.org/zap"
)

// InitLogger builds the process-wide zap logger and installs it as the global.
func InitLogger() *zap.Logger {
	var cfg zap.Config
	if os.Getenv("APP_ENV") == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, _ := cfg.Build()
	zap.ReplaceGlobals(logger)
	return logger
}
