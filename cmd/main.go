package main

import (
	"github.com/qoweh/knut4/config"
	"github.com/qoweh/knut4/controllers"
	"github.com/qoweh/knut4/routes"

	"go.uber.org/zap"
)

func main() {
	logger := config.InitLogger()
	defer logger.Sync()

	cfg := config.LoadAppConfig()
	config.InitDB()
	controllers.InitServices(cfg)

	r := routes.SetupRouter()
	if err := r.Run(":" + cfg.Port); err != nil {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}
