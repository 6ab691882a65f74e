package routes

import (
	"github.com/qoweh/knut4/controllers"
	"github.com/qoweh/knut4/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	public := r.Group("/api/public")
	{
		public.POST("/auth/signup", controllers.Signup)
		public.POST("/auth/login", controllers.Login)
		public.GET("/weather", controllers.GetWeather)
		public.GET("/recommendations/shared/:token", controllers.GetShared)
	}

	// recommend allows anonymous callers; history rows get a NULL user
	rec := r.Group("/api/recommendations")
	rec.Use(middlewares.OptionalAuthMiddleware())
	{
		rec.POST("", controllers.Recommend)
	}

	private := r.Group("/api/private")
	private.Use(middlewares.AuthMiddleware())
	{
		private.POST("/recommendations/retry", controllers.Retry)
		private.POST("/recommendations/share", controllers.Share)
		private.GET("/history", controllers.ListHistory)
		private.GET("/preferences", controllers.GetPreference)
		private.POST("/preferences", controllers.UpsertPreference)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
