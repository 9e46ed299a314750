package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/handlers"
)

type RouterConfig struct {
	MemoryHandler *handlers.MemoryHandler
	AdminHandler  *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/memories", cfg.MemoryHandler.CreateMemory)

		admin := api.Group("/admin")
		{
			admin.GET("/ai-costs", cfg.AdminHandler.GetAICosts)
			admin.GET("/enrichment/worker", cfg.AdminHandler.GetWorkerStatus)
			admin.POST("/enrichment/trigger", cfg.AdminHandler.TriggerEnrichment)
		}
	}

	return router
}
