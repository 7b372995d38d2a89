package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"skillsync/internal/api/handlers"
)

// SetupRoutes registers the API routes and static asset serving.
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, staticDir string) {
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	// Extracted document images are served by their storage keys.
	router.Static("/static", staticDir)

	router.GET("/healthz", handler.HandleHealth)
	router.POST("/upload", handler.HandleUpload)
	router.POST("/generate_quiz", handler.HandleGenerateQuiz)
	router.POST("/evaluate_answer", handler.HandleEvaluateAnswer)
}
