package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-generator/internal/services"
	"github.com/SAP-F-2025/quiz-generator/internal/utils"
)

type HandlerManager struct {
	quizHandler *QuizHandler
	tripHandler *TripHandler
}

// NewHandlerManager wires the HTTP handlers. tripService may be nil, in
// which case the trip routes are not registered.
func NewHandlerManager(
	quizService services.QuizService,
	tripService services.TripService,
	logger utils.Logger,
) *HandlerManager {
	hm := &HandlerManager{
		quizHandler: NewQuizHandler(quizService, logger),
	}
	if tripService != nil {
		hm.tripHandler = NewTripHandler(tripService, logger)
	}
	return hm
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.GenerateQuiz)
			quizzes.GET("", hm.quizHandler.ListRuns)
			quizzes.GET("/stats", hm.quizHandler.GetStats)
			quizzes.GET("/latest", hm.quizHandler.GetLatestRun)
			quizzes.GET("/:id", hm.quizHandler.GetRun)
		}

		if hm.tripHandler != nil {
			v1.POST("/trips", hm.tripHandler.PlanTrip)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-generator",
		})
	})
}
