package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mealmax/internal/observability"
)

// NewRouter builds the gin engine with middleware and all API routes.
//
// Precondition: h and logger must be non-nil.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE"},
		AllowHeaders: []string{"Content-Type", observability.RequestIDHeader},
	}))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		api.POST("/create-meal", h.CreateMeal)
		api.DELETE("/delete-meal/:id", h.DeleteMeal)
		api.GET("/get-meal-by-id/:id", h.GetMealByID)
		api.GET("/get-meal-by-name/:name", h.GetMealByName)
		api.POST("/clear-meals", h.ClearMeals)
		api.GET("/leaderboard", h.Leaderboard)

		api.POST("/prep-combatant", h.PrepCombatant)
		api.POST("/clear-combatants", h.ClearCombatants)
		api.GET("/get-combatants", h.GetCombatants)
		api.POST("/battle", h.Battle)
	}

	return r
}
