// Package api exposes the meal catalog and battle engine over an HTTP
// JSON interface.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mealmax/internal/battle"
	"github.com/cory-johannsen/mealmax/internal/kitchen"
	"github.com/cory-johannsen/mealmax/internal/storage/postgres"
)

// MealStore is the catalog persistence contract the API depends on.
// *postgres.MealRepository satisfies it.
type MealStore interface {
	Create(ctx context.Context, m kitchen.Meal) (*kitchen.Meal, error)
	GetByID(ctx context.Context, id int64) (*kitchen.Meal, error)
	GetByName(ctx context.Context, name string) (*kitchen.Meal, error)
	SoftDelete(ctx context.Context, id int64) error
	Leaderboard(ctx context.Context, sortBy string) ([]kitchen.LeaderboardEntry, error)
	ClearAll(ctx context.Context) error
}

// Pinger reports database reachability.
type Pinger interface {
	Health(ctx context.Context, timeout time.Duration) error
}

// Handler holds the API's collaborators.
type Handler struct {
	store  MealStore
	model  *battle.Model
	pinger Pinger
	logger *zap.Logger
}

// NewHandler creates a Handler.
//
// Precondition: store, model, and logger must be non-nil; pinger may be nil,
// in which case the db-check endpoint reports unavailable.
func NewHandler(store MealStore, model *battle.Model, pinger Pinger, logger *zap.Logger) *Handler {
	return &Handler{store: store, model: model, pinger: pinger, logger: logger}
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// DBCheck reports database reachability.
func (h *Handler) DBCheck(c *gin.Context) {
	if h.pinger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}
	if err := h.pinger.Health(c.Request.Context(), 5*time.Second); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"database_status": "healthy"})
}

// createMealRequest is the POST /api/create-meal payload.
type createMealRequest struct {
	Name       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
}

// CreateMeal adds a meal to the catalog.
func (h *Handler) CreateMeal(c *gin.Context) {
	var req createMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	difficulty, err := kitchen.ParseDifficulty(req.Difficulty)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal := kitchen.Meal{
		Name:       req.Name,
		Cuisine:    req.Cuisine,
		Price:      req.Price,
		Difficulty: difficulty,
	}
	if err := meal.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.store.Create(c.Request.Context(), meal)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "meal created", "meal": mealResponse(created)})
}

// DeleteMeal soft-deletes a meal by id.
func (h *Handler) DeleteMeal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}
	if err := h.store.SoftDelete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "meal deleted", "id": id})
}

// GetMealByID fetches a single meal by id.
func (h *Handler) GetMealByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}
	meal, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": mealResponse(meal)})
}

// GetMealByName fetches a single meal by its unique name.
func (h *Handler) GetMealByName(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meal name required"})
		return
	}
	meal, err := h.store.GetByName(c.Request.Context(), name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": mealResponse(meal)})
}

// ClearMeals empties the entire catalog.
func (h *Handler) ClearMeals(c *gin.Context) {
	if err := h.store.ClearAll(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "catalog cleared"})
}

// Leaderboard lists meals ranked by wins or win percentage.
func (h *Handler) Leaderboard(c *gin.Context) {
	sortBy := c.DefaultQuery("sort", "wins")
	entries, err := h.store.Leaderboard(c.Request.Context(), sortBy)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// prepCombatantRequest is the POST /api/prep-combatant payload.
type prepCombatantRequest struct {
	Name string `json:"meal"`
}

// PrepCombatant looks a meal up by name and stages it for battle.
func (h *Handler) PrepCombatant(c *gin.Context) {
	var req prepCombatantRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meal name required"})
		return
	}

	meal, err := h.store.GetByName(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.model.Prep(*meal); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "combatant prepped",
		"combatants": combatantNames(h.model.Combatants()),
	})
}

// ClearCombatants empties the battle staging area.
func (h *Handler) ClearCombatants(c *gin.Context) {
	h.model.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "combatants cleared"})
}

// GetCombatants lists the currently staged combatants in staging order.
func (h *Handler) GetCombatants(c *gin.Context) {
	staged := h.model.Combatants()
	out := make([]gin.H, 0, len(staged))
	for i := range staged {
		out = append(out, mealResponse(&staged[i]))
	}
	c.JSON(http.StatusOK, gin.H{"combatants": out})
}

// Battle resolves a battle between the two staged combatants.
func (h *Handler) Battle(c *gin.Context) {
	winner, err := h.model.Battle(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "battle complete", "winner": winner})
}

// respondError maps domain errors to HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, postgres.ErrMealNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, postgres.ErrMealDeleted),
		errors.Is(err, postgres.ErrMealNameTaken),
		errors.Is(err, postgres.ErrInvalidSortKey),
		errors.Is(err, battle.ErrCombatantsFull),
		errors.Is(err, battle.ErrTwoCombatantsRequired),
		errors.Is(err, battle.ErrNonPositivePrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// mealResponse shapes a meal for JSON output.
func mealResponse(m *kitchen.Meal) gin.H {
	return gin.H{
		"id":         m.ID,
		"meal":       m.Name,
		"cuisine":    m.Cuisine,
		"price":      m.Price,
		"difficulty": m.Difficulty,
		"battles":    m.Battles,
		"wins":       m.Wins,
	}
}

// combatantNames extracts display names in staging order.
func combatantNames(meals []kitchen.Meal) []string {
	names := make([]string, 0, len(meals))
	for _, m := range meals {
		names = append(names, m.Name)
	}
	return names
}
