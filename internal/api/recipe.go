package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cookify-app/backend/internal/model"
	"github.com/cookify-app/backend/internal/service"
)

// RecipeHandler exposes the recipe store.
type RecipeHandler struct {
	recipes *service.RecipeService
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(recipes *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// RegisterRoutes registers the recipe routes.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", h.CreateRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/check-url", h.CheckURL)
	}
}

// ListRecipes returns all recipes, newest first.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.List(c.Request.Context(), c.Query("category"), c.Query("q"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe returns one recipe by id.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(service.NewInvalidInput("invalid recipe id"))
		return
	}

	recipe, err := h.recipes.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe upserts a recipe. A non-null url dedups against the existing
// record for that source post; recipes without a url always insert.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		_ = c.Error(service.NewInvalidInput("invalid recipe payload"))
		return
	}

	saved, err := h.recipes.UpsertByURL(c.Request.Context(), &recipe)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// UpdateRecipe replaces the mutable fields of an existing recipe.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(service.NewInvalidInput("invalid recipe id"))
		return
	}

	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		_ = c.Error(service.NewInvalidInput("invalid recipe payload"))
		return
	}

	updated, err := h.recipes.Update(c.Request.Context(), id, &recipe)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteRecipe removes a recipe.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(service.NewInvalidInput("invalid recipe id"))
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id.String()})
}

// CheckURL returns the recipe already stored for a source url, or null.
// The front-end uses it to skip reprocessing an imported post.
func (h *RecipeHandler) CheckURL(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		_ = c.Error(service.NewInvalidInput("url is required"))
		return
	}

	recipe, err := h.recipes.FindByURL(c.Request.Context(), req.URL)
	if err != nil {
		if service.IsKind(err, service.KindNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
