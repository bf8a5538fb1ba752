package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cookify-app/backend/internal/middleware"
	"github.com/cookify-app/backend/internal/service"
)

// Deps collects everything the HTTP layer needs. Adapters are passed as
// interfaces so tests can swap them for stubs.
type Deps struct {
	Recipes     *service.RecipeService
	Resolver    *service.ResolverService
	Synthesis   *service.SynthesisService
	Transcriber service.ITranscriber
	OCR         service.IOCRService
	Gate        *middleware.Gate
	ImportLimit gin.HandlerFunc
}

// SetupAPI registers every route under /api/v1. Routes are listed here and
// nowhere else.
func SetupAPI(router *gin.Engine, deps Deps) {
	v1 := router.Group("/api/v1")

	NewRecipeHandler(deps.Recipes).RegisterRoutes(v1)
	NewMediaHandler(deps.Resolver, deps.Synthesis, deps.Recipes, deps.Transcriber, deps.OCR).
		RegisterRoutes(v1, deps.ImportLimit)
	if deps.Gate != nil {
		NewAuthHandler(deps.Gate).RegisterRoutes(v1)
	}
}
