package api

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookify-app/backend/internal/service"
	"github.com/cookify-app/backend/internal/types"
)

// MediaHandler exposes the resolution pipeline and its individual stages.
type MediaHandler struct {
	resolver    *service.ResolverService
	synthesis   *service.SynthesisService
	recipes     *service.RecipeService
	transcriber service.ITranscriber
	ocr         service.IOCRService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(
	resolver *service.ResolverService,
	synthesis *service.SynthesisService,
	recipes *service.RecipeService,
	transcriber service.ITranscriber,
	ocr service.IOCRService,
) *MediaHandler {
	return &MediaHandler{
		resolver:    resolver,
		synthesis:   synthesis,
		recipes:     recipes,
		transcriber: transcriber,
		ocr:         ocr,
	}
}

// RegisterRoutes registers the media and pipeline routes. The import route
// fans out to several paid upstreams per call, so it carries the rate
// limiter when one is configured.
func (h *MediaHandler) RegisterRoutes(router *gin.RouterGroup, importLimit gin.HandlerFunc) {
	router.POST("/media/resolve", h.ResolveMedia)
	router.GET("/transcribe", h.Transcribe)
	router.POST("/ocr", h.ExtractText)
	if importLimit != nil {
		router.POST("/import", importLimit, h.Import)
	} else {
		router.POST("/import", h.Import)
	}
}

// ResolveMedia resolves an Instagram post url into caption, video url,
// transcription and thumbnail.
func (h *MediaHandler) ResolveMedia(c *gin.Context) {
	postURL := c.Query("url")
	if postURL == "" {
		_ = c.Error(service.NewInvalidInput("url query parameter is required"))
		return
	}

	resolution, err := h.resolver.Resolve(c.Request.Context(), postURL)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resolution)
}

// Transcribe transcribes the audio track of a video url.
func (h *MediaHandler) Transcribe(c *gin.Context) {
	videoURL := c.Query("videoUrl")
	if videoURL == "" {
		_ = c.Error(service.NewInvalidInput("videoUrl query parameter is required"))
		return
	}

	text, err := h.transcriber.TranscribeURL(c.Request.Context(), videoURL)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// ExtractText runs OCR over the uploaded images and returns the combined
// text. All images of a post travel in a single upstream call.
func (h *MediaHandler) ExtractText(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		_ = c.Error(service.NewInvalidInput("multipart form with image files is required"))
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		files = form.File["image"]
	}
	if len(files) == 0 {
		_ = c.Error(service.NewInvalidInput("at least one image file is required"))
		return
	}

	images := make([]types.ImageInput, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			_ = c.Error(service.NewInvalidInput("failed to read uploaded image"))
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			_ = c.Error(service.NewInvalidInput("failed to read uploaded image"))
			return
		}
		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		images = append(images, types.ImageInput{Data: data, MimeType: mimeType})
	}

	text, err := h.ocr.ExtractText(c.Request.Context(), images)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// Import runs the whole pipeline for an Instagram post url: resolve the
// post, structure a recipe from it, illustrate it and store it. If the
// post was imported before, the stored recipe is returned as is.
func (h *MediaHandler) Import(c *gin.Context) {
	postURL := c.Query("url")
	if postURL == "" {
		_ = c.Error(service.NewInvalidInput("url query parameter is required"))
		return
	}

	if existing, err := h.recipes.FindByURL(c.Request.Context(), postURL); err == nil {
		c.JSON(http.StatusOK, existing)
		return
	} else if !service.IsKind(err, service.KindNotFound) {
		_ = c.Error(err)
		return
	}

	resolution, err := h.resolver.Resolve(c.Request.Context(), postURL)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.synthesis.Synthesize(c.Request.Context(), resolution)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// The upstream work is already paid for at this point. Persist even if
	// the client went away mid-request.
	saveCtx := context.WithoutCancel(c.Request.Context())
	saved, err := h.recipes.UpsertByURL(saveCtx, recipe)
	if err != nil {
		_ = c.Error(err)
		return
	}

	log.Printf("[Import] stored recipe %q from %s", saved.Title, postURL)
	c.JSON(http.StatusOK, saved)
}
