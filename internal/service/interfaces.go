package service

import (
	"context"

	"github.com/cookify-app/backend/internal/types"
)

// IPostLookup resolves a post URL to its basic metadata.
type IPostLookup interface {
	Lookup(ctx context.Context, postURL string) (*types.PostMetadata, error)
}

// IVideoResolver resolves a media identifier to a playable video URL.
type IVideoResolver interface {
	ResolveVideo(ctx context.Context, mediaID string) (string, error)
}

// ITranscriber turns a remote audio/video asset into plain text.
type ITranscriber interface {
	TranscribeURL(ctx context.Context, mediaURL string) (string, error)
}

// IOCRService extracts readable text from a batch of images in one call.
type IOCRService interface {
	ExtractText(ctx context.Context, images []types.ImageInput) (string, error)
}

// IRecipeStructurer turns free text into a structured recipe draft.
type IRecipeStructurer interface {
	Structure(ctx context.Context, caption, transcription string) (*RecipeDraft, error)
}

// IIllustrator produces an illustration URL for a recipe. Implementations
// must not fail: on any upstream error they return a placeholder URL.
type IIllustrator interface {
	Illustrate(ctx context.Context, title string, ingredients []string, category string) string
}
