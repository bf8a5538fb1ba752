package service

import (
	"context"

	"github.com/cookify-app/backend/internal/model"
	"github.com/cookify-app/backend/internal/types"
)

// SynthesisService assembles a persistable recipe from a media resolution.
// Structuring failures are fatal; illustration failures never are (the
// illustrator falls back internally).
type SynthesisService struct {
	structurer  IRecipeStructurer
	illustrator IIllustrator
}

// NewSynthesisService creates a new SynthesisService instance.
func NewSynthesisService(structurer IRecipeStructurer, illustrator IIllustrator) *SynthesisService {
	return &SynthesisService{
		structurer:  structurer,
		illustrator: illustrator,
	}
}

// Synthesize turns a media resolution into a recipe ready for persistence.
func (s *SynthesisService) Synthesize(ctx context.Context, resolution *types.MediaResolution) (*model.Recipe, error) {
	draft, err := s.structurer.Structure(ctx, resolution.Caption, resolution.Transcription)
	if err != nil {
		return nil, err
	}

	category := draft.Category
	if !model.ValidCategory(category) {
		category = model.CategoryMainCourse
	}

	servings := int(draft.Servings)
	if servings <= 0 {
		servings = model.DefaultServings
	}

	ingredients := model.StringList(draft.Ingredients)
	if ingredients == nil {
		ingredients = model.StringList{}
	}
	instructions := model.StringList(draft.Instructions)
	if instructions == nil {
		instructions = model.StringList{}
	}

	illustration := s.illustrator.Illustrate(ctx, draft.Title, draft.Ingredients, category)
	if illustration == "" {
		illustration = resolution.ThumbnailURL
	}

	recipe := &model.Recipe{
		Title:        draft.Title,
		Category:     category,
		Ingredients:  ingredients,
		Instructions: instructions,
		Illustration: illustration,
		VideoURL:     resolution.VideoURL,
		PrepTime:     draft.PrepTime,
		CookTime:     draft.CookTime,
		TotalTime:    draft.TotalTime,
		Servings:     servings,
	}
	if resolution.PostURL != "" {
		u := resolution.PostURL
		recipe.URL = &u
	}
	return recipe, nil
}
