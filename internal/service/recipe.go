package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cookify-app/backend/internal/model"
)

// RecipeService is the recipe store. A non-nil source URL is the natural
// dedup key: re-submitting the same post updates the stored record instead
// of duplicating it. The unique index on url plus the ON CONFLICT update
// below make concurrent submissions of one post converge on a single row.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance.
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// upsertColumns are the mutable fields replaced on a url conflict. id and
// created_at stay untouched.
var upsertColumns = []string{
	"updated_at", "title", "category", "ingredients", "instructions",
	"illustration", "video_url", "prep_time", "cook_time", "total_time",
	"servings", "embedding",
}

// UpsertByURL inserts the recipe, or updates the existing record sharing its
// url. Recipes without a url always insert.
func (s *RecipeService) UpsertByURL(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	if recipe.Title == "" || recipe.Category == "" {
		return nil, NewInvalidInput("title and category are required")
	}
	recipe.Embedding = GenerateEmbedding(recipe.Title + " " + strings.Join(recipe.Ingredients, " "))

	if recipe.URL == nil || *recipe.URL == "" {
		recipe.URL = nil
		if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
			return nil, err
		}
		return recipe, nil
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(recipe).Error
	if err != nil {
		return nil, err
	}

	// Re-read by url: on conflict the insert candidate's id is not the
	// stored one.
	return s.FindByURL(ctx, *recipe.URL)
}

// GetByID retrieves a recipe by id.
func (s *RecipeService) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("recipe not found")
		}
		return nil, err
	}
	return &recipe, nil
}

// FindByURL returns the recipe stored for the given source url, or a
// not-found error. Used by the boundary to short-circuit reprocessing of an
// already-imported post.
func (s *RecipeService) FindByURL(ctx context.Context, url string) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "url = ?", url).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("no recipe for url")
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns recipes newest first, optionally filtered by category and a
// search query. Search orders by embedding distance on Postgres and falls
// back to keyword matching elsewhere.
func (s *RecipeService) List(ctx context.Context, category, search string) ([]model.Recipe, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")

	if category != "" {
		query = query.Where("category = ?", category)
	}

	if search != "" {
		if s.db.Dialector.Name() == "postgres" {
			vec := GenerateEmbedding(search)
			query = query.Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
			})
		} else {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(title) LIKE ? OR LOWER(ingredients) LIKE ?", like, like)
		}
	}

	var recipes []model.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// Update replaces the mutable fields of an existing recipe.
func (s *RecipeService) Update(ctx context.Context, id uuid.UUID, recipe *model.Recipe) (*model.Recipe, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	recipe.Embedding = GenerateEmbedding(recipe.Title + " " + strings.Join(recipe.Ingredients, " "))
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", id).Updates(recipe).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a recipe by id.
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id).Error
}
