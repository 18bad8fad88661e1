package service

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/sowhat1234/yazamutforum/internal/apperr"
	"github.com/sowhat1234/yazamutforum/internal/db"
	"github.com/sowhat1234/yazamutforum/internal/models"
	"github.com/sowhat1234/yazamutforum/internal/slug"
)

// DefaultColor is used for categories created without a color.
const DefaultColor = "#3b82f6"

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CategoryService implements the category procedures.
type CategoryService struct {
	repo *db.Repository
	log  *log.Logger
}

type CreateCategoryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}

type UpdateCategoryInput struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	IsActive    *bool   `json:"isActive"`
}

// GetAll lists active categories by name.
func (s *CategoryService) GetAll(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repo.ListActiveCategories(ctx)
	if err != nil {
		return nil, internal(err)
	}
	return categories, nil
}

// GetBySlug returns one category.
func (s *CategoryService) GetBySlug(ctx context.Context, categorySlug string) (*models.Category, error) {
	c, err := s.repo.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, lookup(err, "Category not found")
	}
	return c, nil
}

// uniqueSlug derives a slug from name that no other category uses.
func (s *CategoryService) uniqueSlug(ctx context.Context, name, excludeID string) (string, error) {
	if slug.Make(name) == "" {
		name = "category"
	}
	return slug.Unique(ctx, name, func(ctx context.Context, candidate string) (bool, error) {
		return s.repo.CategorySlugExists(ctx, candidate, excludeID)
	})
}

// Create adds a category. Admins only.
func (s *CategoryService) Create(ctx context.Context, userID string, in CreateCategoryInput) (*models.Category, error) {
	if err := requireAdmin(ctx, s.repo, userID, "Only admins can create categories"); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := checkLength("name", name, 1, 100); err != nil {
		return nil, err
	}
	color := in.Color
	if color == "" {
		color = DefaultColor
	}
	if !colorPattern.MatchString(color) {
		return nil, apperr.BadRequestf("color must be a hex value like %s", DefaultColor)
	}

	categorySlug, err := s.uniqueSlug(ctx, name, "")
	if err != nil {
		return nil, internal(err)
	}
	c := &models.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: in.Description,
		Color:       color,
		IsActive:    true,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, conflictOr(err, "Category slug already taken", "Category not found")
	}
	s.log.Printf("category %q created by %s", c.Slug, userID)
	return c, nil
}

// Update changes a category. A new name regenerates the slug. Admins only.
func (s *CategoryService) Update(ctx context.Context, userID string, in UpdateCategoryInput) (*models.Category, error) {
	if err := requireAdmin(ctx, s.repo, userID, "Only admins can update categories"); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCategoryByID(ctx, in.ID); err != nil {
		return nil, lookup(err, "Category not found")
	}

	patch := models.CategoryPatch{Description: in.Description, IsActive: in.IsActive}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := checkLength("name", name, 1, 100); err != nil {
			return nil, err
		}
		categorySlug, err := s.uniqueSlug(ctx, name, in.ID)
		if err != nil {
			return nil, internal(err)
		}
		patch.Name, patch.Slug = &name, &categorySlug
	}
	if in.Color != nil {
		if !colorPattern.MatchString(*in.Color) {
			return nil, apperr.BadRequestf("color must be a hex value like %s", DefaultColor)
		}
		patch.Color = in.Color
	}

	if err := s.repo.UpdateCategory(ctx, in.ID, patch); err != nil {
		return nil, conflictOr(err, "Category slug already taken", "Category not found")
	}
	c, err := s.repo.GetCategoryByID(ctx, in.ID)
	if err != nil {
		return nil, lookup(err, "Category not found")
	}
	return c, nil
}
