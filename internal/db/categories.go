package db

import (
	"context"
	"strings"

	"github.com/sowhat1234/yazamutforum/internal/models"
)

const categorySelect = `SELECT c.id, c.name, c.slug, c.description, c.color, c.is_active, c.created_at,
    (SELECT COUNT(*) FROM posts p WHERE p.category_id = c.id)
FROM categories c`

func categoryDest(c *models.Category) []any {
	return []any{&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color, &c.IsActive, ts(&c.CreatedAt), &c.Count.Posts}
}

// CreateCategory creates a new category.
func (r *Repository) CreateCategory(ctx context.Context, c *models.Category) error {
	c.ID = newID()
	c.CreatedAt = r.now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories (id, name, slug, description, color, is_active, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Description, c.Color, boolInt(c.IsActive), formatTime(c.CreatedAt))
	return translate(err)
}

// GetCategoryByID returns a category.
func (r *Repository) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	c := &models.Category{}
	if err := r.db.QueryRowContext(ctx, categorySelect+" WHERE c.id = ?", id).Scan(categoryDest(c)...); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// GetCategoryBySlug returns a category by its slug.
func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c := &models.Category{}
	if err := r.db.QueryRowContext(ctx, categorySelect+" WHERE c.slug = ?", slug).Scan(categoryDest(c)...); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// CategorySlugExists reports whether slug is used by a category other than excludeID.
func (r *Repository) CategorySlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM categories WHERE slug = ? AND id <> ?)",
		slug, excludeID).Scan(&exists)
	return exists, err
}

// ListActiveCategories returns active categories ordered by name.
func (r *Repository) ListActiveCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+" WHERE c.is_active = 1 ORDER BY c.name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(categoryDest(c)...); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory applies the non-nil fields of patch.
func (r *Repository) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) error {
	var (
		set  []string
		args []any
	)
	if patch.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Slug != nil {
		set = append(set, "slug = ?")
		args = append(args, *patch.Slug)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Color != nil {
		set = append(set, "color = ?")
		args = append(args, *patch.Color)
	}
	if patch.IsActive != nil {
		set = append(set, "is_active = ?")
		args = append(args, boolInt(*patch.IsActive))
	}
	if len(set) == 0 {
		_, err := r.GetCategoryByID(ctx, id)
		return err
	}

	args = append(args, id)
	res, err := r.db.ExecContext(ctx, "UPDATE categories SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return translate(err)
	}
	return expectOne(res)
}
