package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sowhat1234/yazamutforum/internal/service"
)

type CategoryHandler struct {
	svc *service.CategoryService
	log *log.Logger
}

func NewCategoryHandler(svc *service.CategoryService, log *log.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, log: log}
}

func (h *CategoryHandler) Register(rt *Router) {
	rt.Query("category.getAll", h.ListCategories)
	rt.Query("category.getBySlug", h.GetBySlug)
	rt.Mutation("category.create", h.CreateCategory)
	rt.Mutation("category.update", h.UpdateCategory)
}

// ListCategories returns the active categories.
func (h *CategoryHandler) ListCategories(ctx context.Context, _ string, _ json.RawMessage) (any, error) {
	return h.svc.GetAll(ctx)
}

func (h *CategoryHandler) GetBySlug(ctx context.Context, _ string, input json.RawMessage) (any, error) {
	in, err := decode[slugInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("slug", in.Slug); err != nil {
		return nil, err
	}
	return h.svc.GetBySlug(ctx, in.Slug)
}

// CreateCategory creates a category (admin only)
func (h *CategoryHandler) CreateCategory(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.CreateCategoryInput](input)
	if err != nil {
		return nil, err
	}
	return h.svc.Create(ctx, userID, in)
}

// UpdateCategory updates a category (admin only)
func (h *CategoryHandler) UpdateCategory(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.UpdateCategoryInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("id", in.ID); err != nil {
		return nil, err
	}
	return h.svc.Update(ctx, userID, in)
}
