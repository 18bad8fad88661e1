package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sowhat1234/yazamutforum/internal/service"
)

type CommentHandler struct {
	svc *service.CommentService
	log *log.Logger
}

func NewCommentHandler(svc *service.CommentService, log *log.Logger) *CommentHandler {
	return &CommentHandler{svc: svc, log: log}
}

func (h *CommentHandler) Register(rt *Router) {
	rt.Query("comment.getByIdea", h.GetByIdea)
	rt.Query("comment.getById", h.GetByID)
	rt.Mutation("comment.create", h.Create)
	rt.Mutation("comment.update", h.Update)
	rt.Mutation("comment.delete", h.Delete)
}

func (h *CommentHandler) GetByIdea(ctx context.Context, _ string, input json.RawMessage) (any, error) {
	in, err := decode[ideaIDInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("ideaId", in.IdeaID); err != nil {
		return nil, err
	}
	return h.svc.GetByIdea(ctx, in.IdeaID)
}

func (h *CommentHandler) GetByID(ctx context.Context, _ string, input json.RawMessage) (any, error) {
	in, err := decode[idInput](input)
	if err != nil {
		return nil, err
	}
	return h.svc.GetByID(ctx, in.ID)
}

// Create adds a comment, or a reply when parentId is set
func (h *CommentHandler) Create(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.CreateCommentInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("ideaId", in.IdeaID); err != nil {
		return nil, err
	}
	c, err := h.svc.Create(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	h.log.Printf("comment %s added to idea %s by %s", c.ID, in.IdeaID, userID)
	return c, nil
}

// Update edits a comment (author only)
func (h *CommentHandler) Update(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.UpdateCommentInput](input)
	if err != nil {
		return nil, err
	}
	return h.svc.Update(ctx, userID, in)
}

// Delete deletes a comment and its replies (author only)
func (h *CommentHandler) Delete(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[idInput](input)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Delete(ctx, userID, in.ID); err != nil {
		return nil, err
	}
	return success, nil
}
