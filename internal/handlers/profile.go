package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sowhat1234/yazamutforum/internal/service"
)

// ProfileHandler serves the caller's own activity.
type ProfileHandler struct {
	ideas *service.IdeaService
	posts *service.PostService
	log   *log.Logger
}

func NewProfileHandler(ideas *service.IdeaService, posts *service.PostService, log *log.Logger) *ProfileHandler {
	return &ProfileHandler{ideas: ideas, posts: posts, log: log}
}

func (h *ProfileHandler) Register(rt *Router) {
	rt.ProtectedQuery("idea.getMyIdeas", h.MyIdeas)
	rt.ProtectedQuery("idea.getMyInterests", h.MyInterests)
	rt.ProtectedQuery("post.getLatest", h.LatestPost)
}

func (h *ProfileHandler) MyIdeas(ctx context.Context, userID string, _ json.RawMessage) (any, error) {
	return h.ideas.GetMyIdeas(ctx, userID)
}

func (h *ProfileHandler) MyInterests(ctx context.Context, userID string, _ json.RawMessage) (any, error) {
	return h.ideas.GetMyInterests(ctx, userID)
}

func (h *ProfileHandler) LatestPost(ctx context.Context, userID string, _ json.RawMessage) (any, error) {
	post, err := h.posts.GetLatest(ctx, userID)
	if err != nil || post == nil {
		return nil, err
	}
	return post, nil
}
