package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sowhat1234/yazamutforum/internal/service"
)

type PostHandler struct {
	svc *service.PostService
	log *log.Logger
}

func NewPostHandler(svc *service.PostService, log *log.Logger) *PostHandler {
	return &PostHandler{svc: svc, log: log}
}

func (h *PostHandler) Register(rt *Router) {
	rt.Query("post.getAll", h.Posts)
	rt.Query("post.getBySlug", h.Post)
	rt.Mutation("post.create", h.CreatePost)
	rt.Mutation("post.reply", h.Reply)
	rt.Mutation("post.pin", h.Pin)
}

// Posts lists posts, optionally within one category.
func (h *PostHandler) Posts(ctx context.Context, _ string, input json.RawMessage) (any, error) {
	in, err := decode[service.ListPostsInput](input)
	if err != nil {
		return nil, err
	}
	return h.svc.GetAll(ctx, in)
}

// Post returns a single post and counts the view.
func (h *PostHandler) Post(ctx context.Context, _ string, input json.RawMessage) (any, error) {
	in, err := decode[slugInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("slug", in.Slug); err != nil {
		return nil, err
	}
	return h.svc.GetBySlug(ctx, in.Slug)
}

func (h *PostHandler) CreatePost(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.CreatePostInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("categoryId", in.CategoryID); err != nil {
		return nil, err
	}
	return h.svc.Create(ctx, userID, in)
}

func (h *PostHandler) Reply(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.ReplyInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("postId", in.PostID); err != nil {
		return nil, err
	}
	return h.svc.Reply(ctx, userID, in)
}

func (h *PostHandler) Pin(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.PinInput](input)
	if err != nil {
		return nil, err
	}
	return h.svc.Pin(ctx, userID, in)
}
