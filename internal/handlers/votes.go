package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sowhat1234/yazamutforum/internal/service"
)

// VoteHandler serves votes on ideas, posts and post replies.
type VoteHandler struct {
	ideas *service.IdeaService
	posts *service.PostService
	log   *log.Logger
}

func NewVoteHandler(ideas *service.IdeaService, posts *service.PostService, log *log.Logger) *VoteHandler {
	return &VoteHandler{ideas: ideas, posts: posts, log: log}
}

func (h *VoteHandler) Register(rt *Router) {
	rt.Mutation("idea.vote", h.VoteIdea)
	rt.Mutation("post.vote", h.VotePost)
	rt.Mutation("post.voteReply", h.VoteReply)
}

func (h *VoteHandler) VoteIdea(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.VoteInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("ideaId", in.IdeaID); err != nil {
		return nil, err
	}
	res, err := h.ideas.Vote(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	h.log.Printf("vote %s on idea %s by %s: %s", in.Type, in.IdeaID, userID, res.Action)
	return res, nil
}

func (h *VoteHandler) VotePost(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.PostVoteInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("postId", in.PostID); err != nil {
		return nil, err
	}
	return h.posts.Vote(ctx, userID, in)
}

func (h *VoteHandler) VoteReply(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.ReplyVoteInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("replyId", in.ReplyID); err != nil {
		return nil, err
	}
	return h.posts.VoteReply(ctx, userID, in)
}
