package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sowhat1234/yazamutforum/internal/service"
)

type IdeaHandler struct {
	svc *service.IdeaService
	log *log.Logger
}

func NewIdeaHandler(svc *service.IdeaService, log *log.Logger) *IdeaHandler {
	return &IdeaHandler{svc: svc, log: log}
}

// Register adds the idea procedures to rt.
func (h *IdeaHandler) Register(rt *Router) {
	rt.Query("idea.getAll", h.GetAll)
	rt.Query("idea.getById", h.GetByID)
	rt.Query("idea.getInterestedUsers", h.GetInterestedUsers)
	rt.Mutation("idea.create", h.Create)
	rt.Mutation("idea.update", h.Update)
	rt.Mutation("idea.delete", h.Delete)
	rt.Mutation("idea.showInterest", h.ShowInterest)
	rt.Mutation("idea.removeInterest", h.RemoveInterest)
}

func (h *IdeaHandler) GetAll(ctx context.Context, _ string, input json.RawMessage) (any, error) {
	in, err := decode[service.ListIdeasInput](input)
	if err != nil {
		return nil, err
	}
	return h.svc.GetAll(ctx, in)
}

func (h *IdeaHandler) GetByID(ctx context.Context, _ string, input json.RawMessage) (any, error) {
	in, err := decode[idInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("id", in.ID); err != nil {
		return nil, err
	}
	return h.svc.GetByID(ctx, in.ID)
}

func (h *IdeaHandler) GetInterestedUsers(ctx context.Context, _ string, input json.RawMessage) (any, error) {
	in, err := decode[ideaIDInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("ideaId", in.IdeaID); err != nil {
		return nil, err
	}
	return h.svc.GetInterestedUsers(ctx, in.IdeaID)
}

func (h *IdeaHandler) Create(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.CreateIdeaInput](input)
	if err != nil {
		return nil, err
	}
	return h.svc.Create(ctx, userID, in)
}

func (h *IdeaHandler) Update(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.UpdateIdeaInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("id", in.ID); err != nil {
		return nil, err
	}
	return h.svc.Update(ctx, userID, in)
}

func (h *IdeaHandler) Delete(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[idInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("id", in.ID); err != nil {
		return nil, err
	}
	if err := h.svc.Delete(ctx, userID, in.ID); err != nil {
		return nil, err
	}
	h.log.Printf("idea %s deleted", in.ID)
	return success, nil
}

func (h *IdeaHandler) ShowInterest(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[service.InterestInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("ideaId", in.IdeaID); err != nil {
		return nil, err
	}
	return h.svc.ShowInterest(ctx, userID, in)
}

func (h *IdeaHandler) RemoveInterest(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[ideaIDInput](input)
	if err != nil {
		return nil, err
	}
	if err := requireField("ideaId", in.IdeaID); err != nil {
		return nil, err
	}
	if err := h.svc.RemoveInterest(ctx, userID, in.IdeaID); err != nil {
		return nil, err
	}
	return success, nil
}
