package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sowhat1234/yazamutforum/internal/service"
)

type NotificationsHandler struct {
	svc *service.NotificationService
	log *log.Logger
}

func NewNotificationsHandler(svc *service.NotificationService, log *log.Logger) *NotificationsHandler {
	return &NotificationsHandler{svc: svc, log: log}
}

func (h *NotificationsHandler) Register(rt *Router) {
	rt.ProtectedQuery("notification.getMine", h.ListNotifications)
	rt.Mutation("notification.markRead", h.MarkRead)
}

// ListNotifications returns the caller's notifications
func (h *NotificationsHandler) ListNotifications(ctx context.Context, userID string, _ json.RawMessage) (any, error) {
	return h.svc.GetMine(ctx, userID)
}

func (h *NotificationsHandler) MarkRead(ctx context.Context, userID string, input json.RawMessage) (any, error) {
	in, err := decode[idInput](input)
	if err != nil {
		return nil, err
	}
	if err := h.svc.MarkRead(ctx, userID, in.ID); err != nil {
		return nil, err
	}
	return success, nil
}
