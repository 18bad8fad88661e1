package service

import (
	"context"
	"log"

	"github.com/sowhat1234/yazamutforum/internal/apperr"
	"github.com/sowhat1234/yazamutforum/internal/db"
	"github.com/sowhat1234/yazamutforum/internal/models"
)

// NotificationService stores and serves user notifications.
type NotificationService struct {
	repo *db.Repository
	log  *log.Logger
}

// send stores n unless it would notify the actor about their own action.
// Failures are logged and never fail the triggering request.
func (s *NotificationService) send(ctx context.Context, n *models.Notification) {
	if n.FromUserID != nil && *n.FromUserID == n.UserID {
		return
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.log.Printf("failed to create %s notification for %s: %v", n.Type, n.UserID, err)
	}
}

// GetMine lists the caller's notifications, newest first.
func (s *NotificationService) GetMine(ctx context.Context, userID string) ([]*models.Notification, error) {
	notifs, err := s.repo.ListNotificationsByUser(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	return notifs, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	n, err := s.repo.GetNotification(ctx, id)
	if err != nil {
		return lookup(err, "Notification not found")
	}
	// Someone else's notification is reported as missing.
	if n.UserID != userID {
		return apperr.NotFoundf("Notification not found")
	}
	if err := s.repo.MarkNotificationRead(ctx, id); err != nil {
		return lookup(err, "Notification not found")
	}
	return nil
}
