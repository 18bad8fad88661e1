package handlers

import (
	"log"

	"github.com/sowhat1234/yazamutforum/internal/service"
)

// NewAPI returns a router with every procedure registered.
func NewAPI(s *service.Services, log *log.Logger) *Router {
	rt := NewRouter(log)
	NewAuthHandler(s.Users, log).Register(rt)
	NewIdeaHandler(s.Ideas, log).Register(rt)
	NewVoteHandler(s.Ideas, s.Posts, log).Register(rt)
	NewProfileHandler(s.Ideas, s.Posts, log).Register(rt)
	NewCommentHandler(s.Comments, log).Register(rt)
	NewCategoryHandler(s.Categories, log).Register(rt)
	NewPostHandler(s.Posts, log).Register(rt)
	NewNotificationsHandler(s.Notifications, log).Register(rt)
	NewReportHandler(s.Reports, log).Register(rt)
	return rt
}
