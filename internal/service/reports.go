package service

import (
	"context"
	"log"
	"strings"

	"github.com/sowhat1234/yazamutforum/internal/apperr"
	"github.com/sowhat1234/yazamutforum/internal/db"
	"github.com/sowhat1234/yazamutforum/internal/models"
)

// ReportService handles moderation reports on ideas and comments.
type ReportService struct {
	repo *db.Repository
	log  *log.Logger
}

type CreateReportInput struct {
	IdeaID    *string `json:"ideaId"`
	CommentID *string `json:"commentId"`
	Reason    string  `json:"reason"`
}

// Create files a report against exactly one idea or comment.
func (s *ReportService) Create(ctx context.Context, userID string, in CreateReportInput) (*models.Report, error) {
	reason := strings.TrimSpace(in.Reason)
	if err := checkLength("reason", reason, 1, 500); err != nil {
		return nil, err
	}
	hasIdea := in.IdeaID != nil && *in.IdeaID != ""
	hasComment := in.CommentID != nil && *in.CommentID != ""
	if hasIdea == hasComment {
		return nil, apperr.BadRequestf("a report must target exactly one idea or comment")
	}

	rp := &models.Report{ReporterID: userID, Reason: reason}
	if hasIdea {
		if _, err := s.repo.GetIdea(ctx, *in.IdeaID); err != nil {
			return nil, lookup(err, "Idea not found")
		}
		rp.IdeaID = in.IdeaID
	} else {
		if _, err := s.repo.GetCommentByID(ctx, *in.CommentID); err != nil {
			return nil, lookup(err, "Comment not found")
		}
		rp.CommentID = in.CommentID
	}
	if err := s.repo.CreateReport(ctx, rp); err != nil {
		return nil, internal(err)
	}
	s.log.Printf("report %s filed by %s", rp.ID, userID)
	return rp, nil
}

// GetAll lists every report, newest first. Admins only.
func (s *ReportService) GetAll(ctx context.Context, userID string) ([]*models.Report, error) {
	if err := requireAdmin(ctx, s.repo, userID, "Only admins can view reports"); err != nil {
		return nil, err
	}
	reports, err := s.repo.ListReports(ctx)
	if err != nil {
		return nil, internal(err)
	}
	return reports, nil
}

// Close marks a report as handled. Admins only.
func (s *ReportService) Close(ctx context.Context, userID, id string) error {
	if err := requireAdmin(ctx, s.repo, userID, "Only admins can close reports"); err != nil {
		return err
	}
	if err := s.repo.CloseReport(ctx, id); err != nil {
		return lookup(err, "Report not found")
	}
	return nil
}
