package service

import (
	"context"
	"log"
	"strings"

	"github.com/sowhat1234/yazamutforum/internal/apperr"
	"github.com/sowhat1234/yazamutforum/internal/db"
	"github.com/sowhat1234/yazamutforum/internal/models"
)

// CommentService implements the comment procedures.
type CommentService struct {
	repo   *db.Repository
	log    *log.Logger
	notify *NotificationService
}

type CreateCommentInput struct {
	IdeaID   string  `json:"ideaId"`
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

type UpdateCommentInput struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// GetByIdea returns the comment tree of an idea.
func (s *CommentService) GetByIdea(ctx context.Context, ideaID string) ([]*models.Comment, error) {
	comments, err := s.repo.ListCommentsByIdea(ctx, ideaID)
	if err != nil {
		return nil, internal(err)
	}
	return comments, nil
}

// GetByID returns a comment with its replies.
func (s *CommentService) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	c, err := s.repo.GetCommentByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Comment not found")
	}
	replies, err := s.repo.ListReplies(ctx, id)
	if err != nil {
		return nil, internal(err)
	}
	c.Replies = replies
	return c, nil
}

// Create adds a comment or a reply to a top-level comment.
func (s *CommentService) Create(ctx context.Context, userID string, in CreateCommentInput) (*models.Comment, error) {
	if err := checkLength("content", strings.TrimSpace(in.Content), 1, 0); err != nil {
		return nil, err
	}
	idea, err := s.repo.GetIdea(ctx, in.IdeaID)
	if err != nil {
		return nil, lookup(err, "Idea not found")
	}

	var parent *models.Comment
	if in.ParentID != nil && *in.ParentID != "" {
		parent, err = s.repo.GetCommentByID(ctx, *in.ParentID)
		if err != nil {
			return nil, lookup(err, "Parent comment not found")
		}
		if parent.IdeaID != in.IdeaID {
			return nil, apperr.BadRequestf("Parent comment does not belong to this idea")
		}
		if parent.ParentID != nil {
			return nil, apperr.BadRequestf("Replies cannot be nested")
		}
	}

	comment := &models.Comment{
		IdeaID:   in.IdeaID,
		AuthorID: userID,
		Content:  in.Content,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	} else {
		comment.Replies = []*models.Comment{}
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, internal(err)
	}

	s.notify.send(ctx, &models.Notification{
		UserID:     idea.AuthorID,
		Type:       models.NotifyComment,
		FromUserID: &userID,
		IdeaID:     &idea.ID,
		CommentID:  &comment.ID,
	})
	if parent != nil && parent.AuthorID != idea.AuthorID {
		s.notify.send(ctx, &models.Notification{
			UserID:     parent.AuthorID,
			Type:       models.NotifyReply,
			FromUserID: &userID,
			IdeaID:     &idea.ID,
			CommentID:  &comment.ID,
		})
	}

	created, err := s.repo.GetCommentByID(ctx, comment.ID)
	if err != nil {
		return nil, internal(err)
	}
	return created, nil
}

func (s *CommentService) ownComment(ctx context.Context, userID, id, forbidden string) (*models.Comment, error) {
	c, err := s.repo.GetCommentByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Comment not found")
	}
	if c.AuthorID != userID {
		return nil, apperr.Forbiddenf("%s", forbidden)
	}
	return c, nil
}

// Update edits the text of the caller's own comment.
func (s *CommentService) Update(ctx context.Context, userID string, in UpdateCommentInput) (*models.Comment, error) {
	if err := checkLength("content", strings.TrimSpace(in.Content), 1, 0); err != nil {
		return nil, err
	}
	if _, err := s.ownComment(ctx, userID, in.ID, "You can only edit your own comments"); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateComment(ctx, in.ID, in.Content); err != nil {
		return nil, lookup(err, "Comment not found")
	}
	c, err := s.repo.GetCommentByID(ctx, in.ID)
	if err != nil {
		return nil, lookup(err, "Comment not found")
	}
	return c, nil
}

// Delete removes the caller's own comment and its replies.
func (s *CommentService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.ownComment(ctx, userID, id, "You can only delete your own comments"); err != nil {
		return err
	}
	if err := s.repo.DeleteComment(ctx, id); err != nil {
		return lookup(err, "Comment not found")
	}
	return nil
}
