package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sowhat1234/yazamutforum/internal/apperr"
	"github.com/sowhat1234/yazamutforum/internal/db"
	"github.com/sowhat1234/yazamutforum/internal/models"
	"github.com/sowhat1234/yazamutforum/internal/richtext"
)

// IdeaService implements the idea procedures.
type IdeaService struct {
	repo   *db.Repository
	log    *log.Logger
	notify *NotificationService
}

// ListIdeasInput filters and pages the idea feed.
type ListIdeasInput struct {
	Limit     *int                `json:"limit"`
	Cursor    string              `json:"cursor"`
	Category  models.IdeaCategory `json:"category"`
	WantsTeam *bool               `json:"wantsTeam"`
	Search    string              `json:"search"`
}

// IdeaPage is one page of the feed.
type IdeaPage struct {
	Ideas      []*models.IdeaSummary `json:"ideas"`
	NextCursor *string               `json:"nextCursor,omitempty"`
}

type CreateIdeaInput struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Category     models.IdeaCategory `json:"category"`
	Tags         []string            `json:"tags"`
	WantsTeam    bool                `json:"wantsTeam"`
	NeededSkills []string            `json:"neededSkills"`
}

type UpdateIdeaInput struct {
	ID           string               `json:"id"`
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Category     *models.IdeaCategory `json:"category"`
	Tags         *[]string            `json:"tags"`
	WantsTeam    *bool                `json:"wantsTeam"`
	NeededSkills *[]string            `json:"neededSkills"`
}

type VoteInput struct {
	IdeaID string          `json:"ideaId"`
	Type   models.VoteType `json:"type"`
}

type InterestInput struct {
	IdeaID  string  `json:"ideaId"`
	Message *string `json:"message"`
}

// GetAll returns a page of ideas, newest first.
func (s *IdeaService) GetAll(ctx context.Context, in ListIdeasInput) (*IdeaPage, error) {
	limit, err := resolveLimit(in.Limit)
	if err != nil {
		return nil, err
	}
	if in.Category != "" && !in.Category.Valid() {
		return nil, apperr.BadRequestf("invalid category %q", in.Category)
	}

	filter := models.IdeaFilter{
		Category:  in.Category,
		WantsTeam: in.WantsTeam,
		Search:    strings.TrimSpace(in.Search),
	}
	ideas, err := s.repo.ListIdeas(ctx, filter, in.Cursor, limit+1)
	if err != nil {
		return nil, cursorErr(err)
	}
	ideas, next := paginate(ideas, limit, func(i *models.IdeaSummary) string { return i.ID })
	withExcerpts(ideas)
	return &IdeaPage{Ideas: ideas, NextCursor: next}, nil
}

func withExcerpts(ideas []*models.IdeaSummary) {
	for _, i := range ideas {
		i.Excerpt = richtext.Excerpt(i.Description, richtext.ExcerptLength)
	}
}

// GetByID returns an idea with its author, comment tree, votes and interests.
func (s *IdeaService) GetByID(ctx context.Context, id string) (*models.IdeaDetail, error) {
	idea, err := s.repo.GetIdeaWithAuthor(ctx, id)
	if err != nil {
		return nil, lookup(err, "Idea not found")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		comments, err := s.repo.ListCommentsByIdea(gctx, id)
		idea.Comments = comments
		return err
	})
	g.Go(func() error {
		votes, err := s.repo.ListVotesByIdea(gctx, id)
		idea.Votes = votes
		return err
	})
	g.Go(func() error {
		interests, err := s.repo.ListInterestsByIdea(gctx, id)
		idea.Interests = interests
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internal(err)
	}
	return idea, nil
}

// Create stores a new idea by userID.
func (s *IdeaService) Create(ctx context.Context, userID string, in CreateIdeaInput) (*models.Idea, error) {
	title := strings.TrimSpace(in.Title)
	if err := checkLength("title", title, 1, 200); err != nil {
		return nil, err
	}
	if err := checkLength("description", strings.TrimSpace(in.Description), 1, 0); err != nil {
		return nil, err
	}
	if !in.Category.Valid() {
		return nil, apperr.BadRequestf("invalid category %q", in.Category)
	}

	idea := &models.Idea{
		Title:        title,
		Description:  in.Description,
		Category:     in.Category,
		Tags:         cleanList(in.Tags),
		WantsTeam:    in.WantsTeam,
		NeededSkills: cleanList(in.NeededSkills),
		AuthorID:     userID,
	}
	if err := s.repo.CreateIdea(ctx, idea); err != nil {
		return nil, internal(err)
	}
	s.log.Printf("idea %s created by %s", idea.ID, userID)
	return idea, nil
}

// ownIdea loads an idea and checks that userID wrote it.
func (s *IdeaService) ownIdea(ctx context.Context, userID, id, forbidden string) (*models.Idea, error) {
	idea, err := s.repo.GetIdea(ctx, id)
	if err != nil {
		return nil, lookup(err, "Idea not found")
	}
	if idea.AuthorID != userID {
		return nil, apperr.Forbiddenf("%s", forbidden)
	}
	return idea, nil
}

// Update applies a partial update to the caller's own idea.
func (s *IdeaService) Update(ctx context.Context, userID string, in UpdateIdeaInput) (*models.Idea, error) {
	if _, err := s.ownIdea(ctx, userID, in.ID, "You can only edit your own ideas"); err != nil {
		return nil, err
	}

	patch := models.IdeaPatch{
		Description: in.Description,
		Category:    in.Category,
		WantsTeam:   in.WantsTeam,
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := checkLength("title", title, 1, 200); err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if in.Description != nil {
		if err := checkLength("description", strings.TrimSpace(*in.Description), 1, 0); err != nil {
			return nil, err
		}
	}
	if in.Category != nil && !in.Category.Valid() {
		return nil, apperr.BadRequestf("invalid category %q", *in.Category)
	}
	if in.Tags != nil {
		tags := cleanList(*in.Tags)
		patch.Tags = &tags
	}
	if in.NeededSkills != nil {
		skills := cleanList(*in.NeededSkills)
		patch.NeededSkills = &skills
	}

	if err := s.repo.UpdateIdea(ctx, in.ID, patch); err != nil {
		return nil, lookup(err, "Idea not found")
	}
	idea, err := s.repo.GetIdea(ctx, in.ID)
	if err != nil {
		return nil, lookup(err, "Idea not found")
	}
	return idea, nil
}

// Delete removes the caller's own idea and everything attached to it.
func (s *IdeaService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.ownIdea(ctx, userID, id, "You can only delete your own ideas"); err != nil {
		return err
	}
	if err := s.repo.DeleteIdea(ctx, id); err != nil {
		return lookup(err, "Idea not found")
	}
	s.log.Printf("idea %s deleted by %s", id, userID)
	return nil
}

// Vote creates, switches or toggles off the caller's vote on an idea.
func (s *IdeaService) Vote(ctx context.Context, userID string, in VoteInput) (*models.VoteResult, error) {
	if !in.Type.Valid() {
		return nil, apperr.BadRequestf("invalid vote type %q", in.Type)
	}
	idea, err := s.repo.GetIdea(ctx, in.IdeaID)
	if err != nil {
		return nil, lookup(err, "Idea not found")
	}
	if idea.AuthorID == userID {
		return nil, apperr.Forbiddenf("You cannot vote on your own idea")
	}

	res, err := s.repo.ApplyVote(ctx, in.IdeaID, userID, in.Type)
	if err != nil {
		return nil, lookup(err, "Idea not found")
	}
	return res, nil
}

// ShowInterest records the caller's wish to join someone else's idea.
func (s *IdeaService) ShowInterest(ctx context.Context, userID string, in InterestInput) (*models.Interest, error) {
	idea, err := s.repo.GetIdea(ctx, in.IdeaID)
	if err != nil {
		return nil, lookup(err, "Idea not found")
	}
	if idea.AuthorID == userID {
		return nil, apperr.Forbiddenf("You cannot show interest in your own idea")
	}

	interest := &models.Interest{UserID: userID, IdeaID: in.IdeaID, Message: in.Message}
	if err := s.repo.CreateInterest(ctx, interest); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, apperr.Conflictf("You have already shown interest in this idea")
		}
		return nil, internal(err)
	}

	s.notify.send(ctx, &models.Notification{
		UserID:     idea.AuthorID,
		Type:       models.NotifyInterest,
		FromUserID: &userID,
		IdeaID:     &idea.ID,
	})
	return interest, nil
}

// RemoveInterest withdraws the caller's interest in an idea.
func (s *IdeaService) RemoveInterest(ctx context.Context, userID, ideaID string) error {
	if err := s.repo.DeleteInterest(ctx, userID, ideaID); err != nil {
		return lookup(err, "Interest not found")
	}
	return nil
}

// GetInterestedUsers lists the interests in an idea, newest first.
func (s *IdeaService) GetInterestedUsers(ctx context.Context, ideaID string) ([]*models.Interest, error) {
	interests, err := s.repo.ListInterestsByIdea(ctx, ideaID)
	if err != nil {
		return nil, internal(err)
	}
	return interests, nil
}

// GetMyIdeas lists the caller's ideas, newest first.
func (s *IdeaService) GetMyIdeas(ctx context.Context, userID string) ([]*models.IdeaSummary, error) {
	ideas, err := s.repo.ListIdeas(ctx, models.IdeaFilter{AuthorID: userID}, "", 0)
	if err != nil {
		return nil, internal(err)
	}
	withExcerpts(ideas)
	return ideas, nil
}

// GetMyInterests lists the caller's interests with the ideas they point at.
func (s *IdeaService) GetMyInterests(ctx context.Context, userID string) ([]*models.Interest, error) {
	interests, err := s.repo.ListInterestsByUser(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	for _, in := range interests {
		if in.Idea != nil {
			withExcerpts([]*models.IdeaSummary{in.Idea})
		}
	}
	return interests, nil
}
