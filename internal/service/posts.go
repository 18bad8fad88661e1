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
	"github.com/sowhat1234/yazamutforum/internal/slug"
)

// PostService implements the legacy forum post procedures.
type PostService struct {
	repo *db.Repository
	log  *log.Logger
}

type ListPostsInput struct {
	Limit      *int   `json:"limit"`
	Cursor     string `json:"cursor"`
	CategoryID string `json:"categoryId"`
}

// PostPage is one page of a category listing.
type PostPage struct {
	Posts      []*models.PostSummary `json:"posts"`
	NextCursor *string               `json:"nextCursor,omitempty"`
}

type CreatePostInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID string `json:"categoryId"`
}

type PostVoteInput struct {
	PostID string          `json:"postId"`
	Type   models.VoteType `json:"type"`
}

type ReplyVoteInput struct {
	ReplyID string          `json:"replyId"`
	Type    models.VoteType `json:"type"`
}

type ReplyInput struct {
	PostID   string  `json:"postId"`
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

type PinInput struct {
	ID     string `json:"id"`
	Pinned bool   `json:"pinned"`
}

// GetAll returns a page of posts, pinned first then newest.
func (s *PostService) GetAll(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	limit, err := resolveLimit(in.Limit)
	if err != nil {
		return nil, err
	}
	posts, err := s.repo.ListPosts(ctx, in.CategoryID, in.Cursor, limit+1)
	if err != nil {
		return nil, cursorErr(err)
	}
	posts, next := paginate(posts, limit, func(p *models.PostSummary) string { return p.ID })
	return &PostPage{Posts: posts, NextCursor: next}, nil
}

// GetBySlug returns a post with its category, replies and votes and counts
// the read as a view.
func (s *PostService) GetBySlug(ctx context.Context, postSlug string) (*models.PostDetail, error) {
	post, err := s.repo.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return nil, lookup(err, "Post not found")
	}
	if err := s.repo.IncrementPostViews(ctx, post.ID); err != nil {
		return nil, lookup(err, "Post not found")
	}
	post.ViewCount++

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.repo.GetCategoryByID(gctx, post.CategoryID)
		post.Category = c
		return err
	})
	g.Go(func() error {
		replies, err := s.repo.ListRepliesByPost(gctx, post.ID)
		post.Replies = replies
		return err
	})
	g.Go(func() error {
		votes, err := s.repo.ListPostVotes(gctx, post.ID)
		post.Votes = votes
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internal(err)
	}
	return post, nil
}

// Create opens a thread in an existing category.
func (s *PostService) Create(ctx context.Context, userID string, in CreatePostInput) (*models.PostDetail, error) {
	title := strings.TrimSpace(in.Title)
	if err := checkLength("title", title, 1, 200); err != nil {
		return nil, err
	}
	if err := checkLength("content", strings.TrimSpace(in.Content), 1, 0); err != nil {
		return nil, err
	}
	category, err := s.repo.GetCategoryByID(ctx, in.CategoryID)
	if err != nil {
		return nil, lookup(err, "Category not found")
	}

	base := title
	if slug.Make(base) == "" {
		base = "post"
	}
	postSlug, err := slug.Unique(ctx, base, s.repo.PostSlugExists)
	if err != nil {
		return nil, internal(err)
	}

	post := &models.Post{
		Title:      title,
		Content:    in.Content,
		Slug:       postSlug,
		CategoryID: category.ID,
		AuthorID:   userID,
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, conflictOr(err, "Post slug already taken", "Post not found")
	}

	detail, err := s.repo.GetPostBySlug(ctx, post.Slug)
	if err != nil {
		return nil, internal(err)
	}
	detail.Category = category
	detail.Replies = []*models.Reply{}
	detail.Votes = []*models.PostVote{}
	s.log.Printf("post %q created by %s", post.Slug, userID)
	return detail, nil
}

// Vote creates, switches or toggles off the caller's vote on a post.
func (s *PostService) Vote(ctx context.Context, userID string, in PostVoteInput) (*models.PostVoteResult, error) {
	if !in.Type.Valid() {
		return nil, apperr.BadRequestf("invalid vote type %q", in.Type)
	}
	if _, err := s.repo.GetPostByID(ctx, in.PostID); err != nil {
		return nil, lookup(err, "Post not found")
	}
	res, err := s.repo.ApplyPostVote(ctx, in.PostID, userID, in.Type)
	if err != nil {
		return nil, internal(err)
	}
	return res, nil
}

// VoteReply creates, switches or toggles off the caller's vote on a reply.
func (s *PostService) VoteReply(ctx context.Context, userID string, in ReplyVoteInput) (*models.PostVoteResult, error) {
	if !in.Type.Valid() {
		return nil, apperr.BadRequestf("invalid vote type %q", in.Type)
	}
	if _, err := s.repo.GetReply(ctx, in.ReplyID); err != nil {
		return nil, lookup(err, "Reply not found")
	}
	res, err := s.repo.ApplyReplyVote(ctx, in.ReplyID, userID, in.Type)
	if err != nil {
		return nil, internal(err)
	}
	return res, nil
}

// Reply answers a post or one of its top-level replies.
func (s *PostService) Reply(ctx context.Context, userID string, in ReplyInput) (*models.Reply, error) {
	if err := checkLength("content", strings.TrimSpace(in.Content), 1, 0); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetPostByID(ctx, in.PostID); err != nil {
		return nil, lookup(err, "Post not found")
	}

	reply := &models.Reply{PostID: in.PostID, AuthorID: userID, Content: in.Content, Votes: []*models.ReplyVote{}}
	if in.ParentID != nil && *in.ParentID != "" {
		parent, err := s.repo.GetReply(ctx, *in.ParentID)
		if err != nil {
			return nil, lookup(err, "Parent reply not found")
		}
		if parent.PostID != in.PostID {
			return nil, apperr.BadRequestf("Parent reply does not belong to this post")
		}
		if parent.ParentID != nil {
			return nil, apperr.BadRequestf("Replies cannot be nested")
		}
		reply.ParentID = &parent.ID
	} else {
		reply.Children = []*models.Reply{}
	}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		return nil, internal(err)
	}
	return reply, nil
}

// Pin pins or unpins a post. Admins only.
func (s *PostService) Pin(ctx context.Context, userID string, in PinInput) (*models.Post, error) {
	if err := requireAdmin(ctx, s.repo, userID, "Only admins can pin posts"); err != nil {
		return nil, err
	}
	if err := s.repo.SetPostPinned(ctx, in.ID, in.Pinned); err != nil {
		return nil, lookup(err, "Post not found")
	}
	post, err := s.repo.GetPostByID(ctx, in.ID)
	if err != nil {
		return nil, lookup(err, "Post not found")
	}
	return post, nil
}

// GetLatest returns the caller's most recent post, or nil when there is none.
func (s *PostService) GetLatest(ctx context.Context, userID string) (*models.Post, error) {
	post, err := s.repo.GetLatestPostByAuthor(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal(err)
	}
	return post, nil
}
