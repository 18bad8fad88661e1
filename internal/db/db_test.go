package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sowhat1234/yazamutforum/internal/config"
	"github.com/sowhat1234/yazamutforum/internal/models"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Path = ":memory:"
	repo, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createUser(t *testing.T, repo *Repository, username string) *models.User {
	t.Helper()
	user := &models.User{Name: username, Username: username, Email: username + "@example.com"}
	if err := repo.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createIdea(t *testing.T, repo *Repository, authorID, title string) *models.Idea {
	t.Helper()
	idea := &models.Idea{Title: title, Description: "<p>desc</p>", Category: models.CategorySaaS, AuthorID: authorID}
	if err := repo.CreateIdea(context.Background(), idea); err != nil {
		t.Fatalf("failed to create idea: %v", err)
	}
	return idea
}

func TestUpsertUserKeepsRole(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	if err := repo.SetUserRole(ctx, user.ID, models.RoleAdmin); err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}
	again := &models.User{ID: user.ID, Name: "Alice A", Username: "alice"}
	if err := repo.UpsertUser(ctx, again); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	got, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("expected role to stay ADMIN, got %s", got.Role)
	}
	if got.Name != "Alice A" {
		t.Errorf("expected refreshed name, got %q", got.Name)
	}
}

func TestSessions(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "bob")

	live := &models.Session{SessionID: "live", UserID: user.ID, Expires: time.Now().Add(time.Hour)}
	dead := &models.Session{SessionID: "dead", UserID: user.ID, Expires: time.Now().Add(-time.Hour)}
	for _, s := range []*models.Session{live, dead} {
		if err := repo.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	if _, err := repo.GetSession(ctx, "live"); err != nil {
		t.Errorf("expected live session, got %v", err)
	}
	if _, err := repo.GetSession(ctx, "dead"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired session, got %v", err)
	}
	n, err := repo.CleanExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("CleanExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired session removed, got %d", n)
	}
}

func TestApplyVote(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	author := createUser(t, repo, "author")
	voter := createUser(t, repo, "voter")
	idea := createIdea(t, repo, author.ID, "Vote me")

	steps := []struct {
		vote      models.VoteType
		action    models.VoteAction
		up, down  int
		liveVotes int
	}{
		{models.VoteUp, models.VoteCreated, 1, 0, 1},
		{models.VoteDown, models.VoteUpdated, 0, 1, 1},
		{models.VoteDown, models.VoteRemoved, 0, 0, 0},
	}
	for _, step := range steps {
		res, err := repo.ApplyVote(ctx, idea.ID, voter.ID, step.vote)
		if err != nil {
			t.Fatalf("ApplyVote(%s): %v", step.vote, err)
		}
		if res.Action != step.action || res.Upvotes != step.up || res.Downvotes != step.down {
			t.Errorf("ApplyVote(%s) = %+v, want %s %d/%d", step.vote, res, step.action, step.up, step.down)
		}
		votes, err := repo.ListVotesByIdea(ctx, idea.ID)
		if err != nil {
			t.Fatalf("ListVotesByIdea: %v", err)
		}
		if len(votes) != step.liveVotes {
			t.Errorf("expected %d live votes, got %d", step.liveVotes, len(votes))
		}
	}
}

func TestApplyVoteMissingIdea(t *testing.T) {
	repo := setupTestRepo(t)
	voter := createUser(t, repo, "voter")

	_, err := repo.ApplyVote(context.Background(), "missing", voter.ID, models.VoteUp)
	if err == nil {
		t.Fatal("expected an error voting on a missing idea")
	}
}

func TestCreateInterestConflict(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	author := createUser(t, repo, "author")
	fan := createUser(t, repo, "fan")
	idea := createIdea(t, repo, author.ID, "Team up")

	if err := repo.CreateInterest(ctx, &models.Interest{UserID: fan.ID, IdeaID: idea.ID}); err != nil {
		t.Fatalf("CreateInterest: %v", err)
	}
	err := repo.CreateInterest(ctx, &models.Interest{UserID: fan.ID, IdeaID: idea.ID})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	mine, err := repo.ListInterestsByUser(ctx, fan.ID)
	if err != nil {
		t.Fatalf("ListInterestsByUser: %v", err)
	}
	if len(mine) != 1 || mine[0].Idea == nil || mine[0].Idea.Count.Interests != 1 {
		t.Errorf("unexpected interests: %+v", mine)
	}

	if err := repo.DeleteInterest(ctx, fan.ID, idea.ID); err != nil {
		t.Fatalf("DeleteInterest: %v", err)
	}
	if err := repo.DeleteInterest(ctx, fan.ID, idea.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCommentsNestingAndDelete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "carol")
	idea := createIdea(t, repo, user.ID, "Discuss")

	first := &models.Comment{IdeaID: idea.ID, AuthorID: user.ID, Content: "first"}
	second := &models.Comment{IdeaID: idea.ID, AuthorID: user.ID, Content: "second"}
	for _, c := range []*models.Comment{first, second} {
		if err := repo.CreateComment(ctx, c); err != nil {
			t.Fatalf("CreateComment: %v", err)
		}
	}
	reply := &models.Comment{IdeaID: idea.ID, AuthorID: user.ID, Content: "reply", ParentID: &first.ID}
	if err := repo.CreateComment(ctx, reply); err != nil {
		t.Fatalf("CreateComment reply: %v", err)
	}
	notif := &models.Notification{UserID: user.ID, Type: models.NotifyReply, CommentID: &reply.ID}
	if err := repo.CreateNotification(ctx, notif); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	comments, err := repo.ListCommentsByIdea(ctx, idea.ID)
	if err != nil {
		t.Fatalf("ListCommentsByIdea: %v", err)
	}
	if len(comments) != 2 || comments[0].ID != first.ID || comments[1].ID != second.ID {
		t.Fatalf("expected top-level comments in creation order, got %+v", comments)
	}
	if len(comments[0].Replies) != 1 || comments[0].Replies[0].ID != reply.ID {
		t.Errorf("expected reply nested under first comment, got %+v", comments[0].Replies)
	}

	if err := repo.DeleteComment(ctx, first.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if _, err := repo.GetCommentByID(ctx, reply.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected reply to be deleted with its parent, got %v", err)
	}
	n, err := repo.CountComments(ctx, idea.ID)
	if err != nil {
		t.Fatalf("CountComments: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 comment left, got %d", n)
	}
}

func TestDeleteIdeaCascades(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	author := createUser(t, repo, "author")
	other := createUser(t, repo, "other")
	idea := createIdea(t, repo, author.ID, "Short lived")

	c := &models.Comment{IdeaID: idea.ID, AuthorID: other.ID, Content: "hi"}
	if err := repo.CreateComment(ctx, c); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if _, err := repo.ApplyVote(ctx, idea.ID, other.ID, models.VoteUp); err != nil {
		t.Fatalf("ApplyVote: %v", err)
	}
	if err := repo.CreateInterest(ctx, &models.Interest{UserID: other.ID, IdeaID: idea.ID}); err != nil {
		t.Fatalf("CreateInterest: %v", err)
	}
	if err := repo.CreateReport(ctx, &models.Report{ReporterID: other.ID, CommentID: &c.ID, Reason: "spam"}); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	if err := repo.DeleteIdea(ctx, idea.ID); err != nil {
		t.Fatalf("DeleteIdea: %v", err)
	}
	if _, err := repo.GetIdea(ctx, idea.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteIdea(ctx, idea.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestListIdeasCursorAndFilters(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "dave")

	var ids []string
	for _, title := range []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"} {
		ids = append(ids, createIdea(t, repo, user.ID, title).ID)
	}
	tagged := &models.Idea{Title: "Tagged", Description: "x", Category: models.CategoryHardware,
		Tags: []string{"Robotics"}, WantsTeam: true, AuthorID: user.ID}
	if err := repo.CreateIdea(ctx, tagged); err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}

	page, err := repo.ListIdeas(ctx, models.IdeaFilter{}, "", 3)
	if err != nil {
		t.Fatalf("ListIdeas: %v", err)
	}
	if len(page) != 3 || page[0].ID != tagged.ID || page[2].ID != ids[3] {
		t.Fatalf("unexpected first page order")
	}
	next, err := repo.ListIdeas(ctx, models.IdeaFilter{}, page[2].ID, 10)
	if err != nil {
		t.Fatalf("ListIdeas after cursor: %v", err)
	}
	if len(next) != 3 || next[0].ID != ids[2] || next[2].ID != ids[0] {
		t.Errorf("unexpected second page: %d items", len(next))
	}

	if _, err := repo.ListIdeas(ctx, models.IdeaFilter{}, "unknown", 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown cursor, got %v", err)
	}

	wants := true
	filters := []struct {
		name string
		f    models.IdeaFilter
		want int
	}{
		{"category", models.IdeaFilter{Category: models.CategoryHardware}, 1},
		{"wants team", models.IdeaFilter{WantsTeam: &wants}, 1},
		{"search title", models.IdeaFilter{Search: "alp"}, 1},
		{"search tag", models.IdeaFilter{Search: "robot"}, 1},
		{"search literal percent", models.IdeaFilter{Search: "%"}, 0},
		{"author", models.IdeaFilter{AuthorID: user.ID}, 6},
	}
	for _, tt := range filters {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListIdeas(ctx, tt.f, "", 0)
			if err != nil {
				t.Fatalf("ListIdeas: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d ideas, got %d", tt.want, len(got))
			}
		})
	}
}

func TestListIdeasSearchFoldsUnicode(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "zoe")
	idea := createIdea(t, repo, user.ID, "École Platform")
	tagged := &models.Idea{Title: "Cafe", Description: "<p>Ünïcode text</p>", Category: models.CategorySaaS,
		Tags: []string{"ÇA-VA"}, AuthorID: user.ID}
	if err := repo.CreateIdea(ctx, tagged); err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}

	search := func(q string) []*models.IdeaSummary {
		t.Helper()
		got, err := repo.ListIdeas(ctx, models.IdeaFilter{Search: q}, "", 0)
		if err != nil {
			t.Fatalf("ListIdeas(%q): %v", q, err)
		}
		return got
	}

	if got := search("école"); len(got) != 1 || got[0].ID != idea.ID {
		t.Errorf("expected lower-case query to match title, got %d ideas", len(got))
	}
	if got := search("ÉCOLE PLAT"); len(got) != 1 {
		t.Errorf("expected upper-case query to match title, got %d ideas", len(got))
	}
	if got := search("ünïcode"); len(got) != 1 || got[0].ID != tagged.ID {
		t.Errorf("expected query to match description, got %d ideas", len(got))
	}
	if got := search("ça-va"); len(got) != 1 || got[0].ID != tagged.ID {
		t.Errorf("expected query to match tag, got %d ideas", len(got))
	}

	title := "Übersicht"
	if err := repo.UpdateIdea(ctx, idea.ID, models.IdeaPatch{Title: &title}); err != nil {
		t.Fatalf("UpdateIdea: %v", err)
	}
	if got := search("école"); len(got) != 0 {
		t.Errorf("expected old title to stop matching, got %d ideas", len(got))
	}
	if got := search("übersicht"); len(got) != 1 || got[0].ID != idea.ID {
		t.Errorf("expected updated title to match, got %d ideas", len(got))
	}
}

func TestUpdateIdea(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "erin")
	idea := createIdea(t, repo, user.ID, "Before")

	title := "After"
	tags := []string{"go"}
	if err := repo.UpdateIdea(ctx, idea.ID, models.IdeaPatch{Title: &title, Tags: &tags}); err != nil {
		t.Fatalf("UpdateIdea: %v", err)
	}
	got, err := repo.GetIdea(ctx, idea.ID)
	if err != nil {
		t.Fatalf("GetIdea: %v", err)
	}
	if got.Title != "After" || len(got.Tags) != 1 || got.Description != idea.Description {
		t.Errorf("unexpected idea after update: %+v", got)
	}
	if err := repo.UpdateIdea(ctx, "missing", models.IdeaPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCategories(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	general := &models.Category{Name: "General", Slug: "general", Color: "#3b82f6", IsActive: true}
	hidden := &models.Category{Name: "Archive", Slug: "archive", Color: "#000000", IsActive: false}
	for _, c := range []*models.Category{general, hidden} {
		if err := repo.CreateCategory(ctx, c); err != nil {
			t.Fatalf("CreateCategory: %v", err)
		}
	}
	dup := &models.Category{Name: "General 2", Slug: "general", Color: "#3b82f6", IsActive: true}
	if err := repo.CreateCategory(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict on duplicate slug, got %v", err)
	}

	exists, err := repo.CategorySlugExists(ctx, "general", "")
	if err != nil || !exists {
		t.Errorf("expected slug to exist, got %v %v", exists, err)
	}
	exists, err = repo.CategorySlugExists(ctx, "general", general.ID)
	if err != nil || exists {
		t.Errorf("expected slug to be free when excluding its owner, got %v %v", exists, err)
	}

	active, err := repo.ListActiveCategories(ctx)
	if err != nil {
		t.Fatalf("ListActiveCategories: %v", err)
	}
	if len(active) != 1 || active[0].Slug != "general" {
		t.Errorf("expected only the active category, got %+v", active)
	}
}

func TestPostsRepliesAndVotes(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "frank")
	other := createUser(t, repo, "grace")
	cat := &models.Category{Name: "General", Slug: "general", Color: "#3b82f6", IsActive: true}
	if err := repo.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	var posts []*models.Post
	for _, slug := range []string{"one", "two", "three"} {
		p := &models.Post{Title: slug, Content: "c", Slug: slug, CategoryID: cat.ID, AuthorID: user.ID}
		if err := repo.CreatePost(ctx, p); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
		posts = append(posts, p)
	}
	if err := repo.SetPostPinned(ctx, posts[0].ID, true); err != nil {
		t.Fatalf("SetPostPinned: %v", err)
	}

	list, err := repo.ListPosts(ctx, cat.ID, "", 2)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(list) != 2 || list[0].ID != posts[0].ID || list[1].ID != posts[2].ID {
		t.Fatalf("expected pinned post first then newest")
	}
	rest, err := repo.ListPosts(ctx, cat.ID, list[1].ID, 10)
	if err != nil {
		t.Fatalf("ListPosts after cursor: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != posts[1].ID {
		t.Errorf("unexpected second page")
	}

	if err := repo.IncrementPostViews(ctx, posts[1].ID); err != nil {
		t.Fatalf("IncrementPostViews: %v", err)
	}
	if err := repo.IncrementPostViews(ctx, posts[1].ID); err != nil {
		t.Fatalf("IncrementPostViews: %v", err)
	}
	detail, err := repo.GetPostBySlug(ctx, "two")
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if detail.ViewCount != 2 {
		t.Errorf("expected 2 views, got %d", detail.ViewCount)
	}

	top := &models.Reply{PostID: posts[1].ID, AuthorID: other.ID, Content: "top"}
	if err := repo.CreateReply(ctx, top); err != nil {
		t.Fatalf("CreateReply: %v", err)
	}
	child := &models.Reply{PostID: posts[1].ID, AuthorID: user.ID, Content: "child", ParentID: &top.ID}
	if err := repo.CreateReply(ctx, child); err != nil {
		t.Fatalf("CreateReply child: %v", err)
	}
	replies, err := repo.ListRepliesByPost(ctx, posts[1].ID)
	if err != nil {
		t.Fatalf("ListRepliesByPost: %v", err)
	}
	if len(replies) != 1 || len(replies[0].Children) != 1 {
		t.Errorf("expected one reply with one child, got %+v", replies)
	}

	res, err := repo.ApplyPostVote(ctx, posts[1].ID, other.ID, models.VoteUp)
	if err != nil {
		t.Fatalf("ApplyPostVote: %v", err)
	}
	if res.Action != models.VoteCreated || res.Upvotes != 1 {
		t.Errorf("unexpected vote result %+v", res)
	}
	res, err = repo.ApplyPostVote(ctx, posts[1].ID, other.ID, models.VoteUp)
	if err != nil {
		t.Fatalf("ApplyPostVote toggle: %v", err)
	}
	if res.Action != models.VoteRemoved || res.Upvotes != 0 {
		t.Errorf("unexpected toggle result %+v", res)
	}

	if _, err := repo.ApplyReplyVote(ctx, top.ID, user.ID, models.VoteUp); err != nil {
		t.Fatalf("ApplyReplyVote: %v", err)
	}
	res, err = repo.ApplyReplyVote(ctx, child.ID, other.ID, models.VoteUp)
	if err != nil {
		t.Fatalf("ApplyReplyVote child: %v", err)
	}
	res, err = repo.ApplyReplyVote(ctx, child.ID, other.ID, models.VoteDown)
	if err != nil {
		t.Fatalf("ApplyReplyVote switch: %v", err)
	}
	if res.Action != models.VoteUpdated || res.Upvotes != 0 || res.Downvotes != 1 {
		t.Errorf("unexpected reply vote result %+v", res)
	}
	replies, err = repo.ListRepliesByPost(ctx, posts[1].ID)
	if err != nil {
		t.Fatalf("ListRepliesByPost: %v", err)
	}
	if got := replies[0].Votes; len(got) != 1 || got[0].UserID != user.ID || got[0].Type != models.VoteUp {
		t.Errorf("expected the top reply to carry one UP vote, got %+v", got)
	}
	if got := replies[0].Children[0].Votes; len(got) != 1 || got[0].Type != models.VoteDown {
		t.Errorf("expected the child reply to carry one DOWN vote, got %+v", got)
	}
	if replies[0].Children[0].Children != nil {
		t.Errorf("expected children of a child reply to stay unset")
	}

	latest, err := repo.GetLatestPostByAuthor(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetLatestPostByAuthor: %v", err)
	}
	if latest.ID != posts[2].ID {
		t.Errorf("expected newest post, got %s", latest.Slug)
	}
}

func TestNotificationsAndReports(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	user := createUser(t, repo, "heidi")
	idea := createIdea(t, repo, user.ID, "Reported")

	n := &models.Notification{UserID: user.ID, Type: models.NotifyInterest, IdeaID: &idea.ID}
	if err := repo.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if err := repo.MarkNotificationRead(ctx, n.ID); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	list, err := repo.ListNotificationsByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListNotificationsByUser: %v", err)
	}
	if len(list) != 1 || !list[0].IsRead {
		t.Errorf("expected one read notification, got %+v", list)
	}

	rp := &models.Report{ReporterID: user.ID, IdeaID: &idea.ID, Reason: "spam"}
	if err := repo.CreateReport(ctx, rp); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if err := repo.CloseReport(ctx, rp.ID); err != nil {
		t.Fatalf("CloseReport: %v", err)
	}
	got, err := repo.GetReport(ctx, rp.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Status != models.ReportClosed {
		t.Errorf("expected closed report, got %s", got.Status)
	}
	if err := repo.CloseReport(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
