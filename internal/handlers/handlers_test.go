package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dgrijalva/jwt-go"

	"github.com/sowhat1234/yazamutforum/internal/apperr"
	"github.com/sowhat1234/yazamutforum/internal/config"
	"github.com/sowhat1234/yazamutforum/internal/db"
	"github.com/sowhat1234/yazamutforum/internal/middleware"
	"github.com/sowhat1234/yazamutforum/internal/models"
	"github.com/sowhat1234/yazamutforum/internal/service"
)

const testSecret = "handler-secret"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *errorBody      `json:"error"`
}

type testServer struct {
	handler http.Handler
	repo    *db.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Path = ":memory:"
	repo, err := db.NewRepository(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(io.Discard, "", 0)
	api := NewAPI(service.New(repo, logger), logger)
	mux := http.NewServeMux()
	mux.Handle(Prefix, middleware.Identify(repo, testSecret, "session_id", logger)(api))
	mux.HandleFunc("/healthz", Health(repo, logger))
	return &testServer{handler: mux, repo: repo}
}

func token(t *testing.T, userID, username string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		UserID:   userID,
		Name:     username,
		Username: username,
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

// call invokes a procedure. Queries go out as GET with an input parameter,
// everything else as POST with a JSON body.
func (s *testServer) call(t *testing.T, method, procedure, bearer string, input any) (int, envelope) {
	t.Helper()
	var raw []byte
	if input != nil {
		var err error
		if raw, err = json.Marshal(input); err != nil {
			t.Fatalf("failed to encode input: %v", err)
		}
	}

	target := Prefix + procedure
	var body io.Reader
	if method == http.MethodGet {
		if raw != nil {
			target += "?input=" + url.QueryEscape(string(raw))
		}
	} else {
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestProcedureErrors(t *testing.T) {
	s := newTestServer(t)
	alice := token(t, "alice", "alice")

	tests := []struct {
		name     string
		method   string
		proc     string
		bearer   string
		input    any
		status   int
		wantCode apperr.Kind
	}{
		{"unknown procedure", http.MethodGet, "idea.nope", "", nil, http.StatusNotFound, apperr.NotFound},
		{"anonymous mutation", http.MethodPost, "idea.create", "", map[string]any{"title": "x"}, http.StatusUnauthorized, apperr.Unauthorized},
		{"anonymous protected query", http.MethodGet, "notification.getMine", "", nil, http.StatusUnauthorized, apperr.Unauthorized},
		{"mutation over GET", http.MethodGet, "idea.create", alice, nil, http.StatusMethodNotAllowed, "METHOD_NOT_SUPPORTED"},
		{"missing idea", http.MethodGet, "idea.getById", "", map[string]string{"id": "missing"}, http.StatusNotFound, apperr.NotFound},
		{"missing id", http.MethodGet, "idea.getById", "", nil, http.StatusBadRequest, apperr.BadRequest},
		{"bad limit", http.MethodGet, "idea.getAll", "", map[string]int{"limit": 500}, http.StatusBadRequest, apperr.BadRequest},
		{"invalid input", http.MethodPost, "idea.create", alice, "not an object", http.StatusBadRequest, apperr.BadRequest},
		{"delete without id", http.MethodPost, "idea.delete", alice, map[string]string{}, http.StatusBadRequest, apperr.BadRequest},
		{"remove interest without idea", http.MethodPost, "idea.removeInterest", alice, map[string]string{}, http.StatusBadRequest, apperr.BadRequest},
		{"reply vote without reply", http.MethodPost, "post.voteReply", alice, map[string]string{"type": "UP"}, http.StatusBadRequest, apperr.BadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.call(t, tt.method, tt.proc, tt.bearer, tt.input)
			if status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, status)
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("expected error code %s, got %+v", tt.wantCode, env.Error)
			}
		})
	}
}

func TestIdeaFlow(t *testing.T) {
	s := newTestServer(t)
	alice := token(t, "alice", "alice")
	bob := token(t, "bob", "bob")

	status, env := s.call(t, http.MethodPost, "idea.create", alice, map[string]any{
		"title":       "Drone delivery",
		"description": "<p>Deliver <em>everything</em></p>",
		"category":    "HARDWARE",
		"tags":        []string{"drones"},
		"wantsTeam":   true,
	})
	if status != http.StatusOK {
		t.Fatalf("idea.create: status %d, error %+v", status, env.Error)
	}
	var idea models.Idea
	if err := json.Unmarshal(env.Data, &idea); err != nil {
		t.Fatalf("decode idea: %v", err)
	}
	if idea.AuthorID != "alice" || idea.Upvotes != 0 {
		t.Errorf("unexpected idea %+v", idea)
	}

	status, env = s.call(t, http.MethodPost, "idea.vote", alice, map[string]string{"ideaId": idea.ID, "type": "UP"})
	if status != http.StatusForbidden || env.Error.Code != apperr.Forbidden {
		t.Errorf("expected own vote to be forbidden, got %d %+v", status, env.Error)
	}

	status, env = s.call(t, http.MethodPost, "idea.vote", bob, map[string]string{"ideaId": idea.ID, "type": "UP"})
	if status != http.StatusOK {
		t.Fatalf("idea.vote: status %d, error %+v", status, env.Error)
	}
	var vote models.VoteResult
	if err := json.Unmarshal(env.Data, &vote); err != nil {
		t.Fatalf("decode vote: %v", err)
	}
	if vote.Action != models.VoteCreated || vote.Upvotes != 1 {
		t.Errorf("unexpected vote result %+v", vote)
	}

	status, env = s.call(t, http.MethodPost, "idea.showInterest", bob, map[string]string{"ideaId": idea.ID})
	if status != http.StatusOK {
		t.Fatalf("idea.showInterest: status %d, error %+v", status, env.Error)
	}
	status, env = s.call(t, http.MethodPost, "idea.showInterest", bob, map[string]string{"ideaId": idea.ID})
	if status != http.StatusConflict || env.Error.Message != "You have already shown interest in this idea" {
		t.Errorf("expected conflict, got %d %+v", status, env.Error)
	}

	status, env = s.call(t, http.MethodGet, "idea.getAll", "", map[string]any{"search": "DRONES", "wantsTeam": true})
	if status != http.StatusOK {
		t.Fatalf("idea.getAll: status %d, error %+v", status, env.Error)
	}
	var page struct {
		Ideas []struct {
			ID      string `json:"id"`
			Excerpt string `json:"excerpt"`
			Count   struct {
				Votes     int `json:"votes"`
				Interests int `json:"interests"`
			} `json:"_count"`
		} `json:"ideas"`
		NextCursor *string `json:"nextCursor"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Ideas) != 1 || page.NextCursor != nil {
		t.Fatalf("expected a single idea and no cursor, got %+v", page)
	}
	if page.Ideas[0].Excerpt != "Deliver everything" || page.Ideas[0].Count.Votes != 1 || page.Ideas[0].Count.Interests != 1 {
		t.Errorf("unexpected feed item %+v", page.Ideas[0])
	}

	status, env = s.call(t, http.MethodGet, "notification.getMine", alice, nil)
	if status != http.StatusOK {
		t.Fatalf("notification.getMine: status %d", status)
	}
	var notifs []models.Notification
	if err := json.Unmarshal(env.Data, &notifs); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Type != models.NotifyInterest {
		t.Errorf("expected an interest notification, got %+v", notifs)
	}

	status, env = s.call(t, http.MethodGet, "idea.getMyInterests", bob, nil)
	if status != http.StatusOK {
		t.Fatalf("idea.getMyInterests: status %d", status)
	}
	var interests []models.Interest
	if err := json.Unmarshal(env.Data, &interests); err != nil {
		t.Fatalf("decode interests: %v", err)
	}
	if len(interests) != 1 || interests[0].Idea == nil || interests[0].Idea.ID != idea.ID {
		t.Errorf("unexpected interests %+v", interests)
	}

	status, _ = s.call(t, http.MethodPost, "idea.delete", bob, map[string]string{"id": idea.ID})
	if status != http.StatusForbidden {
		t.Errorf("expected forbidden delete, got %d", status)
	}
	status, _ = s.call(t, http.MethodPost, "idea.delete", alice, map[string]string{"id": idea.ID})
	if status != http.StatusOK {
		t.Errorf("expected delete to succeed, got %d", status)
	}
}

func TestQueriesAcceptPost(t *testing.T) {
	s := newTestServer(t)
	status, env := s.call(t, http.MethodPost, "category.getAll", "", nil)
	if status != http.StatusOK || env.Error != nil {
		t.Fatalf("category.getAll over POST: status %d, error %+v", status, env.Error)
	}
	if string(env.Data) != "[]" {
		t.Errorf("expected empty list, got %s", env.Data)
	}
}

func TestSessionAndLatestPost(t *testing.T) {
	s := newTestServer(t)
	alice := token(t, "alice", "alice")

	_, env := s.call(t, http.MethodGet, "auth.getSession", "", nil)
	if string(env.Data) != "null" {
		t.Errorf("expected null session for anonymous caller, got %s", env.Data)
	}

	status, env := s.call(t, http.MethodGet, "auth.getSession", alice, nil)
	if status != http.StatusOK {
		t.Fatalf("auth.getSession: status %d", status)
	}
	var user models.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.ID != "alice" || user.Role != models.RoleUser {
		t.Errorf("unexpected session user %+v", user)
	}

	_, env = s.call(t, http.MethodGet, "post.getLatest", alice, nil)
	if string(env.Data) != "null" {
		t.Errorf("expected no latest post, got %s", env.Data)
	}
}

func TestAdminProcedures(t *testing.T) {
	s := newTestServer(t)
	admin := token(t, "root", "root")
	user := token(t, "carol", "carol")

	// The first call upserts the user; the role is then raised in storage.
	s.call(t, http.MethodGet, "auth.getSession", admin, nil)
	if err := s.repo.SetUserRole(context.Background(), "root", models.RoleAdmin); err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}

	status, _ := s.call(t, http.MethodPost, "category.create", user, map[string]string{"name": "General"})
	if status != http.StatusForbidden {
		t.Errorf("expected forbidden for non-admin, got %d", status)
	}
	status, env := s.call(t, http.MethodPost, "category.create", admin, map[string]string{"name": "General"})
	if status != http.StatusOK {
		t.Fatalf("category.create: status %d, error %+v", status, env.Error)
	}
	var category models.Category
	if err := json.Unmarshal(env.Data, &category); err != nil {
		t.Fatalf("decode category: %v", err)
	}

	status, env = s.call(t, http.MethodPost, "post.create", user, map[string]string{
		"title": "Hello there", "content": "first!", "categoryId": category.ID,
	})
	if status != http.StatusOK {
		t.Fatalf("post.create: status %d, error %+v", status, env.Error)
	}

	status, env = s.call(t, http.MethodGet, "post.getBySlug", "", map[string]string{"slug": "hello-there"})
	if status != http.StatusOK {
		t.Fatalf("post.getBySlug: status %d, error %+v", status, env.Error)
	}
	var post models.PostDetail
	if err := json.Unmarshal(env.Data, &post); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	if post.ViewCount != 1 || post.Category == nil || post.Category.Slug != "general" {
		t.Errorf("unexpected post detail %+v", post)
	}

	status, _ = s.call(t, http.MethodGet, "report.getAll", user, nil)
	if status != http.StatusForbidden {
		t.Errorf("expected forbidden report list, got %d", status)
	}
	status, _ = s.call(t, http.MethodGet, "report.getAll", admin, nil)
	if status != http.StatusOK {
		t.Errorf("expected admin report list, got %d", status)
	}
}

// field decodes data as an object and returns the raw value stored under key.
func field(t *testing.T, data json.RawMessage, key string) string {
	t.Helper()
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("decode object %s: %v", data, err)
	}
	v, ok := obj[key]
	if !ok {
		return "<missing>"
	}
	return string(v)
}

func TestEmptyRelationsAreArrays(t *testing.T) {
	s := newTestServer(t)
	alice := token(t, "alice", "alice")
	bob := token(t, "bob", "bob")

	_, env := s.call(t, http.MethodPost, "idea.create", alice, map[string]any{
		"title": "Quiet idea", "description": "<p>hi</p>", "category": "OTHER",
	})
	var idea models.Idea
	if err := json.Unmarshal(env.Data, &idea); err != nil {
		t.Fatalf("decode idea: %v", err)
	}
	id := idea.ID
	status, env := s.call(t, http.MethodPost, "comment.create", bob, map[string]string{"ideaId": id, "content": "hi"})
	if status != http.StatusOK {
		t.Fatalf("comment.create: status %d, error %+v", status, env.Error)
	}

	_, env = s.call(t, http.MethodGet, "comment.getByIdea", "", map[string]string{"ideaId": id})
	var comments []json.RawMessage
	if err := json.Unmarshal(env.Data, &comments); err != nil || len(comments) != 1 {
		t.Fatalf("expected one comment, got %s", env.Data)
	}
	if got := field(t, comments[0], "replies"); got != "[]" {
		t.Errorf("comment.getByIdea: expected replies [], got %s", got)
	}

	_, env = s.call(t, http.MethodGet, "idea.getById", "", map[string]string{"id": id})
	var detail struct {
		Comments []json.RawMessage `json:"comments"`
	}
	if err := json.Unmarshal(env.Data, &detail); err != nil || len(detail.Comments) != 1 {
		t.Fatalf("expected one comment on the idea, got %s", env.Data)
	}
	if got := field(t, detail.Comments[0], "replies"); got != "[]" {
		t.Errorf("idea.getById: expected replies [], got %s", got)
	}

	s.call(t, http.MethodGet, "auth.getSession", alice, nil)
	if err := s.repo.SetUserRole(context.Background(), "alice", models.RoleAdmin); err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}
	_, env = s.call(t, http.MethodPost, "category.create", alice, map[string]string{"name": "General"})
	var category models.Category
	if err := json.Unmarshal(env.Data, &category); err != nil {
		t.Fatalf("decode category: %v", err)
	}
	_, env = s.call(t, http.MethodPost, "post.create", alice, map[string]string{
		"title": "Quiet post", "content": "c", "categoryId": category.ID,
	})
	var post models.Post
	if err := json.Unmarshal(env.Data, &post); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	status, env = s.call(t, http.MethodPost, "post.reply", bob, map[string]string{"postId": post.ID, "content": "first"})
	if status != http.StatusOK {
		t.Fatalf("post.reply: status %d, error %+v", status, env.Error)
	}
	var reply models.Reply
	if err := json.Unmarshal(env.Data, &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	status, env = s.call(t, http.MethodPost, "post.voteReply", alice, map[string]string{"replyId": reply.ID, "type": "UP"})
	if status != http.StatusOK {
		t.Fatalf("post.voteReply: status %d, error %+v", status, env.Error)
	}

	_, env = s.call(t, http.MethodGet, "post.getBySlug", "", map[string]string{"slug": post.Slug})
	var full struct {
		Replies []json.RawMessage `json:"replies"`
	}
	if err := json.Unmarshal(env.Data, &full); err != nil || len(full.Replies) != 1 {
		t.Fatalf("expected one reply, got %s", env.Data)
	}
	if got := field(t, full.Replies[0], "children"); got != "[]" {
		t.Errorf("post.getBySlug: expected children [], got %s", got)
	}
	var votes []models.ReplyVote
	if err := json.Unmarshal([]byte(field(t, full.Replies[0], "votes")), &votes); err != nil {
		t.Fatalf("decode reply votes: %v", err)
	}
	if len(votes) != 1 || votes[0].UserID != "alice" || votes[0].Type != models.VoteUp {
		t.Errorf("expected one UP vote from alice on the reply, got %+v", votes)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
