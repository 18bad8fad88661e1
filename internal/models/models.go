package models

import "time"

// Roles stored on users.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// IdeaCategory is the fixed set of idea categories.
type IdeaCategory string

const (
	CategorySaaS      IdeaCategory = "SAAS"
	CategoryMobileApp IdeaCategory = "MOBILE_APP"
	CategoryWebApp    IdeaCategory = "WEB_APP"
	CategoryHardware  IdeaCategory = "HARDWARE"
	CategoryService   IdeaCategory = "SERVICE"
	CategoryOther     IdeaCategory = "OTHER"
)

// Valid reports whether c is one of the known categories.
func (c IdeaCategory) Valid() bool {
	switch c {
	case CategorySaaS, CategoryMobileApp, CategoryWebApp, CategoryHardware, CategoryService, CategoryOther:
		return true
	}
	return false
}

// VoteType is UP or DOWN.
type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
)

func (t VoteType) Valid() bool {
	return t == VoteUp || t == VoteDown
}

// VoteAction is the outcome of a vote call.
type VoteAction string

const (
	VoteCreated VoteAction = "created"
	VoteRemoved VoteAction = "removed"
	VoteUpdated VoteAction = "updated"
)

// User represents a forum user. Rows are owned by the external auth provider.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Image     string    `json:"image"`
	Bio       string    `json:"bio,omitempty"`
	Skills    []string  `json:"skills"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Author is the public profile embedded in other entities.
type Author struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Image    string   `json:"image"`
	Skills   []string `json:"skills,omitempty"`
	Bio      string   `json:"bio,omitempty"`
	Role     string   `json:"role,omitempty"`
}

// Session is a login session issued by the auth provider.
type Session struct {
	SessionID string
	UserID    string
	Expires   time.Time
}

// Idea is a user-submitted project concept.
type Idea struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Category     IdeaCategory `json:"category"`
	Tags         []string     `json:"tags"`
	Upvotes      int          `json:"upvotes"`
	Downvotes    int          `json:"downvotes"`
	WantsTeam    bool         `json:"wantsTeam"`
	NeededSkills []string     `json:"neededSkills"`
	AuthorID     string       `json:"authorId"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// IdeaCounts mirrors the per-idea relation counts shown in feeds.
type IdeaCounts struct {
	Comments  int `json:"comments"`
	Votes     int `json:"votes"`
	Interests int `json:"interests"`
}

// IdeaSummary is an idea as shown in feeds.
type IdeaSummary struct {
	Idea
	Excerpt string     `json:"excerpt"`
	Author  *Author    `json:"author,omitempty"`
	Count   IdeaCounts `json:"_count"`
}

// IdeaDetail is a single idea with its relations.
type IdeaDetail struct {
	Idea
	Author    Author      `json:"author"`
	Comments  []*Comment  `json:"comments"`
	Votes     []*Vote     `json:"votes"`
	Interests []*Interest `json:"interests"`
}

// IdeaFilter narrows a feed query.
type IdeaFilter struct {
	Category  IdeaCategory
	WantsTeam *bool
	Search    string
	AuthorID  string
}

// IdeaPatch is a partial idea update; nil fields are left unchanged.
type IdeaPatch struct {
	Title        *string
	Description  *string
	Category     *IdeaCategory
	Tags         *[]string
	WantsTeam    *bool
	NeededSkills *[]string
}

// Vote is one user's judgment on an idea.
type Vote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	IdeaID    string    `json:"ideaId"`
	Type      VoteType  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// VoteResult reports the action taken and the counters afterwards.
type VoteResult struct {
	Action    VoteAction `json:"action"`
	Upvotes   int        `json:"upvotes"`
	Downvotes int        `json:"downvotes"`
}

// Interest is a team-formation signal on someone else's idea.
type Interest struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	IdeaID    string       `json:"ideaId"`
	Message   *string      `json:"message"`
	CreatedAt time.Time    `json:"createdAt"`
	User      *Author      `json:"user,omitempty"`
	Idea      *IdeaSummary `json:"idea,omitempty"`
}

// Comment on an idea. Replies never have replies of their own.
type Comment struct {
	ID        string     `json:"id"`
	IdeaID    string     `json:"ideaId"`
	AuthorID  string     `json:"authorId"`
	Content   string     `json:"content"`
	ParentID  *string    `json:"parentId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Author    *Author    `json:"author,omitempty"`
	Replies   []*Comment `json:"replies"`
}

// Category groups legacy forum posts.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	Count       struct {
		Posts int `json:"posts"`
	} `json:"_count"`
}

// CategoryPatch is a partial category update.
type CategoryPatch struct {
	Name        *string
	Slug        *string
	Description *string
	Color       *string
	IsActive    *bool
}

// Post is a legacy forum thread.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Slug       string    `json:"slug"`
	CategoryID string    `json:"categoryId"`
	AuthorID   string    `json:"authorId"`
	IsPinned   bool      `json:"isPinned"`
	ViewCount  int       `json:"viewCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PostSummary is a post as listed on a category page.
type PostSummary struct {
	Post
	Author   *Author   `json:"author,omitempty"`
	Category *Category `json:"category,omitempty"`
	Count    struct {
		Replies int `json:"replies"`
		Votes   int `json:"votes"`
	} `json:"_count"`
}

// PostDetail is a post with its replies and votes.
type PostDetail struct {
	Post
	Author   Author      `json:"author"`
	Category *Category   `json:"category"`
	Replies  []*Reply    `json:"replies"`
	Votes    []*PostVote `json:"votes"`
}

// Reply on a post; top-level replies carry one level of children.
type Reply struct {
	ID        string       `json:"id"`
	PostID    string       `json:"postId"`
	AuthorID  string       `json:"authorId"`
	Content   string       `json:"content"`
	ParentID  *string      `json:"parentId"`
	CreatedAt time.Time    `json:"createdAt"`
	Author    *Author      `json:"author,omitempty"`
	Votes     []*ReplyVote `json:"votes"`
	Children  []*Reply     `json:"children"`
}

// PostVote is a user's vote on a post.
type PostVote struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	Type      VoteType  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReplyVote is a user's vote on a post reply.
type ReplyVote struct {
	ID        string    `json:"id"`
	ReplyID   string    `json:"replyId"`
	UserID    string    `json:"userId"`
	Type      VoteType  `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostVoteResult is the outcome of a post vote with live tallies.
type PostVoteResult struct {
	Action    VoteAction `json:"action"`
	Upvotes   int        `json:"upvotes"`
	Downvotes int        `json:"downvotes"`
}

// Notification types.
const (
	NotifyComment  = "comment"
	NotifyReply    = "reply"
	NotifyInterest = "interest"
)

// Notification represents a notification for a user
type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Type       string    `json:"type"`
	FromUserID *string   `json:"fromUserId"`
	IdeaID     *string   `json:"ideaId"`
	CommentID  *string   `json:"commentId"`
	CreatedAt  time.Time `json:"createdAt"`
	IsRead     bool      `json:"isRead"`
}

// Report statuses.
const (
	ReportOpen   = "open"
	ReportClosed = "closed"
)

// Report represents a report on an idea or comment
type Report struct {
	ID         string    `json:"id"`
	ReporterID string    `json:"reporterId"`
	IdeaID     *string   `json:"ideaId"`
	CommentID  *string   `json:"commentId"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
	Status     string    `json:"status"`
}
