package models

import "time"

// Comment is a row of the comments_with_user view: the comment itself plus the
// author's display fields. Replies are attached by the tree loader.
type Comment struct {
	ID                string     `json:"id" goqu:"skipinsert"`
	User_ID           string     `json:"user_id"`
	Resource_Type     string     `json:"resource_type"`
	Resource_Slug     string     `json:"resource_slug"`
	Parent_ID         *string    `json:"parent_id"`
	Content           string     `json:"content"`
	Content_HTML      string     `json:"content_html" db:"-"`
	Depth             int        `json:"depth"`
	Reply_Count       int        `json:"reply_count" goqu:"skipinsert"`
	Upvote_Count      int        `json:"upvote_count" goqu:"skipinsert"`
	Downvote_Count    int        `json:"downvote_count" goqu:"skipinsert"`
	Is_Edited         bool       `json:"is_edited" goqu:"skipinsert"`
	Is_Deleted        bool       `json:"is_deleted" goqu:"skipinsert"`
	Created_At        time.Time  `json:"created_at" goqu:"skipinsert"`
	Updated_At        time.Time  `json:"updated_at" goqu:"skipinsert"`
	User_Email        *string    `json:"user_email" goqu:"skipinsert"`
	Username          *string    `json:"username" goqu:"skipinsert"`
	Avatar_URL        *string    `json:"avatar_url" db:"avatar_url" goqu:"skipinsert"`
	Full_Name         *string    `json:"full_name" goqu:"skipinsert"`
	Current_User_Vote *VoteType  `json:"current_user_vote" db:"-"`
	Replies           []*Comment `json:"replies" db:"-"`
}

// CommentColumns is the column list selected from comments_with_user.
var CommentColumns = []interface{}{
	"id", "user_id", "resource_type", "resource_slug", "parent_id", "content",
	"depth", "reply_count", "upvote_count", "downvote_count", "is_edited", "is_deleted",
	"created_at", "updated_at", "user_email", "username", "avatar_url", "full_name",
}

// DeletedContent replaces the text of a soft-deleted comment.
const DeletedContent = "[deleted]"

// CommentCreate is the request body for POST /api/comments
type CommentCreate struct {
	Resource_Type string  `json:"resourceType"`
	Resource_Slug string  `json:"resourceSlug"`
	Content       string  `json:"content"`
	Parent_ID     *string `json:"parentId"`
}

// CommentUpdate is the request body for PUT /api/comments/:id
type CommentUpdate struct {
	Content string `json:"content"`
}

// SortOrder controls how top-level comments are ordered. Replies are always
// ordered oldest first.
type SortOrder string

const (
	SortNewest  SortOrder = "newest"
	SortOldest  SortOrder = "oldest"
	SortPopular SortOrder = "popular"
)

// DefaultSortOrder is used when no sort order was requested.
const DefaultSortOrder = SortNewest

var sortOrders = map[SortOrder]bool{
	SortNewest:  true,
	SortOldest:  true,
	SortPopular: true,
}

func (s SortOrder) Valid() bool {
	return sortOrders[s]
}

// ParseSortOrder maps an empty value to DefaultSortOrder and rejects anything
// outside newest/oldest/popular.
func ParseSortOrder(raw string) (SortOrder, bool) {
	if raw == "" {
		return DefaultSortOrder, true
	}
	s := SortOrder(raw)
	return s, s.Valid()
}
