package controllers

import (
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/PressTune/models"
)

// Test fixture data for use in tests

const (
	MockUserID      = "11111111-1111-4111-8111-111111111111"
	MockOtherUserID = "22222222-2222-4222-8222-222222222222"
	MockModeratorID = "33333333-3333-4333-8333-333333333333"

	MockCommentID = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	MockReplyID   = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
)

func strPtr(s string) *string {
	return &s
}

// MockUser creates a sample user profile for testing
func MockUser() models.UserProfile {
	return models.UserProfile{
		ID:         MockUserID,
		Email:      "test@example.com",
		Username:   strPtr("testuser"),
		Full_Name:  strPtr("Test User"),
		Role:       models.RoleUser,
		Created_At: time.Now(),
		Updated_At: time.Now(),
	}
}

// MockOtherUser is a second regular user, used for ownership checks
func MockOtherUser() models.UserProfile {
	user := MockUser()
	user.ID = MockOtherUserID
	user.Email = "other@example.com"
	user.Username = strPtr("otheruser")
	user.Full_Name = nil
	return user
}

// MockModerator creates a sample moderator profile for testing
func MockModerator() models.UserProfile {
	user := MockUser()
	user.ID = MockModeratorID
	user.Email = "mod@example.com"
	user.Username = strPtr("moderator")
	user.Role = models.RoleModerator
	return user
}

// MockComment creates a top-level comment owned by MockUser
func MockComment() models.Comment {
	now := time.Now()
	return models.Comment{
		ID:            MockCommentID,
		User_ID:       MockUserID,
		Resource_Type: "post",
		Resource_Slug: "hello-world",
		Content:       "First!",
		Depth:         0,
		Created_At:    now,
		Updated_At:    now,
		User_Email:    strPtr("test@example.com"),
		Username:      strPtr("testuser"),
	}
}

// CommentColumnNames mirrors models.CommentColumns for sqlmock rows
func CommentColumnNames() []string {
	names := make([]string, len(models.CommentColumns))
	for i, col := range models.CommentColumns {
		names[i] = col.(string)
	}
	return names
}

// AddCommentRow appends comment to rows in CommentColumns order
func AddCommentRow(rows *sqlmock.Rows, comment models.Comment) *sqlmock.Rows {
	var parentID interface{}
	if comment.Parent_ID != nil {
		parentID = *comment.Parent_ID
	}
	var email, username interface{}
	if comment.User_Email != nil {
		email = *comment.User_Email
	}
	if comment.Username != nil {
		username = *comment.Username
	}

	return rows.AddRow(
		comment.ID, comment.User_ID, comment.Resource_Type, comment.Resource_Slug, parentID, comment.Content,
		comment.Depth, comment.Reply_Count, comment.Upvote_Count, comment.Downvote_Count, comment.Is_Edited, comment.Is_Deleted,
		comment.Created_At, comment.Updated_At, email, username, nil, nil,
	)
}

// CommentRows builds sqlmock rows from the given comments
func CommentRows(comments ...models.Comment) *sqlmock.Rows {
	rows := sqlmock.NewRows(CommentColumnNames())
	for _, comment := range comments {
		AddCommentRow(rows, comment)
	}
	return rows
}
