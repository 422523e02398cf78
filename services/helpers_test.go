package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"

	"github.com/PressTune/initializers"
	"github.com/PressTune/models"
)

const (
	testCommentID = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	testReplyID   = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	testAuthorID  = "11111111-1111-4111-8111-111111111111"
	testReplierID = "22222222-2222-4222-8222-222222222222"
)

func setupTestDB(t *testing.T) sqlmock.Sqlmock {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	originalDB := initializers.DB
	initializers.DB = goqu.New("postgres", db)
	t.Cleanup(func() {
		db.Close()
		initializers.DB = originalDB
	})

	return mock
}

func commentColumnNames() []string {
	names := make([]string, len(models.CommentColumns))
	for i, col := range models.CommentColumns {
		names[i] = col.(string)
	}
	return names
}

type commentRow struct {
	id         string
	userID     string
	parentID   interface{}
	depth      int
	replyCount int
	upvotes    int
	deleted    bool
	content    string
}

func commentRows(rows ...commentRow) *sqlmock.Rows {
	now := time.Now()
	result := sqlmock.NewRows(commentColumnNames())
	for _, r := range rows {
		content := r.content
		if content == "" {
			content = "comment " + r.id
		}
		result.AddRow(
			r.id, r.userID, "post", "hello-world", r.parentID, content,
			r.depth, r.replyCount, r.upvotes, 0, false, r.deleted,
			now, now, "user@example.com", "user", nil, nil,
		)
	}
	return result
}
