package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PressTune/initializers"
	"github.com/PressTune/models"
)

func TestTopLevelOrder(t *testing.T) {
	tests := []struct {
		sortBy   models.SortOrder
		expected string
	}{
		{models.SortNewest, `ORDER BY "created_at" DESC`},
		{models.SortOldest, `ORDER BY "created_at" ASC`},
		{models.SortPopular, `ORDER BY "upvote_count" DESC, "created_at" DESC`},
	}

	for _, tt := range tests {
		t.Run(string(tt.sortBy), func(t *testing.T) {
			sql, _, err := goqu.Dialect("postgres").From("comments_with_user").
				Order(topLevelOrder(tt.sortBy)...).
				ToSQL()
			require.NoError(t, err)
			assert.Contains(t, sql, tt.expected)
		})
	}
}

func TestLoadCommentTreeNestsReplies(t *testing.T) {
	mock := setupTestDB(t)

	mock.ExpectQuery(`"parent_id" IS NULL`).WillReturnRows(commentRows(
		commentRow{id: "root-1", userID: testAuthorID, replyCount: 2},
		commentRow{id: "root-2", userID: testAuthorID},
	))
	mock.ExpectQuery(`"parent_id" = 'root-1'`).WillReturnRows(commentRows(
		commentRow{id: "child-1", userID: testReplierID, parentID: "root-1", depth: 1, replyCount: 1},
		commentRow{id: "child-2", userID: testReplierID, parentID: "root-1", depth: 1},
	))
	mock.ExpectQuery(`"parent_id" = 'child-1'`).WillReturnRows(commentRows(
		commentRow{id: "grandchild", userID: testAuthorID, parentID: "child-1", depth: 2, deleted: true, content: "gone"},
	))

	roots, err := LoadCommentTree(TreeRequest{Resource_Type: "post", Resource_Slug: "hello-world", Sort_By: models.SortNewest})
	require.NoError(t, err)

	require.Len(t, roots, 2)
	require.Len(t, roots[0].Replies, 2)
	assert.Equal(t, "child-1", roots[0].Replies[0].ID)
	assert.Equal(t, "child-2", roots[0].Replies[1].ID)
	require.Len(t, roots[0].Replies[0].Replies, 1)

	grandchild := roots[0].Replies[0].Replies[0]
	assert.True(t, grandchild.Is_Deleted)
	assert.Equal(t, models.DeletedContent, grandchild.Content)
	assert.Empty(t, roots[1].Replies)
	assert.NotNil(t, roots[1].Replies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCommentTreeSkipsFailedLevel(t *testing.T) {
	mock := setupTestDB(t)

	mock.ExpectQuery(`"parent_id" IS NULL`).WillReturnRows(commentRows(
		commentRow{id: "root-1", userID: testAuthorID, replyCount: 3},
	))
	mock.ExpectQuery(`"parent_id" = 'root-1'`).WillReturnError(errors.New("timeout"))

	roots, err := LoadCommentTree(TreeRequest{Resource_Type: "post", Resource_Slug: "hello-world"})
	require.NoError(t, err)

	require.Len(t, roots, 1)
	assert.Empty(t, roots[0].Replies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCommentTreeTopLevelFailure(t *testing.T) {
	mock := setupTestDB(t)
	mock.ExpectQuery(`"parent_id" IS NULL`).WillReturnError(errors.New("connection refused"))

	roots, err := LoadCommentTree(TreeRequest{Resource_Type: "post", Resource_Slug: "hello-world"})

	assert.Nil(t, roots)
	assert.Equal(t, models.BackendError, models.ErrorKindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCommentTreeStopsAtMaxDepth(t *testing.T) {
	mock := setupTestDB(t)

	original := initializers.AppConfig.CommentMaxDepth
	initializers.AppConfig.CommentMaxDepth = 1
	t.Cleanup(func() { initializers.AppConfig.CommentMaxDepth = original })

	mock.ExpectQuery(`"parent_id" IS NULL`).WillReturnRows(commentRows(
		commentRow{id: "root-1", userID: testAuthorID, replyCount: 1},
	))
	mock.ExpectQuery(`"parent_id" = 'root-1'`).WillReturnRows(commentRows(
		commentRow{id: "child-1", userID: testAuthorID, parentID: "root-1", depth: 1, replyCount: 1},
	))

	roots, err := LoadCommentTree(TreeRequest{Resource_Type: "post", Resource_Slug: "hello-world"})
	require.NoError(t, err)

	require.Len(t, roots[0].Replies, 1)
	assert.Empty(t, roots[0].Replies[0].Replies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCommentTreeAttachesViewerVotes(t *testing.T) {
	mock := setupTestDB(t)

	mock.ExpectQuery(`"parent_id" IS NULL`).WillReturnRows(commentRows(
		commentRow{id: "root-1", userID: testAuthorID, replyCount: 1},
	))
	mock.ExpectQuery(`"parent_id" = 'root-1'`).WillReturnRows(commentRows(
		commentRow{id: "child-1", userID: testAuthorID, parentID: "root-1", depth: 1},
	))
	mock.ExpectQuery(`FROM "comment_votes" WHERE .*"user_id" = '` + testReplierID + `'`).
		WillReturnRows(sqlmock.NewRows([]string{"comment_id", "vote_type"}).AddRow("child-1", "downvote"))

	roots, err := LoadCommentTree(TreeRequest{Resource_Type: "post", Resource_Slug: "hello-world", Viewer_ID: testReplierID})
	require.NoError(t, err)

	assert.Nil(t, roots[0].Current_User_Vote)
	require.NotNil(t, roots[0].Replies[0].Current_User_Vote)
	assert.Equal(t, models.VoteDownvote, *roots[0].Replies[0].Current_User_Vote)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCommentTreeEmptyResource(t *testing.T) {
	mock := setupTestDB(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(commentColumnNames()))

	roots, err := LoadCommentTree(TreeRequest{Resource_Type: "post", Resource_Slug: "nothing-here", Viewer_ID: testReplierID})
	require.NoError(t, err)

	assert.NotNil(t, roots)
	assert.Empty(t, roots)
	assert.NoError(t, mock.ExpectationsWereMet())
}
