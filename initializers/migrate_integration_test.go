//go:build integration
// +build integration

package initializers

import (
	"context"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	ownerID    = "11111111-1111-1111-1111-111111111111"
	strangerID = "22222222-2222-2222-2222-222222222222"
)

func startPostgres(t *testing.T) string {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("presstune"),
		postgres.WithUsername("presstune"),
		postgres.WithPassword("presstune"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestMigrateAndSoftDelete(t *testing.T) {
	require.NoError(t, ConnectDB(startPostgres(t)))
	t.Cleanup(func() { DB = nil })

	require.NoError(t, Migrate(DB))
	require.NoError(t, Migrate(DB), "second run must skip applied files")

	names, err := Migrations()
	require.NoError(t, err)
	var applied int
	_, err = DB.From("schema_migrations").Select(goqu.COUNT("*")).ScanVal(&applied)
	require.NoError(t, err)
	assert.Equal(t, len(names), applied)

	_, err = DB.Insert("profiles").Rows(
		goqu.Record{"id": ownerID, "email": "owner@example.com"},
		goqu.Record{"id": strangerID, "email": "stranger@example.com"},
	).Executor().Exec()
	require.NoError(t, err)

	var rootID string
	_, err = DB.Insert("comments").
		Rows(goqu.Record{"user_id": ownerID, "resource_type": "post", "resource_slug": "hello", "content": "root"}).
		Returning("id").
		Executor().ScanVal(&rootID)
	require.NoError(t, err)

	_, err = DB.Insert("comments").
		Rows(goqu.Record{"user_id": strangerID, "resource_type": "post", "resource_slug": "hello", "content": "reply", "parent_id": rootID, "depth": 1}).
		Executor().Exec()
	require.NoError(t, err)

	softDelete := func(actor string, force bool) bool {
		var deleted bool
		err := DB.QueryRow(`SELECT soft_delete_comment($1, $2, $3)`, rootID, actor, force).Scan(&deleted)
		require.NoError(t, err)
		return deleted
	}

	assert.False(t, softDelete(strangerID, false), "only the author may delete")
	assert.True(t, softDelete(ownerID, false))
	assert.False(t, softDelete(ownerID, false), "already deleted")

	var row struct {
		Content    string  `db:"content"`
		Is_Deleted bool    `db:"is_deleted"`
		Username   *string `db:"username"`
	}
	found, err := DB.From("comments_with_user").
		Select("content", "is_deleted", "username").
		Where(goqu.C("id").Eq(rootID)).
		ScanStruct(&row)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "[deleted]", row.Content)
	assert.True(t, row.Is_Deleted)

	var replies int
	_, err = DB.From("comments").
		Select(goqu.COUNT("*")).
		Where(goqu.C("parent_id").Eq(rootID)).
		ScanVal(&replies)
	require.NoError(t, err)
	assert.Equal(t, 1, replies, "replies stay attached to a deleted parent")
}
