package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichat/api/internal/chat"
	"medichat/api/internal/script"
)

// openTestDB needs TEST_DATABASE_URL pointing at a disposable Postgres.
func openTestDB(t *testing.T) *HistoryRepo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewHistoryRepo(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestHistoryRepo(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	chatID := "test:" + uuid.NewString()
	t.Cleanup(func() { _ = repo.Clear(ctx, chatID) })

	empty, err := repo.Recent(ctx, chatID, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := 0; i < 5; i++ {
		n, err := repo.Append(ctx, chatID, chat.Entry{
			Role:      chat.RoleUser,
			Content:   fmt.Sprintf("msg %d", i),
			Script:    script.Latin,
			Stamp:     "abcd1234",
			CreatedAt: time.Now().UTC(),
		}, 3)
		require.NoError(t, err)
		assert.Equal(t, min(i+1, 3), n)
	}

	got, err := repo.Recent(ctx, chatID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "msg 3", got[0].Content)
	assert.Equal(t, "msg 4", got[1].Content)
	assert.Equal(t, script.Latin, got[1].Script)

	all, err := repo.Recent(ctx, chatID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = repo.DB.ExecContext(ctx,
		`insert into chat_history (chat_id, role, content, script) values ($1, 'user', 'legacy', 'klingon')`, chatID)
	require.NoError(t, err)
	all, err = repo.Recent(ctx, chatID, 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, script.Unknown, all[0].Script)

	require.NoError(t, repo.Clear(ctx, chatID))
	n, err := repo.Count(ctx, chatID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
