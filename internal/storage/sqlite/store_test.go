package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/storage"
	"github.com/mcoot/clashoffists/internal/storage/storagetest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUsers(t *testing.T) {
	suite.Run(t, &storagetest.UsersSuite{NewStore: func() storage.Users { return openTestStore(t) }})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	first, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	var count int
	err = second.db.QueryRow(`SELECT COUNT(*) FROM ` + migrationTable).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"
	require.Equal(t, "\nCREATE TABLE a (id INTEGER);\n", extractUp(content))
	require.Equal(t, "SELECT 1;", extractUp("SELECT 1;"))
}

func TestPragmasApplied(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var mode string
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
	require.Equal(t, 5000, timeout)

	var fk int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	require.Equal(t, 1, fk)
}

func testUser(n int) *model.User {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.User{
		ID:           uuid.New().String(),
		Username:     fmt.Sprintf("player%d", n),
		Email:        fmt.Sprintf("player%d@example.com", n),
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestConcurrentSignups(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	const players = 50
	errs := make(chan error, players)
	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			u := testUser(n)
			if err := store.CreateUser(ctx, u); err != nil {
				errs <- err
				return
			}
			if err := store.SetOnline(ctx, u.ID, true); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	online, err := store.ListOnlineUsers(ctx, "")
	require.NoError(t, err)
	require.Len(t, online, players)
}

func TestLookupsDuringPresenceWrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	users := make([]*model.User, 10)
	for i := range users {
		users[i] = testUser(i)
		require.NoError(t, store.CreateUser(ctx, users[i]))
	}

	const rounds = 20
	errs := make(chan error, 2*len(users)*rounds)
	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				if err := store.SetOnline(ctx, id, r%2 == 0); err != nil {
					errs <- fmt.Errorf("set online: %w", err)
				}
			}
		}(u.ID)
		go func(id string) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				if _, err := store.GetUserByID(ctx, id); err != nil {
					errs <- fmt.Errorf("lookup: %w", err)
				}
			}
		}(u.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
