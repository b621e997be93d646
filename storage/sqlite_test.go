package storage_test

import (
	"arcade/domain"
	"arcade/migrations"
	"arcade/storage"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *storage.SQLiteRepo {
	t.Helper()
	dsn := storage.SQLiteDSN(filepath.Join(t.TempDir(), "arcade.db"))
	require.NoError(t, migrations.Migrate(migrations.DriverSQLite, dsn))

	repo, err := storage.NewSQLiteRepo(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repo
}

func TestSQLiteRepo(t *testing.T) {
	testRepository(t, newSQLiteRepo(t))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), "oracle", "")
	require.Error(t, err)
}

func TestSQLiteRepo_ScoresNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	userID, err := repo.CreateUser(ctx, "carol", "hash")
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, points := range []int{10, 20, 30} {
		repo.SetNow(func() time.Time { return base.Add(time.Duration(i) * time.Minute) })
		_, err := repo.CreateScore(ctx, domain.ScoreSubmission{UserID: userID, GameType: domain.GameMetro, Score: points})
		require.NoError(t, err)
	}

	scores, err := repo.UserScores(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, 30, scores[0].Score)
	assert.Equal(t, 20, scores[1].Score)
	assert.True(t, scores[0].CreatedAt.Equal(base.Add(2*time.Minute)))
}
