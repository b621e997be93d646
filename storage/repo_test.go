package storage_test

import (
	"arcade/domain"
	"arcade/storage"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepository runs the behaviour every Repository must share against a
// freshly migrated database.
func testRepository(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	t.Run("CreateUser", func(t *testing.T) {
		id, err := repo.CreateUser(ctx, "oussama", "hashed_secret")
		assert.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("CreateUser_Duplicate", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, "oussama", "new_hash")
		assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	})

	t.Run("GetUserByUsername", func(t *testing.T) {
		user, err := repo.GetUserByUsername(ctx, "oussama")
		assert.NoError(t, err)
		assert.Equal(t, "oussama", user.Username)
		assert.Equal(t, "hashed_secret", user.PasswordHash)
		assert.NotEmpty(t, user.Id)
	})

	t.Run("GetUserByUsername_NotFound", func(t *testing.T) {
		_, err := repo.GetUserByUsername(ctx, "ghost_user")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("GetUserById", func(t *testing.T) {
		id, err := repo.CreateUser(ctx, "tester2", "hash2")
		require.NoError(t, err)

		user, err := repo.GetUserById(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, "hash2", user.PasswordHash)
		assert.Equal(t, "tester2", user.Username)
	})

	t.Run("GetUserById_NotFound", func(t *testing.T) {
		_, err := repo.GetUserById(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Scores", func(t *testing.T) {
		alice, err := repo.CreateUser(ctx, "alice", "hash")
		require.NoError(t, err)
		bob, err := repo.CreateUser(ctx, "bob", "hash")
		require.NoError(t, err)

		submissions := []domain.ScoreSubmission{
			{UserID: alice, GameType: domain.GameWhack, Score: 120, TimeTakenSeconds: 60},
			{UserID: bob, GameType: domain.GameWhack, Score: 300, TimeTakenSeconds: 60},
			{UserID: alice, GameType: domain.GameWhack, Score: 300, TimeTakenSeconds: 45.5},
			{UserID: bob, GameType: domain.GameMetro, Score: 85, TimeTakenSeconds: 12},
		}
		for _, sub := range submissions {
			score, err := repo.CreateScore(ctx, sub)
			require.NoError(t, err)
			assert.NotEmpty(t, score.Id)
			assert.Equal(t, sub.Score, score.Score)
		}

		highscores, err := repo.Highscores(ctx, domain.GameWhack, 10)
		require.NoError(t, err)
		require.Len(t, highscores, 3)
		assert.Equal(t, "alice", highscores[0].Username)
		assert.Equal(t, 300, highscores[0].Score)
		assert.Equal(t, 45.5, highscores[0].TimeTaken)
		assert.Equal(t, "bob", highscores[1].Username)
		assert.Equal(t, 120, highscores[2].Score)

		top, err := repo.Highscores(ctx, domain.GameWhack, 1)
		require.NoError(t, err)
		assert.Len(t, top, 1)

		metro, err := repo.Highscores(ctx, domain.GameMetro, 10)
		require.NoError(t, err)
		require.Len(t, metro, 1)
		assert.Equal(t, "bob", metro[0].Username)

		mine, err := repo.UserScores(ctx, alice, 10)
		require.NoError(t, err)
		assert.Len(t, mine, 2)
		for _, s := range mine {
			assert.Equal(t, alice, s.UserId)
			assert.Equal(t, domain.GameWhack, s.GameType)
		}

		none, err := repo.UserScores(ctx, "00000000-0000-0000-0000-000000000000", 10)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("CreateScore_UnknownUser", func(t *testing.T) {
		_, err := repo.CreateScore(ctx, domain.ScoreSubmission{
			UserID:   "00000000-0000-0000-0000-000000000000",
			GameType: domain.GameMetro,
			Score:    10,
		})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("EntityCatalog", func(t *testing.T) {
		catalog, err := repo.EntityCatalog(ctx)
		require.NoError(t, err)
		require.Len(t, catalog, 9)

		assert.Equal(t, "Calcium", catalog[0].Name)
		assert.Equal(t, domain.CategoryPrimary, catalog[0].Category)
		assert.Equal(t, 10, catalog[0].Points)
		assert.Equal(t, 0.3, catalog[0].AppearanceWeight)
		assert.Equal(t, "Essential for bone health", catalog[0].Description)

		categories := map[domain.Category]int{}
		for _, def := range catalog {
			assert.True(t, def.Category.Valid())
			assert.NotEmpty(t, def.ID)
			categories[def.Category]++
		}
		assert.Equal(t, 6, categories[domain.CategoryPrimary])
		assert.Equal(t, 1, categories[domain.CategoryBonus])
		assert.Equal(t, 2, categories[domain.CategoryPenalty])
	})

	t.Run("StationGraph", func(t *testing.T) {
		graph, err := repo.StationGraph(ctx)
		require.NoError(t, err)
		require.Len(t, graph, 6)

		assert.Equal(t, "Bastille", graph["station1"].Name)
		assert.Equal(t, []domain.Connection{{To: "station2", Minutes: 2}, {To: "station5", Minutes: 4}}, graph["station1"].Connections)

		minutes, ok := graph.Connected("station6", "station5")
		assert.True(t, ok)
		assert.Equal(t, 5, minutes)

		st, ok := graph.FindByName("république")
		assert.True(t, ok)
		assert.Equal(t, "station5", st.ID)
	})
}
