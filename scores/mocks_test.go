package scores_test

import (
	"arcade/domain"
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateScore(ctx context.Context, sub domain.ScoreSubmission) (domain.Score, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(domain.Score), args.Error(1)
}

func (m *MockStore) Highscores(ctx context.Context, gameType domain.GameType, limit int) ([]domain.Highscore, error) {
	args := m.Called(ctx, gameType, limit)
	hs, _ := args.Get(0).([]domain.Highscore)
	return hs, args.Error(1)
}

func (m *MockStore) UserScores(ctx context.Context, userID string, limit int) ([]domain.Score, error) {
	args := m.Called(ctx, userID, limit)
	s, _ := args.Get(0).([]domain.Score)
	return s, args.Error(1)
}
