package scores

import (
	"arcade/domain"
	"context"
)

type Store interface {
	CreateScore(ctx context.Context, sub domain.ScoreSubmission) (domain.Score, error)
	Highscores(ctx context.Context, gameType domain.GameType, limit int) ([]domain.Highscore, error)
	UserScores(ctx context.Context, userID string, limit int) ([]domain.Score, error)
}
