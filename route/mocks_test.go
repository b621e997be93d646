package route

import (
	"arcade/domain"
	"context"

	"github.com/stretchr/testify/mock"
)

// --- Evaluator ---

type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) EvaluateRoute(ctx context.Context, waypoints []string) (domain.EvaluationResult, error) {
	args := m.Called(ctx, waypoints)
	return args.Get(0).(domain.EvaluationResult), args.Error(1)
}

// --- ScoreSubmitter ---

type MockScoreSubmitter struct {
	mock.Mock
}

func (m *MockScoreSubmitter) Submit(sub domain.ScoreSubmission) {
	m.Called(sub)
}
