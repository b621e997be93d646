package whack

import (
	"arcade/domain"

	"github.com/stretchr/testify/mock"
)

// --- ScoreSubmitter ---

type MockScoreSubmitter struct {
	mock.Mock
}

func (m *MockScoreSubmitter) Submit(sub domain.ScoreSubmission) {
	m.Called(sub)
}
