// Package scores records finished sessions and serves the highscore tables.
package scores

import (
	"arcade/domain"
	"arcade/metrics"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultSubmitTimeout = 5 * time.Second

var ErrInvalidScore = errors.New("invalid-score")

// Submitter persists scores in the background. Failures are logged and
// counted, never retried and never reported back to the session.
type Submitter struct {
	store   Store
	metrics *metrics.Metrics
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewSubmitter(store Store, m *metrics.Metrics, timeout time.Duration) *Submitter {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return &Submitter{store: store, metrics: m, timeout: timeout}
}

// Validate checks a submission before it reaches the store.
func Validate(sub domain.ScoreSubmission) error {
	if !sub.GameType.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidGameType, sub.GameType)
	}
	if sub.Score < 0 || sub.TimeTakenSeconds < 0 {
		return ErrInvalidScore
	}
	return nil
}

// Submit returns immediately; the write happens on its own goroutine.
func (s *Submitter) Submit(sub domain.ScoreSubmission) {
	if err := Validate(sub); err != nil {
		log.Warn().Err(err).Str("user", sub.UserID).Msg("Submit: dropping score")
		s.metrics.ScoreSubmitted(string(sub.GameType), false)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		score, err := s.store.CreateScore(ctx, sub)
		if err != nil {
			log.Warn().
				Err(err).
				Str("user", sub.UserID).
				Str("game", string(sub.GameType)).
				Int("score", sub.Score).
				Msg("Submit: score not saved")
			s.metrics.ScoreSubmitted(string(sub.GameType), false)
			return
		}

		log.Debug().
			Str("id", score.Id).
			Str("user", sub.UserID).
			Str("game", string(sub.GameType)).
			Int("score", sub.Score).
			Msg("Submit: score saved")
		s.metrics.ScoreSubmitted(string(sub.GameType), true)
	}()
}

// Wait blocks until every in-flight submission has finished.
func (s *Submitter) Wait() {
	s.wg.Wait()
}
