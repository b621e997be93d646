package route

import (
	"arcade/clock"
	"arcade/domain"
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Evaluator judges a candidate route. It may block; the session never holds
// its lock while waiting for it.
type Evaluator interface {
	EvaluateRoute(ctx context.Context, waypoints []string) (domain.EvaluationResult, error)
}

type ScoreSubmitter interface {
	Submit(sub domain.ScoreSubmission)
}

const (
	TooFewStationsMessage   = "Select at least two stations"
	StationNotFoundMessage  = "Station not found"
	EvaluationFailedMessage = "Route could not be evaluated, please try again"

	DefaultEvaluationTimeout = 10 * time.Second
)

// TimeLimit is the countdown length in seconds for a difficulty.
func TimeLimit(d domain.Difficulty) int {
	switch d {
	case domain.DifficultyEasy:
		return 45
	case domain.DifficultyHard:
		return 20
	default:
		return 30
	}
}

type Snapshot struct {
	Seq              uint64                   `json:"seq"`
	Phase            domain.Phase             `json:"phase"`
	Difficulty       domain.Difficulty        `json:"difficulty"`
	Start            string                   `json:"start"`
	End              string                   `json:"end"`
	Waypoints        []string                 `json:"waypoints"`
	SecondsRemaining int                      `json:"secondsRemaining"`
	Evaluating       bool                     `json:"evaluating"`
	Result           *domain.EvaluationResult `json:"result,omitempty"`
}

type Options struct {
	UserID            string
	Clock             clock.Clock
	Rand              *rand.Rand
	Evaluator         Evaluator
	Submitter         ScoreSubmitter
	OnChange          func(Snapshot)
	EvaluationTimeout time.Duration
}

// Session is one round of the route challenge. All state changes go through
// mu; the countdown lives in the session's timer group.
type Session struct {
	mu          sync.Mutex
	difficulty  domain.Difficulty
	graph       domain.StationGraph
	ids         []string
	userID      string
	clock       clock.Clock
	timers      *clock.Group
	rng         *rand.Rand
	evaluator   Evaluator
	submitter   ScoreSubmitter
	onChange    func(Snapshot)
	evalTimeout time.Duration

	phase            domain.Phase
	epoch            uint64
	seq              uint64
	start            string
	end              string
	waypoints        []string
	secondsRemaining int
	startedAt        time.Time
	submittedAt      time.Time
	evaluating       bool
	result           *domain.EvaluationResult
}

func NewSession(difficulty domain.Difficulty, graph domain.StationGraph, opts Options) *Session {
	if difficulty == "" {
		difficulty = domain.DifficultyNormal
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.EvaluationTimeout <= 0 {
		opts.EvaluationTimeout = DefaultEvaluationTimeout
	}

	return &Session{
		difficulty:  difficulty,
		graph:       graph,
		ids:         graph.IDs(),
		userID:      opts.UserID,
		clock:       opts.Clock,
		timers:      clock.NewGroup(opts.Clock),
		rng:         opts.Rand,
		evaluator:   opts.Evaluator,
		submitter:   opts.Submitter,
		onChange:    opts.OnChange,
		evalTimeout: opts.EvaluationTimeout,
		phase:       domain.PHASE_IDLE,
	}
}

func (s *Session) Start() error {
	s.mu.Lock()
	if s.phase == domain.PHASE_RUNNING {
		s.mu.Unlock()
		return domain.ErrSessionRunning
	}
	return s.startAndUnlock()
}

// Restart abandons the current round, including an evaluation in flight,
// and starts a new one.
func (s *Session) Restart() error {
	s.mu.Lock()
	return s.startAndUnlock()
}

// Close stops the countdown and returns the session to idle. An evaluation
// still in flight is discarded when it returns.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers.StopAll()
	s.epoch++
	s.resetLocked()
	s.phase = domain.PHASE_IDLE
}

// SelectStation appends a station to the route, or removes it if it is the
// last one already selected.
func (s *Session) SelectStation(id string) error {
	s.mu.Lock()
	if err := s.submittableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := s.graph[id]; !ok {
		s.mu.Unlock()
		return domain.ErrUnknownStation
	}

	if n := len(s.waypoints); n > 0 && s.waypoints[n-1] == id {
		s.waypoints = s.waypoints[:n-1]
	} else {
		s.waypoints = append(s.waypoints, id)
	}

	snap := s.commitLocked()
	s.mu.Unlock()
	s.emit(snap)
	return nil
}

// Submit evaluates the selected route and ends the round.
func (s *Session) Submit(ctx context.Context) (domain.EvaluationResult, error) {
	s.mu.Lock()
	if err := s.submittableLocked(); err != nil {
		s.mu.Unlock()
		return domain.EvaluationResult{}, err
	}
	return s.submitAndUnlock(ctx, slices.Clone(s.waypoints))
}

// SubmitByName evaluates the direct route between two stations given by
// display name.
func (s *Session) SubmitByName(ctx context.Context, from, to string) (domain.EvaluationResult, error) {
	s.mu.Lock()
	if err := s.submittableLocked(); err != nil {
		s.mu.Unlock()
		return domain.EvaluationResult{}, err
	}

	fromStation, ok1 := s.graph.FindByName(from)
	toStation, ok2 := s.graph.FindByName(to)
	if !ok1 || !ok2 {
		s.submittedAt = s.clock.Now()
		return s.concludeAndUnlock(domain.InvalidResult(StationNotFoundMessage)), nil
	}

	s.waypoints = []string{fromStation.ID, toStation.ID}
	return s.submitAndUnlock(ctx, slices.Clone(s.waypoints))
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) submittableLocked() error {
	if s.phase != domain.PHASE_RUNNING {
		return domain.ErrSessionNotRunning
	}
	if s.evaluating {
		return domain.ErrSubmissionInFlight
	}
	return nil
}

func (s *Session) startAndUnlock() error {
	if len(s.ids) < 2 {
		s.mu.Unlock()
		return domain.ErrNotEnoughStations
	}

	s.timers.StopAll()
	s.resetLocked()
	s.epoch++
	epoch := s.epoch
	s.phase = domain.PHASE_RUNNING
	s.start, s.end = s.pickEndpointsLocked()
	s.secondsRemaining = TimeLimit(s.difficulty)
	s.startedAt = s.clock.Now()
	s.timers.Every(time.Second, func() { s.countdownTick(epoch) })

	log.Debug().
		Str("user", s.userID).
		Str("start", s.start).
		Str("end", s.end).
		Str("difficulty", string(s.difficulty)).
		Msg("route session started")

	snap := s.commitLocked()
	s.mu.Unlock()
	s.emit(snap)
	return nil
}

func (s *Session) resetLocked() {
	s.start, s.end = "", ""
	s.waypoints = nil
	s.secondsRemaining = 0
	s.startedAt = time.Time{}
	s.submittedAt = time.Time{}
	s.evaluating = false
	s.result = nil
}

// pickEndpointsLocked returns two distinct stations. Below hard difficulty it
// prefers a pair joined by a direct connection.
func (s *Session) pickEndpointsLocked() (string, string) {
	if s.difficulty != domain.DifficultyHard {
		from := s.ids[s.rng.IntN(len(s.ids))]
		targets := make([]string, 0)
		for _, c := range s.graph[from].Connections {
			if _, ok := s.graph[c.To]; ok && c.To != from {
				targets = append(targets, c.To)
			}
		}
		if len(targets) > 0 {
			return from, targets[s.rng.IntN(len(targets))]
		}
	}

	i := s.rng.IntN(len(s.ids))
	j := s.rng.IntN(len(s.ids) - 1)
	if j >= i {
		j++
	}
	return s.ids[i], s.ids[j]
}

func (s *Session) countdownTick(epoch uint64) {
	s.mu.Lock()
	if s.phase != domain.PHASE_RUNNING || s.epoch != epoch || s.evaluating {
		s.mu.Unlock()
		return
	}

	s.secondsRemaining--
	if s.secondsRemaining > 0 {
		snap := s.commitLocked()
		s.mu.Unlock()
		s.emit(snap)
		return
	}

	s.secondsRemaining = 0
	ctx, cancel := context.WithTimeout(context.Background(), s.evalTimeout)
	defer cancel()
	if _, err := s.submitAndUnlock(ctx, slices.Clone(s.waypoints)); err != nil {
		log.Debug().Err(err).Str("user", s.userID).Msg("route auto-submission discarded")
	}
}

// submitAndUnlock is entered with mu held and returns with it released.
func (s *Session) submitAndUnlock(ctx context.Context, waypoints []string) (domain.EvaluationResult, error) {
	s.submittedAt = s.clock.Now()
	if len(waypoints) < 2 {
		return s.concludeAndUnlock(domain.InvalidResult(TooFewStationsMessage)), nil
	}
	if s.evaluator == nil {
		log.Error().Str("user", s.userID).Msg("route session has no evaluator")
		return s.concludeAndUnlock(domain.InvalidResult(EvaluationFailedMessage)), nil
	}

	epoch := s.epoch
	s.evaluating = true
	s.timers.StopAll()
	snap := s.commitLocked()
	s.mu.Unlock()
	s.emit(snap)

	result, err := s.evaluator.EvaluateRoute(ctx, waypoints)

	s.mu.Lock()
	if s.epoch != epoch || s.phase != domain.PHASE_RUNNING {
		s.mu.Unlock()
		log.Debug().Str("user", s.userID).Msg("late route evaluation ignored")
		return domain.EvaluationResult{}, domain.ErrStaleEvaluation
	}
	if err != nil {
		log.Warn().Err(err).Str("user", s.userID).Strs("waypoints", waypoints).Msg("route evaluation failed")
		result = domain.InvalidResult(EvaluationFailedMessage)
	}
	return s.concludeAndUnlock(result), nil
}

// concludeAndUnlock ends the round with result and submits the score of a
// valid route.
func (s *Session) concludeAndUnlock(result domain.EvaluationResult) domain.EvaluationResult {
	s.timers.StopAll()
	s.epoch++
	s.evaluating = false
	s.phase = domain.PHASE_ENDED
	s.result = &result
	elapsed := s.submittedAt.Sub(s.startedAt).Seconds()

	snap := s.commitLocked()
	s.mu.Unlock()
	s.emit(snap)

	log.Debug().
		Str("user", s.userID).
		Bool("valid", result.Valid).
		Float64("time_taken", elapsed).
		Msg("route session ended")

	if result.Valid && result.Score != nil && s.submitter != nil {
		s.submitter.Submit(domain.ScoreSubmission{
			UserID:           s.userID,
			GameType:         domain.GameMetro,
			Score:            *result.Score,
			TimeTakenSeconds: elapsed,
		})
	}
	return result
}

func (s *Session) commitLocked() Snapshot {
	s.seq++
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Seq:              s.seq,
		Phase:            s.phase,
		Difficulty:       s.difficulty,
		Start:            s.start,
		End:              s.end,
		Waypoints:        slices.Clone(s.waypoints),
		SecondsRemaining: s.secondsRemaining,
		Evaluating:       s.evaluating,
	}
	if snap.Waypoints == nil {
		snap.Waypoints = []string{}
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

func (s *Session) emit(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
