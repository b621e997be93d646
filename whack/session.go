package whack

import (
	"arcade/clock"
	"arcade/domain"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ScoreSubmitter receives the final score of a session. It is fire-and-forget.
type ScoreSubmitter interface {
	Submit(sub domain.ScoreSubmission)
}

type SpawnedEntity struct {
	InstanceID     string               `json:"instanceId"`
	Type           domain.EntityTypeDef `json:"type"`
	SlotIndex      int                  `json:"slot"`
	ExpiresAfterMs int64                `json:"expiresAfterMs"`
	SpawnedAt      time.Time            `json:"spawnedAt"`
}

type spawned struct {
	SpawnedEntity
	expiry clock.Handle
}

// Popup is a transient score indicator anchored at a slot, in grid-relative
// coordinates (0..1 on both axes).
type Popup struct {
	ID     string  `json:"id"`
	Points int     `json:"points"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type HitResult struct {
	InstanceID       string          `json:"instanceId"`
	Category         domain.Category `json:"category"`
	Points           int             `json:"points"`
	Score            int             `json:"score"`
	ComboCount       int             `json:"comboCount"`
	ComboMultiplier  float64         `json:"comboMultiplier"`
	SecondsRemaining int             `json:"secondsRemaining"`
}

type Result struct {
	Score            int     `json:"score"`
	TimeTakenSeconds float64 `json:"timeTakenSeconds"`
	EscalationLevel  int     `json:"escalationLevel"`
}

type Snapshot struct {
	Seq                  uint64            `json:"seq"`
	Phase                domain.Phase      `json:"phase"`
	Difficulty           domain.Difficulty `json:"difficulty"`
	Mode                 Mode              `json:"mode"`
	Slots                int               `json:"slots"`
	Score                int               `json:"score"`
	SecondsRemaining     int               `json:"secondsRemaining"`
	ComboCount           int               `json:"comboCount"`
	ComboMultiplier      float64           `json:"comboMultiplier"`
	EscalationLevel      int               `json:"escalationLevel"`
	ProductionIntervalMs int64             `json:"productionIntervalMs"`
	Entities             []SpawnedEntity   `json:"entities"`
	Popups               []Popup           `json:"popups"`
	Result               *Result           `json:"result,omitempty"`
}

type Options struct {
	UserID    string
	Clock     clock.Clock
	Rand      *rand.Rand
	Submitter ScoreSubmitter
	// OnChange is called with a fresh snapshot after every state change,
	// outside the session lock.
	OnChange func(Snapshot)
	NewID    func() string
}

// Session is one play-through of the target-whacking game. Every timer
// callback and user action goes through the session mutex, and every timer
// lives in the session's group so that each exit path can cancel all of them.
type Session struct {
	mu        sync.Mutex
	cfg       Config
	catalog   []domain.EntityTypeDef
	userID    string
	clock     clock.Clock
	timers    *clock.Group
	rng       *rand.Rand
	submitter ScoreSubmitter
	onChange  func(Snapshot)
	newID     func() string
	combo     *ComboTracker

	phase            domain.Phase
	epoch            uint64
	seq              uint64
	score            int
	secondsRemaining int
	startedAt        time.Time
	level            int
	interval         time.Duration
	producer         clock.Handle
	active           map[string]*spawned
	slots            []string
	popups           []Popup
	result           *Result
}

func NewSession(cfg Config, catalog []domain.EntityTypeDef, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	s := &Session{
		cfg:       cfg.withDefaults(),
		catalog:   slices.Clone(catalog),
		userID:    opts.UserID,
		clock:     opts.Clock,
		timers:    clock.NewGroup(opts.Clock),
		rng:       opts.Rand,
		submitter: opts.Submitter,
		onChange:  opts.OnChange,
		newID:     opts.NewID,
		phase:     domain.PHASE_IDLE,
	}
	s.combo = NewComboTracker(s.timers, s.comboDecayed)
	s.resetLocked()
	return s
}

func (s *Session) Config() Config {
	return s.cfg
}

// Start moves an idle or ended session to running.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.phase == domain.PHASE_RUNNING {
		s.mu.Unlock()
		return domain.ErrSessionRunning
	}
	if len(s.catalog) == 0 {
		s.mu.Unlock()
		return domain.ErrEmptyCatalog
	}
	s.startLocked()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap)
	return nil
}

// Restart abandons a running play-through without submitting it and starts
// a fresh one.
func (s *Session) Restart() error {
	s.mu.Lock()
	if len(s.catalog) == 0 {
		s.mu.Unlock()
		return domain.ErrEmptyCatalog
	}
	s.startLocked()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap)
	return nil
}

// End finishes a running session and submits its score. It returns false if
// the session was not running.
func (s *Session) End() (Result, bool) {
	s.mu.Lock()
	if s.phase != domain.PHASE_RUNNING {
		s.mu.Unlock()
		return Result{}, false
	}
	result := s.endLocked()
	snap := s.commitLocked()
	s.mu.Unlock()

	s.finish(result, snap)
	return result, true
}

// Close cancels every timer and returns the session to idle without
// submitting anything. It is the unmount path.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers.StopAll()
	s.epoch++
	s.resetLocked()
	s.phase = domain.PHASE_IDLE
}

// Whack hits the given instance. It returns false if the session is not
// running or the instance is already gone.
func (s *Session) Whack(instanceID string) (HitResult, bool) {
	s.mu.Lock()
	if s.phase != domain.PHASE_RUNNING {
		s.mu.Unlock()
		return HitResult{}, false
	}
	ent, ok := s.active[instanceID]
	if !ok {
		s.mu.Unlock()
		return HitResult{}, false
	}
	s.removeLocked(ent)

	def := ent.Type
	count, mult := s.combo.Hit(def.Category, s.clock.Now())
	points := pointsFor(def, mult)
	s.score = max(0, s.score+points)

	if def.Category == domain.CategoryPenalty {
		floor := StandardMinSeconds
		if s.cfg.Mode == ModeSurvival {
			floor = SurvivalMinSeconds
		}
		if s.secondsRemaining > floor {
			s.secondsRemaining = max(floor, s.secondsRemaining-PenaltyTimeCost(def))
		}
	}

	x, y := s.slotCenter(ent.SlotIndex)
	popup := Popup{ID: s.newID(), Points: points, X: x, Y: y}
	s.popups = append(s.popups, popup)
	epoch := s.epoch
	s.timers.After(PopupDuration, func() { s.dropPopup(epoch, popup.ID) })

	res := HitResult{
		InstanceID:       instanceID,
		Category:         def.Category,
		Points:           points,
		Score:            s.score,
		ComboCount:       count,
		ComboMultiplier:  mult,
		SecondsRemaining: s.secondsRemaining,
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.emit(snap)
	return res, true
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func pointsFor(def domain.EntityTypeDef, multiplier float64) int {
	if def.Category == domain.CategoryPenalty {
		return def.Points
	}
	return int(math.Round(float64(def.Points) * multiplier))
}

func (s *Session) startLocked() {
	s.timers.StopAll()
	s.resetLocked()

	s.epoch++
	epoch := s.epoch
	s.phase = domain.PHASE_RUNNING
	s.startedAt = s.clock.Now()
	s.secondsRemaining = GameDuration

	s.timers.Every(time.Second, func() { s.countdownTick(epoch) })
	s.producer = s.timers.Every(s.interval, func() { s.produce(epoch) })
	if s.cfg.Mode == ModeSurvival {
		s.timers.Every(EscalationInterval, func() { s.escalate(epoch) })
	}

	log.Debug().
		Str("user", s.userID).
		Str("difficulty", string(s.cfg.Difficulty)).
		Str("mode", string(s.cfg.Mode)).
		Msg("whack session started")
}

func (s *Session) resetLocked() {
	s.combo.Reset()
	s.score = 0
	s.secondsRemaining = 0
	s.level = 1
	s.interval = ProductionInterval(s.cfg, 1)
	s.producer = nil
	s.active = make(map[string]*spawned, s.cfg.Slots)
	s.slots = make([]string, s.cfg.Slots)
	s.popups = nil
	s.result = nil
}

func (s *Session) endLocked() Result {
	s.timers.StopAll()
	s.combo.Reset()
	s.epoch++
	s.producer = nil
	s.active = make(map[string]*spawned, s.cfg.Slots)
	s.slots = make([]string, s.cfg.Slots)
	s.popups = nil
	s.phase = domain.PHASE_ENDED

	result := Result{
		Score:            s.score,
		TimeTakenSeconds: s.clock.Now().Sub(s.startedAt).Seconds(),
		EscalationLevel:  s.level,
	}
	s.result = &result

	log.Debug().
		Str("user", s.userID).
		Int("score", result.Score).
		Float64("time_taken", result.TimeTakenSeconds).
		Msg("whack session ended")
	return result
}

func (s *Session) finish(result Result, snap Snapshot) {
	s.emit(snap)
	if s.submitter == nil {
		return
	}
	s.submitter.Submit(domain.ScoreSubmission{
		UserID:           s.userID,
		GameType:         domain.GameWhack,
		Score:            result.Score,
		TimeTakenSeconds: result.TimeTakenSeconds,
	})
}

func (s *Session) liveLocked(epoch uint64) bool {
	return s.phase == domain.PHASE_RUNNING && s.epoch == epoch
}

func (s *Session) countdownTick(epoch uint64) {
	s.mu.Lock()
	if !s.liveLocked(epoch) {
		s.mu.Unlock()
		return
	}

	s.secondsRemaining--
	if s.secondsRemaining <= 0 {
		s.secondsRemaining = 0
		result := s.endLocked()
		snap := s.commitLocked()
		s.mu.Unlock()

		s.finish(result, snap)
		return
	}

	snap := s.commitLocked()
	s.mu.Unlock()
	s.emit(snap)
}

func (s *Session) produce(epoch uint64) {
	s.mu.Lock()
	if !s.liveLocked(epoch) {
		s.mu.Unlock()
		return
	}

	free := make([]int, 0, len(s.slots))
	for i, occupant := range s.slots {
		if occupant == "" {
			free = append(free, i+1)
		}
	}
	if len(free) == 0 || len(s.catalog) == 0 {
		s.mu.Unlock()
		return
	}

	slot := free[s.rng.IntN(len(free))]
	def := Draw(s.catalog, SpawnWeight(s.cfg, s.level), s.rng)
	lifetime := Lifetime(s.cfg, def.Category, s.level)

	ent := &spawned{SpawnedEntity: SpawnedEntity{
		InstanceID:     s.newID(),
		Type:           def,
		SlotIndex:      slot,
		ExpiresAfterMs: lifetime.Milliseconds(),
		SpawnedAt:      s.clock.Now(),
	}}
	s.active[ent.InstanceID] = ent
	s.slots[slot-1] = ent.InstanceID

	id := ent.InstanceID
	ent.expiry = s.timers.After(lifetime, func() { s.expire(epoch, id) })

	snap := s.commitLocked()
	s.mu.Unlock()
	s.emit(snap)
}

func (s *Session) expire(epoch uint64, instanceID string) {
	s.mu.Lock()
	if !s.liveLocked(epoch) {
		s.mu.Unlock()
		return
	}
	ent, ok := s.active[instanceID]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.removeLocked(ent)

	snap := s.commitLocked()
	s.mu.Unlock()
	s.emit(snap)
}

func (s *Session) escalate(epoch uint64) {
	s.mu.Lock()
	if !s.liveLocked(epoch) {
		s.mu.Unlock()
		return
	}

	s.level++
	s.interval = ProductionInterval(s.cfg, s.level)
	if s.producer != nil {
		s.producer.Stop()
	}
	s.producer = s.timers.Every(s.interval, func() { s.produce(epoch) })

	log.Debug().
		Str("user", s.userID).
		Int("level", s.level).
		Dur("interval", s.interval).
		Msg("whack session escalated")

	snap := s.commitLocked()
	s.mu.Unlock()
	s.emit(snap)
}

func (s *Session) dropPopup(epoch uint64, id string) {
	s.mu.Lock()
	if !s.liveLocked(epoch) {
		s.mu.Unlock()
		return
	}
	idx := slices.IndexFunc(s.popups, func(p Popup) bool { return p.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.popups = slices.Delete(s.popups, idx, idx+1)

	snap := s.commitLocked()
	s.mu.Unlock()
	s.emit(snap)
}

func (s *Session) comboDecayed() {
	s.mu.Lock()
	if s.phase != domain.PHASE_RUNNING {
		s.mu.Unlock()
		return
	}
	snap := s.commitLocked()
	s.mu.Unlock()
	s.emit(snap)
}

// removeLocked frees the entity's slot and cancels its expiry. Calling it from
// the expiry callback itself is harmless: the fired timer's Stop is a no-op.
func (s *Session) removeLocked(ent *spawned) {
	delete(s.active, ent.InstanceID)
	if s.slots[ent.SlotIndex-1] == ent.InstanceID {
		s.slots[ent.SlotIndex-1] = ""
	}
	if ent.expiry != nil {
		ent.expiry.Stop()
	}
}

func (s *Session) slotCenter(slot int) (float64, float64) {
	rows := (s.cfg.Slots + GridColumns - 1) / GridColumns
	col := (slot - 1) % GridColumns
	row := (slot - 1) / GridColumns
	return (float64(col) + 0.5) / GridColumns, (float64(row) + 0.5) / float64(rows)
}

func (s *Session) commitLocked() Snapshot {
	s.seq++
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	entities := make([]SpawnedEntity, 0, len(s.active))
	for _, ent := range s.active {
		entities = append(entities, ent.SpawnedEntity)
	}
	slices.SortFunc(entities, func(a, b SpawnedEntity) int { return a.SlotIndex - b.SlotIndex })

	snap := Snapshot{
		Seq:                  s.seq,
		Phase:                s.phase,
		Difficulty:           s.cfg.Difficulty,
		Mode:                 s.cfg.Mode,
		Slots:                s.cfg.Slots,
		Score:                s.score,
		SecondsRemaining:     s.secondsRemaining,
		ComboCount:           s.combo.Count(),
		ComboMultiplier:      s.combo.Multiplier(),
		EscalationLevel:      s.level,
		ProductionIntervalMs: s.interval.Milliseconds(),
		Entities:             entities,
		Popups:               slices.Clone(s.popups),
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
