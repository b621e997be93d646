package whack

import (
	"arcade/domain"
	"fmt"
	"math"
	"time"
)

type Mode string

const (
	ModeStandard Mode = "standard"
	ModeSurvival Mode = "survival"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStandard, ModeSurvival:
		return Mode(s), nil
	case "":
		return ModeStandard, nil
	}
	return "", fmt.Errorf("%w: mode %q", domain.ErrInvalidGameSettings, s)
}

// Gameplay tuning.
const (
	DefaultSlots = 9
	GridColumns  = 3

	GameDuration = 60 // seconds, both modes

	BaseProductionInterval = 1000 * time.Millisecond
	ProductionStep         = 100 * time.Millisecond
	MinProductionInterval  = 300 * time.Millisecond

	EscalationInterval = 15 * time.Second

	StandardLifetime       = 2000 * time.Millisecond
	SurvivalLifetime       = 2500 * time.Millisecond
	SurvivalLifetimeStep   = 150 * time.Millisecond
	MinLifetime            = 800 * time.Millisecond
	ShortLivedCategoryRate = 0.7

	PenaltyInflationFromLevel = 3
	PenaltyInflationPerLevel  = 0.1

	HeavyPenaltyType    = "Junk Food"
	HeavyPenaltySeconds = 5
	PenaltySeconds      = 2
	SurvivalMinSeconds  = 1
	StandardMinSeconds  = 5
	PopupDuration       = 1000 * time.Millisecond
)

type Config struct {
	Difficulty domain.Difficulty
	Mode       Mode
	Slots      int
}

func (c Config) withDefaults() Config {
	if c.Difficulty == "" {
		c.Difficulty = domain.DifficultyNormal
	}
	if c.Mode == "" {
		c.Mode = ModeStandard
	}
	if c.Slots <= 0 {
		c.Slots = DefaultSlots
	}
	return c
}

func difficultyFactor(d domain.Difficulty) float64 {
	switch d {
	case domain.DifficultyEasy:
		return 1.5
	case domain.DifficultyHard:
		return 0.7
	default:
		return 1.0
	}
}

func scale(d time.Duration, f float64) time.Duration {
	return time.Duration(math.Round(float64(d) * f))
}

// ProductionInterval is the producer period at the given escalation level.
func ProductionInterval(cfg Config, level int) time.Duration {
	interval := scale(BaseProductionInterval, difficultyFactor(cfg.Difficulty))
	if cfg.Mode == ModeSurvival && level > 1 {
		interval -= time.Duration(level-1) * ProductionStep
	}
	return max(interval, MinProductionInterval)
}

// Lifetime is how long a freshly spawned entity of the category stays up.
func Lifetime(cfg Config, category domain.Category, level int) time.Duration {
	factor := difficultyFactor(cfg.Difficulty)

	var lifetime time.Duration
	if cfg.Mode == ModeSurvival {
		lifetime = scale(SurvivalLifetime, factor)
		if level > 1 {
			lifetime -= time.Duration(level-1) * SurvivalLifetimeStep
		}
	} else {
		lifetime = scale(StandardLifetime, factor)
		if category == domain.CategoryBonus || category == domain.CategoryPenalty {
			lifetime = scale(lifetime, ShortLivedCategoryRate)
		}
	}
	return max(lifetime, MinLifetime)
}

// PenaltyTimeCost is the number of seconds a penalty hit takes off the clock.
func PenaltyTimeCost(def domain.EntityTypeDef) int {
	if def.Name == HeavyPenaltyType {
		return HeavyPenaltySeconds
	}
	return PenaltySeconds
}
