package whack

import (
	"arcade/domain"
	"math/rand/v2"
)

// Draw picks one catalog entry with probability proportional to weight(entry).
// It walks the catalog subtracting weights from a uniform sample in
// [0, total) and falls back to the first entry if rounding leaves nothing.
func Draw(catalog []domain.EntityTypeDef, weight func(domain.EntityTypeDef) float64, r *rand.Rand) domain.EntityTypeDef {
	total := 0.0
	for _, def := range catalog {
		total += weight(def)
	}

	remaining := r.Float64() * total
	for _, def := range catalog {
		remaining -= weight(def)
		if remaining <= 0 {
			return def
		}
	}
	return catalog[0]
}

// SpawnWeight is the appearance weight used for a draw at the given level.
// Late survival levels make penalties more likely without touching the catalog.
func SpawnWeight(cfg Config, level int) func(domain.EntityTypeDef) float64 {
	return func(def domain.EntityTypeDef) float64 {
		w := def.AppearanceWeight
		if cfg.Mode == ModeSurvival && level > PenaltyInflationFromLevel && def.Category == domain.CategoryPenalty {
			w *= 1 + PenaltyInflationPerLevel*float64(level)
		}
		return w
	}
}
