package whack

import (
	"arcade/domain"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDraw_ProportionalToWeight(t *testing.T) {
	t.Parallel()
	catalog := []domain.EntityTypeDef{
		{Name: "light", Category: domain.CategoryPrimary, AppearanceWeight: 1},
		{Name: "heavy", Category: domain.CategoryPrimary, AppearanceWeight: 3},
	}
	r := rand.New(rand.NewPCG(7, 11))
	weight := SpawnWeight(Config{Mode: ModeStandard}, 1)

	const draws = 10000
	heavy := 0
	for range draws {
		if Draw(catalog, weight, r).Name == "heavy" {
			heavy++
		}
	}
	assert.InDelta(t, 0.75, float64(heavy)/draws, 0.02)
}

func TestDraw_SingleEntry(t *testing.T) {
	t.Parallel()
	catalog := []domain.EntityTypeDef{{Name: "only", AppearanceWeight: 0.2}}
	r := rand.New(rand.NewPCG(1, 1))
	for range 100 {
		assert.Equal(t, "only", Draw(catalog, SpawnWeight(Config{}, 1), r).Name)
	}
}

func TestSpawnWeight_PenaltyInflation(t *testing.T) {
	t.Parallel()
	penalty := domain.EntityTypeDef{Category: domain.CategoryPenalty, AppearanceWeight: 0.2}
	primary := domain.EntityTypeDef{Category: domain.CategoryPrimary, AppearanceWeight: 0.2}
	survival := Config{Mode: ModeSurvival}
	standard := Config{Mode: ModeStandard}

	assert.Equal(t, 0.2, SpawnWeight(survival, 3)(penalty))
	assert.InDelta(t, 0.2*1.4, SpawnWeight(survival, 4)(penalty), 1e-9)
	assert.InDelta(t, 0.2*1.8, SpawnWeight(survival, 8)(penalty), 1e-9)
	assert.Equal(t, 0.2, SpawnWeight(survival, 8)(primary))
	assert.Equal(t, 0.2, SpawnWeight(standard, 8)(penalty))
}

func TestProductionInterval(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		cfg      Config
		level    int
		expected int64
	}{
		{Config{Difficulty: domain.DifficultyNormal, Mode: ModeStandard}, 1, 1000},
		{Config{Difficulty: domain.DifficultyEasy, Mode: ModeStandard}, 1, 1500},
		{Config{Difficulty: domain.DifficultyHard, Mode: ModeStandard}, 1, 700},
		{Config{Difficulty: domain.DifficultyNormal, Mode: ModeStandard}, 4, 1000},
		{Config{Difficulty: domain.DifficultyNormal, Mode: ModeSurvival}, 2, 900},
		{Config{Difficulty: domain.DifficultyNormal, Mode: ModeSurvival}, 8, 300},
		{Config{Difficulty: domain.DifficultyHard, Mode: ModeSurvival}, 5, 300},
		{Config{Difficulty: domain.DifficultyHard, Mode: ModeSurvival}, 9, 300},
	}
	for _, tc := range testCases {
		got := ProductionInterval(tc.cfg, tc.level).Milliseconds()
		assert.Equal(t, tc.expected, got, "%+v level=%d", tc.cfg, tc.level)
	}
}

func TestLifetime(t *testing.T) {
	t.Parallel()
	normal := Config{Difficulty: domain.DifficultyNormal, Mode: ModeStandard}
	survival := Config{Difficulty: domain.DifficultyNormal, Mode: ModeSurvival}
	hardSurvival := Config{Difficulty: domain.DifficultyHard, Mode: ModeSurvival}

	assert.Equal(t, int64(2000), Lifetime(normal, domain.CategoryPrimary, 1).Milliseconds())
	assert.Equal(t, int64(1400), Lifetime(normal, domain.CategoryBonus, 1).Milliseconds())
	assert.Equal(t, int64(1400), Lifetime(normal, domain.CategoryPenalty, 1).Milliseconds())
	assert.Equal(t, int64(2500), Lifetime(survival, domain.CategoryPrimary, 1).Milliseconds())
	assert.Equal(t, int64(2200), Lifetime(survival, domain.CategoryPrimary, 3).Milliseconds())
	assert.Equal(t, int64(800), Lifetime(hardSurvival, domain.CategoryPrimary, 9).Milliseconds())
}

func TestPenaltyTimeCost(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 5, PenaltyTimeCost(domain.EntityTypeDef{Name: "Junk Food"}))
	assert.Equal(t, 2, PenaltyTimeCost(domain.EntityTypeDef{Name: "Soda"}))
}
