package domain

import "fmt"

type Phase int

const (
	PHASE_IDLE Phase = iota
	PHASE_RUNNING
	PHASE_ENDED
)

func (p Phase) String() string {
	switch p {
	case PHASE_IDLE:
		return "idle"
	case PHASE_RUNNING:
		return "running"
	case PHASE_ENDED:
		return "ended"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Difficulty is shared by both games.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return Difficulty(s), nil
	case "":
		return DifficultyNormal, nil
	}
	return "", fmt.Errorf("%w: difficulty %q", ErrInvalidGameSettings, s)
}
