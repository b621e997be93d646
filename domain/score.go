package domain

import "time"

type GameType string

const (
	GameWhack GameType = "whac_a_deficiency"
	GameMetro GameType = "paris_metro"
)

func (g GameType) Valid() bool {
	return g == GameWhack || g == GameMetro
}

// ScoreSubmission is what a finished session hands to the score collaborator.
type ScoreSubmission struct {
	UserID           string
	GameType         GameType
	Score            int
	TimeTakenSeconds float64
}

type Score struct {
	Id        string    `json:"id"`
	UserId    string    `json:"userId"`
	GameType  GameType  `json:"gameType"`
	Score     int       `json:"score"`
	TimeTaken float64   `json:"timeTaken"`
	CreatedAt time.Time `json:"createdAt"`
}

type Highscore struct {
	Id        string    `json:"id"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	TimeTaken float64   `json:"timeTaken"`
	CreatedAt time.Time `json:"createdAt"`
}
