package scores

import (
	"arcade/domain"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	HighscoreLimit = 10
	UserScoreLimit = 50
)

var (
	ErrUnauthenticatedStr      = "unauthenticated"
	ErrInvalidRequestFormatStr = "bad-request-format"
	ErrInvalidGameTypeStr      = "invalid-game-type"
	ErrInvalidScoreStr         = "invalid-score"
	ErrUserNotFoundStr         = "user-not-found"
	ErrServerTimeoutStr        = "server-timeout"
	ErrUnknownStr              = "unknown-error"
)

type scoresHandler struct {
	store Store
}

func NewScoresHandler(store Store) *scoresHandler {
	return &scoresHandler{store: store}
}

func (h *scoresHandler) CreateScoreHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	if id == "" {
		ctx.String(http.StatusUnauthorized, ErrUnauthenticatedStr)
		return
	}

	var body struct {
		GameType  domain.GameType `json:"gameType"`
		Score     int             `json:"score"`
		TimeTaken float64         `json:"timeTaken"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidRequestFormatStr)
		return
	}

	sub := domain.ScoreSubmission{
		UserID:           id,
		GameType:         body.GameType,
		Score:            body.Score,
		TimeTakenSeconds: body.TimeTaken,
	}
	if err := Validate(sub); err != nil {
		if errors.Is(err, domain.ErrInvalidGameType) {
			ctx.String(http.StatusBadRequest, ErrInvalidGameTypeStr)
		} else {
			ctx.String(http.StatusBadRequest, ErrInvalidScoreStr)
		}
		return
	}

	score, err := h.store.CreateScore(ctx.Request.Context(), sub)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			ctx.String(http.StatusUnauthorized, ErrUserNotFoundStr)
		default:
			h.fail(ctx, err, "CreateScore")
		}
		return
	}

	ctx.JSON(http.StatusCreated, score)
}

func (h *scoresHandler) HighscoresHandler(ctx *gin.Context) {
	gameType := domain.GameType(ctx.Param("gameType"))
	if !gameType.Valid() {
		ctx.String(http.StatusBadRequest, ErrInvalidGameTypeStr)
		return
	}

	highscores, err := h.store.Highscores(ctx.Request.Context(), gameType, HighscoreLimit)
	if err != nil {
		h.fail(ctx, err, "Highscores")
		return
	}
	if highscores == nil {
		highscores = []domain.Highscore{}
	}

	ctx.JSON(http.StatusOK, highscores)
}

func (h *scoresHandler) MyScoresHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	if id == "" {
		ctx.String(http.StatusUnauthorized, ErrUnauthenticatedStr)
		return
	}

	scores, err := h.store.UserScores(ctx.Request.Context(), id, UserScoreLimit)
	if err != nil {
		h.fail(ctx, err, "UserScores")
		return
	}
	if scores == nil {
		scores = []domain.Score{}
	}

	ctx.JSON(http.StatusOK, scores)
}

func (h *scoresHandler) fail(ctx *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		ctx.String(http.StatusGatewayTimeout, ErrServerTimeoutStr)
	case errors.Is(err, context.Canceled):
		ctx.Status(499)
	default:
		log.Error().Err(err).Str("ip", ctx.ClientIP()).Msg(op + ": unexpected error")
		ctx.String(http.StatusInternalServerError, ErrUnknownStr)
	}
}
