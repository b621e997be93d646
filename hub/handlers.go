package hub

import (
	"arcade/clock"
	"arcade/domain"
	"arcade/metrics"
	"arcade/route"
	"arcade/whack"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnauthenticatedStr       = "unauthenticated"
	ErrInvalidRequestFormatStr  = "bad-request-format"
	ErrInvalidGameSettingsStr   = "invalid-game-settings"
	ErrCatalogUnavailableStr    = "catalog-unavailable"
	ErrStationsUnavailableStr   = "stations-unavailable"
	ErrEvaluationUnavailableStr = "evaluation-unavailable"
	ErrServerTimeoutStr         = "server-timeout"
)

const referenceDataTimeout = 5 * time.Second

type GameHandler struct {
	catalog   CatalogSource
	stations  StationSource
	evaluator route.Evaluator
	submitter ScoreSubmitter
	registry  *Registry
	metrics   *metrics.Metrics
	clock     clock.Clock
	upgrader  websocket.Upgrader
	ping      time.Duration
}

func NewGameHandler(
	catalog CatalogSource,
	stations StationSource,
	evaluator route.Evaluator,
	submitter ScoreSubmitter,
	registry *Registry,
	m *metrics.Metrics,
) *GameHandler {
	return &GameHandler{
		catalog:   catalog,
		stations:  stations,
		evaluator: evaluator,
		submitter: submitter,
		registry:  registry,
		metrics:   m,
		clock:     clock.Real(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the server's origin guard.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ping: pingInterval,
	}
}

func (h *GameHandler) CatalogHandler(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), referenceDataTimeout)
	defer cancel()

	catalog, err := h.catalog.EntityCatalog(c)
	if err != nil {
		h.failReferenceData(ctx, err, ErrCatalogUnavailableStr)
		return
	}
	if catalog == nil {
		catalog = []domain.EntityTypeDef{}
	}
	ctx.JSON(http.StatusOK, catalog)
}

func (h *GameHandler) StationsHandler(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), referenceDataTimeout)
	defer cancel()

	graph, err := h.stations.StationGraph(c)
	if err != nil {
		h.failReferenceData(ctx, err, ErrStationsUnavailableStr)
		return
	}

	stations := make([]domain.Station, 0, len(graph))
	for _, id := range graph.IDs() {
		stations = append(stations, graph[id])
	}
	ctx.JSON(http.StatusOK, stations)
}

// CheckRouteHandler evaluates a route without any session.
func (h *GameHandler) CheckRouteHandler(ctx *gin.Context) {
	var body struct {
		Waypoints []string `json:"waypoints"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidRequestFormatStr)
		return
	}

	c, cancel := context.WithTimeout(ctx.Request.Context(), route.DefaultEvaluationTimeout)
	defer cancel()

	result, err := h.evaluator.EvaluateRoute(c, body.Waypoints)
	if err != nil {
		h.failReferenceData(ctx, err, ErrEvaluationUnavailableStr)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (h *GameHandler) PlayWhackHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	if id == "" {
		ctx.String(http.StatusUnauthorized, ErrUnauthenticatedStr)
		return
	}

	difficulty, err := domain.ParseDifficulty(ctx.Query("difficulty"))
	if err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidGameSettingsStr)
		return
	}
	mode, err := whack.ParseMode(ctx.Query("mode"))
	if err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidGameSettingsStr)
		return
	}

	c, cancel := context.WithTimeout(ctx.Request.Context(), referenceDataTimeout)
	catalog, err := h.catalog.EntityCatalog(c)
	cancel()
	if err != nil {
		h.failReferenceData(ctx, err, ErrCatalogUnavailableStr)
		return
	}

	socket, ok := h.upgrade(ctx)
	if !ok {
		return
	}

	cfg := whack.Config{Difficulty: difficulty, Mode: mode}
	h.serve(id, domain.GameWhack, socket, func(cl *client) play {
		return newWhackPlay(cl, cfg, catalog, whack.Options{
			Clock:     h.clock,
			Submitter: h.submitter,
		}, h.metrics)
	})
}

func (h *GameHandler) PlayMetroHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	if id == "" {
		ctx.String(http.StatusUnauthorized, ErrUnauthenticatedStr)
		return
	}

	difficulty, err := domain.ParseDifficulty(ctx.Query("difficulty"))
	if err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidGameSettingsStr)
		return
	}

	c, cancel := context.WithTimeout(ctx.Request.Context(), referenceDataTimeout)
	graph, err := h.stations.StationGraph(c)
	cancel()
	if err != nil {
		h.failReferenceData(ctx, err, ErrStationsUnavailableStr)
		return
	}

	socket, ok := h.upgrade(ctx)
	if !ok {
		return
	}

	h.serve(id, domain.GameMetro, socket, func(cl *client) play {
		return newRoutePlay(cl, difficulty, graph, route.Options{
			Clock:     h.clock,
			Evaluator: h.evaluator,
			Submitter: h.submitter,
		}, h.metrics)
	})
}

func (h *GameHandler) upgrade(ctx *gin.Context) (NetworkSession, bool) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade has already answered the request.
		log.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return nil, false
	}
	return NewWebsocketConnection(conn), true
}

// serve runs one connection until the client goes away or the session is
// replaced.
func (h *GameHandler) serve(userID string, game domain.GameType, socket NetworkSession, build func(*client) play) {
	cl := newClient(userID, socket)
	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{
		game:    game,
		play:    build(cl),
		client:  cl,
		cancel:  cancel,
		metrics: h.metrics,
	}

	h.metrics.ConnectionOpened()
	defer h.metrics.ConnectionClosed()

	h.registry.register(userID, e)
	go cl.writePump(h.ping)

	log.Debug().Str("user", userID).Str("game", string(game)).Msg("player connected")
	cl.readPump(func(msg inbound) {
		e.play.handle(ctx, msg)
	})

	h.registry.remove(userID, e)
	e.stop("")
	log.Debug().Str("user", userID).Str("game", string(game)).Msg("player disconnected")
}

func (h *GameHandler) failReferenceData(ctx *gin.Context, err error, code string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		ctx.String(http.StatusGatewayTimeout, ErrServerTimeoutStr)
	case errors.Is(err, context.Canceled):
		ctx.Status(499)
	default:
		log.Error().Err(err).Str("ip", ctx.ClientIP()).Msg(code)
		ctx.String(http.StatusInternalServerError, code)
	}
}
