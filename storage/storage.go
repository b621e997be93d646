// Package storage persists users and scores and serves the read-only game
// reference data (entity catalog, station graph).
package storage

import (
	"arcade/domain"
	"context"
	"errors"
	"fmt"
)

// Repository is implemented by PostgresRepo and SQLiteRepo.
type Repository interface {
	CreateUser(ctx context.Context, username string, passwordHash string) (string, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserById(ctx context.Context, id string) (domain.User, error)

	CreateScore(ctx context.Context, sub domain.ScoreSubmission) (domain.Score, error)
	Highscores(ctx context.Context, gameType domain.GameType, limit int) ([]domain.Highscore, error)
	UserScores(ctx context.Context, userID string, limit int) ([]domain.Score, error)

	EntityCatalog(ctx context.Context) ([]domain.EntityTypeDef, error)
	StationGraph(ctx context.Context) (domain.StationGraph, error)

	Close()
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the database named by driver. Migrations are expected to
// be applied already.
func Open(ctx context.Context, driver, dsn string) (Repository, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresRepo(ctx, dsn)
	case DriverSQLite:
		return NewSQLiteRepo(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}

// unexpected passes context errors through and tags everything else as an
// unexpected database error.
func unexpected(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
}

func graphFrom(stations []domain.Station, edges []edge) domain.StationGraph {
	graph := make(domain.StationGraph, len(stations))
	for _, st := range stations {
		st.Connections = []domain.Connection{}
		graph[st.ID] = st
	}
	for _, e := range edges {
		st, ok := graph[e.from]
		if !ok {
			continue
		}
		st.Connections = append(st.Connections, domain.Connection{To: e.to, Minutes: e.minutes})
		graph[e.from] = st
	}
	return graph
}

type edge struct {
	from    string
	to      string
	minutes int
}
