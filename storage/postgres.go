package storage

import (
	"arcade/domain"
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation           = "23505"
	pgForeignKeyViolation       = "23503"
	pgInvalidTextRepresentation = "22P02"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pgr *PostgresRepo) Close() {
	pgr.pool.Close()
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func (pgr *PostgresRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{Username: username}

	row := pgr.pool.QueryRow(ctx, "SELECT id::text, password_hash FROM users WHERE username = $1", username)
	if err := row.Scan(&user.Id, &user.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, unexpected(err)
	}

	return user, nil
}

func (pgr *PostgresRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	user := domain.User{Id: id}

	row := pgr.pool.QueryRow(ctx, "SELECT username, password_hash FROM users WHERE id = $1", id)
	if err := row.Scan(&user.Username, &user.PasswordHash); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows), pgCode(err) == pgInvalidTextRepresentation:
			return domain.User{}, domain.ErrUserNotFound
		default:
			return domain.User{}, unexpected(err)
		}
	}

	return user, nil
}

func (pgr *PostgresRepo) CreateUser(ctx context.Context, username string, passwordHash string) (string, error) {
	row := pgr.pool.QueryRow(ctx, "INSERT INTO users(username, password_hash) VALUES($1, $2) RETURNING id::text", username, passwordHash)

	var id string
	if err := row.Scan(&id); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return "", domain.ErrDuplicateUsername
		}
		return "", unexpected(err)
	}

	return id, nil
}

func (pgr *PostgresRepo) CreateScore(ctx context.Context, sub domain.ScoreSubmission) (domain.Score, error) {
	score := domain.Score{
		UserId:    sub.UserID,
		GameType:  sub.GameType,
		Score:     sub.Score,
		TimeTaken: sub.TimeTakenSeconds,
	}

	row := pgr.pool.QueryRow(ctx,
		`INSERT INTO scores(user_id, game_type, score, time_taken) VALUES($1, $2, $3, $4)
		 RETURNING id::text, created_at`,
		sub.UserID, string(sub.GameType), sub.Score, sub.TimeTakenSeconds)

	if err := row.Scan(&score.Id, &score.CreatedAt); err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation, pgInvalidTextRepresentation:
			return domain.Score{}, domain.ErrUserNotFound
		}
		return domain.Score{}, unexpected(err)
	}

	return score, nil
}

func (pgr *PostgresRepo) Highscores(ctx context.Context, gameType domain.GameType, limit int) ([]domain.Highscore, error) {
	rows, err := pgr.pool.Query(ctx,
		`SELECT s.id::text, u.username, s.score, s.time_taken, s.created_at
		 FROM scores s JOIN users u ON u.id = s.user_id
		 WHERE s.game_type = $1
		 ORDER BY s.score DESC, s.time_taken ASC, s.created_at ASC
		 LIMIT $2`,
		string(gameType), limit)
	if err != nil {
		return nil, unexpected(err)
	}

	highscores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Highscore, error) {
		var h domain.Highscore
		err := row.Scan(&h.Id, &h.Username, &h.Score, &h.TimeTaken, &h.CreatedAt)
		return h, err
	})
	if err != nil {
		return nil, unexpected(err)
	}
	return highscores, nil
}

func (pgr *PostgresRepo) UserScores(ctx context.Context, userID string, limit int) ([]domain.Score, error) {
	rows, err := pgr.pool.Query(ctx,
		`SELECT id::text, user_id::text, game_type, score, time_taken, created_at
		 FROM scores
		 WHERE user_id::text = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, unexpected(err)
	}

	scores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Score, error) {
		var s domain.Score
		var gameType string
		err := row.Scan(&s.Id, &s.UserId, &gameType, &s.Score, &s.TimeTaken, &s.CreatedAt)
		s.GameType = domain.GameType(gameType)
		return s, err
	})
	if err != nil {
		return nil, unexpected(err)
	}
	return scores, nil
}

func (pgr *PostgresRepo) EntityCatalog(ctx context.Context) ([]domain.EntityTypeDef, error) {
	rows, err := pgr.pool.Query(ctx,
		`SELECT id::text, name, icon, description, category, points, appearance_weight
		 FROM entity_types ORDER BY id`)
	if err != nil {
		return nil, unexpected(err)
	}

	catalog, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.EntityTypeDef, error) {
		var def domain.EntityTypeDef
		var category string
		err := row.Scan(&def.ID, &def.Name, &def.Icon, &def.Description, &category, &def.Points, &def.AppearanceWeight)
		def.Category = domain.Category(category)
		return def, err
	})
	if err != nil {
		return nil, unexpected(err)
	}
	return catalog, nil
}

func (pgr *PostgresRepo) StationGraph(ctx context.Context) (domain.StationGraph, error) {
	rows, err := pgr.pool.Query(ctx, "SELECT id, name FROM stations ORDER BY id")
	if err != nil {
		return nil, unexpected(err)
	}
	stations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Station, error) {
		var st domain.Station
		err := row.Scan(&st.ID, &st.Name)
		return st, err
	})
	if err != nil {
		return nil, unexpected(err)
	}

	rows, err = pgr.pool.Query(ctx,
		"SELECT from_station, to_station, minutes FROM station_connections ORDER BY from_station, to_station")
	if err != nil {
		return nil, unexpected(err)
	}
	edges, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (edge, error) {
		var e edge
		err := row.Scan(&e.from, &e.to, &e.minutes)
		return e, err
	})
	if err != nil {
		return nil, unexpected(err)
	}

	return graphFrom(stations, edges), nil
}
