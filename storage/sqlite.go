package storage

import (
	"arcade/domain"
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepo is the single-file storage used for local play and tests.
type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// SQLiteDSN turns a file path into a DSN with foreign keys enforced. DSNs that
// already carry a query string are returned unchanged.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepo(ctx context.Context, dsn string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", SQLiteDSN(dsn))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRepo{db: db, now: time.Now}, nil
}

func (r *SQLiteRepo) Close() {
	r.db.Close()
}

func sqliteCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}

func (r *SQLiteRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{Username: username}

	row := r.db.QueryRowContext(ctx, "SELECT id, password_hash FROM users WHERE username = ?", username)
	if err := row.Scan(&user.Id, &user.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, unexpected(err)
	}

	return user, nil
}

func (r *SQLiteRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	user := domain.User{Id: id}

	row := r.db.QueryRowContext(ctx, "SELECT username, password_hash FROM users WHERE id = ?", id)
	if err := row.Scan(&user.Username, &user.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, unexpected(err)
	}

	return user, nil
}

func (r *SQLiteRepo) CreateUser(ctx context.Context, username string, passwordHash string) (string, error) {
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx, "INSERT INTO users(id, username, password_hash) VALUES(?, ?, ?)", id, username, passwordHash)
	if err != nil {
		if sqliteCode(err) == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return "", domain.ErrDuplicateUsername
		}
		return "", unexpected(err)
	}

	return id, nil
}

func (r *SQLiteRepo) CreateScore(ctx context.Context, sub domain.ScoreSubmission) (domain.Score, error) {
	score := domain.Score{
		Id:        uuid.NewString(),
		UserId:    sub.UserID,
		GameType:  sub.GameType,
		Score:     sub.Score,
		TimeTaken: sub.TimeTakenSeconds,
		CreatedAt: r.now().UTC(),
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO scores(id, user_id, game_type, score, time_taken, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		score.Id, score.UserId, string(score.GameType), score.Score, score.TimeTaken, score.CreatedAt)
	if err != nil {
		if sqliteCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return domain.Score{}, domain.ErrUserNotFound
		}
		return domain.Score{}, unexpected(err)
	}

	return score, nil
}

func (r *SQLiteRepo) Highscores(ctx context.Context, gameType domain.GameType, limit int) ([]domain.Highscore, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, u.username, s.score, s.time_taken, s.created_at
		 FROM scores s JOIN users u ON u.id = s.user_id
		 WHERE s.game_type = ?
		 ORDER BY s.score DESC, s.time_taken ASC, s.created_at ASC
		 LIMIT ?`,
		string(gameType), limit)
	if err != nil {
		return nil, unexpected(err)
	}
	defer rows.Close()

	highscores := []domain.Highscore{}
	for rows.Next() {
		var h domain.Highscore
		if err := rows.Scan(&h.Id, &h.Username, &h.Score, &h.TimeTaken, &h.CreatedAt); err != nil {
			return nil, unexpected(err)
		}
		highscores = append(highscores, h)
	}
	if err := rows.Err(); err != nil {
		return nil, unexpected(err)
	}
	return highscores, nil
}

func (r *SQLiteRepo) UserScores(ctx context.Context, userID string, limit int) ([]domain.Score, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, game_type, score, time_taken, created_at
		 FROM scores
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, unexpected(err)
	}
	defer rows.Close()

	scores := []domain.Score{}
	for rows.Next() {
		var s domain.Score
		var gameType string
		if err := rows.Scan(&s.Id, &s.UserId, &gameType, &s.Score, &s.TimeTaken, &s.CreatedAt); err != nil {
			return nil, unexpected(err)
		}
		s.GameType = domain.GameType(gameType)
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, unexpected(err)
	}
	return scores, nil
}

func (r *SQLiteRepo) EntityCatalog(ctx context.Context) ([]domain.EntityTypeDef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT CAST(id AS TEXT), name, icon, description, category, points, appearance_weight
		 FROM entity_types ORDER BY id`)
	if err != nil {
		return nil, unexpected(err)
	}
	defer rows.Close()

	catalog := []domain.EntityTypeDef{}
	for rows.Next() {
		var def domain.EntityTypeDef
		var category string
		if err := rows.Scan(&def.ID, &def.Name, &def.Icon, &def.Description, &category, &def.Points, &def.AppearanceWeight); err != nil {
			return nil, unexpected(err)
		}
		def.Category = domain.Category(category)
		catalog = append(catalog, def)
	}
	if err := rows.Err(); err != nil {
		return nil, unexpected(err)
	}
	return catalog, nil
}

func (r *SQLiteRepo) StationGraph(ctx context.Context) (domain.StationGraph, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM stations ORDER BY id")
	if err != nil {
		return nil, unexpected(err)
	}
	defer rows.Close()

	var stations []domain.Station
	for rows.Next() {
		var st domain.Station
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, unexpected(err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, unexpected(err)
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx,
		"SELECT from_station, to_station, minutes FROM station_connections ORDER BY from_station, to_station")
	if err != nil {
		return nil, unexpected(err)
	}
	defer rows.Close()

	var edges []edge
	for rows.Next() {
		var e edge
		if err := rows.Scan(&e.from, &e.to, &e.minutes); err != nil {
			return nil, unexpected(err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unexpected(err)
	}

	return graphFrom(stations, edges), nil
}
