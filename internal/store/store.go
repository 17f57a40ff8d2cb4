// Package store handles SQLite persistence of finished games.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/deptsays/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for game history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			won INTEGER NOT NULL,
			score INTEGER NOT NULL,
			grade REAL NOT NULL,
			total_correct INTEGER NOT NULL,
			total_incorrect INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			departments INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS game_departments (
			game_id TEXT NOT NULL,
			dept_id TEXT NOT NULL,
			name TEXT NOT NULL,
			meta INTEGER NOT NULL,
			progress INTEGER NOT NULL,
			corrects INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			PRIMARY KEY (game_id, dept_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_ended_at ON games(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_game_departments_dept ON game_departments(dept_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertGame stores a finished game and its per-department results.
func (s *Store) InsertGame(ctx context.Context, game model.GameRecord, depts []model.DepartmentRecord) error {
	if game.ID == "" {
		return fmt.Errorf("game id is empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	won := 0
	if game.Won {
		won = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (id, started_at, ended_at, won, score, grade, total_correct, total_incorrect, completed, departments)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.ID,
		game.StartedAt.Format(time.RFC3339Nano),
		game.EndedAt.Format(time.RFC3339Nano),
		won,
		game.Score,
		game.Grade,
		game.TotalCorrect,
		game.TotalIncorrect,
		game.Completed,
		game.Departments,
	)
	if err != nil {
		return err
	}

	if len(depts) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO game_departments (game_id, dept_id, name, meta, progress, corrects, errors)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, d := range depts {
			if _, err = stmt.ExecContext(ctx, game.ID, d.DeptID, d.Name, d.Meta, d.Progress, d.Corrects, d.Errors); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// ListGames returns finished games filtered by cfg, oldest first.
func (s *Store) ListGames(ctx context.Context, cfg model.HistoryConfig) ([]model.GameRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, won, score, grade, total_correct, total_incorrect, completed, departments
		FROM games
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var games []model.GameRecord
	for rows.Next() {
		var g model.GameRecord
		var startedAt, endedAt string
		var won int
		if err := rows.Scan(&g.ID, &startedAt, &endedAt, &won, &g.Score, &g.Grade, &g.TotalCorrect, &g.TotalIncorrect, &g.Completed, &g.Departments); err != nil {
			return nil, err
		}
		if g.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if g.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		g.Won = won != 0
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(games) > cfg.Last {
		games = games[len(games)-cfg.Last:]
	}
	return games, nil
}

// ListDepartmentAggregates aggregates department results across games.
func (s *Store) ListDepartmentAggregates(ctx context.Context, gameIDs []string) ([]model.DepartmentAggregate, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(gameIDs))
	args := make([]any, len(gameIDs))
	for i, id := range gameIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT dept_id, MAX(name), COUNT(*) AS games,
		SUM(CASE WHEN progress >= meta THEN 1 ELSE 0 END) AS completed,
		SUM(corrects) AS corrects, SUM(errors) AS errors
		FROM game_departments
		WHERE game_id IN (%s)
		GROUP BY dept_id
		ORDER BY dept_id`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.DepartmentAggregate
	for rows.Next() {
		var agg model.DepartmentAggregate
		if err := rows.Scan(&agg.DeptID, &agg.Name, &agg.Games, &agg.Completed, &agg.Corrects, &agg.Errors); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
