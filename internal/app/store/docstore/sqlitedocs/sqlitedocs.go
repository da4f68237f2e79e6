// Package sqlitedocs is a docstore.Store kept in a single SQLite file.
// Each document is one row holding its BSON body.
package sqlitedocs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"github.com/dalemusser/runtracker/internal/app/store/docstore/sqlitedocs/migrations"
	"github.com/pressly/goose/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store implements docstore.Store on SQLite.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

var _ docstore.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies
// migrations. Use ":memory:" for a throwaway database.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite document store ready", zap.String("path", path))
	return &Store{db: db, log: logger}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func (s *Store) Get(ctx context.Context, collection, id string, out any) error {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return classify(err)
	}
	return docstore.Decode(body, out)
}

func (s *Store) Set(ctx context.Context, collection, id string, doc any) error {
	body, err := docstore.EncodeRaw(doc, id)
	if err != nil {
		return err
	}
	ts := now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		collection, id, body, ts, ts)
	return classify(err)
}

func (s *Store) Insert(ctx context.Context, collection, id string, doc any) error {
	body, err := docstore.EncodeRaw(doc, id)
	if err != nil {
		return err
	}
	ts := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO NOTHING`,
		collection, id, body, ts, ts)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return docstore.ErrExists
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	var body []byte
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return classify(err)
	}

	var m bson.M
	if err := docstore.Decode(body, &m); err != nil {
		return err
	}
	if err := docstore.Merge(m, fields); err != nil {
		return err
	}
	next, err := bson.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode merged document: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		next, now(), collection, id); err != nil {
		return classify(err)
	}
	return classify(tx.Commit())
}

func (s *Store) Add(ctx context.Context, collection string, doc any) (string, error) {
	id := docstore.NewID()
	if err := s.Insert(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Query(ctx context.Context, collection string, filter docstore.Filter, out any) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE collection = ? ORDER BY created_at, id`, collection)
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	var raws [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return classify(err)
		}
		raws = append(raws, body)
	}
	if err := rows.Err(); err != nil {
		return classify(err)
	}

	matched, err := docstore.FilterRaw(raws, filter)
	if err != nil {
		return err
	}
	return docstore.DecodeAll(matched, out)
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return classify(s.db.PingContext(ctx))
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

// classify marks lock contention and deadlines as transient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", docstore.ErrTransient, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") {
		return fmt.Errorf("%w: %v", docstore.ErrTransient, err)
	}
	return err
}
