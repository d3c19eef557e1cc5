package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/eventquote/internal/domain/model"
)

const driverPostgres = "postgres"

const pgSchema = `
CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL REFERENCES collections(name),
	id         TEXT NOT NULL,
	body       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);`

// PostgresStore keeps each document as a JSONB row keyed by collection and id.
type PostgresStore struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresStore connects to dsn and creates the schema if needed.
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, storeErr("parse postgres dsn", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, storeErr("create postgres pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storeErr("ping postgres", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, storeErr("create postgres schema", err)
	}
	return &PostgresStore{pool: pool, timeout: o.timeout}, nil
}

// EnsureCollection implements Store.
func (s *PostgresStore) EnsureCollection(ctx context.Context, name string) (err error) {
	defer observe(driverPostgres, "ensure_collection", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.pool.Exec(ctx, `INSERT INTO collections (name) VALUES ($1) ON CONFLICT DO NOTHING`, name)
	if err != nil {
		return storeErr("ensure collection "+name, err)
	}
	return nil
}

// Create implements Store. The insert only succeeds for known collections.
func (s *PostgresStore) Create(ctx context.Context, collection string, doc model.Document) (_ model.Document, err error) {
	defer observe(driverPostgres, "create", time.Now(), &err)

	op := "create in " + collection
	id, err := newID()
	if err != nil {
		return nil, err
	}
	stored := withID(doc, id)
	body, err := json.Marshal(stored)
	if err != nil {
		return nil, storeErr(op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, body)
		SELECT $1::text, $2::text, $3::jsonb
		WHERE EXISTS (SELECT 1 FROM collections WHERE name = $1::text)
	`, collection, id, string(body))
	if err != nil {
		return nil, storeErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, storeErr(op, ErrUnknownCollection)
	}
	return stored, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, collection string) (_ []model.Document, err error) {
	defer observe(driverPostgres, "list", time.Now(), &err)

	op := "list " + collection
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var name string
	err = s.pool.QueryRow(ctx, `SELECT name FROM collections WHERE name = $1`, collection).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storeErr(op, ErrUnknownCollection)
	}
	if err != nil {
		return nil, storeErr(op, err)
	}

	rows, err := s.pool.Query(ctx, `SELECT body FROM documents WHERE collection = $1 ORDER BY id`, collection)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	docs := make([]model.Document, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, storeErr(op, err)
		}
		doc, err := decodeDocument(body)
		if err != nil {
			return nil, storeErr(op, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return docs, nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
