package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation = "23505"

	sqlFetchAll = `SELECT id, data FROM documents WHERE collection = $1 ORDER BY created_at, id`
	sqlGet      = `SELECT id, data FROM documents WHERE collection = $1 AND id = $2`
	sqlUpsert   = `INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW(), NOW())
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	sqlInsert = `INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW(), NOW())`
	sqlPatch  = `UPDATE documents SET data = data || $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2`
	sqlDelete = `DELETE FROM documents WHERE collection = $1 AND id = $2`
)

// PostgresStore keeps documents as JSONB rows and relays change events
// through a Notifier. Without a notifier, subscriptions only receive their
// initial snapshot.
type PostgresStore struct {
	pool     *pgxpool.Pool
	notifier Notifier
	logger   *slog.Logger
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, notifier Notifier, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{pool: pool, notifier: notifier, logger: logger}
}

// FetchAll returns every document of collection.
func (s *PostgresStore) FetchAll(ctx context.Context, collection string) ([]Document, error) {
	if collection == "" {
		return nil, ErrInvalidArgument
	}
	rows, err := s.pool.Query(ctx, sqlFetchAll, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Get returns a single document.
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := validateKey(collection, id); err != nil {
		return Document{}, err
	}
	doc, err := scanDocument(s.pool.QueryRow(ctx, sqlGet, collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// Subscribe delivers the snapshot of target now and after each change event.
func (s *PostgresStore) Subscribe(ctx context.Context, target Target, fn ChangeFunc) (Unsubscribe, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}
	if s.notifier == nil {
		initial, err := snapshotOf(ctx, s, target)
		if err != nil {
			return nil, err
		}
		fn(initial)
		return func() {}, nil
	}
	return watch(ctx, s, target, fn, s.logger, func(subCtx context.Context, trigger func(id string)) (Unsubscribe, error) {
		return s.notifier.Listen(subCtx, target.Collection, trigger)
	})
}

// CreateOrReplace upserts data under id.
func (s *PostgresStore) CreateOrReplace(ctx context.Context, collection, id string, data any) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	raw, err := encodeJSON(data)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, sqlUpsert, collection, id, raw); err != nil {
		return err
	}
	s.publish(ctx, collection, id)
	return nil
}

// AppendNew inserts data under a generated id.
func (s *PostgresStore) AppendNew(ctx context.Context, collection string, data any) (string, error) {
	if collection == "" {
		return "", ErrInvalidArgument
	}
	raw, err := encodeJSON(data)
	if err != nil {
		return "", err
	}
	id := NewID()
	if _, err := s.pool.Exec(ctx, sqlInsert, collection, id, raw); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return "", ErrConflict
		}
		return "", err
	}
	s.publish(ctx, collection, id)
	return id, nil
}

// Patch merges the named top-level fields into an existing document.
func (s *PostgresStore) Patch(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	raw, err := encodeJSON(fields)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, sqlPatch, collection, id, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.publish(ctx, collection, id)
	return nil
}

// Remove deletes a document.
func (s *PostgresStore) Remove(ctx context.Context, collection, id string) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, sqlDelete, collection, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.publish(ctx, collection, id)
	return nil
}

func (s *PostgresStore) publish(ctx context.Context, collection, id string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, collection, id); err != nil {
		s.logger.Warn("docstore publish change", slog.String("collection", collection), slog.String("id", id), slog.Any("error", err))
	}
}

func scanDocument(row pgx.Row) (Document, error) {
	var (
		id  string
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		return Document{}, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Document{}, fmt.Errorf("docstore: decode row %s: %w", id, err)
	}
	return Document{ID: id, Data: fields}, nil
}

func encodeJSON(data any) (string, error) {
	fields, err := Encode(data)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

var _ Store = (*PostgresStore)(nil)
