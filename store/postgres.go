package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// PostgresStore reads from a pgvector-backed table with the shape
// (id text, embedding vector, namespace text, metadata jsonb).
// Similarity uses cosine distance, reported as 1 - distance.
type PostgresStore struct {
	pool      *pgxpool.Pool
	table     string
	namespace string
}

func NewPostgresStore(ctx context.Context, dsn, table, namespace string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN not set")
	}
	if table == "" {
		table = "documents"
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresStore{
		pool:      pool,
		table:     table,
		namespace: namespace,
	}, nil
}

func (s *PostgresStore) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	query := fmt.Sprintf(`
		SELECT id, 1 - (embedding <=> $1) AS score, metadata
		FROM %s
		WHERE ($2 = '' OR namespace = $2)
		ORDER BY embedding <=> $1
		LIMIT $3
	`, pgx.Identifier{s.table}.Sanitize())

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(vector), s.namespace, topK)
	if err != nil {
		return nil, fmt.Errorf("postgres query failed: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			id       string
			score    float64
			metadata map[string]any
		)
		if err := rows.Scan(&id, &score, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan query row: %w", err)
		}
		matches = append(matches, Match{
			ID:       id,
			Score:    float32(score),
			Metadata: metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres query failed: %w", err)
	}

	return matches, nil
}

func (s *PostgresStore) Fetch(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, metadata
		FROM %s
		WHERE id = ANY($1) AND ($2 = '' OR namespace = $2)
	`, pgx.Identifier{s.table}.Sanitize())

	rows, err := s.pool.Query(ctx, query, ids, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("postgres fetch failed: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]Record, len(ids))
	for rows.Next() {
		var (
			id       string
			metadata map[string]any
		)
		if err := rows.Scan(&id, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan fetch row: %w", err)
		}
		byID[id] = Record{ID: id, Metadata: metadata}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres fetch failed: %w", err)
	}

	records := make([]Record, 0, len(byID))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			records = append(records, rec)
		}
	}

	return records, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
