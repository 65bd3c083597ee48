// Package postgres implements store.Sink/store.Source against
// github.com/jackc/pgx/v5, chosen over database/sql because the bulk
// column-type schedule the core's artifacts define maps directly onto
// pgx's CopyFrom binary protocol. Connection handling follows the pool +
// context.Background() pattern used throughout the pack's pgx call sites.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lox/cfrsolver/internal/store"
)

// Store is a store.Sink/store.Source backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection and verifies it with a ping.
func Connect(ctx context.Context, connStr string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("postgres: connecting: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func createDDL(table string, cols []store.Column) string {
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n", table)
	for i, c := range cols {
		ddl += fmt.Sprintf("  %s %s", c.Name, sqlType(c.Type))
		if i < len(cols)-1 {
			ddl += ","
		}
		ddl += "\n"
	}
	ddl += ")"
	return ddl
}

func sqlType(t store.ColumnType) string {
	switch t {
	case store.ColInt64:
		return "bigint"
	case store.ColInt16:
		return "smallint"
	case store.ColFloat32:
		return "real"
	case store.ColUint32:
		return "bigint"
	case store.ColTimestamp:
		return "timestamptz"
	default:
		return "text"
	}
}

func (s *Store) EnsureTable(ctx context.Context, kind store.Kind, street string) error {
	table := kind.TableName(street)
	_, err := s.pool.Exec(ctx, createDDL(table, kind.Columns()))
	if err != nil {
		return fmt.Errorf("postgres: creating %s: %w", table, err)
	}
	return nil
}

// Freeze disables autovacuum and sets fillfactor=100 on a finished
// (read-mostly) table, then builds its index.
func (s *Store) Freeze(ctx context.Context, kind store.Kind, street string) error {
	table := kind.TableName(street)
	stmts := []string{
		fmt.Sprintf("ALTER TABLE %s SET (autovacuum_enabled = false, fillfactor = 100)", table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_idx ON %s (%s)", table, table, kind.Columns()[0].Name),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: freezing %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) WriteBlueprint(ctx context.Context, street string, rows []store.BlueprintRow) error {
	table := store.KindBlueprint.TableName(street)
	cols := []string{"history", "present", "choices", "edge", "weight", "regret", "evalue", "counts"}
	source := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		r := rows[i]
		return []any{r.History, r.Present, r.Choices, r.Edge, r.Weight, r.Regret, r.EValue, r.Counts}, nil
	})
	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{table}, cols, source)
	return err
}

func (s *Store) WriteLookup(ctx context.Context, street string, rows []store.LookupRow) error {
	table := store.KindLookup.TableName(street)
	cols := []string{"situation_id", "bucket"}
	source := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		r := rows[i]
		return []any{r.SituationID, r.Bucket}, nil
	})
	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{table}, cols, source)
	return err
}

func (s *Store) WriteMetric(ctx context.Context, street string, rows []store.MetricRow) error {
	table := store.KindMetric.TableName(street)
	cols := []string{"bucket_a", "bucket_b", "distance"}
	source := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		r := rows[i]
		return []any{r.BucketA, r.BucketB, r.Distance}, nil
	})
	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{table}, cols, source)
	return err
}

func (s *Store) WriteFuture(ctx context.Context, street string, rows []store.FutureRow) error {
	table := store.KindFuture.TableName(street)
	cols := []string{"bucket", "next_bucket", "weight"}
	source := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		r := rows[i]
		return []any{r.Bucket, r.NextBucket, r.Weight}, nil
	})
	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{table}, cols, source)
	return err
}

func (s *Store) WriteEpoch(ctx context.Context, epoch int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO epoch_meta (key, value) VALUES ('current', $1)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, epoch)
	return err
}

func (s *Store) ReadBlueprint(ctx context.Context, street string) ([]store.BlueprintRow, error) {
	table := store.KindBlueprint.TableName(street)
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		"SELECT history, present, choices, edge, weight, regret, evalue, counts FROM %s", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.BlueprintRow
	for rows.Next() {
		var r store.BlueprintRow
		if err := rows.Scan(&r.History, &r.Present, &r.Choices, &r.Edge, &r.Weight, &r.Regret, &r.EValue, &r.Counts); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ReadLookup(ctx context.Context, street string) ([]store.LookupRow, error) {
	table := store.KindLookup.TableName(street)
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT situation_id, bucket FROM %s", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.LookupRow
	for rows.Next() {
		var r store.LookupRow
		if err := rows.Scan(&r.SituationID, &r.Bucket); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ReadMetric(ctx context.Context, street string) ([]store.MetricRow, error) {
	table := store.KindMetric.TableName(street)
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT bucket_a, bucket_b, distance FROM %s", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.MetricRow
	for rows.Next() {
		var r store.MetricRow
		if err := rows.Scan(&r.BucketA, &r.BucketB, &r.Distance); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ReadFuture(ctx context.Context, street string) ([]store.FutureRow, error) {
	table := store.KindFuture.TableName(street)
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT bucket, next_bucket, weight FROM %s", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.FutureRow
	for rows.Next() {
		var r store.FutureRow
		if err := rows.Scan(&r.Bucket, &r.NextBucket, &r.Weight); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ReadEpoch(ctx context.Context) (int64, error) {
	var epoch int64
	err := s.pool.QueryRow(ctx, "SELECT value FROM epoch_meta WHERE key = 'current'").Scan(&epoch)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return epoch, err
}
