package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movies-api/internal/domain"
)

// DefaultTable is the table holding seed movies when none is configured.
const DefaultTable = "movies"

const createTableSQL = `
    CREATE TABLE IF NOT EXISTS %s (
        seq      BIGSERIAL,
        id       TEXT PRIMARY KEY,
        title    TEXT NOT NULL,
        year     INTEGER NOT NULL,
        director TEXT NOT NULL,
        duration INTEGER NOT NULL,
        rate     DOUBLE PRECISION NOT NULL DEFAULT 5,
        poster   TEXT NOT NULL,
        genre    TEXT[] NOT NULL DEFAULT '{}'
    )
`

// PostgresSource reads seed movies from a Postgres table, in insertion order.
// The database is only read at startup; API writes never reach it.
type PostgresSource struct {
	Pool  *pgxpool.Pool
	Table string
}

// Load implements Source.
func (s PostgresSource) Load(ctx context.Context) ([]domain.Movie, error) {
	if s.Pool == nil {
		return nil, fmt.Errorf("seed: postgres pool is nil")
	}
	query := fmt.Sprintf(`
        SELECT id, title, year, director, duration, rate, poster, genre
        FROM %s
        ORDER BY seq
    `, tableIdent(s.Table))

	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query seed movies: %w", err)
	}
	defer rows.Close()

	var records []record
	for rows.Next() {
		var rec record
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Year, &rec.Director, &rec.Duration, &rec.Rate, &rec.Poster, &rec.Genre); err != nil {
			return nil, fmt.Errorf("scan seed movie: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seed movies: %w", err)
	}

	// Rows go through the same validation as the file format.
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode seed rows: %w", err)
	}
	if len(records) == 0 {
		payload = []byte("[]")
	}
	return Parse(payload)
}

// EnsureTable creates the seed table if it does not exist yet.
func EnsureTable(ctx context.Context, pool *pgxpool.Pool, table string) error {
	if _, err := pool.Exec(ctx, fmt.Sprintf(createTableSQL, tableIdent(table))); err != nil {
		return fmt.Errorf("create seed table: %w", err)
	}
	return nil
}

// Import upserts movies into the seed table, creating it when needed.
func Import(ctx context.Context, pool *pgxpool.Pool, table string, movies []domain.Movie) (int, error) {
	if err := EnsureTable(ctx, pool, table); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
        INSERT INTO %s (id, title, year, director, duration, rate, poster, genre)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (id) DO UPDATE
        SET title = EXCLUDED.title,
            year = EXCLUDED.year,
            director = EXCLUDED.director,
            duration = EXCLUDED.duration,
            rate = EXCLUDED.rate,
            poster = EXCLUDED.poster,
            genre = EXCLUDED.genre
    `, tableIdent(table))

	batch := &pgx.Batch{}
	for _, m := range movies {
		rec := toRecord(m)
		batch.Queue(query, rec.ID, rec.Title, rec.Year, rec.Director, rec.Duration, rec.Rate, rec.Poster, rec.Genre)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := range movies {
		if _, err := results.Exec(); err != nil {
			return i, &RecordError{Index: i, ID: movies[i].ID, Err: err}
		}
	}
	return len(movies), nil
}

func tableIdent(table string) string {
	if table == "" {
		table = DefaultTable
	}
	return pgx.Identifier{table}.Sanitize()
}
