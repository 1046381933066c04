package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps every collection in the documents table created by
// migrations/0001_documents.sql.
type Postgres struct {
	DB *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{DB: db}
}

func (p *Postgres) Get(ctx context.Context, c Collection, id string) (Record, error) {
	rec := Record{ID: id}
	err := p.DB.QueryRow(ctx, `
    SELECT version, body
    FROM documents
    WHERE collection = $1 AND id = $2
  `, string(c), id).Scan(&rec.Version, &rec.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (p *Postgres) List(ctx context.Context, c Collection) ([]Record, error) {
	rows, err := p.DB.Query(ctx, `
    SELECT id, version, body
    FROM documents
    WHERE collection = $1
    ORDER BY id
  `, string(c))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Version, &rec.Data); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Put(ctx context.Context, c Collection, id string, data []byte) (int64, error) {
	var version int64
	err := p.DB.QueryRow(ctx, `
    INSERT INTO documents (collection, id, version, body)
    VALUES ($1, $2, 1, $3)
    ON CONFLICT (collection, id)
    DO UPDATE SET body = EXCLUDED.body, version = documents.version + 1, updated_at = now()
    RETURNING version
  `, string(c), id, data).Scan(&version)
	return version, err
}

func (p *Postgres) PutIfVersion(ctx context.Context, c Collection, id string, data []byte, expected int64) (int64, error) {
	var version int64
	var err error
	if expected == 0 {
		err = p.DB.QueryRow(ctx, `
      INSERT INTO documents (collection, id, version, body)
      VALUES ($1, $2, 1, $3)
      ON CONFLICT (collection, id) DO NOTHING
      RETURNING version
    `, string(c), id, data).Scan(&version)
	} else {
		err = p.DB.QueryRow(ctx, `
      UPDATE documents
      SET body = $3, version = version + 1, updated_at = now()
      WHERE collection = $1 AND id = $2 AND version = $4
      RETURNING version
    `, string(c), id, data, expected).Scan(&version)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrVersionConflict
	}
	return version, err
}

func (p *Postgres) Delete(ctx context.Context, c Collection, id string) error {
	tag, err := p.DB.Exec(ctx, "DELETE FROM documents WHERE collection = $1 AND id = $2", string(c), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.DB.Ping(ctx)
}
