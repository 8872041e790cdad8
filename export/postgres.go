package export

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	attendance "github.com/huoston/attendance-transfer"
)

// Dates carry no year in the templates, so class_date stores the same D/M
// key the template columns use.
const schema = `
CREATE TABLE IF NOT EXISTS attendance (
	student_id TEXT        NOT NULL,
	class_date TEXT        NOT NULL,
	code       TEXT        NOT NULL,
	minutes    INTEGER     NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (student_id, class_date)
)`

const upsertQuery = `
INSERT INTO attendance (student_id, class_date, code, minutes)
VALUES ($1, $2, $3, $4)
ON CONFLICT (student_id, class_date) DO UPDATE
SET code = EXCLUDED.code, minutes = EXCLUDED.minutes, updated_at = now()`

// Postgres upserts presence records into an attendance table, so repeated
// runs for the same class converge on the latest computation.
type Postgres struct {
	db *sqlx.DB
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating attendance table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Upsert(ctx context.Context, records []attendance.PresenceRecord) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, upsertQuery,
			rec.StudentID, rec.Date.String(), rec.Code.String(), rec.Minutes); err != nil {
			return fmt.Errorf("upserting record for student %s on %s: %w", rec.StudentID, rec.Date, err)
		}
	}
	return tx.Commit()
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
