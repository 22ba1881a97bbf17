package txlog

import (
	"context"
	"database/sql"
)

// PostgresStore persists the activity feed in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed transaction log store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `id, type, status, amount, tx_hash, description, location, created_at`

func (p *PostgresStore) Append(ctx context.Context, e *Entry) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, type, status, amount, tx_hash, description, location, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, string(e.Type), string(e.Status),
		nullString(e.Amount), nullString(e.TxHash),
		e.Description, nullString(e.Location), e.Timestamp,
	)
	if err != nil {
		return err
	}

	// Keep the feed capped; the table is an activity feed, not an archive.
	_, err = p.db.ExecContext(ctx, `
		DELETE FROM transactions
		WHERE id NOT IN (
			SELECT id FROM transactions ORDER BY created_at DESC LIMIT $1
		)`, MaxEntries)
	return err
}

func (p *PostgresStore) List(ctx context.Context) ([]*Entry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1`, MaxEntries)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

func (p *PostgresStore) ListByType(ctx context.Context, t Type) ([]*Entry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM transactions
		WHERE type = $1
		ORDER BY created_at DESC
		LIMIT $2`, string(t), MaxEntries)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

func (p *PostgresStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE transactions SET status = $1 WHERE id = $2`,
		string(status), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM transactions`)
	return err
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		var (
			e           Entry
			typ, status string
			amount      sql.NullString
			txHash      sql.NullString
			location    sql.NullString
		)
		if err := rows.Scan(&e.ID, &typ, &status, &amount, &txHash, &e.Description, &location, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Type = Type(typ)
		e.Status = Status(status)
		e.Amount = amount.String
		e.TxHash = txHash.String
		e.Location = location.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
