package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/metrics"
)

// PostgresStore persists journal entries in PostgreSQL. Enabled by
// WDK_DATABASE_URL; the schema lives in migrations/.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed journal store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `id, kind, tx_hash, token, amount, from_addr, to_addr,
       status, block_number, created_at, confirmed_at`

func (p *PostgresStore) Record(ctx context.Context, e *Entry) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO journal_entries (
			id, kind, tx_hash, token, amount, from_addr, to_addr,
			status, block_number, created_at, confirmed_at
		) VALUES ($1, $2, $3, $4, $5::NUMERIC(78,0), $6, $7, $8, $9, $10, $11)`,
		e.ID, string(e.Kind), e.TxHash, e.Token, e.Amount, e.From, e.To,
		string(e.Status), int64(e.BlockNumber), e.CreatedAt, nullTime(e.ConfirmedAt),
	)
	if err != nil {
		return err
	}
	metrics.JournalEntriesTotal.WithLabelValues(string(e.Kind)).Inc()
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Entry, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries WHERE id = $1`, id)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return e, err
}

func (p *PostgresStore) GetByTxHash(ctx context.Context, txHash string) (*Entry, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries WHERE tx_hash = $1
		ORDER BY created_at DESC
		LIMIT 1`, txHash)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return e, err
}

func (p *PostgresStore) ListRecent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

func (p *PostgresStore) ListPending(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

func (p *PostgresStore) Resolve(ctx context.Context, id string, status Status, blockNumber uint64) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE journal_entries
		SET status = $1, block_number = $2, confirmed_at = NOW()
		WHERE id = $3`,
		string(status), int64(blockNumber), id,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// --- scanners ---

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(sc scanner) (*Entry, error) {
	var e Entry
	var kind, status string
	var blockNumber int64
	var confirmedAt sql.NullTime

	err := sc.Scan(
		&e.ID, &kind, &e.TxHash, &e.Token, &e.Amount, &e.From, &e.To,
		&status, &blockNumber, &e.CreatedAt, &confirmedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Kind = Kind(kind)
	e.Status = Status(status)
	e.BlockNumber = uint64(blockNumber)
	if confirmedAt.Valid {
		t := confirmedAt.Time
		e.ConfirmedAt = &t
	}
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
