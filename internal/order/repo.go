package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrJournalDisabled = errors.New("change journal disabled")

// Change is one reconciliation the terminal applied to its cache.
type Change struct {
	ID        int64           `json:"id"`
	OrderID   int             `json:"order_id"`
	ItemID    int             `json:"item_id,omitempty"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	AppliedAt time.Time       `json:"applied_at"`
}

type Journal interface {
	Append(ctx context.Context, c Change) error
	ListByOrder(ctx context.Context, orderID, limit, offset int) ([]Change, error)
}

type PGJournal struct{ db *pgxpool.Pool }

func NewPGJournal(db *pgxpool.Pool) *PGJournal { return &PGJournal{db: db} }

func (r *PGJournal) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS order_changes (
			id         BIGSERIAL PRIMARY KEY,
			order_id   INTEGER NOT NULL,
			item_id    INTEGER,
			kind       TEXT NOT NULL,
			payload    JSONB NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS order_changes_order_idx ON order_changes (order_id, applied_at DESC);
	`)
	return err
}

func (r *PGJournal) Append(ctx context.Context, c Change) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	payload := c.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO order_changes (order_id, item_id, kind, payload, applied_at)
		VALUES ($1, NULLIF($2, 0), $3, $4, NOW())
	`, c.OrderID, c.ItemID, c.Kind, []byte(payload))
	return err
}

func (r *PGJournal) ListByOrder(ctx context.Context, orderID, limit, offset int) ([]Change, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, COALESCE(item_id, 0), kind, payload, applied_at
		FROM order_changes WHERE order_id = $1
		ORDER BY applied_at DESC, id DESC LIMIT $2 OFFSET $3
	`, orderID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Change
	for rows.Next() {
		var c Change
		var payload []byte
		if err := rows.Scan(&c.ID, &c.OrderID, &c.ItemID, &c.Kind, &payload, &c.AppliedAt); err != nil {
			return nil, err
		}
		c.Payload = payload
		out = append(out, c)
	}
	return out, rows.Err()
}
