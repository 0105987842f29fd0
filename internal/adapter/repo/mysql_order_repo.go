package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/Daniel-Kav/order-microservice/internal/entity"
	"github.com/Daniel-Kav/order-microservice/internal/usecase"
)

// MySQLOrderRepo stores orders as one row per order, with items and the
// shipping address as JSON columns. The version column backs the
// compare-and-set update path.
type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)

const orderColumns = `id, user_id, items_json, total_amount, status, payment_status, payment_intent_id, shipping_json, version, created_at, updated_at`

func (r *MySQLOrderRepo) Insert(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	o.CreatedAt, o.UpdatedAt = now, now
	o.Version = 0

	_, err = r.db.ExecContext(ctx, `
INSERT INTO orders (`+orderColumns+`)
VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.UserID, items, o.TotalAmount, o.Status, o.PaymentStatus,
		o.PaymentIntentID, addr, o.Version, o.CreatedAt, o.UpdatedAt,
	)
	return err
}

func (r *MySQLOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=?`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func (r *MySQLOrderRepo) FindByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=? ORDER BY created_at`, userID)
}

func (r *MySQLOrderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at`)
}

func (r *MySQLOrderRepo) UpdateFields(ctx context.Context, id string, patch usecase.OrderPatch) (*domain.Order, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET `+patchSet+` WHERE id=?`,
		append(patchArgs(patch), id)...,
	)
	if err != nil {
		return nil, err
	}
	// The version bump guarantees an affected row whenever the id exists, so
	// a missing order falls out of the re-read as (nil, nil).
	return r.FindByID(ctx, id)
}

func (r *MySQLOrderRepo) UpdateFieldsIf(ctx context.Context, id string, version int64, patch usecase.OrderPatch) (*domain.Order, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET `+patchSet+` WHERE id=? AND version=?`,
		append(patchArgs(patch), id, version)...,
	)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		cur, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if cur == nil {
			return nil, nil
		}
		return nil, usecase.ErrConflict
	}
	return r.FindByID(ctx, id)
}

func (r *MySQLOrderRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// patchSet relies on MySQL's left-to-right SET evaluation: COALESCE keeps
// the stored value when the patch field is nil, version always bumps and
// updated_at always refreshes.
const patchSet = `status=COALESCE(?, status),
payment_status=COALESCE(?, payment_status),
payment_intent_id=COALESCE(?, payment_intent_id),
version=version+1,
updated_at=UTC_TIMESTAMP(6)`

func patchArgs(p usecase.OrderPatch) []any {
	var status, payStatus, intentID any
	if p.Status != nil {
		status = string(*p.Status)
	}
	if p.PaymentStatus != nil {
		payStatus = string(*p.PaymentStatus)
	}
	if p.PaymentIntentID != nil {
		intentID = *p.PaymentIntentID
	}
	return []any{status, payStatus, intentID}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o           domain.Order
		items, addr []byte
	)
	if err := row.Scan(
		&o.ID, &o.UserID, &items, &o.TotalAmount, &o.Status, &o.PaymentStatus,
		&o.PaymentIntentID, &addr, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items for order %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address for order %s: %w", o.ID, err)
	}
	return &o, nil
}

func (r *MySQLOrderRepo) query(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
