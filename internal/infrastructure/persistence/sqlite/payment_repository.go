package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
)

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectColumns = `order_id, provider_order_id, amount, currency, method,
	status, capture_id, payer_id, created_at, updated_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, r.db)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Record) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments
		 (order_id, provider_order_id, amount, currency, method, status,
		  capture_id, payer_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		p.OrderID,
		nullable(p.ProviderOrderID),
		p.Amount.String(),
		p.Currency,
		string(p.Method),
		string(p.Status),
		p.CaptureID,
		p.PayerID,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	// 0 rows = order id or provider order id already taken
	if affected == 0 {
		return payment.ErrDuplicateOrder
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*payment.Record, error) {
	var (
		p                    payment.Record
		providerOrderID      sql.NullString
		amount               string
		method, status       string
		createdAt, updatedAt string
	)

	if err := row.Scan(
		&p.OrderID,
		&providerOrderID,
		&amount,
		&p.Currency,
		&method,
		&status,
		&p.CaptureID,
		&p.PayerID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrNotFound
		}
		return nil, err
	}

	var err error
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("payment %s amount: %w", p.OrderID, err)
	}
	if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("payment %s created_at: %w", p.OrderID, err)
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("payment %s updated_at: %w", p.OrderID, err)
	}

	p.ProviderOrderID = providerOrderID.String
	p.Method = payment.Method(method)
	p.Status = payment.Status(status)
	return &p, nil
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+`
		 FROM payments
		 WHERE order_id = ?`,
		orderID,
	)
	return scanRecord(row)
}

func (r *PaymentRepository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*payment.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+`
		 FROM payments
		 WHERE provider_order_id = ?`,
		providerOrderID,
	)
	return scanRecord(row)
}

func (r *PaymentRepository) Update(ctx context.Context, orderID string, changes payment.Changes) (*payment.Record, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now())}

	if changes.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*changes.Status))
	}
	if changes.CaptureID != nil {
		sets = append(sets, "capture_id = ?")
		args = append(args, *changes.CaptureID)
	}
	if changes.PayerID != nil {
		sets = append(sets, "payer_id = ?")
		args = append(args, *changes.PayerID)
	}

	query := `UPDATE payments SET ` + strings.Join(sets, ", ") + ` WHERE order_id = ?`
	args = append(args, orderID)
	if changes.ExpectStatus != nil {
		query += ` AND status = ?`
		args = append(args, string(*changes.ExpectStatus))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM payments WHERE order_id = ?`,
		orderID,
	)
	p, err := scanRecord(row)
	if err != nil {
		return nil, err
	}

	if affected == 0 {
		return nil, payment.ErrStatusConflict
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]*payment.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+`
		 FROM payments
		 ORDER BY created_at DESC, order_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*payment.Record{}

	for rows.Next() {
		p, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}
