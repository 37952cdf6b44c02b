package relational

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&paymentModel{})
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Record) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&paymentModel{}).Where("order_id = ?", p.OrderID)
		if p.ProviderOrderID != "" {
			q = q.Or("provider_order_id = ?", p.ProviderOrderID)
		}

		var existing int64
		if err := q.Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return payment.ErrDuplicateOrder
		}

		if err := tx.Create(toModel(p)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return payment.ErrDuplicateOrder
			}
			return err
		}
		return nil
	})
}

func (r *PaymentRepository) findBy(ctx context.Context, column, value string) (*payment.Record, error) {
	var m paymentModel
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.toRecord(), nil
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Record, error) {
	return r.findBy(ctx, "order_id", orderID)
}

func (r *PaymentRepository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*payment.Record, error) {
	return r.findBy(ctx, "provider_order_id", providerOrderID)
}

func (r *PaymentRepository) Update(ctx context.Context, orderID string, changes payment.Changes) (*payment.Record, error) {
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if changes.Status != nil {
		updates["status"] = string(*changes.Status)
	}
	if changes.CaptureID != nil {
		updates["capture_id"] = *changes.CaptureID
	}
	if changes.PayerID != nil {
		updates["payer_id"] = *changes.PayerID
	}

	var out paymentModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&paymentModel{}).Where("order_id = ?", orderID)
		if changes.ExpectStatus != nil {
			q = q.Where("status = ?", string(*changes.ExpectStatus))
		}

		res := q.Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		if err := tx.Where("order_id = ?", orderID).First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return payment.ErrNotFound
			}
			return err
		}

		// MySQL reports 0 affected rows when nothing changed, so only a
		// status mismatch counts as a conflict.
		if res.RowsAffected == 0 && changes.ExpectStatus != nil && out.Status != string(*changes.ExpectStatus) {
			return payment.ErrStatusConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out.toRecord(), nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]*payment.Record, error) {
	var models []paymentModel
	if err := r.db.WithContext(ctx).
		Order("created_at desc").
		Order("order_id").
		Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*payment.Record, 0, len(models))
	for i := range models {
		out = append(out, models[i].toRecord())
	}
	return out, nil
}
