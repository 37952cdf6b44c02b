package payment

import "context"

// Repository persists payment records. Implementations return ErrNotFound,
// ErrDuplicateOrder and ErrStatusConflict (possibly wrapped).
type Repository interface {
	Create(ctx context.Context, r *Record) error
	FindByOrderID(ctx context.Context, orderID string) (*Record, error)
	FindByProviderOrderID(ctx context.Context, providerOrderID string) (*Record, error)
	Update(ctx context.Context, orderID string, changes Changes) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
}

// Migrator is implemented by repositories that own a schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}
