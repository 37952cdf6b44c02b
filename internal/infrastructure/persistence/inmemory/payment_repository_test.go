package inmemory_test

import (
	"testing"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/persistence/inmemory"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/persistence/repotest"
)

func TestPaymentRepository_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) payment.Repository {
		return inmemory.NewPaymentRepository()
	})
}
