package relational_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/persistence/relational"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/persistence/repotest"
)

func newRepo(t *testing.T) payment.Repository {
	// Named shared-cache database per test so every pooled connection sees
	// the same schema.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := relational.Open("sqlite", dsn)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo := relational.NewPaymentRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestPaymentRepository_Contract(t *testing.T) {
	repotest.Run(t, newRepo)
}

func TestOpen_ShouldRejectUnknownDriver(t *testing.T) {
	_, err := relational.Open("oracle", "dsn")
	require.Error(t, err)
}
