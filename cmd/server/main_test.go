package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rcarvalho-pb/storefront-payments/internal/config"
	"github.com/rcarvalho-pb/storefront-payments/internal/infra/metrics"
	"github.com/rcarvalho-pb/storefront-payments/internal/report"
)

type noopLogger struct{}

func (n *noopLogger) Info(string, map[string]any)  {}
func (n *noopLogger) Error(string, map[string]any) {}

func TestBuildStore_Memory(t *testing.T) {
	st, err := buildStore(context.Background(), config.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.Close())
}

func TestBuildStore_UnknownDriver(t *testing.T) {
	_, err := buildStore(context.Background(), config.StoreConfig{Driver: "cassandra"})
	require.Error(t, err)
}

func TestBuildProvider_RequiresCredentials(t *testing.T) {
	_, err := buildProvider(&config.Config{})
	require.Error(t, err)

	p, err := buildProvider(&config.Config{PayPal: config.PayPalConfig{ClientID: "id", ClientSecret: "secret"}})
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestBuildBus_CountsLifecycleEvents(t *testing.T) {
	cfg := &config.Config{Payment: config.PaymentConfig{Currency: "USD", PublicBaseURL: "http://localhost"}}
	counters := &metrics.Counters{}

	bus, err := buildBus(context.Background(), cfg, counters, &noopLogger{})
	require.NoError(t, err)

	st, err := buildStore(context.Background(), config.StoreConfig{Driver: "memory"})
	require.NoError(t, err)

	svc := newService(cfg, st.Repo, nil, bus, &noopLogger{})
	_, err = svc.CreateCashOnDeliveryOrder(context.Background(), decimal.NewFromInt(5), "C1")
	require.NoError(t, err)

	require.EqualValues(t, 1, counters.Snapshot().Created)
}

func TestExportHistoryCmd_WritesWorkbook(t *testing.T) {
	t.Setenv("PAYMENTS_STORE_DRIVER", "memory")
	out := filepath.Join(t.TempDir(), "history.xlsx")

	root := newRootCmd()
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetArgs([]string{"export-history", "--env-file", "", "-o", out})
	require.NoError(t, root.Execute())
	require.Contains(t, stderr.String(), "wrote 0 payments")

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.HistorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestMigrateCmd_MemoryStore(t *testing.T) {
	t.Setenv("PAYMENTS_STORE_DRIVER", "memory")

	root := newRootCmd()
	root.SetArgs([]string{"migrate", "--env-file", ""})
	require.NoError(t, root.Execute())
}
