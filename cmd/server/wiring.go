package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	paymentApplication "github.com/rcarvalho-pb/storefront-payments/internal/application/payment"
	"github.com/rcarvalho-pb/storefront-payments/internal/config"
	"github.com/rcarvalho-pb/storefront-payments/internal/domain/payment"
	"github.com/rcarvalho-pb/storefront-payments/internal/infra/logging"
	"github.com/rcarvalho-pb/storefront-payments/internal/infra/metrics"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/eventbus"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/notify"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/persistence/inmemory"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/persistence/mongostore"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/persistence/relational"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/persistence/sqlite"
	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/provider/paypal"
)

type store struct {
	Repo  payment.Repository
	Close func() error
}

func (s *store) Migrate(ctx context.Context) error {
	m, ok := s.Repo.(payment.Migrator)
	if !ok {
		return nil
	}
	return m.Migrate(ctx)
}

func buildStore(ctx context.Context, cfg config.StoreConfig) (*store, error) {
	switch cfg.Driver {
	case "memory":
		return &store{Repo: inmemory.NewPaymentRepository(), Close: func() error { return nil }}, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &store{Repo: sqlite.NewPaymentRepository(db), Close: db.Close}, nil

	case "mysql", "postgres":
		db, err := relational.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &store{Repo: relational.NewPaymentRepository(db), Close: sqlDB.Close}, nil

	case "mongo":
		client, err := mongostore.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &store{
			Repo:  mongostore.NewPaymentRepository(client.Database(cfg.Database)),
			Close: func() error { return client.Disconnect(context.Background()) },
		}, nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}

func buildProvider(cfg *config.Config) (payment.Provider, error) {
	if !cfg.PayPalEnabled() {
		return nil, fmt.Errorf("paypal.client_id and paypal.client_secret are required")
	}
	return paypal.New(paypal.Config{
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
		Mode:         cfg.PayPal.Mode,
		APIBase:      cfg.PayPal.APIBase,
		BrandName:    cfg.PayPal.BrandName,
	}, &http.Client{Timeout: 30 * time.Second})
}

// buildBus subscribes the lifecycle consumers: metrics always, SQS when a
// queue is configured.
func buildBus(ctx context.Context, cfg *config.Config, counters *metrics.Counters, logger logging.Logger) (*eventbus.InMemoryBus, error) {
	bus := eventbus.NewInMemoryBus()
	bus.SubscribeAll(counters.Handle)

	if cfg.SQS.QueueURL == "" {
		return bus, nil
	}

	client, err := notify.NewSQSClient(ctx, notify.SQSConfig{
		QueueURL:  cfg.SQS.QueueURL,
		Region:    cfg.SQS.Region,
		AccessKey: cfg.SQS.AccessKey,
		SecretKey: cfg.SQS.SecretKey,
		Endpoint:  cfg.SQS.Endpoint,
	})
	if err != nil {
		return nil, err
	}

	forwarder := &notify.SQSForwarder{Client: client, QueueURL: cfg.SQS.QueueURL}
	bus.SubscribeAll(forwarder.Handle)
	logger.Info("forwarding payment events to sqs", map[string]any{"queue-url": cfg.SQS.QueueURL})

	return bus, nil
}

func newService(cfg *config.Config, repo payment.Repository, provider payment.Provider, bus *eventbus.InMemoryBus, logger logging.Logger) *paymentApplication.Service {
	return &paymentApplication.Service{
		Repo:      repo,
		Provider:  provider,
		EventBus:  bus,
		Logger:    logger,
		Currency:  cfg.Payment.Currency,
		ReturnURL: cfg.ReturnURL(),
		CancelURL: cfg.CancelURL(),
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	l := logging.NewJSON(os.Stdout, cfg.Log.Level)
	slog.SetDefault(l)
	return l
}
