package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"

	"github.com/DevinCastillo5/Library-App/circulation"
	"github.com/DevinCastillo5/Library-App/library/sqlengine"
	"github.com/DevinCastillo5/Library-App/oteladapters"
	"github.com/DevinCastillo5/Library-App/shell"
	"github.com/DevinCastillo5/Library-App/shell/config"
)

// app owns the process resources: the connection pool, the telemetry providers and the managers on top.
type app struct {
	cfg          config.Config
	logger       *slog.Logger
	store        *sqlengine.Store
	loans        *circulation.LoanManager
	reservations *circulation.ReservationManager
	closers      []func(ctx context.Context) error
}

type observability struct {
	logger         *slog.Logger
	storeOptions   []sqlengine.Option
	managerOptions []circulation.Option
}

func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	obs, err := a.setupObservability(ctx)
	if err != nil {
		return nil, err
	}

	a.logger = obs.logger

	store, err := a.openStore(ctx, obs.storeOptions)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.store = store

	managerOptions := append([]circulation.Option{
		circulation.WithReturnPolicy(cfg.Circulation.ReturnPolicy),
		circulation.WithRetryOptions(
			shell.WithMaxAttempts(cfg.Circulation.RetryMaxAttempts),
			shell.WithBaseDelay(cfg.Circulation.RetryBaseDelay),
		),
	}, obs.managerOptions...)

	if a.loans, err = circulation.NewLoanManager(store, store.Loans(), managerOptions...); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	if a.reservations, err = circulation.NewReservationManager(store, store.Reservations(), managerOptions...); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	return a, nil
}

// setupObservability logs JSON to stderr. With an OTLP endpoint it also exports traces and metrics
// and bridges the log records into OpenTelemetry.
func (a *app) setupObservability(ctx context.Context) (observability, error) {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: a.cfg.LogLevel})

	if !a.cfg.OTLP.Enabled() {
		logger := slog.New(handler)

		return observability{
			logger:         logger,
			storeOptions:   []sqlengine.Option{sqlengine.WithContextualLogger(logger)},
			managerOptions: []circulation.Option{circulation.WithContextualLogger(logger)},
		}, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, a.cfg.OTLP, serviceName, serviceVersion)
	if err != nil {
		return observability{}, fmt.Errorf("telemetry setup: %w", err)
	}

	a.closers = append(a.closers, providers.Shutdown)

	bridge := oteladapters.NewSlogBridgeLoggerWithHandler(serviceName, handler)
	metrics := oteladapters.NewMetricsCollector(otel.Meter(serviceName))
	tracing := oteladapters.NewTracingCollector(otel.Tracer(serviceName))

	return observability{
		logger: bridge.Slog(),
		storeOptions: []sqlengine.Option{
			sqlengine.WithContextualLogger(bridge),
			sqlengine.WithMetrics(metrics),
			sqlengine.WithTracing(tracing),
		},
		managerOptions: []circulation.Option{
			circulation.WithContextualLogger(bridge),
			circulation.WithMetrics(metrics),
			circulation.WithTracing(tracing),
		},
	}, nil
}

func (a *app) openStore(ctx context.Context, options []sqlengine.Option) (*sqlengine.Store, error) {
	db := a.cfg.Database

	a.logger.InfoContext(ctx, "opening database", "driver", db.Driver)

	switch db.Driver {
	case config.DriverPGX:
		pool, err := config.NewPGXPool(ctx, db.URL)
		if err != nil {
			return nil, fmt.Errorf("pgx pool: %w", err)
		}

		a.closers = append(a.closers, func(context.Context) error { pool.Close(); return nil })

		if db.ReplicaURL == "" {
			return sqlengine.NewStoreFromPGXPool(pool, options...)
		}

		replica, err := config.NewPGXPool(ctx, db.ReplicaURL)
		if err != nil {
			return nil, fmt.Errorf("pgx replica pool: %w", err)
		}

		a.closers = append(a.closers, func(context.Context) error { replica.Close(); return nil })

		return sqlengine.NewStoreFromPGXPoolAndReplica(pool, replica, options...)
	case config.DriverSQL:
		sqlDB, err := config.NewSQLDB(ctx, db.URL)
		if err != nil {
			return nil, fmt.Errorf("postgres sql.DB: %w", err)
		}

		a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })

		return sqlengine.NewStoreFromSQLDB(sqlDB, options...)
	case config.DriverSQLX:
		sqlxDB, err := config.NewSQLX(ctx, db.URL)
		if err != nil {
			return nil, fmt.Errorf("postgres sqlx: %w", err)
		}

		a.closers = append(a.closers, func(context.Context) error { return sqlxDB.Close() })

		return sqlengine.NewStoreFromSQLX(sqlxDB, options...)
	case config.DriverSQLite:
		sqliteDB, err := config.NewSQLiteDB(ctx, db.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}

		a.closers = append(a.closers, func(context.Context) error { return sqliteDB.Close() })

		return sqlengine.NewStoreFromSQLite(sqliteDB, options...)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, db.Driver)
	}
}

// Close releases the resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}

	a.closers = nil

	return errors.Join(errs...)
}

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, load configLoader, fn func(ctx context.Context, a *app) error) (err error) {
	cfg, err := load()
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()

		err = errors.Join(err, a.Close(shutdownCtx))
	}()

	return fn(ctx, a)
}
