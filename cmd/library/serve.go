package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/DevinCastillo5/Library-App/httpapi"
)

const readHeaderTimeout = 5 * time.Second

func newServeCommand(load configLoader) *cobra.Command {
	var (
		addr           string
		migrate        bool
		defaultStaff   int64
		rateLimitRPS   float64
		rateLimitBurst int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), load, func(ctx context.Context, a *app) error {
				if cmd.Flags().Changed("addr") {
					a.cfg.HTTPAddr = addr
				}

				if cmd.Flags().Changed("default-staff") {
					a.cfg.Circulation.DefaultStaffID = defaultStaff
				}

				if cmd.Flags().Changed("rate-limit") {
					a.cfg.RateLimit.RPS = rateLimitRPS
				}

				if cmd.Flags().Changed("rate-burst") {
					a.cfg.RateLimit.Burst = rateLimitBurst
				}

				if migrate {
					if err := a.store.CreateSchema(ctx); err != nil {
						return err
					}
				}

				return serve(ctx, a)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (env LIBRARY_HTTP_ADDR)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the schema before serving")
	cmd.Flags().Int64Var(&defaultStaff, "default-staff", 0, "staff id for loans that name none (env LIBRARY_DEFAULT_STAFF_ID)")
	cmd.Flags().Float64Var(&rateLimitRPS, "rate-limit", 0, "requests per second, 0 disables (env LIBRARY_RATE_LIMIT_RPS)")
	cmd.Flags().IntVar(&rateLimitBurst, "rate-burst", 0, "rate limit burst (env LIBRARY_RATE_LIMIT_BURST)")

	return cmd
}

// serve runs the HTTP server until ctx is canceled, then drains it within the shutdown timeout.
func serve(ctx context.Context, a *app) error {
	router, err := httpapi.NewRouter(
		httpapi.NewDependencies(a.store, a.loans, a.reservations),
		httpapi.WithLogger(a.logger),
		httpapi.WithDefaultStaffID(a.cfg.Circulation.DefaultStaffID),
		httpapi.WithRateLimit(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst),
	)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfoContext(gctx, "http server listening", "addr", server.Addr)

		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), a.cfg.ShutdownTimeout)
		defer cancel()

		a.logger.InfoContext(shutdownCtx, "http server shutting down")

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
