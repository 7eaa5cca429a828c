package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	adapthttp "fitmate/internal/adapter/http"
	"fitmate/internal/app"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			db, closeDB, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeDB() }()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			weightSvc := app.NewWeightService(db).WithLogger(log)
			foodSvc := newFoodService(db, newNutritionClient(cfg), cfg).WithLogger(log)
			engine := app.NewEngine(weightSvc, foodSvc, cfg.Location,
				app.WithLogger(log),
				app.WithMetrics(app.NewEngineMetrics(reg)),
			)
			chartsSvc := app.NewChartsService(engine, weightSvc, cfg.FirstWeekday)

			h := adapthttp.New(weightSvc, foodSvc, engine, chartsSvc, cfg.WebDir).
				WithLogger(log).
				WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})).
				Handler()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engineErr := make(chan error, 1)
			go func() { engineErr <- engine.Run(ctx) }()

			srv := &http.Server{Addr: cfg.Addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
			srvErr := make(chan error, 1)
			go func() {
				log.Info("listening", "addr", cfg.Addr)
				srvErr <- srv.ListenAndServe()
			}()

			select {
			case err := <-srvErr:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case err := <-engineErr:
				if err != nil && !errors.Is(err, context.Canceled) {
					log.Error("engine stopped", "err", err)
					return err
				}
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides FITMATE_ADDR)")
	return cmd
}
