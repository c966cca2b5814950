package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/worker"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, optionally with job workers and the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			withWorkers, _ := cmd.Flags().GetBool("workers")
			return c.runServe(cmd.Context(), withWorkers)
		},
	}
	cmd.Flags().Bool("workers", true, "also run job workers and the scheduler in this process")
	return cmd
}

func (c *cli) workerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run job workers without the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			once, _ := cmd.Flags().GetBool("once")
			schedule, _ := cmd.Flags().GetBool("schedule")
			if once {
				return c.runWorkerOnce(cmd)
			}
			return c.runWorkers(cmd.Context(), schedule)
		},
	}
	cmd.Flags().Bool("once", false, "claim and process a single batch, then exit")
	cmd.Flags().Bool("schedule", true, "also run the periodic scheduler")
	return cmd
}

func (c *cli) runServe(parent context.Context, withWorkers bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Default()
	log.Info("wordflash %s starting", version)
	log.Debug("addr=%s db_path=%s workers=%d batch=%d poll=%s", c.cfg.Addr, c.cfg.DBPath, c.cfg.JobWorkerCount, c.cfg.JobBatchSize, c.cfg.JobPollInterval)

	a, err := openApp(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var writeTimeout time.Duration
	if c.cfg.RequestTimeout > 0 {
		writeTimeout = c.cfg.RequestTimeout + 5*time.Second
	}
	httpServer := &http.Server{
		Addr:         c.cfg.Addr,
		Handler:      a.server().Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening on %s", c.cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if withWorkers {
		c.goWorkers(gctx, g, a, true)
	}

	err = g.Wait()
	log.Info("wordflash stopped")
	return err
}

func (c *cli) runWorkers(parent context.Context, schedule bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)
	c.goWorkers(gctx, g, a, schedule)
	return g.Wait()
}

func (c *cli) goWorkers(ctx context.Context, g *errgroup.Group, a *app, schedule bool) {
	pool := worker.NewPool(c.cfg.JobWorkerCount, a.processor())
	g.Go(func() error {
		return pool.Run(ctx)
	})
	if schedule {
		sched := a.newScheduler()
		g.Go(func() error {
			return sched.Run(ctx)
		})
	}
}

func (c *cli) runWorkerOnce(cmd *cobra.Command) error {
	a, err := openApp(cmd.Context(), c.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.processor().RunOnce(cmd.Context(), "cli-once")
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "processed %d job(s)\n", n)
	return nil
}
