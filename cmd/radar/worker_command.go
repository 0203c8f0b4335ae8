package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"radar/internal/broker"
	"radar/internal/tasks"
)

// newWorkerCommand runs the task worker loop until interrupted. A file
// lock keeps a second worker from competing on the same machine.
func newWorkerCommand(cmdCtx *commandContext) *cobra.Command {
	var withScheduler bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the task worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := cmdCtx.ensureLogging()
			if err != nil {
				return err
			}
			defer sys.CapturePanic()

			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(os.TempDir(), "radar-worker.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire worker lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another radar worker is already running")
			}
			defer lock.Unlock() //nolint:errcheck

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			b := broker.New(cfg, sys)
			defer b.Close()
			if err := b.Ping(ctx); err != nil {
				return err
			}

			worker := broker.NewWorker(b)
			if err := tasks.Register(worker); err != nil {
				return err
			}

			if withScheduler {
				scheduler, err := broker.NewScheduler(b, []broker.Entry{
					{Label: "heartbeat", Task: tasks.AddOneName, Args: []any{0}, Every: time.Minute},
				}, sys)
				if err != nil {
					return err
				}
				go scheduler.Run(ctx)
			}

			return runWorkers(ctx, worker, cfg.Workers)
		},
	}

	cmd.Flags().BoolVar(&withScheduler, "scheduler", false, "Also run the periodic scheduler")

	return cmd
}

func runWorkers(ctx context.Context, worker *broker.Worker, count int) error {
	errs := make(chan error, count)
	for i := 0; i < count; i++ {
		go func() {
			errs <- worker.Run(ctx)
		}()
	}
	var firstErr error
	for i := 0; i < count; i++ {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
