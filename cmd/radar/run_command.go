package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"radar/internal/broker"
	"radar/internal/logging"
	"radar/internal/tasks"
)

// newRunCommand schedules one add_one invocation and waits for its
// result, mirroring the smallest useful end-to-end flow.
func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var value int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Schedule the add_one task and await its result",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := cmdCtx.ensureLogging()
			if err != nil {
				return err
			}
			defer sys.CapturePanic()
			guard := logging.InstallInterruptGuard()
			defer guard.Stop()

			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			b := broker.New(cfg, sys)
			defer b.Close()

			ctx := cmd.Context()
			if err := b.Ping(ctx); err != nil {
				return err
			}

			handle, err := b.Schedule(ctx, tasks.AddOneName, value)
			if err != nil {
				return err
			}
			result, err := b.AwaitResult(ctx, handle, timeout)
			if err != nil {
				return err
			}

			status := "ok"
			outcome := string(result.Value)
			if !result.Succeeded {
				status = "error"
				outcome = result.Error
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"TASK", "ID", "STATUS", "RESULT", "TIME"},
				[][]string{{
					handle.Task,
					handle.ID,
					status,
					outcome,
					strconv.FormatFloat(result.ExecutionTime, 'f', 6, 64) + "s",
				}},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&value, "value", 1, "Value passed to add_one")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "How long to wait for the result")

	return cmd
}
