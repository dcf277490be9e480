package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Long:  "Check that the server is up. With --wait, keep retrying until it answers or the wait runs out.",
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := pollHealth(cmd.Context(), wait)
			if err != nil {
				return err
			}
			out.Print(health)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "retry for up to this long before giving up")

	return cmd
}

func pollHealth(ctx context.Context, wait time.Duration) (HealthResult, error) {
	var health HealthResult
	deadline := time.Now().Add(wait)
	for {
		err := client.Get(ctx, "/api/v1/health", &health)
		if err == nil || time.Now().After(deadline) {
			return health, err
		}
		select {
		case <-ctx.Done():
			return health, err
		case <-time.After(250 * time.Millisecond):
		}
	}
}
