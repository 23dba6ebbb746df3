// Package watch implements the long-running pipeline command: it follows
// the push stream, refreshes snapshots, and prints list changes as they
// happen.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jeongryuni/project-SafeGuard/internal/conf"
	"github.com/jeongryuni/project-SafeGuard/internal/notification"
	"github.com/jeongryuni/project-SafeGuard/internal/safeguard"
)

// Command returns the watch subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var refreshInterval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the notification stream and print updates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), settings, refreshInterval)
		},
	}
	cmd.Flags().DurationVar(&refreshInterval, "refresh", 5*time.Minute, "Interval between snapshot reconciliations")
	return cmd
}

func runWatch(ctx context.Context, settings *conf.Settings, refreshInterval time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := notification.NewMetrics(prometheus.DefaultRegisterer)
	pipeline, cleanup, err := safeguard.Bootstrap(settings, metrics)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := pipeline.Service()
	events, _ := svc.Subscribe()
	defer svc.Unsubscribe(events)

	pipeline.Refresh(ctx)
	printState(svc)

	stream := safeguard.NewStream(settings, svc, metrics)
	streamDone := make(chan error, 1)
	go func() {
		streamDone <- stream.Run(ctx)
	}()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-streamDone
			return nil
		case err := <-streamDone:
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		case <-ticker.C:
			pipeline.Refresh(ctx)
		case event := <-events:
			if event.Reason == notification.ReasonPush {
				if toast := svc.Announcer().Current(); toast != nil {
					fmt.Printf("  * %s\n", toast.Title)
					if toast.Description != "" {
						fmt.Printf("    %s\n", toast.Description)
					}
				}
			}
			printState(svc)
		}
	}
}

func printState(svc *notification.Service) {
	badge := svc.BadgeLabel()
	if badge == "" {
		badge = "0"
	}
	fmt.Printf("notifications: %d total, %s unread\n", len(svc.Records()), badge)
}
