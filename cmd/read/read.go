// Package read implements the mark-read command.
package read

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jeongryuni/project-SafeGuard/internal/conf"
	"github.com/jeongryuni/project-SafeGuard/internal/safeguard"
)

// Command returns the read subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "read [notification-id]",
		Short: "Mark a notification read, or all of them with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd, settings, args, all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Mark every notification read")
	return cmd
}

func runRead(cmd *cobra.Command, settings *conf.Settings, args []string, all bool) error {
	if !all && len(args) == 0 {
		return fmt.Errorf("a notification ID or --all is required")
	}

	pipeline, cleanup, err := safeguard.Bootstrap(settings, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	if all {
		marked := pipeline.MarkAllRead(cmd.Context())
		fmt.Printf("marked %d notifications read\n", marked)
		return nil
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid notification ID %q: %w", args[0], err)
	}
	if !pipeline.MarkRead(cmd.Context(), id) {
		return fmt.Errorf("no notification with ID %d", id)
	}
	fmt.Printf("marked notification %d read\n", id)
	return nil
}
