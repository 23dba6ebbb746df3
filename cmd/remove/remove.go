// Package remove implements local notification removal.
package remove

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jeongryuni/project-SafeGuard/internal/conf"
	"github.com/jeongryuni/project-SafeGuard/internal/safeguard"
)

// Command returns the remove subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <notification-id>",
		Short: "Remove a notification from the local list",
		Long: "Removes a notification from the local cache. The server keeps " +
			"the record but is told it was read, so the unread counts stay " +
			"consistent.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid notification ID %q: %w", args[0], err)
			}

			pipeline, cleanup, err := safeguard.Bootstrap(settings, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			if !pipeline.Delete(cmd.Context(), id) {
				return fmt.Errorf("no notification with ID %d", id)
			}
			fmt.Printf("removed notification %d\n", id)
			return nil
		},
	}
}
