// Package list implements the one-shot panel view command.
package list

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeongryuni/project-SafeGuard/internal/conf"
	"github.com/jeongryuni/project-SafeGuard/internal/safeguard"
)

// Command returns the list subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var page int
	var offline bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the notification panel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, settings, page, offline)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number to show")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the snapshot fetch and show the cached list only")
	return cmd
}

func runList(cmd *cobra.Command, settings *conf.Settings, page int, offline bool) error {
	pipeline, cleanup, err := safeguard.Bootstrap(settings, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	if !offline {
		pipeline.Refresh(cmd.Context())
	}

	svc := pipeline.Service()
	svc.SetPage(page)
	view := svc.Page(time.Now())

	if view.Total == 0 {
		fmt.Println("알림이 없습니다")
		return nil
	}

	if view.Badge != "" {
		fmt.Printf("unread: %s\n", view.Badge)
	}
	for _, rec := range view.Records {
		marker := " "
		if !rec.Read {
			marker = "*"
		}
		fmt.Printf("%s [%d] %s (%s)\n", marker, rec.ID, rec.Title, rec.RelativeTime)
		if rec.Description != "" {
			fmt.Printf("      %s\n", rec.Description)
		}
	}
	fmt.Printf("page %d/%d\n", view.Page, view.TotalPages)
	return nil
}
