package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeongryuni/project-SafeGuard/cmd/list"
	"github.com/jeongryuni/project-SafeGuard/cmd/read"
	"github.com/jeongryuni/project-SafeGuard/cmd/remove"
	"github.com/jeongryuni/project-SafeGuard/cmd/watch"
	"github.com/jeongryuni/project-SafeGuard/internal/conf"
	"github.com/jeongryuni/project-SafeGuard/internal/notification"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "safeguard",
		Short: "SafeGuard notification client",
		Long: "Maintains a local, deduplicated view of SafeGuard complaint " +
			"notifications: pulls snapshots, follows the push stream, and " +
			"derives the unread count locally.",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		watch.Command(settings),
		list.Command(settings),
		read.Command(settings),
		remove.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := cmd.Flags().Parse(args); err != nil {
			return err
		}
		if err := conf.SyncViper(settings); err != nil {
			return err
		}
		notification.SetDebugLevel(settings.Debug)
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Identity, "identity", viper.GetString("identity"), "Account identity keying the local notification cache")
	rootCmd.PersistentFlags().StringVar(&settings.Server.BaseURL, "server", viper.GetString("server.baseurl"), "SafeGuard server base URL")
	rootCmd.PersistentFlags().StringVar(&settings.Server.Token, "token", viper.GetString("server.token"), "Bearer token for the SafeGuard API")
	rootCmd.PersistentFlags().StringVar(&settings.Cache.Path, "cache", viper.GetString("cache.path"), "Path of the local notification cache database")

	bindings := map[string]string{
		"debug":          "debug",
		"identity":       "identity",
		"server.baseurl": "server",
		"server.token":   "token",
		"cache.path":     "cache",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %v", flag, err)
		}
	}

	return nil
}
