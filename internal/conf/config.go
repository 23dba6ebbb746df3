// config.go: This file contains the configuration for the SafeGuard notification
// client. It defines the settings struct and functions to load the settings.
package conf

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// ServerSettings contains settings for the SafeGuard API endpoint.
type ServerSettings struct {
	BaseURL string        // base URL of the SafeGuard API, e.g. https://safeguard.example.com
	Token   string        // bearer credential for snapshot, mark-read and subscribe calls
	Timeout time.Duration // per-request timeout for snapshot and mark-read calls
}

// CacheSettings contains settings for the local persisted notification cache.
type CacheSettings struct {
	Path      string        // path to the sqlite cache database
	Retention time.Duration // rolling window beyond which cached records are pruned
}

// PanelSettings contains settings for the notification panel view.
type PanelSettings struct {
	PageSize      int           // number of notifications per page
	ToastDuration time.Duration // how long a transient announcement stays visible
}

// Settings contains all settings for the notification client.
type Settings struct {
	Debug    bool   // true to enable debug logging
	Identity string // identity key of the signed-in user; empty when logged out

	Server ServerSettings
	Cache  CacheSettings
	Panel  PanelSettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/safeguard")

	viper.SetEnvPrefix("safeguard")
	viper.AutomaticEnv()

	// Set default values for each configuration parameter,
	// function defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file is fine, defaults plus env and flags apply
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// SyncViper re-unmarshals viper's current state into settings so that
// command-line flag values take precedence, then revalidates.
func SyncViper(settings *Settings) error {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := viper.Unmarshal(settings); err != nil {
		return fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	if err := ValidateSettings(settings); err != nil {
		return fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return nil
}

// Setting returns the current settings instance, or nil if Load has not been
// called yet.
func Setting() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
