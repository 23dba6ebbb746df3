// defaults.go: default configuration values for the notification client.
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig sets the default values for each configuration parameter.
func setDefaultConfig() {
	viper.SetDefault("debug", false)
	viper.SetDefault("identity", "")

	viper.SetDefault("server.baseurl", "http://localhost:8080")
	viper.SetDefault("server.token", "")
	viper.SetDefault("server.timeout", 10*time.Second)

	viper.SetDefault("cache.path", "safeguard-notifications.db")
	viper.SetDefault("cache.retention", 72*time.Hour)

	viper.SetDefault("panel.pagesize", 5)
	viper.SetDefault("panel.toastduration", 2*time.Second)
}
