// validate.go: validation of loaded settings.
package conf

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateSettings checks that the loaded settings are internally consistent.
// Missing credentials or identity are not errors here; the pipeline treats a
// logged-out state as a valid no-op configuration.
func ValidateSettings(settings *Settings) error {
	if settings.Server.BaseURL == "" {
		return fmt.Errorf("server.baseurl must not be empty")
	}
	parsed, err := url.Parse(settings.Server.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server.baseurl %q is not a valid URL", settings.Server.BaseURL)
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return fmt.Errorf("server.baseurl must use http or https, got %q", parsed.Scheme)
	}

	if settings.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}

	if settings.Cache.Path == "" {
		return fmt.Errorf("cache.path must not be empty")
	}
	if settings.Cache.Retention <= 0 {
		return fmt.Errorf("cache.retention must be positive")
	}

	if settings.Panel.PageSize <= 0 {
		return fmt.Errorf("panel.pagesize must be positive")
	}
	if settings.Panel.ToastDuration <= 0 {
		return fmt.Errorf("panel.toastduration must be positive")
	}

	return nil
}
