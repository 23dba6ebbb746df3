package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		Server: ServerSettings{
			BaseURL: "https://safeguard.example.com",
			Timeout: 10 * time.Second,
		},
		Cache: CacheSettings{
			Path:      "safeguard-notifications.db",
			Retention: 72 * time.Hour,
		},
		Panel: PanelSettings{
			PageSize:      5,
			ToastDuration: 2 * time.Second,
		},
	}
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	t.Run("valid settings pass", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, ValidateSettings(validSettings()))
	})

	t.Run("missing token and identity are a valid logged-out state", func(t *testing.T) {
		t.Parallel()
		settings := validSettings()
		settings.Identity = ""
		settings.Server.Token = ""
		assert.NoError(t, ValidateSettings(settings))
	})

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"empty base url", func(s *Settings) { s.Server.BaseURL = "" }},
		{"base url without scheme", func(s *Settings) { s.Server.BaseURL = "safeguard.example.com" }},
		{"non-http scheme", func(s *Settings) { s.Server.BaseURL = "ftp://safeguard.example.com" }},
		{"zero timeout", func(s *Settings) { s.Server.Timeout = 0 }},
		{"empty cache path", func(s *Settings) { s.Cache.Path = "" }},
		{"zero retention", func(s *Settings) { s.Cache.Retention = 0 }},
		{"zero page size", func(s *Settings) { s.Panel.PageSize = 0 }},
		{"negative toast duration", func(s *Settings) { s.Panel.ToastDuration = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			settings := validSettings()
			tt.mutate(settings)
			assert.Error(t, ValidateSettings(settings))
		})
	}
}
