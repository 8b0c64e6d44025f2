package bootstrap

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:           "mongodb://localhost:27017",
		MongoDatabase:      "house_keeper_test",
		SessionKey:         "test-session-key-for-testing-only",
		SessionName:        "housekeeper-session",
		LockoutMaxAttempts: 5,
		LockoutWindow:      10 * time.Minute,
		LoginIPLimit:       10,
		LoginIPWindow:      time.Minute,
		LoginUserLimit:     5,
		LoginUserWindow:    5 * time.Minute,
	}
}

func TestValidateConfig_Accepts(t *testing.T) {
	if err := ValidateConfig(nil, validAppConfig(), zap.NewNop()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateConfig_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "http://not-mongo" }},
		{"zero lockout attempts", func(c *AppConfig) { c.LockoutMaxAttempts = 0 }},
		{"negative lockout window", func(c *AppConfig) { c.LockoutWindow = -time.Minute }},
		{"zero ip limit", func(c *AppConfig) { c.LoginIPLimit = 0 }},
		{"zero username limit", func(c *AppConfig) { c.LoginUserLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
