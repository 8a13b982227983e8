package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// withEnv sets environment variables for the test and restores them after.
func withEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	keys := []string{
		"CONFIG_FILE", "STORE_ID", "ENVIRONMENT", "PORT", "LOG_LEVEL",
		"GATEWAY_URL", "GATEWAY_CLIENT_ID", "GATEWAY_CLIENT_SECRET",
		"COLLECT_BILLING_ADDRESS", "ALLOW_DIFFERENT_STORE_PICKUP",
		"FREE_SHIPPING_METHOD_IDS", "OVERRIDE_REQUIRES_MANAGER", "GCP_PROJECT",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadFromEnv(t *testing.T) {
	withEnv(t, map[string]string{
		"ENVIRONMENT":              "development",
		"STORE_ID":                 "store-001",
		"PORT":                     "9090",
		"LOG_LEVEL":                "debug",
		"GATEWAY_URL":              "https://gateway.example.com",
		"GATEWAY_CLIENT_ID":        "client-123",
		"GATEWAY_CLIENT_SECRET":    "secret-456",
		"COLLECT_BILLING_ADDRESS":  "true",
		"FREE_SHIPPING_METHOD_IDS": "005,006",
	})

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.StoreID != "store-001" {
		t.Errorf("StoreID = %s, want store-001", cfg.StoreID)
	}
	if cfg.Store.GatewayURL != "https://gateway.example.com" {
		t.Errorf("GatewayURL = %s", cfg.Store.GatewayURL)
	}
	if !cfg.Store.CollectBillingAddress {
		t.Error("CollectBillingAddress = false, want true")
	}
	if cfg.Store.AllowDifferentStorePickup {
		t.Error("AllowDifferentStorePickup = true, want false")
	}
	if len(cfg.Store.FreeShippingMethodIDs) != 2 || cfg.Store.FreeShippingMethodIDs[0] != "005" {
		t.Errorf("FreeShippingMethodIDs = %v, want [005 006]", cfg.Store.FreeShippingMethodIDs)
	}
}

func TestLoadDefaults(t *testing.T) {
	withEnv(t, map[string]string{
		"STORE_ID":              "store-001",
		"GATEWAY_URL":           "https://gateway.example.com",
		"GATEWAY_CLIENT_ID":     "client-123",
		"GATEWAY_CLIENT_SECRET": "secret-456",
	})

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want default 8080", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %s, want default development", cfg.Environment)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want default info", cfg.LogLevel)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{
			name: "missing store id",
			vars: map[string]string{
				"GATEWAY_URL":           "https://gateway.example.com",
				"GATEWAY_CLIENT_ID":     "client-123",
				"GATEWAY_CLIENT_SECRET": "secret-456",
			},
		},
		{
			name: "missing gateway url",
			vars: map[string]string{
				"STORE_ID":              "store-001",
				"GATEWAY_CLIENT_ID":     "client-123",
				"GATEWAY_CLIENT_SECRET": "secret-456",
			},
		},
		{
			name: "missing client secret",
			vars: map[string]string{
				"STORE_ID":          "store-001",
				"GATEWAY_URL":       "https://gateway.example.com",
				"GATEWAY_CLIENT_ID": "client-123",
			},
		},
		{
			name: "production without gcp project",
			vars: map[string]string{
				"ENVIRONMENT": "production",
				"STORE_ID":    "store-001",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEnv(t, tt.vars)
			if _, err := Load(context.Background()); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"port": "9999",
		"store_id": "store-007",
		"store": {
			"gateway_url": "https://gateway.example.com",
			"client_id": "client-123",
			"client_secret": "secret-456",
			"free_shipping_method_ids": ["005"]
		}
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	withEnv(t, map[string]string{"CONFIG_FILE": path})

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("Port = %s, want 9999", cfg.Port)
	}
	if cfg.StoreID != "store-007" {
		t.Errorf("StoreID = %s, want store-007", cfg.StoreID)
	}
	if len(cfg.Store.FreeShippingMethodIDs) != 1 {
		t.Errorf("FreeShippingMethodIDs = %v", cfg.Store.FreeShippingMethodIDs)
	}
}

func TestLoadFromFileMissingStoreID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"store": {"gateway_url": "https://g.example.com", "client_id": "c", "client_secret": "s"}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	withEnv(t, map[string]string{"CONFIG_FILE": path})

	if _, err := Load(context.Background()); err == nil {
		t.Error("Load() succeeded without store_id, want error")
	}
}
