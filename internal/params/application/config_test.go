package application

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "market.yaml")
	content := []byte(`
admin_address: "0xadmin"
conversion_ratio: "250"
floor_price: "1000000000000000000"
beneficiary: "0xtreasury"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MARKET_CONFIG", path)
	t.Setenv("MARKET_ADMIN_ADDRESS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AdminAddress != "0xadmin" {
		t.Fatalf("admin = %q", cfg.AdminAddress)
	}
	if cfg.EngineAddress != "market-engine" {
		t.Fatalf("engine = %q", cfg.EngineAddress)
	}

	initial, err := cfg.Parameters()
	if err != nil {
		t.Fatalf("parameters: %v", err)
	}
	if initial.ConversionRatio.Int64() != 250 {
		t.Fatalf("ratio = %s", initial.ConversionRatio)
	}
	if initial.FloorPrice.String() != "1000000000000000000" {
		t.Fatalf("floor = %s", initial.FloorPrice)
	}
	if initial.Beneficiary != "0xtreasury" {
		t.Fatalf("beneficiary = %q", initial.Beneficiary)
	}
}

func TestLoadConfigRequiresAdmin(t *testing.T) {
	t.Setenv("MARKET_CONFIG", "")
	t.Setenv("MARKET_ADMIN_ADDRESS", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without admin address")
	}
}

func TestLoadConfigEnvDefaults(t *testing.T) {
	t.Setenv("MARKET_CONFIG", "")
	t.Setenv("MARKET_ADMIN_ADDRESS", "0xadmin")
	t.Setenv("MARKET_BENEFICIARY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Beneficiary != "0xadmin" {
		t.Fatalf("beneficiary should default to admin, got %q", cfg.Beneficiary)
	}
	if cfg.ConversionRatio != "100" || cfg.FloorPrice != "0" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
