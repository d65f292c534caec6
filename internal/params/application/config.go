package application

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	params "carbonmarket-cloud/internal/params/domain"

	ledger "carbonmarket-cloud/internal/ledger/domain"
)

// Config defines the initial market configuration loaded at startup.
type Config struct {
	AdminAddress    string `yaml:"admin_address"`
	EngineAddress   string `yaml:"engine_address"`
	ConversionRatio string `yaml:"conversion_ratio"`
	FloorPrice      string `yaml:"floor_price"`
	Beneficiary     string `yaml:"beneficiary"`
}

// LoadConfig loads market config from yaml with env overrides.
func LoadConfig() (Config, error) {
	cfg := Config{
		AdminAddress:    os.Getenv("MARKET_ADMIN_ADDRESS"),
		EngineAddress:   getenvDefault("MARKET_ENGINE_ADDRESS", "market-engine"),
		ConversionRatio: getenvDefault("MARKET_CONVERSION_RATIO", "100"),
		FloorPrice:      getenvDefault("MARKET_FLOOR_PRICE", "0"),
		Beneficiary:     os.Getenv("MARKET_BENEFICIARY"),
	}

	if path := os.Getenv("MARKET_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, err
		}
		cfg = merge(cfg, fileCfg)
	}

	if cfg.AdminAddress == "" {
		return cfg, errors.New("market config: admin_address is required")
	}
	if cfg.Beneficiary == "" {
		cfg.Beneficiary = cfg.AdminAddress
	}
	return cfg, nil
}

// Parameters parses the configured values into the initial parameter set.
func (c Config) Parameters() (params.Parameters, error) {
	ratio, err := ledger.ParseAmount(c.ConversionRatio)
	if err != nil {
		return params.Parameters{}, err
	}
	floor, err := ledger.ParseAmount(c.FloorPrice)
	if err != nil {
		return params.Parameters{}, err
	}
	return params.Parameters{
		ConversionRatio: ratio,
		FloorPrice:      floor,
		Beneficiary:     c.Beneficiary,
	}, nil
}

func merge(base, override Config) Config {
	if override.AdminAddress != "" {
		base.AdminAddress = override.AdminAddress
	}
	if override.EngineAddress != "" {
		base.EngineAddress = override.EngineAddress
	}
	if override.ConversionRatio != "" {
		base.ConversionRatio = override.ConversionRatio
	}
	if override.FloorPrice != "" {
		base.FloorPrice = override.FloorPrice
	}
	if override.Beneficiary != "" {
		base.Beneficiary = override.Beneficiary
	}
	return base
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
