package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file and expands ${VAR} environment variables
// before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values for any
// optional field left unset.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates it.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadCredentials reads the signer's key id and private key from the
// process environment. KALSHI_PRIVATE_KEY_PATH takes precedence over
// KALSHI_PRIVATE_KEY when both are set.
func LoadCredentials() (*Credentials, error) {
	keyID := os.Getenv("KALSHI_ACCESS_KEY")
	if keyID == "" {
		return nil, fmt.Errorf("KALSHI_ACCESS_KEY is not set")
	}

	if path := os.Getenv("KALSHI_PRIVATE_KEY_PATH"); path != "" {
		pem, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read private key file: %w", err)
		}
		return &Credentials{KeyID: keyID, PrivateKeyPEM: pem, PrivateKeyPath: path}, nil
	}

	if pem := os.Getenv("KALSHI_PRIVATE_KEY"); pem != "" {
		return &Credentials{KeyID: keyID, PrivateKeyPEM: []byte(pem)}, nil
	}

	return nil, fmt.Errorf("neither KALSHI_PRIVATE_KEY_PATH nor KALSHI_PRIVATE_KEY is set")
}
