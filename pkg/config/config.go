// Package config loads and validates the sealstore configuration file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-sealstore/pkg/encryption"
)

var validate = validator.New()

// Config is the root configuration
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Crypto  CryptoConfig  `yaml:"crypto"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig selects and configures the backend
type StoreConfig struct {
	Backend     string `yaml:"backend" validate:"required,oneof=memory postgres"`
	DatabaseURL string `yaml:"database_url" validate:"required_if=Backend postgres"`
}

// CryptoConfig configures the encryption layer. Exactly one key source
// must be set: a hex-encoded 256-bit key, or a passphrase with salt.
type CryptoConfig struct {
	KeyHex        string `yaml:"key_hex" validate:"omitempty,hexadecimal,len=64"`
	Passphrase    string `yaml:"passphrase"`
	SaltHex       string `yaml:"salt_hex" validate:"omitempty,hexadecimal,len=64"`
	KeyDir        string `yaml:"key_dir"`
	NonceStrategy string `yaml:"nonce_strategy" validate:"omitempty,oneof=random counter"`
	// CounterStart resumes a counter sequencer from a persisted value.
	// Counter mode is only safe when this is kept up to date across
	// restarts (or the key changes every run); deployments that cannot
	// guarantee that should stay on the random strategy.
	CounterStart uint64 `yaml:"counter_start"`
	Compression   *bool  `yaml:"compression"`
	ValidateKey   bool   `yaml:"validate_key"`
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Load reads, parses, and validates a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural and cross-field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve := verrs[0]
			return fmt.Errorf("config: field %s failed %q validation", ve.Namespace(), ve.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}

	hasKey := c.Crypto.KeyHex != ""
	hasPassphrase := c.Crypto.Passphrase != ""
	if hasKey == hasPassphrase {
		return fmt.Errorf("config: exactly one of crypto.key_hex and crypto.passphrase must be set")
	}
	if hasPassphrase && c.Crypto.SaltHex == "" {
		return fmt.Errorf("config: crypto.salt_hex is required with crypto.passphrase")
	}
	return nil
}

// Key resolves the configured key material
func (c *Config) Key() ([]byte, error) {
	if c.Crypto.KeyHex != "" {
		return hex.DecodeString(c.Crypto.KeyHex)
	}

	salt, err := hex.DecodeString(c.Crypto.SaltHex)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	return encryption.KeyFromPassphrase(c.Crypto.Passphrase, salt)
}

// Sequencer builds the configured nonce sequencer
func (c *Config) Sequencer() encryption.NonceSequencer {
	if c.Crypto.NonceStrategy == "counter" {
		return encryption.NewCounterSequencer(c.Crypto.CounterStart)
	}
	return encryption.NewRandomSequencer()
}

// Codec builds the configured value codec
func (c *Config) Codec() *encryption.Codec {
	if c.Crypto.Compression != nil {
		return encryption.NewCodec(*c.Crypto.Compression)
	}
	return encryption.DefaultCodec()
}
