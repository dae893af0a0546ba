package common

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ValidCurrencies are the currency codes accepted for the default currency setting.
var ValidCurrencies = []string{"USD", "EUR", "AED"}

// SeedUserConfig describes a user account created on first run when the user
// collection is empty.
type SeedUserConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Role     string `koanf:"role"`
}

// Validate ensures the SeedUserConfig is valid
func (u SeedUserConfig) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.Password == "" {
		return fmt.Errorf("password is required")
	}
	if u.Role != "" && !slices.Contains([]string{"admin", "sales", "procurement"}, u.Role) {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	return nil
}

// LocalConfig represents the local configuration file structure
type LocalConfig struct {
	DefaultCurrency string           `koanf:"default_currency,omitempty"`
	SeedUsers       []SeedUserConfig `koanf:"seed_users,omitempty"`
}

// Validate ensures the LocalConfig is valid
func (c LocalConfig) Validate() error {
	if c.DefaultCurrency != "" && !slices.Contains(ValidCurrencies, c.DefaultCurrency) {
		return fmt.Errorf("invalid default_currency: %s", c.DefaultCurrency)
	}
	for _, u := range c.SeedUsers {
		if err := u.Validate(); err != nil {
			return fmt.Errorf("invalid seed user %q: %w", u.Username, err)
		}
	}
	return nil
}

// LocalConfigPath returns the path of the local config file under the
// orderdesk data home.
func LocalConfigPath() (string, error) {
	dataHome, err := GetOrderdeskDataHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataHome, "config.yml"), nil
}

// LoadLocalConfig reads and validates the local YAML configuration. A missing
// file is not an error: it yields the zero config.
func LoadLocalConfig() (LocalConfig, error) {
	var config LocalConfig

	path, err := LocalConfigPath()
	if err != nil {
		return config, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return config, fmt.Errorf("failed to load local config: %w", err)
	}
	if err := k.Unmarshal("", &config); err != nil {
		return config, fmt.Errorf("failed to unmarshal local config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}
