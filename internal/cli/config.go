package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evcraddock/nearby/internal/client"
	"github.com/evcraddock/nearby/internal/view"
)

// DefaultSocketURL is the chat server used when nothing is configured.
const DefaultSocketURL = "ws://localhost:3000/socket"

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	APIURL    string `yaml:"api_url,omitempty"`
	SocketURL string `yaml:"socket_url,omitempty"`
	Locale    string `yaml:"locale,omitempty"`
	// ReconnectAttempts bounds chat reconnection: 0 uses the default,
	// negative disables reconnecting.
	ReconnectAttempts int `yaml:"reconnect_attempts,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "nearby", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// settings is the effective configuration: environment first, then the
// config file, then defaults.
type settings struct {
	APIURL            string
	SocketURL         string
	Locale            string
	ReconnectAttempts int
}

func resolveSettings() settings {
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}

	s := settings{
		APIURL:            firstNonEmpty(os.Getenv("NEARBY_API_URL"), cfg.APIURL, client.DefaultBaseURL),
		SocketURL:         firstNonEmpty(os.Getenv("NEARBY_SOCKET_URL"), cfg.SocketURL, DefaultSocketURL),
		Locale:            firstNonEmpty(os.Getenv("NEARBY_LOCALE"), cfg.Locale, view.DefaultLocale),
		ReconnectAttempts: cfg.ReconnectAttempts,
	}
	s.APIURL = strings.TrimRight(s.APIURL, "/")
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
