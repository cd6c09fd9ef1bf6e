package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultNetwork   = "mainnetInfura"
	defaultAlgorithm = "fastest"
	defaultInterval  = 15
	defaultLogLevel  = "info"

	configFile = "config.json"
	envFile    = ".env"

	// EnvPrefix is prepended to every environment override, e.g. MDT_INFURA_TOKEN.
	EnvPrefix = "MDT"
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.mdtlockup.
//
// Resolution order, lowest first: built-in defaults, config.json, the .env file
// in dir, then the process environment.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".mdtlockup")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	// godotenv never overrides variables already present in the environment.
	if err := godotenv.Load(filepath.Join(dir, envFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}

	return cfg, nil
}

// Save writes the config to disk. Secrets sourced from the environment are not persisted.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	key := networkKey(network)
	if slices.Contains(c.CustomRPCs[key], url) {
		return fmt.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[key] = append(c.CustomRPCs[key], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	key := networkKey(network)
	rpcs := c.CustomRPCs[key]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[key] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[networkKey(network)]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// Path joins name onto the config directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.configDir, name)
}

// --- helpers ---

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_network", defaultNetwork)
	v.SetDefault("default_wallet", "")
	v.SetDefault("rpc_algorithm", defaultAlgorithm)
	v.SetDefault("watch_interval", defaultInterval)
	v.SetDefault("lockup_closed", false)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("custom_rpcs", map[string][]string{})
	v.SetDefault("infura_token", "")
	v.SetDefault("deployer_mnemonic", "")
}

// viper folds map keys to lower case, so network keys are stored that way too.
func networkKey(network string) string {
	return strings.ToLower(network)
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
