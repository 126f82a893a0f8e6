package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Environment overrides
const (
	EnvRPCURL   = "ETH_RPC_URL"
	EnvContract = "DEPLEBS_CONTRACT"
)

// DefaultChainID is the network the sale contract is deployed on (Rinkeby).
const DefaultChainID int64 = 4

// FileName is the config file created in the user's home directory.
const FileName = ".deplebs-mint.json"

var addressRe = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

// Config represents the application configuration
type Config struct {
	RPCURLs          []RPCUrl      `json:"rpc_urls"`
	ContractAddress  string        `json:"contract_address"`
	ChainID          int64         `json:"chain_id"`
	KeystoreDir      string        `json:"keystore_dir"`
	MetadataImageURL string        `json:"metadata_image_url,omitempty"`
	Accounts         []AccountName `json:"accounts,omitempty"`
	Logger           bool          `json:"logger"`
}

// RPCUrl represents an RPC endpoint
type RPCUrl struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// AccountName labels a keystore account; Active marks the last one used
type AccountName struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	Active  bool   `json:"active"`
}

// DefaultPath returns ~/.deplebs-mint.json
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, FileName)
}

// DefaultKeystoreDir returns the geth keystore location for the network
func DefaultKeystoreDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ethereum", "rinkeby", "keystore")
}

// DefaultConfig returns a new configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		RPCURLs: []RPCUrl{
			{
				Name:   "Local node",
				URL:    "http://127.0.0.1:8545",
				Active: true,
			},
		},
		ChainID:     DefaultChainID,
		KeystoreDir: DefaultKeystoreDir(),
		Logger:      false,
	}
}

// Load reads the config from the specified path
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.ChainID == 0 {
		cfg.ChainID = DefaultChainID
	}
	if cfg.KeystoreDir == "" {
		cfg.KeystoreDir = DefaultKeystoreDir()
	}
	return cfg, nil
}

// Save writes the config to the specified path
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadOrCreate loads config from path, or creates a default one if not found.
// An unreadable file falls back to defaults without being overwritten.
func LoadOrCreate(path string) Config {
	cfg, err := Load(path)
	if err == nil {
		return cfg
	}
	cfg = DefaultConfig()
	if errors.Is(err, os.ErrNotExist) {
		_ = Save(path, cfg)
	}
	return cfg
}

// ApplyEnvironment overrides file values with environment variables
func ApplyEnvironment(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvRPCURL)); v != "" {
		found := false
		for i := range cfg.RPCURLs {
			cfg.RPCURLs[i].Active = cfg.RPCURLs[i].URL == v
			found = found || cfg.RPCURLs[i].Active
		}
		if !found {
			cfg.RPCURLs = append([]RPCUrl{{Name: "Environment", URL: v, Active: true}}, cfg.RPCURLs...)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvContract)); v != "" {
		cfg.ContractAddress = v
	}
}

// ActiveRPC returns the active endpoint, or the first one
func (c Config) ActiveRPC() (RPCUrl, bool) {
	for _, r := range c.RPCURLs {
		if r.Active {
			return r, true
		}
	}
	if len(c.RPCURLs) > 0 {
		return c.RPCURLs[0], true
	}
	return RPCUrl{}, false
}

// AccountLabel returns the label for addr, if one is configured
func (c Config) AccountLabel(addr string) string {
	for _, a := range c.Accounts {
		if strings.EqualFold(a.Address, addr) {
			return a.Name
		}
	}
	return ""
}

// ActiveAccount returns the address used last, if any
func (c Config) ActiveAccount() string {
	for _, a := range c.Accounts {
		if a.Active {
			return a.Address
		}
	}
	return ""
}

// MarkActive records addr as the last used account
func (c *Config) MarkActive(addr string) {
	found := false
	for i := range c.Accounts {
		c.Accounts[i].Active = strings.EqualFold(c.Accounts[i].Address, addr)
		found = found || c.Accounts[i].Active
	}
	if !found {
		c.Accounts = append(c.Accounts, AccountName{Address: addr, Active: true})
	}
}

// Validate checks the values needed to reach the sale contract
func (c Config) Validate() error {
	if _, ok := c.ActiveRPC(); !ok {
		return fmt.Errorf("no RPC endpoint configured (set %s)", EnvRPCURL)
	}
	if c.ContractAddress == "" {
		return fmt.Errorf("no contract address configured (set %s)", EnvContract)
	}
	if !addressRe.MatchString(c.ContractAddress) {
		return fmt.Errorf("invalid contract address %q", c.ContractAddress)
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("invalid chain id %d", c.ChainID)
	}
	return nil
}
