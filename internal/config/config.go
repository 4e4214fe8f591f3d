package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Wallet modes.
const (
	WalletWS  = "ws"
	WalletKey = "key"
)

type Config struct {
	Network  NetworkConfig  `yaml:"network"`
	Contract ContractConfig `yaml:"contract"`
	Wallet   WalletConfig   `yaml:"wallet"`
	Polling  PollingConfig  `yaml:"polling"`
	Log      LogConfig      `yaml:"log"`
}

type NetworkConfig struct {
	ChainID int64  `yaml:"chain_id"`
	Name    string `yaml:"name"`
}

type ContractConfig struct {
	Address string `yaml:"address"`
	// ABIPath overrides the embedded contract interface.
	ABIPath string `yaml:"abi_path"`
}

type WalletConfig struct {
	Mode   string `yaml:"mode"`
	URL    string `yaml:"url"`
	RPCURL string `yaml:"rpc_url"`
	KeyEnv string `yaml:"key_env"`
}

type PollingConfig struct {
	WinnerInterval  time.Duration `yaml:"winner_interval"`
	EntriesInterval time.Duration `yaml:"entries_interval"`
	ReceiptInterval time.Duration `yaml:"receipt_interval"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

func defaultConfig() *Config {
	return &Config{
		Network: NetworkConfig{
			ChainID: 4,
		},
		Wallet: WalletConfig{
			Mode:   WalletWS,
			URL:    "ws://127.0.0.1:1248",
			RPCURL: "http://127.0.0.1:8545",
			KeyEnv: "LOTTERY_PRIVATE_KEY",
		},
		Polling: PollingConfig{
			WinnerInterval:  5 * time.Second,
			EntriesInterval: 5 * time.Second,
			ReceiptInterval: 2 * time.Second,
			ReadTimeout:     10 * time.Second,
		},
		Log: LogConfig{
			File:  "lottery-tui.log",
			Level: "info",
		},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that an empty path or a missing file
// yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultConfig(), nil
	}
	return cfg, err
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Network.ChainID <= 0 {
		return fmt.Errorf("network.chain_id must be positive, got %d", c.Network.ChainID)
	}
	if !common.IsHexAddress(c.Contract.Address) {
		return fmt.Errorf("contract.address %q is not a hex address", c.Contract.Address)
	}
	switch c.Wallet.Mode {
	case WalletWS:
		if c.Wallet.URL == "" {
			return errors.New("wallet.url is required in ws mode")
		}
	case WalletKey:
		if c.Wallet.RPCURL == "" || c.Wallet.KeyEnv == "" {
			return errors.New("wallet.rpc_url and wallet.key_env are required in key mode")
		}
	default:
		return fmt.Errorf("wallet.mode must be %q or %q, got %q", WalletWS, WalletKey, c.Wallet.Mode)
	}
	for name, d := range map[string]time.Duration{
		"polling.winner_interval":  c.Polling.WinnerInterval,
		"polling.entries_interval": c.Polling.EntriesInterval,
		"polling.receipt_interval": c.Polling.ReceiptInterval,
		"polling.read_timeout":     c.Polling.ReadTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// ContractAddress is the parsed contract address. Call Validate first.
func (c *Config) ContractAddress() common.Address {
	return common.HexToAddress(c.Contract.Address)
}
