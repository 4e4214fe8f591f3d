package main

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/urfave/cli.v1"

	"github.com/sclottery/lottery-tui/internal/chain"
	"github.com/sclottery/lottery-tui/internal/config"
	"github.com/sclottery/lottery-tui/internal/lottery"
	"github.com/sclottery/lottery-tui/internal/notify"
	"github.com/sclottery/lottery-tui/internal/session"
	"github.com/sclottery/lottery-tui/internal/wallet"
)

// loadConfig reads the config file and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if v := c.GlobalString("contract"); v != "" {
		cfg.Contract.Address = v
	}
	if c.GlobalIsSet("chain-id") {
		cfg.Network.ChainID = c.GlobalInt64("chain-id")
	}
	if v := c.GlobalString("wallet-url"); v != "" {
		cfg.Wallet.Mode = config.WalletWS
		cfg.Wallet.URL = v
	}
	if v := c.GlobalString("rpc-url"); v != "" {
		cfg.Wallet.Mode = config.WalletKey
		cfg.Wallet.RPCURL = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. The TUI owns the terminal, so it
// logs JSON to a file; headless commands log to stderr.
func newLogger(cfg config.LogConfig, headless bool) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if headless {
		zcfg.Encoding = "console"
		zcfg.OutputPaths = []string{"stderr"}
		zcfg.ErrorOutputPaths = []string{"stderr"}
	} else {
		zcfg.OutputPaths = []string{cfg.File}
		zcfg.ErrorOutputPaths = []string{cfg.File}
	}
	return zcfg.Build()
}

// dialer returns how the connection manager reaches the wallet.
func dialer(cfg *config.Config, log *zap.Logger) (chain.Dialer, error) {
	switch cfg.Wallet.Mode {
	case config.WalletKey:
		key, err := wallet.KeyFromEnv(cfg.Wallet.KeyEnv)
		if err != nil {
			return nil, err
		}
		url := cfg.Wallet.RPCURL
		return func(ctx context.Context) (wallet.Provider, error) {
			return wallet.DialKeyed(ctx, url, key)
		}, nil
	default:
		url := cfg.Wallet.URL
		return func(ctx context.Context) (wallet.Provider, error) {
			return wallet.DialWS(ctx, url, log.Named("wallet"))
		}, nil
	}
}

// newSession wires the connection manager, gateway and session.
func newSession(cfg *config.Config, dial chain.Dialer, log *zap.Logger, notifier notify.Notifier, sched *session.Scheduler) (session.Model, error) {
	parsed, err := lottery.LoadABI(cfg.Contract.ABIPath)
	if err != nil {
		return session.Model{}, err
	}

	guard := chain.NewGuard(big.NewInt(cfg.Network.ChainID), cfg.Network.Name, notifier)
	mgr := chain.NewManager(dial, guard, log.Named("chain"))
	gw := lottery.NewGateway(cfg.ContractAddress(), parsed)

	return session.New(mgr, gw, session.Options{
		Config: session.Config{
			WinnerInterval:  cfg.Polling.WinnerInterval,
			EntriesInterval: cfg.Polling.EntriesInterval,
			ReceiptInterval: cfg.Polling.ReceiptInterval,
			ReadTimeout:     cfg.Polling.ReadTimeout,
		},
		Logger:    log.Named("session"),
		Notifier:  notifier,
		Scheduler: sched,
	}), nil
}

func networkName(cfg *config.Config) string {
	if cfg.Network.Name != "" {
		return cfg.Network.Name
	}
	return chain.NetworkName(big.NewInt(cfg.Network.ChainID))
}
