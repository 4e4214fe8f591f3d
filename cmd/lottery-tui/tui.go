package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"gopkg.in/urfave/cli.v1"

	"github.com/sclottery/lottery-tui/internal/app"
	"github.com/sclottery/lottery-tui/internal/notify"
	"github.com/sclottery/lottery-tui/internal/session"
)

func runTUI(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log, false)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dial, err := dialer(cfg, log)
	if err != nil {
		return err
	}
	notices := notify.NewQueue()
	sess, err := newSession(cfg, dial, log, notices, session.NewScheduler())
	if err != nil {
		return err
	}

	log.Info("starting",
		zap.String("contract", cfg.Contract.Address),
		zap.Int64("chainID", cfg.Network.ChainID),
		zap.String("wallet", cfg.Wallet.Mode))

	m := app.New(sess, notices, app.Info{Network: networkName(cfg), Contract: cfg.Contract.Address})
	return runProgram(tea.NewProgram(m, tea.WithAltScreen()), &sess)
}

type program interface {
	Run() (tea.Model, error)
}

// runProgram runs p and releases the session however it exits. The quit
// key closes it too; closing twice is harmless.
func runProgram(p program, sess *session.Model) error {
	defer sess.Close()
	_, err := p.Run()
	return err
}
