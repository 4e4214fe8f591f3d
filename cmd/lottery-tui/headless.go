package main

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/urfave/cli.v1"

	"github.com/sclottery/lottery-tui/internal/lottery"
	"github.com/sclottery/lottery-tui/internal/notify"
	"github.com/sclottery/lottery-tui/internal/present"
	"github.com/sclottery/lottery-tui/internal/session"
)

const (
	opStatus       = session.OpNone
	opEnter        = session.OpSubmitEntry
	opWithdraw     = session.OpWithdraw
	opAssignWinner = session.OpAssignWinner
)

var errNotConnected = errors.New("wallet not connected")

func headlessAction(op session.Op) func(*cli.Context) error {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Log, true)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		dial, err := dialer(cfg, log)
		if err != nil {
			return err
		}
		sess, err := newSession(cfg, dial, log, notify.NewWriter(os.Stderr), nil)
		if err != nil {
			return err
		}
		defer sess.Close()

		return runHeadless(&sess, op, os.Stdout)
	}
}

// runHeadless connects, reads every fact once and, for a write, submits
// it and waits for confirmation. A write is only sent when it is the
// action the interactive client would offer.
func runHeadless(sess *session.Model, op session.Op, out io.Writer) error {
	var failed error
	observe := func(msg tea.Msg) {
		switch msg := msg.(type) {
		case session.ConnectFailedMsg:
			failed = msg.Err
		case session.TxFailedMsg:
			failed = msg.Err
		}
	}

	sess.Drive(sess.Connect(), observe)
	if failed != nil {
		return failed
	}
	if !sess.State().Connected {
		return errNotConnected
	}
	sess.Drive(sess.Refresh(session.FactEntryCount, session.FactWinner), observe)

	if op != session.OpNone {
		act := present.Resolve(sess.State())
		if act.Op() != op {
			return fmt.Errorf("%s is not available: %s", op, act.Label())
		}
		sess.Drive(sess.Submit(op), observe)
		if failed != nil {
			return failed
		}
	}

	printState(out, sess.State())
	return nil
}

func printState(w io.Writer, s session.State) {
	fee := new(big.Float).Quo(new(big.Float).SetInt(lottery.EntryFee), big.NewFloat(1e18))
	fmt.Fprintf(w, "account:     %s\n", s.Account.Hex())
	fmt.Fprintf(w, "phase:       %s\n", s.Phase)
	fmt.Fprintf(w, "entries:     %d/%d\n", s.EntryCount, s.MinEntryCount)
	fmt.Fprintf(w, "entry fee:   %s ETH\n", fee.Text('f', 2))
	fmt.Fprintf(w, "owner:       %t\n", s.IsOwner)
	fmt.Fprintf(w, "entered:     %t\n", s.HasEntered)
	fmt.Fprintf(w, "winner:      %t\n", s.IsWinner)
	act := present.Resolve(s)
	if h := act.Headline(); h != "" {
		fmt.Fprintf(w, "%s\n", h)
	}
	fmt.Fprintf(w, "next:        %s\n", act.Label())
}
