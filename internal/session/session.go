package session

import (
	"context"
	"errors"
	"math/big"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/sclottery/lottery-tui/internal/chain"
	"github.com/sclottery/lottery-tui/internal/lottery"
	"github.com/sclottery/lottery-tui/internal/notify"
)

var one = big.NewInt(1)

// ErrAccountChanged fails a write whose signing account is no longer the
// one the session is showing.
var ErrAccountChanged = errors.New("wallet account changed")

// Connector hands out network-validated accessors. *chain.Manager
// implements it.
type Connector interface {
	Acquire(ctx context.Context, needSigning bool) (*chain.Accessor, error)
	Close()
}

// Config holds the session cadences.
type Config struct {
	WinnerInterval  time.Duration
	EntriesInterval time.Duration
	ReceiptInterval time.Duration
	ReadTimeout     time.Duration
}

// DefaultConfig returns the default cadences.
func DefaultConfig() Config {
	return Config{
		WinnerInterval:  5 * time.Second,
		EntriesInterval: 5 * time.Second,
		ReceiptInterval: 2 * time.Second,
		ReadTimeout:     10 * time.Second,
	}
}

// Options configures a Model.
type Options struct {
	Config   Config
	Logger   *zap.Logger
	Notifier notify.Notifier
	// Scheduler runs the background polls. Nil disables polling, which
	// headless commands rely on.
	Scheduler *Scheduler
}

// ops performs wallet and contract I/O. It is immutable after New, so
// commands may capture it freely.
type ops struct {
	ctx  context.Context
	conn Connector
	gw   *lottery.Gateway
	cfg  Config
}

// Model owns the session State.
type Model struct {
	ops      *ops
	cancel   context.CancelFunc
	log      *zap.Logger
	notifier notify.Notifier
	sched    *Scheduler

	state    State
	inFlight Op
}

// New creates a disconnected session.
func New(conn Connector, gw *lottery.Gateway, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard{}
	}
	if opts.Config == (Config{}) {
		opts.Config = DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		ops:      &ops{ctx: ctx, conn: conn, gw: gw, cfg: opts.Config},
		cancel:   cancel,
		log:      opts.Logger,
		notifier: opts.Notifier,
		sched:    opts.Scheduler,
		state:    NewState(),
	}
}

// State returns a copy of the current snapshot.
func (m Model) State() State { return m.state }

// Busy reports whether a write is being submitted or awaiting confirmation.
func (m Model) Busy() bool { return m.inFlight != OpNone || m.state.Pending }

// Connect returns a command that connects the wallet. It is a no-op once
// connected.
func (m *Model) Connect() tea.Cmd {
	if m.state.Connected {
		return nil
	}
	o := m.ops
	return func() tea.Msg {
		acc, err := o.conn.Acquire(o.ctx, true)
		if err != nil {
			return ConnectFailedMsg{Err: err}
		}
		return ConnectedMsg{Account: acc.Address()}
	}
}

// Refresh returns a command reading the given facts on demand.
func (m *Model) Refresh(facts ...Fact) tea.Cmd {
	if !m.state.Connected {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(facts))
	for _, f := range facts {
		cmds = append(cmds, m.ops.readCmd(f))
	}
	return tea.Batch(cmds...)
}

// Submit starts a write. It is rejected while another write is in flight,
// so a double press never sends two transactions.
func (m *Model) Submit(op Op) tea.Cmd {
	if !m.state.Connected || op == OpNone {
		return nil
	}
	if m.Busy() {
		m.log.Info("write rejected, transaction in flight",
			zap.Stringer("op", op), zap.Stringer("inFlight", m.inFlight))
		return nil
	}
	m.inFlight = op
	return m.ops.submit(op, m.state.Account)
}

// Update applies a message to the session.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ConnectedMsg:
		m.state.Connected = true
		m.state.Account = msg.Account
		m.log.Info("session connected", zap.String("account", msg.Account.Hex()))
		return m.start()

	case ConnectFailedMsg:
		m.log.Warn("connect failed", zap.Error(msg.Err))
		return nil

	case factsMsg:
		cmds := make([]tea.Cmd, 0, len(msg))
		for _, sub := range msg {
			cmds = append(cmds, m.Update(sub))
		}
		return tea.Batch(cmds...)

	case TickMsg:
		if m.sched == nil {
			return nil
		}
		return m.sched.Handle(msg)

	case PhaseMsg:
		m.state.Phase = msg.Phase

	case EntryCountMsg:
		m.state.EntryCount = msg.Count

	case MinEntryCountMsg:
		m.state.MinEntryCount = msg.Count

	case AccountMsg:
		if !m.state.Connected || msg.Account == m.state.Account {
			return nil
		}
		return m.switchAccount(msg.Account)

	case OwnerMsg:
		if msg.Account != m.state.Account {
			return m.recheckAccount()
		}
		// common.Address is parsed from hex, so this comparison is
		// independent of the checksum casing either side arrived in.
		m.state.IsOwner = msg.Account != (common.Address{}) && msg.Owner == msg.Account

	case EnteredMsg:
		if msg.Account != m.state.Account {
			return m.recheckAccount()
		}
		// The contract records at most one entry per address.
		m.state.HasEntered = msg.Count.Cmp(one) == 0

	case PrizeMsg:
		if msg.Account != m.state.Account {
			return m.recheckAccount()
		}
		m.state.IsWinner = msg.Amount.Sign() > 0

	case ReadFailedMsg:
		m.log.Warn("read failed", zap.String("fact", string(msg.Fact)), zap.Error(msg.Err))

	case TxSubmittedMsg:
		m.state.Pending = true
		m.log.Info("transaction submitted", zap.Stringer("op", msg.Op), zap.String("hash", msg.Hash.Hex()))
		return m.ops.wait(msg.Op, msg.Hash)

	case TxConfirmedMsg:
		m.state.Pending = false
		m.inFlight = OpNone
		m.log.Info("transaction confirmed", zap.Stringer("op", msg.Op), zap.String("hash", msg.Hash.Hex()))
		return m.confirmed(msg.Op)

	case TxFailedMsg:
		m.state.Pending = false
		m.inFlight = OpNone
		// Failed writes are logged only; the user is not alerted.
		m.log.Error("transaction failed", zap.Stringer("op", msg.Op), zap.Error(msg.Err))
		if errors.Is(msg.Err, ErrAccountChanged) {
			return m.recheckAccount()
		}
	}
	return nil
}

// Close tears the session down: polls stop, in-flight I/O is cancelled and
// the wallet connection is released.
func (m *Model) Close() {
	if m.sched != nil {
		m.sched.Stop()
	}
	m.cancel()
	m.ops.conn.Close()
}

// start kicks off the connect-time reads and the background polls.
// hasEntered is only read here; winner and entry count keep polling.
func (m *Model) start() tea.Cmd {
	o := m.ops
	facts := o.connectFacts()
	if m.sched == nil {
		return facts
	}
	return tea.Batch(
		m.sched.Once(TaskConnect, func() tea.Cmd { return facts }),
		m.sched.Every(TaskWinner, o.cfg.WinnerInterval, func() tea.Cmd { return o.readCmd(FactWinner) }),
		m.sched.Every(TaskEntries, o.cfg.EntriesInterval, func() tea.Cmd { return o.readCmd(FactEntryCount) }),
	)
}

// recheckAccount asks the wallet which account is selected now. It runs in
// place of applying a result made for another account, so a late read for
// an account the user has left cannot switch the session back to it.
func (m *Model) recheckAccount() tea.Cmd {
	if !m.state.Connected {
		return nil
	}
	return m.ops.readCmd(FactAccount)
}

// switchAccount rebinds the session to addr. Per-account flags are cleared
// and the connect-time reads run again for the new account.
func (m *Model) switchAccount(addr common.Address) tea.Cmd {
	m.log.Info("wallet account changed",
		zap.String("from", m.state.Account.Hex()), zap.String("to", addr.Hex()))
	m.state.Account = addr
	m.state.IsOwner = false
	m.state.HasEntered = false
	m.state.IsWinner = false
	return tea.Batch(m.ops.connectFacts(), m.ops.readCmd(FactWinner))
}

func (m *Model) confirmed(op Op) tea.Cmd {
	switch op {
	case OpSubmitEntry:
		m.state.HasEntered = true
		m.notifier.Notify(notify.Success, "You successfully entered the lottery!")
		return m.Refresh(FactEntryCount, FactEntered)
	case OpWithdraw:
		m.notifier.Notify(notify.Success, "You successfully withdrew your prize money!")
		return m.Refresh(FactWinner)
	case OpAssignWinner:
		m.notifier.Notify(notify.Success, "You've initiated the process to select a winner!")
		return m.Refresh(FactEntryCount, FactPhase, FactWinner)
	}
	return nil
}

// connectFacts reads owner, threshold, entry status and phase one after the
// other and delivers them together.
func (o *ops) connectFacts() tea.Cmd {
	return func() tea.Msg {
		order := []Fact{FactOwner, FactMinEntryCount, FactEntered, FactPhase}
		out := make(factsMsg, 0, len(order))
		for _, f := range order {
			out = append(out, o.read(f))
		}
		return out
	}
}

func (o *ops) readCmd(f Fact) tea.Cmd {
	return func() tea.Msg { return o.read(f) }
}

func (o *ops) read(f Fact) tea.Msg {
	ctx, cancel := context.WithTimeout(o.ctx, o.cfg.ReadTimeout)
	defer cancel()

	msg, err := o.readFact(ctx, f)
	if err != nil {
		return ReadFailedMsg{Fact: f, Err: err}
	}
	return msg
}

func (o *ops) readFact(ctx context.Context, f Fact) (tea.Msg, error) {
	switch f {
	case FactPhase, FactEntryCount, FactMinEntryCount:
		acc, err := o.conn.Acquire(ctx, false)
		if err != nil {
			return nil, err
		}
		switch f {
		case FactPhase:
			p, err := o.gw.Phase(ctx, acc)
			return PhaseMsg{Phase: p}, err
		case FactEntryCount:
			n, err := o.gw.EntryCount(ctx, acc)
			return EntryCountMsg{Count: n}, err
		default:
			n, err := o.gw.MinEntryCount(ctx, acc)
			return MinEntryCountMsg{Count: n}, err
		}

	case FactAccount, FactOwner, FactEntered, FactWinner:
		acc, err := o.conn.Acquire(ctx, true)
		if err != nil {
			return nil, err
		}
		switch f {
		case FactAccount:
			return AccountMsg{Account: acc.Address()}, nil
		case FactOwner:
			owner, err := o.gw.Owner(ctx, acc)
			return OwnerMsg{Owner: owner, Account: acc.Address()}, err
		case FactEntered:
			n, err := o.gw.OwnerEntryCount(ctx, acc, acc.Address())
			return EnteredMsg{Account: acc.Address(), Count: n}, err
		default:
			amount, err := o.gw.OwnerPrizeAmount(ctx, acc, acc.Address())
			return PrizeMsg{Account: acc.Address(), Amount: amount}, err
		}
	}
	return nil, errors.New("unknown fact " + string(f))
}

// submit sends op signed by account. Nothing is sent if the wallet has
// since switched to another account.
func (o *ops) submit(op Op, account common.Address) tea.Cmd {
	return func() tea.Msg {
		acc, err := o.conn.Acquire(o.ctx, true)
		if err != nil {
			return TxFailedMsg{Op: op, Err: err}
		}
		if acc.Address() != account {
			return TxFailedMsg{Op: op, Err: ErrAccountChanged}
		}
		var hash common.Hash
		switch op {
		case OpSubmitEntry:
			hash, err = o.gw.SubmitEntry(o.ctx, acc, lottery.EntryFee)
		case OpWithdraw:
			hash, err = o.gw.WithdrawPrizeMoney(o.ctx, acc)
		case OpAssignWinner:
			hash, err = o.gw.AssignWinner(o.ctx, acc)
		}
		if err != nil {
			return TxFailedMsg{Op: op, Err: err}
		}
		return TxSubmittedMsg{Op: op, Hash: hash}
	}
}

// wait blocks until the transaction is mined. There is no timeout; only
// session teardown cancels it.
func (o *ops) wait(op Op, hash common.Hash) tea.Cmd {
	return func() tea.Msg {
		acc, err := o.conn.Acquire(o.ctx, false)
		if err != nil {
			return TxFailedMsg{Op: op, Err: err}
		}
		if _, err := o.gw.WaitMined(o.ctx, acc, hash, o.cfg.ReceiptInterval); err != nil {
			return TxFailedMsg{Op: op, Err: err}
		}
		return TxConfirmedMsg{Op: op, Hash: hash}
	}
}
