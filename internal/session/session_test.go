package session_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sclottery/lottery-tui/internal/chain"
	"github.com/sclottery/lottery-tui/internal/lottery"
	"github.com/sclottery/lottery-tui/internal/notify"
	"github.com/sclottery/lottery-tui/internal/session"
	"github.com/sclottery/lottery-tui/internal/wallet"
	"github.com/sclottery/lottery-tui/internal/wallet/wallettest"
)

var (
	player   = common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	stranger = common.HexToAddress("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")
	contract = common.HexToAddress("0xd9145CCE52D386f254917e481eB44e9943F39138")
)

type notice struct {
	level notify.Level
	text  string
}

type recorder struct {
	mu      sync.Mutex
	notices []notice
}

func (r *recorder) Notify(level notify.Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{level, text})
}

func (r *recorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.text)
	}
	return out
}

type harness struct {
	fake  *wallettest.Fake
	notes *recorder
	sess  *session.Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	parsed, err := lottery.LoadABI("")
	require.NoError(t, err)

	fake := wallettest.New(parsed, 4, player)
	fake.SetRead(lottery.MethodOwner, stranger)
	fake.SetRead(lottery.MethodMinEntryCount, big.NewInt(3))
	fake.SetRead(lottery.MethodOwnerEntryCount, big.NewInt(0))
	fake.SetRead(lottery.MethodOwnerPrizeAmount, big.NewInt(0))
	fake.SetRead(lottery.MethodEntryCount, big.NewInt(2))
	fake.SetRead(lottery.MethodState, uint8(0))

	notes := &recorder{}
	log := zaptest.NewLogger(t)
	dial := func(context.Context) (wallet.Provider, error) { return fake, nil }
	mgr := chain.NewManager(dial, chain.NewGuard(big.NewInt(4), "", notes), log)

	cfg := session.DefaultConfig()
	cfg.ReceiptInterval = time.Millisecond
	sess := session.New(mgr, lottery.NewGateway(contract, parsed), session.Options{
		Config:   cfg,
		Logger:   log,
		Notifier: notes,
	})
	t.Cleanup(sess.Close)
	return &harness{fake: fake, notes: notes, sess: &sess}
}

func (h *harness) connect(t *testing.T) {
	t.Helper()
	h.sess.Drive(h.sess.Connect(), nil)
	require.True(t, h.sess.State().Connected)
}

func TestConnectReadsFacts(t *testing.T) {
	h := newHarness(t)
	h.connect(t)

	s := h.sess.State()
	assert.Equal(t, player, s.Account)
	assert.False(t, s.IsOwner)
	assert.Equal(t, uint64(3), s.MinEntryCount)
	assert.False(t, s.HasEntered)
	assert.Equal(t, lottery.PhaseOpen, s.Phase)
	assert.Equal(t, 1, h.fake.RequestCount())
	assert.Equal(t, []string{
		lottery.MethodOwner,
		lottery.MethodMinEntryCount,
		lottery.MethodOwnerEntryCount,
		lottery.MethodState,
	}, h.fake.Calls())
}

func TestConnectIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	assert.Nil(t, h.sess.Connect())
	assert.Equal(t, 1, h.fake.RequestCount())
}

func TestConnectWrongNetwork(t *testing.T) {
	h := newHarness(t)
	h.fake.SetChainID(1)

	var seen []tea.Msg
	h.sess.Drive(h.sess.Connect(), func(msg tea.Msg) { seen = append(seen, msg) })

	assert.False(t, h.sess.State().Connected)
	assert.Empty(t, h.fake.Calls())
	assert.Equal(t, []string{"Change the network to Rinkeby"}, h.notes.texts())
	require.Len(t, seen, 1)
	failed, ok := seen[0].(session.ConnectFailedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, chain.ErrWrongNetwork)
}

func TestConnectRejected(t *testing.T) {
	h := newHarness(t)
	h.fake.Reject(true)
	h.sess.Drive(h.sess.Connect(), nil)

	assert.Equal(t, session.NewState(), h.sess.State())
	assert.Empty(t, h.fake.Calls())
}

func TestOwnerComparisonIgnoresCase(t *testing.T) {
	h := newHarness(t)
	h.fake.SetRead(lottery.MethodOwner, common.HexToAddress(strings.ToLower(player.Hex())))
	h.connect(t)
	assert.True(t, h.sess.State().IsOwner)
}

func TestDerivedFlags(t *testing.T) {
	tests := []struct {
		name    string
		msg     tea.Msg
		entered bool
		winner  bool
	}{
		{name: "no entry", msg: session.EnteredMsg{Account: player, Count: big.NewInt(0)}},
		{name: "one entry", msg: session.EnteredMsg{Account: player, Count: big.NewInt(1)}, entered: true},
		{name: "two entries", msg: session.EnteredMsg{Account: player, Count: big.NewInt(2)}},
		{name: "no prize", msg: session.PrizeMsg{Account: player, Amount: big.NewInt(0)}},
		{name: "prize", msg: session.PrizeMsg{Account: player, Amount: big.NewInt(1)}, winner: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.connect(t)
			h.sess.Update(tt.msg)
			assert.Equal(t, tt.entered, h.sess.State().HasEntered)
			assert.Equal(t, tt.winner, h.sess.State().IsWinner)
		})
	}
}

func TestOwnerNeedsAccount(t *testing.T) {
	h := newHarness(t)
	h.sess.Update(session.OwnerMsg{})
	assert.False(t, h.sess.State().IsOwner)
}

func TestReadFailureKeepsLastValue(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	h.sess.Drive(h.sess.Refresh(session.FactEntryCount), nil)
	require.Equal(t, uint64(2), h.sess.State().EntryCount)

	h.fake.FailRead(lottery.MethodEntryCount, errors.New("rpc down"))
	h.sess.Drive(h.sess.Refresh(session.FactEntryCount), nil)
	assert.Equal(t, uint64(2), h.sess.State().EntryCount)
}

func TestSubmitEntry(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	h.fake.SetRead(lottery.MethodEntryCount, big.NewInt(3))
	h.fake.SetRead(lottery.MethodOwnerEntryCount, big.NewInt(1))

	h.sess.Drive(h.sess.Submit(session.OpSubmitEntry), nil)

	s := h.sess.State()
	assert.False(t, s.Pending)
	assert.False(t, h.sess.Busy())
	assert.True(t, s.HasEntered)
	assert.Equal(t, uint64(3), s.EntryCount)
	assert.Equal(t, []string{"You successfully entered the lottery!"}, h.notes.texts())

	sends := h.fake.Sends()
	require.Len(t, sends, 1)
	assert.Equal(t, 0, sends[0].Value.Cmp(lottery.EntryFee))
}

func TestWithdraw(t *testing.T) {
	h := newHarness(t)
	h.fake.SetRead(lottery.MethodOwnerPrizeAmount, big.NewInt(5))
	h.connect(t)
	h.sess.Drive(h.sess.Refresh(session.FactWinner), nil)
	require.True(t, h.sess.State().IsWinner)

	h.fake.SetRead(lottery.MethodOwnerPrizeAmount, big.NewInt(0))
	h.sess.Drive(h.sess.Submit(session.OpWithdraw), nil)

	assert.False(t, h.sess.State().IsWinner)
	assert.Equal(t, []string{"You successfully withdrew your prize money!"}, h.notes.texts())
}

func TestAssignWinner(t *testing.T) {
	h := newHarness(t)
	h.fake.SetRead(lottery.MethodOwner, player)
	h.connect(t)
	require.True(t, h.sess.State().IsOwner)

	h.fake.SetRead(lottery.MethodState, uint8(1))
	h.fake.SetRead(lottery.MethodEntryCount, big.NewInt(0))
	h.sess.Drive(h.sess.Submit(session.OpAssignWinner), nil)

	s := h.sess.State()
	assert.Equal(t, lottery.PhasePaused, s.Phase)
	assert.Equal(t, uint64(0), s.EntryCount)
	assert.Equal(t, []string{"You've initiated the process to select a winner!"}, h.notes.texts())
}

func TestNoDoubleSubmit(t *testing.T) {
	h := newHarness(t)
	h.connect(t)

	first := h.sess.Submit(session.OpSubmitEntry)
	require.NotNil(t, first)
	assert.Nil(t, h.sess.Submit(session.OpSubmitEntry), "second press before the wallet answers")

	submitted := first()
	require.IsType(t, session.TxSubmittedMsg{}, submitted)
	wait := h.sess.Update(submitted)
	require.NotNil(t, wait)
	assert.True(t, h.sess.State().Pending)
	assert.Nil(t, h.sess.Submit(session.OpSubmitEntry), "second press while pending")

	// A poll landing mid-transaction must not clear Pending.
	h.sess.Update(session.EntryCountMsg{Count: 9})
	assert.True(t, h.sess.State().Pending)

	assert.Len(t, h.fake.Sends(), 1)
}

func TestFailedSubmitLeavesState(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	before := h.sess.State()

	h.fake.FailSend(wallet.ErrRejected)
	h.sess.Drive(h.sess.Submit(session.OpSubmitEntry), nil)

	assert.Equal(t, before, h.sess.State())
	assert.False(t, h.sess.Busy())
	assert.Empty(t, h.notes.texts())
}

func TestRevertedSubmitLeavesState(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	before := h.sess.State()

	h.fake.SetReceipt(types.ReceiptStatusFailed, 1)
	var failed []session.TxFailedMsg
	h.sess.Drive(h.sess.Submit(session.OpSubmitEntry), func(msg tea.Msg) {
		if f, ok := msg.(session.TxFailedMsg); ok {
			failed = append(failed, f)
		}
	})

	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, lottery.ErrTransactionFailed)
	assert.Equal(t, before, h.sess.State())
	assert.Empty(t, h.notes.texts())
}

func TestSubmitRequiresConnection(t *testing.T) {
	h := newHarness(t)
	assert.Nil(t, h.sess.Submit(session.OpSubmitEntry))
	assert.Nil(t, h.sess.Refresh(session.FactPhase))
}

func TestCloseReleasesWallet(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	h.sess.Close()
	assert.True(t, h.fake.Closed())
}

func TestCloseTwice(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	h.sess.Close()
	assert.NotPanics(t, h.sess.Close)
}

func TestSubmitOnWrongNetwork(t *testing.T) {
	h := newHarness(t)
	h.connect(t)
	before := h.sess.State()

	h.fake.SetChainID(1)
	h.sess.Drive(h.sess.Submit(session.OpSubmitEntry), nil)

	assert.Empty(t, h.fake.Sends())
	assert.False(t, h.sess.Busy())
	assert.Equal(t, before, h.sess.State())
	assert.Equal(t, []string{"Change the network to Rinkeby"}, h.notes.texts())
}

func TestAccountSwitchRebindsSession(t *testing.T) {
	h := newHarness(t)
	h.fake.SetRead(lottery.MethodOwnerPrizeAmount, big.NewInt(7))
	h.connect(t)
	h.sess.Drive(h.sess.Refresh(session.FactWinner), nil)
	require.True(t, h.sess.State().IsWinner)
	require.False(t, h.sess.State().IsOwner)

	// stranger owns the contract in this harness and has no prize.
	h.fake.SetAccount(stranger)
	h.fake.SetRead(lottery.MethodOwnerPrizeAmount, big.NewInt(0))
	h.sess.Drive(h.sess.Refresh(session.FactWinner), nil)

	s := h.sess.State()
	assert.True(t, s.Connected)
	assert.Equal(t, stranger, s.Account)
	assert.True(t, s.IsOwner)
	assert.False(t, s.IsWinner)
	assert.False(t, s.HasEntered)
	assert.Equal(t, 1, h.fake.RequestCount())
}

func TestLateReadForOtherAccountIsDropped(t *testing.T) {
	h := newHarness(t)
	h.connect(t)

	late := func() tea.Msg { return session.PrizeMsg{Account: stranger, Amount: big.NewInt(5)} }
	h.sess.Drive(late, nil)

	s := h.sess.State()
	assert.Equal(t, player, s.Account)
	assert.False(t, s.IsWinner)
}

func TestSubmitAfterAccountSwitch(t *testing.T) {
	h := newHarness(t)
	h.fake.SetRead(lottery.MethodOwnerPrizeAmount, big.NewInt(7))
	h.connect(t)
	h.sess.Drive(h.sess.Refresh(session.FactWinner), nil)
	require.True(t, h.sess.State().IsWinner)

	h.fake.SetAccount(stranger)
	h.fake.SetRead(lottery.MethodOwnerPrizeAmount, big.NewInt(0))
	var failed []error
	h.sess.Drive(h.sess.Submit(session.OpWithdraw), func(msg tea.Msg) {
		if f, ok := msg.(session.TxFailedMsg); ok {
			failed = append(failed, f.Err)
		}
	})

	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], session.ErrAccountChanged)
	assert.Empty(t, h.fake.Sends())
	assert.False(t, h.sess.Busy())
	assert.Equal(t, stranger, h.sess.State().Account)
	assert.False(t, h.sess.State().IsWinner)
	assert.Empty(t, h.notes.texts())
}

func TestDescribe(t *testing.T) {
	events := session.Describe(session.TxFailedMsg{Op: session.OpWithdraw, Err: errors.New("boom")})
	require.Len(t, events, 1)
	assert.Equal(t, "err", events[0].Kind)
	assert.Equal(t, "withdrawPrizeMoney failed: boom", events[0].Text)

	events = session.Describe(session.AccountMsg{Account: stranger})
	require.Len(t, events, 1)
	assert.Equal(t, "conn", events[0].Kind)
	assert.Equal(t, "wallet account "+stranger.Hex(), events[0].Text)

	assert.Nil(t, session.Describe(tea.KeyMsg{}))
}
