package chain

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sclottery/lottery-tui/internal/notify"
	"github.com/sclottery/lottery-tui/internal/wallet"
	"github.com/sclottery/lottery-tui/internal/wallet/wallettest"
)

var account = common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")

type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *recordingNotifier) Notify(_ notify.Level, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
}

func newFake(t *testing.T, chainID int64) *wallettest.Fake {
	t.Helper()
	empty, err := abi.JSON(strings.NewReader("[]"))
	require.NoError(t, err)
	return wallettest.New(empty, chainID, account)
}

func newManager(t *testing.T, fake *wallettest.Fake, n *recordingNotifier) (*Manager, *int) {
	dials := 0
	dial := func(context.Context) (wallet.Provider, error) {
		dials++
		return fake, nil
	}
	guard := NewGuard(big.NewInt(4), "", n)
	return NewManager(dial, guard, zaptest.NewLogger(t)), &dials
}

func TestNetworkName(t *testing.T) {
	assert.Equal(t, "Rinkeby", NetworkName(big.NewInt(4)))
	assert.Equal(t, "Sepolia", NetworkName(big.NewInt(11155111)))
	assert.Equal(t, "chain 777", NetworkName(big.NewInt(777)))
}

func TestGuardRejectsOtherChain(t *testing.T) {
	n := &recordingNotifier{}
	g := NewGuard(big.NewInt(4), "", n)

	err := g.Validate(context.Background(), newFake(t, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWrongNetwork))

	var wn *WrongNetworkError
	require.True(t, errors.As(err, &wn))
	assert.Equal(t, int64(1), wn.Got.Int64())
	assert.Equal(t, []string{"Change the network to Rinkeby"}, n.texts)
}

func TestGuardAcceptsRequiredChain(t *testing.T) {
	n := &recordingNotifier{}
	g := NewGuard(big.NewInt(4), "Rinkeby", n)
	assert.NoError(t, g.Validate(context.Background(), newFake(t, 4)))
	assert.Empty(t, n.texts)
}

func TestAcquireConnectsOnce(t *testing.T) {
	fake := newFake(t, 4)
	m, dials := newManager(t, fake, &recordingNotifier{})
	ctx := context.Background()

	reader, err := m.Acquire(ctx, false)
	require.NoError(t, err)
	assert.False(t, reader.CanSign())
	assert.Equal(t, common.Address{}, reader.Address())

	signer, err := m.Acquire(ctx, true)
	require.NoError(t, err)
	assert.True(t, signer.CanSign())
	assert.Equal(t, account, signer.Address())

	assert.Equal(t, 1, *dials)
	assert.Equal(t, 1, fake.RequestCount())
	assert.True(t, m.Connected())
}

func TestAcquireConcurrentSinglePrompt(t *testing.T) {
	fake := newFake(t, 4)
	m, _ := newManager(t, fake, &recordingNotifier{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Acquire(context.Background(), true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fake.RequestCount())
}

func TestAcquireRevalidatesNetwork(t *testing.T) {
	fake := newFake(t, 4)
	n := &recordingNotifier{}
	m, _ := newManager(t, fake, n)
	ctx := context.Background()

	_, err := m.Acquire(ctx, false)
	require.NoError(t, err)

	fake.SetChainID(5)
	_, err = m.Acquire(ctx, true)
	assert.ErrorIs(t, err, ErrWrongNetwork)
	assert.Len(t, n.texts, 1)
	assert.Equal(t, 1, fake.RequestCount(), "switching network must not re-prompt")
}

func TestAcquireRejected(t *testing.T) {
	fake := newFake(t, 4)
	fake.Reject(true)
	m, _ := newManager(t, fake, &recordingNotifier{})

	_, err := m.Acquire(context.Background(), true)
	assert.ErrorIs(t, err, ErrConnectionRejected)
	assert.False(t, m.Connected())
	assert.True(t, fake.Closed())

	fake.Reject(false)
	_, err = m.Acquire(context.Background(), true)
	assert.NoError(t, err)
	assert.Equal(t, 2, fake.RequestCount())
}

func TestAcquireNoAccountSelected(t *testing.T) {
	fake := newFake(t, 4)
	m, _ := newManager(t, fake, &recordingNotifier{})
	_, err := m.Acquire(context.Background(), false)
	require.NoError(t, err)

	fake.SetAccount(common.Address{})
	_, err = m.Acquire(context.Background(), true)
	assert.ErrorIs(t, err, ErrConnectionRejected)
}

func TestAcquireDialFailure(t *testing.T) {
	dial := func(context.Context) (wallet.Provider, error) {
		return nil, errors.New("connection refused")
	}
	m := NewManager(dial, NewGuard(big.NewInt(4), "", nil), zaptest.NewLogger(t))
	_, err := m.Acquire(context.Background(), false)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestCloseAllowsReconnect(t *testing.T) {
	fake := newFake(t, 4)
	m, dials := newManager(t, fake, &recordingNotifier{})
	_, err := m.Acquire(context.Background(), false)
	require.NoError(t, err)

	m.Close()
	assert.True(t, fake.Closed())
	assert.False(t, m.Connected())

	_, err = m.Acquire(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, *dials)
}
