package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/sclottery/lottery-tui/internal/wallet"
)

var (
	// ErrConnectionRejected means the user declined the wallet prompt or
	// has no account selected.
	ErrConnectionRejected = errors.New("wallet connection rejected")
	// ErrProviderUnavailable means the wallet could not be reached.
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
)

// Dialer opens a fresh wallet provider connection.
type Dialer func(ctx context.Context) (wallet.Provider, error)

// Accessor is a handle for performing contract calls. A signing accessor
// also carries the account it signs for. Accessors are per operation and
// must not be kept across calls.
type Accessor struct {
	provider wallet.Provider
	account  common.Address
	signing  bool
}

// Provider is the wallet behind this accessor.
func (a *Accessor) Provider() wallet.Provider { return a.provider }

// CanSign reports whether writes may be sent through this accessor.
func (a *Accessor) CanSign() bool { return a.signing }

// Address is the connected account. It is the zero address for read-only
// accessors.
func (a *Accessor) Address() common.Address { return a.account }

// Manager hands out network-validated accessors over one lazily
// established wallet connection.
type Manager struct {
	dial  Dialer
	guard *Guard
	log   *zap.Logger

	mu       sync.Mutex // held across dial so only one prompt is ever shown
	provider wallet.Provider
}

// NewManager creates a manager. Nothing is dialled until the first Acquire.
func NewManager(dial Dialer, guard *Guard, log *zap.Logger) *Manager {
	return &Manager{dial: dial, guard: guard, log: log}
}

// Guard returns the network guard used for every acquisition.
func (m *Manager) Guard() *Guard { return m.guard }

// Acquire returns a read-only accessor, or a signing one bound to the
// wallet's selected account when needSigning is set. The network is
// re-validated on every call.
func (m *Manager) Acquire(ctx context.Context, needSigning bool) (*Accessor, error) {
	p, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.guard.Validate(ctx, p); err != nil {
		return nil, err
	}
	if !needSigning {
		return &Accessor{provider: p}, nil
	}

	accounts, err := p.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no account selected", ErrConnectionRejected)
	}
	return &Accessor{provider: p, account: accounts[0], signing: true}, nil
}

// Connected reports whether the wallet connection has been established.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.provider != nil
}

func (m *Manager) connect(ctx context.Context) (wallet.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.provider != nil {
		return m.provider, nil
	}

	p, err := m.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	accounts, err := p.RequestAccounts(ctx)
	if err != nil {
		p.Close()
		if errors.Is(err, wallet.ErrRejected) {
			return nil, fmt.Errorf("%w: %v", ErrConnectionRejected, err)
		}
		return nil, fmt.Errorf("request accounts: %w", err)
	}
	m.log.Info("wallet connected", zap.Int("accounts", len(accounts)))
	m.provider = p
	return p, nil
}

// Close tears down the wallet connection. A later Acquire reconnects.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.provider != nil {
		m.provider.Close()
		m.provider = nil
	}
}
