// Package chain owns the wallet connection and makes sure every accessor
// handed out is on the required network.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/sclottery/lottery-tui/internal/notify"
)

// ErrWrongNetwork is matched by every network mismatch.
var ErrWrongNetwork = errors.New("wrong network")

var networkNames = map[int64]string{
	1:        "Ethereum Mainnet",
	4:        "Rinkeby",
	5:        "Goerli",
	137:      "Polygon",
	31337:    "Hardhat",
	80001:    "Mumbai",
	11155111: "Sepolia",
}

// NetworkName returns a display name for a chain ID.
func NetworkName(id *big.Int) string {
	if id != nil && id.IsInt64() {
		if name, ok := networkNames[id.Int64()]; ok {
			return name
		}
	}
	return fmt.Sprintf("chain %s", id)
}

// WrongNetworkError reports the chain the wallet is on versus the one the
// lottery lives on.
type WrongNetworkError struct {
	Want *big.Int
	Got  *big.Int
}

func (e *WrongNetworkError) Error() string {
	return fmt.Sprintf("wallet is on %s, lottery requires %s", NetworkName(e.Got), NetworkName(e.Want))
}

func (e *WrongNetworkError) Is(target error) bool { return target == ErrWrongNetwork }

// ChainReader is the part of a provider the guard needs.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Guard validates that a provider is on the required chain.
type Guard struct {
	want     *big.Int
	name     string
	notifier notify.Notifier
}

// NewGuard creates a guard for chainID. An empty name falls back to
// NetworkName.
func NewGuard(chainID *big.Int, name string, notifier notify.Notifier) *Guard {
	if name == "" {
		name = NetworkName(chainID)
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Guard{want: new(big.Int).Set(chainID), name: name, notifier: notifier}
}

// Name is the display name of the required network.
func (g *Guard) Name() string { return g.name }

// ChainID is the required chain.
func (g *Guard) ChainID() *big.Int { return new(big.Int).Set(g.want) }

// Validate fails with a *WrongNetworkError, after notifying the user, when
// p is on any chain other than the required one.
func (g *Guard) Validate(ctx context.Context, p ChainReader) error {
	got, err := p.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("read network: %w", err)
	}
	if got.Cmp(g.want) != 0 {
		g.notifier.Notify(notify.Warn, "Change the network to "+g.name)
		return &WrongNetworkError{Want: g.ChainID(), Got: got}
	}
	return nil
}
