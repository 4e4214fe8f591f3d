// Package lottery is the typed call surface over the external lottery
// contract. The contract is opaque: calls are packed and unpacked from its
// ABI and nothing about its internals is assumed beyond the return types.
package lottery

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/sclottery/lottery-tui/internal/chain"
)

//go:embed lottery.abi.json
var defaultABI string

// EntryFee is the fixed payment for one entry: 0.01 ether in wei.
var EntryFee = big.NewInt(10_000_000_000_000_000)

// Contract method names.
const (
	MethodState            = "state"
	MethodEntryCount       = "entryCount"
	MethodMinEntryCount    = "minEntryCount"
	MethodOwnerEntryCount  = "ownerEntryCount"
	MethodOwnerPrizeAmount = "ownerPrizeAmount"
	MethodOwner            = "owner"
	MethodSubmitEntry      = "submitEntry"
	MethodWithdraw         = "withdrawPrizeMoney"
	MethodAssignWinner     = "assignWinner"
)

// Phase mirrors the contract's lottery state enum.
type Phase uint8

const (
	PhaseOpen   Phase = 0
	PhasePaused Phase = 1
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "OPEN"
	case PhasePaused:
		return "PAUSED"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// LoadABI parses the contract ABI at path, or the bundled one when path is
// empty.
func LoadABI(path string) (abi.ABI, error) {
	src := defaultABI
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return abi.ABI{}, err
		}
		src = string(data)
	}
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse contract abi: %w", err)
	}
	for _, name := range []string{
		MethodState, MethodEntryCount, MethodMinEntryCount, MethodOwnerEntryCount,
		MethodOwnerPrizeAmount, MethodOwner, MethodSubmitEntry, MethodWithdraw, MethodAssignWinner,
	} {
		if _, ok := parsed.Methods[name]; !ok {
			return abi.ABI{}, fmt.Errorf("contract abi has no method %q", name)
		}
	}
	return parsed, nil
}

// Gateway performs typed calls against one deployed lottery contract.
type Gateway struct {
	address common.Address
	abi     abi.ABI
}

// NewGateway binds the gateway to the contract at address.
func NewGateway(address common.Address, contract abi.ABI) *Gateway {
	return &Gateway{address: address, abi: contract}
}

// Address is the contract address.
func (g *Gateway) Address() common.Address { return g.address }

// Phase reads whether the lottery is open or paused.
func (g *Gateway) Phase(ctx context.Context, acc *chain.Accessor) (Phase, error) {
	out, err := g.read(ctx, acc, MethodState)
	if err != nil {
		return 0, err
	}
	v, ok := out.(uint8)
	if !ok || v > uint8(PhasePaused) {
		return 0, unexpected(MethodState, out)
	}
	return Phase(v), nil
}

// EntryCount reads the number of entries in the current round.
func (g *Gateway) EntryCount(ctx context.Context, acc *chain.Accessor) (uint64, error) {
	return g.readUint64(ctx, acc, MethodEntryCount)
}

// MinEntryCount is the number of entries needed before a winner can be
// assigned. A zero threshold is rejected as malformed.
func (g *Gateway) MinEntryCount(ctx context.Context, acc *chain.Accessor) (uint64, error) {
	n, err := g.readUint64(ctx, acc, MethodMinEntryCount)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, unexpected(MethodMinEntryCount, n)
	}
	return n, nil
}

// OwnerEntryCount returns how many entries addr holds.
func (g *Gateway) OwnerEntryCount(ctx context.Context, acc *chain.Accessor, addr common.Address) (*big.Int, error) {
	return g.readBig(ctx, acc, MethodOwnerEntryCount, addr)
}

// OwnerPrizeAmount returns the unclaimed prize for addr in wei.
func (g *Gateway) OwnerPrizeAmount(ctx context.Context, acc *chain.Accessor, addr common.Address) (*big.Int, error) {
	return g.readBig(ctx, acc, MethodOwnerPrizeAmount, addr)
}

// Owner reads the contract owner's address.
func (g *Gateway) Owner(ctx context.Context, acc *chain.Accessor) (common.Address, error) {
	out, err := g.read(ctx, acc, MethodOwner)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := out.(common.Address)
	if !ok {
		return common.Address{}, unexpected(MethodOwner, out)
	}
	return addr, nil
}

// SubmitEntry sends submitEntry with value attached.
func (g *Gateway) SubmitEntry(ctx context.Context, acc *chain.Accessor, value *big.Int) (common.Hash, error) {
	return g.transact(ctx, acc, MethodSubmitEntry, value)
}

// WithdrawPrizeMoney sends withdrawPrizeMoney for the signing account.
func (g *Gateway) WithdrawPrizeMoney(ctx context.Context, acc *chain.Accessor) (common.Hash, error) {
	return g.transact(ctx, acc, MethodWithdraw, nil)
}

// AssignWinner sends assignWinner. Only the owner may call it.
func (g *Gateway) AssignWinner(ctx context.Context, acc *chain.Accessor) (common.Hash, error) {
	return g.transact(ctx, acc, MethodAssignWinner, nil)
}

// WaitMined polls for the receipt of hash every interval until it is mined
// or ctx ends. A reverted transaction fails with ErrTransactionFailed.
func (g *Gateway) WaitMined(ctx context.Context, acc *chain.Accessor, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		receipt, err := acc.Provider().TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, &TxError{Hash: hash, Err: errors.New("reverted")}
			}
			return receipt, nil
		case !errors.Is(err, ethereum.NotFound):
			return nil, &TxError{Hash: hash, Err: err}
		}

		select {
		case <-ctx.Done():
			return nil, &TxError{Hash: hash, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}

func (g *Gateway) read(ctx context.Context, acc *chain.Accessor, method string, args ...any) (any, error) {
	data, err := g.abi.Pack(method, args...)
	if err != nil {
		return nil, &ReadError{Method: method, Err: err}
	}
	msg := ethereum.CallMsg{From: acc.Address(), To: &g.address, Data: data}
	raw, err := acc.Provider().CallContract(ctx, msg)
	if err != nil {
		return nil, &ReadError{Method: method, Err: err}
	}
	values, err := g.abi.Unpack(method, raw)
	if err != nil {
		return nil, &ReadError{Method: method, Err: fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)}
	}
	if len(values) != 1 {
		return nil, unexpected(method, values)
	}
	return values[0], nil
}

func (g *Gateway) readBig(ctx context.Context, acc *chain.Accessor, method string, args ...any) (*big.Int, error) {
	out, err := g.read(ctx, acc, method, args...)
	if err != nil {
		return nil, err
	}
	v, ok := out.(*big.Int)
	if !ok || v == nil || v.Sign() < 0 {
		return nil, unexpected(method, out)
	}
	return v, nil
}

// readUint64 narrows a uint256 result, refusing values that do not fit.
func (g *Gateway) readUint64(ctx context.Context, acc *chain.Accessor, method string) (uint64, error) {
	v, err := g.readBig(ctx, acc, method)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, unexpected(method, v)
	}
	return v.Uint64(), nil
}

func (g *Gateway) transact(ctx context.Context, acc *chain.Accessor, method string, value *big.Int) (common.Hash, error) {
	if !acc.CanSign() {
		return common.Hash{}, &TxError{Method: method, Err: ErrNotSigner}
	}
	data, err := g.abi.Pack(method)
	if err != nil {
		return common.Hash{}, &TxError{Method: method, Err: err}
	}
	msg := ethereum.CallMsg{From: acc.Address(), To: &g.address, Value: value, Data: data}
	hash, err := acc.Provider().SendTransaction(ctx, msg)
	if err != nil {
		return common.Hash{}, &TxError{Method: method, Err: err}
	}
	return hash, nil
}
