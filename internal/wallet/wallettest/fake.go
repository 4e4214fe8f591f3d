// Package wallettest provides an in-memory wallet provider that answers
// contract calls from canned values, encoded with the real contract ABI.
package wallettest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/sclottery/lottery-tui/internal/wallet"
)

// ErrReverted is returned for reads that have no canned value.
var ErrReverted = errors.New("execution reverted")

// Fake is a scriptable wallet.Provider. All fields may be changed between
// calls through the setters; they are guarded by a mutex.
type Fake struct {
	mu sync.Mutex

	abi      abi.ABI
	chainID  int64
	account  common.Address
	reject   bool
	reads    map[string][]any
	readErrs map[string]error
	sendErr  error

	receiptStatus uint64
	pendingPolls  int
	sent          int

	requestCount int
	calls        []string
	sends        []ethereum.CallMsg
	closed       bool
}

// New creates a fake on chainID with account selected.
func New(contract abi.ABI, chainID int64, account common.Address) *Fake {
	return &Fake{
		abi:           contract,
		chainID:       chainID,
		account:       account,
		reads:         make(map[string][]any),
		readErrs:      make(map[string]error),
		receiptStatus: types.ReceiptStatusSuccessful,
	}
}

var _ wallet.Provider = (*Fake)(nil)

// SetRead sets the values returned by the named contract method.
func (f *Fake) SetRead(method string, values ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads[method] = values
	delete(f.readErrs, method)
}

// FailRead makes the named contract method fail with err.
func (f *Fake) FailRead(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErrs[method] = err
}

func (f *Fake) SetChainID(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chainID = id
}

func (f *Fake) SetAccount(a common.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.account = a
}

// Reject makes RequestAccounts fail as if the user declined.
func (f *Fake) Reject(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reject = v
}

func (f *Fake) FailSend(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

// SetReceipt sets the status of mined receipts and how many receipt polls
// report the transaction as still pending.
func (f *Fake) SetReceipt(status uint64, pendingPolls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receiptStatus = status
	f.pendingPolls = pendingPolls
}

// RequestCount reports how many times the wallet prompted.
func (f *Fake) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestCount
}

// Calls returns the contract read methods invoked so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Sends returns the transactions submitted so far.
func (f *Fake) Sends() []ethereum.CallMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ethereum.CallMsg(nil), f.sends...)
}

func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Fake) RequestAccounts(context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestCount++
	if f.reject {
		return nil, wallet.ErrRejected
	}
	return []common.Address{f.account}, nil
}

func (f *Fake) Accounts(context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.account == (common.Address{}) {
		return nil, nil
	}
	return []common.Address{f.account}, nil
}

func (f *Fake) ChainID(context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return big.NewInt(f.chainID), nil
}

func (f *Fake) CallContract(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
	method, err := f.method(msg.Data)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method.Name)
	if err := f.readErrs[method.Name]; err != nil {
		return nil, err
	}
	values, ok := f.reads[method.Name]
	if !ok {
		return nil, ErrReverted
	}
	return method.Outputs.Pack(values...)
}

func (f *Fake) SendTransaction(_ context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	if _, err := f.method(msg.Data); err != nil {
		return common.Hash{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.sends = append(f.sends, msg)
	f.sent++
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("tx-%d", f.sent))), nil
}

func (f *Fake) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pendingPolls > 0 {
		f.pendingPolls--
		return nil, ethereum.NotFound
	}
	return &types.Receipt{TxHash: hash, Status: f.receiptStatus, BlockNumber: big.NewInt(1)}, nil
}

func (f *Fake) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *Fake) method(data []byte) (*abi.Method, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("call data too short: %d bytes", len(data))
	}
	return f.abi.MethodById(data[:4])
}
