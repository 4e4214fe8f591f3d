// Package wallet is the wallet-provider boundary: the thing that holds the
// user's account, knows which chain it is on, and signs transactions.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrRejected is returned when the user declines a wallet prompt.
var ErrRejected = errors.New("wallet: user rejected the request")

// Provider is the subset of an EIP-1193 wallet the client needs.
type Provider interface {
	// RequestAccounts asks the wallet to expose accounts, prompting the
	// user if it has not done so yet.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Accounts returns the currently exposed accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	// SendTransaction has the wallet sign and broadcast msg from msg.From.
	SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error)
	// TransactionReceipt returns ethereum.NotFound while the transaction
	// is not yet mined.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	Close()
}
