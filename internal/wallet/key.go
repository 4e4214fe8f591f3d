package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrNoKey is returned when the key environment variable is unset.
var ErrNoKey = errors.New("wallet: private key not configured")

// KeyProvider signs locally with a single key and talks to a node over
// ethclient. It never prompts, so RequestAccounts always succeeds.
type KeyProvider struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	account common.Address
}

// KeyFromEnv reads a hex private key from the named environment variable.
func KeyFromEnv(name string) (*ecdsa.PrivateKey, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoKey, name)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return key, nil
}

// DialKeyed connects to the node at rpcURL and binds key to it.
func DialKeyed(ctx context.Context, rpcURL string, key *ecdsa.PrivateKey) (*KeyProvider, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial node %s: %w", rpcURL, err)
	}
	return &KeyProvider{
		client:  client,
		key:     key,
		account: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (p *KeyProvider) RequestAccounts(context.Context) ([]common.Address, error) {
	return []common.Address{p.account}, nil
}

func (p *KeyProvider) Accounts(context.Context) ([]common.Address, error) {
	return []common.Address{p.account}, nil
}

func (p *KeyProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.client.ChainID(ctx)
}

func (p *KeyProvider) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return p.client.CallContract(ctx, msg, nil)
}

// SendTransaction builds, signs and broadcasts an EIP-1559 transaction.
func (p *KeyProvider) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	if msg.From != (common.Address{}) && msg.From != p.account {
		return common.Hash{}, fmt.Errorf("wallet: cannot sign for %s", msg.From.Hex())
	}
	msg.From = p.account

	chainID, err := p.client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain id: %w", err)
	}
	nonce, err := p.client.PendingNonceAt(ctx, p.account)
	if err != nil {
		return common.Hash{}, fmt.Errorf("nonce: %w", err)
	}
	gas, err := p.client.EstimateGas(ctx, msg)
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}
	tip, err := p.client.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("gas tip: %w", err)
	}
	head, err := p.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("latest header: %w", err)
	}
	baseFee := head.BaseFee
	if baseFee == nil {
		baseFee = new(big.Int)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(baseFee, big.NewInt(2)))

	value := msg.Value
	if value == nil {
		value = new(big.Int)
	}
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        msg.To,
		Value:     value,
		Data:      msg.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), p.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign: %w", err)
	}
	if err := p.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}
	return signed.Hash(), nil
}

func (p *KeyProvider) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return p.client.TransactionReceipt(ctx, hash)
}

func (p *KeyProvider) Close() {
	p.client.Close()
}
