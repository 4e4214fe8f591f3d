package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second

	codeUserRejected = 4001
	codeUnauthorized = 4100
)

var errClosed = errors.New("wallet: connection closed")

// RPCError is a JSON-RPC error object returned by the wallet.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wallet rpc error %d: %s", e.Code, e.Message)
}

// Is reports user-rejection codes as ErrRejected.
func (e *RPCError) Is(target error) bool {
	return target == ErrRejected && (e.Code == codeUserRejected || e.Code == codeUnauthorized)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	ID     *uint64         `json:"id"`
	Method string          `json:"method,omitempty"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

type callArgs struct {
	From  *common.Address `json:"from,omitempty"`
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
}

type rpcReceipt struct {
	TransactionHash common.Hash    `json:"transactionHash"`
	BlockNumber     *hexutil.Big   `json:"blockNumber"`
	Status          hexutil.Uint64 `json:"status"`
}

// WSProvider talks JSON-RPC to a wallet over a single WebSocket connection.
// Calls may be issued concurrently; responses are matched by request ID.
type WSProvider struct {
	url string
	log *zap.Logger

	mu       sync.Mutex
	writeMu  sync.Mutex // serialises all conn writes
	conn     *websocket.Conn
	nextID   uint64
	inflight map[uint64]chan rpcResponse
}

// DialWS connects to the wallet at url.
func DialWS(ctx context.Context, url string, log *zap.Logger) (*WSProvider, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial wallet %s: %w", url, err)
	}
	p := &WSProvider{
		url:      url,
		log:      log,
		conn:     conn,
		inflight: make(map[uint64]chan rpcResponse),
	}
	go p.readLoop(conn)
	return p, nil
}

// readLoop routes responses to their callers until the connection drops.
func (p *WSProvider) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			p.log.Debug("wallet connection closed", zap.String("url", p.url), zap.Error(err))
			p.failAll(conn)
			return
		}

		var resp rpcResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			p.log.Warn("malformed wallet message", zap.Error(err))
			continue
		}
		if resp.ID == nil {
			// accountsChanged, chainChanged and friends. Every acquisition
			// re-reads accounts and chain, so these are only logged.
			p.log.Debug("wallet notification", zap.String("method", resp.Method))
			continue
		}

		p.mu.Lock()
		ch, ok := p.inflight[*resp.ID]
		delete(p.inflight, *resp.ID)
		p.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

func (p *WSProvider) failAll(conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == conn {
		p.conn = nil
	}
	for id, ch := range p.inflight {
		close(ch)
		delete(p.inflight, id)
	}
	conn.Close()
}

func (p *WSProvider) call(ctx context.Context, out any, method string, params ...any) error {
	if params == nil {
		params = []any{}
	}
	ch := make(chan rpcResponse, 1)

	p.mu.Lock()
	conn := p.conn
	if conn == nil {
		p.mu.Unlock()
		return errClosed
	}
	p.nextID++
	id := p.nextID
	p.inflight[id] = ch
	p.mu.Unlock()

	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	p.writeMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := conn.WriteJSON(req)
	p.writeMu.Unlock()
	if err != nil {
		p.forget(id)
		return fmt.Errorf("%s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		p.forget(id)
		return ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return fmt.Errorf("%s: %w", method, errClosed)
		}
		if resp.Error != nil {
			return resp.Error
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
		return nil
	}
}

func (p *WSProvider) forget(id uint64) {
	p.mu.Lock()
	delete(p.inflight, id)
	p.mu.Unlock()
}

func (p *WSProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var out []common.Address
	if err := p.call(ctx, &out, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *WSProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	var out []common.Address
	if err := p.call(ctx, &out, "eth_accounts"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *WSProvider) ChainID(ctx context.Context) (*big.Int, error) {
	var out hexutil.Big
	if err := p.call(ctx, &out, "eth_chainId"); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

func (p *WSProvider) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	var out hexutil.Bytes
	if err := p.call(ctx, &out, "eth_call", toCallArgs(msg), "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *WSProvider) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	var out common.Hash
	if err := p.call(ctx, &out, "eth_sendTransaction", toCallArgs(msg)); err != nil {
		return common.Hash{}, err
	}
	return out, nil
}

func (p *WSProvider) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var out *rpcReceipt
	if err := p.call(ctx, &out, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ethereum.NotFound
	}
	r := &types.Receipt{
		TxHash: out.TransactionHash,
		Status: uint64(out.Status),
	}
	if out.BlockNumber != nil {
		r.BlockNumber = out.BlockNumber.ToInt()
	}
	return r, nil
}

// Close drops the connection and fails any in-flight calls.
func (p *WSProvider) Close() {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn != nil {
		p.failAll(conn)
	}
}

func toCallArgs(msg ethereum.CallMsg) callArgs {
	args := callArgs{To: msg.To, Data: msg.Data}
	if msg.From != (common.Address{}) {
		from := msg.From
		args.From = &from
	}
	if msg.Value != nil && msg.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(msg.Value)
	}
	return args
}
