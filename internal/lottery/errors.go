package lottery

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrReadFailed matches every failed contract read: transport errors,
	// timeouts, reverts and malformed results.
	ErrReadFailed = errors.New("contract read failed")
	// ErrUnexpectedResponse matches reads whose result could not be
	// decoded or is out of range. Such reads also match ErrReadFailed.
	ErrUnexpectedResponse = errors.New("unexpected contract response")
	// ErrTransactionFailed matches writes that were not sent, reverted or
	// never confirmed.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrNotSigner is returned when a write is attempted through a
	// read-only accessor.
	ErrNotSigner = errors.New("signing accessor required")
)

// ReadError wraps a failed read of Method.
type ReadError struct {
	Method string
	Err    error
}

func (e *ReadError) Error() string { return "read " + e.Method + ": " + e.Err.Error() }
func (e *ReadError) Unwrap() error { return e.Err }
func (e *ReadError) Is(target error) bool { return target == ErrReadFailed }

// TxError wraps a failed write. Hash is zero when the transaction was
// never submitted.
type TxError struct {
	Method string
	Hash   common.Hash
	Err    error
}

func (e *TxError) Error() string {
	if e.Hash != (common.Hash{}) {
		return fmt.Sprintf("transaction %s: %v", e.Hash.Hex(), e.Err)
	}
	return fmt.Sprintf("send %s: %v", e.Method, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }
func (e *TxError) Is(target error) bool { return target == ErrTransactionFailed }

func unexpected(method string, got any) error {
	return &ReadError{Method: method, Err: fmt.Errorf("%w: %v", ErrUnexpectedResponse, got)}
}
