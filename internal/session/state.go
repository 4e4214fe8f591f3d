// Package session holds the client's single authoritative view of the
// lottery and the Bubble Tea sub-model that keeps it up to date.
//
// All state changes happen in Model.Update, which Bubble Tea calls from one
// goroutine. Wallet and contract I/O runs inside commands and comes back as
// messages, so overlapping reads never race on State.
package session

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/sclottery/lottery-tui/internal/lottery"
)

// State is the snapshot the presentation is derived from.
type State struct {
	Connected     bool
	Account       common.Address
	Phase         lottery.Phase
	EntryCount    uint64
	MinEntryCount uint64
	IsOwner       bool
	HasEntered    bool
	IsWinner      bool
	// Pending is set while a submitted write is unconfirmed.
	Pending bool
}

// NewState returns the state of a fresh, disconnected session.
func NewState() State {
	return State{
		Phase:         lottery.PhaseOpen,
		MinEntryCount: 1,
	}
}

// Op identifies a write operation.
type Op int

const (
	OpNone Op = iota
	OpSubmitEntry
	OpWithdraw
	OpAssignWinner
)

func (o Op) String() string {
	switch o {
	case OpSubmitEntry:
		return "submitEntry"
	case OpWithdraw:
		return "withdrawPrizeMoney"
	case OpAssignWinner:
		return "assignWinner"
	default:
		return "none"
	}
}

// Fact names one value read from the contract, or the wallet's selected
// account.
type Fact string

const (
	FactAccount       Fact = "account"
	FactOwner         Fact = "owner"
	FactMinEntryCount Fact = "minEntryCount"
	FactEntered       Fact = "hasEntered"
	FactWinner        Fact = "isWinner"
	FactEntryCount    Fact = "entryCount"
	FactPhase         Fact = "phase"
)
