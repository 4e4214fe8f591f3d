package session

import (
	"fmt"
	"math/big"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sclottery/lottery-tui/internal/lottery"
)

// --- Bubble Tea messages ---

// ConnectedMsg is sent once the wallet exposes an account on the right
// network.
type ConnectedMsg struct{ Account common.Address }

// ConnectFailedMsg is sent when the wallet could not be connected.
type ConnectFailedMsg struct{ Err error }

// PhaseMsg delivers the lottery phase.
type PhaseMsg struct{ Phase lottery.Phase }

// EntryCountMsg delivers the total number of entries.
type EntryCountMsg struct{ Count uint64 }

// MinEntryCountMsg delivers the entry threshold for assigning a winner.
type MinEntryCountMsg struct{ Count uint64 }

// OwnerMsg delivers the contract owner alongside the connected account.
type OwnerMsg struct {
	Owner   common.Address
	Account common.Address
}

// EnteredMsg delivers how many entries the connected account holds.
type EnteredMsg struct {
	Account common.Address
	Count   *big.Int
}

// PrizeMsg delivers the connected account's unclaimed prize.
type PrizeMsg struct {
	Account common.Address
	Amount  *big.Int
}

// AccountMsg delivers the account currently selected in the wallet.
type AccountMsg struct{ Account common.Address }

// ReadFailedMsg reports a failed read. State keeps its last known value.
type ReadFailedMsg struct {
	Fact Fact
	Err  error
}

// TxSubmittedMsg is sent once the wallet has accepted a write.
type TxSubmittedMsg struct {
	Op   Op
	Hash common.Hash
}

// TxConfirmedMsg is sent when a write has been mined successfully.
type TxConfirmedMsg struct {
	Op   Op
	Hash common.Hash
}

// TxFailedMsg is sent when a write could not be sent or did not confirm.
type TxFailedMsg struct {
	Op  Op
	Err error
}

// factsMsg carries the results of several reads performed in order. They
// are applied in the same order.
type factsMsg []tea.Msg

// Event is a one-line description of a session message.
type Event struct {
	Kind string // "conn", "read", "tx" or "err"
	Text string
}

// Describe renders session messages as events for the debug log. Unknown
// messages yield nothing.
func Describe(msg tea.Msg) []Event {
	switch msg := msg.(type) {
	case factsMsg:
		var out []Event
		for _, sub := range msg {
			out = append(out, Describe(sub)...)
		}
		return out
	case ConnectedMsg:
		return []Event{{"conn", "connected as " + msg.Account.Hex()}}
	case ConnectFailedMsg:
		return []Event{{"err", "connect failed: " + msg.Err.Error()}}
	case AccountMsg:
		return []Event{{"conn", "wallet account " + msg.Account.Hex()}}
	case PhaseMsg:
		return []Event{{"read", "phase " + msg.Phase.String()}}
	case EntryCountMsg:
		return []Event{{"read", fmt.Sprintf("entryCount %d", msg.Count)}}
	case MinEntryCountMsg:
		return []Event{{"read", fmt.Sprintf("minEntryCount %d", msg.Count)}}
	case OwnerMsg:
		return []Event{{"read", "owner " + msg.Owner.Hex()}}
	case EnteredMsg:
		return []Event{{"read", "ownerEntryCount " + msg.Count.String()}}
	case PrizeMsg:
		return []Event{{"read", "ownerPrizeAmount " + msg.Amount.String()}}
	case ReadFailedMsg:
		return []Event{{"err", fmt.Sprintf("read %s failed: %v", msg.Fact, msg.Err)}}
	case TxSubmittedMsg:
		return []Event{{"tx", fmt.Sprintf("%s submitted %s", msg.Op, msg.Hash.Hex())}}
	case TxConfirmedMsg:
		return []Event{{"tx", fmt.Sprintf("%s confirmed %s", msg.Op, msg.Hash.Hex())}}
	case TxFailedMsg:
		return []Event{{"err", fmt.Sprintf("%s failed: %v", msg.Op, msg.Err)}}
	}
	return nil
}
