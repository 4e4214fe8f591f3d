// Package present decides the single affordance shown for a session state.
package present

import (
	"github.com/sclottery/lottery-tui/internal/lottery"
	"github.com/sclottery/lottery-tui/internal/session"
)

// Action is the one thing the user can see or do next.
type Action int

const (
	ConnectAction Action = iota
	LoadingAction
	AssignWinnerAction
	PausedNotice
	WithdrawAction
	ThankYouNotice
	EnterAction
)

// Resolve maps a state to its action. Rules are checked in order and the
// first match wins; owner assignment pre-empts every participant state and
// a pause pre-empts the winner prompt.
func Resolve(s session.State) Action {
	switch {
	case !s.Connected:
		return ConnectAction
	case s.Pending:
		return LoadingAction
	case s.IsOwner && s.EntryCount >= s.MinEntryCount:
		return AssignWinnerAction
	case s.Phase == lottery.PhasePaused:
		return PausedNotice
	case s.IsWinner:
		return WithdrawAction
	case s.HasEntered:
		return ThankYouNotice
	default:
		return EnterAction
	}
}

// Interactive reports whether the action is a button.
func (a Action) Interactive() bool {
	switch a {
	case ConnectAction, AssignWinnerAction, WithdrawAction, EnterAction:
		return true
	}
	return false
}

// Label is the button caption, or the notice text for passive actions.
func (a Action) Label() string {
	switch a {
	case ConnectAction:
		return "Connect your wallet"
	case LoadingAction:
		return "Loading..."
	case AssignWinnerAction:
		return "Assign winner!"
	case PausedNotice:
		return "Lottery paused, come back later!"
	case WithdrawAction:
		return "Withdraw prize money 🤑"
	case ThankYouNotice:
		return "Thank you for participating! 🤟"
	case EnterAction:
		return "🍀 Try your luck! 🍀"
	}
	return ""
}

// Headline is the line shown above the control, if any.
func (a Action) Headline() string {
	if a == WithdrawAction {
		return "Congrats you are a winner! 🥳"
	}
	return ""
}

// Op is the write the action triggers. Connect and passive actions
// trigger none.
func (a Action) Op() session.Op {
	switch a {
	case AssignWinnerAction:
		return session.OpAssignWinner
	case WithdrawAction:
		return session.OpWithdraw
	case EnterAction:
		return session.OpSubmitEntry
	}
	return session.OpNone
}

func (a Action) String() string {
	switch a {
	case ConnectAction:
		return "connect"
	case LoadingAction:
		return "loading"
	case AssignWinnerAction:
		return "assign-winner"
	case PausedNotice:
		return "paused"
	case WithdrawAction:
		return "withdraw"
	case ThankYouNotice:
		return "thank-you"
	case EnterAction:
		return "enter"
	}
	return "unknown"
}
