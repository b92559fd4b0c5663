package tui

import "github.com/mjpeters/reel/internal/state"

// stateMsg delivers a new state snapshot from the coordinator
type stateMsg struct {
	Snapshot state.AppState
}

// opDoneMsg signals that a fire-and-forget coordinator command returned.
// The interesting effects arrive through the state stream; this only
// exists so commands can be sequenced.
type opDoneMsg struct{}
