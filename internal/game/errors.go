package game

import (
	"errors"
	"fmt"
)

// RejectCode identifies why an action was refused. Codes group into the
// categories the transport layer reports to clients; a rejected action
// never mutates round state.
type RejectCode int

const (
	// Protocol violations
	RejectRoomNotFound RejectCode = iota
	RejectRoomFull
	RejectAlreadyStarted
	RejectNotStarted
	RejectNotHost
	RejectDuplicateName
	RejectUnknownSeat

	// Turn violations
	RejectNotYourTurn

	// Phase violations
	RejectWrongPhase
	RejectAlreadyResponded
	RejectAlreadyRaised
	RejectStakeCeiling
	RejectForcedToPlay
	RejectClaimUnavailable

	// Illegal plays
	RejectCardNotHeld
	RejectMustFollowSuit

	// Malformed actions
	RejectBadAction
)

// Category returns the error-taxonomy bucket for the code.
func (c RejectCode) Category() string {
	switch c {
	case RejectRoomNotFound, RejectRoomFull, RejectAlreadyStarted, RejectNotStarted,
		RejectNotHost, RejectDuplicateName, RejectUnknownSeat:
		return "protocol_violation"
	case RejectNotYourTurn:
		return "turn_violation"
	case RejectWrongPhase, RejectAlreadyResponded, RejectAlreadyRaised,
		RejectStakeCeiling, RejectForcedToPlay, RejectClaimUnavailable:
		return "phase_violation"
	case RejectCardNotHeld, RejectMustFollowSuit:
		return "illegal_play"
	case RejectBadAction:
		return "malformed_action"
	default:
		return "unknown"
	}
}

// RejectError is the error type for every refused action.
type RejectError struct {
	Code   RejectCode
	Reason string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code.Category(), e.Reason)
}

// rejectf builds a RejectError with a formatted reason.
func rejectf(code RejectCode, format string, args ...any) error {
	return &RejectError{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// AsReject unwraps a RejectError from err, if any.
func AsReject(err error) (*RejectError, bool) {
	var re *RejectError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
