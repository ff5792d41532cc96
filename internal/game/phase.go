package game

// Phase is the room's current position in the turn machine.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseLaundry
	PhasePlaying
	PhaseRaiseResponse
	PhaseForcedGamble
	PhaseBlindResponse
	PhaseRoundEnd
	PhaseGameEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseLaundry:
		return "laundry"
	case PhasePlaying:
		return "playing"
	case PhaseRaiseResponse:
		return "raise_response"
	case PhaseForcedGamble:
		return "forced_gamble"
	case PhaseBlindResponse:
		return "blind_response"
	case PhaseRoundEnd:
		return "round_end"
	case PhaseGameEnd:
		return "game_end"
	default:
		return "unknown"
	}
}

// isResponsePhase reports whether p collects accept/fold decisions.
func (p Phase) isResponsePhase() bool {
	return p == PhaseRaiseResponse || p == PhaseForcedGamble || p == PhaseBlindResponse
}
