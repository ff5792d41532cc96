package game

import "github.com/kaartspel/toepen/internal/deck"

// CardView is one card in a filtered view. Concealed cards are an
// opaque placeholder: Hidden is set and no suit or rank is present, so
// hand sizes stay observable while contents are not.
type CardView struct {
	Hidden bool       `json:"hidden,omitempty"`
	Card   *deck.Card `json:"card,omitempty"`
	Label  string     `json:"label,omitempty"`
}

// SeatView is one seat as some viewer is allowed to see it.
type SeatView struct {
	Name         string     `json:"name"`
	IsBot        bool       `json:"isBot,omitempty"`
	IsHost       bool       `json:"isHost,omitempty"`
	Score        int        `json:"score"`
	Eliminated   bool       `json:"eliminated,omitempty"`
	InRound      bool       `json:"inRound"`
	TricksWon    int        `json:"tricksWon"`
	HandRevealed bool       `json:"handRevealed,omitempty"`
	EntryStake   int        `json:"entryStake"`
	Response     string     `json:"response,omitempty"`
	Hand         []CardView `json:"hand"`
}

// TrickPlayView is a card already played into the open trick; played
// cards are public.
type TrickPlayView struct {
	Seat string    `json:"seat"`
	Card deck.Card `json:"card"`
}

// ClaimView summarizes the open laundry claim. The snapshot itself is
// never serialized; the claimant's live hand is disclosed through the
// normal visibility rules.
type ClaimView struct {
	Seat string `json:"seat"`
	Type string `json:"type"`
}

// RoomView is the complete filtered state pushed to one seat.
type RoomView struct {
	Code          string          `json:"code"`
	You           string          `json:"you"`
	Host          string          `json:"host"`
	Started       bool            `json:"started"`
	Phase         string          `json:"phase"`
	Stake         int             `json:"stake"`
	TurnSeat      string          `json:"turnSeat,omitempty"`
	LastRaiser    string          `json:"lastRaiser,omitempty"`
	LeadSuit      string          `json:"leadSuit,omitempty"`
	TricksDone    int             `json:"tricksDone"`
	DeckRemaining int             `json:"deckRemaining"`
	Trick         []TrickPlayView `json:"trick"`
	Claim         *ClaimView      `json:"claim,omitempty"`
	Seats         []SeatView      `json:"seats"`
}

// ViewFor builds the filtered view of the room for the named seat.
func (r *Room) ViewFor(name string) RoomView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewForLocked(name)
}

func (r *Room) viewForLocked(viewer string) RoomView {
	view := RoomView{
		Code:    r.Code,
		You:     viewer,
		Host:    r.hostID,
		Started: r.started,
		Phase:   PhaseLobby.String(),
		Seats:   make([]SeatView, 0, len(r.seats)),
	}

	rs := r.round
	if rs != nil {
		view.Phase = rs.Phase.String()
		view.Stake = rs.Stake
		view.TurnSeat = rs.TurnSeat
		view.LastRaiser = rs.LastRaiser
		view.TricksDone = rs.TricksDone
		if rs.LeadSuit != nil {
			view.LeadSuit = rs.LeadSuit.String()
		}
		if rs.Deck != nil {
			view.DeckRemaining = rs.Deck.Remaining()
		}
		for _, play := range rs.Trick {
			view.Trick = append(view.Trick, TrickPlayView{Seat: play.Seat, Card: play.Card})
		}
		if rs.Claim != nil {
			view.Claim = &ClaimView{Seat: rs.Claim.Seat, Type: rs.Claim.Type.String()}
		}
	}

	for _, s := range r.seats {
		sv := SeatView{
			Name:         s.Name,
			IsBot:        s.IsBot,
			IsHost:       s.Name == r.hostID,
			Score:        s.Score,
			Eliminated:   s.Eliminated,
			HandRevealed: s.HandRevealed,
		}
		if rs != nil {
			sv.InRound = rs.InRound[s.Name]
			sv.TricksWon = rs.TricksWon[s.Name]
			sv.EntryStake = rs.EntryStake[s.Name]
			if rs.Responses != nil {
				if d, ok := rs.Responses.Get(s.Name); ok {
					sv.Response = d.String()
				}
			}
		}
		sv.Hand = r.handViewLocked(viewer, s)
		view.Seats = append(view.Seats, sv)
	}

	return view
}

// handViewLocked applies the confidentiality contract: a seat's cards
// are visible to another seat only while the laundry window is open
// (every hand is on the table then), or after the seat was caught
// bluffing. Everything else is placeholders of matching count.
func (r *Room) handViewLocked(viewer string, s *Seat) []CardView {
	hand := make([]CardView, 0, len(s.Hand))

	visible := viewer == s.Name || s.HandRevealed ||
		(r.round != nil && r.round.Phase == PhaseLaundry)

	for i := range s.Hand {
		if visible {
			c := s.Hand[i]
			hand = append(hand, CardView{Card: &c, Label: c.String()})
		} else {
			hand = append(hand, CardView{Hidden: true})
		}
	}
	return hand
}
