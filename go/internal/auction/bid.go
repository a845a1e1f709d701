package auction

import (
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/rs/zerolog/log"
)

// stepThreshold is the price at which the increment doubles.
const stepThreshold = 200

// Step returns the minimum increment over the current bid.
func Step(current int) int {
	if current >= stepThreshold {
		return 10
	}
	return 5
}

// MinimumBid is the lowest amount the next bid may carry.
func MinimumBid(base, current int, hasBid bool) int {
	if !hasBid {
		return base
	}
	return current + Step(current)
}

// ValidateAmount checks amount against the increment rules. The opening bid
// must be exactly the base price or one step above it.
func ValidateAmount(base, current int, hasBid bool, amount int) error {
	if !hasBid {
		if amount != base && amount != base+Step(base) {
			return invalidFirstBid(base, Step(base))
		}
		return nil
	}
	if minimum := current + Step(current); amount < minimum {
		return bidTooLow(minimum)
	}
	return nil
}

// Bid places amount on the room's current auction for participantID.
func (e *Engine) Bid(roomID, participantID string, amount int) error {
	r, err := e.room(roomID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	a := r.auction
	if a == nil || !a.live() {
		return ErrNoActiveAuction
	}
	m, ok := r.members[participantID]
	if !ok {
		return ErrNotAMember
	}
	if m.SkippedThisRound {
		return ErrAlreadySkipped
	}
	if len(m.Team) >= MaxTeamSize {
		return ErrTeamFull
	}
	if err := ValidateAmount(a.item.BasePrice, a.currentBid, a.hasBid(), amount); err != nil {
		return err
	}
	if amount > m.Balance {
		return ErrInsufficientBalance
	}

	a.currentBid = amount
	a.highestBidderID = m.ID
	a.highestBidderName = m.Username
	a.bidCount++
	a.paused = false
	if a.state == StateInitialCountdown {
		a.state = StateAwaitingFinalize
	}
	e.armFinalize(r, a)

	log.Debug().
		Str("room_id", r.id).
		Str("player", a.item.Name).
		Str("bidder", m.ID).
		Int("amount", amount).
		Msg("bid accepted")

	e.emit(r, events.TypeAuctionUpdate, a.view())
	return nil
}

// Skip opts participantID out of bidding on the current item.
func (e *Engine) Skip(roomID, participantID string) error {
	r, err := e.room(roomID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	a := r.auction
	if a == nil || !a.live() {
		return ErrNoActiveAuction
	}
	m, ok := r.members[participantID]
	if !ok {
		return ErrNotAMember
	}

	m.SkippedThisRound = true
	e.chat(r, "%s skipped %s", m.Username, a.item.Name)
	return nil
}
