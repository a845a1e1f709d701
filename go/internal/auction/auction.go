package auction

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/models"
)

const (
	InitialCountdownSeconds = 45
	FinalizeWindow          = 20 * time.Second
	NextItemDelay           = 1500 * time.Millisecond
	tickInterval            = time.Second
)

// State is the per-auction protocol state.
type State string

const (
	StateInitialCountdown State = "initial_countdown"
	StateAwaitingFinalize State = "awaiting_finalize"
	StateFinalizing       State = "finalizing"
)

// Auction is the item currently on the block. Its timers are owned here and
// stopped before the value is discarded; each arm bumps a generation that the
// callback re-checks.
type Auction struct {
	item              models.PoolPlayer
	currentBid        int
	highestBidderID   string
	highestBidderName string
	bidCount          int
	remaining         int
	state             State
	startedAt         time.Time

	// paused is set when the countdown ends with a standing bid and cleared
	// by the next bid, which opens a fresh finalize window.
	paused bool

	countdown    clockwork.Timer
	countdownGen uint64
	finalize     clockwork.Timer
	finalizeGen  uint64
}

func newAuction(item models.PoolPlayer, now time.Time) *Auction {
	return &Auction{
		item:       item,
		currentBid: item.BasePrice,
		remaining:  InitialCountdownSeconds,
		state:      StateInitialCountdown,
		startedAt:  now,
	}
}

func (a *Auction) hasBid() bool { return a.highestBidderID != "" }

func (a *Auction) live() bool { return a.state != StateFinalizing }

func (a *Auction) stopCountdown() {
	if a.countdown != nil {
		a.countdown.Stop()
		a.countdown = nil
	}
	a.countdownGen++
}

func (a *Auction) stopFinalize() {
	if a.finalize != nil {
		a.finalize.Stop()
		a.finalize = nil
	}
	a.finalizeGen++
}

func (a *Auction) stopTimers() {
	a.stopCountdown()
	a.stopFinalize()
}

func (a *Auction) view() events.AuctionView {
	return events.AuctionView{
		Position:      a.item.Position,
		Player:        a.item,
		BasePrice:     a.item.BasePrice,
		CurrentBid:    a.currentBid,
		HighestBidder: a.highestBidderName,
		TimeLeft:      a.remaining,
		State:         string(a.state),
		Paused:        a.paused && a.live(),
		MinimumBid:    MinimumBid(a.item.BasePrice, a.currentBid, a.hasBid()),
	}
}
