package auction

import (
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/rs/zerolog/log"
)

// armCountdown schedules the next one-second tick of a's countdown.
// Caller holds r.mu.
func (e *Engine) armCountdown(r *Room, a *Auction) {
	a.countdownGen++
	gen := a.countdownGen
	a.countdown = e.clock.AfterFunc(tickInterval, func() {
		e.onCountdownTick(r, a, gen)
	})
}

func (e *Engine) onCountdownTick(r *Room, a *Auction, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.auction != a || a.countdownGen != gen || !a.live() {
		return
	}

	a.remaining--
	if a.remaining > 0 {
		// Re-arm first so observers of the tick can rely on the next one being scheduled.
		e.armCountdown(r, a)
		e.emit(r, events.TypeAuctionTick, events.TickPayload{TimeLeft: a.remaining})
		return
	}

	a.remaining = 0
	a.countdown = nil
	e.emit(r, events.TypeAuctionTick, events.TickPayload{TimeLeft: 0})

	if !a.hasBid() {
		e.abandon(r, a)
		return
	}

	a.paused = true
	log.Debug().Str("room_id", r.id).Str("player", a.item.Name).Msg("countdown expired with standing bid")
	if a.finalize == nil {
		e.armFinalize(r, a)
	}
	e.chat(r, "Bidding paused for %s, finalizing soon", a.item.Name)
}

// armFinalize cancels any pending finalize timer and starts a fresh window.
// Caller holds r.mu.
func (e *Engine) armFinalize(r *Room, a *Auction) {
	a.stopFinalize()
	gen := a.finalizeGen
	a.finalize = e.clock.AfterFunc(FinalizeWindow, func() {
		e.onFinalize(r, a, gen)
	})
}

func (e *Engine) onFinalize(r *Room, a *Auction, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.auction != a || a.finalizeGen != gen || !a.live() {
		log.Debug().Str("room_id", r.id).Msg("stale finalize timer ignored")
		return
	}
	a.finalize = nil
	e.finalize(r, a)
}

// scheduleNext runs selectNext after NextItemDelay. Caller holds r.mu.
func (e *Engine) scheduleNext(r *Room) {
	r.stopNext()
	gen := r.nextGen
	r.next = e.clock.AfterFunc(NextItemDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.closed || r.nextGen != gen || r.auction != nil || r.phase != models.PhaseRunning {
			return
		}
		r.next = nil
		e.selectNext(r)
	})
}
