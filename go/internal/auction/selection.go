package auction

import (
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/rs/zerolog/log"
)

// selectNext puts a random unsold player from a random position on the block,
// or completes the room once nothing more can be sold. Caller holds r.mu.
func (e *Engine) selectNext(r *Room) {
	r.clearSkips()

	if e.pool.Exhausted(r.sold) || r.allTeamsFull() {
		e.complete(r)
		return
	}

	positions := e.pool.Positions()
	position := positions[e.intn(len(positions))]

	available := e.pool.Available(position, r.sold)
	if len(available) == 0 {
		log.Debug().Str("room_id", r.id).Str("position", position).Msg("position exhausted, retrying")
		e.scheduleNext(r)
		e.chat(r, "No players left for position %s", position)
		return
	}

	item := available[e.intn(len(available))]
	a := newAuction(item, e.clock.Now())
	r.auction = a
	e.armCountdown(r, a)

	log.Info().
		Str("room_id", r.id).
		Str("player", item.Name).
		Str("position", item.Position).
		Int("base_price", item.BasePrice).
		Msg("auction started")

	e.emit(r, events.TypeAuctionStart, a.view())
	e.emit(r, events.TypeRoomUpdate, r.snapshot())
}

func (e *Engine) complete(r *Room) {
	r.phase = models.PhaseComplete
	r.stopNext()
	log.Info().Str("room_id", r.id).Int("sold", len(r.sold)).Msg("auction complete")
	e.chat(r, "Auction complete")
	e.emit(r, events.TypeRoomUpdate, r.snapshot())
}
