package auction

import (
	"fmt"

	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/rs/zerolog/log"
)

// finalize settles a's standing bid. It runs at most once per auction since
// the state leaves the live set before anything else happens. Caller holds r.mu.
func (e *Engine) finalize(r *Room, a *Auction) {
	a.state = StateFinalizing
	a.stopTimers()

	sale := e.newSale(r, a)
	var notice string

	switch winner, ok := r.members[a.highestBidderID]; {
	case !a.hasBid():
		sale.Outcome = models.SaleOutcomeUnsold
		notice = "No winner for " + a.item.Name
	case !ok || winner.Balance < a.currentBid || len(winner.Team) >= MaxTeamSize:
		sale.Outcome = models.SaleOutcomeFailed
		notice = "Could not finalize " + a.item.Name
		log.Warn().
			Str("room_id", r.id).
			Str("player", a.item.Name).
			Str("bidder", a.highestBidderID).
			Bool("member", ok).
			Msg("settlement failed")
	default:
		winner.Balance -= a.currentBid
		winner.Team = append(winner.Team, models.TeamEntry{
			Name:      a.item.Name,
			Position:  a.item.Position,
			PricePaid: a.currentBid,
		})
		sale.Outcome = models.SaleOutcomeSold
		sale.WinnerID = winner.ID
		sale.WinnerName = winner.Username
		notice = fmt.Sprintf("%s won %s for %dM", winner.Username, a.item.Name, a.currentBid)
		log.Info().
			Str("room_id", r.id).
			Str("player", a.item.Name).
			Str("winner", winner.ID).
			Int("price", a.currentBid).
			Msg("player sold")
	}

	r.markSold(a.item.Name)
	r.auction = nil
	e.record(sale)

	e.scheduleNext(r)
	e.emit(r, events.TypeRoomUpdate, r.snapshot())
	e.chat(r, "%s", notice)
}

// abandon consumes an item whose countdown ran out without bids.
// Caller holds r.mu.
func (e *Engine) abandon(r *Room, a *Auction) {
	a.state = StateFinalizing
	a.stopTimers()

	sale := e.newSale(r, a)
	sale.Outcome = models.SaleOutcomeUnsold

	r.markSold(a.item.Name)
	r.auction = nil
	e.record(sale)

	log.Info().Str("room_id", r.id).Str("player", a.item.Name).Msg("no bids, player skipped")

	e.scheduleNext(r)
	e.emit(r, events.TypeRoomUpdate, r.snapshot())
	e.chat(r, "No bids for %s, skipped", a.item.Name)
}

func (e *Engine) newSale(r *Room, a *Auction) models.Sale {
	sale := models.Sale{
		RoomID:     r.id,
		PlayerName: a.item.Name,
		Position:   a.item.Position,
		BasePrice:  a.item.BasePrice,
		BidCount:   a.bidCount,
		SettledAt:  e.clock.Now().UTC(),
	}
	if a.hasBid() {
		sale.Price = a.currentBid
	}
	return sale
}

func (e *Engine) record(sale models.Sale) {
	if e.sales != nil {
		e.sales.RecordSale(sale)
	}
}
