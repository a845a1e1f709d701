package events

import "github.com/mcdev12/auctionhouse/go/internal/models"

// Payload types shared between the auction engine and the transports

// MemberView is a participant as shown to the room.
type MemberView struct {
	ID       string             `json:"id"`
	Username string             `json:"username"`
	Balance  int                `json:"balance"`
	Team     []models.TeamEntry `json:"team"`
	Skipped  bool               `json:"skipped"`
}

// AuctionView is the public view of the item on the block. The highest bidder
// is exposed by username only.
type AuctionView struct {
	Position      string            `json:"position"`
	Player        models.PoolPlayer `json:"player"`
	BasePrice     int               `json:"basePrice"`
	CurrentBid    int               `json:"currentBid"`
	HighestBidder string            `json:"highestBidder,omitempty"`
	TimeLeft      int               `json:"timeLeft"`
	State         string            `json:"state"`
	Paused        bool              `json:"paused"`
	MinimumBid    int               `json:"minimumBid"`
}

// RoomSnapshot is the sanitized room sent on roomUpdate and requestRoom.
type RoomSnapshot struct {
	ID             string       `json:"id"`
	Capacity       int          `json:"capacity"`
	Phase          models.Phase `json:"phase"`
	Host           string       `json:"host"`
	Players        []MemberView `json:"players"`
	SoldCount      int          `json:"soldCount"`
	CurrentAuction *AuctionView `json:"currentAuction"`
}

// TickPayload carries the initial countdown.
type TickPayload struct {
	TimeLeft int `json:"timeLeft"`
}

// ChatPayload is a free-text notice.
type ChatPayload struct {
	Msg string `json:"msg"`
}

// ConnectedPayload tells a fresh connection its participant id.
type ConnectedPayload struct {
	ParticipantID string `json:"participantId"`
}
