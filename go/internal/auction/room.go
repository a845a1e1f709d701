package auction

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/models"
)

const (
	MinCapacity       = 3
	MaxCapacity       = 6
	MinMembersToStart = 2
	StartingBalance   = 1000
	MaxTeamSize       = 11
)

// Room is one isolated auction session. Every field is guarded by mu; the
// engine holds mu for the whole of each operation and timer callback.
type Room struct {
	mu sync.Mutex

	id        string
	capacity  int
	hostID    string
	phase     models.Phase
	members   map[string]*models.Participant
	order     []string
	sold      map[string]struct{}
	auction   *Auction
	createdAt time.Time

	// pending next-item selection
	next    clockwork.Timer
	nextGen uint64

	closed bool
}

func newRoom(id string, capacity int, now time.Time) *Room {
	return &Room{
		id:        id,
		capacity:  capacity,
		phase:     models.PhaseLobby,
		members:   make(map[string]*models.Participant),
		sold:      make(map[string]struct{}),
		createdAt: now,
	}
}

// ID returns the room id.
func (r *Room) ID() string { return r.id }

func (r *Room) addMember(id, username string, now time.Time) *models.Participant {
	p := &models.Participant{
		ID:       id,
		Username: username,
		Balance:  StartingBalance,
		Team:     []models.TeamEntry{},
		JoinedAt: now,
	}
	r.members[id] = p
	r.order = append(r.order, id)
	return p
}

// removeMember drops a member, handing the host role to the next member in
// join order when needed. It reports whether the id was a member.
func (r *Room) removeMember(id string) bool {
	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	for i, mid := range r.order {
		if mid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.hostID == id {
		r.hostID = ""
		if len(r.order) > 0 {
			r.hostID = r.order[0]
		}
	}
	return true
}

func (r *Room) full() bool { return len(r.members) >= r.capacity }

// markSold records a consumed item name. It reports false if the name was
// already consumed.
func (r *Room) markSold(name string) bool {
	if _, dup := r.sold[name]; dup {
		return false
	}
	r.sold[name] = struct{}{}
	return true
}

func (r *Room) clearSkips() {
	for _, m := range r.members {
		m.SkippedThisRound = false
	}
}

func (r *Room) allTeamsFull() bool {
	for _, m := range r.members {
		if len(m.Team) < MaxTeamSize {
			return false
		}
	}
	return true
}

func (r *Room) stopNext() {
	if r.next != nil {
		r.next.Stop()
		r.next = nil
	}
	r.nextGen++
}

func (r *Room) snapshot() events.RoomSnapshot {
	players := make([]events.MemberView, 0, len(r.order))
	for _, id := range r.order {
		m := r.members[id]
		team := make([]models.TeamEntry, len(m.Team))
		copy(team, m.Team)
		players = append(players, events.MemberView{
			ID:       m.ID,
			Username: m.Username,
			Balance:  m.Balance,
			Team:     team,
			Skipped:  m.SkippedThisRound,
		})
	}

	snap := events.RoomSnapshot{
		ID:        r.id,
		Capacity:  r.capacity,
		Phase:     r.phase,
		Host:      r.hostID,
		Players:   players,
		SoldCount: len(r.sold),
	}
	if r.auction != nil {
		v := r.auction.view()
		snap.CurrentAuction = &v
	}
	return snap
}
