package auction

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/mcdev12/auctionhouse/go/internal/player"
	"github.com/rs/zerolog/log"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) clockwork.Timer
}

// SaleRecorder receives every auction outcome. RecordSale must not block.
type SaleRecorder interface {
	RecordSale(sale models.Sale)
}

// Engine runs the auctions of every room in a Registry.
type Engine struct {
	registry *Registry
	pool     *player.Pool
	bus      events.Broadcaster
	clock    Clock
	sales    SaleRecorder

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithSaleRecorder sends every auction outcome to rec.
func WithSaleRecorder(rec SaleRecorder) Option {
	return func(e *Engine) { e.sales = rec }
}

// WithRand sets the source used for position and player selection.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithRegistry shares an existing registry.
func WithRegistry(reg *Registry) Option {
	return func(e *Engine) { e.registry = reg }
}

// NewEngine creates an engine drawing from pool and pushing through bus.
func NewEngine(pool *player.Pool, bus events.Broadcaster, opts ...Option) *Engine {
	if bus == nil {
		bus = events.Discard{}
	}
	e := &Engine{
		pool:  pool,
		bus:   bus,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// Registry returns the engine's room registry.
func (e *Engine) Registry() *Registry { return e.registry }

// CreateRoom opens a lobby with the creator as host and first member.
func (e *Engine) CreateRoom(roomID string, capacity int, creatorID, username string) (events.RoomSnapshot, error) {
	now := e.clock.Now()
	r := newRoom(roomID, capacity, now)
	r.addMember(creatorID, username, now)
	r.hostID = creatorID

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := e.registry.insert(r); err != nil {
		return events.RoomSnapshot{}, err
	}

	log.Info().
		Str("room_id", roomID).
		Int("capacity", capacity).
		Str("host", creatorID).
		Msg("room created")

	snap := r.snapshot()
	e.emit(r, events.TypeRoomUpdate, snap)
	return snap, nil
}

// JoinRoom adds a member to a room in any phase.
func (e *Engine) JoinRoom(roomID, participantID, username string) (events.RoomSnapshot, error) {
	r, err := e.room(roomID)
	if err != nil {
		return events.RoomSnapshot{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return events.RoomSnapshot{}, ErrRoomNotFound
	}
	if _, ok := r.members[participantID]; ok {
		return events.RoomSnapshot{}, ErrAlreadyMember
	}
	if r.full() {
		return events.RoomSnapshot{}, ErrRoomFull
	}

	r.addMember(participantID, username, e.clock.Now())

	log.Info().
		Str("room_id", roomID).
		Str("participant_id", participantID).
		Int("members", len(r.members)).
		Msg("participant joined")

	snap := r.snapshot()
	e.emit(r, events.TypeRoomUpdate, snap)
	e.chat(r, "%s joined", username)
	return snap, nil
}

// StartGame moves a lobby to Running and puts the first player on the block.
func (e *Engine) StartGame(roomID, requesterID string) error {
	r, err := e.room(roomID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.closed:
		return ErrRoomNotFound
	case r.hostID != requesterID:
		return ErrNotHost
	case r.phase != models.PhaseLobby:
		return ErrAlreadyStarted
	case len(r.members) < MinMembersToStart:
		return ErrNotEnoughMembers
	}

	r.phase = models.PhaseRunning
	log.Info().Str("room_id", roomID).Int("members", len(r.members)).Msg("game started")

	e.chat(r, "Game started")
	e.selectNext(r)
	return nil
}

// Room returns the sanitized snapshot of a room.
func (e *Engine) Room(roomID string) (events.RoomSnapshot, error) {
	r, err := e.room(roomID)
	if err != nil {
		return events.RoomSnapshot{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return events.RoomSnapshot{}, ErrRoomNotFound
	}
	return r.snapshot(), nil
}

// RemoveParticipant drops a member, typically on disconnect. A standing high
// bid by that member is left in place. The last member out tears the room down.
func (e *Engine) RemoveParticipant(roomID, participantID string) {
	r, ok := e.registry.Get(roomID)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	m, ok := r.members[participantID]
	if !ok {
		return
	}
	r.removeMember(participantID)

	log.Info().
		Str("room_id", roomID).
		Str("participant_id", participantID).
		Int("members", len(r.members)).
		Msg("participant removed")

	if len(r.members) == 0 {
		e.teardown(r)
		return
	}

	e.emit(r, events.TypeRoomUpdate, r.snapshot())
	e.chat(r, "%s left", m.Username)
}

// Shutdown stops every room's timers. The engine should not be used afterwards.
func (e *Engine) Shutdown() {
	for _, r := range e.registry.all() {
		r.mu.Lock()
		e.teardown(r)
		r.mu.Unlock()
	}
}

// teardown cancels all timers and unregisters the room. Caller holds r.mu.
func (e *Engine) teardown(r *Room) {
	if r.auction != nil {
		r.auction.state = StateFinalizing
		r.auction.stopTimers()
		r.auction = nil
	}
	r.stopNext()
	r.closed = true
	e.registry.remove(r.id, r)
	log.Info().Str("room_id", r.id).Msg("room closed")
}

func (e *Engine) room(roomID string) (*Room, error) {
	r, ok := e.registry.Get(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

func (e *Engine) intn(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.IntN(n)
}

// emit pushes an event for r. Caller holds r.mu so per-room order is kept.
func (e *Engine) emit(r *Room, typ events.Type, data any) {
	e.bus.Broadcast(r.id, events.New(r.id, typ, data, e.clock.Now()))
}

func (e *Engine) chat(r *Room, format string, args ...any) {
	e.emit(r, events.TypeChat, events.ChatPayload{Msg: fmt.Sprintf(format, args...)})
}
