package auction

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/mcdev12/auctionhouse/go/internal/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

// recorder captures broadcasts so tests can wait on timer-driven events.
type recorder struct {
	ch chan *events.Event
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan *events.Event, 4096)}
}

func (r *recorder) Broadcast(_ string, ev *events.Event) {
	select {
	case r.ch <- ev:
	default:
	}
}

func (r *recorder) waitFor(t *testing.T, desc string, match func(*events.Event) bool) *events.Event {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case ev := <-r.ch:
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", desc)
			return nil
		}
	}
}

func (r *recorder) waitChat(t *testing.T, substr string) string {
	t.Helper()
	ev := r.waitFor(t, "chat "+substr, func(ev *events.Event) bool {
		p, ok := ev.Data.(events.ChatPayload)
		return ok && ev.Type == events.TypeChat && strings.Contains(p.Msg, substr)
	})
	return ev.Data.(events.ChatPayload).Msg
}

func (r *recorder) waitTick(t *testing.T, left int) {
	t.Helper()
	r.waitFor(t, "tick", func(ev *events.Event) bool {
		p, ok := ev.Data.(events.TickPayload)
		return ok && ev.Type == events.TypeAuctionTick && p.TimeLeft == left
	})
}

// saleLog is a SaleRecorder backed by a channel.
type saleLog struct {
	ch chan models.Sale
}

func (s *saleLog) RecordSale(sale models.Sale) { s.ch <- sale }

func (s *saleLog) next(t *testing.T) models.Sale {
	t.Helper()
	select {
	case sale := <-s.ch:
		return sale
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for sale")
		return models.Sale{}
	}
}

type harness struct {
	engine *Engine
	clock  *clockwork.FakeClock
	events *recorder
	sales  *saleLog
}

func newHarness(t *testing.T, players ...models.PoolPlayer) *harness {
	t.Helper()
	if len(players) == 0 {
		players = []models.PoolPlayer{{Name: "Striker", Position: "CF", BasePrice: 50}}
	}
	pool, err := player.NewPool(players)
	require.NoError(t, err)

	h := &harness{
		clock:  clockwork.NewFakeClock(),
		events: newRecorder(),
		sales:  &saleLog{ch: make(chan models.Sale, 64)},
	}
	h.engine = NewEngine(pool, h.events, WithClock(h.clock), WithSaleRecorder(h.sales))
	t.Cleanup(h.engine.Shutdown)
	return h
}

// startRoom creates room "r1" with the given members (first is host) and starts it.
func (h *harness) startRoom(t *testing.T, members ...string) {
	t.Helper()
	_, err := h.engine.CreateRoom("r1", 4, members[0], strings.ToUpper(members[0]))
	require.NoError(t, err)
	for _, m := range members[1:] {
		_, err := h.engine.JoinRoom("r1", m, strings.ToUpper(m))
		require.NoError(t, err)
	}
	require.NoError(t, h.engine.StartGame("r1", members[0]))
	h.events.waitFor(t, "auction start", func(ev *events.Event) bool {
		return ev.Type == events.TypeAuctionStart
	})
}

// tick advances the clock one second at a time, waiting for each countdown tick.
func (h *harness) tick(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		snap, err := h.engine.Room("r1")
		require.NoError(t, err)
		require.NotNil(t, snap.CurrentAuction)
		left := snap.CurrentAuction.TimeLeft - 1
		h.clock.Advance(time.Second)
		h.events.waitTick(t, left)
	}
}

func (h *harness) member(t *testing.T, id string) events.MemberView {
	t.Helper()
	snap, err := h.engine.Room("r1")
	require.NoError(t, err)
	for _, m := range snap.Players {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("member %s not in room", id)
	return events.MemberView{}
}

func TestCreateRoom_CapacityBounds(t *testing.T) {
	h := newHarness(t)

	for _, capacity := range []int{0, 2, 7} {
		_, err := h.engine.CreateRoom("bad", capacity, "a", "A")
		require.ErrorIs(t, err, ErrInvalidCapacity, "capacity %d", capacity)
	}
	assert.Equal(t, 0, h.engine.Registry().Len())

	for _, capacity := range []int{MinCapacity, MaxCapacity} {
		snap, err := h.engine.CreateRoom(fmt.Sprintf("ok-%d", capacity), capacity, "a", "A")
		require.NoError(t, err)
		assert.Equal(t, capacity, snap.Capacity)
		assert.Equal(t, "a", snap.Host)
		assert.Equal(t, models.PhaseLobby, snap.Phase)
		require.Len(t, snap.Players, 1)
		assert.Equal(t, StartingBalance, snap.Players[0].Balance)
	}
}

func TestCreateRoom_Duplicate(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.CreateRoom("r1", 4, "a", "A")
	require.NoError(t, err)
	_, err = h.engine.CreateRoom("r1", 4, "b", "B")
	require.ErrorIs(t, err, ErrRoomExists)
}

func TestJoinRoom_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.JoinRoom("missing", "a", "A")
	require.ErrorIs(t, err, ErrRoomNotFound)

	_, err = h.engine.CreateRoom("r1", 3, "a", "A")
	require.NoError(t, err)

	_, err = h.engine.JoinRoom("r1", "a", "A")
	require.ErrorIs(t, err, ErrAlreadyMember)

	_, err = h.engine.JoinRoom("r1", "b", "B")
	require.NoError(t, err)
	snap, err := h.engine.JoinRoom("r1", "c", "C")
	require.NoError(t, err)
	assert.Len(t, snap.Players, 3)

	_, err = h.engine.JoinRoom("r1", "d", "D")
	require.ErrorIs(t, err, ErrRoomFull)
}

func TestStartGame_Preconditions(t *testing.T) {
	h := newHarness(t)

	require.ErrorIs(t, h.engine.StartGame("r1", "a"), ErrRoomNotFound)

	_, err := h.engine.CreateRoom("r1", 4, "a", "A")
	require.NoError(t, err)
	require.ErrorIs(t, h.engine.StartGame("r1", "a"), ErrNotEnoughMembers)

	_, err = h.engine.JoinRoom("r1", "b", "B")
	require.NoError(t, err)
	require.ErrorIs(t, h.engine.StartGame("r1", "b"), ErrNotHost)

	snap, err := h.engine.Room("r1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseLobby, snap.Phase)
	assert.Nil(t, snap.CurrentAuction)

	require.NoError(t, h.engine.StartGame("r1", "a"))
	require.ErrorIs(t, h.engine.StartGame("r1", "a"), ErrAlreadyStarted)

	snap, err = h.engine.Room("r1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseRunning, snap.Phase)
	require.NotNil(t, snap.CurrentAuction)
	assert.Equal(t, "Striker", snap.CurrentAuction.Player.Name)
	assert.Equal(t, 50, snap.CurrentAuction.CurrentBid)
	assert.Equal(t, InitialCountdownSeconds, snap.CurrentAuction.TimeLeft)
	assert.Empty(t, snap.CurrentAuction.HighestBidder)
}

func TestJoinRoom_WhileRunning(t *testing.T) {
	h := newHarness(t)
	h.startRoom(t, "a", "b")

	snap, err := h.engine.JoinRoom("r1", "c", "C")
	require.NoError(t, err)
	assert.Len(t, snap.Players, 3)
	require.NoError(t, h.engine.Bid("r1", "c", 50))
}

func TestRemoveParticipant_HandsOffHost(t *testing.T) {
	h := newHarness(t)

	_, err := h.engine.CreateRoom("r1", 4, "a", "A")
	require.NoError(t, err)
	_, err = h.engine.JoinRoom("r1", "b", "B")
	require.NoError(t, err)
	_, err = h.engine.JoinRoom("r1", "c", "C")
	require.NoError(t, err)

	h.engine.RemoveParticipant("r1", "a")

	snap, err := h.engine.Room("r1")
	require.NoError(t, err)
	assert.Equal(t, "b", snap.Host)
	assert.Len(t, snap.Players, 2)
	require.ErrorIs(t, h.engine.StartGame("r1", "a"), ErrNotHost)
	require.NoError(t, h.engine.StartGame("r1", "b"))
}

func TestRemoveParticipant_LastMemberClosesRoom(t *testing.T) {
	h := newHarness(t)
	h.startRoom(t, "a", "b")
	require.NoError(t, h.engine.Bid("r1", "a", 50))

	h.engine.RemoveParticipant("r1", "a")
	h.engine.RemoveParticipant("r1", "b")

	assert.Equal(t, 0, h.engine.Registry().Len())
	_, err := h.engine.Room("r1")
	require.ErrorIs(t, err, ErrRoomNotFound)

	// Timers of the closed room stay silent.
	h.clock.Advance(FinalizeWindow + NextItemDelay)
	select {
	case sale := <-h.sales.ch:
		t.Fatalf("unexpected sale %+v", sale)
	case <-time.After(50 * time.Millisecond):
	}

	_, err = h.engine.CreateRoom("r1", 3, "c", "C")
	require.NoError(t, err, "id is free again")
}

func TestRemoveParticipant_Unknown(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.CreateRoom("r1", 4, "a", "A")
	require.NoError(t, err)

	h.engine.RemoveParticipant("r1", "zzz")
	h.engine.RemoveParticipant("nope", "a")

	snap, err := h.engine.Room("r1")
	require.NoError(t, err)
	assert.Len(t, snap.Players, 1)
}

func TestRegistry_IDsSorted(t *testing.T) {
	h := newHarness(t)
	for _, id := range []string{"c", "a", "b"} {
		_, err := h.engine.CreateRoom(id, 3, "host-"+id, "H")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, h.engine.Registry().IDs())
}
