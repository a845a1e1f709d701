package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJetStream struct {
	mu   sync.Mutex
	msgs []*nats.Msg
	err  error
}

func (f *fakeJetStream) PublishMsg(_ context.Context, msg *nats.Msg, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.msgs = append(f.msgs, msg)
	return &jetstream.PubAck{Stream: "AUCTION_EVENTS", Sequence: uint64(len(f.msgs))}, nil
}

func (f *fakeJetStream) published() []*nats.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*nats.Msg, len(f.msgs))
	copy(out, f.msgs)
	return out
}

func TestSubject(t *testing.T) {
	p := newPublisher(&fakeJetStream{}, DefaultJetStreamConfig())

	cases := map[string]string{
		"room1":      "auction.events.room1.roomUpdate",
		"a.b":        "auction.events.a_b.roomUpdate",
		"wild*card>": "auction.events.wild_card_.roomUpdate",
		"with space": "auction.events.with_space.roomUpdate",
		"":           "auction.events._.roomUpdate",
	}
	for roomID, want := range cases {
		ev := events.New(roomID, events.TypeRoomUpdate, nil, time.Now())
		assert.Equal(t, want, p.Subject(ev), "room %q", roomID)
	}
}

func TestPublish_SetsHeadersAndBody(t *testing.T) {
	js := &fakeJetStream{}
	p := newPublisher(js, DefaultJetStreamConfig())

	ev := events.New("r1", events.TypeChat, events.ChatPayload{Msg: "hello"}, time.Now())
	require.NoError(t, p.Publish(context.Background(), ev))

	msgs := js.published()
	require.Len(t, msgs, 1)
	assert.Equal(t, "auction.events.r1.chat", msgs[0].Subject)
	assert.Equal(t, ev.ID, msgs[0].Header.Get("Event-ID"))
	assert.Equal(t, "r1", msgs[0].Header.Get("Room-ID"))

	var decoded struct {
		Type string             `json:"type"`
		Data events.ChatPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msgs[0].Data, &decoded))
	assert.Equal(t, "chat", decoded.Type)
	assert.Equal(t, "hello", decoded.Data.Msg)
}

func TestPublish_WrapsError(t *testing.T) {
	boom := errors.New("no responders")
	p := newPublisher(&fakeJetStream{err: boom}, DefaultJetStreamConfig())

	err := p.Publish(context.Background(), events.New("r1", events.TypeChat, nil, time.Now()))
	require.ErrorIs(t, err, boom)
}

func TestRun_DrainsQueueAndSkipsTicks(t *testing.T) {
	js := &fakeJetStream{}
	p := newPublisher(js, DefaultJetStreamConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Broadcast("r1", events.New("r1", events.TypeAuctionTick, events.TickPayload{TimeLeft: 3}, time.Now()))
	p.Broadcast("r1", events.New("r1", events.TypeAuctionStart, nil, time.Now()))
	p.Broadcast("r1", events.New("r1", events.TypeRoomUpdate, nil, time.Now()))

	require.Eventually(t, func() bool { return len(js.published()) == 2 }, time.Second, 5*time.Millisecond)
	msgs := js.published()
	assert.Equal(t, "auction.events.r1.auctionStart", msgs[0].Subject)
	assert.Equal(t, "auction.events.r1.roomUpdate", msgs[1].Subject)
}

func TestRun_PublishesQueuedEventsOnStop(t *testing.T) {
	js := &fakeJetStream{}
	p := newPublisher(js, DefaultJetStreamConfig())

	p.Broadcast("r1", events.New("r1", events.TypeRoomUpdate, nil, time.Now()))
	p.Broadcast("r1", events.New("r1", events.TypeChat, events.ChatPayload{Msg: "B won"}, time.Now()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx)

	assert.Len(t, js.published(), 2)
}

func TestBroadcast_TicksWhenEnabled(t *testing.T) {
	cfg := DefaultJetStreamConfig()
	cfg.PublishTicks = true
	cfg.BufferSize = 1
	p := newPublisher(&fakeJetStream{}, cfg)

	p.Broadcast("r1", events.New("r1", events.TypeAuctionTick, nil, time.Now()))
	// Queue is full and Run is not consuming: the second event is dropped, not blocked on.
	p.Broadcast("r1", events.New("r1", events.TypeAuctionTick, nil, time.Now()))

	assert.Len(t, p.queue, 1)
}
