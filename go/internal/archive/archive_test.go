package archive

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/auctionhouse/go/internal/archive/db"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	sales    []models.Sale
	failures int
}

func (m *memStore) InsertSale(_ context.Context, sale models.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("connection refused")
	}
	m.sales = append(m.sales, sale)
	return nil
}

func (m *memStore) stored() []models.Sale {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Sale, len(m.sales))
	copy(out, m.sales)
	return out
}

func testSale(player string) models.Sale {
	return models.Sale{
		RoomID:     "r1",
		PlayerName: player,
		Position:   "CF",
		BasePrice:  70,
		Price:      75,
		WinnerID:   "p1",
		WinnerName: "ann",
		Outcome:    models.SaleOutcomeSold,
		BidCount:   2,
		SettledAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRowConversion(t *testing.T) {
	id := uuid.New()
	sale := testSale("Cristiano Ronaldo")

	params, err := toInsertParams(id, sale)
	require.NoError(t, err)
	assert.True(t, params.WinnerID.Valid)
	assert.True(t, params.Metadata.Valid)
	assert.JSONEq(t, `{"bid_count":2}`, string(params.Metadata.RawMessage))

	got, err := fromRow(db.AuctionSale{
		ID:         id,
		RoomID:     params.RoomID,
		PlayerName: params.PlayerName,
		Position:   params.Position,
		BasePrice:  params.BasePrice,
		Price:      params.Price,
		WinnerID:   params.WinnerID,
		WinnerName: params.WinnerName,
		Outcome:    params.Outcome,
		Metadata:   params.Metadata,
		SettledAt:  params.SettledAt,
	})
	require.NoError(t, err)
	assert.Equal(t, sale, got)
}

func TestRowConversion_UnsoldHasNullWinner(t *testing.T) {
	sale := testSale("Manuel Neuer")
	sale.Outcome = models.SaleOutcomeUnsold
	sale.WinnerID, sale.WinnerName, sale.Price = "", "", 0

	params, err := toInsertParams(uuid.New(), sale)
	require.NoError(t, err)
	assert.False(t, params.WinnerID.Valid)
	assert.False(t, params.WinnerName.Valid)
}

func TestWriter_StoresQueuedSales(t *testing.T) {
	store := &memStore{}
	w := NewWriter(store, DefaultWriterConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.RecordSale(testSale("a"))
	w.RecordSale(testSale("b"))

	require.Eventually(t, func() bool { return len(store.stored()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "a", store.stored()[0].PlayerName)
}

func TestWriter_RetriesFailedInsert(t *testing.T) {
	store := &memStore{failures: 2}
	cfg := DefaultWriterConfig()
	cfg.RetryBackoff = time.Millisecond
	w := NewWriter(store, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.RecordSale(testSale("a"))
	require.Eventually(t, func() bool { return len(store.stored()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestWriter_FlushesOnShutdown(t *testing.T) {
	store := &memStore{}
	w := NewWriter(store, DefaultWriterConfig())

	w.RecordSale(testSale("a"))
	w.RecordSale(testSale("b"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	assert.Len(t, store.stored(), 2)
}

func TestWriter_DropsWhenFull(t *testing.T) {
	store := &memStore{}
	w := NewWriter(store, WriterConfig{BufferSize: 1})

	w.RecordSale(testSale("a"))
	w.RecordSale(testSale("b"))

	assert.Len(t, w.queue, 1)
}

type batchMemStore struct {
	memStore
	batches int
}

func (b *batchMemStore) InsertSales(ctx context.Context, sales []models.Sale) error {
	b.mu.Lock()
	b.batches++
	b.mu.Unlock()
	for _, sale := range sales {
		if err := b.InsertSale(ctx, sale); err != nil {
			return err
		}
	}
	return nil
}

func TestWriter_FlushUsesBatchInsert(t *testing.T) {
	store := &batchMemStore{}
	w := NewWriter(store, DefaultWriterConfig())

	w.RecordSale(testSale("a"))
	w.RecordSale(testSale("b"))
	w.RecordSale(testSale("c"))

	w.flush()

	assert.Len(t, store.stored(), 3)
	assert.Equal(t, 1, store.batches)
}
