package archive

import (
	"context"
	"time"

	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/rs/zerolog/log"
)

// SaleStore persists settled sales.
type SaleStore interface {
	InsertSale(ctx context.Context, sale models.Sale) error
}

// batchStore is implemented by stores that can insert several sales at once.
type batchStore interface {
	InsertSales(ctx context.Context, sales []models.Sale) error
}

// WriterConfig tunes the background writer.
type WriterConfig struct {
	BufferSize   int
	WriteTimeout time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BufferSize:   256,
		WriteTimeout: 5 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 200 * time.Millisecond,
	}
}

// Writer moves sales off the auction hot path: RecordSale only enqueues and
// Run performs the inserts.
type Writer struct {
	store  SaleStore
	config WriterConfig
	queue  chan models.Sale
}

func NewWriter(store SaleStore, config WriterConfig) *Writer {
	if config.BufferSize <= 0 {
		config.BufferSize = 256
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	return &Writer{
		store:  store,
		config: config,
		queue:  make(chan models.Sale, config.BufferSize),
	}
}

// RecordSale queues sale for storage. It drops the sale rather than block.
func (w *Writer) RecordSale(sale models.Sale) {
	select {
	case w.queue <- sale:
	default:
		log.Warn().
			Str("room_id", sale.RoomID).
			Str("player", sale.PlayerName).
			Msg("sale queue full, dropping sale")
	}
}

// Run stores queued sales until ctx is cancelled, then flushes what is left.
func (w *Writer) Run(ctx context.Context) {
	log.Info().Msg("sale writer started")
	for {
		select {
		case <-ctx.Done():
			w.flush()
			log.Info().Msg("sale writer stopped")
			return
		case sale := <-w.queue:
			w.write(ctx, sale)
		}
	}
}

func (w *Writer) flush() {
	var pending []models.Sale
	for done := false; !done; {
		select {
		case sale := <-w.queue:
			pending = append(pending, sale)
		default:
			done = true
		}
	}
	if len(pending) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.config.WriteTimeout)
	defer cancel()

	if batch, ok := w.store.(batchStore); ok {
		if err := batch.InsertSales(ctx, pending); err != nil {
			log.Error().Err(err).Int("sales", len(pending)).Msg("failed to flush sales")
			return
		}
		log.Info().Int("sales", len(pending)).Msg("flushed pending sales")
		return
	}
	for _, sale := range pending {
		w.write(ctx, sale)
	}
}

func (w *Writer) write(ctx context.Context, sale models.Sale) {
	var err error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(w.config.RetryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
			}
		}

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.config.WriteTimeout)
		err = w.store.InsertSale(writeCtx, sale)
		cancel()
		if err == nil {
			log.Debug().
				Str("room_id", sale.RoomID).
				Str("player", sale.PlayerName).
				Str("outcome", string(sale.Outcome)).
				Msg("sale archived")
			return
		}
	}

	log.Error().
		Err(err).
		Str("room_id", sale.RoomID).
		Str("player", sale.PlayerName).
		Int("attempts", w.config.MaxRetries+1).
		Msg("failed to archive sale")
}
