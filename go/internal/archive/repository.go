package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/auctionhouse/go/internal/archive/db"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/mcdev12/auctionhouse/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// saleMetadata is stored in the JSONB metadata column.
type saleMetadata struct {
	BidCount int `json:"bid_count"`
}

type Repository struct {
	database *sql.DB
	queries  *db.Queries
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{
		database: database,
		queries:  db.New(database),
	}
}

func (r *Repository) InsertSale(ctx context.Context, sale models.Sale) error {
	params, err := toInsertParams(uuid.New(), sale)
	if err != nil {
		return err
	}
	if err := r.queries.InsertSale(ctx, params); err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

// InsertSales stores sales in one transaction.
func (r *Repository) InsertSales(ctx context.Context, sales []models.Sale) error {
	return sqlutil.Run(ctx, r.database, r.queries.WithTx, func(q *db.Queries) error {
		for _, sale := range sales {
			params, err := toInsertParams(uuid.New(), sale)
			if err != nil {
				return err
			}
			if err := q.InsertSale(ctx, params); err != nil {
				return fmt.Errorf("failed to insert sale for room %s: %w", sale.RoomID, err)
			}
		}
		return nil
	})
}

func (r *Repository) ListSalesByRoom(ctx context.Context, roomID string) ([]models.Sale, error) {
	rows, err := r.queries.ListSalesByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	sales := make([]models.Sale, 0, len(rows))
	for _, row := range rows {
		sale, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func toInsertParams(id uuid.UUID, sale models.Sale) (db.InsertSaleParams, error) {
	meta, err := json.Marshal(saleMetadata{BidCount: sale.BidCount})
	if err != nil {
		return db.InsertSaleParams{}, fmt.Errorf("failed to marshal sale metadata: %w", err)
	}

	return db.InsertSaleParams{
		ID:         id,
		RoomID:     sale.RoomID,
		PlayerName: sale.PlayerName,
		Position:   sale.Position,
		BasePrice:  int32(sale.BasePrice),
		Price:      int32(sale.Price),
		WinnerID:   sqlutil.ToNullString(sale.WinnerID),
		WinnerName: sqlutil.ToNullString(sale.WinnerName),
		Outcome:    string(sale.Outcome),
		Metadata:   pqtype.NullRawMessage{RawMessage: meta, Valid: true},
		SettledAt:  sale.SettledAt,
	}, nil
}

func fromRow(row db.AuctionSale) (models.Sale, error) {
	sale := models.Sale{
		RoomID:     row.RoomID,
		PlayerName: row.PlayerName,
		Position:   row.Position,
		BasePrice:  int(row.BasePrice),
		Price:      int(row.Price),
		WinnerID:   sqlutil.FromNullString(row.WinnerID),
		WinnerName: sqlutil.FromNullString(row.WinnerName),
		Outcome:    models.SaleOutcome(row.Outcome),
		SettledAt:  row.SettledAt.UTC(),
	}
	if row.Metadata.Valid {
		var meta saleMetadata
		if err := json.Unmarshal(row.Metadata.RawMessage, &meta); err != nil {
			return models.Sale{}, fmt.Errorf("failed to decode metadata of sale %s: %w", row.ID, err)
		}
		sale.BidCount = meta.BidCount
	}
	return sale, nil
}
