package postgres

import (
	"context"

	"github.com/luccasmb/chainhook/internal/classify"
	"github.com/luccasmb/chainhook/internal/webhook"

	"github.com/google/uuid"
)

// CreateEvent implements classify.EventStorage. The partial unique indexes
// on (address_id, tx_hash, kind) and (contract_id, tx_hash, kind) turn
// duplicate classifications into ErrEventAlreadyRecorded.
func (c *Client) CreateEvent(ctx context.Context, event classify.Event) error {
	const query = `
		INSERT INTO events (id, tx_hash, block_height, block_time, kind, payload, address_id, contract_id, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := c.pool.Exec(ctx, query,
		event.ID, event.TxHash, event.BlockHeight, event.BlockTime,
		string(event.Kind), event.Payload, event.AddressID, event.ContractID,
		event.Processed, event.CreatedAt,
	)
	if isUniqueViolation(err) {
		return classify.ErrEventAlreadyRecorded
	}
	return err
}

// MarkEventProcessed implements webhook.EventStorage.
func (c *Client) MarkEventProcessed(ctx context.Context, eventID uuid.UUID) error {
	_, err := c.pool.Exec(ctx, `UPDATE events SET processed = TRUE WHERE id = $1`, eventID)
	return err
}

var (
	_ classify.EventStorage = (*Client)(nil)
	_ webhook.EventStorage  = (*Client)(nil)
)
