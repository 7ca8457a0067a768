package blockfrost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/luccasmb/chainhook/internal/chainscan"
)

// addressTransaction is one row of the address transaction listing.
type addressTransaction struct {
	TxHash      string `json:"tx_hash"`
	BlockHeight int64  `json:"block_height"`
	BlockTime   int64  `json:"block_time"`
}

// transactionDetail is the core transaction document.
type transactionDetail struct {
	Hash               string `json:"hash"`
	BlockHeight        *int64 `json:"block_height"`
	BlockTime          *int64 `json:"block_time"`
	AssetMintOrBurnCnt int    `json:"asset_mint_or_burn_count"`
}

// transactionUTXOs is the inputs/outputs document.
type transactionUTXOs struct {
	Inputs  []utxoEntry `json:"inputs"`
	Outputs []utxoEntry `json:"outputs"`
}

type utxoEntry struct {
	Address string       `json:"address"`
	Amount  []utxoAmount `json:"amount"`
}

type utxoAmount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// ListTransactions implements chainscan.ChainClient. It returns the most
// recent transactions for the address, newest first.
func (c *Client) ListTransactions(ctx context.Context, address string, count, page int) ([]chainscan.TransactionSummary, error) {
	path := fmt.Sprintf("/addresses/%s/transactions?count=%d&page=%d&order=desc", escape(address), count, page)

	var rows []addressTransaction
	if err := c.get(ctx, path, &rows); err != nil {
		if errors.Is(err, ErrNotFound) {
			// An address without history is simply quiet, not an error.
			return nil, nil
		}
		return nil, err
	}

	summaries := make([]chainscan.TransactionSummary, len(rows))
	for i, row := range rows {
		summaries[i] = chainscan.TransactionSummary{Hash: row.TxHash}
	}
	return summaries, nil
}

// GetTransaction implements chainscan.ChainClient. It combines the core
// transaction document, its inputs/outputs, and its metadata. A missing
// UTXO or metadata document leaves the corresponding fields empty.
func (c *Client) GetTransaction(ctx context.Context, hash string) (chainscan.Transaction, error) {
	var detail transactionDetail
	if err := c.get(ctx, "/txs/"+escape(hash), &detail); err != nil {
		if errors.Is(err, ErrNotFound) {
			return chainscan.Transaction{}, chainscan.ErrTransactionNotFound
		}
		return chainscan.Transaction{}, err
	}

	tx := chainscan.Transaction{
		Hash:        detail.Hash,
		BlockHeight: detail.BlockHeight,
		MintCount:   detail.AssetMintOrBurnCnt,
	}
	if tx.Hash == "" {
		tx.Hash = hash
	}
	if detail.BlockTime != nil {
		blockTime := time.Unix(*detail.BlockTime, 0).UTC()
		tx.BlockTime = &blockTime
	}

	var utxos transactionUTXOs
	if err := c.get(ctx, "/txs/"+escape(hash)+"/utxos", &utxos); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return chainscan.Transaction{}, err
		}
		// Partial upstream data: classify with no detectable inputs/outputs.
	}
	tx.Inputs = toEntries(utxos.Inputs)
	tx.Outputs = toEntries(utxos.Outputs)

	metadata, err := c.getMetadata(ctx, hash)
	if err != nil {
		return chainscan.Transaction{}, err
	}
	tx.Metadata = metadata

	return tx, nil
}

// getMetadata fetches the transaction metadata document. Transactions
// without metadata yield nil, whether the provider reports them as an empty
// list or as not found.
func (c *Client) getMetadata(ctx context.Context, hash string) (json.RawMessage, error) {
	var metadata json.RawMessage
	if err := c.get(ctx, "/txs/"+escape(hash)+"/metadata", &metadata); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return metadata, nil
}

func toEntries(entries []utxoEntry) []chainscan.TxEntry {
	if len(entries) == 0 {
		return nil
	}

	converted := make([]chainscan.TxEntry, len(entries))
	for i, entry := range entries {
		amounts := make([]chainscan.Amount, len(entry.Amount))
		for j, amount := range entry.Amount {
			amounts[j] = chainscan.Amount{Unit: amount.Unit, Quantity: amount.Quantity}
		}
		converted[i] = chainscan.TxEntry{Address: entry.Address, Amounts: amounts}
	}
	return converted
}
