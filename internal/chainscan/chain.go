package chainscan

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrTransactionNotFound is returned by ChainClient implementations when the
// upstream provider does not know the requested transaction.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionSummary is one row of an address transaction listing. Only the
// hash is needed to decide whether the transaction was already processed.
type TransactionSummary struct {
	Hash string
}

// Amount is a single asset quantity attached to a transaction entry. Unit is
// the asset identifier; the chain's native currency uses its own well-known
// unit. Quantity is kept as the decimal string the provider returns.
type Amount struct {
	Unit     string
	Quantity string
}

// TxEntry is one input or output of a transaction: the address involved and
// the amounts moved. Amounts may be empty when the provider returned partial
// data; that is treated as "no detectable value", never as an error.
type TxEntry struct {
	Address string
	Amounts []Amount
}

// Transaction is the full detail of one on-chain transaction as far as the
// scanner cares. BlockHeight and BlockTime are nil when the provider did not
// report them. Metadata is the raw metadata document, nil when absent.
type Transaction struct {
	Hash        string
	BlockHeight *int64
	BlockTime   *time.Time
	Inputs      []TxEntry
	Outputs     []TxEntry
	MintCount   int
	Metadata    json.RawMessage
}

// ChainClient is the upstream blockchain-data provider as seen by the
// scanner. Calls may fail transiently; a failing call never aborts the scan
// cycle for other entities.
type ChainClient interface {
	// ListTransactions returns the most recent transactions involving the
	// address, newest first, limited to count entries of the given page.
	ListTransactions(ctx context.Context, address string, count, page int) ([]TransactionSummary, error)

	// GetTransaction fetches the full detail for a transaction hash.
	// Implementations return ErrTransactionNotFound when the upstream
	// provider does not know the hash.
	GetTransaction(ctx context.Context, hash string) (Transaction, error)
}
