package classify

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// LovelaceUnit is the chain's native-currency unit. Every other unit is
// treated as a token asset.
const LovelaceUnit = "lovelace"

// TargetKind distinguishes whether a transaction was fetched for a watched
// address or a watched contract.
type TargetKind string

const (
	TargetAddress  TargetKind = "address"
	TargetContract TargetKind = "contract"
)

// Target is the watched entity a transaction is being classified against.
type Target struct {
	ID      uuid.UUID
	Kind    TargetKind
	Address string
}

// Amount is a single asset quantity. Quantity stays in the decimal string
// form the upstream provider uses; parse failures contribute zero.
type Amount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// TxEntry is one input or output of a transaction.
type TxEntry struct {
	Address string   `json:"address"`
	Amounts []Amount `json:"amount"`
}

// Transaction is the classifier's view of one transaction's detail. Missing
// inputs, outputs, or metadata are represented as nil and contribute nothing
// to classification.
type Transaction struct {
	Hash        string          `json:"hash"`
	BlockHeight *int64          `json:"block_height"`
	BlockTime   *time.Time      `json:"block_time"`
	Inputs      []TxEntry       `json:"inputs"`
	Outputs     []TxEntry       `json:"outputs"`
	MintCount   int             `json:"mint_count"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// amountsAt flattens the amounts of every entry belonging to the given
// address. A nil entry list yields an empty result.
func amountsAt(entries []TxEntry, address string) []Amount {
	var amounts []Amount
	for _, entry := range entries {
		if entry.Address == address {
			amounts = append(amounts, entry.Amounts...)
		}
	}
	return amounts
}

// touchesAddress reports whether any entry belongs to the given address.
func touchesAddress(entries []TxEntry, address string) bool {
	for _, entry := range entries {
		if entry.Address == address {
			return true
		}
	}
	return false
}

// sumNative adds up the native-currency quantities in the amount list.
// Unparseable quantities count as zero.
func sumNative(amounts []Amount) uint64 {
	var total uint64
	for _, amount := range amounts {
		if amount.Unit != LovelaceUnit {
			continue
		}
		if qty, err := strconv.ParseUint(amount.Quantity, 10, 64); err == nil {
			total += qty
		}
	}
	return total
}

// tokenAmounts returns the non-native amounts in the list.
func tokenAmounts(amounts []Amount) []Amount {
	var tokens []Amount
	for _, amount := range amounts {
		if amount.Unit != LovelaceUnit {
			tokens = append(tokens, amount)
		}
	}
	return tokens
}

// containsSingleQuantity reports whether any amount has quantity exactly 1,
// the heuristic for an NFT transfer.
func containsSingleQuantity(amounts []Amount) bool {
	for _, amount := range amounts {
		if qty, err := strconv.ParseUint(amount.Quantity, 10, 64); err == nil && qty == 1 {
			return true
		}
	}
	return false
}

// metadataPresent reports whether the raw metadata document carries any
// content. Empty arrays, empty objects, and JSON null all count as absent.
func metadataPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "[]", "{}":
		return false
	}
	return true
}
