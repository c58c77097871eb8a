package models

import (
	"time"
)

// Transaction type tags applied by the fetcher.
const (
	TxTypeRegular  = "regular"
	TxTypeInternal = "internal"
	TxTypeToken    = "token"
)

// ActionUnknown labels transactions whose method signature is not part of
// the lending action taxonomy.
const ActionUnknown = "unknown"

// RawTransaction represents one record returned by the explorer API
// (txlist, txlistinternal or tokentx). Numeric fields arrive as decimal
// strings and are coerced defensively by the normalizer; a missing or
// malformed field becomes zero, never an error.
type RawTransaction struct {
	Hash            string `json:"hash"`
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	GasUsed         string `json:"gasUsed"`
	GasPrice        string `json:"gasPrice"`
	IsError         string `json:"isError"`
	Input           string `json:"input"`
	ContractAddress string `json:"contractAddress"`
	TokenSymbol     string `json:"tokenSymbol,omitempty"`
	TokenDecimal    string `json:"tokenDecimal,omitempty"`
	Type            string `json:"type,omitempty"`
	Action          string `json:"compound_action,omitempty"`
}

// WalletData pairs a wallet address with its protocol transactions. It is
// the unit produced by the fetcher, cached to disk between runs, and
// consumed by the normalizer.
type WalletData struct {
	Address         string           `json:"address"`
	Transactions    []RawTransaction `json:"transactions"`
	TotalTxCount    int              `json:"total_tx_count"`
	ProtocolTxCount int              `json:"compound_tx_count"`
}

// NormalizedTransaction is one flat, typed row of the transaction table.
// Values are scaled from base units (wei) to ETH and the derived time
// fields are computed in UTC. DayOfWeek uses the Monday=0 .. Sunday=6
// convention; the weekend set is {5, 6} (Saturday, Sunday).
type NormalizedTransaction struct {
	WalletAddress string    `json:"wallet_address"`
	TxHash        string    `json:"tx_hash"`
	BlockNumber   int64     `json:"block_number"`
	Timestamp     int64     `json:"timestamp"`
	FromAddress   string    `json:"from_address"`
	ToAddress     string    `json:"to_address"`
	Value         float64   `json:"value"`
	GasUsed       int64     `json:"gas_used"`
	GasPrice      int64     `json:"gas_price"`
	TxFee         float64   `json:"tx_fee"`
	Action        string    `json:"compound_action"`
	IsError       int       `json:"is_error"`
	TxType        string    `json:"tx_type"`
	TokenValue    float64   `json:"token_value,omitempty"`
	TokenSymbol   string    `json:"token_symbol,omitempty"`
	TokenAddress  string    `json:"token_address,omitempty"`
	DateTime      time.Time `json:"datetime"`
	Date          string    `json:"date"`
	Hour          int       `json:"hour"`
	DayOfWeek     int       `json:"day_of_week"`
}

// Success reports whether the transaction executed without error.
func (t NormalizedTransaction) Success() bool {
	return t.IsError == 0
}
