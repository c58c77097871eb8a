package processor

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/archana8teenth/compound-risk-scoring/logger"
	"github.com/archana8teenth/compound-risk-scoring/models"
)

// Normalizer turns raw per-wallet transaction lists into one flat, typed
// table ordered by (wallet address, timestamp). Malformed numeric fields
// are zero-filled so a single bad record never sinks the batch.
type Normalizer struct {
	log *logger.Log
}

func NewNormalizer() *Normalizer {
	return &Normalizer{log: logger.GetLogger()}
}

// Normalize flattens the wallet batch into the normalized transaction
// table. An empty batch yields an empty table, not an error.
func (n *Normalizer) Normalize(batch []models.WalletData) []models.NormalizedTransaction {
	log := n.log.WithComponent("normalizer")

	rows := make([]models.NormalizedTransaction, 0, totalTxCount(batch))
	wallets := make(map[string]struct{}, len(batch))

	for _, wallet := range batch {
		for _, tx := range wallet.Transactions {
			rows = append(rows, n.normalizeOne(wallet.Address, tx))
		}
		if len(wallet.Transactions) > 0 {
			wallets[wallet.Address] = struct{}{}
		}
	}

	// Stable sort keeps input order for equal timestamps within a wallet.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].WalletAddress != rows[j].WalletAddress {
			return rows[i].WalletAddress < rows[j].WalletAddress
		}
		return rows[i].Timestamp < rows[j].Timestamp
	})

	if len(rows) > 0 {
		log.WithFields(logger.Fields{
			"transactions": len(rows),
			"wallets":      len(wallets),
		}).Info("normalized wallet transaction data")
	}
	logger.RecordStageRecords("normalizer", len(rows), 0)
	logger.LogDataFlowEntry(log, "raw_wallet_batch", "normalized_table", len(rows), "transactions")

	return rows
}

func (n *Normalizer) normalizeOne(address string, tx models.RawTransaction) models.NormalizedTransaction {
	gasUsed := parseInt(tx.GasUsed)
	gasPrice := parseInt(tx.GasPrice)

	action := tx.Action
	if action == "" {
		action = models.ActionUnknown
	}
	txType := tx.Type
	if txType == "" {
		txType = models.TxTypeRegular
	}

	row := models.NormalizedTransaction{
		WalletAddress: address,
		TxHash:        tx.Hash,
		BlockNumber:   parseInt(tx.BlockNumber),
		Timestamp:     parseInt(tx.TimeStamp),
		FromAddress:   strings.ToLower(tx.From),
		ToAddress:     strings.ToLower(tx.To),
		Value:         parseFloat(tx.Value) / 1e18,
		GasUsed:       gasUsed,
		GasPrice:      gasPrice,
		TxFee:         float64(gasUsed) * float64(gasPrice) / 1e18,
		Action:        action,
		IsError:       errorFlag(tx.IsError),
		TxType:        txType,
	}

	if txType == models.TxTypeToken {
		decimals := parseInt(tx.TokenDecimal)
		if tx.TokenDecimal == "" {
			decimals = 18
		}
		row.TokenValue = parseFloat(tx.Value) / math.Pow(10, float64(decimals))
		row.TokenSymbol = tx.TokenSymbol
		row.TokenAddress = strings.ToLower(tx.ContractAddress)
	}

	dt := time.Unix(row.Timestamp, 0).UTC()
	row.DateTime = dt
	row.Date = dt.Format("2006-01-02")
	row.Hour = dt.Hour()
	// Go weekday starts at Sunday=0; shift to Monday=0 .. Sunday=6.
	row.DayOfWeek = (int(dt.Weekday()) + 6) % 7

	return row
}

func totalTxCount(batch []models.WalletData) int {
	total := 0
	for _, w := range batch {
		total += len(w.Transactions)
	}
	return total
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// errorFlag collapses the explorer's isError field to 0 or 1.
func errorFlag(s string) int {
	if parseInt(s) != 0 {
		return 1
	}
	return 0
}
