package processor

import (
	"sort"

	"github.com/archana8teenth/compound-risk-scoring/logger"
	"github.com/archana8teenth/compound-risk-scoring/models"
)

// Aggregator reduces the normalized transaction table into one
// WalletMetrics row per wallet. Each wallet's metrics depend only on its
// own transactions, so groups are independent.
type Aggregator struct {
	log *logger.Log
}

func NewAggregator() *Aggregator {
	return &Aggregator{log: logger.GetLogger()}
}

// Aggregate groups the table by wallet address and computes the metric set
// for each group. Addresses listed in wallets but absent from the table
// (zero protocol activity) still get a fully zero-guarded row. Output rows
// are ordered by wallet address ascending.
func (a *Aggregator) Aggregate(txs []models.NormalizedTransaction, wallets []string) []models.WalletMetrics {
	log := a.log.WithComponent("aggregator")

	groups := make(map[string][]models.NormalizedTransaction)
	for _, tx := range txs {
		groups[tx.WalletAddress] = append(groups[tx.WalletAddress], tx)
	}
	for _, w := range wallets {
		if _, ok := groups[w]; !ok {
			groups[w] = nil
		}
	}

	addresses := make([]string, 0, len(groups))
	for addr := range groups {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	metrics := make([]models.WalletMetrics, 0, len(addresses))
	for _, addr := range addresses {
		metrics = append(metrics, walletMetrics(addr, groups[addr]))
	}

	log.WithFields(logger.Fields{"wallets": len(metrics)}).Info("calculated wallet metrics")
	logger.RecordStageRecords("aggregator", len(metrics), 0)

	return metrics
}

// walletMetrics computes the full metric set for a single wallet. The
// transaction slice is already sorted by timestamp ascending.
func walletMetrics(address string, txs []models.NormalizedTransaction) models.WalletMetrics {
	m := models.WalletMetrics{WalletAddress: address}

	m.TotalTransactions = len(txs)
	for _, tx := range txs {
		if tx.Success() {
			m.SuccessfulTransactions++
		}
	}
	m.FailedTransactions = m.TotalTransactions - m.SuccessfulTransactions
	m.SuccessRate = float64(m.SuccessfulTransactions) / float64(maxInt(m.TotalTransactions, 1))

	if len(txs) > 0 {
		m.FirstTxDate = txs[0].Timestamp
		m.LastTxDate = txs[len(txs)-1].Timestamp
		m.AccountAgeDays = float64(m.LastTxDate-m.FirstTxDate) / 86400
		m.AvgTxIntervalDays = m.AccountAgeDays / float64(maxInt(m.TotalTransactions-1, 1))
	}

	actionCounts := make(map[string]int)
	for _, tx := range txs {
		actionCounts[tx.Action]++
	}
	m.MintCount = actionCounts["mint"]
	m.RedeemCount = actionCounts["redeem"]
	m.RedeemUnderlyingCount = actionCounts["redeemUnderlying"]
	m.BorrowCount = actionCounts["borrow"]
	m.RepayBorrowCount = actionCounts["repayBorrow"]
	m.LiquidateBorrowCount = actionCounts["liquidateBorrow"]

	// Ratio denominator spans the non-liquidation actions only.
	totalActions := m.MintCount + m.RedeemCount + m.RedeemUnderlyingCount + m.BorrowCount + m.RepayBorrowCount
	if totalActions > 0 {
		m.SupplyRatio = float64(m.MintCount) / float64(totalActions)
		m.WithdrawRatio = float64(m.RedeemCount+m.RedeemUnderlyingCount) / float64(totalActions)
		m.BorrowRatio = float64(m.BorrowCount) / float64(totalActions)
		m.RepayRatio = float64(m.RepayBorrowCount) / float64(totalActions)
	}

	m.LiquidationCount = m.LiquidateBorrowCount
	if m.LiquidationCount > 0 {
		m.HasLiquidations = 1
	}
	m.LiquidationRate = float64(m.LiquidationCount) / float64(maxInt(m.TotalTransactions, 1))

	// Fee and value aggregates count successful transactions only.
	var fees, values []float64
	for _, tx := range txs {
		if tx.Success() {
			fees = append(fees, tx.TxFee)
			values = append(values, tx.Value)
		}
	}
	if len(fees) > 0 {
		m.TotalGasSpent = sum(fees)
		m.AvgGasPerTx = mean(fees)
		m.TotalEthValue = sum(values)
		m.AvgEthPerTx = mean(values)
	}

	if len(txs) > 1 {
		gaps := make([]float64, 0, len(txs)-1)
		for i := 1; i < len(txs); i++ {
			gaps = append(gaps, float64(txs[i].Timestamp-txs[i-1].Timestamp)/3600)
		}
		m.AvgTimeBetweenTxs = mean(gaps)
		m.StdTimeBetweenTxs = sampleStd(gaps)
		if m.AvgTimeBetweenTxs > 0 {
			m.ActivityRegularity = m.StdTimeBetweenTxs / m.AvgTimeBetweenTxs
		}
	}

	m.ActionDiversity = len(actionCounts)

	weekend, night := 0, 0
	for _, tx := range txs {
		if tx.DayOfWeek == 5 || tx.DayOfWeek == 6 {
			weekend++
		}
		if tx.Hour >= 0 && tx.Hour <= 6 {
			night++
		}
	}
	m.WeekendActivityRatio = float64(weekend) / float64(maxInt(len(txs), 1))
	m.NightActivityRatio = float64(night) / float64(maxInt(len(txs), 1))

	m.RepayToBorrowRatio = float64(m.RepayBorrowCount) / float64(maxInt(m.BorrowCount, 1))

	if len(txs) > 0 {
		perDay := make(map[string]int)
		for _, tx := range txs {
			perDay[tx.Date]++
		}
		counts := make([]float64, 0, len(perDay))
		for _, c := range perDay {
			counts = append(counts, float64(c))
			if c > m.MaxDailyTransactions {
				m.MaxDailyTransactions = c
			}
		}
		m.AvgDailyTransactions = mean(counts)
		m.DailyActivityVariance = sampleVariance(counts)
	}

	return m
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
