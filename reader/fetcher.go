package reader

import (
	"context"
	"strings"
	"time"

	appconfig "github.com/archana8teenth/compound-risk-scoring/config"
	"github.com/archana8teenth/compound-risk-scoring/logger"
	"github.com/archana8teenth/compound-risk-scoring/models"
	"github.com/archana8teenth/compound-risk-scoring/reader/etherscan"
)

// TransactionSource yields every known transaction for one address. It is
// satisfied by the Etherscan client and stubbed in tests.
type TransactionSource interface {
	AllTransactions(ctx context.Context, address string) ([]models.RawTransaction, error)
}

// Fetcher walks the wallet list sequentially, pulls each wallet's
// transaction history and reduces it to the protocol subset. Wallets are
// fetched one at a time with a fixed delay in between; the explorer's
// request budget is tight enough that parallelism buys nothing.
type Fetcher struct {
	config *appconfig.Config
	source TransactionSource
	log    *logger.Log
}

func NewFetcher(cfg *appconfig.Config) *Fetcher {
	return &Fetcher{
		config: cfg,
		source: etherscan.NewClient(cfg),
		log:    logger.GetLogger(),
	}
}

// NewFetcherWithSource builds a fetcher over a custom transaction source.
func NewFetcherWithSource(cfg *appconfig.Config, source TransactionSource) *Fetcher {
	return &Fetcher{config: cfg, source: source, log: logger.GetLogger()}
}

// FetchWallet collects one wallet's protocol transaction set.
func (f *Fetcher) FetchWallet(ctx context.Context, address string) (models.WalletData, error) {
	log := f.log.WithComponent("fetcher").WithFields(logger.Fields{"address": address})
	log.Debug("fetching wallet data")

	all, err := f.source.AllTransactions(ctx, address)
	if err != nil {
		return models.WalletData{}, err
	}

	protocol := FilterProtocolTransactions(all)
	log.WithFields(logger.Fields{
		"total":    len(all),
		"protocol": len(protocol),
	}).Info("fetched wallet transactions")

	return models.WalletData{
		Address:         strings.ToLower(address),
		Transactions:    protocol,
		TotalTxCount:    len(all),
		ProtocolTxCount: len(protocol),
	}, nil
}

// FetchWallets processes the address list in order. A wallet that fails
// is logged and skipped; one bad address never aborts the run.
func (f *Fetcher) FetchWallets(ctx context.Context, addresses []string) ([]models.WalletData, error) {
	log := f.log.WithComponent("fetcher")
	delay := f.config.Fetcher.WalletDelay
	start := time.Now()

	failed := 0
	batch := make([]models.WalletData, 0, len(addresses))
	for i, address := range addresses {
		data, err := f.FetchWallet(ctx, address)
		if err != nil {
			if ctx.Err() != nil {
				return batch, ctx.Err()
			}
			log.WithError(err).WithFields(logger.Fields{"address": address}).Error("failed to fetch wallet, skipping")
			failed++
			continue
		}
		batch = append(batch, data)
		logger.IncrementWalletFetched(len(data.Transactions))

		if (i+1)%10 == 0 {
			log.WithFields(logger.Fields{
				"processed": i + 1,
				"total":     len(addresses),
			}).Info("fetch progress")
		}

		if delay > 0 && i < len(addresses)-1 {
			select {
			case <-ctx.Done():
				return batch, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	log.WithFields(logger.Fields{"wallets": len(batch)}).Info("wallet fetch complete")
	log.LogMetric("fetcher", "wallets_fetched", len(batch), "counter", logger.Fields{})
	log.LogMetric("fetcher", "wallets_failed", failed, "counter", logger.Fields{})
	logger.LogPerformanceEntry(log, "fetcher", "fetch_wallets", time.Since(start), nil)
	return batch, nil
}
