package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	appconfig "github.com/archana8teenth/compound-risk-scoring/config"
	"github.com/archana8teenth/compound-risk-scoring/logger"
	"github.com/archana8teenth/compound-risk-scoring/models"
	"github.com/archana8teenth/compound-risk-scoring/processor"
	"github.com/archana8teenth/compound-risk-scoring/reader"
	"github.com/archana8teenth/compound-risk-scoring/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	walletFile := flag.String("wallets", "", "CSV file with wallet addresses")
	output := flag.String("output", "wallet_scores.csv", "Output CSV file name")
	useCache := flag.Bool("use-cache", false, "Use cached transaction data if available")
	limit := flag.Int("limit", 0, "Limit number of wallets to process")
	explain := flag.String("explain", "", "Print a score explanation for one wallet address")

	flag.Parse()

	cfg, err := appconfig.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Riskscore.Name,
		"version": cfg.Riskscore.Version,
	}).Info("starting risk scoring")

	if cfg.Logging.DashboardName != "" {
		logger.InitCloudWatch(cfg.Storage.S3.Region, cfg.Riskscore.Name, cfg.Logging.DashboardName)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		log.WithFields(logger.Fields{"signal": sig.String()}).Warn("received shutdown signal")
		cancel()
	}()

	if err := run(ctx, cfg, *walletFile, *output, *useCache, *limit, *explain); err != nil {
		log.WithError(err).Error("risk scoring run failed")
		os.Exit(1)
	}

	log.Info("risk scoring analysis complete")
}

func run(ctx context.Context, cfg *appconfig.Config, walletFile, output string, useCache bool, limit int, explain string) error {
	log := logger.GetLogger().WithComponent("main")

	// Step 1: wallet addresses.
	if walletFile == "" {
		walletFile = cfg.Wallets.File
	}
	if _, err := os.Stat(walletFile); walletFile == "" || err != nil {
		downloaded, err := reader.DownloadWalletList(cfg.Wallets.SheetURL, filepath.Join("data", "wallet_addresses.csv"))
		if err != nil {
			return err
		}
		walletFile = downloaded
	}

	addresses, err := reader.LoadWalletAddresses(walletFile)
	if err != nil {
		return err
	}
	if limit > 0 && limit < len(addresses) {
		addresses = addresses[:limit]
	}
	log.WithFields(logger.Fields{"addresses": len(addresses)}).Info("loaded wallet addresses")

	// Step 2: transaction data, cached or fresh.
	var batch []models.WalletData
	cacheFile := cfg.Storage.CacheFile
	if useCache {
		if cached, err := reader.LoadRawData(cacheFile); err == nil {
			batch = cached
		} else {
			log.WithError(err).Warn("cache unavailable, fetching fresh data")
		}
	}
	if batch == nil {
		fetcher := reader.NewFetcher(cfg)
		batch, err = fetcher.FetchWallets(ctx, addresses)
		if err != nil {
			return err
		}
		if err := reader.SaveRawData(batch, cacheFile); err != nil {
			log.WithError(err).Warn("failed to cache raw wallet data")
		}
	}

	// Steps 3-5: the scoring pipeline.
	rows := processor.NewNormalizer().Normalize(batch)
	wallets := make([]string, 0, len(batch))
	for _, w := range batch {
		wallets = append(wallets, w.Address)
	}
	metrics := processor.NewAggregator().Aggregate(rows, wallets)
	features := processor.NewRiskAnalyzer().ComputeFeatures(metrics)
	anomalies := processor.NewAnomalyDetector(cfg).Detect(features)
	calculator := processor.NewScoreCalculator()
	scores := calculator.Calculate(features, anomalies)

	// Step 6: results.
	w := writer.NewResultWriter(cfg.Storage.OutputDir)
	if _, err := w.WriteScoresCSV(scores, output); err != nil {
		return err
	}
	detailed := strings.TrimSuffix(output, ".csv") + "_detailed.csv"
	if _, err := w.WriteDetailedCSV(scores, detailed); err != nil {
		return err
	}

	dist := calculator.Distribution(scores)
	if _, err := w.WriteDistributionJSON(dist, "score_analysis.json"); err != nil {
		return err
	}

	if cfg.Storage.Parquet.Enabled {
		parquetName := strings.TrimSuffix(output, ".csv") + ".parquet"
		if _, err := w.WriteParquet(scores, parquetName, cfg.Storage.Parquet.Compression); err != nil {
			log.WithError(err).Warn("failed to write parquet results")
		}
	}

	if cfg.Storage.S3.Enabled {
		if err := uploadResults(ctx, cfg, scores, output); err != nil {
			log.WithError(err).Warn("failed to upload results to S3")
		}
	}

	// Step 7: summary.
	writer.PrintReport(os.Stdout, scores, dist)

	if explain != "" {
		explanation, err := calculator.Explain(scores, explain)
		if err != nil {
			return err
		}
		log.WithFields(logger.Fields{
			"wallet":         explanation.WalletID,
			"score":          explanation.Score,
			"category":       explanation.RiskCategory,
			"interpretation": explanation.Interpretation,
		}).Info("score explanation")
	}

	return nil
}

func uploadResults(ctx context.Context, cfg *appconfig.Config, scores []models.WalletScore, output string) error {
	uploader, err := writer.NewS3Uploader(cfg)
	if err != nil {
		return err
	}

	data, err := writer.BuildParquet(scores, cfg.Storage.Parquet.Compression)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(output, ".csv") + ".parquet"
	return uploader.Upload(ctx, name, data, "application/octet-stream")
}
