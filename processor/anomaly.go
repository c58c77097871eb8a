package processor

import (
	appconfig "github.com/archana8teenth/compound-risk-scoring/config"
	"github.com/archana8teenth/compound-risk-scoring/logger"
	"github.com/archana8teenth/compound-risk-scoring/models"
)

// AnomalyDetector fits an isolation forest across the whole batch and
// emits one normalized score per wallet, higher meaning more normal. The
// model is refit on every invocation; nothing persists across runs.
type AnomalyDetector struct {
	log           *logger.Log
	contamination float64
	seed          int64
	trees         int
	sampleSize    int
}

func NewAnomalyDetector(cfg *appconfig.Config) *AnomalyDetector {
	return &AnomalyDetector{
		log:           logger.GetLogger(),
		contamination: cfg.Scoring.Contamination,
		seed:          cfg.Scoring.Seed,
		trees:         cfg.Scoring.Trees,
		sampleSize:    cfg.Scoring.SampleSize,
	}
}

// anomalyFeature extracts one standardization column from a wallet's risk
// features.
type anomalyFeature func(models.RiskFeatures) float64

// anomalyFeatures is the fixed column set the detector trains on.
var anomalyFeatures = []anomalyFeature{
	func(f models.RiskFeatures) float64 { return float64(f.TotalTransactions) },
	func(f models.RiskFeatures) float64 { return f.SuccessRate },
	func(f models.RiskFeatures) float64 { return f.AccountAgeDays },
	func(f models.RiskFeatures) float64 { return float64(f.LiquidationCount) },
	func(f models.RiskFeatures) float64 { return f.RepayToBorrowRatio },
	func(f models.RiskFeatures) float64 { return float64(f.ActionDiversity) },
	func(f models.RiskFeatures) float64 { return f.ActivityRegularity },
	func(f models.RiskFeatures) float64 { return float64(f.MaxDailyTransactions) },
}

// Detect standardizes the feature matrix, fits the forest and min-max
// normalizes the decision scores to [0, 1]. Batches too small to fit a
// model, or batches where every wallet scores identically, fall back to a
// constant 0.5 so downstream adjustment stays defined.
func (d *AnomalyDetector) Detect(features []models.RiskFeatures) []float64 {
	log := d.log.WithComponent("anomaly_detector")

	n := len(features)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []float64{0.5}
	}

	X := make([][]float64, n)
	for i, f := range features {
		row := make([]float64, len(anomalyFeatures))
		for j, col := range anomalyFeatures {
			row[j] = col(f)
		}
		X[i] = row
	}
	standardize(X)

	forest := newIsolationForest(d.trees, d.sampleSize, d.contamination, d.seed)
	forest.Fit(X)
	decisions := forest.DecisionScores(X)

	outliers := 0
	for _, s := range decisions {
		if s < 0 {
			outliers++
		}
	}

	lo, hi := minMax(decisions)
	scores := make([]float64, n)
	if hi == lo {
		for i := range scores {
			scores[i] = 0.5
		}
	} else {
		for i, s := range decisions {
			scores[i] = (s - lo) / (hi - lo)
		}
	}

	log.WithFields(logger.Fields{
		"wallets":  n,
		"outliers": outliers,
	}).Info("detected anomalous wallet behavior")

	return scores
}

// standardize rescales each column of X in place to zero mean and unit
// variance over the batch. Constant columns are left centered only.
func standardize(X [][]float64) {
	if len(X) == 0 {
		return
	}
	cols := len(X[0])
	column := make([]float64, len(X))
	for j := 0; j < cols; j++ {
		for i := range X {
			column[i] = X[i][j]
		}
		mu := mean(column)
		sigma := populationStd(column, mu)
		if sigma == 0 {
			sigma = 1
		}
		for i := range X {
			X[i][j] = (X[i][j] - mu) / sigma
		}
	}
}
