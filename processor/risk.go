package processor

import (
	"github.com/archana8teenth/compound-risk-scoring/logger"
	"github.com/archana8teenth/compound-risk-scoring/models"
)

// RiskAnalyzer maps wallet metrics to the eight heuristic sub-scores.
// Several formulas compare a wallet against percentile thresholds of the
// current batch, so the analyzer runs two passes: population statistics
// first, per-wallet formulas second. Re-running with a different wallet
// set moves the thresholds; that batch-relativity is intended.
type RiskAnalyzer struct {
	log *logger.Log
}

func NewRiskAnalyzer() *RiskAnalyzer {
	return &RiskAnalyzer{log: logger.GetLogger()}
}

// populationStats holds the batch-level thresholds consumed by the
// per-wallet formulas.
type populationStats struct {
	regularityP80 float64
	gasP90        float64
	gasMax        float64
	dailyVarP80   float64
	dailyVarMax   float64
	maxDailyP90   float64
	maxDailyMax   float64
	totalTxP70    float64
}

func computePopulationStats(metrics []models.WalletMetrics) populationStats {
	regularity := make([]float64, len(metrics))
	gas := make([]float64, len(metrics))
	dailyVar := make([]float64, len(metrics))
	maxDaily := make([]float64, len(metrics))
	totalTx := make([]float64, len(metrics))
	for i, m := range metrics {
		regularity[i] = m.ActivityRegularity
		gas[i] = m.AvgGasPerTx
		dailyVar[i] = m.DailyActivityVariance
		maxDaily[i] = float64(m.MaxDailyTransactions)
		totalTx[i] = float64(m.TotalTransactions)
	}

	stats := populationStats{
		regularityP80: percentile(regularity, 0.8),
		gasP90:        percentile(gas, 0.9),
		dailyVarP80:   percentile(dailyVar, 0.8),
		maxDailyP90:   percentile(maxDaily, 0.9),
		totalTxP70:    percentile(totalTx, 0.7),
	}
	_, stats.gasMax = minMax(gas)
	_, stats.dailyVarMax = minMax(dailyVar)
	_, stats.maxDailyMax = minMax(maxDaily)
	return stats
}

// ComputeFeatures derives the eight sub-scores for every wallet in the
// batch. All scores are clamped to [0, 1].
func (r *RiskAnalyzer) ComputeFeatures(metrics []models.WalletMetrics) []models.RiskFeatures {
	log := r.log.WithComponent("risk_analyzer")

	stats := computePopulationStats(metrics)

	features := make([]models.RiskFeatures, len(metrics))
	for i, m := range metrics {
		features[i] = models.RiskFeatures{
			WalletMetrics:          m,
			LiquidationRiskScore:   liquidationRisk(m),
			BehavioralRiskScore:    behavioralRisk(m, stats),
			FinancialHealthScore:   financialHealth(m, stats),
			ActivityPatternRisk:    activityPatternRisk(m, stats),
			RepaymentBehaviorScore: repaymentBehavior(m),
			ExperienceScore:        experienceScore(m, stats),
			DiversificationScore:   diversificationScore(m),
			BotBehaviorScore:       botBehaviorScore(m, stats),
		}
	}

	log.WithFields(logger.Fields{"wallets": len(features)}).Info("calculated risk features")
	return features
}

func liquidationRisk(m models.WalletMetrics) float64 {
	score := float64(m.LiquidationCount)*0.5 +
		m.LiquidationRate*0.3 +
		float64(m.HasLiquidations)*0.2
	return clip(score, 0, 1)
}

func behavioralRisk(m models.WalletMetrics, stats populationStats) float64 {
	score := (1 - m.SuccessRate) * 0.3
	if m.ActivityRegularity > stats.regularityP80 {
		score += 0.2
	}
	score += clip(m.WeekendActivityRatio-0.3, 0, 1) * 0.2
	score += clip(m.NightActivityRatio-0.2, 0, 1) * 0.3
	return clip(score, 0, 1)
}

func financialHealth(m models.WalletMetrics, stats populationStats) float64 {
	score := 1.0
	if m.RepayToBorrowRatio < 0.8 {
		score -= 0.4
	}
	if m.ActionDiversity <= 2 {
		score -= 0.2
	}
	if m.AccountAgeDays < 30 {
		score -= 0.2
	}
	if stats.gasMax > 0 && m.AvgGasPerTx > stats.gasP90 {
		score -= 0.2
	}
	return clip(score, 0, 1)
}

func activityPatternRisk(m models.WalletMetrics, stats populationStats) float64 {
	score := 0.0
	if stats.dailyVarMax > 0 && m.DailyActivityVariance > stats.dailyVarP80 {
		score += 0.3
	}
	if stats.maxDailyMax > 0 && float64(m.MaxDailyTransactions) > stats.maxDailyP90 {
		score += 0.4
	}
	if m.ActivityRegularity < 0.1 && m.TotalTransactions > 5 {
		score += 0.3
	}
	return clip(score, 0, 1)
}

// repaymentBehavior uses additive buckets that can overlap: a wallet with
// repays but zero borrows has a floored-denominator ratio >= 1 and collects
// both the full-repayment and the non-borrower bonus. Kept as-is rather
// than deduplicated.
func repaymentBehavior(m models.WalletMetrics) float64 {
	score := 0.0
	if m.RepayToBorrowRatio >= 1.0 {
		score += 0.5
	} else if m.RepayToBorrowRatio >= 0.8 {
		score += 0.3
	}
	if m.BorrowCount == 0 {
		score += 0.2
	}
	if m.LiquidationCount == 0 {
		score += 0.3
	}
	return clip(score, 0, 1)
}

// experienceScore bins account age into maturity tiers. An age of exactly
// zero days falls outside every bin and keeps the 0.0 base.
func experienceScore(m models.WalletMetrics, stats populationStats) float64 {
	score := 0.0
	age := m.AccountAgeDays
	switch {
	case age > 365:
		score = 1.0
	case age > 180:
		score = 0.7
	case age > 90:
		score = 0.5
	case age > 30:
		score = 0.3
	case age > 0:
		score = 0.1
	}
	if float64(m.TotalTransactions) > stats.totalTxP70 {
		score += 0.2
	}
	if m.ActivityRegularity > 0.1 && m.ActivityRegularity < 1.0 {
		score += 0.1
	}
	return clip(score, 0, 1)
}

func diversificationScore(m models.WalletMetrics) float64 {
	score := clip(float64(m.ActionDiversity)/5, 0, 0.6)
	maxRatio := m.SupplyRatio
	for _, r := range []float64{m.WithdrawRatio, m.BorrowRatio, m.RepayRatio} {
		if r > maxRatio {
			maxRatio = r
		}
	}
	score += (1 - maxRatio) * 0.4
	return clip(score, 0, 1)
}

func botBehaviorScore(m models.WalletMetrics, stats populationStats) float64 {
	score := 0.0
	if m.ActivityRegularity < 0.05 && m.TotalTransactions > 10 {
		score += 0.4
	}
	if m.NightActivityRatio > 0.5 {
		score += 0.3
	}
	if stats.maxDailyMax > 0 && m.MaxDailyTransactions > 50 {
		score += 0.3
	}
	return clip(score, 0, 1)
}
