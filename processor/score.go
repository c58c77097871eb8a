package processor

import (
	"fmt"
	"math"
	"strings"

	"github.com/archana8teenth/compound-risk-scoring/logger"
	"github.com/archana8teenth/compound-risk-scoring/models"
)

// Component weights for the composite risk score. The first three raise
// risk directly; the last four are health scores folded in as (1 - score).
// The seven weights sum to exactly 1.0.
const (
	weightLiquidationRisk   = 0.25
	weightBehavioralRisk    = 0.15
	weightFinancialHealth   = 0.20
	weightActivityPattern   = 0.10
	weightRepaymentBehavior = 0.15
	weightExperience        = 0.10
	weightDiversification   = 0.05
)

func scoreWeightSum() float64 {
	return weightLiquidationRisk + weightBehavioralRisk + weightFinancialHealth +
		weightActivityPattern + weightRepaymentBehavior + weightExperience +
		weightDiversification
}

// ScoreCalculator folds the eight sub-scores and the anomaly score into
// the final 0-1000 credit score and its risk category.
type ScoreCalculator struct {
	log *logger.Log
}

func NewScoreCalculator() *ScoreCalculator {
	return &ScoreCalculator{log: logger.GetLogger()}
}

// Calculate produces one WalletScore per wallet, in input order. The
// anomaly slice must be parallel to features; a nil slice applies the
// neutral 0.5 fallback to every wallet.
func (c *ScoreCalculator) Calculate(features []models.RiskFeatures, anomalyScores []float64) []models.WalletScore {
	log := c.log.WithComponent("score_calculator")

	scores := make([]models.WalletScore, len(features))
	for i, f := range features {
		anomaly := 0.5
		if i < len(anomalyScores) {
			anomaly = anomalyScores[i]
		}

		composite := compositeRisk(f)

		// More anomalous means a smaller anomaly score, hence a larger
		// subtraction headroom taken back from the composite.
		adjustment := (1 - anomaly) * 0.1
		finalRisk := clip(composite-adjustment, 0, 1)
		// The category is derived from the rounded integer, not the raw
		// float, so the label always agrees with the displayed score.
		credit := int(math.Round((1 - finalRisk) * 1000))

		scores[i] = models.WalletScore{
			WalletID:                   f.WalletAddress,
			Score:                      credit,
			RiskCategory:               models.RiskCategory(credit),
			LiquidationRiskComponent:   f.LiquidationRiskScore,
			BehavioralRiskComponent:    f.BehavioralRiskScore,
			FinancialHealthComponent:   f.FinancialHealthScore,
			ActivityPatternComponent:   f.ActivityPatternRisk,
			RepaymentBehaviorComponent: f.RepaymentBehaviorScore,
			ExperienceComponent:        f.ExperienceScore,
			DiversificationComponent:   f.DiversificationScore,
			BotBehaviorComponent:       f.BotBehaviorScore,
			AnomalyScore:               anomaly,
			TotalTransactions:          f.TotalTransactions,
			AccountAgeDays:             f.AccountAgeDays,
			LiquidationCount:           f.LiquidationCount,
			SuccessRate:                f.SuccessRate,
		}
		logger.IncrementWalletScored()
	}

	log.WithFields(logger.Fields{"wallets": len(scores)}).Info("calculated final risk scores")
	log.LogMetric("score_calculator", "wallets_scored", len(scores), "counter", logger.Fields{})
	return scores
}

func compositeRisk(f models.RiskFeatures) float64 {
	composite := f.LiquidationRiskScore*weightLiquidationRisk +
		f.BehavioralRiskScore*weightBehavioralRisk +
		f.ActivityPatternRisk*weightActivityPattern +
		(1-f.FinancialHealthScore)*weightFinancialHealth +
		(1-f.RepaymentBehaviorScore)*weightRepaymentBehavior +
		(1-f.ExperienceScore)*weightExperience +
		(1-f.DiversificationScore)*weightDiversification
	return clip(composite, 0, 1)
}

// Distribution summarizes a scored batch. Histogram buckets are closed at
// the lower edge; the last bucket also includes 1000.
func (c *ScoreCalculator) Distribution(scores []models.WalletScore) models.ScoreDistribution {
	dist := models.ScoreDistribution{
		TotalWallets:   len(scores),
		ScoreRanges:    make(map[string]int, len(models.HistogramBuckets)),
		RiskCategories: make(map[string]int),
	}
	for _, label := range models.HistogramBuckets {
		dist.ScoreRanges[label] = 0
	}
	if len(scores) == 0 {
		return dist
	}

	values := make([]float64, len(scores))
	for i, s := range scores {
		values[i] = float64(s.Score)

		bucket := s.Score / 100
		if bucket > 9 {
			bucket = 9
		}
		dist.ScoreRanges[models.HistogramBuckets[bucket]]++
		dist.RiskCategories[s.RiskCategory]++
	}

	lo, hi := minMax(values)
	dist.MeanScore = mean(values)
	dist.MedianScore = percentile(values, 0.5)
	dist.StdScore = sampleStd(values)
	dist.MinScore = int(lo)
	dist.MaxScore = int(hi)
	return dist
}

// ScoreExplanation is the human-readable breakdown for a single wallet.
type ScoreExplanation struct {
	WalletID       string             `json:"wallet_id"`
	Score          int                `json:"score"`
	RiskCategory   string             `json:"risk_category"`
	RiskFactors    map[string]float64 `json:"risk_factors"`
	WalletMetrics  map[string]float64 `json:"wallet_metrics"`
	Interpretation string             `json:"interpretation"`
}

// Explain returns the component breakdown and interpretation text for one
// wallet out of a scored batch.
func (c *ScoreCalculator) Explain(scores []models.WalletScore, wallet string) (ScoreExplanation, error) {
	target := strings.ToLower(wallet)
	for _, s := range scores {
		if s.WalletID != target {
			continue
		}
		return ScoreExplanation{
			WalletID:     s.WalletID,
			Score:        s.Score,
			RiskCategory: s.RiskCategory,
			RiskFactors: map[string]float64{
				"liquidation_risk":   s.LiquidationRiskComponent,
				"behavioral_risk":    s.BehavioralRiskComponent,
				"financial_health":   s.FinancialHealthComponent,
				"repayment_behavior": s.RepaymentBehaviorComponent,
				"experience_level":   s.ExperienceComponent,
				"anomaly_score":      s.AnomalyScore,
			},
			WalletMetrics: map[string]float64{
				"total_transactions": float64(s.TotalTransactions),
				"account_age_days":   s.AccountAgeDays,
				"liquidation_count":  float64(s.LiquidationCount),
				"success_rate":       s.SuccessRate,
			},
			Interpretation: interpretScore(s.Score),
		}, nil
	}
	return ScoreExplanation{}, fmt.Errorf("wallet %s not found in scored batch", wallet)
}

func interpretScore(score int) string {
	switch {
	case score >= 800:
		return "Excellent risk profile with strong track record"
	case score >= 600:
		return "Good risk profile with minor concerns"
	case score >= 400:
		return "Moderate risk with careful monitoring needed"
	case score >= 200:
		return "High risk requiring strict oversight"
	default:
		return "Very high risk, consider limiting exposure"
	}
}
