package models

// Risk category labels, ordered from best to worst. Band boundaries are
// inclusive at the lower edge: a score of exactly 800 is Low Risk.
const (
	CategoryLowRisk       = "Low Risk"
	CategoryMediumLowRisk = "Medium-Low Risk"
	CategoryMediumRisk    = "Medium Risk"
	CategoryHighRisk      = "High Risk"
	CategoryVeryHighRisk  = "Very High Risk"
)

// RiskCategory maps a 0-1000 credit score onto its category band.
func RiskCategory(score int) string {
	switch {
	case score >= 800:
		return CategoryLowRisk
	case score >= 600:
		return CategoryMediumLowRisk
	case score >= 400:
		return CategoryMediumRisk
	case score >= 200:
		return CategoryHighRisk
	default:
		return CategoryVeryHighRisk
	}
}

// WalletScore is the terminal artifact of the pipeline: the credit-like
// score plus the component scores retained for explainability.
type WalletScore struct {
	WalletID     string `json:"wallet_id"`
	Score        int    `json:"score"`
	RiskCategory string `json:"risk_category"`

	LiquidationRiskComponent   float64 `json:"liquidation_risk_component"`
	BehavioralRiskComponent    float64 `json:"behavioral_risk_component"`
	FinancialHealthComponent   float64 `json:"financial_health_component"`
	ActivityPatternComponent   float64 `json:"activity_pattern_component"`
	RepaymentBehaviorComponent float64 `json:"repayment_behavior_component"`
	ExperienceComponent        float64 `json:"experience_component"`
	DiversificationComponent   float64 `json:"diversification_component"`
	BotBehaviorComponent       float64 `json:"bot_behavior_component"`
	AnomalyScore               float64 `json:"anomaly_score"`

	TotalTransactions int     `json:"total_transactions"`
	AccountAgeDays    float64 `json:"account_age_days"`
	LiquidationCount  int     `json:"liquidation_count"`
	SuccessRate       float64 `json:"success_rate"`
}

// ScoreDistribution summarizes a scored batch: headline statistics, a fixed
// ten-bucket histogram and counts per risk category.
type ScoreDistribution struct {
	TotalWallets   int            `json:"total_wallets"`
	MeanScore      float64        `json:"mean_score"`
	MedianScore    float64        `json:"median_score"`
	StdScore       float64        `json:"std_score"`
	MinScore       int            `json:"min_score"`
	MaxScore       int            `json:"max_score"`
	ScoreRanges    map[string]int `json:"score_ranges"`
	RiskCategories map[string]int `json:"risk_categories"`
}

// HistogramBuckets lists the distribution bucket labels in ascending order.
// The last bucket is closed on both ends so a perfect 1000 is counted.
var HistogramBuckets = []string{
	"0-100", "100-200", "200-300", "300-400", "400-500",
	"500-600", "600-700", "700-800", "800-900", "900-1000",
}
