package models

// LendingActions is the fixed taxonomy of protocol operations tracked per
// wallet. Anything outside this set aggregates under "unknown".
var LendingActions = []string{
	"mint",
	"redeem",
	"redeemUnderlying",
	"borrow",
	"repayBorrow",
	"liquidateBorrow",
}

// WalletMetrics holds the per-wallet aggregates derived from the normalized
// transaction table. One row per distinct wallet address; every ratio field
// is zero-guarded so a zero-activity wallet still produces defined values.
type WalletMetrics struct {
	WalletAddress string `json:"wallet_address"`

	TotalTransactions      int     `json:"total_transactions"`
	SuccessfulTransactions int     `json:"successful_transactions"`
	FailedTransactions     int     `json:"failed_transactions"`
	SuccessRate            float64 `json:"success_rate"`

	FirstTxDate       int64   `json:"first_tx_date"`
	LastTxDate        int64   `json:"last_tx_date"`
	AccountAgeDays    float64 `json:"account_age_days"`
	AvgTxIntervalDays float64 `json:"avg_tx_interval_days"`

	MintCount             int `json:"mint_count"`
	RedeemCount           int `json:"redeem_count"`
	RedeemUnderlyingCount int `json:"redeemUnderlying_count"`
	BorrowCount           int `json:"borrow_count"`
	RepayBorrowCount      int `json:"repayBorrow_count"`
	LiquidateBorrowCount  int `json:"liquidateBorrow_count"`

	SupplyRatio   float64 `json:"supply_ratio"`
	WithdrawRatio float64 `json:"withdraw_ratio"`
	BorrowRatio   float64 `json:"borrow_ratio"`
	RepayRatio    float64 `json:"repay_ratio"`

	LiquidationCount int     `json:"liquidation_count"`
	HasLiquidations  int     `json:"has_liquidations"`
	LiquidationRate  float64 `json:"liquidation_rate"`

	TotalGasSpent float64 `json:"total_gas_spent"`
	AvgGasPerTx   float64 `json:"avg_gas_per_tx"`
	TotalEthValue float64 `json:"total_eth_value"`
	AvgEthPerTx   float64 `json:"avg_eth_per_tx"`

	AvgTimeBetweenTxs  float64 `json:"avg_time_between_txs"`
	StdTimeBetweenTxs  float64 `json:"std_time_between_txs"`
	ActivityRegularity float64 `json:"activity_regularity"`

	ActionDiversity int `json:"action_diversity"`

	WeekendActivityRatio float64 `json:"weekend_activity_ratio"`
	NightActivityRatio   float64 `json:"night_activity_ratio"`

	RepayToBorrowRatio float64 `json:"repay_to_borrow_ratio"`

	MaxDailyTransactions  int     `json:"max_daily_transactions"`
	AvgDailyTransactions  float64 `json:"avg_daily_transactions"`
	DailyActivityVariance float64 `json:"daily_activity_variance"`
}

// RiskFeatures extends WalletMetrics with the eight heuristic sub-scores,
// each clamped to [0, 1]. Scores where higher means riskier: liquidation,
// behavioral, activity pattern, bot behavior. Scores where higher means
// healthier: financial health, repayment behavior, experience,
// diversification.
type RiskFeatures struct {
	WalletMetrics

	LiquidationRiskScore   float64 `json:"liquidation_risk_score"`
	BehavioralRiskScore    float64 `json:"behavioral_risk_score"`
	FinancialHealthScore   float64 `json:"financial_health_score"`
	ActivityPatternRisk    float64 `json:"activity_pattern_risk"`
	RepaymentBehaviorScore float64 `json:"repayment_behavior_score"`
	ExperienceScore        float64 `json:"experience_score"`
	DiversificationScore   float64 `json:"diversification_score"`
	BotBehaviorScore       float64 `json:"bot_behavior_score"`
}
