package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/archana8teenth/compound-risk-scoring/logger"
	"github.com/archana8teenth/compound-risk-scoring/models"
)

// ResultWriter renders the scored batch into the result files. Output is
// ranked: score descending, wallet address ascending on ties, so repeated
// runs over the same batch produce identical files.
type ResultWriter struct {
	outputDir string
	log       *logger.Log
}

func NewResultWriter(outputDir string) *ResultWriter {
	return &ResultWriter{outputDir: outputDir, log: logger.GetLogger()}
}

// Ranked returns a copy of scores in output order.
func Ranked(scores []models.WalletScore) []models.WalletScore {
	ranked := append([]models.WalletScore(nil), scores...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].WalletID < ranked[j].WalletID
	})
	return ranked
}

// WriteScoresCSV writes the minimal {wallet_id, score} table.
func (w *ResultWriter) WriteScoresCSV(scores []models.WalletScore, filename string) (string, error) {
	path := filepath.Join(w.outputDir, filename)
	f, err := w.create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"wallet_id", "score"}); err != nil {
		return "", err
	}
	for _, s := range Ranked(scores) {
		if err := cw.Write([]string{s.WalletID, strconv.Itoa(s.Score)}); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to write scores csv: %w", err)
	}

	w.logWrite(path, len(scores))
	return path, nil
}

var detailedHeader = []string{
	"wallet_id", "score", "risk_category",
	"liquidation_risk_component", "behavioral_risk_component",
	"financial_health_component", "activity_pattern_component",
	"repayment_behavior_component", "experience_component",
	"diversification_component", "bot_behavior_component",
	"anomaly_score",
	"total_transactions", "account_age_days", "liquidation_count", "success_rate",
}

// WriteDetailedCSV writes the full score table with every component
// retained for explainability.
func (w *ResultWriter) WriteDetailedCSV(scores []models.WalletScore, filename string) (string, error) {
	path := filepath.Join(w.outputDir, filename)
	f, err := w.create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(detailedHeader); err != nil {
		return "", err
	}
	for _, s := range Ranked(scores) {
		row := []string{
			s.WalletID,
			strconv.Itoa(s.Score),
			s.RiskCategory,
			formatFloat(s.LiquidationRiskComponent),
			formatFloat(s.BehavioralRiskComponent),
			formatFloat(s.FinancialHealthComponent),
			formatFloat(s.ActivityPatternComponent),
			formatFloat(s.RepaymentBehaviorComponent),
			formatFloat(s.ExperienceComponent),
			formatFloat(s.DiversificationComponent),
			formatFloat(s.BotBehaviorComponent),
			formatFloat(s.AnomalyScore),
			strconv.Itoa(s.TotalTransactions),
			formatFloat(s.AccountAgeDays),
			strconv.Itoa(s.LiquidationCount),
			formatFloat(s.SuccessRate),
		}
		if err := cw.Write(row); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to write detailed csv: %w", err)
	}

	w.logWrite(path, len(scores))
	return path, nil
}

func (w *ResultWriter) create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

func (w *ResultWriter) logWrite(path string, rows int) {
	if info, err := os.Stat(path); err == nil {
		logger.IncrementResultWrite(info.Size())
	}
	w.log.WithComponent("writer").WithFields(logger.Fields{
		"file": path,
		"rows": rows,
	}).Info("wrote result file")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
