package writer

import (
	"fmt"
	"io"

	"github.com/archana8teenth/compound-risk-scoring/models"
)

// PrintReport renders the human-readable run summary: headline statistics,
// the score histogram, category counts and the batch extremes.
func PrintReport(out io.Writer, scores []models.WalletScore, dist models.ScoreDistribution) {
	fmt.Fprintf(out, "\n=== RISK SCORING RESULTS ===\n")
	fmt.Fprintf(out, "Total wallets analyzed: %d\n", dist.TotalWallets)
	if dist.TotalWallets == 0 {
		return
	}
	fmt.Fprintf(out, "Mean score: %.1f\n", dist.MeanScore)
	fmt.Fprintf(out, "Median score: %.1f\n", dist.MedianScore)
	fmt.Fprintf(out, "Score range: %d - %d\n", dist.MinScore, dist.MaxScore)

	fmt.Fprintf(out, "\nScore Distribution:\n")
	for _, bucket := range models.HistogramBuckets {
		count := dist.ScoreRanges[bucket]
		if count == 0 {
			continue
		}
		pct := float64(count) / float64(dist.TotalWallets) * 100
		fmt.Fprintf(out, "  %s: %d wallets (%.1f%%)\n", bucket, count, pct)
	}

	fmt.Fprintf(out, "\nRisk Categories:\n")
	for _, category := range []string{
		models.CategoryLowRisk,
		models.CategoryMediumLowRisk,
		models.CategoryMediumRisk,
		models.CategoryHighRisk,
		models.CategoryVeryHighRisk,
	} {
		count := dist.RiskCategories[category]
		if count == 0 {
			continue
		}
		pct := float64(count) / float64(dist.TotalWallets) * 100
		fmt.Fprintf(out, "  %s: %d wallets (%.1f%%)\n", category, count, pct)
	}

	ranked := Ranked(scores)
	top := len(ranked)
	if top > 5 {
		top = 5
	}

	fmt.Fprintf(out, "\nTop %d Highest Scoring Wallets:\n", top)
	for _, s := range ranked[:top] {
		fmt.Fprintf(out, "  %s: %d (%s)\n", s.WalletID, s.Score, s.RiskCategory)
	}

	fmt.Fprintf(out, "\nTop %d Lowest Scoring Wallets:\n", top)
	for i := len(ranked) - 1; i >= len(ranked)-top; i-- {
		s := ranked[i]
		fmt.Fprintf(out, "  %s: %d (%s)\n", s.WalletID, s.Score, s.RiskCategory)
	}
}
