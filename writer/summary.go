package writer

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/archana8teenth/compound-risk-scoring/models"
)

// WriteDistributionJSON writes the score distribution summary next to the
// CSV results.
func (w *ResultWriter) WriteDistributionJSON(dist models.ScoreDistribution, filename string) (string, error) {
	path := filepath.Join(w.outputDir, filename)
	f, err := w.create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dist); err != nil {
		return "", fmt.Errorf("failed to write distribution summary: %w", err)
	}

	w.logWrite(path, dist.TotalWallets)
	return path, nil
}
