package reader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/archana8teenth/compound-risk-scoring/logger"
	"github.com/archana8teenth/compound-risk-scoring/models"
)

// SaveRawData writes the fetched wallet batch to the cache file so later
// runs can rescore without refetching.
func SaveRawData(batch []models.WalletData, path string) error {
	log := logger.GetLogger().WithComponent("cache")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode raw wallet data: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	log.WithFields(logger.Fields{"wallets": len(batch), "file": path}).Info("saved raw wallet data")
	return nil
}

// LoadRawData reads a previously cached wallet batch.
func LoadRawData(path string) ([]models.WalletData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var batch []models.WalletData
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode cache file: %w", err)
	}

	logger.GetLogger().WithComponent("cache").WithFields(logger.Fields{
		"wallets": len(batch),
		"file":    path,
	}).Info("loaded cached wallet data")
	return batch, nil
}
