package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/archana8teenth/compound-risk-scoring/logger"
)

// Column headers recognized as the wallet address column, in priority
// order. Headerless files fall through to the first column.
var addressColumns = []string{"address", "wallet", "wallet_address", "wallet_id"}

// Sample addresses written when the remote wallet list cannot be reached.
var sampleAddresses = []string{
	"0xfaa0768bde629806739c3a4620656c5d26f44ef2",
	"0x47ac0fb4f2d84898e4d9e7b4dab3c24507a6d503",
	"0x28c6c06298d514db089934071355e5743bf21d60",
	"0x2b6ed29a95753c3ad948348e3e7b1a251080ffb9",
	"0x6b175474e89094c44da98b954eedeac495271d0f",
}

// LoadWalletAddresses reads wallet addresses from a CSV file. Rows that do
// not hold a valid hex address are dropped.
func LoadWalletAddresses(path string) ([]string, error) {
	log := logger.GetLogger().WithComponent("wallets")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse wallet file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	column := 0
	start := 0
	header := records[0]
	for _, name := range addressColumns {
		for i, field := range header {
			if strings.EqualFold(strings.TrimSpace(field), name) {
				column = i
				start = 1
				break
			}
		}
		if start == 1 {
			break
		}
	}
	// A headerless file whose first cell is already an address starts at
	// row zero.
	if start == 0 && len(header) > 0 && common.IsHexAddress(strings.TrimSpace(header[0])) {
		start = 0
	} else if start == 0 {
		start = 1
	}

	var addresses []string
	for _, record := range records[start:] {
		if column >= len(record) {
			continue
		}
		addr := strings.TrimSpace(record[column])
		if !common.IsHexAddress(addr) {
			continue
		}
		addresses = append(addresses, strings.ToLower(addr))
	}

	log.WithFields(logger.Fields{"addresses": len(addresses), "file": path}).Info("loaded wallet addresses")
	return addresses, nil
}

// DownloadWalletList fetches the remote wallet sheet as CSV and stores it
// at dest. When the download fails a small sample list is written instead
// so the pipeline stays runnable offline.
func DownloadWalletList(sheetURL, dest string) (string, error) {
	log := logger.GetLogger().WithComponent("wallets")

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create wallet list directory: %w", err)
	}

	if err := downloadCSV(sheetURL, dest); err != nil {
		log.WithError(err).Warn("wallet list download failed, writing sample addresses")
		if werr := writeSampleAddresses(dest); werr != nil {
			return "", werr
		}
		return dest, nil
	}

	log.WithFields(logger.Fields{"file": dest}).Info("downloaded wallet address list")
	return dest, nil
}

func downloadCSV(sheetURL, dest string) error {
	resp, err := http.Get(sheetURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wallet list download returned status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func writeSampleAddresses(dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to write sample wallet list: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"wallet_address"}); err != nil {
		return err
	}
	for _, addr := range sampleAddresses {
		if err := w.Write([]string{addr}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
