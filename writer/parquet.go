package writer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	pwriter "github.com/xitongsys/parquet-go/writer"

	"github.com/archana8teenth/compound-risk-scoring/logger"
	"github.com/archana8teenth/compound-risk-scoring/models"
)

// ParquetRecord is the columnar layout of one scored wallet.
type ParquetRecord struct {
	WalletID                   string  `parquet:"name=wallet_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Score                      int32   `parquet:"name=score, type=INT32"`
	RiskCategory               string  `parquet:"name=risk_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	LiquidationRiskComponent   float64 `parquet:"name=liquidation_risk_component, type=DOUBLE"`
	BehavioralRiskComponent    float64 `parquet:"name=behavioral_risk_component, type=DOUBLE"`
	FinancialHealthComponent   float64 `parquet:"name=financial_health_component, type=DOUBLE"`
	ActivityPatternComponent   float64 `parquet:"name=activity_pattern_component, type=DOUBLE"`
	RepaymentBehaviorComponent float64 `parquet:"name=repayment_behavior_component, type=DOUBLE"`
	ExperienceComponent        float64 `parquet:"name=experience_component, type=DOUBLE"`
	DiversificationComponent   float64 `parquet:"name=diversification_component, type=DOUBLE"`
	BotBehaviorComponent       float64 `parquet:"name=bot_behavior_component, type=DOUBLE"`
	AnomalyScore               float64 `parquet:"name=anomaly_score, type=DOUBLE"`
	TotalTransactions          int64   `parquet:"name=total_transactions, type=INT64"`
	AccountAgeDays             float64 `parquet:"name=account_age_days, type=DOUBLE"`
	LiquidationCount           int64   `parquet:"name=liquidation_count, type=INT64"`
	SuccessRate                float64 `parquet:"name=success_rate, type=DOUBLE"`
}

// memoryFileWriter adapts a bytes.Buffer to the parquet source interface
// so files are assembled in memory before hitting disk or S3.
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{buffer: &bytes.Buffer{}}
}

func (mfw *memoryFileWriter) Create(string) (source.ParquetFile, error) { return mfw, nil }
func (mfw *memoryFileWriter) Open(string) (source.ParquetFile, error)   { return mfw, nil }

func (mfw *memoryFileWriter) Seek(int64, int) (int64, error) {
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error)  { return mfw.buffer.Read(b) }
func (mfw *memoryFileWriter) Write(b []byte) (int, error) { return mfw.buffer.Write(b) }
func (mfw *memoryFileWriter) Close() error                { return nil }
func (mfw *memoryFileWriter) Bytes() []byte               { return mfw.buffer.Bytes() }

// BuildParquet renders the scored batch into an in-memory parquet file.
func BuildParquet(scores []models.WalletScore, compression string) ([]byte, error) {
	fw := newMemoryFileWriter()

	pw, err := pwriter.NewParquetWriter(fw, new(ParquetRecord), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	switch compression {
	case "snappy":
		pw.CompressionType = parquet.CompressionCodec_SNAPPY
	case "gzip":
		pw.CompressionType = parquet.CompressionCodec_GZIP
	case "lzo":
		pw.CompressionType = parquet.CompressionCodec_LZO
	default:
		pw.CompressionType = parquet.CompressionCodec_UNCOMPRESSED
	}

	for _, s := range Ranked(scores) {
		record := ParquetRecord{
			WalletID:                   s.WalletID,
			Score:                      int32(s.Score),
			RiskCategory:               s.RiskCategory,
			LiquidationRiskComponent:   s.LiquidationRiskComponent,
			BehavioralRiskComponent:    s.BehavioralRiskComponent,
			FinancialHealthComponent:   s.FinancialHealthComponent,
			ActivityPatternComponent:   s.ActivityPatternComponent,
			RepaymentBehaviorComponent: s.RepaymentBehaviorComponent,
			ExperienceComponent:        s.ExperienceComponent,
			DiversificationComponent:   s.DiversificationComponent,
			BotBehaviorComponent:       s.BotBehaviorComponent,
			AnomalyScore:               s.AnomalyScore,
			TotalTransactions:          int64(s.TotalTransactions),
			AccountAgeDays:             s.AccountAgeDays,
			LiquidationCount:           int64(s.LiquidationCount),
			SuccessRate:                s.SuccessRate,
		}
		if err := pw.Write(record); err != nil {
			pw.WriteStop()
			return nil, fmt.Errorf("failed to write parquet record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return fw.Bytes(), nil
}

// WriteParquet builds the parquet rendition and stores it in the output
// directory.
func (w *ResultWriter) WriteParquet(scores []models.WalletScore, filename, compression string) (string, error) {
	data, err := BuildParquet(scores, compression)
	if err != nil {
		return "", err
	}

	path := filepath.Join(w.outputDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write parquet file: %w", err)
	}

	logger.IncrementResultWrite(int64(len(data)))
	w.log.WithComponent("writer").WithFields(logger.Fields{
		"file":        path,
		"rows":        len(scores),
		"size":        len(data),
		"compression": compression,
	}).Info("wrote parquet file")
	return path, nil
}
