package processor

import (
	"testing"

	"github.com/archana8teenth/compound-risk-scoring/models"
)

func rawTx(ts, action string) models.RawTransaction {
	return models.RawTransaction{
		Hash:      "0xabc",
		TimeStamp: ts,
		From:      "0xFEED",
		To:        "0xBEEF",
		Value:     "1000000000000000000",
		GasUsed:   "21000",
		GasPrice:  "1000000000",
		IsError:   "0",
		Action:    action,
	}
}

func TestNormalizeDerivedFields(t *testing.T) {
	batch := []models.WalletData{
		{Address: "0xwallet", Transactions: []models.RawTransaction{rawTx("0", "mint")}},
	}
	rows := NewNormalizer().Normalize(batch)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Value != 1.0 {
		t.Errorf("value = %v, want 1.0", row.Value)
	}
	if want := 21000e9 / 1e18; row.TxFee != want {
		t.Errorf("fee = %v, want %v", row.TxFee, want)
	}
	if row.FromAddress != "0xfeed" || row.ToAddress != "0xbeef" {
		t.Errorf("addresses not lowercased: %s %s", row.FromAddress, row.ToAddress)
	}
	// Unix epoch is a Thursday: Monday=0 convention puts it at 3.
	if row.Date != "1970-01-01" || row.Hour != 0 || row.DayOfWeek != 3 {
		t.Errorf("time fields = %s %d %d", row.Date, row.Hour, row.DayOfWeek)
	}
	if !row.Success() {
		t.Error("expected success for isError=0")
	}
}

func TestNormalizeOrdering(t *testing.T) {
	batch := []models.WalletData{
		{Address: "0xbbb", Transactions: []models.RawTransaction{rawTx("200", "mint"), rawTx("100", "redeem")}},
		{Address: "0xaaa", Transactions: []models.RawTransaction{rawTx("300", "borrow")}},
	}
	rows := NewNormalizer().Normalize(batch)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].WalletAddress != "0xaaa" {
		t.Errorf("first row wallet = %s, want 0xaaa", rows[0].WalletAddress)
	}
	if rows[1].Timestamp != 100 || rows[2].Timestamp != 200 {
		t.Errorf("wallet rows not time-ordered: %d %d", rows[1].Timestamp, rows[2].Timestamp)
	}
}

func TestNormalizeMalformedFields(t *testing.T) {
	tx := models.RawTransaction{
		TimeStamp: "not-a-number",
		Value:     "",
		GasUsed:   "x",
		GasPrice:  "12junk",
		IsError:   "",
	}
	rows := NewNormalizer().Normalize([]models.WalletData{
		{Address: "0xw", Transactions: []models.RawTransaction{tx}},
	})
	row := rows[0]
	if row.Timestamp != 0 || row.Value != 0 || row.TxFee != 0 {
		t.Errorf("malformed fields not zero-filled: %+v", row)
	}
	if row.Action != models.ActionUnknown {
		t.Errorf("action = %q, want unknown", row.Action)
	}
	if row.IsError != 0 {
		t.Errorf("empty isError should coerce to 0, got %d", row.IsError)
	}
}

func TestNormalizeTokenTransaction(t *testing.T) {
	tx := rawTx("0", "mint")
	tx.Type = models.TxTypeToken
	tx.Value = "2500000"
	tx.TokenDecimal = "6"
	tx.TokenSymbol = "USDC"
	tx.ContractAddress = "0xC0FFEE"

	rows := NewNormalizer().Normalize([]models.WalletData{
		{Address: "0xw", Transactions: []models.RawTransaction{tx}},
	})
	row := rows[0]
	if row.TokenValue != 2.5 {
		t.Errorf("token value = %v, want 2.5", row.TokenValue)
	}
	if row.TokenSymbol != "USDC" || row.TokenAddress != "0xc0ffee" {
		t.Errorf("token fields = %s %s", row.TokenSymbol, row.TokenAddress)
	}
}

func TestNormalizeEmptyBatch(t *testing.T) {
	rows := NewNormalizer().Normalize(nil)
	if len(rows) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(rows))
	}
}
