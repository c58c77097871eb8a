package models

import (
	"encoding/json"
	"testing"
)

func TestRawTransactionJSON(t *testing.T) {
	// Field names must match the explorer API response keys exactly.
	payload := `{
		"hash": "0xabc",
		"blockNumber": "17000000",
		"timeStamp": "1700000000",
		"from": "0xFrom",
		"to": "0xTo",
		"value": "1000000000000000000",
		"gasUsed": "21000",
		"gasPrice": "20000000000",
		"isError": "0",
		"input": "0xa0712d68",
		"contractAddress": ""
	}`
	var tx RawTransaction
	if err := json.Unmarshal([]byte(payload), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tx.Hash != "0xabc" || tx.BlockNumber != "17000000" || tx.TimeStamp != "1700000000" {
		t.Fatalf("unexpected fields: %+v", tx)
	}
	if tx.GasUsed != "21000" || tx.GasPrice != "20000000000" || tx.IsError != "0" {
		t.Fatalf("unexpected gas fields: %+v", tx)
	}
}

func TestRiskCategoryBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{1000, CategoryLowRisk},
		{800, CategoryLowRisk},
		{799, CategoryMediumLowRisk},
		{600, CategoryMediumLowRisk},
		{599, CategoryMediumRisk},
		{400, CategoryMediumRisk},
		{399, CategoryHighRisk},
		{200, CategoryHighRisk},
		{199, CategoryVeryHighRisk},
		{0, CategoryVeryHighRisk},
	}
	for _, c := range cases {
		if got := RiskCategory(c.score); got != c.want {
			t.Errorf("RiskCategory(%d) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestNormalizedTransactionSuccess(t *testing.T) {
	ok := NormalizedTransaction{IsError: 0}
	failed := NormalizedTransaction{IsError: 1}
	if !ok.Success() {
		t.Errorf("expected is_error=0 to be a success")
	}
	if failed.Success() {
		t.Errorf("expected is_error=1 to be a failure")
	}
}
