package reader

import (
	"testing"

	"github.com/archana8teenth/compound-risk-scoring/models"
)

func TestClassifyActionSelectors(t *testing.T) {
	cases := []struct {
		input string
		value string
		want  string
	}{
		{"0xa0712d68" + "00", "0", "mint"},
		{"0x1249c58b", "1000", "mint"},
		{"0xdb006a75" + "ff", "0", "redeem"},
		{"0x852a12e3", "0", "redeemUnderlying"},
		{"0xc5ebeaec", "0", "borrow"},
		{"0x0e752702", "0", "repayBorrow"},
		{"0x4e4d9fea", "0", "repayBorrow"},
		{"0x2608f818", "0", "repayBorrowBehalf"},
		{"0x47ef3b3b", "0", "liquidateBorrow"},
		{"0x317b0b77", "0", "enterMarkets"},
		{"0xede4edd0", "0", "exitMarket"},
		{"", "1000", "unknown"},
		{"0x", "1000", "unknown"},
		{"0xdeadbeef", "1000000000000000000", "supply_eth"},
		{"0xdeadbeef", "0", "interact"},
	}
	for _, c := range cases {
		tx := models.RawTransaction{Input: c.input, Value: c.value}
		if got := ClassifyAction(tx); got != c.want {
			t.Errorf("ClassifyAction(%q, value=%s) = %q, want %q", c.input, c.value, got, c.want)
		}
	}
}

func TestFilterProtocolTransactions(t *testing.T) {
	txs := []models.RawTransaction{
		{To: "0x4Ddc2D193948926D02f9B1fE9e1daa0718270ED5", Input: "0x1249c58b", Value: "1"},
		{To: "0x1111111111111111111111111111111111111111", Input: "0x1249c58b"},
		{ContractAddress: "0xc3d688b66703497daa19211eedff47f25384cae7", Input: "0x", Value: "0"},
	}
	kept := FilterProtocolTransactions(txs)
	if len(kept) != 2 {
		t.Fatalf("kept %d transactions, want 2", len(kept))
	}
	if kept[0].Action != "mint" {
		t.Errorf("first action = %q, want mint", kept[0].Action)
	}
	if kept[1].Action != models.ActionUnknown {
		t.Errorf("second action = %q, want unknown", kept[1].Action)
	}
}
