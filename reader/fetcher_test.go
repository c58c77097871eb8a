package reader

import (
	"context"
	"errors"
	"testing"
	"time"

	appconfig "github.com/archana8teenth/compound-risk-scoring/config"
	"github.com/archana8teenth/compound-risk-scoring/models"
)

type stubSource struct {
	byAddress map[string][]models.RawTransaction
	errFor    map[string]error
	calls     []string
}

func (s *stubSource) AllTransactions(_ context.Context, address string) ([]models.RawTransaction, error) {
	s.calls = append(s.calls, address)
	if err, ok := s.errFor[address]; ok {
		return nil, err
	}
	return s.byAddress[address], nil
}

func fetcherConfig() *appconfig.Config {
	return &appconfig.Config{
		Fetcher: appconfig.FetcherConfig{
			WalletDelay: time.Millisecond,
		},
	}
}

func TestFetchWalletsFiltersAndLowercases(t *testing.T) {
	source := &stubSource{byAddress: map[string][]models.RawTransaction{
		"0xAAA0000000000000000000000000000000000aaa": {
			{To: "0x4ddc2d193948926d02f9b1fe9e1daa0718270ed5", Input: "0x1249c58b", Value: "1"},
			{To: "0x2222222222222222222222222222222222222222"},
		},
	}}
	f := NewFetcherWithSource(fetcherConfig(), source)

	batch, err := f.FetchWallets(context.Background(), []string{"0xAAA0000000000000000000000000000000000aaa"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("got %d wallets, want 1", len(batch))
	}
	w := batch[0]
	if w.Address != "0xaaa0000000000000000000000000000000000aaa" {
		t.Errorf("address not lowercased: %s", w.Address)
	}
	if w.TotalTxCount != 2 || w.ProtocolTxCount != 1 || len(w.Transactions) != 1 {
		t.Errorf("counts = %d/%d/%d", w.TotalTxCount, w.ProtocolTxCount, len(w.Transactions))
	}
	if w.Transactions[0].Action != "mint" {
		t.Errorf("action = %q", w.Transactions[0].Action)
	}
}

func TestFetchWalletsSkipsFailures(t *testing.T) {
	source := &stubSource{
		byAddress: map[string][]models.RawTransaction{"0xgood": nil},
		errFor:    map[string]error{"0xbad": errors.New("boom")},
	}
	f := NewFetcherWithSource(fetcherConfig(), source)

	batch, err := f.FetchWallets(context.Background(), []string{"0xbad", "0xgood"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(batch) != 1 || batch[0].Address != "0xgood" {
		t.Fatalf("batch = %+v, want only 0xgood", batch)
	}
	if len(source.calls) != 2 {
		t.Errorf("calls = %v", source.calls)
	}
}

func TestFetchWalletsHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := &stubSource{errFor: map[string]error{"0xa": context.Canceled}}
	f := NewFetcherWithSource(fetcherConfig(), source)

	if _, err := f.FetchWallets(ctx, []string{"0xa", "0xb"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
