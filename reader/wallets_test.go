package reader

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeWalletCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallets.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestLoadWalletAddressesNamedColumn(t *testing.T) {
	path := writeWalletCSV(t, "id,wallet_address\n1,0xFAa0768bDE629806739c3a4620656c5d26f44ef2\n2,not-an-address\n")
	addrs, err := LoadWalletAddresses(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(addrs) != 1 {
		t.Fatalf("got %d addresses, want 1", len(addrs))
	}
	if addrs[0] != "0xfaa0768bde629806739c3a4620656c5d26f44ef2" {
		t.Errorf("address = %s", addrs[0])
	}
}

func TestLoadWalletAddressesHeaderless(t *testing.T) {
	path := writeWalletCSV(t,
		"0xfaa0768bde629806739c3a4620656c5d26f44ef2\n0x47ac0fb4f2d84898e4d9e7b4dab3c24507a6d503\n")
	addrs, err := LoadWalletAddresses(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(addrs) != 2 {
		t.Fatalf("got %d addresses, want 2", len(addrs))
	}
}

func TestLoadWalletAddressesMissingFile(t *testing.T) {
	if _, err := LoadWalletAddresses(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDownloadWalletList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("wallet_address\n0xfaa0768bde629806739c3a4620656c5d26f44ef2\n"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "data", "wallets.csv")
	path, err := DownloadWalletList(srv.URL, dest)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	addrs, err := LoadWalletAddresses(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(addrs) != 1 {
		t.Fatalf("got %d addresses, want 1", len(addrs))
	}
}

func TestDownloadWalletListFallsBackToSamples(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "data", "wallets.csv")
	path, err := DownloadWalletList(srv.URL, dest)
	if err != nil {
		t.Fatalf("download fallback: %v", err)
	}
	addrs, err := LoadWalletAddresses(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(addrs) != len(sampleAddresses) {
		t.Fatalf("got %d addresses, want %d samples", len(addrs), len(sampleAddresses))
	}
}
