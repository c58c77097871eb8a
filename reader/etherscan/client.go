package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	appconfig "github.com/archana8teenth/compound-risk-scoring/config"
	"github.com/archana8teenth/compound-risk-scoring/logger"
	"github.com/archana8teenth/compound-risk-scoring/models"
)

// Client talks to the Etherscan account API. All requests go through a
// shared rate limiter so the per-key request budget holds regardless of
// how many wallets a run covers.
type Client struct {
	baseURL    string
	apiKey     string
	startBlock int64
	pageOffset int
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Log
}

// apiResponse is the Etherscan envelope. Status "0" with an empty result
// list means "no transactions found", not an error.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.agent != "" {
		req.Header.Set("User-Agent", t.agent)
	}
	return t.next.RoundTrip(req)
}

func NewClient(cfg *appconfig.Config) *Client {
	fc := cfg.Fetcher

	rps := fc.RateLimit.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := fc.RateLimit.BurstSize
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    fc.BaseURL,
		apiKey:     fc.APIKey,
		startBlock: fc.StartBlock,
		pageOffset: fc.PageOffset,
		httpClient: &http.Client{
			Timeout:   fc.RequestTimeout,
			Transport: &userAgentTransport{agent: fc.UserAgent, next: http.DefaultTransport},
		},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     logger.GetLogger(),
	}
}

// AccountTransactions fetches one account action list (txlist,
// txlistinternal or tokentx) for the address.
func (c *Client) AccountTransactions(ctx context.Context, action, address string) ([]models.RawTransaction, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", action)
	params.Set("address", address)
	params.Set("startblock", strconv.FormatInt(c.startBlock, 10))
	params.Set("endblock", "latest")
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(c.pageOffset))
	params.Set("sort", "desc")
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", action, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s request returned status %d", action, resp.StatusCode)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", action, err)
	}

	if envelope.Status != "1" {
		if strings.Contains(strings.ToLower(envelope.Message), "no transactions") {
			return nil, nil
		}
		// Result carries the error detail as a plain string here.
		var detail string
		_ = json.Unmarshal(envelope.Result, &detail)
		return nil, fmt.Errorf("etherscan %s error: %s %s", action, envelope.Message, detail)
	}

	var txs []models.RawTransaction
	if err := json.Unmarshal(envelope.Result, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", action, err)
	}
	return txs, nil
}

// AllTransactions fetches regular, internal and token transfers for an
// address and tags each record with its source list. A failing internal
// or token list degrades to the lists that did load.
func (c *Client) AllTransactions(ctx context.Context, address string) ([]models.RawTransaction, error) {
	log := c.log.WithComponent("etherscan").WithFields(logger.Fields{"address": address})

	regular, err := c.AccountTransactions(ctx, "txlist", address)
	if err != nil {
		return nil, err
	}
	for i := range regular {
		regular[i].Type = models.TxTypeRegular
	}
	log.WithFields(logger.Fields{"count": len(regular)}).Debug("fetched regular transactions")

	all := regular

	internal, err := c.AccountTransactions(ctx, "txlistinternal", address)
	if err != nil {
		log.WithError(err).Warn("failed to fetch internal transactions")
	} else {
		for i := range internal {
			internal[i].Type = models.TxTypeInternal
		}
		all = append(all, internal...)
	}

	tokens, err := c.AccountTransactions(ctx, "tokentx", address)
	if err != nil {
		log.WithError(err).Warn("failed to fetch token transfers")
	} else {
		for i := range tokens {
			tokens[i].Type = models.TxTypeToken
		}
		all = append(all, tokens...)
	}

	return all, nil
}
