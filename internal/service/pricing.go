package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/B1acB1rd/SolSwap/internal/model"
)

const (
	quoteTimeout    = 5 * time.Second
	quoteMaxRetries = 2
)

// Quote holds current USD prices per token plus the USD to NGN rate.
type Quote struct {
	USDPrices map[model.TokenSymbol]float64 `json:"usdPrices"`
	USDToNGN  float64                       `json:"usdToLocalFx"`
}

// NGNPrice returns the local-currency price for one unit of the token.
func (q *Quote) NGNPrice(symbol model.TokenSymbol) float64 {
	return q.USDPrices[symbol] * q.USDToNGN
}

// QuoteProvider is the pricing collaborator.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbols []model.TokenSymbol) (*Quote, error)
}

// QuoteService fetches prices from an exchange-rate API.
type QuoteService struct {
	baseURL string
	client  *http.Client
}

func NewQuoteService(baseURL string) *QuoteService {
	return &QuoteService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: quoteTimeout,
		},
	}
}

type quoteAPIResponse struct {
	Prices map[string]float64 `json:"prices"`
	USDNGN float64            `json:"usdNgn"`
}

func (s *QuoteService) GetQuote(ctx context.Context, symbols []model.TokenSymbol) (*Quote, error) {
	var lastErr error
	for attempt := 0; attempt <= quoteMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}
		quote, err := s.fetch(ctx, symbols)
		if err == nil {
			return quote, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("quote fetch failed")
	}
	return nil, lastErr
}

func (s *QuoteService) fetch(ctx context.Context, symbols []model.TokenSymbol) (*Quote, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/quotes"

	names := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		names = append(names, string(sym))
	}
	q := u.Query()
	q.Set("symbols", strings.Join(names, ","))
	q.Set("fiat", "NGN")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request failed with status %d", resp.StatusCode)
	}

	var parsed quoteAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.USDNGN <= 0 {
		return nil, fmt.Errorf("quote response missing fx rate")
	}

	quote := &Quote{
		USDPrices: make(map[model.TokenSymbol]float64, len(symbols)),
		USDToNGN:  parsed.USDNGN,
	}
	for _, sym := range symbols {
		quote.USDPrices[sym] = parsed.Prices[string(sym)]
	}
	return quote, nil
}
