package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/B1acB1rd/SolSwap/internal/model"
)

const walletTimeout = 5 * time.Second

// DepositAddress is the destination the user must send tokens to. TokenAccount
// is set only for non-native tokens.
type DepositAddress struct {
	Address      string  `json:"address"`
	TokenAccount *string `json:"tokenAccount,omitempty"`
}

// DepositAddressProvider is the blockchain address-generation collaborator.
type DepositAddressProvider interface {
	GetDepositAddress(ctx context.Context, symbol model.TokenSymbol) (*DepositAddress, error)
}

// WalletService requests deposit addresses from the wallet subsystem.
type WalletService struct {
	baseURL string
	client  *http.Client
}

func NewWalletService(baseURL string) *WalletService {
	return &WalletService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: walletTimeout,
		},
	}
}

func (s *WalletService) GetDepositAddress(ctx context.Context, symbol model.TokenSymbol) (*DepositAddress, error) {
	body := strings.NewReader(fmt.Sprintf(`{"tokenSymbol":%q}`, symbol))
	endpoint := strings.TrimRight(s.baseURL, "/") + "/v1/deposit-addresses"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("token", string(symbol)).Msg("deposit address request failed")
		return nil, fmt.Errorf("wallet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("wallet request failed with status %d", resp.StatusCode)
	}

	var addr DepositAddress
	if err := json.NewDecoder(resp.Body).Decode(&addr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if addr.Address == "" {
		return nil, fmt.Errorf("wallet returned empty address")
	}

	log.Info().
		Str("token", string(symbol)).
		Dur("elapsed", time.Since(start)).
		Msg("deposit address obtained")

	return &addr, nil
}
