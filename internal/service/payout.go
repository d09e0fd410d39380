package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/B1acB1rd/SolSwap/internal/errors"
	"github.com/B1acB1rd/SolSwap/internal/model"
)

const payoutTimeout = 10 * time.Second

// BankAccount is a parsed NUBAN account number plus bank code.
type BankAccount struct {
	AccountNumber string `json:"accountNumber"`
	BankCode      string `json:"bankCode"`
}

// Bank details arrive as free text such as "0123456789 GTB 058" or
// "my account is 0123456789, bank code 058".
var (
	accountNumberRegex = regexp.MustCompile(`\b\d{10}\b`)
	bankCodeRegex      = regexp.MustCompile(`\b\d{3}\b`)
)

// ParseBankAccount extracts a 10-digit NUBAN account number and a 3-digit
// bank code from free text. Both must be present and distinct.
func ParseBankAccount(raw string) (*BankAccount, error) {
	accountNumber := accountNumberRegex.FindString(raw)
	if accountNumber == "" {
		return nil, apperrors.ValidationError("bank account must include a 10-digit account number")
	}

	// Search for the bank code outside the account number match.
	remainder := strings.Replace(raw, accountNumber, " ", 1)
	bankCode := bankCodeRegex.FindString(remainder)
	if bankCode == "" {
		return nil, apperrors.ValidationError("bank account must include a 3-digit bank code")
	}

	return &BankAccount{AccountNumber: accountNumber, BankCode: bankCode}, nil
}

// ContainsBankDetails reports whether the text carries a bank-detail marker
// (a 10-digit account number shape).
func ContainsBankDetails(raw string) bool {
	return accountNumberRegex.MatchString(raw)
}

// PayoutProvider is the bank-transfer collaborator.
type PayoutProvider interface {
	ResolveBankAccount(ctx context.Context, accountNumber, bankCode string) (accountName string, err error)
	InitiateTransfer(ctx context.Context, order *model.Order) (reference string, err error)
}

// PayoutService talks to the payment provider's transfer API.
type PayoutService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewPayoutService(baseURL, apiKey string) *PayoutService {
	return &PayoutService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: payoutTimeout,
		},
	}
}

type resolveResponse struct {
	AccountName string `json:"accountName"`
}

func (s *PayoutService) ResolveBankAccount(ctx context.Context, accountNumber, bankCode string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/banks/resolve?account_number=%s&bank_code=%s",
		strings.TrimRight(s.baseURL, "/"), accountNumber, bankCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resolve request failed with status %d", resp.StatusCode)
	}

	var parsed resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return parsed.AccountName, nil
}

type transferRequest struct {
	OrderID       string  `json:"orderId"`
	AccountNumber string  `json:"accountNumber"`
	BankCode      string  `json:"bankCode"`
	AmountNGN     float64 `json:"amountNgn"`
}

type transferResponse struct {
	Reference string `json:"reference"`
}

func (s *PayoutService) InitiateTransfer(ctx context.Context, order *model.Order) (string, error) {
	if order.BankAccountNumber == nil || order.BankCode == nil {
		return "", apperrors.ValidationError("order has no bank account on file")
	}

	body, err := json.Marshal(transferRequest{
		OrderID:       order.ID,
		AccountNumber: *order.BankAccountNumber,
		BankCode:      *order.BankCode,
		AmountNGN:     order.AmountNGN,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := strings.TrimRight(s.baseURL, "/") + "/v1/transfers"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("orderId", order.ID).Msg("transfer initiation failed")
		return "", fmt.Errorf("transfer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("transfer request failed with status %d", resp.StatusCode)
	}

	var parsed transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	log.Info().
		Str("orderId", order.ID).
		Str("reference", parsed.Reference).
		Dur("elapsed", time.Since(start)).
		Msg("transfer initiated")

	return parsed.Reference, nil
}

func (s *PayoutService) authorize(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
}
