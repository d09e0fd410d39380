package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B1acB1rd/SolSwap/internal/model"
)

func TestParseBankAccount(t *testing.T) {
	t.Run("parses account number and bank code", func(t *testing.T) {
		cases := []struct {
			name    string
			message string
			account string
			code    string
		}{
			{"plain", "0123456789 058", "0123456789", "058"},
			{"with bank name", "my account is 0123456789, GTB code 058", "0123456789", "058"},
			{"code first", "bank 058, acct 0123456789", "0123456789", "058"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				account, err := ParseBankAccount(tc.message)
				require.NoError(t, err)
				assert.Equal(t, tc.account, account.AccountNumber)
				assert.Equal(t, tc.code, account.BankCode)
			})
		}
	})

	t.Run("rejects missing account number", func(t *testing.T) {
		_, err := ParseBankAccount("bank code 058")
		assert.Error(t, err)
	})

	t.Run("rejects missing bank code", func(t *testing.T) {
		_, err := ParseBankAccount("account 0123456789 only")
		assert.Error(t, err)
	})

	t.Run("does not reuse account number digits as bank code", func(t *testing.T) {
		_, err := ParseBankAccount("0123456789")
		assert.Error(t, err)
	})
}

func TestContainsBankDetails(t *testing.T) {
	assert.True(t, ContainsBankDetails("here: 0123456789 058"))
	assert.False(t, ContainsBankDetails("I will send details later"))
}

func TestPayoutServiceInitiateTransfer(t *testing.T) {
	accountNumber := "0123456789"
	bankCode := "058"

	t.Run("posts transfer and returns reference", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/transfers", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"reference":"trf_123"}`))
		}))
		defer srv.Close()

		svc := NewPayoutService(srv.URL, "test-key")
		ref, err := svc.InitiateTransfer(context.Background(), &model.Order{
			ID:                "order-1",
			BankAccountNumber: &accountNumber,
			BankCode:          &bankCode,
			AmountNGN:         150000,
		})
		require.NoError(t, err)
		assert.Equal(t, "trf_123", ref)
	})

	t.Run("fails without bank details on order", func(t *testing.T) {
		svc := NewPayoutService("http://localhost:0", "")
		_, err := svc.InitiateTransfer(context.Background(), &model.Order{ID: "order-2"})
		assert.Error(t, err)
	})

	t.Run("fails on upstream error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		svc := NewPayoutService(srv.URL, "")
		_, err := svc.InitiateTransfer(context.Background(), &model.Order{
			ID:                "order-3",
			BankAccountNumber: &accountNumber,
			BankCode:          &bankCode,
		})
		assert.Error(t, err)
	})
}
