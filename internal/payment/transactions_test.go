package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amazonpay/internal/canonical"
)

func TestProviderCreditList(t *testing.T) {
	got := ProviderCreditList([]ProviderCredit{
		{ProviderID: "P1", Amount: decimal.RequireFromString("1.25"), CurrencyCode: "USD"},
		{ProviderID: "P2", Amount: decimal.NewFromInt(2)},
	})

	assert.Equal(t, canonical.Params{
		"ProviderCreditList.member.1.ProviderId":                "P1",
		"ProviderCreditList.member.1.CreditAmount.Amount":       "1.25",
		"ProviderCreditList.member.1.CreditAmount.CurrencyCode": "USD",
		"ProviderCreditList.member.2.ProviderId":                "P2",
		"ProviderCreditList.member.2.CreditAmount.Amount":       "2",
	}, got)
}

func TestProviderCreditReversalList_Empty(t *testing.T) {
	assert.Empty(t, ProviderCreditReversalList(nil))
}

func TestTransactions_AuthorizeWithProviderCredits(t *testing.T) {
	op := newFakeOperator()
	_, err := New(op).Authorize(context.Background(), "S01", "auth-1", decimal.RequireFromString("9.99"), AuthorizeOptions{
		CurrencyCode:       canonical.Some("EUR"),
		TransactionTimeout: canonical.SomeValue(0),
		CaptureNow:         canonical.SomeBool(true),
		ProviderCredits:    []ProviderCredit{{ProviderID: "P1", Amount: decimal.NewFromInt(1), CurrencyCode: "EUR"}},
	})
	require.NoError(t, err)

	c := op.last()
	assert.Equal(t, "Authorize", c.action())
	got := c.merged()
	assert.Equal(t, "9.99", got["AuthorizationAmount.Amount"])
	assert.Equal(t, "EUR", got["AuthorizationAmount.CurrencyCode"])
	assert.Equal(t, "0", got["TransactionTimeout"])
	assert.Equal(t, "true", got["CaptureNow"])
	assert.Equal(t, "P1", got["ProviderCreditList.member.1.ProviderId"])
}

func TestTransactions_RefundCarriesReversals(t *testing.T) {
	op := newFakeOperator()
	_, err := New(op).Refund(context.Background(), "C01", "ref-1", decimal.NewFromInt(4), RefundOptions{
		ProviderCreditReversals: []ProviderCredit{{ProviderID: "P1", Amount: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	got := op.last().merged()
	assert.Equal(t, "P1", got["ProviderCreditReversalList.member.1.ProviderId"])
	assert.Equal(t, "1", got["ProviderCreditReversalList.member.1.CreditReversalAmount.Amount"])
	assert.NotContains(t, got, "ProviderCreditList.member.1.ProviderId")
}

func TestTransactions_Keys(t *testing.T) {
	ctx := context.Background()
	amount := decimal.NewFromInt(4)

	tests := []struct {
		name   string
		run    func(c *Client) error
		action string
		want   map[string]string
	}{
		{
			name: "capture",
			run: func(c *Client) error {
				_, err := c.Capture(ctx, "A01", "cap-1", amount, CaptureOptions{SellerCaptureNote: canonical.Some("n")})
				return err
			},
			action: "Capture",
			want: map[string]string{
				"AmazonAuthorizationId":      "A01",
				"CaptureReferenceId":         "cap-1",
				"CaptureAmount.Amount":       "4",
				"CaptureAmount.CurrencyCode": "USD",
				"SellerCaptureNote":          "n",
			},
		},
		{
			name: "refund",
			run: func(c *Client) error {
				_, err := c.Refund(ctx, "C01", "ref-1", amount, RefundOptions{})
				return err
			},
			action: "Refund",
			want: map[string]string{
				"AmazonCaptureId":     "C01",
				"RefundReferenceId":   "ref-1",
				"RefundAmount.Amount": "4",
			},
		},
		{
			name: "close authorization",
			run: func(c *Client) error {
				_, err := c.CloseAuthorization(ctx, "A01", canonical.Some("done"), Common{})
				return err
			},
			action: "CloseAuthorization",
			want:   map[string]string{"AmazonAuthorizationId": "A01", "ClosureReason": "done"},
		},
		{
			name: "reverse provider credit",
			run: func(c *Client) error {
				_, err := c.ReverseProviderCredit(ctx, "PC01", "rev-1", amount, ReverseProviderCreditOptions{})
				return err
			},
			action: "ReverseProviderCredit",
			want: map[string]string{
				"AmazonProviderCreditId":            "PC01",
				"CreditReversalReferenceId":         "rev-1",
				"CreditReversalAmount.CurrencyCode": "USD",
			},
		},
		{
			name: "provider credit reversal details",
			run: func(c *Client) error {
				_, err := c.GetProviderCreditReversalDetails(ctx, "PR01", Common{})
				return err
			},
			action: "GetProviderCreditReversalDetails",
			want:   map[string]string{"AmazonProviderCreditReversalId": "PR01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := newFakeOperator()
			require.NoError(t, tt.run(New(op)))

			c := op.last()
			assert.Equal(t, tt.action, c.action())
			got := c.merged()
			for k, v := range tt.want {
				assert.Equal(t, v, got[k], k)
			}
		})
	}
}
