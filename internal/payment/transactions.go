package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"amazonpay/internal/canonical"
	"amazonpay/internal/mws"
)

type AuthorizeOptions struct {
	Common
	CurrencyCode            canonical.Opt
	SellerAuthorizationNote canonical.Opt
	TransactionTimeout      canonical.Opt
	CaptureNow              canonical.Opt
	SoftDescriptor          canonical.Opt
	ProviderCredits         []ProviderCredit
}

// Authorize reserves amount against an order reference.
func (c *Client) Authorize(ctx context.Context, amazonOrderReferenceID, authorizationReferenceID string, amount decimal.Decimal, opts AuthorizeOptions) (*mws.Response, error) {
	required := c.required("Authorize", opts.Common).
		Set("AmazonOrderReferenceId", amazonOrderReferenceID).
		Set("AuthorizationReferenceId", authorizationReferenceID).
		SetValue("AuthorizationAmount.Amount", amount).
		Set("AuthorizationAmount.CurrencyCode", c.currency(opts.CurrencyCode))

	optional := opts.optional().
		SetOpt("SellerAuthorizationNote", opts.SellerAuthorizationNote).
		SetOpt("TransactionTimeout", opts.TransactionTimeout).
		SetOpt("CaptureNow", opts.CaptureNow).
		SetOpt("SoftDescriptor", opts.SoftDescriptor).
		Overlay(ProviderCreditList(opts.ProviderCredits))

	return c.op.Operation(ctx, required, optional)
}

// GetAuthorizationDetails returns an authorization.
func (c *Client) GetAuthorizationDetails(ctx context.Context, amazonAuthorizationID string, common Common) (*mws.Response, error) {
	return c.details(ctx, "GetAuthorizationDetails", "AmazonAuthorizationId", amazonAuthorizationID, common)
}

// CloseAuthorization closes an authorization.
func (c *Client) CloseAuthorization(ctx context.Context, amazonAuthorizationID string, reason canonical.Opt, common Common) (*mws.Response, error) {
	required := c.required("CloseAuthorization", common).
		Set("AmazonAuthorizationId", amazonAuthorizationID)
	optional := common.optional().SetOpt("ClosureReason", reason)
	return c.op.Operation(ctx, required, optional)
}

type CaptureOptions struct {
	Common
	CurrencyCode      canonical.Opt
	SellerCaptureNote canonical.Opt
	SoftDescriptor    canonical.Opt
	ProviderCredits   []ProviderCredit
}

// Capture captures funds from an open authorization.
func (c *Client) Capture(ctx context.Context, amazonAuthorizationID, captureReferenceID string, amount decimal.Decimal, opts CaptureOptions) (*mws.Response, error) {
	required := c.required("Capture", opts.Common).
		Set("AmazonAuthorizationId", amazonAuthorizationID).
		Set("CaptureReferenceId", captureReferenceID).
		SetValue("CaptureAmount.Amount", amount).
		Set("CaptureAmount.CurrencyCode", c.currency(opts.CurrencyCode))

	optional := opts.optional().
		SetOpt("SellerCaptureNote", opts.SellerCaptureNote).
		SetOpt("SoftDescriptor", opts.SoftDescriptor).
		Overlay(ProviderCreditList(opts.ProviderCredits))

	return c.op.Operation(ctx, required, optional)
}

// GetCaptureDetails returns a capture.
func (c *Client) GetCaptureDetails(ctx context.Context, amazonCaptureID string, common Common) (*mws.Response, error) {
	return c.details(ctx, "GetCaptureDetails", "AmazonCaptureId", amazonCaptureID, common)
}

type RefundOptions struct {
	Common
	CurrencyCode            canonical.Opt
	SellerRefundNote        canonical.Opt
	SoftDescriptor          canonical.Opt
	ProviderCreditReversals []ProviderCredit
}

// Refund refunds a previously captured amount.
func (c *Client) Refund(ctx context.Context, amazonCaptureID, refundReferenceID string, amount decimal.Decimal, opts RefundOptions) (*mws.Response, error) {
	required := c.required("Refund", opts.Common).
		Set("AmazonCaptureId", amazonCaptureID).
		Set("RefundReferenceId", refundReferenceID).
		SetValue("RefundAmount.Amount", amount).
		Set("RefundAmount.CurrencyCode", c.currency(opts.CurrencyCode))

	optional := opts.optional().
		SetOpt("SellerRefundNote", opts.SellerRefundNote).
		SetOpt("SoftDescriptor", opts.SoftDescriptor).
		Overlay(ProviderCreditReversalList(opts.ProviderCreditReversals))

	return c.op.Operation(ctx, required, optional)
}

// GetRefundDetails returns a refund.
func (c *Client) GetRefundDetails(ctx context.Context, amazonRefundID string, common Common) (*mws.Response, error) {
	return c.details(ctx, "GetRefundDetails", "AmazonRefundId", amazonRefundID, common)
}

// GetProviderCreditDetails returns a provider credit.
func (c *Client) GetProviderCreditDetails(ctx context.Context, amazonProviderCreditID string, common Common) (*mws.Response, error) {
	return c.details(ctx, "GetProviderCreditDetails", "AmazonProviderCreditId", amazonProviderCreditID, common)
}

// GetProviderCreditReversalDetails returns a provider credit reversal.
func (c *Client) GetProviderCreditReversalDetails(ctx context.Context, amazonProviderCreditReversalID string, common Common) (*mws.Response, error) {
	return c.details(ctx, "GetProviderCreditReversalDetails", "AmazonProviderCreditReversalId", amazonProviderCreditReversalID, common)
}

type ReverseProviderCreditOptions struct {
	Common
	CurrencyCode       canonical.Opt
	CreditReversalNote canonical.Opt
}

// ReverseProviderCredit reverses part or all of a provider credit.
func (c *Client) ReverseProviderCredit(ctx context.Context, amazonProviderCreditID, creditReversalReferenceID string, amount decimal.Decimal, opts ReverseProviderCreditOptions) (*mws.Response, error) {
	required := c.required("ReverseProviderCredit", opts.Common).
		Set("AmazonProviderCreditId", amazonProviderCreditID).
		Set("CreditReversalReferenceId", creditReversalReferenceID).
		SetValue("CreditReversalAmount.Amount", amount).
		Set("CreditReversalAmount.CurrencyCode", c.currency(opts.CurrencyCode))

	optional := opts.optional().SetOpt("CreditReversalNote", opts.CreditReversalNote)

	return c.op.Operation(ctx, required, optional)
}
