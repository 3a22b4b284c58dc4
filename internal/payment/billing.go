package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"amazonpay/internal/canonical"
	"amazonpay/internal/mws"
)

type GetBillingAgreementDetailsOptions struct {
	Common
	AddressConsentToken canonical.Opt
	AccessToken         canonical.Opt
}

// GetBillingAgreementDetails returns the billing agreement, including its
// BillingAgreementStatus/State.
func (c *Client) GetBillingAgreementDetails(ctx context.Context, amazonBillingAgreementID string, opts GetBillingAgreementDetailsOptions) (*mws.Response, error) {
	required := c.required("GetBillingAgreementDetails", opts.Common).
		Set("AmazonBillingAgreementId", amazonBillingAgreementID)

	optional := opts.optional().
		SetOpt("AccessToken", opts.AccessToken).
		SetOpt("AddressConsentToken", opts.AddressConsentToken)

	return c.op.Operation(ctx, required, optional)
}

type SetBillingAgreementDetailsOptions struct {
	Common
	PlatformID               canonical.Opt
	SellerNote               canonical.Opt
	SellerBillingAgreementID canonical.Opt
	CustomInformation        canonical.Opt
	StoreName                canonical.Opt
	BillingAgreementType     canonical.Opt
	SubscriptionAmount       decimal.NullDecimal
	SubscriptionCurrencyCode canonical.Opt
}

// SetBillingAgreementDetails sets the seller attributes of a draft billing
// agreement. The currency is only sent together with a subscription amount.
func (c *Client) SetBillingAgreementDetails(ctx context.Context, amazonBillingAgreementID string, opts SetBillingAgreementDetailsOptions) (*mws.Response, error) {
	required := c.required("SetBillingAgreementDetails", opts.Common).
		Set("AmazonBillingAgreementId", amazonBillingAgreementID)

	optional := opts.optional().
		SetOpt("BillingAgreementAttributes.PlatformId", opts.PlatformID).
		SetOpt("BillingAgreementAttributes.SellerNote", opts.SellerNote).
		SetOpt("BillingAgreementAttributes.SellerBillingAgreementAttributes.SellerBillingAgreementId", opts.SellerBillingAgreementID).
		SetOpt("BillingAgreementAttributes.SellerBillingAgreementAttributes.CustomInformation", opts.CustomInformation).
		SetOpt("BillingAgreementAttributes.SellerBillingAgreementAttributes.StoreName", opts.StoreName).
		SetOpt("BillingAgreementAttributes.BillingAgreementType", opts.BillingAgreementType).
		SetOpt("BillingAgreementAttributes.SubscriptionAmount.Amount", amountOpt(opts.SubscriptionAmount))
	if opts.SubscriptionAmount.Valid {
		optional.Set("BillingAgreementAttributes.SubscriptionAmount.CurrencyCode", c.currency(opts.SubscriptionCurrencyCode))
	}

	return c.op.Operation(ctx, required, optional)
}

type ConfirmBillingAgreementOptions struct {
	Common
	SuccessURL canonical.Opt
	FailureURL canonical.Opt
}

// ConfirmBillingAgreement confirms a billing agreement.
func (c *Client) ConfirmBillingAgreement(ctx context.Context, amazonBillingAgreementID string, opts ConfirmBillingAgreementOptions) (*mws.Response, error) {
	required := c.required("ConfirmBillingAgreement", opts.Common).
		Set("AmazonBillingAgreementId", amazonBillingAgreementID)

	optional := opts.optional().
		SetOpt("SuccessUrl", opts.SuccessURL).
		SetOpt("FailureUrl", opts.FailureURL)

	return c.op.Operation(ctx, required, optional)
}

// ValidateBillingAgreement checks that the agreement can still be charged.
func (c *Client) ValidateBillingAgreement(ctx context.Context, amazonBillingAgreementID string, common Common) (*mws.Response, error) {
	return c.details(ctx, "ValidateBillingAgreement", "AmazonBillingAgreementId", amazonBillingAgreementID, common)
}

type AuthorizeOnBillingAgreementOptions struct {
	Common
	SellerOrder
	CurrencyCode            canonical.Opt
	SellerAuthorizationNote canonical.Opt
	TransactionTimeout      canonical.Opt
	SoftDescriptor          canonical.Opt
	SellerNote              canonical.Opt
	PlatformID              canonical.Opt
	InheritShippingAddress  canonical.Opt

	// CaptureNow is sent as "false" when unset.
	CaptureNow canonical.Opt
}

// AuthorizeOnBillingAgreement reserves amount against a billing agreement.
func (c *Client) AuthorizeOnBillingAgreement(ctx context.Context, amazonBillingAgreementID, authorizationReferenceID string, amount decimal.Decimal, opts AuthorizeOnBillingAgreementOptions) (*mws.Response, error) {
	required := c.required("AuthorizeOnBillingAgreement", opts.Common).
		Set("AmazonBillingAgreementId", amazonBillingAgreementID).
		Set("AuthorizationReferenceId", authorizationReferenceID).
		SetValue("AuthorizationAmount.Amount", amount).
		Set("AuthorizationAmount.CurrencyCode", c.currency(opts.CurrencyCode))

	captureNow := opts.CaptureNow
	if !captureNow.IsSet() {
		captureNow = canonical.SomeBool(false)
	}

	optional := opts.optional().
		SetOpt("SellerAuthorizationNote", opts.SellerAuthorizationNote).
		SetOpt("TransactionTimeout", opts.TransactionTimeout).
		SetOpt("CaptureNow", captureNow).
		SetOpt("SoftDescriptor", opts.SoftDescriptor).
		SetOpt("SellerNote", opts.SellerNote).
		SetOpt("PlatformId", opts.PlatformID).
		SetOpt("InheritShippingAddress", opts.InheritShippingAddress)
	opts.SellerOrder.set(optional, "")

	return c.op.Operation(ctx, required, optional)
}

// CloseBillingAgreement closes a billing agreement to further charges.
func (c *Client) CloseBillingAgreement(ctx context.Context, amazonBillingAgreementID string, reason canonical.Opt, common Common) (*mws.Response, error) {
	required := c.required("CloseBillingAgreement", common).
		Set("AmazonBillingAgreementId", amazonBillingAgreementID)
	optional := common.optional().SetOpt("ClosureReason", reason)
	return c.op.Operation(ctx, required, optional)
}
