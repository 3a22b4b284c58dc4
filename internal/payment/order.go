package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"amazonpay/internal/canonical"
	"amazonpay/internal/mws"
)

// SellerOrder holds the SellerOrderAttributes shared by several actions.
type SellerOrder struct {
	SellerOrderID     canonical.Opt
	StoreName         canonical.Opt
	CustomInformation canonical.Opt
	SupplementaryData canonical.Opt
}

func (s SellerOrder) set(p canonical.Params, prefix string) {
	p.SetOpt(prefix+"SellerOrderAttributes.SellerOrderId", s.SellerOrderID)
	p.SetOpt(prefix+"SellerOrderAttributes.StoreName", s.StoreName)
	p.SetOpt(prefix+"SellerOrderAttributes.CustomInformation", s.CustomInformation)
	p.SetOpt(prefix+"SellerOrderAttributes.SupplementaryData", s.SupplementaryData)
}

type CreateOrderReferenceForIDOptions struct {
	Common
	SellerOrder
	InheritShippingAddress canonical.Opt
	ConfirmNow             canonical.Opt
	CurrencyCode           canonical.Opt
	PlatformID             canonical.Opt
	SellerNote             canonical.Opt

	// Amount is required by the service when ConfirmNow is true.
	Amount decimal.NullDecimal
}

// CreateOrderReferenceForID creates an order reference for the given
// object, e.g. a billing agreement.
func (c *Client) CreateOrderReferenceForID(ctx context.Context, id, idType string, opts CreateOrderReferenceForIDOptions) (*mws.Response, error) {
	required := c.required("CreateOrderReferenceForId", opts.Common).
		Set("Id", id).
		Set("IdType", idType)

	optional := opts.optional().
		SetOpt("InheritShippingAddress", opts.InheritShippingAddress).
		SetOpt("ConfirmNow", opts.ConfirmNow).
		SetOpt("OrderReferenceAttributes.OrderTotal.Amount", amountOpt(opts.Amount)).
		Set("OrderReferenceAttributes.OrderTotal.CurrencyCode", c.currency(opts.CurrencyCode)).
		SetOpt("OrderReferenceAttributes.PlatformId", opts.PlatformID).
		SetOpt("OrderReferenceAttributes.SellerNote", opts.SellerNote)
	opts.SellerOrder.set(optional, "OrderReferenceAttributes.")

	return c.op.Operation(ctx, required, optional)
}

type ListOrderReferenceOptions struct {
	Common
	CreatedTimeRangeStart canonical.Opt
	CreatedTimeRangeEnd   canonical.Opt
	SortOrder             canonical.Opt
	PageSize              canonical.Opt
	StatusFilter          []string
}

// ListOrderReference lists order references matching queryID, e.g. a
// SellerOrderId. PaymentDomain follows the client's region.
func (c *Client) ListOrderReference(ctx context.Context, queryID, queryIDType string, opts ListOrderReferenceOptions) (*mws.Response, error) {
	required := c.required("ListOrderReference", opts.Common).
		Set("QueryId", queryID).
		Set("QueryIdType", queryIDType)

	optional := opts.optional().
		SetOpt("CreatedTimeRange.StartTime", opts.CreatedTimeRangeStart).
		SetOpt("CreatedTimeRange.EndTime", opts.CreatedTimeRangeEnd).
		SetOpt("SortOrder", opts.SortOrder).
		SetOpt("PageSize", opts.PageSize).
		Set("PaymentDomain", c.op.PaymentDomain()).
		Overlay(StatusListFilter(opts.StatusFilter))

	return c.op.Operation(ctx, required, optional)
}

// ListOrderReferenceByNextToken fetches the next page of a listing.
func (c *Client) ListOrderReferenceByNextToken(ctx context.Context, nextPageToken string) (*mws.Response, error) {
	required := c.required("ListOrderReferenceByNextToken", Common{}).
		Set("NextPageToken", nextPageToken)
	return c.op.Operation(ctx, required, nil)
}

type GetOrderReferenceDetailsOptions struct {
	Common
	AddressConsentToken canonical.Opt
	AccessToken         canonical.Opt
}

// GetOrderReferenceDetails returns the order reference. AccessToken takes
// precedence over the legacy AddressConsentToken.
func (c *Client) GetOrderReferenceDetails(ctx context.Context, amazonOrderReferenceID string, opts GetOrderReferenceDetailsOptions) (*mws.Response, error) {
	required := c.required("GetOrderReferenceDetails", opts.Common).
		Set("AmazonOrderReferenceId", amazonOrderReferenceID)

	token := opts.AccessToken
	if !token.IsSet() {
		token = opts.AddressConsentToken
	}
	optional := opts.optional().SetOpt("AccessToken", token)

	return c.op.Operation(ctx, required, optional)
}

type SetOrderReferenceDetailsOptions struct {
	Common
	SellerOrder
	CurrencyCode                canonical.Opt
	PlatformID                  canonical.Opt
	SellerNote                  canonical.Opt
	RequestPaymentAuthorization canonical.Opt
	OrderItemCategories         []string
}

// SetOrderReferenceDetails sets the order total and seller attributes.
func (c *Client) SetOrderReferenceDetails(ctx context.Context, amazonOrderReferenceID string, amount decimal.Decimal, opts SetOrderReferenceDetailsOptions) (*mws.Response, error) {
	required := c.required("SetOrderReferenceDetails", opts.Common).
		Set("AmazonOrderReferenceId", amazonOrderReferenceID).
		SetValue("OrderReferenceAttributes.OrderTotal.Amount", amount).
		Set("OrderReferenceAttributes.OrderTotal.CurrencyCode", c.currency(opts.CurrencyCode))

	optional := opts.optional().
		SetOpt("OrderReferenceAttributes.PlatformId", opts.PlatformID).
		SetOpt("OrderReferenceAttributes.RequestPaymentAuthorization", opts.RequestPaymentAuthorization).
		SetOpt("OrderReferenceAttributes.SellerNote", opts.SellerNote).
		Overlay(CategoriesList("OrderReferenceAttributes", opts.OrderItemCategories))
	opts.SellerOrder.set(optional, "OrderReferenceAttributes.")

	return c.op.Operation(ctx, required, optional)
}

type SetOrderAttributesOptions struct {
	Common
	SellerOrder
	Amount                        decimal.NullDecimal
	CurrencyCode                  canonical.Opt
	PlatformID                    canonical.Opt
	SellerNote                    canonical.Opt
	PaymentServiceProviderID      canonical.Opt
	PaymentServiceProviderOrderID canonical.Opt
	RequestPaymentAuthorization   canonical.Opt
	OrderItemCategories           []string
}

// SetOrderAttributes updates an order reference, including after it has
// been confirmed. The currency is only sent together with an amount.
func (c *Client) SetOrderAttributes(ctx context.Context, amazonOrderReferenceID string, opts SetOrderAttributesOptions) (*mws.Response, error) {
	required := c.required("SetOrderAttributes", opts.Common).
		Set("AmazonOrderReferenceId", amazonOrderReferenceID)

	optional := opts.optional().
		SetOpt("OrderAttributes.OrderTotal.Amount", amountOpt(opts.Amount)).
		SetOpt("OrderAttributes.PlatformId", opts.PlatformID).
		SetOpt("OrderAttributes.SellerNote", opts.SellerNote).
		SetOpt("OrderAttributes.PaymentServiceProviderAttributes.PaymentServiceProviderId", opts.PaymentServiceProviderID).
		SetOpt("OrderAttributes.PaymentServiceProviderAttributes.PaymentServiceProviderOrderId", opts.PaymentServiceProviderOrderID).
		SetOpt("OrderAttributes.RequestPaymentAuthorization", opts.RequestPaymentAuthorization).
		Overlay(CategoriesList("OrderAttributes", opts.OrderItemCategories))
	if opts.Amount.Valid {
		optional.Set("OrderAttributes.OrderTotal.CurrencyCode", c.currency(opts.CurrencyCode))
	}
	opts.SellerOrder.set(optional, "OrderAttributes.")

	return c.op.Operation(ctx, required, optional)
}

type ConfirmOrderReferenceOptions struct {
	Common
	SuccessURL          canonical.Opt
	FailureURL          canonical.Opt
	AuthorizationAmount decimal.NullDecimal
	CurrencyCode        canonical.Opt
}

// ConfirmOrderReference confirms the order reference. The currency is only
// sent together with an authorization amount.
func (c *Client) ConfirmOrderReference(ctx context.Context, amazonOrderReferenceID string, opts ConfirmOrderReferenceOptions) (*mws.Response, error) {
	required := c.required("ConfirmOrderReference", opts.Common).
		Set("AmazonOrderReferenceId", amazonOrderReferenceID)

	optional := opts.optional().
		SetOpt("SuccessUrl", opts.SuccessURL).
		SetOpt("FailureUrl", opts.FailureURL).
		SetOpt("AuthorizationAmount.Amount", amountOpt(opts.AuthorizationAmount))
	if opts.AuthorizationAmount.Valid {
		optional.Set("AuthorizationAmount.CurrencyCode", c.currency(opts.CurrencyCode))
	}

	return c.op.Operation(ctx, required, optional)
}

// CancelOrderReference cancels an order reference.
func (c *Client) CancelOrderReference(ctx context.Context, amazonOrderReferenceID string, reason canonical.Opt, common Common) (*mws.Response, error) {
	required := c.required("CancelOrderReference", common).
		Set("AmazonOrderReferenceId", amazonOrderReferenceID)
	optional := common.optional().SetOpt("CancelationReason", reason)
	return c.op.Operation(ctx, required, optional)
}

// CloseOrderReference closes an order reference to new authorizations.
func (c *Client) CloseOrderReference(ctx context.Context, amazonOrderReferenceID string, reason canonical.Opt, common Common) (*mws.Response, error) {
	required := c.required("CloseOrderReference", common).
		Set("AmazonOrderReferenceId", amazonOrderReferenceID)
	optional := common.optional().SetOpt("ClosureReason", reason)
	return c.op.Operation(ctx, required, optional)
}
