package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"amazonpay/internal/canonical"
	"amazonpay/internal/mws"
)

// Operator signs and sends one MWS action. *mws.Client implements it.
type Operator interface {
	Operation(ctx context.Context, required, optional canonical.Params) (*mws.Response, error)
	MerchantID() string
	CurrencyCode() string
	PaymentDomain() string
}

// Client exposes the Off-Amazon Payments actions. Every method only builds
// the parameter maps; signing, retries and parsing live in the Operator.
type Client struct {
	op Operator
}

// New wraps op.
func New(op Operator) *Client {
	return &Client{op: op}
}

// Common holds the options every action accepts.
type Common struct {
	// MerchantID overrides the client's SellerId, e.g. for delegated access.
	MerchantID   canonical.Opt
	MWSAuthToken canonical.Opt
}

func (c *Client) required(action string, common Common) canonical.Params {
	return canonical.NewParams().
		Set(canonical.KeyAction, action).
		Set("SellerId", common.MerchantID.Or(c.op.MerchantID()))
}

func (co Common) optional() canonical.Params {
	return canonical.NewParams().SetOpt(canonical.KeyMWSAuthToken, co.MWSAuthToken)
}

func (c *Client) currency(o canonical.Opt) string {
	return o.Or(c.op.CurrencyCode())
}

// amountOpt turns a nullable amount into an optional parameter value.
func amountOpt(n decimal.NullDecimal) canonical.Opt {
	if !n.Valid {
		return canonical.None()
	}
	return canonical.Some(n.Decimal.String())
}

// Amount returns a present nullable amount.
func Amount(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// details runs a Get*/Validate* style action keyed by a single id.
func (c *Client) details(ctx context.Context, action, idKey, id string, common Common) (*mws.Response, error) {
	required := c.required(action, common).Set(idKey, id)
	return c.op.Operation(ctx, required, common.optional())
}

// GetServiceStatus returns the operational status of the API section:
// GREEN, GREEN_I, YELLOW or RED.
func (c *Client) GetServiceStatus(ctx context.Context) (*mws.Response, error) {
	required := canonical.NewParams().Set(canonical.KeyAction, "GetServiceStatus")
	return c.op.Operation(ctx, required, nil)
}

// GetMerchantAccountStatus returns the merchant's account state.
func (c *Client) GetMerchantAccountStatus(ctx context.Context, common Common) (*mws.Response, error) {
	return c.op.Operation(ctx, c.required("GetMerchantAccountStatus", common), common.optional())
}
