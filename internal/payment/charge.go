package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"amazonpay/internal/canonical"
	"amazonpay/internal/mws"
)

// ErrUnknownReference is returned for ids that are neither order
// references nor billing agreements.
var ErrUnknownReference = errors.New("unknown reference id type")

// ReferenceKind tells the two chargeable reference types apart.
type ReferenceKind int

const (
	OrderReference ReferenceKind = iota + 1
	BillingAgreement
)

func (k ReferenceKind) String() string {
	switch k {
	case OrderReference:
		return "OrderReference"
	case BillingAgreement:
		return "BillingAgreement"
	default:
		return "Unknown"
	}
}

// ReferenceID is an Amazon reference id tagged with its kind.
type ReferenceID struct {
	Kind ReferenceKind
	ID   string
}

// ParseReferenceID classifies id by prefix: S or P is an order reference,
// C or B a billing agreement.
func ParseReferenceID(id string) (ReferenceID, error) {
	if id == "" {
		return ReferenceID{}, fmt.Errorf("%w: empty", ErrUnknownReference)
	}
	switch id[0] {
	case 'S', 'P':
		return ReferenceID{Kind: OrderReference, ID: id}, nil
	case 'C', 'B':
		return ReferenceID{Kind: BillingAgreement, ID: id}, nil
	default:
		return ReferenceID{}, fmt.Errorf("%w: %s", ErrUnknownReference, id)
	}
}

// billingAgreementStatePath locates BillingAgreementStatus in a
// GetBillingAgreementDetails response.
const billingAgreementStatePath = "GetBillingAgreementDetailsResponse/GetBillingAgreementDetailsResult/BillingAgreementDetails/BillingAgreementStatus"

type ChargeOptions struct {
	Common
	CurrencyCode      canonical.Opt
	ChargeNote        canonical.Opt
	ChargeOrderID     canonical.Opt
	StoreName         canonical.Opt
	CustomInformation canonical.Opt
	SoftDescriptor    canonical.Opt
	PlatformID        canonical.Opt
}

// Charge authorizes and captures amount in one call against either an
// order reference or a billing agreement. It returns the response of the
// last action that ran; a non-success response stops the sequence.
func (c *Client) Charge(ctx context.Context, amazonReferenceID, authorizationReferenceID string, amount decimal.Decimal, opts ChargeOptions) (*mws.Response, error) {
	ref, err := ParseReferenceID(amazonReferenceID)
	if err != nil {
		return nil, err
	}

	switch ref.Kind {
	case OrderReference:
		return c.chargeOrderReference(ctx, ref.ID, authorizationReferenceID, amount, opts)
	case BillingAgreement:
		return c.chargeBillingAgreement(ctx, ref.ID, authorizationReferenceID, amount, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownReference, amazonReferenceID)
	}
}

// chargeOrderReference runs SetOrderReferenceDetails, ConfirmOrderReference
// and Authorize with immediate capture.
func (c *Client) chargeOrderReference(ctx context.Context, id, authorizationReferenceID string, amount decimal.Decimal, opts ChargeOptions) (*mws.Response, error) {
	resp, err := c.SetOrderReferenceDetails(ctx, id, amount, SetOrderReferenceDetailsOptions{
		Common:       opts.Common,
		CurrencyCode: opts.CurrencyCode,
		PlatformID:   opts.PlatformID,
		SellerNote:   opts.ChargeNote,
		SellerOrder: SellerOrder{
			SellerOrderID:     opts.ChargeOrderID,
			StoreName:         opts.StoreName,
			CustomInformation: opts.CustomInformation,
		},
	})
	if err != nil || !resp.Success() {
		return resp, err
	}

	resp, err = c.ConfirmOrderReference(ctx, id, ConfirmOrderReferenceOptions{Common: opts.Common})
	if err != nil || !resp.Success() {
		return resp, err
	}

	return c.Authorize(ctx, id, authorizationReferenceID, amount, AuthorizeOptions{
		Common:                  opts.Common,
		CurrencyCode:            opts.CurrencyCode,
		SellerAuthorizationNote: opts.ChargeNote,
		TransactionTimeout:      canonical.SomeValue(0),
		CaptureNow:              canonical.SomeBool(true),
		SoftDescriptor:          opts.SoftDescriptor,
	})
}

// chargeBillingAgreement completes a Draft agreement first (set details,
// confirm), then runs AuthorizeOnBillingAgreement with immediate capture.
func (c *Client) chargeBillingAgreement(ctx context.Context, id, authorizationReferenceID string, amount decimal.Decimal, opts ChargeOptions) (*mws.Response, error) {
	resp, err := c.GetBillingAgreementDetails(ctx, id, GetBillingAgreementDetailsOptions{Common: opts.Common})
	if err != nil {
		return nil, err
	}

	if state, _ := resp.GetElement(billingAgreementStatePath, "State"); state == "Draft" {
		resp, err = c.SetBillingAgreementDetails(ctx, id, SetBillingAgreementDetailsOptions{
			Common:                   opts.Common,
			PlatformID:               opts.PlatformID,
			SellerNote:               opts.ChargeNote,
			SellerBillingAgreementID: opts.ChargeOrderID,
			StoreName:                opts.StoreName,
			CustomInformation:        opts.CustomInformation,
		})
		if err != nil {
			return nil, err
		}
		if resp.Success() {
			resp, err = c.ConfirmBillingAgreement(ctx, id, ConfirmBillingAgreementOptions{Common: opts.Common})
			if err != nil || !resp.Success() {
				return resp, err
			}
		}
	}

	return c.AuthorizeOnBillingAgreement(ctx, id, authorizationReferenceID, amount, AuthorizeOnBillingAgreementOptions{
		Common:                  opts.Common,
		CurrencyCode:            opts.CurrencyCode,
		SellerAuthorizationNote: opts.ChargeNote,
		TransactionTimeout:      canonical.SomeValue(0),
		CaptureNow:              canonical.SomeBool(true),
		SoftDescriptor:          opts.SoftDescriptor,
		SellerNote:              opts.ChargeNote,
		PlatformID:              opts.PlatformID,
		InheritShippingAddress:  canonical.SomeBool(true),
		SellerOrder: SellerOrder{
			SellerOrderID:     opts.ChargeOrderID,
			StoreName:         opts.StoreName,
			CustomInformation: opts.CustomInformation,
		},
	})
}

type ModifyOrderAttributesOptions struct {
	Common
	SellerNote                    canonical.Opt
	SellerOrderID                 canonical.Opt
	PaymentServiceProviderID      canonical.Opt
	PaymentServiceProviderOrderID canonical.Opt
	RequestPaymentAuthorization   canonical.Opt
	StoreName                     canonical.Opt
	CustomInformation             canonical.Opt
}

// ModifyOrderAttributes runs SetOrderAttributes without touching the
// amount, currency, platform or item categories.
func (c *Client) ModifyOrderAttributes(ctx context.Context, amazonOrderReferenceID string, opts ModifyOrderAttributesOptions) (*mws.Response, error) {
	return c.SetOrderAttributes(ctx, amazonOrderReferenceID, SetOrderAttributesOptions{
		Common:                        opts.Common,
		SellerNote:                    opts.SellerNote,
		PaymentServiceProviderID:      opts.PaymentServiceProviderID,
		PaymentServiceProviderOrderID: opts.PaymentServiceProviderOrderID,
		RequestPaymentAuthorization:   opts.RequestPaymentAuthorization,
		SellerOrder: SellerOrder{
			SellerOrderID:     opts.SellerOrderID,
			StoreName:         opts.StoreName,
			CustomInformation: opts.CustomInformation,
		},
	})
}
