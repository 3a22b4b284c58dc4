package payment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"amazonpay/internal/canonical"
)

// ProviderCredit is one solution-provider share of a payment.
type ProviderCredit struct {
	ProviderID   string
	Amount       decimal.Decimal
	CurrencyCode string
}

// ProviderCreditList flattens credits into ProviderCreditList.member.N.*
// keys, numbered from 1 in input order.
func ProviderCreditList(credits []ProviderCredit) canonical.Params {
	return memberList("ProviderCreditList", "CreditAmount", credits)
}

// ProviderCreditReversalList flattens reversals into
// ProviderCreditReversalList.member.N.* keys.
func ProviderCreditReversalList(reversals []ProviderCredit) canonical.Params {
	return memberList("ProviderCreditReversalList", "CreditReversalAmount", reversals)
}

func memberList(list, amountKey string, entries []ProviderCredit) canonical.Params {
	p := canonical.NewParams()
	for i, e := range entries {
		prefix := fmt.Sprintf("%s.member.%d.", list, i+1)
		p.Set(prefix+"ProviderId", e.ProviderID)
		p.SetValue(prefix+amountKey+".Amount", e.Amount)
		if e.CurrencyCode != "" {
			p.Set(prefix+amountKey+".CurrencyCode", e.CurrencyCode)
		}
	}
	return p
}

// CategoriesList flattens order item categories under attributeKey.
func CategoriesList(attributeKey string, categories []string) canonical.Params {
	p := canonical.NewParams()
	for i, c := range categories {
		p.Set(fmt.Sprintf("%s.SellerOrderAttributes.OrderItemCategories.OrderItemCategory.%d", attributeKey, i+1), c)
	}
	return p
}

// StatusListFilter flattens order reference states for ListOrderReference.
func StatusListFilter(statuses []string) canonical.Params {
	p := canonical.NewParams()
	for i, s := range statuses {
		p.Set(fmt.Sprintf("OrderReferenceStatusListFilter.OrderReferenceStatus.%d", i+1), s)
	}
	return p
}
