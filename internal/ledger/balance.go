package ledger

import (
	"github.com/shopspring/decimal"

	"mizan/backend/internal/domain"
)

// Balance convention: a positive contact balance means the contact owes us.
// A sale raises what the customer owes; a purchase lowers our net position
// against the supplier. Paid invoices settle through a cash transaction and
// never touch the balance.

// InvoiceBalanceDelta returns the signed balance effect of posting a
// pending invoice for the given total.
func InvoiceBalanceDelta(t domain.InvoiceType, total decimal.Decimal) decimal.Decimal {
	if t == domain.InvoiceTypePurchase {
		return total.Neg()
	}
	return total
}

// ContactCashDelta returns the signed balance effect of a contact-linked
// cash transaction: money received reduces what the contact owes, money
// paid out raises our claim. Expenses never touch a contact.
func ContactCashDelta(t domain.CashTransactionType, amount decimal.Decimal) decimal.Decimal {
	switch t {
	case domain.CashTypeReceipt:
		return amount.Neg()
	case domain.CashTypePayment:
		return amount
	default:
		return decimal.Zero
	}
}

// CashAggregateDelta returns the transaction's contribution to the cash
// balance aggregate (receipts - payments - expenses).
func CashAggregateDelta(t domain.CashTransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == domain.CashTypeReceipt {
		return amount
	}
	return amount.Neg()
}
