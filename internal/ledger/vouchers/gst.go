package vouchers

import (
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
)

// GSTBreakup is the tax split for one document. Intra-state documents carry
// CGST+SGST halves; inter-state documents carry a single IGST amount.
type GSTBreakup struct {
	CGST  decimal.Decimal
	SGST  decimal.Decimal
	IGST  decimal.Decimal
	Total decimal.Decimal
}

var hundred = decimal.NewFromInt(100)
var two = decimal.NewFromInt(2)

// SplitGST computes the tax on a taxable amount at the given percent rate.
// For intra-state supplies the tax is halved into CGST and SGST; any
// residual cent from the 50/50 split lands on the SGST leg, never dropped.
func SplitGST(taxable, ratePercent decimal.Decimal, intraState bool) GSTBreakup {
	tax := ledger.Round2(taxable.Mul(ratePercent).Div(hundred))
	if !intraState {
		return GSTBreakup{IGST: tax, Total: tax}
	}
	cgst := tax.Div(two).RoundDown(2)
	sgst := tax.Sub(cgst)
	return GSTBreakup{CGST: cgst, SGST: sgst, Total: tax}
}
