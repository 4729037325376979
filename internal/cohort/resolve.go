package cohort

import (
	"sort"
	"time"
)

// ResolveFirstPurchases computes, per customer, the earliest qualifying order
// and attaches its attributes to every row of that customer. The ordering
// rule is (customer_email asc, day asc, product_title desc, missing titles
// last): among same-day first purchases the lexicographically LAST product
// title wins as the first product, which downstream reports depend on for
// output parity.
//
// Rows with an empty customer email receive no anchor; both cohort policies
// exclude them during assignment.
func ResolveFirstPurchases(rows []Transaction) []Transaction {
	resolved := make([]Transaction, len(rows))
	copy(resolved, rows)

	sort.SliceStable(resolved, func(i, j int) bool {
		a, b := resolved[i], resolved[j]
		if a.CustomerEmail != b.CustomerEmail {
			return a.CustomerEmail < b.CustomerEmail
		}
		if !a.Day.Equal(b.Day) {
			return a.Day.Before(b.Day)
		}
		// Descending on product title; rows without a title sort last.
		if a.HasProduct != b.HasProduct {
			return a.HasProduct
		}
		return a.ProductTitle > b.ProductTitle
	})

	type anchor struct {
		orderID    string
		day        time.Time
		product    string
		hasProduct bool
	}
	anchors := make(map[string]*anchor)
	for i := range resolved {
		row := &resolved[i]
		if row.CustomerEmail == "" {
			continue
		}
		if _, seen := anchors[row.CustomerEmail]; seen {
			continue
		}
		anchors[row.CustomerEmail] = &anchor{
			orderID:    row.OrderID,
			day:        row.Day,
			product:    row.ProductTitle,
			hasProduct: row.HasProduct,
		}
	}

	// Broadcast the anchor onto every row of the customer. Because the anchor
	// is derived per group here, the forward/backward gap fill the upstream
	// pipeline carried is unreachable and intentionally omitted.
	for i := range resolved {
		row := &resolved[i]
		a, ok := anchors[row.CustomerEmail]
		if !ok || row.CustomerEmail == "" {
			continue
		}
		row.FirstOrderID = a.orderID
		row.FirstPurchaseDay = a.day
		row.FirstProduct = a.product
		row.HasFirstProduct = a.hasProduct
		row.IsFirstPurchase = row.OrderID == a.orderID
	}

	return resolved
}
