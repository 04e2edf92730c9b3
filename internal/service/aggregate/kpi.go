// Package aggregate computes the dashboard views from a filtered fact set.
// Every function is pure and returns an explicit zero value for an empty set.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/storage"
)

type KPIs struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalOrders    int             `json:"total_orders"`
	AvgOrderValue  decimal.Decimal `json:"avg_order_value"`
	TotalCustomers int             `json:"total_customers"`
	NewCustomers   int             `json:"new_customers"`
}

// FirstOrderDates maps each customer to the earliest order date in facts.
func FirstOrderDates(facts []storage.OrderLineFact) map[string]time.Time {
	first := make(map[string]time.Time)
	for _, f := range facts {
		if d, ok := first[f.Customer]; !ok || f.OrderDate.Before(d) {
			first[f.Customer] = f.OrderDate
		}
	}
	return first
}

// ComputeKPIs summarizes facts. A customer counts as new when its first order in
// history is on or after windowStart; with nil history the first order within
// facts is used.
func ComputeKPIs(facts []storage.OrderLineFact, windowStart time.Time, history map[string]time.Time) KPIs {
	if len(facts) == 0 {
		return KPIs{TotalSales: decimal.Zero, AvgOrderValue: decimal.Zero}
	}

	total := decimal.Zero
	orders := make(map[string]struct{})
	for _, f := range facts {
		total = total.Add(f.LineTotal)
		orders[f.OrderNumber] = struct{}{}
	}

	if history == nil {
		history = FirstOrderDates(facts)
	}

	customers := FirstOrderDates(facts)
	newCustomers := 0
	for customer, firstInWindow := range customers {
		first, ok := history[customer]
		if !ok {
			first = firstInWindow
		}
		if !first.Before(windowStart) {
			newCustomers++
		}
	}

	kpis := KPIs{
		TotalSales:     total,
		TotalOrders:    len(orders),
		AvgOrderValue:  decimal.Zero,
		TotalCustomers: len(customers),
		NewCustomers:   newCustomers,
	}
	if kpis.TotalOrders > 0 {
		kpis.AvgOrderValue = total.Div(decimal.NewFromInt(int64(kpis.TotalOrders)))
	}

	return kpis
}
