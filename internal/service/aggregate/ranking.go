package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/storage"
)

const (
	Unassigned    = "Unassigned"
	Uncategorized = "Uncategorized"
)

type Ranked struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
}

type KeyFunc func(f *storage.OrderLineFact) string

func ByCustomer(f *storage.OrderLineFact) string {
	return f.Customer
}

func ByProduct(f *storage.OrderLineFact) string {
	return f.Product
}

func BySalesperson(f *storage.OrderLineFact) string {
	if f.Salesperson == nil {
		return Unassigned
	}
	return *f.Salesperson
}

func ByCategory(f *storage.OrderLineFact) string {
	if f.Category == nil {
		return Uncategorized
	}
	return *f.Category
}

// GroupSum sums line totals per key. Groups come out in first-encounter order.
func GroupSum(facts []storage.OrderLineFact, key KeyFunc) []Ranked {
	index := make(map[string]int)
	groups := []Ranked{}

	for i := range facts {
		k := key(&facts[i])
		pos, ok := index[k]
		if !ok {
			pos = len(groups)
			index[k] = pos
			groups = append(groups, Ranked{Key: k, Total: decimal.Zero})
		}
		groups[pos].Total = groups[pos].Total.Add(facts[i].LineTotal)
	}

	return groups
}

// SortDesc orders groups by total, highest first. Equal totals keep their order.
func SortDesc(groups []Ranked) []Ranked {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.GreaterThan(groups[j].Total)
	})
	return groups
}

func TopN(facts []storage.OrderLineFact, key KeyFunc, n int) []Ranked {
	ranked := SortDesc(GroupSum(facts, key))
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func CategoryBreakdown(facts []storage.OrderLineFact) []Ranked {
	return GroupSum(facts, ByCategory)
}

func SalespersonPerformance(facts []storage.OrderLineFact) []Ranked {
	return SortDesc(GroupSum(facts, BySalesperson))
}
