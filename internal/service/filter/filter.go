package filter

import (
	"time"

	"sales-dashboard/internal/storage"
)

// OptionMode decides which rows the multiselect option lists are computed from.
type OptionMode string

const (
	// OptionsCascade narrows each list by the selections made before it:
	// salesperson, then customer, then category.
	OptionsCascade OptionMode = "cascade"
	// OptionsIndependent computes every list from the date-filtered rows.
	OptionsIndependent OptionMode = "independent"
)

// Criteria — выбор пользователя на один рендер. Пустой список означает "без ограничений".
type Criteria struct {
	From        time.Time
	To          time.Time
	Salespeople []string
	Customers   []string
	Categories  []string
}

type Options struct {
	Salespeople []string `json:"salespeople"`
	Customers   []string `json:"customers"`
	Categories  []string `json:"categories"`
}

// Apply keeps the facts that pass every active predicate. Input order is preserved
// and the input slice is not modified.
func Apply(facts []storage.OrderLineFact, c Criteria) []storage.OrderLineFact {
	out, _ := ApplyWithOptions(facts, c, OptionsCascade)
	return out
}

func ApplyWithOptions(facts []storage.OrderLineFact, c Criteria, mode OptionMode) ([]storage.OrderLineFact, Options) {
	dated := byDate(facts, c.From, c.To)

	var opts Options
	if mode == OptionsIndependent {
		opts = Options{
			Salespeople: distinct(dated, salespersonOf),
			Customers:   distinct(dated, customerOf),
			Categories:  distinct(dated, categoryOf),
		}
	}

	out := dated

	if mode != OptionsIndependent {
		opts.Salespeople = distinct(out, salespersonOf)
	}
	out = keepMembers(out, c.Salespeople, salespersonOf)

	if mode != OptionsIndependent {
		opts.Customers = distinct(out, customerOf)
	}
	out = keepMembers(out, c.Customers, customerOf)

	if mode != OptionsIndependent {
		opts.Categories = distinct(out, categoryOf)
	}
	out = keepMembers(out, c.Categories, categoryOf)

	return out, opts
}

// Bounds returns the first and last order date. ok is false for an empty set.
func Bounds(facts []storage.OrderLineFact) (minDate, maxDate time.Time, ok bool) {
	if len(facts) == 0 {
		return time.Time{}, time.Time{}, false
	}

	minDate, maxDate = facts[0].OrderDate, facts[0].OrderDate
	for _, f := range facts[1:] {
		if f.OrderDate.Before(minDate) {
			minDate = f.OrderDate
		}
		if f.OrderDate.After(maxDate) {
			maxDate = f.OrderDate
		}
	}

	return minDate, maxDate, true
}

// ByStates keeps facts whose state is in states; nil states keeps everything.
func ByStates(facts []storage.OrderLineFact, states []storage.State) []storage.OrderLineFact {
	if states == nil {
		return facts
	}

	allowed := make(map[storage.State]struct{}, len(states))
	for _, s := range states {
		allowed[s] = struct{}{}
	}

	out := make([]storage.OrderLineFact, 0, len(facts))
	for _, f := range facts {
		if _, ok := allowed[f.State]; ok {
			out = append(out, f)
		}
	}
	return out
}

func byDate(facts []storage.OrderLineFact, from, to time.Time) []storage.OrderLineFact {
	from, to = storage.Day(from), storage.Day(to)

	out := make([]storage.OrderLineFact, 0, len(facts))
	for _, f := range facts {
		if f.OrderDate.Before(from) || f.OrderDate.After(to) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// key returns the field value and false for null.
type key func(f *storage.OrderLineFact) (string, bool)

func salespersonOf(f *storage.OrderLineFact) (string, bool) {
	if f.Salesperson == nil {
		return "", false
	}
	return *f.Salesperson, true
}

func customerOf(f *storage.OrderLineFact) (string, bool) {
	return f.Customer, true
}

func categoryOf(f *storage.OrderLineFact) (string, bool) {
	if f.Category == nil {
		return "", false
	}
	return *f.Category, true
}

// null никогда не проходит активный фильтр
func keepMembers(facts []storage.OrderLineFact, selected []string, k key) []storage.OrderLineFact {
	if len(selected) == 0 {
		return facts
	}

	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}

	out := make([]storage.OrderLineFact, 0, len(facts))
	for i := range facts {
		v, ok := k(&facts[i])
		if !ok {
			continue
		}
		if _, in := set[v]; in {
			out = append(out, facts[i])
		}
	}
	return out
}

func distinct(facts []storage.OrderLineFact, k key) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range facts {
		v, ok := k(&facts[i])
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
