package dashboard

import (
	"slices"

	"sales-dashboard/internal/service/filter"
	"sales-dashboard/internal/storage"
)

type Panel string

const (
	PanelKPI           Panel = "kpi"
	PanelDailyTrend    Panel = "daily_trend"
	PanelMovingAverage Panel = "moving_average"
	PanelTopCustomers  Panel = "top_customers"
	PanelTopProducts   Panel = "top_products"
	PanelCategories    Panel = "categories"
	PanelSalespeople   Panel = "salespeople"
	PanelFunnel        Panel = "funnel"
	PanelPeriods       Panel = "periods"
	PanelForecast      Panel = "forecast"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Variant is a subset configuration of the one pipeline: which order states
// it looks at, which panels it computes and which exports it offers.
type Variant struct {
	Name    string
	States  []storage.State
	Panels  []Panel
	Exports []Format
	Options filter.OptionMode
}

func (v Variant) Has(p Panel) bool {
	return slices.Contains(v.Panels, p)
}

func (v Variant) Offers(f Format) bool {
	return slices.Contains(v.Exports, f)
}

var Full = Variant{
	Name:   "full",
	States: storage.FunnelStages,
	Panels: []Panel{
		PanelKPI, PanelDailyTrend, PanelMovingAverage, PanelTopCustomers, PanelTopProducts,
		PanelCategories, PanelSalespeople, PanelFunnel, PanelPeriods, PanelForecast,
	},
	Exports: []Format{FormatXLSX, FormatCSV},
	Options: filter.OptionsCascade,
}

// Basic — старый дашборд: только подтверждённые заказы и короткий набор графиков.
var Basic = Variant{
	Name:    "basic",
	States:  []storage.State{storage.StateSale, storage.StateDone},
	Panels:  []Panel{PanelKPI, PanelDailyTrend, PanelTopCustomers, PanelTopProducts, PanelSalespeople},
	Exports: []Format{FormatCSV},
	Options: filter.OptionsIndependent,
}

func DefaultVariants() map[string]Variant {
	return map[string]Variant{
		Full.Name:  Full,
		Basic.Name: Basic,
	}
}
