package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"sales-dashboard/internal/service/aggregate"
	"sales-dashboard/internal/service/filter"
	"sales-dashboard/internal/service/forecast"
	"sales-dashboard/internal/snapshot"
	"sales-dashboard/internal/storage"
)

var (
	ErrUnknownVariant   = errors.New("unknown dashboard variant")
	ErrExportNotOffered = errors.New("export format is not offered by this variant")
)

type SnapshotSource interface {
	Snapshot(ctx context.Context) (*snapshot.Snapshot, error)
}

type Settings struct {
	DefaultVariant      string
	TopN                int
	MovingAverageWindow int
	ForecastDays        int
}

type Service struct {
	source   SnapshotSource
	settings Settings
	variants map[string]Variant
}

func NewService(source SnapshotSource, settings Settings) *Service {
	if settings.DefaultVariant == "" {
		settings.DefaultVariant = Full.Name
	}
	return &Service{
		source:   source,
		settings: settings,
		variants: DefaultVariants(),
	}
}

// Query — параметры запроса; nil даты означают границы данных.
type Query struct {
	Variant     string
	From        *time.Time
	To          *time.Time
	Salespeople []string
	Customers   []string
	Categories  []string
}

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Selection is the filtered view of one snapshot.
type Selection struct {
	Snapshot *snapshot.Snapshot
	Variant  Variant
	// Bounds and Range are nil when the variant sees no facts at all.
	Bounds  *DateRange
	Range   *DateRange
	Options filter.Options
	Facts   []storage.OrderLineFact

	firstOrders map[string]time.Time
}

type Dashboard struct {
	SnapshotID string         `json:"snapshot_id"`
	LoadedAt   time.Time      `json:"loaded_at"`
	Variant    string         `json:"variant"`
	Bounds     *DateRange     `json:"bounds"`
	Range      *DateRange     `json:"range"`
	Options    filter.Options `json:"options"`
	Rows       int            `json:"rows"`
	Exports    []Format       `json:"exports"`

	// Panels the variant does not compute stay nil.
	KPIs         *aggregate.KPIs             `json:"kpis"`
	DailyTrend   []aggregate.DailyPoint      `json:"daily_trend"`
	TopCustomers []aggregate.Ranked          `json:"top_customers"`
	TopProducts  []aggregate.Ranked          `json:"top_products"`
	Categories   []aggregate.Ranked          `json:"categories"`
	Salespeople  []aggregate.Ranked          `json:"salespeople"`
	Funnel       []aggregate.FunnelStage     `json:"funnel"`
	Periods      *aggregate.PeriodComparison `json:"periods"`
	Forecast     *forecast.Result            `json:"forecast"`
	ForecastNote string                      `json:"forecast_note,omitempty"`
}

func (s *Service) Variant(name string) (Variant, error) {
	if name == "" {
		name = s.settings.DefaultVariant
	}
	v, ok := s.variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// Select loads the snapshot and applies the variant's states and the query's filters.
func (s *Service) Select(ctx context.Context, q Query) (*Selection, error) {
	const op = "service.dashboard.Select"

	variant, err := s.Variant(q.Variant)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	scoped := filter.ByStates(snap.Facts, variant.States)

	sel := &Selection{
		Snapshot: snap,
		Variant:  variant,
		Options:  filter.Options{Salespeople: []string{}, Customers: []string{}, Categories: []string{}},
		Facts:    []storage.OrderLineFact{},
	}

	minDate, maxDate, ok := filter.Bounds(scoped)
	if !ok {
		return sel, nil
	}

	from, to := minDate, maxDate
	if q.From != nil {
		from = clamp(storage.Day(*q.From), minDate, maxDate)
	}
	if q.To != nil {
		to = clamp(storage.Day(*q.To), minDate, maxDate)
	}

	sel.Bounds = &DateRange{From: minDate, To: maxDate}
	sel.Range = &DateRange{From: from, To: to}
	sel.firstOrders = aggregate.FirstOrderDates(scoped)
	sel.Facts, sel.Options = filter.ApplyWithOptions(scoped, filter.Criteria{
		From:        from,
		To:          to,
		Salespeople: q.Salespeople,
		Customers:   q.Customers,
		Categories:  q.Categories,
	}, variant.Options)

	return sel, nil
}

// Build runs the whole pipeline for one render.
func (s *Service) Build(ctx context.Context, q Query) (*Dashboard, error) {
	const op = "service.dashboard.Build"

	sel, err := s.Select(ctx, q)
	if err != nil {
		return nil, err
	}

	v := sel.Variant
	facts := sel.Facts

	d := &Dashboard{
		SnapshotID: sel.Snapshot.ID,
		LoadedAt:   sel.Snapshot.LoadedAt,
		Variant:    v.Name,
		Bounds:     sel.Bounds,
		Range:      sel.Range,
		Options:    sel.Options,
		Rows:       len(facts),
		Exports:    v.Exports,
	}

	if v.Has(PanelKPI) {
		var windowStart time.Time
		if sel.Range != nil {
			windowStart = sel.Range.From
		}
		kpis := aggregate.ComputeKPIs(facts, windowStart, sel.firstOrders)
		d.KPIs = &kpis
	}

	daily := aggregate.DailyTrend(facts)
	if v.Has(PanelDailyTrend) {
		if v.Has(PanelMovingAverage) {
			daily = aggregate.WithMovingAverage(daily, s.settings.MovingAverageWindow)
		}
		d.DailyTrend = daily
	}

	if v.Has(PanelTopCustomers) {
		d.TopCustomers = aggregate.TopN(facts, aggregate.ByCustomer, s.settings.TopN)
	}
	if v.Has(PanelTopProducts) {
		d.TopProducts = aggregate.TopN(facts, aggregate.ByProduct, s.settings.TopN)
	}
	if v.Has(PanelCategories) {
		d.Categories = aggregate.CategoryBreakdown(facts)
	}
	if v.Has(PanelSalespeople) {
		d.Salespeople = aggregate.SalespersonPerformance(facts)
	}
	if v.Has(PanelFunnel) {
		d.Funnel = aggregate.Funnel(facts)
	}
	if v.Has(PanelPeriods) {
		periods := aggregate.ComparePeriods(daily)
		d.Periods = &periods
	}

	if v.Has(PanelForecast) {
		days := make([]forecast.Daily, 0, len(daily))
		for _, p := range daily {
			days = append(days, forecast.Daily{Date: p.Date, Sales: p.Total.InexactFloat64()})
		}

		res, err := forecast.Forecast(days, s.settings.ForecastDays)
		switch {
		case errors.Is(err, forecast.ErrInsufficientData):
			d.ForecastNote = "not enough data for a forecast: at least 2 distinct dates are required"
		case err != nil:
			return nil, fmt.Errorf("%s: %w", op, err)
		default:
			d.Forecast = res
		}
	}

	return d, nil
}

// Details returns the filtered facts newest first for the detail table.
func (s *Service) Details(ctx context.Context, q Query) (*Selection, error) {
	sel, err := s.Select(ctx, q)
	if err != nil {
		return nil, err
	}

	rows := make([]storage.OrderLineFact, len(sel.Facts))
	copy(rows, sel.Facts)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].OrderDate.After(rows[j].OrderDate) })
	sel.Facts = rows

	return sel, nil
}

// Export returns the selection for a download, if the variant offers the format.
func (s *Service) Export(ctx context.Context, q Query, format Format) (*Selection, error) {
	const op = "service.dashboard.Export"

	variant, err := s.Variant(q.Variant)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !variant.Offers(format) {
		return nil, fmt.Errorf("%s: %w: %s in %s", op, ErrExportNotOffered, format, variant.Name)
	}

	return s.Select(ctx, q)
}

func clamp(d, lo, hi time.Time) time.Time {
	if d.Before(lo) {
		return lo
	}
	if d.After(hi) {
		return hi
	}
	return d
}
