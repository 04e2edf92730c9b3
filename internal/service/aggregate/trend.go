package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/storage"
)

type DailyPoint struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
	// MovingAverage is nil until the window has enough samples.
	MovingAverage *decimal.Decimal `json:"moving_average"`
}

// DailyTrend sums line totals per date in ascending date order.
func DailyTrend(facts []storage.OrderLineFact) []DailyPoint {
	if len(facts) == 0 {
		return []DailyPoint{}
	}

	byDay := make(map[time.Time]decimal.Decimal)
	for _, f := range facts {
		byDay[f.OrderDate] = byDay[f.OrderDate].Add(f.LineTotal)
	}

	points := make([]DailyPoint, 0, len(byDay))
	for d, total := range byDay {
		points = append(points, DailyPoint{Date: d, Total: total})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return points
}

// WithMovingAverage fills the trailing mean over window samples (not calendar days).
// The first window-1 points keep a nil average.
func WithMovingAverage(points []DailyPoint, window int) []DailyPoint {
	if window <= 0 {
		return points
	}

	size := decimal.NewFromInt(int64(window))
	sum := decimal.Zero
	for i := range points {
		sum = sum.Add(points[i].Total)
		if i >= window {
			sum = sum.Sub(points[i-window].Total)
		}
		if i >= window-1 {
			avg := sum.Div(size)
			points[i].MovingAverage = &avg
		}
	}

	return points
}
