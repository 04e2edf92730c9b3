package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type PeriodSum struct {
	PeriodEnd time.Time       `json:"period_end"`
	Total     decimal.Decimal `json:"total"`
}

type PeriodRow struct {
	Date      time.Time       `json:"date"`
	Monthly   decimal.Decimal `json:"monthly"`
	Quarterly decimal.Decimal `json:"quarterly"`
}

type PeriodComparison struct {
	Monthly   []PeriodSum `json:"monthly"`
	Quarterly []PeriodSum `json:"quarterly"`
	// Combined aligns both series on period-end dates, 0 where a series has no period.
	Combined []PeriodRow `json:"combined"`
}

func MonthEnd(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

func QuarterEnd(d time.Time) time.Time {
	q := (int(d.Month()) - 1) / 3
	return time.Date(d.Year(), time.Month(q*3+4), 0, 0, 0, 0, 0, time.UTC)
}

// Resample sums daily points into periods labelled by periodEnd. Only periods
// with at least one point appear.
func Resample(points []DailyPoint, periodEnd func(time.Time) time.Time) []PeriodSum {
	sums := make(map[time.Time]decimal.Decimal)
	for _, p := range points {
		end := periodEnd(p.Date)
		sums[end] = sums[end].Add(p.Total)
	}

	out := make([]PeriodSum, 0, len(sums))
	for end, total := range sums {
		out = append(out, PeriodSum{PeriodEnd: end, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodEnd.Before(out[j].PeriodEnd) })

	return out
}

func ComparePeriods(points []DailyPoint) PeriodComparison {
	monthly := Resample(points, MonthEnd)
	quarterly := Resample(points, QuarterEnd)

	rows := make(map[time.Time]*PeriodRow)
	row := func(d time.Time) *PeriodRow {
		r, ok := rows[d]
		if !ok {
			r = &PeriodRow{Date: d, Monthly: decimal.Zero, Quarterly: decimal.Zero}
			rows[d] = r
		}
		return r
	}
	for _, m := range monthly {
		row(m.PeriodEnd).Monthly = m.Total
	}
	for _, q := range quarterly {
		row(q.PeriodEnd).Quarterly = q.Total
	}

	combined := make([]PeriodRow, 0, len(rows))
	for _, r := range rows {
		combined = append(combined, *r)
	}
	sort.Slice(combined, func(i, j int) bool { return combined[i].Date.Before(combined[j].Date) })

	return PeriodComparison{Monthly: monthly, Quarterly: quarterly, Combined: combined}
}
