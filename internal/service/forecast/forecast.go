package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInsufficientData = errors.New("forecast needs at least 2 distinct dates")

// DataPoint — сумма продаж за день и смещение дня от первой даты ряда.
type DataPoint struct {
	Date  time.Time
	X     float64
	Sales float64
}

type Point struct {
	Date  time.Time `json:"date"`
	Sales float64   `json:"sales"`
}

// Line is sales = Intercept + Slope * day_index.
type Line struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

func (l Line) Predict(x float64) float64 {
	return l.Intercept + l.Slope*x
}

type Result struct {
	Line   Line    `json:"line"`
	Points []Point `json:"points"`
}

// Daily is one observed day; dates must be distinct.
type Daily struct {
	Date  time.Time
	Sales float64
}

// DataPoints indexes each day by its calendar-day offset from the earliest date,
// so gaps without sales keep their distance.
func DataPoints(days []Daily) []DataPoint {
	if len(days) == 0 {
		return nil
	}

	first := days[0].Date
	for _, d := range days[1:] {
		if d.Date.Before(first) {
			first = d.Date
		}
	}

	points := make([]DataPoint, 0, len(days))
	for _, d := range days {
		offset := math.Round(d.Date.Sub(first).Hours() / 24)
		points = append(points, DataPoint{Date: d.Date, X: offset, Sales: d.Sales})
	}
	return points
}

// Fit is ordinary least squares over the points.
func Fit(points []DataPoint) (Line, error) {
	if len(points) < 2 {
		return Line{}, fmt.Errorf("%w: got %d", ErrInsufficientData, len(points))
	}

	n := float64(len(points))
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Sales
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, sxy float64
	for _, p := range points {
		dx := p.X - meanX
		sxx += dx * dx
		sxy += dx * (p.Sales - meanY)
	}

	// все точки в один день
	if sxx == 0 {
		return Line{}, fmt.Errorf("%w: all points share one date", ErrInsufficientData)
	}

	slope := sxy / sxx
	return Line{Intercept: meanY - slope*meanX, Slope: slope}, nil
}

// Forecast fits the daily series and predicts the next horizon days after the
// last observed date.
func Forecast(days []Daily, horizon int) (*Result, error) {
	const op = "service.forecast.Forecast"

	points := DataPoints(days)
	line, err := Fit(points)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	last := points[0]
	for _, p := range points[1:] {
		if p.X > last.X {
			last = p
		}
	}

	out := make([]Point, 0, horizon)
	for i := 1; i <= horizon; i++ {
		out = append(out, Point{
			Date:  last.Date.AddDate(0, 0, i),
			Sales: line.Predict(last.X + float64(i)),
		})
	}

	return &Result{Line: line, Points: out}, nil
}
