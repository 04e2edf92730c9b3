package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrUnknownState = errors.New("unknown order state")

// State — стадия заказа в Odoo, она же этап воронки.
type State string

const (
	StateDraft  State = "draft"
	StateSent   State = "sent"
	StateSale   State = "sale"
	StateDone   State = "done"
	StateCancel State = "cancel"
)

// FunnelStages is the fixed stage order of the sales funnel.
var FunnelStages = []State{StateDraft, StateSent, StateSale, StateDone, StateCancel}

func ParseState(s string) (State, error) {
	for _, st := range FunnelStages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownState, s)
}

// OrderLineFact is one sale order line joined with its order, partner,
// salesperson, product and category.
type OrderLineFact struct {
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	OrderDate   time.Time       `json:"order_date"`
	State       State           `json:"state"`
	Customer    string          `json:"customer"`
	Salesperson *string         `json:"salesperson"`
	Quantity    decimal.Decimal `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Product     string          `json:"product"`
	Category    *string         `json:"category"`
}

// FactColumns is the export header, in OrderLineFact field order.
var FactColumns = []string{
	"order_id",
	"order_number",
	"order_date",
	"state",
	"customer",
	"salesperson",
	"quantity",
	"line_total",
	"product",
	"category",
}

const DateLayout = "2006-01-02"

// Day drops the time of day and location, keeping the calendar date as UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RowScanner is satisfied by *sql.Rows and pgx.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanFact reads one row of the facts query. Column order must match FactColumns,
// quantity and line_total are expected as text.
func ScanFact(row RowScanner) (OrderLineFact, error) {
	const op = "storage.ScanFact"

	var (
		fact        OrderLineFact
		state       string
		salesperson sql.NullString
		category    sql.NullString
		quantity    string
		lineTotal   string
		orderDate   time.Time
	)

	err := row.Scan(
		&fact.OrderID,
		&fact.OrderNumber,
		&orderDate,
		&state,
		&fact.Customer,
		&salesperson,
		&quantity,
		&lineTotal,
		&fact.Product,
		&category,
	)
	if err != nil {
		return OrderLineFact{}, fmt.Errorf("%s: %w", op, err)
	}

	fact.State, err = ParseState(state)
	if err != nil {
		return OrderLineFact{}, fmt.Errorf("%s: order %d: %w", op, fact.OrderID, err)
	}

	fact.Quantity, err = decimal.NewFromString(quantity)
	if err != nil {
		return OrderLineFact{}, fmt.Errorf("%s: quantity of order %d: %w", op, fact.OrderID, err)
	}
	fact.LineTotal, err = decimal.NewFromString(lineTotal)
	if err != nil {
		return OrderLineFact{}, fmt.Errorf("%s: line total of order %d: %w", op, fact.OrderID, err)
	}

	fact.OrderDate = Day(orderDate)
	if salesperson.Valid {
		fact.Salesperson = &salesperson.String
	}
	if category.Valid {
		fact.Category = &category.String
	}

	return fact, nil
}

// StrPtr is a helper for nullable columns.
func StrPtr(s string) *string {
	return &s
}
