package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"sales-dashboard/http-server/request"
	"sales-dashboard/internal/service/dashboard"
	"sales-dashboard/internal/service/filter"
	"sales-dashboard/internal/storage"
)

type SalesDetails interface {
	Details(ctx context.Context, q dashboard.Query) (*dashboard.Selection, error)
}

// ResponseSales — таблица деталей, новые заказы сверху.
type ResponseSales struct {
	SnapshotID string                  `json:"snapshot_id"`
	Variant    string                  `json:"variant"`
	Range      *dashboard.DateRange    `json:"range"`
	Options    filter.Options          `json:"options"`
	Rows       int                     `json:"rows"`
	Sales      []storage.OrderLineFact `json:"sales"`
}

func GetSales(log *slog.Logger, details SalesDetails) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sales.GetSales"

		q, err := request.ParseQuery(r)
		if err != nil {
			request.WriteError(w, r, log, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), request.Timeout)
		defer cancel()

		sel, err := details.Details(ctx, q)
		if err != nil {
			request.WriteError(w, r, log, op, err)
			return
		}

		render.JSON(w, r, ResponseSales{
			SnapshotID: sel.Snapshot.ID,
			Variant:    sel.Variant.Name,
			Range:      sel.Range,
			Options:    sel.Options,
			Rows:       len(sel.Facts),
			Sales:      sel.Facts,
		})
	}
}
