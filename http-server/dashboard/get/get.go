package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"sales-dashboard/http-server/request"
	"sales-dashboard/internal/service/dashboard"
)

type DashboardBuilder interface {
	Build(ctx context.Context, q dashboard.Query) (*dashboard.Dashboard, error)
}

func GetDashboard(log *slog.Logger, builder DashboardBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.GetDashboard"

		q, err := request.ParseQuery(r)
		if err != nil {
			request.WriteError(w, r, log, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), request.Timeout)
		defer cancel()

		d, err := builder.Build(ctx, q)
		if err != nil {
			request.WriteError(w, r, log, op, err)
			return
		}

		render.JSON(w, r, d)
	}
}
