package generate_csv

import (
	"context"
	"log/slog"
	"net/http"

	"sales-dashboard/http-server/request"
	"sales-dashboard/internal/service/dashboard"
	generate_report "sales-dashboard/internal/service/generate-report"
)

const FileName = "sales_report.csv"

type ReportExporter interface {
	Export(ctx context.Context, q dashboard.Query, format dashboard.Format) (*dashboard.Selection, error)
}

func GenerateReportCSV(log *slog.Logger, exporter ReportExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateReportCSV"

		q, err := request.ParseQuery(r)
		if err != nil {
			request.WriteError(w, r, log, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), request.Timeout)
		defer cancel()

		sel, err := exporter.Export(ctx, q, dashboard.FormatCSV)
		if err != nil {
			request.WriteError(w, r, log, op, err)
			return
		}

		csvBytes, err := generate_report.CSV(sel.Facts)
		if err != nil {
			request.WriteError(w, r, log, op, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+FileName)
		w.Write(csvBytes)
	}
}
