package generate_excel

import (
	"context"
	"log/slog"
	"net/http"

	"sales-dashboard/http-server/request"
	"sales-dashboard/internal/service/dashboard"
	generate_report "sales-dashboard/internal/service/generate-report"
)

const FileName = "sales_report.xlsx"

type ReportExporter interface {
	Export(ctx context.Context, q dashboard.Query, format dashboard.Format) (*dashboard.Selection, error)
}

func GenerateReportExcel(log *slog.Logger, exporter ReportExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateReportExcel"

		q, err := request.ParseQuery(r)
		if err != nil {
			request.WriteError(w, r, log, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), request.Timeout)
		defer cancel()

		sel, err := exporter.Export(ctx, q, dashboard.FormatXLSX)
		if err != nil {
			request.WriteError(w, r, log, op, err)
			return
		}

		excelBytes, err := generate_report.Excel(sel.Facts)
		if err != nil {
			request.WriteError(w, r, log, op, err)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+FileName)
		w.Write(excelBytes)
	}
}
