package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getdashboard "sales-dashboard/http-server/dashboard/get"
	generate_csv "sales-dashboard/http-server/generate-report/generate-csv"
	generate_excel "sales-dashboard/http-server/generate-report/generate-excel"
	getsales "sales-dashboard/http-server/sales/get"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/service/dashboard"
)

func routes(cfg config.Config, log *slog.Logger, svc *dashboard.Service) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	//ip пользователя
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/api/dashboard", getdashboard.GetDashboard(log, svc))
	router.Get("/api/sales", getsales.GetSales(log, svc))

	// выгрузки, набор форматов зависит от варианта
	router.Get("/api/report/excel", generate_excel.GenerateReportExcel(log, svc))
	router.Get("/api/report/csv", generate_csv.GenerateReportCSV(log, svc))

	mountFrontend(router, log, cfg.FrontendDir)

	return router
}

// mountFrontend отдаёт собранный фронтенд, если папка есть; API работает и без него.
func mountFrontend(router chi.Router, log *slog.Logger, frontendDir string) {
	if info, err := os.Stat(frontendDir); err != nil || !info.IsDir() {
		log.Warn("frontend dir not found, serving API only", slog.String("path", frontendDir))
		return
	}

	fileServer := http.FileServer(http.Dir(frontendDir))

	router.Handle("/assets/*", fileServer)

	//SPA fallback: любой другой путь → index.html
	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(frontendDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
	})
}
